package models

// Category is one of the six content sections of the target site.
type Category string

const (
	CategoryPerson       Category = "person"
	CategoryEvent        Category = "event"
	CategoryTopic        Category = "topic"
	CategoryGroup        Category = "group"
	CategoryRelationship Category = "relationship"
	CategoryObject       Category = "object"
)

// Categories lists every category in the order they are matched.
var Categories = []Category{
	CategoryPerson,
	CategoryEvent,
	CategoryTopic,
	CategoryGroup,
	CategoryRelationship,
	CategoryObject,
}

// SkipReason tallies why a tree line produced no candidate URL.
type SkipReason string

const (
	SkipNotEntry        SkipReason = "not_entry"
	SkipDocxTxt         SkipReason = "docx_txt"
	SkipNoCategory      SkipReason = "no_category"
	SkipUnknownCategory SkipReason = "unknown_category"
)

// TreeEntry is one classified leaf of the tree listing.
type TreeEntry struct {
	Raw      string   `json:"raw" yaml:"raw"`
	Category Category `json:"category" yaml:"category"`
	Title    string   `json:"title" yaml:"title"`
	Rule     string   `json:"rule" yaml:"rule"`
}

// CandidateURL is a page URL that has not yet been confirmed to resolve.
type CandidateURL struct {
	Category Category `json:"category" yaml:"category"`
	Slug     string   `json:"slug" yaml:"slug"`
	Title    string   `json:"title,omitempty" yaml:"title,omitempty"`
	URL      string   `json:"url" yaml:"url"`
}

