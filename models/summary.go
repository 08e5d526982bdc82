package models

// PageSummary is the text scraped from one page.
type PageSummary struct {
	ID           string `json:"id"`
	Title        string `json:"title"`
	ShortSummary string `json:"shortSummary"`
	FullSummary  string `json:"fullSummary"`
	SourceURL    string `json:"sourceUrl"`
}

// HasContent reports whether either summary field was found.
func (p *PageSummary) HasContent() bool {
	return p.ShortSummary != "" || p.FullSummary != ""
}

// DataModuleEntry is the shape the downstream app consumes per id.
type DataModuleEntry struct {
	ID           string `json:"id"`
	ShortSummary string `json:"shortSummary"`
	FullSummary  string `json:"fullSummary"`
}
