package models

// ValidationStatus is the outcome of a HEAD check against a candidate URL.
type ValidationStatus string

const (
	StatusValid      ValidationStatus = "valid"
	StatusRedirected ValidationStatus = "redirected"
	StatusNotFound   ValidationStatus = "not_found"
	StatusError      ValidationStatus = "error"
)

// ValidationResult tags a candidate with exactly one status.
// Only the field that belongs to the status is populated.
type ValidationResult struct {
	Candidate  CandidateURL     `json:"candidate"`
	Status     ValidationStatus `json:"status"`
	FinalURL   string           `json:"final_url,omitempty"`
	StatusCode int              `json:"status_code,omitempty"`
	Error      string           `json:"error,omitempty"`
}

// InvalidURL is an entry of invalid_urls.json, left for an operator to fix.
// CorrectURL is always written empty.
type InvalidURL struct {
	Category   string `json:"category"`
	Title      string `json:"title"`
	StatusCode int    `json:"status_code,omitempty"`
	Error      string `json:"error,omitempty"`
	CorrectURL string `json:"correct_url"`
}
