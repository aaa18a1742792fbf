package models

// EIPSummary identifies one Ergo Improvement Proposal.
type EIPSummary struct {
	Number int    `json:"number"`
	Title  string `json:"title"`
	Status string `json:"status"`
}

// EIPDetail is a summary plus the rendered document body.
type EIPDetail struct {
	EIPSummary
	Content string `json:"content"` // rendered HTML
}
