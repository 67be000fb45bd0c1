// Package models defines data structures for the scraper.
package models

import "time"

// Record is one raw extraction result keyed by schema field name.
// Fields whose selector did not match are absent.
type Record map[string]string

// Product represents a product card from the search results listing.
// Values are kept as the page displays them, currency symbols and all.
type Product struct {
	Nome     string `json:"nome"`
	Preco    string `json:"preco"`
	Vendedor string `json:"vendedor"`
	Vendidos string `json:"vendidos"`
}

// FetchResult is the outcome of one render-and-extract attempt.
type FetchResult struct {
	URL     string
	Success bool
	// ErrorMessage is set only when Success is false.
	ErrorMessage string
	// ExtractedContent is a JSON array of records, set only when Success is true.
	ExtractedContent string
	StatusCode       int
	RecordCount      int
	StartTime        time.Time
	EndTime          time.Time
}

// Duration reports how long the fetch took.
func (r *FetchResult) Duration() time.Duration {
	if r == nil || r.EndTime.Before(r.StartTime) {
		return 0
	}
	return r.EndTime.Sub(r.StartTime)
}
