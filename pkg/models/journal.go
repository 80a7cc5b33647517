package models

import "time"

// SaveRun is the audit record of one save invocation. It carries counts and
// error text only, never product values.
type SaveRun struct {
	ID               string    `json:"id"`
	StartedAt        time.Time `json:"started_at"`
	CompletedAt      time.Time `json:"completed_at"`
	Store            string    `json:"store"`
	Changes          int       `json:"changes"`
	Updates          int       `json:"updates"`
	Completed        int       `json:"completed"`
	BatchesProcessed int       `json:"batches_processed"`
	Success          bool      `json:"success"`
	Cancelled        bool      `json:"cancelled"`
	Errors           []string  `json:"errors"`
}
