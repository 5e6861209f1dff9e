package model

import "time"

// ReportExport is the top-level JSON structure written by the report exporter.
type ReportExport struct {
	Report   Report   `json:"report"`
	Feedback Feedback `json:"feedback"`
}

// SessionSummary describes a finished practice session for reports and the API.
type SessionSummary struct {
	Role       string           `json:"role"`
	StartedAt  time.Time        `json:"started_at"`
	FinishedAt *time.Time       `json:"finished_at,omitempty"`
	Served     int              `json:"served"`
	Total      int              `json:"total"`
	Responses  []ResponseRecord `json:"responses"`
}
