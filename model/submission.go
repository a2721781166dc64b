package model

import "time"

// Status is the review status of a committed submission.
type Status string

const (
	StatusPendingReview Status = "pending_review"
	StatusActive        Status = "active"
	StatusCorrected     Status = "corrected"
	StatusRejected      Status = "rejected"
)

// Label returns the human-facing name of the status.
func (s Status) Label() string {
	switch s {
	case StatusPendingReview:
		return "pending review"
	case StatusActive:
		return "active"
	case StatusCorrected:
		return "corrected"
	case StatusRejected:
		return "rejected"
	}
	return string(s)
}

// Valid reports whether s is one of the known statuses.
func (s Status) Valid() bool {
	switch s {
	case StatusPendingReview, StatusActive, StatusCorrected, StatusRejected:
		return true
	}
	return false
}

// Submission is a committed violation report.
type Submission struct {
	ID           string    `json:"id"`
	Number       int       `json:"number"`
	ReporterID   string    `json:"reporter_id"`
	ReporterName string    `json:"reporter_name"`
	LocationID   int64     `json:"location_id"`
	LocationName string    `json:"location_name"`
	Category     string    `json:"category"`
	Description  string    `json:"description"`
	Actions      []string  `json:"actions"`
	Photos       []Photo   `json:"photos"`
	Status       Status    `json:"status"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}
