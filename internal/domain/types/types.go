// Package types contains common read shapes shared across the application.
package types

import "time"

// Entry represents one leaderboard row.
type Entry struct {
	Rank            int       `json:"rank"`
	UserID          string    `json:"user_id"`
	UserName        string    `json:"user_name,omitempty"`
	BestScore       float64   `json:"best_score"`
	SubmissionCount int       `json:"submission_count"`
	LastSubmission  time.Time `json:"last_submission"`
}

// Receipt is returned to the caller after a successful submission.
type Receipt struct {
	SubmissionID   string  `json:"submission_id"`
	Score          float64 `json:"score"`
	Metric         string  `json:"metric"`
	HigherIsBetter bool    `json:"higher_is_better"`
	RemainingToday int     `json:"remaining_submissions_today"`
}
