// Package model contains domain models passed between layers.
package model

import "time"

// Metric identifies one of the built-in evaluation metrics, or Custom for
// tasks that ship their own scoring code.
type Metric string

// Closed set of evaluation metrics. Dispatch over these is exhaustive; an
// unknown string fails at parse time, never at scoring time.
const (
	MetricRMSE     Metric = "rmse"
	MetricAccuracy Metric = "accuracy"
	MetricF1       Metric = "f1"
	MetricAUC      Metric = "auc"
	MetricCustom   Metric = "custom"
)

// Task describes a competition a user can submit predictions against.
// The core treats tasks as read-only input owned by an external task store.
type Task struct {
	ID             string    // unique task identifier
	Title          string    // display title
	StartsAt       time.Time // submission window opens
	EndsAt         time.Time // submission window closes
	MaxPerDay      int       // daily submission quota; 0 means the default applies
	Metric         Metric    // evaluation metric, or MetricCustom
	ScoringCode    string    // scoring script text, only for MetricCustom
	AnswerPath     string    // blob path of the hidden ground-truth CSV; empty when absent
	HigherIsBetter bool      // ranking direction for MetricCustom tasks; ignored for built-ins
}

// Submission records one scoring attempt against a task. Created exactly once
// per accepted submit call and immutable afterwards except for Score.
type Submission struct {
	ID          string    // unique submission identifier
	TaskID      string    // owning task
	UserID      string    // submitting user
	UserName    string    // display name, carried for leaderboard reads
	FilePath    string    // blob path of the stored submission CSV
	Score       *float64  // nil until scored; scoring is currently synchronous
	SubmittedAt time.Time // submission timestamp, UTC
}

// Scored reports whether the submission has a computed score.
func (s Submission) Scored() bool { return s.Score != nil }
