// Package policy enforces the rules a submission attempt must clear before
// any parsing or scoring work starts.
package policy

import (
	"fmt"
	"strings"
	"time"

	"github.com/okian/podium/internal/domain/model"
)

// DefaultMaxPerDay applies when a task does not configure its own quota.
const DefaultMaxPerDay = 5

// Engine evaluates submission policy for a task. The zero value is usable.
type Engine struct {
	defaultMaxPerDay int
}

// Option applies a configuration option to the Engine.
type Option func(*Engine)

// WithDefaultMaxPerDay overrides the fallback daily quota.
func WithDefaultMaxPerDay(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.defaultMaxPerDay = n
		}
	}
}

// New constructs an Engine with default configuration.
func New(opts ...Option) *Engine {
	e := &Engine{defaultMaxPerDay: DefaultMaxPerDay}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// MaxPerDay resolves the effective daily quota for a task.
func (e *Engine) MaxPerDay(task model.Task) int {
	if task.MaxPerDay > 0 {
		return task.MaxPerDay
	}
	if e.defaultMaxPerDay > 0 {
		return e.defaultMaxPerDay
	}
	return DefaultMaxPerDay
}

// Check runs the policy gates strictly in order, first failure wins:
//
//  1. task window (ErrNotStarted / ErrEnded)
//  2. answer-file presence (ErrAnswerUnavailable)
//  3. custom-scoring configuration (ErrScoringNotConfigured)
//  4. daily quota (QuotaError)
//
// submittedToday is the caller-supplied count of the user's submissions for
// this task since the start of the current UTC day. The quota is a soft
// limit: counting and the later insert are not one transaction, so
// concurrent attempts at the boundary can overshoot by a small margin.
func (e *Engine) Check(task model.Task, now time.Time, submittedToday int) error {
	if now.Before(task.StartsAt) {
		return fmt.Errorf("%w: opens %s", ErrNotStarted, task.StartsAt.UTC().Format(time.RFC3339))
	}
	if now.After(task.EndsAt) {
		return fmt.Errorf("%w: closed %s", ErrEnded, task.EndsAt.UTC().Format(time.RFC3339))
	}
	if task.AnswerPath == "" {
		return ErrAnswerUnavailable
	}
	if task.Metric == model.MetricCustom && strings.TrimSpace(task.ScoringCode) == "" {
		return ErrScoringNotConfigured
	}
	if limit := e.MaxPerDay(task); submittedToday >= limit {
		return &QuotaError{Limit: limit}
	}
	return nil
}

// StartOfDay returns midnight UTC of the day containing t. Quota counting is
// anchored to UTC days regardless of the caller's zone.
func StartOfDay(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
}
