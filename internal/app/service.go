// Package service provides the core business service that implements
// the dependencies required by the HTTP API: submission scoring and
// leaderboard reads.
package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/okian/podium/internal/adapters/sandbox"
	"github.com/okian/podium/internal/adapters/storage"
	"github.com/okian/podium/internal/domain/leaderboard"
	"github.com/okian/podium/internal/domain/metric"
	"github.com/okian/podium/internal/domain/model"
	"github.com/okian/podium/internal/domain/policy"
	"github.com/okian/podium/internal/domain/tabular"
	"github.com/okian/podium/internal/domain/types"
	"github.com/okian/podium/pkg/logger"
	"github.com/okian/podium/pkg/metrics"
)

// Service orchestrates one submission end to end: policy, parsing, scoring,
// and persistence. It also serves leaderboard reads.
//
// Each request is handled independently; the only shared state lives in the
// injected stores. Scoring is synchronous: the caller blocks until a score
// (or a rejection) comes back.
type Service struct {
	mu sync.RWMutex

	tasks  storage.TaskStore
	blobs  storage.BlobStore
	subs   storage.SubmissionStore
	engine *policy.Engine
	runner sandbox.Runner

	defaultMaxPerDay int
	now              func() time.Time

	started bool
	log     logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithTaskStore injects the task metadata store.
func WithTaskStore(s storage.TaskStore) Option {
	return func(svc *Service) {
		if s != nil {
			svc.tasks = s
		}
	}
}

// WithBlobStore injects the blob store for answer and submission files.
func WithBlobStore(s storage.BlobStore) Option {
	return func(svc *Service) {
		if s != nil {
			svc.blobs = s
		}
	}
}

// WithSubmissionStore injects the submission record store.
func WithSubmissionStore(s storage.SubmissionStore) Option {
	return func(svc *Service) {
		if s != nil {
			svc.subs = s
		}
	}
}

// WithSandbox injects the custom scorer runner.
func WithSandbox(r sandbox.Runner) Option {
	return func(svc *Service) {
		if r != nil {
			svc.runner = r
		}
	}
}

// WithDefaultMaxPerDay overrides the fallback daily quota.
func WithDefaultMaxPerDay(n int) Option {
	return func(svc *Service) {
		if n > 0 {
			svc.defaultMaxPerDay = n
		}
	}
}

// WithClock overrides the time source. Tests pin this.
func WithClock(now func() time.Time) Option {
	return func(svc *Service) {
		if now != nil {
			svc.now = now
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(svc *Service) {
		if l != nil {
			svc.log = l
		}
	}
}

// New constructs a Service with default configuration.
func New(opts ...Option) *Service {
	svc := &Service{
		defaultMaxPerDay: policy.DefaultMaxPerDay,
		now:              time.Now,
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc
}

// Start initializes missing components with in-memory defaults.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}
	if s.log == nil {
		s.log = logger.Get().Named("service")
	}
	if s.tasks == nil {
		s.tasks = storage.NewMemoryTaskStore()
	}
	if s.blobs == nil {
		s.blobs = storage.NewMemoryBlobStore()
	}
	if s.subs == nil {
		s.subs = storage.NewMemorySubmissionStore()
	}
	s.engine = policy.New(policy.WithDefaultMaxPerDay(s.defaultMaxPerDay))

	s.started = true
	s.log.Info(ctx, "scoring service started",
		logger.Int("defaultMaxPerDay", s.defaultMaxPerDay),
		logger.Any("customScoring", s.runner != nil),
	)
	return nil
}

// Stop shuts the service down.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.started {
		return
	}
	if closer, ok := s.subs.(interface{ Close() }); ok {
		closer.Close()
	}
	s.started = false
	s.log.Info(context.Background(), "scoring service stopped")
}

// Submit scores one submission file against a task.
//
// The policy gates run before any parsing so rejected attempts never reach
// the CSV reader. No submission record is created on any failure; the insert
// is the last step.
func (s *Service) Submit(ctx context.Context, taskID, userID, userName string, fileBytes []byte) (types.Receipt, error) {
	now := s.now().UTC()
	start := time.Now()

	task, err := s.tasks.Get(ctx, taskID)
	if err != nil {
		metrics.RecordSubmissionRejected("unknown_task")
		return types.Receipt{}, err
	}

	used, err := s.subs.CountSince(ctx, taskID, userID, policy.StartOfDay(now))
	if err != nil {
		return types.Receipt{}, s.storageIncident(ctx, "count submissions", err)
	}

	if err := s.engine.Check(task, now, used); err != nil {
		metrics.RecordSubmissionRejected(rejectionReason(err))
		s.log.Debug(ctx, "submission rejected by policy",
			logger.String("task", taskID),
			logger.String("user", userID),
			logger.Error(err),
		)
		return types.Receipt{}, err
	}

	score, err := s.score(ctx, task, fileBytes)
	if err != nil {
		metrics.RecordSubmissionRejected(rejectionReason(err))
		return types.Receipt{}, err
	}

	sub := model.Submission{
		ID:          uuid.NewString(),
		TaskID:      taskID,
		UserID:      userID,
		UserName:    userName,
		FilePath:    fmt.Sprintf("submissions/%s/%s.csv", taskID, uuid.NewString()),
		Score:       &score,
		SubmittedAt: now,
	}
	if err := s.blobs.Upload(ctx, sub.FilePath, fileBytes, "text/csv"); err != nil {
		return types.Receipt{}, s.storageIncident(ctx, "store submission file", err)
	}
	if err := s.subs.Insert(ctx, sub); err != nil {
		return types.Receipt{}, s.storageIncident(ctx, "insert submission", err)
	}

	limit := s.engine.MaxPerDay(task)
	remaining := limit - used - 1
	if remaining < 0 {
		remaining = 0
	}

	metrics.RecordSubmissionAccepted(string(task.Metric))
	metrics.ObserveScoringLatency(string(task.Metric), time.Since(start).Seconds())
	s.log.Info(ctx, "submission scored",
		logger.String("task", taskID),
		logger.String("user", userID),
		logger.String("metric", string(task.Metric)),
		logger.Float64("score", score),
		logger.Duration("elapsed", time.Since(start)),
	)

	return types.Receipt{
		SubmissionID:   sub.ID,
		Score:          score,
		Metric:         string(task.Metric),
		HigherIsBetter: metric.Direction(task),
		RemainingToday: remaining,
	}, nil
}

// score parses both files, checks dimensions once, and dispatches to the
// right evaluator.
func (s *Service) score(ctx context.Context, task model.Task, fileBytes []byte) (float64, error) {
	subTable, err := tabular.Parse(string(fileBytes))
	if err != nil {
		return 0, err
	}

	answerBytes, err := s.blobs.Download(ctx, task.AnswerPath)
	if err != nil {
		if errors.Is(err, storage.ErrBlobNotFound) {
			// The reference dangles: task misconfiguration, not an
			// infrastructure fault.
			return 0, fmt.Errorf("%w: %v", policy.ErrAnswerUnavailable, err)
		}
		return 0, s.storageIncident(ctx, "download answer file", err)
	}
	answerTable, err := tabular.Parse(string(answerBytes))
	if err != nil {
		return 0, fmt.Errorf("%w: answer file unparsable: %v", policy.ErrAnswerUnavailable, err)
	}

	// Single shared precondition; no evaluator re-checks lengths on its own
	// input shape.
	if err := metric.CheckDimensions(subTable.RowCount(), answerTable.RowCount()); err != nil {
		return 0, err
	}

	if task.Metric == model.MetricCustom {
		return s.runCustom(ctx, task, answerTable, subTable)
	}
	return metric.Evaluate(task.Metric, tabular.TargetColumn(subTable), tabular.TargetColumn(answerTable))
}

// runCustom executes the task's scoring code in the sandbox.
func (s *Service) runCustom(ctx context.Context, task model.Task, answer, submission tabular.Table) (float64, error) {
	if s.runner == nil {
		return 0, fmt.Errorf("%w: no runner configured", sandbox.ErrUnavailable)
	}
	start := time.Now()
	metrics.RecordSandboxRun()
	score, err := s.runner.Run(ctx, task.ScoringCode, tabular.RowObjects(answer), tabular.RowObjects(submission))
	metrics.ObserveSandboxLatency(time.Since(start).Seconds())
	if err != nil {
		metrics.RecordSandboxFailure()
		if errors.Is(err, sandbox.ErrUnavailable) {
			s.log.Error(ctx, "sandbox infrastructure fault",
				logger.String("task", task.ID), logger.Error(err))
		}
		return 0, err
	}
	return score, nil
}

// Leaderboard aggregates all scored submissions for a task into a ranked
// standing. Pure read; recomputed on every call.
func (s *Service) Leaderboard(ctx context.Context, taskID string) ([]types.Entry, error) {
	task, err := s.tasks.Get(ctx, taskID)
	if err != nil {
		return nil, err
	}
	subs, err := s.subs.ListScored(ctx, taskID)
	if err != nil {
		return nil, s.storageIncident(ctx, "list submissions", err)
	}

	metrics.RecordLeaderboardRead()
	return leaderboard.Aggregate(subs, metric.Direction(task)), nil
}

// Task returns task metadata for display.
func (s *Service) Task(ctx context.Context, taskID string) (model.Task, error) {
	return s.tasks.Get(ctx, taskID)
}

// Stats returns service statistics for monitoring.
func (s *Service) Stats(ctx context.Context) map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := map[string]interface{}{
		"started":             s.started,
		"default_max_per_day": s.defaultMaxPerDay,
		"custom_scoring":      s.runner != nil,
	}
	if counter, ok := s.subs.(interface{ Len(context.Context) int }); ok {
		n := counter.Len(ctx)
		stats["stored_submissions"] = n
		metrics.UpdateStoredSubmissions(n)
	}
	if counter, ok := s.tasks.(interface{ Count(context.Context) int }); ok {
		stats["tasks"] = counter.Count(ctx)
	}
	return stats
}

// storageIncident logs a true infrastructure fault and wraps it as a
// storage error. Validation rejections never come through here.
func (s *Service) storageIncident(ctx context.Context, op string, err error) error {
	metrics.RecordStorageError()
	s.log.Error(ctx, "storage failure", logger.String("op", op), logger.Error(err))
	if errors.Is(err, storage.ErrStorage) {
		return err
	}
	return fmt.Errorf("%w: %s: %v", storage.ErrStorage, op, err)
}

// rejectionReason labels an error for the rejection counter.
func rejectionReason(err error) string {
	switch {
	case errors.Is(err, policy.ErrNotStarted):
		return "not_started"
	case errors.Is(err, policy.ErrEnded):
		return "ended"
	case errors.Is(err, policy.ErrAnswerUnavailable):
		return "answer_unavailable"
	case errors.Is(err, policy.ErrScoringNotConfigured):
		return "scoring_not_configured"
	case errors.Is(err, policy.ErrQuotaExceeded):
		return "quota_exceeded"
	case errors.Is(err, tabular.ErrFormat):
		return "format"
	case errors.Is(err, metric.ErrDimensionMismatch):
		return "dimension_mismatch"
	case errors.Is(err, metric.ErrInvalidNumeric):
		return "invalid_numeric"
	case errors.Is(err, sandbox.ErrInvalidScore), errors.Is(err, metric.ErrInvalidScore):
		return "invalid_score"
	case strings.Contains(err.Error(), "not found"):
		return "unknown_task"
	default:
		return "internal"
	}
}
