package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	"github.com/okian/podium/internal/domain/model"
	"github.com/okian/podium/migrations"
)

// PostgresSubmissionStore persists submissions in Postgres via pgx.
type PostgresSubmissionStore struct {
	pool *pgxpool.Pool
}

// NewPostgresSubmissionStore connects a pool, runs embedded migrations, and
// returns a ready store.
func NewPostgresSubmissionStore(ctx context.Context, dsn string) (*PostgresSubmissionStore, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("%w: parse dsn: %v", ErrStorage, err)
	}
	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("%w: connect: %v", ErrStorage, err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("%w: ping: %v", ErrStorage, err)
	}
	s := &PostgresSubmissionStore{pool: pool}
	if err := s.migrate(); err != nil {
		pool.Close()
		return nil, err
	}
	return s, nil
}

// migrate applies the embedded goose migrations through a database/sql shim
// over the pool's connection config.
func (s *PostgresSubmissionStore) migrate() error {
	db := stdlib.OpenDB(*s.pool.Config().ConnConfig)
	defer func() { _ = db.Close() }()

	goose.SetBaseFS(migrations.FS)
	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("%w: goose dialect: %v", ErrStorage, err)
	}
	if err := goose.Up(db, "."); err != nil {
		return fmt.Errorf("%w: migrate: %v", ErrStorage, err)
	}
	return nil
}

// Close releases the connection pool.
func (s *PostgresSubmissionStore) Close() { s.pool.Close() }

// Insert stores a new submission record.
func (s *PostgresSubmissionStore) Insert(ctx context.Context, sub model.Submission) error {
	const q = `
		INSERT INTO submissions (id, task_id, user_id, user_name, file_path, score, submitted_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`
	_, err := s.pool.Exec(ctx, q,
		sub.ID, sub.TaskID, sub.UserID, sub.UserName, sub.FilePath, sub.Score, sub.SubmittedAt.UTC())
	if err != nil {
		return fmt.Errorf("%w: insert submission: %v", ErrStorage, err)
	}
	return nil
}

// CountSince counts a user's submissions for a task at or after since.
func (s *PostgresSubmissionStore) CountSince(ctx context.Context, taskID, userID string, since time.Time) (int, error) {
	const q = `
		SELECT count(*) FROM submissions
		WHERE task_id = $1 AND user_id = $2 AND submitted_at >= $3`
	var n int
	if err := s.pool.QueryRow(ctx, q, taskID, userID, since.UTC()).Scan(&n); err != nil {
		return 0, fmt.Errorf("%w: count submissions: %v", ErrStorage, err)
	}
	return n, nil
}

// ListScored returns all scored submissions for a task in submission order.
func (s *PostgresSubmissionStore) ListScored(ctx context.Context, taskID string) ([]model.Submission, error) {
	const q = `
		SELECT id, task_id, user_id, user_name, file_path, score, submitted_at
		FROM submissions
		WHERE task_id = $1 AND score IS NOT NULL
		ORDER BY submitted_at, id`
	rows, err := s.pool.Query(ctx, q, taskID)
	if err != nil {
		return nil, fmt.Errorf("%w: list submissions: %v", ErrStorage, err)
	}
	defer rows.Close()

	var out []model.Submission
	for rows.Next() {
		var sub model.Submission
		if err := rows.Scan(&sub.ID, &sub.TaskID, &sub.UserID, &sub.UserName,
			&sub.FilePath, &sub.Score, &sub.SubmittedAt); err != nil {
			return nil, fmt.Errorf("%w: scan submission: %v", ErrStorage, err)
		}
		out = append(out, sub)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: read submissions: %v", ErrStorage, err)
	}
	return out, nil
}

var _ SubmissionStore = (*PostgresSubmissionStore)(nil)
