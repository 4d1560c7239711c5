// Package storage defines the external collaborator stores the scoring core
// reads and writes: task metadata, blobs, and submission records.
package storage

import (
	"context"
	"time"

	"github.com/okian/podium/internal/domain/model"
)

// TaskStore reads competition task metadata. The core never writes tasks.
type TaskStore interface {
	// Get returns the task with the given id, or ErrTaskNotFound.
	Get(ctx context.Context, id string) (model.Task, error)
}

// BlobStore persists raw file content: answer files and accepted submission
// files. Failures are infrastructure faults and surface as ErrStorage.
type BlobStore interface {
	// Download returns the bytes stored at path, or ErrBlobNotFound.
	Download(ctx context.Context, path string) ([]byte, error)

	// Upload stores data at path with the given content type.
	Upload(ctx context.Context, path string, data []byte, contentType string) error
}

// SubmissionStore persists submission records. Records are append-only.
type SubmissionStore interface {
	// Insert stores a new submission record.
	Insert(ctx context.Context, sub model.Submission) error

	// CountSince counts a user's submissions for a task at or after since.
	CountSince(ctx context.Context, taskID, userID string, since time.Time) (int, error)

	// ListScored returns all scored submissions for a task, with user
	// display fields populated, in submission order.
	ListScored(ctx context.Context, taskID string) ([]model.Submission, error)
}
