package storage

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/okian/podium/internal/domain/model"
)

// MemoryTaskStore is a map-backed TaskStore, seeded at boot.
type MemoryTaskStore struct {
	mu    sync.RWMutex
	tasks map[string]model.Task
}

// NewMemoryTaskStore creates an empty in-memory task store.
func NewMemoryTaskStore() *MemoryTaskStore {
	return &MemoryTaskStore{tasks: make(map[string]model.Task)}
}

// Put stores or replaces a task. Used by seeding and tests.
func (s *MemoryTaskStore) Put(_ context.Context, t model.Task) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tasks[t.ID] = t
}

// Get returns the task with the given id, or ErrTaskNotFound.
func (s *MemoryTaskStore) Get(_ context.Context, id string) (model.Task, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := s.tasks[id]
	if !ok {
		return model.Task{}, fmt.Errorf("%w: %q", ErrTaskNotFound, id)
	}
	return t, nil
}

// Count returns the number of stored tasks.
func (s *MemoryTaskStore) Count(_ context.Context) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.tasks)
}

// MemoryBlobStore keeps blob content in process memory.
type MemoryBlobStore struct {
	mu    sync.RWMutex
	blobs map[string][]byte
}

// NewMemoryBlobStore creates an empty in-memory blob store.
func NewMemoryBlobStore() *MemoryBlobStore {
	return &MemoryBlobStore{blobs: make(map[string][]byte)}
}

// Download returns the bytes stored at path, or ErrBlobNotFound.
func (s *MemoryBlobStore) Download(_ context.Context, path string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	b, ok := s.blobs[path]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrBlobNotFound, path)
	}
	out := make([]byte, len(b))
	copy(out, b)
	return out, nil
}

// Upload stores data at path. The content type is ignored in memory.
func (s *MemoryBlobStore) Upload(_ context.Context, path string, data []byte, _ string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	b := make([]byte, len(data))
	copy(b, data)
	s.blobs[path] = b
	return nil
}

// MemorySubmissionStore is a slice-backed SubmissionStore.
//
// CountSince followed by Insert is not atomic across callers, matching the
// documented soft-limit semantics of the daily quota.
type MemorySubmissionStore struct {
	mu   sync.RWMutex
	subs []model.Submission
}

// NewMemorySubmissionStore creates an empty in-memory submission store.
func NewMemorySubmissionStore() *MemorySubmissionStore {
	return &MemorySubmissionStore{}
}

// Insert appends a new submission record.
func (s *MemorySubmissionStore) Insert(_ context.Context, sub model.Submission) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.subs = append(s.subs, sub)
	return nil
}

// CountSince counts a user's submissions for a task at or after since.
func (s *MemorySubmissionStore) CountSince(_ context.Context, taskID, userID string, since time.Time) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n := 0
	for _, sub := range s.subs {
		if sub.TaskID == taskID && sub.UserID == userID && !sub.SubmittedAt.Before(since) {
			n++
		}
	}
	return n, nil
}

// ListScored returns all scored submissions for a task in insertion order.
func (s *MemorySubmissionStore) ListScored(_ context.Context, taskID string) ([]model.Submission, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []model.Submission
	for _, sub := range s.subs {
		if sub.TaskID == taskID && sub.Scored() {
			out = append(out, sub)
		}
	}
	return out, nil
}

// Len returns the total number of stored submissions.
func (s *MemorySubmissionStore) Len(_ context.Context) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.subs)
}

// Interface conformance checks.
var (
	_ TaskStore       = (*MemoryTaskStore)(nil)
	_ BlobStore       = (*MemoryBlobStore)(nil)
	_ SubmissionStore = (*MemorySubmissionStore)(nil)
)
