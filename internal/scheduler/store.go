package scheduler

import (
	"context"
	"errors"
	"sync"
)

// ErrJobNotFound is returned by Store.Get for an unknown key.
var ErrJobNotFound = errors.New("job not found")

// Store persists the recurring job set so a process restart can recover
// pending jobs. Delete of an unknown key is not an error.
type Store interface {
	Put(ctx context.Context, job Job) error
	Delete(ctx context.Context, key Key) error
	Get(ctx context.Context, key Key) (Job, error)
	List(ctx context.Context) ([]Job, error)
	Close() error
}

// MemoryStore is a thread-safe in-memory Store for tests and single-run
// deployments without a persistence backend.
type MemoryStore struct {
	mu   sync.RWMutex
	jobs map[Key]Job
}

var _ Store = (*MemoryStore)(nil)

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{jobs: make(map[Key]Job)}
}

// Put upserts a job under its key.
func (m *MemoryStore) Put(_ context.Context, job Job) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.jobs[job.Key()] = job
	return nil
}

// Delete removes a job; unknown keys are ignored.
func (m *MemoryStore) Delete(_ context.Context, key Key) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.jobs, key)
	return nil
}

// Get fetches a job by key.
func (m *MemoryStore) Get(_ context.Context, key Key) (Job, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	job, ok := m.jobs[key]
	if !ok {
		return Job{}, ErrJobNotFound
	}
	return job, nil
}

// List returns every stored job.
func (m *MemoryStore) List(_ context.Context) ([]Job, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]Job, 0, len(m.jobs))
	for _, job := range m.jobs {
		out = append(out, job)
	}
	return out, nil
}

// Close implements Store.
func (m *MemoryStore) Close() error { return nil }
