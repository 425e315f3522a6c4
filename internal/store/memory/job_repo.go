package memory

import (
	"context"
	"sync"

	"github.com/jlf119/app-cad-compliance/internal/domain"
	"github.com/jlf119/app-cad-compliance/internal/store"
)

// Ensure JobRepository implements store.JobRepository.
var _ store.JobRepository = (*JobRepository)(nil)

// JobRepository is the default in-process job store. State lives only for
// the lifetime of the process; multi-instance deployments need the Redis
// implementation instead.
type JobRepository struct {
	mu   sync.RWMutex
	jobs map[string]*domain.TranslationJob
}

// NewJobRepository creates an empty in-memory job store.
func NewJobRepository() *JobRepository {
	return &JobRepository{
		jobs: make(map[string]*domain.TranslationJob),
	}
}

func (r *JobRepository) Put(ctx context.Context, job *domain.TranslationJob) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *job
	r.jobs[job.ID] = &cp
	return nil
}

func (r *JobRepository) Get(ctx context.Context, id string) (*domain.TranslationJob, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	job, ok := r.jobs[id]
	if !ok {
		return nil, domain.ErrJobNotFound
	}
	cp := *job
	return &cp, nil
}

func (r *JobRepository) Remove(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.jobs, id)
	return nil
}

// Len returns the number of tracked jobs (for test assertions).
func (r *JobRepository) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.jobs)
}
