package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/jlf119/app-cad-compliance/internal/domain"
	"github.com/jlf119/app-cad-compliance/internal/store"
)

var _ store.JobRepository = (*JobRepository)(nil)

const (
	jobKeyPrefix = "cadgw:job:"

	// Records expire eventually even if a caller abandons a job and the
	// webhook never arrives.
	jobTTL = 24 * time.Hour
)

// JobRepository is a Redis-backed job store for deployments running more
// than one gateway instance, so webhooks and polls landing on different
// instances observe the same record.
type JobRepository struct {
	client *goredis.Client
}

// NewJobRepository creates a Redis-backed job store.
func NewJobRepository(client *goredis.Client) *JobRepository {
	return &JobRepository{client: client}
}

func (r *JobRepository) Put(ctx context.Context, job *domain.TranslationJob) error {
	data, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("redis: marshal job: %w", err)
	}
	if err := r.client.Set(ctx, jobKeyPrefix+job.ID, data, jobTTL).Err(); err != nil {
		return fmt.Errorf("redis: put job: %w", err)
	}
	return nil
}

func (r *JobRepository) Get(ctx context.Context, id string) (*domain.TranslationJob, error) {
	data, err := r.client.Get(ctx, jobKeyPrefix+id).Bytes()
	if err == goredis.Nil {
		return nil, domain.ErrJobNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("redis: get job: %w", err)
	}
	job := &domain.TranslationJob{}
	if err := json.Unmarshal(data, job); err != nil {
		return nil, fmt.Errorf("redis: unmarshal job: %w", err)
	}
	return job, nil
}

func (r *JobRepository) Remove(ctx context.Context, id string) error {
	if err := r.client.Del(ctx, jobKeyPrefix+id).Err(); err != nil {
		return fmt.Errorf("redis: remove job: %w", err)
	}
	return nil
}
