package store

import (
	"context"

	"github.com/jlf119/app-cad-compliance/internal/domain"
)

// JobRepository is the injectable store for in-flight translation jobs.
// Implementations must be safe for concurrent use; each operation must be
// individually atomic per job ID. Callers that need read-modify-write
// atomicity (the tracker) serialize those sequences themselves.
type JobRepository interface {
	// Put inserts or replaces the record for job.ID.
	Put(ctx context.Context, job *domain.TranslationJob) error

	// Get retrieves a record by job ID, or domain.ErrJobNotFound.
	Get(ctx context.Context, id string) (*domain.TranslationJob, error)

	// Remove deletes a record. Removing an absent ID is not an error; a
	// record is only ever removed once, later lookups see ErrJobNotFound.
	Remove(ctx context.Context, id string) error
}
