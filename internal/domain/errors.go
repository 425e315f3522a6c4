package domain

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrJobNotFound is returned when no record exists for a job ID,
	// including after a job has been resolved and cleaned up.
	ErrJobNotFound = errors.New("translation job not found")

	// ErrJobInProgress signals that the upstream service has not finished
	// the translation yet. It is a liveness signal, not a failure.
	ErrJobInProgress = errors.New("translation still in progress")

	// ErrMissingResultInfo is returned when upstream reports DONE but
	// omits the result document or external data ID. The job is failed
	// rather than guessed at.
	ErrMissingResultInfo = errors.New("upstream reported completion without result info")
)

// ValidationError reports caller parameters that are missing or malformed.
type ValidationError struct {
	Missing []string
}

func (e *ValidationError) Error() string {
	return "missing required parameters: " + strings.Join(e.Missing, ", ")
}

// JobFailedError carries the failure reason the upstream service reported
// for a translation that ended in FAILED.
type JobFailedError struct {
	Reason string
}

func (e *JobFailedError) Error() string {
	return fmt.Sprintf("translation failed: %s", e.Reason)
}
