package tracker

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/jlf119/app-cad-compliance/internal/domain"
	"github.com/jlf119/app-cad-compliance/internal/metrics"
	"github.com/jlf119/app-cad-compliance/internal/onshape"
	"github.com/jlf119/app-cad-compliance/internal/store"
)

// UpstreamClient is the slice of the Onshape client the tracker needs.
type UpstreamClient interface {
	CreateTranslation(ctx context.Context, cred onshape.Credential, src domain.ModelSource) (*onshape.TranslationAcceptance, error)
	GetTranslation(ctx context.Context, cred onshape.Credential, id string) (*onshape.TranslationStatus, error)
	DownloadExternalData(ctx context.Context, cred onshape.Credential, loc domain.ResultLocation) (*onshape.Response, error)
}

// Tracker orchestrates translation jobs: submission, status reconciliation
// from the racing poll and webhook signals, and at-most-once artifact
// delivery. The single source of truth for completion is always the
// upstream status endpoint; the webhook only shortcuts a future poll's
// bookkeeping.
type Tracker struct {
	client UpstreamClient
	repo   store.JobRepository
	locks  *keyedMutex
	logger *zap.Logger
}

// New creates a Tracker backed by the given upstream client and job store.
func New(client UpstreamClient, repo store.JobRepository, logger *zap.Logger) *Tracker {
	return &Tracker{
		client: client,
		repo:   repo,
		locks:  newKeyedMutex(),
		logger: logger,
	}
}

// Submit sends a translation job upstream and records it as in progress.
// On upstream rejection no record is created and the error carries the
// upstream status and body for passthrough. The raw acceptance JSON is
// returned so callers see exactly what upstream said.
func (t *Tracker) Submit(ctx context.Context, cred onshape.Credential, src domain.ModelSource) (*onshape.TranslationAcceptance, error) {
	if err := src.Validate(); err != nil {
		return nil, err
	}

	accepted, err := t.client.CreateTranslation(ctx, cred, src)
	if err != nil {
		return nil, err
	}
	if accepted.ID == "" {
		// Accepted without an ID: nothing to track, nothing to poll.
		t.logger.Warn("Upstream accepted translation without an id")
		return accepted, nil
	}

	now := time.Now().UTC()
	job := &domain.TranslationJob{
		ID:        accepted.ID,
		Phase:     domain.PhaseInProgress,
		Source:    src,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := t.repo.Put(ctx, job); err != nil {
		t.logger.Error("Failed to record translation job", zap.Error(err), zap.String("job_id", job.ID))
		return nil, fmt.Errorf("record job: %w", err)
	}
	metrics.TranslationsInFlight.Inc()

	t.logger.Info("Translation submitted",
		zap.String("job_id", job.ID),
		zap.String("document_id", src.DocumentID),
		zap.Bool("assembly", src.IsAssembly()),
	)
	return accepted, nil
}

// Poll reconciles one job against the upstream status endpoint and, once
// the job is done, delivers its artifact exactly once. Outcomes:
//
//   - domain.ErrJobNotFound: unknown or already resolved ID
//   - domain.ErrJobInProgress: upstream has not finished yet
//   - *domain.JobFailedError: upstream reported FAILED; record removed
//   - domain.ErrMissingResultInfo: upstream reported DONE without a result
//     locator; record removed
//   - artifact + nil: delivered; record removed, a repeat poll sees
//     ErrJobNotFound
//
// The record is removed whether or not the artifact download succeeds, so
// a failed download is reported once and never silently retried.
func (t *Tracker) Poll(ctx context.Context, cred onshape.Credential, id string) (*domain.Artifact, error) {
	t.locks.Lock(id)
	defer t.locks.Unlock(id)

	job, err := t.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	// A record persisted as DONE already carries its result locator;
	// otherwise upstream is the authority, webhook hint or not.
	if job.Phase == domain.PhaseDone && job.Result != nil {
		return t.deliver(ctx, cred, job.ID, *job.Result)
	}

	status, err := t.client.GetTranslation(ctx, cred, id)
	if err != nil {
		return nil, err
	}

	switch status.RequestState {
	case onshape.RequestStateFailed:
		t.forget(ctx, id)
		metrics.TranslationsTotal.WithLabelValues("failed").Inc()
		t.logger.Info("Translation failed upstream",
			zap.String("job_id", id), zap.String("reason", status.FailureReason))
		return nil, &domain.JobFailedError{Reason: status.FailureReason}

	case onshape.RequestStateDone:
		if status.DocumentID == "" || len(status.ResultExternalDataIDs) == 0 {
			t.forget(ctx, id)
			metrics.TranslationsTotal.WithLabelValues("protocol_violation").Inc()
			t.logger.Error("Upstream reported DONE without result info", zap.String("job_id", id))
			return nil, domain.ErrMissingResultInfo
		}
		loc := domain.ResultLocation{
			DocumentID:     status.DocumentID,
			ExternalDataID: status.ResultExternalDataIDs[0],
		}
		job.Phase = domain.PhaseDone
		job.Result = &loc
		job.UpdatedAt = time.Now().UTC()
		if err := t.repo.Put(ctx, job); err != nil {
			t.logger.Warn("Failed to persist DONE phase", zap.Error(err), zap.String("job_id", id))
		}
		return t.deliver(ctx, cred, id, loc)

	default:
		return nil, domain.ErrJobInProgress
	}
}

// deliver downloads the artifact and removes the record unconditionally.
func (t *Tracker) deliver(ctx context.Context, cred onshape.Credential, id string, loc domain.ResultLocation) (*domain.Artifact, error) {
	defer t.forget(ctx, id)

	resp, err := t.client.DownloadExternalData(ctx, cred, loc)
	if err != nil {
		metrics.TranslationsTotal.WithLabelValues("download_failed").Inc()
		t.logger.Error("Artifact download failed", zap.Error(err), zap.String("job_id", id))
		return nil, err
	}

	contentType := resp.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	metrics.TranslationsTotal.WithLabelValues("delivered").Inc()
	t.logger.Info("Artifact delivered",
		zap.String("job_id", id), zap.Int("bytes", len(resp.Body)))
	return &domain.Artifact{ContentType: contentType, Data: resp.Body}, nil
}

// forget removes a job record; removal is idempotent and final.
func (t *Tracker) forget(ctx context.Context, id string) {
	if err := t.repo.Remove(ctx, id); err != nil {
		t.logger.Warn("Failed to remove job record", zap.Error(err), zap.String("job_id", id))
		return
	}
	metrics.TranslationsInFlight.Dec()
}

// Status returns the current record for a job without contacting upstream
// and without side effects. Used by the phase stream.
func (t *Tracker) Status(ctx context.Context, id string) (*domain.TranslationJob, error) {
	return t.repo.Get(ctx, id)
}

// HandleWebhook applies a completion notification. The webhook is a hint:
// it flips the phase so observers see progress, but never downloads data
// and never creates records. Unknown IDs are ignored, the job may belong
// to another instance or be resolved already.
func (t *Tracker) HandleWebhook(ctx context.Context, event domain.WebhookEvent) error {
	if event.Event != domain.EventTranslationComplete || event.TranslationID == "" {
		metrics.WebhooksTotal.WithLabelValues("ignored").Inc()
		return nil
	}

	id := event.TranslationID
	t.locks.Lock(id)
	defer t.locks.Unlock(id)

	job, err := t.repo.Get(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrJobNotFound) {
			metrics.WebhooksTotal.WithLabelValues("unknown").Inc()
			t.logger.Debug("Webhook for unknown translation", zap.String("job_id", id))
			return nil
		}
		return err
	}
	if job.Phase.IsTerminal() {
		metrics.WebhooksTotal.WithLabelValues("ignored").Inc()
		return nil
	}

	job.Phase = domain.PhaseCompletedByWebhook
	job.WebhookID = event.WebhookID
	job.UpdatedAt = time.Now().UTC()
	if err := t.repo.Put(ctx, job); err != nil {
		return fmt.Errorf("record webhook: %w", err)
	}
	metrics.WebhooksTotal.WithLabelValues("applied").Inc()
	t.logger.Info("Webhook completion recorded", zap.String("job_id", id))
	return nil
}
