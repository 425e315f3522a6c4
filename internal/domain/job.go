package domain

import "time"

// Phase represents the lifecycle state of a translation job.
type Phase string

const (
	PhaseSubmitted          Phase = "SUBMITTED"
	PhaseInProgress         Phase = "IN_PROGRESS"
	PhaseCompletedByWebhook Phase = "COMPLETED_BY_WEBHOOK"
	PhaseDone               Phase = "DONE"
	PhaseFailed             Phase = "FAILED"
)

// IsTerminal returns true if the phase represents a final state.
func (p Phase) IsTerminal() bool {
	return p == PhaseDone || p == PhaseFailed
}

// ModelSource identifies the CAD object a translation was requested for.
// PartID is empty for assembly exports.
type ModelSource struct {
	DocumentID  string `json:"documentId"`
	WorkspaceID string `json:"workspaceId"`
	ElementID   string `json:"elementId"`
	PartID      string `json:"partId,omitempty"`
}

// Validate checks that all required identifiers are present and returns a
// ValidationError naming every missing one.
func (s ModelSource) Validate() error {
	var missing []string
	if s.DocumentID == "" {
		missing = append(missing, "documentId")
	}
	if s.WorkspaceID == "" {
		missing = append(missing, "workspaceId")
	}
	if s.ElementID == "" {
		missing = append(missing, "gltfElementId")
	}
	if len(missing) > 0 {
		return &ValidationError{Missing: missing}
	}
	return nil
}

// IsAssembly reports whether the export targets a whole assembly element
// rather than individual parts of a part studio.
func (s ModelSource) IsAssembly() bool {
	return s.PartID == ""
}

// ResultLocation points at the converted artifact inside the upstream
// service. Populated only once the translation reaches DONE.
type ResultLocation struct {
	DocumentID     string `json:"documentId"`
	ExternalDataID string `json:"externalDataId"`
}

// TranslationJob is the tracker's knowledge of one in-flight translation.
// ID is the opaque identifier issued by the upstream service on acceptance.
type TranslationJob struct {
	ID            string          `json:"id"`
	Phase         Phase           `json:"phase"`
	Source        ModelSource     `json:"source"`
	WebhookID     string          `json:"webhookId,omitempty"`
	Result        *ResultLocation `json:"result,omitempty"`
	FailureReason string          `json:"failureReason,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

// WebhookEvent is the notification payload the upstream service posts back
// when a translation finishes.
type WebhookEvent struct {
	Event         string `json:"event"`
	TranslationID string `json:"translationId"`
	WebhookID     string `json:"webhookId,omitempty"`
}

// EventTranslationComplete is the upstream event type signalling that a
// translation job finished.
const EventTranslationComplete = "onshape.model.translation.complete"

// Artifact is the downloaded binary result handed back to the caller
// exactly once per job.
type Artifact struct {
	ContentType string
	Data        []byte
}
