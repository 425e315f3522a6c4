package domain

import (
	"errors"
	"testing"
)

func TestValidate_ReportsAllMissing(t *testing.T) {
	src := ModelSource{PartID: "P1"}

	err := src.Validate()
	var valErr *ValidationError
	if !errors.As(err, &valErr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if len(valErr.Missing) != 3 {
		t.Errorf("expected all three required params reported, got %v", valErr.Missing)
	}
}

func TestValidate_Complete(t *testing.T) {
	src := ModelSource{DocumentID: "D1", WorkspaceID: "W1", ElementID: "E1"}
	if err := src.Validate(); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestIsAssembly(t *testing.T) {
	if (ModelSource{PartID: "P1"}).IsAssembly() {
		t.Error("part export must not be an assembly export")
	}
	if !(ModelSource{}).IsAssembly() {
		t.Error("export without a part id is an assembly export")
	}
}

func TestPhaseTerminal(t *testing.T) {
	for _, p := range []Phase{PhaseSubmitted, PhaseInProgress, PhaseCompletedByWebhook} {
		if p.IsTerminal() {
			t.Errorf("%s must not be terminal", p)
		}
	}
	for _, p := range []Phase{PhaseDone, PhaseFailed} {
		if !p.IsTerminal() {
			t.Errorf("%s must be terminal", p)
		}
	}
}
