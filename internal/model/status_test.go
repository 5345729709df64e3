package model_test

import (
	"testing"

	"edluar/pipeline/internal/model"
)

// ── ParseStatus ────────────────────────────────────────────────────────────

func TestParseStatus_ValidValues(t *testing.T) {
	valid := []string{"applied", "phone_screen", "interview", "offer", "hired", "rejected", "withdrawn"}
	for _, s := range valid {
		got, err := model.ParseStatus(s)
		if err != nil {
			t.Errorf("ParseStatus(%q) returned unexpected error: %v", s, err)
		}
		if string(got) != s {
			t.Errorf("ParseStatus(%q) = %q, want %q", s, got, s)
		}
	}
}

func TestParseStatus_Invalid(t *testing.T) {
	for _, s := range []string{"", "UNKNOWN", "APPLIED", " applied", "applied "} {
		if _, err := model.ParseStatus(s); err == nil {
			t.Errorf("ParseStatus(%q) expected error, got nil", s)
		}
	}
}

// ── Active / terminal ──────────────────────────────────────────────────────

func TestIsActive(t *testing.T) {
	tests := []struct {
		status model.Status
		active bool
	}{
		{model.StatusApplied, true},
		{model.StatusPhoneScreen, true},
		{model.StatusInterview, true},
		{model.StatusOffer, true},
		{model.StatusHired, true},
		{model.StatusRejected, false},
		{model.StatusWithdrawn, false},
		{model.Status("archived"), false},
	}
	for _, tt := range tests {
		t.Run(string(tt.status), func(t *testing.T) {
			if got := model.IsActive(tt.status); got != tt.active {
				t.Errorf("IsActive(%q) = %v, want %v", tt.status, got, tt.active)
			}
			if tt.active && model.IsTerminal(tt.status) {
				t.Errorf("IsTerminal(%q) must be false for an active stage", tt.status)
			}
		})
	}
	if !model.IsTerminal(model.StatusRejected) || !model.IsTerminal(model.StatusWithdrawn) {
		t.Error("rejected and withdrawn must be terminal")
	}
}

// ── NextStage ──────────────────────────────────────────────────────────────

func TestNextStage_CanonicalOrder(t *testing.T) {
	cases := []struct {
		from model.Status
		to   model.Status
	}{
		{model.StatusApplied, model.StatusPhoneScreen},
		{model.StatusPhoneScreen, model.StatusInterview},
		{model.StatusInterview, model.StatusOffer},
		{model.StatusOffer, model.StatusHired},
	}
	for _, c := range cases {
		got, ok := model.NextStage(c.from)
		if !ok || got != c.to {
			t.Errorf("NextStage(%s) = %s, %v; want %s, true", c.from, got, ok, c.to)
		}
	}
}

func TestNextStage_NoWrapPastHired(t *testing.T) {
	if got, ok := model.NextStage(model.StatusHired); ok {
		t.Errorf("NextStage(hired) = %s, true; want no next stage", got)
	}
}

func TestNextStage_TerminalHasNoNext(t *testing.T) {
	for _, s := range []model.Status{model.StatusRejected, model.StatusWithdrawn, ""} {
		if got, ok := model.NextStage(s); ok {
			t.Errorf("NextStage(%q) = %s, true; want false", s, got)
		}
	}
}

// ── Hints ──────────────────────────────────────────────────────────────────

func TestHintFor(t *testing.T) {
	want := map[model.Status]model.Hint{
		model.StatusApplied:     model.HintNone,
		model.StatusPhoneScreen: model.HintOpenInbox,
		model.StatusInterview:   model.HintOpenScheduler,
		model.StatusOffer:       model.HintNone,
		model.StatusHired:       model.HintNone,
		model.StatusRejected:    model.HintNone,
	}
	for st, h := range want {
		if got := model.HintFor(st); got != h {
			t.Errorf("HintFor(%s) = %q, want %q", st, got, h)
		}
	}
}

func TestParseHint(t *testing.T) {
	for _, s := range []string{"", "OPEN_INBOX", "OPEN_SCHEDULER_MODAL", "JOB_CLOSED"} {
		if _, err := model.ParseHint(s); err != nil {
			t.Errorf("ParseHint(%q) unexpected error: %v", s, err)
		}
	}
	if _, err := model.ParseHint("OPEN_CALENDAR"); err == nil {
		t.Error("ParseHint(\"OPEN_CALENDAR\") expected error, got nil")
	}
}
