package model

import "fmt"

// Hint is a server-supplied suggestion for a follow-up action after a stage
// change. The empty Hint means "nothing to suggest".
type Hint string

const (
	HintNone          Hint = ""
	HintOpenInbox     Hint = "OPEN_INBOX"
	HintOpenScheduler Hint = "OPEN_SCHEDULER_MODAL"
	HintJobClosed     Hint = "JOB_CLOSED"
)

// ParseHint accepts the three hint names and the empty string.
func ParseHint(s string) (Hint, error) {
	h := Hint(s)
	switch h {
	case HintNone, HintOpenInbox, HintOpenScheduler, HintJobClosed:
		return h, nil
	}
	return "", fmt.Errorf("unknown automation hint %q", s)
}

// HintFor returns the hint for entering stage to. Headcount closure is
// decided by the store and overrides this.
func HintFor(to Status) Hint {
	switch to {
	case StatusPhoneScreen:
		return HintOpenInbox
	case StatusInterview:
		return HintOpenScheduler
	}
	return HintNone
}
