// Package model defines the shared data structures of the pipeline: the
// application stage enum, automation hints and the records exchanged between
// the store, the transports and the board.
//
// Stage order used by the quick-advance shortcut:
//
//	applied ──► phone_screen ──► interview ──► offer ──► hired
//
// rejected and withdrawn are terminal and never shown on the board. Direct
// moves between any two stages are allowed; only quick-advance follows the
// order above.
package model

import "fmt"

// Status values mirror the applications.status column.
type Status string

const (
	StatusApplied     Status = "applied"
	StatusPhoneScreen Status = "phone_screen"
	StatusInterview   Status = "interview"
	StatusOffer       Status = "offer"
	StatusHired       Status = "hired"
	StatusRejected    Status = "rejected"
	StatusWithdrawn   Status = "withdrawn"
)

// ActiveStages lists the board columns in display order.
var ActiveStages = []Status{
	StatusApplied,
	StatusPhoneScreen,
	StatusInterview,
	StatusOffer,
	StatusHired,
}

// ParseStatus converts a raw string to a Status, returning an error for
// unknown values.
func ParseStatus(s string) (Status, error) {
	st := Status(s)
	switch st {
	case StatusApplied, StatusPhoneScreen, StatusInterview, StatusOffer,
		StatusHired, StatusRejected, StatusWithdrawn:
		return st, nil
	}
	return "", fmt.Errorf("unknown application status %q", s)
}

// IsActive reports whether s has a board column.
func IsActive(s Status) bool {
	return StageIndex(s) >= 0
}

// IsTerminal reports whether s takes the application off the board.
func IsTerminal(s Status) bool {
	return s == StatusRejected || s == StatusWithdrawn
}

// StageIndex returns the position of s in ActiveStages, or -1.
func StageIndex(s Status) int {
	for i, st := range ActiveStages {
		if st == s {
			return i
		}
	}
	return -1
}

// NextStage returns the stage after s in the canonical order. It returns
// false for hired (nothing beyond it) and for statuses without a column.
func NextStage(s Status) (Status, bool) {
	i := StageIndex(s)
	if i < 0 || i == len(ActiveStages)-1 {
		return "", false
	}
	return ActiveStages[i+1], true
}

// IsHired returns true when status is hired (triggers the headcount check).
func IsHired(s Status) bool { return s == StatusHired }
