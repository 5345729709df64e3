package board

import (
	"log/slog"
	"sync"

	"edluar/pipeline/internal/model"
)

// View names a screen the board can send the user to.
type View string

const (
	ViewInbox     View = "inbox"
	ViewScheduler View = "scheduler"
	ViewJobs      View = "jobs"
)

// Destination is where accepting a prompt leads.
type Destination struct {
	View          View
	ApplicationID string
}

// Navigator switches views.
type Navigator interface {
	Navigate(Destination)
}

// NavigatorFunc adapts a function to Navigator.
type NavigatorFunc func(Destination)

func (f NavigatorFunc) Navigate(d Destination) { f(d) }

// Prompt is the automation prompt currently offered to the user.
type Prompt struct {
	Show          bool
	Action        model.Hint
	ApplicationID string
}

// Message is the question shown for the prompt.
func (p Prompt) Message() string {
	switch p.Action {
	case model.HintOpenInbox:
		return "Candidate moved to phone screen. Open the inbox and send them a message?"
	case model.HintOpenScheduler:
		return "Candidate moved to interview. Open the scheduler to book it?"
	case model.HintJobClosed:
		return "Headcount reached: this job has been closed automatically."
	}
	return ""
}

// DestinationFor maps a hint to the view accepting it opens. Inbox and
// scheduler are pre-seeded with the application.
func DestinationFor(h model.Hint, applicationID string) (Destination, bool) {
	switch h {
	case model.HintOpenInbox:
		return Destination{View: ViewInbox, ApplicationID: applicationID}, true
	case model.HintOpenScheduler:
		return Destination{View: ViewScheduler, ApplicationID: applicationID}, true
	case model.HintJobClosed:
		return Destination{View: ViewJobs}, true
	}
	return Destination{}, false
}

// HintResolver holds at most one prompt. A hint arriving while a prompt is
// shown is dropped; the first prompt stays until accepted or declined.
type HintResolver struct {
	mu     sync.Mutex
	prompt Prompt
	nav    Navigator
	log    *slog.Logger
}

// NewHintResolver returns a resolver navigating through nav (may be nil).
func NewHintResolver(nav Navigator, logger *slog.Logger) *HintResolver {
	if logger == nil {
		logger = slog.Default()
	}
	return &HintResolver{nav: nav, log: logger.With("component", "hints")}
}

// Offer shows a prompt for h. It reports false when h is empty or unknown,
// or when another prompt is already shown.
func (r *HintResolver) Offer(h model.Hint, applicationID string) bool {
	if _, ok := DestinationFor(h, applicationID); !ok {
		return false
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.prompt.Show {
		r.log.Info("prompt already shown, dropping hint",
			"shown", r.prompt.Action, "dropped", h, "applicationId", applicationID)
		return false
	}
	r.prompt = Prompt{Show: true, Action: h, ApplicationID: applicationID}
	return true
}

// Current returns the live prompt; Show is false when there is none.
func (r *HintResolver) Current() Prompt {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.prompt
}

// Accept dismisses the prompt and navigates to its destination.
func (r *HintResolver) Accept() (Destination, bool) {
	r.mu.Lock()
	p := r.prompt
	r.prompt = Prompt{}
	r.mu.Unlock()

	if !p.Show {
		return Destination{}, false
	}
	dest, _ := DestinationFor(p.Action, p.ApplicationID)
	if r.nav != nil {
		r.nav.Navigate(dest)
	}
	return dest, true
}

// Decline dismisses the prompt with no other effect.
func (r *HintResolver) Decline() {
	r.mu.Lock()
	r.prompt = Prompt{}
	r.mu.Unlock()
}
