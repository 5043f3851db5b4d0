package models

// Status tracks a submission through the review lifecycle.
type Status string

// Lifecycle states. Pending is the initial state; none of the others is
// terminal, since a trainer may resubmit feedback at any time.
const (
	StatusPending         Status = "pending"
	StatusAIEvaluated     Status = "ai-evaluated"
	StatusTrainerReviewed Status = "trainer-reviewed"
	StatusApproved        Status = "approved"
)

// StatusEvent is something that happened to a submission which may move it
// through the lifecycle.
type StatusEvent string

const (
	// EventAIEvaluated fires when the AI pipeline delivers an evaluation.
	EventAIEvaluated StatusEvent = "ai-evaluated"
	// EventFeedbackApproved fires when a trainer submits approving feedback.
	EventFeedbackApproved StatusEvent = "feedback-approved"
	// EventFeedbackRevision fires when a trainer requests another attempt.
	EventFeedbackRevision StatusEvent = "feedback-revision"
)

// Transition returns the status a submission moves to when the event occurs.
// The event fully determines the next state: trainer feedback re-applies its
// two-way rule regardless of the current status, so an approved submission can
// drop back to trainer-reviewed on a later revision request.
func (s Status) Transition(event StatusEvent) Status {
	switch event {
	case EventAIEvaluated:
		return StatusAIEvaluated
	case EventFeedbackApproved:
		return StatusApproved
	case EventFeedbackRevision:
		return StatusTrainerReviewed
	default:
		return s
	}
}

// FeedbackEvent maps a trainer's approved flag onto the lifecycle event it
// triggers.
func FeedbackEvent(approved bool) StatusEvent {
	if approved {
		return EventFeedbackApproved
	}
	return EventFeedbackRevision
}
