package service

import (
	"fmt"

	model "classku_backend/internals/features/classroom/submissions/model"
)

// TransitionError maps to 409 in the controllers.
type TransitionError struct {
	From model.SubmissionStatus
	To   model.SubmissionStatus
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("cannot move submission from %q to %q", e.From, e.To)
}

// allowed transitions; forward-only, a submission never regresses.
// graded -> graded is the regrade edge and must stay explicit.
var allowedTransitions = map[model.SubmissionStatus][]model.SubmissionStatus{
	model.SubmissionStatusSubmitted: {model.SubmissionStatusGraded},
	model.SubmissionStatusGraded:    {model.SubmissionStatusGraded, model.SubmissionStatusReturned},
	model.SubmissionStatusReturned:  {},
}

// CanTransition reports whether from -> to is a legal lifecycle move.
func CanTransition(from, to model.SubmissionStatus) bool {
	for _, next := range allowedTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// Transition validates the move and returns the new status, or a
// *TransitionError the caller maps to Conflict.
func Transition(from, to model.SubmissionStatus) (model.SubmissionStatus, error) {
	if !CanTransition(from, to) {
		return from, &TransitionError{From: from, To: to}
	}
	return to, nil
}

// IsTerminal reports whether the status admits no further moves.
func IsTerminal(s model.SubmissionStatus) bool {
	return len(allowedTransitions[s]) == 0
}
