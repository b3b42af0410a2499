package reactions

import (
	"errors"

	"github.com/google/uuid"
)

// Rejection reasons surfaced by the decision procedure and the store.
var (
	// ErrAlreadyAssigned means the user already holds the requested kind on
	// this subject; resubmission is a no-op client error.
	ErrAlreadyAssigned = errors.New("reaction already assigned")
	// ErrNoAssignment means a removal was requested where no assignment exists.
	ErrNoAssignment = errors.New("no reaction assignment found")
	// ErrConflict means a concurrent request won the race for the uniqueness
	// constraint; the caller lost and may retry.
	ErrConflict = errors.New("concurrent reaction conflict")
)

// OutcomeKind enumerates what the persistence layer must do.
type OutcomeKind int

const (
	// OutcomeInsert creates a new assignment row.
	OutcomeInsert OutcomeKind = iota
	// OutcomeReplace atomically removes the old assignment and inserts the
	// new one, delete before insert.
	OutcomeReplace
	// OutcomeRejected performs no mutation; Reason carries why.
	OutcomeRejected
)

func (k OutcomeKind) String() string {
	switch k {
	case OutcomeInsert:
		return "insert"
	case OutcomeReplace:
		return "replace"
	case OutcomeRejected:
		return "rejected"
	default:
		return "unknown"
	}
}

// Outcome is the decision for one assignReaction call.
type Outcome struct {
	Kind      OutcomeKind
	NewKindID uuid.UUID
	OldKindID uuid.UUID
	Reason    error
}

// Decide is the reaction assignment decision procedure. Given the requested
// kind and the user's current assignment for the subject (nil when absent),
// it decides whether the store must insert, replace, or reject.
//
// The requested kind is assumed to reference a valid catalog entry; the store
// checks that before calling Decide.
func Decide(requestedKindID uuid.UUID, existing *ReactionAssignment) Outcome {
	if existing == nil {
		return Outcome{Kind: OutcomeInsert, NewKindID: requestedKindID}
	}
	if existing.ReactionKindID == requestedKindID {
		return Outcome{Kind: OutcomeRejected, Reason: ErrAlreadyAssigned}
	}
	return Outcome{
		Kind:      OutcomeReplace,
		OldKindID: existing.ReactionKindID,
		NewKindID: requestedKindID,
	}
}
