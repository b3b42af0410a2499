package reactions

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecideInsertWhenNoAssignment(t *testing.T) {
	kindID := uuid.New()

	outcome := Decide(kindID, nil)

	assert.Equal(t, OutcomeInsert, outcome.Kind)
	assert.Equal(t, kindID, outcome.NewKindID)
	assert.Equal(t, uuid.Nil, outcome.OldKindID)
	assert.NoError(t, outcome.Reason)
}

func TestDecideRejectsSameKind(t *testing.T) {
	kindID := uuid.New()
	existing := &ReactionAssignment{ReactionKindID: kindID}

	outcome := Decide(kindID, existing)

	assert.Equal(t, OutcomeRejected, outcome.Kind)
	require.Error(t, outcome.Reason)
	assert.ErrorIs(t, outcome.Reason, ErrAlreadyAssigned)
}

func TestDecideReplacesDifferentKind(t *testing.T) {
	oldKind := uuid.New()
	newKind := uuid.New()
	existing := &ReactionAssignment{ReactionKindID: oldKind}

	outcome := Decide(newKind, existing)

	assert.Equal(t, OutcomeReplace, outcome.Kind)
	assert.Equal(t, oldKind, outcome.OldKindID)
	assert.Equal(t, newKind, outcome.NewKindID)
	assert.NoError(t, outcome.Reason)
}

func TestDecideIsPure(t *testing.T) {
	kindID := uuid.New()
	existing := &ReactionAssignment{ReactionKindID: uuid.New()}
	before := *existing

	Decide(kindID, existing)

	assert.Equal(t, before, *existing, "Decide must not mutate its input")
}

func TestOutcomeKindString(t *testing.T) {
	assert.Equal(t, "insert", OutcomeInsert.String())
	assert.Equal(t, "replace", OutcomeReplace.String())
	assert.Equal(t, "rejected", OutcomeRejected.String())
	assert.Equal(t, "unknown", OutcomeKind(99).String())
}

func TestSubjectTypeValid(t *testing.T) {
	assert.True(t, SubjectArticle.Valid())
	assert.True(t, SubjectComment.Valid())
	assert.False(t, SubjectType("post").Valid())
	assert.False(t, SubjectType("").Valid())
}
