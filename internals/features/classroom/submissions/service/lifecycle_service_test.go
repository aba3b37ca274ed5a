package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	model "classku_backend/internals/features/classroom/submissions/model"
)

func TestTransition_ForwardPath(t *testing.T) {
	s, err := Transition(model.SubmissionStatusSubmitted, model.SubmissionStatusGraded)
	require.NoError(t, err)
	assert.Equal(t, model.SubmissionStatusGraded, s)

	s, err = Transition(s, model.SubmissionStatusReturned)
	require.NoError(t, err)
	assert.Equal(t, model.SubmissionStatusReturned, s)
}

func TestTransition_RegradeEdge(t *testing.T) {
	s, err := Transition(model.SubmissionStatusGraded, model.SubmissionStatusGraded)
	require.NoError(t, err)
	assert.Equal(t, model.SubmissionStatusGraded, s)
}

func TestTransition_NeverRegresses(t *testing.T) {
	regressions := []struct {
		from, to model.SubmissionStatus
	}{
		{model.SubmissionStatusGraded, model.SubmissionStatusSubmitted},
		{model.SubmissionStatusReturned, model.SubmissionStatusSubmitted},
		{model.SubmissionStatusReturned, model.SubmissionStatusGraded},
	}
	for _, tc := range regressions {
		got, err := Transition(tc.from, tc.to)
		require.Error(t, err, "%s -> %s must be rejected", tc.from, tc.to)
		assert.Equal(t, tc.from, got, "a rejected move must not change the status")

		var te *TransitionError
		require.ErrorAs(t, err, &te)
		assert.Equal(t, tc.from, te.From)
		assert.Equal(t, tc.to, te.To)
	}
}

func TestTransition_NoSkippingAhead(t *testing.T) {
	_, err := Transition(model.SubmissionStatusSubmitted, model.SubmissionStatusReturned)
	require.Error(t, err)
}

func TestIsTerminal(t *testing.T) {
	assert.False(t, IsTerminal(model.SubmissionStatusSubmitted))
	assert.False(t, IsTerminal(model.SubmissionStatusGraded))
	assert.True(t, IsTerminal(model.SubmissionStatusReturned))
}
