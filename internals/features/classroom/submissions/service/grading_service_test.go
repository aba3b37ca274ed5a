package service

import (
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func hundredPointRubric() []GradableCriterion {
	return []GradableCriterion{
		{ID: uuid.New(), Points: 30}, // clarity
		{ID: uuid.New(), Points: 30}, // correctness
		{ID: uuid.New(), Points: 20}, // grammar
		{ID: uuid.New(), Points: 20}, // formatting
	}
}

func TestAggregateScores_SumsAwardedPoints(t *testing.T) {
	criteria := hundredPointRubric()
	scores := map[uuid.UUID]float64{
		criteria[0].ID: 25,
		criteria[1].ID: 30,
		criteria[2].ID: 20,
		criteria[3].ID: 15,
	}

	grade, err := AggregateScores(criteria, scores)
	require.NoError(t, err)
	assert.InDelta(t, 90.0, grade, 1e-9)
}

func TestAggregateScores_BoundsHoldByConstruction(t *testing.T) {
	criteria := hundredPointRubric()

	zeros := map[uuid.UUID]float64{}
	full := map[uuid.UUID]float64{}
	for _, cr := range criteria {
		zeros[cr.ID] = 0
		full[cr.ID] = cr.Points
	}

	low, err := AggregateScores(criteria, zeros)
	require.NoError(t, err)
	assert.Zero(t, low)

	high, err := AggregateScores(criteria, full)
	require.NoError(t, err)
	assert.InDelta(t, 100.0, high, 1e-9)
}

func TestAggregateScores_RejectsUnknownCriterion(t *testing.T) {
	criteria := hundredPointRubric()
	scores := map[uuid.UUID]float64{
		criteria[0].ID: 30,
		criteria[1].ID: 30,
		criteria[2].ID: 20,
		criteria[3].ID: 20,
		uuid.New():     10, // not part of the rubric
	}

	_, err := AggregateScores(criteria, scores)
	require.Error(t, err)

	var se *ScoreError
	require.True(t, errors.As(err, &se))
	assert.Contains(t, se.Error(), "not part of this assignment's rubric")
}

func TestAggregateScores_RejectsMissingCriterion(t *testing.T) {
	criteria := hundredPointRubric()
	scores := map[uuid.UUID]float64{
		criteria[0].ID: 30,
	}

	_, err := AggregateScores(criteria, scores)
	require.Error(t, err)

	var se *ScoreError
	require.True(t, errors.As(err, &se))
	assert.Len(t, se.Problems, 3)
}

func TestAggregateScores_RejectsOutOfRangeScores(t *testing.T) {
	criteria := hundredPointRubric()

	over := map[uuid.UUID]float64{}
	for _, cr := range criteria {
		over[cr.ID] = cr.Points
	}
	over[criteria[0].ID] = criteria[0].Points + 1

	_, err := AggregateScores(criteria, over)
	require.Error(t, err)

	under := map[uuid.UUID]float64{}
	for _, cr := range criteria {
		under[cr.ID] = 0
	}
	under[criteria[2].ID] = -0.5

	_, err = AggregateScores(criteria, under)
	require.Error(t, err)
}
