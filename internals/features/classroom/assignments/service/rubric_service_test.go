package service

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func essayRubric() []RubricSection {
	return []RubricSection{
		{
			Title:  "Content",
			Points: 60,
			Criteria: []RubricCriterion{
				{Description: "Clarity", Points: 30},
				{Description: "Correctness", Points: 30},
			},
		},
		{
			Title:  "Style",
			Points: 40,
			Criteria: []RubricCriterion{
				{Description: "Grammar", Points: 20},
				{Description: "Formatting", Points: 20},
			},
		},
	}
}

func TestValidateRubric_DerivesTotalFromSections(t *testing.T) {
	total, err := ValidateRubric(essayRubric())
	require.NoError(t, err)
	assert.InDelta(t, 100.0, total, 1e-9)
}

func TestValidateRubric_RejectsEmptyRubric(t *testing.T) {
	_, err := ValidateRubric(nil)
	require.Error(t, err)

	var ve *ValidationError
	require.True(t, errors.As(err, &ve))
	assert.Contains(t, ve.Problems[0], "at least one section")
}

func TestValidateRubric_RejectsSectionWithoutCriteria(t *testing.T) {
	rubric := []RubricSection{{Title: "Content", Points: 10}}
	_, err := ValidateRubric(rubric)
	require.Error(t, err)

	var ve *ValidationError
	require.True(t, errors.As(err, &ve))
	assert.Contains(t, ve.Error(), "at least one criterion")
}

func TestValidateRubric_RejectsSectionSumMismatch(t *testing.T) {
	rubric := essayRubric()
	rubric[0].Points = 55 // criteria still sum to 60

	_, err := ValidateRubric(rubric)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "section[0]")
}

func TestValidateRubric_RejectsNegativePoints(t *testing.T) {
	rubric := essayRubric()
	rubric[1].Criteria[0].Points = -5
	rubric[1].Points = 15

	_, err := ValidateRubric(rubric)
	require.Error(t, err)
}

func TestValidateRubric_RejectsBlankTitlesAndDescriptions(t *testing.T) {
	rubric := essayRubric()
	rubric[0].Title = "   "
	rubric[1].Criteria[1].Description = ""

	_, err := ValidateRubric(rubric)
	require.Error(t, err)

	var ve *ValidationError
	require.True(t, errors.As(err, &ve))
	assert.Len(t, ve.Problems, 2)
}

func TestValidateRubric_CollectsEveryProblem(t *testing.T) {
	rubric := []RubricSection{
		{Title: "", Points: -1},
	}
	_, err := ValidateRubric(rubric)
	require.Error(t, err)

	var ve *ValidationError
	require.True(t, errors.As(err, &ve))
	assert.GreaterOrEqual(t, len(ve.Problems), 3)
}

func TestParseRubricJSON_RoundTrip(t *testing.T) {
	doc := []byte(`{
		"sections": [
			{"title": "Content", "points": 60, "criteria": [
				{"description": "Clarity", "points": 30},
				{"description": "Correctness", "points": 30}
			]},
			{"title": "Style", "points": 40, "criteria": [
				{"description": "Grammar", "points": 20},
				{"description": "Formatting", "points": 20}
			]}
		]
	}`)

	sections, total, err := ParseRubricJSON(doc)
	require.NoError(t, err)
	assert.InDelta(t, 100.0, total, 1e-9)
	require.Len(t, sections, 2)
	assert.Equal(t, "Style", sections[1].Title)
	assert.Len(t, sections[1].Criteria, 2)
}

func TestParseRubricJSON_MalformedDocument(t *testing.T) {
	cases := map[string][]byte{
		"broken json":    []byte(`{"sections": [`),
		"unknown fields": []byte(`{"sections": [], "weight": 2}`),
		"trailing data":  []byte(`{"sections": []} {"again": true}`),
		"wrong type":     []byte(`{"sections": "nope"}`),
	}
	for name, doc := range cases {
		t.Run(name, func(t *testing.T) {
			_, _, err := ParseRubricJSON(doc)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrMalformedRubric), "expected a malformed-document error")
		})
	}
}

func TestParseRubricJSON_StructurallyInvalidIsNotMalformed(t *testing.T) {
	doc := []byte(`{"sections": [{"title": "Content", "points": 10, "criteria": [
		{"description": "Clarity", "points": 5}
	]}]}`)

	_, _, err := ParseRubricJSON(doc)
	require.Error(t, err)
	assert.False(t, errors.Is(err, ErrMalformedRubric))

	var ve *ValidationError
	assert.True(t, errors.As(err, &ve))
}
