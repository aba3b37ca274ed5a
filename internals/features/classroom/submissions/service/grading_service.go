package service

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// GradableCriterion is the slice of the rubric the aggregator needs:
// identity plus the per-criterion point ceiling.
type GradableCriterion struct {
	ID     uuid.UUID
	Points float64
}

// ScoreError collects every problem with a score sheet so the grader can
// fix them in one pass. Maps to 422.
type ScoreError struct {
	Problems []string
}

func (e *ScoreError) Error() string {
	return "invalid scores: " + strings.Join(e.Problems, "; ")
}

// AggregateScores validates a score sheet against the rubric's criteria and
// returns the derived grade (sum of awarded points). Pure.
//
// Rules:
//   - every key in scores must be a rubric criterion of the assignment
//   - every criterion must be scored, none skipped
//   - each score lies in [0, criterion.Points]
//
// By construction the returned grade lies in [0, sum(criterion.Points)],
// i.e. within the assignment total.
func AggregateScores(criteria []GradableCriterion, scores map[uuid.UUID]float64) (float64, error) {
	var problems []string

	byID := make(map[uuid.UUID]GradableCriterion, len(criteria))
	for _, cr := range criteria {
		byID[cr.ID] = cr
	}

	for id := range scores {
		if _, ok := byID[id]; !ok {
			problems = append(problems, fmt.Sprintf("criterion %s is not part of this assignment's rubric", id))
		}
	}

	grade := 0.0
	for _, cr := range criteria {
		score, ok := scores[cr.ID]
		if !ok {
			problems = append(problems, fmt.Sprintf("criterion %s is missing a score", cr.ID))
			continue
		}
		if score < 0 || score > cr.Points {
			problems = append(problems, fmt.Sprintf("criterion %s: score %.2f outside [0, %.2f]", cr.ID, score, cr.Points))
			continue
		}
		grade += score
	}

	if len(problems) > 0 {
		return 0, &ScoreError{Problems: problems}
	}
	return grade, nil
}
