package service

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"
)

// Wire shape for a rubric, used by create/edit payloads and rubric import.
type RubricCriterion struct {
	Description string  `json:"description"`
	Points      float64 `json:"points"`
}

type RubricSection struct {
	Title    string            `json:"title"`
	Points   float64           `json:"points"`
	Criteria []RubricCriterion `json:"criteria"`
}

// ErrMalformedRubric marks an unparseable import payload (400), as opposed
// to a structurally invalid one (422).
var ErrMalformedRubric = errors.New("malformed rubric document")

// ValidationError carries every structural problem found, so the caller can
// fix the rubric in one round trip.
type ValidationError struct {
	Problems []string
}

func (e *ValidationError) Error() string {
	return "invalid rubric: " + strings.Join(e.Problems, "; ")
}

// numeric(7,2) columns; treat anything closer than half a cent as equal
const pointsEpsilon = 1e-6

func pointsEqual(a, b float64) bool {
	return math.Abs(a-b) < pointsEpsilon
}

// ValidateRubric checks structural integrity and returns the derived
// assignment total (sum of section points). Pure; no side effects.
//
// Rules:
//   - at least one section, every section has at least one criterion
//   - titles and criterion descriptions are non-empty
//   - no negative point value anywhere
//   - section points equal the sum of its criteria's points
func ValidateRubric(sections []RubricSection) (float64, error) {
	var problems []string

	if len(sections) == 0 {
		problems = append(problems, "rubric must have at least one section")
	}

	total := 0.0
	for i, sec := range sections {
		if strings.TrimSpace(sec.Title) == "" {
			problems = append(problems, fmt.Sprintf("section[%d]: title is required", i))
		}
		if sec.Points < 0 {
			problems = append(problems, fmt.Sprintf("section[%d]: points must not be negative", i))
		}
		if len(sec.Criteria) == 0 {
			problems = append(problems, fmt.Sprintf("section[%d]: must have at least one criterion", i))
		}

		criteriaSum := 0.0
		for j, cr := range sec.Criteria {
			if strings.TrimSpace(cr.Description) == "" {
				problems = append(problems, fmt.Sprintf("section[%d].criteria[%d]: description is required", i, j))
			}
			if cr.Points < 0 {
				problems = append(problems, fmt.Sprintf("section[%d].criteria[%d]: points must not be negative", i, j))
			}
			criteriaSum += cr.Points
		}

		if len(sec.Criteria) > 0 && !pointsEqual(sec.Points, criteriaSum) {
			problems = append(problems, fmt.Sprintf(
				"section[%d]: declared points (%g) do not equal the sum of its criteria (%g)",
				i, sec.Points, criteriaSum))
		}
		total += sec.Points
	}

	if len(problems) > 0 {
		return 0, &ValidationError{Problems: problems}
	}
	return total, nil
}

// ParseRubricJSON decodes an externally supplied rubric document and
// validates it. The decode is strict: unknown fields are rejected instead of
// coerced. Returns the sections with the derived total.
func ParseRubricJSON(raw []byte) ([]RubricSection, float64, error) {
	var doc struct {
		Sections []RubricSection `json:"sections"`
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&doc); err != nil {
		return nil, 0, fmt.Errorf("%w: %v", ErrMalformedRubric, err)
	}
	// trailing garbage is a parse failure too
	if dec.More() {
		return nil, 0, fmt.Errorf("%w: trailing data after rubric document", ErrMalformedRubric)
	}

	total, err := ValidateRubric(doc.Sections)
	if err != nil {
		return nil, 0, err
	}
	return doc.Sections, total, nil
}
