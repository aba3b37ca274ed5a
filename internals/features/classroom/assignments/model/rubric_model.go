package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// RubricSectionModel: ordered grading template section. Immutable once the
// assignment is published or has submissions; replaced wholesale on import.
type RubricSectionModel struct {
	RubricSectionID           uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey;column:rubric_section_id" json:"rubric_section_id"`
	RubricSectionAssignmentID uuid.UUID `gorm:"type:uuid;not null;index;column:rubric_section_assignment_id" json:"rubric_section_assignment_id"`

	RubricSectionPosition int     `gorm:"type:smallint;not null;column:rubric_section_position" json:"rubric_section_position"`
	RubricSectionTitle    string  `gorm:"type:varchar(150);not null;column:rubric_section_title" json:"rubric_section_title"`
	RubricSectionPoints   float64 `gorm:"type:numeric(7,2);not null;column:rubric_section_points" json:"rubric_section_points"`

	RubricSectionCreatedAt time.Time      `gorm:"type:timestamptz;not null;default:now();column:rubric_section_created_at" json:"rubric_section_created_at"`
	RubricSectionDeletedAt gorm.DeletedAt `gorm:"column:rubric_section_deleted_at;index" json:"rubric_section_deleted_at,omitempty"`
}

func (RubricSectionModel) TableName() string { return "rubric_sections" }

// RubricCriterionModel: the smallest gradable unit.
type RubricCriterionModel struct {
	RubricCriterionID        uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey;column:rubric_criterion_id" json:"rubric_criterion_id"`
	RubricCriterionSectionID uuid.UUID `gorm:"type:uuid;not null;index;column:rubric_criterion_section_id" json:"rubric_criterion_section_id"`

	RubricCriterionPosition    int     `gorm:"type:smallint;not null;column:rubric_criterion_position" json:"rubric_criterion_position"`
	RubricCriterionDescription string  `gorm:"type:text;not null;column:rubric_criterion_description" json:"rubric_criterion_description"`
	RubricCriterionPoints      float64 `gorm:"type:numeric(7,2);not null;column:rubric_criterion_points" json:"rubric_criterion_points"`

	RubricCriterionCreatedAt time.Time      `gorm:"type:timestamptz;not null;default:now();column:rubric_criterion_created_at" json:"rubric_criterion_created_at"`
	RubricCriterionDeletedAt gorm.DeletedAt `gorm:"column:rubric_criterion_deleted_at;index" json:"rubric_criterion_deleted_at,omitempty"`
}

func (RubricCriterionModel) TableName() string { return "rubric_criteria" }
