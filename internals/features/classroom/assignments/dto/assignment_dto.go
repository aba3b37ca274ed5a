package dto

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	assignmentModel "classku_backend/internals/features/classroom/assignments/model"
	service "classku_backend/internals/features/classroom/assignments/service"
)

/* =========================
   Requests
========================= */

type CreateAssignmentRequest struct {
	AssignmentCourseID uuid.UUID `json:"assignment_course_id" validate:"required"`

	AssignmentTitle       string  `json:"assignment_title" validate:"required,max=150"`
	AssignmentDescription *string `json:"assignment_description,omitempty"`

	AssignmentDueDate time.Time `json:"assignment_due_date" validate:"required"`

	AssignmentSubmissionType    assignmentModel.SubmissionType `json:"assignment_submission_type" validate:"required,oneof=text file both"`
	AssignmentAllowedExtensions []string                       `json:"assignment_allowed_extensions,omitempty" validate:"omitempty,dive,startswith=."`
	AssignmentMaxFileSizeBytes  *int64                         `json:"assignment_max_file_size_bytes,omitempty" validate:"omitempty,min=1"`

	AssignmentAllowResubmission bool `json:"assignment_allow_resubmission"`

	// total points are derived from the rubric, never sent
	Rubric []service.RubricSection `json:"rubric" validate:"required"`
}

func (r CreateAssignmentRequest) ToModel(totalPoints float64) assignmentModel.AssignmentModel {
	m := assignmentModel.AssignmentModel{
		AssignmentCourseID:          r.AssignmentCourseID,
		AssignmentTitle:             r.AssignmentTitle,
		AssignmentDescription:       r.AssignmentDescription,
		AssignmentDueDate:           r.AssignmentDueDate,
		AssignmentTotalPoints:       totalPoints,
		AssignmentSubmissionType:    r.AssignmentSubmissionType,
		AssignmentAllowResubmission: r.AssignmentAllowResubmission,
	}
	if len(r.AssignmentAllowedExtensions) > 0 {
		if raw, err := json.Marshal(r.AssignmentAllowedExtensions); err == nil {
			m.AssignmentAllowedExtensions = datatypes.JSON(raw)
		}
	}
	if r.AssignmentMaxFileSizeBytes != nil {
		m.AssignmentMaxFileSizeBytes = *r.AssignmentMaxFileSizeBytes
	} else {
		m.AssignmentMaxFileSizeBytes = 10 << 20
	}
	return m
}

type UpdateAssignmentRequest struct {
	AssignmentTitle       *string    `json:"assignment_title,omitempty" validate:"omitempty,max=150"`
	AssignmentDescription *string    `json:"assignment_description,omitempty"`
	AssignmentDueDate     *time.Time `json:"assignment_due_date,omitempty"`

	AssignmentSubmissionType    *assignmentModel.SubmissionType `json:"assignment_submission_type,omitempty" validate:"omitempty,oneof=text file both"`
	AssignmentAllowedExtensions []string                        `json:"assignment_allowed_extensions,omitempty" validate:"omitempty,dive,startswith=."`
	AssignmentMaxFileSizeBytes  *int64                          `json:"assignment_max_file_size_bytes,omitempty" validate:"omitempty,min=1"`
	AssignmentAllowResubmission *bool                           `json:"assignment_allow_resubmission,omitempty"`

	// replaces the whole rubric; rejected after publish
	Rubric []service.RubricSection `json:"rubric,omitempty"`
}

func (r UpdateAssignmentRequest) ToUpdates() map[string]any {
	upd := map[string]any{}
	if r.AssignmentTitle != nil {
		upd["assignment_title"] = *r.AssignmentTitle
	}
	if r.AssignmentDescription != nil {
		upd["assignment_description"] = *r.AssignmentDescription
	}
	if r.AssignmentDueDate != nil {
		upd["assignment_due_date"] = *r.AssignmentDueDate
	}
	if r.AssignmentSubmissionType != nil {
		upd["assignment_submission_type"] = *r.AssignmentSubmissionType
	}
	if len(r.AssignmentAllowedExtensions) > 0 {
		if raw, err := json.Marshal(r.AssignmentAllowedExtensions); err == nil {
			upd["assignment_allowed_extensions"] = datatypes.JSON(raw)
		}
	}
	if r.AssignmentMaxFileSizeBytes != nil {
		upd["assignment_max_file_size_bytes"] = *r.AssignmentMaxFileSizeBytes
	}
	if r.AssignmentAllowResubmission != nil {
		upd["assignment_allow_resubmission"] = *r.AssignmentAllowResubmission
	}
	return upd
}

type ImportRubricRequest struct {
	// raw on purpose: the document is decoded strictly by the rubric service
	Document json.RawMessage `json:"document" validate:"required"`
}

/* =========================
   Responses
========================= */

type RubricCriterionResponse struct {
	RubricCriterionID uuid.UUID `json:"rubric_criterion_id"`
	Description       string    `json:"description"`
	Points            float64   `json:"points"`
}

type RubricSectionResponse struct {
	RubricSectionID uuid.UUID                 `json:"rubric_section_id"`
	Title           string                    `json:"title"`
	Points          float64                   `json:"points"`
	Criteria        []RubricCriterionResponse `json:"criteria"`
}

type AssignmentResponse struct {
	AssignmentID          uuid.UUID                      `json:"assignment_id"`
	AssignmentCourseID    uuid.UUID                      `json:"assignment_course_id"`
	AssignmentTitle       string                         `json:"assignment_title"`
	AssignmentDescription *string                        `json:"assignment_description,omitempty"`
	AssignmentDueDate     time.Time                      `json:"assignment_due_date"`
	AssignmentTotalPoints float64                        `json:"assignment_total_points"`
	SubmissionType        assignmentModel.SubmissionType `json:"assignment_submission_type"`
	AllowedExtensions     []string                       `json:"assignment_allowed_extensions,omitempty"`
	MaxFileSizeBytes      int64                          `json:"assignment_max_file_size_bytes"`
	AllowResubmission     bool                           `json:"assignment_allow_resubmission"`
	IsPublished           bool                           `json:"assignment_is_published"`
	PublishedAt           *time.Time                     `json:"assignment_published_at,omitempty"`
	SubmissionCount       int64                          `json:"assignment_submission_count"`
	Rubric                []RubricSectionResponse        `json:"rubric,omitempty"`
	CreatedAt             time.Time                      `json:"assignment_created_at"`
}

func FromModel(m *assignmentModel.AssignmentModel, submissionCount int64, rubric []RubricSectionResponse) AssignmentResponse {
	resp := AssignmentResponse{
		AssignmentID:          m.AssignmentID,
		AssignmentCourseID:    m.AssignmentCourseID,
		AssignmentTitle:       m.AssignmentTitle,
		AssignmentDescription: m.AssignmentDescription,
		AssignmentDueDate:     m.AssignmentDueDate,
		AssignmentTotalPoints: m.AssignmentTotalPoints,
		SubmissionType:        m.AssignmentSubmissionType,
		MaxFileSizeBytes:      m.AssignmentMaxFileSizeBytes,
		AllowResubmission:     m.AssignmentAllowResubmission,
		IsPublished:           m.AssignmentIsPublished,
		PublishedAt:           m.AssignmentPublishedAt,
		SubmissionCount:       submissionCount,
		Rubric:                rubric,
		CreatedAt:             m.AssignmentCreatedAt,
	}
	if len(m.AssignmentAllowedExtensions) > 0 {
		_ = json.Unmarshal(m.AssignmentAllowedExtensions, &resp.AllowedExtensions)
	}
	return resp
}

func RubricResponseFromModels(sections []assignmentModel.RubricSectionModel, criteria []assignmentModel.RubricCriterionModel) []RubricSectionResponse {
	bySection := map[uuid.UUID][]RubricCriterionResponse{}
	for _, cr := range criteria {
		bySection[cr.RubricCriterionSectionID] = append(bySection[cr.RubricCriterionSectionID], RubricCriterionResponse{
			RubricCriterionID: cr.RubricCriterionID,
			Description:       cr.RubricCriterionDescription,
			Points:            cr.RubricCriterionPoints,
		})
	}
	out := make([]RubricSectionResponse, 0, len(sections))
	for _, sec := range sections {
		out = append(out, RubricSectionResponse{
			RubricSectionID: sec.RubricSectionID,
			Title:           sec.RubricSectionTitle,
			Points:          sec.RubricSectionPoints,
			Criteria:        bySection[sec.RubricSectionID],
		})
	}
	return out
}
