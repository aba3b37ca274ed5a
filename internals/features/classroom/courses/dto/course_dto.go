package dto

import (
	"time"

	"github.com/google/uuid"

	courseModel "classku_backend/internals/features/classroom/courses/model"
)

/* =========================
   Requests
========================= */

type CreateCourseRequest struct {
	CourseNumber      string  `json:"course_number" validate:"required,max=20"`
	CourseTitle       string  `json:"course_title" validate:"required,max=150"`
	CourseDescription *string `json:"course_description,omitempty"`
	CourseDepartment  *string `json:"course_department,omitempty" validate:"omitempty,max=100"`

	CourseTerm string `json:"course_term" validate:"required,oneof=spring summer fall winter"`
	CourseYear int    `json:"course_year" validate:"required,min=2000,max=2100"`

	CourseStartDate time.Time `json:"course_start_date" validate:"required"`
	CourseEndDate   time.Time `json:"course_end_date" validate:"required"`
}

func (r CreateCourseRequest) ToModel(instructorID uuid.UUID, entryCode string) courseModel.CourseModel {
	return courseModel.CourseModel{
		CourseNumber:       r.CourseNumber,
		CourseTitle:        r.CourseTitle,
		CourseDescription:  r.CourseDescription,
		CourseDepartment:   r.CourseDepartment,
		CourseTerm:         r.CourseTerm,
		CourseYear:         r.CourseYear,
		CourseStartDate:    r.CourseStartDate,
		CourseEndDate:      r.CourseEndDate,
		CourseInstructorID: instructorID,
		CourseEntryCode:    entryCode,
	}
}

type UpdateCourseRequest struct {
	CourseNumber      *string    `json:"course_number,omitempty" validate:"omitempty,max=20"`
	CourseTitle       *string    `json:"course_title,omitempty" validate:"omitempty,max=150"`
	CourseDescription *string    `json:"course_description,omitempty"`
	CourseDepartment  *string    `json:"course_department,omitempty" validate:"omitempty,max=100"`
	CourseTerm        *string    `json:"course_term,omitempty" validate:"omitempty,oneof=spring summer fall winter"`
	CourseYear        *int       `json:"course_year,omitempty" validate:"omitempty,min=2000,max=2100"`
	CourseStartDate   *time.Time `json:"course_start_date,omitempty"`
	CourseEndDate     *time.Time `json:"course_end_date,omitempty"`
	CourseIsArchived  *bool      `json:"course_is_archived,omitempty"`
}

func (r UpdateCourseRequest) ToUpdates() map[string]any {
	upd := map[string]any{}
	if r.CourseNumber != nil {
		upd["course_number"] = *r.CourseNumber
	}
	if r.CourseTitle != nil {
		upd["course_title"] = *r.CourseTitle
	}
	if r.CourseDescription != nil {
		upd["course_description"] = *r.CourseDescription
	}
	if r.CourseDepartment != nil {
		upd["course_department"] = *r.CourseDepartment
	}
	if r.CourseTerm != nil {
		upd["course_term"] = *r.CourseTerm
	}
	if r.CourseYear != nil {
		upd["course_year"] = *r.CourseYear
	}
	if r.CourseStartDate != nil {
		upd["course_start_date"] = *r.CourseStartDate
	}
	if r.CourseEndDate != nil {
		upd["course_end_date"] = *r.CourseEndDate
	}
	if r.CourseIsArchived != nil {
		upd["course_is_archived"] = *r.CourseIsArchived
	}
	return upd
}

type EnrollRequest struct {
	EntryCode string `json:"entry_code" validate:"required,len=6"`
}

type ListCoursesQuery struct {
	Term     *string `query:"term"`
	Year     *int    `query:"year"`
	Archived *bool   `query:"archived"`
	Search   *string `query:"q"`
}

/* =========================
   Responses
========================= */

type CourseResponse struct {
	CourseID          uuid.UUID `json:"course_id"`
	CourseNumber      string    `json:"course_number"`
	CourseTitle       string    `json:"course_title"`
	CourseDescription *string   `json:"course_description,omitempty"`
	CourseDepartment  *string   `json:"course_department,omitempty"`
	CourseTerm        string    `json:"course_term"`
	CourseYear        int       `json:"course_year"`
	CourseStartDate   time.Time `json:"course_start_date"`
	CourseEndDate     time.Time `json:"course_end_date"`
	CourseInstructor  uuid.UUID `json:"course_instructor_id"`
	CourseEntryCode   string    `json:"course_entry_code,omitempty"`
	CourseIsArchived  bool      `json:"course_is_archived"`
	CourseCreatedAt   time.Time `json:"course_created_at"`
}

// FromModel converts; pass withCode=false for student-facing views so the
// shared secret stays with the instructor.
func FromModel(m *courseModel.CourseModel, withCode bool) CourseResponse {
	resp := CourseResponse{
		CourseID:          m.CourseID,
		CourseNumber:      m.CourseNumber,
		CourseTitle:       m.CourseTitle,
		CourseDescription: m.CourseDescription,
		CourseDepartment:  m.CourseDepartment,
		CourseTerm:        m.CourseTerm,
		CourseYear:        m.CourseYear,
		CourseStartDate:   m.CourseStartDate,
		CourseEndDate:     m.CourseEndDate,
		CourseInstructor:  m.CourseInstructorID,
		CourseIsArchived:  m.CourseIsArchived,
		CourseCreatedAt:   m.CourseCreatedAt,
	}
	if withCode {
		resp.CourseEntryCode = m.CourseEntryCode
	}
	return resp
}

func FromModels(ms []courseModel.CourseModel, withCode bool) []CourseResponse {
	out := make([]CourseResponse, 0, len(ms))
	for i := range ms {
		out = append(out, FromModel(&ms[i], withCode))
	}
	return out
}

type EnrollmentResponse struct {
	EnrollmentID uuid.UUID `json:"enrollment_id"`
	CourseID     uuid.UUID `json:"course_id"`
	StudentID    uuid.UUID `json:"student_id"`
	EnrolledAt   time.Time `json:"enrolled_at"`
}

func EnrollmentFromModel(m *courseModel.EnrollmentModel) EnrollmentResponse {
	return EnrollmentResponse{
		EnrollmentID: m.EnrollmentID,
		CourseID:     m.EnrollmentCourseID,
		StudentID:    m.EnrollmentStudentID,
		EnrolledAt:   m.EnrollmentEnrolledAt,
	}
}
