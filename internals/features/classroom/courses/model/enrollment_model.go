package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// EnrollmentModel links a student to a course. The unique index on
// (course_id, student_id) is what serializes concurrent enroll calls.
type EnrollmentModel struct {
	EnrollmentID uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey;column:enrollment_id" json:"enrollment_id"`

	EnrollmentCourseID  uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:uq_enrollments_course_student,where:enrollment_deleted_at IS NULL;column:enrollment_course_id" json:"enrollment_course_id"`
	EnrollmentStudentID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:uq_enrollments_course_student,where:enrollment_deleted_at IS NULL;column:enrollment_student_id" json:"enrollment_student_id"`

	EnrollmentEnrolledAt time.Time      `gorm:"type:timestamptz;not null;default:now();column:enrollment_enrolled_at" json:"enrollment_enrolled_at"`
	EnrollmentCreatedAt  time.Time      `gorm:"type:timestamptz;not null;default:now();column:enrollment_created_at" json:"enrollment_created_at"`
	EnrollmentDeletedAt  gorm.DeletedAt `gorm:"column:enrollment_deleted_at;index" json:"enrollment_deleted_at,omitempty"`
}

func (EnrollmentModel) TableName() string { return "enrollments" }
