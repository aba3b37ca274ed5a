package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type CourseModel struct {
	CourseID uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey;column:course_id" json:"course_id"`

	CourseNumber      string  `gorm:"type:varchar(20);not null;column:course_number" json:"course_number"`
	CourseTitle       string  `gorm:"type:varchar(150);not null;column:course_title" json:"course_title"`
	CourseDescription *string `gorm:"type:text;column:course_description" json:"course_description,omitempty"`
	CourseDepartment  *string `gorm:"type:varchar(100);column:course_department" json:"course_department,omitempty"`

	CourseTerm string `gorm:"type:varchar(20);not null;column:course_term" json:"course_term"`
	CourseYear int    `gorm:"type:smallint;not null;column:course_year" json:"course_year"`

	CourseStartDate time.Time `gorm:"type:date;not null;column:course_start_date" json:"course_start_date"`
	CourseEndDate   time.Time `gorm:"type:date;not null;column:course_end_date" json:"course_end_date"`

	CourseInstructorID uuid.UUID `gorm:"type:uuid;not null;column:course_instructor_id" json:"course_instructor_id"`

	// self-enrollment shared secret; unique among live courses
	CourseEntryCode string `gorm:"type:varchar(6);not null;uniqueIndex:uq_courses_entry_code,where:course_deleted_at IS NULL;column:course_entry_code" json:"course_entry_code"`

	CourseIsArchived bool `gorm:"not null;default:false;column:course_is_archived" json:"course_is_archived"`

	CourseCreatedAt time.Time      `gorm:"type:timestamptz;not null;default:now();column:course_created_at" json:"course_created_at"`
	CourseUpdatedAt time.Time      `gorm:"type:timestamptz;not null;default:now();column:course_updated_at" json:"course_updated_at"`
	CourseDeletedAt gorm.DeletedAt `gorm:"column:course_deleted_at;index" json:"course_deleted_at,omitempty"`
}

func (CourseModel) TableName() string { return "courses" }
