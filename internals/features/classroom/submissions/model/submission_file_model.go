package model

import (
	"time"

	"github.com/google/uuid"
)

type SubmissionFileModel struct {
	SubmissionFileID           uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey;column:submission_file_id" json:"submission_file_id"`
	SubmissionFileSubmissionID uuid.UUID `gorm:"type:uuid;not null;index;column:submission_file_submission_id" json:"submission_file_submission_id"`

	SubmissionFileName        string `gorm:"type:varchar(255);not null;column:submission_file_name" json:"submission_file_name"`
	SubmissionFileObjectKey   string `gorm:"type:varchar(512);not null;column:submission_file_object_key" json:"-"`
	SubmissionFileURL         string `gorm:"type:text;not null;column:submission_file_url" json:"submission_file_url"`
	SubmissionFileSizeBytes   int64  `gorm:"not null;column:submission_file_size_bytes" json:"submission_file_size_bytes"`
	SubmissionFileContentType string `gorm:"type:varchar(100);not null;column:submission_file_content_type" json:"submission_file_content_type"`

	SubmissionFileCreatedAt time.Time `gorm:"type:timestamptz;not null;default:now();column:submission_file_created_at" json:"submission_file_created_at"`
}

func (SubmissionFileModel) TableName() string { return "submission_files" }
