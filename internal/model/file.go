package model

import (
	"time"

	"github.com/google/uuid"
)

// File is an uploaded document a print job refers to. Only pdf and docx
// uploads are accepted by the intake flow.
type File struct {
	FileID     uint      `gorm:"primaryKey;column:file_id" json:"file_id"`
	UserID     uuid.UUID `gorm:"type:varchar(36);not null;index" json:"user_id"`
	FileName   string    `gorm:"type:varchar(255);not null" json:"file_name" validate:"required"`
	FilePath   string    `gorm:"type:varchar(512);not null" json:"file_path"`
	FileType   string    `gorm:"type:varchar(10);not null" json:"file_type" validate:"required,oneof=pdf docx"`
	UploadDate time.Time `gorm:"autoCreateTime;column:upload_date" json:"upload_date"`
}

func (File) TableName() string {
	return "files"
}
