package model

import "time"

type Image struct {
	ID uint64 `gorm:"primaryKey"`

	ContentHash string `gorm:"column:content_hash;size:32;not null;uniqueIndex:uk_content_hash_type,priority:1"`

	OriginalFilename string `gorm:"column:original_filename;size:255;not null"`

	SizeKB int `gorm:"column:size_kb;not null"`

	// FileType keeps the leading dot (".png") so ContentHash+FileType is
	// the full blob name.
	FileType string `gorm:"column:file_type;size:16;not null;uniqueIndex:uk_content_hash_type,priority:2"`

	UploadTime time.Time `gorm:"column:upload_time;not null;index"`
}

// TableName returns the database table name.
func (Image) TableName() string {
	return "image"
}
