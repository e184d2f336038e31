package service

import (
	"ImageHosting/model"
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ImageStore is the metadata side of the blob/metadata split. Insert is
// idempotent on (content_hash, file_type) so re-uploading identical bytes
// never produces a duplicate row, including under concurrent uploads.
type ImageStore interface {
	Insert(ctx context.Context, img *model.Image) error
	PageByRecency(ctx context.Context, limit, offset int) ([]model.Image, error)
	Delete(ctx context.Context, contentHash, fileType string) (int64, error)
}

type GormImageStore struct {
	db *gorm.DB
}

// NewGormImageStore wraps a gorm connection as an ImageStore.
func NewGormImageStore(db *gorm.DB) *GormImageStore {
	return &GormImageStore{db: db}
}

// Insert upserts an image record; a conflict on the dedup key is a no-op.
func (s *GormImageStore) Insert(ctx context.Context, img *model.Image) error {
	return s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "content_hash"}, {Name: "file_type"}},
			DoNothing: true,
		}).
		Create(img).Error
}

// PageByRecency returns up to limit records, most recent first. Ties in
// upload_time break by id so adjacent pages never overlap.
func (s *GormImageStore) PageByRecency(ctx context.Context, limit, offset int) ([]model.Image, error) {
	var images []model.Image
	err := s.db.WithContext(ctx).
		Model(&model.Image{}).
		Order("upload_time DESC, id DESC").
		Limit(limit).
		Offset(offset).
		Find(&images).Error
	if err != nil {
		return nil, err
	}
	return images, nil
}

// Delete removes the record for a blob key and reports rows affected.
// Deleting an absent record is not an error.
func (s *GormImageStore) Delete(ctx context.Context, contentHash, fileType string) (int64, error) {
	res := s.db.WithContext(ctx).
		Where("content_hash = ? AND file_type = ?", contentHash, fileType).
		Delete(&model.Image{})
	return res.RowsAffected, res.Error
}
