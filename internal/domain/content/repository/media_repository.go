package repository

import (
	"context"
	"vibelog/internal/domain/content/model"

	"gorm.io/gorm"
)

type MediaRepository interface {
	Create(ctx context.Context, media *model.Media) error
	ListByPost(ctx context.Context, postID uint) ([]model.Media, error)
}

type mediaRepository struct {
	db *gorm.DB
}

func NewMediaRepository(db *gorm.DB) MediaRepository {
	return &mediaRepository{db: db}
}

func (r *mediaRepository) Create(ctx context.Context, media *model.Media) error {
	return r.db.WithContext(ctx).Create(media).Error
}

func (r *mediaRepository) ListByPost(ctx context.Context, postID uint) ([]model.Media, error) {
	var media []model.Media
	err := r.db.WithContext(ctx).Where("post_id = ?", postID).Order("id asc").Find(&media).Error
	return media, err
}
