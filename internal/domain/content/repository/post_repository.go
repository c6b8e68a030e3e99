package repository

import (
	"context"
	"errors"
	"vibelog/internal/domain/content/model"
	"vibelog/internal/pkg/apperr"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type PostRepository interface {
	Create(ctx context.Context, post *model.Post) error
	GetByID(ctx context.Context, id uint) (*model.Post, error)
	ListByAuthor(ctx context.Context, authorID uint, offset, limit int) ([]model.Post, int64, error)

	// CreateReblog 同一用户对同一原文只保留一条转发，已存在时返回 false
	CreateReblog(ctx context.Context, reblog *model.Post) (bool, error)
	FindReblog(ctx context.Context, authorID, originalPostID uint) (*model.Post, error)
	CountReblogs(ctx context.Context, originalPostID uint) (int64, error)

	WithTx(tx *gorm.DB) PostRepository
}

type postRepository struct {
	db *gorm.DB
}

func NewPostRepository(db *gorm.DB) PostRepository {
	return &postRepository{db: db}
}

func (r *postRepository) WithTx(tx *gorm.DB) PostRepository {
	if tx == nil {
		return r
	}
	return &postRepository{db: tx}
}

func (r *postRepository) Create(ctx context.Context, post *model.Post) error {
	return r.db.WithContext(ctx).Create(post).Error
}

func (r *postRepository) GetByID(ctx context.Context, id uint) (*model.Post, error) {
	var post model.Post
	if err := r.db.WithContext(ctx).Preload("Media").Where("id = ?", id).First(&post).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound(apperr.EntityPost, id)
		}
		return nil, err
	}
	return &post, nil
}

func (r *postRepository) ListByAuthor(ctx context.Context, authorID uint, offset, limit int) ([]model.Post, int64, error) {
	var posts []model.Post
	var total int64

	query := r.db.WithContext(ctx).Model(&model.Post{}).Where("author_id = ?", authorID)

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if err := query.Preload("Media").Order("created_at desc").Offset(offset).Limit(limit).Find(&posts).Error; err != nil {
		return nil, 0, err
	}
	return posts, total, nil
}

// --- Reblog ---

// 与 migrations 中的部分唯一索引 uq_posts_reblog 对应
var reblogConflict = clause.OnConflict{
	Columns: []clause.Column{{Name: "author_id"}, {Name: "original_post_id"}},
	TargetWhere: clause.Where{Exprs: []clause.Expression{
		clause.Expr{SQL: "original_post_id IS NOT NULL"},
	}},
	DoNothing: true,
}

func (r *postRepository) CreateReblog(ctx context.Context, reblog *model.Post) (bool, error) {
	res := r.db.WithContext(ctx).Clauses(reblogConflict).Create(reblog)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (r *postRepository) FindReblog(ctx context.Context, authorID, originalPostID uint) (*model.Post, error) {
	var post model.Post
	err := r.db.WithContext(ctx).
		Where("author_id = ? AND original_post_id = ?", authorID, originalPostID).
		First(&post).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound(apperr.EntityPost, originalPostID)
		}
		return nil, err
	}
	return &post, nil
}

func (r *postRepository) CountReblogs(ctx context.Context, originalPostID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.Post{}).Where("original_post_id = ?", originalPostID).Count(&count).Error
	return count, err
}
