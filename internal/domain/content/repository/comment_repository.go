package repository

import (
	"context"
	"errors"
	"vibelog/internal/domain/content/model"
	"vibelog/internal/pkg/apperr"
	"vibelog/pkg/database"

	"gorm.io/gorm"
)

type CommentRepository interface {
	Create(ctx context.Context, comment *model.Comment) error
	GetByID(ctx context.Context, id uint) (*model.Comment, error)
	ListByPost(ctx context.Context, postID uint) ([]model.Comment, error)
	UpdateContent(ctx context.Context, comment *model.Comment) error
	WithTx(tx *gorm.DB) CommentRepository
}

type commentRepository struct {
	db *gorm.DB
}

func NewCommentRepository(db *gorm.DB) CommentRepository {
	return &commentRepository{db: db}
}

func (r *commentRepository) WithTx(tx *gorm.DB) CommentRepository {
	if tx == nil {
		return r
	}
	return &commentRepository{db: tx}
}

// Create 文章在校验后被并发删除时返回 NotFound(Post)
func (r *commentRepository) Create(ctx context.Context, comment *model.Comment) error {
	if err := r.db.WithContext(ctx).Create(comment).Error; err != nil {
		if database.IsForeignKeyViolation(err) {
			return apperr.NotFound(apperr.EntityPost, comment.PostID)
		}
		return err
	}
	return nil
}

func (r *commentRepository) GetByID(ctx context.Context, id uint) (*model.Comment, error) {
	var comment model.Comment
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&comment).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound(apperr.EntityComment, id)
		}
		return nil, err
	}
	return &comment, nil
}

// ListByPost 按创建时间升序
func (r *commentRepository) ListByPost(ctx context.Context, postID uint) ([]model.Comment, error) {
	var comments []model.Comment
	err := r.db.WithContext(ctx).Where("post_id = ?", postID).Order("created_at asc, id asc").Find(&comments).Error
	return comments, err
}

func (r *commentRepository) UpdateContent(ctx context.Context, comment *model.Comment) error {
	res := r.db.WithContext(ctx).Model(&model.Comment{}).Where("id = ?", comment.ID).Updates(map[string]interface{}{
		"content":   comment.Content,
		"edited_at": comment.EditedAt,
	})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return apperr.NotFound(apperr.EntityComment, comment.ID)
	}
	return nil
}
