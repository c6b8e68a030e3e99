package repository

import (
	"context"
	"errors"
	contentModel "vibelog/internal/domain/content/model"
	followModel "vibelog/internal/domain/follow/model"
	likeModel "vibelog/internal/domain/like/model"
	reportModel "vibelog/internal/domain/report/model"
	"vibelog/internal/pkg/apperr"

	"gorm.io/gorm"
)

// CascadeRepository 跨表删除，调用方负责在同一事务内按引用顺序调用
type CascadeRepository interface {
	GetPost(ctx context.Context, id uint) (*contentModel.Post, error)
	GetComment(ctx context.Context, id uint) (*contentModel.Comment, error)

	DeleteReportsByPost(ctx context.Context, postID uint) (int64, error)
	// DeleteReportsByCommentsOfPost 删除针对该文章下任意评论的举报
	DeleteReportsByCommentsOfPost(ctx context.Context, postID uint) (int64, error)
	DeleteReportsByComment(ctx context.Context, commentID uint) (int64, error)
	DeleteLikesByPost(ctx context.Context, postID uint) (int64, error)
	DeleteCommentsByPost(ctx context.Context, postID uint) (int64, error)
	MediaKeysByPost(ctx context.Context, postID uint) ([]string, error)
	DeleteMediaByPost(ctx context.Context, postID uint) (int64, error)
	// DetachReblogs 原文删除后转发保留为普通文章
	DetachReblogs(ctx context.Context, postID uint) (int64, error)
	DeletePost(ctx context.Context, postID uint) error
	DeleteComment(ctx context.Context, commentID uint) error

	PostIDsByAuthor(ctx context.Context, userID uint) ([]uint, error)
	CommentIDsByAuthor(ctx context.Context, userID uint) ([]uint, error)
	LikedPostIDsByUser(ctx context.Context, userID uint) ([]uint, error)
	DeleteLikesByUser(ctx context.Context, userID uint) (int64, error)
	DeleteFollowsByUser(ctx context.Context, userID uint) (int64, error)
	DeleteReportsByReporter(ctx context.Context, userID uint) (int64, error)

	WithTx(tx *gorm.DB) CascadeRepository
}

type cascadeRepository struct {
	db *gorm.DB
}

func NewCascadeRepository(db *gorm.DB) CascadeRepository {
	return &cascadeRepository{db: db}
}

func (r *cascadeRepository) WithTx(tx *gorm.DB) CascadeRepository {
	if tx == nil {
		return r
	}
	return &cascadeRepository{db: tx}
}

func (r *cascadeRepository) GetPost(ctx context.Context, id uint) (*contentModel.Post, error) {
	var post contentModel.Post
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&post).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound(apperr.EntityPost, id)
		}
		return nil, err
	}
	return &post, nil
}

func (r *cascadeRepository) GetComment(ctx context.Context, id uint) (*contentModel.Comment, error) {
	var comment contentModel.Comment
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&comment).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound(apperr.EntityComment, id)
		}
		return nil, err
	}
	return &comment, nil
}

func (r *cascadeRepository) deleteWhere(ctx context.Context, value interface{}, query string, args ...interface{}) (int64, error) {
	res := r.db.WithContext(ctx).Where(query, args...).Delete(value)
	return res.RowsAffected, res.Error
}

func (r *cascadeRepository) DeleteReportsByPost(ctx context.Context, postID uint) (int64, error) {
	return r.deleteWhere(ctx, &reportModel.Report{}, "post_id = ?", postID)
}

func (r *cascadeRepository) DeleteReportsByCommentsOfPost(ctx context.Context, postID uint) (int64, error) {
	sub := r.db.WithContext(ctx).Model(&contentModel.Comment{}).Select("id").Where("post_id = ?", postID)
	return r.deleteWhere(ctx, &reportModel.Report{}, "comment_id IN (?)", sub)
}

func (r *cascadeRepository) DeleteReportsByComment(ctx context.Context, commentID uint) (int64, error) {
	return r.deleteWhere(ctx, &reportModel.Report{}, "comment_id = ?", commentID)
}

func (r *cascadeRepository) DeleteLikesByPost(ctx context.Context, postID uint) (int64, error) {
	return r.deleteWhere(ctx, &likeModel.Like{}, "post_id = ?", postID)
}

func (r *cascadeRepository) DeleteCommentsByPost(ctx context.Context, postID uint) (int64, error) {
	return r.deleteWhere(ctx, &contentModel.Comment{}, "post_id = ?", postID)
}

func (r *cascadeRepository) MediaKeysByPost(ctx context.Context, postID uint) ([]string, error) {
	var keys []string
	err := r.db.WithContext(ctx).Model(&contentModel.Media{}).Where("post_id = ?", postID).Pluck("object_key", &keys).Error
	return keys, err
}

func (r *cascadeRepository) DeleteMediaByPost(ctx context.Context, postID uint) (int64, error) {
	return r.deleteWhere(ctx, &contentModel.Media{}, "post_id = ?", postID)
}

func (r *cascadeRepository) DetachReblogs(ctx context.Context, postID uint) (int64, error) {
	res := r.db.WithContext(ctx).Model(&contentModel.Post{}).
		Where("original_post_id = ?", postID).
		Update("original_post_id", nil)
	return res.RowsAffected, res.Error
}

func (r *cascadeRepository) DeletePost(ctx context.Context, postID uint) error {
	rows, err := r.deleteWhere(ctx, &contentModel.Post{}, "id = ?", postID)
	if err != nil {
		return err
	}
	if rows == 0 {
		return apperr.NotFound(apperr.EntityPost, postID)
	}
	return nil
}

func (r *cascadeRepository) DeleteComment(ctx context.Context, commentID uint) error {
	rows, err := r.deleteWhere(ctx, &contentModel.Comment{}, "id = ?", commentID)
	if err != nil {
		return err
	}
	if rows == 0 {
		return apperr.NotFound(apperr.EntityComment, commentID)
	}
	return nil
}

func (r *cascadeRepository) PostIDsByAuthor(ctx context.Context, userID uint) ([]uint, error) {
	var ids []uint
	err := r.db.WithContext(ctx).Model(&contentModel.Post{}).Where("author_id = ?", userID).Order("id").Pluck("id", &ids).Error
	return ids, err
}

func (r *cascadeRepository) CommentIDsByAuthor(ctx context.Context, userID uint) ([]uint, error) {
	var ids []uint
	err := r.db.WithContext(ctx).Model(&contentModel.Comment{}).Where("author_id = ?", userID).Order("id").Pluck("id", &ids).Error
	return ids, err
}

func (r *cascadeRepository) LikedPostIDsByUser(ctx context.Context, userID uint) ([]uint, error) {
	var ids []uint
	err := r.db.WithContext(ctx).Model(&likeModel.Like{}).Where("user_id = ?", userID).Order("post_id").Pluck("post_id", &ids).Error
	return ids, err
}

func (r *cascadeRepository) DeleteLikesByUser(ctx context.Context, userID uint) (int64, error) {
	return r.deleteWhere(ctx, &likeModel.Like{}, "user_id = ?", userID)
}

func (r *cascadeRepository) DeleteFollowsByUser(ctx context.Context, userID uint) (int64, error) {
	return r.deleteWhere(ctx, &followModel.Follow{}, "follower_id = ? OR followee_id = ?", userID, userID)
}

func (r *cascadeRepository) DeleteReportsByReporter(ctx context.Context, userID uint) (int64, error) {
	return r.deleteWhere(ctx, &reportModel.Report{}, "reporter_id = ?", userID)
}
