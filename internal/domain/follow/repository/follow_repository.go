package repository

import (
	"context"
	"vibelog/internal/domain/follow/model"
	"vibelog/internal/pkg/apperr"
	"vibelog/pkg/database"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type FollowRepository interface {
	Exists(ctx context.Context, followerID, followeeID uint) (bool, error)
	// Insert 已存在时不报错，返回是否新插入
	Insert(ctx context.Context, follow *model.Follow) (bool, error)
	// Delete 返回是否删除了记录
	Delete(ctx context.Context, followerID, followeeID uint) (bool, error)
	CountFollowers(ctx context.Context, userID uint) (int64, error)
	CountFollowing(ctx context.Context, userID uint) (int64, error)
	ListFollowers(ctx context.Context, userID uint, offset, limit int) ([]model.Follow, int64, error)
	ListFollowing(ctx context.Context, userID uint, offset, limit int) ([]model.Follow, int64, error)
	WithTx(tx *gorm.DB) FollowRepository
}

type followRepository struct {
	db *gorm.DB
}

func NewFollowRepository(db *gorm.DB) FollowRepository {
	return &followRepository{db: db}
}

func (r *followRepository) WithTx(tx *gorm.DB) FollowRepository {
	if tx == nil {
		return r
	}
	return &followRepository{db: tx}
}

func (r *followRepository) Exists(ctx context.Context, followerID, followeeID uint) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.Follow{}).
		Where("follower_id = ? AND followee_id = ?", followerID, followeeID).
		Count(&count).Error
	return count > 0, err
}

func (r *followRepository) Insert(ctx context.Context, follow *model.Follow) (bool, error) {
	res := r.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(follow)
	if res.Error != nil {
		if database.IsForeignKeyViolation(res.Error) {
			// 约束名见 migrations 中的 follows 表
			if database.ViolatedConstraint(res.Error) == "fk_follows_follower" {
				return false, apperr.NotFound(apperr.EntityUser, follow.FollowerID)
			}
			return false, apperr.NotFound(apperr.EntityUser, follow.FolloweeID)
		}
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (r *followRepository) Delete(ctx context.Context, followerID, followeeID uint) (bool, error) {
	res := r.db.WithContext(ctx).
		Where("follower_id = ? AND followee_id = ?", followerID, followeeID).
		Delete(&model.Follow{})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *followRepository) CountFollowers(ctx context.Context, userID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.Follow{}).Where("followee_id = ?", userID).Count(&count).Error
	return count, err
}

func (r *followRepository) CountFollowing(ctx context.Context, userID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.Follow{}).Where("follower_id = ?", userID).Count(&count).Error
	return count, err
}

func (r *followRepository) ListFollowers(ctx context.Context, userID uint, offset, limit int) ([]model.Follow, int64, error) {
	return r.list(ctx, "followee_id = ?", userID, offset, limit)
}

func (r *followRepository) ListFollowing(ctx context.Context, userID uint, offset, limit int) ([]model.Follow, int64, error) {
	return r.list(ctx, "follower_id = ?", userID, offset, limit)
}

func (r *followRepository) list(ctx context.Context, cond string, userID uint, offset, limit int) ([]model.Follow, int64, error) {
	var follows []model.Follow
	var total int64

	query := r.db.WithContext(ctx).Model(&model.Follow{}).Where(cond, userID)
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	if err := query.Order("created_at desc").Offset(offset).Limit(limit).Find(&follows).Error; err != nil {
		return nil, 0, err
	}
	return follows, total, nil
}
