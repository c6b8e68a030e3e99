package repository

import (
	"context"
	"errors"
	"vibelog/internal/domain/user/model"
	"vibelog/internal/pkg/apperr"
	"vibelog/pkg/database"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// UserRepository 接口定义
type UserRepository interface {
	Create(ctx context.Context, user *model.User) error
	GetByID(ctx context.Context, id uint) (*model.User, error)
	GetByUsername(ctx context.Context, username string) (*model.User, error)
	UpdateProfile(ctx context.Context, user *model.User) error
	// SetTheme 与 IncrementReportsReviewed 在 SQL 中原地修改 profile 的单个字段
	SetTheme(ctx context.Context, id uint, theme string) (bool, error)
	IncrementReportsReviewed(ctx context.Context, id uint) (bool, error)
	WithTx(tx *gorm.DB) UserRepository
}

// userRepository 实现
type userRepository struct {
	db *gorm.DB
}

// NewUserRepository 创建新的仓库实例
func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

// WithTx 返回绑定到事务的仓库
func (r *userRepository) WithTx(tx *gorm.DB) UserRepository {
	if tx == nil {
		return r
	}
	return &userRepository{db: tx}
}

// Create 创建用户，用户名或邮箱重复时返回 Validation
func (r *userRepository) Create(ctx context.Context, user *model.User) error {
	if err := r.db.WithContext(ctx).Create(user).Error; err != nil {
		if database.IsUniqueViolation(err) {
			return apperr.Validation("username %q or email %q already taken", user.Username, user.Email)
		}
		return err
	}
	return nil
}

// GetByID 根据ID获取用户
func (r *userRepository) GetByID(ctx context.Context, id uint) (*model.User, error) {
	var user model.User
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound(apperr.EntityUser, id)
		}
		return nil, err
	}
	return &user, nil
}

// GetByUsername 根据用户名获取用户
func (r *userRepository) GetByUsername(ctx context.Context, username string) (*model.User, error) {
	var user model.User
	if err := r.db.WithContext(ctx).Where("username = ?", username).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound(apperr.EntityUser, username)
		}
		return nil, err
	}
	return &user, nil
}

// UpdateProfile 仅更新简介与头像，profile 列由专门的方法修改
func (r *userRepository) UpdateProfile(ctx context.Context, user *model.User) error {
	return r.db.WithContext(ctx).Model(&model.User{}).Where("id = ?", user.ID).Updates(map[string]interface{}{
		"bio":             user.Bio,
		"profile_picture": user.ProfilePicture,
	}).Error
}

// SetTheme 仅对普通用户生效，返回是否命中
func (r *userRepository) SetTheme(ctx context.Context, id uint, theme string) (bool, error) {
	return r.updateProfileField(ctx, id, model.RoleUser,
		gorm.Expr(`jsonb_set(coalesce(profile, '{}'::jsonb), '{theme}', to_jsonb(?::text))`, theme))
}

// IncrementReportsReviewed 版主审核计数原子加一，非版主不命中
func (r *userRepository) IncrementReportsReviewed(ctx context.Context, id uint) (bool, error) {
	return r.updateProfileField(ctx, id, model.RoleModerator,
		gorm.Expr(`jsonb_set(coalesce(profile, '{}'::jsonb), '{reportsReviewed}', to_jsonb(coalesce((profile->>'reportsReviewed')::int, 0) + 1))`))
}

func (r *userRepository) updateProfileField(ctx context.Context, id uint, role model.Role, expr clause.Expr) (bool, error) {
	res := r.db.WithContext(ctx).Model(&model.User{}).
		Where("id = ? AND role = ?", id, role).
		Update("profile", expr)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}
