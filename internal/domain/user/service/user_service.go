package service

import (
	"context"
	"vibelog/internal/domain/user/model"
	"vibelog/internal/domain/user/repository"
	"vibelog/internal/pkg/apperr"
)

// Profile 用户主页展示信息
type Profile struct {
	User    *model.User       `json:"user"`
	Details model.RoleProfile `json:"details"`
}

// UserService 用户服务接口
type UserService interface {
	GetProfile(ctx context.Context, username string) (*Profile, error)
	UpdateProfile(ctx context.Context, username, bio, picture string) (*model.User, error)
	SetTheme(ctx context.Context, username, theme string) error
	RecordReview(ctx context.Context, moderatorID uint) error
}

// userService 实现
type userService struct {
	repo repository.UserRepository
}

// NewUserService 创建用户服务
func NewUserService(repo repository.UserRepository) UserService {
	return &userService{repo: repo}
}

func (s *userService) GetProfile(ctx context.Context, username string) (*Profile, error) {
	user, err := s.repo.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	details, err := user.RoleProfile()
	if err != nil {
		return nil, apperr.Internal("decode profile", err)
	}
	return &Profile{User: user, Details: details}, nil
}

// UpdateProfile 更新个人简介与头像
func (s *userService) UpdateProfile(ctx context.Context, username, bio, picture string) (*model.User, error) {
	if len([]rune(bio)) > 500 {
		return nil, apperr.Validation("bio must be at most 500 characters")
	}
	user, err := s.repo.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	user.Bio = bio
	user.ProfilePicture = picture
	if err := s.repo.UpdateProfile(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// SetTheme 仅普通用户有主题设置
func (s *userService) SetTheme(ctx context.Context, username, theme string) error {
	user, err := s.repo.GetByUsername(ctx, username)
	if err != nil {
		return err
	}
	if user.Role != model.RoleUser {
		return apperr.Validation("theme is only available to regular users")
	}
	updated, err := s.repo.SetTheme(ctx, user.ID, theme)
	if err != nil {
		return err
	}
	if !updated {
		// 角色在查询后被修改
		return apperr.Validation("theme is only available to regular users")
	}
	return nil
}

// RecordReview 版主处理举报后累加计数，非版主忽略
func (s *userService) RecordReview(ctx context.Context, moderatorID uint) error {
	_, err := s.repo.IncrementReportsReviewed(ctx, moderatorID)
	return err
}
