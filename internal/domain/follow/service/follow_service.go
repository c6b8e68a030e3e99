package service

import (
	"context"
	"time"
	"vibelog/internal/domain/follow/model"
	"vibelog/internal/domain/follow/repository"
	userModel "vibelog/internal/domain/user/model"
	"vibelog/internal/pkg/event"
	"vibelog/pkg/database"
	"vibelog/pkg/utils"

	"gorm.io/gorm"
)

// UserFinder 用户查询
type UserFinder interface {
	GetByID(ctx context.Context, id uint) (*userModel.User, error)
}

// State 两个用户之间的关注状态
type State struct {
	Following  bool `json:"following"`
	FollowedBy bool `json:"followedBy"`
}

// Counts 粉丝数与关注数
type Counts struct {
	Followers int64 `json:"followers"`
	Following int64 `json:"following"`
}

// FollowService 关注关系图
// Follow/Unfollow 在目标状态已满足时静默返回，调用方无需先查询
type FollowService interface {
	IsFollowing(ctx context.Context, followerID, followeeID uint) (bool, error)
	Follow(ctx context.Context, followerID, followeeID uint) error
	Unfollow(ctx context.Context, followerID, followeeID uint) error
	CountFollowers(ctx context.Context, userID uint) (int64, error)
	CountFollowing(ctx context.Context, userID uint) (int64, error)

	FollowState(ctx context.Context, viewerID, targetID uint) (State, error)
	FollowCounts(ctx context.Context, userID uint) (Counts, error)
	ListFollowers(ctx context.Context, userID uint, p utils.Pagination) ([]model.Follow, int64, error)
	ListFollowing(ctx context.Context, userID uint, p utils.Pagination) ([]model.Follow, int64, error)
}

type followService struct {
	follows repository.FollowRepository
	users   UserFinder
	tx      database.Transactor
	bus     event.Publisher
	now     func() time.Time
}

func NewFollowService(follows repository.FollowRepository, users UserFinder, tx database.Transactor, bus event.Publisher) FollowService {
	return &followService{
		follows: follows,
		users:   users,
		tx:      tx,
		bus:     bus,
		now:     time.Now,
	}
}

func (s *followService) IsFollowing(ctx context.Context, followerID, followeeID uint) (bool, error) {
	if _, _, err := s.resolvePair(ctx, followerID, followeeID); err != nil {
		return false, err
	}
	return s.follows.Exists(ctx, followerID, followeeID)
}

func (s *followService) Follow(ctx context.Context, followerID, followeeID uint) error {
	if followerID == followeeID {
		return nil
	}
	follower, followee, err := s.resolvePair(ctx, followerID, followeeID)
	if err != nil {
		return err
	}

	var inserted bool
	err = s.tx.Transaction(ctx, func(tx *gorm.DB) error {
		ok, err := s.follows.WithTx(tx).Insert(ctx, &model.Follow{
			FollowerID: followerID,
			FolloweeID: followeeID,
			CreatedAt:  s.now(),
		})
		inserted = ok
		return err
	})
	if err != nil {
		return err
	}

	if inserted {
		s.bus.Publish(ctx, event.FollowEvent{
			FollowerID:       follower.ID,
			FollowerUsername: follower.Username,
			FolloweeID:       followee.ID,
			FolloweeUsername: followee.Username,
		})
	}
	return nil
}

func (s *followService) Unfollow(ctx context.Context, followerID, followeeID uint) error {
	if followerID == followeeID {
		return nil
	}
	if _, _, err := s.resolvePair(ctx, followerID, followeeID); err != nil {
		return err
	}
	return s.tx.Transaction(ctx, func(tx *gorm.DB) error {
		_, err := s.follows.WithTx(tx).Delete(ctx, followerID, followeeID)
		return err
	})
}

func (s *followService) CountFollowers(ctx context.Context, userID uint) (int64, error) {
	return s.follows.CountFollowers(ctx, userID)
}

func (s *followService) CountFollowing(ctx context.Context, userID uint) (int64, error) {
	return s.follows.CountFollowing(ctx, userID)
}

// FollowState 个人主页上的关注按钮状态
func (s *followService) FollowState(ctx context.Context, viewerID, targetID uint) (State, error) {
	if viewerID == targetID {
		return State{}, nil
	}
	if _, _, err := s.resolvePair(ctx, viewerID, targetID); err != nil {
		return State{}, err
	}
	following, err := s.follows.Exists(ctx, viewerID, targetID)
	if err != nil {
		return State{}, err
	}
	followedBy, err := s.follows.Exists(ctx, targetID, viewerID)
	if err != nil {
		return State{}, err
	}
	return State{Following: following, FollowedBy: followedBy}, nil
}

func (s *followService) FollowCounts(ctx context.Context, userID uint) (Counts, error) {
	if _, err := s.users.GetByID(ctx, userID); err != nil {
		return Counts{}, err
	}
	followers, err := s.follows.CountFollowers(ctx, userID)
	if err != nil {
		return Counts{}, err
	}
	following, err := s.follows.CountFollowing(ctx, userID)
	if err != nil {
		return Counts{}, err
	}
	return Counts{Followers: followers, Following: following}, nil
}

func (s *followService) ListFollowers(ctx context.Context, userID uint, p utils.Pagination) ([]model.Follow, int64, error) {
	if _, err := s.users.GetByID(ctx, userID); err != nil {
		return nil, 0, err
	}
	offset, limit := p.GetPageOffset()
	return s.follows.ListFollowers(ctx, userID, offset, limit)
}

func (s *followService) ListFollowing(ctx context.Context, userID uint, p utils.Pagination) ([]model.Follow, int64, error) {
	if _, err := s.users.GetByID(ctx, userID); err != nil {
		return nil, 0, err
	}
	offset, limit := p.GetPageOffset()
	return s.follows.ListFollowing(ctx, userID, offset, limit)
}

func (s *followService) resolvePair(ctx context.Context, followerID, followeeID uint) (*userModel.User, *userModel.User, error) {
	follower, err := s.users.GetByID(ctx, followerID)
	if err != nil {
		return nil, nil, err
	}
	followee, err := s.users.GetByID(ctx, followeeID)
	if err != nil {
		return nil, nil, err
	}
	return follower, followee, nil
}
