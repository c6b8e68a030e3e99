package service

import (
	"context"
	"time"
	contentModel "vibelog/internal/domain/content/model"
	"vibelog/internal/domain/like/model"
	"vibelog/internal/domain/like/repository"
	userModel "vibelog/internal/domain/user/model"
	"vibelog/internal/pkg/event"
	"vibelog/pkg/cache"
	"vibelog/pkg/database"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// PostFinder 文章查询
type PostFinder interface {
	GetByID(ctx context.Context, id uint) (*contentModel.Post, error)
}

// UserFinder 用户查询
type UserFinder interface {
	GetByID(ctx context.Context, id uint) (*userModel.User, error)
	GetByUsername(ctx context.Context, username string) (*userModel.User, error)
}

// LikeService 点赞登记
type LikeService interface {
	// ToggleLike 已赞则取消，未赞则点赞；返回当前状态与最新点赞总数
	ToggleLike(ctx context.Context, postID uint, username string) (bool, int64, error)
	CountLikes(ctx context.Context, postID uint) (int64, error)
	IsLiked(ctx context.Context, postID uint, username string) (bool, error)
}

type likeService struct {
	likes repository.LikeRepository
	posts PostFinder
	users UserFinder
	tx    database.Transactor
	cache cache.CounterCache
	bus   event.Publisher
	log   *zap.Logger
	now   func() time.Time
}

func NewLikeService(likes repository.LikeRepository, posts PostFinder, users UserFinder,
	tx database.Transactor, counter cache.CounterCache, bus event.Publisher, log *zap.Logger) LikeService {
	if log == nil {
		log = zap.NewNop()
	}
	return &likeService{
		likes: likes,
		posts: posts,
		users: users,
		tx:    tx,
		cache: counter,
		bus:   bus,
		log:   log,
		now:   time.Now,
	}
}

func (s *likeService) ToggleLike(ctx context.Context, postID uint, username string) (bool, int64, error) {
	post, err := s.posts.GetByID(ctx, postID)
	if err != nil {
		return false, 0, err
	}
	liker, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		return false, 0, err
	}
	var author *userModel.User
	if liker.ID != post.AuthorID {
		if author, err = s.users.GetByID(ctx, post.AuthorID); err != nil {
			return false, 0, err
		}
	}

	var liked, inserted bool
	var total int64
	err = s.tx.Transaction(ctx, func(tx *gorm.DB) error {
		likes := s.likes.WithTx(tx)

		// 先删后插：删除成功即为取消点赞，避免先查后写的竞态
		removed, err := likes.Delete(ctx, liker.ID, postID)
		if err != nil {
			return err
		}
		if !removed {
			liked = true
			inserted, err = likes.Insert(ctx, &model.Like{UserID: liker.ID, PostID: postID, LikedAt: s.now()})
			if err != nil {
				return err
			}
		}

		total, err = likes.CountByPost(ctx, postID)
		return err
	})
	if err != nil {
		return false, 0, err
	}

	if err := s.cache.Delete(ctx, cache.LikeCountKey(postID)); err != nil {
		s.log.Warn("invalidate like count", zap.Uint("post_id", postID), zap.Error(err))
	}

	// 并发请求已插入时 inserted 为 false，不重复通知
	if inserted && author != nil {
		s.bus.Publish(ctx, event.LikeEvent{
			PostID:         postID,
			LikerID:        liker.ID,
			LikerUsername:  liker.Username,
			AuthorID:       author.ID,
			AuthorUsername: author.Username,
		})
	}
	return liked, total, nil
}

func (s *likeService) CountLikes(ctx context.Context, postID uint) (int64, error) {
	return cache.ReadThrough(ctx, s.cache, cache.LikeCountKey(postID), cache.LikeCountTTL, func(ctx context.Context) (int64, error) {
		return s.likes.CountByPost(ctx, postID)
	})
}

func (s *likeService) IsLiked(ctx context.Context, postID uint, username string) (bool, error) {
	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		return false, err
	}
	return s.likes.Exists(ctx, user.ID, postID)
}
