package service

import (
	"context"
	"vibelog/internal/domain/cascade/repository"
	userModel "vibelog/internal/domain/user/model"
	"vibelog/internal/pkg/apperr"
	"vibelog/internal/pkg/storage"
	"vibelog/pkg/cache"
	"vibelog/pkg/database"
	"vibelog/pkg/metrics"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// UserFinder 用户查询
type UserFinder interface {
	GetByID(ctx context.Context, id uint) (*userModel.User, error)
	GetByUsername(ctx context.Context, username string) (*userModel.User, error)
}

// CascadeService 删除文章/评论及其全部依赖记录
type CascadeService interface {
	// DeletePost 作者删除文章
	DeletePost(ctx context.Context, postID uint, username string) error
	// DeletePostAsModerator 版主删除，跳过作者校验
	DeletePostAsModerator(ctx context.Context, postID uint, moderator string) error
	DeleteComment(ctx context.Context, commentID uint, username string) error
	DeleteCommentAsModerator(ctx context.Context, commentID uint, moderator string) error
	// PurgeUserContent 删除用户的全部文章、评论、点赞、关注和举报，供外部删除账号前调用
	PurgeUserContent(ctx context.Context, userID uint) error
}

type Deps struct {
	Repo       repository.CascadeRepository
	Users      UserFinder
	Transactor database.Transactor
	Storage    storage.MediaStorage
	Cache      cache.CounterCache
	Metrics    *metrics.Metrics
	Log        *zap.Logger
}

type cascadeService struct {
	repo    repository.CascadeRepository
	users   UserFinder
	tx      database.Transactor
	storage storage.MediaStorage
	cache   cache.CounterCache
	metrics *metrics.Metrics
	log     *zap.Logger
}

const (
	initiatorOwner     = "owner"
	initiatorModerator = "moderator"
	initiatorPurge     = "purge"
)

func NewCascadeService(d Deps) CascadeService {
	if d.Log == nil {
		d.Log = zap.NewNop()
	}
	if d.Metrics == nil {
		d.Metrics = metrics.NewNop()
	}
	if d.Cache == nil {
		d.Cache = cache.NoopCounterCache{}
	}
	return &cascadeService{
		repo:    d.Repo,
		users:   d.Users,
		tx:      d.Transactor,
		storage: d.Storage,
		cache:   d.Cache,
		metrics: d.Metrics,
		log:     d.Log,
	}
}

func (s *cascadeService) DeletePost(ctx context.Context, postID uint, username string) error {
	caller, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		return err
	}
	return s.deletePost(ctx, postID, initiatorOwner, func(authorID uint) error {
		if authorID != caller.ID {
			return apperr.Unauthorized("only the author can delete post %d", postID)
		}
		return nil
	})
}

func (s *cascadeService) DeletePostAsModerator(ctx context.Context, postID uint, moderator string) error {
	if err := s.deletePost(ctx, postID, initiatorModerator, nil); err != nil {
		return err
	}
	s.log.Info("post removed by moderator", zap.Uint("post_id", postID), zap.String("moderator", moderator))
	return nil
}

func (s *cascadeService) DeleteComment(ctx context.Context, commentID uint, username string) error {
	caller, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		return err
	}
	return s.deleteComment(ctx, commentID, initiatorOwner, func(authorID uint) error {
		if authorID != caller.ID {
			return apperr.Unauthorized("only the author can delete comment %d", commentID)
		}
		return nil
	})
}

func (s *cascadeService) DeleteCommentAsModerator(ctx context.Context, commentID uint, moderator string) error {
	if err := s.deleteComment(ctx, commentID, initiatorModerator, nil); err != nil {
		return err
	}
	s.log.Info("comment removed by moderator", zap.Uint("comment_id", commentID), zap.String("moderator", moderator))
	return nil
}

// deletePost 校验与级联在同一事务内完成，媒体文件在提交后清理
func (s *cascadeService) deletePost(ctx context.Context, postID uint, initiator string, authorize func(authorID uint) error) error {
	var keys []string
	err := s.tx.Transaction(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		post, err := repo.GetPost(ctx, postID)
		if err != nil {
			return err
		}
		if authorize != nil {
			if err := authorize(post.AuthorID); err != nil {
				return err
			}
		}
		keys, err = cascadePost(ctx, repo, postID)
		return err
	})
	if err != nil {
		return err
	}

	s.metrics.CascadeDeletes.WithLabelValues("post", initiator).Inc()
	s.invalidateLikeCounts(ctx, postID)
	s.cleanupMedia(ctx, keys)
	return nil
}

func (s *cascadeService) deleteComment(ctx context.Context, commentID uint, initiator string, authorize func(authorID uint) error) error {
	err := s.tx.Transaction(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		comment, err := repo.GetComment(ctx, commentID)
		if err != nil {
			return err
		}
		if authorize != nil {
			if err := authorize(comment.AuthorID); err != nil {
				return err
			}
		}
		return cascadeComment(ctx, repo, commentID)
	})
	if err != nil {
		return err
	}

	s.metrics.CascadeDeletes.WithLabelValues("comment", initiator).Inc()
	return nil
}

func (s *cascadeService) PurgeUserContent(ctx context.Context, userID uint) error {
	if _, err := s.users.GetByID(ctx, userID); err != nil {
		return err
	}

	var keys []string
	var postIDs, likedIDs []uint
	err := s.tx.Transaction(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		var err error
		postIDs, err = repo.PostIDsByAuthor(ctx, userID)
		if err != nil {
			return err
		}
		for _, id := range postIDs {
			postKeys, err := cascadePost(ctx, repo, id)
			if err != nil {
				return err
			}
			keys = append(keys, postKeys...)
		}

		// 文章已删除，剩下的是在他人文章下的评论
		commentIDs, err := repo.CommentIDsByAuthor(ctx, userID)
		if err != nil {
			return err
		}
		for _, id := range commentIDs {
			if err := cascadeComment(ctx, repo, id); err != nil {
				return err
			}
		}

		// 自己文章上的点赞已随文章删除，剩下的是对他人文章的点赞
		if likedIDs, err = repo.LikedPostIDsByUser(ctx, userID); err != nil {
			return err
		}
		if _, err := repo.DeleteLikesByUser(ctx, userID); err != nil {
			return err
		}
		if _, err := repo.DeleteFollowsByUser(ctx, userID); err != nil {
			return err
		}
		_, err = repo.DeleteReportsByReporter(ctx, userID)
		return err
	})
	if err != nil {
		return err
	}

	s.metrics.CascadeDeletes.WithLabelValues("user", initiatorPurge).Inc()
	s.invalidateLikeCounts(ctx, append(postIDs, likedIDs...)...)
	s.cleanupMedia(ctx, keys)
	s.log.Info("user content purged", zap.Uint("user_id", userID), zap.Int("posts", len(postIDs)))
	return nil
}

// cascadePost 按引用顺序删除文章的依赖记录和文章本身，返回待清理的媒体 key
func cascadePost(ctx context.Context, repo repository.CascadeRepository, postID uint) ([]string, error) {
	if _, err := repo.DeleteReportsByPost(ctx, postID); err != nil {
		return nil, err
	}
	if _, err := repo.DeleteReportsByCommentsOfPost(ctx, postID); err != nil {
		return nil, err
	}
	if _, err := repo.DeleteLikesByPost(ctx, postID); err != nil {
		return nil, err
	}
	if _, err := repo.DeleteCommentsByPost(ctx, postID); err != nil {
		return nil, err
	}
	keys, err := repo.MediaKeysByPost(ctx, postID)
	if err != nil {
		return nil, err
	}
	if _, err := repo.DeleteMediaByPost(ctx, postID); err != nil {
		return nil, err
	}
	if _, err := repo.DetachReblogs(ctx, postID); err != nil {
		return nil, err
	}
	if err := repo.DeletePost(ctx, postID); err != nil {
		return nil, err
	}
	return keys, nil
}

func cascadeComment(ctx context.Context, repo repository.CascadeRepository, commentID uint) error {
	if _, err := repo.DeleteReportsByComment(ctx, commentID); err != nil {
		return err
	}
	return repo.DeleteComment(ctx, commentID)
}

func (s *cascadeService) invalidateLikeCounts(ctx context.Context, postIDs ...uint) {
	if len(postIDs) == 0 {
		return
	}
	keys := make([]string, 0, len(postIDs))
	for _, id := range postIDs {
		keys = append(keys, cache.LikeCountKey(id))
	}
	if err := s.cache.Delete(ctx, keys...); err != nil {
		s.log.Warn("invalidate like counts", zap.Int("posts", len(postIDs)), zap.Error(err))
	}
}

// cleanupMedia 外部文件删除失败只记录，不影响已提交的删除
func (s *cascadeService) cleanupMedia(ctx context.Context, keys []string) {
	if len(keys) == 0 || s.storage == nil {
		return
	}
	if err := s.storage.DeleteObjects(ctx, keys); err != nil {
		s.metrics.MediaCleanupErrors.Inc()
		s.log.Error("delete media objects", zap.Strings("keys", keys), zap.Error(err))
	}
}
