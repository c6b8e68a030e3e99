package service

import (
	"context"
	"io"
	"time"
	"vibelog/internal/domain/content/model"
	"vibelog/internal/domain/content/repository"
	userModel "vibelog/internal/domain/user/model"
	"vibelog/internal/pkg/apperr"
	"vibelog/internal/pkg/event"
	"vibelog/internal/pkg/storage"
	"vibelog/pkg/database"
	"vibelog/pkg/utils"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// UserFinder 用户查询
type UserFinder interface {
	GetByID(ctx context.Context, id uint) (*userModel.User, error)
	GetByUsername(ctx context.Context, username string) (*userModel.User, error)
}

// PostRemover 级联删除文章，撤销转发时使用
type PostRemover interface {
	DeletePost(ctx context.Context, postID uint, username string) error
}

type ContentService interface {
	CreatePost(ctx context.Context, username, title, body string) (*model.Post, error)
	GetPost(ctx context.Context, id uint) (*model.Post, error)
	ListPostsByAuthor(ctx context.Context, username string, p utils.Pagination) ([]model.Post, int64, error)
	AttachMedia(ctx context.Context, postID uint, username, filename, contentType string, r io.Reader) (*model.Media, error)

	AddComment(ctx context.Context, postID uint, username, content string) (*model.Comment, error)
	ListComments(ctx context.Context, postID uint) ([]model.Comment, error)
	UpdateComment(ctx context.Context, commentID uint, username, content string) (*model.Comment, error)

	Reblog(ctx context.Context, username string, postID uint) (*model.Post, bool, error)
	UndoReblog(ctx context.Context, username string, postID uint) error
	IsReblogged(ctx context.Context, username string, postID uint) (bool, error)
	CountReblogs(ctx context.Context, postID uint) (int64, error)
}

type contentService struct {
	posts    repository.PostRepository
	comments repository.CommentRepository
	media    repository.MediaRepository
	users    UserFinder
	remover  PostRemover
	storage  storage.MediaStorage
	tx       database.Transactor
	bus      event.Publisher
	log      *zap.Logger
	now      func() time.Time
}

// Deps 内容服务依赖
type Deps struct {
	Posts      repository.PostRepository
	Comments   repository.CommentRepository
	Media      repository.MediaRepository
	Users      UserFinder
	Remover    PostRemover
	Storage    storage.MediaStorage
	Transactor database.Transactor
	Bus        event.Publisher
	Log        *zap.Logger
}

func NewContentService(d Deps) ContentService {
	log := d.Log
	if log == nil {
		log = zap.NewNop()
	}
	return &contentService{
		posts:    d.Posts,
		comments: d.Comments,
		media:    d.Media,
		users:    d.Users,
		remover:  d.Remover,
		storage:  d.Storage,
		tx:       d.Transactor,
		bus:      d.Bus,
		log:      log,
		now:      time.Now,
	}
}

// --- Post ---

func (s *contentService) CreatePost(ctx context.Context, username, title, body string) (*model.Post, error) {
	if title == "" && body == "" {
		return nil, apperr.Validation("post must have a title or a body")
	}
	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}

	post := &model.Post{AuthorID: user.ID, Title: title, Body: body}
	if err := s.posts.Create(ctx, post); err != nil {
		return nil, err
	}
	return post, nil
}

func (s *contentService) GetPost(ctx context.Context, id uint) (*model.Post, error) {
	return s.posts.GetByID(ctx, id)
}

func (s *contentService) ListPostsByAuthor(ctx context.Context, username string, p utils.Pagination) ([]model.Post, int64, error) {
	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		return nil, 0, err
	}
	offset, limit := p.GetPageOffset()
	return s.posts.ListByAuthor(ctx, user.ID, offset, limit)
}

// AttachMedia 上传附件并关联到文章，仅作者可操作
func (s *contentService) AttachMedia(ctx context.Context, postID uint, username, filename, contentType string, r io.Reader) (*model.Media, error) {
	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	post, err := s.posts.GetByID(ctx, postID)
	if err != nil {
		return nil, err
	}
	if post.AuthorID != user.ID {
		return nil, apperr.Unauthorized("only the author can attach media to post %d", postID)
	}

	key, url, err := s.storage.Upload(ctx, filename, r)
	if err != nil {
		return nil, apperr.Internal("upload media", err)
	}

	media := &model.Media{PostID: postID, ObjectKey: key, URL: url, ContentType: contentType}
	if err := s.media.Create(ctx, media); err != nil {
		// 记录写入失败时清理已上传的对象
		if delErr := s.storage.DeleteObjects(ctx, []string{key}); delErr != nil {
			s.log.Warn("orphaned media object", zap.String("key", key), zap.Error(delErr))
		}
		return nil, err
	}
	return media, nil
}

// --- Comment ---

func (s *contentService) AddComment(ctx context.Context, postID uint, username, content string) (*model.Comment, error) {
	commenter, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	post, err := s.posts.GetByID(ctx, postID)
	if err != nil {
		return nil, err
	}
	comment, err := model.NewComment(post.ID, commenter.ID, content)
	if err != nil {
		return nil, err
	}
	author, err := s.users.GetByID(ctx, post.AuthorID)
	if err != nil {
		return nil, err
	}

	if err := s.comments.Create(ctx, comment); err != nil {
		return nil, err
	}

	s.bus.Publish(ctx, event.CommentEvent{
		PostID:            post.ID,
		CommentID:         comment.ID,
		CommenterID:       commenter.ID,
		CommenterUsername: commenter.Username,
		AuthorID:          author.ID,
		AuthorUsername:    author.Username,
	})
	return comment, nil
}

func (s *contentService) ListComments(ctx context.Context, postID uint) ([]model.Comment, error) {
	if _, err := s.posts.GetByID(ctx, postID); err != nil {
		return nil, err
	}
	return s.comments.ListByPost(ctx, postID)
}

// UpdateComment 仅作者可修改，记录编辑时间
func (s *contentService) UpdateComment(ctx context.Context, commentID uint, username, content string) (*model.Comment, error) {
	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}

	var comment *model.Comment
	err = s.tx.Transaction(ctx, func(tx *gorm.DB) error {
		comments := s.comments.WithTx(tx)

		c, err := comments.GetByID(ctx, commentID)
		if err != nil {
			return err
		}
		if c.AuthorID != user.ID {
			return apperr.Unauthorized("only the author can edit comment %d", commentID)
		}
		if err := c.Edit(content, s.now()); err != nil {
			return err
		}
		if err := comments.UpdateContent(ctx, c); err != nil {
			return err
		}
		comment = c
		return nil
	})
	if err != nil {
		return nil, err
	}
	return comment, nil
}

// --- Reblog ---

// Reblog 转发文章；转发一条转发时指向其原文
// 重复转发返回已有记录，第二个返回值为 false 且不发布事件
func (s *contentService) Reblog(ctx context.Context, username string, postID uint) (*model.Post, bool, error) {
	reblogger, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		return nil, false, err
	}
	original, err := s.resolveOriginal(ctx, postID)
	if err != nil {
		return nil, false, err
	}
	originalAuthor, err := s.users.GetByID(ctx, original.AuthorID)
	if err != nil {
		return nil, false, err
	}

	originalID := original.ID
	var reblog *model.Post
	created := false
	err = s.tx.Transaction(ctx, func(tx *gorm.DB) error {
		posts := s.posts.WithTx(tx)

		existing, err := posts.FindReblog(ctx, reblogger.ID, originalID)
		if err == nil {
			reblog = existing
			return nil
		}
		if !apperr.IsNotFound(err) {
			return err
		}

		candidate := &model.Post{
			AuthorID:       reblogger.ID,
			Title:          original.Title,
			OriginalPostID: &originalID,
		}
		created, err = posts.CreateReblog(ctx, candidate)
		if err != nil {
			return err
		}
		if created {
			reblog = candidate
			return nil
		}
		// 并发转发已写入
		reblog, err = posts.FindReblog(ctx, reblogger.ID, originalID)
		return err
	})
	if err != nil {
		return nil, false, err
	}

	if created {
		s.bus.Publish(ctx, event.ReblogEvent{
			OriginalPostID:         originalID,
			ReblogPostID:           reblog.ID,
			RebloggerID:            reblogger.ID,
			RebloggerUsername:      reblogger.Username,
			OriginalAuthorID:       originalAuthor.ID,
			OriginalAuthorUsername: originalAuthor.Username,
		})
	}
	return reblog, created, nil
}

// UndoReblog 删除转发，转发上的点赞、评论与举报随之级联删除
func (s *contentService) UndoReblog(ctx context.Context, username string, postID uint) error {
	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		return err
	}
	original, err := s.resolveOriginal(ctx, postID)
	if err != nil {
		return err
	}
	reblog, err := s.posts.FindReblog(ctx, user.ID, original.ID)
	if err != nil {
		if apperr.IsNotFound(err) {
			return nil
		}
		return err
	}
	return s.remover.DeletePost(ctx, reblog.ID, username)
}

// IsReblogged 与 Reblog 一致，传入转发时按其原文判断
func (s *contentService) IsReblogged(ctx context.Context, username string, postID uint) (bool, error) {
	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		return false, err
	}
	original, err := s.resolveOriginal(ctx, postID)
	if err != nil {
		return false, err
	}
	_, err = s.posts.FindReblog(ctx, user.ID, original.ID)
	if err == nil {
		return true, nil
	}
	if apperr.IsNotFound(err) {
		return false, nil
	}
	return false, err
}

func (s *contentService) CountReblogs(ctx context.Context, postID uint) (int64, error) {
	original, err := s.resolveOriginal(ctx, postID)
	if err != nil {
		return 0, err
	}
	return s.posts.CountReblogs(ctx, original.ID)
}

func (s *contentService) resolveOriginal(ctx context.Context, postID uint) (*model.Post, error) {
	post, err := s.posts.GetByID(ctx, postID)
	if err != nil {
		return nil, err
	}
	if !post.IsReblog() {
		return post, nil
	}
	return s.posts.GetByID(ctx, *post.OriginalPostID)
}
