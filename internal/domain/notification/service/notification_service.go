package service

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"
	"vibelog/internal/domain/notification/model"
	"vibelog/internal/domain/notification/repository"
	userModel "vibelog/internal/domain/user/model"
	"vibelog/internal/pkg/apperr"
	"vibelog/internal/pkg/event"
	"vibelog/internal/pkg/worker"
	"vibelog/pkg/cache"
	"vibelog/pkg/metrics"
	"vibelog/pkg/utils"

	"go.uber.org/zap"
)

// UserFinder 用户查询
type UserFinder interface {
	GetByUsername(ctx context.Context, username string) (*userModel.User, error)
}

// PushSubmitter 推送任务投递，满队列时返回 false
type PushSubmitter interface {
	Submit(task worker.PushTask) bool
}

// NotificationService 通知分发与已读管理
type NotificationService interface {
	// OnEvent 把领域事件转成通知并持久化
	OnEvent(ctx context.Context, evt event.Event) error
	ListNotifications(ctx context.Context, username string, p utils.Pagination) ([]model.Notification, int64, error)
	CountUnread(ctx context.Context, username string) (int64, error)
	MarkAllRead(ctx context.Context, username string) error
	MarkRead(ctx context.Context, username string, id uint) error
}

type Deps struct {
	Notifications repository.NotificationRepository
	Users         UserFinder
	Cache         cache.CounterCache
	Push          PushSubmitter // 可为空
	Metrics       *metrics.Metrics
	Log           *zap.Logger
}

type notificationService struct {
	repo    repository.NotificationRepository
	users   UserFinder
	cache   cache.CounterCache
	push    PushSubmitter
	metrics *metrics.Metrics
	log     *zap.Logger
	now     func() time.Time
}

func NewNotificationService(d Deps) NotificationService {
	if d.Log == nil {
		d.Log = zap.NewNop()
	}
	if d.Metrics == nil {
		d.Metrics = metrics.NewNop()
	}
	return &notificationService{
		repo:    d.Notifications,
		users:   d.Users,
		cache:   d.Cache,
		push:    d.Push,
		metrics: d.Metrics,
		log:     d.Log,
		now:     time.Now,
	}
}

// Subscribe 订阅全部事件标签
func Subscribe(bus *event.Bus, s NotificationService) {
	for _, tag := range []event.Tag{
		event.TagLike,
		event.TagComment,
		event.TagFollow,
		event.TagReblog,
		event.TagReportResolved,
	} {
		bus.Subscribe(tag, s.OnEvent)
	}
}

// Render 生成通知类型、接收人与文案
func Render(evt event.Event) (model.Type, uint, string, error) {
	switch e := evt.(type) {
	case event.LikeEvent:
		return model.TypeLike, e.AuthorID,
			fmt.Sprintf("@%s liked your post #%d", e.LikerUsername, e.PostID), nil
	case event.CommentEvent:
		return model.TypeComment, e.AuthorID,
			fmt.Sprintf("@%s commented on your post #%d", e.CommenterUsername, e.PostID), nil
	case event.FollowEvent:
		return model.TypeFollow, e.FolloweeID,
			fmt.Sprintf("@%s is now following you", e.FollowerUsername), nil
	case event.ReblogEvent:
		return model.TypeReblog, e.OriginalAuthorID,
			fmt.Sprintf("@%s reblogged your post #%d", e.RebloggerUsername, e.OriginalPostID), nil
	case event.ReportResolvedEvent:
		var target string
		switch {
		case e.PostID != nil:
			target = fmt.Sprintf("post #%d", *e.PostID)
		case e.CommentID != nil:
			target = fmt.Sprintf("comment #%d", *e.CommentID)
		default:
			return "", 0, "", fmt.Errorf("report %d has no target", e.ReportID)
		}
		return model.TypeReport, e.ReporterID,
			fmt.Sprintf("Your report on %s was %s", target, strings.ToLower(e.Outcome)), nil
	default:
		return "", 0, "", fmt.Errorf("unsupported event %T", evt)
	}
}

func (s *notificationService) OnEvent(ctx context.Context, evt event.Event) error {
	typ, recipientID, content, err := Render(evt)
	if err != nil {
		s.metrics.NotificationErrors.WithLabelValues("render").Inc()
		return err
	}

	n, err := model.NewNotification(typ, recipientID, content, s.now())
	if err != nil {
		s.metrics.NotificationErrors.WithLabelValues("render").Inc()
		return err
	}
	if err := s.repo.Create(ctx, n); err != nil {
		s.metrics.NotificationErrors.WithLabelValues("persist").Inc()
		return fmt.Errorf("persist %s notification: %w", typ, err)
	}
	s.metrics.NotificationsSent.WithLabelValues(string(typ)).Inc()

	if err := s.cache.Delete(ctx, cache.UnreadCountKey(recipientID)); err != nil {
		s.log.Warn("invalidate unread count", zap.Uint("recipient_id", recipientID), zap.Error(err))
	}

	s.forward(n)
	return nil
}

// forward 推送到移动端，失败不影响通知本身
func (s *notificationService) forward(n *model.Notification) {
	if s.push == nil {
		return
	}
	ok := s.push.Submit(worker.PushTask{
		AccountID: strconv.FormatUint(uint64(n.RecipientID), 10),
		Title:     string(n.Type),
		Body:      n.Content,
		Ext: map[string]string{
			"notificationId": strconv.FormatUint(uint64(n.ID), 10),
			"type":           string(n.Type),
		},
	})
	if !ok {
		s.metrics.NotificationErrors.WithLabelValues("push").Inc()
		s.log.Warn("push queue full, dropping", zap.Uint("notification_id", n.ID), zap.Uint("recipient_id", n.RecipientID))
	}
}

func (s *notificationService) ListNotifications(ctx context.Context, username string, p utils.Pagination) ([]model.Notification, int64, error) {
	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		return nil, 0, err
	}
	offset, limit := p.GetPageOffset()
	return s.repo.ListByRecipient(ctx, user.ID, offset, limit)
}

func (s *notificationService) CountUnread(ctx context.Context, username string) (int64, error) {
	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		return 0, err
	}
	return cache.ReadThrough(ctx, s.cache, cache.UnreadCountKey(user.ID), cache.UnreadCountTTL, func(ctx context.Context) (int64, error) {
		return s.repo.CountUnread(ctx, user.ID)
	})
}

func (s *notificationService) MarkAllRead(ctx context.Context, username string) error {
	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		return err
	}
	if _, err := s.repo.MarkAllRead(ctx, user.ID); err != nil {
		return err
	}
	s.invalidate(ctx, user.ID)
	return nil
}

func (s *notificationService) MarkRead(ctx context.Context, username string, id uint) error {
	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		return err
	}
	rows, err := s.repo.MarkRead(ctx, user.ID, id)
	if err != nil {
		return err
	}
	// 不存在与不属于本人同样返回 NotFound
	if rows == 0 {
		return apperr.NotFound(apperr.EntityNotification, id)
	}
	s.invalidate(ctx, user.ID)
	return nil
}

func (s *notificationService) invalidate(ctx context.Context, userID uint) {
	if err := s.cache.Delete(ctx, cache.UnreadCountKey(userID)); err != nil {
		s.log.Warn("invalidate unread count", zap.Uint("recipient_id", userID), zap.Error(err))
	}
}
