package service

import (
	"context"
	"time"
	contentModel "vibelog/internal/domain/content/model"
	"vibelog/internal/domain/report/model"
	"vibelog/internal/domain/report/repository"
	userModel "vibelog/internal/domain/user/model"
	"vibelog/internal/pkg/apperr"
	"vibelog/internal/pkg/event"
	"vibelog/pkg/database"
	"vibelog/pkg/metrics"
	"vibelog/pkg/utils"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// UserFinder 用户查询
type UserFinder interface {
	GetByID(ctx context.Context, id uint) (*userModel.User, error)
	GetByUsername(ctx context.Context, username string) (*userModel.User, error)
}

// PostFinder 文章查询
type PostFinder interface {
	GetByID(ctx context.Context, id uint) (*contentModel.Post, error)
}

// CommentFinder 评论查询
type CommentFinder interface {
	GetByID(ctx context.Context, id uint) (*contentModel.Comment, error)
}

// ReviewRecorder 记录版主处理的举报数
type ReviewRecorder interface {
	RecordReview(ctx context.Context, moderatorID uint) error
}

// ReportService 举报流程
// 状态只能前进：PENDING -> REVIEWED -> RESOLVED，PENDING 可直接到 RESOLVED
type ReportService interface {
	SubmitReport(ctx context.Context, reporterUsername string, target model.Target, reason string) (*model.Report, error)
	ListReportsByStatus(ctx context.Context, status model.Status, p utils.Pagination) ([]model.Report, int64, error)
	ListReportsByReporter(ctx context.Context, username string, p utils.Pagination) ([]model.Report, int64, error)
	UpdateReportStatus(ctx context.Context, reportID uint, status model.Status) (*model.Report, error)
	// ReviewReport 版主处理举报，状态变化时累加其处理计数
	ReviewReport(ctx context.Context, moderatorID, reportID uint, status model.Status) (*model.Report, error)
}

type reportService struct {
	reports   repository.ReportRepository
	users     UserFinder
	posts     PostFinder
	comments  CommentFinder
	reviewers ReviewRecorder
	tx        database.Transactor
	bus       event.Publisher
	metrics   *metrics.Metrics
	log       *zap.Logger
	now       func() time.Time
}

// Deps 举报服务依赖
type Deps struct {
	Reports    repository.ReportRepository
	Users      UserFinder
	Posts      PostFinder
	Comments   CommentFinder
	Reviewers  ReviewRecorder
	Transactor database.Transactor
	Bus        event.Publisher
	Metrics    *metrics.Metrics
	Log        *zap.Logger
}

func NewReportService(d Deps) ReportService {
	s := &reportService{
		reports:   d.Reports,
		users:     d.Users,
		posts:     d.Posts,
		comments:  d.Comments,
		reviewers: d.Reviewers,
		tx:        d.Transactor,
		bus:       d.Bus,
		metrics:   d.Metrics,
		log:       d.Log,
		now:       time.Now,
	}
	if s.metrics == nil {
		s.metrics = metrics.NewNop()
	}
	if s.log == nil {
		s.log = zap.NewNop()
	}
	return s
}

// SubmitReport 提交举报，先做参数校验再查询举报人与举报对象
func (s *reportService) SubmitReport(ctx context.Context, reporterUsername string, target model.Target, reason string) (*model.Report, error) {
	report, err := model.NewReport(0, target, reason, s.now())
	if err != nil {
		return nil, err
	}

	reporter, err := s.users.GetByUsername(ctx, reporterUsername)
	if err != nil {
		return nil, err
	}
	if target.PostID != nil {
		if _, err := s.posts.GetByID(ctx, *target.PostID); err != nil {
			return nil, err
		}
	} else {
		if _, err := s.comments.GetByID(ctx, *target.CommentID); err != nil {
			return nil, err
		}
	}

	report.ReporterID = reporter.ID
	if err := s.reports.Create(ctx, report); err != nil {
		return nil, err
	}
	return report, nil
}

func (s *reportService) ListReportsByStatus(ctx context.Context, status model.Status, p utils.Pagination) ([]model.Report, int64, error) {
	offset, limit := p.GetPageOffset()
	return s.reports.ListByStatus(ctx, status, offset, limit)
}

func (s *reportService) ListReportsByReporter(ctx context.Context, username string, p utils.Pagination) ([]model.Report, int64, error) {
	reporter, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		return nil, 0, err
	}
	offset, limit := p.GetPageOffset()
	return s.reports.ListByReporter(ctx, reporter.ID, offset, limit)
}

func (s *reportService) UpdateReportStatus(ctx context.Context, reportID uint, status model.Status) (*model.Report, error) {
	report, _, err := s.updateStatus(ctx, reportID, status)
	return report, err
}

func (s *reportService) ReviewReport(ctx context.Context, moderatorID, reportID uint, status model.Status) (*model.Report, error) {
	report, changed, err := s.updateStatus(ctx, reportID, status)
	if err != nil {
		return nil, err
	}
	if changed && s.reviewers != nil {
		if err := s.reviewers.RecordReview(ctx, moderatorID); err != nil {
			s.log.Warn("record review", zap.Uint("moderator_id", moderatorID), zap.Error(err))
		}
	}
	return report, nil
}

func (s *reportService) updateStatus(ctx context.Context, reportID uint, status model.Status) (*model.Report, bool, error) {
	if _, err := model.ParseStatus(string(status)); err != nil {
		return nil, false, err
	}

	var report *model.Report
	var previous model.Status
	err := s.tx.Transaction(ctx, func(tx *gorm.DB) error {
		reports := s.reports.WithTx(tx)

		r, err := reports.LockByID(ctx, reportID)
		if err != nil {
			return err
		}
		if !r.Status.CanTransitionTo(status) {
			return apperr.Validation("report %d cannot move from %s to %s", reportID, r.Status, status)
		}
		previous = r.Status
		if r.Status != status {
			if err := reports.UpdateStatus(ctx, reportID, status); err != nil {
				return err
			}
			r.Status = status
		}
		report = r
		return nil
	})
	if err != nil {
		return nil, false, err
	}

	s.metrics.ReportStatusChanges.WithLabelValues(string(status)).Inc()

	if status == model.StatusResolved {
		s.publishResolved(ctx, report)
	}
	return report, previous != status, nil
}

// publishResolved 举报人查询失败只记录日志，状态已提交
func (s *reportService) publishResolved(ctx context.Context, report *model.Report) {
	reporter, err := s.users.GetByID(ctx, report.ReporterID)
	if err != nil {
		s.log.Error("load reporter for resolved report",
			zap.Uint("report_id", report.ID),
			zap.Uint("reporter_id", report.ReporterID),
			zap.Error(err))
		return
	}
	s.bus.Publish(ctx, event.ReportResolvedEvent{
		ReportID:         report.ID,
		ReporterID:       reporter.ID,
		ReporterUsername: reporter.Username,
		PostID:           report.PostID,
		CommentID:        report.CommentID,
		Outcome:          string(report.Status),
	})
}
