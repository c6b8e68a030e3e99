package service

import (
	"context"
	"errors"
	"testing"
	contentModel "vibelog/internal/domain/content/model"
	"vibelog/internal/domain/report/model"
	"vibelog/internal/domain/report/repository"
	userModel "vibelog/internal/domain/user/model"
	"vibelog/internal/pkg/apperr"
	"vibelog/internal/pkg/event"
	"vibelog/pkg/database"
	baseModel "vibelog/pkg/model"
	"vibelog/pkg/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// MockReportRepository is a mock of ReportRepository
type MockReportRepository struct {
	mock.Mock
}

func (m *MockReportRepository) Create(ctx context.Context, report *model.Report) error {
	args := m.Called(ctx, report)
	if args.Error(0) == nil {
		report.ID = 100
	}
	return args.Error(0)
}

func (m *MockReportRepository) GetByID(ctx context.Context, id uint) (*model.Report, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Report), args.Error(1)
}

func (m *MockReportRepository) LockByID(ctx context.Context, id uint) (*model.Report, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Report), args.Error(1)
}

func (m *MockReportRepository) ListByStatus(ctx context.Context, status model.Status, offset, limit int) ([]model.Report, int64, error) {
	args := m.Called(ctx, status, offset, limit)
	return args.Get(0).([]model.Report), args.Get(1).(int64), args.Error(2)
}

func (m *MockReportRepository) ListByReporter(ctx context.Context, reporterID uint, offset, limit int) ([]model.Report, int64, error) {
	args := m.Called(ctx, reporterID, offset, limit)
	return args.Get(0).([]model.Report), args.Get(1).(int64), args.Error(2)
}

func (m *MockReportRepository) UpdateStatus(ctx context.Context, id uint, status model.Status) error {
	args := m.Called(ctx, id, status)
	return args.Error(0)
}

func (m *MockReportRepository) WithTx(*gorm.DB) repository.ReportRepository {
	return m
}

type MockReviewRecorder struct {
	mock.Mock
}

func (m *MockReviewRecorder) RecordReview(ctx context.Context, moderatorID uint) error {
	return m.Called(ctx, moderatorID).Error(0)
}

type stubUsers []*userModel.User

func (s stubUsers) GetByID(_ context.Context, id uint) (*userModel.User, error) {
	for _, u := range s {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, apperr.NotFound(apperr.EntityUser, id)
}

func (s stubUsers) GetByUsername(_ context.Context, username string) (*userModel.User, error) {
	for _, u := range s {
		if u.Username == username {
			return u, nil
		}
	}
	return nil, apperr.NotFound(apperr.EntityUser, username)
}

type stubPosts map[uint]bool

func (s stubPosts) GetByID(_ context.Context, id uint) (*contentModel.Post, error) {
	if !s[id] {
		return nil, apperr.NotFound(apperr.EntityPost, id)
	}
	return &contentModel.Post{BaseModel: baseModel.BaseModel{ID: id}}, nil
}

type stubComments map[uint]bool

func (s stubComments) GetByID(_ context.Context, id uint) (*contentModel.Comment, error) {
	if !s[id] {
		return nil, apperr.NotFound(apperr.EntityComment, id)
	}
	return &contentModel.Comment{BaseModel: baseModel.BaseModel{ID: id}}, nil
}

func createTestUser(id uint, username string, role userModel.Role) *userModel.User {
	return &userModel.User{BaseModel: baseModel.BaseModel{ID: id}, Username: username, Role: role}
}

var users = stubUsers{
	createTestUser(4, "dave", userModel.RoleUser),
	createTestUser(9, "mod", userModel.RoleModerator),
}

type fixture struct {
	repo      *MockReportRepository
	reviewers *MockReviewRecorder
	events    *event.Recorder
	service   ReportService
}

func newFixture() *fixture {
	f := &fixture{
		repo:      new(MockReportRepository),
		reviewers: new(MockReviewRecorder),
		events:    event.NewRecorder(),
	}
	f.service = NewReportService(Deps{
		Reports:    f.repo,
		Users:      users,
		Posts:      stubPosts{10: true},
		Comments:   stubComments{5: true},
		Reviewers:  f.reviewers,
		Transactor: database.NoopTransactor{},
		Bus:        f.events,
	})
	return f
}

func TestSubmitReport(t *testing.T) {
	ctx := context.Background()
	post, comment := uint(10), uint(5)

	t.Run("comment report is pending with no event", func(t *testing.T) {
		f := newFixture()
		f.repo.On("Create", ctx, mock.AnythingOfType("*model.Report")).Return(nil)

		report, err := f.service.SubmitReport(ctx, "dave", model.CommentTarget(5), "spam")

		require.NoError(t, err)
		assert.Equal(t, model.StatusPending, report.Status)
		assert.Equal(t, uint(4), report.ReporterID)
		assert.Equal(t, uint(5), *report.CommentID)
		assert.Empty(t, f.events.Events())
	})

	invalid := []struct {
		name   string
		target model.Target
		reason string
	}{
		{"both targets", model.Target{PostID: &post, CommentID: &comment}, "spam"},
		{"no target", model.Target{}, "spam"},
		{"blank reason", model.PostTarget(10), " "},
	}
	for _, tc := range invalid {
		t.Run(tc.name, func(t *testing.T) {
			f := newFixture()

			// 未知用户也应先返回校验错误
			_, err := f.service.SubmitReport(ctx, "nobody", tc.target, tc.reason)

			assert.True(t, apperr.IsValidation(err))
			f.repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
		})
	}

	t.Run("unknown reporter", func(t *testing.T) {
		f := newFixture()
		_, err := f.service.SubmitReport(ctx, "nobody", model.PostTarget(10), "spam")
		assert.ErrorIs(t, err, apperr.NotFound(apperr.EntityUser, nil))
	})

	t.Run("unknown post", func(t *testing.T) {
		f := newFixture()
		_, err := f.service.SubmitReport(ctx, "dave", model.PostTarget(11), "spam")
		assert.ErrorIs(t, err, apperr.NotFound(apperr.EntityPost, nil))
	})

	t.Run("unknown comment", func(t *testing.T) {
		f := newFixture()
		_, err := f.service.SubmitReport(ctx, "dave", model.CommentTarget(6), "spam")
		assert.ErrorIs(t, err, apperr.NotFound(apperr.EntityComment, nil))
	})
}

func pendingReport() *model.Report {
	comment := uint(5)
	return &model.Report{
		BaseModel:  baseModel.BaseModel{ID: 100},
		ReporterID: 4,
		CommentID:  &comment,
		Reason:     "spam",
		Status:     model.StatusPending,
	}
}

func TestUpdateReportStatus(t *testing.T) {
	ctx := context.Background()

	t.Run("resolved publishes exactly one event", func(t *testing.T) {
		f := newFixture()
		f.repo.On("LockByID", ctx, uint(100)).Return(pendingReport(), nil)
		f.repo.On("UpdateStatus", ctx, uint(100), model.StatusResolved).Return(nil)

		report, err := f.service.UpdateReportStatus(ctx, 100, model.StatusResolved)

		require.NoError(t, err)
		assert.Equal(t, model.StatusResolved, report.Status)
		comment := uint(5)
		assert.Equal(t, []event.Event{event.ReportResolvedEvent{
			ReportID: 100, ReporterID: 4, ReporterUsername: "dave",
			CommentID: &comment, Outcome: "RESOLVED",
		}}, f.events.Events())
	})

	t.Run("reviewed publishes nothing", func(t *testing.T) {
		f := newFixture()
		f.repo.On("LockByID", ctx, uint(100)).Return(pendingReport(), nil)
		f.repo.On("UpdateStatus", ctx, uint(100), model.StatusReviewed).Return(nil)

		report, err := f.service.UpdateReportStatus(ctx, 100, model.StatusReviewed)

		require.NoError(t, err)
		assert.Equal(t, model.StatusReviewed, report.Status)
		assert.Empty(t, f.events.Events())
	})

	t.Run("resolved again still publishes once", func(t *testing.T) {
		f := newFixture()
		resolved := pendingReport()
		resolved.Status = model.StatusResolved
		f.repo.On("LockByID", ctx, uint(100)).Return(resolved, nil)

		_, err := f.service.UpdateReportStatus(ctx, 100, model.StatusResolved)

		require.NoError(t, err)
		assert.Len(t, f.events.ByTag(event.TagReportResolved), 1)
		f.repo.AssertNotCalled(t, "UpdateStatus", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("backward transition is rejected", func(t *testing.T) {
		f := newFixture()
		resolved := pendingReport()
		resolved.Status = model.StatusResolved
		f.repo.On("LockByID", ctx, uint(100)).Return(resolved, nil)

		_, err := f.service.UpdateReportStatus(ctx, 100, model.StatusPending)

		assert.True(t, apperr.IsValidation(err))
		assert.Empty(t, f.events.Events())
	})

	t.Run("unknown status", func(t *testing.T) {
		f := newFixture()
		_, err := f.service.UpdateReportStatus(ctx, 100, model.Status("CLOSED"))
		assert.True(t, apperr.IsValidation(err))
	})

	t.Run("missing report", func(t *testing.T) {
		f := newFixture()
		f.repo.On("LockByID", ctx, uint(7)).Return(nil, apperr.NotFound(apperr.EntityReport, uint(7)))

		_, err := f.service.UpdateReportStatus(ctx, 7, model.StatusResolved)

		assert.ErrorIs(t, err, apperr.NotFound(apperr.EntityReport, nil))
		assert.Empty(t, f.events.Events())
	})

	t.Run("store failure publishes nothing", func(t *testing.T) {
		f := newFixture()
		f.repo.On("LockByID", ctx, uint(100)).Return(pendingReport(), nil)
		f.repo.On("UpdateStatus", ctx, uint(100), model.StatusResolved).Return(errors.New("db down"))

		_, err := f.service.UpdateReportStatus(ctx, 100, model.StatusResolved)

		assert.Error(t, err)
		assert.Empty(t, f.events.Events())
	})
}

func TestReviewReport(t *testing.T) {
	ctx := context.Background()

	t.Run("status change is counted for the moderator", func(t *testing.T) {
		f := newFixture()
		f.repo.On("LockByID", ctx, uint(100)).Return(pendingReport(), nil)
		f.repo.On("UpdateStatus", ctx, uint(100), model.StatusReviewed).Return(nil)
		f.reviewers.On("RecordReview", ctx, uint(9)).Return(nil)

		_, err := f.service.ReviewReport(ctx, 9, 100, model.StatusReviewed)

		require.NoError(t, err)
		f.reviewers.AssertExpectations(t)
	})

	t.Run("unchanged status is not counted", func(t *testing.T) {
		f := newFixture()
		f.repo.On("LockByID", ctx, uint(100)).Return(pendingReport(), nil)

		_, err := f.service.ReviewReport(ctx, 9, 100, model.StatusPending)

		require.NoError(t, err)
		f.reviewers.AssertNotCalled(t, "RecordReview", mock.Anything, mock.Anything)
	})

	t.Run("recorder failure does not fail the review", func(t *testing.T) {
		f := newFixture()
		f.repo.On("LockByID", ctx, uint(100)).Return(pendingReport(), nil)
		f.repo.On("UpdateStatus", ctx, uint(100), model.StatusResolved).Return(nil)
		f.reviewers.On("RecordReview", ctx, uint(9)).Return(errors.New("db down"))

		report, err := f.service.ReviewReport(ctx, 9, 100, model.StatusResolved)

		require.NoError(t, err)
		assert.Equal(t, model.StatusResolved, report.Status)
		assert.Len(t, f.events.Events(), 1)
	})
}

func TestListReportsByReporter(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	f.repo.On("ListByReporter", ctx, uint(4), 0, 10).Return([]model.Report{*pendingReport()}, int64(1), nil)

	list, total, err := f.service.ListReportsByReporter(ctx, "dave", utils.Pagination{})

	require.NoError(t, err)
	assert.Len(t, list, 1)
	assert.Equal(t, int64(1), total)

	_, _, err = f.service.ListReportsByReporter(ctx, "nobody", utils.Pagination{})
	assert.True(t, apperr.IsNotFound(err))
}
