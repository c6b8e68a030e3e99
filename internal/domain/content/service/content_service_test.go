package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"vibelog/internal/domain/content/model"
	"vibelog/internal/domain/content/repository"
	userModel "vibelog/internal/domain/user/model"
	"vibelog/internal/pkg/apperr"
	"vibelog/internal/pkg/event"
	"vibelog/internal/pkg/storage"
	"vibelog/pkg/database"
	baseModel "vibelog/pkg/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type MockPostRepository struct {
	mock.Mock
}

func (m *MockPostRepository) Create(ctx context.Context, post *model.Post) error {
	args := m.Called(ctx, post)
	return args.Error(0)
}

func (m *MockPostRepository) GetByID(ctx context.Context, id uint) (*model.Post, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Post), args.Error(1)
}

func (m *MockPostRepository) ListByAuthor(ctx context.Context, authorID uint, offset, limit int) ([]model.Post, int64, error) {
	args := m.Called(ctx, authorID, offset, limit)
	return args.Get(0).([]model.Post), args.Get(1).(int64), args.Error(2)
}

func (m *MockPostRepository) CreateReblog(ctx context.Context, reblog *model.Post) (bool, error) {
	args := m.Called(ctx, reblog)
	return args.Bool(0), args.Error(1)
}

func (m *MockPostRepository) FindReblog(ctx context.Context, authorID, originalPostID uint) (*model.Post, error) {
	args := m.Called(ctx, authorID, originalPostID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Post), args.Error(1)
}

func (m *MockPostRepository) CountReblogs(ctx context.Context, originalPostID uint) (int64, error) {
	args := m.Called(ctx, originalPostID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockPostRepository) WithTx(*gorm.DB) repository.PostRepository {
	return m
}

type MockCommentRepository struct {
	mock.Mock
}

func (m *MockCommentRepository) Create(ctx context.Context, comment *model.Comment) error {
	args := m.Called(ctx, comment)
	if args.Error(0) == nil {
		comment.ID = 55
	}
	return args.Error(0)
}

func (m *MockCommentRepository) GetByID(ctx context.Context, id uint) (*model.Comment, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Comment), args.Error(1)
}

func (m *MockCommentRepository) ListByPost(ctx context.Context, postID uint) ([]model.Comment, error) {
	args := m.Called(ctx, postID)
	return args.Get(0).([]model.Comment), args.Error(1)
}

func (m *MockCommentRepository) UpdateContent(ctx context.Context, comment *model.Comment) error {
	args := m.Called(ctx, comment)
	return args.Error(0)
}

func (m *MockCommentRepository) WithTx(*gorm.DB) repository.CommentRepository {
	return m
}

type MockMediaRepository struct {
	mock.Mock
}

func (m *MockMediaRepository) Create(ctx context.Context, media *model.Media) error {
	args := m.Called(ctx, media)
	return args.Error(0)
}

func (m *MockMediaRepository) ListByPost(ctx context.Context, postID uint) ([]model.Media, error) {
	args := m.Called(ctx, postID)
	return args.Get(0).([]model.Media), args.Error(1)
}

type MockUserFinder struct {
	mock.Mock
}

func (m *MockUserFinder) GetByID(ctx context.Context, id uint) (*userModel.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*userModel.User), args.Error(1)
}

func (m *MockUserFinder) GetByUsername(ctx context.Context, username string) (*userModel.User, error) {
	args := m.Called(ctx, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*userModel.User), args.Error(1)
}

type MockRemover struct {
	mock.Mock
}

func (m *MockRemover) DeletePost(ctx context.Context, postID uint, username string) error {
	args := m.Called(ctx, postID, username)
	return args.Error(0)
}

type fixture struct {
	posts    *MockPostRepository
	comments *MockCommentRepository
	media    *MockMediaRepository
	users    *MockUserFinder
	remover  *MockRemover
	storage  *storage.MemoryStorage
	events   *event.Recorder
	service  ContentService
}

func newFixture() *fixture {
	f := &fixture{
		posts:    new(MockPostRepository),
		comments: new(MockCommentRepository),
		media:    new(MockMediaRepository),
		users:    new(MockUserFinder),
		remover:  new(MockRemover),
		storage:  storage.NewMemoryStorage(),
		events:   event.NewRecorder(),
	}
	f.service = NewContentService(Deps{
		Posts:      f.posts,
		Comments:   f.comments,
		Media:      f.media,
		Users:      f.users,
		Remover:    f.remover,
		Storage:    f.storage,
		Transactor: database.NoopTransactor{},
		Bus:        f.events,
	})
	return f
}

func createTestUser(id uint, username string) *userModel.User {
	return &userModel.User{
		BaseModel: baseModel.BaseModel{ID: id},
		Username:  username,
		Role:      userModel.RoleUser,
	}
}

func createTestPost(id, authorID uint) *model.Post {
	return &model.Post{BaseModel: baseModel.BaseModel{ID: id}, AuthorID: authorID, Title: "hello"}
}

var (
	ctx   = context.Background()
	alice = createTestUser(1, "alice")
	bob   = createTestUser(2, "bob")
)

func TestAddComment(t *testing.T) {
	t.Run("publishes comment event for post author", func(t *testing.T) {
		f := newFixture()
		f.users.On("GetByUsername", ctx, "alice").Return(alice, nil)
		f.users.On("GetByID", ctx, uint(2)).Return(bob, nil)
		f.posts.On("GetByID", ctx, uint(10)).Return(createTestPost(10, 2), nil)
		f.comments.On("Create", ctx, mock.AnythingOfType("*model.Comment")).Return(nil)

		comment, err := f.service.AddComment(ctx, 10, "alice", "great read")

		require.NoError(t, err)
		assert.Equal(t, uint(55), comment.ID)
		assert.Equal(t, []event.Event{event.CommentEvent{
			PostID: 10, CommentID: 55,
			CommenterID: 1, CommenterUsername: "alice",
			AuthorID: 2, AuthorUsername: "bob",
		}}, f.events.Events())
	})

	t.Run("too long content is rejected before insert", func(t *testing.T) {
		f := newFixture()
		f.users.On("GetByUsername", ctx, "alice").Return(alice, nil)
		f.posts.On("GetByID", ctx, uint(10)).Return(createTestPost(10, 2), nil)

		_, err := f.service.AddComment(ctx, 10, "alice", strings.Repeat("x", model.MaxCommentLength+1))

		assert.True(t, apperr.IsValidation(err))
		f.comments.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
		assert.Empty(t, f.events.Events())
	})

	t.Run("unknown post", func(t *testing.T) {
		f := newFixture()
		f.users.On("GetByUsername", ctx, "alice").Return(alice, nil)
		f.posts.On("GetByID", ctx, uint(99)).Return(nil, apperr.NotFound(apperr.EntityPost, uint(99)))

		_, err := f.service.AddComment(ctx, 99, "alice", "hi")

		assert.ErrorIs(t, err, apperr.NotFound(apperr.EntityPost, nil))
	})
}

func TestUpdateComment(t *testing.T) {
	t.Run("author edits and editedAt is set", func(t *testing.T) {
		f := newFixture()
		existing := &model.Comment{BaseModel: baseModel.BaseModel{ID: 5}, AuthorID: 1, PostID: 10, Content: "old"}
		f.users.On("GetByUsername", ctx, "alice").Return(alice, nil)
		f.comments.On("GetByID", ctx, uint(5)).Return(existing, nil)
		f.comments.On("UpdateContent", ctx, existing).Return(nil)

		comment, err := f.service.UpdateComment(ctx, 5, "alice", "new")

		require.NoError(t, err)
		assert.Equal(t, "new", comment.Content)
		assert.NotNil(t, comment.EditedAt)
	})

	t.Run("non author is unauthorized", func(t *testing.T) {
		f := newFixture()
		existing := &model.Comment{BaseModel: baseModel.BaseModel{ID: 5}, AuthorID: 1, PostID: 10, Content: "old"}
		f.users.On("GetByUsername", ctx, "bob").Return(bob, nil)
		f.comments.On("GetByID", ctx, uint(5)).Return(existing, nil)

		_, err := f.service.UpdateComment(ctx, 5, "bob", "new")

		assert.True(t, apperr.IsUnauthorized(err))
		assert.Equal(t, "old", existing.Content)
		f.comments.AssertNotCalled(t, "UpdateContent", mock.Anything, mock.Anything)
	})
}

func TestReblog(t *testing.T) {
	t.Run("first reblog publishes event", func(t *testing.T) {
		f := newFixture()
		f.users.On("GetByUsername", ctx, "alice").Return(alice, nil)
		f.users.On("GetByID", ctx, uint(2)).Return(bob, nil)
		f.posts.On("GetByID", ctx, uint(10)).Return(createTestPost(10, 2), nil)
		f.posts.On("FindReblog", ctx, uint(1), uint(10)).Return(nil, apperr.NotFound(apperr.EntityPost, uint(10)))
		f.posts.On("CreateReblog", ctx, mock.AnythingOfType("*model.Post")).
			Run(func(args mock.Arguments) { args.Get(1).(*model.Post).ID = 11 }).
			Return(true, nil)

		reblog, created, err := f.service.Reblog(ctx, "alice", 10)

		require.NoError(t, err)
		assert.True(t, created)
		assert.Equal(t, uint(10), *reblog.OriginalPostID)
		assert.Equal(t, []event.Event{event.ReblogEvent{
			OriginalPostID: 10, ReblogPostID: 11,
			RebloggerID: 1, RebloggerUsername: "alice",
			OriginalAuthorID: 2, OriginalAuthorUsername: "bob",
		}}, f.events.Events())
	})

	t.Run("second reblog returns existing without event", func(t *testing.T) {
		f := newFixture()
		orig := uint(10)
		existing := &model.Post{BaseModel: baseModel.BaseModel{ID: 11}, AuthorID: 1, OriginalPostID: &orig}
		f.users.On("GetByUsername", ctx, "alice").Return(alice, nil)
		f.users.On("GetByID", ctx, uint(2)).Return(bob, nil)
		f.posts.On("GetByID", ctx, uint(10)).Return(createTestPost(10, 2), nil)
		f.posts.On("FindReblog", ctx, uint(1), uint(10)).Return(existing, nil)

		reblog, created, err := f.service.Reblog(ctx, "alice", 10)

		require.NoError(t, err)
		assert.False(t, created)
		assert.Equal(t, uint(11), reblog.ID)
		assert.Empty(t, f.events.Events())
		f.posts.AssertNotCalled(t, "CreateReblog", mock.Anything, mock.Anything)
	})

	t.Run("lost insert race", func(t *testing.T) {
		f := newFixture()
		orig := uint(10)
		winner := &model.Post{BaseModel: baseModel.BaseModel{ID: 12}, AuthorID: 1, OriginalPostID: &orig}
		f.users.On("GetByUsername", ctx, "alice").Return(alice, nil)
		f.users.On("GetByID", ctx, uint(2)).Return(bob, nil)
		f.posts.On("GetByID", ctx, uint(10)).Return(createTestPost(10, 2), nil)
		f.posts.On("FindReblog", ctx, uint(1), uint(10)).Return(nil, apperr.NotFound(apperr.EntityPost, uint(10))).Once()
		f.posts.On("CreateReblog", ctx, mock.AnythingOfType("*model.Post")).Return(false, nil)
		f.posts.On("FindReblog", ctx, uint(1), uint(10)).Return(winner, nil).Once()

		reblog, created, err := f.service.Reblog(ctx, "alice", 10)

		require.NoError(t, err)
		assert.False(t, created)
		assert.Equal(t, uint(12), reblog.ID)
		assert.Empty(t, f.events.Events())
	})

	t.Run("reblog of a reblog points at the original", func(t *testing.T) {
		f := newFixture()
		orig := uint(10)
		f.users.On("GetByUsername", ctx, "alice").Return(alice, nil)
		f.users.On("GetByID", ctx, uint(2)).Return(bob, nil)
		f.posts.On("GetByID", ctx, uint(20)).Return(&model.Post{BaseModel: baseModel.BaseModel{ID: 20}, AuthorID: 3, OriginalPostID: &orig}, nil)
		f.posts.On("GetByID", ctx, uint(10)).Return(createTestPost(10, 2), nil)
		f.posts.On("FindReblog", ctx, uint(1), uint(10)).Return(nil, apperr.NotFound(apperr.EntityPost, uint(10)))
		f.posts.On("CreateReblog", ctx, mock.MatchedBy(func(p *model.Post) bool {
			return *p.OriginalPostID == 10
		})).Return(true, nil)

		_, created, err := f.service.Reblog(ctx, "alice", 20)

		require.NoError(t, err)
		assert.True(t, created)
		require.Len(t, f.events.ByTag(event.TagReblog), 1)
		assert.Equal(t, uint(2), f.events.ByTag(event.TagReblog)[0].(event.ReblogEvent).OriginalAuthorID)
	})
}

func TestUndoReblog(t *testing.T) {
	orig := uint(10)

	t.Run("deletes through the cascade", func(t *testing.T) {
		f := newFixture()
		f.users.On("GetByUsername", ctx, "alice").Return(alice, nil)
		f.posts.On("GetByID", ctx, uint(10)).Return(createTestPost(10, 2), nil)
		f.posts.On("FindReblog", ctx, uint(1), uint(10)).
			Return(&model.Post{BaseModel: baseModel.BaseModel{ID: 11}, AuthorID: 1, OriginalPostID: &orig}, nil)
		f.remover.On("DeletePost", ctx, uint(11), "alice").Return(nil)

		require.NoError(t, f.service.UndoReblog(ctx, "alice", 10))
		f.remover.AssertExpectations(t)
	})

	t.Run("no reblog is a no-op", func(t *testing.T) {
		f := newFixture()
		f.users.On("GetByUsername", ctx, "alice").Return(alice, nil)
		f.posts.On("GetByID", ctx, uint(10)).Return(createTestPost(10, 2), nil)
		f.posts.On("FindReblog", ctx, uint(1), uint(10)).Return(nil, apperr.NotFound(apperr.EntityPost, uint(10)))

		require.NoError(t, f.service.UndoReblog(ctx, "alice", 10))
		f.remover.AssertNotCalled(t, "DeletePost", mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestIsRebloggedAndCount(t *testing.T) {
	f := newFixture()
	f.users.On("GetByUsername", ctx, "alice").Return(alice, nil)
	f.posts.On("GetByID", ctx, uint(10)).Return(createTestPost(10, 2), nil)
	f.posts.On("FindReblog", ctx, uint(1), uint(10)).Return(nil, apperr.NotFound(apperr.EntityPost, uint(10)))
	f.posts.On("CountReblogs", ctx, uint(10)).Return(int64(4), nil)

	ok, err := f.service.IsReblogged(ctx, "alice", 10)
	require.NoError(t, err)
	assert.False(t, ok)

	n, err := f.service.CountReblogs(ctx, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(4), n)
}

func TestIsRebloggedThroughReblog(t *testing.T) {
	f := newFixture()
	orig := uint(10)
	f.users.On("GetByUsername", ctx, "alice").Return(alice, nil)
	f.posts.On("GetByID", ctx, uint(20)).Return(&model.Post{BaseModel: baseModel.BaseModel{ID: 20}, AuthorID: 3, OriginalPostID: &orig}, nil)
	f.posts.On("GetByID", ctx, uint(10)).Return(createTestPost(10, 2), nil)
	f.posts.On("FindReblog", ctx, uint(1), uint(10)).
		Return(&model.Post{BaseModel: baseModel.BaseModel{ID: 21}, AuthorID: 1, OriginalPostID: &orig}, nil)
	f.posts.On("CountReblogs", ctx, uint(10)).Return(int64(2), nil)

	ok, err := f.service.IsReblogged(ctx, "alice", 20)
	require.NoError(t, err)
	assert.True(t, ok)

	n, err := f.service.CountReblogs(ctx, 20)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
	f.posts.AssertNotCalled(t, "FindReblog", ctx, uint(1), uint(20))
}

func TestAttachMedia(t *testing.T) {
	t.Run("author uploads", func(t *testing.T) {
		f := newFixture()
		f.users.On("GetByUsername", ctx, "bob").Return(bob, nil)
		f.posts.On("GetByID", ctx, uint(10)).Return(createTestPost(10, 2), nil)
		f.media.On("Create", ctx, mock.AnythingOfType("*model.Media")).Return(nil)

		media, err := f.service.AttachMedia(ctx, 10, "bob", "cat.png", "image/png", strings.NewReader("png"))

		require.NoError(t, err)
		assert.True(t, f.storage.Has(media.ObjectKey))
	})

	t.Run("failed insert removes uploaded object", func(t *testing.T) {
		f := newFixture()
		var key string
		f.users.On("GetByUsername", ctx, "bob").Return(bob, nil)
		f.posts.On("GetByID", ctx, uint(10)).Return(createTestPost(10, 2), nil)
		f.media.On("Create", ctx, mock.AnythingOfType("*model.Media")).
			Run(func(args mock.Arguments) { key = args.Get(1).(*model.Media).ObjectKey }).
			Return(errors.New("db down"))

		_, err := f.service.AttachMedia(ctx, 10, "bob", "cat.png", "image/png", strings.NewReader("png"))

		assert.Error(t, err)
		assert.NotEmpty(t, key)
		assert.False(t, f.storage.Has(key))
	})

	t.Run("non author", func(t *testing.T) {
		f := newFixture()
		f.users.On("GetByUsername", ctx, "alice").Return(alice, nil)
		f.posts.On("GetByID", ctx, uint(10)).Return(createTestPost(10, 2), nil)

		_, err := f.service.AttachMedia(ctx, 10, "alice", "cat.png", "image/png", strings.NewReader("png"))

		assert.True(t, apperr.IsUnauthorized(err))
	})
}
