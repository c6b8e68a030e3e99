package repository

import (
	"context"
	"regexp"
	"testing"
	"vibelog/internal/domain/user/model"
	"vibelog/internal/pkg/apperr"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{
		Logger:                 logger.Default.LogMode(logger.Silent),
		SkipDefaultTransaction: true,
	})
	require.NoError(t, err)
	return db, mock
}

func TestCreate(t *testing.T) {
	t.Run("duplicate username", func(t *testing.T) {
		db, mock := newMockDB(t)
		mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO "users"`)).
			WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: "idx_users_username"})

		err := NewUserRepository(db).Create(context.Background(), &model.User{Username: "alice", Email: "alice@x", Role: model.RoleUser})

		assert.True(t, apperr.IsValidation(err))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("other errors pass through", func(t *testing.T) {
		db, mock := newMockDB(t)
		mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO "users"`)).
			WillReturnError(assert.AnError)

		err := NewUserRepository(db).Create(context.Background(), &model.User{Username: "alice", Email: "alice@x", Role: model.RoleUser})

		assert.ErrorIs(t, err, assert.AnError)
		assert.False(t, apperr.IsValidation(err))
	})
}

func TestGetByUsername(t *testing.T) {
	t.Run("found", func(t *testing.T) {
		db, mock := newMockDB(t)
		mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "users" WHERE username = $1`)).
			WithArgs("alice", 1).
			WillReturnRows(sqlmock.NewRows([]string{"id", "username", "email", "role"}).AddRow(1, "alice", "alice@x", "USER"))

		u, err := NewUserRepository(db).GetByUsername(context.Background(), "alice")

		require.NoError(t, err)
		assert.Equal(t, uint(1), u.ID)
		assert.Equal(t, model.RoleUser, u.Role)
	})

	t.Run("missing", func(t *testing.T) {
		db, mock := newMockDB(t)
		mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "users" WHERE username = $1`)).
			WithArgs("ghost", 1).
			WillReturnRows(sqlmock.NewRows([]string{"id"}))

		_, err := NewUserRepository(db).GetByUsername(context.Background(), "ghost")

		assert.ErrorIs(t, err, apperr.NotFound(apperr.EntityUser, nil))
	})
}

func TestWithTxNil(t *testing.T) {
	db, _ := newMockDB(t)
	repo := NewUserRepository(db)

	assert.Same(t, repo, repo.WithTx(nil))
}

func TestUpdateProfileLeavesRoleProfileAlone(t *testing.T) {
	db, mock := newMockDB(t)
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE "users" SET "bio"=$1,"profile_picture"=$2,"updated_at"=$3 WHERE id = $4`)).
		WithArgs("hello", "pic.png", sqlmock.AnyArg(), uint(1)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	user := &model.User{Bio: "hello", ProfilePicture: "pic.png"}
	user.ID = 1
	err := NewUserRepository(db).UpdateProfile(context.Background(), user)

	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestIncrementReportsReviewed(t *testing.T) {
	ctx := context.Background()
	stmt := regexp.QuoteMeta(`UPDATE "users" SET "profile"=jsonb_set(coalesce(profile, '{}'::jsonb), '{reportsReviewed}', to_jsonb(coalesce((profile->>'reportsReviewed')::int, 0) + 1)),"updated_at"=$1 WHERE id = $2 AND role = $3`)

	t.Run("moderator", func(t *testing.T) {
		db, mock := newMockDB(t)
		mock.ExpectExec(stmt).
			WithArgs(sqlmock.AnyArg(), uint(2), "MODERATOR").
			WillReturnResult(sqlmock.NewResult(0, 1))

		updated, err := NewUserRepository(db).IncrementReportsReviewed(ctx, 2)

		require.NoError(t, err)
		assert.True(t, updated)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("not a moderator", func(t *testing.T) {
		db, mock := newMockDB(t)
		mock.ExpectExec(stmt).
			WithArgs(sqlmock.AnyArg(), uint(1), "MODERATOR").
			WillReturnResult(sqlmock.NewResult(0, 0))

		updated, err := NewUserRepository(db).IncrementReportsReviewed(ctx, 1)

		require.NoError(t, err)
		assert.False(t, updated)
	})
}

func TestSetTheme(t *testing.T) {
	db, mock := newMockDB(t)
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE "users" SET "profile"=jsonb_set(coalesce(profile, '{}'::jsonb), '{theme}', to_jsonb($1::text)),"updated_at"=$2 WHERE id = $3 AND role = $4`)).
		WithArgs("dark", sqlmock.AnyArg(), uint(1), "USER").
		WillReturnResult(sqlmock.NewResult(0, 1))

	updated, err := NewUserRepository(db).SetTheme(context.Background(), 1, "dark")

	require.NoError(t, err)
	assert.True(t, updated)
	assert.NoError(t, mock.ExpectationsWereMet())
}
