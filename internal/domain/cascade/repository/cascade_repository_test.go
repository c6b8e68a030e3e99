package repository

import (
	"context"
	"regexp"
	"testing"
	"vibelog/internal/pkg/apperr"

	"github.com/DATA-DOG/go-sqlmock"
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

func TestDeleteReportsByCommentsOfPost(t *testing.T) {
	db, mock := newMockDB(t)
	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM "reports" WHERE comment_id IN (SELECT "id" FROM "comments" WHERE post_id = $1)`)).
		WithArgs(uint(10)).
		WillReturnResult(sqlmock.NewResult(0, 2))

	rows, err := NewCascadeRepository(db).DeleteReportsByCommentsOfPost(context.Background(), 10)

	require.NoError(t, err)
	assert.Equal(t, int64(2), rows)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMediaKeysByPost(t *testing.T) {
	db, mock := newMockDB(t)
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT "object_key" FROM "media" WHERE post_id = $1`)).
		WithArgs(uint(10)).
		WillReturnRows(sqlmock.NewRows([]string{"object_key"}).AddRow("20240101/a.png").AddRow("20240101/b.png"))

	keys, err := NewCascadeRepository(db).MediaKeysByPost(context.Background(), 10)

	require.NoError(t, err)
	assert.Equal(t, []string{"20240101/a.png", "20240101/b.png"}, keys)
}

func TestDetachReblogs(t *testing.T) {
	db, mock := newMockDB(t)
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE "posts" SET "original_post_id"=$1`)).
		WithArgs(nil, sqlmock.AnyArg(), uint(10)).
		WillReturnResult(sqlmock.NewResult(0, 3))

	rows, err := NewCascadeRepository(db).DetachReblogs(context.Background(), 10)

	require.NoError(t, err)
	assert.Equal(t, int64(3), rows)
}

func TestDeletePost(t *testing.T) {
	t.Run("deleted", func(t *testing.T) {
		db, mock := newMockDB(t)
		mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM "posts" WHERE id = $1`)).
			WithArgs(uint(10)).
			WillReturnResult(sqlmock.NewResult(0, 1))

		assert.NoError(t, NewCascadeRepository(db).DeletePost(context.Background(), 10))
	})

	t.Run("already gone", func(t *testing.T) {
		db, mock := newMockDB(t)
		mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM "posts"`)).
			WillReturnResult(sqlmock.NewResult(0, 0))

		err := NewCascadeRepository(db).DeletePost(context.Background(), 10)
		assert.ErrorIs(t, err, apperr.NotFound(apperr.EntityPost, nil))
	})
}

func TestDeleteFollowsByUser(t *testing.T) {
	db, mock := newMockDB(t)
	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM "follows" WHERE follower_id = $1 OR followee_id = $2`)).
		WithArgs(uint(3), uint(3)).
		WillReturnResult(sqlmock.NewResult(0, 4))

	rows, err := NewCascadeRepository(db).DeleteFollowsByUser(context.Background(), 3)

	require.NoError(t, err)
	assert.Equal(t, int64(4), rows)
}

func TestGetComment(t *testing.T) {
	db, mock := newMockDB(t)
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "comments" WHERE id = $1`)).
		WithArgs(uint(5), 1).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, err := NewCascadeRepository(db).GetComment(context.Background(), 5)

	assert.ErrorIs(t, err, apperr.NotFound(apperr.EntityComment, nil))
}

func TestLikedPostIDsByUser(t *testing.T) {
	db, mock := newMockDB(t)
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT "post_id" FROM "likes" WHERE user_id = $1 ORDER BY post_id`)).
		WithArgs(uint(2)).
		WillReturnRows(sqlmock.NewRows([]string{"post_id"}).AddRow(11).AddRow(30))

	ids, err := NewCascadeRepository(db).LikedPostIDsByUser(context.Background(), 2)

	require.NoError(t, err)
	assert.Equal(t, []uint{11, 30}, ids)
	assert.NoError(t, mock.ExpectationsWereMet())
}
