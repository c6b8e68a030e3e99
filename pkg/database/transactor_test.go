package database

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

func TestIsUniqueViolation(t *testing.T) {
	assert.True(t, IsUniqueViolation(&pgconn.PgError{Code: "23505"}))
	assert.True(t, IsUniqueViolation(fmt.Errorf("insert like: %w", &pgconn.PgError{Code: "23505"})))
	assert.True(t, IsUniqueViolation(gorm.ErrDuplicatedKey))
	assert.False(t, IsUniqueViolation(&pgconn.PgError{Code: "23503"}))
	assert.False(t, IsUniqueViolation(errors.New("duplicate")))
	assert.False(t, IsUniqueViolation(nil))
}

func TestNoopTransactor(t *testing.T) {
	called := false
	err := NoopTransactor{}.Transaction(context.Background(), func(tx *gorm.DB) error {
		called = true
		assert.Nil(t, tx)
		return errors.New("rollback")
	})

	assert.True(t, called)
	assert.EqualError(t, err, "rollback")
}

func TestIsForeignKeyViolation(t *testing.T) {
	assert.True(t, IsForeignKeyViolation(&pgconn.PgError{Code: "23503"}))
	assert.True(t, IsForeignKeyViolation(gorm.ErrForeignKeyViolated))
	assert.False(t, IsForeignKeyViolation(&pgconn.PgError{Code: "23505"}))
	assert.False(t, IsForeignKeyViolation(nil))
}

func TestViolatedConstraint(t *testing.T) {
	err := fmt.Errorf("insert follow: %w", &pgconn.PgError{Code: "23503", ConstraintName: "fk_follows_follower"})

	assert.Equal(t, "fk_follows_follower", ViolatedConstraint(err))
	assert.Empty(t, ViolatedConstraint(gorm.ErrForeignKeyViolated))
}
