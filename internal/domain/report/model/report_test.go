package model

import (
	"testing"
	"time"
	"vibelog/internal/pkg/apperr"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewReport(t *testing.T) {
	now := time.Now()
	post, comment := uint(10), uint(5)

	t.Run("post target", func(t *testing.T) {
		r, err := NewReport(4, PostTarget(10), "spam", now)
		require.NoError(t, err)
		assert.Equal(t, StatusPending, r.Status)
		assert.Equal(t, now, r.ReportedAt)
		assert.Equal(t, "post #10", r.TargetLabel())
	})

	t.Run("comment target", func(t *testing.T) {
		r, err := NewReport(4, CommentTarget(5), "spam", now)
		require.NoError(t, err)
		assert.Nil(t, r.PostID)
		assert.Equal(t, "comment #5", r.TargetLabel())
	})

	t.Run("both targets", func(t *testing.T) {
		_, err := NewReport(4, Target{PostID: &post, CommentID: &comment}, "spam", now)
		assert.True(t, apperr.IsValidation(err))
	})

	t.Run("no target", func(t *testing.T) {
		_, err := NewReport(4, Target{}, "spam", now)
		assert.True(t, apperr.IsValidation(err))
	})

	t.Run("blank reason", func(t *testing.T) {
		_, err := NewReport(4, PostTarget(10), "  ", now)
		assert.True(t, apperr.IsValidation(err))
	})
}

func TestParseStatus(t *testing.T) {
	st, err := ParseStatus("resolved")
	require.NoError(t, err)
	assert.Equal(t, StatusResolved, st)

	_, err = ParseStatus("REOPENED")
	assert.True(t, apperr.IsValidation(err))
}

func TestCanTransitionTo(t *testing.T) {
	cases := []struct {
		from, to Status
		ok       bool
	}{
		{StatusPending, StatusReviewed, true},
		{StatusPending, StatusResolved, true},
		{StatusReviewed, StatusResolved, true},
		{StatusPending, StatusPending, true},
		{StatusResolved, StatusResolved, true},
		{StatusReviewed, StatusPending, false},
		{StatusResolved, StatusPending, false},
		{StatusResolved, StatusReviewed, false},
		{StatusPending, Status("BOGUS"), false},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.ok, tc.from.CanTransitionTo(tc.to), "%s -> %s", tc.from, tc.to)
	}
}
