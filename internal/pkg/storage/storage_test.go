package storage

import (
	"context"
	"strings"
	"testing"
	"time"

	"vibelog/internal/pkg/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObjectKey(t *testing.T) {
	now := time.Date(2024, 3, 9, 12, 0, 0, 0, time.UTC)
	key := ObjectKey("cat.PNG", now)

	assert.True(t, strings.HasPrefix(key, "20240309/"))
	assert.True(t, strings.HasSuffix(key, ".PNG"))
	assert.NotEqual(t, key, ObjectKey("cat.PNG", now))
}

func TestMemoryStorage(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStorage()

	key, url, err := s.Upload(ctx, "a.jpg", strings.NewReader("data"))
	require.NoError(t, err)
	assert.Equal(t, "memory://"+key, url)
	assert.True(t, s.Has(key))

	require.NoError(t, s.DeleteObjects(ctx, []string{key, "missing"}))
	assert.False(t, s.Has(key))
}

func TestNewWithoutOSSConfig(t *testing.T) {
	t.Run("dev falls back to memory", func(t *testing.T) {
		s, err := New(config.OSSConfig{}, "dev")
		require.NoError(t, err)
		assert.IsType(t, &MemoryStorage{}, s)
	})

	t.Run("prod refuses", func(t *testing.T) {
		s, err := New(config.OSSConfig{Endpoint: "oss-cn-hangzhou.aliyuncs.com"}, "prod")
		assert.ErrorIs(t, err, ErrOSSRequired)
		assert.Nil(t, s)
	})
}
