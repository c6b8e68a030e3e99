package repository

import (
	"context"

	"github.com/jmoiron/sqlx"
)

// PostCount 文章ID与计数
type PostCount struct {
	PostID uint  `db:"post_id" json:"postId"`
	Count  int64 `db:"count" json:"count"`
}

// StatsRepository 原始计数查询，只返回 ID 和数量
type StatsRepository interface {
	TopLikedPostIDs(ctx context.Context, limit int) ([]PostCount, error)
	TopCommentedPostIDs(ctx context.Context, limit int) ([]PostCount, error)
	TopRebloggedPostIDs(ctx context.Context, limit int) ([]PostCount, error)
}

const (
	topLikedSQL = `SELECT post_id, COUNT(*) AS count FROM likes
GROUP BY post_id ORDER BY count DESC, post_id ASC LIMIT $1`

	topCommentedSQL = `SELECT post_id, COUNT(*) AS count FROM comments
GROUP BY post_id ORDER BY count DESC, post_id ASC LIMIT $1`

	topRebloggedSQL = `SELECT original_post_id AS post_id, COUNT(*) AS count FROM posts
WHERE original_post_id IS NOT NULL
GROUP BY original_post_id ORDER BY count DESC, post_id ASC LIMIT $1`
)

type statsRepository struct {
	db *sqlx.DB
}

func NewStatsRepository(db *sqlx.DB) StatsRepository {
	return &statsRepository{db: db}
}

func (r *statsRepository) TopLikedPostIDs(ctx context.Context, limit int) ([]PostCount, error) {
	return r.top(ctx, topLikedSQL, limit)
}

func (r *statsRepository) TopCommentedPostIDs(ctx context.Context, limit int) ([]PostCount, error) {
	return r.top(ctx, topCommentedSQL, limit)
}

func (r *statsRepository) TopRebloggedPostIDs(ctx context.Context, limit int) ([]PostCount, error) {
	return r.top(ctx, topRebloggedSQL, limit)
}

func (r *statsRepository) top(ctx context.Context, query string, limit int) ([]PostCount, error) {
	rows := []PostCount{}
	if err := r.db.SelectContext(ctx, &rows, query, limit); err != nil {
		return nil, err
	}
	return rows, nil
}
