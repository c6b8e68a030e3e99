package service

import (
	"context"
	"vibelog/internal/domain/stats/repository"
	"vibelog/internal/pkg/apperr"
)

// Metric 排行指标
type Metric string

const (
	MetricLiked     Metric = "liked"
	MetricCommented Metric = "commented"
	MetricReblogged Metric = "reblogged"
)

const (
	DefaultTopLimit = 10
	MaxTopLimit     = 100
)

// StatsService 供外部排行查询使用的原始计数
type StatsService interface {
	TopPosts(ctx context.Context, metric Metric, limit int) ([]repository.PostCount, error)
}

type statsService struct {
	repo repository.StatsRepository
}

func NewStatsService(repo repository.StatsRepository) StatsService {
	return &statsService{repo: repo}
}

func (s *statsService) TopPosts(ctx context.Context, metric Metric, limit int) ([]repository.PostCount, error) {
	if limit <= 0 {
		limit = DefaultTopLimit
	}
	if limit > MaxTopLimit {
		limit = MaxTopLimit
	}

	switch metric {
	case MetricLiked:
		return s.repo.TopLikedPostIDs(ctx, limit)
	case MetricCommented:
		return s.repo.TopCommentedPostIDs(ctx, limit)
	case MetricReblogged:
		return s.repo.TopRebloggedPostIDs(ctx, limit)
	default:
		return nil, apperr.Validation("unknown metric %q", metric)
	}
}
