package service

import (
	"context"
	"errors"

	"github.com/user/nextflix/internal/events"
	"github.com/user/nextflix/internal/logger"
	"github.com/user/nextflix/internal/metrics"
	"github.com/user/nextflix/internal/model"
	"github.com/user/nextflix/internal/recommend"
)

// Enrichment 推荐结果的外部信息补全
type Enrichment interface {
	Enrich(ctx context.Context, title string) *model.Enrichment
	EnrichAll(ctx context.Context, items []recommend.Scored)
}

// RecommendationService 推荐服务
type RecommendationService struct {
	engine   *recommend.Engine
	movies   recommend.MovieSource
	enricher Enrichment
	events   events.Publisher
	log      *logger.Logger
}

// NewRecommendationService 创建推荐服务
func NewRecommendationService(
	movies recommend.MovieSource,
	profiles recommend.ProfileSource,
	enricher Enrichment,
	pub events.Publisher,
	log *logger.Logger,
) *RecommendationService {
	return &RecommendationService{
		engine:   recommend.NewEngine(movies, profiles),
		movies:   movies,
		enricher: enricher,
		events:   pub,
		log:      log,
	}
}

// SimilarRequest 相似电影请求
type SimilarRequest struct {
	Title  string
	Top    int
	UserID string
	Enrich bool
}

// FindSimilar 查找相似电影，可选补全外部信息
func (s *RecommendationService) FindSimilar(ctx context.Context, req SimilarRequest) (*recommend.SimilarResult, error) {
	res, err := s.engine.FindSimilar(ctx, req.Title, req.Top, req.UserID)
	if err != nil {
		metrics.RecordRecommendation("similar", outcome(err), 0)
		if !isExpected(err) {
			s.log.Error("相似电影计算失败", "title", req.Title, "error", err)
		}
		return nil, err
	}
	metrics.RecordRecommendation("similar", "ok", res.CandidateCount)

	if req.Enrich && s.enricher != nil {
		s.enricher.EnrichAll(ctx, res.Recommendations)
	}

	s.events.Publish(ctx, events.TopicRecommendationServed, map[string]interface{}{
		"kind":       "similar",
		"title":      res.Target.Title,
		"user_id":    req.UserID,
		"candidates": res.CandidateCount,
		"returned":   len(res.Recommendations),
	})
	return res, nil
}

// RecommendForUser 基于用户偏好的推荐
func (s *RecommendationService) RecommendForUser(ctx context.Context, userID string, topN int, enrich bool) ([]recommend.Scored, error) {
	recs, err := s.engine.RecommendForUser(ctx, userID, topN)
	if err != nil {
		metrics.RecordRecommendation("user", outcome(err), 0)
		if !isExpected(err) {
			s.log.Error("用户推荐计算失败", "user_id", userID, "error", err)
		}
		return nil, err
	}
	metrics.RecordRecommendation("user", "ok", len(recs))

	if enrich && s.enricher != nil {
		s.enricher.EnrichAll(ctx, recs)
	}

	s.events.Publish(ctx, events.TopicRecommendationServed, map[string]interface{}{
		"kind":     "user",
		"user_id":  userID,
		"returned": len(recs),
	})
	return recs, nil
}

// GetMovie 精确匹配优先，其次子串匹配
func (s *RecommendationService) GetMovie(ctx context.Context, title string) (*model.Movie, error) {
	m, err := s.movies.Resolve(ctx, title)
	if err != nil {
		return nil, err
	}
	if m == nil {
		return nil, recommend.ErrMovieNotFound
	}
	return m, nil
}

// EnrichMovie 单部电影的外部信息，找不到电影时返回 ErrMovieNotFound
func (s *RecommendationService) EnrichMovie(ctx context.Context, title string) (*model.Movie, *model.Enrichment, error) {
	m, err := s.GetMovie(ctx, title)
	if err != nil {
		return nil, nil, err
	}
	if s.enricher == nil {
		return m, model.EmptyEnrichment(), nil
	}
	return m, s.enricher.Enrich(ctx, m.Title), nil
}

func isExpected(err error) bool {
	return errors.Is(err, recommend.ErrMovieNotFound) ||
		errors.Is(err, recommend.ErrNoMetadata) ||
		errors.Is(err, recommend.ErrProfileNotFound) ||
		errors.Is(err, recommend.ErrNoPreferences)
}

func outcome(err error) string {
	switch {
	case errors.Is(err, recommend.ErrMovieNotFound), errors.Is(err, recommend.ErrProfileNotFound):
		return "not_found"
	case errors.Is(err, recommend.ErrNoMetadata), errors.Is(err, recommend.ErrNoPreferences):
		return "bad_request"
	default:
		return "error"
	}
}
