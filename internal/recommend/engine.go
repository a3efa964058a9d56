package recommend

import (
	"context"
	"fmt"
	"strings"

	"github.com/user/nextflix/internal/model"
)

// MovieSource 电影存储
type MovieSource interface {
	// Resolve 先按归一化标题精确查找，再按子串查找；找不到返回 nil, nil
	Resolve(ctx context.Context, title string) (*model.Movie, error)
	FindCandidates(ctx context.Context, f model.CandidateFilter) ([]model.Movie, error)
}

// ProfileSource 用户资料读取；用户不存在返回 nil, nil
type ProfileSource interface {
	Get(ctx context.Context, userID string) (*model.Profile, error)
}

// Engine 相似度推荐引擎，不持有可变状态
type Engine struct {
	movies   MovieSource
	profiles ProfileSource
}

// NewEngine 创建推荐引擎
func NewEngine(movies MovieSource, profiles ProfileSource) *Engine {
	return &Engine{movies: movies, profiles: profiles}
}

// SimilarResult 相似电影结果
type SimilarResult struct {
	Target          *model.Movie `json:"target"`
	CandidateCount  int          `json:"count_candidates"`
	Recommendations []Scored     `json:"recommendations"`
}

// FindSimilar 查找与指定电影相似的电影
//
// userID 非空且资料存在时，剔除该用户想看与看过的电影。
func (e *Engine) FindSimilar(ctx context.Context, title string, topN int, userID string) (*SimilarResult, error) {
	if strings.TrimSpace(title) == "" {
		return nil, ErrMovieNotFound
	}
	target, err := e.movies.Resolve(ctx, title)
	if err != nil {
		return nil, fmt.Errorf("resolve target: %w", err)
	}
	if target == nil {
		return nil, ErrMovieNotFound
	}

	features := MovieFeatures(target)
	if features.IsEmpty() {
		return nil, ErrNoMetadata
	}

	candidates, err := e.movies.FindCandidates(ctx, features.Filter(target.Title))
	if err != nil {
		return nil, fmt.Errorf("find candidates: %w", err)
	}

	exclude := NewExclusionSet([]string{target.Title})
	if userID != "" {
		profile, err := e.profiles.Get(ctx, userID)
		if err != nil {
			return nil, fmt.Errorf("load profile: %w", err)
		}
		if profile != nil {
			exclude = NewExclusionSet([]string{target.Title}, profile.Watchlist, profile.Seen)
		}
	}

	scored := scoreAll(features, candidates, target.ID)
	return &SimilarResult{
		Target:          target,
		CandidateCount:  len(candidates),
		Recommendations: Rank(exclude.Filter(scored), topN),
	}, nil
}

// RecommendForUser 基于用户偏好推荐
//
// 剔除想看、看过、收藏以及偏好电影本身；偏好电影仍参与打分。
func (e *Engine) RecommendForUser(ctx context.Context, userID string, topN int) ([]Scored, error) {
	profile, err := e.profiles.Get(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("load profile: %w", err)
	}
	if profile == nil {
		return nil, ErrProfileNotFound
	}

	features, err := ProfileFeatures(profile.Preferences)
	if err != nil {
		return nil, err
	}

	candidates, err := e.movies.FindCandidates(ctx, features.Filter(""))
	if err != nil {
		return nil, fmt.Errorf("find candidates: %w", err)
	}

	exclude := NewExclusionSet(profile.Watchlist, profile.Seen, profile.Favorites, profile.Preferences.Movies)
	return Rank(exclude.Filter(scoreAll(features, candidates, 0)), topN), nil
}

// scoreAll 打分并丢弃 0 分候选
func scoreAll(target Features, candidates []model.Movie, selfID uint) []Scored {
	res := make([]Scored, 0, len(candidates))
	for i := range candidates {
		c := &candidates[i]
		if selfID != 0 && c.ID == selfID {
			continue
		}
		b := Score(target, c)
		if b.Score <= 0 {
			continue
		}
		reason, reasonType := b.Reason()
		res = append(res, Scored{
			Movie:      *c,
			Score:      b.Score,
			Reason:     reason,
			ReasonType: reasonType,
			Details:    b.Details(),
		})
	}
	return res
}
