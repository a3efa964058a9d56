package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/user/nextflix/internal/events"
	"github.com/user/nextflix/internal/logger"
	"github.com/user/nextflix/internal/model"
	"github.com/user/nextflix/internal/recommend"
	"github.com/user/nextflix/internal/repository"
)

// UserService 用户偏好、想看、看过、收藏与反馈
type UserService struct {
	profiles repository.ProfileStore
	events   events.Publisher
	log      *logger.Logger
}

func NewUserService(profiles repository.ProfileStore, pub events.Publisher, log *logger.Logger) *UserService {
	return &UserService{profiles: profiles, events: pub, log: log}
}

// ListKind 用户列表类型
type ListKind string

const (
	ListWatchlist ListKind = "watchlist"
	ListFavorites ListKind = "favorites"
	ListSeen      ListKind = "seen"
)

// SavePreferences 覆盖写入偏好
func (s *UserService) SavePreferences(ctx context.Context, userID string, in model.PreferenceInput) (*model.Profile, error) {
	if err := requireField("user_id", userID); err != nil {
		return nil, err
	}
	return s.profiles.Update(ctx, strings.TrimSpace(userID), func(p *model.Profile) error {
		p.SetPreferences(in)
		return nil
	})
}

// GetProfile 用户不存在时返回 ErrProfileNotFound
func (s *UserService) GetProfile(ctx context.Context, userID string) (*model.Profile, error) {
	if err := requireField("user_id", userID); err != nil {
		return nil, err
	}
	p, err := s.profiles.Get(ctx, strings.TrimSpace(userID))
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, recommend.ErrProfileNotFound
	}
	return p, nil
}

// GetProfileOrEmpty 用户不存在时返回空资料
func (s *UserService) GetProfileOrEmpty(ctx context.Context, userID string) (*model.Profile, error) {
	p, err := s.GetProfile(ctx, userID)
	if errors.Is(err, recommend.ErrProfileNotFound) {
		return model.NewProfile(strings.TrimSpace(userID)), nil
	}
	return p, err
}

// AddToList 加入列表
func (s *UserService) AddToList(ctx context.Context, kind ListKind, userID, movie string) (*model.Profile, error) {
	return s.mutate(ctx, userID, movie, func(p *model.Profile, title string) {
		switch kind {
		case ListWatchlist:
			p.AddWatchlist(title)
		case ListFavorites:
			p.AddFavorite(title)
		case ListSeen:
			p.MarkSeen(title)
		}
	})
}

// RemoveFromList 移出列表
func (s *UserService) RemoveFromList(ctx context.Context, kind ListKind, userID, movie string) (*model.Profile, error) {
	return s.mutate(ctx, userID, movie, func(p *model.Profile, title string) {
		switch kind {
		case ListWatchlist:
			p.RemoveWatchlist(title)
		case ListFavorites:
			p.RemoveFavorite(title)
		case ListSeen:
			p.UnmarkSeen(title)
		}
	})
}

// List 读取列表，未知用户返回空列表
func (s *UserService) List(ctx context.Context, kind ListKind, userID string) ([]string, error) {
	p, err := s.GetProfileOrEmpty(ctx, userID)
	if err != nil {
		return nil, err
	}
	switch kind {
	case ListWatchlist:
		return p.Watchlist, nil
	case ListFavorites:
		return p.Favorites, nil
	case ListSeen:
		return p.Seen, nil
	}
	return nil, fmt.Errorf("%w: unknown list %q", ErrInvalidRequest, kind)
}

// SaveFeedback 写入评分与短评，评分范围 1..5
func (s *UserService) SaveFeedback(ctx context.Context, userID, movie string, rating int, text string) (*model.FeedbackEntry, error) {
	if rating < 1 || rating > 5 {
		return nil, fmt.Errorf("%w: rating must be between 1 and 5", ErrInvalidRequest)
	}
	var entry model.FeedbackEntry
	_, err := s.mutate(ctx, userID, movie, func(p *model.Profile, title string) {
		entry = p.SetFeedback(title, rating, text)
	})
	if err != nil {
		return nil, err
	}
	s.events.Publish(ctx, events.TopicFeedbackSaved, map[string]interface{}{
		"user_id": strings.TrimSpace(userID),
		"movie":   entry.Movie,
		"rating":  entry.Rating,
	})
	return &entry, nil
}

// Feedback 用户全部反馈
func (s *UserService) Feedback(ctx context.Context, userID string) ([]model.FeedbackEntry, error) {
	p, err := s.GetProfileOrEmpty(ctx, userID)
	if err != nil {
		return nil, err
	}
	return p.Feedback, nil
}

func (s *UserService) mutate(ctx context.Context, userID, movie string, fn func(p *model.Profile, title string)) (*model.Profile, error) {
	if err := requireField("user_id", userID); err != nil {
		return nil, err
	}
	if err := requireField("movie", movie); err != nil {
		return nil, err
	}
	title := strings.TrimSpace(movie)
	p, err := s.profiles.Update(ctx, strings.TrimSpace(userID), func(p *model.Profile) error {
		fn(p, title)
		return nil
	})
	if err != nil {
		s.log.Error("更新用户资料失败", "user_id", userID, "error", err)
		return nil, err
	}
	return p, nil
}

func requireField(name, value string) error {
	if strings.TrimSpace(value) == "" {
		return fmt.Errorf("%w: %s is required", ErrInvalidRequest, name)
	}
	return nil
}
