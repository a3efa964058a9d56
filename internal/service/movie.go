package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/user/nextflix/internal/events"
	"github.com/user/nextflix/internal/logger"
	"github.com/user/nextflix/internal/model"
	"github.com/user/nextflix/internal/repository"
)

// MovieInput 管理后台新增/编辑电影
type MovieInput struct {
	Title    string `json:"movie_title" binding:"required,notblank,max=255"`
	Director string `json:"director_name" binding:"max=255"`
	Actor1   string `json:"actor_1_name" binding:"max=255"`
	Actor2   string `json:"actor_2_name" binding:"max=255"`
	Actor3   string `json:"actor_3_name" binding:"max=255"`
	Genres   string `json:"genres" binding:"max=1024"`
	Tags     string `json:"tags" binding:"max=4096"`
}

func (in MovieInput) apply(m *model.Movie) {
	m.Title = in.Title
	m.Director = in.Director
	m.Actor1 = in.Actor1
	m.Actor2 = in.Actor2
	m.Actor3 = in.Actor3
	m.Genres = in.Genres
	m.Tags = in.Tags
	m.Trim()
}

// MovieAdminService 电影增删改
type MovieAdminService struct {
	movies  *repository.MovieRepository
	catalog *CatalogService
	events  events.Publisher
	log     *logger.Logger
}

func NewMovieAdminService(movies *repository.MovieRepository, catalog *CatalogService, pub events.Publisher, log *logger.Logger) *MovieAdminService {
	return &MovieAdminService{movies: movies, catalog: catalog, events: pub, log: log}
}

func (s *MovieAdminService) List(ctx context.Context, f model.SearchFilter) ([]model.Movie, error) {
	return s.movies.List(ctx, f)
}

func (s *MovieAdminService) Get(ctx context.Context, id uint) (*model.Movie, error) {
	m, err := s.movies.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if m == nil {
		return nil, ErrNotFound
	}
	return m, nil
}

// Create 标题按不区分大小写唯一
func (s *MovieAdminService) Create(ctx context.Context, in MovieInput) (*model.Movie, error) {
	m := &model.Movie{}
	in.apply(m)
	if m.Title == "" {
		return nil, fmt.Errorf("%w: movie_title is required", ErrInvalidRequest)
	}
	existing, err := s.movies.FindByNormalizedTitle(ctx, m.Title)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrDuplicateTitle
	}
	if err := s.movies.Create(ctx, m); err != nil {
		return nil, duplicateTitle(err)
	}

	s.changed(ctx, events.TopicMovieCreated, m)
	return m, nil
}

func (s *MovieAdminService) Update(ctx context.Context, id uint, in MovieInput) (*model.Movie, error) {
	m, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	in.apply(m)
	if m.Title == "" {
		return nil, fmt.Errorf("%w: movie_title is required", ErrInvalidRequest)
	}
	existing, err := s.movies.FindByNormalizedTitle(ctx, m.Title)
	if err != nil {
		return nil, err
	}
	if existing != nil && existing.ID != m.ID {
		return nil, ErrDuplicateTitle
	}
	if err := s.movies.Update(ctx, m); err != nil {
		return nil, duplicateTitle(err)
	}

	s.changed(ctx, events.TopicMovieUpdated, m)
	return m, nil
}

// Delete 立即物理删除
func (s *MovieAdminService) Delete(ctx context.Context, id uint) error {
	ok, err := s.movies.Delete(ctx, id)
	if err != nil {
		return err
	}
	if !ok {
		return ErrNotFound
	}

	s.catalog.Invalidate()
	s.events.Publish(ctx, events.TopicMovieDeleted, map[string]interface{}{"id": id})
	return nil
}

// duplicateTitle 并发写入绕过预检查时，由唯一索引兜底
func duplicateTitle(err error) error {
	if errors.Is(err, repository.ErrDuplicateTitle) {
		return ErrDuplicateTitle
	}
	return err
}

func (s *MovieAdminService) changed(ctx context.Context, topic string, m *model.Movie) {
	s.catalog.Invalidate()
	s.log.Info("电影已保存", "id", m.ID, "title", m.Title, "event", strings.TrimPrefix(topic, "movie."))
	s.events.Publish(ctx, topic, m)
}
