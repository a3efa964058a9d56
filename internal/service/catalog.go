package service

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/user/nextflix/internal/model"
	"github.com/user/nextflix/internal/recommend"
	"github.com/user/nextflix/internal/repository"
	"github.com/user/nextflix/internal/utils"
)

const (
	catalogCacheKey = "catalog:options"
	catalogCacheTTL = 10 * time.Minute
)

// CatalogOptions 前端下拉选项
type CatalogOptions struct {
	Movies    []string `json:"movies"`
	Directors []string `json:"directors"`
	Actors    []string `json:"actors"`
	Genres    []string `json:"genres"`
}

// CatalogService 搜索与目录选项
type CatalogService struct {
	movies *repository.MovieRepository
}

func NewCatalogService(movies *repository.MovieRepository) *CatalogService {
	return &CatalogService{movies: movies}
}

// Search 多条件搜索，默认最多 100 条
func (s *CatalogService) Search(ctx context.Context, f model.SearchFilter) ([]model.Movie, error) {
	if f.Limit <= 0 || f.Limit > 1000 {
		f.Limit = 100
	}
	return s.movies.Search(ctx, f)
}

// Options 去重排序后的标题、导演、演员与类型，结果缓存 10 分钟
func (s *CatalogService) Options(ctx context.Context) (*CatalogOptions, error) {
	if cached, ok := utils.CacheGet(catalogCacheKey); ok {
		if opts, ok := cached.(*CatalogOptions); ok {
			return opts, nil
		}
	}

	movies, err := s.movies.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	opts := buildOptions(movies)
	utils.CacheSet(catalogCacheKey, opts, catalogCacheTTL)
	return opts, nil
}

// Invalidate 电影数据变更后清除缓存
func (s *CatalogService) Invalidate() {
	utils.CacheDelete(catalogCacheKey)
}

func buildOptions(movies []model.Movie) *CatalogOptions {
	titles := newStringSet()
	directors := newStringSet()
	actors := newStringSet()
	genres := newStringSet()

	for i := range movies {
		m := &movies[i]
		titles.add(m.Title)
		if !isUnknown(m.Director) {
			directors.add(m.Director)
		}
		for _, a := range m.Actors() {
			if !isUnknown(a) {
				actors.add(a)
			}
		}
		for _, g := range recommend.Tokens(m.Genres) {
			if isUnknown(g) {
				continue
			}
			genres.add(g)
		}
	}
	return &CatalogOptions{
		Movies:    titles.sorted(),
		Directors: directors.sorted(),
		Actors:    actors.sorted(),
		Genres:    genres.sorted(),
	}
}

func isUnknown(s string) bool {
	s = strings.TrimSpace(s)
	return s == "" || strings.EqualFold(s, "unknown")
}

type stringSet map[string]struct{}

func newStringSet() stringSet { return stringSet{} }

func (s stringSet) add(v string) {
	if v = strings.TrimSpace(v); v != "" {
		s[v] = struct{}{}
	}
}

func (s stringSet) sorted() []string {
	res := make([]string, 0, len(s))
	for v := range s {
		res = append(res, v)
	}
	sort.Strings(res)
	return res
}
