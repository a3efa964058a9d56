package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	gobreaker "github.com/sony/gobreaker/v2"
	"github.com/user/nextflix/internal/config"
	"github.com/user/nextflix/internal/logger"
	"github.com/user/nextflix/internal/metrics"
	"github.com/user/nextflix/internal/model"
	"github.com/user/nextflix/internal/recommend"
	"github.com/user/nextflix/internal/utils"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"
)

// ErrNoResult 外部服务中没有该电影，不视为故障
var ErrNoResult = errors.New("no result")

// RatingsProvider 评分来源
type RatingsProvider interface {
	Ratings(ctx context.Context, title, year string) ([]model.Rating, error)
}

// SynopsisProvider 简介来源
type SynopsisProvider interface {
	Synopsis(ctx context.Context, title, year string) (string, error)
}

// PlatformsProvider 流媒体平台来源
type PlatformsProvider interface {
	Platforms(ctx context.Context, title, year string) ([]string, error)
}

const (
	providerRatings   = "ratings"
	providerSynopsis  = "synopsis"
	providerPlatforms = "platforms"

	enrichParallelism = 4
)

// Enricher 外部信息补全
//
// 每次调用带独立超时与指数退避重试，按来源熔断；失败时返回占位值，从不向调用方报错。
type Enricher struct {
	ratings   RatingsProvider
	synopsis  SynopsisProvider
	platforms PlatformsProvider

	timeout     time.Duration
	retries     int
	backoffBase time.Duration
	breakers    map[string]*gobreaker.CircuitBreaker[any]
	cache       *utils.TTLCache[*model.Enrichment]
	sf          singleflight.Group
	log         *logger.Logger
}

// EnricherOptions 未配置的来源传 nil
type EnricherOptions struct {
	Ratings   RatingsProvider
	Synopsis  SynopsisProvider
	Platforms PlatformsProvider
	Timeout   time.Duration
	Retries   int
	CacheTTL  time.Duration
	CacheSize int
}

// NewEnricher 创建补全服务
func NewEnricher(opts EnricherOptions, log *logger.Logger) *Enricher {
	if opts.Timeout <= 0 {
		opts.Timeout = 4 * time.Second
	}
	if opts.Retries < 0 {
		opts.Retries = 0
	}
	if opts.CacheTTL <= 0 {
		opts.CacheTTL = time.Hour
	}
	e := &Enricher{
		ratings:     opts.Ratings,
		synopsis:    opts.Synopsis,
		platforms:   opts.Platforms,
		timeout:     opts.Timeout,
		retries:     opts.Retries,
		backoffBase: 200 * time.Millisecond,
		breakers:    make(map[string]*gobreaker.CircuitBreaker[any]),
		cache:       utils.NewTTLCache[*model.Enrichment](opts.CacheSize, opts.CacheTTL),
		log:         log,
	}
	for _, name := range []string{providerRatings, providerSynopsis, providerPlatforms} {
		e.breakers[name] = newBreaker(name, log)
	}
	return e
}

// NewEnricherFromConfig 根据配置装配 OMDb / Wikipedia / TMDB 来源
func NewEnricherFromConfig(cfg *config.Config, log *logger.Logger) *Enricher {
	client := utils.NewHTTPClient(cfg.EnrichTimeout)
	opts := EnricherOptions{
		Synopsis: NewWikipediaProvider(client, cfg.WikipediaURL),
		Timeout:  cfg.EnrichTimeout,
		Retries:  cfg.EnrichRetries,
		CacheTTL: cfg.EnrichCacheTTL,
	}
	if cfg.OMDbAPIKey != "" {
		opts.Ratings = NewOMDbProvider(client, cfg.OMDbBaseURL, cfg.OMDbAPIKey)
	}
	if cfg.TMDBToken != "" {
		opts.Platforms = NewTMDBProvider(client, cfg.TMDBBaseURL, cfg.TMDBToken, cfg.TMDBRegion)
	}
	return NewEnricher(opts, log)
}

func newBreaker(name string, log *logger.Logger) *gobreaker.CircuitBreaker[any] {
	return gobreaker.NewCircuitBreaker[any](gobreaker.Settings{
		Name:        "enrich-" + name,
		MaxRequests: 1,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, ErrNoResult) || isClientError(err)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warn("外部服务熔断状态变化", "breaker", name, "from", from.String(), "to", to.String())
		},
	})
}

// Enrich 获取单部电影的补全信息
func (e *Enricher) Enrich(ctx context.Context, title string) *model.Enrichment {
	key := recommend.Key(title)
	if cached, ok := e.cache.Get(key); ok {
		metrics.EnrichmentCacheHits.WithLabelValues("all").Inc()
		return copyEnrichment(cached)
	}

	v, _, _ := e.sf.Do(key, func() (interface{}, error) {
		res, complete := e.fetch(ctx, title)
		if complete {
			e.cache.Set(key, res)
		}
		return res, nil
	})
	return copyEnrichment(v.(*model.Enrichment))
}

// EnrichAll 并发补全排序后的结果，不改变顺序
func (e *Enricher) EnrichAll(ctx context.Context, items []recommend.Scored) {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(enrichParallelism)
	for i := range items {
		i := i
		g.Go(func() error {
			items[i].Enrichment = e.Enrich(gctx, items[i].Title)
			return nil
		})
	}
	_ = g.Wait()
}

// fetch 三个来源并行获取，complete 表示没有来源发生故障
func (e *Enricher) fetch(ctx context.Context, title string) (*model.Enrichment, bool) {
	lookup, year := utils.CleanMovieTitle(title)
	res := model.EmptyEnrichment()

	var mu sync.Mutex
	complete := true
	fail := func(provider string, err error) {
		if err == nil || errors.Is(err, ErrNoResult) {
			return
		}
		mu.Lock()
		complete = false
		mu.Unlock()
		e.log.Warn("外部信息获取失败", "provider", provider, "title", title, "error", err)
	}

	var wg sync.WaitGroup
	if e.ratings != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := e.call(ctx, providerRatings, func(ctx context.Context) error {
				r, err := e.ratings.Ratings(ctx, lookup, year)
				if err == nil && r != nil {
					res.Ratings = r
				}
				return err
			})
			fail(providerRatings, err)
		}()
	}
	if e.synopsis != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := e.call(ctx, providerSynopsis, func(ctx context.Context) error {
				s, err := e.synopsis.Synopsis(ctx, lookup, year)
				if err == nil && s != "" {
					res.Synopsis = s
				}
				return err
			})
			fail(providerSynopsis, err)
		}()
	}
	if e.platforms != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := e.call(ctx, providerPlatforms, func(ctx context.Context) error {
				p, err := e.platforms.Platforms(ctx, lookup, year)
				if err == nil && p != nil {
					res.Platforms = p
				}
				return err
			})
			fail(providerPlatforms, err)
		}()
	}
	wg.Wait()
	return res, complete
}

// call 熔断 + 超时 + 指数退避重试
func (e *Enricher) call(ctx context.Context, provider string, fn func(ctx context.Context) error) error {
	cb := e.breakers[provider]
	op := func() error {
		_, err := cb.Execute(func() (any, error) {
			cctx, cancel := context.WithTimeout(ctx, e.timeout)
			defer cancel()
			return nil, fn(cctx)
		})
		switch {
		case err == nil:
			return nil
		case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests),
			errors.Is(err, ErrNoResult), isClientError(err):
			return backoff.Permanent(err)
		}
		return err
	}

	eb := backoff.NewExponentialBackOff()
	eb.InitialInterval = e.backoffBase
	eb.MaxInterval = 2 * time.Second
	err := backoff.Retry(op, backoff.WithContext(backoff.WithMaxRetries(eb, uint64(e.retries)), ctx))
	switch {
	case err == nil:
		metrics.RecordEnrichment(provider, "ok")
	case errors.Is(err, ErrNoResult):
		metrics.RecordEnrichment(provider, "miss")
	default:
		metrics.RecordEnrichment(provider, "error")
	}
	return err
}

func isClientError(err error) bool {
	var se *utils.StatusError
	return errors.As(err, &se) && !se.Retryable()
}

func copyEnrichment(src *model.Enrichment) *model.Enrichment {
	return &model.Enrichment{
		Ratings:   append([]model.Rating{}, src.Ratings...),
		Synopsis:  src.Synopsis,
		Platforms: append([]string{}, src.Platforms...),
	}
}
