package service

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	gobreaker "github.com/sony/gobreaker/v2"
	"github.com/user/nextflix/internal/logger"
	"github.com/user/nextflix/internal/model"
	"github.com/user/nextflix/internal/recommend"
	"github.com/user/nextflix/internal/utils"
)

const inceptionPage = `<html><body><div id="mw-content-text"><div class="mw-parser-output">
<p class="mw-empty-elt"></p>
<p><b>Inception</b> is a 2010 science fiction action film[1] written and directed by
Christopher Nolan.[2]</p>
<p>Second paragraph.</p>
</div></div></body></html>`

// fakeUpstream 同时模拟 OMDb、维基百科与 TMDB
type fakeUpstream struct {
	omdbHits atomic.Int32
	wikiHits atomic.Int32
	tmdbHits atomic.Int32
	fail     atomic.Bool
}

func (f *fakeUpstream) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch {
	case r.URL.Path == "/":
		f.omdbHits.Add(1)
	case strings.HasPrefix(r.URL.Path, "/wiki/"):
		f.wikiHits.Add(1)
	default:
		f.tmdbHits.Add(1)
	}
	if f.fail.Load() {
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	switch {
	case r.URL.Path == "/":
		w.Header().Set("Content-Type", "application/json")
		if r.URL.Query().Get("t") != "Inception" {
			w.Write([]byte(`{"Response":"False","Error":"Movie not found!"}`))
			return
		}
		w.Write([]byte(`{"Response":"True","Title":"Inception","imdbRating":"8.8",
			"Ratings":[{"Source":"Internet Movie Database","Value":"8.8/10"},{"Source":"Rotten Tomatoes","Value":"87%"}]}`))
	case r.URL.Path == "/wiki/Inception_(film)":
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte(inceptionPage))
	case r.URL.Path == "/search/movie":
		if r.Header.Get("Authorization") != "Bearer tmdb-token" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		if r.URL.Query().Get("query") != "Inception" {
			w.Write([]byte(`{"results":[]}`))
			return
		}
		w.Write([]byte(`{"results":[{"id":27205,"title":"Inception"}]}`))
	case r.URL.Path == "/movie/27205/watch/providers":
		w.Write([]byte(`{"results":{"US":{"flatrate":[{"provider_name":"Netflix"}],
			"ads":[{"provider_name":"Tubi"},{"provider_name":"Netflix"}]},
			"GB":{"flatrate":[{"provider_name":"Sky Go"}]}}}`))
	default:
		http.NotFound(w, r)
	}
}

func newTestEnricher(t *testing.T, up *fakeUpstream, retries int) *Enricher {
	t.Helper()
	srv := httptest.NewServer(up)
	t.Cleanup(srv.Close)

	client := utils.NewHTTPClient(2 * time.Second)
	e := NewEnricher(EnricherOptions{
		Ratings:   NewOMDbProvider(client, srv.URL, "omdb-key"),
		Synopsis:  NewWikipediaProvider(client, srv.URL),
		Platforms: NewTMDBProvider(client, srv.URL, "tmdb-token", "us"),
		Timeout:   time.Second,
		Retries:   retries,
	}, logger.Nop())
	e.backoffBase = time.Millisecond
	return e
}

func TestEnricherCombinesProviders(t *testing.T) {
	e := newTestEnricher(t, &fakeUpstream{}, 0)

	got := e.Enrich(context.Background(), "Inception")
	if len(got.Ratings) != 2 || got.Ratings[1].Source != "Rotten Tomatoes" || got.Ratings[1].Value != "87%" {
		t.Fatalf("ratings = %+v", got.Ratings)
	}
	want := "Inception is a 2010 science fiction action film written and directed by Christopher Nolan."
	if got.Synopsis != want {
		t.Fatalf("synopsis = %q, want %q", got.Synopsis, want)
	}
	if strings.Join(got.Platforms, ",") != "Netflix,Tubi" {
		t.Fatalf("platforms = %v", got.Platforms)
	}
}

func TestEnricherCachesCompleteResults(t *testing.T) {
	up := &fakeUpstream{}
	e := newTestEnricher(t, up, 0)

	first := e.Enrich(context.Background(), "Inception")
	hits := up.omdbHits.Load() + up.wikiHits.Load() + up.tmdbHits.Load()

	first.Synopsis = "mutated"
	second := e.Enrich(context.Background(), " inception ")
	if total := up.omdbHits.Load() + up.wikiHits.Load() + up.tmdbHits.Load(); total != hits {
		t.Fatalf("upstream hits grew from %d to %d, want cached result", hits, total)
	}
	if second.Synopsis == "mutated" {
		t.Fatal("cached enrichment must not be shared with callers")
	}
}

func TestEnricherFallsBackToPlaceholders(t *testing.T) {
	up := &fakeUpstream{}
	up.fail.Store(true)
	e := newTestEnricher(t, up, 1)

	got := e.Enrich(context.Background(), "Inception")
	if len(got.Ratings) != 0 || len(got.Platforms) != 0 {
		t.Fatalf("got %+v, want empty lists", got)
	}
	if got.Ratings == nil || got.Platforms == nil {
		t.Fatal("placeholders must be empty lists, not nil")
	}
	if got.Synopsis != model.SynopsisUnavailable {
		t.Fatalf("synopsis = %q", got.Synopsis)
	}
	if n := up.omdbHits.Load(); n != 2 {
		t.Fatalf("omdb hits = %d, want 2 (one retry)", n)
	}

	// 失败结果不缓存，恢复后可以拿到数据
	up.fail.Store(false)
	got = e.Enrich(context.Background(), "Inception")
	if len(got.Ratings) != 2 {
		t.Fatalf("after recovery ratings = %+v", got.Ratings)
	}
}

func TestEnricherNoResultIsNotRetried(t *testing.T) {
	up := &fakeUpstream{}
	e := newTestEnricher(t, up, 3)

	got := e.Enrich(context.Background(), "Nonexistent Picture")
	if len(got.Ratings) != 0 || len(got.Platforms) != 0 || got.Synopsis != model.SynopsisUnavailable {
		t.Fatalf("got %+v", got)
	}
	if n := up.omdbHits.Load(); n != 1 {
		t.Fatalf("omdb hits = %d, want 1", n)
	}

	e.Enrich(context.Background(), "Nonexistent Picture")
	if n := up.omdbHits.Load(); n != 1 {
		t.Fatalf("omdb hits = %d after second call, want cached miss", n)
	}
}

func TestEnricherWithoutProviders(t *testing.T) {
	e := NewEnricher(EnricherOptions{}, logger.Nop())
	got := e.Enrich(context.Background(), "Anything")
	if got.Synopsis != model.SynopsisUnavailable || len(got.Ratings) != 0 || len(got.Platforms) != 0 {
		t.Fatalf("got %+v", got)
	}
}

func TestEnrichAllKeepsOrder(t *testing.T) {
	e := newTestEnricher(t, &fakeUpstream{}, 0)
	items := []recommend.Scored{
		{Movie: model.Movie{Title: "Nonexistent Picture"}},
		{Movie: model.Movie{Title: "Inception"}},
	}
	e.EnrichAll(context.Background(), items)

	if items[0].Enrichment == nil || items[0].Enrichment.Synopsis != model.SynopsisUnavailable {
		t.Fatalf("items[0] = %+v", items[0].Enrichment)
	}
	if items[1].Enrichment == nil || len(items[1].Enrichment.Ratings) != 2 {
		t.Fatalf("items[1] = %+v", items[1].Enrichment)
	}
}

type failingRatings struct {
	calls atomic.Int32
}

func (f *failingRatings) Ratings(ctx context.Context, title, year string) ([]model.Rating, error) {
	f.calls.Add(1)
	return nil, errors.New("connection reset")
}

func TestEnricherBreakerOpensAfterConsecutiveFailures(t *testing.T) {
	provider := &failingRatings{}
	e := NewEnricher(EnricherOptions{Ratings: provider, Retries: 0}, logger.Nop())

	call := func() error {
		return e.call(context.Background(), providerRatings, func(ctx context.Context) error {
			_, err := provider.Ratings(ctx, "x", "")
			return err
		})
	}
	for i := 0; i < 5; i++ {
		if err := call(); err == nil {
			t.Fatal("expected failure")
		}
	}
	err := call()
	if !errors.Is(err, gobreaker.ErrOpenState) {
		t.Fatalf("err = %v, want open breaker", err)
	}
	if n := provider.calls.Load(); n != 5 {
		t.Fatalf("provider calls = %d, want 5", n)
	}
}

func TestWikipediaRejectsDisambiguation(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<div id="mw-content-text"><div class="mw-parser-output">
<p><b>Heat</b> may refer to:</p></div></div>`))
	}))
	defer srv.Close()

	p := NewWikipediaProvider(utils.NewHTTPClient(time.Second), srv.URL)
	_, err := p.Synopsis(context.Background(), "Heat", "")
	if !errors.Is(err, ErrNoResult) {
		t.Fatalf("err = %v, want ErrNoResult", err)
	}
}

func TestWikipediaPrefersYearPage(t *testing.T) {
	var requests atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
		if r.URL.Path != "/wiki/Heat_(1995_film)" {
			http.NotFound(w, r)
			return
		}
		w.Write([]byte(`<div id="mw-content-text"><div class="mw-parser-output"><p>Heat is a 1995 crime film.</p></div></div>`))
	}))
	defer srv.Close()

	p := NewWikipediaProvider(utils.NewHTTPClient(time.Second), srv.URL)
	got, err := p.Synopsis(context.Background(), "Heat", "1995")
	if err != nil {
		t.Fatal(err)
	}
	if got != "Heat is a 1995 crime film." {
		t.Fatalf("synopsis = %q", got)
	}
	if n := requests.Load(); n != 1 {
		t.Fatalf("requests = %d, want only the year page", n)
	}
}
