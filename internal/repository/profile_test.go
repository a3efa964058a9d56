package repository

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"
	"testing"

	"github.com/redis/go-redis/v9"
	"github.com/user/nextflix/internal/model"
)

func TestMemoryProfileStore(t *testing.T) {
	testProfileStore(t, NewMemoryProfileStore())
}

func TestSQLProfileStore(t *testing.T) {
	testProfileStore(t, NewSQLProfileStore(newTestDB(t)))
}

func TestRedisProfileStore(t *testing.T) {
	addr := os.Getenv("TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("TEST_REDIS_ADDR not set")
	}
	client := redis.NewClient(&redis.Options{Addr: addr})
	t.Cleanup(func() { client.Close() })
	if err := client.Ping(context.Background()).Err(); err != nil {
		t.Skipf("redis unavailable: %v", err)
	}
	// 测试用户 ID 带随机后缀，避免与已有数据冲突
	testProfileStore(t, &prefixedStore{ProfileStore: NewRedisProfileStore(client), prefix: fmt.Sprintf("test-%d-", os.Getpid())})
}

type prefixedStore struct {
	ProfileStore
	prefix string
}

func (s *prefixedStore) Get(ctx context.Context, userID string) (*model.Profile, error) {
	return s.ProfileStore.Get(ctx, s.prefix+userID)
}

func (s *prefixedStore) Update(ctx context.Context, userID string, fn func(p *model.Profile) error) (*model.Profile, error) {
	return s.ProfileStore.Update(ctx, s.prefix+userID, fn)
}

func testProfileStore(t *testing.T, store ProfileStore) {
	ctx := context.Background()

	t.Run("absent user", func(t *testing.T) {
		p, err := store.Get(ctx, "nobody")
		if err != nil || p != nil {
			t.Fatalf("Get = %+v, %v", p, err)
		}
	})

	t.Run("implicit create and round trip", func(t *testing.T) {
		_, err := store.Update(ctx, "u1", func(p *model.Profile) error {
			p.SetPreferences(model.PreferenceInput{
				Movies: []string{"Inception", "inception ", ""},
				Genres: []string{"Sci-Fi"},
			})
			p.AddWatchlist("Heat")
			p.SetFeedback("Inception", 5, "great")
			return nil
		})
		if err != nil {
			t.Fatal(err)
		}

		got, err := store.Get(ctx, "u1")
		if err != nil || got == nil {
			t.Fatalf("Get = %+v, %v", got, err)
		}
		if len(got.Preferences.Movies) != 1 || got.Preferences.Movies[0] != "Inception" {
			t.Fatalf("movies = %v", got.Preferences.Movies)
		}
		if len(got.Preferences.Actors) != 0 || got.Preferences.Actors == nil {
			t.Fatalf("actors = %#v", got.Preferences.Actors)
		}
		if len(got.Watchlist) != 1 || len(got.Feedback) != 1 || got.Feedback[0].Rating != 5 {
			t.Fatalf("profile = %+v", got)
		}
	})

	t.Run("seen removes from watchlist", func(t *testing.T) {
		got, err := store.Update(ctx, "u1", func(p *model.Profile) error {
			p.MarkSeen("HEAT")
			return nil
		})
		if err != nil {
			t.Fatal(err)
		}
		if len(got.Watchlist) != 0 || len(got.Seen) != 1 {
			t.Fatalf("watchlist=%v seen=%v", got.Watchlist, got.Seen)
		}
	})

	t.Run("fn error aborts write", func(t *testing.T) {
		boom := errors.New("boom")
		_, err := store.Update(ctx, "u1", func(p *model.Profile) error {
			p.AddWatchlist("Should Not Persist")
			return boom
		})
		if !errors.Is(err, boom) {
			t.Fatalf("err = %v", err)
		}
		got, _ := store.Get(ctx, "u1")
		if model.Contains(got.Watchlist, "Should Not Persist") {
			t.Fatal("failed update persisted")
		}
	})

	t.Run("concurrent writers", func(t *testing.T) {
		var wg sync.WaitGroup
		for i := 0; i < 10; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				if _, err := store.Update(ctx, "u2", func(p *model.Profile) error {
					p.AddWatchlist(fmt.Sprintf("Movie %d", i))
					return nil
				}); err != nil {
					t.Error(err)
				}
			}(i)
		}
		wg.Wait()
		got, err := store.Get(ctx, "u2")
		if err != nil {
			t.Fatal(err)
		}
		if len(got.Watchlist) != 10 {
			t.Fatalf("watchlist has %d entries, want 10", len(got.Watchlist))
		}
	})
}
