package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/user/nextflix/internal/events"
	"github.com/user/nextflix/internal/logger"
	"github.com/user/nextflix/internal/model"
	"github.com/user/nextflix/internal/recommend"
	"github.com/user/nextflix/internal/repository"
)

func newUserService() (*UserService, *recordingPublisher) {
	pub := &recordingPublisher{}
	return NewUserService(repository.NewMemoryProfileStore(), pub, logger.Nop()), pub
}

func TestUserListsStayDisjoint(t *testing.T) {
	ctx := context.Background()
	s, _ := newUserService()

	if _, err := s.AddToList(ctx, ListWatchlist, "u1", "Heat"); err != nil {
		t.Fatal(err)
	}
	if _, err := s.AddToList(ctx, ListWatchlist, "u1", " heat "); err != nil {
		t.Fatal(err)
	}
	p, err := s.AddToList(ctx, ListSeen, "u1", "HEAT")
	if err != nil {
		t.Fatal(err)
	}
	if len(p.Watchlist) != 0 || len(p.Seen) != 1 || p.Seen[0] != "HEAT" {
		t.Fatalf("watchlist = %v, seen = %v", p.Watchlist, p.Seen)
	}

	p, err = s.AddToList(ctx, ListWatchlist, "u1", "Heat")
	if err != nil {
		t.Fatal(err)
	}
	if len(p.Seen) != 0 || len(p.Watchlist) != 1 {
		t.Fatalf("watchlist = %v, seen = %v", p.Watchlist, p.Seen)
	}

	p, err = s.RemoveFromList(ctx, ListWatchlist, "u1", "heat")
	if err != nil {
		t.Fatal(err)
	}
	if len(p.Watchlist) != 0 {
		t.Fatalf("watchlist = %v", p.Watchlist)
	}
}

func TestUserFavoritesFeedPreferences(t *testing.T) {
	ctx := context.Background()
	s, _ := newUserService()

	if _, err := s.AddToList(ctx, ListFavorites, "u1", "Alien"); err != nil {
		t.Fatal(err)
	}
	p, err := s.GetProfile(ctx, "u1")
	if err != nil {
		t.Fatal(err)
	}
	if !model.Contains(p.Preferences.Movies, "alien") {
		t.Fatalf("preferences.movies = %v", p.Preferences.Movies)
	}

	p, err = s.RemoveFromList(ctx, ListFavorites, "u1", "ALIEN")
	if err != nil {
		t.Fatal(err)
	}
	if len(p.Favorites) != 0 {
		t.Fatalf("favorites = %v", p.Favorites)
	}
	if !model.Contains(p.Preferences.Movies, "Alien") {
		t.Fatal("removing a favorite keeps the preference")
	}
}

func TestUserListsForUnknownUser(t *testing.T) {
	ctx := context.Background()
	s, _ := newUserService()

	for _, kind := range []ListKind{ListWatchlist, ListFavorites, ListSeen} {
		list, err := s.List(ctx, kind, "nobody")
		if err != nil {
			t.Fatal(err)
		}
		if list == nil || len(list) != 0 {
			t.Fatalf("%s = %v, want empty list", kind, list)
		}
	}
	fb, err := s.Feedback(ctx, "nobody")
	if err != nil || len(fb) != 0 {
		t.Fatalf("feedback = %v, %v", fb, err)
	}
	if _, err := s.GetProfile(ctx, "nobody"); !errors.Is(err, recommend.ErrProfileNotFound) {
		t.Fatalf("err = %v", err)
	}
}

func TestUserRequiredFields(t *testing.T) {
	ctx := context.Background()
	s, _ := newUserService()

	tests := []struct {
		name string
		call func() error
	}{
		{"blank user", func() error { _, err := s.AddToList(ctx, ListWatchlist, " ", "Heat"); return err }},
		{"blank movie", func() error { _, err := s.AddToList(ctx, ListSeen, "u1", ""); return err }},
		{"preferences without user", func() error {
			_, err := s.SavePreferences(ctx, "", model.PreferenceInput{Movies: []string{"x"}})
			return err
		}},
		{"rating too high", func() error { _, err := s.SaveFeedback(ctx, "u1", "Heat", 6, ""); return err }},
		{"rating too low", func() error { _, err := s.SaveFeedback(ctx, "u1", "Heat", 0, ""); return err }},
		{"feedback without movie", func() error { _, err := s.SaveFeedback(ctx, "u1", " ", 3, ""); return err }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.call(); !errors.Is(err, ErrInvalidRequest) {
				t.Fatalf("err = %v, want ErrInvalidRequest", err)
			}
		})
	}
}

func TestUserFeedbackLastWriteWins(t *testing.T) {
	ctx := context.Background()
	s, pub := newUserService()

	if _, err := s.SaveFeedback(ctx, "u1", "Heat", 2, "meh"); err != nil {
		t.Fatal(err)
	}
	entry, err := s.SaveFeedback(ctx, "u1", "heat", 5, " great on rewatch ")
	if err != nil {
		t.Fatal(err)
	}
	if entry.Rating != 5 || entry.Text != "great on rewatch" {
		t.Fatalf("entry = %+v", entry)
	}

	fb, err := s.Feedback(ctx, "u1")
	if err != nil {
		t.Fatal(err)
	}
	if len(fb) != 1 || fb[0].Rating != 5 {
		t.Fatalf("feedback = %+v", fb)
	}
	if got := strings.Join(pub.topics(), ","); got != events.TopicFeedbackSaved+","+events.TopicFeedbackSaved {
		t.Fatalf("topics = %s", got)
	}
}

func TestSavePreferencesReplacesProvidedLists(t *testing.T) {
	ctx := context.Background()
	s, _ := newUserService()

	_, err := s.SavePreferences(ctx, "u1", model.PreferenceInput{
		Genres:    []string{"Drama", "drama", " Comedy "},
		Directors: []string{"Nolan"},
	})
	if err != nil {
		t.Fatal(err)
	}
	p, err := s.SavePreferences(ctx, "u1", model.PreferenceInput{Genres: []string{"Horror"}})
	if err != nil {
		t.Fatal(err)
	}
	if strings.Join(p.Preferences.Genres, ",") != "Horror" {
		t.Fatalf("genres = %v", p.Preferences.Genres)
	}
	if strings.Join(p.Preferences.Directors, ",") != "Nolan" {
		t.Fatalf("directors = %v", p.Preferences.Directors)
	}
}
