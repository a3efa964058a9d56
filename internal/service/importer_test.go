package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/user/nextflix/internal/events"
	"github.com/user/nextflix/internal/logger"
	"github.com/user/nextflix/internal/model"
)

func TestImporterInsertsAndReportsLines(t *testing.T) {
	ctx := context.Background()
	repos := newTestRepos(t)
	if err := repos.Movie.Create(ctx, &model.Movie{Title: "Heat"}); err != nil {
		t.Fatal(err)
	}
	pub := &recordingPublisher{}
	im := NewImporter(repos.Movie, NewCatalogService(repos.Movie), pub, logger.Nop())

	csv := strings.Join([]string{
		"movie_title,director_name,actor_1_name,actor_2_name,actor_3_name,genres,tags,extra",
		"Alien,Ridley Scott,Sigourney Weaver,Tom Skerritt,John Hurt,Horror|Sci-Fi,space,x",
		",Nobody,,,,Drama,,",
		"heat,Michael Mann,Al Pacino,Robert De Niro,Val Kilmer,Crime,heist,",
		`"Blade Runner",Ridley Scott,Harrison Ford,"Rutger Hauer",Sean Young,"Sci-Fi, Thriller",noir,`,
		"ALIEN,Ridley Scott,,,,Horror,,",
	}, "\n")

	res, err := im.Import(ctx, strings.NewReader(csv))
	if err != nil {
		t.Fatal(err)
	}
	if res.Inserted != 2 || res.Skipped != 2 {
		t.Fatalf("result = %+v", res)
	}
	if len(res.Errors) != 1 || res.Errors[0] != "Line 3: Missing title" {
		t.Fatalf("errors = %v", res.Errors)
	}

	br, err := repos.Movie.FindByNormalizedTitle(ctx, "blade runner")
	if err != nil || br == nil {
		t.Fatalf("blade runner = %v, %v", br, err)
	}
	if br.Genres != "Sci-Fi, Thriller" || br.Actor2 != "Rutger Hauer" {
		t.Fatalf("row = %+v", br)
	}
	if topics := pub.topics(); len(topics) != 1 || topics[0] != events.TopicMoviesImported {
		t.Fatalf("topics = %v", topics)
	}
}

func TestImporterRejectsMissingColumns(t *testing.T) {
	repos := newTestRepos(t)
	im := NewImporter(repos.Movie, NewCatalogService(repos.Movie), events.Nop{}, logger.Nop())

	_, err := im.Import(context.Background(), strings.NewReader("movie_title,genres\nAlien,Horror\n"))
	if !errors.Is(err, ErrInvalidRequest) {
		t.Fatalf("err = %v, want ErrInvalidRequest", err)
	}
	if !strings.Contains(err.Error(), "director_name") {
		t.Fatalf("err = %v, want missing column listed", err)
	}

	if _, err := im.Import(context.Background(), strings.NewReader("")); !errors.Is(err, ErrInvalidRequest) {
		t.Fatalf("empty file err = %v", err)
	}
}

func TestImporterLineNumbersFollowFileLines(t *testing.T) {
	repos := newTestRepos(t)
	im := NewImporter(repos.Movie, NewCatalogService(repos.Movie), events.Nop{}, logger.Nop())

	csv := strings.Join([]string{
		"movie_title,director_name,actor_1_name,actor_2_name,actor_3_name,genres,tags",
		`Alien,Ridley Scott,,,,Horror,"space`,
		`horror"`,
		",Nobody,,,,Drama,",
		`Heat,Michael Mann,,,,Crime,"heist`,
		`la`,
		`noir"`,
		",Nobody,,,,Drama,",
	}, "\n")

	res, err := im.Import(context.Background(), strings.NewReader(csv))
	if err != nil {
		t.Fatal(err)
	}
	if res.Inserted != 2 {
		t.Fatalf("result = %+v", res)
	}
	want := []string{"Line 4: Missing title", "Line 8: Missing title"}
	if strings.Join(res.Errors, "|") != strings.Join(want, "|") {
		t.Fatalf("errors = %v, want %v", res.Errors, want)
	}
}
