package repository

import (
	"context"
	"testing"
	"time"

	"github.com/user/nextflix/internal/model"
)

func TestReportRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewReportRepository(newTestDB(t))

	uid := "u1"
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for i, subject := range []string{"first", "second", "third"} {
		r := &model.BugReport{Subject: subject, Description: "desc", CreatedAt: base.Add(time.Duration(i) * time.Hour)}
		if i == 0 {
			r.UserID = &uid
		}
		if err := repo.Create(ctx, r); err != nil {
			t.Fatal(err)
		}
		if r.PublicID == "" || r.ID == 0 {
			t.Fatalf("ids not assigned: %+v", r)
		}
	}

	list, err := repo.List(ctx, 0, 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(list) != 3 || list[0].Subject != "third" || list[2].Subject != "first" {
		t.Fatalf("list order = %+v", list)
	}
	if list[2].UserID == nil || *list[2].UserID != "u1" {
		t.Fatal("user id lost")
	}

	page, err := repo.List(ctx, 1, 1)
	if err != nil || len(page) != 1 || page[0].Subject != "second" {
		t.Fatalf("page = %+v, %v", page, err)
	}

	ok, err := repo.Delete(ctx, list[0].ID)
	if err != nil || !ok {
		t.Fatalf("delete = %v, %v", ok, err)
	}
	if ok, _ := repo.Delete(ctx, 9999); ok {
		t.Fatal("deleting missing report reported success")
	}
}
