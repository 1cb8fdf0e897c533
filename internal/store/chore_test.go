package store

import (
	"testing"
	"time"

	"github.com/dhollis/choreboard/internal/database"
)

func setupChoreTestDB(t *testing.T) (*ChoreStore, *ProfileStore) {
	t.Helper()
	db, err := database.Open(":memory:")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return NewChoreStore(db), NewProfileStore(db)
}

func TestChoreCreateWithAssignments(t *testing.T) {
	cs, ps := setupChoreTestDB(t)

	p1, _ := ps.Create("Mom", "parent", "teal", "coffee")
	p2, _ := ps.Create("Ella", "child", "lavender", "unicorn")

	chore, err := cs.Create("Dishes", 10, "FREQ=DAILY;START=2024-01-01", []int64{p1.ID, p2.ID})
	if err != nil {
		t.Fatalf("create chore: %v", err)
	}
	if chore.Title != "Dishes" || chore.Points != 10 {
		t.Errorf("chore = %+v, want Dishes worth 10", chore)
	}
	if len(chore.ProfileIDs) != 2 {
		t.Fatalf("profile ids = %v, want both profiles linked", chore.ProfileIDs)
	}
	if chore.ProfileIDs[0] != p1.ID || chore.ProfileIDs[1] != p2.ID {
		t.Errorf("profile ids = %v, want [%d %d]", chore.ProfileIDs, p1.ID, p2.ID)
	}
}

func TestChoreGetByIDNotFound(t *testing.T) {
	cs, _ := setupChoreTestDB(t)

	got, err := cs.GetByID(4242)
	if err != nil {
		t.Fatalf("get chore: %v", err)
	}
	if got != nil {
		t.Error("expected nil for nonexistent chore")
	}
}

func TestChoreListOrdering(t *testing.T) {
	cs, ps := setupChoreTestDB(t)

	p, _ := ps.Create("Mom", "parent", "teal", "coffee")
	cs.Create("Vacuum", 5, "FREQ=WEEKLY;START=2024-01-01;BYDAY=SAT", []int64{p.ID})
	cs.Create("Dishes", 10, "FREQ=DAILY;START=2024-01-01", []int64{p.ID})

	chores, err := cs.List()
	if err != nil {
		t.Fatalf("list chores: %v", err)
	}
	if len(chores) != 2 {
		t.Fatalf("expected 2 chores, got %d", len(chores))
	}
	if chores[0].Title != "Vacuum" || chores[1].Title != "Dishes" {
		t.Errorf("chores out of id order: %q, %q", chores[0].Title, chores[1].Title)
	}
}

func TestAssignmentAbsentMeansNotCompleted(t *testing.T) {
	cs, ps := setupChoreTestDB(t)

	p, _ := ps.Create("Ella", "child", "lavender", "unicorn")
	chore, _ := cs.Create("Dishes", 10, "FREQ=DAILY;START=2024-01-01", []int64{p.ID})

	day := time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC)
	a, err := cs.GetAssignment(chore.ID, p.ID, day)
	if err != nil {
		t.Fatalf("get assignment: %v", err)
	}
	if a != nil {
		t.Error("expected nil assignment before any toggle")
	}

	assignments, err := cs.ListAssignmentsForDate(day)
	if err != nil {
		t.Fatalf("list assignments: %v", err)
	}
	if len(assignments) != 0 {
		t.Errorf("expected no materialized rows, got %d", len(assignments))
	}
}
