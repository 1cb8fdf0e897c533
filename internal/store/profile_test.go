package store

import (
	"testing"

	"github.com/dhollis/choreboard/internal/database"
)

func setupTestDB(t *testing.T) *ProfileStore {
	t.Helper()
	db, err := database.Open(":memory:")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return NewProfileStore(db)
}

func TestProfileCreateAndGet(t *testing.T) {
	ps := setupTestDB(t)

	p, err := ps.Create("Ella", "child", "lavender", "unicorn")
	if err != nil {
		t.Fatalf("create profile: %v", err)
	}
	if p.Name != "Ella" {
		t.Errorf("name = %q, want %q", p.Name, "Ella")
	}
	if p.Points != 0 {
		t.Errorf("points = %d, want 0 for new profile", p.Points)
	}

	got, err := ps.GetByID(p.ID)
	if err != nil {
		t.Fatalf("get profile: %v", err)
	}
	if got == nil || got.Role != "child" || got.ColorTheme != "lavender" || got.IconName != "unicorn" {
		t.Errorf("got %+v, want role/theme/icon round-tripped", got)
	}
}

func TestProfileGetByIDNotFound(t *testing.T) {
	ps := setupTestDB(t)

	got, err := ps.GetByID(9999)
	if err != nil {
		t.Fatalf("get profile: %v", err)
	}
	if got != nil {
		t.Error("expected nil for nonexistent profile")
	}
}

func TestProfileListOrder(t *testing.T) {
	ps := setupTestDB(t)

	ps.Create("Mom", "parent", "teal", "coffee")
	ps.Create("Dad", "parent", "navy", "wrench")
	ps.Create("Ella", "child", "lavender", "unicorn")

	profiles, err := ps.List()
	if err != nil {
		t.Fatalf("list profiles: %v", err)
	}
	if len(profiles) != 3 {
		t.Fatalf("expected 3 profiles, got %d", len(profiles))
	}
	for i := 1; i < len(profiles); i++ {
		if profiles[i].ID < profiles[i-1].ID {
			t.Errorf("profiles out of id order: %d before %d", profiles[i-1].ID, profiles[i].ID)
		}
	}
}

func TestProfileUpdateLeavesPoints(t *testing.T) {
	ps := setupTestDB(t)

	p, _ := ps.Create("Ella", "child", "lavender", "unicorn")

	updated, err := ps.Update(p.ID, "Ella M", "teen", "mint", "rocket")
	if err != nil {
		t.Fatalf("update profile: %v", err)
	}
	if updated.Name != "Ella M" || updated.Role != "teen" {
		t.Errorf("updated = %+v, want new name/role", updated)
	}
	if updated.Points != 0 {
		t.Errorf("points = %d, update must not touch the balance", updated.Points)
	}
}
