package store

import (
	"testing"

	"github.com/dhollis/choreboard/internal/database"
)

func setupRewardTestDB(t *testing.T) (*RewardStore, *ProfileStore) {
	t.Helper()
	db, err := database.Open(":memory:")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return NewRewardStore(db), NewProfileStore(db)
}

func TestRewardCreateAndList(t *testing.T) {
	rs, _ := setupRewardTestDB(t)

	r, err := rs.Create("Movie night", 50)
	if err != nil {
		t.Fatalf("create reward: %v", err)
	}
	if r.Name != "Movie night" || r.PointsCost != 50 {
		t.Errorf("reward = %+v, want Movie night at 50", r)
	}

	rewards, err := rs.List()
	if err != nil {
		t.Fatalf("list rewards: %v", err)
	}
	if len(rewards) != 1 {
		t.Fatalf("expected 1 reward, got %d", len(rewards))
	}
}

func TestRewardGetByIDNotFound(t *testing.T) {
	rs, _ := setupRewardTestDB(t)

	got, err := rs.GetByID(77)
	if err != nil {
		t.Fatalf("get reward: %v", err)
	}
	if got != nil {
		t.Error("expected nil for nonexistent reward")
	}
}

func TestListRedemptionsEmpty(t *testing.T) {
	rs, _ := setupRewardTestDB(t)

	r, _ := rs.Create("Movie night", 50)
	redemptions, err := rs.ListRedemptions(r.ID)
	if err != nil {
		t.Fatalf("list redemptions: %v", err)
	}
	if len(redemptions) != 0 {
		t.Errorf("expected no redemptions, got %d", len(redemptions))
	}
}
