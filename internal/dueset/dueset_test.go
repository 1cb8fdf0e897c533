package dueset

import (
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/dhollis/choreboard/internal/database"
	"github.com/dhollis/choreboard/internal/ledger"
	"github.com/dhollis/choreboard/internal/store"
)

type fixture struct {
	builder  *Builder
	profiles *store.ProfileStore
	chores   *store.ChoreStore
	ledger   *ledger.Ledger
}

func setup(t *testing.T) *fixture {
	t.Helper()
	db, err := database.Open(":memory:")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	ps := store.NewProfileStore(db)
	cs := store.NewChoreStore(db)
	return &fixture{
		builder:  NewBuilder(ps, cs, logger),
		profiles: ps,
		chores:   cs,
		ledger:   ledger.New(db, logger),
	}
}

func day(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := time.Parse("2006-01-02", s)
	if err != nil {
		t.Fatalf("parse date %q: %v", s, err)
	}
	return d
}

func TestForDateDailyChore(t *testing.T) {
	f := setup(t)

	p, _ := f.profiles.Create("P1", "child", "mint", "rocket")
	f.chores.Create("Dishes", 10, "FREQ=DAILY;START=2024-01-01", []int64{p.ID})

	sets, err := f.builder.ForDate(day(t, "2024-01-05"))
	if err != nil {
		t.Fatalf("resolve due set: %v", err)
	}
	if len(sets) != 1 {
		t.Fatalf("profiles = %d, want 1", len(sets))
	}
	if len(sets[0].Chores) != 1 {
		t.Fatalf("due chores = %d, want 1", len(sets[0].Chores))
	}
	inst := sets[0].Chores[0]
	if inst.Title != "Dishes" || inst.Points != 10 {
		t.Errorf("instance = %+v, want Dishes worth 10", inst)
	}
	if inst.IsCompleted {
		t.Error("unmaterialized assignment must surface as not completed")
	}
}

func TestForDateIncludesProfilesWithNothingDue(t *testing.T) {
	f := setup(t)

	busy, _ := f.profiles.Create("Busy", "child", "mint", "rocket")
	idle, _ := f.profiles.Create("Idle", "child", "teal", "book")
	f.chores.Create("Dishes", 10, "FREQ=DAILY;START=2024-01-01", []int64{busy.ID})

	sets, err := f.builder.ForDate(day(t, "2024-01-05"))
	if err != nil {
		t.Fatalf("resolve due set: %v", err)
	}
	if len(sets) != 2 {
		t.Fatalf("profiles = %d, want both profiles present", len(sets))
	}
	if sets[1].ID != idle.ID {
		t.Fatalf("second profile = %d, want %d (id order)", sets[1].ID, idle.ID)
	}
	if sets[1].Chores == nil || len(sets[1].Chores) != 0 {
		t.Errorf("idle profile chores = %v, want empty list, not omitted", sets[1].Chores)
	}
}

func TestForDateRespectsRecurrence(t *testing.T) {
	f := setup(t)

	p, _ := f.profiles.Create("P1", "child", "mint", "rocket")
	// 2024-01-01 is a Monday.
	f.chores.Create("Trash", 5, "FREQ=WEEKLY;START=2024-01-01;BYDAY=MON,WED", []int64{p.ID})
	f.chores.Create("One-off", 8, "ONCE;START=2024-01-03", []int64{p.ID})

	tests := []struct {
		date string
		want []string
	}{
		{"2024-01-01", []string{"Trash"}},
		{"2024-01-02", nil},
		{"2024-01-03", []string{"Trash", "One-off"}},
		{"2024-01-04", nil},
	}
	for _, tt := range tests {
		sets, err := f.builder.ForDate(day(t, tt.date))
		if err != nil {
			t.Fatalf("resolve %s: %v", tt.date, err)
		}
		var titles []string
		for _, c := range sets[0].Chores {
			titles = append(titles, c.Title)
		}
		if len(titles) != len(tt.want) {
			t.Errorf("%s: due = %v, want %v", tt.date, titles, tt.want)
			continue
		}
		for i := range tt.want {
			if titles[i] != tt.want[i] {
				t.Errorf("%s: due[%d] = %q, want %q", tt.date, i, titles[i], tt.want[i])
			}
		}
	}
}

func TestForDateSurfacesCompletionState(t *testing.T) {
	f := setup(t)

	p, _ := f.profiles.Create("P1", "child", "mint", "rocket")
	c, _ := f.chores.Create("Dishes", 10, "FREQ=DAILY;START=2024-01-01", []int64{p.ID})

	target := day(t, "2024-01-05")
	if _, err := f.ledger.ToggleCompletion(c.ID, p.ID, target, true); err != nil {
		t.Fatalf("toggle: %v", err)
	}

	sets, err := f.builder.ForDate(target)
	if err != nil {
		t.Fatalf("resolve due set: %v", err)
	}
	if !sets[0].Chores[0].IsCompleted {
		t.Error("completed assignment not surfaced")
	}
	if sets[0].Points != 10 {
		t.Errorf("profile points = %d, want 10", sets[0].Points)
	}

	// The same chore on a different date is independent state.
	other, err := f.builder.ForDate(day(t, "2024-01-06"))
	if err != nil {
		t.Fatalf("resolve other date: %v", err)
	}
	if other[0].Chores[0].IsCompleted {
		t.Error("completion leaked across dates")
	}
}

func TestForDateNeverMaterializesRows(t *testing.T) {
	f := setup(t)

	p, _ := f.profiles.Create("P1", "child", "mint", "rocket")
	c, _ := f.chores.Create("Dishes", 10, "FREQ=DAILY;START=2024-01-01", []int64{p.ID})

	target := day(t, "2024-01-05")
	if _, err := f.builder.ForDate(target); err != nil {
		t.Fatalf("resolve due set: %v", err)
	}

	a, err := f.chores.GetAssignment(c.ID, p.ID, target)
	if err != nil {
		t.Fatalf("get assignment: %v", err)
	}
	if a != nil {
		t.Error("due-set resolution wrote an assignment row")
	}
}

func TestForDateAfterChoreDelete(t *testing.T) {
	f := setup(t)

	p, _ := f.profiles.Create("P1", "child", "mint", "rocket")
	c, _ := f.chores.Create("Dishes", 10, "FREQ=DAILY;START=2024-01-01", []int64{p.ID})

	target := day(t, "2024-01-05")
	f.ledger.ToggleCompletion(c.ID, p.ID, target, true)
	if err := f.ledger.DeleteChore(c.ID); err != nil {
		t.Fatalf("delete chore: %v", err)
	}

	for _, d := range []string{"2024-01-01", "2024-01-05", "2024-02-01"} {
		sets, err := f.builder.ForDate(day(t, d))
		if err != nil {
			t.Fatalf("resolve %s: %v", d, err)
		}
		if len(sets[0].Chores) != 0 {
			t.Errorf("%s: deleted chore still due", d)
		}
	}
}
