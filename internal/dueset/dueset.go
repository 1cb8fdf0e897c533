// Package dueset resolves which chore instances are due for which profiles on
// a given calendar date. It is read-only: absent assignment rows are surfaced
// as default "not completed" instances and never persisted.
package dueset

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/dhollis/choreboard/internal/model"
	"github.com/dhollis/choreboard/internal/recurrence"
	"github.com/dhollis/choreboard/internal/store"
)

type Builder struct {
	profiles *store.ProfileStore
	chores   *store.ChoreStore
	logger   *slog.Logger
}

func NewBuilder(ps *store.ProfileStore, cs *store.ChoreStore, logger *slog.Logger) *Builder {
	return &Builder{profiles: ps, chores: cs, logger: logger}
}

// ForDate returns every profile with its due chore list for the date. Profiles
// appear in enumeration (id) order, chores within a profile in ascending chore
// id order, and a profile with nothing due still appears with an empty list.
func (b *Builder) ForDate(date time.Time) ([]model.ProfileDueSet, error) {
	profiles, err := b.profiles.List()
	if err != nil {
		return nil, fmt.Errorf("load profiles: %w", err)
	}

	chores, err := b.chores.List()
	if err != nil {
		return nil, fmt.Errorf("load chores: %w", err)
	}

	assignments, err := b.chores.ListAssignmentsForDate(date)
	if err != nil {
		return nil, fmt.Errorf("load assignments: %w", err)
	}

	type key struct {
		choreID   int64
		profileID int64
	}
	byKey := make(map[key]model.Assignment, len(assignments))
	for _, a := range assignments {
		byKey[key{a.ChoreID, a.ProfileID}] = a
	}

	due := make(map[int64][]model.ChoreInstance)
	for _, c := range chores {
		rule, err := recurrence.Parse(c.RecurrenceRule)
		if err != nil {
			// A chore with an unparseable rule cannot be scheduled.
			// Surface it in the log rather than failing the whole read.
			b.logger.Error("invalid recurrence rule", "chore_id", c.ID, "rule", c.RecurrenceRule, "error", err)
			continue
		}
		if !rule.IsDue(date) {
			continue
		}

		for _, pid := range c.ProfileIDs {
			inst := model.ChoreInstance{
				ChoreID: c.ID,
				Title:   c.Title,
				Points:  c.Points,
			}
			if a, ok := byKey[key{c.ID, pid}]; ok {
				inst.IsCompleted = a.IsCompleted
				inst.CompletedAt = a.CompletedAt
			}
			due[pid] = append(due[pid], inst)
		}
	}

	result := make([]model.ProfileDueSet, 0, len(profiles))
	for _, p := range profiles {
		list := due[p.ID]
		if list == nil {
			list = []model.ChoreInstance{}
		}
		result = append(result, model.ProfileDueSet{Profile: p, Chores: list})
	}
	return result, nil
}
