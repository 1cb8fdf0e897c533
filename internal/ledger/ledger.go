// Package ledger serializes every operation that moves a profile's points
// balance. Each operation runs inside a single SQL transaction and under an
// exclusive per-profile lock, so the balance, the triggering record, and
// history stay consistent under concurrent requests.
package ledger

import (
	"database/sql"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/dhollis/choreboard/internal/model"
)

const lockStripes = 64

type Ledger struct {
	db     *sql.DB
	locks  [lockStripes]sync.Mutex
	logger *slog.Logger
}

func New(db *sql.DB, logger *slog.Logger) *Ledger {
	return &Ledger{db: db, logger: logger}
}

// lockFor returns the stripe guarding all ledger operations for a profile.
// Same-profile operations serialize; different profiles interleave freely
// (modulo stripe collisions, which only cost throughput).
func (l *Ledger) lockFor(profileID int64) *sync.Mutex {
	return &l.locks[uint64(profileID)%lockStripes]
}

// ToggleResult reports the outcome of a completion toggle.
type ToggleResult struct {
	Assignment model.Assignment `json:"assignment"`
	NewBalance int              `json:"new_balance"`
	Changed    bool             `json:"changed"`
}

// ToggleCompletion sets the completion state for one (chore, profile, date) key
// and applies the chore's point value on an actual state transition. Repeating
// a toggle with the same target state is a no-op: the delta is derived from the
// observed transition, never from the requested state alone, so duplicate
// "complete" requests cannot double-credit.
func (l *Ledger) ToggleCompletion(choreID, profileID int64, date time.Time, completed bool) (*ToggleResult, error) {
	mu := l.lockFor(profileID)
	mu.Lock()
	defer mu.Unlock()

	tx, err := l.db.Begin()
	if err != nil {
		return nil, storage("begin toggle", err)
	}
	defer tx.Rollback()

	var chorePoints int
	err = tx.QueryRow(`SELECT points FROM chores WHERE id = ?`, choreID).Scan(&chorePoints)
	if err == sql.ErrNoRows {
		return nil, notFoundf("chore %d not found", choreID)
	}
	if err != nil {
		return nil, storage("read chore", err)
	}

	if err := profileExists(tx, profileID); err != nil {
		return nil, err
	}

	day := date.Format("2006-01-02")
	now := time.Now().UTC()

	var exists, wasCompleted bool
	var prev int
	err = tx.QueryRow(
		`SELECT is_completed FROM chore_assignments WHERE chore_id = ? AND profile_id = ? AND assignment_date = ?`,
		choreID, profileID, day,
	).Scan(&prev)
	switch {
	case err == sql.ErrNoRows:
		// Never materialized: not completed.
	case err != nil:
		return nil, storage("read assignment", err)
	default:
		exists = true
		wasCompleted = prev != 0
	}

	result := &ToggleResult{
		Assignment: model.Assignment{
			ChoreID:     choreID,
			ProfileID:   profileID,
			Date:        day,
			IsCompleted: completed,
		},
	}

	if exists {
		// Conditional on the prior state: if another writer slipped in
		// despite the lock, zero rows match and the operation aborts.
		res, err := tx.Exec(
			`UPDATE chore_assignments SET is_completed = ?, completed_at = ?
			 WHERE chore_id = ? AND profile_id = ? AND assignment_date = ? AND is_completed = ?`,
			boolInt(completed), completedAt(completed, now), choreID, profileID, day, boolInt(wasCompleted),
		)
		if err != nil {
			return nil, storage("update assignment", err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return nil, storage("rows affected", err)
		}
		if n == 0 {
			return nil, conflictf("assignment %d/%d/%s changed concurrently", choreID, profileID, day)
		}
	} else {
		_, err := tx.Exec(
			`INSERT INTO chore_assignments (chore_id, profile_id, assignment_date, is_completed, completed_at)
			 VALUES (?, ?, ?, ?, ?)`,
			choreID, profileID, day, boolInt(completed), completedAt(completed, now),
		)
		if err != nil {
			return nil, storage("insert assignment", err)
		}
	}

	if completed {
		result.Assignment.CompletedAt = &now
	}

	delta := 0
	switch {
	case completed && !wasCompleted:
		delta = chorePoints
	case !completed && wasCompleted:
		delta = -chorePoints
	}
	result.Changed = completed != wasCompleted

	balance, err := applyDelta(tx, profileID, delta)
	if err != nil {
		return nil, err
	}
	result.NewBalance = balance

	if err := tx.Commit(); err != nil {
		return nil, storage("commit toggle", err)
	}

	l.logger.Info("toggle completion",
		"chore_id", choreID, "profile_id", profileID, "date", day,
		"completed", completed, "delta", delta, "balance", balance)
	return result, nil
}

// IssuePenalty records a penalty and debits its points in the same unit of work.
func (l *Ledger) IssuePenalty(profileID int64, name string, points int) (*model.Penalty, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, validationf("penalty name is required")
	}
	if points < 0 {
		return nil, validationf("penalty points must not be negative, got %d", points)
	}

	mu := l.lockFor(profileID)
	mu.Lock()
	defer mu.Unlock()

	tx, err := l.db.Begin()
	if err != nil {
		return nil, storage("begin penalty", err)
	}
	defer tx.Rollback()

	if err := profileExists(tx, profileID); err != nil {
		return nil, err
	}

	res, err := tx.Exec(
		`INSERT INTO penalties (name, points, profile_id) VALUES (?, ?, ?)`,
		name, points, profileID,
	)
	if err != nil {
		return nil, storage("insert penalty", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, storage("last insert id", err)
	}

	if _, err := applyDelta(tx, profileID, -points); err != nil {
		return nil, err
	}

	var p model.Penalty
	err = tx.QueryRow(
		`SELECT id, name, points, profile_id, created_at FROM penalties WHERE id = ?`, id,
	).Scan(&p.ID, &p.Name, &p.Points, &p.ProfileID, &p.CreatedAt)
	if err != nil {
		return nil, storage("read penalty", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, storage("commit penalty", err)
	}

	l.logger.Info("penalty issued", "penalty_id", p.ID, "profile_id", profileID, "points", points)
	return &p, nil
}

// RevokePenalty deletes a penalty and credits its points back atomically.
func (l *Ledger) RevokePenalty(penaltyID int64) error {
	// The owning profile determines the lock, so it is read first; the
	// transaction re-checks existence after the lock is held.
	var profileID int64
	err := l.db.QueryRow(`SELECT profile_id FROM penalties WHERE id = ?`, penaltyID).Scan(&profileID)
	if err == sql.ErrNoRows {
		return notFoundf("penalty %d not found", penaltyID)
	}
	if err != nil {
		return storage("read penalty", err)
	}

	mu := l.lockFor(profileID)
	mu.Lock()
	defer mu.Unlock()

	tx, err := l.db.Begin()
	if err != nil {
		return storage("begin revoke", err)
	}
	defer tx.Rollback()

	var points int
	err = tx.QueryRow(`SELECT points, profile_id FROM penalties WHERE id = ?`, penaltyID).Scan(&points, &profileID)
	if err == sql.ErrNoRows {
		return notFoundf("penalty %d not found", penaltyID)
	}
	if err != nil {
		return storage("read penalty", err)
	}

	if _, err := applyDelta(tx, profileID, points); err != nil {
		return err
	}

	if _, err := tx.Exec(`DELETE FROM penalties WHERE id = ?`, penaltyID); err != nil {
		return storage("delete penalty", err)
	}

	if err := tx.Commit(); err != nil {
		return storage("commit revoke", err)
	}

	l.logger.Info("penalty revoked", "penalty_id", penaltyID, "profile_id", profileID, "points", points)
	return nil
}

// RedemptionResult reports a reward redemption and the resulting balance.
type RedemptionResult struct {
	Redemption model.RewardRedemption `json:"redemption"`
	NewBalance int                    `json:"new_balance"`
}

// RedeemReward records a redemption and debits the reward's cost. There is no
// sufficiency check: balances may go negative.
func (l *Ledger) RedeemReward(rewardID, profileID int64, date time.Time) (*RedemptionResult, error) {
	mu := l.lockFor(profileID)
	mu.Lock()
	defer mu.Unlock()

	tx, err := l.db.Begin()
	if err != nil {
		return nil, storage("begin redeem", err)
	}
	defer tx.Rollback()

	var cost int
	err = tx.QueryRow(`SELECT points_cost FROM rewards WHERE id = ?`, rewardID).Scan(&cost)
	if err == sql.ErrNoRows {
		return nil, notFoundf("reward %d not found", rewardID)
	}
	if err != nil {
		return nil, storage("read reward", err)
	}

	if err := profileExists(tx, profileID); err != nil {
		return nil, err
	}

	day := date.Format("2006-01-02")
	res, err := tx.Exec(
		`INSERT INTO reward_assignments (reward_id, profile_id, assigned_at) VALUES (?, ?, ?)`,
		rewardID, profileID, day,
	)
	if err != nil {
		return nil, storage("insert redemption", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, storage("last insert id", err)
	}

	balance, err := applyDelta(tx, profileID, -cost)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, storage("commit redeem", err)
	}

	l.logger.Info("reward redeemed",
		"reward_id", rewardID, "profile_id", profileID, "cost", cost, "balance", balance)
	return &RedemptionResult{
		Redemption: model.RewardRedemption{
			ID:         id,
			RewardID:   rewardID,
			ProfileID:  profileID,
			AssignedAt: day,
		},
		NewBalance: balance,
	}, nil
}

// DeleteChore removes the chore, its assignment rows, and its profile links in
// one transaction. Points already awarded for past completions stay put.
func (l *Ledger) DeleteChore(choreID int64) error {
	tx, err := l.db.Begin()
	if err != nil {
		return storage("begin delete chore", err)
	}
	defer tx.Rollback()

	var exists int
	err = tx.QueryRow(`SELECT 1 FROM chores WHERE id = ?`, choreID).Scan(&exists)
	if err == sql.ErrNoRows {
		return notFoundf("chore %d not found", choreID)
	}
	if err != nil {
		return storage("read chore", err)
	}

	if _, err := tx.Exec(`DELETE FROM chore_assignments WHERE chore_id = ?`, choreID); err != nil {
		return storage("delete assignments", err)
	}
	if _, err := tx.Exec(`DELETE FROM chore_profiles WHERE chore_id = ?`, choreID); err != nil {
		return storage("delete profile links", err)
	}
	if _, err := tx.Exec(`DELETE FROM chores WHERE id = ?`, choreID); err != nil {
		return storage("delete chore", err)
	}

	if err := tx.Commit(); err != nil {
		return storage("commit delete chore", err)
	}

	l.logger.Info("chore deleted", "chore_id", choreID)
	return nil
}

func profileExists(tx *sql.Tx, profileID int64) error {
	var one int
	err := tx.QueryRow(`SELECT 1 FROM profiles WHERE id = ?`, profileID).Scan(&one)
	if err == sql.ErrNoRows {
		return notFoundf("profile %d not found", profileID)
	}
	if err != nil {
		return storage("read profile", err)
	}
	return nil
}

// applyDelta adjusts a profile's balance and returns the new value. A zero
// delta still reads the balance so callers can report it.
func applyDelta(tx *sql.Tx, profileID int64, delta int) (int, error) {
	if delta != 0 {
		if _, err := tx.Exec(`UPDATE profiles SET points = points + ? WHERE id = ?`, delta, profileID); err != nil {
			return 0, storage("update balance", err)
		}
	}
	var balance int
	if err := tx.QueryRow(`SELECT points FROM profiles WHERE id = ?`, profileID).Scan(&balance); err != nil {
		return 0, storage("read balance", err)
	}
	return balance, nil
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func completedAt(completed bool, now time.Time) any {
	if completed {
		return now
	}
	return nil
}
