package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/dhollis/choreboard/internal/model"
)

type ChoreStore struct {
	db *sql.DB
}

func NewChoreStore(db *sql.DB) *ChoreStore {
	return &ChoreStore{db: db}
}

const choreCols = `id, title, points, recurrence_rule, created_at, updated_at`

func scanChore(scanner interface{ Scan(...any) error }) (*model.Chore, error) {
	var c model.Chore
	err := scanner.Scan(&c.ID, &c.Title, &c.Points, &c.RecurrenceRule, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// Create inserts the chore and its full profile assignment set in one
// transaction. A chore is never observable without its links.
func (s *ChoreStore) Create(title string, points int, recurrenceRule string, profileIDs []int64) (*model.Chore, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	result, err := tx.Exec(
		`INSERT INTO chores (title, points, recurrence_rule) VALUES (?, ?, ?)`,
		title, points, recurrenceRule,
	)
	if err != nil {
		return nil, fmt.Errorf("insert chore: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}

	for _, pid := range profileIDs {
		if _, err := tx.Exec(
			`INSERT INTO chore_profiles (chore_id, profile_id) VALUES (?, ?)`,
			id, pid,
		); err != nil {
			return nil, fmt.Errorf("link profile %d: %w", pid, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}
	return s.GetByID(id)
}

func (s *ChoreStore) GetByID(id int64) (*model.Chore, error) {
	row := s.db.QueryRow(`SELECT `+choreCols+` FROM chores WHERE id = ?`, id)
	c, err := scanChore(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get chore: %w", err)
	}

	c.ProfileIDs, err = s.profileIDs(id)
	if err != nil {
		return nil, err
	}
	return c, nil
}

// List returns all chores in ascending id order with their assigned profile ids.
func (s *ChoreStore) List() ([]model.Chore, error) {
	rows, err := s.db.Query(`SELECT ` + choreCols + ` FROM chores ORDER BY id ASC`)
	if err != nil {
		return nil, fmt.Errorf("list chores: %w", err)
	}
	defer rows.Close()

	var chores []model.Chore
	for rows.Next() {
		c, err := scanChore(rows)
		if err != nil {
			return nil, fmt.Errorf("scan chore: %w", err)
		}
		chores = append(chores, *c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range chores {
		chores[i].ProfileIDs, err = s.profileIDs(chores[i].ID)
		if err != nil {
			return nil, err
		}
	}
	return chores, nil
}

func (s *ChoreStore) profileIDs(choreID int64) ([]int64, error) {
	rows, err := s.db.Query(
		`SELECT profile_id FROM chore_profiles WHERE chore_id = ? ORDER BY profile_id ASC`,
		choreID,
	)
	if err != nil {
		return nil, fmt.Errorf("list chore profiles: %w", err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan profile id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// --- Assignment reads ---

func scanAssignment(scanner interface{ Scan(...any) error }) (*model.Assignment, error) {
	var a model.Assignment
	var completed int
	var completedAt sql.NullTime

	err := scanner.Scan(&a.ChoreID, &a.ProfileID, &a.Date, &completed, &completedAt)
	if err != nil {
		return nil, err
	}

	a.IsCompleted = completed != 0
	if completedAt.Valid {
		t := completedAt.Time
		a.CompletedAt = &t
	}
	return &a, nil
}

const assignmentCols = `chore_id, profile_id, assignment_date, is_completed, completed_at`

// GetAssignment looks up the completion record for one (chore, profile, date)
// key. A nil result means the row was never materialized: not completed.
func (s *ChoreStore) GetAssignment(choreID, profileID int64, date time.Time) (*model.Assignment, error) {
	row := s.db.QueryRow(
		`SELECT `+assignmentCols+` FROM chore_assignments WHERE chore_id = ? AND profile_id = ? AND assignment_date = ?`,
		choreID, profileID, dateKey(date),
	)
	a, err := scanAssignment(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get assignment: %w", err)
	}
	return a, nil
}

// ListAssignmentsForDate returns every materialized completion record for a date.
func (s *ChoreStore) ListAssignmentsForDate(date time.Time) ([]model.Assignment, error) {
	rows, err := s.db.Query(
		`SELECT `+assignmentCols+` FROM chore_assignments WHERE assignment_date = ?`,
		dateKey(date),
	)
	if err != nil {
		return nil, fmt.Errorf("list assignments: %w", err)
	}
	defer rows.Close()

	var assignments []model.Assignment
	for rows.Next() {
		a, err := scanAssignment(rows)
		if err != nil {
			return nil, fmt.Errorf("scan assignment: %w", err)
		}
		assignments = append(assignments, *a)
	}
	return assignments, rows.Err()
}

func dateKey(date time.Time) string {
	return date.Format("2006-01-02")
}
