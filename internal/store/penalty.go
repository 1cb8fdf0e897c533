package store

import (
	"database/sql"
	"fmt"

	"github.com/dhollis/choreboard/internal/model"
)

type PenaltyStore struct {
	db *sql.DB
}

func NewPenaltyStore(db *sql.DB) *PenaltyStore {
	return &PenaltyStore{db: db}
}

const penaltyCols = `id, name, points, profile_id, created_at`

func scanPenalty(scanner interface{ Scan(...any) error }) (*model.Penalty, error) {
	var p model.Penalty
	err := scanner.Scan(&p.ID, &p.Name, &p.Points, &p.ProfileID, &p.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (s *PenaltyStore) GetByID(id int64) (*model.Penalty, error) {
	row := s.db.QueryRow(`SELECT `+penaltyCols+` FROM penalties WHERE id = ?`, id)
	p, err := scanPenalty(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get penalty: %w", err)
	}
	return p, nil
}

// List returns all penalties, newest first, with the owning profile's name.
func (s *PenaltyStore) List() ([]model.Penalty, error) {
	rows, err := s.db.Query(`
		SELECT p.id, p.name, p.points, p.profile_id, p.created_at, pr.name
		FROM penalties p
		JOIN profiles pr ON p.profile_id = pr.id
		ORDER BY p.created_at DESC, p.id DESC`)
	if err != nil {
		return nil, fmt.Errorf("list penalties: %w", err)
	}
	defer rows.Close()

	var penalties []model.Penalty
	for rows.Next() {
		var p model.Penalty
		if err := rows.Scan(&p.ID, &p.Name, &p.Points, &p.ProfileID, &p.CreatedAt, &p.ProfileName); err != nil {
			return nil, fmt.Errorf("scan penalty: %w", err)
		}
		penalties = append(penalties, p)
	}
	return penalties, rows.Err()
}
