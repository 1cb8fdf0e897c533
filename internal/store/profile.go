package store

import (
	"database/sql"
	"fmt"

	"github.com/dhollis/choreboard/internal/model"
)

type ProfileStore struct {
	db *sql.DB
}

func NewProfileStore(db *sql.DB) *ProfileStore {
	return &ProfileStore{db: db}
}

const profileCols = `id, name, role, color_theme, icon_name, points, created_at, updated_at`

func scanProfile(scanner interface{ Scan(...any) error }) (*model.Profile, error) {
	var p model.Profile
	err := scanner.Scan(&p.ID, &p.Name, &p.Role, &p.ColorTheme, &p.IconName, &p.Points, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (s *ProfileStore) Create(name, role, colorTheme, iconName string) (*model.Profile, error) {
	result, err := s.db.Exec(
		`INSERT INTO profiles (name, role, color_theme, icon_name) VALUES (?, ?, ?, ?)`,
		name, role, colorTheme, iconName,
	)
	if err != nil {
		return nil, fmt.Errorf("insert profile: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.GetByID(id)
}

func (s *ProfileStore) GetByID(id int64) (*model.Profile, error) {
	row := s.db.QueryRow(`SELECT `+profileCols+` FROM profiles WHERE id = ?`, id)
	p, err := scanProfile(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get profile: %w", err)
	}
	return p, nil
}

// List returns all profiles in id order, which is also the enumeration order
// of the daily dashboard.
func (s *ProfileStore) List() ([]model.Profile, error) {
	rows, err := s.db.Query(`SELECT ` + profileCols + ` FROM profiles ORDER BY id ASC`)
	if err != nil {
		return nil, fmt.Errorf("list profiles: %w", err)
	}
	defer rows.Close()

	var profiles []model.Profile
	for rows.Next() {
		p, err := scanProfile(rows)
		if err != nil {
			return nil, fmt.Errorf("scan profile: %w", err)
		}
		profiles = append(profiles, *p)
	}
	return profiles, rows.Err()
}

// Update changes a profile's descriptive fields. Points are deliberately
// untouched here: the balance moves only through ledger operations.
func (s *ProfileStore) Update(id int64, name, role, colorTheme, iconName string) (*model.Profile, error) {
	_, err := s.db.Exec(
		`UPDATE profiles SET name = ?, role = ?, color_theme = ?, icon_name = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		name, role, colorTheme, iconName, id,
	)
	if err != nil {
		return nil, fmt.Errorf("update profile: %w", err)
	}
	return s.GetByID(id)
}
