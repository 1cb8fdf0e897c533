package store

import (
	"database/sql"
	"fmt"

	"github.com/dhollis/choreboard/internal/model"
)

type RewardStore struct {
	db *sql.DB
}

func NewRewardStore(db *sql.DB) *RewardStore {
	return &RewardStore{db: db}
}

const rewardCols = `id, name, points_cost, created_at`

func scanReward(scanner interface{ Scan(...any) error }) (*model.Reward, error) {
	var r model.Reward
	err := scanner.Scan(&r.ID, &r.Name, &r.PointsCost, &r.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &r, nil
}

func (s *RewardStore) Create(name string, pointsCost int) (*model.Reward, error) {
	result, err := s.db.Exec(
		`INSERT INTO rewards (name, points_cost) VALUES (?, ?)`,
		name, pointsCost,
	)
	if err != nil {
		return nil, fmt.Errorf("insert reward: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.GetByID(id)
}

func (s *RewardStore) GetByID(id int64) (*model.Reward, error) {
	row := s.db.QueryRow(`SELECT `+rewardCols+` FROM rewards WHERE id = ?`, id)
	r, err := scanReward(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get reward: %w", err)
	}
	return r, nil
}

func (s *RewardStore) List() ([]model.Reward, error) {
	rows, err := s.db.Query(`SELECT ` + rewardCols + ` FROM rewards ORDER BY id ASC`)
	if err != nil {
		return nil, fmt.Errorf("list rewards: %w", err)
	}
	defer rows.Close()

	var rewards []model.Reward
	for rows.Next() {
		r, err := scanReward(rows)
		if err != nil {
			return nil, fmt.Errorf("scan reward: %w", err)
		}
		rewards = append(rewards, *r)
	}
	return rewards, rows.Err()
}

// ListRedemptions returns all redemptions, newest first, with the redeeming
// profile's name joined in.
func (s *RewardStore) ListRedemptions(rewardID int64) ([]model.RewardRedemption, error) {
	rows, err := s.db.Query(`
		SELECT ra.id, ra.reward_id, ra.profile_id, ra.assigned_at, p.name
		FROM reward_assignments ra
		JOIN profiles p ON ra.profile_id = p.id
		WHERE ra.reward_id = ?
		ORDER BY ra.assigned_at DESC, ra.id DESC`, rewardID)
	if err != nil {
		return nil, fmt.Errorf("list redemptions: %w", err)
	}
	defer rows.Close()

	var redemptions []model.RewardRedemption
	for rows.Next() {
		var r model.RewardRedemption
		if err := rows.Scan(&r.ID, &r.RewardID, &r.ProfileID, &r.AssignedAt, &r.ProfileName); err != nil {
			return nil, fmt.Errorf("scan redemption: %w", err)
		}
		redemptions = append(redemptions, r)
	}
	return redemptions, rows.Err()
}
