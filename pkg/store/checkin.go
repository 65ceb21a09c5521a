package store

import (
	"context"
	"time"

	"github.com/arnavshah/carehome-shifts-api/pkg/models"
	"github.com/arnavshah/carehome-shifts-api/pkg/shifts"
	"gorm.io/gorm/clause"
)

func (s *Store) GetCarerKey(ctx context.Context, carerID string) (*models.CarerKey, error) {
	var key models.CarerKey
	if err := s.db.WithContext(ctx).Where("carer_id = ?", carerID).First(&key).Error; err != nil {
		return nil, notFound(err, shifts.ErrCarerKeyNotFound)
	}
	return &key, nil
}

// SaveCarerKey inserts or replaces the carer's key in one statement
func (s *Store) SaveCarerKey(ctx context.Context, key *models.CarerKey) error {
	return s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "carer_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"public_key", "updated_at"}),
	}).Create(key).Error
}

func (s *Store) CreateChallenge(ctx context.Context, challenge *models.CheckinChallenge) error {
	return s.db.WithContext(ctx).Create(challenge).Error
}

func (s *Store) GetChallenge(ctx context.Context, id string) (*models.CheckinChallenge, error) {
	var challenge models.CheckinChallenge
	if err := s.db.WithContext(ctx).Where("id = ?", id).First(&challenge).Error; err != nil {
		return nil, notFound(err, shifts.ErrChallengeNotFound)
	}
	return &challenge, nil
}

// ConsumeChallenge marks the challenge used unless another answer got there first
func (s *Store) ConsumeChallenge(ctx context.Context, id, carerID string, at time.Time) error {
	result := s.db.WithContext(ctx).
		Model(&models.CheckinChallenge{}).
		Where("id = ? AND consumed_at IS NULL", id).
		Updates(map[string]interface{}{"consumed_at": at, "consumed_by": carerID})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected > 0 {
		return nil
	}
	if _, err := s.GetChallenge(ctx, id); err != nil {
		return err
	}
	return shifts.ErrChallengeConsumed
}
