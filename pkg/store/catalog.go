package store

import (
	"context"

	"github.com/arnavshah/carehome-shifts-api/pkg/models"
	"github.com/arnavshah/carehome-shifts-api/pkg/shifttypes"
)

func (s *Store) CreateShiftTypes(ctx context.Context, entries []models.ShiftTypeEntry) error {
	return s.db.WithContext(ctx).Create(&entries).Error
}

func (s *Store) ListShiftTypes(ctx context.Context, homeID string) ([]models.ShiftTypeEntry, error) {
	entries := []models.ShiftTypeEntry{}
	err := s.db.WithContext(ctx).Where("home_id = ?", homeID).Order("created_at asc").Find(&entries).Error
	return entries, err
}

func (s *Store) GetShiftType(ctx context.Context, homeID, id string) (*models.ShiftTypeEntry, error) {
	var entry models.ShiftTypeEntry
	if err := s.db.WithContext(ctx).Where("home_id = ? AND id = ?", homeID, id).First(&entry).Error; err != nil {
		return nil, notFound(err, shifttypes.ErrShiftTypeNotFound)
	}
	return &entry, nil
}

func (s *Store) UpdateShiftType(ctx context.Context, entry *models.ShiftTypeEntry) error {
	return s.db.WithContext(ctx).
		Model(entry).
		Updates(map[string]interface{}{
			"name":       entry.Name,
			"start_time": entry.StartTime,
			"end_time":   entry.EndTime,
		}).Error
}

func (s *Store) DeleteShiftType(ctx context.Context, homeID, id string) error {
	result := s.db.WithContext(ctx).Delete(&models.ShiftTypeEntry{}, "home_id = ? AND id = ?", homeID, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shifttypes.ErrShiftTypeNotFound
	}
	return nil
}

func (s *Store) DeleteShiftTypes(ctx context.Context, homeID string) (int64, error) {
	result := s.db.WithContext(ctx).Delete(&models.ShiftTypeEntry{}, "home_id = ?", homeID)
	return result.RowsAffected, result.Error
}
