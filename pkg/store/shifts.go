package store

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/arnavshah/carehome-shifts-api/pkg/models"
	"github.com/arnavshah/carehome-shifts-api/pkg/shifts"
)

func (s *Store) GetShift(ctx context.Context, id string) (*models.Shift, error) {
	var shift models.Shift
	if err := s.db.WithContext(ctx).Where("id = ?", id).First(&shift).Error; err != nil {
		return nil, notFound(err, shifts.ErrShiftNotFound)
	}
	return &shift, nil
}

func (s *Store) CreateShift(ctx context.Context, shift *models.Shift) error {
	return s.db.WithContext(ctx).Create(shift).Error
}

// UpdateShift writes every column of shift only if the stored version still
// equals expectedVersion, then advances the version.
func (s *Store) UpdateShift(ctx context.Context, shift *models.Shift, expectedVersion int) error {
	next := *shift
	next.Version = expectedVersion + 1

	result := s.db.WithContext(ctx).
		Model(&next).
		Where("version = ?", expectedVersion).
		Select("*").
		Omit("created_at").
		Updates(&next)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		var count int64
		if err := s.db.WithContext(ctx).Model(&models.Shift{}).Where("id = ?", shift.ID).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return shifts.ErrShiftNotFound
		}
		return shifts.ErrStaleShift
	}

	shift.Version = next.Version
	shift.UpdatedAt = next.UpdatedAt
	return nil
}

func (s *Store) DeleteShift(ctx context.Context, id string) error {
	result := s.db.WithContext(ctx).Delete(&models.Shift{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shifts.ErrShiftNotFound
	}
	return nil
}

func (s *Store) ListShifts(ctx context.Context, filter shifts.Filter) ([]models.Shift, error) {
	query := s.db.WithContext(ctx).Model(&models.Shift{})
	if filter.HomeID != "" {
		query = query.Where("home_id = ?", filter.HomeID)
	}
	if filter.AgentID != "" {
		query = query.Where("agent_id = ?", filter.AgentID)
	}
	if filter.AssignedUser != "" {
		// assigned_users holds a JSON array, so match the id as an encoded element
		query = query.Where("assigned_users LIKE ? ESCAPE '!'", "%"+likeEscaper.Replace(jsonString(filter.AssignedUser))+"%")
	}
	if filter.UnacceptedOnly {
		query = query.Where("is_accepted = ?", false)
	}

	shiftList := []models.Shift{}
	if err := query.Order("date desc, created_at desc").Find(&shiftList).Error; err != nil {
		return nil, err
	}
	return shiftList, nil
}

// likeEscaper neutralises LIKE wildcards using '!' as the escape character
var likeEscaper = strings.NewReplacer("!", "!!", "%", "!%", "_", "!_")

// jsonString renders s the way the json serializer stores it inside an array
func jsonString(s string) string {
	b, _ := json.Marshal(s)
	return string(b)
}
