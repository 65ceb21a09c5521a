package store

import (
	"context"

	"github.com/arnavshah/carehome-shifts-api/pkg/models"
	"github.com/arnavshah/carehome-shifts-api/pkg/timesheets"
)

func (s *Store) CreateTimesheet(ctx context.Context, ts *models.Timesheet) error {
	return s.db.WithContext(ctx).Create(ts).Error
}

func (s *Store) GetTimesheet(ctx context.Context, id string) (*models.Timesheet, error) {
	var ts models.Timesheet
	if err := s.db.WithContext(ctx).Where("id = ?", id).First(&ts).Error; err != nil {
		return nil, notFound(err, timesheets.ErrTimesheetNotFound)
	}
	return &ts, nil
}

func (s *Store) UpdateTimesheet(ctx context.Context, ts *models.Timesheet) error {
	return s.db.WithContext(ctx).Save(ts).Error
}

func (s *Store) ListTimesheets(ctx context.Context, filter timesheets.Filter) ([]models.Timesheet, error) {
	query := s.db.WithContext(ctx).Model(&models.Timesheet{})
	if filter.CarerID != "" {
		query = query.Where("carer_id = ?", filter.CarerID)
	}
	if filter.HomeID != "" {
		query = query.Where("home_id = ?", filter.HomeID)
	}
	if filter.ShiftID != "" {
		query = query.Where("shift_id = ?", filter.ShiftID)
	}

	list := []models.Timesheet{}
	err := query.Order("created_at desc").Find(&list).Error
	return list, err
}
