// Package timesheets manages carers' claims for worked shifts and their
// approval by the home.
package timesheets

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/arnavshah/carehome-shifts-api/pkg/models"
	"github.com/arnavshah/carehome-shifts-api/pkg/scheduler"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

var (
	ErrTimesheetNotFound = errors.New("timesheet not found")
	ErrForbidden         = errors.New("account type not allowed for this operation")
	ErrNotTimesheetHome  = errors.New("timesheet belongs to another home")
	ErrNotAssigned       = errors.New("carer is not assigned to this shift")
	ErrTooLate           = errors.New("cannot create a timesheet within 1 hour of the shift end time")
	ErrDuplicate         = errors.New("timesheet already submitted for this shift")
	ErrInvalidRating     = errors.New("rating must be between 1 and 5")
	ErrNotPending        = errors.New("timesheet is no longer pending")
)

// Filter selects timesheets. Empty fields are ignored.
type Filter struct {
	CarerID string
	HomeID  string
	ShiftID string
}

// Store persists timesheets
type Store interface {
	CreateTimesheet(ctx context.Context, ts *models.Timesheet) error
	GetTimesheet(ctx context.Context, id string) (*models.Timesheet, error)
	UpdateTimesheet(ctx context.Context, ts *models.Timesheet) error
	ListTimesheets(ctx context.Context, filter Filter) ([]models.Timesheet, error)
}

// Shifts loads the shift a timesheet refers to
type Shifts interface {
	GetShift(ctx context.Context, id string) (*models.Shift, error)
}

// Service implements the timesheet operations
type Service struct {
	store  Store
	shifts Shifts
	log    *zap.Logger
	now    func() time.Time
	newID  func() string
}

// NewService creates a timesheet service
func NewService(store Store, shifts Shifts, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{store: store, shifts: shifts, log: log, now: time.Now, newID: uuid.NewString}
}

// Review carries the optional feedback given on approval
type Review struct {
	Rating *int    `json:"rating"`
	Review *string `json:"review"`
}

// Create submits a timesheet for a shift the calling carer is assigned to
func (s *Service) Create(ctx context.Context, caller models.Caller, shiftID string) (*models.Timesheet, error) {
	if caller.AccountType != models.AccountCarer {
		return nil, ErrForbidden
	}
	shift, err := s.shifts.GetShift(ctx, shiftID)
	if err != nil {
		return nil, err
	}
	if !shift.IsAssigned(caller.UserID) {
		return nil, ErrNotAssigned
	}

	end, err := ShiftEnd(shift)
	if err != nil {
		return nil, err
	}
	if !s.now().Before(end.Add(-time.Hour)) {
		return nil, ErrTooLate
	}

	existing, err := s.store.ListTimesheets(ctx, Filter{CarerID: caller.UserID, ShiftID: shiftID})
	if err != nil {
		return nil, fmt.Errorf("list timesheets: %w", err)
	}
	if len(existing) > 0 {
		return nil, ErrDuplicate
	}

	ts := &models.Timesheet{
		ID:      s.newID(),
		ShiftID: shiftID,
		CarerID: caller.UserID,
		HomeID:  shift.HomeID,
		Status:  models.TimesheetPending,
	}
	if err := s.store.CreateTimesheet(ctx, ts); err != nil {
		return nil, fmt.Errorf("create timesheet: %w", err)
	}
	return ts, nil
}

// List returns a carer's own timesheets, or those submitted to a home
func (s *Service) List(ctx context.Context, caller models.Caller) ([]models.Timesheet, error) {
	if caller.AccountType == models.AccountCarer {
		return s.store.ListTimesheets(ctx, Filter{CarerID: caller.UserID})
	}
	return s.store.ListTimesheets(ctx, Filter{HomeID: caller.UserID})
}

// ForCarer returns the carer's timesheet for a shift, or nil when none exists
func (s *Service) ForCarer(ctx context.Context, carerID, shiftID string) (*models.Timesheet, error) {
	found, err := s.store.ListTimesheets(ctx, Filter{CarerID: carerID, ShiftID: shiftID})
	if err != nil || len(found) == 0 {
		return nil, err
	}
	return &found[0], nil
}

// Approve marks a pending timesheet approved, with an optional rating and review
func (s *Service) Approve(ctx context.Context, caller models.Caller, id string, review Review) (*models.Timesheet, error) {
	if review.Rating != nil && (*review.Rating < 1 || *review.Rating > 5) {
		return nil, ErrInvalidRating
	}
	return s.decide(ctx, caller, id, func(ts *models.Timesheet) {
		ts.Status = models.TimesheetApproved
		ts.Rating = review.Rating
		ts.Review = review.Review
	})
}

// Reject marks a pending timesheet rejected
func (s *Service) Reject(ctx context.Context, caller models.Caller, id string) (*models.Timesheet, error) {
	return s.decide(ctx, caller, id, func(ts *models.Timesheet) {
		ts.Status = models.TimesheetRejected
	})
}

func (s *Service) decide(ctx context.Context, caller models.Caller, id string, apply func(*models.Timesheet)) (*models.Timesheet, error) {
	if caller.AccountType != models.AccountHome {
		return nil, ErrForbidden
	}
	ts, err := s.store.GetTimesheet(ctx, id)
	if err != nil {
		return nil, err
	}
	if ts.HomeID != caller.UserID {
		return nil, ErrNotTimesheetHome
	}
	if ts.Status != models.TimesheetPending {
		return nil, ErrNotPending
	}
	apply(ts)
	if err := s.store.UpdateTimesheet(ctx, ts); err != nil {
		return nil, fmt.Errorf("update timesheet: %w", err)
	}
	s.log.Info("timesheet decided", zap.String("timesheet_id", id), zap.String("status", ts.Status))
	return ts, nil
}

// ShiftEnd returns the moment the shift finishes
func ShiftEnd(shift *models.Shift) (time.Time, error) {
	w, err := scheduler.ShiftWindow(shift)
	if err != nil {
		return time.Time{}, err
	}
	return w.End, nil
}
