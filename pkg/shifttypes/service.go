// Package shifttypes manages each home's catalog of named shift types.
package shifttypes

import (
	"context"
	"errors"
	"fmt"
	"regexp"

	"github.com/arnavshah/carehome-shifts-api/pkg/models"
	"github.com/arnavshah/carehome-shifts-api/pkg/shifts"
	"github.com/google/uuid"
)

var (
	ErrShiftTypeNotFound = errors.New("shift type not found")
	ErrForbidden         = errors.New("only homes manage shift types")
	ErrInvalidTime       = errors.New("times must use HH:MM")
)

var clock = regexp.MustCompile(`^([01]\d|2[0-3]):[0-5]\d$`)

// Store persists catalog entries
type Store interface {
	CreateShiftTypes(ctx context.Context, entries []models.ShiftTypeEntry) error
	ListShiftTypes(ctx context.Context, homeID string) ([]models.ShiftTypeEntry, error)
	GetShiftType(ctx context.Context, homeID, id string) (*models.ShiftTypeEntry, error)
	UpdateShiftType(ctx context.Context, entry *models.ShiftTypeEntry) error
	DeleteShiftType(ctx context.Context, homeID, id string) error
	DeleteShiftTypes(ctx context.Context, homeID string) (int64, error)
}

// Input is one shift type as submitted by a home
type Input struct {
	Name      string `json:"name" binding:"required"`
	StartTime string `json:"startTime" binding:"required"`
	EndTime   string `json:"endTime" binding:"required"`
}

// Service implements catalog management and resolves shift types for shifts
type Service struct {
	store Store
	newID func() string
}

// NewService creates a catalog service
func NewService(store Store) *Service {
	return &Service{store: store, newID: uuid.NewString}
}

// Create appends entries to the caller's catalog and returns the full catalog
func (s *Service) Create(ctx context.Context, caller models.Caller, inputs []Input) ([]models.ShiftTypeEntry, error) {
	if caller.AccountType != models.AccountHome {
		return nil, ErrForbidden
	}
	entries := make([]models.ShiftTypeEntry, 0, len(inputs))
	for _, in := range inputs {
		if err := validate(in); err != nil {
			return nil, err
		}
		entries = append(entries, models.ShiftTypeEntry{
			ID:        s.newID(),
			HomeID:    caller.UserID,
			Name:      in.Name,
			StartTime: in.StartTime,
			EndTime:   in.EndTime,
		})
	}
	if len(entries) > 0 {
		if err := s.store.CreateShiftTypes(ctx, entries); err != nil {
			return nil, fmt.Errorf("create shift types: %w", err)
		}
	}
	return s.store.ListShiftTypes(ctx, caller.UserID)
}

// List returns the caller's catalog
func (s *Service) List(ctx context.Context, caller models.Caller) ([]models.ShiftTypeEntry, error) {
	return s.store.ListShiftTypes(ctx, caller.UserID)
}

// Edit replaces one entry of the caller's catalog
func (s *Service) Edit(ctx context.Context, caller models.Caller, id string, in Input) (*models.ShiftTypeEntry, error) {
	if caller.AccountType != models.AccountHome {
		return nil, ErrForbidden
	}
	if err := validate(in); err != nil {
		return nil, err
	}
	entry, err := s.store.GetShiftType(ctx, caller.UserID, id)
	if err != nil {
		return nil, err
	}
	entry.Name, entry.StartTime, entry.EndTime = in.Name, in.StartTime, in.EndTime
	if err := s.store.UpdateShiftType(ctx, entry); err != nil {
		return nil, fmt.Errorf("update shift type: %w", err)
	}
	return entry, nil
}

// Delete removes one entry. Shifts already created keep their copied descriptor.
func (s *Service) Delete(ctx context.Context, caller models.Caller, id string) error {
	if caller.AccountType != models.AccountHome {
		return ErrForbidden
	}
	return s.store.DeleteShiftType(ctx, caller.UserID, id)
}

// DeleteCatalog removes the caller's whole catalog
func (s *Service) DeleteCatalog(ctx context.Context, caller models.Caller) error {
	if caller.AccountType != models.AccountHome {
		return ErrForbidden
	}
	n, err := s.store.DeleteShiftTypes(ctx, caller.UserID)
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrShiftTypeNotFound
	}
	return nil
}

// GetShiftType resolves a catalog entry for shift creation
func (s *Service) GetShiftType(ctx context.Context, homeID, typeID string) (*models.ShiftTypeEntry, error) {
	entry, err := s.store.GetShiftType(ctx, homeID, typeID)
	if errors.Is(err, ErrShiftTypeNotFound) {
		return nil, shifts.ErrUnknownShiftType
	}
	return entry, err
}

func validate(in Input) error {
	if in.Name == "" {
		return fmt.Errorf("%w: name is required", shifts.ErrInvalidInput)
	}
	if !clock.MatchString(in.StartTime) || !clock.MatchString(in.EndTime) {
		return ErrInvalidTime
	}
	return nil
}
