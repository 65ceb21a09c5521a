package shifts

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/arnavshah/carehome-shifts-api/pkg/models"
	"go.uber.org/zap"
)

// InternalAgent marks a shift fulfilled by the home's own staff
const InternalAgent = "internal"

const dateLayout = "2006-01-02"

// CreateShiftInput describes a shift published by a home
type CreateShiftInput struct {
	AgentID       string   `json:"agentId"`
	ShiftTypeID   string   `json:"shiftType" binding:"required"`
	Date          string   `json:"date" binding:"required"`
	Count         int      `json:"count" binding:"min=0"`
	AssignedUsers []string `json:"assignedUsers"`
}

// UpdateShiftInput carries the editable shift fields. Nil fields are left unchanged.
type UpdateShiftInput struct {
	AgentID     *string `json:"agentId"`
	ShiftTypeID string  `json:"shiftType" binding:"required"`
	Date        *string `json:"date"`
	Count       *int    `json:"count" binding:"omitempty,min=0"`
}

// GetShift loads a single shift
func (s *Service) GetShift(ctx context.Context, shiftID string) (*models.Shift, error) {
	return s.store.GetShift(ctx, shiftID)
}

// ListShifts returns the shifts visible to the caller's account type
func (s *Service) ListShifts(ctx context.Context, caller models.Caller) ([]models.Shift, error) {
	switch caller.AccountType {
	case models.AccountHome, models.AccountNurse:
		return s.store.ListShifts(ctx, Filter{HomeID: caller.UserID})
	case models.AccountAgency:
		return s.store.ListShifts(ctx, Filter{AgentID: caller.UserID})
	case models.AccountCarer, models.AccountSeniorCarer:
		return s.store.ListShifts(ctx, Filter{AssignedUser: caller.UserID})
	default:
		return []models.Shift{}, nil
	}
}

// ListUnacceptedShifts returns a home's shifts no agency has accepted yet
func (s *Service) ListUnacceptedShifts(ctx context.Context, caller models.Caller) ([]models.Shift, error) {
	if caller.AccountType != models.AccountHome {
		return nil, ErrForbidden
	}
	return s.store.ListShifts(ctx, Filter{HomeID: caller.UserID, UnacceptedOnly: true})
}

// CreateShift publishes one shift from the caller's shift-type catalog
func (s *Service) CreateShift(ctx context.Context, caller models.Caller, in CreateShiftInput) (*models.Shift, error) {
	if caller.AccountType != models.AccountHome {
		return nil, ErrForbidden
	}
	shift, err := s.buildShift(ctx, caller.UserID, in)
	if err != nil {
		return nil, err
	}
	if err := s.store.CreateShift(ctx, shift); err != nil {
		return nil, fmt.Errorf("create shift: %w", err)
	}
	return shift, nil
}

// CreateShifts publishes several shifts. Entries whose shift type cannot be
// resolved are skipped; other validation failures abort the batch.
func (s *Service) CreateShifts(ctx context.Context, caller models.Caller, inputs []CreateShiftInput) ([]models.Shift, error) {
	built, _, err := s.buildBatch(ctx, caller, inputs)
	if err != nil {
		return nil, err
	}

	created := make([]models.Shift, 0, len(built))
	for _, shift := range built {
		if err := s.store.CreateShift(ctx, shift); err != nil {
			return created, fmt.Errorf("create shift: %w", err)
		}
		created = append(created, *shift)
	}
	return created, nil
}

// PreviewShifts builds a batch without storing it and reports how many
// entries would be skipped for an unknown shift type.
func (s *Service) PreviewShifts(ctx context.Context, caller models.Caller, inputs []CreateShiftInput) ([]models.Shift, int, error) {
	built, skipped, err := s.buildBatch(ctx, caller, inputs)
	if err != nil {
		return nil, 0, err
	}
	out := make([]models.Shift, 0, len(built))
	for _, shift := range built {
		out = append(out, *shift)
	}
	return out, skipped, nil
}

func (s *Service) buildBatch(ctx context.Context, caller models.Caller, inputs []CreateShiftInput) ([]*models.Shift, int, error) {
	if caller.AccountType != models.AccountHome {
		return nil, 0, ErrForbidden
	}

	built := make([]*models.Shift, 0, len(inputs))
	skipped := 0
	for i, in := range inputs {
		shift, err := s.buildShift(ctx, caller.UserID, in)
		if errors.Is(err, ErrUnknownShiftType) {
			s.log.Debug("skipping shift with unknown type", zap.Int("index", i), zap.String("shift_type", in.ShiftTypeID))
			skipped++
			continue
		}
		if err != nil {
			return nil, 0, fmt.Errorf("shift %d: %w", i, err)
		}
		built = append(built, shift)
	}
	return built, skipped, nil
}

// UpdateShift edits a shift owned by the caller
func (s *Service) UpdateShift(ctx context.Context, caller models.Caller, shiftID string, in UpdateShiftInput) (*models.Shift, error) {
	return s.mutate(ctx, shiftID, func(shift *models.Shift) error {
		if shift.HomeID != caller.UserID {
			return ErrNotShiftOwner
		}

		entry, err := s.catalog.GetShiftType(ctx, caller.UserID, in.ShiftTypeID)
		if err != nil {
			return err
		}
		shift.ShiftType = entry.Descriptor()

		if in.Date != nil {
			if _, err := time.Parse(dateLayout, *in.Date); err != nil {
				return fmt.Errorf("%w: date must be YYYY-MM-DD", ErrInvalidInput)
			}
			shift.Date = *in.Date
		}
		if in.Count != nil {
			if *in.Count < len(shift.AssignedUsers) {
				return ErrCapacityExceeded
			}
			shift.Count = *in.Count
		}
		if in.AgentID != nil {
			agent := normalizeAgent(*in.AgentID)
			if agent != shift.AgentID {
				// a new agency has to accept the shift again
				shift.AgentID = agent
				shift.IsAccepted = false
				shift.IsRejected = false
			}
		}
		shift.IsCompleted = isCompleted(shift)
		return nil
	})
}

// DeleteShift removes a shift owned by the caller
func (s *Service) DeleteShift(ctx context.Context, caller models.Caller, shiftID string) (*models.Shift, error) {
	shift, err := s.store.GetShift(ctx, shiftID)
	if err != nil {
		return nil, err
	}
	if shift.HomeID != caller.UserID {
		return nil, ErrNotShiftOwner
	}
	if err := s.store.DeleteShift(ctx, shiftID); err != nil {
		return nil, err
	}
	return shift, nil
}

// AcceptShift records the bound agency taking responsibility for the shift
func (s *Service) AcceptShift(ctx context.Context, caller models.Caller, shiftID string) (*models.Shift, error) {
	if caller.AccountType != models.AccountAgency {
		return nil, ErrNotShiftAgent
	}
	return s.mutate(ctx, shiftID, func(shift *models.Shift) error {
		if shift.AgentID == "" || shift.AgentID != caller.UserID {
			return ErrNotShiftAgent
		}
		shift.IsAccepted = true
		shift.IsRejected = false
		return nil
	})
}

// RejectShift releases the shift from the bound agency
func (s *Service) RejectShift(ctx context.Context, caller models.Caller, shiftID string) (*models.Shift, error) {
	return s.mutate(ctx, shiftID, func(shift *models.Shift) error {
		if shift.AgentID == "" || shift.AgentID != caller.UserID {
			return ErrNotShiftAgent
		}
		shift.IsRejected = true
		shift.IsAccepted = false
		shift.AgentID = ""
		return nil
	})
}

func (s *Service) buildShift(ctx context.Context, homeID string, in CreateShiftInput) (*models.Shift, error) {
	if in.ShiftTypeID == "" {
		return nil, ErrUnknownShiftType
	}
	if _, err := time.Parse(dateLayout, in.Date); err != nil {
		return nil, fmt.Errorf("%w: date must be YYYY-MM-DD", ErrInvalidInput)
	}
	if in.Count < 0 {
		return nil, fmt.Errorf("%w: count must not be negative", ErrInvalidInput)
	}

	entry, err := s.catalog.GetShiftType(ctx, homeID, in.ShiftTypeID)
	if err != nil {
		return nil, err
	}

	assigned := dedupe(in.AssignedUsers)
	if len(assigned) > in.Count {
		return nil, ErrCapacityExceeded
	}

	shift := &models.Shift{
		ID:            s.newID(),
		HomeID:        homeID,
		AgentID:       normalizeAgent(in.AgentID),
		ShiftType:     entry.Descriptor(),
		Date:          in.Date,
		Count:         in.Count,
		AssignedUsers: assigned,
		IsAccepted:    len(assigned) > 0,
		SignedCarers:  map[string]string{},
	}
	shift.IsCompleted = isCompleted(shift)
	return shift, nil
}

func normalizeAgent(agentID string) string {
	if agentID == InternalAgent {
		return ""
	}
	return agentID
}
