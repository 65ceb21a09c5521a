package shifts

import (
	"context"
	"fmt"

	"github.com/arnavshah/carehome-shifts-api/pkg/models"
)

// AssignUsers replaces a shift's assignment with userIDs on behalf of the owning home.
// Any overlap with the current assignment fails the whole call.
func (s *Service) AssignUsers(ctx context.Context, caller models.Caller, shiftID string, userIDs []string) (*models.Shift, error) {
	return s.mutate(ctx, shiftID, func(shift *models.Shift) error {
		if shift.HomeID != caller.UserID {
			return ErrNotShiftOwner
		}
		if len(userIDs) == 0 {
			return fmt.Errorf("%w: at least one user id is required", ErrInvalidInput)
		}

		for _, id := range userIDs {
			if shift.IsAssigned(id) {
				return ErrDuplicateAssignment
			}
		}

		incoming := dedupe(userIDs)
		switch s.opts.CapacityMode {
		case CapacityTotal:
			if len(shift.AssignedUsers)+len(incoming) > shift.Count {
				return ErrCapacityExceeded
			}
		default:
			// the batch alone is compared with count, the current set is replaced
			if len(userIDs) > shift.Count {
				return ErrCapacityExceeded
			}
		}

		if s.opts.CapacityMode == CapacityTotal {
			shift.AssignedUsers = append(shift.AssignedUsers, incoming...)
		} else {
			shift.AssignedUsers = incoming
		}
		shift.IsCompleted = isCompleted(shift)
		return nil
	})
}

// AssignCarersToShift adds linked carers to a shift on behalf of its agency.
// The assignment grows as a union so repeated calls are idempotent.
func (s *Service) AssignCarersToShift(ctx context.Context, caller models.Caller, shiftID string, carerIDs []string) (*models.Shift, error) {
	if caller.AccountType != models.AccountAgency {
		return nil, ErrForbidden
	}
	if len(carerIDs) == 0 {
		return nil, fmt.Errorf("%w: at least one carer id is required", ErrInvalidInput)
	}

	return s.mutate(ctx, shiftID, func(shift *models.Shift) error {
		if shift.AgentID != caller.UserID {
			return ErrNotShiftAgent
		}
		if err := s.checkLinked(ctx, caller.UserID, carerIDs); err != nil {
			return err
		}
		if shift.IsCompleted {
			return ErrShiftAlreadyCompleted
		}
		if len(carerIDs) > shift.Count {
			return ErrCapacityExceeded
		}

		union := dedupe(append(append([]string{}, shift.AssignedUsers...), carerIDs...))
		if len(union) > shift.Count {
			return ErrCapacityExceeded
		}

		shift.AssignedUsers = union
		shift.IsAccepted = true
		shift.IsCompleted = isCompleted(shift)
		return nil
	})
}

// UnassignCarerFromShift removes one carer. Acceptance is never cleared.
func (s *Service) UnassignCarerFromShift(ctx context.Context, caller models.Caller, shiftID, carerID string) (*models.Shift, error) {
	if caller.AccountType != models.AccountAgency {
		return nil, ErrForbidden
	}

	return s.mutate(ctx, shiftID, func(shift *models.Shift) error {
		if shift.AgentID != caller.UserID {
			return ErrNotShiftAgent
		}

		remaining := make([]string, 0, len(shift.AssignedUsers))
		for _, id := range shift.AssignedUsers {
			if id != carerID {
				remaining = append(remaining, id)
			}
		}
		shift.AssignedUsers = remaining
		shift.IsCompleted = isCompleted(shift)
		return nil
	})
}

func (s *Service) checkLinked(ctx context.Context, agencyID string, carerIDs []string) error {
	linked, err := s.roster.LinkedUserIDs(ctx, agencyID, models.AccountCarer)
	if err != nil {
		return fmt.Errorf("load linked carers: %w", err)
	}

	set := make(map[string]struct{}, len(linked))
	for _, id := range linked {
		set[id] = struct{}{}
	}
	for _, id := range carerIDs {
		if _, ok := set[id]; !ok {
			return ErrCarerNotLinked
		}
	}
	return nil
}
