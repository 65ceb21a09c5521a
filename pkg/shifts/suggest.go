package shifts

import (
	"context"
	"fmt"

	"github.com/arnavshah/carehome-shifts-api/pkg/models"
	"github.com/arnavshah/carehome-shifts-api/pkg/scheduler"
	"go.uber.org/zap"
)

// SuggestCarers ranks the agency's linked carers for the shift's open places.
// Carers booked on an overlapping shift are left out; the rest are ordered by
// booked hours so work is spread evenly. Nothing is assigned.
func (s *Service) SuggestCarers(ctx context.Context, caller models.Caller, shiftID string) (*scheduler.Result, error) {
	if caller.AccountType != models.AccountAgency {
		return nil, ErrForbidden
	}
	shift, err := s.store.GetShift(ctx, shiftID)
	if err != nil {
		return nil, err
	}
	if shift.AgentID != caller.UserID {
		return nil, ErrNotShiftAgent
	}
	target, err := scheduler.ShiftWindow(shift)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	linked, err := s.roster.LinkedUserIDs(ctx, caller.UserID, models.AccountCarer)
	if err != nil {
		return nil, fmt.Errorf("load roster: %w", err)
	}

	candidates := make([]scheduler.Candidate, 0, len(linked))
	for _, carerID := range linked {
		if shift.IsAssigned(carerID) {
			continue
		}
		booked, err := s.store.ListShifts(ctx, Filter{AssignedUser: carerID})
		if err != nil {
			return nil, fmt.Errorf("load bookings: %w", err)
		}
		c := scheduler.Candidate{ID: carerID}
		for i := range booked {
			w, err := scheduler.ShiftWindow(&booked[i])
			if err != nil {
				s.log.Warn("skipping booking with unreadable times", zap.String("shift_id", booked[i].ID), zap.Error(err))
				continue
			}
			c.Booked = append(c.Booked, w)
		}
		candidates = append(candidates, c)
	}

	result := scheduler.Suggest(target, candidates, shift.Count-len(shift.AssignedUsers))
	return &result, nil
}
