// Package shifts implements the shift lifecycle, carer assignment and the
// on-site check-in handshake. The Service holds no mutable state; persistence,
// the linked roster and the shift-type catalog are injected.
package shifts

import (
	"context"
	"crypto/rand"
	"errors"
	"io"
	"time"

	"github.com/arnavshah/carehome-shifts-api/pkg/models"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Capacity modes for AssignUsers
const (
	// CapacityBatch compares only the incoming batch size with the shift count.
	CapacityBatch = "batch"
	// CapacityTotal compares the resulting assignment size with the shift count.
	CapacityTotal = "total"
)

const (
	minKeyBits = 1024
	// maxWriteAttempts bounds re-reads for writes that merge onto the latest copy
	maxWriteAttempts = 3
)

// Filter selects shifts for listing. Empty fields are ignored.
type Filter struct {
	HomeID         string
	AgentID        string
	AssignedUser   string
	UnacceptedOnly bool
}

// Store is the persistence layer for shift records.
// UpdateShift must only write when the stored version equals expectedVersion,
// returning ErrStaleShift otherwise, and bump shift.Version on success.
type Store interface {
	GetShift(ctx context.Context, id string) (*models.Shift, error)
	CreateShift(ctx context.Context, shift *models.Shift) error
	UpdateShift(ctx context.Context, shift *models.Shift, expectedVersion int) error
	DeleteShift(ctx context.Context, id string) error
	ListShifts(ctx context.Context, filter Filter) ([]models.Shift, error)
}

// Roster resolves the accounts linked to a user
type Roster interface {
	LinkedUserIDs(ctx context.Context, userID, accountType string) ([]string, error)
}

// Catalog resolves a home's shift types
type Catalog interface {
	GetShiftType(ctx context.Context, homeID, typeID string) (*models.ShiftTypeEntry, error)
}

// KeyStore persists carer keys and check-in challenges
type KeyStore interface {
	GetCarerKey(ctx context.Context, carerID string) (*models.CarerKey, error)
	SaveCarerKey(ctx context.Context, key *models.CarerKey) error
	CreateChallenge(ctx context.Context, challenge *models.CheckinChallenge) error
	GetChallenge(ctx context.Context, id string) (*models.CheckinChallenge, error)
	ConsumeChallenge(ctx context.Context, id, carerID string, at time.Time) error
}

// Options tune the service behaviour
type Options struct {
	CapacityMode string
	KeyBits      int
	ChallengeTTL time.Duration
}

// Service implements shift assignment, lifecycle and check-in operations
type Service struct {
	store   Store
	roster  Roster
	catalog Catalog
	keys    KeyStore
	opts    Options
	log     *zap.Logger

	now    func() time.Time
	random io.Reader
	newID  func() string
}

// NewService creates a shift service with its collaborators
func NewService(store Store, roster Roster, catalog Catalog, keys KeyStore, opts Options, log *zap.Logger) *Service {
	if opts.CapacityMode == "" {
		opts.CapacityMode = CapacityBatch
	}
	if opts.KeyBits < minKeyBits {
		opts.KeyBits = 2048
	}
	if opts.ChallengeTTL <= 0 {
		opts.ChallengeTTL = 5 * time.Minute
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{
		store:   store,
		roster:  roster,
		catalog: catalog,
		keys:    keys,
		opts:    opts,
		log:     log,
		now:     time.Now,
		random:  rand.Reader,
		newID:   uuid.NewString,
	}
}

// mutate runs a read-modify-write against one shift with a version check
func (s *Service) mutate(ctx context.Context, id string, fn func(*models.Shift) error) (*models.Shift, error) {
	shift, err := s.store.GetShift(ctx, id)
	if err != nil {
		return nil, err
	}
	version := shift.Version
	if err := fn(shift); err != nil {
		return nil, err
	}
	if err := s.store.UpdateShift(ctx, shift, version); err != nil {
		return nil, err
	}
	return shift, nil
}

// mergeWrite is mutate for changes that can be re-applied to a fresh copy,
// such as inserting one carer into SignedCarers. A stale write is retried
// against a new read instead of surfacing ErrStaleShift.
func (s *Service) mergeWrite(ctx context.Context, id string, fn func(*models.Shift) error) (*models.Shift, error) {
	var err error
	for attempt := 1; attempt <= maxWriteAttempts; attempt++ {
		var shift *models.Shift
		shift, err = s.mutate(ctx, id, fn)
		if !errors.Is(err, ErrStaleShift) {
			return shift, err
		}
		s.log.Debug("shift changed under write, retrying", zap.String("shift_id", id), zap.Int("attempt", attempt))
	}
	return nil, err
}

func isCompleted(shift *models.Shift) bool {
	return len(shift.AssignedUsers) == shift.Count
}

// dedupe keeps the first occurrence of every id
func dedupe(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
