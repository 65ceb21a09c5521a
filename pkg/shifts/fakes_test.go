package shifts

import (
	"context"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/arnavshah/carehome-shifts-api/pkg/models"
)

type fakeStore struct {
	mu      sync.Mutex
	shifts  map[string]*models.Shift
	updates int
}

func newFakeStore(shifts ...*models.Shift) *fakeStore {
	f := &fakeStore{shifts: map[string]*models.Shift{}}
	for _, s := range shifts {
		f.shifts[s.ID] = cloneShift(s)
	}
	return f
}

func cloneShift(s *models.Shift) *models.Shift {
	c := *s
	c.AssignedUsers = append([]string(nil), s.AssignedUsers...)
	c.SignedCarers = make(map[string]string, len(s.SignedCarers))
	for k, v := range s.SignedCarers {
		c.SignedCarers[k] = v
	}
	return &c
}

func (f *fakeStore) GetShift(_ context.Context, id string) (*models.Shift, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.shifts[id]
	if !ok {
		return nil, ErrShiftNotFound
	}
	return cloneShift(s), nil
}

func (f *fakeStore) CreateShift(_ context.Context, shift *models.Shift) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.shifts[shift.ID] = cloneShift(shift)
	return nil
}

func (f *fakeStore) UpdateShift(_ context.Context, shift *models.Shift, expectedVersion int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	current, ok := f.shifts[shift.ID]
	if !ok {
		return ErrShiftNotFound
	}
	if current.Version != expectedVersion {
		return ErrStaleShift
	}
	shift.Version = expectedVersion + 1
	f.shifts[shift.ID] = cloneShift(shift)
	f.updates++
	return nil
}

func (f *fakeStore) DeleteShift(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.shifts[id]; !ok {
		return ErrShiftNotFound
	}
	delete(f.shifts, id)
	return nil
}

func (f *fakeStore) ListShifts(_ context.Context, filter Filter) ([]models.Shift, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []models.Shift{}
	for _, s := range f.shifts {
		if filter.HomeID != "" && s.HomeID != filter.HomeID {
			continue
		}
		if filter.AgentID != "" && s.AgentID != filter.AgentID {
			continue
		}
		if filter.AssignedUser != "" && !s.IsAssigned(filter.AssignedUser) {
			continue
		}
		if filter.UnacceptedOnly && s.IsAccepted {
			continue
		}
		out = append(out, *cloneShift(s))
	}
	return out, nil
}

// stored returns the persisted copy without going through the service
func (f *fakeStore) stored(t *testing.T, id string) *models.Shift {
	t.Helper()
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.shifts[id]
	if !ok {
		t.Fatalf("shift %s not stored", id)
	}
	return cloneShift(s)
}

type fakeRoster map[string][]string

func (r fakeRoster) LinkedUserIDs(_ context.Context, userID, _ string) ([]string, error) {
	return r[userID], nil
}

type fakeCatalog map[string]models.ShiftTypeEntry

func (c fakeCatalog) GetShiftType(_ context.Context, homeID, typeID string) (*models.ShiftTypeEntry, error) {
	e, ok := c[typeID]
	if !ok || e.HomeID != homeID {
		return nil, ErrUnknownShiftType
	}
	return &e, nil
}

type fakeKeys struct {
	mu         sync.Mutex
	keys       map[string]models.CarerKey
	challenges map[string]*models.CheckinChallenge
}

func newFakeKeys() *fakeKeys {
	return &fakeKeys{keys: map[string]models.CarerKey{}, challenges: map[string]*models.CheckinChallenge{}}
}

func (k *fakeKeys) GetCarerKey(_ context.Context, carerID string) (*models.CarerKey, error) {
	k.mu.Lock()
	defer k.mu.Unlock()
	key, ok := k.keys[carerID]
	if !ok {
		return nil, ErrCarerKeyNotFound
	}
	return &key, nil
}

func (k *fakeKeys) SaveCarerKey(_ context.Context, key *models.CarerKey) error {
	k.mu.Lock()
	defer k.mu.Unlock()
	k.keys[key.CarerID] = *key
	return nil
}

func (k *fakeKeys) CreateChallenge(_ context.Context, c *models.CheckinChallenge) error {
	k.mu.Lock()
	defer k.mu.Unlock()
	cp := *c
	k.challenges[c.ID] = &cp
	return nil
}

func (k *fakeKeys) GetChallenge(_ context.Context, id string) (*models.CheckinChallenge, error) {
	k.mu.Lock()
	defer k.mu.Unlock()
	c, ok := k.challenges[id]
	if !ok {
		return nil, ErrChallengeNotFound
	}
	cp := *c
	return &cp, nil
}

func (k *fakeKeys) ConsumeChallenge(_ context.Context, id, carerID string, at time.Time) error {
	k.mu.Lock()
	defer k.mu.Unlock()
	c, ok := k.challenges[id]
	if !ok {
		return ErrChallengeNotFound
	}
	if c.ConsumedAt != nil {
		return ErrChallengeConsumed
	}
	c.ConsumedAt = &at
	c.ConsumedBy = carerID
	return nil
}

var (
	home    = models.Caller{UserID: "home-1", AccountType: models.AccountHome}
	nurse   = models.Caller{UserID: "nurse-1", AccountType: models.AccountNurse}
	agency  = models.Caller{UserID: "agency-1", AccountType: models.AccountAgency}
	agency2 = models.Caller{UserID: "agency-2", AccountType: models.AccountAgency}
	carerA  = models.Caller{UserID: "A", AccountType: models.AccountCarer}
)

type fixture struct {
	svc   *Service
	store *fakeStore
	keys  *fakeKeys
}

func newFixture(t *testing.T, opts Options, shifts ...*models.Shift) *fixture {
	t.Helper()
	store := newFakeStore(shifts...)
	keys := newFakeKeys()
	roster := fakeRoster{
		agency.UserID:  {"A", "B", "C", "D"},
		agency2.UserID: {"E"},
	}
	catalog := fakeCatalog{
		"day":   {ID: "day", HomeID: home.UserID, Name: "Day", StartTime: "08:00", EndTime: "20:00"},
		"night": {ID: "night", HomeID: home.UserID, Name: "Night", StartTime: "20:00", EndTime: "08:00"},
	}
	svc := NewService(store, roster, catalog, keys, opts, nil)
	n := 0
	svc.newID = func() string {
		n++
		return "id-" + strconv.Itoa(n)
	}
	return &fixture{svc: svc, store: store, keys: keys}
}

func agencyShift(id string, count int, assigned ...string) *models.Shift {
	return &models.Shift{
		ID:            id,
		HomeID:        home.UserID,
		AgentID:       agency.UserID,
		ShiftType:     models.ShiftType{Name: "Day", StartTime: "08:00", EndTime: "20:00"},
		Date:          "2026-03-01",
		Count:         count,
		AssignedUsers: assigned,
		IsCompleted:   len(assigned) == count,
	}
}
