// Package store implements the persistence interfaces of the domain packages
// on top of gorm, for both postgres and sqlite.
package store

import (
	"errors"

	"github.com/arnavshah/carehome-shifts-api/pkg/accounts"
	"github.com/arnavshah/carehome-shifts-api/pkg/invitations"
	"github.com/arnavshah/carehome-shifts-api/pkg/shifts"
	"github.com/arnavshah/carehome-shifts-api/pkg/shifttypes"
	"github.com/arnavshah/carehome-shifts-api/pkg/timesheets"
	"gorm.io/gorm"
)

var (
	_ shifts.Store      = (*Store)(nil)
	_ shifts.Roster     = (*Store)(nil)
	_ shifts.KeyStore   = (*Store)(nil)
	_ shifttypes.Store  = (*Store)(nil)
	_ timesheets.Store  = (*Store)(nil)
	_ timesheets.Shifts = (*Store)(nil)
	_ invitations.Store = (*Store)(nil)
	_ invitations.Users = (*Store)(nil)
	_ accounts.Store    = (*Store)(nil)
)

// Store is the gorm-backed repository shared by every service
type Store struct {
	db *gorm.DB
}

// New wraps an open gorm connection
func New(db *gorm.DB) *Store {
	return &Store{db: db}
}

// notFound maps gorm's missing-row error to the domain error
func notFound(err, domain error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return domain
	}
	return err
}
