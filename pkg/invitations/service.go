// Package invitations handles join invitations between existing accounts and
// home-staff invitations sent to an email address.
package invitations

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/arnavshah/carehome-shifts-api/pkg/auth"
	"github.com/arnavshah/carehome-shifts-api/pkg/models"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

var (
	ErrInvitationNotFound = errors.New("invitation not found")
	ErrNotReceiver        = errors.New("invitation was sent to another user")
	ErrNotSender          = errors.New("only the sender may remove this invitation")
	ErrNotPending         = errors.New("invitation is no longer pending")
	ErrInvalidStatus      = errors.New("status must be accepted or rejected")
	ErrSelfInvitation     = errors.New("cannot invite yourself")
)

const staffTokenBytes = 20

// Store persists both invitation kinds
type Store interface {
	CreateInvitation(ctx context.Context, inv *models.Invitation) error
	GetInvitation(ctx context.Context, id string) (*models.Invitation, error)
	GetInvitationByToken(ctx context.Context, token string) (*models.Invitation, error)
	UpdateInvitation(ctx context.Context, inv *models.Invitation) error
	// AcceptInvitation saves inv and links sender and receiver atomically
	AcceptInvitation(ctx context.Context, inv *models.Invitation, sender, receiver *models.User) error
	DeleteInvitation(ctx context.Context, id string) error
	ListPendingInvitations(ctx context.Context, userID string) ([]models.Invitation, error)

	CreateStaffInvitation(ctx context.Context, inv *models.HomeStaffInvitation) error
	GetStaffInvitation(ctx context.Context, id string) (*models.HomeStaffInvitation, error)
	GetStaffInvitationByToken(ctx context.Context, token string) (*models.HomeStaffInvitation, error)
	UpdateStaffInvitation(ctx context.Context, inv *models.HomeStaffInvitation) error
	DeleteStaffInvitation(ctx context.Context, id string) error
	ListStaffInvitations(ctx context.Context, senderID, receiverEmail string) ([]models.HomeStaffInvitation, error)
}

// Users resolves accounts. GetUser returns accounts.ErrUserNotFound for unknown ids.
type Users interface {
	GetUser(ctx context.Context, id string) (*models.User, error)
}

// Tokens signs and checks join invitation tokens
type Tokens interface {
	CreateInvitationToken(senderID, receiverID string, ttl time.Duration) (string, error)
	VerifyInvitationToken(token string) (*auth.InvitationClaims, error)
}

// Service implements invitation workflows
type Service struct {
	store  Store
	users  Users
	tokens Tokens
	ttl    time.Duration
	log    *zap.Logger
	random io.Reader
	newID  func() string
}

// NewService creates an invitation service. ttl bounds join invitation tokens.
func NewService(store Store, users Users, tokens Tokens, ttl time.Duration, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{
		store:  store,
		users:  users,
		tokens: tokens,
		ttl:    ttl,
		log:    log,
		random: rand.Reader,
		newID:  uuid.NewString,
	}
}

// Send creates a pending join invitation from the caller to receiverID
func (s *Service) Send(ctx context.Context, caller models.Caller, receiverID string) (*models.Invitation, error) {
	if receiverID == caller.UserID {
		return nil, ErrSelfInvitation
	}
	sender, err := s.users.GetUser(ctx, caller.UserID)
	if err != nil {
		return nil, fmt.Errorf("sender: %w", err)
	}
	if _, err := s.users.GetUser(ctx, receiverID); err != nil {
		return nil, fmt.Errorf("receiver: %w", err)
	}

	token, err := s.tokens.CreateInvitationToken(sender.ID, receiverID, s.ttl)
	if err != nil {
		return nil, fmt.Errorf("sign invitation token: %w", err)
	}
	inv := &models.Invitation{
		ID:                s.newID(),
		SenderID:          sender.ID,
		SenderAccountType: sender.AccountType,
		ReceiverID:        receiverID,
		CompanyName:       sender.DisplayName(),
		Status:            models.InvitationPending,
		Token:             token,
	}
	if err := s.store.CreateInvitation(ctx, inv); err != nil {
		return nil, fmt.Errorf("create invitation: %w", err)
	}
	return inv, nil
}

// List returns the caller's pending invitations, sent or received, newest first
func (s *Service) List(ctx context.Context, caller models.Caller) ([]models.Invitation, error) {
	return s.store.ListPendingInvitations(ctx, caller.UserID)
}

// GetByToken resolves an invitation from its signed token for its receiver
func (s *Service) GetByToken(ctx context.Context, caller models.Caller, token string) (*models.Invitation, error) {
	claims, err := s.tokens.VerifyInvitationToken(token)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", auth.ErrInvalidToken, err)
	}
	if claims.ReceiverID != caller.UserID {
		return nil, ErrNotReceiver
	}
	return s.store.GetInvitationByToken(ctx, token)
}

// Accept marks the invitation accepted and links both accounts. Nothing is
// written unless both succeed, so a failed accept can be retried.
func (s *Service) Accept(ctx context.Context, caller models.Caller, id string) (*models.Invitation, error) {
	inv, err := s.pending(ctx, caller, id)
	if err != nil {
		return nil, err
	}

	sender, err := s.users.GetUser(ctx, inv.SenderID)
	if err != nil {
		return nil, fmt.Errorf("sender: %w", err)
	}
	receiver, err := s.users.GetUser(ctx, inv.ReceiverID)
	if err != nil {
		return nil, fmt.Errorf("receiver: %w", err)
	}

	inv.Status = models.InvitationAccepted
	if err := s.store.AcceptInvitation(ctx, inv, sender, receiver); err != nil {
		return nil, fmt.Errorf("accept invitation: %w", err)
	}
	s.log.Info("invitation accepted", zap.String("invitation_id", id))
	return inv, nil
}

// Reject marks the invitation rejected
func (s *Service) Reject(ctx context.Context, caller models.Caller, id string) (*models.Invitation, error) {
	inv, err := s.pending(ctx, caller, id)
	if err != nil {
		return nil, err
	}
	inv.Status = models.InvitationRejected
	if err := s.store.UpdateInvitation(ctx, inv); err != nil {
		return nil, fmt.Errorf("update invitation: %w", err)
	}
	return inv, nil
}

// Cancel deletes an invitation. The sender may always cancel; anyone may
// clear one that was rejected.
func (s *Service) Cancel(ctx context.Context, caller models.Caller, id string) error {
	inv, err := s.store.GetInvitation(ctx, id)
	if err != nil {
		return err
	}
	if inv.SenderID != caller.UserID && inv.Status != models.InvitationRejected {
		return ErrNotSender
	}
	return s.store.DeleteInvitation(ctx, id)
}

// pending loads an invitation the caller may still answer
func (s *Service) pending(ctx context.Context, caller models.Caller, id string) (*models.Invitation, error) {
	inv, err := s.store.GetInvitation(ctx, id)
	if err != nil {
		return nil, err
	}
	if inv.ReceiverID != caller.UserID {
		return nil, ErrNotReceiver
	}
	if inv.Status != models.InvitationPending {
		return nil, ErrNotPending
	}
	return inv, nil
}

// StaffInput describes a home-staff invitation
type StaffInput struct {
	Email       string `json:"email" binding:"required,email"`
	AccountType string `json:"accountType" binding:"required,oneof=carer nurse senior-carer"`
	CompanyName string `json:"companyName"`
}

// SendStaff invites a new staff member by email with a random token
func (s *Service) SendStaff(ctx context.Context, caller models.Caller, in StaffInput) (*models.HomeStaffInvitation, error) {
	sender, err := s.users.GetUser(ctx, caller.UserID)
	if err != nil {
		return nil, fmt.Errorf("sender: %w", err)
	}

	buf := make([]byte, staffTokenBytes)
	if _, err := io.ReadFull(s.random, buf); err != nil {
		return nil, fmt.Errorf("generate token: %w", err)
	}
	company := in.CompanyName
	if company == "" {
		company = sender.DisplayName()
	}
	inv := &models.HomeStaffInvitation{
		ID:                s.newID(),
		SenderID:          sender.ID,
		SenderAccountType: sender.AccountType,
		ReceiverEmail:     in.Email,
		AccountType:       in.AccountType,
		CompanyName:       company,
		Status:            models.InvitationPending,
		Token:             hex.EncodeToString(buf),
	}
	if err := s.store.CreateStaffInvitation(ctx, inv); err != nil {
		return nil, fmt.Errorf("create staff invitation: %w", err)
	}
	return inv, nil
}

// ListStaff returns staff invitations sent by the caller or addressed to their email
func (s *Service) ListStaff(ctx context.Context, caller models.Caller) ([]models.HomeStaffInvitation, error) {
	user, err := s.users.GetUser(ctx, caller.UserID)
	if err != nil {
		return nil, err
	}
	return s.store.ListStaffInvitations(ctx, caller.UserID, user.Email)
}

// GetStaffByToken looks up a staff invitation from the link a new member received
func (s *Service) GetStaffByToken(ctx context.Context, token string) (*models.HomeStaffInvitation, error) {
	return s.store.GetStaffInvitationByToken(ctx, token)
}

// UpdateStaffStatus accepts or rejects a pending staff invitation addressed
// to the caller's email
func (s *Service) UpdateStaffStatus(ctx context.Context, caller models.Caller, id, status string) (*models.HomeStaffInvitation, error) {
	if status != models.InvitationAccepted && status != models.InvitationRejected {
		return nil, ErrInvalidStatus
	}
	inv, err := s.store.GetStaffInvitation(ctx, id)
	if err != nil {
		return nil, err
	}
	user, err := s.users.GetUser(ctx, caller.UserID)
	if err != nil {
		return nil, err
	}
	if !strings.EqualFold(user.Email, inv.ReceiverEmail) {
		return nil, ErrNotReceiver
	}
	if inv.Status != models.InvitationPending {
		return nil, ErrNotPending
	}
	inv.Status = status
	if err := s.store.UpdateStaffInvitation(ctx, inv); err != nil {
		return nil, fmt.Errorf("update staff invitation: %w", err)
	}
	return inv, nil
}

// DeleteStaff removes a staff invitation sent by the caller
func (s *Service) DeleteStaff(ctx context.Context, caller models.Caller, id string) error {
	inv, err := s.store.GetStaffInvitation(ctx, id)
	if err != nil {
		return err
	}
	if inv.SenderID != caller.UserID {
		return ErrNotSender
	}
	return s.store.DeleteStaffInvitation(ctx, id)
}
