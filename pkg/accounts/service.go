// Package accounts covers registration, login and the linked-user roster.
package accounts

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/arnavshah/carehome-shifts-api/pkg/auth"
	"github.com/arnavshah/carehome-shifts-api/pkg/models"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

var (
	ErrUserNotFound       = errors.New("user not found")
	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrAccountType        = errors.New("account type cannot be registered")
)

// Store persists users and their roster links
type Store interface {
	CreateUser(ctx context.Context, user *models.User) error
	GetUser(ctx context.Context, id string) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	CountUsers(ctx context.Context, accountType string) (int64, error)
	SearchUsers(ctx context.Context, accountType, query string) ([]models.User, error)
	LinkedUsers(ctx context.Context, userID, accountType string) ([]models.User, error)
	DeleteLink(ctx context.Context, userID, linkedUserID string) error
}

// RegisterInput is the sign-up payload
type RegisterInput struct {
	FirstName   string `json:"fname" binding:"required"`
	LastName    string `json:"lname" binding:"required"`
	Email       string `json:"email" binding:"required,email"`
	Password    string `json:"password" binding:"required,min=8"`
	AccountType string `json:"accountType" binding:"required"`
	CompanyName string `json:"companyName"`
}

// Session is returned after a successful login or registration
type Session struct {
	Token string       `json:"token"`
	User  *models.User `json:"user"`
}

var registrable = map[string]bool{
	models.AccountCarer:       true,
	models.AccountSeniorCarer: true,
	models.AccountNurse:       true,
	models.AccountAgency:      true,
	models.AccountHome:        true,
}

// Service implements account operations
type Service struct {
	store  Store
	tokens *auth.Manager
	log    *zap.Logger
	newID  func() string
}

// NewService creates an account service
func NewService(store Store, tokens *auth.Manager, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{store: store, tokens: tokens, log: log, newID: uuid.NewString}
}

// Register creates an account and signs the caller in
func (s *Service) Register(ctx context.Context, in RegisterInput) (*Session, error) {
	if !registrable[in.AccountType] {
		return nil, ErrAccountType
	}
	email := strings.ToLower(strings.TrimSpace(in.Email))
	if _, err := s.store.GetUserByEmail(ctx, email); err == nil {
		return nil, ErrEmailTaken
	} else if !errors.Is(err, ErrUserNotFound) {
		return nil, err
	}

	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	user := &models.User{
		ID:           s.newID(),
		FirstName:    in.FirstName,
		LastName:     in.LastName,
		Email:        email,
		PasswordHash: hash,
		AccountType:  in.AccountType,
		CompanyName:  in.CompanyName,
	}
	if err := s.store.CreateUser(ctx, user); err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}
	s.log.Info("account registered", zap.String("user_id", user.ID), zap.String("account_type", user.AccountType))
	return s.session(user)
}

// Login checks credentials and issues an access token
func (s *Service) Login(ctx context.Context, email, password string) (*Session, error) {
	user, err := s.store.GetUserByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if errors.Is(err, ErrUserNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}
	if !auth.CheckPasswordHash(password, user.PasswordHash) {
		return nil, ErrInvalidCredentials
	}
	return s.session(user)
}

// Me returns the caller's account
func (s *Service) Me(ctx context.Context, caller models.Caller) (*models.User, error) {
	return s.store.GetUser(ctx, caller.UserID)
}

// Search finds accounts by type and by a name or company fragment
func (s *Service) Search(ctx context.Context, accountType, query string) ([]models.User, error) {
	return s.store.SearchUsers(ctx, accountType, strings.TrimSpace(query))
}

// LinkedUsers returns the caller's roster grouped by account type.
// A non-empty accountType restricts the result to that group.
func (s *Service) LinkedUsers(ctx context.Context, caller models.Caller, accountType string) (map[string][]models.User, error) {
	users, err := s.store.LinkedUsers(ctx, caller.UserID, accountType)
	if err != nil {
		return nil, err
	}
	grouped := map[string][]models.User{}
	for _, u := range users {
		grouped[u.AccountType] = append(grouped[u.AccountType], u)
	}
	return grouped, nil
}

// Unlink removes a roster link in both directions
func (s *Service) Unlink(ctx context.Context, caller models.Caller, linkedUserID string) error {
	if err := s.store.DeleteLink(ctx, caller.UserID, linkedUserID); err != nil {
		return err
	}
	return s.store.DeleteLink(ctx, linkedUserID, caller.UserID)
}

// EnsureAdminExists creates the bootstrap admin when no admin account exists
func (s *Service) EnsureAdminExists(ctx context.Context, email, password string) error {
	count, err := s.store.CountUsers(ctx, models.AccountAdmin)
	if err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return err
	}
	user := &models.User{
		ID:           s.newID(),
		FirstName:    "Admin",
		LastName:     "User",
		Email:        strings.ToLower(email),
		PasswordHash: hash,
		AccountType:  models.AccountAdmin,
	}
	if err := s.store.CreateUser(ctx, user); err != nil {
		return err
	}
	s.log.Info("default admin user created", zap.String("email", user.Email))
	return nil
}

func (s *Service) session(user *models.User) (*Session, error) {
	token, err := s.tokens.CreateToken(user.ID, user.AccountType)
	if err != nil {
		return nil, fmt.Errorf("create token: %w", err)
	}
	return &Session{Token: token, User: user}, nil
}
