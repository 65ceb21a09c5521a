package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"golang.org/x/crypto/bcrypt"
)

var jwtAlgorithm = jwt.SigningMethodHS256

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrWrongPurpose = errors.New("token issued for another purpose")
)

const (
	purposeAccess     = "access"
	purposeInvitation = "invitation"
)

// Claims represents the access token claims
type Claims struct {
	UserID      string `json:"userId"`
	AccountType string `json:"accountType"`
	Purpose     string `json:"purpose"`
	jwt.RegisteredClaims
}

// InvitationClaims binds a join invitation token to its two parties
type InvitationClaims struct {
	SenderID   string `json:"senderId"`
	ReceiverID string `json:"receiverId"`
	Purpose    string `json:"purpose"`
	jwt.RegisteredClaims
}

// Manager signs and verifies the API's bearer tokens
type Manager struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewManager creates a token manager with the shared HMAC secret
func NewManager(secret string, ttl time.Duration) *Manager {
	return &Manager{secret: []byte(secret), ttl: ttl, now: time.Now}
}

// HashPassword hashes a password using bcrypt
func HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	return string(bytes), err
}

// CheckPasswordHash compares a password with its hash
func CheckPasswordHash(password, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	return err == nil
}

// CreateToken creates a new access token for a user
func (m *Manager) CreateToken(userID, accountType string) (string, error) {
	now := m.now()
	claims := &Claims{
		UserID:      userID,
		AccountType: accountType,
		Purpose:     purposeAccess,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
		},
	}

	token := jwt.NewWithClaims(jwtAlgorithm, claims)
	return token.SignedString(m.secret)
}

// VerifyToken verifies an access token
func (m *Manager) VerifyToken(tokenString string) (*Claims, error) {
	claims := &Claims{}
	if err := m.parse(tokenString, claims); err != nil {
		return nil, err
	}
	if claims.Purpose != purposeAccess {
		return nil, ErrWrongPurpose
	}
	return claims, nil
}

// CreateInvitationToken signs the token sent with a join invitation
func (m *Manager) CreateInvitationToken(senderID, receiverID string, ttl time.Duration) (string, error) {
	now := m.now()
	claims := &InvitationClaims{
		SenderID:   senderID,
		ReceiverID: receiverID,
		Purpose:    purposeInvitation,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}

	token := jwt.NewWithClaims(jwtAlgorithm, claims)
	return token.SignedString(m.secret)
}

// VerifyInvitationToken verifies a join invitation token
func (m *Manager) VerifyInvitationToken(tokenString string) (*InvitationClaims, error) {
	claims := &InvitationClaims{}
	if err := m.parse(tokenString, claims); err != nil {
		return nil, err
	}
	if claims.Purpose != purposeInvitation {
		return nil, ErrWrongPurpose
	}
	return claims, nil
}

func (m *Manager) parse(tokenString string, claims jwt.Claims) error {
	parser := jwt.Parser{ValidMethods: []string{jwtAlgorithm.Alg()}}
	token, err := parser.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		return m.secret, nil
	})
	if err != nil {
		return err
	}
	if !token.Valid {
		return ErrInvalidToken
	}
	return nil
}
