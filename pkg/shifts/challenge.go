package shifts

import (
	"context"
	"crypto/ed25519"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/arnavshah/carehome-shifts-api/pkg/models"
	"go.uber.org/zap"
)

const nonceSize = 32

// Challenge is a check-in nonce rendered for display at the shift site
type Challenge struct {
	ID        string `json:"challengeId"`
	ShiftID   string `json:"shiftId"`
	Nonce     string `json:"nonce"`
	ExpiresAt string `json:"expiresAt"`
	QRImage   string `json:"qrImage"`
}

// RegisterCarerKey stores the caller's ed25519 public key, replacing any earlier one
func (s *Service) RegisterCarerKey(ctx context.Context, caller models.Caller, publicKey string) (*models.CarerKey, error) {
	if caller.AccountType != models.AccountCarer && caller.AccountType != models.AccountSeniorCarer {
		return nil, ErrForbidden
	}
	raw, err := base64.StdEncoding.DecodeString(publicKey)
	if err != nil || len(raw) != ed25519.PublicKeySize {
		return nil, fmt.Errorf("%w: public key must be a base64 ed25519 key", ErrInvalidInput)
	}

	key := &models.CarerKey{CarerID: caller.UserID, PublicKey: publicKey}
	if err := s.keys.SaveCarerKey(ctx, key); err != nil {
		return nil, fmt.Errorf("save carer key: %w", err)
	}
	return key, nil
}

// IssueChallenge creates a single-use nonce for the shift, valid for the configured TTL
func (s *Service) IssueChallenge(ctx context.Context, caller models.Caller, shiftID string) (*Challenge, error) {
	if caller.AccountType != models.AccountNurse {
		return nil, ErrForbidden
	}
	if _, err := s.store.GetShift(ctx, shiftID); err != nil {
		return nil, err
	}

	buf := make([]byte, nonceSize)
	if _, err := io.ReadFull(s.random, buf); err != nil {
		return nil, fmt.Errorf("generate nonce: %w", err)
	}

	now := s.now()
	challenge := &models.CheckinChallenge{
		ID:        s.newID(),
		ShiftID:   shiftID,
		Nonce:     base64.StdEncoding.EncodeToString(buf),
		IssuedBy:  caller.UserID,
		ExpiresAt: now.Add(s.opts.ChallengeTTL),
		CreatedAt: now,
	}
	if err := s.keys.CreateChallenge(ctx, challenge); err != nil {
		return nil, fmt.Errorf("create challenge: %w", err)
	}

	image, err := qrDataURL(shiftID + ":" + challenge.ID + ":" + challenge.Nonce)
	if err != nil {
		return nil, err
	}
	return &Challenge{
		ID:        challenge.ID,
		ShiftID:   shiftID,
		Nonce:     challenge.Nonce,
		ExpiresAt: challenge.ExpiresAt.UTC().Format(time.RFC3339),
		QRImage:   image,
	}, nil
}

// AnswerChallenge verifies the caller's signature over the challenge nonce.
// Expired, reused or badly signed answers yield false. The challenge is only
// spent once the check-in has been written.
func (s *Service) AnswerChallenge(ctx context.Context, caller models.Caller, challengeID, signature string) (bool, error) {
	challenge, err := s.keys.GetChallenge(ctx, challengeID)
	if err != nil {
		return false, err
	}
	log := s.log.With(zap.String("challenge_id", challengeID), zap.String("carer_id", caller.UserID))

	now := s.now()
	if !challenge.Usable(now) {
		log.Warn("check-in challenge expired or used")
		return false, nil
	}

	key, err := s.keys.GetCarerKey(ctx, caller.UserID)
	if errors.Is(err, ErrCarerKeyNotFound) {
		log.Warn("check-in from carer without registered key")
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if !verifyNonceSignature(key.PublicKey, challenge.Nonce, signature) {
		log.Warn("check-in signature rejected")
		return false, nil
	}

	err = s.recordCheckin(ctx, challenge.ShiftID, caller.UserID, key.PublicKey, func(shift *models.Shift) bool {
		return shift.IsAssigned(caller.UserID)
	})
	if errors.Is(err, errCheckinRefused) {
		log.Warn("check-in from carer not assigned to shift")
		return false, nil
	}
	if err != nil {
		return false, err
	}

	if err := s.keys.ConsumeChallenge(ctx, challengeID, caller.UserID, now); err != nil {
		if errors.Is(err, ErrChallengeConsumed) {
			// a concurrent answer spent it first; the proof written above is still valid
			log.Warn("check-in challenge spent by a concurrent answer")
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func verifyNonceSignature(publicKey, nonce, signature string) bool {
	pub, err := base64.StdEncoding.DecodeString(publicKey)
	if err != nil || len(pub) != ed25519.PublicKeySize {
		return false
	}
	sig, err := base64.StdEncoding.DecodeString(signature)
	if err != nil {
		return false
	}
	return ed25519.Verify(ed25519.PublicKey(pub), []byte(nonce), sig)
}
