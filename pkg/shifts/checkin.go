package shifts

import (
	"context"
	"crypto"
	"crypto/rsa"
	"crypto/sha256"
	"crypto/x509"
	"encoding/base64"
	"encoding/pem"
	"errors"
	"fmt"

	"github.com/arnavshah/carehome-shifts-api/pkg/models"
	"go.uber.org/zap"
)

// QRCode is the material handed to the nurse at the shift site
type QRCode struct {
	PublicKey string `json:"publicKey"`
	QRImage   string `json:"qrImage"`
}

// GenerateQRCode issues a fresh keypair for the shift, storing the private half
// on the record and returning the public half as PEM and as a QR image.
// Calling it again replaces the key, so earlier QR codes stop verifying.
func (s *Service) GenerateQRCode(ctx context.Context, caller models.Caller, shiftID string) (*QRCode, error) {
	if caller.AccountType != models.AccountNurse {
		return nil, ErrForbidden
	}

	key, err := rsa.GenerateKey(s.random, s.opts.KeyBits)
	if err != nil {
		return nil, fmt.Errorf("generate shift key: %w", err)
	}
	privatePEM := pem.EncodeToMemory(&pem.Block{
		Type:  "RSA PRIVATE KEY",
		Bytes: x509.MarshalPKCS1PrivateKey(key),
	})
	publicPEM := string(pem.EncodeToMemory(&pem.Block{
		Type:  "RSA PUBLIC KEY",
		Bytes: x509.MarshalPKCS1PublicKey(&key.PublicKey),
	}))

	image, err := qrDataURL(publicPEM)
	if err != nil {
		return nil, err
	}

	if _, err := s.mutate(ctx, shiftID, func(shift *models.Shift) error {
		shift.PrivateKey = string(privatePEM)
		return nil
	}); err != nil {
		return nil, err
	}

	return &QRCode{PublicKey: publicPEM, QRImage: image}, nil
}

// errCheckinRefused aborts a check-in write without being reported to callers
var errCheckinRefused = errors.New("check-in refused")

// VerifyPublicKey checks that publicKey is a base64 signature of carerID made
// with the shift's check-in key. A valid proof is recorded in SignedCarers.
// Bad proofs and shifts without a key yield false, not an error.
func (s *Service) VerifyPublicKey(ctx context.Context, shiftID, publicKey, carerID string) (bool, error) {
	err := s.recordCheckin(ctx, shiftID, carerID, publicKey, func(shift *models.Shift) bool {
		return verifyCarerSignature(shift.PrivateKey, carerID, publicKey)
	})
	if errors.Is(err, errCheckinRefused) {
		s.log.Warn("check-in proof rejected", zap.String("shift_id", shiftID), zap.String("carer_id", carerID))
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// recordCheckin stores proof for carerID on the latest copy of the shift when
// accept holds for that copy, returning errCheckinRefused when it does not.
func (s *Service) recordCheckin(ctx context.Context, shiftID, carerID, proof string, accept func(*models.Shift) bool) error {
	_, err := s.mergeWrite(ctx, shiftID, func(shift *models.Shift) error {
		if !accept(shift) {
			return errCheckinRefused
		}
		if shift.SignedCarers == nil {
			shift.SignedCarers = map[string]string{}
		}
		shift.SignedCarers[carerID] = proof
		return nil
	})
	return err
}

func verifyCarerSignature(privatePEM, carerID, signature string) bool {
	if privatePEM == "" {
		return false
	}
	block, _ := pem.Decode([]byte(privatePEM))
	if block == nil {
		return false
	}
	key, err := x509.ParsePKCS1PrivateKey(block.Bytes)
	if err != nil {
		return false
	}
	sig, err := base64.StdEncoding.DecodeString(signature)
	if err != nil {
		return false
	}
	digest := sha256.Sum256([]byte(carerID))
	return rsa.VerifyPKCS1v15(&key.PublicKey, crypto.SHA256, digest[:], sig) == nil
}

// SignCarerID produces the proof VerifyPublicKey expects, using the PKCS1 PEM
// private key that matches the shift's QR code.
func SignCarerID(privatePEM, carerID string) (string, error) {
	block, _ := pem.Decode([]byte(privatePEM))
	if block == nil {
		return "", errors.New("no PEM block found")
	}
	key, err := x509.ParsePKCS1PrivateKey(block.Bytes)
	if err != nil {
		return "", fmt.Errorf("parse private key: %w", err)
	}
	digest := sha256.Sum256([]byte(carerID))
	sig, err := rsa.SignPKCS1v15(nil, key, crypto.SHA256, digest[:])
	if err != nil {
		return "", fmt.Errorf("sign carer id: %w", err)
	}
	return base64.StdEncoding.EncodeToString(sig), nil
}
