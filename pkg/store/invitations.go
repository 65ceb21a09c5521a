package store

import (
	"context"

	"github.com/arnavshah/carehome-shifts-api/pkg/invitations"
	"github.com/arnavshah/carehome-shifts-api/pkg/models"
	"gorm.io/gorm"
)

func (s *Store) CreateInvitation(ctx context.Context, inv *models.Invitation) error {
	return s.db.WithContext(ctx).Create(inv).Error
}

func (s *Store) GetInvitation(ctx context.Context, id string) (*models.Invitation, error) {
	var inv models.Invitation
	if err := s.db.WithContext(ctx).Where("id = ?", id).First(&inv).Error; err != nil {
		return nil, notFound(err, invitations.ErrInvitationNotFound)
	}
	return &inv, nil
}

func (s *Store) GetInvitationByToken(ctx context.Context, token string) (*models.Invitation, error) {
	var inv models.Invitation
	if err := s.db.WithContext(ctx).Where("token = ?", token).First(&inv).Error; err != nil {
		return nil, notFound(err, invitations.ErrInvitationNotFound)
	}
	return &inv, nil
}

func (s *Store) UpdateInvitation(ctx context.Context, inv *models.Invitation) error {
	return s.db.WithContext(ctx).Save(inv).Error
}

// AcceptInvitation saves the accepted invitation and links both accounts in one transaction
func (s *Store) AcceptInvitation(ctx context.Context, inv *models.Invitation, sender, receiver *models.User) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(inv).Error; err != nil {
			return err
		}
		return New(tx).LinkUsers(ctx, sender, receiver)
	})
}

func (s *Store) DeleteInvitation(ctx context.Context, id string) error {
	return s.db.WithContext(ctx).Delete(&models.Invitation{}, "id = ?", id).Error
}

func (s *Store) ListPendingInvitations(ctx context.Context, userID string) ([]models.Invitation, error) {
	list := []models.Invitation{}
	err := s.db.WithContext(ctx).
		Where("(sender_id = ? OR receiver_id = ?) AND status = ?", userID, userID, models.InvitationPending).
		Order("created_at desc").
		Find(&list).Error
	return list, err
}

func (s *Store) CreateStaffInvitation(ctx context.Context, inv *models.HomeStaffInvitation) error {
	return s.db.WithContext(ctx).Create(inv).Error
}

func (s *Store) GetStaffInvitation(ctx context.Context, id string) (*models.HomeStaffInvitation, error) {
	var inv models.HomeStaffInvitation
	if err := s.db.WithContext(ctx).Where("id = ?", id).First(&inv).Error; err != nil {
		return nil, notFound(err, invitations.ErrInvitationNotFound)
	}
	return &inv, nil
}

func (s *Store) GetStaffInvitationByToken(ctx context.Context, token string) (*models.HomeStaffInvitation, error) {
	var inv models.HomeStaffInvitation
	if err := s.db.WithContext(ctx).Where("token = ?", token).First(&inv).Error; err != nil {
		return nil, notFound(err, invitations.ErrInvitationNotFound)
	}
	return &inv, nil
}

func (s *Store) UpdateStaffInvitation(ctx context.Context, inv *models.HomeStaffInvitation) error {
	return s.db.WithContext(ctx).Save(inv).Error
}

func (s *Store) DeleteStaffInvitation(ctx context.Context, id string) error {
	return s.db.WithContext(ctx).Delete(&models.HomeStaffInvitation{}, "id = ?", id).Error
}

func (s *Store) ListStaffInvitations(ctx context.Context, senderID, receiverEmail string) ([]models.HomeStaffInvitation, error) {
	list := []models.HomeStaffInvitation{}
	err := s.db.WithContext(ctx).
		Where("sender_id = ? OR receiver_email = ?", senderID, receiverEmail).
		Order("created_at desc").
		Find(&list).Error
	return list, err
}
