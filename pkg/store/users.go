package store

import (
	"context"
	"strings"

	"github.com/arnavshah/carehome-shifts-api/pkg/accounts"
	"github.com/arnavshah/carehome-shifts-api/pkg/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

func (s *Store) CreateUser(ctx context.Context, user *models.User) error {
	return s.db.WithContext(ctx).Create(user).Error
}

func (s *Store) GetUser(ctx context.Context, id string) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).Where("id = ?", id).First(&user).Error; err != nil {
		return nil, notFound(err, accounts.ErrUserNotFound)
	}
	return &user, nil
}

func (s *Store) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		return nil, notFound(err, accounts.ErrUserNotFound)
	}
	return &user, nil
}

func (s *Store) CountUsers(ctx context.Context, accountType string) (int64, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&models.User{}).Where("account_type = ?", accountType).Count(&count).Error
	return count, err
}

// SearchUsers matches any word of query against company and personal names
func (s *Store) SearchUsers(ctx context.Context, accountType, query string) ([]models.User, error) {
	q := s.db.WithContext(ctx).Model(&models.User{}).Where("account_type <> ?", models.AccountAdmin)
	if accountType != "" {
		q = q.Where("account_type = ?", accountType)
	}
	if words := strings.Fields(strings.ToLower(query)); len(words) > 0 {
		cond := s.db.Where("1 = 0")
		for _, w := range words {
			like := "%" + w + "%"
			cond = cond.Or("LOWER(company_name) LIKE ? OR LOWER(first_name) LIKE ? OR LOWER(last_name) LIKE ?", like, like, like)
		}
		q = q.Where(cond)
	}

	users := []models.User{}
	if err := q.Order("created_at desc").Limit(50).Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

// LinkUsers adds each account to the other's roster
func (s *Store) LinkUsers(ctx context.Context, a, b *models.User) error {
	links := []models.Link{
		{UserID: a.ID, LinkedUserID: b.ID, AccountType: b.AccountType},
		{UserID: b.ID, LinkedUserID: a.ID, AccountType: a.AccountType},
	}
	return s.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(&links).Error
}

func (s *Store) DeleteLink(ctx context.Context, userID, linkedUserID string) error {
	return s.db.WithContext(ctx).
		Where("user_id = ? AND linked_user_id = ?", userID, linkedUserID).
		Delete(&models.Link{}).Error
}

// LinkedUserIDs resolves the roster ids of one account type
func (s *Store) LinkedUserIDs(ctx context.Context, userID, accountType string) ([]string, error) {
	var ids []string
	err := s.linkQuery(ctx, userID, accountType).Model(&models.Link{}).Pluck("linked_user_id", &ids).Error
	return ids, err
}

func (s *Store) LinkedUsers(ctx context.Context, userID, accountType string) ([]models.User, error) {
	users := []models.User{}
	err := s.db.WithContext(ctx).
		Joins("JOIN links ON links.linked_user_id = users.id").
		Where("links.user_id = ?", userID).
		Scopes(func(db *gorm.DB) *gorm.DB {
			if accountType != "" {
				return db.Where("links.account_type = ?", accountType)
			}
			return db
		}).
		Order("users.first_name asc").
		Find(&users).Error
	return users, err
}

func (s *Store) linkQuery(ctx context.Context, userID, accountType string) *gorm.DB {
	q := s.db.WithContext(ctx).Where("user_id = ?", userID)
	if accountType != "" {
		q = q.Where("account_type = ?", accountType)
	}
	return q
}
