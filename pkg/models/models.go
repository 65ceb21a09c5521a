package models

import "time"

// Account types recognised by the API
const (
	AccountCarer       = "carer"
	AccountSeniorCarer = "senior-carer"
	AccountNurse       = "nurse"
	AccountAgency      = "agency"
	AccountHome        = "home"
	AccountAdmin       = "admin"
)

// Caller is the identity resolved from a bearer token
type Caller struct {
	UserID      string
	AccountType string
}

// User represents a carer, nurse, agency, home or admin account
type User struct {
	ID           string    `gorm:"primaryKey;size:36" json:"id"`
	FirstName    string    `gorm:"size:100;not null" json:"fname"`
	LastName     string    `gorm:"size:100;not null" json:"lname"`
	Email        string    `gorm:"size:100;uniqueIndex;not null" json:"email"`
	PasswordHash string    `gorm:"not null" json:"-"`
	AccountType  string    `gorm:"size:20;index;not null" json:"accountType"`
	CompanyName  string    `gorm:"size:100" json:"companyName,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// DisplayName returns the name shown on invitations
func (u *User) DisplayName() string {
	if u.AccountType == AccountCarer || u.CompanyName == "" {
		return u.FirstName + " " + u.LastName
	}
	return u.CompanyName
}

// Link is one entry of a user's linked roster
type Link struct {
	UserID       string    `gorm:"primaryKey;size:36" json:"userId"`
	LinkedUserID string    `gorm:"primaryKey;size:36" json:"linkedUserId"`
	AccountType  string    `gorm:"size:20;index;not null" json:"accountType"`
	CreatedAt    time.Time `json:"createdAt"`
}

// ShiftType is the denormalized descriptor copied onto a shift
type ShiftType struct {
	Name      string `json:"name"`
	StartTime string `json:"startTime"`
	EndTime   string `json:"endTime"`
}

// ShiftTypeEntry is one row of a home's shift-type catalog
type ShiftTypeEntry struct {
	ID        string    `gorm:"primaryKey;size:36" json:"id"`
	HomeID    string    `gorm:"size:36;index;not null" json:"homeId"`
	Name      string    `gorm:"not null" json:"name" binding:"required"`
	StartTime string    `gorm:"not null" json:"startTime" binding:"required"`
	EndTime   string    `gorm:"not null" json:"endTime" binding:"required"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Descriptor returns the embedded copy stored on shifts
func (e ShiftTypeEntry) Descriptor() ShiftType {
	return ShiftType{Name: e.Name, StartTime: e.StartTime, EndTime: e.EndTime}
}

// Shift is a unit of work at a home with a carer capacity
type Shift struct {
	ID            string            `gorm:"primaryKey;size:36" json:"id"`
	HomeID        string            `gorm:"size:36;index;not null" json:"homeId"`
	AgentID       string            `gorm:"size:36;index" json:"agentId,omitempty"`
	ShiftType     ShiftType         `gorm:"embedded;embeddedPrefix:shift_type_" json:"shiftType"`
	Date          string            `gorm:"size:10" json:"date"`
	Count         int               `gorm:"not null;default:0" json:"count"`
	AssignedUsers []string          `gorm:"serializer:json;type:text" json:"assignedUsers"`
	IsAccepted    bool              `gorm:"default:false" json:"isAccepted"`
	IsRejected    bool              `gorm:"default:false" json:"isRejected"`
	IsCompleted   bool              `gorm:"default:false" json:"isCompleted"`
	PrivateKey    string            `gorm:"type:text" json:"-"`
	SignedCarers  map[string]string `gorm:"serializer:json;type:text" json:"signedCarers"`
	Version       int               `gorm:"not null;default:0" json:"version"`
	CreatedAt     time.Time         `json:"createdAt"`
	UpdatedAt     time.Time         `json:"updatedAt"`
}

// IsAssigned reports whether the carer is in the assignment set
func (s *Shift) IsAssigned(userID string) bool {
	for _, id := range s.AssignedUsers {
		if id == userID {
			return true
		}
	}
	return false
}

// Timesheet statuses
const (
	TimesheetPending  = "pending"
	TimesheetApproved = "approved"
	TimesheetRejected = "rejected"
)

// Timesheet records a carer's claim for a worked shift
type Timesheet struct {
	ID        string    `gorm:"primaryKey;size:36" json:"id"`
	ShiftID   string    `gorm:"size:36;index;not null" json:"shiftId"`
	CarerID   string    `gorm:"size:36;index;not null" json:"carerId"`
	HomeID    string    `gorm:"size:36;index;not null" json:"homeId"`
	Status    string    `gorm:"size:10;not null;default:pending" json:"status"`
	Rating    *int      `json:"rating"`
	Review    *string   `json:"review"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Invitation statuses
const (
	InvitationPending  = "pending"
	InvitationAccepted = "accepted"
	InvitationRejected = "rejected"
)

// Invitation is a join invitation between two existing accounts
type Invitation struct {
	ID                string    `gorm:"primaryKey;size:36" json:"id"`
	SenderID          string    `gorm:"size:36;index;not null" json:"senderId"`
	SenderAccountType string    `gorm:"size:20;not null" json:"senderAccountType"`
	ReceiverID        string    `gorm:"size:36;index;not null" json:"receiverId"`
	CompanyName       string    `gorm:"not null" json:"companyName"`
	Status            string    `gorm:"size:10;not null;default:pending" json:"status"`
	Token             string    `gorm:"type:text;index" json:"invToken"`
	CreatedAt         time.Time `json:"createdAt"`
	UpdatedAt         time.Time `json:"updatedAt"`
}

// HomeStaffInvitation invites a new staff member to a home by email
type HomeStaffInvitation struct {
	ID                string    `gorm:"primaryKey;size:36" json:"id"`
	SenderID          string    `gorm:"size:36;index;not null" json:"senderId"`
	SenderAccountType string    `gorm:"size:20" json:"senderAccountType"`
	ReceiverEmail     string    `gorm:"size:100;index;not null" json:"receiverId"`
	AccountType       string    `gorm:"size:20" json:"accountType"`
	CompanyName       string    `gorm:"not null" json:"companyName"`
	Status            string    `gorm:"size:10;not null;default:pending" json:"status"`
	Token             string    `gorm:"size:64;uniqueIndex" json:"invToken"`
	CreatedAt         time.Time `json:"createdAt"`
	UpdatedAt         time.Time `json:"updatedAt"`
}

// CarerKey is the ed25519 public key a carer registered for check-in
type CarerKey struct {
	CarerID   string    `gorm:"primaryKey;size:36" json:"carerId"`
	PublicKey string    `gorm:"type:text;not null" json:"publicKey"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// CheckinChallenge is a single-use nonce issued at the shift site
type CheckinChallenge struct {
	ID         string     `gorm:"primaryKey;size:36" json:"id"`
	ShiftID    string     `gorm:"size:36;index;not null" json:"shiftId"`
	Nonce      string     `gorm:"size:64;not null" json:"nonce"`
	IssuedBy   string     `gorm:"size:36;not null" json:"issuedBy"`
	ExpiresAt  time.Time  `json:"expiresAt"`
	ConsumedAt *time.Time `json:"consumedAt,omitempty"`
	ConsumedBy string     `gorm:"size:36" json:"consumedBy,omitempty"`
	CreatedAt  time.Time  `json:"createdAt"`
}

// Usable reports whether the challenge can still be answered
func (c *CheckinChallenge) Usable(now time.Time) bool {
	return c.ConsumedAt == nil && now.Before(c.ExpiresAt)
}
