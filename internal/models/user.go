package models

import (
	"time"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type UserRole string

const (
	RoleAdmin     UserRole = "ADMIN"
	RoleHR        UserRole = "HR"
	RoleCandidate UserRole = "CANDIDATE"
)

// AssignableRoles are the roles an admin or HR account may hand out.
var AssignableRoles = []UserRole{RoleHR, RoleCandidate}

type User struct {
	ID    uint     `json:"id" gorm:"primaryKey"`
	Name  string   `json:"name" gorm:"not null;size:100" validate:"required,min=1,max=100"`
	Email string   `json:"email" gorm:"uniqueIndex;not null;size:255" validate:"required,email"`
	Role  UserRole `json:"role" gorm:"not null;default:CANDIDATE;index" validate:"omitempty,user_role"`

	// Never serialized; bcrypt hash only.
	PasswordHash string `json:"-" gorm:"not null;size:100"`

	// Candidate accounts start inactive and unverified; invite redemption
	// or admin approval flips them.
	Active        bool       `json:"active" gorm:"default:false;index"`
	EmailVerified bool       `json:"email_verified" gorm:"default:false"`
	LastLoginAt   *time.Time `json:"last_login_at"`

	// OTP material for the self-signup flow.
	OTP       *string    `json:"-" gorm:"size:10"`
	OTPExpiry *time.Time `json:"-"`

	CreatedBy *uint          `json:"created_by" gorm:"index"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`
}

func (User) TableName() string {
	return "users"
}

// SetPassword hashes and stores the given plaintext password.
func (u *User) SetPassword(plain string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(plain), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.PasswordHash = string(hash)
	return nil
}

// CheckPassword reports whether plain matches the stored hash.
func (u *User) CheckPassword(plain string) bool {
	return bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(plain)) == nil
}

// Sanitized returns the user representation safe for API responses.
func (u *User) Sanitized() map[string]interface{} {
	return map[string]interface{}{
		"id":         u.ID,
		"name":       u.Name,
		"email":      u.Email,
		"role":       u.Role,
		"active":     u.Active,
		"created_by": u.CreatedBy,
		"created_at": u.CreatedAt,
		"updated_at": u.UpdatedAt,
		"last_login": u.LastLoginAt,
	}
}
