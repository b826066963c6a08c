package models

import (
	"strings"
	"time"

	"gorm.io/gorm"
)

type User struct {
	ID              string     `gorm:"primaryKey;size:36" json:"_id"`
	Email           string     `gorm:"uniqueIndex;not null" json:"email"` // always lowercase
	Username        string     `gorm:"not null" json:"username"`
	GoogleID        *string    `gorm:"uniqueIndex" json:"googleId,omitempty"` // NULL until linked
	OTPHash         string     `gorm:"size:72" json:"-"`                      // bcrypt hash of the pending code
	OTPExpires      *time.Time `json:"-"`
	IsSetupComplete bool       `gorm:"default:false" json:"isSetupComplete"`
	CreatedAt       time.Time  `json:"createdAt"`
	// No DeletedAt, users are never removed
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	newID(&u.ID)
	u.Email = NormalizeEmail(u.Email)
	return nil
}

// NormalizeEmail 统一邮箱格式 (去空格、小写)
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// HasPendingOTP reports whether an unexpired code is waiting to be consumed.
func (u *User) HasPendingOTP(now time.Time) bool {
	return u.OTPHash != "" && u.OTPExpires != nil && now.Before(*u.OTPExpires)
}
