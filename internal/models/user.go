package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// User is an account holder. Budget is the running balance that every
// recorded transaction adjusts; it never goes below zero.
type User struct {
	Base
	Username        string          `gorm:"not null" json:"username"`
	Email           string          `gorm:"uniqueIndex;not null" json:"email"`
	Title           string          `json:"title"`
	Password        string          `gorm:"not null" json:"-"`
	Budget          decimal.Decimal `gorm:"type:numeric(14,2);not null;default:0" json:"budget"`
	OpeningBudget   decimal.Decimal `gorm:"type:numeric(14,2);not null;default:0" json:"opening_budget"`
	ProfilePicture  string          `json:"profile_picture"`
	IsGoogle        bool            `gorm:"not null;default:false" json:"is_google"`
	GoogleSub       *string         `gorm:"uniqueIndex" json:"-"`
	ResetOTP        *string         `json:"-"`
	ResetOTPExpires *time.Time      `json:"-"`
	LastLoginAt     *time.Time      `json:"last_login_at,omitempty"`
}
