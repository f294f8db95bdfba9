package models

import (
	"encoding/json"
	"time"
)

type Tier string

const (
	TierFree       Tier = "free"
	TierPremium    Tier = "premium"
	TierEnterprise Tier = "enterprise"
)

type User struct {
	ID            int64           `json:"id" db:"id"`
	Email         string          `json:"email" db:"email"`
	PasswordHash  string          `json:"-" db:"password_hash"`
	DisplayName   *string         `json:"display_name,omitempty" db:"display_name"`
	Tier          Tier            `json:"tier" db:"tier"`
	MonthlyCount  int             `json:"monthly_count" db:"monthly_count"`
	LifetimeCount int64           `json:"lifetime_count" db:"lifetime_count"`
	LastResetAt   time.Time       `json:"last_reset_at" db:"last_reset_at"`
	Preferences   json.RawMessage `json:"preferences" db:"preferences"`
	CreatedAt     time.Time       `json:"created_at" db:"created_at"`
}

type Preferences struct {
	Theme         string `json:"theme,omitempty"`
	Locale        string `json:"locale,omitempty"`
	Notifications bool   `json:"notifications"`
}
