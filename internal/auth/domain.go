package auth

import "time"

// User is an account holder; workspace membership is tracked separately.
type User struct {
	ID           int64      `json:"id"`
	Name         string     `json:"nome"`
	Email        string     `json:"email"`
	PasswordHash string     `json:"-"`
	GoogleID     *string    `json:"-"`
	IsActive     bool       `json:"-"`
	CreatedAt    time.Time  `json:"createdAt"`
	LastLoginAt  *time.Time `json:"lastLoginAt,omitempty"`
}
