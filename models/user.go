package models

import "time"

// AdminUser is the identity-provider record for a dashboard administrator.
// Settings live in UserSettings; this record owns authentication state.
type AdminUser struct {
	ID            string    `json:"id"`
	Email         string    `json:"email"`
	PasswordHash  string    `json:"password_hash,omitempty"` // Cleared before API responses
	DisplayName   string    `json:"display_name"`
	Role          string    `json:"role"` // "admin", "editor"
	EmailVerified bool      `json:"email_verified"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
	LastLoginAt   time.Time `json:"last_login_at,omitempty"`
}
