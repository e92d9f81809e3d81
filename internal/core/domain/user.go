// internal/core/domain/user.go
package domain

import "time"

// User is a stored identity record. Authentication and session issuance are
// out of scope; the record exists so the fallback store can seed a built-in
// administrative identity with the same shape the persistent store uses.
type User struct {
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	Role         string    `json:"role"`
	CreatedAt    time.Time `json:"created_at"`
}

// Validate performs domain validation on the user record.
func (u *User) Validate() error {
	if u.Username == "" {
		return NewValidationError("username", "is required")
	}
	if u.PasswordHash == "" {
		return NewValidationError("password_hash", "is required")
	}
	if u.Role == "" {
		u.Role = "staff"
	}
	return nil
}
