package domain

import "time"

// User represents a registered account. Accounts are immutable after
// registration: there is no update or delete surface. The password hash
// is excluded from every JSON rendering.
type User struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}
