package models

import "time"

// AccessToken is the server-side record behind a bearer token.
// Only a digest of the token is kept; the plaintext is shown once.
type AccessToken struct {
	ID        string    `json:"id"`
	UserID    int       `json:"user_id"`
	Name      string    `json:"name"`
	TokenHash string    `json:"-"`
	CreatedAt time.Time `json:"created_at"`
}
