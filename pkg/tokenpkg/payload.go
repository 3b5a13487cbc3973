// Package tokenpkg issues and verifies the bearer tokens used as sessions.
package tokenpkg

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	// ErrInvalidToken indicates that the token is malformed or its signature does not match.
	ErrInvalidToken = errors.New("token is invalid")
	// ErrExpiredToken indicates that the token is expired.
	ErrExpiredToken = errors.New("token has expired")
)

// Payload contains the payload data of the token.
type Payload struct {
	ID        uuid.UUID `json:"id"`
	Username  string    `json:"username"`
	IssuedAt  time.Time `json:"issued_at"`
	ExpiredAt time.Time `json:"expired_at"`
}

// NewPayload creates a new token payload with a specific username and duration.
func NewPayload(username string, duration time.Duration) (*Payload, error) {
	tokenID, err := uuid.NewRandom()
	if err != nil {
		return nil, err
	}

	now := time.Now()

	payload := &Payload{
		ID:        tokenID,
		Username:  username,
		IssuedAt:  now,
		ExpiredAt: now.Add(duration),
	}

	return payload, nil
}

// Valid checks if the token payload is valid or not.
func (p *Payload) Valid() error {
	if time.Now().After(p.ExpiredAt) {
		return ErrExpiredToken
	}

	return nil
}
