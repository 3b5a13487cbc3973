package tokenpkg

import (
	"fmt"
	"time"
)

// Maker is an interface for managing tokens.
type Maker interface {
	// CreateToken creates a new token for a specific username and duration.
	CreateToken(username string, duration time.Duration) (string, *Payload, error)
	// VerifyToken checks if the token is valid or not.
	VerifyToken(token string) (*Payload, error)
}

// Token kinds accepted by New.
const (
	KindPaseto = "paseto"
	KindJWT    = "jwt"
)

// New returns the Maker of the given kind.
func New(kind, key string) (Maker, error) {
	switch kind {
	case "", KindPaseto:
		return NewPasetoMaker(key)
	case KindJWT:
		return NewJWTMaker(key)
	}

	return nil, fmt.Errorf("unsupported token kind %q", kind)
}
