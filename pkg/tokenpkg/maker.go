// Package tokenpkg issues and verifies access tokens.
package tokenpkg

import (
	"fmt"
	"time"
)

// Supported token types.
const (
	TypePaseto = "paseto"
	TypeJWT    = "jwt"
)

// Maker is an interface for managing tokens.
type Maker interface {
	// CreateToken creates a new token for a specific username and duration.
	CreateToken(username string, duration time.Duration) (string, *Payload, error)
	// VerifyToken checks if the token is valid or not.
	VerifyToken(token string) (*Payload, error)
}

// NewMaker returns the Maker for the given token type.
func NewMaker(tokenType, symmetricKey string) (Maker, error) {
	var (
		maker Maker
		err   error
	)

	switch tokenType {
	case TypePaseto, "":
		maker, err = NewPasetoMaker(symmetricKey)
	case TypeJWT:
		maker, err = NewJWTMaker(symmetricKey)
	default:
		return nil, fmt.Errorf("unsupported token type %q", tokenType)
	}

	if err != nil {
		return nil, err
	}

	return maker, nil
}
