package domain

import "time"

// Principal is the authenticated caller as established by the identity
// provider. UserID is the stable identifier passed into reservation
// operations; Email may be empty when the token carries none.
type Principal struct {
	UserID string
	Email  string
}

// TokenIssuer issues signed tokens for a user. Used by the identity adapter
// and by tests; user registration itself lives outside this service.
type TokenIssuer interface {
	Issue(userID, email string, expiry time.Duration) (string, error)
}

// TokenVerifier validates a token and returns the principal it encodes.
type TokenVerifier interface {
	Verify(token string) (Principal, error)
}
