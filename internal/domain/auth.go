package domain

import "time"

// TokenIssuer signs short-lived admin tokens for the export endpoint.
type TokenIssuer interface {
	Issue(subject string, expiry time.Duration) (string, error)
}

// TokenVerifier validates a token and returns its subject.
type TokenVerifier interface {
	Verify(token string) (subject string, err error)
}

// PasswordVerifier checks a plaintext password against a stored hash.
type PasswordVerifier interface {
	Compare(hash, password string) error
}
