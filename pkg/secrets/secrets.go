// Package secrets issues and checks the static bearer tokens that guard
// operator endpoints such as /metrics. Only the bcrypt hash is ever
// configured on the server; the plaintext goes to the scraper.
package secrets

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"strings"

	"golang.org/x/crypto/bcrypt"

	dErrors "schemeportal/pkg/domain-errors"
)

const (
	tokenBytes = 32
	tokenCost  = bcrypt.DefaultCost
)

// GenerateToken returns a URL-safe random token.
func GenerateToken() (string, error) {
	buf := make([]byte, tokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", dErrors.Wrap(err, dErrors.CodeInternal, "could not generate token")
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}

// HashToken returns the bcrypt hash to put in configuration.
func HashToken(token string) (string, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return "", dErrors.New(dErrors.CodeValidation, "token cannot be empty")
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(token), tokenCost)
	if err != nil {
		if errors.Is(err, bcrypt.ErrPasswordTooLong) {
			return "", dErrors.New(dErrors.CodeValidation, "token is too long")
		}
		return "", dErrors.Wrap(err, dErrors.CodeInternal, "could not hash token")
	}
	return string(hashed), nil
}

// VerifyToken reports a CodeUnauthorized error when token does not match hash.
// A malformed hash is an internal error.
func VerifyToken(token, hash string) error {
	if token == "" {
		return dErrors.New(dErrors.CodeUnauthorized, "missing token")
	}
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(token))
	switch {
	case err == nil:
		return nil
	case errors.Is(err, bcrypt.ErrMismatchedHashAndPassword):
		return dErrors.New(dErrors.CodeUnauthorized, "invalid token")
	default:
		return dErrors.Wrap(err, dErrors.CodeInternal, "could not verify token")
	}
}
