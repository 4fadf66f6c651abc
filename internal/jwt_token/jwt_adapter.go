package jwttoken

import (
	dErrors "schemeportal/pkg/domain-errors"
	"schemeportal/pkg/platform/middleware/auth"
)

// JWTServiceAdapter lets RequireAuth validate portal tokens without
// depending on this package.
type JWTServiceAdapter struct {
	service *JWTService
}

// NewJWTServiceAdapter wraps service for auth.RequireAuth.
func NewJWTServiceAdapter(service *JWTService) *JWTServiceAdapter {
	return &JWTServiceAdapter{service: service}
}

// ValidateToken also rejects tokens whose user_id claim disagrees with the
// subject; the middleware trusts UserID alone.
func (a *JWTServiceAdapter) ValidateToken(tokenString string) (*auth.JWTClaims, error) {
	claims, err := a.service.ValidateToken(tokenString)
	if err != nil {
		return nil, err
	}
	if claims.UserID == "" || claims.UserID != claims.Subject {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "invalid token subject")
	}
	return &auth.JWTClaims{UserID: claims.UserID, JTI: claims.ID}, nil
}
