package auth

import (
	"context"

	"github.com/golang-jwt/jwt/v5"
)

type contextKey string

const claimsKey contextKey = "auth_claims"

// Claims is the credential shape the platform consumes. The token format is
// otherwise opaque; only these fields matter. OrganizationID and PlatformRole
// are optional claims — the resolver falls back to stored records when they
// are absent.
type Claims struct {
	jwt.RegisteredClaims
	Email          string `json:"email,omitempty"`
	OrganizationID string `json:"org_id,omitempty"`
	PlatformRole   string `json:"platform_role,omitempty"`
}

// WithClaims places parsed claims on the context.
func WithClaims(ctx context.Context, claims *Claims) context.Context {
	return context.WithValue(ctx, claimsKey, claims)
}

// ClaimsFromContext returns the request's claims, or nil when the request is
// unauthenticated.
func ClaimsFromContext(ctx context.Context) *Claims {
	claims, _ := ctx.Value(claimsKey).(*Claims)
	return claims
}
