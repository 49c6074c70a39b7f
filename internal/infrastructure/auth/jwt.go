package auth

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/ugmart/storefront/internal/domain/identity"
	"github.com/ugmart/storefront/internal/infrastructure/config"
)

// Verification errors
var (
	ErrInvalidToken     = errors.New("invalid token")
	ErrExpiredToken     = errors.New("token has expired")
	ErrTokenNotYetValid = errors.New("token is not yet valid")
	ErrTokenBlacklisted = errors.New("token has been revoked")
)

// JWTVerifier checks HS256 access tokens issued by the backend
type JWTVerifier struct {
	secret    []byte
	issuer    string
	blacklist TokenBlacklist
	now       func() time.Time
}

// VerifierOption configures a JWTVerifier
type VerifierOption func(*JWTVerifier)

// WithBlacklist rejects tokens revoked on logout
func WithBlacklist(b TokenBlacklist) VerifierOption {
	return func(v *JWTVerifier) {
		v.blacklist = b
	}
}

// NewJWTVerifier creates a verifier. An empty secret is allowed here and
// reported by Verify as identity.ErrSecretMissing.
func NewJWTVerifier(cfg config.JWTConfig, opts ...VerifierOption) *JWTVerifier {
	v := &JWTVerifier{
		secret: []byte(cfg.Secret),
		issuer: cfg.Issuer,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// Verify validates the signature and time claims and returns the payload
func (v *JWTVerifier) Verify(ctx context.Context, tokenString string) (identity.Claims, error) {
	if len(v.secret) == 0 {
		return nil, identity.ErrSecretMissing
	}

	parserOpts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg(), jwt.SigningMethodHS384.Alg(), jwt.SigningMethodHS512.Alg()}),
		jwt.WithTimeFunc(v.now),
	}
	if v.issuer != "" {
		parserOpts = append(parserOpts, jwt.WithIssuer(v.issuer))
	}

	claims := jwt.MapClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(*jwt.Token) (any, error) {
		return v.secret, nil
	}, parserOpts...)
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenExpired):
			return nil, ErrExpiredToken
		case errors.Is(err, jwt.ErrTokenNotValidYet):
			return nil, ErrTokenNotYetValid
		default:
			return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
		}
	}
	if !token.Valid {
		return nil, ErrInvalidToken
	}

	if v.blacklist != nil {
		revoked, err := v.blacklist.IsBlacklisted(ctx, TokenID(tokenString, claims))
		if err != nil {
			return nil, err
		}
		if revoked {
			return nil, ErrTokenBlacklisted
		}
	}
	return identity.Claims(claims), nil
}

// Revoke blacklists a token until it would have expired anyway. Tokens that
// cannot be parsed or are already expired are ignored.
func (v *JWTVerifier) Revoke(ctx context.Context, tokenString string) error {
	if v.blacklist == nil || tokenString == "" {
		return nil
	}
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(tokenString, claims); err != nil {
		return nil
	}
	ttl := 24 * time.Hour
	if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
		ttl = exp.Sub(v.now())
	}
	if ttl <= 0 {
		return nil
	}
	return v.blacklist.AddToBlacklist(ctx, TokenID(tokenString, claims), ttl)
}

// TokenID is the jti claim, or a SHA-256 of the token when the issuer sets none
func TokenID(tokenString string, claims jwt.MapClaims) string {
	if jti, ok := claims["jti"].(string); ok && jti != "" {
		return "jti:" + jti
	}
	sum := sha256.Sum256([]byte(tokenString))
	return "sha256:" + hex.EncodeToString(sum[:])
}

// UserID reads the account id the backend puts in its tokens
func UserID(claims identity.Claims) string {
	for _, key := range []string{"userId", "id", "sub"} {
		if s, ok := claims[key].(string); ok && s != "" {
			return s
		}
	}
	if user, ok := claims["user"].(map[string]any); ok {
		if s, ok := user["id"].(string); ok {
			return s
		}
	}
	return ""
}

// Email reads the email claim when present
func Email(claims identity.Claims) string {
	if s, ok := claims["email"].(string); ok {
		return s
	}
	if user, ok := claims["user"].(map[string]any); ok {
		if s, ok := user["email"].(string); ok {
			return s
		}
	}
	return ""
}

var _ identity.TokenVerifier = (*JWTVerifier)(nil)
