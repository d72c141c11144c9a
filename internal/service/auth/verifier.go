// Package auth verifies the bearer tokens that identify study users. Tokens
// are issued by another service; this package only checks them.
package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/phrazzld/kioku/internal/config"
	"github.com/phrazzld/kioku/internal/platform/logger"
)

// TokenVerifier validates bearer tokens.
type TokenVerifier interface {
	// VerifyToken checks the signature and time claims of tokenString and
	// returns the identity it carries.
	VerifyToken(ctx context.Context, tokenString string) (*Claims, error)
}

// Claims is the verified identity of a request.
type Claims struct {
	UserID    uuid.UUID
	Subject   string
	Issuer    string
	ExpiresAt time.Time
	ID        string
}

// tokenClaims is the wire form. Tokens carry the user either in "uid" or,
// failing that, as a UUID subject.
type tokenClaims struct {
	UserID string `json:"uid,omitempty"`
	jwt.RegisteredClaims
}

type hmacVerifier struct {
	signingKey []byte
	issuer     string
	clockSkew  time.Duration
	timeFunc   func() time.Time
}

var _ TokenVerifier = (*hmacVerifier)(nil)

// NewTokenVerifier creates an HS256 verifier from the auth configuration.
func NewTokenVerifier(cfg config.AuthConfig) (TokenVerifier, error) {
	return newHMACVerifier(cfg, time.Now)
}

func newHMACVerifier(cfg config.AuthConfig, timeFunc func() time.Time) (*hmacVerifier, error) {
	if len(cfg.JWTSecret) < 32 {
		return nil, fmt.Errorf("jwt secret must be at least 32 characters")
	}
	return &hmacVerifier{
		signingKey: []byte(cfg.JWTSecret),
		issuer:     cfg.Issuer,
		clockSkew:  cfg.ClockSkew,
		timeFunc:   timeFunc,
	}, nil
}

// VerifyToken implements TokenVerifier.
func (v *hmacVerifier) VerifyToken(ctx context.Context, tokenString string) (*Claims, error) {
	log := logger.FromContext(ctx)

	if tokenString == "" {
		return nil, ErrMissingToken
	}

	parserOpts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Name}),
		jwt.WithLeeway(v.clockSkew),
		jwt.WithTimeFunc(v.timeFunc),
		jwt.WithExpirationRequired(),
	}
	if v.issuer != "" {
		parserOpts = append(parserOpts, jwt.WithIssuer(v.issuer))
	}

	token, err := jwt.ParseWithClaims(tokenString, &tokenClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return v.signingKey, nil
	}, parserOpts...)
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenExpired):
			log.Debug("token verification failed: token expired", "error", err)
			return nil, ErrExpiredToken
		case errors.Is(err, jwt.ErrTokenNotValidYet):
			log.Debug("token verification failed: token not yet valid", "error", err)
			return nil, ErrTokenNotYetValid
		default:
			log.Debug("token verification failed",
				"error", err,
				"error_type", fmt.Sprintf("%T", err))
			return nil, ErrInvalidToken
		}
	}

	claims, ok := token.Claims.(*tokenClaims)
	if !ok || !token.Valid {
		log.Debug("token verification failed: invalid claims")
		return nil, ErrInvalidToken
	}

	raw := claims.UserID
	if raw == "" {
		raw = claims.Subject
	}
	userID, err := uuid.Parse(raw)
	if err != nil || userID == uuid.Nil {
		log.Debug("token verification failed: no user identity", "subject", claims.Subject)
		return nil, ErrInvalidToken
	}

	verified := &Claims{
		UserID:  userID,
		Subject: claims.Subject,
		Issuer:  claims.Issuer,
		ID:      claims.ID,
	}
	if claims.ExpiresAt != nil {
		verified.ExpiresAt = claims.ExpiresAt.Time
	}
	return verified, nil
}
