package mocks

import (
	"context"
	"sync"

	"github.com/phrazzld/kioku/internal/service/auth"
)

// MockTokenVerifier implements auth.TokenVerifier for testing.
type MockTokenVerifier struct {
	VerifyTokenFn func(ctx context.Context, tokenString string) (*auth.Claims, error)

	// Default values used when VerifyTokenFn is nil
	Claims *auth.Claims
	Err    error

	mu    sync.Mutex
	Calls []string
}

var _ auth.TokenVerifier = (*MockTokenVerifier)(nil)

// VerifyToken implements the auth.TokenVerifier interface
func (m *MockTokenVerifier) VerifyToken(ctx context.Context, tokenString string) (*auth.Claims, error) {
	m.mu.Lock()
	m.Calls = append(m.Calls, tokenString)
	m.mu.Unlock()

	if m.VerifyTokenFn != nil {
		return m.VerifyTokenFn(ctx, tokenString)
	}
	if m.Err != nil {
		return nil, m.Err
	}
	return m.Claims, nil
}
