package middleware

import (
	"context"
	"errors"
	"sync"

	"github.com/google/uuid"

	"github.com/tripdesk/backoffice/internal/domain"
)

var _ tokenValidator = &tokenValidatorMock{}

type validateTokenCall struct {
	Ctx   context.Context
	Token string
}

// tokenValidatorMock is a moq-style fake of tokenValidator.
type tokenValidatorMock struct {
	ValidateTokenFunc func(ctx context.Context, token string) (uuid.UUID, string, error)

	mu    sync.RWMutex
	calls []validateTokenCall
}

// newValidatorMock accepts any non-empty token as userID with the given role.
func newValidatorMock(userID uuid.UUID, role domain.Role) *tokenValidatorMock {
	return &tokenValidatorMock{
		ValidateTokenFunc: func(_ context.Context, token string) (uuid.UUID, string, error) {
			if token == "" {
				return uuid.Nil, "", errors.New("empty token")
			}
			return userID, role.String(), nil
		},
	}
}

func (m *tokenValidatorMock) ValidateToken(ctx context.Context, token string) (uuid.UUID, string, error) {
	if m.ValidateTokenFunc == nil {
		panic("tokenValidatorMock.ValidateTokenFunc is nil")
	}
	m.mu.Lock()
	m.calls = append(m.calls, validateTokenCall{Ctx: ctx, Token: token})
	m.mu.Unlock()
	return m.ValidateTokenFunc(ctx, token)
}

func (m *tokenValidatorMock) ValidateTokenCalls() []validateTokenCall {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.calls
}
