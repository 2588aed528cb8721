package ports

import (
	"context"
	"time"
)

// Token purposes.
const (
	TokenPurposeReset  = "reset"
	TokenPurposeVerify = "verify"
)

// TokenStore keeps one-time tokens and bearer-token revocations.
type TokenStore interface {
	// Issue stores subject under a fresh random token for ttl and returns the token.
	Issue(ctx context.Context, purpose, subject string, ttl time.Duration) (string, error)
	// Consume returns the subject of token and deletes it. Unknown or expired
	// tokens yield domain.ErrInvalidToken.
	Consume(ctx context.Context, purpose, token string) (string, error)
	Revoke(ctx context.Context, token string, ttl time.Duration) error
	IsRevoked(ctx context.Context, token string) (bool, error)
}
