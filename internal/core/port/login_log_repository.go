package port

import (
	"context"

	"github.com/kristinefung/personal-website-server/internal/core/domain"
)

// LoginLogRepository persists the append-only login attempt ledger.
//
// Append never mutates prior rows. Token lookups exclude soft-deleted rows so
// a revoked session cannot be resurrected by its still-valid signature.
type LoginLogRepository interface {
	Append(ctx context.Context, record domain.LoginRecord) error
	MostRecentByUser(ctx context.Context, userID string) (*domain.LoginRecord, error)
	FindByToken(ctx context.Context, sessionToken string) (*domain.LoginRecord, error)
	RevokeByToken(ctx context.Context, sessionToken string) error
}
