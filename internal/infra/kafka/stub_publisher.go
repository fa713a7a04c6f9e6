package kafka

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/kristinefung/personal-website-server/internal/core/domain"
	"github.com/kristinefung/personal-website-server/internal/core/port"
)

// StubPublisher logs events instead of sending them to Kafka. Useful for
// development environments without a broker.
type StubPublisher struct {
	logger *zap.Logger
}

// NewStubPublisher constructs a development-friendly event publisher.
func NewStubPublisher(logger *zap.Logger) *StubPublisher {
	return &StubPublisher{logger: logger}
}

func (p *StubPublisher) logEvent(eventType, userID string, at time.Time, payload any) {
	if at.IsZero() {
		at = time.Now().UTC()
	}

	p.logger.Info("stub event published",
		zap.String("event_type", eventType),
		zap.String("user_id", userID),
		zap.Time("timestamp", at.UTC()),
		zap.Any("payload", payload),
	)
}

// PublishUserCreated logs portfolio.user.created events.
func (p *StubPublisher) PublishUserCreated(_ context.Context, event domain.UserCreatedEvent) error {
	p.logEvent("user.created", event.UserID, event.CreatedAt, map[string]any{
		"email":      event.Email,
		"role":       event.Role,
		"created_by": event.CreatedBy,
	})
	return nil
}

// PublishUserLoggedIn logs portfolio.user.login events.
func (p *StubPublisher) PublishUserLoggedIn(_ context.Context, event domain.UserLoggedInEvent) error {
	p.logEvent("user.login", event.UserID, event.LoggedAt, map[string]any{
		"ip_address": event.IPAddress,
		"user_agent": event.UserAgent,
	})
	return nil
}

// PublishSessionRevoked logs portfolio.session.revoked events.
func (p *StubPublisher) PublishSessionRevoked(_ context.Context, event domain.SessionRevokedEvent) error {
	p.logEvent("session.revoked", event.UserID, event.RevokedAt, map[string]any{
		"reason": event.Reason,
	})
	return nil
}

var _ port.EventPublisher = (*StubPublisher)(nil)
