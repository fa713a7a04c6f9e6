package domain

import "time"

// UserCreatedEvent represents the payload for portfolio.user.created messages.
type UserCreatedEvent struct {
	EventID   string
	UserID    string
	Email     string
	Role      Role
	CreatedBy string
	CreatedAt time.Time
}

// UserLoggedInEvent represents the payload for portfolio.user.login messages.
type UserLoggedInEvent struct {
	EventID   string
	UserID    string
	IPAddress *string
	UserAgent *string
	LoggedAt  time.Time
}

// SessionRevokedEvent represents the payload for portfolio.session.revoked messages.
type SessionRevokedEvent struct {
	EventID   string
	UserID    string
	Reason    string
	RevokedAt time.Time
}
