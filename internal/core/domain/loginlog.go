package domain

import "time"

// LoginRecord is one row in the append-only login attempt ledger.
//
// Rows are never updated in place: every attempt appends a new record, and
// FailAttempts carries the consecutive-failure count forward. SessionToken is
// populated only on successful logins. Soft deletion (Deleted) is used solely
// to revoke the session bound to a record's token.
type LoginRecord struct {
	ID           string
	UserID       string
	IPAddress    *string
	UserAgent    *string
	SessionToken *string
	FailAttempts int
	CreatedAt    time.Time
	Deleted      bool
}

// LocksAccountAt reports whether this record, as the most recent ledger entry
// for its user, pins the account locked at the supplied moment. The lock holds
// only while the failure count sits exactly at maxFailures and the record is
// younger than the lockout window. A count that was pushed past maxFailures by
// failures recorded after the window lapsed does not re-lock the account; only
// a successful login writes a fresh record with FailAttempts reset to zero.
func (r LoginRecord) LocksAccountAt(at time.Time, maxFailures int, window time.Duration) bool {
	if r.FailAttempts != maxFailures {
		return false
	}
	return at.Sub(r.CreatedAt) < window
}
