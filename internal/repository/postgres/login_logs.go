package postgres

import (
	"context"
	"errors"
	"fmt"

	squirrel "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"

	"github.com/kristinefung/personal-website-server/internal/core/domain"
	"github.com/kristinefung/personal-website-server/internal/core/port"
	"github.com/kristinefung/personal-website-server/internal/repository"
)

var loginLogColumns = []string{
	"id",
	"user_id",
	"ip_address",
	"user_agent",
	"session_token",
	"fail_attempts",
	"created_at",
	"deleted",
}

// LoginLogRepository implements port.LoginLogRepository using PostgreSQL.
// The backing table is append-only; rows are soft-deleted for revocation only.
type LoginLogRepository struct {
	exec    pgExecutor
	builder squirrel.StatementBuilderType
}

// NewLoginLogRepository constructs a repository backed by any executor that satisfies pgExecutor.
func NewLoginLogRepository(exec pgExecutor) *LoginLogRepository {
	return &LoginLogRepository{
		exec:    exec,
		builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// Append inserts a new attempt row. Prior rows are never mutated.
func (r *LoginLogRepository) Append(ctx context.Context, record domain.LoginRecord) error {
	query := r.builder.Insert("portfolio.user_login_logs").
		Columns(loginLogColumns...).
		Values(
			record.ID,
			record.UserID,
			record.IPAddress,
			record.UserAgent,
			record.SessionToken,
			record.FailAttempts,
			record.CreatedAt,
			record.Deleted,
		)

	sql, args, err := query.ToSql()
	if err != nil {
		return fmt.Errorf("build insert login log sql: %w", err)
	}

	if _, err := r.exec.Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert login log: %w", err)
	}

	return nil
}

// MostRecentByUser returns the latest row for the user ordered by creation
// time descending. Soft-deleted rows are excluded.
func (r *LoginLogRepository) MostRecentByUser(ctx context.Context, userID string) (*domain.LoginRecord, error) {
	stmt, args, err := r.builder.
		Select(loginLogColumns...).
		From("portfolio.user_login_logs").
		Where(squirrel.Eq{"user_id": userID, "deleted": false}).
		OrderBy("created_at DESC").
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select latest login log sql: %w", err)
	}

	record, err := scanLoginRecord(r.exec.QueryRow(ctx, stmt, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("scan latest login log: %w", err)
	}

	return record, nil
}

// FindByToken returns the live row bound to a session token.
func (r *LoginLogRepository) FindByToken(ctx context.Context, sessionToken string) (*domain.LoginRecord, error) {
	stmt, args, err := r.builder.
		Select(loginLogColumns...).
		From("portfolio.user_login_logs").
		Where(squirrel.Eq{"session_token": sessionToken, "deleted": false}).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select login log by token sql: %w", err)
	}

	record, err := scanLoginRecord(r.exec.QueryRow(ctx, stmt, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("scan login log by token: %w", err)
	}

	return record, nil
}

// RevokeByToken soft-deletes the row bound to a session token so subsequent
// token lookups no longer see it.
func (r *LoginLogRepository) RevokeByToken(ctx context.Context, sessionToken string) error {
	stmt, args, err := r.builder.
		Update("portfolio.user_login_logs").
		Set("deleted", true).
		Where(squirrel.Eq{"session_token": sessionToken, "deleted": false}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build revoke login log sql: %w", err)
	}

	tag, err := r.exec.Exec(ctx, stmt, args...)
	if err != nil {
		return fmt.Errorf("revoke login log: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}

	return nil
}

func scanLoginRecord(row pgx.Row) (*domain.LoginRecord, error) {
	var record domain.LoginRecord
	if err := row.Scan(
		&record.ID,
		&record.UserID,
		&record.IPAddress,
		&record.UserAgent,
		&record.SessionToken,
		&record.FailAttempts,
		&record.CreatedAt,
		&record.Deleted,
	); err != nil {
		return nil, err
	}
	return &record, nil
}

var _ port.LoginLogRepository = (*LoginLogRepository)(nil)
