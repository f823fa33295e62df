package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/vasapolrittideah/credential-auth/services/auth-service/internal/model"
)

const pgUniqueViolation = "23505"

// DBTX is the subset of database/sql used by the Postgres repository. Both
// *sql.DB and *sql.Tx satisfy it.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type userPostgresRepository struct {
	db DBTX
}

// NewUserPostgresRepository creates a Postgres backed UserRepository. Run
// RunMigrations on the same database first.
func NewUserPostgresRepository(db DBTX) UserRepository {
	return &userPostgresRepository{db: db}
}

const userColumns = `id, email, password_hash, failed_attempts, lock_until, is_mfa_enabled,
		mfa_challenge_digest, mfa_challenge_expires_at, mfa_challenge_attempts,
		reset_challenge_digest, reset_challenge_expires_at, reset_challenge_attempts,
		active_session_id, created_at, updated_at`

func (r *userPostgresRepository) CreateUser(ctx context.Context, user *model.User) (*model.User, error) {
	now := time.Now().UTC()
	user.CreatedAt = now
	user.UpdatedAt = now
	if user.ID == "" {
		user.ID = uuid.NewString()
	}

	query :=
		`INSERT INTO users (id, email, password_hash, failed_attempts, is_mfa_enabled, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`

	_, err := r.db.ExecContext(ctx, query,
		user.ID, user.Email, user.PasswordHash, user.FailedAttempts, user.IsMFAEnabled, user.CreatedAt, user.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrDuplicateEmail
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return user, nil
}

func (r *userPostgresRepository) GetUser(ctx context.Context, id string) (*model.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	return scanUser(r.db.QueryRowContext(ctx, query, id))
}

func (r *userPostgresRepository) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1`
	return scanUser(r.db.QueryRowContext(ctx, query, email))
}

func (r *userPostgresRepository) SaveUser(ctx context.Context, user *model.User) (*model.User, error) {
	user.UpdatedAt = time.Now().UTC()

	mfaDigest, mfaExpires, mfaAttempts := challengeColumns(user.MFAChallenge)
	resetDigest, resetExpires, resetAttempts := challengeColumns(user.ResetChallenge)

	query :=
		`UPDATE users SET email = $2, password_hash = $3, failed_attempts = $4, lock_until = $5,
		     is_mfa_enabled = $6,
		     mfa_challenge_digest = $7, mfa_challenge_expires_at = $8, mfa_challenge_attempts = $9,
		     reset_challenge_digest = $10, reset_challenge_expires_at = $11, reset_challenge_attempts = $12,
		     active_session_id = $13, updated_at = $14
		 WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query,
		user.ID, user.Email, user.PasswordHash, user.FailedAttempts, nullTime(user.LockUntil),
		user.IsMFAEnabled,
		mfaDigest, mfaExpires, mfaAttempts,
		resetDigest, resetExpires, resetAttempts,
		nullString(user.ActiveSessionID), user.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrDuplicateEmail
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	if err := requireAffected(result); err != nil {
		return nil, err
	}

	return user, nil
}

func (r *userPostgresRepository) ClearActiveSession(ctx context.Context, id string) error {
	query := `UPDATE users SET active_session_id = NULL, updated_at = $2 WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query, id, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}

	return requireAffected(result)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (*model.User, error) {
	var (
		user                                  model.User
		lockUntil, mfaExpires, resetExpires   sql.NullTime
		mfaDigest, resetDigest, activeSession sql.NullString
		mfaAttempts, resetAttempts            int
	)

	err := row.Scan(
		&user.ID, &user.Email, &user.PasswordHash, &user.FailedAttempts, &lockUntil, &user.IsMFAEnabled,
		&mfaDigest, &mfaExpires, &mfaAttempts,
		&resetDigest, &resetExpires, &resetAttempts,
		&activeSession, &user.CreatedAt, &user.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	if lockUntil.Valid {
		t := lockUntil.Time
		user.LockUntil = &t
	}
	if activeSession.Valid {
		s := activeSession.String
		user.ActiveSessionID = &s
	}
	user.MFAChallenge = challengeFromColumns(model.ChallengeMFA, mfaDigest, mfaExpires, mfaAttempts)
	user.ResetChallenge = challengeFromColumns(model.ChallengeReset, resetDigest, resetExpires, resetAttempts)

	return &user, nil
}

func challengeColumns(c *model.Challenge) (sql.NullString, sql.NullTime, int) {
	if c == nil {
		return sql.NullString{}, sql.NullTime{}, 0
	}
	return sql.NullString{String: c.Digest, Valid: true}, sql.NullTime{Time: c.ExpiresAt, Valid: true}, c.Attempts
}

func challengeFromColumns(kind model.ChallengeKind, digest sql.NullString, expires sql.NullTime, attempts int) *model.Challenge {
	if !digest.Valid || !expires.Valid {
		return nil
	}
	return &model.Challenge{
		Kind:      kind,
		Digest:    digest.String,
		ExpiresAt: expires.Time,
		Attempts:  attempts,
	}
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}

func nullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

func requireAffected(result sql.Result) error {
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if n == 0 {
		return ErrUserNotFound
	}
	return nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation
}
