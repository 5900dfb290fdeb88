// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/taibuivan/yomira-id/internal/platform/apperr"
	"github.com/taibuivan/yomira-id/internal/platform/database/schema"
	"github.com/taibuivan/yomira-id/internal/platform/dberr"
	"github.com/taibuivan/yomira-id/internal/platform/postgres"
	"github.com/taibuivan/yomira-id/internal/platform/sec"
)

// # User Repository

var (
	accountTable = schema.UserAccount

	selectUserQuery = fmt.Sprintf(`SELECT %s FROM %s`, accountTable.Select(), accountTable.Table)

	insertUserQuery = fmt.Sprintf(`
		INSERT INTO %s (%s, %s, %s, %s, %s, %s, %s, %s, %s)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		accountTable.Table, accountTable.ID, accountTable.Email, accountTable.Name, accountTable.Image, accountTable.Password,
		accountTable.Role, accountTable.EmailVerified, accountTable.CreatedAt, accountTable.UpdatedAt)
)

// PostgresUserRepository implements [UserRepository] using pgx.
type PostgresUserRepository struct {
	db postgres.DB
}

// NewUserRepository creates a new PostgreSQL implementation of the UserRepository.
func NewUserRepository(db postgres.DB) *PostgresUserRepository {
	return &PostgresUserRepository{db: db}
}

func scanUser(row pgx.Row) (*User, error) {
	var (
		user         User
		role         string
		passwordHash *string
	)

	err := row.Scan(
		&user.ID,
		&user.Email,
		&user.Name,
		&user.Image,
		&passwordHash,
		&role,
		&user.EmailVerified,
		&user.LastLoginAt,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	user.Role = sec.UserRole(role)
	if passwordHash != nil {
		user.PasswordHash = *passwordHash
	}
	return &user, nil
}

// FindByID retrieves a user record by primary key.
func (repository *PostgresUserRepository) FindByID(context context.Context, id string) (*User, error) {
	query := selectUserQuery + ` WHERE ` + accountTable.ID + ` = $1`

	user, err := scanUser(repository.db.QueryRow(context, query, id))
	if err != nil {
		return nil, dberr.Wrap(err, "User", "postgres_user_find_by_id_failed")
	}
	return user, nil
}

/*
FindByEmail retrieves a user record by their unique email address.

Parameters:
  - context: context.Context
  - email: string (already normalized)

Returns:
  - *User: Hydrated account entity
  - error: apperr.NotFound or database errors
*/
func (repository *PostgresUserRepository) FindByEmail(context context.Context, email string) (*User, error) {
	query := selectUserQuery + ` WHERE ` + accountTable.Email + ` = $1`

	user, err := scanUser(repository.db.QueryRow(context, query, email))
	if err != nil {
		return nil, dberr.Wrap(err, "User", "postgres_user_find_by_email_failed")
	}
	return user, nil
}

/*
Create persists a new user record into the users.account table.

Returns:
  - error: apperr.Conflict when the email is already registered
*/
func (repository *PostgresUserRepository) Create(context context.Context, user *User) error {
	now := time.Now().UTC()
	if user.CreatedAt.IsZero() {
		user.CreatedAt = now
	}
	user.UpdatedAt = now

	var passwordHash *string
	if user.PasswordHash != "" {
		passwordHash = &user.PasswordHash
	}

	_, err := repository.db.Exec(context, insertUserQuery,
		user.ID,
		user.Email,
		user.Name,
		user.Image,
		passwordHash,
		string(user.Role),
		user.EmailVerified,
		user.CreatedAt,
		user.UpdatedAt,
	)

	if err != nil {
		if dberr.IsUniqueViolation(err) {
			return apperr.Conflict("An account with this email already exists")
		}
		return fmt.Errorf("postgres_user_create_failed: %w", err)
	}

	return nil
}

// UpdateProfile replaces the display name and avatar.
func (repository *PostgresUserRepository) UpdateProfile(context context.Context, userID, name string, image *string) error {
	query := fmt.Sprintf(`UPDATE %s SET %s = $2, %s = $3, %s = now() WHERE %s = $1`,
		accountTable.Table, accountTable.Name, accountTable.Image, accountTable.UpdatedAt, accountTable.ID)

	return repository.execOne(context, "postgres_user_update_profile_failed", query, userID, name, image)
}

// UpdatePassword replaces only the password hash.
func (repository *PostgresUserRepository) UpdatePassword(context context.Context, userID, newHash string) error {
	query := fmt.Sprintf(`UPDATE %s SET %s = $2, %s = now() WHERE %s = $1`,
		accountTable.Table, accountTable.Password, accountTable.UpdatedAt, accountTable.ID)

	return repository.execOne(context, "postgres_user_update_password_failed", query, userID, newHash)
}

// UpdateEmail applies a confirmed address change and marks it unverified.
func (repository *PostgresUserRepository) UpdateEmail(context context.Context, userID, email string) error {
	query := fmt.Sprintf(`UPDATE %s SET %s = $2, %s = false, %s = now() WHERE %s = $1`,
		accountTable.Table, accountTable.Email, accountTable.EmailVerified, accountTable.UpdatedAt, accountTable.ID)

	err := repository.execOne(context, "postgres_user_update_email_failed", query, userID, email)
	if dberr.IsUniqueViolation(err) {
		return apperr.Conflict("An account with this email already exists")
	}
	return err
}

// MarkVerified flags the current address as verified.
func (repository *PostgresUserRepository) MarkVerified(context context.Context, userID string) error {
	query := fmt.Sprintf(`UPDATE %s SET %s = true, %s = now() WHERE %s = $1`,
		accountTable.Table, accountTable.EmailVerified, accountTable.UpdatedAt, accountTable.ID)

	return repository.execOne(context, "postgres_user_mark_verified_failed", query, userID)
}

// TouchLastLogin records a successful sign-in.
func (repository *PostgresUserRepository) TouchLastLogin(context context.Context, userID string, at time.Time) error {
	query := fmt.Sprintf(`UPDATE %s SET %s = $2 WHERE %s = $1`,
		accountTable.Table, accountTable.LastLoginAt, accountTable.ID)

	return repository.execOne(context, "postgres_user_touch_login_failed", query, userID, at)
}

// execOne runs an UPDATE that must affect exactly one account row.
func (repository *PostgresUserRepository) execOne(context context.Context, action, query string, args ...any) error {
	tag, err := repository.db.Exec(context, query, args...)
	if err != nil {
		if dberr.IsUniqueViolation(err) {
			return err
		}
		return fmt.Errorf("%s: %w", action, err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("User")
	}
	return nil
}

// # Session Repository

var sessionTable = schema.UserSession

// PostgresSessionRepository implements [SessionRepository] using pgx.
type PostgresSessionRepository struct {
	db postgres.DB
}

// NewSessionRepository creates a new PostgreSQL implementation of the SessionRepository.
func NewSessionRepository(db postgres.DB) *PostgresSessionRepository {
	return &PostgresSessionRepository{db: db}
}

func scanSession(row pgx.Row) (*Session, error) {
	var item Session
	err := row.Scan(
		&item.ID,
		&item.UserID,
		&item.TokenHash,
		&item.IPAddress,
		&item.UserAgent,
		&item.Persistent,
		&item.IsRevoked,
		&item.ExpiresAt,
		&item.RevokedAt,
		&item.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &item, nil
}

// Create persists a new session.
func (repository *PostgresSessionRepository) Create(context context.Context, item *Session) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (%s, %s, %s, %s, %s, %s, %s, %s)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		sessionTable.Table, sessionTable.ID, sessionTable.UserID, sessionTable.TokenHash, sessionTable.IPAddress,
		sessionTable.UserAgent, sessionTable.Persistent, sessionTable.ExpiresAt, sessionTable.CreatedAt)

	if item.CreatedAt.IsZero() {
		item.CreatedAt = time.Now().UTC()
	}

	_, err := repository.db.Exec(context, query,
		item.ID,
		item.UserID,
		item.TokenHash,
		item.IPAddress,
		item.UserAgent,
		item.Persistent,
		item.ExpiresAt,
		item.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("postgres_session_create_failed: %w", err)
	}
	return nil
}

// FindByTokenHash returns the session for a token hash, active or not.
func (repository *PostgresSessionRepository) FindByTokenHash(context context.Context, tokenHash string) (*Session, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE %s = $1`, sessionTable.Select(), sessionTable.Table, sessionTable.TokenHash)

	item, err := scanSession(repository.db.QueryRow(context, query, tokenHash))
	if err != nil {
		return nil, dberr.Wrap(err, "Session", "postgres_session_find_failed")
	}
	return item, nil
}

// ListActive returns the user's live sessions, newest first.
func (repository *PostgresSessionRepository) ListActive(context context.Context, userID string) ([]*Session, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM %s
		WHERE %s = $1 AND %s = false AND %s > now()
		ORDER BY %s DESC`,
		sessionTable.Select(), sessionTable.Table,
		sessionTable.UserID, sessionTable.IsRevoked, sessionTable.ExpiresAt,
		sessionTable.CreatedAt)

	rows, err := repository.db.Query(context, query, userID)
	if err != nil {
		return nil, fmt.Errorf("postgres_session_list_failed: %w", err)
	}
	defer rows.Close()

	sessions := make([]*Session, 0)
	for rows.Next() {
		item, err := scanSession(rows)
		if err != nil {
			return nil, fmt.Errorf("postgres_session_scan_failed: %w", err)
		}
		sessions = append(sessions, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres_session_list_failed: %w", err)
	}
	return sessions, nil
}

// Revoke invalidates one active session owned by userID.
func (repository *PostgresSessionRepository) Revoke(context context.Context, userID, sessionID string) (string, error) {
	query := fmt.Sprintf(`
		UPDATE %s SET %s = true, %s = now()
		WHERE %s = $1 AND %s = $2 AND %s = false
		RETURNING %s`,
		sessionTable.Table, sessionTable.IsRevoked, sessionTable.RevokedAt,
		sessionTable.ID, sessionTable.UserID, sessionTable.IsRevoked,
		sessionTable.TokenHash)

	var tokenHash string
	if err := repository.db.QueryRow(context, query, sessionID, userID).Scan(&tokenHash); err != nil {
		return "", dberr.Wrap(err, "Session", "postgres_session_revoke_failed")
	}
	return tokenHash, nil
}

// RevokeAll revokes every active session of the user.
func (repository *PostgresSessionRepository) RevokeAll(context context.Context, userID string) ([]string, error) {
	return repository.revokeWhere(context, "", userID)
}

// RevokeOthers revokes every active session of the user except keepSessionID.
func (repository *PostgresSessionRepository) RevokeOthers(context context.Context, userID, keepSessionID string) ([]string, error) {
	return repository.revokeWhere(context, keepSessionID, userID)
}

func (repository *PostgresSessionRepository) revokeWhere(context context.Context, keepSessionID, userID string) ([]string, error) {
	query := fmt.Sprintf(`
		UPDATE %s SET %s = true, %s = now()
		WHERE %s = $1 AND %s = false AND %s::text <> $2
		RETURNING %s`,
		sessionTable.Table, sessionTable.IsRevoked, sessionTable.RevokedAt,
		sessionTable.UserID, sessionTable.IsRevoked, sessionTable.ID,
		sessionTable.TokenHash)

	// An empty keep ID matches no session, so every session is revoked.
	rows, err := repository.db.Query(context, query, userID, keepSessionID)
	if err != nil {
		return nil, fmt.Errorf("postgres_session_revoke_all_failed: %w", err)
	}
	defer rows.Close()

	hashes := make([]string, 0)
	for rows.Next() {
		var tokenHash string
		if err := rows.Scan(&tokenHash); err != nil {
			return nil, fmt.Errorf("postgres_session_revoke_scan_failed: %w", err)
		}
		hashes = append(hashes, tokenHash)
	}
	return hashes, rows.Err()
}

// DeleteExpired physically removes sessions whose ExpiresAt is in the past.
func (repository *PostgresSessionRepository) DeleteExpired(context context.Context) (int64, error) {
	query := fmt.Sprintf(`DELETE FROM %s WHERE %s < now()`, sessionTable.Table, sessionTable.ExpiresAt)

	tag, err := repository.db.Exec(context, query)
	if err != nil {
		return 0, fmt.Errorf("postgres_session_delete_expired_failed: %w", err)
	}
	return tag.RowsAffected(), nil
}

// # Identity Repository

var identityTable = schema.UserIdentity

// PostgresIdentityRepository implements [IdentityRepository] using pgx.
type PostgresIdentityRepository struct {
	db postgres.DB
}

// NewIdentityRepository creates a new PostgreSQL implementation of the IdentityRepository.
func NewIdentityRepository(db postgres.DB) *PostgresIdentityRepository {
	return &PostgresIdentityRepository{db: db}
}

// FindByProviderSubject returns the link for a provider account.
func (repository *PostgresIdentityRepository) FindByProviderSubject(context context.Context, provider, subject string) (*Identity, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE %s = $1 AND %s = $2`,
		identityTable.Select(), identityTable.Table, identityTable.Provider, identityTable.Subject)

	var item Identity
	err := repository.db.QueryRow(context, query, provider, subject).Scan(
		&item.ID,
		&item.UserID,
		&item.Provider,
		&item.Subject,
		&item.Email,
		&item.CreatedAt,
	)
	if err != nil {
		return nil, dberr.Wrap(err, "Identity", "postgres_identity_find_failed")
	}
	return &item, nil
}

// Create persists a new link.
func (repository *PostgresIdentityRepository) Create(context context.Context, item *Identity) error {
	query := fmt.Sprintf(`INSERT INTO %s (%s, %s, %s, %s, %s, %s) VALUES ($1, $2, $3, $4, $5, $6)`,
		identityTable.Table, identityTable.ID, identityTable.UserID, identityTable.Provider, identityTable.Subject, identityTable.Email, identityTable.CreatedAt)

	if item.CreatedAt.IsZero() {
		item.CreatedAt = time.Now().UTC()
	}

	_, err := repository.db.Exec(context, query, item.ID, item.UserID, item.Provider, item.Subject, item.Email, item.CreatedAt)
	if err != nil {
		if dberr.IsUniqueViolation(err) {
			return apperr.Conflict("This account is already linked")
		}
		return fmt.Errorf("postgres_identity_create_failed: %w", err)
	}
	return nil
}
