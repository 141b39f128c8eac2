package repository

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"

	"dentadmin/internal/models"
)

var ErrSessionNotFound = errors.New("session not found")

type SessionRepository struct {
	db DB
}

func NewSessionRepository(db DB) *SessionRepository {
	return &SessionRepository{db: db}
}

func (r *SessionRepository) Create(ctx context.Context, session models.Session) error {
	const query = `
		INSERT INTO sessions (
			id, principal_type, principal_id, refresh_token_hash, ip_address, user_agent, created_at, last_seen_at, expires_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, NOW(), NOW(), $7
		)
		ON CONFLICT (id)
		DO UPDATE SET
			refresh_token_hash = EXCLUDED.refresh_token_hash,
			ip_address = EXCLUDED.ip_address,
			user_agent = EXCLUDED.user_agent,
			last_seen_at = NOW(),
			expires_at = EXCLUDED.expires_at
	`

	_, err := r.db.Exec(ctx, query,
		session.ID,
		session.PrincipalType,
		session.PrincipalID,
		session.RefreshTokenHash,
		session.IPAddress,
		session.UserAgent,
		session.ExpiresAt,
	)
	return err
}

func (r *SessionRepository) GetByID(ctx context.Context, id string) (models.Session, error) {
	const query = `
		SELECT id, principal_type, principal_id, refresh_token_hash, ip_address, user_agent, created_at, last_seen_at, expires_at
		FROM sessions WHERE id = $1
	`

	row := r.db.QueryRow(ctx, query, id)
	return scanSession(row)
}

func (r *SessionRepository) FindByRefreshHash(ctx context.Context, principalType models.PrincipalType, principalID int64, refreshHash []byte) (models.Session, error) {
	const query = `
		SELECT id, principal_type, principal_id, refresh_token_hash, ip_address, user_agent, created_at, last_seen_at, expires_at
		FROM sessions
		WHERE principal_type = $1 AND principal_id = $2 AND refresh_token_hash = $3
	`

	row := r.db.QueryRow(ctx, query, principalType, principalID, refreshHash)
	return scanSession(row)
}

func (r *SessionRepository) DeleteByID(ctx context.Context, id string) error {
	const query = `DELETE FROM sessions WHERE id = $1`
	cmd, err := r.db.Exec(ctx, query, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrSessionNotFound
	}
	return nil
}

func (r *SessionRepository) CountByPrincipal(ctx context.Context, principalType models.PrincipalType, principalID int64) (int, error) {
	const query = `SELECT COUNT(*) FROM sessions WHERE principal_type = $1 AND principal_id = $2`
	var count int
	err := r.db.QueryRow(ctx, query, principalType, principalID).Scan(&count)
	return count, err
}

func (r *SessionRepository) DeleteOldest(ctx context.Context, principalType models.PrincipalType, principalID int64, keepLatest int) error {
	const query = `
		DELETE FROM sessions
		WHERE id IN (
			SELECT id FROM sessions
			WHERE principal_type = $1 AND principal_id = $2
			ORDER BY last_seen_at DESC
			OFFSET $3
		)
	`
	_, err := r.db.Exec(ctx, query, principalType, principalID, keepLatest)
	return err
}

func (r *SessionRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	const query = `DELETE FROM sessions WHERE expires_at <= $1`
	cmd, err := r.db.Exec(ctx, query, now)
	if err != nil {
		return 0, err
	}
	return cmd.RowsAffected(), nil
}

func (r *SessionRepository) Touch(ctx context.Context, id string, ip string, userAgent string) error {
	const query = `
		UPDATE sessions
		SET last_seen_at = NOW(),
		    ip_address = COALESCE(NULLIF($2, ''), ip_address),
		    user_agent = COALESCE(NULLIF($3, ''), user_agent)
		WHERE id = $1
	`
	_, err := r.db.Exec(ctx, query, id, ip, userAgent)
	return err
}

func scanSession(row pgx.Row) (models.Session, error) {
	var session models.Session
	if err := row.Scan(
		&session.ID,
		&session.PrincipalType,
		&session.PrincipalID,
		&session.RefreshTokenHash,
		&session.IPAddress,
		&session.UserAgent,
		&session.CreatedAt,
		&session.LastSeenAt,
		&session.ExpiresAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Session{}, ErrSessionNotFound
		}
		return models.Session{}, err
	}
	return session, nil
}
