package repository

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"

	"dentadmin/internal/models"
)

var ErrOrganizationNotFound = errors.New("organization not found")

type OrganizationRepository struct {
	db DB
}

func NewOrganizationRepository(db DB) *OrganizationRepository {
	return &OrganizationRepository{db: db}
}

func (r *OrganizationRepository) Create(ctx context.Context, org models.Organization) (int64, error) {
	const query = `
		INSERT INTO organizations (
			name, phone_number, plan_id, subscription_start_date, usage_reset_date, success_count, created_at, updated_at
		) VALUES (
			$1, $2, $3, $4, $5, 0, NOW(), NOW()
		)
		RETURNING id
	`

	var id int64
	err := r.db.QueryRow(ctx, query,
		org.Name,
		org.PhoneNumber,
		org.PlanID,
		org.SubscriptionStartDate,
		org.UsageResetDate,
	).Scan(&id)
	return id, err
}

func (r *OrganizationRepository) GetByID(ctx context.Context, id int64) (models.Organization, error) {
	const query = `
		SELECT id, name, phone_number, plan_id, subscription_start_date, usage_reset_date, success_count, created_at, updated_at
		FROM organizations WHERE id = $1
	`

	row := r.db.QueryRow(ctx, query, id)
	return scanOrganization(row)
}

func (r *OrganizationRepository) UpdateProfile(ctx context.Context, id int64, name, phoneNumber string) error {
	const query = `
		UPDATE organizations SET name = $2, phone_number = $3, updated_at = NOW() WHERE id = $1
	`
	cmd, err := r.db.Exec(ctx, query, id, name, phoneNumber)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrOrganizationNotFound
	}
	return nil
}

func (r *OrganizationRepository) ExistsByName(ctx context.Context, name string) (bool, error) {
	const query = `SELECT EXISTS (SELECT 1 FROM organizations WHERE LOWER(name) = LOWER($1))`
	var exists bool
	err := r.db.QueryRow(ctx, query, name).Scan(&exists)
	return exists, err
}

// ChangePlan moves the organization to a new plan and restarts its billing
// window.
func (r *OrganizationRepository) ChangePlan(ctx context.Context, id int64, planID int64, start, reset time.Time) error {
	const query = `
		UPDATE organizations
		SET plan_id = $2, subscription_start_date = $3, usage_reset_date = $4, success_count = 0, updated_at = NOW()
		WHERE id = $1
	`
	cmd, err := r.db.Exec(ctx, query, id, planID, start, reset)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrOrganizationNotFound
	}
	return nil
}

func (r *OrganizationRepository) ListSubscriptions(ctx context.Context) ([]models.OrganizationSubscription, error) {
	const query = `
		SELECT o.id, o.name, o.phone_number, o.plan_id, p.name,
		       o.subscription_start_date, o.usage_reset_date, o.success_count
		FROM organizations o
		JOIN subscription_plans p ON p.id = o.plan_id
		ORDER BY o.id
	`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var subs []models.OrganizationSubscription
	for rows.Next() {
		var sub models.OrganizationSubscription
		if err := rows.Scan(
			&sub.OrganizationID,
			&sub.OrganizationName,
			&sub.PhoneNumber,
			&sub.PlanID,
			&sub.PlanName,
			&sub.SubscriptionStartDate,
			&sub.UsageResetDate,
			&sub.SuccessCount,
		); err != nil {
			return nil, err
		}
		subs = append(subs, sub)
	}
	return subs, rows.Err()
}

// ListDueForReset returns ids of organizations whose usage window has rolled
// over as of now.
func (r *OrganizationRepository) ListDueForReset(ctx context.Context, now time.Time) ([]int64, error) {
	const query = `SELECT id FROM organizations WHERE usage_reset_date <= $1`

	rows, err := r.db.Query(ctx, query, now)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (r *OrganizationRepository) ResetUsage(ctx context.Context, id int64, nextReset time.Time) error {
	const query = `
		UPDATE organizations
		SET success_count = 0, usage_reset_date = $2, updated_at = NOW()
		WHERE id = $1
	`
	_, err := r.db.Exec(ctx, query, id, nextReset)
	return err
}

func scanOrganization(row pgx.Row) (models.Organization, error) {
	var org models.Organization
	if err := row.Scan(
		&org.ID,
		&org.Name,
		&org.PhoneNumber,
		&org.PlanID,
		&org.SubscriptionStartDate,
		&org.UsageResetDate,
		&org.SuccessCount,
		&org.CreatedAt,
		&org.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Organization{}, ErrOrganizationNotFound
		}
		return models.Organization{}, err
	}
	return org, nil
}
