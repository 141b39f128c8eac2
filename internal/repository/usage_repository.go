package repository

import (
	"context"
	"time"

	"dentadmin/internal/models"
)

// UsageRepository serves the statistics and usage-metering reads. Everything
// here is aggregate SQL; the handlers shape the rows into wire responses.
type UsageRepository struct {
	db DB
}

func NewUsageRepository(db DB) *UsageRepository {
	return &UsageRepository{db: db}
}

// ListUserUsage returns per-user, per-service success counts. A nil
// organization scope means all organizations.
func (r *UsageRepository) ListUserUsage(ctx context.Context, organizationID *int64) ([]models.ServiceUsage, error) {
	const query = `
		SELECT u.id, u.name, u.phone_number, o.name, su.service_name, su.success_count
		FROM service_usage su
		JOIN users u ON u.id = su.user_id
		JOIN organizations o ON o.id = u.organization_id
		WHERE $1::BIGINT IS NULL OR u.organization_id = $1
		ORDER BY su.success_count DESC, u.id
	`

	rows, err := r.db.Query(ctx, query, organizationID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var usage []models.ServiceUsage
	for rows.Next() {
		var item models.ServiceUsage
		if err := rows.Scan(
			&item.UserID,
			&item.UserName,
			&item.UserPhoneNumber,
			&item.OrganizationName,
			&item.ServiceName,
			&item.SuccessCount,
		); err != nil {
			return nil, err
		}
		usage = append(usage, item)
	}
	return usage, rows.Err()
}

// OrgStatistic aggregates user counts for one organization over an optional
// questionnaire date range, plus per-questionnaire-type oral check outcomes.
func (r *UsageRepository) OrgStatistic(ctx context.Context, organizationID int64, start, end *time.Time) (models.OrgStatistic, error) {
	const totals = `
		SELECT o.id, o.name,
		       COUNT(u.id),
		       COUNT(u.id) FILTER (WHERE u.gender = 'M'),
		       COUNT(u.id) FILTER (WHERE u.gender = 'W'),
		       COUNT(u.id) FILTER (WHERE u.created_at >= NOW() - INTERVAL '30 days')
		FROM organizations o
		LEFT JOIN users u ON u.organization_id = o.id
			AND ($2::TIMESTAMPTZ IS NULL OR u.questionnaire_date >= $2)
			AND ($3::TIMESTAMPTZ IS NULL OR u.questionnaire_date <= $3)
		WHERE o.id = $1
		GROUP BY o.id, o.name
	`

	var stat models.OrgStatistic
	if err := r.db.QueryRow(ctx, totals, organizationID, start, end).Scan(
		&stat.OrganizationID,
		&stat.OrganizationName,
		&stat.TotalUsers,
		&stat.MaleUsers,
		&stat.FemaleUsers,
		&stat.NewUsers,
	); err != nil {
		return models.OrgStatistic{}, err
	}

	const checks = `
		SELECT questionnaire_type,
		       COUNT(*),
		       COUNT(*) FILTER (WHERE oral_check_result_total_type = 'HEALTHY'),
		       COUNT(*) FILTER (WHERE oral_check_result_total_type = 'GOOD'),
		       COUNT(*) FILTER (WHERE oral_check_result_total_type = 'ATTENTION'),
		       COUNT(*) FILTER (WHERE oral_check_result_total_type = 'DANGER')
		FROM users
		WHERE organization_id = $1 AND questionnaire_type IS NOT NULL
			AND ($2::TIMESTAMPTZ IS NULL OR questionnaire_date >= $2)
			AND ($3::TIMESTAMPTZ IS NULL OR questionnaire_date <= $3)
		GROUP BY questionnaire_type
		ORDER BY questionnaire_type
	`

	rows, err := r.db.Query(ctx, checks, organizationID, start, end)
	if err != nil {
		return models.OrgStatistic{}, err
	}
	defer rows.Close()

	for rows.Next() {
		var check models.OralCheckStat
		if err := rows.Scan(
			&check.OralCheckResultType,
			&check.Count,
			&check.CountHealthy,
			&check.CountGood,
			&check.CountAttention,
			&check.CountDanger,
		); err != nil {
			return models.OrgStatistic{}, err
		}
		stat.OralCheckStats = append(stat.OralCheckStats, check)
	}
	return stat, rows.Err()
}

// AllOrgStatistics returns the per-organization user totals for the
// super-admin statistics view.
func (r *UsageRepository) AllOrgStatistics(ctx context.Context) ([]models.OrgStatistic, error) {
	const query = `
		SELECT o.id, o.name,
		       COUNT(u.id),
		       COUNT(u.id) FILTER (WHERE u.gender = 'M'),
		       COUNT(u.id) FILTER (WHERE u.gender = 'W'),
		       COUNT(u.id) FILTER (WHERE u.created_at >= NOW() - INTERVAL '30 days')
		FROM organizations o
		LEFT JOIN users u ON u.organization_id = o.id
		GROUP BY o.id, o.name
		ORDER BY o.id
	`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var stats []models.OrgStatistic
	for rows.Next() {
		var stat models.OrgStatistic
		if err := rows.Scan(
			&stat.OrganizationID,
			&stat.OrganizationName,
			&stat.TotalUsers,
			&stat.MaleUsers,
			&stat.FemaleUsers,
			&stat.NewUsers,
		); err != nil {
			return nil, err
		}
		stats = append(stats, stat)
	}
	return stats, rows.Err()
}
