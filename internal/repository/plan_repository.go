package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"dentadmin/internal/models"
)

var ErrPlanNotFound = errors.New("subscription plan not found")

type PlanRepository struct {
	db DB
}

func NewPlanRepository(db DB) *PlanRepository {
	return &PlanRepository{db: db}
}

func (r *PlanRepository) List(ctx context.Context) ([]models.Plan, error) {
	const query = `
		SELECT id, name, cycle, price, max_success_responses, sort
		FROM subscription_plans
		ORDER BY sort, cycle
	`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var plans []models.Plan
	for rows.Next() {
		var plan models.Plan
		if err := rows.Scan(
			&plan.ID,
			&plan.Name,
			&plan.Cycle,
			&plan.Price,
			&plan.MaxSuccessResponses,
			&plan.Sort,
		); err != nil {
			return nil, err
		}
		plans = append(plans, plan)
	}
	return plans, rows.Err()
}

func (r *PlanRepository) GetByID(ctx context.Context, id int64) (models.Plan, error) {
	const query = `
		SELECT id, name, cycle, price, max_success_responses, sort
		FROM subscription_plans WHERE id = $1
	`

	row := r.db.QueryRow(ctx, query, id)
	var plan models.Plan
	if err := row.Scan(
		&plan.ID,
		&plan.Name,
		&plan.Cycle,
		&plan.Price,
		&plan.MaxSuccessResponses,
		&plan.Sort,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Plan{}, ErrPlanNotFound
		}
		return models.Plan{}, err
	}
	return plan, nil
}
