package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"dentadmin/internal/models"
)

var ErrUserNotFound = errors.New("user not found")

type UserRepository struct {
	db DB
}

func NewUserRepository(db DB) *UserRepository {
	return &UserRepository{db: db}
}

const userColumns = `
	id, login_id, password_hash, name, phone_number, gender, organization_id,
	oral_status, oral_status_title, oral_check_result_total_type, oral_check_date,
	questionnaire_type, questionnaire_date, verified, service_names,
	created_at, updated_at
`

func (r *UserRepository) FindByLoginID(ctx context.Context, loginID string) (models.User, error) {
	query := `SELECT` + userColumns + `FROM users WHERE login_id = $1`

	row := r.db.QueryRow(ctx, query, loginID)
	return scanUser(row)
}

func (r *UserRepository) GetByID(ctx context.Context, id int64) (models.User, error) {
	query := `SELECT` + userColumns + `FROM users WHERE id = $1`

	row := r.db.QueryRow(ctx, query, id)
	return scanUser(row)
}

// List runs the filtered, paginated user search. Paging is computed here so
// clients never derive their own page math.
func (r *UserRepository) List(ctx context.Context, filter models.UserFilter) ([]models.User, models.Paging, error) {
	where, args := buildUserFilter(filter)

	countQuery := `SELECT COUNT(*) FROM users` + where
	var total int64
	if err := r.db.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, models.Paging{}, fmt.Errorf("count users: %w", err)
	}

	size := filter.Size
	if size <= 0 {
		size = 50
	}
	paging := BuildPaging(filter.Page, size, total)

	listQuery := fmt.Sprintf(
		`SELECT%sFROM users%s ORDER BY id DESC LIMIT $%d OFFSET $%d`,
		userColumns, where, len(args)+1, len(args)+2,
	)
	args = append(args, size, (paging.Number-1)*size)

	rows, err := r.db.Query(ctx, listQuery, args...)
	if err != nil {
		return nil, models.Paging{}, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	var users []models.User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, models.Paging{}, err
		}
		users = append(users, user)
	}
	return users, paging, rows.Err()
}

// SetVerified marks the user verified. Re-verifying an already verified user
// succeeds without touching the row again.
func (r *UserRepository) SetVerified(ctx context.Context, id int64) error {
	const query = `
		UPDATE users SET verified = TRUE, updated_at = NOW()
		WHERE id = $1 AND verified = FALSE
	`
	if _, err := r.db.Exec(ctx, query, id); err != nil {
		return err
	}

	const exists = `SELECT EXISTS (SELECT 1 FROM users WHERE id = $1)`
	var found bool
	if err := r.db.QueryRow(ctx, exists, id).Scan(&found); err != nil {
		return err
	}
	if !found {
		return ErrUserNotFound
	}
	return nil
}

func buildUserFilter(filter models.UserFilter) (string, []any) {
	var (
		clauses []string
		args    []any
	)

	add := func(clause string, value any) {
		args = append(args, value)
		clauses = append(clauses, fmt.Sprintf(clause, len(args)))
	}

	if filter.OrganizationID != nil {
		add("organization_id = $%d", *filter.OrganizationID)
	}
	if filter.Keyword != "" {
		args = append(args, "%"+filter.Keyword+"%")
		n := len(args)
		clauses = append(clauses, fmt.Sprintf("(login_id ILIKE $%d OR name ILIKE $%d)", n, n))
	}
	if filter.OralStatus != "" {
		add("oral_status = $%d", filter.OralStatus)
	}
	if filter.Questionnaire != "" {
		add("questionnaire_type = $%d", filter.Questionnaire)
	}
	if filter.Gender != "" {
		add("gender = $%d", filter.Gender)
	}
	if filter.Verify == "Y" {
		clauses = append(clauses, "verified = TRUE")
	} else if filter.Verify == "N" {
		clauses = append(clauses, "verified = FALSE")
	}
	if filter.StartDate != nil {
		add("questionnaire_date >= $%d", *filter.StartDate)
	}
	if filter.EndDate != nil {
		add("questionnaire_date <= $%d", *filter.EndDate)
	}

	if len(clauses) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(clauses, " AND "), args
}

// BuildPaging normalizes a 1-based page against the element count. The page is
// clamped into [1, totalPages] so an out-of-range request returns the nearest
// valid page instead of an empty one.
func BuildPaging(page, size int, total int64) models.Paging {
	if size <= 0 {
		size = 50
	}
	totalPages := int((total + int64(size) - 1) / int64(size))
	if totalPages < 1 {
		totalPages = 1
	}
	if page < 1 {
		page = 1
	}
	if page > totalPages {
		page = totalPages
	}
	return models.Paging{Number: page, TotalPages: totalPages, TotalElements: total}
}

func scanUser(row pgx.Row) (models.User, error) {
	var user models.User
	if err := row.Scan(
		&user.ID,
		&user.LoginID,
		&user.PasswordHash,
		&user.Name,
		&user.PhoneNumber,
		&user.Gender,
		&user.OrganizationID,
		&user.OralStatus,
		&user.OralStatusTitle,
		&user.OralCheckResultTotalType,
		&user.OralCheckDate,
		&user.QuestionnaireType,
		&user.QuestionnaireDate,
		&user.Verified,
		&user.ServiceNames,
		&user.CreatedAt,
		&user.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.User{}, ErrUserNotFound
		}
		return models.User{}, err
	}
	return user, nil
}
