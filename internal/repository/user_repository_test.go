package repository

import (
	"context"
	"testing"
	"time"

	"github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dentadmin/internal/models"
)

func newMockPool(t *testing.T) pgxmock.PgxPoolIface {
	t.Helper()
	mock, err := pgxmock.NewPool(pgxmock.QueryMatcherOption(pgxmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(mock.Close)
	return mock
}

func userRow(mock pgxmock.PgxPoolIface, id int64, loginID string, verified bool) *pgxmock.Rows {
	now := time.Now()
	return mock.NewRows([]string{
		"id", "login_id", "password_hash", "name", "phone_number", "gender", "organization_id",
		"oral_status", "oral_status_title", "oral_check_result_total_type", "oral_check_date",
		"questionnaire_type", "questionnaire_date", "verified", "service_names",
		"created_at", "updated_at",
	}).AddRow(
		id, loginID, []byte("$2a$12$hash"), "Test User", "010-0000-0000", models.GenderMale, int64(1),
		(*string)(nil), (*string)(nil), (*string)(nil), (*time.Time)(nil),
		(*string)(nil), (*time.Time)(nil), verified, []string{"oral-check"},
		now, now,
	)
}

func TestUserRepositoryList_FilterAndPaging(t *testing.T) {
	mock := newMockPool(t)
	repo := NewUserRepository(mock)

	orgID := int64(7)
	filter := models.UserFilter{
		OrganizationID: &orgID,
		Keyword:        "kim",
		Verify:         "N",
		Page:           2,
		Size:           10,
	}

	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM users WHERE organization_id = \$1 AND \(login_id ILIKE \$2 OR name ILIKE \$2\) AND verified = FALSE`).
		WithArgs(orgID, "%kim%").
		WillReturnRows(mock.NewRows([]string{"count"}).AddRow(int64(25)))

	mock.ExpectQuery(`(?s)SELECT .+ FROM users WHERE organization_id = \$1 .+ ORDER BY id DESC LIMIT \$3 OFFSET \$4`).
		WithArgs(orgID, "%kim%", 10, 10).
		WillReturnRows(userRow(mock, 11, "kim.user", false))

	users, paging, err := repo.List(context.Background(), filter)

	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Equal(t, int64(11), users[0].ID)
	assert.Equal(t, "kim.user", users[0].LoginID)
	assert.False(t, users[0].Verified)
	assert.Equal(t, models.Paging{Number: 2, TotalPages: 3, TotalElements: 25}, paging)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepositoryList_PageBeyondEndClamps(t *testing.T) {
	mock := newMockPool(t)
	repo := NewUserRepository(mock)

	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM users`).
		WillReturnRows(mock.NewRows([]string{"count"}).AddRow(int64(5)))

	// Page 9 of a single-page result clamps to page 1, offset 0.
	mock.ExpectQuery(`(?s)SELECT .+ FROM users ORDER BY id DESC LIMIT \$1 OFFSET \$2`).
		WithArgs(10, 0).
		WillReturnRows(userRow(mock, 1, "only.user", true))

	_, paging, err := repo.List(context.Background(), models.UserFilter{Page: 9, Size: 10})

	require.NoError(t, err)
	assert.Equal(t, 1, paging.Number)
	assert.Equal(t, 1, paging.TotalPages)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepositorySetVerified(t *testing.T) {
	mock := newMockPool(t)
	repo := NewUserRepository(mock)

	mock.ExpectExec(`UPDATE users SET verified = TRUE`).
		WithArgs(int64(3)).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mock.ExpectQuery(`SELECT EXISTS`).
		WithArgs(int64(3)).
		WillReturnRows(mock.NewRows([]string{"exists"}).AddRow(true))

	assert.NoError(t, repo.SetVerified(context.Background(), 3))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepositorySetVerified_Missing(t *testing.T) {
	mock := newMockPool(t)
	repo := NewUserRepository(mock)

	mock.ExpectExec(`UPDATE users SET verified = TRUE`).
		WithArgs(int64(99)).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))
	mock.ExpectQuery(`SELECT EXISTS`).
		WithArgs(int64(99)).
		WillReturnRows(mock.NewRows([]string{"exists"}).AddRow(false))

	err := repo.SetVerified(context.Background(), 99)

	assert.ErrorIs(t, err, ErrUserNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBuildPaging(t *testing.T) {
	cases := []struct {
		name  string
		page  int
		size  int
		total int64
		want  models.Paging
	}{
		{"empty result is one page", 1, 10, 0, models.Paging{Number: 1, TotalPages: 1, TotalElements: 0}},
		{"exact boundary", 2, 10, 20, models.Paging{Number: 2, TotalPages: 2, TotalElements: 20}},
		{"partial last page", 3, 10, 21, models.Paging{Number: 3, TotalPages: 3, TotalElements: 21}},
		{"page clamped to last", 9, 10, 21, models.Paging{Number: 3, TotalPages: 3, TotalElements: 21}},
		{"page clamped to first", 0, 10, 21, models.Paging{Number: 1, TotalPages: 3, TotalElements: 21}},
		{"zero size defaults", 1, 0, 60, models.Paging{Number: 1, TotalPages: 2, TotalElements: 60}},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, BuildPaging(tc.page, tc.size, tc.total))
		})
	}
}
