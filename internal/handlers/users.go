package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"dentadmin/internal/middleware"
	"dentadmin/internal/models"
	"dentadmin/internal/repository"
	"dentadmin/internal/wire"
)

var pageSizes = map[int]struct{}{10: {}, 50: {}, 100: {}}

type userRow struct {
	UserID                   int64    `json:"userId"`
	UserLoginIdentifier      string   `json:"userLoginIdentifier"`
	UserName                 string   `json:"userName"`
	UserGender               string   `json:"userGender"`
	OralStatus               *string  `json:"oralStatus"`
	OralStatusTitle          *string  `json:"oralStatusTitle"`
	OralCheckResultTotalType *string  `json:"oralCheckResultTotalType"`
	OralCheckDate            *string  `json:"oralCheckDate"`
	QuestionnaireType        *string  `json:"questionnaireType"`
	QuestionnaireDate        *string  `json:"questionnaireDate"`
	IsVerify                 string   `json:"isVerify"`
	ServiceNames             []string `json:"serviceNames"`
}

type userListResponse struct {
	UserList []userRow     `json:"userList"`
	Paging   models.Paging `json:"paging"`
}

func (h HandlerSet) ListUsers(c *gin.Context) {
	admin, _ := middleware.CurrentAdmin(c)

	filter := models.UserFilter{
		Keyword:       c.Query("keyword"),
		OralStatus:    c.Query("oralStatus"),
		Questionnaire: c.Query("questionnaireType"),
		Gender:        c.Query("gender"),
		Verify:        c.Query("verify"),
		Page:          1,
		Size:          50,
	}
	if !admin.IsSuper {
		filter.OrganizationID = admin.OrganizationID
	}

	if page, err := strconv.Atoi(c.Query("page")); err == nil && page > 0 {
		filter.Page = page
	}
	if size, err := strconv.Atoi(c.Query("size")); err == nil {
		if _, ok := pageSizes[size]; ok {
			filter.Size = size
		}
	}
	if start, ok := parseDate(c.Query("startDate")); ok {
		filter.StartDate = &start
	}
	if end, ok := parseDate(c.Query("endDate")); ok {
		// make the range inclusive of the whole end day
		end = end.AddDate(0, 0, 1).Add(-time.Nanosecond)
		filter.EndDate = &end
	}

	users, paging, err := h.users.List(c.Request.Context(), filter)
	if err != nil {
		h.log.Error().Err(err).Msg("user list failed")
		wire.Error(c, http.StatusInternalServerError, "user list failed")
		return
	}

	rows := make([]userRow, 0, len(users))
	for _, user := range users {
		rows = append(rows, userRow{
			UserID:                   user.ID,
			UserLoginIdentifier:      user.LoginID,
			UserName:                 user.Name,
			UserGender:               string(user.Gender),
			OralStatus:               user.OralStatus,
			OralStatusTitle:          user.OralStatusTitle,
			OralCheckResultTotalType: user.OralCheckResultTotalType,
			OralCheckDate:            formatDate(user.OralCheckDate),
			QuestionnaireType:        user.QuestionnaireType,
			QuestionnaireDate:        formatDate(user.QuestionnaireDate),
			IsVerify:                 yesNo(user.Verified),
			ServiceNames:             user.ServiceNames,
		})
	}

	wire.OK(c, userListResponse{UserList: rows, Paging: paging})
}

func (h HandlerSet) VerifyUser(c *gin.Context) {
	userID, err := strconv.ParseInt(c.Query("userId"), 10, 64)
	if err != nil {
		wire.Error(c, http.StatusBadRequest, "userId required")
		return
	}

	admin, _ := middleware.CurrentAdmin(c)
	if !admin.IsSuper {
		user, err := h.users.GetByID(c.Request.Context(), userID)
		if err != nil {
			wire.Error(c, http.StatusNotFound, "user not found")
			return
		}
		if admin.OrganizationID == nil || user.OrganizationID != *admin.OrganizationID {
			wire.Error(c, http.StatusForbidden, "user outside organization")
			return
		}
	}

	if err := h.users.SetVerified(c.Request.Context(), userID); err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			wire.Error(c, http.StatusNotFound, "user not found")
			return
		}
		h.log.Error().Err(err).Int64("user_id", userID).Msg("verify failed")
		wire.Error(c, http.StatusInternalServerError, "verify failed")
		return
	}

	wire.OK(c, nil)
}

func parseDate(value string) (time.Time, bool) {
	if value == "" {
		return time.Time{}, false
	}
	t, err := time.Parse("2006-01-02", value)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

func formatDate(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.Format("2006-01-02")
	return &s
}
