package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"dentadmin/internal/middleware"
	"dentadmin/internal/models"
	"dentadmin/internal/wire"
)

// StatisticMe returns the usage header for the admin's own organization.
func (h HandlerSet) StatisticMe(c *gin.Context) {
	admin, _ := middleware.CurrentAdmin(c)
	if admin.OrganizationID == nil {
		wire.Error(c, http.StatusNotFound, "no organization registered")
		return
	}

	snap, err := h.subscriptions.Snapshot(c.Request.Context(), *admin.OrganizationID)
	if err != nil {
		h.log.Error().Err(err).Msg("statistic me failed")
		wire.Error(c, http.StatusInternalServerError, "statistic lookup failed")
		return
	}

	wire.OK(c, snap)
}

func (h HandlerSet) StatisticOrgUsers(c *gin.Context) {
	admin, _ := middleware.CurrentAdmin(c)
	if admin.OrganizationID == nil {
		wire.Error(c, http.StatusNotFound, "no organization registered")
		return
	}

	var start, end *time.Time
	if t, ok := parseDate(c.Query("startDate")); ok {
		start = &t
	}
	if t, ok := parseDate(c.Query("endDate")); ok {
		t = t.AddDate(0, 0, 1).Add(-time.Nanosecond)
		end = &t
	}

	stat, err := h.usage.OrgStatistic(c.Request.Context(), *admin.OrganizationID, start, end)
	if err != nil {
		h.log.Error().Err(err).Msg("org user statistic failed")
		wire.Error(c, http.StatusInternalServerError, "statistic lookup failed")
		return
	}
	if stat.OralCheckStats == nil {
		stat.OralCheckStats = []models.OralCheckStat{}
	}

	wire.OK(c, stat)
}

func (h HandlerSet) StatisticAll(c *gin.Context) {
	stats, err := h.usage.AllOrgStatistics(c.Request.Context())
	if err != nil {
		h.log.Error().Err(err).Msg("all org statistic failed")
		wire.Error(c, http.StatusInternalServerError, "statistic lookup failed")
		return
	}

	if stats == nil {
		stats = []models.OrgStatistic{}
	}
	wire.OK(c, stats)
}

func (h HandlerSet) UserUsage(c *gin.Context) {
	admin, _ := middleware.CurrentAdmin(c)

	var scope *int64
	if !admin.IsSuper {
		if admin.OrganizationID == nil {
			wire.Error(c, http.StatusNotFound, "no organization registered")
			return
		}
		scope = admin.OrganizationID
	}

	usage, err := h.usage.ListUserUsage(c.Request.Context(), scope)
	if err != nil {
		h.log.Error().Err(err).Msg("user usage failed")
		wire.Error(c, http.StatusInternalServerError, "usage lookup failed")
		return
	}

	rows := make([]gin.H, 0, len(usage))
	for _, item := range usage {
		rows = append(rows, gin.H{
			"userId":           item.UserID,
			"userName":         item.UserName,
			"userPhoneNumber":  item.UserPhoneNumber,
			"organizationName": item.OrganizationName,
			"serviceName":      item.ServiceName,
			"successCount":     item.SuccessCount,
		})
	}

	wire.OK(c, rows)
}
