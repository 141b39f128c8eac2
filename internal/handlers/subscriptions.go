package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"dentadmin/internal/middleware"
	"dentadmin/internal/models"
	"dentadmin/internal/repository"
	"dentadmin/internal/service"
	"dentadmin/internal/wire"
)

type planResponse struct {
	ID                  int64  `json:"id"`
	PlanName            string `json:"planName"`
	PlanCycle           string `json:"planCycle"`
	Price               int64  `json:"price"`
	MaxSuccessResponses int64  `json:"maxSuccessResponses"`
	PlanSort            int    `json:"planSort"`
}

func (h HandlerSet) ListPlans(c *gin.Context) {
	plans, err := h.subscriptions.Plans(c.Request.Context())
	if err != nil {
		h.log.Error().Err(err).Msg("plan list failed")
		wire.Error(c, http.StatusInternalServerError, "plan list failed")
		return
	}

	rows := make([]planResponse, 0, len(plans))
	for _, plan := range plans {
		rows = append(rows, planResponse{
			ID:                  plan.ID,
			PlanName:            plan.Name,
			PlanCycle:           string(plan.Cycle),
			Price:               plan.Price,
			MaxSuccessResponses: plan.MaxSuccessResponses,
			PlanSort:            plan.Sort,
		})
	}

	wire.OK(c, rows)
}

func (h HandlerSet) SubscriptionInfo(c *gin.Context) {
	admin, _ := middleware.CurrentAdmin(c)
	if admin.OrganizationID == nil {
		wire.Error(c, http.StatusNotFound, "no organization registered")
		return
	}

	snap, err := h.subscriptions.Snapshot(c.Request.Context(), *admin.OrganizationID)
	if err != nil {
		h.log.Error().Err(err).Msg("usage snapshot failed")
		wire.Error(c, http.StatusInternalServerError, "usage snapshot failed")
		return
	}

	wire.OK(c, snap)
}

func (h HandlerSet) ChangePlan(c *gin.Context) {
	orgID, err := strconv.ParseInt(c.Param("orgId"), 10, 64)
	if err != nil {
		wire.Error(c, http.StatusBadRequest, "invalid organization id")
		return
	}
	planID, err := strconv.ParseInt(c.Param("planId"), 10, 64)
	if err != nil {
		wire.Error(c, http.StatusBadRequest, "invalid plan id")
		return
	}

	admin, _ := middleware.CurrentAdmin(c)
	if !admin.IsSuper && (admin.OrganizationID == nil || *admin.OrganizationID != orgID) {
		wire.Error(c, http.StatusForbidden, "organization outside scope")
		return
	}

	if err := h.subscriptions.ChangePlan(c.Request.Context(), orgID, planID); err != nil {
		switch {
		case errors.Is(err, service.ErrPlanUnchanged):
			wire.Error(c, http.StatusConflict, "plan already active")
		case errors.Is(err, repository.ErrOrganizationNotFound):
			wire.Error(c, http.StatusNotFound, "organization not found")
		case errors.Is(err, repository.ErrPlanNotFound):
			wire.Error(c, http.StatusNotFound, "subscription plan not found")
		default:
			h.log.Error().Err(err).Int64("organization_id", orgID).Msg("plan change failed")
			wire.Error(c, http.StatusInternalServerError, "plan change failed")
		}
		return
	}

	wire.OK(c, nil)
}

func (h HandlerSet) OrganizationUsage(c *gin.Context) {
	snaps, err := h.subscriptions.OrganizationUsage(c.Request.Context())
	if err != nil {
		h.log.Error().Err(err).Msg("organization usage failed")
		wire.Error(c, http.StatusInternalServerError, "organization usage failed")
		return
	}

	if snaps == nil {
		snaps = []models.UsageSnapshot{}
	}
	wire.OK(c, snaps)
}
