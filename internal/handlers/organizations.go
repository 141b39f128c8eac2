package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"dentadmin/internal/middleware"
	"dentadmin/internal/repository"
	"dentadmin/internal/service"
	"dentadmin/internal/wire"
)

type organizationResponse struct {
	OrganizationID        int64  `json:"organizationId"`
	OrganizationName      string `json:"organizationName"`
	PhoneNumber           string `json:"organizationPhoneNumber"`
	PlanID                int64  `json:"subscriptionPlanId"`
	PlanName              string `json:"subscriptionPlanName"`
	SubscriptionStartDate string `json:"subscriptionStartDate"`
	UsageResetDate        string `json:"usageResetDate"`
	SuccessCount          int64  `json:"successCount"`
}

func (h HandlerSet) MyOrganization(c *gin.Context) {
	admin, _ := middleware.CurrentAdmin(c)

	org, plan, err := h.orgService.MyOrganization(c.Request.Context(), admin)
	if err != nil {
		if errors.Is(err, service.ErrNoOrganization) {
			wire.Error(c, http.StatusNotFound, "no organization registered")
			return
		}
		h.log.Error().Err(err).Msg("organization lookup failed")
		wire.Error(c, http.StatusInternalServerError, "organization lookup failed")
		return
	}

	wire.OK(c, organizationResponse{
		OrganizationID:        org.ID,
		OrganizationName:      org.Name,
		PhoneNumber:           org.PhoneNumber,
		PlanID:                plan.ID,
		PlanName:              plan.Name,
		SubscriptionStartDate: org.SubscriptionStartDate.Format(time.RFC3339),
		UsageResetDate:        org.UsageResetDate.Format(time.RFC3339),
		SuccessCount:          org.SuccessCount,
	})
}

type updateOrganizationRequest struct {
	OrganizationName string `json:"organizationName" binding:"required"`
	PhoneNumber      string `json:"organizationPhoneNumber" binding:"required"`
}

func (h HandlerSet) UpdateOrganization(c *gin.Context) {
	orgID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		wire.Error(c, http.StatusBadRequest, "invalid organization id")
		return
	}

	admin, _ := middleware.CurrentAdmin(c)
	if !admin.IsSuper && (admin.OrganizationID == nil || *admin.OrganizationID != orgID) {
		wire.Error(c, http.StatusForbidden, "organization outside scope")
		return
	}

	var req updateOrganizationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		wire.Error(c, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.orgService.UpdateProfile(c.Request.Context(), orgID, req.OrganizationName, req.PhoneNumber); err != nil {
		if errors.Is(err, repository.ErrOrganizationNotFound) {
			wire.Error(c, http.StatusNotFound, "organization not found")
			return
		}
		h.log.Error().Err(err).Int64("organization_id", orgID).Msg("organization update failed")
		wire.Error(c, http.StatusInternalServerError, "organization update failed")
		return
	}

	wire.OK(c, nil)
}

type registerOrganizationRequest struct {
	OrganizationName string `json:"organizationName" binding:"required"`
	PhoneNumber      string `json:"organizationPhoneNumber" binding:"required"`
	PlanID           int64  `json:"subscriptionPlanId" binding:"required"`
}

func (h HandlerSet) RegisterOrganization(c *gin.Context) {
	admin, _ := middleware.CurrentAdmin(c)
	if admin.OrganizationID != nil {
		wire.Error(c, http.StatusConflict, "organization already registered")
		return
	}

	var req registerOrganizationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		wire.Error(c, http.StatusBadRequest, err.Error())
		return
	}

	created, err := h.orgService.Register(c.Request.Context(), admin.ID, service.RegisterOrganizationInput{
		Name:        req.OrganizationName,
		PhoneNumber: req.PhoneNumber,
		PlanID:      req.PlanID,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrDuplicateOrganization):
			wire.Error(c, http.StatusConflict, "organization name already in use")
		case errors.Is(err, repository.ErrPlanNotFound):
			wire.Error(c, http.StatusBadRequest, "unknown subscription plan")
		default:
			h.log.Error().Err(err).Msg("organization registration failed")
			wire.Error(c, http.StatusInternalServerError, "organization registration failed")
		}
		return
	}

	wire.OK(c, created)
}

func (h HandlerSet) CheckDuplicateOrganization(c *gin.Context) {
	name := c.Query("name")
	if name == "" {
		wire.Error(c, http.StatusBadRequest, "name required")
		return
	}

	duplicate, err := h.orgService.CheckDuplicate(c.Request.Context(), name)
	if err != nil {
		h.log.Error().Err(err).Msg("duplicate check failed")
		wire.Error(c, http.StatusInternalServerError, "duplicate check failed")
		return
	}

	wire.OK(c, gin.H{"duplicate": duplicate})
}

func (h HandlerSet) ListOrganizationSubscriptions(c *gin.Context) {
	subs, err := h.orgs.ListSubscriptions(c.Request.Context())
	if err != nil {
		h.log.Error().Err(err).Msg("organization subscription list failed")
		wire.Error(c, http.StatusInternalServerError, "organization subscription list failed")
		return
	}

	rows := make([]gin.H, 0, len(subs))
	for _, sub := range subs {
		rows = append(rows, gin.H{
			"organizationId":          sub.OrganizationID,
			"organizationName":        sub.OrganizationName,
			"organizationPhoneNumber": sub.PhoneNumber,
			"subscriptionPlanId":      sub.PlanID,
			"subscriptionPlanName":    sub.PlanName,
			"subscriptionStartDate":   sub.SubscriptionStartDate,
			"usageResetDate":          sub.UsageResetDate,
			"successCount":            sub.SuccessCount,
		})
	}

	wire.OK(c, rows)
}
