package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"dentadmin/internal/middleware"
	"dentadmin/internal/security"
	"dentadmin/internal/service"
	"dentadmin/internal/wire"
)

type loginRequest struct {
	UserType string `json:"userType" binding:"required,oneof=admin user"`
	LoginID  string `json:"loginId" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type loginResponse struct {
	AccessToken      string `json:"accessToken"`
	RefreshToken     string `json:"refreshToken"`
	IsFirstLogin     string `json:"isFirstLogin"`
	AdminID          *int64 `json:"adminId,omitempty"`
	AdminName        string `json:"adminName,omitempty"`
	AdminIsSuper     *bool  `json:"adminIsSuper,omitempty"`
	UserID           *int64 `json:"userId,omitempty"`
	UserName         string `json:"userName,omitempty"`
	OrganizationID   *int64 `json:"organizationId,omitempty"`
	OrganizationName string `json:"organizationName,omitempty"`
}

func (h HandlerSet) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		wire.Error(c, http.StatusBadRequest, err.Error())
		return
	}

	result, err := h.authService.Login(c.Request.Context(), service.LoginInput{
		UserType:  req.UserType,
		LoginID:   req.LoginID,
		Password:  req.Password,
		IPAddress: c.ClientIP(),
		UserAgent: c.GetHeader("User-Agent"),
	})
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			wire.Error(c, http.StatusUnauthorized, "invalid login id or password")
			return
		}
		if errors.Is(err, service.ErrUnknownUserType) {
			wire.Error(c, http.StatusBadRequest, "unknown user type")
			return
		}
		h.log.Error().Err(err).Msg("login failed")
		wire.Error(c, http.StatusInternalServerError, "login failed")
		return
	}

	wire.OK(c, buildLoginResponse(result))
}

type refreshRequest struct {
	UserType     string `json:"userType" binding:"required,oneof=admin user"`
	PrincipalID  int64  `json:"principalId" binding:"required"`
	RefreshToken string `json:"refreshToken" binding:"required"`
}

func (h HandlerSet) Refresh(c *gin.Context) {
	var req refreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		wire.Error(c, http.StatusBadRequest, err.Error())
		return
	}

	result, err := h.authService.Refresh(c.Request.Context(), service.RefreshInput{
		UserType:     req.UserType,
		PrincipalID:  req.PrincipalID,
		RefreshToken: req.RefreshToken,
	})
	if err != nil {
		wire.Error(c, http.StatusUnauthorized, "invalid refresh token")
		return
	}

	wire.OK(c, buildLoginResponse(result))
}

func (h HandlerSet) Logout(c *gin.Context) {
	claimsVal, _ := c.Get(middleware.CtxClaims)
	claims, ok := claimsVal.(security.AccessClaims)
	if !ok {
		wire.Error(c, http.StatusUnauthorized, "unauthorized")
		return
	}

	if err := h.authService.Logout(c.Request.Context(), claims.SessionID); err != nil {
		h.log.Error().Err(err).Msg("logout failed")
		wire.Error(c, http.StatusInternalServerError, "logout failed")
		return
	}

	wire.OK(c, nil)
}

func buildLoginResponse(result service.LoginResult) loginResponse {
	resp := loginResponse{
		AccessToken:      result.AccessToken,
		RefreshToken:     result.RefreshToken,
		IsFirstLogin:     yesNo(result.IsFirstLogin),
		OrganizationID:   result.OrganizationID,
		OrganizationName: result.OrganizationName,
	}
	if result.Admin != nil {
		resp.AdminID = &result.Admin.ID
		resp.AdminName = result.Admin.Name
		resp.AdminIsSuper = &result.Admin.IsSuper
	}
	if result.User != nil {
		resp.UserID = &result.User.ID
		resp.UserName = result.User.Name
	}
	return resp
}

func yesNo(v bool) string {
	if v {
		return "Y"
	}
	return "N"
}
