package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"dentadmin/internal/config"
	"dentadmin/internal/ids"
	"dentadmin/internal/models"
	"dentadmin/internal/repository"
	"dentadmin/internal/security"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUnknownUserType    = errors.New("unknown user type")
)

type AuthService struct {
	admins   *repository.AdminRepository
	users    *repository.UserRepository
	orgs     *repository.OrganizationRepository
	sessions *repository.SessionRepository
	cfg      *config.AppConfig
	log      zerolog.Logger
}

func NewAuthService(
	admins *repository.AdminRepository,
	users *repository.UserRepository,
	orgs *repository.OrganizationRepository,
	sessions *repository.SessionRepository,
	cfg *config.AppConfig,
	log zerolog.Logger,
) *AuthService {
	return &AuthService{
		admins:   admins,
		users:    users,
		orgs:     orgs,
		sessions: sessions,
		cfg:      cfg,
		log:      log,
	}
}

type LoginInput struct {
	UserType  string
	LoginID   string
	Password  string
	IPAddress string
	UserAgent string
}

// LoginResult carries everything the dashboard persists at login. The role is
// decided here, once, and never re-derived from storage strings.
type LoginResult struct {
	AccessToken      string
	RefreshToken     string
	IsFirstLogin     bool
	Admin            *models.Admin
	User             *models.User
	OrganizationID   *int64
	OrganizationName string
}

func (s *AuthService) Login(ctx context.Context, input LoginInput) (LoginResult, error) {
	input.LoginID = strings.TrimSpace(input.LoginID)

	switch models.PrincipalType(input.UserType) {
	case models.PrincipalAdmin:
		return s.loginAdmin(ctx, input)
	case models.PrincipalUser:
		return s.loginUser(ctx, input)
	default:
		return LoginResult{}, ErrUnknownUserType
	}
}

func (s *AuthService) loginAdmin(ctx context.Context, input LoginInput) (LoginResult, error) {
	admin, err := s.admins.FindByLoginID(ctx, input.LoginID)
	if err != nil {
		if errors.Is(err, repository.ErrAdminNotFound) {
			return LoginResult{}, ErrInvalidCredentials
		}
		return LoginResult{}, err
	}
	if !security.VerifyPassword(input.Password, admin.PasswordHash) {
		return LoginResult{}, ErrInvalidCredentials
	}

	role := "admin"
	if admin.IsSuper {
		role = "superadmin"
	}

	access, refresh, err := s.createSession(ctx, models.PrincipalAdmin, admin.ID, role, input)
	if err != nil {
		return LoginResult{}, err
	}

	result := LoginResult{
		AccessToken:  access,
		RefreshToken: refresh,
		IsFirstLogin: admin.FirstLogin,
		Admin:        &admin,
	}
	if admin.OrganizationID != nil {
		org, err := s.orgs.GetByID(ctx, *admin.OrganizationID)
		if err == nil {
			result.OrganizationID = &org.ID
			result.OrganizationName = org.Name
		} else {
			s.log.Warn().Err(err).Int64("admin_id", admin.ID).Msg("organization lookup failed on login")
		}
	}
	return result, nil
}

func (s *AuthService) loginUser(ctx context.Context, input LoginInput) (LoginResult, error) {
	user, err := s.users.FindByLoginID(ctx, input.LoginID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return LoginResult{}, ErrInvalidCredentials
		}
		return LoginResult{}, err
	}
	if !security.VerifyPassword(input.Password, user.PasswordHash) {
		return LoginResult{}, ErrInvalidCredentials
	}

	access, refresh, err := s.createSession(ctx, models.PrincipalUser, user.ID, "user", input)
	if err != nil {
		return LoginResult{}, err
	}

	return LoginResult{
		AccessToken:  access,
		RefreshToken: refresh,
		User:         &user,
	}, nil
}

func (s *AuthService) createSession(ctx context.Context, ptype models.PrincipalType, principalID int64, role string, input LoginInput) (string, string, error) {
	refreshToken, refreshHash, err := security.GenerateRefreshToken(64)
	if err != nil {
		return "", "", err
	}

	session := models.Session{
		ID:               ids.New(),
		PrincipalType:    ptype,
		PrincipalID:      principalID,
		RefreshTokenHash: refreshHash,
		IPAddress:        input.IPAddress,
		UserAgent:        input.UserAgent,
		ExpiresAt:        time.Now().Add(s.cfg.Security.RefreshTTL),
	}

	accessToken, err := security.GenerateAccessToken(
		s.cfg.Security.JWTAccessSecret,
		principalID,
		string(ptype),
		session.ID,
		role,
		s.cfg.Security.JWTAccessTTL,
	)
	if err != nil {
		return "", "", err
	}

	if err := s.sessions.Create(ctx, session); err != nil {
		return "", "", err
	}

	if err := s.enforceSessionLimit(ctx, ptype, principalID); err != nil {
		s.log.Warn().Err(err).Int64("principal_id", principalID).Msg("enforce session limit failed")
	}

	return accessToken, refreshToken, nil
}

func (s *AuthService) enforceSessionLimit(ctx context.Context, ptype models.PrincipalType, principalID int64) error {
	count, err := s.sessions.CountByPrincipal(ctx, ptype, principalID)
	if err != nil {
		return err
	}
	if count <= s.cfg.Security.MaxSessions {
		return nil
	}
	return s.sessions.DeleteOldest(ctx, ptype, principalID, s.cfg.Security.MaxSessions)
}

type RefreshInput struct {
	UserType     string
	PrincipalID  int64
	RefreshToken string
}

// Refresh rotates the refresh token and mints a fresh access token for the
// session that presented a valid one.
func (s *AuthService) Refresh(ctx context.Context, input RefreshInput) (LoginResult, error) {
	ptype := models.PrincipalType(input.UserType)
	if ptype != models.PrincipalAdmin && ptype != models.PrincipalUser {
		return LoginResult{}, ErrUnknownUserType
	}

	refreshHash := security.HashRefreshToken(input.RefreshToken)
	session, err := s.sessions.FindByRefreshHash(ctx, ptype, input.PrincipalID, refreshHash)
	if err != nil {
		return LoginResult{}, ErrInvalidCredentials
	}
	if session.ExpiresAt.Before(time.Now()) {
		_ = s.sessions.DeleteByID(ctx, session.ID)
		return LoginResult{}, ErrInvalidCredentials
	}

	role := "user"
	result := LoginResult{}
	if ptype == models.PrincipalAdmin {
		admin, err := s.admins.GetByID(ctx, input.PrincipalID)
		if err != nil {
			return LoginResult{}, ErrInvalidCredentials
		}
		role = "admin"
		if admin.IsSuper {
			role = "superadmin"
		}
		result.Admin = &admin
		result.IsFirstLogin = admin.FirstLogin
		if admin.OrganizationID != nil {
			org, err := s.orgs.GetByID(ctx, *admin.OrganizationID)
			if err == nil {
				result.OrganizationID = &org.ID
				result.OrganizationName = org.Name
			} else {
				s.log.Warn().Err(err).Int64("admin_id", admin.ID).Msg("organization lookup failed on refresh")
			}
		}
	} else {
		user, err := s.users.GetByID(ctx, input.PrincipalID)
		if err != nil {
			return LoginResult{}, ErrInvalidCredentials
		}
		result.User = &user
	}

	refreshToken, newHash, err := security.GenerateRefreshToken(64)
	if err != nil {
		return LoginResult{}, err
	}
	session.RefreshTokenHash = newHash
	session.ExpiresAt = time.Now().Add(s.cfg.Security.RefreshTTL)
	if err := s.sessions.Create(ctx, session); err != nil {
		return LoginResult{}, err
	}

	accessToken, err := security.GenerateAccessToken(
		s.cfg.Security.JWTAccessSecret,
		input.PrincipalID,
		string(ptype),
		session.ID,
		role,
		s.cfg.Security.JWTAccessTTL,
	)
	if err != nil {
		return LoginResult{}, err
	}

	result.AccessToken = accessToken
	result.RefreshToken = refreshToken
	return result, nil
}

func (s *AuthService) Logout(ctx context.Context, sessionID string) error {
	err := s.sessions.DeleteByID(ctx, sessionID)
	if errors.Is(err, repository.ErrSessionNotFound) {
		return nil
	}
	return err
}
