package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"dentadmin/internal/config"
	"dentadmin/internal/middleware"
	"dentadmin/internal/repository"
	"dentadmin/internal/service"
)

type HandlerSet struct {
	log           zerolog.Logger
	cfg           *config.AppConfig
	authService   *service.AuthService
	orgService    *service.OrganizationService
	subscriptions *service.SubscriptionService
	db            *pgxpool.Pool
	cache         *redis.Client
	admins        *repository.AdminRepository
	users         *repository.UserRepository
	orgs          *repository.OrganizationRepository
	plans         *repository.PlanRepository
	sessions      *repository.SessionRepository
	usage         *repository.UsageRepository
}

func NewHandlerSet(log zerolog.Logger, db *pgxpool.Pool, cache *redis.Client, cfg *config.AppConfig) HandlerSet {
	adminRepo := repository.NewAdminRepository(db)
	userRepo := repository.NewUserRepository(db)
	orgRepo := repository.NewOrganizationRepository(db)
	planRepo := repository.NewPlanRepository(db)
	sessionRepo := repository.NewSessionRepository(db)
	usageRepo := repository.NewUsageRepository(db)

	auth := service.NewAuthService(adminRepo, userRepo, orgRepo, sessionRepo, cfg, log)
	orgs := service.NewOrganizationService(orgRepo, adminRepo, planRepo, log)
	subs := service.NewSubscriptionService(orgRepo, planRepo, cache, cfg, log)

	return HandlerSet{
		log:           log,
		cfg:           cfg,
		authService:   auth,
		orgService:    orgs,
		subscriptions: subs,
		db:            db,
		cache:         cache,
		admins:        adminRepo,
		users:         userRepo,
		orgs:          orgRepo,
		plans:         planRepo,
		sessions:      sessionRepo,
		usage:         usageRepo,
	}
}

func (h HandlerSet) Register(router *gin.Engine) {
	router.GET("/healthz", h.Health)

	router.POST("/login", h.Login)
	router.POST("/auth/refresh", h.Refresh)

	authed := router.Group("")
	authed.Use(middleware.Auth(h.cfg, h.admins, h.users, h.sessions))
	authed.POST("/logout", h.Logout)

	admin := authed.Group("")
	admin.Use(middleware.RequireAdmin())
	{
		admin.GET("/admin/user", h.ListUsers)
		admin.PUT("/admin/user/verify", h.VerifyUser)

		admin.GET("/admin/organization/my", h.MyOrganization)
		admin.PUT("/organization/:id", h.UpdateOrganization)
		admin.POST("/organizations", h.RegisterOrganization)
		admin.GET("/organizations/check-duplicate", h.CheckDuplicateOrganization)

		admin.GET("/admin/subscriptions/all", h.ListPlans)
		admin.GET("/subscription/info/all", h.ListPlans)
		admin.GET("/subscription/info", h.SubscriptionInfo)
		admin.PUT("/admin/subscriptions/organization/:orgId/:planId", h.ChangePlan)
		// legacy aliases from the first dashboard iteration
		admin.PUT("/organizations/:orgId/subscription/:planId", h.ChangePlan)
		admin.POST("/organizations/:orgId/subscription/:planId", h.ChangePlan)

		admin.GET("/admin/statistic/me", h.StatisticMe)
		admin.GET("/admin/statistic/org/users", h.StatisticOrgUsers)
		admin.GET("/admin/users/usage", h.UserUsage)
	}

	super := authed.Group("")
	super.Use(middleware.RequireSuper())
	{
		super.GET("/admin/statistic/all", h.StatisticAll)
		super.GET("/admin/organization/usage", h.OrganizationUsage)
		super.GET("/admin/organization/organization", h.ListOrganizationSubscriptions)
	}
}
