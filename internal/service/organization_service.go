package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"dentadmin/internal/models"
	"dentadmin/internal/repository"
)

var (
	ErrDuplicateOrganization = errors.New("organization name already in use")
	ErrNoOrganization        = errors.New("admin has no organization")
)

type OrganizationService struct {
	orgs   *repository.OrganizationRepository
	admins *repository.AdminRepository
	plans  *repository.PlanRepository
	log    zerolog.Logger
}

func NewOrganizationService(
	orgs *repository.OrganizationRepository,
	admins *repository.AdminRepository,
	plans *repository.PlanRepository,
	log zerolog.Logger,
) *OrganizationService {
	return &OrganizationService{orgs: orgs, admins: admins, plans: plans, log: log}
}

type RegisterOrganizationInput struct {
	Name        string
	PhoneNumber string
	PlanID      int64
}

// CreatedOrganization is the registration confirmation snapshot shown to a
// first-login admin.
type CreatedOrganization struct {
	OrganizationID        int64  `json:"organizationId"`
	OrganizationName      string `json:"organizationName"`
	PhoneNumber           string `json:"organizationPhoneNumber"`
	PlanID                int64  `json:"subscriptionPlanId"`
	PlanName              string `json:"subscriptionPlanName"`
	SubscriptionStartDate string `json:"subscriptionStartDate"`
	UsageResetDate        string `json:"usageResetDate"`
	SuccessCount          int64  `json:"successCount"`
}

// Register creates the organization, starts its subscription on the chosen
// plan and binds it to the registering admin, clearing the first-login flag.
func (s *OrganizationService) Register(ctx context.Context, adminID int64, input RegisterOrganizationInput) (CreatedOrganization, error) {
	input.Name = strings.TrimSpace(input.Name)

	exists, err := s.orgs.ExistsByName(ctx, input.Name)
	if err != nil {
		return CreatedOrganization{}, err
	}
	if exists {
		return CreatedOrganization{}, ErrDuplicateOrganization
	}

	plan, err := s.plans.GetByID(ctx, input.PlanID)
	if err != nil {
		return CreatedOrganization{}, err
	}

	now := time.Now()
	org := models.Organization{
		Name:                  input.Name,
		PhoneNumber:           input.PhoneNumber,
		PlanID:                plan.ID,
		SubscriptionStartDate: now,
		UsageResetDate:        NextResetDate(now, plan.Cycle),
	}

	orgID, err := s.orgs.Create(ctx, org)
	if err != nil {
		return CreatedOrganization{}, err
	}

	if err := s.admins.BindOrganization(ctx, adminID, orgID); err != nil {
		return CreatedOrganization{}, err
	}

	s.log.Info().Int64("organization_id", orgID).Int64("admin_id", adminID).Msg("organization registered")

	return CreatedOrganization{
		OrganizationID:        orgID,
		OrganizationName:      org.Name,
		PhoneNumber:           org.PhoneNumber,
		PlanID:                plan.ID,
		PlanName:              plan.Name,
		SubscriptionStartDate: org.SubscriptionStartDate.Format(time.RFC3339),
		UsageResetDate:        org.UsageResetDate.Format(time.RFC3339),
		SuccessCount:          0,
	}, nil
}

func (s *OrganizationService) CheckDuplicate(ctx context.Context, name string) (bool, error) {
	return s.orgs.ExistsByName(ctx, strings.TrimSpace(name))
}

func (s *OrganizationService) UpdateProfile(ctx context.Context, id int64, name, phoneNumber string) error {
	return s.orgs.UpdateProfile(ctx, id, strings.TrimSpace(name), phoneNumber)
}

// MyOrganization loads the admin's organization together with its plan.
func (s *OrganizationService) MyOrganization(ctx context.Context, admin models.Admin) (models.Organization, models.Plan, error) {
	if admin.OrganizationID == nil {
		return models.Organization{}, models.Plan{}, ErrNoOrganization
	}
	org, err := s.orgs.GetByID(ctx, *admin.OrganizationID)
	if err != nil {
		return models.Organization{}, models.Plan{}, err
	}
	plan, err := s.plans.GetByID(ctx, org.PlanID)
	if err != nil {
		return models.Organization{}, models.Plan{}, err
	}
	return org, plan, nil
}

// NextResetDate advances one billing cycle from the given instant.
func NextResetDate(from time.Time, cycle models.PlanCycle) time.Time {
	if cycle == models.CycleYearly {
		return from.AddDate(1, 0, 0)
	}
	return from.AddDate(0, 1, 0)
}
