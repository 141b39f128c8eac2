package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"dentadmin/internal/config"
	"dentadmin/internal/models"
	"dentadmin/internal/repository"
)

// ErrPlanUnchanged rejects a change request naming the already-active plan.
// The dashboard blocks this selection, so seeing it means a stale client.
var ErrPlanUnchanged = errors.New("plan already active")

type SubscriptionService struct {
	orgs  *repository.OrganizationRepository
	plans *repository.PlanRepository
	cache *redis.Client
	cfg   *config.AppConfig
	log   zerolog.Logger
}

func NewSubscriptionService(
	orgs *repository.OrganizationRepository,
	plans *repository.PlanRepository,
	cache *redis.Client,
	cfg *config.AppConfig,
	log zerolog.Logger,
) *SubscriptionService {
	return &SubscriptionService{orgs: orgs, plans: plans, cache: cache, cfg: cfg, log: log}
}

func (s *SubscriptionService) Plans(ctx context.Context) ([]models.Plan, error) {
	return s.plans.List(ctx)
}

func snapshotKey(orgID int64) string {
	return fmt.Sprintf("usage:snapshot:%d", orgID)
}

// Snapshot recomputes (or serves from cache) the usage view for one
// organization.
func (s *SubscriptionService) Snapshot(ctx context.Context, orgID int64) (models.UsageSnapshot, error) {
	if s.cache != nil {
		if cached, err := s.cache.Get(ctx, snapshotKey(orgID)).Bytes(); err == nil {
			var snap models.UsageSnapshot
			if err := json.Unmarshal(cached, &snap); err == nil {
				return snap, nil
			}
		}
	}

	org, err := s.orgs.GetByID(ctx, orgID)
	if err != nil {
		return models.UsageSnapshot{}, err
	}
	plan, err := s.plans.GetByID(ctx, org.PlanID)
	if err != nil {
		return models.UsageSnapshot{}, err
	}

	remaining, rate := ComputeUsage(org.SuccessCount, plan.MaxSuccessResponses)
	snap := models.UsageSnapshot{
		OrganizationID:        org.ID,
		OrganizationName:      org.Name,
		PlanID:                plan.ID,
		PlanName:              plan.Name,
		PlanCycle:             string(plan.Cycle),
		Price:                 plan.Price,
		MaxSuccessResponses:   plan.MaxSuccessResponses,
		TotalSuccessCount:     org.SuccessCount,
		RemainingCount:        remaining,
		UsageRate:             rate,
		SubscriptionStartDate: org.SubscriptionStartDate.Format(time.RFC3339),
		UsageResetDate:        org.UsageResetDate.Format(time.RFC3339),
	}

	if s.cache != nil {
		if raw, err := json.Marshal(snap); err == nil {
			if err := s.cache.Set(ctx, snapshotKey(orgID), raw, s.cfg.Usage.SnapshotTTL).Err(); err != nil {
				s.log.Warn().Err(err).Int64("organization_id", orgID).Msg("snapshot cache write failed")
			}
		}
	}
	return snap, nil
}

// ChangePlan switches the organization onto another plan and restarts its
// usage window. Selecting the active plan is a conflict.
func (s *SubscriptionService) ChangePlan(ctx context.Context, orgID int64, planID int64) error {
	org, err := s.orgs.GetByID(ctx, orgID)
	if err != nil {
		return err
	}
	if org.PlanID == planID {
		return ErrPlanUnchanged
	}

	plan, err := s.plans.GetByID(ctx, planID)
	if err != nil {
		return err
	}

	now := time.Now()
	if err := s.orgs.ChangePlan(ctx, orgID, plan.ID, now, NextResetDate(now, plan.Cycle)); err != nil {
		return err
	}

	s.invalidateSnapshot(ctx, orgID)
	s.log.Info().Int64("organization_id", orgID).Int64("plan_id", planID).Msg("subscription plan changed")
	return nil
}

// OrganizationUsage assembles usage snapshots for every organization (the
// super-admin view). It bypasses the per-org cache to keep one consistent
// read.
func (s *SubscriptionService) OrganizationUsage(ctx context.Context) ([]models.UsageSnapshot, error) {
	subs, err := s.orgs.ListSubscriptions(ctx)
	if err != nil {
		return nil, err
	}
	plans, err := s.plans.List(ctx)
	if err != nil {
		return nil, err
	}
	byID := make(map[int64]models.Plan, len(plans))
	for _, plan := range plans {
		byID[plan.ID] = plan
	}

	snaps := make([]models.UsageSnapshot, 0, len(subs))
	for _, sub := range subs {
		plan := byID[sub.PlanID]
		remaining, rate := ComputeUsage(sub.SuccessCount, plan.MaxSuccessResponses)
		snaps = append(snaps, models.UsageSnapshot{
			OrganizationID:      sub.OrganizationID,
			OrganizationName:    sub.OrganizationName,
			PlanID:              sub.PlanID,
			PlanName:            sub.PlanName,
			PlanCycle:           string(plan.Cycle),
			Price:               plan.Price,
			MaxSuccessResponses: plan.MaxSuccessResponses,
			TotalSuccessCount:   sub.SuccessCount,
			RemainingCount:      remaining,
			UsageRate:           rate,
		})
	}
	return snaps, nil
}

func (s *SubscriptionService) invalidateSnapshot(ctx context.Context, orgID int64) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Del(ctx, snapshotKey(orgID)).Err(); err != nil {
		s.log.Warn().Err(err).Int64("organization_id", orgID).Msg("snapshot cache invalidation failed")
	}
}

// ComputeUsage clamps the remaining quota at zero and reports the usage rate
// as a percentage with one decimal.
func ComputeUsage(success, max int64) (remaining int64, rate float64) {
	if max <= 0 {
		return 0, 0
	}
	remaining = max - success
	if remaining < 0 {
		remaining = 0
	}
	rate = math.Round(float64(success)/float64(max)*1000) / 10
	return remaining, rate
}
