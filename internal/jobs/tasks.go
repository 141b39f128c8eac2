package jobs

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"dentadmin/internal/repository"
	"dentadmin/internal/service"
)

const (
	TaskUsageReset   = "usage_reset"
	TaskSessionSweep = "session_sweep"
)

type TaskPayload struct {
	Type string `json:"type"`
}

// Processor executes maintenance tasks pulled off the stream.
type Processor struct {
	orgs     *repository.OrganizationRepository
	plans    *repository.PlanRepository
	sessions *repository.SessionRepository
	log      zerolog.Logger
}

func NewProcessor(
	orgs *repository.OrganizationRepository,
	plans *repository.PlanRepository,
	sessions *repository.SessionRepository,
	log zerolog.Logger,
) *Processor {
	return &Processor{orgs: orgs, plans: plans, sessions: sessions, log: log}
}

func (p *Processor) Handle(ctx context.Context, msg redis.XMessage) error {
	var payload TaskPayload
	if err := decodePayload(msg.Values, &payload); err != nil {
		return fmt.Errorf("decode payload: %w", err)
	}

	switch payload.Type {
	case TaskUsageReset:
		return p.handleUsageReset(ctx)
	case TaskSessionSweep:
		return p.handleSessionSweep(ctx)
	default:
		p.log.Warn().Str("type", payload.Type).Msg("unknown task type")
		return nil
	}
}

// handleUsageReset rolls over the billing window for every organization whose
// reset date has passed.
func (p *Processor) handleUsageReset(ctx context.Context) error {
	now := time.Now()
	due, err := p.orgs.ListDueForReset(ctx, now)
	if err != nil {
		return fmt.Errorf("list due organizations: %w", err)
	}

	for _, orgID := range due {
		org, err := p.orgs.GetByID(ctx, orgID)
		if err != nil {
			p.log.Error().Err(err).Int64("organization_id", orgID).Msg("load organization failed")
			continue
		}
		plan, err := p.plans.GetByID(ctx, org.PlanID)
		if err != nil {
			p.log.Error().Err(err).Int64("organization_id", orgID).Msg("load plan failed")
			continue
		}
		next := service.NextResetDate(org.UsageResetDate, plan.Cycle)
		// catch up if the organization missed several windows
		for !next.After(now) {
			next = service.NextResetDate(next, plan.Cycle)
		}
		if err := p.orgs.ResetUsage(ctx, orgID, next); err != nil {
			p.log.Error().Err(err).Int64("organization_id", orgID).Msg("usage reset failed")
			continue
		}
		p.log.Info().Int64("organization_id", orgID).Time("next_reset", next).Msg("usage counters reset")
	}
	return nil
}

func (p *Processor) handleSessionSweep(ctx context.Context) error {
	removed, err := p.sessions.DeleteExpired(ctx, time.Now())
	if err != nil {
		return fmt.Errorf("delete expired sessions: %w", err)
	}
	if removed > 0 {
		p.log.Info().Int64("removed", removed).Msg("expired sessions swept")
	}
	return nil
}

func decodePayload(values map[string]interface{}, out *TaskPayload) error {
	raw, err := json.Marshal(values)
	if err != nil {
		return err
	}
	return json.Unmarshal(raw, out)
}
