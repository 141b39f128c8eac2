package models

import "time"

type Organization struct {
	ID                    int64
	Name                  string
	PhoneNumber           string
	PlanID                int64
	SubscriptionStartDate time.Time
	UsageResetDate        time.Time
	SuccessCount          int64
	CreatedAt             time.Time
	UpdatedAt             time.Time
}

type PlanCycle string

const (
	CycleMonthly PlanCycle = "monthly"
	CycleYearly  PlanCycle = "yearly"
)

type Plan struct {
	ID                  int64
	Name                string
	Cycle               PlanCycle
	Price               int64
	MaxSuccessResponses int64
	Sort                int
}

// OrganizationSubscription is the joined row the super-admin subscription
// listing returns.
type OrganizationSubscription struct {
	OrganizationID        int64
	OrganizationName      string
	PhoneNumber           string
	PlanID                int64
	PlanName              string
	SubscriptionStartDate *time.Time
	UsageResetDate        *time.Time
	SuccessCount          int64
}
