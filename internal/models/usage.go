package models

// ServiceUsage is one user's billable success count for a single service.
type ServiceUsage struct {
	UserID           int64
	UserName         string
	UserPhoneNumber  string
	OrganizationName string
	ServiceName      string
	SuccessCount     int64
}

// UsageSnapshot is the recomputed subscription/usage view for one
// organization. remainingCount clamps at zero; usageRate is a percentage with
// one decimal.
type UsageSnapshot struct {
	OrganizationID        int64   `json:"organizationId"`
	OrganizationName      string  `json:"organizationName"`
	PlanID                int64   `json:"planId"`
	PlanName              string  `json:"planName"`
	PlanCycle             string  `json:"planCycle"`
	Price                 int64   `json:"price"`
	MaxSuccessResponses   int64   `json:"maxSuccessResponses"`
	TotalSuccessCount     int64   `json:"totalSuccessCount"`
	RemainingCount        int64   `json:"remainingCount"`
	UsageRate             float64 `json:"usageRate"`
	SubscriptionStartDate string  `json:"subscriptionStartDate,omitempty"`
	UsageResetDate        string  `json:"usageResetDate,omitempty"`
}

// OralCheckStat aggregates questionnaire outcomes for one questionnaire type.
type OralCheckStat struct {
	OralCheckResultType string `json:"oralCheckResultType"`
	Count               int64  `json:"count"`
	CountHealthy        int64  `json:"countHealthy"`
	CountGood           int64  `json:"countGood"`
	CountAttention      int64  `json:"countAttention"`
	CountDanger         int64  `json:"countDanger"`
}

// OrgStatistic is the per-organization user statistics block.
type OrgStatistic struct {
	OrganizationID   int64           `json:"organizationId"`
	OrganizationName string          `json:"organizationName"`
	TotalUsers       int64           `json:"totalUsers"`
	MaleUsers        int64           `json:"maleUsers"`
	FemaleUsers      int64           `json:"femaleUsers"`
	NewUsers         int64           `json:"newUsers"`
	OralCheckStats   []OralCheckStat `json:"oralCheckStats"`
}
