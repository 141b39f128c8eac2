package dashclient

import (
	"errors"
	"sort"
)

// PlanGroup pairs the monthly and yearly variants of one named plan. Either
// side may be nil when the catalog only offers one cycle.
type PlanGroup struct {
	Name    string
	Sort    int
	Monthly *Plan
	Yearly  *Plan
}

// GroupPlans folds the flat plan catalog into per-name monthly/yearly groups
// ordered by the catalog sort.
func GroupPlans(plans []Plan) []PlanGroup {
	byName := make(map[string]*PlanGroup)
	order := make([]string, 0, len(plans))

	for i := range plans {
		plan := plans[i]
		group, ok := byName[plan.PlanName]
		if !ok {
			group = &PlanGroup{Name: plan.PlanName, Sort: plan.PlanSort}
			byName[plan.PlanName] = group
			order = append(order, plan.PlanName)
		}
		if plan.PlanSort < group.Sort {
			group.Sort = plan.PlanSort
		}
		switch plan.PlanCycle {
		case "monthly":
			group.Monthly = &plan
		case "yearly":
			group.Yearly = &plan
		}
	}

	groups := make([]PlanGroup, 0, len(order))
	for _, name := range order {
		groups = append(groups, *byName[name])
	}
	sort.SliceStable(groups, func(i, j int) bool {
		return groups[i].Sort < groups[j].Sort
	})
	return groups
}

var (
	ErrNoSelection    = errors.New("no plan selected")
	ErrCurrentPlan    = errors.New("plan is the current subscription")
	ErrPlanNotOffered = errors.New("plan not offered for the chosen cycle")
)

// PlanSelector models the plan change dialog: a cycle toggle, the grouped
// catalog, and a single selection. The organization's current plan cannot be
// re-selected.
type PlanSelector struct {
	groups        []PlanGroup
	cycle         string
	currentPlanID int64
	selected      *Plan
}

func NewPlanSelector(plans []Plan, currentPlanID int64) *PlanSelector {
	cycle := "monthly"
	for _, plan := range plans {
		if plan.ID == currentPlanID {
			cycle = plan.PlanCycle
			break
		}
	}
	return &PlanSelector{
		groups:        GroupPlans(plans),
		cycle:         cycle,
		currentPlanID: currentPlanID,
	}
}

func (s *PlanSelector) Cycle() string {
	return s.cycle
}

// SetCycle switches the billing cycle toggle. Any selection is cleared
// because the selected plan belongs to the previous cycle.
func (s *PlanSelector) SetCycle(cycle string) {
	if cycle == s.cycle {
		return
	}
	s.cycle = cycle
	s.selected = nil
}

// Options returns the plans visible under the current cycle, in group order.
func (s *PlanSelector) Options() []Plan {
	options := make([]Plan, 0, len(s.groups))
	for _, group := range s.groups {
		var plan *Plan
		if s.cycle == "yearly" {
			plan = group.Yearly
		} else {
			plan = group.Monthly
		}
		if plan != nil {
			options = append(options, *plan)
		}
	}
	return options
}

// Selectable reports whether a plan can be chosen. The current plan stays
// visible but disabled.
func (s *PlanSelector) Selectable(plan Plan) bool {
	return plan.ID != s.currentPlanID
}

func (s *PlanSelector) Select(plan Plan) error {
	if plan.ID == s.currentPlanID {
		return ErrCurrentPlan
	}
	found := false
	for _, option := range s.Options() {
		if option.ID == plan.ID {
			found = true
			break
		}
	}
	if !found {
		return ErrPlanNotOffered
	}
	s.selected = &plan
	return nil
}

func (s *PlanSelector) Selected() (Plan, bool) {
	if s.selected == nil {
		return Plan{}, false
	}
	return *s.selected, true
}

// Confirm validates the selection and returns the plan to submit. It never
// returns the current plan.
func (s *PlanSelector) Confirm() (Plan, error) {
	if s.selected == nil {
		return Plan{}, ErrNoSelection
	}
	if s.selected.ID == s.currentPlanID {
		return Plan{}, ErrCurrentPlan
	}
	return *s.selected, nil
}
