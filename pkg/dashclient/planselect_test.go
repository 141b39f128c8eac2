package dashclient

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func catalogPlans() []Plan {
	return []Plan{
		{ID: 1, PlanName: "Basic", PlanCycle: "monthly", Price: 50000, PlanSort: 1},
		{ID: 2, PlanName: "Basic", PlanCycle: "yearly", Price: 500000, PlanSort: 1},
		{ID: 3, PlanName: "Standard", PlanCycle: "monthly", Price: 100000, PlanSort: 2},
		{ID: 4, PlanName: "Standard", PlanCycle: "yearly", Price: 1000000, PlanSort: 2},
		{ID: 5, PlanName: "Premium", PlanCycle: "monthly", Price: 200000, PlanSort: 3},
	}
}

func TestGroupPlans(t *testing.T) {
	groups := GroupPlans(catalogPlans())

	require.Len(t, groups, 3)
	assert.Equal(t, "Basic", groups[0].Name)
	assert.Equal(t, "Standard", groups[1].Name)
	assert.Equal(t, "Premium", groups[2].Name)

	require.NotNil(t, groups[0].Monthly)
	require.NotNil(t, groups[0].Yearly)
	assert.Equal(t, int64(1), groups[0].Monthly.ID)
	assert.Equal(t, int64(2), groups[0].Yearly.ID)

	// Premium only ships a monthly cycle.
	require.NotNil(t, groups[2].Monthly)
	assert.Nil(t, groups[2].Yearly)
}

func TestPlanSelector_StartsOnCurrentCycle(t *testing.T) {
	selector := NewPlanSelector(catalogPlans(), 4)
	assert.Equal(t, "yearly", selector.Cycle())

	selector = NewPlanSelector(catalogPlans(), 1)
	assert.Equal(t, "monthly", selector.Cycle())
}

func TestPlanSelector_CurrentPlanDisabled(t *testing.T) {
	selector := NewPlanSelector(catalogPlans(), 3)

	options := selector.Options()
	require.Len(t, options, 3)

	for _, plan := range options {
		if plan.ID == 3 {
			assert.False(t, selector.Selectable(plan))
		} else {
			assert.True(t, selector.Selectable(plan))
		}
	}

	err := selector.Select(options[1])
	assert.ErrorIs(t, err, ErrCurrentPlan)
	_, ok := selector.Selected()
	assert.False(t, ok)
}

func TestPlanSelector_CycleToggleClearsSelection(t *testing.T) {
	selector := NewPlanSelector(catalogPlans(), 1)

	require.NoError(t, selector.Select(Plan{ID: 3, PlanName: "Standard", PlanCycle: "monthly"}))
	_, ok := selector.Selected()
	require.True(t, ok)

	selector.SetCycle("yearly")
	_, ok = selector.Selected()
	assert.False(t, ok)

	// Yearly options exclude monthly-only Premium.
	options := selector.Options()
	require.Len(t, options, 2)
	assert.Equal(t, int64(2), options[0].ID)
	assert.Equal(t, int64(4), options[1].ID)
}

func TestPlanSelector_Confirm(t *testing.T) {
	selector := NewPlanSelector(catalogPlans(), 1)

	_, err := selector.Confirm()
	assert.ErrorIs(t, err, ErrNoSelection)

	require.NoError(t, selector.Select(Plan{ID: 5}))
	plan, err := selector.Confirm()
	require.NoError(t, err)
	assert.Equal(t, int64(5), plan.ID)
}

func TestPlanSelector_SelectOutsideCycle(t *testing.T) {
	selector := NewPlanSelector(catalogPlans(), 1)

	// A yearly plan cannot be selected while the monthly toggle is active.
	err := selector.Select(Plan{ID: 4})
	assert.ErrorIs(t, err, ErrPlanNotOffered)
}
