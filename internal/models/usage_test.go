package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOrgStatistic_EmptyStatsStayOnTheWire(t *testing.T) {
	stat := OrgStatistic{
		OrganizationID:   1,
		OrganizationName: "Smile Clinic",
		OralCheckStats:   []OralCheckStat{},
	}

	raw, err := json.Marshal(stat)
	require.NoError(t, err)

	// The dashboard iterates this field; an org with no check results must
	// still see an empty array, not a missing key.
	assert.Contains(t, string(raw), `"oralCheckStats":[]`)
}
