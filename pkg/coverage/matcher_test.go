package coverage

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func computeInstance(id, zone, instanceType string) Instance {
	return Instance{
		ID:   id,
		Name: id,
		Zone: zone,
		Type: instanceType,
		VPC:  true,
	}
}

func zonalReservation(id, zone, instanceType string, count int) Reservation {
	return Reservation{
		ID:    id,
		Type:  instanceType,
		Scope: ScopeZone,
		Zone:  zone,
		Count: count,
		VPC:   true,
	}
}

func regionalReservation(id, region, instanceType string, count int) Reservation {
	return Reservation{
		ID:     id,
		Type:   instanceType,
		Scope:  ScopeRegion,
		Region: region,
		Count:  count,
		VPC:    true,
	}
}

func TestMatchDisjointKeysNothingCovered(t *testing.T) {
	instances := []Instance{
		computeInstance("i-1", "us-east-1a", "t2.small"),
		computeInstance("i-2", "us-east-1b", "m5.large"),
	}
	reservations := []Reservation{
		zonalReservation("ri-1", "us-west-2a", "t2.small", 1),
		zonalReservation("ri-2", "us-east-1a", "c5.xlarge", 2),
	}

	result, err := Match(instances, reservations)
	require.NoError(t, err)

	require.Len(t, result.Assignments, 2)
	for _, a := range result.Assignments {
		assert.False(t, a.Covered(), "instance %s should not be covered", a.Instance.ID)
	}
	require.Len(t, result.Unused, 2)
}

func TestMatchFullyConsumedReservation(t *testing.T) {
	instances := []Instance{
		computeInstance("i-1", "us-east-1a", "t2.small"),
		computeInstance("i-2", "us-east-1a", "t2.small"),
		computeInstance("i-3", "us-east-1a", "t2.small"),
	}
	reservations := []Reservation{
		zonalReservation("ri-1", "us-east-1a", "t2.small", 3),
	}

	result, err := Match(instances, reservations)
	require.NoError(t, err)

	for _, a := range result.Assignments {
		require.True(t, a.Covered())
		assert.Equal(t, "ri-1", a.Reservation.ID)
	}
	assert.Empty(t, result.Unused)
}

func TestMatchPartiallyConsumedReservationNotUnused(t *testing.T) {
	instances := []Instance{
		computeInstance("i-1", "us-east-1a", "t2.small"),
		computeInstance("i-2", "us-east-1a", "t2.small"),
	}
	reservations := []Reservation{
		zonalReservation("ri-1", "us-east-1a", "t2.small", 3),
	}

	result, err := Match(instances, reservations)
	require.NoError(t, err)

	covered := 0
	for _, a := range result.Assignments {
		if a.Covered() {
			covered++
		}
	}
	assert.Equal(t, 2, covered)
	assert.Empty(t, result.Unused, "partially used reservation must not be listed as unused")
}

func TestMatchIdleReservationListedAsUnused(t *testing.T) {
	instances := []Instance{
		computeInstance("i-1", "us-east-1a", "m5.large"),
	}
	reservations := []Reservation{
		zonalReservation("ri-idle", "us-east-1a", "t2.small", 2),
		zonalReservation("ri-used", "us-east-1a", "m5.large", 1),
	}

	result, err := Match(instances, reservations)
	require.NoError(t, err)

	require.Len(t, result.Unused, 1)
	assert.Equal(t, "ri-idle", result.Unused[0].ID)
	assert.Equal(t, 2, result.Unused[0].Count)
}

func TestMatchRegionScopedReservationCoversAnyZone(t *testing.T) {
	instances := []Instance{
		computeInstance("i-1", "us-east-1a", "t2.small"),
	}
	reservations := []Reservation{
		regionalReservation("ri-region", "us-east-1", "t2.small", 1),
	}

	result, err := Match(instances, reservations)
	require.NoError(t, err)

	require.True(t, result.Assignments[0].Covered())
	assert.Equal(t, "ri-region", result.Assignments[0].Reservation.ID)
	assert.Empty(t, result.Unused)
}

func TestMatchRegionScopedReservationOtherRegion(t *testing.T) {
	instances := []Instance{
		computeInstance("i-1", "eu-west-1a", "t2.small"),
	}
	reservations := []Reservation{
		regionalReservation("ri-region", "us-east-1", "t2.small", 1),
	}

	result, err := Match(instances, reservations)
	require.NoError(t, err)

	assert.False(t, result.Assignments[0].Covered())
	require.Len(t, result.Unused, 1)
}

func TestMatchPrefersZoneExactOverRegional(t *testing.T) {
	instances := []Instance{
		computeInstance("i-1", "us-east-1a", "t2.small"),
	}
	reservations := []Reservation{
		regionalReservation("ri-region", "us-east-1", "t2.small", 1),
		zonalReservation("ri-zone", "us-east-1a", "t2.small", 1),
	}

	result, err := Match(instances, reservations)
	require.NoError(t, err)

	require.True(t, result.Assignments[0].Covered())
	assert.Equal(t, "ri-zone", result.Assignments[0].Reservation.ID)
	require.Len(t, result.Unused, 1)
	assert.Equal(t, "ri-region", result.Unused[0].ID)
}

func TestMatchTieBreakFirstSeenWins(t *testing.T) {
	instances := []Instance{
		computeInstance("i-1", "us-east-1a", "t2.small"),
	}
	reservations := []Reservation{
		zonalReservation("ri-first", "us-east-1a", "t2.small", 1),
		zonalReservation("ri-second", "us-east-1a", "t2.small", 1),
	}

	result, err := Match(instances, reservations)
	require.NoError(t, err)

	require.True(t, result.Assignments[0].Covered())
	assert.Equal(t, "ri-first", result.Assignments[0].Reservation.ID)
}

func TestMatchSlotNumbering(t *testing.T) {
	instances := []Instance{
		computeInstance("i-1", "us-east-1a", "t2.small"),
		computeInstance("i-2", "us-east-1a", "t2.small"),
	}
	reservations := []Reservation{
		zonalReservation("ri-1", "us-east-1a", "t2.small", 2),
	}

	result, err := Match(instances, reservations)
	require.NoError(t, err)

	assert.Equal(t, 1, result.Assignments[0].Slot)
	assert.Equal(t, 2, result.Assignments[1].Slot)
}

func TestMatchReservationUnitConsumedOnce(t *testing.T) {
	instances := []Instance{
		computeInstance("i-1", "us-east-1a", "t2.small"),
		computeInstance("i-2", "us-east-1a", "t2.small"),
	}
	reservations := []Reservation{
		zonalReservation("ri-1", "us-east-1a", "t2.small", 1),
	}

	result, err := Match(instances, reservations)
	require.NoError(t, err)

	assert.True(t, result.Assignments[0].Covered())
	assert.False(t, result.Assignments[1].Covered())
}

func TestMatchNetworkPlacementMustAgree(t *testing.T) {
	classic := computeInstance("i-classic", "us-east-1a", "t2.small")
	classic.VPC = false

	result, err := Match([]Instance{classic}, []Reservation{
		zonalReservation("ri-vpc", "us-east-1a", "t2.small", 1),
	})
	require.NoError(t, err)

	assert.False(t, result.Assignments[0].Covered())
}

func TestMatchDatabaseEngineAndMultiAZ(t *testing.T) {
	instances := []Instance{
		{ID: "db-1", Zone: "us-east-1a", Type: "db.m5.large", Engine: "postgres", MultiAZ: true},
		{ID: "db-2", Zone: "us-east-1a", Type: "db.m5.large", Engine: "postgres", MultiAZ: false},
		{ID: "db-3", Zone: "us-east-1a", Type: "db.m5.large", Engine: "mysql", MultiAZ: true},
	}
	reservations := []Reservation{
		{ID: "rdbi-1", Type: "db.m5.large", Scope: ScopeRegion, Region: "us-east-1",
			Count: 2, Engine: "postgres", MultiAZ: true},
	}

	result, err := Match(instances, reservations)
	require.NoError(t, err)

	assert.True(t, result.Assignments[0].Covered(), "matching engine and MultiAZ")
	assert.False(t, result.Assignments[1].Covered(), "MultiAZ mismatch")
	assert.False(t, result.Assignments[2].Covered(), "engine mismatch")
	assert.Empty(t, result.Unused, "partially consumed reservation is not unused")
}

func TestMatchValidation(t *testing.T) {
	tests := []struct {
		name         string
		instances    []Instance
		reservations []Reservation
		field        string
	}{
		{
			name:      "instance without id",
			instances: []Instance{{Zone: "us-east-1a", Type: "t2.small"}},
			field:     "id",
		},
		{
			name:      "instance without type",
			instances: []Instance{{ID: "i-1", Zone: "us-east-1a"}},
			field:     "type",
		},
		{
			name:      "instance without zone",
			instances: []Instance{{ID: "i-1", Type: "t2.small"}},
			field:     "zone",
		},
		{
			name: "reservation with zero count",
			reservations: []Reservation{
				{ID: "ri-1", Type: "t2.small", Scope: ScopeZone, Zone: "us-east-1a"},
			},
			field: "count",
		},
		{
			name: "zonal reservation without zone",
			reservations: []Reservation{
				{ID: "ri-1", Type: "t2.small", Scope: ScopeZone, Count: 1},
			},
			field: "zone",
		},
		{
			name: "reservation with unknown scope",
			reservations: []Reservation{
				{ID: "ri-1", Type: "t2.small", Scope: Scope("global"), Count: 1},
			},
			field: "scope",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Match(tt.instances, tt.reservations)
			require.Error(t, err)

			var verr *ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tt.field, verr.Field)
		})
	}
}

func TestRegionOfZone(t *testing.T) {
	assert.Equal(t, "us-east-1", RegionOfZone("us-east-1a"))
	assert.Equal(t, "ap-northeast-2", RegionOfZone("ap-northeast-2c"))
	assert.Equal(t, "us-east-1", RegionOfZone("us-east-1"))
}
