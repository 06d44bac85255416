package params

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zeusync/ghostsim/pkg/geom"
)

const catalogYAML = `
vehicles:
  standard_kart:
    stats:
      wheel_count: 4
      drift_kind: outside_kart
      weight_class: medium
    common:
      base_speed: 75
      handling_speed_multiplier: 0.45
      acceleration_ys: [1, 1.2, 0.5, 0.2]
      acceleration_xs: [0.1, 0.4, 0.8]
      drift_acceleration_ys: [1, 0.3]
      drift_acceleration_xs: [0.6]
      manual_drift_tightness: 0.05
      mt_duration: 60
    body:
      initial_pos_y: 30
      hitboxes:
        - {pos: [0, 40, 0], radius: 50}
        - {pos: [0, 40, 60], radius: 40, walls_only: true}
      cuboids: [[80, 40, 120], [60, 30, 100]]
      rot_factor: 0.6
      wheels:
        - {dist_suspension: 0.1, speed_suspension: 0.2, slack_y: 15, topmost_pos: [40, 20, 50], wheel_radius: 20, hitbox_radius: 15}
        - {dist_suspension: 0.1, speed_suspension: 0.2, slack_y: 15, topmost_pos: [40, 20, -50], wheel_radius: 20, hitbox_radius: 15}
  standard_bike:
    stats:
      wheel_count: 2
      drift_kind: inside_bike
      weight_class: light
      has_handle: true
    handle:
      pos: [0, 60, 70]
      angles: [180, 0, 0]
  broken_bike:
    stats:
      wheel_count: 2
      drift_kind: outside_bike
      has_handle: true
characters:
  small:
    base_speed: 1.5
    weight: 2
    mt_duration: 0
    kcl_speed_factors: [0.5, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1]
`

func loadTestCatalog(t *testing.T) *Catalog {
	t.Helper()
	c, err := LoadCatalog(strings.NewReader(catalogYAML))
	require.NoError(t, err)
	return c
}

func TestAssemble(t *testing.T) {
	c := loadTestCatalog(t)

	assets, err := c.Assemble("standard_kart", "small")
	require.NoError(t, err)

	s := assets.Stats
	assert.Equal(t, 4, s.Vehicle.WheelCount)
	assert.Equal(t, OutsideDriftingKart, s.Vehicle.DriftKind)
	assert.Equal(t, Medium, s.Vehicle.WeightClass)
	assert.Equal(t, float32(76.5), s.Common.BaseSpeed)
	assert.Equal(t, float32(2), s.Common.Weight)
	assert.Equal(t, uint32(60), s.Common.MTDuration)
	assert.Equal(t, float32(0.5), s.Common.KCLSpeedFactors[0])
	assert.Equal(t, [3]float32{0.1, 0.4, 0.8}, s.Common.AccelerationXs)

	body := assets.Body
	require.Len(t, body.Hitboxes, 2)
	assert.True(t, body.Hitboxes[1].WallsOnly)
	assert.Equal(t, geom.NewVec3(80, 40, 120), body.Cuboids[0])
	assert.Equal(t, float32(15), body.Wheels[1].HitboxRadius)
	assert.Nil(t, assets.Handle)
}

func TestAssembleHandle(t *testing.T) {
	c := loadTestCatalog(t)

	assets, err := c.Assemble("standard_bike", "small")
	require.NoError(t, err)
	require.NotNil(t, assets.Handle)
	assert.Equal(t, geom.NewVec3(0, 60, 70), assets.Handle.Pos)
	assert.InDelta(t, 3.14159, float64(assets.Handle.Angles.X), 1e-4)
	assert.True(t, assets.Stats.Vehicle.DriftKind.IsInside())
	assert.True(t, assets.Stats.Vehicle.DriftKind.IsBike())
}

func TestAssembleErrors(t *testing.T) {
	c := loadTestCatalog(t)

	_, err := c.Assemble("missing", "small")
	assert.ErrorIs(t, err, ErrMissingAsset)

	_, err = c.Assemble("standard_kart", "missing")
	assert.ErrorIs(t, err, ErrMissingAsset)

	_, err = c.Assemble("broken_bike", "small")
	assert.ErrorIs(t, err, ErrMissingAsset)
}

func TestVehicleStatsValidate(t *testing.T) {
	tests := []struct {
		name  string
		stats VehicleStats
		ok    bool
	}{
		{"kart with four wheels", VehicleStats{WheelCount: 4}, true},
		{"kart with three wheels", VehicleStats{WheelCount: 3}, true},
		{"kart with two wheels", VehicleStats{WheelCount: 2}, false},
		{"bike with two wheels", VehicleStats{WheelCount: 2, DriftKind: InsideDriftingBike}, true},
		{"bike with four wheels", VehicleStats{WheelCount: 4, DriftKind: OutsideDriftingBike}, false},
		{"kart with a handle", VehicleStats{WheelCount: 4, HasHandle: true}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.stats.Validate()
			if tt.ok {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, ErrInvalidStats)
			}
		})
	}
}

func TestLoadCatalogRejectsUnknownKinds(t *testing.T) {
	_, err := LoadCatalog(strings.NewReader("vehicles:\n  x:\n    stats:\n      drift_kind: sideways\n"))
	assert.ErrorIs(t, err, ErrInvalidStats)

	_, err = LoadCatalog(strings.NewReader("vehicles:\n  x:\n    stats:\n      weight_class: huge\n"))
	assert.ErrorIs(t, err, ErrInvalidStats)
}

func TestMirrorX(t *testing.T) {
	w := WheelSpec{TopmostPos: geom.NewVec3(40, 20, 50)}
	assert.Equal(t, geom.NewVec3(-40, 20, 50), w.MirrorX().TopmostPos)
	assert.Equal(t, geom.NewVec3(40, 20, 50), w.TopmostPos)
}
