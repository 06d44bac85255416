// Package paramstest provides vehicle parameters for tests.
package paramstest

import (
	"github.com/zeusync/ghostsim/internal/core/params"
	"github.com/zeusync/ghostsim/pkg/geom"
)

// Assets is a plausible vehicle of the given kind on a surface table where
// every kind has neutral speed and rotation factors.
func Assets(kind params.DriftKind, wheels int) params.Assets {
	common := params.CommonStats{
		Weight:                     1,
		BaseSpeed:                  75,
		HandlingSpeedMultiplier:    0.45,
		AccelerationYs:             [4]float32{1, 1.2, 0.5, 0.2},
		AccelerationXs:             [3]float32{0.1, 0.4, 0.8},
		DriftAccelerationYs:        [2]float32{1, 0.3},
		DriftAccelerationXs:        [1]float32{0.6},
		ManualHandlingTightness:    0.07,
		AutomaticHandlingTightness: 0.05,
		HandlingReactivity:         0.6,
		ManualDriftTightness:       0.05,
		AutomaticDriftTightness:    0.04,
		DriftReactivity:            0.6,
		OutsideDriftTargetAngle:    40,
		OutsideDriftDec:            1,
		MTDuration:                 60,
		TiltFactor:                 0.2,
	}
	for i := range common.KCLSpeedFactors {
		common.KCLSpeedFactors[i] = 1
		common.KCLRotFactors[i] = 1
	}

	wheel := params.WheelSpec{
		DistSuspension:  0.1,
		SpeedSuspension: 0.2,
		SlackY:          15,
		TopmostPos:      geom.NewVec3(40, 20, 50),
		WheelRadius:     20,
		HitboxRadius:    15,
	}
	rear := wheel
	rear.TopmostPos.Z = -50

	return params.Assets{
		Stats: params.Stats{
			Vehicle: params.VehicleStats{
				WheelCount:  wheels,
				DriftKind:   kind,
				WeightClass: params.Medium,
			},
			Common: common,
		},
		Body: params.Body{
			InitialPosY: 30,
			Hitboxes:    []params.BodyHitbox{{Pos: geom.NewVec3(0, 40, 0), Radius: 50}},
			Cuboids:     [2]geom.Vec3{geom.NewVec3(80, 40, 120), geom.NewVec3(60, 30, 100)},
			RotFactor:   0.6,
			Wheels:      [2]params.WheelSpec{wheel, rear},
		},
	}
}

// Kart is a four wheeled outside drifting kart.
func Kart() params.Assets {
	return Assets(params.OutsideDriftingKart, 4)
}
