// Package params holds the per-race vehicle and character parameters.
package params

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// DriftKind tells karts from bikes and picks the drift angle convention.
type DriftKind uint8

const (
	OutsideDriftingKart DriftKind = iota
	OutsideDriftingBike
	InsideDriftingBike
)

var driftKindNames = map[string]DriftKind{
	"outside_kart": OutsideDriftingKart,
	"outside_bike": OutsideDriftingBike,
	"inside_bike":  InsideDriftingBike,
}

func (k DriftKind) IsBike() bool {
	return k != OutsideDriftingKart
}

func (k DriftKind) IsInside() bool {
	return k == InsideDriftingBike
}

func (k *DriftKind) UnmarshalYAML(value *yaml.Node) error {
	kind, ok := driftKindNames[value.Value]
	if !ok {
		return fmt.Errorf("%w: drift kind %q", ErrInvalidStats, value.Value)
	}
	*k = kind
	return nil
}

type WeightClass uint8

const (
	Light WeightClass = iota
	Medium
	Heavy
)

var weightClassNames = map[string]WeightClass{
	"light":  Light,
	"medium": Medium,
	"heavy":  Heavy,
}

func (w *WeightClass) UnmarshalYAML(value *yaml.Node) error {
	class, ok := weightClassNames[value.Value]
	if !ok {
		return fmt.Errorf("%w: weight class %q", ErrInvalidStats, value.Value)
	}
	*w = class
	return nil
}

// VehicleStats only come from the vehicle and are never merged.
type VehicleStats struct {
	WheelCount  int         `yaml:"wheel_count"`
	DriftKind   DriftKind   `yaml:"drift_kind"`
	WeightClass WeightClass `yaml:"weight_class"`
	HasHandle   bool        `yaml:"has_handle"`
}

func (v VehicleStats) Validate() error {
	switch {
	case v.DriftKind.IsBike() && v.WheelCount != 2:
		return fmt.Errorf("%w: bike with %d wheels", ErrInvalidStats, v.WheelCount)
	case !v.DriftKind.IsBike() && (v.WheelCount < 3 || v.WheelCount > 4):
		return fmt.Errorf("%w: kart with %d wheels", ErrInvalidStats, v.WheelCount)
	case v.HasHandle && !v.DriftKind.IsBike():
		return fmt.Errorf("%w: kart with a handle", ErrInvalidStats)
	}
	return nil
}

// CommonStats are contributed by both the vehicle and the character and
// summed field by field.
type CommonStats struct {
	Weight                     float32            `yaml:"weight"`
	BaseSpeed                  float32            `yaml:"base_speed"`
	HandlingSpeedMultiplier    float32            `yaml:"handling_speed_multiplier"`
	AccelerationYs             [4]float32         `yaml:"acceleration_ys"`
	AccelerationXs             [3]float32         `yaml:"acceleration_xs"`
	DriftAccelerationYs        [2]float32         `yaml:"drift_acceleration_ys"`
	DriftAccelerationXs        [1]float32         `yaml:"drift_acceleration_xs"`
	ManualHandlingTightness    float32            `yaml:"manual_handling_tightness"`
	AutomaticHandlingTightness float32            `yaml:"automatic_handling_tightness"`
	HandlingReactivity         float32            `yaml:"handling_reactivity"`
	ManualDriftTightness       float32            `yaml:"manual_drift_tightness"`
	AutomaticDriftTightness    float32            `yaml:"automatic_drift_tightness"`
	DriftReactivity            float32            `yaml:"drift_reactivity"`
	OutsideDriftTargetAngle    float32            `yaml:"outside_drift_target_angle"`
	OutsideDriftDec            float32            `yaml:"outside_drift_dec"`
	MTDuration                 uint32             `yaml:"mt_duration"`
	KCLSpeedFactors            [KindCount]float32 `yaml:"kcl_speed_factors"`
	KCLRotFactors              [KindCount]float32 `yaml:"kcl_rot_factors"`
	TiltFactor                 float32            `yaml:"tilt_factor"`
}

// KindCount is the number of surface kinds with their own factors.
const KindCount = 32

func (c CommonStats) Add(o CommonStats) CommonStats {
	c.Weight += o.Weight
	c.BaseSpeed += o.BaseSpeed
	c.HandlingSpeedMultiplier += o.HandlingSpeedMultiplier
	for i := range c.AccelerationYs {
		c.AccelerationYs[i] += o.AccelerationYs[i]
	}
	for i := range c.AccelerationXs {
		c.AccelerationXs[i] += o.AccelerationXs[i]
	}
	for i := range c.DriftAccelerationYs {
		c.DriftAccelerationYs[i] += o.DriftAccelerationYs[i]
	}
	for i := range c.DriftAccelerationXs {
		c.DriftAccelerationXs[i] += o.DriftAccelerationXs[i]
	}
	c.ManualHandlingTightness += o.ManualHandlingTightness
	c.AutomaticHandlingTightness += o.AutomaticHandlingTightness
	c.HandlingReactivity += o.HandlingReactivity
	c.ManualDriftTightness += o.ManualDriftTightness
	c.AutomaticDriftTightness += o.AutomaticDriftTightness
	c.DriftReactivity += o.DriftReactivity
	c.OutsideDriftTargetAngle += o.OutsideDriftTargetAngle
	c.OutsideDriftDec += o.OutsideDriftDec
	c.MTDuration += o.MTDuration
	for i := range c.KCLSpeedFactors {
		c.KCLSpeedFactors[i] += o.KCLSpeedFactors[i]
	}
	for i := range c.KCLRotFactors {
		c.KCLRotFactors[i] += o.KCLRotFactors[i]
	}
	c.TiltFactor += o.TiltFactor
	return c
}

type Stats struct {
	Vehicle VehicleStats
	Common  CommonStats
}

// Merge adds the character's contribution to the vehicle's.
func Merge(vehicle Stats, character CommonStats) Stats {
	return Stats{
		Vehicle: vehicle.Vehicle,
		Common:  vehicle.Common.Add(character),
	}
}
