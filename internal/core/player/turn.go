package player

import (
	"github.com/zeusync/ghostsim/internal/core/params"
	"github.com/zeusync/ghostsim/pkg/geom"
	"github.com/zeusync/ghostsim/pkg/wii"
)

// Turn smooths the stick into a steering amount.
type Turn struct {
	raw   float32
	drift float32
}

// Raw is the smoothed, sign flipped stick.
func (t *Turn) Raw() float32 {
	return t.raw
}

func (t *Turn) update(stats *params.CommonStats, airtime uint32, stickX float32, drift *Drift) {
	if hop, ok := drift.HopStickX(); ok {
		stickX = hop
	} else if airtime > 20 {
		stickX = float32(0.01 * stickX)
	}

	reactivity := stats.HandlingReactivity
	if drift.IsDrifting() {
		reactivity = stats.DriftReactivity
	}
	t.raw = float32((1-reactivity)*t.raw) + float32(reactivity*-stickX)

	if driftStickX, ok := drift.DriftStickX(); ok {
		turn := float32(0.5 * (t.raw - driftStickX))
		t.drift = wii.Clamp(float32(0.8*turn)-float32(0.2*driftStickX), -1, 1)
	} else {
		t.drift = t.raw
	}
}

func (t *Turn) updateRot(stats *params.CommonStats, airtime uint32, drift *Drift, boostRampEnabled, isWheelieing bool, p *Physics) {
	var rot float32
	if drift.IsDrifting() {
		rot = float32(t.drift * (stats.ManualDriftTightness + drift.OutsideDriftTurnBonus()))
	} else {
		rot = float32(t.drift * stats.ManualHandlingTightness)
	}

	if drift.HasHopHeight() {
		rot = float32(rot * 1.4)
	}

	if !drift.IsDrifting() {
		speed := p.Speed1
		switch {
		case wii.Abs(speed) < 1:
			rot = 0
		case speed < 20:
			rot = float32(0.4*rot) + float32(float32(speed/20)*float32(rot*0.6))
		case speed < 70:
			rot = float32(0.5*rot) + float32(float32(1-(speed-20)/(70-20))*float32(rot*0.5))
		default:
			rot = float32(0.5 * rot)
		}
	}

	if !boostRampEnabled {
		switch {
		case airtime < 30:
		case airtime <= 70:
			rot = wii.Max(float32(float32(1-float32(0.025*float32(airtime-30)))*rot), 0)
		default:
			rot = 0
		}
	}

	front := p.Rot0.Rotate(geom.Front)
	norm := wii.Sqrt(front.Cross(p.Dir).SqNorm())
	angle := wii.ToDegrees(wii.Abs(wii.Atan2(norm, front.Dot(p.Dir))))
	if angle > 60 {
		rot = float32(rot * wii.Max(1-(angle-60)/(100-60), 0))
	}

	if isWheelieing {
		rot = float32(rot * 0.2)
	}

	p.RotVec2.Y += rot
}
