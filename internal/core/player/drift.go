package player

import (
	"math"

	"github.com/zeusync/ghostsim/internal/core/params"
	"github.com/zeusync/ghostsim/pkg/geom"
	"github.com/zeusync/ghostsim/pkg/wii"
)

const (
	hopVelY         float32 = 10
	hopMinFrames            = 3
	mtCharge                = 270
	smtCharge               = 300
	outsideDriftMax float32 = 60
)

type driftState uint8

const (
	driftIdle driftState = iota
	// driftAirborneCharge holds a drift pressed in the air until landing.
	driftAirborneCharge
	driftHop
	driftDrifting
)

func (s driftState) String() string {
	switch s {
	case driftIdle:
		return "idle"
	case driftAirborneCharge:
		return "airborne_charge"
	case driftHop:
		return "hop"
	case driftDrifting:
		return "drift"
	default:
		return "unknown"
	}
}

// Drift covers hops, manual drifts and mini-turbos.
type Drift struct {
	baseSpeed               float32
	manualDriftTightness    float32
	outsideDriftTargetAngle float32
	outsideDriftDec         float32
	mtDuration              uint16
	supportsSMT             bool
	isOutside               bool

	state driftState

	// hop
	hopFrame     uint8
	hopDir       geom.Vec3
	hopUp        geom.Vec3
	hopStickX    float32
	hasHopStickX bool
	hopPosY      float32
	hopVelY      float32

	// drift
	stickX                float32
	outsideDriftTurnBonus float32
	mtCharge              uint16
	smtCharge             uint16

	outsideDriftAngle float32
}

func newDrift(stats *params.Stats) Drift {
	return Drift{
		baseSpeed:               stats.Common.BaseSpeed,
		manualDriftTightness:    stats.Common.ManualDriftTightness,
		outsideDriftTargetAngle: stats.Common.OutsideDriftTargetAngle,
		outsideDriftDec:         stats.Common.OutsideDriftDec,
		mtDuration:              uint16(stats.Common.MTDuration),
		supportsSMT:             !stats.Vehicle.DriftKind.IsBike(),
		isOutside:               !stats.Vehicle.DriftKind.IsInside(),
	}
}

func (d *Drift) State() string {
	return d.state.String()
}

// HasHopHeight is true while a hop is above the ground.
func (d *Drift) HasHopHeight() bool {
	return d.state == driftHop && d.hopPosY > 0
}

func (d *Drift) HopDir() (geom.Vec3, bool) {
	return d.hopDir, d.state == driftHop
}

func (d *Drift) HopStickX() (float32, bool) {
	return d.hopStickX, d.state == driftHop && d.hasHopStickX
}

func (d *Drift) IsDrifting() bool {
	return d.state == driftDrifting
}

// DriftStickX is the committed drift direction, -1 or 1.
func (d *Drift) DriftStickX() (float32, bool) {
	return d.stickX, d.state == driftDrifting
}

func (d *Drift) OutsideDriftTurnBonus() float32 {
	if d.state != driftDrifting || !d.isOutside {
		return 0
	}
	return d.outsideDriftTurnBonus
}

// OutsideDriftAngle is in degrees and stays zero for inside drifting bikes.
func (d *Drift) OutsideDriftAngle() float32 {
	return d.outsideDriftAngle
}

// MTCharge returns the mini-turbo and super mini-turbo charges.
func (d *Drift) MTCharge() (uint16, uint16) {
	return d.mtCharge, d.smtCharge
}

// update advances the state machine. A wheelie is cancelled by any hop.
func (d *Drift) update(
	driftInput, lastDriftInput bool,
	stickX float32,
	airtime uint32,
	boost *Boost,
	wheelie *Wheelie,
	p *Physics,
) {
	ground := airtime == 0

	switch d.state {
	case driftIdle:
		switch {
		case !driftInput || lastDriftInput:
		case ground:
			d.startHop(wheelie, p)
		default:
			d.state = driftAirborneCharge
		}
	case driftAirborneCharge:
		switch {
		case !driftInput:
			d.state = driftIdle
		case ground && stickX != 0:
			d.startDrift(stickSign(stickX), 0, p.Speed1)
		case ground:
			d.state = driftIdle
		}
	case driftHop:
		d.hopFrame = min(d.hopFrame+1, hopMinFrames)
		if !d.hasHopStickX && stickX != 0 {
			d.hopStickX, d.hasHopStickX = stickSign(stickX), true
		}
		switch {
		case !driftInput:
			d.state = driftIdle
		case d.hopFrame < hopMinFrames || !ground:
		case d.hasHopStickX:
			d.startDrift(d.hopStickX, d.hopAngleDiff(p), p.Speed1)
		default:
			d.state = driftIdle
		}
	}

	switch d.state {
	case driftIdle:
		if d.isOutside {
			d.outsideDriftAngle = float32(wii.Signum(d.outsideDriftAngle) * wii.Max(wii.Abs(d.outsideDriftAngle)-d.outsideDriftDec, 0))
		}
	case driftDrifting:
		if driftInput {
			d.charge(stickX, ground)
		} else {
			d.release(boost)
		}
	}
}

// stickSign rounds a non-zero stick away from zero to a full deflection.
func stickSign(stickX float32) float32 {
	return float32(wii.Signum(stickX) * float32(math.Ceil(float64(wii.Abs(stickX)))))
}

func (d *Drift) startHop(wheelie *Wheelie, p *Physics) {
	if wheelie != nil {
		wheelie.cancel()
	}
	p.Vel0.Y = hopVelY
	p.NormalAcceleration = 0

	d.state = driftHop
	d.hopFrame = 0
	d.hopDir = p.Rot0.Rotate(geom.Front)
	d.hopUp = p.Rot0.Rotate(geom.Up)
	d.hopStickX, d.hasHopStickX = 0, false
	d.hopPosY = 0
	d.hopVelY = hopVelY
}

// hopAngleDiff is how far, in degrees, the vehicle turned during the hop.
func (d *Drift) hopAngleDiff(p *Physics) float32 {
	front := p.Rot0.Rotate(geom.Front)
	rej := front.RejUnit(d.hopUp)
	if rej.SqNorm() <= wii.Epsilon {
		return 0
	}
	rej = rej.Normalize()
	norm := wii.Sqrt(d.hopDir.Cross(rej).SqNorm())
	return wii.ToDegrees(wii.Atan2(norm, d.hopDir.Dot(rej)))
}

// startDrift commits to a direction. Outside drifts carry over the angle
// turned during the hop and get a turn bonus scaled by the current speed.
func (d *Drift) startDrift(stickX, angleDiff, speed1 float32) {
	d.outsideDriftTurnBonus = 0
	if d.isOutside {
		d.outsideDriftAngle = wii.Clamp(d.outsideDriftAngle+float32(angleDiff*stickX), -outsideDriftMax, outsideDriftMax)
		ratio := wii.Min(speed1/d.baseSpeed, 1)
		d.outsideDriftTurnBonus = float32(float32(ratio*d.manualDriftTightness) * 0.5)
	}
	d.state = driftDrifting
	d.stickX = stickX
	d.mtCharge = 0
	d.smtCharge = 0
}

func (d *Drift) charge(stickX float32, ground bool) {
	d.outsideDriftTurnBonus = float32(d.outsideDriftTurnBonus * 0.99)

	if d.isOutside {
		last := float32(d.outsideDriftAngle * d.stickX)
		target := d.outsideDriftTargetAngle
		next := last
		switch {
		case last < target:
			next = wii.Min(last+float32(150*d.manualDriftTightness), target)
		case last > target:
			next = wii.Max(last-2, target)
		}
		d.outsideDriftAngle = float32(next * d.stickX)
	}

	if !ground {
		return
	}
	inc := uint16(2)
	if float32(stickX*d.stickX) > 0.4 {
		inc = 5
	}
	if d.mtCharge < mtCharge {
		d.mtCharge = min(d.mtCharge+inc, mtCharge)
	} else if d.supportsSMT {
		d.smtCharge = min(d.smtCharge+inc, smtCharge)
	}
}

func (d *Drift) release(boost *Boost) {
	switch {
	case d.smtCharge >= smtCharge:
		boost.Activate(BoostWeak, uint16(min(3*uint32(d.mtDuration), math.MaxUint16)))
	case d.mtCharge >= mtCharge:
		boost.Activate(BoostWeak, d.mtDuration)
	}
	d.state = driftIdle
}

// updateHopPhysics moves the visual hop height.
func (d *Drift) updateHopPhysics() {
	if d.state != driftHop {
		return
	}
	d.hopVelY = float32(d.hopVelY * 0.998)
	d.hopVelY += gravity
	d.hopPosY += d.hopVelY
	if d.hopPosY < 0 {
		d.hopVelY = 0
		d.hopPosY = 0
	}
}
