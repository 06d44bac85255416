package player

import (
	"github.com/zeusync/ghostsim/internal/core/input"
	"github.com/zeusync/ghostsim/internal/core/kcl"
	"github.com/zeusync/ghostsim/internal/core/params"
	"github.com/zeusync/ghostsim/pkg/geom"
	"github.com/zeusync/ghostsim/pkg/wii"
)

const (
	trickInputFrames = 15
	trickCooldown    = 5
	trickMaxAirtime  = 10
	trickMinAirtime  = 3
)

type trickState uint8

const (
	trickIdle trickState = iota
	trickReady
	trickStarted
)

type trickKind uint8

const (
	trickStunt trickKind = iota
	trickFlip
	trickDoubleFlip
)

type trickAxis uint8

const (
	axisX trickAxis = iota
	axisY
	axisZ
)

func (a trickAxis) rot(angle float32) geom.Quat {
	var angles geom.Vec3
	switch a {
	case axisX:
		angles.X = angle
	case axisY:
		angles.Y = angle
	default:
		angles.Z = angle
	}
	return geom.QuatFromAngles(angles)
}

// Trick handles ramp tricks: an input window on leaving a trickable surface,
// a scripted rotation in the air and a boost on landing.
type Trick struct {
	nextInput         input.Trick
	nextTimer         uint8
	boostRampEnabled  bool
	hasDivingRotBonus bool
	state             trickState

	// set while started
	kind         trickKind
	axis         trickAxis
	angle        float32
	angleDiff    float32
	angleDiffMul float32
	rotDir       float32
	rot          geom.Quat
	cooldown     uint8
}

func newTrick() Trick {
	return Trick{nextInput: input.TrickUp, rot: geom.Identity}
}

// HasDivingRotBonus is set by bike side stunts and strengthens diving.
func (t *Trick) HasDivingRotBonus() bool {
	return t.hasDivingRotBonus
}

func (t *Trick) IsTricking() bool {
	return t.state == trickStarted
}

func (t *Trick) updateNext(trick input.Trick, floor *Floor, boostRampEnabled, hasBoostRamp bool) {
	if t.state == trickIdle && trick != input.TrickNone {
		t.nextInput = trick
		t.nextTimer = trickInputFrames
	}

	if t.isReady(floor, boostRampEnabled) {
		if floor.Airtime() >= trickMinAirtime {
			t.state = trickReady
		}
		if boostRampEnabled {
			t.boostRampEnabled = true
		}
	} else if t.nextTimer > 0 {
		t.nextTimer--
	}

	if !floor.IsAirborne() && !hasBoostRamp {
		t.boostRampEnabled = false
	}
}

func (t *Trick) isReady(floor *Floor, boostRampEnabled bool) bool {
	switch {
	case t.nextTimer == 0, t.state != trickIdle:
		return false
	case floor.Airtime() == 0, floor.Airtime() > trickMaxAirtime:
		return false
	}
	return floor.HasTrickable() || boostRampEnabled
}

// tryStart begins the trick once ready and fast enough. A boost ramp variant
// of 0 or 1 turns it into a double or single flip.
func (t *Trick) tryStart(
	stats *params.Stats,
	jumpPadEnabled bool,
	p *Physics,
	rampVariant kcl.BoostRampVariant,
	onRamp bool,
	wheelie *Wheelie,
) {
	if t.state != trickReady {
		return
	}
	if p.Speed1/stats.Common.BaseSpeed <= 0.5 {
		return
	}

	t.start(t.nextInput, stats.Vehicle.DriftKind.IsBike(), rampVariant, onRamp)

	switch {
	case t.kind != trickStunt:
		t.hasDivingRotBonus = false
	case t.rotDir != 0:
		t.hasDivingRotBonus = true
	}
	// A stunt without a direction keeps the previous bonus, as the game does.

	if !jumpPadEnabled {
		t.setDirAngle(stats.Vehicle.WeightClass, p)
	}
	if wheelie != nil {
		wheelie.cancel()
	}
	t.state = trickStarted
}

func (t *Trick) start(in input.Trick, isBike bool, rampVariant kcl.BoostRampVariant, onRamp bool) {
	t.kind = trickStunt
	if onRamp {
		switch rampVariant {
		case 0:
			t.kind = trickDoubleFlip
		case 1:
			t.kind = trickFlip
		}
	}

	t.rotDir = 0
	if t.kind == trickStunt {
		switch {
		case isBike && in == input.TrickLeft:
			t.rotDir = 1
		case isBike && in == input.TrickRight:
			t.rotDir = -1
		}
	} else {
		switch in {
		case input.TrickUp, input.TrickDown:
			t.axis = axisZ
			if isBike {
				t.axis = axisX
			}
		default:
			t.axis = axisY
		}
		t.rotDir = -1
		if in == input.TrickDown || in == input.TrickLeft {
			t.rotDir = 1
		}
	}

	t.angle = 0
	t.angleDiff = t.initialAngleDiff()
	t.angleDiffMul = 1
	t.rot = geom.Identity
	t.cooldown = trickCooldown
}

// updateRot steps the scripted rotation and stacks it on the special
// rotation for this frame.
func (t *Trick) updateRot(p *Physics) {
	if t.state != trickStarted {
		return
	}
	if t.cooldown > 0 {
		t.cooldown--
	}

	t.angleDiff = wii.Max(float32(t.angleDiff*t.angleDiffMul), t.minAngleDiff())
	t.angleDiffMul = wii.Max(t.angleDiffMul-t.angleDiffMulDec(), t.minAngleDiffMul())
	t.angle = wii.Min(t.angle+t.angleDiff, t.maxAngle())

	switch {
	case t.kind != trickStunt:
		t.rot = t.axis.rot(float32(t.rotDir * wii.ToRadians(t.angle)))
	case t.rotDir == 0:
		t.rot = geom.Identity
	default:
		a := wii.ToRadians(20)
		b := wii.ToRadians(60)
		sin := wii.SinIdx(float32(float32(256.0/360.0) * t.angle))
		t.rot = geom.QuatFromAngles(geom.Vec3{
			X: float32(-a * sin),
			Y: float32(float32(t.rotDir*-b) * sin),
			Z: float32(float32(t.rotDir*a) * sin),
		})
	}

	p.NonConservedSpecialRot = p.NonConservedSpecialRot.Mul(t.rot)
}

// tryEnd lands the trick on the ground once the cooldown ran out, keeping its
// rotation around to be smoothed away and granting the trick boost.
func (t *Trick) tryEnd(isBike bool, boost *Boost, p *Physics) {
	if t.state != trickStarted || t.cooldown > 0 {
		return
	}
	p.ConservedSpecialRot = p.ConservedSpecialRot.Mul(t.rot)
	boost.Activate(BoostMedium, t.boostDuration(isBike))
	t.state = trickIdle
	t.boostRampEnabled = false
}

// setDirAngle pitches a flat trajectory upwards, limited per weight class.
func (t *Trick) setDirAngle(weight params.WeightClass, p *Physics) {
	norm := wii.Sqrt(p.Vel1Dir.Cross(geom.Up).SqNorm())
	dot := p.Vel1Dir.Dot(geom.Up)
	angle := 90 - wii.ToDegrees(wii.Abs(wii.Atan2(norm, dot)))

	dirAngle, maxDiff := t.dirAngles(weight)
	if angle > dirAngle {
		return
	}
	diff := maxDiff
	if dirAngle < angle+maxDiff {
		diff = dirAngle - angle
	}
	left := p.SmoothedUp.Cross(p.Dir)
	m := geom.Mat34FromAxisAngle(left, -wii.ToRadians(diff))
	p.Dir = m.MulVec(p.Dir)
	p.Vel1Dir = p.Dir
}

func (t *Trick) dirAngles(weight params.WeightClass) (float32, float32) {
	stunt := t.kind == trickStunt
	switch weight {
	case params.Light:
		if stunt {
			return 40, 15
		}
		return 45, 20
	case params.Heavy:
		if stunt {
			return 32, 11
		}
		return 39, 16
	default:
		if stunt {
			return 36, 13
		}
		return 42, 18
	}
}

func (t *Trick) maxAngle() float32 {
	switch t.kind {
	case trickFlip:
		return 360
	case trickDoubleFlip:
		return 720
	default:
		return 180
	}
}

func (t *Trick) initialAngleDiff() float32 {
	switch t.kind {
	case trickFlip:
		return 11
	case trickDoubleFlip:
		return 14
	default:
		return 7.5
	}
}

func (t *Trick) minAngleDiff() float32 {
	if t.kind == trickStunt {
		return 2.5
	}
	return 1.5
}

func (t *Trick) minAngleDiffMul() float32 {
	if t.kind == trickStunt {
		return 0.93
	}
	return 0.9
}

func (t *Trick) angleDiffMulDec() float32 {
	switch t.kind {
	case trickFlip:
		return 0.0018
	case trickDoubleFlip:
		return 0.0006
	default:
		return 0.05
	}
}

func (t *Trick) boostDuration(isBike bool) uint16 {
	var kart, bike uint16
	switch t.kind {
	case trickFlip:
		kart, bike = 70, 80
	case trickDoubleFlip:
		kart, bike = 85, 95
	default:
		kart, bike = 40, 45
	}
	if isBike {
		return bike
	}
	return kart
}
