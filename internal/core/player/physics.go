package player

import (
	"github.com/zeusync/ghostsim/internal/core/kcl"
	"github.com/zeusync/ghostsim/internal/core/params"
	"github.com/zeusync/ghostsim/internal/core/timer"
	"github.com/zeusync/ghostsim/pkg/geom"
	"github.com/zeusync/ghostsim/pkg/wii"
)

const (
	gravity          float32 = -1.3
	maxSpeed         float32 = 120
	spawnQueryRadius float32 = 100
	vel0Damping      float32 = 0.998
	rotVec0Damping   float32 = 0.98
	specialRotDecay  float32 = 0.1
)

var defaultGridOffsets = []geom.Vec3{
	{X: -800, Y: 0, Z: 461.87988},
	{X: 800, Y: 0, Z: -461.87991},
}

// Spawn is where the vehicle is placed before the first frame.
type Spawn struct {
	Pos geom.Vec3
	Rot geom.Quat
	// GridOffsets are added to Pos in order before dropping to the floor.
	GridOffsets []geom.Vec3
}

// DefaultSpawn uses the first grid slot facing -Z.
func DefaultSpawn(pos geom.Vec3) Spawn {
	return Spawn{Pos: pos, Rot: geom.Flipped, GridOffsets: defaultGridOffsets}
}

// Physics is the integrator state. Components mutate it in place during
// Player.Update; Player.Physics hands out copies.
type Physics struct {
	InvInertiaTensor geom.Mat34
	RotFactor        float32
	Mat              geom.Mat34

	Up         geom.Vec3
	SmoothedUp geom.Vec3
	Dir        geom.Vec3
	DirDiff    geom.Vec3
	Vel1Dir    geom.Vec3
	// LandingAngle is the pitch, in degrees, still to be absorbed after a
	// landing.
	LandingAngle float32

	Pos                geom.Vec3
	NormalAcceleration float32
	Gravity            float32
	Vel0               geom.Vec3
	Vel1               geom.Vec3
	Vel                geom.Vec3
	LastSpeed1         float32
	Speed1             float32
	Speed1Adj          float32
	Speed1SoftLimit    float32

	NormalRotVec geom.Vec3
	RotVec0      geom.Vec3
	RotVec2      geom.Vec3
	Rot0         geom.Quat
	Rot1         geom.Quat

	ConservedSpecialRot    geom.Quat
	NonConservedSpecialRot geom.Quat
	StabilizationFactor    float32
}

func newPhysics(body *params.Body, spawn Spawn, mesh *kcl.Mesh) Physics {
	masses := [2]float32{1.0 / 12.0, 1}
	var parts [2]geom.Vec3
	for i, c := range body.Cuboids {
		m := masses[i]
		parts[i] = geom.Vec3{
			X: float32(m * (float32(c.Y*c.Y) + float32(c.Z*c.Z))),
			Y: float32(m * (float32(c.Z*c.Z) + float32(c.X*c.X))),
			Z: float32(m * (float32(c.X*c.X) + float32(c.Y*c.Y))),
		}
	}
	it := parts[0].Add(parts[1])
	det := float32(float32(it.X*it.Y) * it.Z)
	recip := 1 / det
	inv := geom.Vec3{
		X: float32(recip * float32(it.Y*it.Z)),
		Y: float32(recip * float32(it.Z*it.X)),
		Z: float32(recip * float32(it.X*it.Y)),
	}

	pos := spawn.Pos
	for _, off := range spawn.GridOffsets {
		pos = pos.Add(off)
	}
	c := mesh.Query(kcl.Hitbox{Pos: pos, Radius: spawnQueryRadius, Mask: kcl.MaskCollide})
	if c.Hit() {
		nor := c.FloorNor()
		pos = pos.Add(c.Movement()).Sub(nor.Scale(spawnQueryRadius))
		pos = pos.Add(nor.Scale(body.InitialPosY))
	}

	dir := spawn.Rot.Rotate(geom.Front)
	return Physics{
		InvInertiaTensor:       geom.Mat34FromDiag(inv),
		RotFactor:              body.RotFactor,
		Mat:                    geom.Mat34FromQuatAndPos(spawn.Rot, pos),
		Up:                     geom.Up,
		SmoothedUp:             geom.Up,
		Dir:                    dir,
		Vel1Dir:                dir,
		Pos:                    pos,
		Gravity:                gravity,
		Rot0:                   spawn.Rot,
		Rot1:                   spawn.Rot,
		ConservedSpecialRot:    geom.Identity,
		NonConservedSpecialRot: geom.Identity,
	}
}

func (p *Physics) front() geom.Vec3 {
	return p.Mat.Mat33().MulVec(geom.Front)
}

// updateUps tracks the floor normal and picks this frame's stabilization
// factor.
func (p *Physics) updateUps(isInside bool, floor *Floor, hasHopHeight, isBoosting, isWheelieing, hasBoostRamp bool) {
	next := geom.Up
	if nor, ok := floor.Nor(); ok {
		next = nor
	}

	p.StabilizationFactor = 0.1
	switch {
	case floor.IsLanding():
		p.Up = next
		p.SmoothedUp = p.Up
		p.DirDiff = p.Dir.PerpInPlane(p.SmoothedUp, true)
		p.DirDiff = p.DirDiff.ProjUnit(p.DirDiff)
		if floor.LastAirtime() >= 20 {
			p.StabilizationFactor = 0.4
		}
		perp := p.Vel1Dir.RejUnit(p.Up)
		p.LandingAngle = -wii.ToDegrees(wii.Atan2(p.Vel1Dir.Dot(p.Up), wii.Sqrt(perp.SqNorm())))
	case hasHopHeight:
		if isInside {
			p.StabilizationFactor = 0.22
		} else {
			p.StabilizationFactor = 0.5
		}
	case floor.Airtime() > 20:
		if p.Up.Y > 0.99 {
			p.Up = geom.Up
		} else {
			p.Up = p.Up.Add(geom.Up.Sub(p.Up).Scale(0.03))
		}
		if p.SmoothedUp.Y > 0.99 {
			p.SmoothedUp = geom.Up
		} else {
			p.SmoothedUp = p.SmoothedUp.Add(geom.Up.Sub(p.SmoothedUp).Scale(0.03))
		}
	case floor.Airtime() == 0:
		p.Up = next

		smoothing := float32(0.8)
		if !isBoosting && !isWheelieing && !hasBoostRamp {
			smoothing = wii.Clamp(0.8-float32(6*wii.Abs(p.Up.Dot(p.front()))), 0.3, 0.8)
		}
		p.SmoothedUp = p.SmoothedUp.Add(p.Up.Sub(p.SmoothedUp).Scale(smoothing))
		p.SmoothedUp = p.SmoothedUp.Normalize()

		dot := p.front().Dot(p.SmoothedUp)
		if dot < -0.1 {
			p.StabilizationFactor = 0.1 + float32(0.5*wii.Min(wii.Abs(dot), 0.2))
		}
	}
}

// updateDirs steers the heading towards the vehicle's facing on the ground
// and freezes it in the air.
func (p *Physics) updateDirs(floor *Floor, kclRotFactor float32, drift *Drift, boostRampEnabled, jumpPadEnabled, isTricking bool) {
	if floor.Airtime() > 5 || (floor.IsAirborne() && (isTricking || jumpPadEnabled || boostRampEnabled)) {
		p.Vel1Dir = p.Dir
		return
	}

	next, ok := drift.HopDir()
	if !ok {
		right := p.Rot0.Rotate(geom.Right)
		next = right.Cross(p.SmoothedUp).Normalize()
	}
	angle := wii.ToRadians(drift.OutsideDriftAngle())
	next = geom.Mat34FromAxisAngle(p.SmoothedUp, angle).Mat33().MulVec(next)
	next = next.PerpInPlane(p.SmoothedUp, true)

	diff := next.Sub(p.Dir)
	if diff.SqNorm() <= wii.Epsilon {
		p.Dir = next
		p.DirDiff = geom.Zero
	} else {
		axis := p.Dir.Cross(next)
		diff = p.DirDiff.Add(diff.Scale(kclRotFactor))
		p.Dir = p.Dir.Add(diff).Normalize()
		p.DirDiff = diff.Scale(0.1)
		if axis.Dot(p.Dir.Cross(next)) < 0 {
			p.Dir = next
			p.DirDiff = geom.Zero
		}
	}
	p.Vel1Dir = p.Dir.PerpInPlane(p.SmoothedUp, true)
}

// updateLandingAngle bends the heading towards the pre-landing trajectory and
// relaxes the remaining angle.
func (p *Physics) updateLandingAngle() {
	if p.LandingAngle == 0 {
		return
	}
	p.LandingAngle = float32(p.LandingAngle * 0.9)
	if wii.Abs(p.LandingAngle) < 0.1 {
		p.LandingAngle = 0
		return
	}
	right := p.SmoothedUp.Cross(p.Dir)
	m := geom.Mat34FromAxisAngle(right, wii.ToRadians(p.LandingAngle)).Mat33()
	p.Vel1Dir = m.MulVec(p.Vel1Dir)
}

// driveInput is what updateVel1 needs from the player's buttons.
type driveInput struct {
	accelerate, brake         bool
	lastAccelerate, lastBrake bool
}

// updateVel1 computes the forward speed and the drive velocity.
func (p *Physics) updateVel1(
	stats *params.Stats,
	in driveInput,
	airtime uint32,
	speedFactor float32,
	isDrifting bool,
	boost *Boost,
	rawTurn float32,
	boostRampEnabled bool,
	jumpPadSpeed float32,
	jumpPadEnabled bool,
	isWheelieing bool,
	stage timer.Stage,
) {
	baseSpeed := stats.Common.BaseSpeed
	lastRatio := wii.Min(p.Speed1/baseSpeed, 1)

	if !isDrifting && stage == timer.Race {
		p.Speed1 += p.Speed1Adj
	}

	ground := airtime == 0
	reversing := false

	var acceleration float32
	switch {
	case !ground:
		if airtime > 5 && !boostRampEnabled && !jumpPadEnabled {
			p.Speed1 = float32(p.Speed1 * 0.999)
		}
	case boost.IsBoosting():
		acceleration, _ = boost.Acceleration()
	case stage != timer.Race:
	case in.accelerate:
		if isDrifting {
			acceleration = p.accelerationAt(stats.Common.DriftAccelerationYs[:], stats.Common.DriftAccelerationXs[:])
		} else {
			acceleration = p.accelerationAt(stats.Common.AccelerationYs[:], stats.Common.AccelerationXs[:])
			t := stats.Common.HandlingSpeedMultiplier
			p.Speed1 = float32(p.Speed1 * (t + float32((1-t)*(1-float32(wii.Abs(rawTurn)*lastRatio)))))
		}
	case in.brake:
		switch {
		case p.Speed1 > 0:
			acceleration = -3
		case in.lastBrake && !in.lastAccelerate:
			acceleration = -0.5
			reversing = true
		}
	default:
		p.Speed1 = float32(p.Speed1 * 0.98)
	}

	p.LastSpeed1 = p.Speed1
	p.Speed1 += acceleration

	wheelieBonus := float32(0)
	if isWheelieing {
		wheelieBonus = 0.15
	}
	next := float32(float32((boost.Factor()+wheelieBonus)*speedFactor) * baseSpeed)
	if limit, ok := boost.Limit(); ok {
		next = wii.Max(next, float32(limit*speedFactor))
	}
	if jumpPadEnabled {
		next = wii.Max(next, jumpPadSpeed)
	}
	p.Speed1SoftLimit = wii.Max(p.Speed1SoftLimit-3, next)
	p.Speed1SoftLimit = wii.Min(p.Speed1SoftLimit, maxSpeed)
	p.Speed1 = wii.Min(p.Speed1, p.Speed1SoftLimit)
	if reversing {
		p.Speed1 = wii.Max(p.Speed1, -20)
	}

	right := p.SmoothedUp.Cross(p.Dir)
	deg := float32(0.2)
	if ground {
		deg = 0.5
	}
	p.Vel1Dir = geom.Mat34FromAxisAngle(right, wii.ToRadians(deg)).Mat33().MulVec(p.Vel1Dir)
	p.Vel1 = p.Vel1Dir.Scale(p.Speed1)
}

// accelerationAt evaluates a piecewise linear curve over speed1 / soft limit.
// The first control point sits at zero and is implicit in xs.
func (p *Physics) accelerationAt(ys, xs []float32) float32 {
	t := p.Speed1 / p.Speed1SoftLimit
	if t < 0 {
		return 1
	}
	var x0 float32
	for i, x1 := range xs {
		if t < x1 {
			slope := (ys[i+1] - ys[i]) / (x1 - x0)
			return ys[i] + float32(slope*(t-x0))
		}
		x0 = x1
	}
	return ys[len(ys)-1]
}

// update integrates one frame.
func (p *Physics) update(stats *params.Stats, stage timer.Stage) {
	isBike := stats.Vehicle.DriftKind.IsBike()

	if stage != timer.Race {
		if isBike {
			p.Vel0 = p.Vel0.RejUnit(p.SmoothedUp)
		} else {
			p.Vel0.X = 0
			p.Vel0.Z = 0
		}
	}
	p.Vel0.Y += p.NormalAcceleration + p.Gravity
	p.NormalAcceleration = 0
	p.Vel0 = p.Vel0.Scale(vel0Damping).FlushDenormals()

	front := p.Rot0.Rotate(geom.Front)
	frontXZ := geom.Vec3{X: front.X, Z: front.Z}
	if frontXZ.SqNorm() > wii.Epsilon {
		frontXZ = frontXZ.Normalize()
		proj := p.Vel0.ProjUnit(frontXZ)
		p.Vel0 = p.Vel0.RejUnit(frontXZ)
		p.Speed1Adj = float32(float32(wii.Signum(frontXZ.Dot(proj))*proj.Norm()) * front.Dot(frontXZ))
	}

	p.Vel = p.Vel0.Add(p.Vel1)
	speed := wii.Min(p.Vel.Norm(), maxSpeed)
	p.Vel = p.Vel.Normalize().Scale(speed)
	p.Pos = p.Pos.Add(p.Vel)

	p.RotVec0 = p.RotVec0.Scale(rotVec0Damping).FlushDenormals()
	inv := p.InvInertiaTensor.Mat33()
	tmp0 := inv.MulVec(p.NormalRotVec)
	tmp1 := inv.MulVec(p.NormalRotVec.Add(tmp0))
	p.RotVec0 = p.RotVec0.Add(tmp0.Add(tmp1).Scale(0.5))
	p.NormalRotVec = geom.Zero
	if isBike {
		p.RotVec0.Z = 0
	}
	p.RotVec0.X = wii.Clamp(p.RotVec0.X, -0.4, 0.4)
	p.RotVec0.Y = wii.Clamp(p.RotVec0.Y, -0.4, 0.4)
	p.RotVec0.Z = wii.Clamp(p.RotVec0.Z, -0.8, 0.8)

	rotVec := p.RotVec0.Scale(p.RotFactor).Add(p.RotVec2)
	if rotVec.SqNorm() > wii.Epsilon {
		p.Rot0 = p.Rot0.Add(p.Rot0.Mul(geom.QuatFromVec3(rotVec)).Scale(0.5))
		p.Rot0 = p.Rot0.NormalizeOrIdentity()
	}
	p.stabilize(stats)
	p.Rot0 = p.Rot0.NormalizeOrIdentity()

	p.Rot1 = p.Rot0.Mul(p.ConservedSpecialRot).Mul(p.NonConservedSpecialRot).NormalizeOrIdentity()
	if p.ConservedSpecialRot != geom.Identity {
		p.ConservedSpecialRot = p.ConservedSpecialRot.SlerpTo(geom.Identity, specialRotDecay).FlushDenormals()
	}
}

func (p *Physics) stabilize(stats *params.Stats) {
	up := p.Up
	if stats.Vehicle.DriftKind.IsBike() {
		front := p.Rot0.Rotate(geom.Front)
		right := p.Up.Cross(front)
		front = right.Cross(p.Up).Normalize()

		ratio := wii.Clamp(p.Speed1/stats.Common.BaseSpeed, 0, 1)
		t := wii.Min(float32(2*ratio), 1)
		other := geom.Up.Scale(1 - t).Add(p.Up.Scale(t))
		if other.SqNorm() > wii.Epsilon {
			other = other.Normalize()
		} else {
			other = p.Up
		}
		right = other.Cross(front)
		up = front.Cross(right).Normalize()
	}

	rot0Up := p.Rot0.Rotate(geom.Up)
	if wii.Abs(up.Dot(rot0Up)) < 0.9999 {
		rot := geom.QuatFromVecs(rot0Up, up)
		p.Rot0 = p.Rot0.SlerpTo(rot.Mul(p.Rot0), p.StabilizationFactor)
	}
}

func (p *Physics) updateMat() {
	p.Mat = geom.Mat34FromQuatAndPos(p.Rot1, p.Pos)
}

// worldInvInertia rotates the inverse inertia tensor into world space.
func (p *Physics) worldInvInertia() geom.Mat33 {
	m := geom.Mat34FromQuatAndPos(p.Rot0, geom.Zero)
	return m.Mul(p.InvInertiaTensor).Mul(m.Transpose()).Mat33()
}

// pointVel is the velocity of the body point at posRel, relative to the
// vehicle centre.
func (p *Physics) pointVel(posRel geom.Vec3) geom.Vec3 {
	rotVec0 := p.RotVec0.Scale(p.RotFactor)
	spin := rotVec0.Cross(p.Rot0.InvRotate(posRel))
	return p.Rot0.Rotate(spin).Add(p.Vel0)
}

// applyRigidBodyMotion resolves a single contact at posRel moving with vel
// against a floor of normal floorNor. The tangential correction is skipped
// while boosting.
func (p *Physics) applyRigidBodyMotion(isBoosting bool, posRel, vel, floorNor geom.Vec3) {
	dot := vel.Dot(floorNor)
	if dot >= 0 {
		return
	}

	m := p.worldInvInertia()
	cross := m.MulVec(posRel.Cross(floorNor)).Cross(posRel)
	val := -dot / (1 + floorNor.Dot(cross))
	sum := floorNor.Scale(val)
	if !isBoosting {
		tangent := floorNor.Cross(vel.Neg()).Cross(floorNor).Normalize()
		other := float32(float32(val*vel.Dot(tangent)) / dot)
		other = float32(wii.Signum(other) * wii.Min(wii.Abs(other), float32(0.01*val)))
		sum = sum.Add(tangent.Scale(other))
	}

	lastVel0Y := p.Vel0.Y
	p.Vel0 = p.Vel0.Add(sum)
	if lastVel0Y < 0 && p.Vel0.Y > 0 && p.Vel0.Y < 10 {
		p.Vel0.Y = 0
	}
	rot := p.Rot0.InvRotate(m.MulVec(posRel.Cross(sum)))
	rot.Y = 0
	p.RotVec0 = p.RotVec0.Add(rot)
}

// flushDenormals mirrors the flush-to-zero mode of the console FPU on the
// stored state at the end of a frame. The geometric decays in update flush
// their results on the spot.
func (p *Physics) flushDenormals() {
	p.Up = p.Up.FlushDenormals()
	p.SmoothedUp = p.SmoothedUp.FlushDenormals()
	p.Dir = p.Dir.FlushDenormals()
	p.DirDiff = p.DirDiff.FlushDenormals()
	p.Vel1Dir = p.Vel1Dir.FlushDenormals()
	p.LandingAngle = wii.FlushDenormal(p.LandingAngle)
	p.Pos = p.Pos.FlushDenormals()
	p.Vel0 = p.Vel0.FlushDenormals()
	p.Vel1 = p.Vel1.FlushDenormals()
	p.Vel = p.Vel.FlushDenormals()
	p.Speed1 = wii.FlushDenormal(p.Speed1)
	p.Speed1Adj = wii.FlushDenormal(p.Speed1Adj)
	p.Speed1SoftLimit = wii.FlushDenormal(p.Speed1SoftLimit)
	p.RotVec0 = p.RotVec0.FlushDenormals()
	p.Rot0 = p.Rot0.FlushDenormals()
	p.Rot1 = p.Rot1.FlushDenormals()
	p.ConservedSpecialRot = p.ConservedSpecialRot.FlushDenormals()
}
