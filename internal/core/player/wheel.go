package player

import (
	"github.com/zeusync/ghostsim/internal/core/kcl"
	"github.com/zeusync/ghostsim/internal/core/params"
	"github.com/zeusync/ghostsim/pkg/geom"
	"github.com/zeusync/ghostsim/pkg/wii"
)

const (
	suspensionRelax   float32 = 5
	initialHitboxSize float32 = 10
	wheelDownVel      float32 = 10 * 1.3
)

// Wheel is one suspension and its contact hitbox.
type Wheel struct {
	handle *params.Handle
	spec   params.WheelSpec

	axisS        float32
	axis         geom.Vec3
	topmostPos   geom.Vec3
	pos          geom.Vec3
	lastPosRel   geom.Vec3
	hitboxPosRel geom.Vec3
	hitboxRadius float32
	collision    Collision
}

// newWheel places the wheel at full extension below its anchor. The handle,
// if any, is ignored on the first frame and the hitbox radius starts at a
// fixed size.
func newWheel(handle *params.Handle, spec params.WheelSpec, vehiclePos geom.Vec3) *Wheel {
	topmost := spec.TopmostPos.Add(vehiclePos)
	pos := topmost.Add(geom.Down.Scale(spec.SlackY))
	return &Wheel{
		handle:       handle,
		spec:         spec,
		axisS:        spec.SlackY,
		axis:         geom.Down,
		topmostPos:   topmost,
		pos:          pos,
		lastPosRel:   pos.Sub(topmost),
		hitboxRadius: initialHitboxSize,
		collision:    newCollision(),
	}
}

func (w *Wheel) Collision() *Collision {
	return &w.collision
}

// HitboxPosRel is the hitbox centre relative to the vehicle on the last
// update.
func (w *Wheel) HitboxPosRel() geom.Vec3 {
	return w.hitboxPosRel
}

func (w *Wheel) mat(p *Physics) geom.Mat34 {
	if w.handle == nil {
		return p.Mat
	}
	return p.Mat.Mul(geom.Mat34FromAnglesAndPos(w.handle.Angles, w.handle.Pos))
}

// update relaxes the suspension, queries the mesh and applies the contact
// impulse. When the wheel touched the floor it returns how far the contact
// pushed past the suspension anchor, which moves the whole vehicle.
func (w *Wheel) update(
	stats *params.CommonStats,
	leanRot float32,
	isWheelieing bool,
	p *Physics,
	props *SurfaceProps,
	mesh *kcl.Mesh,
) (geom.Vec3, bool) {
	w.collision = newCollision()

	w.axisS = wii.Min(w.axisS+suspensionRelax, w.spec.SlackY)
	m := w.mat(p)
	w.topmostPos = m.MulVec(w.spec.TopmostPos)
	w.axis = m.Mat33().MulVec(geom.Down)
	lastPos := w.pos
	w.pos = w.topmostPos.Add(w.axis.Scale(w.axisS))

	hitboxPos := w.pos.Add(w.axis.Scale(w.spec.WheelRadius - w.spec.HitboxRadius))
	if w.handle != nil {
		right := m.Mat33().MulVec(geom.Right)
		hitboxPos = hitboxPos.Add(right.Scale(float32(float32(leanRot*w.hitboxRadius) * 0.3)))
	}
	kc := mesh.Query(kcl.Hitbox{Pos: hitboxPos, Radius: w.hitboxRadius, Mask: kcl.MaskCollide})
	w.hitboxRadius = w.spec.HitboxRadius
	if !kc.Hit() {
		return geom.Zero, false
	}

	w.pos = w.pos.Add(kc.Movement())
	w.collision.add(stats, &kc)
	w.collision.finalize()
	props.add(&kc, true)

	var movement geom.Vec3
	s := w.axis.Dot(w.pos.Sub(w.topmostPos))
	if s < 0 {
		movement = w.axis.Scale(s)
		s = 0
	}
	w.axisS = s
	w.pos = w.topmostPos.Add(w.axis.Scale(w.axisS))

	w.hitboxPosRel = hitboxPos.Sub(p.Pos)
	nor, _ := w.collision.FloorNor()
	w.applyImpulse(isWheelieing, p, w.pos.Sub(lastPos).Sub(p.Vel1), nor)

	return movement, true
}

func (w *Wheel) applyImpulse(isWheelieing bool, p *Physics, vel, nor geom.Vec3) {
	dot := vel.Add(geom.Down.Scale(wheelDownVel)).Dot(nor)
	if dot >= 0 {
		return
	}
	cross := nor.Cross(vel.Neg()).Cross(nor)
	if cross.SqNorm() <= wii.Epsilon {
		return
	}

	m := p.worldInvInertia()
	rel := w.hitboxPosRel
	other := m.MulVec(rel.Cross(nor)).Cross(rel)
	val := -dot / (1 + nor.Dot(other))
	cross = cross.Normalize()
	cross = cross.Scale(float32(float32(val*wii.Min(vel.Dot(cross), 0)) / dot))

	front := p.Rot1.Rotate(geom.Front)
	proj := cross.ProjUnit(front)
	projNorm := wii.Sqrt(proj.SqNorm())
	projNorm = float32(wii.Signum(projNorm) * wii.Min(wii.Abs(projNorm), float32(0.1*wii.Abs(val))))
	proj = proj.Normalize().Scale(projNorm)
	rej := cross.RejUnit(front)
	rejNorm := wii.Sqrt(rej.SqNorm())
	rejNorm = float32(wii.Signum(rejNorm) * wii.Min(wii.Abs(rejNorm), float32(0.8*wii.Abs(val))))
	rej = rej.Normalize().Scale(rejNorm)

	sum := proj.Add(rej)
	p.Vel0 = p.Vel0.Add(sum.RejUnit(p.Dir))
	if isWheelieing {
		return
	}
	rot := p.Rot0.InvRotate(m.MulVec(rel.Cross(sum)))
	rot.Y = 0
	p.RotVec0 = p.RotVec0.Add(rot)
}

// applySuspension pushes the vehicle away from the floor once every wheel and
// the body have been resolved and the vehicle moved by movement.
func (w *Wheel) applySuspension(isWheelieing bool, p *Physics, movement geom.Vec3) {
	w.topmostPos = w.topmostPos.Add(movement)
	w.pos = w.topmostPos.Add(w.axis.Scale(w.axisS))
	posRel := w.pos.Sub(w.topmostPos)

	if _, ok := w.collision.FloorNor(); ok {
		dist := w.spec.SlackY - w.axis.Dot(posRel)
		distAcc := float32(-w.spec.DistSuspension * dist)
		speed := w.axis.Dot(w.lastPosRel.Sub(posRel))
		speedAcc := float32(-w.spec.SpeedSuspension * speed)
		acc := w.axis.Scale(distAcc + speedAcc)
		if p.Vel0.Y <= 5 {
			p.NormalAcceleration += acc.Y
		}

		topmostRel := p.Rot1.InvRotate(w.topmostPos.Sub(p.Pos))
		rot := topmostRel.Cross(p.Rot1.InvRotate(acc))
		rot.Y = 0
		if isWheelieing {
			rot.X = 0
		}
		p.NormalRotVec = p.NormalRotVec.Add(rot)
	}

	w.lastPosRel = posRel
}
