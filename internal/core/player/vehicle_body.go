package player

import (
	"github.com/zeusync/ghostsim/internal/core/kcl"
	"github.com/zeusync/ghostsim/internal/core/params"
	"github.com/zeusync/ghostsim/pkg/geom"
)

// VehicleBody queries the chassis spheres.
type VehicleBody struct {
	hitboxes []params.BodyHitbox
	lastPos  []geom.Vec3
	hasLast  bool

	collision         Collision
	hasFloorCollision bool
}

func newVehicleBody(hitboxes []params.BodyHitbox) *VehicleBody {
	return &VehicleBody{
		hitboxes:  hitboxes,
		lastPos:   make([]geom.Vec3, len(hitboxes)),
		collision: newCollision(),
	}
}

func (b *VehicleBody) Collision() *Collision {
	return &b.collision
}

// HasFloorCollision reports whether a chassis sphere itself touched the
// floor, as opposed to the floor borrowed from the wheels.
func (b *VehicleBody) HasFloorCollision() bool {
	return b.hasFloorCollision
}

func (b *VehicleBody) update(stats *params.CommonStats, isBoosting bool, p *Physics, props *SurfaceProps, mesh *kcl.Mesh) {
	b.collision = newCollision()
	b.hasFloorCollision = false

	var (
		count    int
		movement geom.Vec3
		posRel   geom.Vec3
	)
	for i, h := range b.hitboxes {
		if h.WallsOnly {
			continue
		}
		rel := p.Rot1.Rotate(h.Pos)
		pos := rel.Add(p.Pos)
		hb := kcl.Hitbox{Pos: pos, Radius: h.Radius, Mask: kcl.MaskCollide}
		if b.hasLast {
			last := b.lastPos[i]
			hb.LastPos = &last
		}
		b.lastPos[i] = pos

		kc := mesh.Query(hb)
		if !kc.Hit() {
			continue
		}
		count++
		movement = movement.Add(kc.Movement())
		b.collision.add(stats, &kc)
		props.add(&kc, true)
		posRel = posRel.Add(rel).Sub(kc.FloorNor().Scale(h.Radius))
	}
	b.hasLast = true

	if count == 0 {
		return
	}
	b.collision.finalize()
	b.hasFloorCollision = true

	p.Pos = p.Pos.Add(movement)
	posRel = posRel.Scale(1 / float32(count))

	nor, _ := b.collision.FloorNor()
	p.applyRigidBodyMotion(isBoosting, posRel, p.pointVel(posRel), nor)
}

func (b *VehicleBody) insertFloorNor(nor geom.Vec3) {
	b.collision.insertFloorNor(nor)
}
