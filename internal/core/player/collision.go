package player

import (
	"github.com/zeusync/ghostsim/internal/core/kcl"
	"github.com/zeusync/ghostsim/internal/core/params"
	"github.com/zeusync/ghostsim/pkg/geom"
	"github.com/zeusync/ghostsim/pkg/wii"
)

// Collision combines the mesh contacts of one wheel or of the vehicle body
// with the per-surface factor tables.
type Collision struct {
	count        uint8
	floorNor     geom.Vec3
	hasFloor     bool
	speedFactor  float32
	rotFactor    float32
	hasTrickable bool
}

func newCollision() Collision {
	return Collision{speedFactor: 1}
}

func (c *Collision) FloorNor() (geom.Vec3, bool) {
	return c.floorNor, c.hasFloor
}

// SpeedFactor is the slowest surface touched, if any floor was touched.
func (c *Collision) SpeedFactor() (float32, bool) {
	return c.speedFactor, c.hasFloor
}

func (c *Collision) RotFactor() (float32, bool) {
	return c.rotFactor, c.hasFloor
}

func (c *Collision) HasTrickable() bool {
	return c.hasTrickable
}

func (c *Collision) add(stats *params.CommonStats, kc *kcl.Collision) {
	c.count++
	c.floorNor = c.floorNor.Add(kc.FloorNor())
	c.hasFloor = true

	attr, ok := kc.FindClosest(kcl.MaskCollide)
	if !ok {
		return
	}
	if kcl.Trickable(attr) {
		c.hasTrickable = true
	}
	kind := kcl.Kind(attr)
	c.speedFactor = wii.Min(c.speedFactor, stats.KCLSpeedFactors[kind])
	c.rotFactor += stats.KCLRotFactors[kind]
	if _, ok := kc.FindClosest(kcl.KindJumpPad); ok {
		c.hasTrickable = true
	}
}

func (c *Collision) finalize() {
	if c.hasFloor {
		c.floorNor = c.floorNor.Normalize()
	}
	if c.count > 0 {
		c.rotFactor /= float32(c.count)
	}
}

// insertFloorNor makes the body report the averaged wheel floor.
func (c *Collision) insertFloorNor(nor geom.Vec3) {
	c.floorNor = nor
	c.hasFloor = true
	c.rotFactor = 1
}
