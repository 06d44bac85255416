package kcl

import "github.com/zeusync/ghostsim/pkg/geom"

// Hit is one triangle contact kept for FindClosest.
type Hit struct {
	Attr uint16
	Dist float32
}

// Collision aggregates every triangle touched by one hitbox.
type Collision struct {
	min          geom.Vec3
	max          geom.Vec3
	floorDist    float32
	floorNor     geom.Vec3
	surfaceKinds uint32
	hits         [maxCollisionHit]Hit
	hitCount     int
}

func (c *Collision) add(h triHit) {
	push := h.nor.Scale(h.dist)
	c.min = c.min.Min(push)
	c.max = c.max.Max(push)

	if h.dist > c.floorDist {
		c.floorDist = h.dist
		c.floorNor = h.nor
	}

	c.surfaceKinds |= KindBit(h.attr)

	if c.hitCount < len(c.hits) {
		c.hits[c.hitCount] = Hit{Attr: h.attr, Dist: h.dist}
		c.hitCount++
	}
}

// Movement is the push-out that resolves every contact.
func (c *Collision) Movement() geom.Vec3 {
	return c.min.Add(c.max)
}

// FloorNor is the normal of the deepest contact, zero when nothing was hit.
func (c *Collision) FloorNor() geom.Vec3 {
	return c.floorNor
}

func (c *Collision) FloorDist() float32 {
	return c.floorDist
}

func (c *Collision) SurfaceKinds() uint32 {
	return c.surfaceKinds
}

// Hit reports whether any triangle was touched.
func (c *Collision) Hit() bool {
	return c.hitCount > 0
}

// Hits returns the recorded contacts in query order.
func (c *Collision) Hits() []Hit {
	return c.hits[:c.hitCount]
}

// FindClosest returns the attribute of the deepest contact whose kind is in
// mask. Among equally deep contacts the later one wins.
func (c *Collision) FindClosest(mask uint32) (uint16, bool) {
	var (
		best  Hit
		found bool
	)
	for _, h := range c.hits[:c.hitCount] {
		if KindBit(h.Attr)&mask == 0 {
			continue
		}
		if !found || h.Dist >= best.Dist {
			best, found = h, true
		}
	}
	return best.Attr, found
}
