package player

import (
	"github.com/zeusync/ghostsim/internal/core/kcl"
	"github.com/zeusync/ghostsim/pkg/geom"
)

const (
	stickyQueryRadius float32 = 200
	stickyQuerySteps          = 3
)

// StickyRoad keeps the heading glued to sticky surfaces, such as loops and
// walls that can be driven on.
type StickyRoad struct {
	enabled bool
}

func (s *StickyRoad) Enabled() bool {
	return s.enabled
}

func (s *StickyRoad) update(p *Physics, hasStickyRoad bool, mesh *kcl.Mesh) {
	if hasStickyRoad {
		s.enabled = true
	}
	if !s.enabled {
		return
	}

	pos := p.Pos
	vel := p.Vel1Dir.Scale(p.Speed1)
	step := p.Mat.Mat33().MulVec(geom.Vec3{Y: stickyQueryRadius})
	for i := 0; i < stickyQuerySteps; i++ {
		kc := mesh.Query(kcl.Hitbox{Pos: pos.Add(vel), Radius: stickyQueryRadius, Mask: kcl.KindSticky})
		if kc.SurfaceKinds()&kcl.KindSticky != 0 {
			p.Vel1Dir = p.Vel1Dir.PerpInPlane(kc.FloorNor(), true)
			return
		}
		pos = pos.Sub(step)
		vel = vel.Scale(0.5)
	}

	s.enabled = false
}
