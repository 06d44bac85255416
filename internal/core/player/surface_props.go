package player

import (
	"github.com/zeusync/ghostsim/internal/core/kcl"
)

// SurfaceProps collects the special surfaces touched during one frame. They
// take effect on the next frame.
type SurfaceProps struct {
	hasBoostPanel bool
	hasBoostRamp  bool
	boostRamp     kcl.BoostRampVariant
	rampSeen      bool
	hasJumpPad    bool
	jumpPad       kcl.JumpPadVariant
	hasStickyRoad bool
}

// reset keeps the last boost ramp variant so a trick started after leaving
// the ramp still knows which flip it forces.
func (s *SurfaceProps) reset() {
	s.hasBoostPanel = false
	s.hasBoostRamp = false
	s.hasJumpPad = false
	s.hasStickyRoad = false
}

func (s *SurfaceProps) HasBoostPanel() bool { return s.hasBoostPanel }
func (s *SurfaceProps) HasBoostRamp() bool  { return s.hasBoostRamp }
func (s *SurfaceProps) HasStickyRoad() bool { return s.hasStickyRoad }

func (s *SurfaceProps) BoostRamp() (kcl.BoostRampVariant, bool) {
	return s.boostRamp, s.rampSeen
}

func (s *SurfaceProps) JumpPad() (kcl.JumpPadVariant, bool) {
	return s.jumpPad, s.hasJumpPad
}

func (s *SurfaceProps) add(kc *kcl.Collision, allowBoostPanels bool) {
	if _, ok := kc.FindClosest(kcl.KindStickyWall); ok {
		s.hasStickyRoad = true
	}

	if _, ok := kc.FindClosest(kcl.MaskCollide); !ok {
		return
	}
	if allowBoostPanels && kc.SurfaceKinds()&kcl.KindBoostPanel != 0 {
		s.hasBoostPanel = true
	}
	if attr, ok := kc.FindClosest(kcl.KindBoostRamp); ok {
		s.hasBoostRamp = true
		s.boostRamp = kcl.NewBoostRampVariant(attr)
		s.rampSeen = true
	} else {
		s.hasBoostRamp = false
	}
	if kc.SurfaceKinds()&kcl.KindStickyRoad != 0 {
		s.hasStickyRoad = true
	}
	if attr, ok := kc.FindClosest(kcl.KindJumpPad); ok {
		s.hasJumpPad = true
		s.jumpPad = kcl.NewJumpPadVariant(attr)
	}
}
