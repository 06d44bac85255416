package player

import (
	"github.com/zeusync/ghostsim/pkg/wii"
)

const (
	startBoostInc   = float32(0.02)
	startBoostSlope = float32(0.02) - float32(0.002)
)

// startBoostTiers maps the charge reached at the start signal to weak boost
// frames. A charge above the last tier is a burnout.
var startBoostTiers = [...]struct {
	charge float32
	frames uint16
}{
	{0.85, 0},
	{0.88, 10},
	{0.905, 20},
	{0.925, 30},
	{0.94, 45},
	{0.95, 70},
}

// StartBoost charges while accelerate is held during the countdown.
type StartBoost struct {
	charge float32
}

func (s *StartBoost) Charge() float32 {
	return s.charge
}

func (s *StartBoost) update(accelerate bool) {
	if accelerate {
		s.charge += startBoostInc - float32(startBoostSlope*s.charge)
	} else {
		s.charge = float32(s.charge * 0.96)
	}
	s.charge = wii.Clamp(s.charge, 0, 1)
}

// BoostFrames is the weak boost granted when the race starts.
func (s *StartBoost) BoostFrames() uint16 {
	for _, tier := range startBoostTiers {
		if s.charge <= tier.charge {
			return tier.frames
		}
	}
	return 0
}
