package player

import (
	"github.com/zeusync/ghostsim/internal/core/params"
	"github.com/zeusync/ghostsim/pkg/wii"
)

// FloorFactors blends the surface speed and rotation factors of every floor
// contact.
type FloorFactors struct {
	speedFactor   float32
	rotFactor     float32
	invincibility uint16
}

func newFloorFactors() FloorFactors {
	return FloorFactors{speedFactor: 1, rotFactor: 1}
}

func (f *FloorFactors) SpeedFactor() float32 { return f.speedFactor }
func (f *FloorFactors) RotFactor() float32   { return f.rotFactor }

// Invincibility is the number of frames left during which off-road factors
// are ignored.
func (f *FloorFactors) Invincibility() uint16 { return f.invincibility }

func (f *FloorFactors) updateFactors(stats *params.CommonStats, wheels []*Wheel, body *VehicleBody) {
	var (
		speedMin, rotSum   float32
		hasSpeed, hasRot   bool
		wheelFloorContacts int
	)
	visit := func(c *Collision) {
		if sf, ok := c.SpeedFactor(); ok {
			if hasSpeed {
				speedMin = wii.Min(speedMin, sf)
			} else {
				speedMin, hasSpeed = sf, true
			}
		}
		if rf, ok := c.RotFactor(); ok {
			if hasRot {
				rotSum += rf
			} else {
				rotSum, hasRot = rf, true
			}
		}
	}
	for _, w := range wheels {
		visit(w.Collision())
		if _, ok := w.Collision().FloorNor(); ok {
			wheelFloorContacts++
		}
	}
	visit(body.Collision())

	switch {
	case f.invincibility > 0:
		f.speedFactor = stats.KCLSpeedFactors[0]
	case hasSpeed:
		f.speedFactor = speedMin
	}

	switch {
	case f.invincibility > 0:
		f.rotFactor = stats.KCLRotFactors[0]
	case hasRot:
		contacts := wheelFloorContacts
		// The game counts the body twice when it and a wheel both touch
		// the floor.
		if wheelFloorContacts > 0 && body.HasFloorCollision() {
			contacts++
		}
		if _, ok := body.Collision().FloorNor(); ok {
			contacts++
		}
		f.rotFactor = rotSum / float32(contacts)
	}
}

func (f *FloorFactors) activateInvincibility(frames uint16) {
	f.invincibility = max(f.invincibility, frames)
}

func (f *FloorFactors) updateInvincibility() {
	if f.invincibility > 0 {
		f.invincibility--
	}
}
