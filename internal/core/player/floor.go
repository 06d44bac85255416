package player

import (
	"github.com/zeusync/ghostsim/pkg/geom"
)

const trickableFrames = 3

// Floor tracks ground contact across frames.
type Floor struct {
	nor            geom.Vec3
	hasNor         bool
	airtime        uint32
	lastAirtime    uint32
	hasTrickable   bool
	trickableTimer uint8
}

func (f *Floor) Nor() (geom.Vec3, bool) {
	return f.nor, f.hasNor
}

// Airtime counts consecutive frames without floor contact.
func (f *Floor) Airtime() uint32 {
	return f.airtime
}

func (f *Floor) LastAirtime() uint32 {
	return f.lastAirtime
}

func (f *Floor) IsAirborne() bool {
	return f.airtime > 0
}

// IsLanding is true on the first grounded frame after an airborne one.
func (f *Floor) IsLanding() bool {
	return f.airtime == 0 && f.lastAirtime != 0
}

// HasTrickable stays set for a few frames after leaving a trickable surface.
func (f *Floor) HasTrickable() bool {
	return f.hasTrickable
}

func (f *Floor) update(collisions []*Collision) {
	f.hasNor = false
	for _, c := range collisions {
		nor, ok := c.FloorNor()
		if !ok {
			continue
		}
		if f.hasNor {
			f.nor = f.nor.Add(nor)
		} else {
			f.nor, f.hasNor = nor, true
		}
	}
	if f.hasNor {
		f.nor = f.nor.Normalize()
	}

	f.lastAirtime = f.airtime
	if f.hasNor {
		f.airtime = 0
	} else {
		f.airtime++
	}

	if f.trickableTimer > 0 {
		f.trickableTimer--
	}
	if f.IsAirborne() {
		return
	}
	for _, c := range collisions {
		if c.HasTrickable() {
			f.trickableTimer = trickableFrames
			break
		}
	}
	f.hasTrickable = f.trickableTimer > 0
}
