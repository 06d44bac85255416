package player

import (
	"github.com/zeusync/ghostsim/internal/core/timer"
	"github.com/zeusync/ghostsim/pkg/geom"
	"github.com/zeusync/ghostsim/pkg/wii"
)

const (
	leanMax     float32 = 0.6
	leanRotDiff float32 = 0.08
)

// Lean tilts bikes into turns.
type Lean struct {
	rot float32
}

func (l *Lean) Rot() float32 {
	return l.rot
}

// update leans towards the held stick, or the committed drift direction while
// drifting. Outside of the race the lean only decays.
func (l *Lean) update(stickX float32, airtime uint32, driftStickX float32, isDrifting, isWheelieing bool, p *Physics, stage timer.Stage) {
	var s float32
	switch {
	case stage != timer.Race:
		l.rot = float32(l.rot * 0.9)
	case isDrifting:
		s = -wii.Signum(driftStickX)
		l.rot -= float32(s * leanRotDiff)
	case wii.Abs(stickX) <= 0.2:
		l.rot = float32(l.rot * 0.9)
	default:
		s = -wii.Signum(stickX)
		l.rot -= float32(s * leanRotDiff)
	}

	if wii.Abs(l.rot) > leanMax {
		l.rot = float32(wii.Signum(l.rot) * leanMax)
	} else if !isDrifting && airtime == 0 && !isWheelieing && s != 0 {
		right := p.Mat.Mat33().MulVec(geom.Right)
		p.Vel0 = p.Vel0.Add(right.Scale(s))
	}

	p.RotVec2.Z += float32(0.05 * l.rot)
}
