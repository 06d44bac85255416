package player

import (
	"github.com/zeusync/ghostsim/internal/core/input"
	"github.com/zeusync/ghostsim/pkg/geom"
	"github.com/zeusync/ghostsim/pkg/wii"
)

const (
	wheelieCooldown  = 20
	wheelieMinFrames = 15
	wheelieMaxFrames = 180
	wheelieMaxRot    float32 = 0.07
)

// Wheelie is the bike-only nose-up state entered with the up trick input.
type Wheelie struct {
	isWheelieing bool
	cooldown     uint16
	frame        uint16
	rot          float32
	rotDec       float32
}

func (w *Wheelie) IsWheelieing() bool {
	return w != nil && w.isWheelieing
}

// Rot is the pitch currently added on top of the body rotation.
func (w *Wheelie) Rot() float32 {
	return w.rot
}

func (w *Wheelie) update(baseSpeed float32, trick input.Trick, isAirborne bool, drift *Drift, p *Physics) {
	switch trick {
	case input.TrickUp:
		w.tryStart(isAirborne, drift.IsDrifting())
	case input.TrickDown:
		w.tryCancel()
	}

	if w.cooldown > 0 {
		w.cooldown--
	}

	if w.isWheelieing {
		w.frame++
		if w.shouldCancel(baseSpeed, p) {
			w.cancel()
		} else {
			w.rot = wii.Min(w.rot+0.01, wheelieMaxRot)
			p.RotVec0.X = float32(p.RotVec0.X * 0.9)
		}
	} else if w.rot > 0 {
		w.rotDec += 0.001
		w.rot = wii.Max(w.rot-w.rotDec, 0)
	}

	cos := geom.Up.Dot(p.Vel1Dir)
	if cos <= 0.5 || w.frame < wheelieMinFrames {
		p.RotVec2.X -= float32(w.rot * (1 - wii.Abs(cos)))
	}
}

func (w *Wheelie) tryStart(isAirborne, isDrifting bool) {
	if w.isWheelieing || w.cooldown > 0 || isDrifting || isAirborne {
		return
	}
	w.isWheelieing = true
	w.cooldown = wheelieCooldown
}

func (w *Wheelie) tryCancel() {
	if !w.isWheelieing || w.cooldown > 0 {
		return
	}
	w.cancel()
	w.cooldown = wheelieCooldown
}

func (w *Wheelie) shouldCancel(baseSpeed float32, p *Physics) bool {
	switch {
	case w.frame < wheelieMinFrames:
		return false
	case w.frame > wheelieMaxFrames:
		return true
	default:
		return p.Speed1 < 0 || p.Speed1/baseSpeed < 0.3
	}
}

// cancel ends the wheelie. The pitch keeps decaying afterwards.
func (w *Wheelie) cancel() {
	w.isWheelieing = false
	w.frame = 0
	w.rotDec = 0
}
