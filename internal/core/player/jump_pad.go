package player

import (
	"github.com/zeusync/ghostsim/internal/core/kcl"
	"github.com/zeusync/ghostsim/pkg/wii"
)

// JumpPad launches the vehicle and holds its variant until landing.
type JumpPad struct {
	appliedDir bool
	enabled    bool
	variant    kcl.JumpPadVariant
}

func (j *JumpPad) Enabled() bool {
	return j.enabled
}

// AppliedDir is true on the frame the launch flattened the heading.
func (j *JumpPad) AppliedDir() bool {
	return j.appliedDir
}

func (j *JumpPad) Speed() (float32, bool) {
	if !j.enabled {
		return 0, false
	}
	return j.variant.Speed(), true
}

func (j *JumpPad) tryStart(p *Physics, variant kcl.JumpPadVariant, touched bool) {
	j.appliedDir = false
	if j.enabled || !touched {
		return
	}

	p.Vel0.Y = variant.VelY()
	p.NormalAcceleration = 0

	prev := p.Dir
	p.Dir.Y = 0
	p.Dir = p.Dir.Normalize()
	p.Vel1Dir = p.Dir
	p.Speed1 = float32(p.Speed1 * p.Dir.Dot(prev))
	p.Speed1 = wii.Max(p.Speed1, variant.Speed())

	j.appliedDir = true
	j.enabled = true
	j.variant = variant
}

func (j *JumpPad) end() {
	j.enabled = false
}
