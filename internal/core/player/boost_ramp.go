package player

const boostRampFrames = 60

type BoostRamp struct {
	frames uint16
}

func (r *BoostRamp) Enabled() bool {
	return r.frames > 0
}

func (r *BoostRamp) tryStart(hasBoostRamp bool) {
	if hasBoostRamp {
		r.frames = boostRampFrames
	}
}

func (r *BoostRamp) update() {
	if r.frames > 0 {
		r.frames--
	}
}
