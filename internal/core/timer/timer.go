// Package timer counts race frames.
package timer

// Stage is the coarse phase of the race.
type Stage uint8

const (
	Pan Stage = iota
	Countdown
	Race
)

const (
	CountdownStart = 172
	RaceStart      = 411
)

func (s Stage) String() string {
	switch s {
	case Pan:
		return "pan"
	case Countdown:
		return "countdown"
	default:
		return "race"
	}
}

type Timer struct {
	frameIdx uint32
}

func New() *Timer {
	return &Timer{}
}

func (t *Timer) Update() {
	t.frameIdx++
}

func (t *Timer) FrameIdx() uint32 {
	return t.frameIdx
}

func (t *Timer) Stage() Stage {
	return StageAt(t.frameIdx)
}

// StageAt maps a frame index to its stage.
func StageAt(frameIdx uint32) Stage {
	switch {
	case frameIdx < CountdownStart:
		return Pan
	case frameIdx < RaceStart:
		return Countdown
	default:
		return Race
	}
}
