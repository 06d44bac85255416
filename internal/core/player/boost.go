package player

import "math"

// BoostKind orders boosts by priority, highest first.
type BoostKind uint8

const (
	// BoostMedium comes from tricks and zippers.
	BoostMedium BoostKind = iota
	// BoostStrong comes from mushrooms and boost panels.
	BoostStrong
	// BoostWeak comes from start boosts and mini-turbos.
	BoostWeak
	boostKindCount
)

func (k BoostKind) String() string {
	switch k {
	case BoostMedium:
		return "medium"
	case BoostStrong:
		return "strong"
	case BoostWeak:
		return "weak"
	default:
		return "unknown"
	}
}

// Boost keeps one independent countdown per kind.
type Boost struct {
	durations [boostKindCount]uint16
}

// Kind returns the highest priority boost with frames left.
func (b *Boost) Kind() (BoostKind, bool) {
	for k := BoostMedium; k < boostKindCount; k++ {
		if b.durations[k] > 0 {
			return k, true
		}
	}
	return 0, false
}

func (b *Boost) IsBoosting() bool {
	_, ok := b.Kind()
	return ok
}

// Duration is the number of frames left for kind.
func (b *Boost) Duration(kind BoostKind) uint16 {
	return b.durations[kind]
}

// Factor scales the soft speed limit.
func (b *Boost) Factor() float32 {
	k, ok := b.Kind()
	if !ok {
		return 1
	}
	switch k {
	case BoostMedium:
		return 1.3
	case BoostStrong:
		return 1.4
	default:
		return 1.2
	}
}

func (b *Boost) Acceleration() (float32, bool) {
	k, ok := b.Kind()
	if !ok {
		return 0, false
	}
	switch k {
	case BoostMedium:
		return 6, true
	case BoostStrong:
		return 7, true
	default:
		return 3, true
	}
}

// Limit is an absolute soft speed limit some boosts guarantee.
func (b *Boost) Limit() (float32, bool) {
	if k, ok := b.Kind(); ok && k == BoostMedium {
		return 115, true
	}
	return 0, false
}

// Activate grants frames plus the current frame, saturating at the counter
// range. A shorter grant never cuts a running boost.
func (b *Boost) Activate(kind BoostKind, frames uint16) {
	if frames < math.MaxUint16 {
		frames++
	}
	b.durations[kind] = max(frames, b.durations[kind])
}

func (b *Boost) update() {
	for i := range b.durations {
		if b.durations[i] > 0 {
			b.durations[i]--
		}
	}
}
