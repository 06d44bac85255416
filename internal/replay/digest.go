package replay

import (
	"github.com/cespare/xxhash/v2"

	"github.com/zeusync/ghostsim/internal/core/player"
	"github.com/zeusync/ghostsim/pkg/encoding"
)

// Digest fingerprints a trajectory from the bit patterns of its recorded
// fields. Two runs with equal digests produced identical trajectories.
type Digest struct {
	h   *xxhash.Digest
	buf *encoding.Writer
}

func NewDigest() *Digest {
	return &Digest{h: xxhash.New(), buf: encoding.NewWriter(sampleSize)}
}

// Add folds the state at the end of one frame into the digest.
func (d *Digest) Add(p player.Physics) {
	d.AddSample(SampleFromPhysics(p))
}

// AddSample folds a recorded frame. Animation and checkpoint are ignored.
func (d *Digest) AddSample(s Sample) {
	s.Animation, s.CheckpointIdx = 0, 0
	d.buf.Reset()
	writeSample(d.buf, &s)
	_, _ = d.h.Write(d.buf.Bytes())
}

func (d *Digest) Sum64() uint64 {
	return d.h.Sum64()
}

// TrajectoryDigest hashes a whole recording the way a run digest is built.
func TrajectoryDigest(samples []Sample) uint64 {
	d := NewDigest()
	for _, s := range samples {
		d.AddSample(s)
	}
	return d.Sum64()
}
