// Package replay runs ghost inputs through the simulation and checks the
// resulting trajectory against a recording taken from the game.
package replay

import (
	"fmt"

	"github.com/zeusync/ghostsim/internal/core/player"
	"github.com/zeusync/ghostsim/pkg/encoding"
	"github.com/zeusync/ghostsim/pkg/geom"
)

const (
	trajectoryMagic   = 0x524b5244 // RKRD
	trajectoryVersion = 2

	headerSize = 8
	sampleSize = 34*4 + 2*2
)

// Sample is the recorded vehicle state at the end of one frame.
type Sample struct {
	RotVec2         geom.Vec3
	Speed1SoftLimit float32
	Speed1          float32
	FloorNor        geom.Vec3
	Dir             geom.Vec3
	Pos             geom.Vec3
	Vel0            geom.Vec3
	RotVec0         geom.Vec3
	Vel2            geom.Vec3
	Vel             geom.Vec3
	Rot0            geom.Quat
	Rot1            geom.Quat

	Animation     uint16
	CheckpointIdx uint16
}

// SampleFromPhysics captures the recorded fields of p. Animation and
// checkpoint are not simulated and stay zero.
func SampleFromPhysics(p player.Physics) Sample {
	return Sample{
		RotVec2:         p.RotVec2,
		Speed1SoftLimit: p.Speed1SoftLimit,
		Speed1:          p.Speed1,
		FloorNor:        p.SmoothedUp,
		Dir:             p.Dir,
		Pos:             p.Pos,
		Vel0:            p.Vel0,
		RotVec0:         p.RotVec0,
		Vel2:            p.Vel1,
		Vel:             p.Vel,
		Rot0:            p.Rot0,
		Rot1:            p.Rot1,
	}
}

// DecodeTrajectory parses a RKRD recording. Frames run until the end of the
// input, which must not stop inside a frame.
func DecodeTrajectory(data []byte) ([]Sample, error) {
	r := encoding.NewReader(data)
	if magic := r.U32(); magic != trajectoryMagic {
		return nil, fmt.Errorf("%w: bad magic %#x", ErrInvalidTrajectory, magic)
	}
	if version := r.U32(); version != trajectoryVersion {
		return nil, fmt.Errorf("%w: unsupported version %d", ErrInvalidTrajectory, version)
	}
	if err := r.Err(); err != nil {
		return nil, fmt.Errorf("%w: header: %w", ErrInvalidTrajectory, err)
	}
	if r.Len()%sampleSize != 0 {
		return nil, fmt.Errorf("%w: %d trailing bytes", ErrInvalidTrajectory, r.Len()%sampleSize)
	}

	samples := make([]Sample, 0, r.Len()/sampleSize)
	for r.Len() > 0 {
		samples = append(samples, readSample(r))
	}
	if err := r.Err(); err != nil {
		return nil, fmt.Errorf("%w: frame %d: %w", ErrInvalidTrajectory, len(samples), err)
	}
	return samples, nil
}

// EncodeTrajectory writes samples in the layout DecodeTrajectory reads.
func EncodeTrajectory(samples []Sample) []byte {
	w := encoding.NewWriter(headerSize + len(samples)*sampleSize)
	w.U32(trajectoryMagic)
	w.U32(trajectoryVersion)
	for i := range samples {
		writeSample(w, &samples[i])
	}
	return w.Bytes()
}

func readSample(r *encoding.Reader) Sample {
	var s Sample
	s.RotVec2 = readVec3(r)
	s.Speed1SoftLimit = r.F32()
	s.Speed1 = r.F32()
	s.FloorNor = readVec3(r)
	s.Dir = readVec3(r)
	s.Pos = readVec3(r)
	s.Vel0 = readVec3(r)
	s.RotVec0 = readVec3(r)
	s.Vel2 = readVec3(r)
	s.Vel = readVec3(r)
	s.Rot0 = readQuat(r)
	s.Rot1 = readQuat(r)
	s.Animation = r.U16()
	s.CheckpointIdx = r.U16()
	return s
}

func writeSample(w *encoding.Writer, s *Sample) {
	writeVec3(w, s.RotVec2)
	w.F32s(s.Speed1SoftLimit, s.Speed1)
	writeVec3(w, s.FloorNor)
	writeVec3(w, s.Dir)
	writeVec3(w, s.Pos)
	writeVec3(w, s.Vel0)
	writeVec3(w, s.RotVec0)
	writeVec3(w, s.Vel2)
	writeVec3(w, s.Vel)
	writeQuat(w, s.Rot0)
	writeQuat(w, s.Rot1)
	w.U16(s.Animation)
	w.U16(s.CheckpointIdx)
}

func readVec3(r *encoding.Reader) geom.Vec3 {
	var v [3]float32
	r.F32s(v[:])
	return geom.NewVec3(v[0], v[1], v[2])
}

func readQuat(r *encoding.Reader) geom.Quat {
	var q [4]float32
	r.F32s(q[:])
	return geom.NewQuat(q[0], q[1], q[2], q[3])
}

func writeVec3(w *encoding.Writer, v geom.Vec3) {
	w.F32s(v.X, v.Y, v.Z)
}

func writeQuat(w *encoding.Writer, q geom.Quat) {
	w.F32s(q.X, q.Y, q.Z, q.W)
}
