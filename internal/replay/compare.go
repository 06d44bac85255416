package replay

import (
	"fmt"
	"math"

	"github.com/zeusync/ghostsim/internal/core/player"
	"github.com/zeusync/ghostsim/pkg/geom"
)

// Mismatch is one scalar whose bits differ from the recording.
type Mismatch struct {
	Frame uint32
	// Field is the recorded field name, with a component suffix for vectors
	// and quaternions ("pos.y").
	Field string
	Want  float32
	Got   float32
}

func (m Mismatch) String() string {
	return fmt.Sprintf("frame %d: %s: want %v (%#08x), got %v (%#08x)",
		m.Frame, m.Field, m.Want, math.Float32bits(m.Want), m.Got, math.Float32bits(m.Got))
}

var (
	vec3Components = [3]string{"x", "y", "z"}
	quatComponents = [4]string{"x", "y", "z", "w"}
)

// Compare checks every recorded field of got against want bit for bit and
// returns the differing scalars in recording order. NaNs match only when
// their payloads do.
func Compare(frameIdx uint32, p player.Physics, want Sample) []Mismatch {
	return compareSamples(frameIdx, SampleFromPhysics(p), want)
}

func compareSamples(frameIdx uint32, got, want Sample) []Mismatch {
	c := comparer{frame: frameIdx}
	c.vec3("rot_vec2", want.RotVec2, got.RotVec2)
	c.scalar("speed1_soft_limit", want.Speed1SoftLimit, got.Speed1SoftLimit)
	c.scalar("speed1", want.Speed1, got.Speed1)
	c.vec3("floor_nor", want.FloorNor, got.FloorNor)
	c.vec3("dir", want.Dir, got.Dir)
	c.vec3("pos", want.Pos, got.Pos)
	c.vec3("vel0", want.Vel0, got.Vel0)
	c.vec3("rot_vec0", want.RotVec0, got.RotVec0)
	c.vec3("vel2", want.Vel2, got.Vel2)
	c.vec3("vel", want.Vel, got.Vel)
	c.quat("rot0", want.Rot0, got.Rot0)
	c.quat("rot1", want.Rot1, got.Rot1)
	return c.out
}

type comparer struct {
	frame uint32
	out   []Mismatch
}

func (c *comparer) scalar(field string, want, got float32) {
	if math.Float32bits(want) == math.Float32bits(got) {
		return
	}
	c.out = append(c.out, Mismatch{Frame: c.frame, Field: field, Want: want, Got: got})
}

func (c *comparer) vec3(field string, want, got geom.Vec3) {
	w, g := [3]float32{want.X, want.Y, want.Z}, [3]float32{got.X, got.Y, got.Z}
	for i, name := range vec3Components {
		c.scalar(field+"."+name, w[i], g[i])
	}
}

func (c *comparer) quat(field string, want, got geom.Quat) {
	w, g := [4]float32{want.X, want.Y, want.Z, want.W}, [4]float32{got.X, got.Y, got.Z, got.W}
	for i, name := range quatComponents {
		c.scalar(field+"."+name, w[i], g[i])
	}
}
