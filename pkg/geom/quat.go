package geom

import (
	"math"

	"github.com/zeusync/ghostsim/pkg/wii"
)

type Quat struct {
	X, Y, Z, W float32
}

var (
	Identity = Quat{0, 0, 0, 1}
	// Flipped faces Back, the orientation every vehicle spawns with.
	Flipped = Quat{0, 1, 0, 0}
)

func NewQuat(x, y, z, w float32) Quat {
	return Quat{X: x, Y: y, Z: z, W: w}
}

// QuatFromAngles builds the rotation for Euler angles in radians.
func QuatFromAngles(angles Vec3) Quat {
	half := angles.Scale(0.5)
	s, c := half.Sin(), half.Cos()
	return Quat{
		X: float32(float32(c.Z*c.Y)*s.X) - float32(float32(s.Z*s.Y)*c.X),
		Y: float32(float32(c.Z*s.Y)*c.X) + float32(float32(s.Z*c.Y)*s.X),
		Z: float32(float32(s.Z*c.Y)*c.X) - float32(float32(c.Z*s.Y)*s.X),
		W: float32(float32(c.Z*c.Y)*c.X) + float32(float32(s.Z*s.Y)*s.X),
	}
}

// QuatFromVecs returns the shortest rotation taking from onto to. Opposite
// vectors give the identity.
func QuatFromVecs(from, to Vec3) Quat {
	s := wii.Sqrt(float32(2 * (from.Dot(to) + 1)))
	if s <= wii.Epsilon {
		return Identity
	}
	recip := 1 / s
	cross := from.Cross(to)
	return Quat{
		X: float32(recip * cross.X),
		Y: float32(recip * cross.Y),
		Z: float32(recip * cross.Z),
		W: float32(0.5 * s),
	}
}

func QuatFromAxisAngle(axis Vec3, angle float32) Quat {
	half := float32(0.5 * angle)
	return Quat{
		X: float32(wii.Sin(half) * axis.X),
		Y: float32(wii.Sin(half) * axis.Y),
		Z: float32(wii.Sin(half) * axis.Z),
		W: wii.Cos(half),
	}
}

// QuatFromVec3 embeds v as a pure quaternion.
func QuatFromVec3(v Vec3) Quat {
	return Quat{v.X, v.Y, v.Z, 0}
}

// Vec3 drops the scalar part.
func (q Quat) Vec3() Vec3 {
	return Vec3{q.X, q.Y, q.Z}
}

func (q Quat) Add(o Quat) Quat {
	return Quat{q.X + o.X, q.Y + o.Y, q.Z + o.Z, q.W + o.W}
}

func (q Quat) Scale(s float32) Quat {
	return Quat{float32(s * q.X), float32(s * q.Y), float32(s * q.Z), float32(s * q.W)}
}

func (q Quat) Invert() Quat {
	return Quat{-q.X, -q.Y, -q.Z, q.W}
}

func (q Quat) Dot(o Quat) float32 {
	return float32(q.X*o.X) + float32(q.Y*o.Y) + float32(q.Z*o.Z) + float32(q.W*o.W)
}

func (q Quat) SqNorm() float32 {
	return q.Dot(q)
}

// Normalize leaves near zero quaternions untouched.
func (q Quat) Normalize() Quat {
	sq := q.SqNorm()
	if sq <= wii.Epsilon {
		return q
	}
	return q.Scale(1 / wii.Sqrt(sq))
}

// NormalizeOrIdentity falls back to the identity for degenerate quaternions.
func (q Quat) NormalizeOrIdentity() Quat {
	if q.SqNorm() < wii.Epsilon {
		return Identity
	}
	return q.Normalize()
}

func (q Quat) Mul(o Quat) Quat {
	return Quat{
		X: float32(q.W*o.X) + float32(q.X*o.W) + float32(q.Y*o.Z) - float32(q.Z*o.Y),
		Y: float32(q.W*o.Y) + float32(q.Y*o.W) + float32(q.Z*o.X) - float32(q.X*o.Z),
		Z: float32(q.W*o.Z) + float32(q.Z*o.W) + float32(q.X*o.Y) - float32(q.Y*o.X),
		W: float32(q.W*o.W) - float32(q.X*o.X) - float32(q.Y*o.Y) - float32(q.Z*o.Z),
	}
}

// MulVec multiplies by the pure quaternion v.
func (q Quat) MulVec(v Vec3) Quat {
	return Quat{
		X: float32(q.Y*v.Z) - float32(q.Z*v.Y) + float32(q.W*v.X),
		Y: float32(q.Z*v.X) - float32(q.X*v.Z) + float32(q.W*v.Y),
		Z: float32(q.X*v.Y) - float32(q.Y*v.X) + float32(q.W*v.Z),
		W: -(float32(q.X*v.X) + float32(q.Y*v.Y) + float32(q.Z*v.Z)),
	}
}

// Rotate computes q*v*q⁻¹.
func (q Quat) Rotate(v Vec3) Vec3 {
	return q.MulVec(v).Mul(q.Invert()).Vec3()
}

// InvRotate computes q⁻¹*v*q.
func (q Quat) InvRotate(v Vec3) Vec3 {
	return q.Invert().MulVec(v).Mul(q).Vec3()
}

// SlerpTo interpolates from q towards o by t, taking the short way round.
func (q Quat) SlerpTo(o Quat, t float32) Quat {
	dot := wii.Clamp(q.Dot(o), -1, 1)
	angle := float32(math.Acos(float64(wii.Abs(dot))))
	sin := wii.Sin(angle)

	var s float32
	if wii.Abs(sin) >= 1e-5 {
		recip := 1 / sin
		s = float32(recip * wii.Sin(angle-float32(t*angle)))
		t = float32(recip * wii.Sin(float32(t*angle)))
	} else {
		s = 1 - t
	}
	t = float32(wii.Signum(dot) * t)

	return q.Scale(s).Add(o.Scale(t))
}

func (q Quat) FlushDenormals() Quat {
	return Quat{
		wii.FlushDenormal(q.X),
		wii.FlushDenormal(q.Y),
		wii.FlushDenormal(q.Z),
		wii.FlushDenormal(q.W),
	}
}

func (q Quat) Bits() [4]uint32 {
	return [4]uint32{f32bits(q.X), f32bits(q.Y), f32bits(q.Z), f32bits(q.W)}
}

func f32bits(f float32) uint32 {
	return math.Float32bits(f)
}
