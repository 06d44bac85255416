// Package geom holds the single precision vector, quaternion and matrix types
// used by the simulation. Operand order follows the game exactly and every
// product feeding a sum is rounded explicitly, so the compiler never fuses it
// into a multiply-add.
package geom

import (
	"github.com/zeusync/ghostsim/pkg/wii"
)

type Vec3 struct {
	X, Y, Z float32
}

var (
	Zero  = Vec3{}
	Up    = Vec3{0, 1, 0}
	Down  = Vec3{0, -1, 0}
	Front = Vec3{0, 0, 1}
	Back  = Vec3{0, 0, -1}
	Right = Vec3{1, 0, 0}
)

func NewVec3(x, y, z float32) Vec3 {
	return Vec3{X: x, Y: y, Z: z}
}

func (v Vec3) Add(o Vec3) Vec3 {
	return Vec3{v.X + o.X, v.Y + o.Y, v.Z + o.Z}
}

func (v Vec3) Sub(o Vec3) Vec3 {
	return Vec3{v.X - o.X, v.Y - o.Y, v.Z - o.Z}
}

func (v Vec3) Neg() Vec3 {
	return Vec3{-v.X, -v.Y, -v.Z}
}

// Scale returns s*v.
func (v Vec3) Scale(s float32) Vec3 {
	return Vec3{float32(s * v.X), float32(s * v.Y), float32(s * v.Z)}
}

// Mul multiplies componentwise.
func (v Vec3) Mul(o Vec3) Vec3 {
	return Vec3{float32(v.X * o.X), float32(v.Y * o.Y), float32(v.Z * o.Z)}
}

func (v Vec3) Dot(o Vec3) float32 {
	return float32(v.X*o.X) + float32(v.Y*o.Y) + float32(v.Z*o.Z)
}

func (v Vec3) Cross(o Vec3) Vec3 {
	return Vec3{
		X: float32(v.Y*o.Z) - float32(v.Z*o.Y),
		Y: float32(v.Z*o.X) - float32(v.X*o.Z),
		Z: float32(v.X*o.Y) - float32(v.Y*o.X),
	}
}

// ProjUnit projects v onto the unit vector o.
func (v Vec3) ProjUnit(o Vec3) Vec3 {
	return o.Scale(v.Dot(o))
}

// RejUnit removes the component of v along the unit vector o.
func (v Vec3) RejUnit(o Vec3) Vec3 {
	return v.Sub(v.ProjUnit(o))
}

// PerpInPlane returns the direction of v within the plane of normal n, or
// zero when v is colinear with n.
func (v Vec3) PerpInPlane(n Vec3, normalize bool) Vec3 {
	if wii.Abs(n.Dot(v)) == 1 {
		return Zero
	}
	perp := n.Cross(v).Cross(n)
	if normalize {
		return perp.Normalize()
	}
	return perp
}

func (v Vec3) SqNorm() float32 {
	return v.Dot(v)
}

// Norm is zero for vectors whose squared length does not exceed epsilon.
func (v Vec3) Norm() float32 {
	sq := v.SqNorm()
	if sq <= wii.Epsilon {
		return 0
	}
	return wii.Sqrt(sq)
}

// Normalize leaves near zero vectors untouched.
func (v Vec3) Normalize() Vec3 {
	norm := v.Norm()
	if norm == 0 {
		return v
	}
	return v.Scale(1 / norm)
}

func (v Vec3) Min(o Vec3) Vec3 {
	return Vec3{wii.Min(v.X, o.X), wii.Min(v.Y, o.Y), wii.Min(v.Z, o.Z)}
}

func (v Vec3) Max(o Vec3) Vec3 {
	return Vec3{wii.Max(v.X, o.X), wii.Max(v.Y, o.Y), wii.Max(v.Z, o.Z)}
}

func (v Vec3) Sin() Vec3 {
	return Vec3{wii.Sin(v.X), wii.Sin(v.Y), wii.Sin(v.Z)}
}

func (v Vec3) Cos() Vec3 {
	return Vec3{wii.Cos(v.X), wii.Cos(v.Y), wii.Cos(v.Z)}
}

func (v Vec3) ToRadians() Vec3 {
	return Vec3{wii.ToRadians(v.X), wii.ToRadians(v.Y), wii.ToRadians(v.Z)}
}

// FlushDenormals zeroes subnormal components.
func (v Vec3) FlushDenormals() Vec3 {
	return Vec3{wii.FlushDenormal(v.X), wii.FlushDenormal(v.Y), wii.FlushDenormal(v.Z)}
}

// Bits returns the raw representation of each component.
func (v Vec3) Bits() [3]uint32 {
	return [3]uint32{f32bits(v.X), f32bits(v.Y), f32bits(v.Z)}
}
