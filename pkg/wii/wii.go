// Package wii reproduces the floating point approximations used by the
// console the simulated game ran on. Square root, sine, cosine and arctangent
// follow the hardware and system library algorithms instead of the host math
// library, so trajectories do not drift over thousands of frames.
package wii

import (
	"math"
)

const (
	// Epsilon matches FLT_EPSILON.
	Epsilon float32 = 1.1920929e-07

	radToDeg float32 = 57.2957795130823208767981548141051703
)

var (
	degToRad = float32(math.Pi) / 180
	fidxStep = float32(float64(256.0 / (2.0 * math.Pi)))
	fidxRad  = float32(math.Pi / 128)
)

// Sqrt mirrors the frsqrte based square root. Non-positive inputs yield 0.
func Sqrt(val float32) float32 {
	if val <= 0 {
		return 0
	}
	recip := frsqrte(float64(val))
	tmp0 := float32(recip * mantissa25(recip))
	tmp1 := float32(recip * 0.5)
	tmp2 := float32(3.0 - float64(tmp0)*float64(val))
	return float32(tmp1*tmp2) * val
}

// Sin takes radians.
func Sin(val float32) float32 {
	return SinIdx(float32(val * fidxStep))
}

// Cos takes radians.
func Cos(val float32) float32 {
	return CosIdx(float32(val * fidxStep))
}

// SinIdx takes an angle already expressed in table units (256 per turn).
func SinIdx(fidx float32) float32 {
	r, idx := tableIndex(fidx)
	s := trigTable[idx][0] + float32(r*trigTable[idx][2])
	if fidx < 0 {
		return -s
	}
	return s
}

// CosIdx takes an angle already expressed in table units (256 per turn).
func CosIdx(fidx float32) float32 {
	r, idx := tableIndex(fidx)
	return trigTable[idx][1] + float32(r*trigTable[idx][3])
}

// tableIndex splits |fidx| into a table slot and the remainder within it.
// The remainder is taken before wrapping to a single turn.
func tableIndex(fidx float32) (float32, uint32) {
	f := float32(math.Abs(float64(fidx)))
	for f > 65536 {
		f -= 65536
	}
	whole := uint32(f)
	return f - float32(whole), whole % 256
}

// Atan2 returns the angle of (x, y) in radians.
func Atan2(y, x float32) float32 {
	return float32(Atan2Idx(y, x) * fidxRad)
}

// Atan2Idx returns the angle of (x, y) in table units.
func Atan2Idx(y, x float32) float32 {
	if x == 0 && y == 0 {
		return 0
	}

	var a, b, c float32
	var minus bool
	switch {
	case x >= 0 && y >= 0:
		if x >= y {
			a, b, c, minus = x, y, 0, false
		} else {
			a, b, c, minus = y, x, 64, true
		}
	case x >= 0:
		if x >= -y {
			a, b, c, minus = x, -y, 0, true
		} else {
			a, b, c, minus = -y, x, -64, false
		}
	case y >= 0:
		if -x >= y {
			a, b, c, minus = -x, y, 128, true
		} else {
			a, b, c, minus = y, -x, 64, false
		}
	default:
		if -x >= -y {
			a, b, c, minus = -x, -y, -128, false
		} else {
			a, b, c, minus = -y, -x, -64, true
		}
	}

	if minus {
		return c - atanIdx(b/a)
	}
	return c + atanIdx(b/a)
}

// atanIdx expects x in [0, 1].
func atanIdx(x float32) float32 {
	x = float32(x * 32)
	idx := int(x)
	r := x - float32(idx)
	return atanTable[idx][0] + float32(r*atanTable[idx][1])
}

// ToRadians converts degrees with single precision rounding.
func ToRadians(deg float32) float32 {
	return float32(deg * degToRad)
}

// ToDegrees converts radians with single precision rounding.
func ToDegrees(rad float32) float32 {
	return float32(rad * radToDeg)
}

// Abs clears the sign bit.
func Abs(v float32) float32 {
	return math.Float32frombits(math.Float32bits(v) &^ (1 << 31))
}

// Signum returns 1 or -1 following the sign bit, NaN for NaN.
func Signum(v float32) float32 {
	if v != v {
		return v
	}
	if math.Signbit(float64(v)) {
		return -1
	}
	return 1
}

// Clamp bounds v to [lo, hi].
func Clamp(v, lo, hi float32) float32 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Min returns the smaller of a and b, preferring the non-NaN operand.
func Min(a, b float32) float32 {
	if a != a {
		return b
	}
	if b < a {
		return b
	}
	return a
}

// Max returns the larger of a and b, preferring the non-NaN operand.
func Max(a, b float32) float32 {
	if a != a {
		return b
	}
	if b > a {
		return b
	}
	return a
}

// FlushDenormal replaces subnormal values with a signed zero, the way the
// hardware does with flush-to-zero enabled.
func FlushDenormal(v float32) float32 {
	bits := math.Float32bits(v)
	if bits&0x7f800000 == 0 {
		return math.Float32frombits(bits & (1 << 31))
	}
	return v
}

func frsqrte(val float64) float64 {
	repr := math.Float64bits(val)
	mantissa := repr & (1<<52 - 1)
	sign := repr & (1 << 63)
	exponent := repr & (0x7ff << 52)

	if mantissa == 0 && exponent == 0 {
		if sign != 0 {
			return -math.MaxFloat64
		}
		return math.MaxFloat64
	}

	if exponent == 0x7ff<<52 {
		if mantissa == 0 {
			if sign != 0 {
				return math.NaN()
			}
			return 0
		}
		return 0 + val
	}

	if sign != 0 {
		return math.NaN()
	}

	if exponent == 0 {
		for {
			exponent -= 1 << 52
			mantissa <<= 1
			if mantissa&(1<<52) != 0 {
				break
			}
		}
		mantissa &= 1<<52 - 1
		exponent += 1 << 52
	}

	oddExponent := exponent&(1<<52) == 0
	exponent = ((0x3ff << 52) - ((exponent - (0x3fe << 52)) / 2)) & (0x7ff << 52)
	repr = sign | exponent

	i := uint32(mantissa >> 37)
	idx := i / 2048
	if oddExponent {
		idx += 16
	}
	repr |= uint64(frsqrteBases[idx]-frsqrteDecs[idx]*(i%2048)) << 26

	return math.Float64frombits(repr)
}

func mantissa25(val float64) float64 {
	repr := math.Float64bits(val)
	repr = (repr & 0xfffffffff8000000) + (repr & 0x8000000)
	return math.Float64frombits(repr)
}
