package wii

import "math"

var frsqrteBases = [32]uint32{
	0x3ffa000, 0x3c29000, 0x38aa000, 0x3572000, 0x3279000, 0x2fb7000, 0x2d26000, 0x2ac0000,
	0x2881000, 0x2665000, 0x2468000, 0x2287000, 0x20c1000, 0x1f12000, 0x1d79000, 0x1bf4000,
	0x1a7e800, 0x17cb800, 0x1552800, 0x130c000, 0x10f2000, 0x0eff000, 0x0d2e000, 0x0b7c000,
	0x09e5000, 0x0867000, 0x06ff000, 0x05ab800, 0x046a000, 0x0339800, 0x0218800, 0x0105800,
}

var frsqrteDecs = [32]uint32{
	0x7a4, 0x700, 0x670, 0x5f2, 0x584, 0x524, 0x4cc, 0x47e,
	0x43a, 0x3fa, 0x3c2, 0x38e, 0x35e, 0x332, 0x30a, 0x2e6,
	0x568, 0x4f3, 0x48d, 0x435, 0x3e7, 0x3a2, 0x365, 0x32e,
	0x2fc, 0x2d0, 0x2a8, 0x283, 0x261, 0x243, 0x226, 0x20b,
}

// trigTable holds sin, cos and their forward differences per table unit.
var trigTable = buildTrigTable()

// atanTable holds atan(i/32) in table units and the forward difference.
var atanTable = buildAtanTable()

// The system library ships these tables with nine decimal digits.
func round9(v float64) float64 {
	return math.Round(v*1e9) / 1e9
}

func buildTrigTable() [256][4]float32 {
	var t [256][4]float32
	for i := range t {
		a0 := 2 * math.Pi * float64(i) / 256
		a1 := 2 * math.Pi * float64(i+1) / 256
		s0, c0 := round9(math.Sin(a0)), round9(math.Cos(a0))
		s1, c1 := round9(math.Sin(a1)), round9(math.Cos(a1))
		t[i] = [4]float32{
			float32(s0),
			float32(c0),
			float32(round9(s1 - s0)),
			float32(round9(c1 - c0)),
		}
	}
	return t
}

func buildAtanTable() [33][2]float32 {
	var t [33][2]float32
	for i := range t {
		v0 := round9(math.Atan(float64(i)/32) * 128 / math.Pi)
		v1 := round9(math.Atan(float64(i+1)/32) * 128 / math.Pi)
		t[i] = [2]float32{float32(v0), float32(round9(v1 - v0))}
	}
	return t
}
