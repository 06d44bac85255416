// Package kcltest builds small collision meshes for tests.
package kcltest

import (
	"math"

	"github.com/zeusync/ghostsim/internal/core/kcl"
	"github.com/zeusync/ghostsim/pkg/encoding"
)

// HalfExtent is the distance from the origin to each side of the plane.
const HalfExtent = 2000

// Plane encodes a square floor at y=0 spanning ±HalfExtent on x and z, made
// of two triangles sharing the surface attribute attr. The grid is a single
// root leaf of 4096 units starting at (-2048, -100, -2048).
func Plane(attr uint16) []byte {
	const h = HalfExtent
	diag := float32(math.Sqrt2 / 2)
	w := encoding.NewWriter(0x100)

	const (
		possOffset   = 0x3c
		norsOffset   = possOffset + 2*12
		trisOffset   = norsOffset + 7*12
		octreeOffset = trisOffset + 2*0x10
	)
	w.U32(possOffset)
	w.U32(norsOffset)
	w.U32(trisOffset - 0x10)
	w.U32(octreeOffset)
	w.F32(300)
	w.F32s(-2048, -100, -2048)
	w.U32(uint32(0xfffff000))
	w.U32(uint32(0xfffff000))
	w.U32(uint32(0xfffff000))
	w.U32(12)
	w.U32(0)
	w.U32(0)
	w.F32(250)

	w.F32s(-h, 0, -h)
	w.F32s(h, 0, h)

	w.F32s(0, 1, 0)
	w.F32s(-1, 0, 0)
	w.F32s(0, 0, -1)
	w.F32s(diag, 0, diag)
	w.F32s(1, 0, 0)
	w.F32s(0, 0, 1)
	w.F32s(-diag, 0, -diag)

	altitude := float32(2 * h * diag)
	for i, nors := range [2][3]uint16{{1, 2, 3}, {4, 5, 6}} {
		w.F32(altitude)
		w.U16(uint16(i))
		w.U16(0)
		w.U16(nors[0])
		w.U16(nors[1])
		w.U16(nors[2])
		w.U16(attr)
	}

	w.U32(0x80000000 | 2)
	w.U16(1)
	w.U16(2)
	w.U16(0)
	return w.Bytes()
}

// MustPlane decodes Plane and panics on failure.
func MustPlane(attr uint16) *kcl.Mesh {
	mesh, err := kcl.Decode(Plane(attr))
	if err != nil {
		panic(err)
	}
	return mesh
}
