package kcl

import (
	"fmt"
	"math/bits"

	"github.com/zeusync/ghostsim/pkg/encoding"
	"github.com/zeusync/ghostsim/pkg/geom"
)

const headerSize = 0x3c

// Header holds the section offsets and the spatial hash parameters.
type Header struct {
	PossOffset    uint32
	NorsOffset    uint32
	TrisOffset    uint32
	OctreeOffset  uint32
	Thickness     float32
	Origin        geom.Vec3
	XMask         uint32
	YMask         uint32
	ZMask         uint32
	Shift         uint32
	YShift        uint32
	ZShift        uint32
	RootNodeCount uint32
	MaxRadius     float32
}

func decodeHeader(r *encoding.Reader) (Header, error) {
	var h Header
	h.PossOffset = r.U32()
	h.NorsOffset = r.U32()
	// Triangle indices are 1-based, so the stored offset is one entry short.
	h.TrisOffset = r.U32() + 0x10
	h.OctreeOffset = r.U32()
	h.Thickness = r.F32()
	h.Origin = readVec3(r)
	h.XMask = r.U32()
	h.YMask = r.U32()
	h.ZMask = r.U32()
	h.Shift = r.U32()
	h.YShift = r.U32()
	h.ZShift = r.U32()
	h.MaxRadius = r.F32()
	if err := r.Err(); err != nil {
		return Header{}, fmt.Errorf("%w: %w", ErrInvalidHeader, err)
	}

	if h.PossOffset != headerSize {
		return Header{}, fmt.Errorf("%w: positions at %#x", ErrInvalidHeader, h.PossOffset)
	}
	if h.TrisOffset < 0x10 {
		return Header{}, fmt.Errorf("%w: triangle offset overflows", ErrInvalidHeader)
	}
	for _, mask := range []uint32{h.XMask, h.YMask, h.ZMask} {
		if !isHighMask(mask) {
			return Header{}, fmt.Errorf("%w: mask %#x", ErrInvalidHeader, mask)
		}
	}

	rootBitsX, ok := rootBits(h.XMask, h.Shift)
	if !ok || rootBitsX != h.YShift {
		return Header{}, fmt.Errorf("%w: x root bits", ErrInvalidHeader)
	}
	rootBitsY, ok := rootBits(h.YMask, h.Shift)
	if !ok || h.ZShift < h.YShift || rootBitsY != h.ZShift-h.YShift {
		return Header{}, fmt.Errorf("%w: y root bits", ErrInvalidHeader)
	}
	rootBitsZ, ok := rootBits(h.ZMask, h.Shift)
	if !ok {
		return Header{}, fmt.Errorf("%w: z root bits", ErrInvalidHeader)
	}
	total := rootBitsX + rootBitsY + rootBitsZ
	if total >= 32 {
		return Header{}, fmt.Errorf("%w: %d root bits", ErrInvalidHeader, total)
	}
	h.RootNodeCount = 1 << total

	return h, nil
}

// isHighMask accepts masks of the form ^0 << n.
func isHighMask(mask uint32) bool {
	return bits.TrailingZeros32(mask) == 32-bits.OnesCount32(mask)
}

func rootBits(mask, shift uint32) (uint32, bool) {
	tz := uint32(bits.TrailingZeros32(mask))
	if tz < shift {
		return 0, false
	}
	return tz - shift, true
}

func readVec3(r *encoding.Reader) geom.Vec3 {
	x := r.F32()
	y := r.F32()
	z := r.F32()
	return geom.NewVec3(x, y, z)
}
