package kcl

import (
	"fmt"

	"github.com/zeusync/ghostsim/pkg/encoding"
	"github.com/zeusync/ghostsim/pkg/geom"
	"github.com/zeusync/ghostsim/pkg/wii"
)

const rawTriSize = 0x10

// Tri is a prism: one shared vertex, a plane normal and three inward edge
// normals, the last of which is offset by the altitude.
type Tri struct {
	Altitude float32
	Pos      geom.Vec3
	PlaneNor geom.Vec3
	CANor    geom.Vec3
	ABNor    geom.Vec3
	BCNor    geom.Vec3
	Attr     uint16
}

type rawTri struct {
	altitude  float32
	posIdx    uint16
	planeIdx  uint16
	caIdx     uint16
	abIdx     uint16
	bcIdx     uint16
	attribute uint16
}

func decodeRawTri(r *encoding.Reader) rawTri {
	return rawTri{
		altitude:  r.F32(),
		posIdx:    r.U16(),
		planeIdx:  r.U16(),
		caIdx:     r.U16(),
		abIdx:     r.U16(),
		bcIdx:     r.U16(),
		attribute: r.U16(),
	}
}

func (raw rawTri) resolve(poss, nors []geom.Vec3) (Tri, error) {
	lookup := func(pool []geom.Vec3, idx uint16, what string) (geom.Vec3, error) {
		if int(idx) >= len(pool) {
			return geom.Vec3{}, fmt.Errorf("%w: %s %d of %d", ErrIndexOutOfRange, what, idx, len(pool))
		}
		return pool[idx], nil
	}

	var (
		t   = Tri{Altitude: raw.altitude, Attr: raw.attribute}
		err error
	)
	if t.Pos, err = lookup(poss, raw.posIdx, "position"); err != nil {
		return Tri{}, err
	}
	if t.PlaneNor, err = lookup(nors, raw.planeIdx, "normal"); err != nil {
		return Tri{}, err
	}
	if t.CANor, err = lookup(nors, raw.caIdx, "normal"); err != nil {
		return Tri{}, err
	}
	if t.ABNor, err = lookup(nors, raw.abIdx, "normal"); err != nil {
		return Tri{}, err
	}
	if t.BCNor, err = lookup(nors, raw.bcIdx, "normal"); err != nil {
		return Tri{}, err
	}
	return t, nil
}

type triHit struct {
	dist float32
	nor  geom.Vec3
	attr uint16
}

// psDot is the paired single dot product: x*x is accumulated in double
// precision onto the rounded y*y term.
func psDot(a, b geom.Vec3) float32 {
	y := float32(a.Y * b.Y)
	xy := float32(float64(a.X)*float64(b.X) + float64(y))
	return xy + float32(a.Z*b.Z)
}

func (t *Tri) check(thickness float32, h Hitbox) (triHit, bool) {
	if KindBit(t.Attr)&h.Mask == 0 {
		return triHit{}, false
	}

	pos := h.Pos.Sub(t.Pos)
	radius := h.Radius

	caDist := psDot(pos, t.CANor)
	if caDist >= radius {
		return triHit{}, false
	}
	abDist := psDot(pos, t.ABNor)
	if abDist >= radius {
		return triHit{}, false
	}
	bcDist := psDot(pos, t.BCNor) - t.Altitude
	if bcDist >= radius {
		return triHit{}, false
	}

	planeDist := psDot(pos, t.PlaneNor)
	distInPlane := radius - planeDist
	if distInPlane <= 0 {
		return triHit{}, false
	}
	if distInPlane >= thickness && !t.sweptThrough(h) {
		return triHit{}, false
	}

	if caDist <= 0 && abDist <= 0 && bcDist <= 0 {
		return triHit{dist: distInPlane, nor: t.PlaneNor, attr: t.Attr}, true
	}

	var (
		edgeNor, otherNor   geom.Vec3
		edgeDist, otherDist float32
	)
	switch {
	case abDist >= caDist && abDist > bcDist:
		edgeNor, edgeDist = t.ABNor, abDist
		if caDist >= bcDist {
			otherNor, otherDist = t.CANor, caDist
		} else {
			otherNor, otherDist = t.BCNor, bcDist
		}
	case bcDist >= caDist:
		edgeNor, edgeDist = t.BCNor, bcDist
		if abDist >= caDist {
			otherNor, otherDist = t.ABNor, abDist
		} else {
			otherNor, otherDist = t.CANor, caDist
		}
	default:
		edgeNor, edgeDist = t.CANor, caDist
		if bcDist >= abDist {
			otherNor, otherDist = t.BCNor, bcDist
		} else {
			otherNor, otherDist = t.ABNor, abDist
		}
	}

	cos := psDot(edgeNor, otherNor)
	var sqDist float32
	if float32(cos*edgeDist) > otherDist {
		sqDist = float32(radius*radius) - float32(edgeDist*edgeDist)
	} else {
		b := (float32(cos*edgeDist) - otherDist) / (float32(cos*cos) - 1)
		a := edgeDist - float32(b*cos)
		corner := edgeNor.Scale(a).Add(otherNor.Scale(b))
		sqDist = float32(radius*radius) - corner.SqNorm()
	}

	if sqDist < float32(planeDist*planeDist) || sqDist < 0 {
		return triHit{}, false
	}

	dist := wii.Sqrt(sqDist) - planeDist
	if dist <= 0 {
		return triHit{}, false
	}
	return triHit{dist: dist, nor: t.PlaneNor, attr: t.Attr}, true
}

// sweptThrough reports whether the sphere's previous centre was on the front
// side of the plane, in which case deep penetration still counts as contact.
func (t *Tri) sweptThrough(h Hitbox) bool {
	if h.LastPos == nil {
		return false
	}
	return psDot(h.LastPos.Sub(t.Pos), t.PlaneNor) >= 0
}
