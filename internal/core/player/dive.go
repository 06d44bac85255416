package player

import (
	"github.com/zeusync/ghostsim/pkg/geom"
	"github.com/zeusync/ghostsim/pkg/wii"
)

// Dive pitches the vehicle with the stick while airborne.
type Dive struct {
	rot float32
}

func (d *Dive) Rot() float32 {
	return d.rot
}

func (d *Dive) update(stickY float32, floor *Floor, hasRotBonus bool, p *Physics) {
	d.rot = float32(d.rot * 0.96)
	if !floor.IsAirborne() {
		return
	}

	diff := stickY
	if hasRotBonus {
		diff = wii.Min(diff+0.4, 1)
	}
	if floor.Airtime() <= 50 {
		diff = float32(diff * (float32(floor.Airtime()) / 50))
	} else if wii.Abs(diff) < 0.1 {
		d.rot -= float32(0.05 * (d.rot + 0.025))
	}
	d.rot = wii.Clamp(d.rot+float32(0.005*diff), -0.8, 0.8)
	p.RotVec2.X += d.rot

	if floor.Airtime() < 50 {
		return
	}
	up := p.Rot0.Rotate(geom.Up)
	norm := wii.Sqrt(p.Up.Cross(up).SqNorm())
	angle := wii.ToDegrees(wii.Abs(wii.Atan2(norm, p.Up.Dot(up)))) - 20
	if angle <= 0 {
		return
	}
	s := wii.Min(angle/20, 1)
	if p.Rot0.Rotate(geom.Front).Y <= 0 {
		p.Gravity = float32(p.Gravity * (1 + float32(0.2*s)))
	} else {
		p.Gravity = float32(p.Gravity * (1 - float32(0.2*s)))
	}
}
