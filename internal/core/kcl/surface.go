package kcl

// Kind bits, tested against a Collision's surface kinds or used as a Hitbox
// mask.
const (
	KindBoostPanel  uint32 = 0x40
	KindBoostRamp   uint32 = 0x80
	KindJumpPad     uint32 = 0x100
	KindStickyWall  uint32 = 0x800
	KindStickyRoad  uint32 = 0x400000
	KindSticky             = KindStickyWall | KindStickyRoad
	MaskCollide     uint32 = 0x20e80fff
	AttrTrickable   uint16 = 0x2000
	KindCount              = 32
	maxCollisionHit        = 64
)

// Kind is the surface index used for speed and rotation factor lookups.
func Kind(attr uint16) uint8 {
	return uint8(attr & 0x1f)
}

func KindBit(attr uint16) uint32 {
	return 1 << (attr & 0x1f)
}

// Variant extracts the three bits that select a boost ramp or jump pad flavour.
func Variant(attr uint16) uint8 {
	return uint8(attr >> 5 & 7)
}

func Trickable(attr uint16) bool {
	return attr&AttrTrickable != 0
}

var (
	jumpPadSpeeds = [8]float32{50, 50, 59, 73, 73, 56, 55, 56}
	jumpPadVelYs  = [8]float32{35, 47, 30, 45, 53, 50, 35, 50}
)

type JumpPadVariant uint8

func NewJumpPadVariant(attr uint16) JumpPadVariant {
	return JumpPadVariant(Variant(attr))
}

// Speed is the forward speed the pad sets.
func (v JumpPadVariant) Speed() float32 {
	return jumpPadSpeeds[v&7]
}

// VelY is the vertical launch velocity.
func (v JumpPadVariant) VelY() float32 {
	return jumpPadVelYs[v&7]
}

type BoostRampVariant uint8

func NewBoostRampVariant(attr uint16) BoostRampVariant {
	return BoostRampVariant(Variant(attr))
}
