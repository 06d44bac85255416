package input

// Trick is the direction pressed on the trick pad, if any.
type Trick uint8

const (
	TrickNone Trick = iota
	TrickUp
	TrickDown
	TrickLeft
	TrickRight
)

func (t Trick) String() string {
	switch t {
	case TrickUp:
		return "up"
	case TrickDown:
		return "down"
	case TrickLeft:
		return "left"
	case TrickRight:
		return "right"
	default:
		return "none"
	}
}

// Frame is the controller state for one frame. The zero value is a neutral
// controller.
type Frame struct {
	Accelerate bool
	Brake      bool
	UseItem    bool
	Drift      bool
	// X and Y are the stick position in steps of 1/7, from -7 to 7.
	X     int8
	Y     int8
	Trick Trick
}

func (f Frame) StickX() float32 {
	return float32(f.X) / 7
}

func (f Frame) StickY() float32 {
	return float32(f.Y) / 7
}

const (
	buttonAccelerate = 1 << iota
	buttonBrake
	buttonItem
	buttonDrift
)

func frameFromRaw(buttons, direction uint8, trick uint8) (Frame, error) {
	if buttons>>4 != 0 {
		return Frame{}, ErrInvalidScript
	}
	x, y := direction>>4, direction&0xf
	if x == 15 || y == 15 {
		return Frame{}, ErrInvalidScript
	}
	f := Frame{
		Accelerate: buttons&buttonAccelerate != 0,
		Brake:      buttons&buttonBrake != 0,
		UseItem:    buttons&buttonItem != 0,
		Drift:      buttons&buttonDrift != 0,
		X:          int8(x) - 7,
		Y:          int8(y) - 7,
	}
	if trick <= uint8(TrickRight) {
		f.Trick = Trick(trick)
	}
	return f, nil
}

func (f Frame) raw() (buttons, direction, trick uint8) {
	if f.Accelerate {
		buttons |= buttonAccelerate
	}
	if f.Brake {
		buttons |= buttonBrake
	}
	if f.UseItem {
		buttons |= buttonItem
	}
	if f.Drift {
		buttons |= buttonDrift
	}
	direction = uint8(f.X+7)<<4 | uint8(f.Y+7)
	return buttons, direction, uint8(f.Trick)
}
