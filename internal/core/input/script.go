// Package input decodes recorded ghost inputs and serves them by race frame.
package input

import (
	"fmt"

	"github.com/zeusync/ghostsim/pkg/encoding"
)

// StartFrame is the first race frame a ghost records inputs for. Earlier
// frames read as a neutral controller.
const StartFrame = 172

const (
	maxRun      = 0xff
	maxTrickRun = 0xfff
)

// Script is an immutable sequence of recorded frames.
type Script struct {
	frames []Frame
}

func NewScript(frames []Frame) *Script {
	return &Script{frames: append([]Frame(nil), frames...)}
}

// Len is the number of recorded frames.
func (s *Script) Len() int {
	return len(s.frames)
}

// Frame returns the input for a race frame.
func (s *Script) Frame(frameIdx uint32) Frame {
	if frameIdx < StartFrame {
		return Frame{}
	}
	i := frameIdx - StartFrame
	if uint64(i) >= uint64(len(s.frames)) {
		return Frame{}
	}
	return s.frames[i]
}

// Last returns the input of the previous race frame, neutral on frame 0.
func (s *Script) Last(frameIdx uint32) Frame {
	if frameIdx == 0 {
		return Frame{}
	}
	return s.Frame(frameIdx - 1)
}

func (s *Script) Accelerate(frameIdx uint32) bool { return s.Frame(frameIdx).Accelerate }
func (s *Script) Brake(frameIdx uint32) bool      { return s.Frame(frameIdx).Brake }
func (s *Script) Drift(frameIdx uint32) bool      { return s.Frame(frameIdx).Drift }
func (s *Script) UseItem(frameIdx uint32) bool    { return s.Frame(frameIdx).UseItem }
func (s *Script) StickX(frameIdx uint32) float32  { return s.Frame(frameIdx).StickX() }
func (s *Script) StickY(frameIdx uint32) float32  { return s.Frame(frameIdx).StickY() }
func (s *Script) Trick(frameIdx uint32) Trick     { return s.Frame(frameIdx).Trick }

// run is one run-length pair of a stream.
type run struct {
	value uint8
	count int
}

// runStream yields the values of a run-length stream one frame at a time.
type runStream struct {
	runs []run
	next int
	left int
	cur  uint8
}

func (s *runStream) pop() (uint8, bool) {
	for s.left == 0 {
		if s.next >= len(s.runs) {
			return 0, false
		}
		s.cur, s.left = s.runs[s.next].value, s.runs[s.next].count
		s.next++
	}
	s.left--
	return s.cur, true
}

func (s *runStream) drained() bool {
	return s.next == len(s.runs)
}

// Decode parses the uncompressed input section of a ghost: three stream
// lengths, then button, direction and trick streams. Every run of every
// stream must be used.
func Decode(data []byte) (*Script, error) {
	r := encoding.NewReader(data)
	buttonCount := int(r.U16())
	directionCount := int(r.U16())
	trickCount := int(r.U16())
	r.Skip(2)

	readByteRuns := func(n int) []run {
		runs := make([]run, 0, n)
		for i := 0; i < n; i++ {
			value := r.U8()
			runs = append(runs, run{value: value, count: int(r.U8())})
		}
		return runs
	}
	buttons := runStream{runs: readByteRuns(buttonCount)}
	directions := runStream{runs: readByteRuns(directionCount)}
	tricks := runStream{runs: make([]run, 0, trickCount)}
	for i := 0; i < trickCount; i++ {
		v := r.U16()
		tricks.runs = append(tricks.runs, run{value: uint8(v >> 12), count: int(v & maxTrickRun)})
	}
	if err := r.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidScript, err)
	}
	if r.Len() != 0 {
		return nil, fmt.Errorf("%w: %d trailing bytes", ErrInvalidScript, r.Len())
	}

	var frames []Frame
	for {
		b, ok := buttons.pop()
		if !ok {
			break
		}
		d, ok := directions.pop()
		if !ok {
			break
		}
		t, ok := tricks.pop()
		if !ok {
			break
		}
		f, err := frameFromRaw(b, d, t)
		if err != nil {
			return nil, fmt.Errorf("%w: frame %d (buttons %#x, direction %#x)", err, len(frames), b, d)
		}
		frames = append(frames, f)
	}
	if !buttons.drained() || !directions.drained() || !tricks.drained() {
		return nil, fmt.Errorf("%w: streams of different lengths", ErrInvalidScript)
	}

	return &Script{frames: frames}, nil
}

// Encode is the inverse of Decode.
func Encode(frames []Frame) []byte {
	var buttons, directions, tricks []run
	push := func(runs []run, value uint8, limit int) []run {
		if n := len(runs); n > 0 && runs[n-1].value == value && runs[n-1].count < limit {
			runs[n-1].count++
			return runs
		}
		return append(runs, run{value: value, count: 1})
	}
	for _, f := range frames {
		b, d, t := f.raw()
		buttons = push(buttons, b, maxRun)
		directions = push(directions, d, maxRun)
		tricks = push(tricks, t, maxTrickRun)
	}

	w := encoding.NewWriter(8 + 2*(len(buttons)+len(directions)+len(tricks)))
	w.U16(uint16(len(buttons)))
	w.U16(uint16(len(directions)))
	w.U16(uint16(len(tricks)))
	w.U16(0)
	for _, runs := range [][]run{buttons, directions} {
		for _, r := range runs {
			w.U8(r.value)
			w.U8(uint8(r.count))
		}
	}
	for _, r := range tricks {
		w.U16(uint16(r.value)<<12 | uint16(r.count))
	}
	return w.Bytes()
}
