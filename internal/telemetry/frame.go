// Package telemetry streams simulation snapshots to websocket clients.
package telemetry

import (
	"github.com/google/uuid"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/zeusync/ghostsim/internal/core/player"
	"github.com/zeusync/ghostsim/pkg/geom"
)

// Frame is the snapshot sent to clients, one binary message each.
type Frame struct {
	RunID string `msgpack:"run_id"`
	Frame uint32 `msgpack:"frame"`

	Pos      [3]float32 `msgpack:"pos"`
	Vel      [3]float32 `msgpack:"vel"`
	Dir      [3]float32 `msgpack:"dir"`
	FloorNor [3]float32 `msgpack:"floor_nor"`
	Rot      [4]float32 `msgpack:"rot"`
	Speed1   float32    `msgpack:"speed1"`

	Airtime    uint32 `msgpack:"airtime"`
	Boost      string `msgpack:"boost,omitempty"`
	Drift      string `msgpack:"drift"`
	Wheelieing bool   `msgpack:"wheelieing,omitempty"`
	Tricking   bool   `msgpack:"tricking,omitempty"`
	StickyRoad bool   `msgpack:"sticky_road,omitempty"`
}

func NewFrame(runID uuid.UUID, frameIdx uint32, p player.Physics, s player.Status) Frame {
	return Frame{
		RunID:      runID.String(),
		Frame:      frameIdx,
		Pos:        vec3(p.Pos),
		Vel:        vec3(p.Vel),
		Dir:        vec3(p.Dir),
		FloorNor:   vec3(p.SmoothedUp),
		Rot:        [4]float32{p.Rot0.X, p.Rot0.Y, p.Rot0.Z, p.Rot0.W},
		Speed1:     p.Speed1,
		Airtime:    s.Airtime,
		Boost:      s.Boost,
		Drift:      s.Drift,
		Wheelieing: s.Wheelieing,
		Tricking:   s.Tricking,
		StickyRoad: s.StickyRoad,
	}
}

func (f *Frame) Marshal() ([]byte, error) {
	return msgpack.Marshal(f)
}

func UnmarshalFrame(data []byte) (Frame, error) {
	var f Frame
	err := msgpack.Unmarshal(data, &f)
	return f, err
}

func vec3(v geom.Vec3) [3]float32 {
	return [3]float32{v.X, v.Y, v.Z}
}
