// Package race steps one player through a recorded ghost on a track.
package race

import (
	"github.com/zeusync/ghostsim/internal/core/input"
	"github.com/zeusync/ghostsim/internal/core/kcl"
	"github.com/zeusync/ghostsim/internal/core/player"
	"github.com/zeusync/ghostsim/internal/core/timer"
)

// Race owns the timer and the player. The mesh is only read and may be shared
// between races running on other goroutines.
type Race struct {
	mesh   *kcl.Mesh
	timer  *timer.Timer
	player *player.Player
	script *input.Script
}

func New(mesh *kcl.Mesh, p *player.Player, script *input.Script) *Race {
	return &Race{
		mesh:   mesh,
		timer:  timer.New(),
		player: p,
		script: script,
	}
}

// Update simulates the current frame and advances the timer.
func (r *Race) Update() {
	idx := r.timer.FrameIdx()
	r.player.Update(r.mesh, r.script.Frame(idx), r.script.Last(idx), idx, r.timer.Stage())
	r.timer.Update()
}

// FrameIdx is the index of the next frame to simulate.
func (r *Race) FrameIdx() uint32 {
	return r.timer.FrameIdx()
}

func (r *Race) Stage() timer.Stage {
	return r.timer.Stage()
}

func (r *Race) Player() *player.Player {
	return r.player
}

// Len is the number of frames covered by the script, counting the frames
// before inputs start.
func (r *Race) Len() int {
	return input.StartFrame + r.script.Len()
}

// Done reports whether every scripted frame has been simulated.
func (r *Race) Done() bool {
	return int(r.timer.FrameIdx()) >= r.Len()
}
