// Package player simulates one vehicle: its rigid body, suspension, surface
// contacts and every maneuver state machine, advanced by Player.Update once
// per frame.
package player

import (
	"fmt"

	"github.com/zeusync/ghostsim/internal/core/input"
	"github.com/zeusync/ghostsim/internal/core/kcl"
	"github.com/zeusync/ghostsim/internal/core/params"
	"github.com/zeusync/ghostsim/internal/core/timer"
	"github.com/zeusync/ghostsim/pkg/geom"
	"github.com/zeusync/ghostsim/pkg/wii"
)

const (
	boostPanelFrames = 60
	mushroomFrames   = 90
)

type bike struct {
	lean    Lean
	wheelie Wheelie
}

// Player owns all per-vehicle state. It is not safe for concurrent use; the
// mesh passed to Update may be shared.
type Player struct {
	stats params.Stats

	floor         Floor
	floorFactors  FloorFactors
	startBoost    StartBoost
	dive          Dive
	drift         Drift
	boost         Boost
	turn          Turn
	mushroom      uint16
	standstillRot float32
	boostRamp     BoostRamp
	jumpPad       JumpPad
	trick         Trick
	bike          *bike
	stickyRoad    StickyRoad

	physics Physics
	body    *VehicleBody
	wheels  []*Wheel
	props   SurfaceProps
}

// TryNew places a vehicle at spawn on mesh. It fails with
// params.ErrMissingAsset when the mesh or a required handle is absent and
// with params.ErrInvalidStats when the assets are inconsistent.
func TryNew(assets params.Assets, mesh *kcl.Mesh, spawn Spawn) (*Player, error) {
	if mesh == nil {
		return nil, fmt.Errorf("%w: collision mesh", params.ErrMissingAsset)
	}
	stats := assets.Stats
	if err := stats.Vehicle.Validate(); err != nil {
		return nil, err
	}
	if err := assets.Body.Validate(); err != nil {
		return nil, err
	}
	var handle *params.Handle
	if stats.Vehicle.HasHandle {
		if assets.Handle == nil {
			return nil, fmt.Errorf("%w: handle", params.ErrMissingAsset)
		}
		handle = assets.Handle
	}

	body := assets.Body
	physics := newPhysics(&body, spawn, mesh)

	p := &Player{
		stats:        stats,
		floorFactors: newFloorFactors(),
		drift:        newDrift(&stats),
		trick:        newTrick(),
		physics:      physics,
		body:         newVehicleBody(body.Hitboxes),
	}
	if stats.Vehicle.DriftKind.IsBike() {
		p.bike = &bike{}
	}

	count := stats.Vehicle.WheelCount
	for i := 0; i < 4; i++ {
		if count == 2 && i%2 != 0 {
			continue
		}
		if count == 3 && i == 0 {
			continue
		}
		spec := body.Wheels[i/2]
		if i%2 == 1 {
			spec = spec.MirrorX()
		}
		var h *params.Handle
		if i == 0 {
			h = handle
		}
		p.wheels = append(p.wheels, newWheel(h, spec, physics.Pos))
	}

	return p, nil
}

// Physics returns a copy of the integrator state.
func (p *Player) Physics() Physics {
	return p.physics
}

func (p *Player) Stats() params.Stats {
	return p.stats
}

// Status is a summary of the maneuver state, for logging and telemetry.
type Status struct {
	Airtime    uint32
	Boost      string
	Drift      string
	Wheelieing bool
	Tricking   bool
	StickyRoad bool
}

func (p *Player) Status() Status {
	s := Status{
		Airtime:    p.floor.Airtime(),
		Drift:      p.drift.State(),
		Wheelieing: p.isWheelieing(),
		Tricking:   p.trick.IsTricking(),
		StickyRoad: p.stickyRoad.Enabled(),
	}
	if kind, ok := p.boost.Kind(); ok {
		s.Boost = kind.String()
	}
	return s
}

func (p *Player) isBike() bool {
	return p.bike != nil
}

func (p *Player) wheelie() *Wheelie {
	if p.bike == nil {
		return nil
	}
	return &p.bike.wheelie
}

func (p *Player) isWheelieing() bool {
	return p.wheelie().IsWheelieing()
}

// Update advances the vehicle by one frame. frame is the input for frameIdx
// and last the input of the frame before it.
func (p *Player) Update(mesh *kcl.Mesh, frame, last input.Frame, frameIdx uint32, stage timer.Stage) {
	stats := &p.stats
	common := &stats.Common
	ph := &p.physics

	ph.RotVec2 = geom.Zero
	ph.NonConservedSpecialRot = geom.Identity

	collisions := make([]*Collision, 0, len(p.wheels)+1)
	for _, w := range p.wheels {
		collisions = append(collisions, w.Collision())
	}
	collisions = append(collisions, p.body.Collision())
	p.floor.update(collisions)

	if !p.floor.IsAirborne() {
		p.trick.tryEnd(p.isBike(), &p.boost, ph)
	}

	ph.Gravity = gravity

	if stage == timer.Countdown {
		p.startBoost.update(frame.Accelerate)
	} else if frameIdx == timer.RaceStart {
		p.boost.Activate(BoostWeak, p.startBoost.BoostFrames())
	}

	ph.updateUps(
		stats.Vehicle.DriftKind.IsInside(),
		&p.floor,
		p.drift.HasHopHeight(),
		p.boost.IsBoosting(),
		p.isWheelieing(),
		p.props.HasBoostRamp(),
	)

	if p.floor.IsLanding() {
		p.jumpPad.end()
	}

	if p.props.HasBoostPanel() {
		p.boost.Activate(BoostStrong, boostPanelFrames)
		p.floorFactors.activateInvincibility(boostPanelFrames)
	}

	p.boostRamp.tryStart(p.props.HasBoostRamp())

	jumpPadVariant, onJumpPad := p.props.JumpPad()
	p.jumpPad.tryStart(ph, jumpPadVariant, onJumpPad)

	p.trick.updateRot(ph)
	p.trick.updateNext(frame.Trick, &p.floor, p.boostRamp.Enabled(), p.props.HasBoostRamp())

	ph.updateDirs(
		&p.floor,
		p.floorFactors.RotFactor(),
		&p.drift,
		p.boostRamp.Enabled(),
		p.jumpPad.Enabled(),
		p.trick.IsTricking(),
	)

	rampVariant, onRamp := p.props.BoostRamp()
	p.trick.tryStart(stats, p.jumpPad.Enabled(), ph, rampVariant, onRamp, p.wheelie())

	ph.updateLandingAngle()

	p.stickyRoad.update(ph, p.props.HasStickyRoad(), mesh)

	p.floorFactors.updateFactors(common, p.wheels, p.body)

	stickX := frame.StickX()
	airtime := p.floor.Airtime()
	p.turn.update(common, airtime, stickX, &p.drift)

	driftInput := frame.Drift && stage == timer.Race
	p.drift.update(driftInput, last.Drift, stickX, airtime, &p.boost, p.wheelie(), ph)

	if p.bike != nil {
		p.bike.wheelie.update(common.BaseSpeed, frame.Trick, p.floor.IsAirborne(), &p.drift, ph)
	}

	p.boost.update()
	p.boostRamp.update()
	if p.mushroom > 0 {
		p.mushroom--
	}
	p.floorFactors.updateInvincibility()

	isWheelieing := p.isWheelieing()
	jumpPadSpeed, _ := p.jumpPad.Speed()
	ph.updateVel1(
		stats,
		driveInput{
			accelerate:     frame.Accelerate,
			brake:          frame.Brake,
			lastAccelerate: last.Accelerate,
			lastBrake:      last.Brake,
		},
		airtime,
		p.floorFactors.SpeedFactor(),
		p.drift.IsDrifting(),
		&p.boost,
		p.turn.Raw(),
		p.boostRamp.Enabled(),
		jumpPadSpeed,
		p.jumpPad.Enabled(),
		isWheelieing,
		stage,
	)

	p.updateStandstillRot(stage)

	if p.bike != nil {
		ph.RotVec2.X += p.standstillRot
		driftStickX, _ := p.drift.DriftStickX()
		p.bike.lean.update(stickX, airtime, driftStickX, p.drift.IsDrifting(), isWheelieing, ph, stage)
	} else {
		ph.RotVec0.X += p.standstillRot
		p.updateBodyRoll()
	}

	p.turn.updateRot(common, airtime, &p.drift, p.boostRamp.Enabled(), isWheelieing, ph)

	var stickY float32
	if stage == timer.Race {
		stickY = frame.StickY()
	}
	p.dive.update(stickY, &p.floor, p.trick.HasDivingRotBonus(), ph)

	ph.update(stats, stage)

	p.props.reset()
	isBoosting := p.boost.IsBoosting()
	p.body.update(common, isBoosting, ph, &p.props, mesh)

	p.updateWheels(common, isBoosting, isWheelieing, mesh)

	p.drift.updateHopPhysics()
	ph.updateMat()

	if frame.UseItem && !last.UseItem {
		p.boost.Activate(BoostStrong, mushroomFrames)
		p.floorFactors.activateInvincibility(mushroomFrames)
		p.mushroom = mushroomFrames
	}

	ph.flushDenormals()
}

// updateWheels queries every wheel, moves the vehicle by the combined
// push-out and applies the suspension. When only wheels touched the floor
// their average contact point, moving with the body, is resolved against the
// rigid body and recorded as the body floor.
func (p *Player) updateWheels(common *params.CommonStats, isBoosting, isWheelieing bool, mesh *kcl.Mesh) {
	ph := &p.physics

	var leanRot float32
	if p.bike != nil {
		leanRot = p.bike.lean.Rot()
	}

	var (
		count         int
		lo, hi        geom.Vec3
		posRel, floor geom.Vec3
	)
	for _, w := range p.wheels {
		movement, ok := w.update(common, leanRot, isWheelieing, ph, &p.props, mesh)
		if !ok {
			continue
		}
		lo = lo.Min(movement)
		hi = hi.Max(movement)

		if nor, ok := w.Collision().FloorNor(); ok {
			count++
			posRel = posRel.Add(w.HitboxPosRel())
			floor = floor.Add(nor)
		}
	}

	movement := lo.Add(hi)
	ph.Pos = ph.Pos.Add(movement)

	if _, ok := p.body.Collision().FloorNor(); count > 0 && !ok {
		posRel = posRel.Scale(1 / float32(count))
		floor = floor.Normalize()
		ph.applyRigidBodyMotion(isBoosting, posRel, ph.pointVel(posRel), floor)
		p.body.insertFloorNor(floor)
	}

	for _, w := range p.wheels {
		w.applySuspension(isWheelieing, ph, movement)
	}
}

// updateStandstillRot eases the pitch caused by accelerating or braking on
// the ground, and by revving during the countdown.
func (p *Player) updateStandstillRot(stage timer.Stage) {
	var next float32
	t := float32(1)
	if !p.floor.IsAirborne() {
		switch {
		case stage == timer.Countdown:
			next = float32(0.015 * -p.startBoost.Charge())
		case !p.boostRamp.Enabled() && !p.jumpPad.Enabled():
			acc := wii.Clamp(p.physics.Speed1-p.physics.LastSpeed1, -3, 3)
			if p.mushroom > 0 {
				next = float32(float32(-acc*0.15) * 0.25)
				if p.isWheelieing() {
					next = float32(next * 0.5)
				}
			} else {
				next = float32(float32(-acc*0.15) * 0.08)
			}
			if p.isBike() {
				t = 0.2
			}
		}
	}
	p.standstillRot += float32(t * (next - p.standstillRot))
}

// updateBodyRoll leans a kart into sideways slides on the ground and lets
// the roll settle in the air.
func (p *Player) updateBodyRoll() {
	ph := &p.physics

	var norm float32
	if !p.floor.IsAirborne() {
		front := ph.Mat.Mat33().MulVec(geom.Front).PerpInPlane(ph.Up, true)
		rej := ph.Vel.RejUnit(front)
		perp := rej.PerpInPlane(ph.Up, false)
		if sq := perp.SqNorm(); sq > wii.Epsilon {
			det := float32(perp.X*front.Z) - float32(perp.Z*front.X)
			norm = float32(-wii.Min(wii.Sqrt(sq), 1) * wii.Signum(det))
		}
	} else if !p.drift.HasHopHeight() {
		ph.RotVec0.Z = float32(ph.RotVec0.Z * 0.98)
	}
	ph.RotVec0.Z += float32(float32(p.stats.Common.TiltFactor*norm) * wii.Abs(p.turn.Raw()))
}
