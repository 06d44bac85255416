package player

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zeusync/ghostsim/internal/core/input"
	"github.com/zeusync/ghostsim/internal/core/kcl"
	"github.com/zeusync/ghostsim/internal/core/kcl/kcltest"
	"github.com/zeusync/ghostsim/internal/core/params"
	"github.com/zeusync/ghostsim/internal/core/params/paramstest"
	"github.com/zeusync/ghostsim/internal/core/timer"
	"github.com/zeusync/ghostsim/pkg/geom"
	"github.com/zeusync/ghostsim/pkg/wii"
)

func testAssets(kind params.DriftKind, wheels int) params.Assets {
	return paramstest.Assets(kind, wheels)
}

func newTestPlayer(t *testing.T, mesh *kcl.Mesh) *Player {
	t.Helper()
	p, err := TryNew(testAssets(params.OutsideDriftingKart, 4), mesh, DefaultSpawn(geom.NewVec3(0, 50, 1000)))
	require.NoError(t, err)
	return p
}

func TestTryNewErrors(t *testing.T) {
	mesh := kcltest.MustPlane(0)

	bike := testAssets(params.OutsideDriftingBike, 2)
	bike.Stats.Vehicle.HasHandle = true

	tests := []struct {
		name   string
		assets params.Assets
		mesh   *kcl.Mesh
		want   error
	}{
		{"missing mesh", testAssets(params.OutsideDriftingKart, 4), nil, params.ErrMissingAsset},
		{"missing handle", bike, mesh, params.ErrMissingAsset},
		{"kart with two wheels", testAssets(params.OutsideDriftingKart, 2), mesh, params.ErrInvalidStats},
		{"bike with four wheels", testAssets(params.InsideDriftingBike, 4), mesh, params.ErrInvalidStats},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := TryNew(tt.assets, tt.mesh, DefaultSpawn(geom.Zero))
			assert.ErrorIs(t, err, tt.want)
			assert.Nil(t, p)
		})
	}
}

func TestWheelLayout(t *testing.T) {
	mesh := kcltest.MustPlane(0)

	tests := []struct {
		name   string
		kind   params.DriftKind
		wheels int
		wantX  []float32
		wantZ  []float32
	}{
		{"four wheel kart", params.OutsideDriftingKart, 4, []float32{40, -40, 40, -40}, []float32{50, 50, -50, -50}},
		{"three wheel kart", params.OutsideDriftingKart, 3, []float32{-40, 40, -40}, []float32{50, -50, -50}},
		{"bike", params.InsideDriftingBike, 2, []float32{40, 40}, []float32{50, -50}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := TryNew(testAssets(tt.kind, tt.wheels), mesh, DefaultSpawn(geom.Zero))
			require.NoError(t, err)
			require.Len(t, p.wheels, tt.wheels)
			for i, w := range p.wheels {
				assert.Equal(t, tt.wantX[i], w.spec.TopmostPos.X, "wheel %d", i)
				assert.Equal(t, tt.wantZ[i], w.spec.TopmostPos.Z, "wheel %d", i)
			}
			assert.Equal(t, tt.kind.IsBike(), p.bike != nil)
		})
	}
}

func TestHandleOnFrontWheelOnly(t *testing.T) {
	assets := testAssets(params.InsideDriftingBike, 2)
	assets.Stats.Vehicle.HasHandle = true
	assets.Handle = &params.Handle{Pos: geom.NewVec3(0, 60, 70)}

	p, err := TryNew(assets, kcltest.MustPlane(0), DefaultSpawn(geom.Zero))
	require.NoError(t, err)
	require.Len(t, p.wheels, 2)
	assert.NotNil(t, p.wheels[0].handle)
	assert.Nil(t, p.wheels[1].handle)
}

func TestSpawnDropsOntoFloor(t *testing.T) {
	p := newTestPlayer(t, kcltest.MustPlane(0))

	ph := p.Physics()
	assert.Equal(t, float32(30), ph.Pos.Y)
	assert.Equal(t, geom.Flipped, ph.Rot0)
	assert.InDelta(t, -1, ph.Dir.Z, 1e-6)
}

func TestSpawnAboveQueryRangeKeepsHeight(t *testing.T) {
	assets := testAssets(params.OutsideDriftingKart, 4)
	p, err := TryNew(assets, kcltest.MustPlane(0), Spawn{Pos: geom.NewVec3(0, 500, 0), Rot: geom.Identity})
	require.NoError(t, err)
	assert.Equal(t, float32(500), p.Physics().Pos.Y)
}

// testFrame accelerates from the countdown on, drifts right for a while and
// uses an item once.
func testFrame(i uint32) input.Frame {
	var f input.Frame
	if i >= timer.CountdownStart+100 {
		f.Accelerate = true
	}
	if i >= timer.RaceStart+20 && i < timer.RaceStart+60 {
		f.Drift = true
		f.X = 7
	}
	if i == timer.RaceStart+80 {
		f.UseItem = true
	}
	return f
}

type physicsBits struct {
	pos, vel, vel0, vel1, rotVec0, rotVec2 [3]uint32
	rot0, rot1                             [4]uint32
	speed1                                 uint32
}

func bitsOf(p Physics) physicsBits {
	return physicsBits{
		pos:     p.Pos.Bits(),
		vel:     p.Vel.Bits(),
		vel0:    p.Vel0.Bits(),
		vel1:    p.Vel1.Bits(),
		rotVec0: p.RotVec0.Bits(),
		rotVec2: p.RotVec2.Bits(),
		rot0:    p.Rot0.Bits(),
		rot1:    p.Rot1.Bits(),
		speed1:  math.Float32bits(p.Speed1),
	}
}

func TestUpdateIsDeterministic(t *testing.T) {
	mesh := kcltest.MustPlane(0)
	a := newTestPlayer(t, mesh)
	b := newTestPlayer(t, mesh)

	var last input.Frame
	for i := uint32(0); i < timer.RaceStart+100; i++ {
		frame := testFrame(i)
		stage := timer.StageAt(i)
		a.Update(mesh, frame, last, i, stage)
		b.Update(mesh, frame, last, i, stage)
		require.Equal(t, bitsOf(a.Physics()), bitsOf(b.Physics()), "frame %d", i)
		last = frame
	}
}

func TestBoostPriority(t *testing.T) {
	var b Boost
	assert.False(t, b.IsBoosting())
	assert.Equal(t, float32(1), b.Factor())

	b.Activate(BoostWeak, 10)
	b.Activate(BoostStrong, 2)
	kind, ok := b.Kind()
	require.True(t, ok)
	assert.Equal(t, BoostStrong, kind)
	assert.Equal(t, float32(1.4), b.Factor())

	b.Activate(BoostStrong, 1)
	assert.Equal(t, uint16(3), b.Duration(BoostStrong))

	for i := 0; i < 3; i++ {
		b.update()
	}
	kind, ok = b.Kind()
	require.True(t, ok)
	assert.Equal(t, BoostWeak, kind)
	assert.Equal(t, uint16(8), b.Duration(BoostWeak))

	b.Activate(BoostMedium, 1)
	limit, ok := b.Limit()
	require.True(t, ok)
	assert.Equal(t, float32(115), limit)
}

func TestStartBoostFrames(t *testing.T) {
	tests := []struct {
		charge float32
		want   uint16
	}{
		{0, 0},
		{0.85, 0},
		{0.87, 10},
		{0.9, 20},
		{0.92, 30},
		{0.93, 45},
		{0.95, 70},
		{0.96, 0},
	}
	for _, tt := range tests {
		s := StartBoost{charge: tt.charge}
		assert.Equal(t, tt.want, s.BoostFrames(), "charge %v", tt.charge)
	}
}

func TestStartBoostBurnout(t *testing.T) {
	var s StartBoost
	for i := 0; i < timer.RaceStart-timer.CountdownStart; i++ {
		s.update(true)
	}
	assert.Equal(t, float32(1), s.Charge())
	assert.Equal(t, uint16(0), s.BoostFrames())

	s.update(false)
	assert.Equal(t, float32(0.96), s.Charge())
}

func TestFloorAirtime(t *testing.T) {
	ground := newCollision()
	ground.hasFloor = true
	ground.floorNor = geom.Up
	air := newCollision()

	var f Floor
	f.update([]*Collision{&air})
	f.update([]*Collision{&air})
	assert.Equal(t, uint32(2), f.Airtime())
	assert.True(t, f.IsAirborne())
	assert.False(t, f.IsLanding())

	f.update([]*Collision{&air, &ground})
	assert.Equal(t, uint32(0), f.Airtime())
	assert.Equal(t, uint32(2), f.LastAirtime())
	assert.True(t, f.IsLanding())
	nor, ok := f.Nor()
	require.True(t, ok)
	assert.InDelta(t, 1, nor.Y, 1e-6)
	assert.Zero(t, nor.X)
	assert.Zero(t, nor.Z)

	f.update([]*Collision{&ground})
	assert.False(t, f.IsLanding())
}

func TestDriftMiniTurbo(t *testing.T) {
	stats := testAssets(params.OutsideDriftingKart, 4).Stats
	d := newDrift(&stats)
	p := &Physics{Rot0: geom.Identity}
	var boost Boost

	d.update(true, false, 1, 0, &boost, nil, p)
	assert.Equal(t, "hop", d.State())
	assert.Equal(t, hopVelY, p.Vel0.Y)

	for i := 0; i < 60; i++ {
		d.update(true, true, 1, 0, &boost, nil, p)
	}
	require.True(t, d.IsDrifting())
	stickX, ok := d.DriftStickX()
	require.True(t, ok)
	assert.Equal(t, float32(1), stickX)
	mt, smt := d.MTCharge()
	assert.Equal(t, uint16(mtCharge), mt)
	assert.NotZero(t, smt)

	d.update(false, true, 0, 0, &boost, nil, p)
	assert.Equal(t, "idle", d.State())
	assert.Equal(t, uint16(61), boost.Duration(BoostWeak))
}

func TestDriftWithoutStickGoesIdle(t *testing.T) {
	stats := testAssets(params.OutsideDriftingKart, 4).Stats
	d := newDrift(&stats)
	p := &Physics{Rot0: geom.Identity}
	var boost Boost

	d.update(true, false, 0, 0, &boost, nil, p)
	for i := 0; i < hopMinFrames; i++ {
		d.update(true, true, 0, 0, &boost, nil, p)
	}
	assert.Equal(t, "idle", d.State())
	assert.False(t, boost.IsBoosting())
}

func TestDriftHopCancelsWheelie(t *testing.T) {
	stats := testAssets(params.InsideDriftingBike, 2).Stats
	d := newDrift(&stats)
	p := &Physics{Rot0: geom.Identity}
	w := Wheelie{isWheelieing: true, frame: 30}
	var boost Boost

	d.update(true, false, 0, 0, &boost, &w, p)
	assert.False(t, w.IsWheelieing())
}

func TestWheelieTimesOut(t *testing.T) {
	p := &Physics{Speed1: 100}
	var (
		w Wheelie
		d Drift
	)

	w.update(75, input.TrickUp, false, &d, p)
	require.True(t, w.IsWheelieing())
	for i := 0; i < wheelieMaxFrames-1; i++ {
		w.update(75, input.TrickNone, false, &d, p)
	}
	assert.True(t, w.IsWheelieing())
	assert.Equal(t, wheelieMaxRot, w.Rot())

	w.update(75, input.TrickNone, false, &d, p)
	assert.False(t, w.IsWheelieing())
}

func TestWheelieNeedsGround(t *testing.T) {
	p := &Physics{Speed1: 100}
	var (
		w Wheelie
		d Drift
	)
	w.update(75, input.TrickUp, true, &d, p)
	assert.False(t, w.IsWheelieing())
}

func TestTrickFlipBoost(t *testing.T) {
	stats := testAssets(params.OutsideDriftingKart, 4).Stats
	p := &Physics{
		Speed1:                 60,
		ConservedSpecialRot:    geom.Identity,
		NonConservedSpecialRot: geom.Identity,
	}
	floor := &Floor{airtime: 3, hasTrickable: true}
	tr := newTrick()
	var boost Boost

	tr.updateNext(input.TrickUp, floor, false, false)
	tr.tryStart(&stats, true, p, 1, true, nil)
	require.True(t, tr.IsTricking())
	assert.Equal(t, trickFlip, tr.kind)
	assert.False(t, tr.HasDivingRotBonus())

	for i := 0; i < trickCooldown; i++ {
		tr.updateRot(p)
	}
	assert.NotEqual(t, geom.Identity, p.NonConservedSpecialRot)

	tr.tryEnd(false, &boost, p)
	assert.False(t, tr.IsTricking())
	assert.Equal(t, uint16(71), boost.Duration(BoostMedium))
	assert.NotEqual(t, geom.Identity, p.ConservedSpecialRot)
}

func TestTrickTooSlow(t *testing.T) {
	stats := testAssets(params.OutsideDriftingKart, 4).Stats
	p := &Physics{Speed1: 20}
	floor := &Floor{airtime: 3, hasTrickable: true}
	tr := newTrick()

	tr.updateNext(input.TrickLeft, floor, false, false)
	tr.tryStart(&stats, true, p, 0, false, nil)
	assert.False(t, tr.IsTricking())
}

func TestRotationStaysNormalized(t *testing.T) {
	assets := testAssets(params.OutsideDriftingKart, 4)
	p := newPhysics(&assets.Body, DefaultSpawn(geom.NewVec3(0, 50, 0)), kcltest.MustPlane(0))

	for i := 0; i < 20; i++ {
		p.RotVec0 = geom.NewVec3(0.1, 0.2, 0.05)
		p.update(&assets.Stats, timer.Race)
		norm := wii.Sqrt(p.Rot0.SqNorm())
		assert.InDelta(t, 1, norm, 1e-4)
		assert.InDelta(t, 1, wii.Sqrt(p.Rot1.SqNorm()), 1e-4)
	}
}

func TestSpawnDropSettles(t *testing.T) {
	mesh := kcltest.MustPlane(0)
	p := newTestPlayer(t, mesh)

	var frame input.Frame
	lastY := p.Physics().Pos.Y
	for i := uint32(0); i < timer.CountdownStart; i++ {
		p.Update(mesh, frame, frame, i, timer.StageAt(i))
		ph := p.Physics()
		require.LessOrEqual(t, ph.Pos.Y, float32(30), "frame %d", i)
		require.Greater(t, ph.Pos.Y, float32(0), "frame %d", i)
		if i >= 120 {
			assert.InDelta(t, 0, ph.Vel0.Y, 0.5, "frame %d", i)
			assert.InDelta(t, lastY, ph.Pos.Y, 0.5, "frame %d", i)
		}
		lastY = ph.Pos.Y
	}
	assert.False(t, p.floor.IsAirborne())
}

func TestStraightAccelerationReachesBaseSpeed(t *testing.T) {
	mesh := kcltest.MustPlane(0)
	p := newTestPlayer(t, mesh)

	var last input.Frame
	var prev float32
	for i := uint32(0); i < timer.RaceStart+200; i++ {
		var frame input.Frame
		frame.Accelerate = i >= timer.RaceStart
		p.Update(mesh, frame, last, i, timer.StageAt(i))
		last = frame
		if i < timer.RaceStart {
			continue
		}

		ph := p.Physics()
		require.False(t, p.floor.IsAirborne(), "frame %d", i)
		assert.GreaterOrEqual(t, ph.Speed1, prev-0.01, "frame %d", i)
		assert.LessOrEqual(t, ph.Speed1, ph.Speed1SoftLimit, "frame %d", i)
		prev = ph.Speed1
	}
	assert.InDelta(t, 75, prev, 5)
}

func TestDriftReleasedEarlyGrantsNoBoost(t *testing.T) {
	stats := testAssets(params.OutsideDriftingKart, 4).Stats
	d := newDrift(&stats)
	p := &Physics{Rot0: geom.Identity}
	var boost Boost

	d.update(true, false, 1, 0, &boost, nil, p)
	for i := 0; i < 20; i++ {
		d.update(true, true, 1, 0, &boost, nil, p)
	}
	require.True(t, d.IsDrifting())
	mt, _ := d.MTCharge()
	assert.NotZero(t, mt)
	assert.Less(t, mt, uint16(mtCharge))

	d.update(false, true, 0, 0, &boost, nil, p)
	assert.Equal(t, "idle", d.State())
	assert.False(t, boost.IsBoosting())
	assert.Zero(t, boost.Duration(BoostWeak))
}

func TestBoostActivateSaturates(t *testing.T) {
	var b Boost
	b.Activate(BoostWeak, math.MaxUint16)
	assert.Equal(t, uint16(math.MaxUint16), b.Duration(BoostWeak))
	assert.True(t, b.IsBoosting())

	b.Activate(BoostWeak, 10)
	assert.Equal(t, uint16(math.MaxUint16), b.Duration(BoostWeak))

	b.update()
	assert.Equal(t, uint16(math.MaxUint16-1), b.Duration(BoostWeak))
}

func TestUpdateFlushesDecayedDenormals(t *testing.T) {
	assets := testAssets(params.OutsideDriftingKart, 4)
	p := newPhysics(&assets.Body, DefaultSpawn(geom.NewVec3(0, 50, 0)), kcltest.MustPlane(0))

	minNormal := math.Float32frombits(0x00800000)
	p.Vel0 = geom.NewVec3(minNormal, 0, 0)
	p.RotVec0 = geom.NewVec3(minNormal, 0, 0)
	p.update(&assets.Stats, timer.Race)

	assert.Zero(t, math.Float32bits(p.Vel0.X))
	assert.Zero(t, math.Float32bits(p.Vel.X))
	assert.Zero(t, math.Float32bits(p.RotVec0.X))
}

func TestRisingContactGetsNoImpulse(t *testing.T) {
	assets := testAssets(params.OutsideDriftingKart, 4)
	p := newPhysics(&assets.Body, DefaultSpawn(geom.NewVec3(0, 50, 0)), kcltest.MustPlane(0))

	posRel := geom.NewVec3(0, -5, 0)
	p.Vel0 = geom.NewVec3(0, 3, 0)
	p.applyRigidBodyMotion(false, posRel, p.pointVel(posRel), geom.Up)
	assert.Equal(t, geom.NewVec3(0, 3, 0), p.Vel0)

	p.Vel0 = geom.NewVec3(0, -6, 0)
	p.applyRigidBodyMotion(false, posRel, p.pointVel(posRel), geom.Up)
	assert.InDelta(t, 0, p.Vel0.Y, 1e-5)
}
