package replay

import (
	"context"
	"math"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zeusync/ghostsim/internal/core/input"
	"github.com/zeusync/ghostsim/internal/core/kcl"
	"github.com/zeusync/ghostsim/internal/core/kcl/kcltest"
	"github.com/zeusync/ghostsim/internal/core/observability/log"
	"github.com/zeusync/ghostsim/internal/core/params"
	"github.com/zeusync/ghostsim/internal/core/params/paramstest"
	"github.com/zeusync/ghostsim/internal/core/player"
	"github.com/zeusync/ghostsim/pkg/encoding"
	"github.com/zeusync/ghostsim/pkg/geom"
)

func testScript(n int, stick int8) *input.Script {
	frames := make([]input.Frame, n)
	for i := range frames {
		frames[i] = input.Frame{Accelerate: true, X: stick}
		if i > 300 && i < 340 {
			frames[i].Drift = true
		}
	}
	return input.NewScript(frames)
}

func testJob(mesh *kcl.Mesh, name string, stick int8) Job {
	return Job{
		Name:         name,
		Assets:       paramstest.Kart(),
		Mesh:         mesh,
		Spawn:        player.DefaultSpawn(geom.NewVec3(0, 50, 1000)),
		Script:       testScript(400, stick),
		StopOnDesync: true,
	}
}

// record replays job once and captures its trajectory.
func record(t *testing.T, job Job) []Sample {
	t.Helper()
	var samples []Sample
	r := NewRunner(log.NewNop())
	r.Observe(func(_ uuid.UUID, frameIdx uint32, p *player.Player) {
		require.Equal(t, uint32(len(samples)), frameIdx)
		samples = append(samples, SampleFromPhysics(p.Physics()))
	})
	res, err := r.Run(context.Background(), job)
	require.NoError(t, err)
	require.Len(t, samples, res.Frames)
	return samples
}

func TestDecodeTrajectory(t *testing.T) {
	w := encoding.NewWriter(headerSize + sampleSize)
	w.U32(trajectoryMagic)
	w.U32(trajectoryVersion)
	for i := 0; i < 34; i++ {
		w.F32(float32(i))
	}
	w.U16(7)
	w.U16(3)
	require.Equal(t, headerSize+sampleSize, w.Len())

	samples, err := DecodeTrajectory(w.Bytes())
	require.NoError(t, err)
	require.Len(t, samples, 1)

	s := samples[0]
	assert.Equal(t, geom.NewVec3(0, 1, 2), s.RotVec2)
	assert.Equal(t, float32(3), s.Speed1SoftLimit)
	assert.Equal(t, float32(4), s.Speed1)
	assert.Equal(t, geom.NewVec3(5, 6, 7), s.FloorNor)
	assert.Equal(t, geom.NewVec3(8, 9, 10), s.Dir)
	assert.Equal(t, geom.NewVec3(11, 12, 13), s.Pos)
	assert.Equal(t, geom.NewVec3(14, 15, 16), s.Vel0)
	assert.Equal(t, geom.NewVec3(17, 18, 19), s.RotVec0)
	assert.Equal(t, geom.NewVec3(20, 21, 22), s.Vel2)
	assert.Equal(t, geom.NewVec3(23, 24, 25), s.Vel)
	assert.Equal(t, geom.NewQuat(26, 27, 28, 29), s.Rot0)
	assert.Equal(t, geom.NewQuat(30, 31, 32, 33), s.Rot1)
	assert.Equal(t, uint16(7), s.Animation)
	assert.Equal(t, uint16(3), s.CheckpointIdx)

	assert.Equal(t, w.Bytes(), EncodeTrajectory(samples))
}

func TestDecodeTrajectoryEmpty(t *testing.T) {
	samples, err := DecodeTrajectory(EncodeTrajectory(nil))
	require.NoError(t, err)
	assert.Empty(t, samples)
}

func TestDecodeTrajectoryErrors(t *testing.T) {
	valid := EncodeTrajectory(make([]Sample, 2))

	badMagic := append([]byte(nil), valid...)
	badMagic[0] = 'X'
	badVersion := append([]byte(nil), valid...)
	badVersion[7] = 3

	tests := []struct {
		name string
		data []byte
	}{
		{"empty", nil},
		{"short header", valid[:6]},
		{"bad magic", badMagic},
		{"bad version", badVersion},
		{"partial frame", valid[:len(valid)-1]},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeTrajectory(tt.data)
			assert.ErrorIs(t, err, ErrInvalidTrajectory)
		})
	}
}

func TestCompare(t *testing.T) {
	var p player.Physics
	p.Pos = geom.NewVec3(1, 2, 3)
	p.SmoothedUp = geom.Up
	p.Vel1 = geom.NewVec3(4, 5, 6)
	p.Rot0 = geom.Identity
	want := SampleFromPhysics(p)
	want.Animation = 12

	t.Run("identical", func(t *testing.T) {
		assert.Empty(t, Compare(9, p, want))
	})

	t.Run("one bit", func(t *testing.T) {
		got := p
		got.Pos.Y = math.Float32frombits(math.Float32bits(got.Pos.Y) + 1)
		mismatches := Compare(9, got, want)
		require.Len(t, mismatches, 1)
		assert.Equal(t, Mismatch{Frame: 9, Field: "pos.y", Want: 2, Got: got.Pos.Y}, mismatches[0])
	})

	t.Run("signed zero", func(t *testing.T) {
		got := p
		got.Speed1 = float32(math.Copysign(0, -1))
		mismatches := Compare(0, got, want)
		require.Len(t, mismatches, 1)
		assert.Equal(t, "speed1", mismatches[0].Field)
	})

	t.Run("renamed fields", func(t *testing.T) {
		got := p
		got.SmoothedUp = geom.Down
		got.Vel1.X = 0
		got.Rot0.W = 0.5
		fields := make([]string, 0, 4)
		for _, m := range Compare(0, got, want) {
			fields = append(fields, m.Field)
		}
		assert.Equal(t, []string{"floor_nor.y", "vel2.x", "rot0.w"}, fields)
	})
}

func TestDigest(t *testing.T) {
	a := []Sample{{Speed1: 1}, {Speed1: 2}}
	b := []Sample{{Speed1: 1}, {Speed1: 2, Animation: 5}}
	c := []Sample{{Speed1: 2}, {Speed1: 1}}

	assert.Equal(t, TrajectoryDigest(a), TrajectoryDigest(b))
	assert.NotEqual(t, TrajectoryDigest(a), TrajectoryDigest(c))
}

func TestRunWithoutReference(t *testing.T) {
	job := testJob(kcltest.MustPlane(0), "free", 0)
	res, err := NewRunner(log.NewNop()).Run(context.Background(), job)
	require.NoError(t, err)

	assert.NotEqual(t, uuid.Nil, res.RunID)
	assert.Equal(t, "free", res.Name)
	assert.Equal(t, input.StartFrame+400, res.Frames)
	assert.Zero(t, res.Compared)
	assert.True(t, res.Synced())
	_, desynced := res.FirstDesync()
	assert.False(t, desynced)
}

func TestRunMatchesOwnRecording(t *testing.T) {
	job := testJob(kcltest.MustPlane(0), "self", 4)
	samples := record(t, job)

	job.Reference = samples
	res, err := NewRunner(log.NewNop()).Run(context.Background(), job)
	require.NoError(t, err)

	assert.True(t, res.Synced())
	assert.Equal(t, len(samples), res.Compared)
	assert.Equal(t, TrajectoryDigest(samples), res.Digest)

	decoded, err := DecodeTrajectory(EncodeTrajectory(samples))
	require.NoError(t, err)
	job.Reference = decoded
	again, err := NewRunner(log.NewNop()).Run(context.Background(), job)
	require.NoError(t, err)
	assert.True(t, again.Synced())
	assert.Equal(t, res.Digest, again.Digest)
}

func TestRunReportsFirstDesync(t *testing.T) {
	job := testJob(kcltest.MustPlane(0), "desync", -3)
	samples := record(t, job)
	samples[250].Pos.X += 1

	t.Run("stop", func(t *testing.T) {
		job.Reference = samples
		res, err := NewRunner(log.NewNop()).Run(context.Background(), job)
		require.NoError(t, err)

		frame, desynced := res.FirstDesync()
		require.True(t, desynced)
		assert.Equal(t, uint32(250), frame)
		assert.Equal(t, 251, res.Frames)
		require.Len(t, res.Mismatches, 1)
		assert.Equal(t, "pos.x", res.Mismatches[0].Field)
	})

	t.Run("continue", func(t *testing.T) {
		job.Reference = samples
		job.StopOnDesync = false
		res, err := NewRunner(log.NewNop()).Run(context.Background(), job)
		require.NoError(t, err)

		assert.Equal(t, len(samples), res.Frames)
		assert.Len(t, res.Mismatches, 1)
	})
}

func TestRunShortReference(t *testing.T) {
	job := testJob(kcltest.MustPlane(0), "short", 0)
	job.Reference = record(t, job)[:100]

	res, err := NewRunner(log.NewNop()).Run(context.Background(), job)
	require.NoError(t, err)
	assert.Equal(t, 100, res.Compared)
	assert.Equal(t, input.StartFrame+400, res.Frames)
	assert.True(t, res.Synced())
}

func TestRunErrors(t *testing.T) {
	mesh := kcltest.MustPlane(0)
	r := NewRunner(log.NewNop())

	t.Run("missing script", func(t *testing.T) {
		job := testJob(mesh, "no script", 0)
		job.Script = nil
		_, err := r.Run(context.Background(), job)
		assert.ErrorIs(t, err, params.ErrMissingAsset)
	})

	t.Run("missing mesh", func(t *testing.T) {
		job := testJob(nil, "no mesh", 0)
		_, err := r.Run(context.Background(), job)
		assert.ErrorIs(t, err, params.ErrMissingAsset)
	})

	t.Run("cancelled", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_, err := r.Run(ctx, testJob(mesh, "cancelled", 0))
		assert.ErrorIs(t, err, context.Canceled)
	})
}

func TestBatch(t *testing.T) {
	mesh := kcltest.MustPlane(0)
	jobs := []Job{
		testJob(mesh, "a", 7),
		testJob(mesh, "b", -7),
		testJob(mesh, "c", 7),
		testJob(mesh, "d", 0),
	}
	jobs[3].Reference = record(t, jobs[3])

	results, err := NewRunner(log.NewNop()).Batch(context.Background(), jobs, 2)
	require.NoError(t, err)
	require.Len(t, results, len(jobs))

	for i, res := range results {
		assert.Equal(t, jobs[i].Name, res.Name)
		assert.True(t, res.Synced())
	}
	assert.Equal(t, results[0].Digest, results[2].Digest)
	assert.NotEqual(t, results[0].Digest, results[1].Digest)
	assert.Equal(t, len(jobs[3].Reference), results[3].Compared)
}

func TestBatchFailsOnBadJob(t *testing.T) {
	mesh := kcltest.MustPlane(0)
	jobs := []Job{testJob(mesh, "ok", 0), testJob(mesh, "bad", 0)}
	jobs[1].Script = nil

	_, err := NewRunner(log.NewNop()).Batch(context.Background(), jobs, 1)
	assert.ErrorIs(t, err, params.ErrMissingAsset)
}
