package driver

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zeusync/ghostsim/internal/config"
	"github.com/zeusync/ghostsim/internal/core/input"
	"github.com/zeusync/ghostsim/internal/core/kcl/kcltest"
	"github.com/zeusync/ghostsim/internal/core/observability/log"
	"github.com/zeusync/ghostsim/internal/core/params"
	"github.com/zeusync/ghostsim/internal/core/params/paramstest"
	"github.com/zeusync/ghostsim/internal/core/player"
	"github.com/zeusync/ghostsim/internal/replay"
	"github.com/zeusync/ghostsim/internal/telemetry"
	"github.com/zeusync/ghostsim/pkg/geom"
)

func ones() string {
	return "[" + strings.TrimSuffix(strings.Repeat("1, ", params.KindCount), ", ") + "]"
}

// catalogYAML describes paramstest.Kart with a character adding nothing.
func catalogYAML() string {
	return `
vehicles:
  kart:
    stats: {wheel_count: 4, drift_kind: outside_kart, weight_class: medium}
    common:
      weight: 1
      base_speed: 75
      handling_speed_multiplier: 0.45
      acceleration_ys: [1, 1.2, 0.5, 0.2]
      acceleration_xs: [0.1, 0.4, 0.8]
      drift_acceleration_ys: [1, 0.3]
      drift_acceleration_xs: [0.6]
      manual_handling_tightness: 0.07
      automatic_handling_tightness: 0.05
      handling_reactivity: 0.6
      manual_drift_tightness: 0.05
      automatic_drift_tightness: 0.04
      drift_reactivity: 0.6
      outside_drift_target_angle: 40
      outside_drift_dec: 1
      mt_duration: 60
      tilt_factor: 0.2
      kcl_speed_factors: ` + ones() + `
      kcl_rot_factors: ` + ones() + `
    body:
      initial_pos_y: 30
      hitboxes: [{pos: [0, 40, 0], radius: 50}]
      cuboids: [[80, 40, 120], [60, 30, 100]]
      rot_factor: 0.6
      wheels:
        - {dist_suspension: 0.1, speed_suspension: 0.2, slack_y: 15, topmost_pos: [40, 20, 50], wheel_radius: 20, hitbox_radius: 15}
        - {dist_suspension: 0.1, speed_suspension: 0.2, slack_y: 15, topmost_pos: [40, 20, -50], wheel_radius: 20, hitbox_radius: 15}
characters:
  nobody: {}
`
}

const configYAML = `
catalog: catalog.yaml
track: plane.kcl
spawn:
  pos: [0, 50, 1000]
workers: 2
log_level: error
runs:
  - name: checked
    ghost: ghost.bin
    reference: ghost.rkrd
    vehicle: kart
    character: nobody
  - name: free
    ghost: ghost.bin
    vehicle: kart
    character: nobody
`

func spawnPos() geom.Vec3 {
	return geom.NewVec3(0, 50, 1000)
}

func ghostFrames() []input.Frame {
	frames := make([]input.Frame, 320)
	for i := range frames {
		frames[i] = input.Frame{Accelerate: i > 5, X: int8(i/40%3 - 1)}
	}
	return frames
}

// record replays the ghost directly and returns its trajectory.
func record(t *testing.T) []replay.Sample {
	t.Helper()
	var samples []replay.Sample
	r := replay.NewRunner(log.NewNop())
	r.Observe(func(_ uuid.UUID, _ uint32, p *player.Player) {
		samples = append(samples, replay.SampleFromPhysics(p.Physics()))
	})
	_, err := r.Run(context.Background(), replay.Job{
		Name:   "record",
		Assets: paramstest.Kart(),
		Mesh:   kcltest.MustPlane(0),
		Spawn:  player.DefaultSpawn(spawnPos()),
		Script: input.NewScript(ghostFrames()),
	})
	require.NoError(t, err)
	return samples
}

func writeFixtures(t *testing.T, reference []replay.Sample, extra string) *config.Config {
	t.Helper()
	dir := t.TempDir()
	files := map[string][]byte{
		"catalog.yaml":  []byte(catalogYAML()),
		"plane.kcl":     kcltest.Plane(0),
		"ghost.bin":     input.Encode(ghostFrames()),
		"ghost.rkrd":    replay.EncodeTrajectory(reference),
		"ghostsim.yaml": []byte(configYAML + extra),
	}
	for name, data := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), data, 0o600))
	}
	cfg, err := config.LoadFile(filepath.Join(dir, "ghostsim.yaml"))
	require.NoError(t, err)
	return cfg
}

func newDriver(cfg *config.Config) *Driver {
	logger := log.NewNop()
	return New(cfg, logger, replay.NewRunner(logger), telemetry.NewHub(logger))
}

func TestJobs(t *testing.T) {
	cfg := writeFixtures(t, nil, "")
	jobs, err := newDriver(cfg).Jobs()
	require.NoError(t, err)
	require.Len(t, jobs, 2)

	assert.Equal(t, "checked", jobs[0].Name)
	assert.Equal(t, paramstest.Kart(), jobs[0].Assets)
	assert.Same(t, jobs[0].Mesh, jobs[1].Mesh)
	assert.Equal(t, len(ghostFrames()), jobs[0].Script.Len())
	assert.Empty(t, jobs[0].Reference)
	assert.True(t, jobs[0].StopOnDesync)
	assert.Equal(t, spawnPos(), jobs[0].Spawn.Pos)
}

func TestRunAndReport(t *testing.T) {
	reference := record(t)
	cfg := writeFixtures(t, reference, "telemetry: {enabled: true, addr: '127.0.0.1:0', every: 10}\n")

	results, err := newDriver(cfg).Run(context.Background())
	require.NoError(t, err)
	require.Len(t, results, 2)

	assert.True(t, results[0].Synced())
	assert.Equal(t, len(reference), results[0].Compared)
	assert.Zero(t, results[1].Compared)
	assert.Equal(t, results[0].Digest, results[1].Digest)

	var out bytes.Buffer
	desynced, err := Report(&out, results)
	require.NoError(t, err)
	assert.Zero(t, desynced)
	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 2)
	assert.True(t, strings.HasPrefix(lines[0], "checked"))
	assert.True(t, strings.HasSuffix(lines[0], "ok"))
	assert.True(t, strings.HasSuffix(lines[1], "no reference"))
}

func TestRunReportsDesync(t *testing.T) {
	reference := record(t)
	reference[300].Speed1 += 1
	cfg := writeFixtures(t, reference, "")

	results, err := newDriver(cfg).Run(context.Background())
	require.NoError(t, err)

	frame, ok := results[0].FirstDesync()
	require.True(t, ok)
	assert.Equal(t, uint32(300), frame)

	var out bytes.Buffer
	desynced, err := Report(&out, results)
	require.NoError(t, err)
	assert.Equal(t, 1, desynced)
	assert.Contains(t, out.String(), "desync at frame 300")
	assert.Contains(t, out.String(), "speed1")
}

func TestJobsErrors(t *testing.T) {
	t.Run("unknown vehicle", func(t *testing.T) {
		cfg := writeFixtures(t, nil, "")
		cfg.Runs[1].Vehicle = "bike"
		_, err := newDriver(cfg).Jobs()
		assert.ErrorIs(t, err, params.ErrMissingAsset)
	})

	t.Run("bad ghost", func(t *testing.T) {
		cfg := writeFixtures(t, nil, "")
		require.NoError(t, os.WriteFile(cfg.Runs[0].Ghost, []byte{0, 1}, 0o600))
		_, err := newDriver(cfg).Jobs()
		assert.ErrorIs(t, err, input.ErrInvalidScript)
	})

	t.Run("bad reference", func(t *testing.T) {
		cfg := writeFixtures(t, nil, "")
		require.NoError(t, os.WriteFile(cfg.Runs[0].Reference, []byte("RKRD"), 0o600))
		_, err := newDriver(cfg).Jobs()
		assert.ErrorIs(t, err, replay.ErrInvalidTrajectory)
	})

	t.Run("missing track", func(t *testing.T) {
		cfg := writeFixtures(t, nil, "")
		require.NoError(t, os.Remove(cfg.Track))
		_, err := newDriver(cfg).Jobs()
		assert.ErrorIs(t, err, os.ErrNotExist)
	})
}
