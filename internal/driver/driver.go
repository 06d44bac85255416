// Package driver turns a configuration into replay jobs and runs them.
package driver

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/cespare/xxhash/v2"

	"github.com/zeusync/ghostsim/internal/config"
	"github.com/zeusync/ghostsim/internal/core/input"
	"github.com/zeusync/ghostsim/internal/core/kcl"
	"github.com/zeusync/ghostsim/internal/core/observability/log"
	"github.com/zeusync/ghostsim/internal/core/params"
	"github.com/zeusync/ghostsim/internal/replay"
	"github.com/zeusync/ghostsim/internal/telemetry"
)

const stopTimeout = 5 * time.Second

// Driver owns one configured batch of replays.
type Driver struct {
	cfg    *config.Config
	log    log.Log
	runner *replay.Runner
	hub    *telemetry.Hub
}

func New(cfg *config.Config, logger log.Log, runner *replay.Runner, hub *telemetry.Hub) *Driver {
	return &Driver{cfg: cfg, log: logger, runner: runner, hub: hub}
}

// Jobs reads every file the configuration names. All runs share one mesh.
func (d *Driver) Jobs() ([]replay.Job, error) {
	catalog, err := loadCatalog(d.cfg.Catalog)
	if err != nil {
		return nil, err
	}
	mesh, err := d.loadMesh(d.cfg.Track)
	if err != nil {
		return nil, err
	}

	spawn := d.cfg.Spawn.Player()
	jobs := make([]replay.Job, 0, len(d.cfg.Runs))
	for _, run := range d.cfg.Runs {
		assets, err := catalog.Assemble(run.Vehicle, run.Character)
		if err != nil {
			return nil, fmt.Errorf("run %q: %w", run.Name, err)
		}
		script, err := loadScript(run.Ghost)
		if err != nil {
			return nil, fmt.Errorf("run %q: %w", run.Name, err)
		}
		var reference []replay.Sample
		if run.Reference != "" {
			if reference, err = loadTrajectory(run.Reference); err != nil {
				return nil, fmt.Errorf("run %q: %w", run.Name, err)
			}
		}

		jobs = append(jobs, replay.Job{
			Name:         run.Name,
			Assets:       assets,
			Mesh:         mesh,
			Spawn:        spawn,
			Script:       script,
			Reference:    reference,
			StopOnDesync: d.cfg.StopOnDesync,
		})
	}
	return jobs, nil
}

// Run replays every job, streaming telemetry while it runs when enabled.
func (d *Driver) Run(ctx context.Context) ([]replay.Result, error) {
	jobs, err := d.Jobs()
	if err != nil {
		return nil, err
	}

	if d.cfg.Telemetry.Enabled && d.hub != nil {
		if err := d.hub.Start(ctx, d.cfg.Telemetry.Addr); err != nil {
			return nil, err
		}
		defer func() {
			stopCtx, cancel := context.WithTimeout(context.Background(), stopTimeout)
			defer cancel()
			if err := d.hub.Stop(stopCtx); err != nil {
				d.log.Warn("telemetry stop failed", log.Error(err))
			}
		}()
		d.runner.Observe(d.hub.Observer(d.cfg.Telemetry.Every))
	}

	return d.runner.Batch(ctx, jobs, d.cfg.Workers)
}

// Report writes one line per run and returns how many desynced.
func Report(w io.Writer, results []replay.Result) (int, error) {
	desynced := 0
	for i := range results {
		res := &results[i]
		status := "ok"
		if frame, ok := res.FirstDesync(); ok {
			desynced++
			status = fmt.Sprintf("desync at frame %d (%s)", frame, res.Mismatches[0])
		} else if res.Compared == 0 {
			status = "no reference"
		}
		_, err := fmt.Fprintf(w, "%-24s %6d frames  %016x  %s\n", res.Name, res.Frames, res.Digest, status)
		if err != nil {
			return desynced, err
		}
	}
	return desynced, nil
}

func loadCatalog(path string) (*params.Catalog, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open catalog: %w", err)
	}
	defer f.Close()
	return params.LoadCatalog(f)
}

func (d *Driver) loadMesh(path string) (*kcl.Mesh, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read track: %w", err)
	}
	mesh, err := kcl.Decode(data)
	if err != nil {
		return nil, fmt.Errorf("track %s: %w", path, err)
	}
	d.log.Info("track loaded",
		log.String("path", path),
		log.Int("triangles", mesh.TriCount()),
		log.Uint64("hash", xxhash.Sum64(data)),
	)
	return mesh, nil
}

func loadScript(path string) (*input.Script, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read ghost: %w", err)
	}
	script, err := input.Decode(data)
	if err != nil {
		return nil, fmt.Errorf("ghost %s: %w", path, err)
	}
	return script, nil
}

func loadTrajectory(path string) ([]replay.Sample, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read reference: %w", err)
	}
	samples, err := replay.DecodeTrajectory(data)
	if err != nil {
		return nil, fmt.Errorf("reference %s: %w", path, err)
	}
	return samples, nil
}
