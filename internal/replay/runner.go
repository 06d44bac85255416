package replay

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/zeusync/ghostsim/internal/core/input"
	"github.com/zeusync/ghostsim/internal/core/kcl"
	"github.com/zeusync/ghostsim/internal/core/observability/log"
	"github.com/zeusync/ghostsim/internal/core/params"
	"github.com/zeusync/ghostsim/internal/core/player"
	"github.com/zeusync/ghostsim/internal/core/race"
	"github.com/zeusync/ghostsim/pkg/concurrent"
)

// Job is one ghost to replay. Mesh is only read and may be shared between
// jobs running in parallel.
type Job struct {
	Name   string
	Assets params.Assets
	Mesh   *kcl.Mesh
	Spawn  player.Spawn
	Script *input.Script
	// Reference is compared frame by frame when non-empty.
	Reference []Sample
	// StopOnDesync ends the run at the first frame with a mismatch.
	StopOnDesync bool
}

type Result struct {
	RunID uuid.UUID
	Name  string
	// Frames is the number of simulated frames.
	Frames     int
	Compared   int
	Mismatches []Mismatch
	Digest     uint64
	Duration   time.Duration
}

// Synced reports whether every compared frame matched the reference.
func (r *Result) Synced() bool {
	return len(r.Mismatches) == 0
}

// FirstDesync returns the frame of the first mismatch.
func (r *Result) FirstDesync() (uint32, bool) {
	if len(r.Mismatches) == 0 {
		return 0, false
	}
	return r.Mismatches[0].Frame, true
}

// Observer sees the player after every simulated frame. It is called from the
// goroutine running the job and must not keep p.
type Observer func(runID uuid.UUID, frameIdx uint32, p *player.Player)

type Runner struct {
	log      log.Log
	observer Observer
}

func NewRunner(logger log.Log) *Runner {
	return &Runner{log: logger}
}

// Observe installs o for runs started afterwards.
func (r *Runner) Observe(o Observer) {
	r.observer = o
}

// Run replays a single job. Desyncs are reported in the result; errors mean
// the job could not run or ctx was cancelled.
func (r *Runner) Run(ctx context.Context, job Job) (Result, error) {
	if job.Script == nil {
		return Result{}, fmt.Errorf("run %q: %w: ghost input", job.Name, params.ErrMissingAsset)
	}
	p, err := player.TryNew(job.Assets, job.Mesh, job.Spawn)
	if err != nil {
		return Result{}, fmt.Errorf("run %q: %w", job.Name, err)
	}

	res := Result{RunID: uuid.New(), Name: job.Name}
	logger := r.log.With(log.String("run_id", res.RunID.String()), log.String("name", job.Name))

	rc := race.New(job.Mesh, p, job.Script)
	frames := rc.Len()
	if n := len(job.Reference); n > frames {
		logger.Warn("reference outlasts ghost input",
			log.Int("reference_frames", n),
			log.Int("frames", frames),
		)
	}
	logger.Info("replay started", log.Int("frames", frames), log.Int("reference_frames", len(job.Reference)))

	observe := r.observer
	digest := NewDigest()
	start := time.Now()
	for !rc.Done() {
		if err := ctx.Err(); err != nil {
			return Result{}, fmt.Errorf("run %q at frame %d: %w", job.Name, rc.FrameIdx(), err)
		}

		frameIdx := rc.FrameIdx()
		rc.Update()
		physics := p.Physics()
		digest.Add(physics)
		res.Frames++
		if observe != nil {
			observe(res.RunID, frameIdx, p)
		}

		if int(frameIdx) >= len(job.Reference) {
			continue
		}
		res.Compared++
		mismatches := Compare(frameIdx, physics, job.Reference[frameIdx])
		if len(mismatches) == 0 {
			continue
		}
		if len(res.Mismatches) == 0 {
			first := mismatches[0]
			logger.Warn("replay desynced",
				log.Uint32("frame", frameIdx),
				log.String("field", first.Field),
				log.Float32("want", first.Want),
				log.Float32("got", first.Got),
				log.Int("fields", len(mismatches)),
			)
		}
		res.Mismatches = append(res.Mismatches, mismatches...)
		if job.StopOnDesync {
			break
		}
	}

	res.Digest = digest.Sum64()
	res.Duration = time.Since(start)
	logger.Info("replay finished",
		log.Int("frames", res.Frames),
		log.Int("compared", res.Compared),
		log.Bool("synced", res.Synced()),
		log.Uint64("digest", res.Digest),
		log.Duration("duration", res.Duration),
	)
	return res, nil
}

// Batch runs jobs with at most workers in parallel, returning results in job
// order. A job that fails to run aborts the batch.
func (r *Runner) Batch(ctx context.Context, jobs []Job, workers int) ([]Result, error) {
	r.log.Info("batch started", log.Int("jobs", len(jobs)), log.Int("workers", workers))
	results, err := concurrent.ParallelMap(ctx, jobs, workers, r.Run)
	if err != nil {
		r.log.Error("batch failed", log.Error(err))
		return nil, err
	}

	desynced := 0
	for i := range results {
		if !results[i].Synced() {
			desynced++
		}
	}
	r.log.Info("batch finished", log.Int("jobs", len(results)), log.Int("desynced", desynced))
	return results, nil
}
