// Package pipeline models provisioning as an ordered list of named steps.
// Ordering is enforced by the runner rather than by call-site convention:
// a step never starts before the previous one reported success or skip, and
// the first failure halts the run with no retry.
package pipeline

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"parrotctl/pkg/types"
)

// Step is a single provisioning action with an optional postcondition probe.
// When Satisfied reports true the step is skipped, making re-runs of the
// pipeline safe (check-then-act instead of unconditional re-execution).
type Step struct {
	Name string
	Desc string
	// Satisfied reports whether the step's postcondition already holds.
	// Nil means "always run".
	Satisfied func(ctx context.Context) (bool, error)
	Run       func(ctx context.Context) error
}

// Runner executes steps strictly in order and tracks per-step state.
type Runner struct {
	name  string
	steps []Step
	pub   EventPublisher
	log   zerolog.Logger

	mu      sync.Mutex
	states  []types.StepState
	started time.Time
	running bool
}

// Option configures a Runner.
type Option func(*Runner)

// WithPublisher installs an event publisher receiving step lifecycle events.
func WithPublisher(p EventPublisher) Option {
	return func(r *Runner) {
		if p != nil {
			r.pub = p
		}
	}
}

// WithLogger installs a structured logger for step transitions.
func WithLogger(l zerolog.Logger) Option {
	return func(r *Runner) { r.log = l }
}

// New builds a Runner over the given ordered steps.
func New(name string, steps []Step, opts ...Option) *Runner {
	r := &Runner{
		name:  name,
		steps: steps,
		pub:   noopPublisher{},
		log:   zerolog.Nop(),
	}
	for _, o := range opts {
		o(r)
	}
	r.states = make([]types.StepState, len(steps))
	for i, s := range steps {
		r.states[i] = types.StepState{Name: s.Name, Status: types.StepPending}
	}
	return r
}

// Run executes the pipeline. It returns the first step error, wrapped with
// the step name; remaining steps stay pending.
func (r *Runner) Run(ctx context.Context) error {
	r.mu.Lock()
	r.started = time.Now()
	r.running = true
	r.mu.Unlock()
	defer func() {
		r.mu.Lock()
		r.running = false
		r.mu.Unlock()
	}()

	for i, s := range r.steps {
		if err := ctx.Err(); err != nil {
			r.setState(i, types.StepFailed, err, time.Time{})
			return fmt.Errorf("step %s: %w", s.Name, err)
		}
		start := time.Now()
		r.setState(i, types.StepRunning, nil, start)
		r.publish("step_started", s.Name, nil)

		if s.Satisfied != nil {
			ok, err := s.Satisfied(ctx)
			if err != nil {
				r.setState(i, types.StepFailed, err, start)
				r.publish("step_failed", s.Name, map[string]any{"error": err.Error()})
				observeStep(r.name, s.Name, "failed", time.Since(start))
				return fmt.Errorf("step %s: probe: %w", s.Name, err)
			}
			if ok {
				r.log.Info().Str("pipeline", r.name).Str("step", s.Name).Msg("already satisfied, skipping")
				r.setState(i, types.StepSkipped, nil, start)
				r.publish("step_skipped", s.Name, nil)
				observeStep(r.name, s.Name, "skipped", time.Since(start))
				continue
			}
		}

		r.log.Info().Str("pipeline", r.name).Str("step", s.Name).Msg(s.Desc)
		if err := s.Run(ctx); err != nil {
			r.setState(i, types.StepFailed, err, start)
			r.publish("step_failed", s.Name, map[string]any{"error": err.Error()})
			observeStep(r.name, s.Name, "failed", time.Since(start))
			return fmt.Errorf("step %s: %w", s.Name, err)
		}
		r.setState(i, types.StepOK, nil, start)
		r.publish("step_ok", s.Name, nil)
		observeStep(r.name, s.Name, "ok", time.Since(start))
	}
	r.publish("pipeline_done", "", nil)
	return nil
}

func (r *Runner) setState(i int, st types.StepStatus, err error, start time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.states[i].Status = st
	r.states[i].StartedAt = start
	if !start.IsZero() && st != types.StepRunning {
		r.states[i].Duration = time.Since(start).Seconds()
	}
	if err != nil {
		r.states[i].Error = err.Error()
	}
}

func (r *Runner) publish(name, step string, fields map[string]any) {
	r.pub.Publish(Event{Name: name, Step: step, Fields: fields})
}

// Snapshot returns a copy of the current run state.
func (r *Runner) Snapshot() types.PipelineSnapshot {
	r.mu.Lock()
	defer r.mu.Unlock()
	steps := make([]types.StepState, len(r.states))
	copy(steps, r.states)
	return types.PipelineSnapshot{
		Pipeline:  r.name,
		Running:   r.running,
		StartedAt: r.started,
		Steps:     steps,
	}
}

// StepNames returns the ordered step names, mainly for usage text and tests.
func (r *Runner) StepNames() []string {
	names := make([]string, len(r.steps))
	for i, s := range r.steps {
		names[i] = s.Name
	}
	return names
}
