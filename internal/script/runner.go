package script

import (
	"context"
	"fmt"
	"io"

	"github.com/Iron-Ham/stagehand/internal/app"
	"github.com/Iron-Ham/stagehand/internal/event"
	"github.com/Iron-Ham/stagehand/internal/logging"
)

// DefaultIdleTicks bounds the idle command.
const DefaultIdleTicks = 1000

// Runner executes commands against an app and writes a trace of the
// commands and the events they cause.
type Runner struct {
	app       *app.App
	out       io.Writer
	tracer    *event.Tracer
	idleTicks int
	logger    *logging.Logger
}

// NewRunner creates a runner that traces the events matching patterns, or
// every event when patterns is empty.
func NewRunner(a *app.App, out io.Writer, patterns []string, logger *logging.Logger) (*Runner, error) {
	if logger == nil {
		logger = logging.NopLogger()
	}
	tracer, err := event.NewTracer(a.Bus(), logger, patterns)
	if err != nil {
		return nil, err
	}
	tracer.SetOutput(out)
	return &Runner{
		app:       a,
		out:       out,
		tracer:    tracer,
		idleTicks: DefaultIdleTicks,
		logger:    logger.WithComponent("script"),
	}, nil
}

// SetIdleTicks changes the tick limit of the idle command.
func (r *Runner) SetIdleTicks(n int) {
	if n > 0 {
		r.idleTicks = n
	}
}

// Tracer returns the runner's tracer.
func (r *Runner) Tracer() *event.Tracer { return r.tracer }

// Run executes cmds in order. It stops at the first loop error or when ctx is
// done. Request failures are reported by the orchestrators' logs, not here.
func (r *Runner) Run(ctx context.Context, cmds []Command) error {
	r.tracer.Start()
	defer r.tracer.Stop()

	for _, cmd := range cmds {
		if err := ctx.Err(); err != nil {
			return err
		}
		fmt.Fprintf(r.out, "> %s\n", cmd)

		switch cmd.Op {
		case OpTick:
			for range cmd.Ticks {
				r.app.Tick()
			}
		case OpIdle:
			ticks, err := r.app.RunUntilIdle(r.idleTicks)
			if err != nil {
				return fmt.Errorf("line %d: %w", cmd.Line, err)
			}
			r.logger.Debug("idle reached", "ticks", ticks)
		default:
			r.app.Bus().Publish(cmd.Event())
		}
	}
	return nil
}
