package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/aretw0/canopy"
	"github.com/aretw0/canopy/internal/presentation/tui"
	"github.com/aretw0/canopy/pkg/domain"
)

// DefaultWatchInterval paces ticks in watch mode when no interval is given.
const DefaultWatchInterval = 500 * time.Millisecond

// RunOptions contains all the configuration for the run command.
type RunOptions struct {
	EngineOptions
	// Agents is the number of agents to spawn, named agent-1..agent-N.
	Agents int
	// Ticks stops after this many rounds. 0 runs until every agent finishes
	// in the same round, or until interrupted in watch mode.
	Ticks int
	// Interval is the pause between rounds.
	Interval time.Duration
	// Watch reloads the tree whenever its source changes.
	Watch bool
	// JSON prints one object per round instead of styled lines.
	JSON bool
}

// RoundResult is one line of --json output.
type RoundResult struct {
	Tick    int                      `json:"tick"`
	Results map[string]domain.Status `json:"results"`
}

// Execute runs the tree described by opts, writing one line per round to out.
func Execute(ctx context.Context, opts RunOptions, out io.Writer, logger *slog.Logger) error {
	if opts.Agents <= 0 {
		opts.Agents = 1
	}
	if opts.Watch && opts.Interval <= 0 {
		opts.Interval = DefaultWatchInterval
	}

	engine, err := CreateEngine(opts.EngineOptions, logger)
	if err != nil {
		return err
	}
	d := engine.Driver()
	for i := 1; i <= opts.Agents; i++ {
		if _, err := d.Spawn(ctx, fmt.Sprintf("agent-%d", i)); err != nil {
			return err
		}
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	styler := tui.NewStyler(out)
	out = &lockedWriter{w: out}
	if opts.Watch {
		if !opts.JSON {
			tui.PrintBanner(out, styler)
			printSystemMessage(out, "Watching %s", engine.Source())
		}
		go follow(ctx, engine, out, opts.JSON)
	}

	enc := json.NewEncoder(out)
	round := 0
	report := func(results map[string]domain.Status) {
		round++
		if opts.JSON {
			_ = enc.Encode(RoundResult{Tick: round, Results: results})
		} else {
			fmt.Fprintln(out, styler.TickLine(round, results))
		}
		if opts.Ticks > 0 && round >= opts.Ticks {
			cancel()
			return
		}
		if opts.Ticks == 0 && !opts.Watch && allTerminal(results) {
			cancel()
		}
	}

	if opts.Interval > 0 {
		err = d.Drive(ctx, opts.Interval, report)
	} else {
		err = spin(ctx, engine, report)
	}
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

// spin ticks back to back until ctx is cancelled.
func spin(ctx context.Context, engine *canopy.Engine, report func(map[string]domain.Status)) error {
	for ctx.Err() == nil {
		results, err := engine.Driver().TickAll(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return err
		}
		report(results)
	}
	return ctx.Err()
}

func follow(ctx context.Context, engine *canopy.Engine, out io.Writer, quiet bool) {
	err := engine.Follow(ctx, func(err error) {
		if quiet {
			return
		}
		if err != nil {
			printSystemMessage(out, "Reload failed: %v", err)
			return
		}
		printSystemMessage(out, "Tree reloaded")
	})
	if err != nil && !errors.Is(err, context.Canceled) && !quiet {
		printSystemMessage(out, "Watch stopped: %v", err)
	}
}

func allTerminal(results map[string]domain.Status) bool {
	for _, s := range results {
		if !s.IsTerminal() {
			return false
		}
	}
	return true
}

// lockedWriter serializes tick lines and reload messages.
type lockedWriter struct {
	mu sync.Mutex
	w  io.Writer
}

func (l *lockedWriter) Write(p []byte) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.w.Write(p)
}
