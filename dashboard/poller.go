package dashboard

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"
)

const DefRefreshInterval = 5 * time.Second

// Poller drives the fetch-and-render cycle. With auto refresh enabled it
// renders every interval until ctx is cancelled; with it disabled at start it
// renders a single frame and returns.
type Poller struct {
	svc      Service
	state    *State
	display  Display
	interval time.Duration
	logger   *slog.Logger
}

func NewPoller(svc Service, state *State, interval time.Duration, logger *slog.Logger, displays ...Display) (*Poller, error) {
	if len(displays) == 0 {
		return nil, ErrNoDisplay
	}
	if interval <= 0 {
		interval = DefRefreshInterval
	}

	var display Display = Displays(displays)
	if len(displays) == 1 {
		display = displays[0]
	}

	return &Poller{
		svc:      svc,
		state:    state,
		display:  display,
		interval: interval,
		logger:   logger,
	}, nil
}

// Run renders immediately. If auto refresh is off at that point it returns
// after the single render; otherwise it keeps the dashboard live until ctx is
// cancelled. While live, ticks are skipped when auto refresh is toggled off
// and settings changes render at once.
func (p *Poller) Run(ctx context.Context) error {
	p.tick(ctx)

	if !p.state.Get().AutoRefresh {
		p.logger.Info("auto refresh disabled, rendered a single frame")

		return nil
	}

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	p.logger.Info("live refresh started", slog.Duration("interval", p.interval))

	for {
		select {
		case <-ctx.Done():
			p.logger.Info("live refresh stopped")

			return ctx.Err()
		case <-ticker.C:
			if p.state.Get().AutoRefresh {
				p.tick(ctx)
			}
		case <-p.state.Changed():
			p.tick(ctx)
		}
	}
}

// AwaitActive blocks until auto refresh is switched on or ctx is cancelled.
// It lets a host process restart Run after an idle render.
func (p *Poller) AwaitActive(ctx context.Context) error {
	for {
		if p.state.Get().AutoRefresh {
			return nil
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-p.state.Changed():
		}
	}
}

// tick renders one frame. Nothing that goes wrong here may end the loop.
func (p *Poller) tick(ctx context.Context) {
	defer func() {
		if r := recover(); r != nil {
			p.logger.Error("render panicked", slog.Any("panic", r))
		}
	}()

	frame, err := p.svc.Frame(ctx)
	if err != nil {
		if !errors.Is(err, context.Canceled) {
			p.logger.Warn("failed to build frame", slog.Any("error", err))
		}

		return
	}

	if err := p.display.Display(ctx, frame); err != nil {
		p.logger.Warn("failed to display frame",
			slog.Int("rows", frame.Table.Len()),
			slog.Any("error", err),
		)
	}
}

// Displays fans a frame out to several surfaces. A failing surface does not
// keep the others from rendering.
type Displays []Display

func (ds Displays) Display(ctx context.Context, frame Frame) error {
	var errs []error
	for i, d := range ds {
		if err := d.Display(ctx, frame); err != nil {
			errs = append(errs, fmt.Errorf("display %d: %w", i, err))
		}
	}

	return errors.Join(errs...)
}
