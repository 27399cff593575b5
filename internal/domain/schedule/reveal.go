package schedule

import (
	"context"
	"time"

	"github.com/okian/plnevents/pkg/logger"
)

// DefaultRevealDelay is how long an expanded panel is given to render before
// it is measured.
const DefaultRevealDelay = 50 * time.Millisecond

// Revealer scrolls a just-expanded panel into view after a short delay.
type Revealer struct {
	delay time.Duration
	log   logger.Logger
}

// NewRevealer returns a revealer. A non-positive delay uses
// DefaultRevealDelay.
func NewRevealer(delay time.Duration, log logger.Logger) *Revealer {
	if delay <= 0 {
		delay = DefaultRevealDelay
	}
	return &Revealer{delay: delay, log: logger.OrNop(log)}
}

// Reveal schedules the scroll of panelID. When the panel is not rendered the
// container is scrolled to its full height instead. The returned stop func
// cancels a pending reveal and reports whether it did; cancelling ctx has
// the same effect.
func (r *Revealer) Reveal(ctx context.Context, vp Viewport, panelID string) (stop func() bool) {
	return r.schedule(ctx, vp, panelID, nil)
}

// schedule arms the reveal timer. done, when set, runs exactly once with
// whether the reveal happened: after the timer fires, or when the timer is
// stopped first.
func (r *Revealer) schedule(ctx context.Context, vp Viewport, panelID string, done func(revealed bool)) func() bool {
	if done == nil {
		done = func(bool) {}
	}
	timer := time.AfterFunc(r.delay, func() {
		if ctx.Err() != nil || vp == nil {
			done(false)
			return
		}
		r.reveal(ctx, vp, panelID)
		done(true)
	})
	cancel := func() bool {
		if !timer.Stop() {
			return false
		}
		done(false)
		return true
	}
	unhook := context.AfterFunc(ctx, func() { cancel() })

	return func() bool {
		unhook()
		return cancel()
	}
}

func (r *Revealer) reveal(ctx context.Context, vp Viewport, panelID string) {
	defer func() {
		if rec := recover(); rec != nil {
			r.log.Error(ctx, "panel reveal panicked", logger.Any("panic", rec))
		}
	}()

	if el, ok := vp.ElementByID(panelID); ok {
		if err := el.ScrollIntoView(ScrollOptions{Behavior: ScrollSmooth, Block: "nearest"}); err != nil {
			r.log.Debug(ctx, "panel reveal failed", logger.Error(err))
		}
		return
	}
	if err := vp.ScrollTo(0, vp.ScrollHeight()); err != nil {
		r.log.Debug(ctx, "panel reveal failed", logger.Error(err))
	}
}

// RevealWait waits out the delay and reveals panelID before returning. It
// returns ctx's error when ctx ends first.
func (r *Revealer) RevealWait(ctx context.Context, vp Viewport, panelID string) error {
	if vp == nil {
		return ErrViewportNotReady
	}
	fired := make(chan bool, 1)
	stop := r.schedule(ctx, vp, panelID, func(revealed bool) { fired <- revealed })
	defer stop()

	if <-fired {
		return nil
	}
	return ctx.Err()
}

// Delay returns the reveal delay.
func (r *Revealer) Delay() time.Duration { return r.delay }
