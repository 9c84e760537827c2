package ui

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-pkgz/repeater"
	"github.com/go-pkgz/repeater/strategy"

	"github.com/devicelab-dev/backyard-e2e/pkg/core"
	"github.com/devicelab-dev/backyard-e2e/pkg/logger"
	"github.com/devicelab-dev/backyard-e2e/pkg/wait"
)

// Scroll gesture geometry in percent of the window height.
const (
	scrollFrom     = 70
	scrollTo       = 30
	scrollDuration = 500 * time.Millisecond

	// DefaultMaxScrolls bounds ScrollTo.
	DefaultMaxScrolls = 5
	// scrollProbeTimeout caps how long ScrollTo looks for the target after each swipe.
	scrollProbeTimeout = 2 * time.Second
)

var (
	errKeepScrolling = errors.New("target not visible yet")
	errScrollAborted = errors.New("scroll aborted")
)

// scrollAbort carries a failure that must stop ScrollTo's repeater.
type scrollAbort struct{ err error }

func (e scrollAbort) Error() string        { return e.err.Error() }
func (e scrollAbort) Unwrap() error        { return e.err }
func (e scrollAbort) Is(target error) bool { return target == errScrollAborted }

// Dispatcher resolves selectors through the poller and performs actions on the
// result. It holds no state besides the backend and the wait policy, so one
// Dispatcher per session is safe to share between sequential calls.
//
// Every timeout argument of zero means the policy default.
type Dispatcher struct {
	backend Backend
	policy  wait.Policy
}

// NewDispatcher creates a Dispatcher for backend using policy defaults.
func NewDispatcher(backend Backend, policy wait.Policy) *Dispatcher {
	return &Dispatcher{backend: backend, policy: policy}
}

// Backend returns the underlying backend.
func (d *Dispatcher) Backend() Backend {
	return d.backend
}

// Policy returns the wait policy.
func (d *Dispatcher) Policy() wait.Policy {
	return d.policy
}

// Wait polls until sel satisfies cond and returns the outcome without raising
// on timeout.
func (d *Dispatcher) Wait(ctx context.Context, sel Selector, cond Condition, timeout time.Duration) (wait.Outcome[MatchSet], error) {
	return d.poll(ctx, d.SpecFor(sel, cond, timeout), sel, cond)
}

// SpecFor builds the wait spec Wait would use for sel and cond.
func (d *Dispatcher) SpecFor(sel Selector, cond Condition, timeout time.Duration) wait.Spec {
	return d.policy.Spec(timeout, fmt.Sprintf("%s %s", sel, cond))
}

// WaitSpec is Wait with a caller-built spec, for callers that need their own interval.
func (d *Dispatcher) WaitSpec(ctx context.Context, spec wait.Spec, sel Selector, cond Condition) (wait.Outcome[MatchSet], error) {
	return d.poll(ctx, spec, sel, cond)
}

func (d *Dispatcher) poll(ctx context.Context, spec wait.Spec, sel Selector, cond Condition) (wait.Outcome[MatchSet], error) {
	return wait.Poll(ctx, spec, func(ctx context.Context) (MatchSet, bool, error) {
		return Evaluate(ctx, d.backend, sel, cond)
	})
}

// WaitFor polls until sel satisfies cond, failing with a wait timeout error.
func (d *Dispatcher) WaitFor(ctx context.Context, sel Selector, cond Condition, timeout time.Duration) (MatchSet, error) {
	out, err := d.Wait(ctx, sel, cond, timeout)
	if err != nil {
		return MatchSet{}, err
	}
	return out.Require()
}

// WaitVisible returns the first visible match of sel.
func (d *Dispatcher) WaitVisible(ctx context.Context, sel Selector, timeout time.Duration) (Element, error) {
	m, err := d.WaitFor(ctx, sel, IsVisible(), timeout)
	if err != nil {
		return nil, err
	}
	return m.First(), nil
}

// IsReady reports whether sel satisfies cond within timeout (the policy probe
// timeout when zero). Timing out is a normal false.
func (d *Dispatcher) IsReady(ctx context.Context, sel Selector, cond Condition, timeout time.Duration) (bool, error) {
	if timeout <= 0 {
		timeout = d.policy.Probe("").Timeout
	}
	out, err := d.Wait(ctx, sel, cond, timeout)
	if err != nil {
		return false, err
	}
	return out.Satisfied, nil
}

// IsVisible is IsReady for the visible condition.
func (d *Dispatcher) IsVisible(ctx context.Context, sel Selector, timeout time.Duration) (bool, error) {
	return d.IsReady(ctx, sel, IsVisible(), timeout)
}

// IsGone reports whether no match of sel is displayed within timeout.
func (d *Dispatcher) IsGone(ctx context.Context, sel Selector, timeout time.Duration) (bool, error) {
	return d.IsReady(ctx, sel, IsInvisible(), timeout)
}

// Act waits for sel to satisfy cond and then runs action once on the first
// match. On timeout the action is not invoked.
func (d *Dispatcher) Act(ctx context.Context, sel Selector, cond Condition, timeout time.Duration, action func(context.Context, Element) error) error {
	m, err := d.WaitFor(ctx, sel, cond, timeout)
	if err != nil {
		return err
	}
	el := m.First()
	if el == nil {
		return core.ErrElementNotFound.WithMessage(fmt.Sprintf("no element for %s", sel))
	}
	return action(ctx, el)
}

// Tap clicks the first clickable match of sel.
func (d *Dispatcher) Tap(ctx context.Context, sel Selector, timeout time.Duration) error {
	logger.Debug("tap %s", sel)
	return d.Act(ctx, sel, IsClickable(), timeout, func(ctx context.Context, el Element) error {
		return el.Click(ctx)
	})
}

// TypeInto focuses the first visible match of sel and types text into it.
func (d *Dispatcher) TypeInto(ctx context.Context, sel Selector, text string, timeout time.Duration) error {
	logger.Debug("type %q into %s", text, sel)
	return d.Act(ctx, sel, IsVisible(), timeout, func(ctx context.Context, el Element) error {
		if err := el.Click(ctx); err != nil {
			return err
		}
		return el.SendKeys(ctx, text)
	})
}

// Text returns the display text of the first visible match of sel.
func (d *Dispatcher) Text(ctx context.Context, sel Selector, timeout time.Duration) (string, error) {
	el, err := d.WaitVisible(ctx, sel, timeout)
	if err != nil {
		return "", err
	}
	return TextOf(ctx, el)
}

// Elements waits for at least one match and returns the full match set.
func (d *Dispatcher) Elements(ctx context.Context, sel Selector, timeout time.Duration) (MatchSet, error) {
	return d.WaitFor(ctx, sel, IsPresent(), timeout)
}

// Count returns the number of matches. With waitFor it first waits for at
// least one match and reports 0 on timeout; without, it queries once.
func (d *Dispatcher) Count(ctx context.Context, sel Selector, waitFor bool, timeout time.Duration) (int, error) {
	if !waitFor {
		els, err := d.backend.FindElements(ctx, sel)
		if err != nil {
			return 0, err
		}
		return len(els), nil
	}
	out, err := d.Wait(ctx, sel, IsPresent(), timeout)
	if err != nil {
		return 0, err
	}
	if !out.Satisfied {
		return 0, nil
	}
	return out.Value.Len(), nil
}

// WaitForCount reports whether exactly n elements match within timeout.
func (d *Dispatcher) WaitForCount(ctx context.Context, sel Selector, n int, timeout time.Duration) (bool, error) {
	return d.IsReady(ctx, sel, HasCount(n), d.orDefault(timeout))
}

// WaitForValue reports whether a match's value equals v within timeout.
func (d *Dispatcher) WaitForValue(ctx context.Context, sel Selector, v string, timeout time.Duration) (bool, error) {
	return d.IsReady(ctx, sel, HasValue(v), d.orDefault(timeout))
}

// LabelsTopToBottom resolves every match of sel, orders them by on-screen
// position and returns their display text. Fails with core.ErrWaitTimeout
// when nothing matches within timeout.
func (d *Dispatcher) LabelsTopToBottom(ctx context.Context, sel Selector, timeout time.Duration) ([]string, error) {
	matches, err := d.WaitFor(ctx, sel, IsPresent(), timeout)
	if err != nil {
		return nil, err
	}
	sorted, err := matches.SortByPosition(ctx)
	if err != nil {
		return nil, err
	}
	return sorted.Labels(ctx)
}

// ScrollDown swipes up the middle of the screen to reveal content below.
func (d *Dispatcher) ScrollDown(ctx context.Context) error {
	return d.scroll(ctx, scrollFrom, scrollTo)
}

// ScrollUp swipes down the middle of the screen to reveal content above.
func (d *Dispatcher) ScrollUp(ctx context.Context) error {
	return d.scroll(ctx, scrollTo, scrollFrom)
}

func (d *Dispatcher) scroll(ctx context.Context, from, to int) error {
	w, h, err := d.backend.WindowSize(ctx)
	if err != nil {
		return err
	}
	x := w / 2
	startY := h * from / 100
	endY := h * to / 100
	logger.Debug("swipe (%d,%d) -> (%d,%d)", x, startY, x, endY)
	return d.backend.Swipe(ctx, x, startY, x, endY, scrollDuration)
}

// ScrollTo scrolls down until sel is visible, at most maxScrolls times
// (DefaultMaxScrolls when zero), and returns the first visible match.
func (d *Dispatcher) ScrollTo(ctx context.Context, sel Selector, maxScrolls int) (Element, error) {
	if maxScrolls <= 0 {
		maxScrolls = DefaultMaxScrolls
	}
	probe := scrollProbeTimeout
	if p := d.policy.ProbeTimeout; p > 0 && p < probe {
		probe = p
	}
	spec := d.policy.Spec(probe, fmt.Sprintf("%s visible", sel))

	var found Element
	rpt := repeater.New(&strategy.FixedDelay{Repeats: maxScrolls})
	err := rpt.Do(ctx, func() error {
		out, err := d.poll(ctx, spec, sel, IsVisible())
		if err != nil {
			return scrollAbort{err}
		}
		if out.Satisfied {
			found = out.Value.First()
			return nil
		}
		if err := d.ScrollDown(ctx); err != nil {
			return scrollAbort{err}
		}
		return errKeepScrolling
	}, errScrollAborted)

	var abort scrollAbort
	switch {
	case errors.As(err, &abort):
		return nil, abort.err
	case found != nil:
		return found, nil
	case err != nil && !errors.Is(err, errKeepScrolling):
		return nil, err
	}
	return nil, core.ErrWaitTimeout.WithMessage(
		fmt.Sprintf("%s not visible after %d scrolls", sel, maxScrolls))
}

// ElementScreenshot captures the first visible match of sel as PNG.
func (d *Dispatcher) ElementScreenshot(ctx context.Context, sel Selector, timeout time.Duration) ([]byte, error) {
	el, err := d.WaitVisible(ctx, sel, timeout)
	if err != nil {
		return nil, err
	}
	return el.Screenshot(ctx)
}

// Screenshot captures the whole screen as PNG.
func (d *Dispatcher) Screenshot(ctx context.Context) ([]byte, error) {
	return d.backend.Screenshot(ctx)
}

// Describe snapshots the observable state of el.
func (d *Dispatcher) Describe(ctx context.Context, el Element) (core.ElementInfo, error) {
	info := core.ElementInfo{ID: el.ID()}
	var err error
	if info.Type, err = el.Attribute(ctx, "type"); err != nil {
		return info, err
	}
	if info.Name, err = el.Attribute(ctx, "name"); err != nil {
		return info, err
	}
	if info.Label, err = el.Attribute(ctx, "label"); err != nil {
		return info, err
	}
	if info.Value, err = el.Attribute(ctx, "value"); err != nil {
		return info, err
	}
	if info.Bounds, err = el.Rect(ctx); err != nil {
		return info, err
	}
	if info.Visible, err = el.Displayed(ctx); err != nil {
		return info, err
	}
	info.Enabled, err = el.Enabled(ctx)
	return info, err
}

func (d *Dispatcher) orDefault(timeout time.Duration) time.Duration {
	if timeout > 0 {
		return timeout
	}
	return d.policy.Spec(0, "").Timeout
}
