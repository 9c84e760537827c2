// Package mock provides a scripted in-memory backend for testing without a device.
package mock

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/devicelab-dev/backyard-e2e/pkg/core"
	"github.com/devicelab-dev/backyard-e2e/pkg/ui"
)

// Resolver returns the elements for the call-th lookup of a selector (1-indexed).
type Resolver func(call int) ([]*Element, error)

// Swipe records one swipe gesture.
type Swipe struct {
	StartX, StartY, EndX, EndY int
	Duration                   time.Duration
}

// Config configures mock backend behavior.
type Config struct {
	// Window size to report
	Width  int
	Height int
	// FindDelay adds artificial latency per lookup
	FindDelay time.Duration
}

// Backend is a mock implementation of ui.Backend.
type Backend struct {
	Config Config

	// Hooks run after the corresponding call is recorded.
	OnSwipe     func(Swipe)
	OnActivate  func(bundleID string)
	OnTerminate func(bundleID string)

	mu         sync.Mutex
	resolvers  map[ui.Selector]Resolver
	calls      map[ui.Selector]int
	err        error
	swipes     []Swipe
	activated  []string
	terminated []string
	appearance ui.Appearance
	screen     []byte
}

// New creates a new mock backend.
func New(cfg Config) *Backend {
	if cfg.Width == 0 {
		cfg.Width = 402
	}
	if cfg.Height == 0 {
		cfg.Height = 874
	}
	return &Backend{
		Config:     cfg,
		resolvers:  make(map[ui.Selector]Resolver),
		calls:      make(map[ui.Selector]int),
		appearance: ui.AppearanceLight,
		screen:     pixelPNG,
	}
}

// Set makes every lookup of sel return els.
func (b *Backend) Set(sel ui.Selector, els ...*Element) {
	b.Resolve(sel, func(int) ([]*Element, error) { return els, nil })
}

// Script makes the n-th lookup of sel return steps[n-1]; the last step repeats.
func (b *Backend) Script(sel ui.Selector, steps ...[]*Element) {
	b.Resolve(sel, func(call int) ([]*Element, error) {
		if len(steps) == 0 {
			return nil, nil
		}
		if call > len(steps) {
			call = len(steps)
		}
		return steps[call-1], nil
	})
}

// Resolve installs a custom resolver for sel.
func (b *Backend) Resolve(sel ui.Selector, fn Resolver) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.resolvers[sel] = fn
	b.calls[sel] = 0
}

// Clear removes the resolver for sel so it matches nothing.
func (b *Backend) Clear(sel ui.Selector) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.resolvers, sel)
}

// FailWith makes every backend call fail with err until reset with nil.
func (b *Backend) FailWith(err error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.err = err
}

// SetScreenshot sets the PNG returned by Screenshot.
func (b *Backend) SetScreenshot(png []byte) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.screen = png
}

// FindCalls returns how many times sel has been looked up.
func (b *Backend) FindCalls(sel ui.Selector) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.calls[sel]
}

// Swipes returns the recorded swipes.
func (b *Backend) Swipes() []Swipe {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]Swipe(nil), b.swipes...)
}

// Activated returns bundle IDs passed to ActivateApp, in order.
func (b *Backend) Activated() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]string(nil), b.activated...)
}

// Terminated returns bundle IDs passed to TerminateApp, in order.
func (b *Backend) Terminated() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]string(nil), b.terminated...)
}

// Appearance returns the last appearance set.
func (b *Backend) Appearance() ui.Appearance {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.appearance
}

// FindElements implements ui.Backend.
func (b *Backend) FindElements(ctx context.Context, sel ui.Selector) ([]ui.Element, error) {
	if b.Config.FindDelay > 0 {
		select {
		case <-time.After(b.Config.FindDelay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	b.mu.Lock()
	if b.err != nil {
		err := b.err
		b.mu.Unlock()
		return nil, err
	}
	b.calls[sel]++
	call := b.calls[sel]
	fn := b.resolvers[sel]
	b.mu.Unlock()

	if fn == nil {
		return []ui.Element{}, nil
	}
	els, err := fn(call)
	if err != nil {
		return nil, err
	}
	out := make([]ui.Element, len(els))
	for i, el := range els {
		out[i] = el
	}
	return out, nil
}

// WindowSize implements ui.Backend.
func (b *Backend) WindowSize(ctx context.Context) (int, int, error) {
	if err := b.failure(); err != nil {
		return 0, 0, err
	}
	return b.Config.Width, b.Config.Height, nil
}

// Swipe implements ui.Backend.
func (b *Backend) Swipe(ctx context.Context, startX, startY, endX, endY int, duration time.Duration) error {
	if err := b.failure(); err != nil {
		return err
	}
	s := Swipe{StartX: startX, StartY: startY, EndX: endX, EndY: endY, Duration: duration}
	b.mu.Lock()
	b.swipes = append(b.swipes, s)
	hook := b.OnSwipe
	b.mu.Unlock()
	if hook != nil {
		hook(s)
	}
	return nil
}

// Screenshot implements ui.Backend.
func (b *Backend) Screenshot(ctx context.Context) ([]byte, error) {
	if err := b.failure(); err != nil {
		return nil, err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.screen, nil
}

// ActivateApp implements ui.Backend.
func (b *Backend) ActivateApp(ctx context.Context, bundleID string) error {
	if err := b.failure(); err != nil {
		return err
	}
	b.mu.Lock()
	b.activated = append(b.activated, bundleID)
	hook := b.OnActivate
	b.mu.Unlock()
	if hook != nil {
		hook(bundleID)
	}
	return nil
}

// TerminateApp implements ui.Backend.
func (b *Backend) TerminateApp(ctx context.Context, bundleID string) error {
	if err := b.failure(); err != nil {
		return err
	}
	b.mu.Lock()
	b.terminated = append(b.terminated, bundleID)
	hook := b.OnTerminate
	b.mu.Unlock()
	if hook != nil {
		hook(bundleID)
	}
	return nil
}

// SetAppearance implements ui.Backend.
func (b *Backend) SetAppearance(ctx context.Context, style ui.Appearance) error {
	if err := b.failure(); err != nil {
		return err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.appearance = style
	return nil
}

func (b *Backend) failure() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.err
}

// Element is a mock UI element. Zero-value flags mean displayed, enabled and attached.
type Element struct {
	ElemID  string
	Attrs   map[string]string
	Content string // returned by Text
	Bounds  core.Bounds
	Shot    []byte

	// OnClick runs after a click is recorded.
	OnClick func()

	mu       sync.Mutex
	hidden   bool
	disabled bool
	stale    bool
	clicks   int
	typed    []string
}

// NewElement creates a displayed element with a label at the given position.
func NewElement(id, label string, x, y int) *Element {
	return &Element{
		ElemID: id,
		Attrs:  map[string]string{"label": label, "name": id},
		Bounds: core.Bounds{X: x, Y: y, Width: 100, Height: 44},
	}
}

// SetHidden toggles the displayed state.
func (e *Element) SetHidden(hidden bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.hidden = hidden
}

// SetDisabled toggles the enabled state.
func (e *Element) SetDisabled(disabled bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.disabled = disabled
}

// Detach makes every later call fail with core.ErrStaleElement.
func (e *Element) Detach() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.stale = true
}

// SetAttr sets an attribute value.
func (e *Element) SetAttr(name, value string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.Attrs == nil {
		e.Attrs = make(map[string]string)
	}
	e.Attrs[name] = value
}

// Clicks returns how many times the element was clicked.
func (e *Element) Clicks() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.clicks
}

// Typed returns the text sent with SendKeys, in order.
func (e *Element) Typed() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]string(nil), e.typed...)
}

// ID implements ui.Element.
func (e *Element) ID() string { return e.ElemID }

// Attribute implements ui.Element.
func (e *Element) Attribute(ctx context.Context, name string) (string, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.check(); err != nil {
		return "", err
	}
	return e.Attrs[name], nil
}

// Text implements ui.Element.
func (e *Element) Text(ctx context.Context) (string, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.check(); err != nil {
		return "", err
	}
	return e.Content, nil
}

// Rect implements ui.Element.
func (e *Element) Rect(ctx context.Context) (core.Bounds, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.check(); err != nil {
		return core.Bounds{}, err
	}
	return e.Bounds, nil
}

// Displayed implements ui.Element.
func (e *Element) Displayed(ctx context.Context) (bool, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.check(); err != nil {
		return false, err
	}
	return !e.hidden, nil
}

// Enabled implements ui.Element.
func (e *Element) Enabled(ctx context.Context) (bool, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.check(); err != nil {
		return false, err
	}
	return !e.disabled, nil
}

// Click implements ui.Element.
func (e *Element) Click(ctx context.Context) error {
	e.mu.Lock()
	if err := e.check(); err != nil {
		e.mu.Unlock()
		return err
	}
	e.clicks++
	hook := e.OnClick
	e.mu.Unlock()
	if hook != nil {
		hook()
	}
	return nil
}

// SendKeys implements ui.Element.
func (e *Element) SendKeys(ctx context.Context, text string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.check(); err != nil {
		return err
	}
	e.typed = append(e.typed, text)
	if e.Attrs == nil {
		e.Attrs = make(map[string]string)
	}
	e.Attrs["value"] += text
	return nil
}

// Screenshot implements ui.Element.
func (e *Element) Screenshot(ctx context.Context) ([]byte, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.check(); err != nil {
		return nil, err
	}
	if e.Shot != nil {
		return e.Shot, nil
	}
	return pixelPNG, nil
}

func (e *Element) check() error {
	if e.stale {
		return core.ErrStaleElement.WithMessage(fmt.Sprintf("element %s is stale", e.ElemID))
	}
	return nil
}

// pixelPNG is a minimal valid PNG (1x1 transparent pixel).
var pixelPNG = []byte{
	0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A, // PNG signature
	0x00, 0x00, 0x00, 0x0D, 0x49, 0x48, 0x44, 0x52, // IHDR chunk
	0x00, 0x00, 0x00, 0x01, 0x00, 0x00, 0x00, 0x01,
	0x08, 0x06, 0x00, 0x00, 0x00, 0x1F, 0x15, 0xC4,
	0x89, 0x00, 0x00, 0x00, 0x0A, 0x49, 0x44, 0x41,
	0x54, 0x78, 0x9C, 0x63, 0x00, 0x01, 0x00, 0x00,
	0x05, 0x00, 0x01, 0x0D, 0x0A, 0x2D, 0xB4, 0x00,
	0x00, 0x00, 0x00, 0x49, 0x45, 0x4E, 0x44, 0xAE,
	0x42, 0x60, 0x82,
}

var (
	_ ui.Backend = (*Backend)(nil)
	_ ui.Element = (*Element)(nil)
)
