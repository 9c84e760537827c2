package ui

import (
	"context"
	"errors"
	"time"

	"github.com/devicelab-dev/backyard-e2e/pkg/core"
)

// Appearance is the system light/dark style.
type Appearance string

// Appearance styles accepted by SetAppearance.
const (
	AppearanceLight Appearance = "light"
	AppearanceDark  Appearance = "dark"
)

// Backend is the remote automation service. Every method is a single request;
// none of them wait or retry.
//
// FindElements returns an empty slice, not an error, when nothing matches.
// Failures to reach the service are reported as core.ErrBackendUnavailable.
type Backend interface {
	FindElements(ctx context.Context, sel Selector) ([]Element, error)
	WindowSize(ctx context.Context) (width, height int, err error)
	Swipe(ctx context.Context, startX, startY, endX, endY int, duration time.Duration) error
	Screenshot(ctx context.Context) ([]byte, error)
	ActivateApp(ctx context.Context, bundleID string) error
	TerminateApp(ctx context.Context, bundleID string) error
	SetAppearance(ctx context.Context, style Appearance) error
}

// Element is a handle to a resolved UI element. Handles go stale when the
// element leaves the tree; methods then fail with core.ErrStaleElement.
type Element interface {
	ID() string
	Attribute(ctx context.Context, name string) (string, error)
	Text(ctx context.Context) (string, error)
	Rect(ctx context.Context) (core.Bounds, error)
	Displayed(ctx context.Context) (bool, error)
	Enabled(ctx context.Context) (bool, error)
	Click(ctx context.Context) error
	SendKeys(ctx context.Context, text string) error
	Screenshot(ctx context.Context) ([]byte, error)
}

// TextOf returns the element's label, falling back to its value and then its text.
func TextOf(ctx context.Context, el Element) (string, error) {
	for _, attr := range []string{"label", "value"} {
		v, err := el.Attribute(ctx, attr)
		if err != nil {
			return "", err
		}
		if v != "" {
			return v, nil
		}
	}
	return el.Text(ctx)
}

func isStale(err error) bool {
	return errors.Is(err, core.ErrStaleElement)
}
