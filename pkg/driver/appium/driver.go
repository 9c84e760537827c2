package appium

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-pkgz/repeater"
	"github.com/go-pkgz/repeater/strategy"

	"github.com/devicelab-dev/backyard-e2e/pkg/config"
	"github.com/devicelab-dev/backyard-e2e/pkg/core"
	"github.com/devicelab-dev/backyard-e2e/pkg/logger"
	"github.com/devicelab-dev/backyard-e2e/pkg/ui"
)

// errSessionRejected marks session errors that retrying cannot fix.
var errSessionRejected = errors.New("session rejected")

// Driver implements ui.Backend and core.ArtifactCollector using Appium server.
type Driver struct {
	client *Client
}

// NewDriver opens a session against cfg.Server. Session creation is retried
// while the server is unreachable, up to cfg.Session.ConnectAttempts times.
func NewDriver(ctx context.Context, cfg *config.Config) (*Driver, error) {
	client := NewClient(cfg.Server)

	attempts := cfg.Session.ConnectAttempts
	if attempts < 1 {
		attempts = 1
	}

	rpt := repeater.New(&strategy.FixedDelay{Repeats: attempts, Delay: cfg.Session.ConnectDelay})
	err := rpt.Do(ctx, func() error {
		err := client.Connect(ctx, copyCaps(cfg.Capabilities))
		switch {
		case err == nil:
			return nil
		case core.IsBackendUnavailable(err):
			logger.Warn("session not created, retrying: %v", err)
			return err
		default:
			return fmt.Errorf("%w: %w", errSessionRejected, err)
		}
	}, errSessionRejected)
	if err != nil {
		return nil, err
	}

	return &Driver{client: client}, nil
}

// Close disconnects from Appium server.
func (d *Driver) Close(ctx context.Context) error {
	return d.client.Disconnect(ctx)
}

// SessionID returns the Appium session id, empty once closed.
func (d *Driver) SessionID() string {
	return d.client.SessionID()
}

// FindElements implements ui.Backend.
func (d *Driver) FindElements(ctx context.Context, sel ui.Selector) ([]ui.Element, error) {
	ids, err := d.client.FindElements(ctx, string(sel.Strategy), sel.Value)
	if err != nil {
		return nil, fmt.Errorf("find %s: %w", sel, err)
	}
	els := make([]ui.Element, len(ids))
	for i, id := range ids {
		els[i] = &element{client: d.client, id: id}
	}
	return els, nil
}

// WindowSize implements ui.Backend.
func (d *Driver) WindowSize(ctx context.Context) (int, int, error) {
	return d.client.WindowRect(ctx)
}

// Swipe implements ui.Backend.
func (d *Driver) Swipe(ctx context.Context, startX, startY, endX, endY int, duration time.Duration) error {
	return d.client.Swipe(ctx, startX, startY, endX, endY, duration)
}

// Screenshot implements ui.Backend.
func (d *Driver) Screenshot(ctx context.Context) ([]byte, error) {
	return d.client.Screenshot(ctx)
}

// ActivateApp implements ui.Backend.
func (d *Driver) ActivateApp(ctx context.Context, bundleID string) error {
	return d.client.ActivateApp(ctx, bundleID)
}

// TerminateApp implements ui.Backend.
func (d *Driver) TerminateApp(ctx context.Context, bundleID string) error {
	return d.client.TerminateApp(ctx, bundleID)
}

// SetAppearance implements ui.Backend via "mobile: setAppearance".
func (d *Driver) SetAppearance(ctx context.Context, style ui.Appearance) error {
	_, err := d.client.ExecuteMobile(ctx, "setAppearance", map[string]interface{}{
		"style": string(style),
	})
	return err
}

// CaptureScreenshot implements core.ArtifactCollector.
func (d *Driver) CaptureScreenshot(ctx context.Context) ([]byte, error) {
	return d.client.Screenshot(ctx)
}

// CapturePageSource implements core.ArtifactCollector.
func (d *Driver) CapturePageSource(ctx context.Context) ([]byte, error) {
	src, err := d.client.Source(ctx)
	if err != nil {
		return nil, err
	}
	return []byte(src), nil
}

// element is a server-side element handle.
type element struct {
	client *Client
	id     string
}

func (e *element) ID() string { return e.id }

func (e *element) Attribute(ctx context.Context, name string) (string, error) {
	return e.client.ElementAttribute(ctx, e.id, name)
}

func (e *element) Text(ctx context.Context) (string, error) {
	return e.client.ElementText(ctx, e.id)
}

func (e *element) Rect(ctx context.Context) (core.Bounds, error) {
	return e.client.ElementRect(ctx, e.id)
}

func (e *element) Displayed(ctx context.Context) (bool, error) {
	return e.client.ElementDisplayed(ctx, e.id)
}

func (e *element) Enabled(ctx context.Context) (bool, error) {
	return e.client.ElementEnabled(ctx, e.id)
}

func (e *element) Click(ctx context.Context) error {
	return e.client.ClickElement(ctx, e.id)
}

func (e *element) SendKeys(ctx context.Context, text string) error {
	return e.client.SendElementKeys(ctx, e.id, text)
}

func (e *element) Screenshot(ctx context.Context) ([]byte, error) {
	return e.client.ElementScreenshot(ctx, e.id)
}

// copyCaps returns a shallow copy so session creation never mutates the config.
func copyCaps(caps map[string]interface{}) map[string]interface{} {
	out := make(map[string]interface{}, len(caps))
	for k, v := range caps {
		out[k] = v
	}
	return out
}

var (
	_ ui.Backend             = (*Driver)(nil)
	_ core.ArtifactCollector = (*Driver)(nil)
)
