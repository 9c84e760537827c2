// Package pages holds page objects for the Backyard Birds app. Locators are
// kept here so scenarios read as user intent; every lookup goes through the
// ui.Dispatcher and therefore waits.
package pages

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/devicelab-dev/backyard-e2e/pkg/ui"
)

// Tab is a tab bar entry.
type Tab string

// Tabs of the app's tab bar.
const (
	TabBackyards Tab = "Backyards"
	TabBirds     Tab = "Birds"
	TabPlants    Tab = "Plants"
	TabAccount   Tab = "Account"
)

// Waits are the per-check timeouts the pages use.
type Waits struct {
	Quick  time.Duration // optional controls such as search clear/close
	Short  time.Duration // "is it on screen" checks
	Medium time.Duration // content that follows a tap
	Load   time.Duration // whole screens
}

// DefaultWaits returns the timeouts tuned for a simulator.
func DefaultWaits() Waits {
	return Waits{
		Quick:  2 * time.Second,
		Short:  3 * time.Second,
		Medium: 5 * time.Second,
		Load:   10 * time.Second,
	}
}

// Base carries what every page needs: the dispatcher and the app under test.
type Base struct {
	UI       *ui.Dispatcher
	BundleID string
	Waits    Waits
}

// NewBase creates a Base with DefaultWaits.
func NewBase(d *ui.Dispatcher, bundleID string) *Base {
	return &Base{UI: d, BundleID: bundleID, Waits: DefaultWaits()}
}

// TabSelector returns the tab bar button for tab.
func TabSelector(tab Tab) ui.Selector {
	return ui.ByPredicate(fmt.Sprintf(`label == "%s" AND type == "XCUIElementTypeButton"`, tab))
}

// StaticText selects a static text by exact label.
func StaticText(label string) ui.Selector {
	return ui.ByPredicate(fmt.Sprintf(`type == "XCUIElementTypeStaticText" AND label == "%s"`, label))
}

// OpenTab taps a tab bar button.
func (b *Base) OpenTab(ctx context.Context, tab Tab) error {
	return b.UI.Tap(ctx, TabSelector(tab), 0)
}

// IsTabVisible reports whether a tab bar button is visible.
func (b *Base) IsTabVisible(ctx context.Context, tab Tab) (bool, error) {
	return b.UI.IsVisible(ctx, TabSelector(tab), b.Waits.Short)
}

// ScrollDown scrolls the current screen down.
func (b *Base) ScrollDown(ctx context.Context) error {
	return b.UI.ScrollDown(ctx)
}

// ScrollUp scrolls the current screen up.
func (b *Base) ScrollUp(ctx context.Context) error {
	return b.UI.ScrollUp(ctx)
}

// SaveScreenshot writes a full-screen PNG to dir/name.png and returns its path.
func (b *Base) SaveScreenshot(ctx context.Context, dir, name string) (string, error) {
	data, err := b.UI.Screenshot(ctx)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create screenshot dir: %w", err)
	}
	path := filepath.Join(dir, name+".png")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("write screenshot: %w", err)
	}
	return path, nil
}

// tapIfVisible taps sel when it shows up within timeout; absence is not an error.
func (b *Base) tapIfVisible(ctx context.Context, sel ui.Selector, timeout time.Duration) error {
	ok, err := b.UI.IsVisible(ctx, sel, timeout)
	if err != nil || !ok {
		return err
	}
	return b.UI.Tap(ctx, sel, 0)
}

// typeInto focuses a field and types text.
func (b *Base) typeInto(ctx context.Context, sel ui.Selector, text string) error {
	return b.UI.TypeInto(ctx, sel, text, 0)
}
