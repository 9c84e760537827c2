package pages

import (
	"context"
	"time"

	"github.com/devicelab-dev/backyard-e2e/pkg/logger"
	"github.com/devicelab-dev/backyard-e2e/pkg/ui"
)

// Launch timing defaults.
const (
	LaunchPollInterval = 50 * time.Millisecond
	LaunchTimeout      = 10 * time.Second
)

// LaunchResult is one cold-start measurement.
type LaunchResult struct {
	Ready    bool          `yaml:"ready"`
	Duration time.Duration `yaml:"duration"`
	Polls    int           `yaml:"polls"`
}

// MeasureLaunch terminates and re-activates the app, then polls the home
// screen title at a fine interval and reports how long it took to show.
func MeasureLaunch(ctx context.Context, b *Base, timeout time.Duration) (LaunchResult, error) {
	if timeout <= 0 {
		timeout = LaunchTimeout
	}
	backend := b.UI.Backend()

	if err := backend.TerminateApp(ctx, b.BundleID); err != nil {
		return LaunchResult{}, err
	}

	start := time.Now()
	if err := backend.ActivateApp(ctx, b.BundleID); err != nil {
		return LaunchResult{}, err
	}

	spec := b.UI.Policy().Spec(timeout, "home title visible after launch").WithInterval(LaunchPollInterval)
	out, err := b.UI.WaitSpec(ctx, spec, BackyardsTitle, ui.IsVisible())
	if err != nil {
		return LaunchResult{}, err
	}

	res := LaunchResult{Ready: out.Satisfied, Duration: time.Since(start), Polls: out.Attempts}
	logger.Info("launch: ready=%t after %s (%d polls)", res.Ready, res.Duration, res.Polls)
	return res, nil
}
