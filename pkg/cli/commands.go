package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/devicelab-dev/backyard-e2e/pkg/core"
	"github.com/devicelab-dev/backyard-e2e/pkg/imagediff"
	"github.com/devicelab-dev/backyard-e2e/pkg/logger"
	"github.com/devicelab-dev/backyard-e2e/pkg/pages"
)

// ProbeResult is the YAML output of probe.
type ProbeResult struct {
	Server      string            `yaml:"server"`
	BundleID    string            `yaml:"bundle_id"`
	Width       int               `yaml:"width"`
	Height      int               `yaml:"height"`
	HomeVisible bool              `yaml:"home_visible"`
	HomeTitle   *core.ElementInfo `yaml:"home_title,omitempty"`
}

// WaitResult is the YAML output of wait.
type WaitResult struct {
	OK        bool   `yaml:"ok"`
	Action    string `yaml:"action"`
	Selector  string `yaml:"selector"`
	Condition string `yaml:"condition"`
	Elapsed   string `yaml:"elapsed"`
	Attempts  int    `yaml:"attempts"`
	Matches   int    `yaml:"matches"`
	TimedOut  bool   `yaml:"timed_out,omitempty"`
}

// ActionResult is the YAML output of commands that act on the app.
type ActionResult struct {
	OK       bool   `yaml:"ok"`
	Action   string `yaml:"action"`
	Selector string `yaml:"selector,omitempty"`
	Path     string `yaml:"path,omitempty"`
	Value    string `yaml:"value,omitempty"`
}

var probeCommand = &cli.Command{
	Name:   "probe",
	Usage:  "Open a session and report whether the home screen is up",
	Action: runProbe,
}

var waitCommand = &cli.Command{
	Name:      "wait",
	Usage:     "Wait until an element satisfies a condition",
	ArgsUsage: "<selector>",
	Description: `Poll the app until the selector satisfies the condition or the timeout
elapses. Exits non-zero on timeout.

Conditions: visible (default), present, invisible|gone, clickable, count=N, value=V

Examples:
  backyard-e2e wait --by a11y BirdsNavigationStack_Grid
  backyard-e2e wait --until count=6 --timeout 5s 'label == "Dove"'
  backyard-e2e wait --until gone --interval 100ms 'name == "Bird Food"'`,
	Flags: []cli.Flag{
		byFlag,
		timeoutFlag,
		&cli.StringFlag{
			Name:  "until",
			Usage: "Condition to wait for",
			Value: "visible",
		},
		&cli.DurationFlag{
			Name:  "interval",
			Usage: "Polling interval (0 = config default)",
		},
	},
	Action: runWait,
}

var countCommand = &cli.Command{
	Name:      "count",
	Usage:     "Count elements matching a selector",
	ArgsUsage: "<selector>",
	Flags: []cli.Flag{
		byFlag,
		timeoutFlag,
		&cli.BoolFlag{
			Name:  "wait",
			Usage: "Wait for at least one match first (0 on timeout)",
		},
	},
	Action: runCount,
}

var tapCommand = &cli.Command{
	Name:      "tap",
	Usage:     "Wait for an element to be clickable and tap it",
	ArgsUsage: "<selector>",
	Flags:     []cli.Flag{byFlag, timeoutFlag},
	Action:    runTap,
}

var namesCommand = &cli.Command{
	Name:      "names",
	Usage:     "Print the labels of matching elements, top to bottom",
	ArgsUsage: "<selector>",
	Flags:     []cli.Flag{byFlag, timeoutFlag},
	Action:    runNames,
}

var screenshotCommand = &cli.Command{
	Name:      "screenshot",
	Usage:     "Save a screenshot of the screen or of one element",
	ArgsUsage: "[selector]",
	Flags: []cli.Flag{
		byFlag,
		timeoutFlag,
		&cli.StringFlag{
			Name:    "out",
			Aliases: []string{"o"},
			Usage:   "Output PNG path (default: <artifacts dir>/screenshot_<time>.png)",
		},
	},
	Action: runScreenshot,
}

var appearanceCommand = &cli.Command{
	Name:      "appearance",
	Usage:     "Switch the simulator between light and dark mode",
	ArgsUsage: "light|dark",
	Action:    runAppearance,
}

var launchTimeCommand = &cli.Command{
	Name:  "launch-time",
	Usage: "Restart the app and measure time until the home screen shows",
	Flags: []cli.Flag{
		&cli.DurationFlag{
			Name:  "timeout",
			Usage: "Give up after this long",
			Value: pages.LaunchTimeout,
		},
		&cli.DurationFlag{
			Name:  "max",
			Usage: "Fail when launch takes longer than this (0 = no limit)",
		},
	},
	Action: runLaunchTime,
}

var diffCommand = &cli.Command{
	Name:      "diff",
	Usage:     "Compare two PNG screenshots",
	ArgsUsage: "<before.png> <after.png>",
	Description: `Compare two element screenshots and report whether they differ. Exits
non-zero when the --expect outcome does not hold. With --out, writes the after
image with differing pixels highlighted.`,
	Flags: []cli.Flag{
		&cli.UintFlag{
			Name:  "tolerance",
			Usage: "Per-channel difference ignored as noise",
			Value: uint(imagediff.DefaultOptions().Tolerance),
		},
		&cli.Float64Flag{
			Name:  "min-ratio",
			Usage: "Share of pixels that must differ to count as a change",
			Value: imagediff.DefaultOptions().MinRatio,
		},
		&cli.StringFlag{
			Name:  "expect",
			Usage: "Exit non-zero unless the result is 'changed' or 'same'",
		},
		&cli.StringFlag{
			Name:    "out",
			Aliases: []string{"o"},
			Usage:   "Write a highlighted diff PNG",
		},
	},
	Action: runDiff,
}

func runProbe(c *cli.Context) error {
	return withSession(c, func(s *session) error {
		w, h, err := s.backend.WindowSize(c.Context)
		if err != nil {
			return err
		}
		probe := s.ui.Policy().ProbeTimeout
		home := pages.NewBackyards(s.pages())
		visible, err := home.IsLoaded(c.Context, probe)
		if err != nil {
			return err
		}
		res := ProbeResult{
			Server:      s.cfg.Server,
			BundleID:    s.cfg.BundleID,
			Width:       w,
			Height:      h,
			HomeVisible: visible,
		}
		if visible {
			el, err := s.ui.WaitVisible(c.Context, pages.BackyardsTitle, probe)
			if err != nil {
				return err
			}
			info, err := s.ui.Describe(c.Context, el)
			if err != nil {
				return err
			}
			res.HomeTitle = &info
		}
		return printYAML(c.App.Writer, res)
	})
}

func runWait(c *cli.Context) error {
	sel, err := selectorArg(c)
	if err != nil {
		return err
	}
	cond, err := parseCondition(c.String("until"))
	if err != nil {
		return err
	}

	return withSession(c, func(s *session) error {
		spec := s.ui.SpecFor(sel, cond, c.Duration("timeout"))
		if iv := c.Duration("interval"); iv > 0 {
			spec = spec.WithInterval(iv)
		}
		out, err := s.ui.WaitSpec(c.Context, spec, sel, cond)
		if err != nil {
			return err
		}

		res := WaitResult{
			OK:        out.Satisfied,
			Action:    "wait",
			Selector:  sel.String(),
			Condition: cond.String(),
			Elapsed:   seconds(out.Elapsed),
			Attempts:  out.Attempts,
			Matches:   out.Value.Len(),
			TimedOut:  out.TimedOut(),
		}
		if err := printYAML(c.App.Writer, res); err != nil {
			return err
		}
		if out.TimedOut() {
			_, err := out.Require()
			return cli.Exit(err.Error(), 1)
		}
		return nil
	})
}

func runCount(c *cli.Context) error {
	sel, err := selectorArg(c)
	if err != nil {
		return err
	}
	return withSession(c, func(s *session) error {
		n, err := s.ui.Count(c.Context, sel, c.Bool("wait"), c.Duration("timeout"))
		if err != nil {
			return err
		}
		return printYAML(c.App.Writer, map[string]interface{}{
			"selector": sel.String(),
			"count":    n,
		})
	})
}

func runTap(c *cli.Context) error {
	sel, err := selectorArg(c)
	if err != nil {
		return err
	}
	return withSession(c, func(s *session) error {
		if err := s.ui.Tap(c.Context, sel, c.Duration("timeout")); err != nil {
			return err
		}
		return printYAML(c.App.Writer, ActionResult{OK: true, Action: "tap", Selector: sel.String()})
	})
}

func runNames(c *cli.Context) error {
	sel, err := selectorArg(c)
	if err != nil {
		return err
	}
	return withSession(c, func(s *session) error {
		names, err := s.ui.LabelsTopToBottom(c.Context, sel, c.Duration("timeout"))
		if err != nil {
			return err
		}
		return printYAML(c.App.Writer, map[string]interface{}{
			"selector": sel.String(),
			"names":    names,
		})
	})
}

func runScreenshot(c *cli.Context) error {
	return withSession(c, func(s *session) error {
		var (
			data     []byte
			err      error
			selector string
		)
		if c.Args().Present() {
			sel, serr := selectorArg(c)
			if serr != nil {
				return serr
			}
			selector = sel.String()
			data, err = s.ui.ElementScreenshot(c.Context, sel, c.Duration("timeout"))
		} else {
			data, err = s.ui.Screenshot(c.Context)
		}
		if err != nil {
			return err
		}

		path := c.String("out")
		if path == "" {
			name := fmt.Sprintf("screenshot_%s.png", time.Now().Format("20060102_150405"))
			path = filepath.Join(s.cfg.ArtifactsDir(), name)
		}
		if err := writeFile(path, data); err != nil {
			return err
		}
		logger.Info("screenshot saved: %s (%d bytes)", path, len(data))
		return printYAML(c.App.Writer, ActionResult{OK: true, Action: "screenshot", Selector: selector, Path: path})
	})
}

func runAppearance(c *cli.Context) error {
	style, err := parseAppearance(c.Args().First())
	if err != nil {
		return err
	}
	return withSession(c, func(s *session) error {
		if err := s.backend.SetAppearance(c.Context, style); err != nil {
			return err
		}
		return printYAML(c.App.Writer, ActionResult{OK: true, Action: "appearance", Value: string(style)})
	})
}

func runLaunchTime(c *cli.Context) error {
	return withSession(c, func(s *session) error {
		res, err := pages.MeasureLaunch(c.Context, s.pages(), c.Duration("timeout"))
		if err != nil {
			return err
		}
		if err := printYAML(c.App.Writer, res); err != nil {
			return err
		}
		if !res.Ready {
			return cli.Exit(fmt.Sprintf("home screen not visible within %s", c.Duration("timeout")), 1)
		}
		if limit := c.Duration("max"); limit > 0 && res.Duration > limit {
			return cli.Exit(fmt.Sprintf("launch took %s, limit %s", res.Duration, limit), 1)
		}
		return nil
	})
}

func runDiff(c *cli.Context) error {
	if c.Args().Len() != 2 {
		return fmt.Errorf("diff needs exactly two PNG paths")
	}
	before, err := os.ReadFile(c.Args().Get(0))
	if err != nil {
		return err
	}
	after, err := os.ReadFile(c.Args().Get(1))
	if err != nil {
		return err
	}

	tolerance := c.Uint("tolerance")
	if tolerance > 255 {
		return fmt.Errorf("tolerance must be at most 255, got %d", tolerance)
	}
	opts := imagediff.Options{Tolerance: uint8(tolerance), MinRatio: c.Float64("min-ratio")}
	res, err := imagediff.Compare(before, after, opts)
	if err != nil {
		return err
	}

	if out := c.String("out"); out != "" {
		img, err := imagediff.Highlight(before, after, opts)
		if err != nil {
			return err
		}
		if err := writeFile(out, img); err != nil {
			return err
		}
	}

	if err := printYAML(c.App.Writer, map[string]interface{}{
		"changed":     res.Changed,
		"identical":   res.Identical,
		"diff_pixels": res.DiffPixels,
		"ratio":       res.Ratio,
		"resized":     res.Resized,
	}); err != nil {
		return err
	}

	switch c.String("expect") {
	case "":
	case "changed":
		if !res.Changed {
			return cli.Exit("images are the same", 1)
		}
	case "same":
		if res.Changed {
			return cli.Exit("images differ: "+res.String(), 1)
		}
	default:
		return fmt.Errorf("--expect must be 'changed' or 'same'")
	}
	return nil
}

func writeFile(path string, data []byte) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create %s: %w", dir, err)
		}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
