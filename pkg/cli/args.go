package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/devicelab-dev/backyard-e2e/pkg/ui"
)

var byFlag = &cli.StringFlag{
	Name:  "by",
	Usage: "Locator strategy (predicate, class-chain, a11y, class, xpath, id)",
	Value: "predicate",
}

var timeoutFlag = &cli.DurationFlag{
	Name:  "timeout",
	Usage: "How long to wait (0 = config default)",
}

// selectorArg builds the selector from --by and the first positional argument.
func selectorArg(c *cli.Context) (ui.Selector, error) {
	value := strings.TrimSpace(c.Args().First())
	if value == "" {
		return ui.Selector{}, fmt.Errorf("a selector value is required")
	}
	strategy, err := ui.ParseStrategy(c.String("by"))
	if err != nil {
		return ui.Selector{}, err
	}
	return ui.Selector{Strategy: strategy, Value: value}, nil
}

// parseCondition parses visible, present, invisible (or gone), clickable,
// count=N and value=V.
func parseCondition(s string) (ui.Condition, error) {
	s = strings.TrimSpace(s)
	switch strings.ToLower(s) {
	case "", "visible":
		return ui.IsVisible(), nil
	case "present":
		return ui.IsPresent(), nil
	case "invisible", "gone":
		return ui.IsInvisible(), nil
	case "clickable":
		return ui.IsClickable(), nil
	}

	key, val, ok := strings.Cut(s, "=")
	if !ok {
		return ui.Condition{}, fmt.Errorf("unknown condition %q", s)
	}
	switch strings.ToLower(strings.TrimSpace(key)) {
	case "count":
		n, err := strconv.Atoi(strings.TrimSpace(val))
		if err != nil || n < 0 {
			return ui.Condition{}, fmt.Errorf("count must be a non-negative integer, got %q", val)
		}
		return ui.HasCount(n), nil
	case "value":
		return ui.HasValue(val), nil
	}
	return ui.Condition{}, fmt.Errorf("unknown condition %q", s)
}

func parseAppearance(s string) (ui.Appearance, error) {
	switch ui.Appearance(strings.ToLower(strings.TrimSpace(s))) {
	case ui.AppearanceLight:
		return ui.AppearanceLight, nil
	case ui.AppearanceDark:
		return ui.AppearanceDark, nil
	}
	return "", fmt.Errorf("appearance must be light or dark, got %q", s)
}
