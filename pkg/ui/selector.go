// Package ui resolves selectors against an automation backend and applies the
// wait-and-retry contract to every lookup and action.
package ui

import (
	"fmt"
	"strings"
)

// Strategy is a W3C/Appium locator strategy name.
type Strategy string

// Locator strategies understood by an XCUITest backend.
const (
	StrategyAccessibilityID Strategy = "accessibility id"
	StrategyPredicate       Strategy = "-ios predicate string"
	StrategyClassChain      Strategy = "-ios class chain"
	StrategyClassName       Strategy = "class name"
	StrategyXPath           Strategy = "xpath"
	StrategyID              Strategy = "id"
)

// Selector is an opaque query handed to the backend verbatim.
type Selector struct {
	Strategy Strategy
	Value    string
}

// ByAccessibilityID selects by accessibility identifier.
func ByAccessibilityID(id string) Selector {
	return Selector{Strategy: StrategyAccessibilityID, Value: id}
}

// ByPredicate selects with an iOS NSPredicate string.
func ByPredicate(predicate string) Selector {
	return Selector{Strategy: StrategyPredicate, Value: predicate}
}

// ByClassChain selects with an iOS class chain query.
func ByClassChain(chain string) Selector {
	return Selector{Strategy: StrategyClassChain, Value: chain}
}

// ByClassName selects by element type, e.g. XCUIElementTypeNavigationBar.
func ByClassName(class string) Selector {
	return Selector{Strategy: StrategyClassName, Value: class}
}

// ByXPath selects with an XPath expression.
func ByXPath(xpath string) Selector {
	return Selector{Strategy: StrategyXPath, Value: xpath}
}

// IsZero reports whether the selector is unset.
func (s Selector) IsZero() bool {
	return s.Strategy == "" && s.Value == ""
}

func (s Selector) String() string {
	return fmt.Sprintf("%s=%q", s.Strategy, s.Value)
}

var strategyAliases = map[string]Strategy{
	"accessibility id":      StrategyAccessibilityID,
	"accessibility-id":      StrategyAccessibilityID,
	"a11y":                  StrategyAccessibilityID,
	"predicate":             StrategyPredicate,
	"-ios predicate string": StrategyPredicate,
	"class-chain":           StrategyClassChain,
	"-ios class chain":      StrategyClassChain,
	"class":                 StrategyClassName,
	"class name":            StrategyClassName,
	"xpath":                 StrategyXPath,
	"id":                    StrategyID,
}

// ParseStrategy maps a strategy name or short alias to its wire name.
func ParseStrategy(name string) (Strategy, error) {
	if s, ok := strategyAliases[strings.ToLower(strings.TrimSpace(name))]; ok {
		return s, nil
	}
	return "", fmt.Errorf("unknown locator strategy %q", name)
}
