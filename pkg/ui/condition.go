package ui

import (
	"context"
	"fmt"
)

// ConditionKind enumerates the predicates a wait can check.
type ConditionKind int

const (
	Present ConditionKind = iota
	Visible
	Invisible
	Clickable
	CountEquals
	ValueEquals
)

// Condition is a predicate over the elements a selector resolves to.
type Condition struct {
	Kind  ConditionKind
	Count int    // CountEquals
	Value string // ValueEquals
}

// IsPresent holds when at least one element matches.
func IsPresent() Condition { return Condition{Kind: Present} }

// IsVisible holds when at least one match is displayed.
func IsVisible() Condition { return Condition{Kind: Visible} }

// IsInvisible holds when no match is displayed, including when nothing matches.
func IsInvisible() Condition { return Condition{Kind: Invisible} }

// IsClickable holds when at least one match is displayed and enabled.
func IsClickable() Condition { return Condition{Kind: Clickable} }

// HasCount holds when exactly n elements match.
func HasCount(n int) Condition { return Condition{Kind: CountEquals, Count: n} }

// HasValue holds when a match's value attribute equals v.
func HasValue(v string) Condition { return Condition{Kind: ValueEquals, Value: v} }

func (c Condition) String() string {
	switch c.Kind {
	case Present:
		return "present"
	case Visible:
		return "visible"
	case Invisible:
		return "invisible"
	case Clickable:
		return "clickable"
	case CountEquals:
		return fmt.Sprintf("count == %d", c.Count)
	case ValueEquals:
		return fmt.Sprintf("value == %q", c.Value)
	default:
		return "unknown"
	}
}

// Evaluate runs one query for sel and reports whether c holds. The returned
// MatchSet holds the elements satisfying c (all matches for Present and
// CountEquals, none for Invisible). Zero matches is a valid observation.
// Elements that go stale mid-evaluation are treated as absent.
func Evaluate(ctx context.Context, b Backend, sel Selector, c Condition) (MatchSet, bool, error) {
	els, err := b.FindElements(ctx, sel)
	if err != nil {
		return MatchSet{}, false, err
	}
	all := MatchSet{Selector: sel, Elements: els}

	switch c.Kind {
	case Present:
		return all, len(els) > 0, nil

	case CountEquals:
		return all, len(els) == c.Count, nil

	case Visible, Invisible, Clickable:
		var keep []Element
		for _, el := range els {
			ok, err := el.Displayed(ctx)
			if err != nil {
				if isStale(err) {
					continue
				}
				return MatchSet{}, false, err
			}
			if ok && c.Kind == Clickable {
				ok, err = el.Enabled(ctx)
				if err != nil {
					if isStale(err) {
						continue
					}
					return MatchSet{}, false, err
				}
			}
			if ok {
				keep = append(keep, el)
			}
		}
		if c.Kind == Invisible {
			return MatchSet{Selector: sel}, len(keep) == 0, nil
		}
		return MatchSet{Selector: sel, Elements: keep}, len(keep) > 0, nil

	case ValueEquals:
		var keep []Element
		for _, el := range els {
			v, err := el.Attribute(ctx, "value")
			if err != nil {
				if isStale(err) {
					continue
				}
				return MatchSet{}, false, err
			}
			if v == c.Value {
				keep = append(keep, el)
			}
		}
		return MatchSet{Selector: sel, Elements: keep}, len(keep) > 0, nil
	}

	return MatchSet{}, false, fmt.Errorf("unsupported condition %d", c.Kind)
}
