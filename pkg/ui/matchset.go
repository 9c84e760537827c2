package ui

import (
	"context"
	"fmt"
	"sort"

	"github.com/devicelab-dev/backyard-e2e/pkg/core"
)

// MatchSet is the ordered list of elements a selector resolved to, in backend
// order unless re-sorted.
type MatchSet struct {
	Selector Selector
	Elements []Element
}

// Len returns the number of matches.
func (m MatchSet) Len() int {
	return len(m.Elements)
}

// First returns the first match, or nil when the set is empty.
func (m MatchSet) First() Element {
	if len(m.Elements) == 0 {
		return nil
	}
	return m.Elements[0]
}

// SortByPosition returns a copy ordered top-to-bottom, then left-to-right.
// Elements sharing a position keep their backend order.
func (m MatchSet) SortByPosition(ctx context.Context) (MatchSet, error) {
	items := make([]positioned, len(m.Elements))
	for i, el := range m.Elements {
		r, err := el.Rect(ctx)
		if err != nil {
			return MatchSet{}, fmt.Errorf("rect of %s: %w", el.ID(), err)
		}
		items[i] = positioned{el: el, bounds: r}
	}
	sortPositioned(items)

	sorted := MatchSet{Selector: m.Selector, Elements: make([]Element, len(items))}
	for i, it := range items {
		sorted.Elements[i] = it.el
	}
	return sorted, nil
}

// Labels returns the display text of every match, in set order.
func (m MatchSet) Labels(ctx context.Context) ([]string, error) {
	labels := make([]string, 0, len(m.Elements))
	for _, el := range m.Elements {
		text, err := TextOf(ctx, el)
		if err != nil {
			return nil, fmt.Errorf("label of %s: %w", el.ID(), err)
		}
		labels = append(labels, text)
	}
	return labels, nil
}

type positioned struct {
	el     Element
	bounds core.Bounds
}

func sortPositioned(items []positioned) {
	sort.SliceStable(items, func(i, j int) bool {
		if items[i].bounds.Y != items[j].bounds.Y {
			return items[i].bounds.Y < items[j].bounds.Y
		}
		return items[i].bounds.X < items[j].bounds.X
	})
}
