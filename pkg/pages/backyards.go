package pages

import (
	"context"
	"fmt"
	"time"

	"github.com/devicelab-dev/backyard-e2e/pkg/ui"
)

// Backyards home screen locators.
var (
	BackyardsTitle     = ui.ByPredicate(`name == "Backyards" AND type == "XCUIElementTypeStaticText"`)
	SearchBar          = ui.ByAccessibilityID("Search")
	SearchClose        = ui.ByAccessibilityID("Close")
	SearchClearText    = ui.ByAccessibilityID("Clear text")
	SearchPlaceholders = ui.ByPredicate(`label CONTAINS "is currently in"`)
	// Card buttons; favorite buttons share the name prefix and are excluded.
	BackyardCells = ui.ByPredicate(`type == "XCUIElementTypeButton" AND name BEGINSWITH "BackyardGridItem_ZStack_" AND label != "Favorite"`)
	BackyardNames = ui.ByPredicate(`type == "XCUIElementTypeStaticText" AND name BEGINSWITH "BackyardGridItem_ZStack_"`)
	FavoriteCells = ui.ByPredicate(`name BEGINSWITH "BackyardGridItem_ZStack_" AND label == "Favorite"`)
)

// Backyards is the Backyards tab (home screen).
type Backyards struct {
	*Base
}

// NewBackyards creates the Backyards page.
func NewBackyards(b *Base) *Backyards {
	return &Backyards{Base: b}
}

// IsLoaded reports whether the page title is visible within timeout.
func (p *Backyards) IsLoaded(ctx context.Context, timeout time.Duration) (bool, error) {
	if timeout <= 0 {
		timeout = p.Waits.Load
	}
	return p.UI.IsVisible(ctx, BackyardsTitle, timeout)
}

// Title returns the page title text.
func (p *Backyards) Title(ctx context.Context) (string, error) {
	return p.UI.Text(ctx, BackyardsTitle, 0)
}

// Count returns the number of backyard cards. See ui.Dispatcher.Count for waitFor.
func (p *Backyards) Count(ctx context.Context, waitFor bool) (int, error) {
	return p.UI.Count(ctx, BackyardCells, waitFor, 0)
}

// Cells returns every backyard card, waiting for at least one.
func (p *Backyards) Cells(ctx context.Context) (ui.MatchSet, error) {
	return p.UI.Elements(ctx, BackyardCells, 0)
}

// Names returns backyard names top to bottom.
func (p *Backyards) Names(ctx context.Context) ([]string, error) {
	return p.UI.LabelsTopToBottom(ctx, BackyardNames, 0)
}

// TapFirst opens the first backyard card.
func (p *Backyards) TapFirst(ctx context.Context) error {
	return p.TapByIndex(ctx, 0)
}

// TapByIndex opens the index-th card in backend order.
func (p *Backyards) TapByIndex(ctx context.Context, index int) error {
	cells, err := p.Cells(ctx)
	if err != nil {
		return err
	}
	if index < 0 || index >= cells.Len() {
		return fmt.Errorf("backyard index %d out of range: only %d backyards found", index, cells.Len())
	}
	return cells.Elements[index].Click(ctx)
}

// TapByName opens the backyard whose name label is name.
func (p *Backyards) TapByName(ctx context.Context, name string) error {
	return p.UI.Tap(ctx, StaticText(name), 0)
}

// IsBackyardVisible reports whether a backyard name is visible.
func (p *Backyards) IsBackyardVisible(ctx context.Context, name string) (bool, error) {
	return p.UI.IsVisible(ctx, StaticText(name), p.Waits.Short)
}

// FavoriteCount returns the number of favorite buttons on the cards.
func (p *Backyards) FavoriteCount(ctx context.Context) (int, error) {
	return p.UI.Count(ctx, FavoriteCells, true, 0)
}

// TapFirstFavorite toggles the favorite button of the first card.
func (p *Backyards) TapFirstFavorite(ctx context.Context) error {
	m, err := p.UI.Elements(ctx, FavoriteCells, 0)
	if err != nil {
		return err
	}
	return m.First().Click(ctx)
}

// FirstFavoriteSnapshot captures the first card's favorite button as PNG.
func (p *Backyards) FirstFavoriteSnapshot(ctx context.Context) ([]byte, error) {
	m, err := p.UI.Elements(ctx, FavoriteCells, 0)
	if err != nil {
		return nil, err
	}
	return m.First().Screenshot(ctx)
}

// OpenSearch taps the search bar.
func (p *Backyards) OpenSearch(ctx context.Context) error {
	return p.UI.Tap(ctx, SearchBar, 0)
}

// SearchFor types query into the search bar.
func (p *Backyards) SearchFor(ctx context.Context, query string) error {
	return p.typeInto(ctx, SearchBar, query)
}

// ClearSearchText empties the search field, keeping search open.
func (p *Backyards) ClearSearchText(ctx context.Context) error {
	return p.tapIfVisible(ctx, SearchClearText, p.Waits.Quick)
}

// CloseSearch leaves search mode.
func (p *Backyards) CloseSearch(ctx context.Context) error {
	return p.tapIfVisible(ctx, SearchClose, p.Waits.Quick)
}

// IsSearchBarVisible reports whether the search bar is showing.
func (p *Backyards) IsSearchBarVisible(ctx context.Context) (bool, error) {
	return p.UI.IsVisible(ctx, SearchBar, p.Waits.Short)
}

// PlaceholderCount counts "<bird> is currently in <backyard>" placeholders.
func (p *Backyards) PlaceholderCount(ctx context.Context, waitFor bool) (int, error) {
	return p.UI.Count(ctx, SearchPlaceholders, waitFor, 0)
}

// ArePlaceholdersVisible reports whether search placeholders are showing.
func (p *Backyards) ArePlaceholdersVisible(ctx context.Context) (bool, error) {
	return p.UI.IsVisible(ctx, SearchPlaceholders, p.Waits.Short)
}

// WaitForCount waits until exactly n cards are shown, failing with a wait timeout.
func (p *Backyards) WaitForCount(ctx context.Context, n int, timeout time.Duration) error {
	if timeout <= 0 {
		timeout = p.Waits.Medium
	}
	_, err := p.UI.WaitFor(ctx, BackyardCells, ui.HasCount(n), timeout)
	return err
}
