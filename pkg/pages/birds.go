package pages

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/devicelab-dev/backyard-e2e/pkg/ui"
)

// BirdTypes are the species the sample data contains.
var BirdTypes = []string{"Hummingbird", "Swallow", "Dove", "Chickadee", "Petrel", "Cardinal"}

// Birds tab locators.
var (
	BirdsTitle       = ui.ByPredicate(`name == "Birds" AND type == "XCUIElementTypeStaticText"`)
	BirdsGrid        = ui.ByAccessibilityID("BirdsNavigationStack_Grid")
	BirdSuggestions  = ui.ByPredicate(`name == "BirdsNavigationStack_SearchSuggestions"`)
	BirdSearchField  = ui.ByPredicate(`type == "XCUIElementTypeSearchField" AND name == "Search"`)
	BirdTextElements = ui.ByPredicate(`name BEGINSWITH "BirdsNavigationStack_GridItem_" AND type == "XCUIElementTypeStaticText"`)
	BirdNames        = ui.ByPredicate(birdNamesPredicate())
)

func birdNamesPredicate() string {
	labels := make([]string, len(BirdTypes))
	for i, t := range BirdTypes {
		labels[i] = fmt.Sprintf(`label == "%s"`, t)
	}
	return `name BEGINSWITH "BirdsNavigationStack_GridItem_" AND type == "XCUIElementTypeStaticText" AND (` +
		strings.Join(labels, " OR ") + `)`
}

// SuggestionSelector selects the search suggestion for a bird type.
func SuggestionSelector(birdType string) ui.Selector {
	return ui.ByPredicate(fmt.Sprintf(`name == "BirdsNavigationStack_SearchSuggestions" AND label == "%s"`, birdType))
}

// Birds is the Birds tab.
type Birds struct {
	*Base
}

// NewBirds creates the Birds page.
func NewBirds(b *Base) *Birds {
	return &Birds{Base: b}
}

// IsLoaded reports whether the page title is visible within timeout.
func (p *Birds) IsLoaded(ctx context.Context, timeout time.Duration) (bool, error) {
	if timeout <= 0 {
		timeout = p.Waits.Load
	}
	return p.UI.IsVisible(ctx, BirdsTitle, timeout)
}

// IsGridVisible reports whether the birds grid is visible.
func (p *Birds) IsGridVisible(ctx context.Context) (bool, error) {
	return p.UI.IsVisible(ctx, BirdsGrid, p.Waits.Load)
}

// Count returns the number of bird name labels, 0 when none show up.
func (p *Birds) Count(ctx context.Context) (int, error) {
	return p.UI.Count(ctx, BirdNames, true, 0)
}

// TextCount counts every text element in the grid (name and "last seen" per bird).
func (p *Birds) TextCount(ctx context.Context) (int, error) {
	return p.UI.Count(ctx, BirdTextElements, true, 0)
}

// VisibleTypes returns the labels of the bird names in backend order.
func (p *Birds) VisibleTypes(ctx context.Context) ([]string, error) {
	m, err := p.UI.Elements(ctx, BirdNames, 0)
	if err != nil {
		return nil, err
	}
	return m.Labels(ctx)
}

// OpenSearch taps the search bar.
func (p *Birds) OpenSearch(ctx context.Context) error {
	return p.UI.Tap(ctx, SearchBar, 0)
}

// SearchFor types query into the search bar.
func (p *Birds) SearchFor(ctx context.Context, query string) error {
	return p.typeInto(ctx, SearchBar, query)
}

// CloseSearch leaves search mode.
func (p *Birds) CloseSearch(ctx context.Context) error {
	return p.tapIfVisible(ctx, SearchClose, p.Waits.Quick)
}

// ClearSearchText empties the search field, keeping search open.
func (p *Birds) ClearSearchText(ctx context.Context) error {
	return p.tapIfVisible(ctx, SearchClearText, p.Waits.Quick)
}

// AreSuggestionsVisible reports whether category suggestions are showing.
func (p *Birds) AreSuggestionsVisible(ctx context.Context) (bool, error) {
	return p.UI.IsVisible(ctx, BirdSuggestions, p.Waits.Short)
}

// SuggestionCount counts the category suggestions.
func (p *Birds) SuggestionCount(ctx context.Context, waitFor bool) (int, error) {
	return p.UI.Count(ctx, BirdSuggestions, waitFor, 0)
}

// TapSuggestion taps the suggestion for birdType.
func (p *Birds) TapSuggestion(ctx context.Context, birdType string) error {
	return p.UI.Tap(ctx, SuggestionSelector(birdType), 0)
}

// SearchValue returns the current text of the search field.
func (p *Birds) SearchValue(ctx context.Context) (string, error) {
	el, err := p.UI.WaitVisible(ctx, BirdSearchField, 0)
	if err != nil {
		return "", err
	}
	return el.Attribute(ctx, "value")
}

// WaitForSearchValue waits until the search field holds v, failing with a wait timeout.
func (p *Birds) WaitForSearchValue(ctx context.Context, v string, timeout time.Duration) error {
	if timeout <= 0 {
		timeout = p.Waits.Medium
	}
	_, err := p.UI.WaitFor(ctx, BirdSearchField, ui.HasValue(v), timeout)
	return err
}

// WaitForCount waits until exactly n bird names are shown, failing with a wait timeout.
func (p *Birds) WaitForCount(ctx context.Context, n int, timeout time.Duration) error {
	if timeout <= 0 {
		timeout = p.Waits.Medium
	}
	_, err := p.UI.WaitFor(ctx, BirdNames, ui.HasCount(n), timeout)
	return err
}
