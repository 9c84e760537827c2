package pages

import (
	"context"
	"fmt"
	"time"

	"github.com/devicelab-dev/backyard-e2e/pkg/ui"
)

// Backyard detail locators.
var (
	BackButton      = ui.ByAccessibilityID("BackButton")
	FavoriteButton  = ui.ByAccessibilityID("Favorite")
	ShowMoreButton  = ui.ByPredicate(`name == "Show More"`)
	ShowLessButton  = ui.ByPredicate(`name == "Show Less"`)
	FoodButton      = ui.ByPredicate(`name CONTAINS "Choose Food"`)
	WaterButton     = ui.ByPredicate(`name CONTAINS "Refill Water"`)
	FoodPopupDone   = ui.ByPredicate(`name == "BirdFoodPicker_DoneButton"`)
	FoodPopupTitle  = ui.ByPredicate(`name == "Bird Food" AND type == "XCUIElementTypeStaticText"`)
	FoodPopupShop   = ui.ByAccessibilityID("BirdFoodPicker_ShopLinkButton")
	FoodShopBack    = ui.ByPredicate(`name == "BackButton" AND label == "Bird Food"`)
	NavigationBar   = ui.ByClassName("XCUIElementTypeNavigationBar")
	FountainArtwork = ui.ByPredicate(`name CONTAINS "FountainArtworkImage"`)
	RecentVisitors  = ui.ByPredicate(`label == "Recent Visitors" AND type == "XCUIElementTypeStaticText"`)
)

// BackyardDetail is the detail view of a single backyard.
type BackyardDetail struct {
	*Base
}

// NewBackyardDetail creates the detail page.
func NewBackyardDetail(b *Base) *BackyardDetail {
	return &BackyardDetail{Base: b}
}

// TitleSelector selects the detail title for a backyard.
func TitleSelector(name string) ui.Selector {
	return ui.ByPredicate(fmt.Sprintf(`label == "%s" AND type == "XCUIElementTypeStaticText"`, name))
}

// IsLoaded reports whether the back and favorite buttons are visible.
func (p *BackyardDetail) IsLoaded(ctx context.Context, timeout time.Duration) (bool, error) {
	if timeout <= 0 {
		timeout = p.Waits.Load
	}
	ok, err := p.UI.IsVisible(ctx, BackButton, timeout)
	if err != nil || !ok {
		return false, err
	}
	return p.UI.IsVisible(ctx, FavoriteButton, timeout)
}

// Back returns to the backyard list.
func (p *BackyardDetail) Back(ctx context.Context) error {
	return p.UI.Tap(ctx, BackButton, 0)
}

// ToggleFavorite taps the favorite button.
func (p *BackyardDetail) ToggleFavorite(ctx context.Context) error {
	return p.UI.Tap(ctx, FavoriteButton, 0)
}

// FavoriteSnapshot captures the favorite button as PNG. The app does not
// expose favorite state as an attribute, so state is compared visually.
func (p *BackyardDetail) FavoriteSnapshot(ctx context.Context) ([]byte, error) {
	return p.UI.ElementScreenshot(ctx, FavoriteButton, 0)
}

// Title returns the detail title, which must equal name.
func (p *BackyardDetail) Title(ctx context.Context, name string) (string, error) {
	return p.UI.Text(ctx, TitleSelector(name), 0)
}

// IsTitleVisible reports whether the title for name is visible.
func (p *BackyardDetail) IsTitleVisible(ctx context.Context, name string) (bool, error) {
	return p.UI.IsVisible(ctx, TitleSelector(name), p.Waits.Medium)
}

// NavigationTitle returns the name of the navigation bar.
func (p *BackyardDetail) NavigationTitle(ctx context.Context) (string, error) {
	el, err := p.UI.WaitVisible(ctx, NavigationBar, 0)
	if err != nil {
		return "", err
	}
	return el.Attribute(ctx, "name")
}

// ShowMore scrolls to and taps "Show More".
func (p *BackyardDetail) ShowMore(ctx context.Context) error {
	if _, err := p.UI.ScrollTo(ctx, ShowMoreButton, 0); err != nil {
		return err
	}
	return p.UI.Tap(ctx, ShowMoreButton, 0)
}

// ShowLess scrolls to and taps "Show Less".
func (p *BackyardDetail) ShowLess(ctx context.Context) error {
	if _, err := p.UI.ScrollTo(ctx, ShowLessButton, 0); err != nil {
		return err
	}
	return p.UI.Tap(ctx, ShowLessButton, 0)
}

// IsShowMoreVisible reports whether "Show More" is on screen.
func (p *BackyardDetail) IsShowMoreVisible(ctx context.Context) (bool, error) {
	return p.UI.IsVisible(ctx, ShowMoreButton, p.Waits.Short)
}

// IsShowLessVisible reports whether "Show Less" is on screen.
func (p *BackyardDetail) IsShowLessVisible(ctx context.Context) (bool, error) {
	return p.UI.IsVisible(ctx, ShowLessButton, p.Waits.Short)
}

// IsDetailContentVisible reports whether the food and water buttons are shown.
func (p *BackyardDetail) IsDetailContentVisible(ctx context.Context) (bool, error) {
	ok, err := p.UI.IsVisible(ctx, FoodButton, p.Waits.Medium)
	if err != nil || !ok {
		return false, err
	}
	return p.UI.IsVisible(ctx, WaterButton, p.Waits.Medium)
}

// OpenFood taps the food button.
func (p *BackyardDetail) OpenFood(ctx context.Context) error {
	return p.UI.Tap(ctx, FoodButton, 0)
}

// RefillWater taps the water button.
func (p *BackyardDetail) RefillWater(ctx context.Context) error {
	return p.UI.Tap(ctx, WaterButton, 0)
}

// IsFoodPopupVisible reports whether the food picker is open.
func (p *BackyardDetail) IsFoodPopupVisible(ctx context.Context) (bool, error) {
	return p.UI.IsVisible(ctx, FoodPopupTitle, p.Waits.Medium)
}

// IsFoodPopupGone reports whether the food picker has closed.
func (p *BackyardDetail) IsFoodPopupGone(ctx context.Context) (bool, error) {
	return p.UI.IsGone(ctx, FoodPopupTitle, p.Waits.Medium)
}

// CloseFoodPopup taps Done on the food picker.
func (p *BackyardDetail) CloseFoodPopup(ctx context.Context) error {
	return p.UI.Tap(ctx, FoodPopupDone, 0)
}

// OpenFoodShop follows the shop link in the food picker.
func (p *BackyardDetail) OpenFoodShop(ctx context.Context) error {
	return p.UI.Tap(ctx, FoodPopupShop, 0)
}

// IsFoodShopVisible reports whether the food shop is showing.
func (p *BackyardDetail) IsFoodShopVisible(ctx context.Context) (bool, error) {
	return p.UI.IsVisible(ctx, FoodShopBack, p.Waits.Medium)
}

// BackFromFoodShop returns from the shop to the food picker.
func (p *BackyardDetail) BackFromFoodShop(ctx context.Context) error {
	return p.UI.Tap(ctx, FoodShopBack, 0)
}
