package ui

import "testing"

func TestSelectorConstructors(t *testing.T) {
	tests := []struct {
		sel  Selector
		want Strategy
	}{
		{ByAccessibilityID("Search"), StrategyAccessibilityID},
		{ByPredicate(`label == "Birds"`), StrategyPredicate},
		{ByClassChain("**/XCUIElementTypeCell"), StrategyClassChain},
		{ByClassName("XCUIElementTypeNavigationBar"), StrategyClassName},
		{ByXPath("//XCUIElementTypeButton"), StrategyXPath},
	}
	for _, tt := range tests {
		if tt.sel.Strategy != tt.want {
			t.Errorf("%v: strategy = %q, want %q", tt.sel, tt.sel.Strategy, tt.want)
		}
		if tt.sel.IsZero() {
			t.Errorf("%v reported zero", tt.sel)
		}
	}
	if !(Selector{}).IsZero() {
		t.Error("empty selector should be zero")
	}
}

func TestSelectorValueIsOpaque(t *testing.T) {
	raw := `name BEGINSWITH "BackyardGridItem_ZStack_" AND label != "Favorite"`
	sel := ByPredicate(raw)
	if sel.Value != raw {
		t.Errorf("selector value modified: %q", sel.Value)
	}
}

func TestParseStrategy(t *testing.T) {
	tests := []struct {
		in   string
		want Strategy
	}{
		{"a11y", StrategyAccessibilityID},
		{"accessibility-id", StrategyAccessibilityID},
		{"Accessibility ID", StrategyAccessibilityID},
		{"predicate", StrategyPredicate},
		{" class-chain ", StrategyClassChain},
		{"class", StrategyClassName},
		{"xpath", StrategyXPath},
		{"id", StrategyID},
	}
	for _, tt := range tests {
		got, err := ParseStrategy(tt.in)
		if err != nil {
			t.Errorf("ParseStrategy(%q) error: %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseStrategy(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}

	if _, err := ParseStrategy("css"); err == nil {
		t.Error("expected error for unknown strategy")
	}
}
