package core

// Bounds represents element position and size in points
type Bounds struct {
	X      int `json:"x" yaml:"x"`
	Y      int `json:"y" yaml:"y"`
	Width  int `json:"width" yaml:"width"`
	Height int `json:"height" yaml:"height"`
}

// ElementInfo is a serializable snapshot of a UI element's observable state
type ElementInfo struct {
	ID      string `json:"id,omitempty" yaml:"id,omitempty"`
	Type    string `json:"type,omitempty" yaml:"type,omitempty"`
	Name    string `json:"name,omitempty" yaml:"name,omitempty"`
	Label   string `json:"label,omitempty" yaml:"label,omitempty"`
	Value   string `json:"value,omitempty" yaml:"value,omitempty"`
	Bounds  Bounds `json:"bounds" yaml:"bounds"`
	Visible bool   `json:"visible" yaml:"visible"`
	Enabled bool   `json:"enabled" yaml:"enabled"`
}
