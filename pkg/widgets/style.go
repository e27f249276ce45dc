package widgets

import "github.com/go-drift/webbridge/pkg/graphics"

// EdgeInsets are insets on the four sides of a box, in logical pixels.
type EdgeInsets struct {
	Top    float64 `yaml:"top,omitempty" json:"top,omitempty"`
	Right  float64 `yaml:"right,omitempty" json:"right,omitempty"`
	Bottom float64 `yaml:"bottom,omitempty" json:"bottom,omitempty"`
	Left   float64 `yaml:"left,omitempty" json:"left,omitempty"`
}

// IsZero reports whether all insets are zero.
func (e EdgeInsets) IsZero() bool {
	return e == EdgeInsets{}
}

// Map converts the insets to the wire form.
func (e EdgeInsets) Map() map[string]any {
	return map[string]any{"top": e.Top, "right": e.Right, "bottom": e.Bottom, "left": e.Left}
}

// Style describes the box a widget occupies. Nil pointer fields are unset
// and inherit from the style they are merged over.
type Style struct {
	Width           *float64        `yaml:"width,omitempty" json:"width,omitempty"`
	Height          *float64        `yaml:"height,omitempty" json:"height,omitempty"`
	Flex            *float64        `yaml:"flex,omitempty" json:"flex,omitempty"`
	Padding         EdgeInsets      `yaml:"padding,omitempty" json:"padding,omitempty"`
	BackgroundColor *graphics.Color `yaml:"backgroundColor,omitempty" json:"backgroundColor,omitempty"`

	// Collapsed hides the box without unmounting it.
	Collapsed bool `yaml:"-" json:"-"`
}

// Merge returns s with every field set in other applied on top.
func (s Style) Merge(other Style) Style {
	if other.Width != nil {
		s.Width = other.Width
	}
	if other.Height != nil {
		s.Height = other.Height
	}
	if other.Flex != nil {
		s.Flex = other.Flex
	}
	if !other.Padding.IsZero() {
		s.Padding = other.Padding
	}
	if other.BackgroundColor != nil {
		s.BackgroundColor = other.BackgroundColor
	}
	s.Collapsed = s.Collapsed || other.Collapsed
	return s
}

// Collapse returns s with zero height, no flex and Collapsed set.
func (s Style) Collapse() Style {
	s.Height = Float(0)
	s.Flex = Float(0)
	s.Collapsed = true
	return s
}

// Float returns a pointer to v, for populating Style fields.
func Float(v float64) *float64 {
	return &v
}

// ColorRef returns a pointer to c, for populating Style fields.
func ColorRef(c graphics.Color) *graphics.Color {
	return &c
}

// Bool returns a pointer to v, for populating optional settings.
func Bool(v bool) *bool {
	return &v
}
