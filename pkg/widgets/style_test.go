package widgets

import (
	"testing"

	"github.com/go-drift/webbridge/pkg/core"
	"github.com/go-drift/webbridge/pkg/graphics"
	"github.com/stretchr/testify/assert"
)

func TestStyle_Merge(t *testing.T) {
	base := Style{Flex: Float(1), BackgroundColor: ColorRef(graphics.ColorWhite)}

	merged := base.Merge(Style{Height: Float(200), Padding: EdgeInsets{Left: 4}})

	assert.Equal(t, 1.0, *merged.Flex)
	assert.Equal(t, 200.0, *merged.Height)
	assert.Equal(t, graphics.ColorWhite, *merged.BackgroundColor)
	assert.Equal(t, 4.0, merged.Padding.Left)
	assert.Nil(t, base.Height, "Merge does not mutate the receiver")
}

func TestStyle_Collapse(t *testing.T) {
	s := Style{Height: Float(300), Flex: Float(1)}.Collapse()

	assert.True(t, s.Collapsed)
	assert.Equal(t, 0.0, *s.Height)
	assert.Equal(t, 0.0, *s.Flex)
}

func TestView_SkipsNilChildren(t *testing.T) {
	v := View{Children: []core.Widget{nil, Text{Content: "a"}, nil}}

	assert.Len(t, v.ChildWidgets(), 1)
}
