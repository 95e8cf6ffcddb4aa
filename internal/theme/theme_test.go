package theme

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFor(t *testing.T) {
	assert.Equal(t, Dark, For("dark"))
	assert.Equal(t, Light, For("light"))
	assert.Equal(t, Light, For("catppuccin-mocha"))
}

func TestStyles(t *testing.T) {
	s := Dark.Styles()
	assert.Equal(t, Dark.Marker, s.Marker.GetForeground())
	assert.Equal(t, Dark.Highlight, s.Highlighted.GetBackground())
	assert.True(t, s.Root.GetUnderline())
}
