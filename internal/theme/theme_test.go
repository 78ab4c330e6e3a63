package theme

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestToggle(t *testing.T) {
	s := NewStore(Dark)
	assert.Equal(t, Dark, s.Current())
	assert.Equal(t, darkPalette, s.Palette())

	assert.Equal(t, Light, s.Toggle())
	assert.Equal(t, Light, s.Current())
	assert.Equal(t, lightPalette, s.Palette())

	assert.Equal(t, Dark, s.Toggle())
	assert.Equal(t, "dark", s.Current().String())
}

func TestStoresAreIndependent(t *testing.T) {
	a, b := NewStore(Dark), NewStore(Light)
	a.Toggle()
	assert.Equal(t, Light, a.Current())
	assert.Equal(t, Light, b.Current())
	assert.Equal(t, "light", b.Current().String())
}
