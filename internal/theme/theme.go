// Package theme holds the session's display preference. It knows nothing
// about the controller.
package theme

import (
	"sync"

	"github.com/charmbracelet/lipgloss"
)

type Mode int

const (
	Dark Mode = iota
	Light
)

func (m Mode) String() string {
	if m == Light {
		return "light"
	}
	return "dark"
}

// Palette is the set of colors a view renders with.
type Palette struct {
	Ink       lipgloss.Color
	Dim       lipgloss.Color
	Accent    lipgloss.Color
	AccentAlt lipgloss.Color
	Success   lipgloss.Color
	Warn      lipgloss.Color
	Danger    lipgloss.Color
}

var (
	darkPalette = Palette{
		Ink:       lipgloss.Color("#E5E9F0"),
		Dim:       lipgloss.Color("#7A8291"),
		Accent:    lipgloss.Color("#88C0D0"),
		AccentAlt: lipgloss.Color("#81A1C1"),
		Success:   lipgloss.Color("#A3BE8C"),
		Warn:      lipgloss.Color("#EBCB8B"),
		Danger:    lipgloss.Color("#BF616A"),
	}
	lightPalette = Palette{
		Ink:       lipgloss.Color("#2E3440"),
		Dim:       lipgloss.Color("#6B7280"),
		Accent:    lipgloss.Color("#2563EB"),
		AccentAlt: lipgloss.Color("#5E81AC"),
		Success:   lipgloss.Color("#047857"),
		Warn:      lipgloss.Color("#B45309"),
		Danger:    lipgloss.Color("#B91C1C"),
	}
)

// Store is the session-scoped preference. It is never persisted.
type Store struct {
	mu   sync.RWMutex
	mode Mode
}

func NewStore(initial Mode) *Store {
	return &Store{mode: initial}
}

// Toggle flips between dark and light and returns the new mode.
func (s *Store) Toggle() Mode {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.mode == Dark {
		s.mode = Light
	} else {
		s.mode = Dark
	}
	return s.mode
}

func (s *Store) Current() Mode {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.mode
}

// Palette returns the colors of the current mode.
func (s *Store) Palette() Palette {
	if s.Current() == Light {
		return lightPalette
	}
	return darkPalette
}
