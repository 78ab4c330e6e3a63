package tui

import (
	"errors"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/digimosa/doc-redact/internal/controller"
	"github.com/digimosa/doc-redact/internal/theme"
)

// Model is the terminal front end of a controller. The files passed on the
// command line act as the drop target.
type Model struct {
	ctrl      *controller.Controller
	theme     *theme.Store
	files     []string
	cursor    int
	maxBytes  int64
	exportDir string
	notice    string
	width     int
	quitting  bool
}

type Options struct {
	Files     []string
	MaxBytes  int64
	ExportDir string
}

func NewModel(ctrl *controller.Controller, store *theme.Store, opts Options) Model {
	return Model{
		ctrl:      ctrl,
		theme:     store,
		files:     opts.Files,
		cursor:    -1,
		maxBytes:  opts.MaxBytes,
		exportDir: opts.ExportDir,
	}
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)
	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil
	default:
		return m, m.ctrl.Update(msg)
	}
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		m.quitting = true
		return m, tea.Quit
	case "n":
		return m.move(1), nil
	case "p":
		return m.move(-1), nil
	case "s":
		m.notice = ""
		return m, m.ctrl.StartProcessing()
	case " ":
		return m, m.ctrl.SkipAnimation()
	case "d":
		m.ctrl.ToggleDetails()
	case "e":
		m.notice = m.export()
	case "t":
		m.theme.Toggle()
	}
	return m, nil
}

// move selects the next or previous file. A rejected file is reported and
// the current selection stays.
func (m Model) move(delta int) Model {
	if len(m.files) == 0 {
		m.notice = "No files given"
		return m
	}
	m.cursor = (m.cursor + delta + len(m.files)) % len(m.files)
	path := m.files[m.cursor]

	file, err := controller.SelectPath(path, m.maxBytes)
	if err != nil {
		if errors.Is(err, controller.ErrSelectionRejected) {
			m.notice = fmt.Sprintf("Rejected %s: %v", path, err)
		} else {
			m.notice = fmt.Sprintf("Cannot open %s: %v", path, err)
		}
		return m
	}
	m.ctrl.SelectFile(file)
	m.notice = ""
	return m
}

func (m Model) export() string {
	artifact, ok := m.ctrl.ExportReport()
	if !ok {
		return ""
	}
	path, err := artifact.Save(m.exportDir)
	if err != nil {
		return fmt.Sprintf("Export failed: %v", err)
	}
	return "Report saved to " + path
}
