package tui

import (
	"context"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"dlcini/internal/model"
	"dlcini/internal/service"
)

// inputKind says what the text input is currently collecting.
type inputKind int

const (
	inputNone inputKind = iota
	inputFilter
	inputAddID
	inputAddName
	inputAppID
	inputDiscover
	inputSearch
	inputOpen
)

var inputPrompts = map[inputKind]string{
	inputFilter:   "Filter: ",
	inputAddID:    "DLC id: ",
	inputAddName:  "DLC name: ",
	inputAppID:    "appid: ",
	inputDiscover: "Discover DLCs of app id: ",
	inputSearch:   "Search store: ",
	inputOpen:     "Open file: ",
}

type panel int

const (
	panelEntries panel = iota
	panelResults
)

// AppModel holds the TUI state.
type AppModel struct {
	// Data
	Config  model.Config
	Entries []model.Entry // Config.Entries after the filter
	Results []model.Candidate
	Loading bool
	Err     error

	// UI State
	SelectedIdx int
	ResultIdx   int
	Focus       panel
	WindowSize  tea.WindowSizeMsg
	Status      string
	Busy        string // non-empty while a store lookup or write runs

	// Input State
	Input         inputKind
	InputBuffer   textinput.Model
	Filter        string
	PendingID     string // id typed in the first add step
	ConfirmRemove string // id waiting for y/n

	// Help overlay
	ShowHelp     bool
	HelpViewport viewport.Model

	// Components
	Spinner spinner.Model
	Help    help.Model
	keys    keyMap

	ctx    context.Context
	editor *service.Editor
	log    *zap.Logger
}

// InitialModel returns the initial state for editor.
func InitialModel(ctx context.Context, editor *service.Editor, log *zap.Logger) AppModel {
	if log == nil {
		log = zap.NewNop()
	}
	ti := textinput.New()
	ti.CharLimit = 256
	ti.Width = 40

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	return AppModel{
		Loading:     true,
		InputBuffer: ti,
		Spinner:     sp,
		Help:        help.New(),
		keys:        defaultKeys(),
		ctx:         ctx,
		editor:      editor,
		log:         log.Named("tui"),
	}
}

// selectedEntry returns the highlighted DLC, if any.
func (m AppModel) selectedEntry() (model.Entry, bool) {
	if m.SelectedIdx < 0 || m.SelectedIdx >= len(m.Entries) {
		return model.Entry{}, false
	}
	return m.Entries[m.SelectedIdx], true
}

// selectedResult returns the highlighted store result, if any.
func (m AppModel) selectedResult() (model.Candidate, bool) {
	if m.ResultIdx < 0 || m.ResultIdx >= len(m.Results) {
		return model.Candidate{}, false
	}
	return m.Results[m.ResultIdx], true
}

// applyFilter recomputes Entries and keeps the selection in range.
func (m *AppModel) applyFilter() {
	m.Entries = service.FilterEntries(m.Config.Entries, m.Filter)
	if m.SelectedIdx >= len(m.Entries) {
		m.SelectedIdx = len(m.Entries) - 1
	}
	if m.SelectedIdx < 0 {
		m.SelectedIdx = 0
	}
}
