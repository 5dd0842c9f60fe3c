package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"dlcini/internal/model"
	"dlcini/internal/service"
)

// MsgLoaded carries a freshly read document and an optional status line.
type MsgLoaded struct {
	Doc    service.Document
	Status string
}

// MsgCandidates carries the result of a store lookup.
type MsgCandidates struct {
	Items []model.Candidate
	Label string
}

// MsgFileChosen indicates that another file became current.
type MsgFileChosen string

// MsgError indicates an error occurred.
type MsgError error

// Update handles events.
func (m AppModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.WindowSize = msg
		m.Help.Width = msg.Width
		if m.ShowHelp {
			m.HelpViewport = newHelpViewport(msg)
		}
		return m, nil

	case spinner.TickMsg:
		if m.Busy == "" && !m.Loading {
			return m, nil
		}
		m.Spinner, cmd = m.Spinner.Update(msg)
		return m, cmd

	case MsgLoaded:
		m.Loading = false
		m.Busy = ""
		m.Err = nil
		m.Config = msg.Doc.Config()
		m.applyFilter()
		if msg.Status != "" {
			m.Status = msg.Status
		}
		return m, nil

	case MsgCandidates:
		m.Busy = ""
		m.Err = nil
		m.Results = msg.Items
		m.ResultIdx = 0
		m.Status = fmt.Sprintf("%d %s", len(msg.Items), msg.Label)
		if len(m.Results) > 0 {
			m.Focus = panelResults
		}
		return m, nil

	case MsgFileChosen:
		m.Results = nil
		m.Filter = ""
		m.SelectedIdx = 0
		m.Focus = panelEntries
		m.Loading = true
		return m, tea.Batch(m.loadCmd("opened "+string(msg)), m.Spinner.Tick)

	case tea.KeyMsg:
		switch {
		case m.ShowHelp:
			return m.updateHelp(msg)
		case m.ConfirmRemove != "":
			return m.updateConfirm(msg)
		case m.Input != inputNone:
			return m.updateInput(msg)
		}
		return m.updateNormal(msg)

	case MsgError:
		m.Busy = ""
		m.Loading = false
		m.Err = msg
		m.Status = ""
		m.log.Warn("operation failed", zap.Error(msg))
		return m, nil
	}

	return m, cmd
}

func (m AppModel) updateNormal(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	k := m.keys
	switch {
	case key.Matches(msg, k.Quit):
		return m, tea.Quit

	case msg.Type == tea.KeyEsc:
		switch {
		case m.Filter != "":
			m.Filter = ""
			m.applyFilter()
		case len(m.Results) > 0:
			m.Results = nil
			m.Focus = panelEntries
		}
		m.Err = nil
		m.Status = ""

	case key.Matches(msg, k.Help):
		m.ShowHelp = true
		m.HelpViewport = newHelpViewport(m.WindowSize)

	case key.Matches(msg, k.Up):
		if m.Focus == panelResults {
			if m.ResultIdx > 0 {
				m.ResultIdx--
			}
		} else if m.SelectedIdx > 0 {
			m.SelectedIdx--
		}

	case key.Matches(msg, k.Down):
		if m.Focus == panelResults {
			if m.ResultIdx < len(m.Results)-1 {
				m.ResultIdx++
			}
		} else if m.SelectedIdx < len(m.Entries)-1 {
			m.SelectedIdx++
		}

	case key.Matches(msg, k.Tab):
		if m.Focus == panelEntries && len(m.Results) > 0 {
			m.Focus = panelResults
		} else {
			m.Focus = panelEntries
		}

	case key.Matches(msg, k.Filter):
		return m.startInput(inputFilter, m.Filter)

	case key.Matches(msg, k.Add):
		return m.startInput(inputAddID, "")

	case key.Matches(msg, k.Remove):
		if e, ok := m.selectedEntry(); ok && m.Focus == panelEntries {
			m.ConfirmRemove = e.ID
		}

	case key.Matches(msg, k.AppID):
		return m.startInput(inputAppID, m.Config.AppID)

	case key.Matches(msg, k.Unlock):
		on := !m.Config.UnlockAll
		return m.busy("saving", m.editCmd(fmt.Sprintf("unlockall = %v", on), func(ctx context.Context) error {
			return m.editor.SetUnlockAll(ctx, on)
		}))

	case key.Matches(msg, k.Discover):
		return m.startInput(inputDiscover, m.Config.AppID)

	case key.Matches(msg, k.Search):
		return m.startInput(inputSearch, "")

	case key.Matches(msg, k.Pick):
		if m.Focus != panelResults {
			break
		}
		if c, ok := m.selectedResult(); ok {
			return m.busy("saving", m.editCmd("added "+c.AppID, func(ctx context.Context) error {
				_, err := m.editor.AddEntry(ctx, c.AppID, c.Name)
				return err
			}))
		}

	case key.Matches(msg, k.PickAll):
		if len(m.Results) == 0 {
			break
		}
		items := m.Results
		return m.busy("saving", m.editCmd(fmt.Sprintf("added %d DLCs", len(items)), func(ctx context.Context) error {
			_, err := m.editor.AddEntries(ctx, items)
			return err
		}))

	case key.Matches(msg, k.Open):
		return m.startInput(inputOpen, m.editor.Path())

	case key.Matches(msg, k.Reload):
		return m.busy("loading", m.loadCmd("reloaded"))
	}
	return m, nil
}

func (m AppModel) updateInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch msg.Type {
	case tea.KeyEsc:
		if m.Input == inputFilter {
			m.Filter = ""
			m.applyFilter()
		}
		m.PendingID = ""
		m.endInput()
		return m, nil
	case tea.KeyEnter:
		kind, value := m.Input, strings.TrimSpace(m.InputBuffer.Value())
		m.endInput()
		return m.submit(kind, value)
	}
	m.InputBuffer, cmd = m.InputBuffer.Update(msg)
	if m.Input == inputFilter {
		m.Filter = m.InputBuffer.Value()
		m.applyFilter()
	}
	return m, cmd
}

func (m AppModel) submit(kind inputKind, value string) (tea.Model, tea.Cmd) {
	switch kind {
	case inputFilter:
		m.Filter = value
		m.applyFilter()

	case inputAddID:
		if value == "" {
			m.Err = service.ErrEmptyID
			return m, nil
		}
		m.PendingID = value
		return m.startInput(inputAddName, "")

	case inputAddName:
		id := m.PendingID
		m.PendingID = ""
		return m.busy("saving", m.editCmd("added "+id, func(ctx context.Context) error {
			_, err := m.editor.AddEntry(ctx, id, value)
			return err
		}))

	case inputAppID:
		return m.busy("saving", m.editCmd("appid = "+value, func(ctx context.Context) error {
			return m.editor.SetPrimaryField(ctx, "appid", value)
		}))

	case inputDiscover:
		return m.busy("asking the store", m.findCmd("DLCs found for "+value, func(ctx context.Context) ([]model.Candidate, error) {
			return m.editor.DiscoverByAppID(ctx, value)
		}))

	case inputSearch:
		return m.busy("searching", m.findCmd("results for "+value, func(ctx context.Context) ([]model.Candidate, error) {
			return m.editor.SearchByName(ctx, value)
		}))

	case inputOpen:
		return m, m.chooseCmd(value)
	}
	return m, nil
}

func (m AppModel) updateConfirm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	id := m.ConfirmRemove
	m.ConfirmRemove = ""
	if msg.String() != "y" && msg.String() != "Y" {
		m.Status = "kept " + id
		return m, nil
	}
	return m.busy("saving", m.editCmd("removed "+id, func(ctx context.Context) error {
		_, err := m.editor.RemoveEntry(ctx, id)
		return err
	}))
}

func (m AppModel) updateHelp(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch msg.String() {
	case "?", "esc", "q":
		m.ShowHelp = false
		return m, nil
	case "ctrl+c":
		return m, tea.Quit
	}
	m.HelpViewport, cmd = m.HelpViewport.Update(msg)
	return m, cmd
}

func (m AppModel) startInput(kind inputKind, value string) (tea.Model, tea.Cmd) {
	m.Input = kind
	m.Err = nil
	m.InputBuffer.Prompt = inputPrompts[kind]
	m.InputBuffer.SetValue(value)
	m.InputBuffer.CursorEnd()
	return m, m.InputBuffer.Focus()
}

func (m *AppModel) endInput() {
	m.Input = inputNone
	m.InputBuffer.Blur()
	m.InputBuffer.SetValue("")
}

func (m AppModel) busy(label string, cmd tea.Cmd) (tea.Model, tea.Cmd) {
	m.Busy = label
	m.Err = nil
	return m, tea.Batch(cmd, m.Spinner.Tick)
}

func newHelpViewport(size tea.WindowSizeMsg) viewport.Model {
	w, h := helpDialogSize(size)
	vp := viewport.New(w-4, h-2)
	vp.SetContent(renderHelp(w - 6))
	return vp
}

// perform runs fn off the UI loop and turns its outcome into a message. A
// failure or panic becomes MsgError.
func perform[T any](fn func() (T, error), done func(T) tea.Msg) tea.Cmd {
	return func() tea.Msg {
		res := service.Do(fn)
		if !res.OK {
			return MsgError(errors.New(res.Error))
		}
		return done(res.Value)
	}
}

func (m AppModel) loadCmd(status string) tea.Cmd {
	editor, ctx := m.editor, m.ctx
	return perform(func() (service.Document, error) {
		return editor.Load(ctx)
	}, func(doc service.Document) tea.Msg {
		return MsgLoaded{Doc: doc, Status: status}
	})
}

// editCmd runs op and reloads the document afterwards.
func (m AppModel) editCmd(status string, op func(ctx context.Context) error) tea.Cmd {
	editor, ctx := m.editor, m.ctx
	return perform(func() (service.Document, error) {
		if err := op(ctx); err != nil {
			return service.Document{}, err
		}
		return editor.Load(ctx)
	}, func(doc service.Document) tea.Msg {
		return MsgLoaded{Doc: doc, Status: status}
	})
}

func (m AppModel) findCmd(label string, find func(ctx context.Context) ([]model.Candidate, error)) tea.Cmd {
	ctx := m.ctx
	return perform(func() ([]model.Candidate, error) {
		return find(ctx)
	}, func(items []model.Candidate) tea.Msg {
		return MsgCandidates{Items: items, Label: label}
	})
}

func (m AppModel) chooseCmd(path string) tea.Cmd {
	editor := m.editor
	return perform(func() (string, error) {
		return editor.ChooseFile(path)
	}, func(p string) tea.Msg {
		return MsgFileChosen(p)
	})
}
