// Package tui is the interactive terminal front-end. It runs the lifecycle
// orchestrator for each submitted message and renders the resulting display
// units in a scrolling conversation view.
package tui

import (
	"context"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"devscout/internal/chat"
	"devscout/internal/ui"
	"devscout/pkg/chattypes"
)

// unitMsg delivers one display unit from an in-flight turn.
type unitMsg ui.DisplayUnit

// turnDoneMsg marks the end of a turn, successful or not.
type turnDoneMsg struct {
	err error
}

// confirmWords are the inputs accepted as purchase confirmation while a
// purchase card is awaiting action.
var confirmWords = map[string]bool{"yes": true, "y": true, "buy": true, "confirm": true}

type model struct {
	orch     *chat.Orchestrator
	chat     *chattypes.Chat
	renderer *ui.Renderer

	input textinput.Model
	view  viewport.Model
	spin  spinner.Model
	ready bool
	busy  bool

	units  []ui.DisplayUnit
	events chan tea.Msg

	// pendingPurchase is the purchase awaiting user confirmation, if any.
	pendingPurchase *chattypes.Purchase

	statusStyle lipgloss.Style
	helpStyle   lipgloss.Style
}

// New builds the TUI model around an orchestrator and conversation state.
// Projected units from a loaded conversation seed the view, so resuming a
// persisted chat replays its history.
func New(orch *chat.Orchestrator, chatState *chattypes.Chat) tea.Model {
	input := textinput.New()
	input.Prompt = "> "
	input.Placeholder = "Ask about stocks, events, or developers"
	input.CharLimit = 2000
	input.Focus()

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	return model{
		orch:        orch,
		chat:        chatState,
		renderer:    ui.NewRenderer(),
		input:       input,
		spin:        sp,
		units:       ui.Project(chatState),
		statusStyle: lipgloss.NewStyle().Italic(true).Foreground(lipgloss.Color("214")),
		helpStyle:   lipgloss.NewStyle().Faint(true),
	}
}

// Run starts the interactive session and blocks until the user quits.
func Run(orch *chat.Orchestrator, chatState *chattypes.Chat) error {
	_, err := tea.NewProgram(New(orch, chatState), tea.WithAltScreen()).Run()
	return err
}

func (m model) Init() tea.Cmd {
	return textinput.Blink
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		headerHeight := 1
		footerHeight := 3
		if !m.ready {
			m.view = viewport.New(msg.Width, msg.Height-headerHeight-footerHeight)
			m.ready = true
		} else {
			m.view.Width = msg.Width
			m.view.Height = msg.Height - headerHeight - footerHeight
		}
		m.refreshView()
		return m, nil

	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			return m, tea.Quit
		case tea.KeyEnter:
			if m.busy {
				return m, nil
			}
			text := strings.TrimSpace(m.input.Value())
			if text == "" {
				return m, nil
			}
			m.input.Reset()
			return m.startTurn(text)
		}

	case unitMsg:
		m.applyUnit(ui.DisplayUnit(msg))
		m.refreshView()
		return m, listen(m.events)

	case turnDoneMsg:
		m.busy = false
		m.refreshView()
		return m, nil

	case spinner.TickMsg:
		if !m.busy {
			return m, nil
		}
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		return m, cmd
	}

	var inputCmd, viewCmd tea.Cmd
	m.input, inputCmd = m.input.Update(msg)
	m.view, viewCmd = m.view.Update(msg)
	return m, tea.Batch(inputCmd, viewCmd)
}

// startTurn launches the orchestrator in the background. Display units flow
// back through the events channel as the turn progresses.
func (m model) startTurn(text string) (tea.Model, tea.Cmd) {
	m.busy = true
	m.events = make(chan tea.Msg, 16)

	events := m.events
	orch := m.orch
	chatState := m.chat
	sink := func(unit ui.DisplayUnit) {
		events <- unitMsg(unit)
	}

	pending := m.pendingPurchase
	m.pendingPurchase = nil

	go func() {
		defer close(events)
		var err error
		if pending != nil && confirmWords[strings.ToLower(text)] {
			_, err = orch.ConfirmPurchase(context.Background(), chatState,
				pending.Symbol, pending.Price, pending.NumberOfShares, sink)
		} else {
			_, err = orch.SubmitUserMessage(context.Background(), chatState, text, sink)
		}
		events <- turnDoneMsg{err: err}
	}()

	return m, tea.Batch(m.spin.Tick, listen(events))
}

// listen waits for the next event from the in-flight turn.
func listen(events chan tea.Msg) tea.Cmd {
	return func() tea.Msg {
		return <-events
	}
}

// applyUnit inserts a display unit, replacing any earlier unit with the same
// id in place.
func (m *model) applyUnit(unit ui.DisplayUnit) {
	for i, existing := range m.units {
		if existing.ID == unit.ID {
			m.units[i] = unit
			m.trackPurchase(unit)
			return
		}
	}
	m.units = append(m.units, unit)
	m.trackPurchase(unit)
}

// trackPurchase remembers a settled purchase card awaiting confirmation so
// the next "yes" completes it.
func (m *model) trackPurchase(unit ui.DisplayUnit) {
	if unit.Kind != ui.KindPurchase || unit.Pending {
		return
	}
	purchase, err := ui.PurchasePayload(unit)
	if err != nil || purchase.Status != chattypes.PurchaseRequiresAction {
		return
	}
	m.pendingPurchase = &purchase
}

func (m *model) refreshView() {
	if !m.ready {
		return
	}
	blocks := make([]string, 0, len(m.units))
	for _, unit := range m.units {
		blocks = append(blocks, m.renderer.Render(unit))
	}
	m.view.SetContent(strings.Join(blocks, "\n\n"))
	m.view.GotoBottom()
}

func (m model) View() string {
	if !m.ready {
		return "starting..."
	}
	var footer string
	if m.busy {
		footer = m.spin.View() + " " + m.statusStyle.Render("thinking...")
	} else {
		footer = m.input.View()
	}
	help := m.helpStyle.Render("enter: send • esc: quit")
	if m.pendingPurchase != nil && !m.busy {
		help = m.helpStyle.Render("type \"yes\" to confirm the purchase • esc: quit")
	}
	return "devscout\n" + m.view.View() + "\n" + footer + "\n" + help
}
