package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"relayio/host/mcu"
	"relayio/protocol"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Live view of outputs and rectifier lines",
	Long: `Poll the board's status line and show every output and input live.

Keys:
  c d e f g h  toggle relay C..H
  1 2 3        toggle RGB 1..3
  a b          toggle AC 1..2
  + / -        all on / all off
  q            quit`,
	Args: cobra.NoArgs,
	RunE: runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	m, err := connect()
	if err != nil {
		return err
	}
	defer m.Close()

	p := tea.NewProgram(newWatchModel(m, cfg.WatchInterval()), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("TUI error: %w", err)
	}
	return nil
}

//////////////////////////////////////////////////////////////
// Messages
//////////////////////////////////////////////////////////////

type watchTickMsg time.Time

// statusMsg carries the result of a poll or a command
type statusMsg struct {
	status protocol.Status
	action string
	err    error
}

//////////////////////////////////////////////////////////////
// Keys
//////////////////////////////////////////////////////////////

// channelKeys maps keys to protocol.Channels, in board order
var channelKeys = [len(protocol.Channels)]string{"c", "d", "e", "f", "g", "h", "1", "2", "3", "a", "b"}

type watchKeyMap struct {
	Relays     key.Binding
	Indicators key.Binding
	Contactors key.Binding
	AllOn      key.Binding
	AllOff     key.Binding
	Quit       key.Binding
}

func (k watchKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Relays, k.Indicators, k.Contactors, k.AllOn, k.AllOff, k.Quit}
}

func (k watchKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{k.ShortHelp()}
}

var watchKeys = watchKeyMap{
	Relays:     key.NewBinding(key.WithKeys(channelKeys[0:6]...), key.WithHelp("c-h", "relay")),
	Indicators: key.NewBinding(key.WithKeys(channelKeys[6:9]...), key.WithHelp("1-3", "rgb")),
	Contactors: key.NewBinding(key.WithKeys(channelKeys[9:11]...), key.WithHelp("a/b", "ac")),
	AllOn:      key.NewBinding(key.WithKeys("+"), key.WithHelp("+", "all on")),
	AllOff:     key.NewBinding(key.WithKeys("-"), key.WithHelp("-", "all off")),
	Quit:       key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
}

//////////////////////////////////////////////////////////////
// Model
//////////////////////////////////////////////////////////////

// watchModel is the Bubble Tea model for the live view
type watchModel struct {
	board    *mcu.MCU
	interval time.Duration
	help     help.Model

	status   protocol.Status
	polled   bool
	lastPoll time.Time
	action   string
	err      error
	quitting bool
}

func newWatchModel(board *mcu.MCU, interval time.Duration) watchModel {
	return watchModel{board: board, interval: interval, help: help.New()}
}

func (m watchModel) Init() tea.Cmd {
	return m.poll()
}

func (m watchModel) tick() tea.Cmd {
	return tea.Tick(m.interval, func(t time.Time) tea.Msg {
		return watchTickMsg(t)
	})
}

func (m watchModel) poll() tea.Cmd {
	board := m.board
	return func() tea.Msg {
		s, err := board.Status()
		return statusMsg{status: s, err: err}
	}
}

// toggle flips channel i based on the last status shown
func (m watchModel) toggle(i int) tea.Cmd {
	board, last := m.board, m.status
	ch := protocol.Channels[i]
	return func() tea.Msg {
		s, err := board.Toggle(ch, &last)
		return statusMsg{status: s, action: ch.Command(!ch.State(&last)), err: err}
	}
}

func (m watchModel) send(cmd string) tea.Cmd {
	board := m.board
	return func() tea.Msg {
		resp, err := board.Send(cmd)
		if err != nil {
			return statusMsg{action: cmd, err: err}
		}
		s, err := resp.Status()
		return statusMsg{status: s, action: cmd, err: err}
	}
}

func (m watchModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKeyMsg(msg)

	case tea.WindowSizeMsg:
		m.help.Width = msg.Width

	case watchTickMsg:
		return m, m.poll()

	case statusMsg:
		m.err = msg.err
		if msg.err == nil {
			m.status = msg.status
			m.polled = true
			m.lastPoll = time.Now()
		}
		if msg.action != "" {
			m.action = msg.action
		}
		// Commands are answered with a status line; only polls reschedule
		if msg.action == "" {
			return m, m.tick()
		}
	}

	return m, nil
}

func (m watchModel) handleKeyMsg(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, watchKeys.Quit):
		m.quitting = true
		return m, tea.Quit

	case key.Matches(msg, watchKeys.AllOn):
		return m, m.send(protocol.CommandAllOn)

	case key.Matches(msg, watchKeys.AllOff):
		return m, m.send(protocol.CommandAllOff)
	}

	k := msg.String()
	for i, ck := range channelKeys {
		if k == ck {
			return m, m.toggle(i)
		}
	}

	return m, nil
}

//////////////////////////////////////////////////////////////
// View
//////////////////////////////////////////////////////////////

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("12")).
			Background(lipgloss.Color("235")).
			Padding(0, 1)

	headerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241"))

	labelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("12")).
			Bold(true)

	onStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color("0")).
		Background(lipgloss.Color("10")).
		Padding(0, 1)

	offStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("245")).
			Background(lipgloss.Color("236")).
			Padding(0, 1)

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("9")).
			Bold(true)

	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("240")).
			Padding(0, 1)
)

func (m watchModel) View() string {
	if m.quitting {
		return ""
	}

	var s strings.Builder

	s.WriteString(titleStyle.Render("RELAYIO WATCH"))
	s.WriteString(" ")
	s.WriteString(headerStyle.Render(fmt.Sprintf("| %s 0x%02X | every %v", cfgBusKind(), cfgAddress(), m.interval)))
	s.WriteString("\n\n")

	if !m.polled {
		s.WriteString(headerStyle.Render("Waiting for first status..."))
		s.WriteString("\n")
	} else {
		s.WriteString(boxStyle.Render(m.renderOutputs()))
		s.WriteString("\n")
		s.WriteString(boxStyle.Render(m.renderRectifiers()))
		s.WriteString("\n")
		s.WriteString(headerStyle.Render(fmt.Sprintf("Last poll %s", m.lastPoll.Format("15:04:05"))))
		if m.action != "" {
			s.WriteString(headerStyle.Render(fmt.Sprintf("  last command %s", m.action)))
		}
		s.WriteString("\n")
	}

	if m.err != nil {
		s.WriteString(errorStyle.Render(m.err.Error()))
		s.WriteString("\n")
	}

	s.WriteString("\n")
	s.WriteString(m.help.View(watchKeys))
	return s.String()
}

func (m watchModel) renderOutputs() string {
	var rows [3][]string
	for i, ch := range protocol.Channels {
		label := fmt.Sprintf("%s [%s]", ch.Name, channelKeys[i])
		style := offStyle
		if ch.State(&m.status) {
			style = onStyle
		}
		rows[ch.Kind] = append(rows[ch.Kind], style.Render(label))
	}

	var s strings.Builder
	s.WriteString(labelStyle.Render("Outputs"))
	s.WriteString(fmt.Sprintf("  S:%02X\n", m.status.Relays))
	for _, row := range rows {
		s.WriteString(strings.Join(row, " "))
		s.WriteString("\n")
	}
	return strings.TrimRight(s.String(), "\n")
}

func (m watchModel) renderRectifiers() string {
	var cells []string
	for i, level := range m.status.Rectifiers {
		style := offStyle
		if level {
			style = onStyle
		}
		cells = append(cells, style.Render(fmt.Sprintf("%d", i+1)))
		if i%4 == 3 {
			cells = append(cells, " ")
		}
	}
	return labelStyle.Render("Rectifiers") + "\n" + strings.Join(cells, "")
}

func cfgBusKind() string {
	if cfg == nil {
		return ""
	}
	return cfg.Bus.Kind
}

func cfgAddress() uint16 {
	if cfg == nil {
		return 0
	}
	return cfg.Bus.Address
}
