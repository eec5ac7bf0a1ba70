package main

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/jrj02/npc-dialogue/pkg/chat"
	"github.com/jrj02/npc-dialogue/pkg/conversation"
	"github.com/jrj02/npc-dialogue/pkg/npc"
)

const (
	PlaceHolderText = "Say something..."
	PlayerID        = "console-player"

	// pollInterval stands in for the game's frame rate; every tick drives
	// Controller.Poll once, like a real host loop would per frame.
	pollInterval = 50 * time.Millisecond
)

// ConsoleUI is the BubbleTea model that hosts the dialogue engine the way a
// game loop would: keys feed the controller, a tick message polls it.
// https://github.com/charmbracelet/bubbletea
type ConsoleUI struct {
	ctl      *conversation.Controller
	profiles map[string]*npc.Profile

	chatViewport viewport.Model
	metaViewport viewport.Model
	textarea     textarea.Model
	ready        bool
	width        int
	height       int
	err          error

	// log of finished dialog lines shown above the dialog box
	lines []string

	// last Update from Poll; nil before the first conversation
	last *conversation.Update

	// NPC selection state
	showNPCModal bool
	npcIDs       []string
	selectedNPC  int

	// battle banner state, shown after an escalated conversation ends
	showBattle   bool
	battleRoster []string

	showQuitModal bool
}

type pollTickMsg struct{}

var (
	chatPanelStyle = lipgloss.NewStyle().
			PaddingTop(2).
			PaddingBottom(1).
			PaddingLeft(3).
			PaddingRight(0)

	metaPanelStyle = lipgloss.NewStyle().
			PaddingTop(2).
			PaddingBottom(0).
			PaddingLeft(0).
			PaddingRight(2)

	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("205")). // pink
			Bold(true)

	npcStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("86")) // green

	userStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("39")) // teal

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")) // red

	thinkingStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214")) // yellow

	promptStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")) // dark grey

	dialogBoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("86")).
			Padding(0, 1)

	battleStyle = lipgloss.NewStyle().
			Border(lipgloss.DoubleBorder()).
			BorderForeground(lipgloss.Color("196")).
			Padding(1, 2).
			Foreground(lipgloss.Color("255"))

	modalStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("62")).
			Padding(1, 2).
			Background(lipgloss.Color("235")).
			Foreground(lipgloss.Color("255"))

	modalTitleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("205")).
			Bold(true).
			Align(lipgloss.Center)

	modalItemStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("255"))

	modalSelectedItemStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("0")).
				Background(lipgloss.Color("205")).
				Bold(true)

	separatorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")) // dark grey
)

func NewConsoleUI(ctl *conversation.Controller, specs map[string]*npc.ProfileSpec) ConsoleUI {
	ta := textarea.New()
	ta.Placeholder = PlaceHolderText
	ta.Prompt = promptStyle.Render(":: ")
	ta.CharLimit = 500
	ta.SetWidth(50)
	ta.SetHeight(2)
	ta.ShowLineNumbers = false

	chatVp := viewport.New(50, 20)
	chatVp.MouseWheelEnabled = true
	metaVp := viewport.New(20, 20)

	profiles := make(map[string]*npc.Profile, len(specs))
	ids := make([]string, 0, len(specs))
	for id, spec := range specs {
		p, err := npc.NewProfile(spec)
		if err != nil {
			continue
		}
		profiles[id] = p
		ids = append(ids, id)
	}
	sort.Strings(ids)

	return ConsoleUI{
		ctl:          ctl,
		profiles:     profiles,
		textarea:     ta,
		chatViewport: chatVp,
		metaViewport: metaVp,
		npcIDs:       ids,
		showNPCModal: true,
	}
}

func pollTick() tea.Cmd {
	return tea.Tick(pollInterval, func(time.Time) tea.Msg {
		return pollTickMsg{}
	})
}

func (m ConsoleUI) Init() tea.Cmd {
	return pollTick()
}

func (m ConsoleUI) currentProfile() *npc.Profile {
	if conv := m.ctl.Current(); conv != nil {
		return conv.Profile
	}
	return nil
}

func (m ConsoleUI) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	// The poll tick runs regardless of which surface is on top; stale
	// results must be drained even while a modal is showing.
	if _, ok := msg.(pollTickMsg); ok {
		return m.handlePoll()
	}

	if m.showQuitModal {
		return m.updateQuitModal(msg)
	}
	if m.showBattle {
		return m.updateBattleBanner(msg)
	}
	if m.showNPCModal {
		return m.updateNPCModal(msg)
	}

	var (
		tiCmd tea.Cmd
		vpCmd tea.Cmd
		mvCmd tea.Cmd
	)

	switch msg := msg.(type) {
	case tea.MouseMsg:
		m.chatViewport, vpCmd = m.chatViewport.Update(msg)
		return m, vpCmd

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resize()
		m.writeChatContent()
		m.writeMetadata()
		m.ready = true

	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC:
			m.showQuitModal = true
			return m, nil

		case tea.KeyEsc:
			// Walking away mid-conversation.
			if err := m.ctl.Cancel(); err == nil {
				m.lines = append(m.lines, promptStyle.Render("(you walk away)"))
			}
			return m.afterConversationEnd()

		case tea.KeyEnter:
			return m.handleEnter()
		}
	}

	m.textarea, tiCmd = m.textarea.Update(msg)
	m.chatViewport, vpCmd = m.chatViewport.Update(msg)
	m.metaViewport, mvCmd = m.metaViewport.Update(msg)
	return m, tea.Batch(tiCmd, vpCmd, mvCmd)
}

// handleEnter routes the confirm key by conversation state: submit input
// while collecting, advance pages while displaying.
func (m ConsoleUI) handleEnter() (tea.Model, tea.Cmd) {
	conv := m.ctl.Current()
	if conv == nil {
		return m, nil
	}

	switch conv.State() {
	case conversation.StateCollectingInput:
		input := strings.TrimSpace(m.textarea.Value())
		if input == "" {
			return m, nil
		}
		if strings.HasPrefix(input, "/") {
			return m.handleCommand(input)
		}

		m.textarea.Reset()
		u, err := m.ctl.SubmitPlayerText(input)
		if err != nil {
			m.err = err
			return m, nil
		}
		m.lines = append(m.lines, userStyle.Render("You: ")+input)
		m.last = u
		m.writeChatContent()
		return m, nil

	case conversation.StateDisplaying:
		u, err := m.ctl.AdvancePage()
		if err != nil {
			m.err = err
			return m, nil
		}
		m.last = u
		if u.Ended {
			return m.afterConversationEnd()
		}
		if u.AwaitingInput {
			m.recordNPCLine()
			m.textarea.Focus()
			m.writeChatContent()
			m.writeMetadata()
			return m, textarea.Blink
		}
		m.writeChatContent()
		return m, nil
	}
	return m, nil
}

// handlePoll is the once-per-frame heartbeat.
func (m ConsoleUI) handlePoll() (tea.Model, tea.Cmd) {
	prev := m.last
	u := m.ctl.Poll()
	m.last = u

	// Redraw when generation completes and the first page appears.
	if u != nil && (prev == nil || prev.Page != u.Page || prev.AwaitingInput != u.AwaitingInput) {
		m.writeChatContent()
		m.writeMetadata()
	}
	return m, pollTick()
}

func (m ConsoleUI) handleCommand(input string) (tea.Model, tea.Cmd) {
	cmd := strings.ToLower(strings.TrimSpace(input))
	m.textarea.Reset()

	switch cmd {
	case "/help":
		helpText := `
Commands:
• /help - Show this help
• /copy - Copy the transcript to the clipboard
• Esc - Walk away from the conversation
• Ctrl+C - Quit

How to talk:
• Type a line and press Enter
• Press Enter again to page through the reply
`
		m.lines = append(m.lines, titleStyle.Render("Help:")+helpText)
		m.writeChatContent()

	case "/copy":
		profile := m.currentProfile()
		if profile == nil {
			return m, nil
		}
		var b strings.Builder
		for _, turn := range profile.History.Snapshot() {
			speaker := "You"
			if turn.Speaker == chat.SpeakerNPC {
				speaker = profile.Spec.Name
			}
			fmt.Fprintf(&b, "%s: %s\n", speaker, turn.Text)
		}
		if err := clipboard.WriteAll(b.String()); err != nil {
			m.err = err
			return m, nil
		}
		m.lines = append(m.lines, promptStyle.Render("(transcript copied)"))
		m.writeChatContent()
	}

	return m, nil
}

// recordNPCLine appends the NPC's finished reply to the scrollback once the
// player has paged through it.
func (m *ConsoleUI) recordNPCLine() {
	profile := m.currentProfile()
	if profile == nil {
		return
	}
	snap := profile.History.Snapshot()
	if len(snap) == 0 {
		return
	}
	lastTurn := snap[len(snap)-1]
	if lastTurn.Speaker == chat.SpeakerNPC {
		m.lines = append(m.lines, npcStyle.Render(profile.Spec.Name+": ")+lastTurn.Text)
	}
}

// afterConversationEnd checks for a flagged battle and either shows the
// banner or returns to the NPC picker.
func (m ConsoleUI) afterConversationEnd() (tea.Model, tea.Cmd) {
	if m.ctl.ConsumePendingBattle() {
		m.prepareBattleBanner()
		m.showBattle = true
		return m, nil
	}
	m.lines = nil
	m.last = nil
	m.showNPCModal = true
	return m, nil
}

func (m *ConsoleUI) prepareBattleBanner() {
	m.battleRoster = nil
	profile := m.profiles[m.npcIDs[m.selectedNPC]]
	if profile == nil {
		return
	}
	actors, err := profile.BattleRoster()
	if err != nil {
		m.err = err
		return
	}
	for i, actor := range actors {
		spec := profile.Spec.Monsters[i]
		m.battleRoster = append(m.battleRoster,
			fmt.Sprintf("%s (Lv %d %s) HP %d AC %d",
				spec.Name, spec.Level, spec.Element, actor.MaxHP(), actor.AC()))
	}
}

func (m *ConsoleUI) resize() {
	chatWidth := int(float64(m.width)*0.75) - 4
	metaWidth := m.width - chatWidth - 6

	m.chatViewport.Width = chatWidth - 2
	m.chatViewport.Height = m.height - 11
	m.metaViewport.Width = metaWidth - 2
	m.metaViewport.Height = m.height - 4
	m.textarea.SetWidth(chatWidth - 4)
}

// writeChatContent rebuilds the scrollback viewport from finished lines.
func (m *ConsoleUI) writeChatContent() {
	chatWidth := m.chatViewport.Width - 6
	if chatWidth < 10 {
		chatWidth = 10
	}

	var content strings.Builder
	content.WriteString(titleStyle.Render("NPC DIALOGUE") + "\n\n")
	content.WriteString(separatorStyle.Render(strings.Repeat("─", chatWidth)) + "\n\n")
	for _, line := range m.lines {
		content.WriteString(line + "\n\n")
	}
	if m.err != nil {
		content.WriteString(errorStyle.Render("Error: "+m.err.Error()) + "\n\n")
		m.err = nil
	}
	m.chatViewport.SetContent(content.String())
	m.chatViewport.GotoBottom()
}

func (m *ConsoleUI) writeMetadata() {
	profile := m.currentProfile()
	var content strings.Builder
	content.WriteString(titleStyle.Render("NPC") + "\n\n")
	if profile != nil {
		content.WriteString("Name:\n" + profile.Spec.Name + "\n\n")
		content.WriteString("Mood:\n" + profile.Mood + "\n\n")
		content.WriteString(fmt.Sprintf("History:\n%d turns\n\n", profile.History.Len()))
		if len(profile.Spec.Monsters) > 0 {
			content.WriteString(fmt.Sprintf("Monsters:\n%d on roster\n\n", len(profile.Spec.Monsters)))
		}
	}
	content.WriteString("Commands:\n")
	content.WriteString("• Enter: Send / next page\n")
	content.WriteString("• Esc: Walk away\n")
	content.WriteString("• /copy: Copy transcript\n")
	content.WriteString("• Ctrl+C: Quit\n")
	m.metaViewport.SetContent(content.String())
}

func (m ConsoleUI) updateNPCModal(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resize()

	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			m.showQuitModal = true
			return m, nil
		case tea.KeyUp:
			if m.selectedNPC > 0 {
				m.selectedNPC--
			}
		case tea.KeyDown:
			if m.selectedNPC < len(m.npcIDs)-1 {
				m.selectedNPC++
			}
		case tea.KeyEnter:
			if len(m.npcIDs) == 0 {
				return m, nil
			}
			profile := m.profiles[m.npcIDs[m.selectedNPC]]
			if _, err := m.ctl.Start(profile, PlayerID); err != nil {
				m.err = err
				return m, nil
			}
			m.showNPCModal = false
			m.lines = nil
			m.writeChatContent()
			m.writeMetadata()
			m.textarea.Focus()
			return m, textarea.Blink
		}
	}
	return m, nil
}

func (m ConsoleUI) updateBattleBanner(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC:
			return m, tea.Quit
		default:
			// Any key dismisses; the battle itself belongs to the
			// combat engine, not this client.
			m.showBattle = false
			m.lines = nil
			m.last = nil
			m.showNPCModal = true
			return m, nil
		}
	}
	return m, nil
}

func (m ConsoleUI) updateQuitModal(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEnter:
			return m, tea.Quit
		default:
			switch msg.String() {
			case "y", "Y":
				return m, tea.Quit
			case "n", "N":
				m.showQuitModal = false
				if !m.showNPCModal {
					m.textarea.Focus()
					return m, textarea.Blink
				}
				return m, nil
			}
		}
	}
	return m, nil
}

func (m ConsoleUI) renderNPCModal() string {
	if m.width == 0 || m.height == 0 {
		return "Loading..."
	}

	var content strings.Builder
	content.WriteString(modalTitleStyle.Render("Talk to whom?"))
	content.WriteString("\n\n")

	if len(m.npcIDs) == 0 {
		content.WriteString(errorStyle.Render("No NPC profiles found."))
	}
	for i, id := range m.npcIDs {
		name := m.profiles[id].Spec.Name
		if i == m.selectedNPC {
			content.WriteString(modalSelectedItemStyle.Render(fmt.Sprintf("▶ %s", name)))
		} else {
			content.WriteString(modalItemStyle.Render(fmt.Sprintf("  %s", name)))
		}
		content.WriteString("\n")
	}

	content.WriteString("\n")
	content.WriteString(promptStyle.Render("Use ↑/↓ to navigate, Enter to talk, Esc to quit"))

	modal := modalStyle.Width(50).Render(content.String())
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, modal, lipgloss.WithWhitespaceChars(" "))
}

func (m ConsoleUI) renderBattleBanner() string {
	var content strings.Builder
	content.WriteString(modalTitleStyle.Render("⚔  BATTLE!  ⚔"))
	content.WriteString("\n\n")
	profile := m.profiles[m.npcIDs[m.selectedNPC]]
	if profile != nil {
		content.WriteString(fmt.Sprintf("%s has had enough of you.\n\n", profile.Spec.Name))
	}
	if len(m.battleRoster) > 0 {
		content.WriteString("Opposing roster:\n")
		for _, line := range m.battleRoster {
			content.WriteString("• " + line + "\n")
		}
	} else {
		content.WriteString("But nobody came. The roster is empty.\n")
	}
	content.WriteString("\n")
	content.WriteString(promptStyle.Render("Press any key to continue"))

	banner := battleStyle.Width(54).Render(content.String())
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, banner, lipgloss.WithWhitespaceChars(" "))
}

func (m ConsoleUI) renderQuitModal() string {
	if m.width == 0 || m.height == 0 {
		return "Loading..."
	}

	var content strings.Builder
	content.WriteString(modalTitleStyle.Render("Quit?"))
	content.WriteString("\n\n")
	content.WriteString("Leave the conversation and exit?")
	content.WriteString("\n\n")
	content.WriteString(promptStyle.Render("Press Y to quit, N to stay"))

	modal := modalStyle.Width(44).Render(content.String())
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, modal, lipgloss.WithWhitespaceChars(" "))
}

// renderDialogBox draws the in-world dialog box: thinking placeholder, a
// reply page with paging progress, or nothing.
func (m ConsoleUI) renderDialogBox(width int) string {
	u := m.last
	if u == nil || u.Page == "" {
		return ""
	}

	var body string
	if u.Page == conversation.ThinkingPlaceholder {
		body = thinkingStyle.Render(u.Page)
	} else {
		body = u.Page
		if u.PageCount > 1 {
			body += "\n" + promptStyle.Render(fmt.Sprintf("(%d/%d, Enter for more)", u.PageIndex+1, u.PageCount))
		}
	}
	return dialogBoxStyle.Width(width).Render(body)
}

func (m ConsoleUI) View() string {
	if m.showQuitModal {
		return m.renderQuitModal()
	}
	if m.showBattle {
		return m.renderBattleBanner()
	}
	if m.showNPCModal {
		return m.renderNPCModal()
	}
	if !m.ready {
		return "\n  Initializing..."
	}

	chatWidth := int(float64(m.width)*0.75) - 4
	metaWidth := m.width - chatWidth - 6

	chatPanel := chatPanelStyle.Width(chatWidth).Height(m.height - 3).Render(
		lipgloss.JoinVertical(lipgloss.Left,
			m.chatViewport.View(),
			"",
			m.renderDialogBox(chatWidth-6),
			separatorStyle.Render(strings.Repeat("─", chatWidth-4)),
			m.textarea.View(),
		),
	)

	metaPanel := metaPanelStyle.Width(metaWidth).Height(m.height - 2).Render(
		m.metaViewport.View(),
	)

	return lipgloss.JoinHorizontal(lipgloss.Top, chatPanel, metaPanel)
}
