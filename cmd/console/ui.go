package main

import (
	"fmt"
	"sort"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/wordwrap"

	"github.com/trailstate/trailstate/pkg/catalog"
	"github.com/trailstate/trailstate/pkg/state"
)

const PlaceHolderText = "Type a command, or help..."

// clipboardWriteAll is a package-level variable to allow mocking in tests.
var clipboardWriteAll = clipboard.WriteAll

// transcriptEntry is one block in the left panel. Entries keep their raw
// text so the transcript can be rewrapped when the window resizes.
type transcriptEntry struct {
	kind string // "command", "result", "error", "note"
	text string
}

// ConsoleUI is the BubbleTea model that runs the UI.
// https://github.com/charmbracelet/bubbletea
type ConsoleUI struct {
	config *ConsoleConfig
	doc    state.Document
	cat    *catalog.Catalog

	undo       []state.Document
	dirty      bool
	transcript []transcriptEntry

	transcriptViewport viewport.Model
	metaViewport       viewport.Model
	textarea           textarea.Model
	ready              bool
	width              int
	height             int

	// Quit confirmation state
	showQuitModal bool
}

var (
	transcriptPanelStyle = lipgloss.NewStyle().
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

	resultStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("86")) // green

	commandStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("39")) // teal

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")) // red

	noteStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214")) // yellow

	promptStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")) // dark grey

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
)

var separatorStyle = lipgloss.NewStyle().
	Foreground(lipgloss.Color("240")) // dark grey

func NewConsoleUI(cfg *ConsoleConfig, doc state.Document, cat *catalog.Catalog, fresh bool) ConsoleUI {
	ta := textarea.New()
	ta.Placeholder = PlaceHolderText
	ta.Focus()
	ta.Prompt = promptStyle.Render(":: ")
	ta.CharLimit = 1000
	ta.SetWidth(50)
	ta.SetHeight(3)
	ta.ShowLineNumbers = false

	transcriptVp := viewport.New(50, 20)
	transcriptVp.MouseWheelEnabled = true

	metaVp := viewport.New(20, 20)

	ui := ConsoleUI{
		config:             cfg,
		doc:                doc,
		cat:                cat,
		textarea:           ta,
		transcriptViewport: transcriptVp,
		metaViewport:       metaVp,
		ready:              false,
		dirty:              fresh,
	}
	if fresh {
		ui.transcript = append(ui.transcript, transcriptEntry{"note",
			fmt.Sprintf("Started a new session. It will be written to %s on save.", cfg.SessionFile)})
	} else {
		ui.transcript = append(ui.transcript, transcriptEntry{"note",
			fmt.Sprintf("Loaded session from %s.", cfg.SessionFile)})
	}
	return ui
}

// writeTranscript rebuilds the left panel content for the current
// viewport width.
func (m *ConsoleUI) writeTranscript() {
	width := m.transcriptViewport.Width - 6

	var content strings.Builder
	content.WriteString(titleStyle.Render("TRAILSTATE") + "\n\n")
	content.WriteString("One command, one change. Type help to see them all.\n\n")
	content.WriteString(separatorStyle.Render(strings.Repeat("─", max(width-6, 1))) + "\n\n")

	for _, entry := range m.transcript {
		wrapped := wordwrap.String(entry.text, max(width-6, 10))
		switch entry.kind {
		case "command":
			content.WriteString(commandStyle.Render(":: ") + wrapped + "\n\n")
		case "error":
			content.WriteString(errorStyle.Render(wrapped) + "\n\n")
		case "note":
			content.WriteString(noteStyle.Render(wrapped) + "\n\n")
		default:
			content.WriteString(resultStyle.Render(wrapped) + "\n\n")
		}
	}

	m.transcriptViewport.SetContent(content.String())
	m.transcriptViewport.GotoBottom()
}

// writeMetadata rebuilds the right panel: a live overview of the session.
func (m *ConsoleUI) writeMetadata() {
	var content strings.Builder
	content.WriteString(titleStyle.Render("SESSION") + "\n\n")

	file := m.config.SessionFile
	if m.dirty {
		file += " *"
	}
	content.WriteString("File:\n" + file + "\n\n")

	if name := sessionName(m.doc); name != "" {
		content.WriteString("Name:\n" + name + "\n\n")
	}

	content.WriteString("Surroundings:\n")
	content.WriteString("• weather: " + slotTitle(m.doc, "surroundings.weather") + "\n")
	content.WriteString("• location: " + slotTitle(m.doc, "surroundings.location") + "\n")
	content.WriteString(fmt.Sprintf("• missions: %d\n\n", sequenceLen(m.doc, "surroundings.missions")))

	content.WriteString("In play:\n")
	content.WriteString(fmt.Sprintf("• along_the_way: %d\n", sequenceLen(m.doc, "along_the_way")))
	for _, id := range rangerIDs(m.doc) {
		content.WriteString(fmt.Sprintf("• within_reach.%s: %d\n", id, sequenceLen(m.doc, "within_reach."+id)))
	}
	content.WriteString("\n")

	if ids := rangerIDs(m.doc); len(ids) > 0 {
		content.WriteString("Rangers:\n")
		for _, id := range ids {
			content.WriteString(fmt.Sprintf("• %s: hand %d, discard %d\n",
				id,
				sequenceLen(m.doc, "rangers."+id+".hand"),
				sequenceLen(m.doc, "rangers."+id+".discard_pile")))
		}
		content.WriteString("\n")
	}

	content.WriteString(fmt.Sprintf("Campaign log:\n%d entries\n\n", sequenceLen(m.doc, "campaign.log")))

	if len(m.undo) > 0 {
		content.WriteString(fmt.Sprintf("Undo:\n%d steps\n\n", len(m.undo)))
	}

	content.WriteString("Commands:\n")
	content.WriteString("• Ctrl+C: Quit\n")
	content.WriteString("• Enter: Run\n")
	content.WriteString("• help: Commands\n")
	content.WriteString("• save: Write file\n")

	m.metaViewport.SetContent(content.String())
}

func (m ConsoleUI) Init() tea.Cmd {
	return textarea.Blink
}

func (m ConsoleUI) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if m.showQuitModal {
		return m.updateQuitModal(msg)
	}

	var (
		tiCmd tea.Cmd
		vpCmd tea.Cmd
		mvCmd tea.Cmd
	)

	switch msg := msg.(type) {
	case tea.MouseMsg:
		// The viewport ignores events outside its bounds, so every
		// component may see the event.
		m.transcriptViewport, vpCmd = m.transcriptViewport.Update(msg)
		m.textarea, tiCmd = m.textarea.Update(msg)
		m.metaViewport, mvCmd = m.metaViewport.Update(msg)
		return m, tea.Batch(tiCmd, vpCmd, mvCmd)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

		transcriptWidth := int(float64(m.width)*0.75) - 4
		metaWidth := m.width - transcriptWidth - 6

		m.transcriptViewport.Width = transcriptWidth - 2
		m.transcriptViewport.Height = m.height - 7
		m.metaViewport.Width = metaWidth - 2
		m.metaViewport.Height = m.height - 4
		m.textarea.SetWidth(transcriptWidth - 4)

		m.ready = true
		m.writeTranscript()
		m.writeMetadata()

	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			m.showQuitModal = true
			return m, nil
		case tea.KeyEnter:
			input := strings.TrimSpace(m.textarea.Value())
			if input == "" {
				return m, nil
			}
			m.textarea.Reset()
			return m.runCommand(input)
		}
	}

	m.textarea, tiCmd = m.textarea.Update(msg)
	m.transcriptViewport, vpCmd = m.transcriptViewport.Update(msg)
	m.metaViewport, mvCmd = m.metaViewport.Update(msg)

	return m, tea.Batch(tiCmd, vpCmd, mvCmd)
}

// runCommand executes one line of input and appends the outcome to the
// transcript.
func (m ConsoleUI) runCommand(input string) (tea.Model, tea.Cmd) {
	m.transcript = append(m.transcript, transcriptEntry{"command", input})

	verb, args := splitVerb(input)
	switch verb {
	case "quit", "exit":
		m.showQuitModal = true
		m.writeTranscript()
		return m, nil

	case "help":
		m.transcript = append(m.transcript, transcriptEntry{"result", helpText})

	case "undo":
		if len(m.undo) == 0 {
			m.transcript = append(m.transcript, transcriptEntry{"error", "nothing to undo"})
		} else {
			m.doc = m.undo[len(m.undo)-1]
			m.undo = m.undo[:len(m.undo)-1]
			m.dirty = true
			m.transcript = append(m.transcript, transcriptEntry{"result", "rolled back one change"})
		}

	case "save":
		if err := state.Save(m.doc, m.config.SessionFile); err != nil {
			m.transcript = append(m.transcript, transcriptEntry{"error", err.Error()})
		} else {
			m.dirty = false
			m.transcript = append(m.transcript, transcriptEntry{"result", "saved to " + m.config.SessionFile})
		}

	case "copy":
		out, err := state.Snapshot(m.doc)
		if err == nil {
			err = clipboardWriteAll(out)
		}
		if err != nil {
			m.transcript = append(m.transcript, transcriptEntry{"error", "copy failed: " + err.Error()})
		} else {
			m.transcript = append(m.transcript, transcriptEntry{"result", "session snapshot copied to clipboard"})
		}

	case "show":
		view := any(map[string]any(m.doc))
		if len(args) > 0 {
			sub, err := m.doc.At(state.ParsePath(args[0]))
			if err != nil {
				m.transcript = append(m.transcript, transcriptEntry{"error", err.Error()})
				m.writeTranscript()
				return m, nil
			}
			view = sub
		}
		out, err := state.SnapshotValue(view)
		if err != nil {
			m.transcript = append(m.transcript, transcriptEntry{"error", err.Error()})
		} else {
			m.transcript = append(m.transcript, transcriptEntry{"result", strings.TrimRight(out, "\n")})
		}

	default:
		result, err := executeCommand(m.doc, m.cat, input)
		if err != nil {
			m.transcript = append(m.transcript, transcriptEntry{"error", err.Error()})
		} else {
			m.undo = append(m.undo, m.doc)
			m.doc = result.doc
			m.dirty = true
			m.transcript = append(m.transcript, transcriptEntry{"result", result.summary})
		}
	}

	m.writeTranscript()
	m.writeMetadata()
	return m, nil
}

const helpText = `Commands:
state <new-state> <card>      flip a card's state tag
tokens <name=delta>... <card> adjust token counts
settokens <name=n>... <card>  set token counts outright
move <zone> <card>            move a card between zones
discard <ranger> <card>       send a card to a discard pile
add <zone> <title>            bring a new card into play
log <entry>                   append to the campaign log
show [zone]                   YAML view of the session or one zone
undo / save / copy / quit

Cards are picked by title. When two cards share one, narrow with
id=card:xxxx or in=rangers.ranger_1.hand.`

func (m ConsoleUI) updateQuitModal(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC:
			return m, tea.Quit
		default:
			switch msg.String() {
			case "y", "Y":
				return m, tea.Quit
			case "n", "N":
				m.showQuitModal = false
				m.textarea.Focus()
				return m, textarea.Blink
			}
		}
	}

	return m, nil
}

func (m ConsoleUI) renderQuitModal() string {
	if m.width == 0 || m.height == 0 {
		return "Loading..."
	}

	var content strings.Builder
	content.WriteString(modalTitleStyle.Render("Quit?"))
	content.WriteString("\n\n")
	if m.dirty {
		content.WriteString(errorStyle.Render("There are unsaved changes."))
	} else {
		content.WriteString("The session is saved.")
	}
	content.WriteString("\n\n")
	content.WriteString(promptStyle.Render("Press Y to quit, N to go back"))

	modal := modalStyle.Width(50).Render(content.String())

	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, modal, lipgloss.WithWhitespaceChars(" "))
}

func (m ConsoleUI) View() string {
	if m.showQuitModal {
		return m.renderQuitModal()
	}

	if !m.ready {
		return "\n  Initializing..."
	}

	transcriptWidth := int(float64(m.width)*0.75) - 4
	metaWidth := m.width - transcriptWidth - 6

	transcriptPanel := transcriptPanelStyle.Width(transcriptWidth).Height(m.height - 3).Render(
		lipgloss.JoinVertical(lipgloss.Left,
			m.transcriptViewport.View(),
			"",
			separatorStyle.Render(strings.Repeat("─", max(transcriptWidth-4, 1))),
			m.textarea.View(),
		),
	)

	metaPanel := metaPanelStyle.Width(metaWidth).Height(m.height - 2).Render(
		m.metaViewport.View(),
	)

	return lipgloss.JoinHorizontal(lipgloss.Top, transcriptPanel, metaPanel)
}

// sessionName reads metadata.name when the document carries one.
func sessionName(doc state.Document) string {
	meta, ok := doc["metadata"].(map[string]any)
	if !ok {
		return ""
	}
	name, _ := meta["name"].(string)
	return name
}

// slotTitle shows what occupies a single-card slot.
func slotTitle(doc state.Document, path string) string {
	v, err := doc.At(state.ParsePath(path))
	if err != nil || v == nil {
		return "none"
	}
	if node, ok := v.(map[string]any); ok {
		if t := state.Card(node).Title(); t != "" {
			return t
		}
	}
	return "none"
}

func sequenceLen(doc state.Document, path string) int {
	v, err := doc.At(state.ParsePath(path))
	if err != nil {
		return 0
	}
	if s, ok := v.([]any); ok {
		return len(s)
	}
	return 0
}

// rangerIDs lists the seated rangers in stable order.
func rangerIDs(doc state.Document) []string {
	rangers, ok := doc["rangers"].(map[string]any)
	if !ok {
		return nil
	}
	ids := make([]string, 0, len(rangers))
	for id := range rangers {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
