// Package tui implements the interactive terminal UI of the wizard.
package tui

import (
	"context"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/Iron-Ham/appcanvas/internal/event"
	"github.com/Iron-Ham/appcanvas/internal/export"
	"github.com/Iron-Ham/appcanvas/internal/logging"
	"github.com/Iron-Ham/appcanvas/internal/session"
	"github.com/Iron-Ham/appcanvas/internal/tui/keymap"
	"github.com/Iron-Ham/appcanvas/internal/tui/msg"
	"github.com/Iron-Ham/appcanvas/internal/tui/styles"
	"github.com/Iron-Ham/appcanvas/internal/tui/view"
	"github.com/Iron-Ham/appcanvas/internal/wizard"
)

// Toast messages
const (
	MsgSaved        = "Session saved successfully!"
	MsgLoaded       = "Session loaded successfully!"
	MsgSaveFailed   = "Failed to save session."
	MsgExportFailed = "Failed to export data."
	MsgNoAPIKey     = "API Key is not configured. Please set the API_KEY environment variable."
)

// Options configures the TUI.
type Options struct {
	Store        *session.Store
	Slot         string
	ExportDir    string
	ExportFormat export.Format

	Styles           *styles.Styles
	Keymap           *keymap.Keymap
	FeedbackDuration time.Duration
	ErrorDuration    time.Duration
	// MarkdownStyle is the glamour style of the inspector; empty detects
	// it from the terminal.
	MarkdownStyle string

	Bus    *event.Bus
	Logger *logging.Logger
}

func (o *Options) applyDefaults() {
	if o.Styles == nil {
		o.Styles = styles.New(nil)
	}
	if o.Keymap == nil {
		o.Keymap = keymap.DefaultKeymap()
	}
	if o.FeedbackDuration <= 0 {
		o.FeedbackDuration = 3 * time.Second
	}
	if o.ErrorDuration <= 0 {
		o.ErrorDuration = 5 * time.Second
	}
	if o.ExportFormat == "" {
		o.ExportFormat = export.FormatJSON
	}
	if o.Logger == nil {
		o.Logger = logging.NopLogger()
	}
}

// Model is the Bubble Tea model of the wizard TUI.
type Model struct {
	ctx  context.Context
	wiz  *wizard.Wizard
	opts Options

	mode     keymap.Mode
	showHelp bool

	ideaInput   textinput.Model
	searchInput textinput.Model
	spinner     spinner.Model
	tree        viewport.Model
	details     viewport.Model
	inspector   *view.Inspector

	// busy is set when a model call has been dispatched and cleared when
	// its result arrives.
	busy bool

	optionCursor int
	cursorID     string
	searchQuery  string

	toast    *view.Toast
	toastSeq int
	activity string

	events chan event.Event
	subID  string

	width  int
	height int
	ready  bool
}

// NewModel creates the model for w. A wizard that has already started, for
// example from a restored session, opens in normal mode.
func NewModel(ctx context.Context, w *wizard.Wizard, opts Options) Model {
	opts.applyDefaults()

	idea := textinput.New()
	idea.Placeholder = "e.g. A shared grocery list for families"
	idea.Prompt = "💡 "
	idea.CharLimit = 500

	search := textinput.New()
	search.Prompt = "/"
	search.Placeholder = "search nodes (r: for regex)"

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = opts.Styles.Primary

	m := Model{
		ctx:         ctx,
		wiz:         w,
		opts:        opts,
		mode:        keymap.ModeNormal,
		ideaInput:   idea,
		searchInput: search,
		spinner:     sp,
		tree:        viewport.New(0, 0),
		details:     viewport.New(0, 0),
		inspector:   view.NewInspector(40, opts.MarkdownStyle),
		cursorID:    "",
	}

	if opts.Bus != nil {
		m.events = make(chan event.Event, 32)
		events := m.events
		m.subID = opts.Bus.SubscribeAll(func(e event.Event) {
			select {
			case events <- e:
			default:
			}
		})
	}

	if !w.Started() {
		m.mode = keymap.ModeIdea
		m.ideaInput.Focus()
	} else if w.Clarification() != nil {
		m.mode = keymap.ModeClarify
	}
	m.refresh()
	return m
}

// Init starts the spinner, the event listener and any pending generation.
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{m.spinner.Tick}
	if m.mode == keymap.ModeIdea {
		cmds = append(cmds, textinput.Blink)
	}
	if m.events != nil {
		cmds = append(cmds, msg.WaitForEvent(m.events))
	}
	if cmd := m.advance(); cmd != nil {
		cmds = append(cmds, cmd)
	}
	return tea.Batch(cmds...)
}

// Mode returns the current input mode.
func (m Model) Mode() keymap.Mode { return m.mode }

// Toast returns the visible toast, or nil.
func (m Model) Toast() *view.Toast { return m.toast }

// Busy reports whether a model call is outstanding.
func (m Model) Busy() bool { return m.busy }

// close unsubscribes from the event bus.
func (m Model) close() {
	if m.opts.Bus != nil && m.subID != "" {
		m.opts.Bus.Unsubscribe(m.subID)
	}
}
