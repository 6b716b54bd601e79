// Package tui is the terminal front end of the intake flow. It renders the
// session state and turns key presses into intake events; all decisions are
// left to the intake reducer.
package tui

import (
	"context"
	"time"

	"github.com/alkime/monshin/internal/capture"
	"github.com/alkime/monshin/internal/intake"
	"github.com/alkime/monshin/internal/tui/components/labeledspinner"
	"github.com/alkime/monshin/internal/tui/components/sizemeter"
	"github.com/alkime/monshin/internal/tui/components/stepper"
	"github.com/alkime/monshin/internal/tui/components/waveform"
	"github.com/alkime/monshin/pkg/uictl"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

const pollInterval = 100 * time.Millisecond

// Session is the part of intake.Session the UI needs.
type Session interface {
	Dispatch(ev intake.Event) error
	State() intake.State
	Updates() <-chan intake.State
}

// FileOpener loads a user-picked audio file.
type FileOpener interface {
	Open(path string) (capture.Audio, error)
}

// Config wires the model to a running session.
type Config struct {
	Session Session
	Files   FileOpener
	// Meter reports recording size against the upload cap. Optional.
	Meter uictl.CappedDial[int64]
	// Levels feeds the microphone waveform. Optional.
	Levels uictl.Levels[int16]
	// Cancel is called on quit to stop the session.
	Cancel context.CancelFunc
}

type (
	stateMsg    intake.State
	pollMsg     struct{}
	dispatchErr struct{ err error }
)

type model struct {
	config Config
	keys   KeyMap
	help   help.Model

	state   intake.State
	steps   stepper.Model
	spinner labeledspinner.Model
	meter   sizemeter.Model
	wave    waveform.Model
	form    patientForm
	editor  textarea.Model
	path    textinput.Model

	editing bool
	picking bool
	polling bool
	hint    string
	width   int
}

// New creates the intake TUI model.
func New(config Config) tea.Model {
	editor := textarea.New()
	editor.Placeholder = "症状を入力してください"
	editor.ShowLineNumbers = false
	editor.SetWidth(60)
	editor.SetHeight(6)

	path := textinput.New()
	path.Placeholder = "/path/to/audio.m4a"
	path.Prompt = "ファイル: "

	busy := labeledspinner.New(spinner.Dot, "AIが処理しています", "しばらくお待ちください")

	return &model{
		config:  config,
		keys:    DefaultKeyMap(),
		help:    help.New(),
		state:   config.Session.State(),
		steps:   stepper.New("患者情報", "症状入力", "確認", "送信完了", "医師用"),
		spinner: busy,
		meter:   sizemeter.New(config.Meter),
		wave:    waveform.New(config.Levels, 40, 2),
		form:    newPatientForm(),
		editor:  editor,
		path:    path,
		width:   80,
	}
}

func (m *model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Init(), m.waitForState())
}

func (m *model) waitForState() tea.Cmd {
	updates := m.config.Session.Updates()

	return func() tea.Msg {
		return stateMsg(<-updates)
	}
}

// dispatch hands events to the session in key-press order. The session
// queue only blocks when full, so this runs on the update loop.
func (m *model) dispatch(events ...intake.Event) {
	for _, ev := range events {
		if err := m.config.Session.Dispatch(ev); err != nil {
			m.hint = err.Error()
			return
		}
	}
}

func (m *model) Update(teaMsg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := teaMsg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.help.Width = msg.Width
		m.editor.SetWidth(min(max(msg.Width-4, 20), 100))

		return m, nil

	case stateMsg:
		return m, tea.Batch(m.applyState(intake.State(msg)), m.waitForState())

	case pollMsg:
		if !m.state.Capturing() {
			m.polling = false
			return m, nil
		}

		return m, tea.Tick(pollInterval, func(time.Time) tea.Msg { return pollMsg{} })

	case dispatchErr:
		m.hint = msg.err.Error()
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)

		return m, cmd

	case tea.KeyMsg:
		return m, m.handleKey(msg)
	}

	return m, nil
}

// applyState adopts a new session state and brings the widgets in line.
func (m *model) applyState(st intake.State) tea.Cmd {
	prev := m.state
	if st.UI.Step != prev.UI.Step {
		m.hint = ""
	}

	m.state = st
	m.steps.Current = int(st.UI.Step)
	m.form = m.form.sync(st.Patient)

	if st.UI.Step != intake.StepVoiceInput {
		m.editing = false
		m.picking = false
		m.editor.Blur()
		m.path.Blur()
	}

	// While editing, only text the user has not touched yet is replaced.
	seeded := !st.Review.EditedByUser && st.Review.EditableText != prev.Review.EditableText
	if (!m.editing || seeded) && m.editor.Value() != st.Review.EditableText {
		m.editor.SetValue(st.Review.EditableText)
	}

	if st.Capturing() && !m.polling {
		m.polling = true
		return tea.Tick(pollInterval, func(time.Time) tea.Msg { return pollMsg{} })
	}

	return nil
}

func (m *model) handleKey(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, m.keys.ForceQuit):
		if m.config.Cancel != nil {
			m.config.Cancel()
		}

		return tea.Quit

	case key.Matches(msg, m.keys.Reset):
		m.hint = ""
		m.editing = false
		m.picking = false
		m.editor.Blur()

		m.dispatch(intake.Reset{})

		return nil
	}

	switch m.state.UI.Step {
	case intake.StepPatientInfo:
		return m.patientInfoKey(msg)
	case intake.StepVoiceInput:
		return m.voiceInputKey(msg)
	case intake.StepConfirm:
		return m.confirmKey(msg)
	case intake.StepSubmitted:
		if key.Matches(msg, m.keys.Next) {
			m.dispatch(intake.TransitionRequest{To: intake.StepClinician})
		}
	case intake.StepClinician:
		if key.Matches(msg, m.keys.Diagnose) {
			m.dispatch(intake.RequestDiagnosis{})
		}
	}

	return nil
}

func (m *model) patientInfoKey(msg tea.KeyMsg) tea.Cmd {
	if key.Matches(msg, m.keys.Next) {
		if !m.state.Patient.Complete() {
			m.hint = "未入力の項目があります"
		}

		m.dispatch(intake.TransitionRequest{To: intake.StepVoiceInput})

		return nil
	}

	var (
		events []intake.Event
		cmd    tea.Cmd
	)

	m.form, events, cmd = m.form.update(msg, m.keys)
	if len(events) > 0 {
		m.hint = ""
	}

	m.dispatch(events...)

	return cmd
}

func (m *model) voiceInputKey(msg tea.KeyMsg) tea.Cmd {
	switch {
	case m.picking:
		return m.pickFileKey(msg)
	case m.editing:
		return m.editKey(msg)
	}

	switch {
	case key.Matches(msg, m.keys.Record):
		m.dispatch(intake.ToggleCapture{})

		return nil

	case key.Matches(msg, m.keys.OpenFile):
		if m.config.Files == nil || m.state.UI.Loading || m.state.Capturing() {
			return nil
		}

		m.picking = true
		m.path.SetValue("")

		return m.path.Focus()

	case key.Matches(msg, m.keys.Edit):
		if m.state.Capturing() {
			return nil
		}

		m.editing = true
		if m.editor.Value() != m.state.Review.EditableText {
			m.editor.SetValue(m.state.Review.EditableText)
		}

		return m.editor.Focus()

	case key.Matches(msg, m.keys.Summarize):
		m.dispatch(intake.RequestSummary{})

		return nil

	case key.Matches(msg, m.keys.Next):
		if !intake.CanAdvance(m.state) && !m.state.Capturing() {
			m.hint = "症状を入力するか録音してください"
		}

		m.dispatch(intake.TransitionRequest{To: intake.StepConfirm})

		return nil

	case key.Matches(msg, m.keys.Back):
		m.hint = ""
		m.dispatch(intake.TransitionRequest{To: intake.StepPatientInfo})

		return nil
	}

	return nil
}

func (m *model) editKey(msg tea.KeyMsg) tea.Cmd {
	if key.Matches(msg, m.keys.Done) {
		m.editing = false
		m.editor.Blur()

		return nil
	}

	before := m.editor.Value()

	var cmd tea.Cmd
	m.editor, cmd = m.editor.Update(msg)

	if m.editor.Value() == before {
		return cmd
	}

	m.hint = ""
	m.dispatch(intake.EditText{Text: m.editor.Value()})

	return cmd
}

func (m *model) pickFileKey(msg tea.KeyMsg) tea.Cmd {
	switch msg.Type {
	case tea.KeyEsc:
		m.picking = false
		m.path.Blur()

		return nil

	case tea.KeyEnter:
		m.picking = false
		m.path.Blur()

		files, path := m.config.Files, m.path.Value()
		sess := m.config.Session

		return func() tea.Msg {
			a, openErr := files.Open(path)
			if err := sess.Dispatch(intake.FileSelected{Audio: a, Err: openErr}); err != nil {
				return dispatchErr{err: err}
			}

			return nil
		}

	default:
		var cmd tea.Cmd
		m.path, cmd = m.path.Update(msg)

		return cmd
	}
}

func (m *model) confirmKey(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, m.keys.Next):
		m.dispatch(intake.TransitionRequest{To: intake.StepSubmitted})
	case key.Matches(msg, m.keys.Back):
		m.dispatch(intake.TransitionRequest{To: intake.StepVoiceInput})
	}

	return nil
}
