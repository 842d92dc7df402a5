// Package tui renders the PsycheScan screens in the terminal.
package tui

import (
	"context"
	"errors"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"go.uber.org/zap"

	"psychescan"
)

const defaultWrap = 80

// Options tunes the terminal UI
type Options struct {
	// Style is a glamour standard style name ("dark", "light", "notty", ...)
	Style string
}

type (
	// authResultMsg carries the outcome of a sign-in or sign-up attempt
	authResultMsg struct {
		user *psychescan.User
		err  error
	}

	// identityMsg forwards a gate notification into the program
	identityMsg struct {
		user *psychescan.User
	}

	// generationMsg carries the event produced by a finished generation
	generationMsg struct {
		event psychescan.Event
	}
)

// Model is the root bubbletea model. Session state lives in the App; the
// model only keeps what the widgets need between frames.
type Model struct {
	ctx  context.Context
	app  *psychescan.App
	gate *psychescan.Gate
	log  *zap.Logger

	user *psychescan.User

	signUp   bool
	email    textinput.Model
	password textinput.Model
	authErr  string
	authBusy bool

	quiz     *psychescan.QuizFlow
	freeText textinput.Model
	toneIdx  int

	spinner  spinner.Model
	renderer *glamour.TermRenderer
	style    string
	width    int
}

// New builds the root model. gate may be nil, in which case the sign-in
// form is skipped.
func New(ctx context.Context, app *psychescan.App, gate *psychescan.Gate, opts Options) Model {
	email := textinput.New()
	email.Placeholder = "you@example.com"
	email.Prompt = "Email    "
	email.CharLimit = 254
	email.Focus()

	password := textinput.New()
	password.Placeholder = "••••••••"
	password.Prompt = "Password "
	password.EchoMode = textinput.EchoPassword
	password.EchoCharacter = '•'

	freeText := textinput.New()
	freeText.Prompt = "> "
	freeText.CharLimit = 500

	style := opts.Style
	if style == "" {
		style = "dark"
	}

	m := Model{
		ctx:      ctx,
		app:      app,
		gate:     gate,
		log:      psychescan.Logger().Named("tui"),
		email:    email,
		password: password,
		freeText: freeText,
		spinner:  spinner.New(spinner.WithSpinner(spinner.Dot), spinner.WithStyle(selectedStyle)),
		style:    style,
		width:    defaultWrap,
	}
	if gate != nil {
		m.user = gate.CurrentUser()
	}
	m.renderer = newRenderer(style, defaultWrap)
	return m
}

// Run starts the program and blocks until the user quits. Gate
// notifications are forwarded into the program as messages.
func Run(ctx context.Context, app *psychescan.App, gate *psychescan.Gate, opts Options) error {
	p := tea.NewProgram(New(ctx, app, gate, opts), tea.WithAltScreen(), tea.WithContext(ctx))

	stopWatch := app.WatchIdentity()
	defer stopWatch()

	if gate != nil {
		unsubscribe := gate.Subscribe(func(user *psychescan.User) {
			// Notifications may arrive from inside Update; Send must not block it.
			go p.Send(identityMsg{user: user})
		})
		defer unsubscribe()
	}

	_, err := p.Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}

func newRenderer(style string, width int) *glamour.TermRenderer {
	r, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle(style),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		psychescan.Logger().Warn("markdown renderer unavailable", zap.String("style", style), zap.Error(err))
		return nil
	}
	return r
}

func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

func (m Model) authenticated() bool {
	return m.gate == nil || m.user != nil
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		wrap := msg.Width - 8
		if wrap < 20 {
			wrap = 20
		}
		m.renderer = newRenderer(m.style, wrap)
		return m, nil

	case identityMsg:
		return m.setUser(msg.user), nil

	case authResultMsg:
		m.authBusy = false
		if msg.err != nil {
			m.authErr = psychescan.AuthMessage(msg.err)
			m.log.Info("authentication failed", zap.Bool("sign_up", m.signUp), zap.Error(msg.err))
			return m, nil
		}
		return m.setUser(msg.user), nil

	case generationMsg:
		if msg.event != nil {
			if _, err := m.app.Dispatch(msg.event); err != nil {
				// The session moved on (sign-out) while the request was out.
				m.log.Debug("generation result dropped", zap.Error(err))
			}
		}
		return m, nil

	case spinner.TickMsg:
		if m.app.Session().Screen != psychescan.ScreenLoading {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			return m, tea.Quit
		}
		if !m.authenticated() {
			return m.updateAuth(msg)
		}
		if msg.Type == tea.KeyCtrlX && m.gate != nil {
			m.app.SignOut()
			return m.setUser(nil), textinput.Blink
		}
		return m.updateScreen(msg)
	}
	return m, nil
}

// setUser switches between the sign-in form and the app. Losing the user
// drops any quiz in progress; the App clears its own session.
func (m Model) setUser(user *psychescan.User) Model {
	m.user = user
	if user != nil {
		m.authErr = ""
		m.password.Reset()
		return m
	}
	m.quiz = nil
	m.toneIdx = 0
	m.freeText.Reset()
	m.password.Reset()
	m.password.Blur()
	m.email.Focus()
	return m
}

func (m Model) updateAuth(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyTab, tea.KeyShiftTab, tea.KeyUp, tea.KeyDown:
		if m.email.Focused() {
			m.email.Blur()
			m.password.Focus()
		} else {
			m.password.Blur()
			m.email.Focus()
		}
		return m, textinput.Blink

	case tea.KeyCtrlT:
		m.signUp = !m.signUp
		m.authErr = ""
		return m, nil

	case tea.KeyEnter:
		if m.authBusy {
			return m, nil
		}
		email := strings.TrimSpace(m.email.Value())
		password := m.password.Value()
		if email == "" || password == "" {
			m.authErr = "Enter your email and password."
			return m, nil
		}
		m.authBusy = true
		m.authErr = ""
		return m, authenticate(m.ctx, m.gate, m.signUp, email, password)
	}

	var cmd tea.Cmd
	if m.email.Focused() {
		m.email, cmd = m.email.Update(msg)
	} else {
		m.password, cmd = m.password.Update(msg)
	}
	return m, cmd
}

func authenticate(ctx context.Context, gate *psychescan.Gate, signUp bool, email, password string) tea.Cmd {
	return func() tea.Msg {
		var (
			user *psychescan.User
			err  error
		)
		if signUp {
			user, err = gate.SignUp(ctx, email, password)
		} else {
			user, err = gate.SignIn(ctx, email, password)
		}
		return authResultMsg{user: user, err: err}
	}
}

func (m Model) updateScreen(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch m.app.Session().Screen {
	case psychescan.ScreenIntro:
		switch msg.String() {
		case "enter", "s":
			if _, err := m.app.Dispatch(psychescan.StartEvent{}); err != nil {
				return m, nil
			}
			m.quiz = psychescan.NewQuizFlow(m.app.Session().Bank())
			return m, m.prepareQuestion()
		case "q":
			return m, tea.Quit
		}

	case psychescan.ScreenQuiz:
		return m.updateQuiz(msg)

	case psychescan.ScreenToneSelect:
		return m.updateTone(msg)

	case psychescan.ScreenResult, psychescan.ScreenError:
		switch msg.String() {
		case "enter", "r":
			_, _ = m.app.Dispatch(psychescan.ResetEvent{})
			return m, nil
		case "q":
			return m, tea.Quit
		}
	}
	return m, nil
}

func (m *Model) prepareQuestion() tea.Cmd {
	m.freeText.Reset()
	q := m.quiz.Current()
	if q == nil || q.Kind != psychescan.KindFreeText {
		m.freeText.Blur()
		return nil
	}
	m.freeText.Placeholder = q.Placeholder
	return m.freeText.Focus()
}

func (m Model) updateQuiz(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.quiz == nil {
		m.quiz = psychescan.NewQuizFlow(m.app.Session().Bank())
	}
	q := m.quiz.Current()
	if q == nil {
		return m, nil
	}

	var (
		answers []psychescan.Answer
		done    bool
		err     error
	)
	switch q.Kind {
	case psychescan.KindChoice:
		idx, ok := optionIndex(msg.String())
		if !ok || idx >= len(q.Options) {
			return m, nil
		}
		answers, done, err = m.quiz.Choose(q.Options[idx].ID)

	case psychescan.KindFreeText:
		if msg.Type != tea.KeyEnter {
			var cmd tea.Cmd
			m.freeText, cmd = m.freeText.Update(msg)
			return m, cmd
		}
		answers, done, err = m.quiz.Submit(m.freeText.Value())
		if errors.Is(err, psychescan.ErrEmptyAnswer) {
			return m, nil
		}
	}
	if err != nil {
		m.log.Debug("answer rejected", zap.Int("question", q.ID), zap.Error(err))
		return m, nil
	}

	if !done {
		return m, m.prepareQuestion()
	}
	if _, err := m.app.Dispatch(psychescan.QuizCompletedEvent{Answers: answers}); err != nil {
		m.log.Error("quiz completion rejected", zap.Error(err))
		return m, nil
	}
	m.quiz = nil
	m.toneIdx = 0
	m.freeText.Blur()
	return m, nil
}

// optionIndex maps "1".."9" and "a".."i" to a zero-based option index
func optionIndex(key string) (int, bool) {
	if len(key) != 1 {
		return 0, false
	}
	c := key[0]
	switch {
	case c >= '1' && c <= '9':
		return int(c - '1'), true
	case c >= 'a' && c <= 'i':
		return int(c - 'a'), true
	}
	return 0, false
}

func (m Model) updateTone(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	tones := psychescan.Tones()
	switch msg.String() {
	case "up", "k":
		if m.toneIdx > 0 {
			m.toneIdx--
		}
	case "down", "j":
		if m.toneIdx < len(tones)-1 {
			m.toneIdx++
		}
	case "enter":
		return m.selectTone(tones[m.toneIdx])
	default:
		if idx, ok := optionIndex(msg.String()); ok && idx < len(tones) {
			m.toneIdx = idx
			return m.selectTone(tones[idx])
		}
	}
	return m, nil
}

func (m Model) selectTone(tone psychescan.Tone) (tea.Model, tea.Cmd) {
	eff, err := m.app.Dispatch(psychescan.ToneSelectedEvent{Tone: tone})
	if err != nil {
		return m, nil
	}
	return m, tea.Batch(m.spinner.Tick, generate(m.ctx, m.app, eff))
}

func generate(ctx context.Context, app *psychescan.App, eff psychescan.Effect) tea.Cmd {
	return func() tea.Msg {
		return generationMsg{event: app.Run(ctx, eff)}
	}
}
