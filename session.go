package psychescan

import (
	"errors"
	"fmt"
)

// Screen is the top-level state of the application
type Screen int

const (
	ScreenIntro Screen = iota
	ScreenQuiz
	ScreenToneSelect
	ScreenLoading
	ScreenResult
	ScreenError
)

func (s Screen) String() string {
	switch s {
	case ScreenIntro:
		return "intro"
	case ScreenQuiz:
		return "quiz"
	case ScreenToneSelect:
		return "tone-select"
	case ScreenLoading:
		return "loading"
	case ScreenResult:
		return "result"
	case ScreenError:
		return "error"
	default:
		return fmt.Sprintf("screen(%d)", int(s))
	}
}

// GenerationFailedMessage is shown whenever a report could not be generated
const GenerationFailedMessage = "Our AI psychologist is currently overwhelmed. Please try again."

// ErrInvalidTransition is returned when an event does not apply to the current screen
var ErrInvalidTransition = errors.New("invalid transition")

// Session is the application state value. It is replaced, never mutated in
// place, by Transition.
type Session struct {
	Screen       Screen
	Answers      []Answer
	Tone         Tone
	Report       *PersonalityReport
	ErrorMessage string
	// Generation numbers tone selections. It survives resets so that a result
	// for an abandoned request never matches a later one.
	Generation uint64

	bank []Question
}

// NewSession creates a session on the intro screen for the given bank
func NewSession(bank []Question) Session {
	return Session{Screen: ScreenIntro, bank: bank}
}

// Bank returns the question bank the session validates answers against
func (s Session) Bank() []Question { return s.bank }

// HasTone reports whether a tone has been selected
func (s Session) HasTone() bool { return s.Tone != "" }

// Event is an input to the state machine
type Event interface {
	event()
}

type (
	// StartEvent leaves the intro screen
	StartEvent struct{}
	// QuizCompletedEvent carries the full answer sequence
	QuizCompletedEvent struct{ Answers []Answer }
	// ToneSelectedEvent picks the narrative tone and starts generation
	ToneSelectedEvent struct{ Tone Tone }
	// ReportReadyEvent delivers the report produced for Generation
	ReportReadyEvent struct {
		Report     *PersonalityReport
		Generation uint64
	}
	// ReportFailedEvent reports a failed generation; Err is for operators only
	ReportFailedEvent struct {
		Err        error
		Generation uint64
	}
	// ResetEvent returns to the intro screen from a result or error
	ResetEvent struct{}
	// SignOutEvent clears the session when the user leaves
	SignOutEvent struct{}
)

func (StartEvent) event()         {}
func (QuizCompletedEvent) event() {}
func (ToneSelectedEvent) event()  {}
func (ReportReadyEvent) event()   {}
func (ReportFailedEvent) event()  {}
func (ResetEvent) event()         {}
func (SignOutEvent) event()       {}

// Effect is work the caller must perform after a transition
type Effect interface {
	effect()
}

// GenerateReportEffect asks the caller to run report generation
type GenerateReportEffect struct {
	Answers    []Answer
	Tone       Tone
	Generation uint64
}

func (GenerateReportEffect) effect() {}

// Transition applies ev to s. It returns the new session and, for tone
// selection only, the effect to run. Events that do not apply to the current
// screen return s unchanged together with ErrInvalidTransition.
func Transition(s Session, ev Event) (Session, Effect, error) {
	switch e := ev.(type) {
	case SignOutEvent:
		return cleared(s), nil, nil

	case StartEvent:
		if s.Screen != ScreenIntro {
			break
		}
		s.Screen = ScreenQuiz
		return s, nil, nil

	case QuizCompletedEvent:
		if s.Screen != ScreenQuiz {
			break
		}
		if err := ValidateAnswers(s.bank, e.Answers); err != nil {
			return s, nil, fmt.Errorf("%w: %v", ErrInvalidTransition, err)
		}
		s.Answers = append([]Answer(nil), e.Answers...)
		s.Screen = ScreenToneSelect
		return s, nil, nil

	case ToneSelectedEvent:
		if s.Screen != ScreenToneSelect {
			break
		}
		if !e.Tone.Valid() {
			return s, nil, fmt.Errorf("%w: unknown tone %q", ErrInvalidTransition, e.Tone)
		}
		s.Tone = e.Tone
		s.Screen = ScreenLoading
		s.Generation++
		return s, GenerateReportEffect{
			Answers:    append([]Answer(nil), s.Answers...),
			Tone:       s.Tone,
			Generation: s.Generation,
		}, nil

	case ReportReadyEvent:
		if s.Screen != ScreenLoading {
			break
		}
		if e.Generation != s.Generation {
			return s, nil, staleResult(e.Generation, s.Generation)
		}
		if e.Report == nil {
			return s, nil, fmt.Errorf("%w: empty report", ErrInvalidTransition)
		}
		s.Report = e.Report
		s.Screen = ScreenResult
		return s, nil, nil

	case ReportFailedEvent:
		if s.Screen != ScreenLoading {
			break
		}
		if e.Generation != s.Generation {
			return s, nil, staleResult(e.Generation, s.Generation)
		}
		s.Report = nil
		s.ErrorMessage = GenerationFailedMessage
		s.Screen = ScreenError
		return s, nil, nil

	case ResetEvent:
		if s.Screen != ScreenResult && s.Screen != ScreenError {
			break
		}
		return cleared(s), nil, nil
	}

	return s, nil, fmt.Errorf("%w: %T on %s", ErrInvalidTransition, ev, s.Screen)
}

func staleResult(got, want uint64) error {
	return fmt.Errorf("%w: result of generation %d, waiting for %d", ErrInvalidTransition, got, want)
}

func cleared(s Session) Session {
	next := NewSession(s.bank)
	next.Generation = s.Generation
	return next
}
