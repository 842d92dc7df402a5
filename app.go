package psychescan

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/semaphore"
)

// ErrGenerationInFlight is returned when a second generation is started while one is running
var ErrGenerationInFlight = errors.New("a report is already being generated")

// ReportGenerator produces a report from a completed quiz
type ReportGenerator interface {
	GenerateReport(ctx context.Context, answers []Answer, tone Tone) (*PersonalityReport, error)
}

// App owns the session and drives it through the state machine
type App struct {
	generator ReportGenerator
	gate      *Gate
	log       *zap.Logger

	mu       sync.Mutex
	session  Session
	inflight *semaphore.Weighted
	// running is the generation currently executing and cancelRun stops it
	running   uint64
	cancelRun context.CancelFunc
	watchers  int
}

// NewApp creates an app on the intro screen. gate may be nil when
// authentication is handled elsewhere.
func NewApp(bank []Question, generator ReportGenerator, gate *Gate) *App {
	return &App{
		generator: generator,
		gate:      gate,
		log:       Logger().Named("app"),
		session:   NewSession(bank),
		inflight:  semaphore.NewWeighted(1),
	}
}

// Session returns the current session value
func (a *App) Session() Session {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.session
}

// Dispatch applies ev to the session. A rejected event leaves the session as it was.
func (a *App) Dispatch(ev Event) (Effect, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	next, eff, err := Transition(a.session, ev)
	if err != nil {
		a.log.Debug("event rejected", zap.String("screen", a.session.Screen.String()), zap.Error(err))
		return nil, err
	}
	a.log.Debug("event applied", zap.String("event", fmt.Sprintf("%T", ev)))
	if _, ok := ev.(SignOutEvent); ok && a.cancelRun != nil {
		a.log.Info("cancelling generation after sign out", zap.Uint64("generation", a.running))
		a.cancelRun()
	}
	if next.Screen != a.session.Screen {
		a.log.Debug("screen changed",
			zap.String("from", a.session.Screen.String()),
			zap.String("to", next.Screen.String()),
		)
	}
	a.session = next
	return eff, nil
}

// Run performs eff and returns the event reporting its outcome. It blocks
// until the work is done and never touches the session itself. A nil event
// means there was nothing to report.
func (a *App) Run(ctx context.Context, eff Effect) Event {
	switch e := eff.(type) {
	case GenerateReportEffect:
		return a.generate(ctx, e)
	case nil:
		return nil
	default:
		a.log.Warn("unknown effect", zap.String("type", fmt.Sprintf("%T", eff)))
		return nil
	}
}

func (a *App) generate(ctx context.Context, e GenerateReportEffect) Event {
	a.mu.Lock()
	if a.running == e.Generation {
		a.mu.Unlock()
		a.log.Warn("generation rejected", zap.Uint64("generation", e.Generation), zap.Error(ErrGenerationInFlight))
		return nil
	}
	if a.session.Screen != ScreenLoading || a.session.Generation != e.Generation {
		current := a.session.Generation
		a.mu.Unlock()
		a.log.Debug("stale generation skipped", zap.Uint64("generation", e.Generation), zap.Uint64("current", current))
		return nil
	}
	ctx, cancel := context.WithCancel(ctx)
	a.running, a.cancelRun = e.Generation, cancel
	a.mu.Unlock()

	defer func() {
		cancel()
		a.mu.Lock()
		if a.running == e.Generation {
			a.running, a.cancelRun = 0, nil
		}
		a.mu.Unlock()
	}()

	// A cancelled predecessor holds the slot until its backend call returns.
	if err := a.inflight.Acquire(ctx, 1); err != nil {
		return ReportFailedEvent{Err: err, Generation: e.Generation}
	}
	defer a.inflight.Release(1)

	report, err := a.generator.GenerateReport(ctx, e.Answers, e.Tone)
	if err != nil {
		a.log.Error("report generation failed", zap.Uint64("generation", e.Generation), zap.Error(err))
		return ReportFailedEvent{Err: err, Generation: e.Generation}
	}
	return ReportReadyEvent{Report: report, Generation: e.Generation}
}

// SelectTone picks tone, generates the report and applies the outcome
func (a *App) SelectTone(ctx context.Context, tone Tone) error {
	eff, err := a.Dispatch(ToneSelectedEvent{Tone: tone})
	if err != nil {
		return err
	}
	if ev := a.Run(ctx, eff); ev != nil {
		if _, err := a.Dispatch(ev); err != nil {
			return err
		}
	}
	return nil
}

// SignOut signs the user out of the gate and clears the session. When
// WatchIdentity is active the gate notification does the clearing.
func (a *App) SignOut() {
	if a.gate != nil {
		a.mu.Lock()
		watched := a.watchers > 0
		a.mu.Unlock()

		hadUser := a.gate.CurrentUser() != nil
		a.gate.SignOut()
		if watched && hadUser {
			return
		}
	}
	_, _ = a.Dispatch(SignOutEvent{})
}

// WatchIdentity clears the session whenever the gate loses its user
func (a *App) WatchIdentity() (unsubscribe func()) {
	if a.gate == nil {
		return func() {}
	}
	unsubscribe := a.gate.Subscribe(func(user *User) {
		if user == nil {
			_, _ = a.Dispatch(SignOutEvent{})
		}
	})

	a.mu.Lock()
	a.watchers++
	a.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			unsubscribe()
			a.mu.Lock()
			a.watchers--
			a.mu.Unlock()
		})
	}
}
