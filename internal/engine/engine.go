// Package engine is the phase controller: the single owner of UI-visible
// session state. It sequences voice capture, tiered parsing, confirmation,
// persistence, and best-effort mirroring behind a narrow command API, and
// publishes read-only snapshots to subscribers.
//
// All state mutations are serialized: commands mutate under one mutex, and
// asynchronous completions (capture updates, pipeline results, progress
// ticks) re-acquire it and check a generation counter first, so a stale
// completion can never be applied after cancel, reset, or a mode switch.
package engine

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/habitcards/assistant/internal/capture"
	"github.com/habitcards/assistant/internal/factory"
	"github.com/habitcards/assistant/internal/mirror"
	"github.com/habitcards/assistant/internal/models"
	"github.com/habitcards/assistant/internal/parse"
	"go.uber.org/zap"
)

// Storer is the slice of the persistence gateway the engine drives:
// profile lookup and the staged-insert/atomic-commit cycle.
type Storer interface {
	Profile(ctx context.Context) (*models.UserProfile, error)
	SaveProfile(ctx context.Context, profile *models.UserProfile) error
	Insert(item models.Item) error
	Commit(ctx context.Context) error
	DiscardStaged()
}

var (
	// ErrInvalidPhase is returned when a command is not valid in the
	// current phase.
	ErrInvalidPhase = errors.New("command not valid in current phase")
	// ErrEmptyTranscript is returned when confirming voice input with
	// nothing captured.
	ErrEmptyTranscript = errors.New("transcript is empty")
)

// Snapshot is a read-only view of the controller state. Pending items are
// shared pointers; consumers must treat them as immutable.
type Snapshot struct {
	Phase             Phase
	Mode              models.Mode
	Transcript        string
	Parsing           bool
	Pending           []models.Item
	PendingTier       string
	Progress          float64
	SaveErr           error
	LastCompletedMode models.Mode
	Profile           *models.UserProfile
}

// Deps are the collaborators the engine orchestrates.
type Deps struct {
	Session  *capture.Session
	Resolver *parse.Resolver
	Store    Storer
	Mirror   *mirror.Gateway
	Progress ProgressStrategy
	Logger   *zap.Logger
}

// Engine is the phase controller.
type Engine struct {
	session  *capture.Session
	resolver *parse.Resolver
	store    Storer
	mirror   *mirror.Gateway
	progress ProgressStrategy
	logger   *zap.Logger

	baseCtx context.Context

	mu          sync.Mutex
	phase       Phase
	mode        models.Mode
	transcript  string
	parsing     bool
	pending     []models.Item
	pendingTier string
	progressVal float64
	saveErr     error
	lastDone    models.Mode
	profile     *models.UserProfile
	opGen       uint64
	subs        []chan Snapshot
}

// New creates an engine. Call Start before issuing commands.
func New(deps Deps) *Engine {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	progress := deps.Progress
	if progress == nil {
		progress = TimedProgress{}
	}
	return &Engine{
		session:  deps.Session,
		resolver: deps.Resolver,
		store:    deps.Store,
		mirror:   deps.Mirror,
		progress: progress,
		logger:   logger,
		phase:    PhaseOnboarding,
		mode:     models.ModeAlarm,
	}
}

// Start loads the user profile and enters the initial phase: Onboarding when
// no profile exists, Dashboard otherwise. ctx bounds the whole session and
// all asynchronous work the engine spawns.
func (e *Engine) Start(ctx context.Context) error {
	profile, err := e.store.Profile(ctx)
	if err != nil {
		return fmt.Errorf("engine start: %w", err)
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	e.baseCtx = ctx
	e.profile = profile
	if profile == nil {
		e.phase = PhaseOnboarding
	} else {
		e.phase = PhaseDashboard
	}
	e.logger.Info("engine_started", zap.String("phase", e.phase.String()))
	e.notifyLocked()
	return nil
}

// Subscribe returns a channel receiving state snapshots after each change.
// Delivery is latest-wins: a slow consumer sees the newest state, not every
// intermediate one.
func (e *Engine) Subscribe() <-chan Snapshot {
	ch := make(chan Snapshot, 1)
	e.mu.Lock()
	e.subs = append(e.subs, ch)
	e.mu.Unlock()
	return ch
}

// Snapshot returns the current state.
func (e *Engine) Snapshot() Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.snapshotLocked()
}

func (e *Engine) snapshotLocked() Snapshot {
	pending := make([]models.Item, len(e.pending))
	copy(pending, e.pending)
	return Snapshot{
		Phase:             e.phase,
		Mode:              e.mode,
		Transcript:        e.transcript,
		Parsing:           e.parsing,
		Pending:           pending,
		PendingTier:       e.pendingTier,
		Progress:          e.progressVal,
		SaveErr:           e.saveErr,
		LastCompletedMode: e.lastDone,
		Profile:           e.profile,
	}
}

func (e *Engine) notifyLocked() {
	snap := e.snapshotLocked()
	for _, ch := range e.subs {
		select {
		case ch <- snap:
		default:
			// Replace the stale snapshot.
			select {
			case <-ch:
			default:
			}
			select {
			case ch <- snap:
			default:
			}
		}
	}
}

// SubmitProfile completes onboarding and enters the dashboard.
func (e *Engine) SubmitProfile(ctx context.Context, name string, avatarIndex int) error {
	e.mu.Lock()
	if e.phase != PhaseOnboarding {
		e.mu.Unlock()
		return fmt.Errorf("%w: submit profile in %s", ErrInvalidPhase, e.phase)
	}
	e.mu.Unlock()

	profile := &models.UserProfile{
		Name:        name,
		AvatarIndex: avatarIndex,
		CreatedAt:   time.Now().UTC(),
	}
	if err := e.store.SaveProfile(ctx, profile); err != nil {
		return fmt.Errorf("submit profile: %w", err)
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	e.profile = profile
	e.phase = PhaseDashboard
	e.notifyLocked()
	return nil
}

// StartEntry begins a new capture cycle for the current mode: pending state
// and transcript are cleared, the phase moves to Voice, and capture is
// requested. A denied permission leaves the session in Voice without capture.
func (e *Engine) StartEntry(ctx context.Context) error {
	e.mu.Lock()
	if e.phase != PhaseDashboard {
		e.mu.Unlock()
		return fmt.Errorf("%w: start entry in %s", ErrInvalidPhase, e.phase)
	}
	e.clearPendingLocked()
	e.transcript = ""
	e.phase = PhaseVoice
	gen := e.bumpLocked()
	e.notifyLocked()
	e.mu.Unlock()

	e.startCapture(gen)
	return nil
}

// SwitchMode changes the active mode. It is only valid on the dashboard and
// in the Voice phase; once a pending entity exists the mode is pinned to it
// until the cycle commits or cancels. In Voice it restarts capture for the
// new mode; the old capture's transcript updates are discarded.
func (e *Engine) SwitchMode(ctx context.Context, mode models.Mode) error {
	if !mode.Valid() {
		return fmt.Errorf("unknown mode: %q", mode)
	}

	e.mu.Lock()
	if e.phase != PhaseDashboard && e.phase != PhaseVoice {
		e.mu.Unlock()
		return fmt.Errorf("%w: switch mode in %s", ErrInvalidPhase, e.phase)
	}
	e.mode = mode
	restart := e.phase == PhaseVoice
	var gen uint64
	if restart {
		e.transcript = ""
		e.parsing = false
		gen = e.bumpLocked()
	}
	e.notifyLocked()
	e.mu.Unlock()

	if restart {
		e.startCapture(gen)
	}
	return nil
}

// startCapture asks the capture session to start, forwarding transcript
// updates tagged with the generation that requested them. Runs capture
// startup (including the permission gate) off the caller's goroutine.
func (e *Engine) startCapture(gen uint64) {
	go func() {
		err := e.session.Start(e.baseCtx, func(text string) {
			e.mu.Lock()
			defer e.mu.Unlock()
			if e.opGen != gen || e.phase != PhaseVoice || e.parsing {
				return
			}
			e.transcript = text
			e.notifyLocked()
		})
		if err != nil {
			// Permission denial or device failure: stay in Voice, no
			// capture. The contract surfaces no hard failure here.
			e.logger.Warn("capture_not_started", zap.Error(err))
		}
	}()
}

// ConfirmVoice freezes the transcript and resolves it through the parsing
// pipeline. The snapshot exposes Parsing=true until the pipeline yields and
// the item factory produces the pending entity, then the phase is Preview.
func (e *Engine) ConfirmVoice(ctx context.Context) error {
	e.mu.Lock()
	if e.phase != PhaseVoice {
		e.mu.Unlock()
		return fmt.Errorf("%w: confirm voice in %s", ErrInvalidPhase, e.phase)
	}
	if e.transcript == "" {
		e.mu.Unlock()
		return ErrEmptyTranscript
	}
	e.session.Stop()
	e.parsing = true
	gen := e.bumpLocked()
	mode := e.mode
	transcript := e.transcript
	e.notifyLocked()
	e.mu.Unlock()

	go func() {
		result, tier := e.resolver.Resolve(e.baseCtx, mode, transcript)
		items := factory.Build(mode, result)

		e.mu.Lock()
		defer e.mu.Unlock()
		if e.opGen != gen || e.phase != PhaseVoice {
			// Cancelled or superseded while resolving; discard.
			e.logger.Debug("parse_result_discarded", zap.String("mode", mode.String()))
			return
		}
		e.parsing = false
		e.pending = items
		e.pendingTier = tier
		e.phase = PhasePreview
		e.notifyLocked()
	}()
	return nil
}

// Confirm accepts the previewed entity and runs the Creating progress
// sequence, auto-advancing to Saved on completion.
func (e *Engine) Confirm(ctx context.Context) error {
	e.mu.Lock()
	if e.phase != PhasePreview {
		e.mu.Unlock()
		return fmt.Errorf("%w: confirm in %s", ErrInvalidPhase, e.phase)
	}
	e.phase = PhaseCreating
	e.progressVal = 0
	gen := e.bumpLocked()
	e.notifyLocked()
	e.mu.Unlock()

	go func() {
		e.progress.Run(e.baseCtx, func(fraction float64) {
			e.mu.Lock()
			defer e.mu.Unlock()
			if e.opGen != gen || e.phase != PhaseCreating {
				return
			}
			e.progressVal = fraction
			e.notifyLocked()
		})

		e.mu.Lock()
		defer e.mu.Unlock()
		if e.opGen != gen || e.phase != PhaseCreating {
			return
		}
		e.phase = PhaseSaved
		e.notifyLocked()
	}()
	return nil
}

// Acknowledge commits the pending entity and returns to the dashboard. A
// failed commit keeps the phase at Saved with the pending entity intact so
// the user can retry explicitly; the error is exposed on the snapshot.
// Mirroring is fire-and-forget and cannot fail the flow.
func (e *Engine) Acknowledge(ctx context.Context) error {
	e.mu.Lock()
	if e.phase != PhaseSaved {
		e.mu.Unlock()
		return fmt.Errorf("%w: acknowledge in %s", ErrInvalidPhase, e.phase)
	}
	pending := make([]models.Item, len(e.pending))
	copy(pending, e.pending)
	mode := e.mode
	gen := e.opGen
	e.mu.Unlock()

	commit := func() error {
		for _, item := range pending {
			if err := e.store.Insert(item); err != nil {
				return err
			}
		}
		return e.store.Commit(ctx)
	}
	if err := commit(); err != nil {
		// Nothing became durable; drop the staged inserts so a retry
		// stages a clean set.
		e.store.DiscardStaged()
		e.logger.Error("commit_failed", zap.Error(err))
		e.mu.Lock()
		defer e.mu.Unlock()
		if e.opGen == gen && e.phase == PhaseSaved {
			e.saveErr = err
			e.notifyLocked()
		}
		return fmt.Errorf("acknowledge: %w", err)
	}

	// Durable regardless of what happened to the session meanwhile.
	for _, item := range pending {
		e.mirror.Mirror(e.baseCtx, item)
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.opGen != gen || e.phase != PhaseSaved {
		// Cancelled while the commit was in flight; the session has moved
		// on and owns the phase now.
		return nil
	}
	e.saveErr = nil
	e.lastDone = mode
	e.clearPendingLocked()
	e.transcript = ""
	e.phase = PhaseDashboard
	e.notifyLocked()
	return nil
}

// Cancel aborts the current cycle from any phase and returns to the
// dashboard: capture stops, any in-flight pipeline or progress completion is
// invalidated, and pending state is cleared. During onboarding it only
// clears state, since the dashboard is gated on a profile.
func (e *Engine) Cancel(ctx context.Context) {
	e.session.Cancel()

	e.mu.Lock()
	defer e.mu.Unlock()
	e.bumpLocked()
	e.clearPendingLocked()
	e.transcript = ""
	e.saveErr = nil
	if e.profile != nil {
		e.phase = PhaseDashboard
	} else {
		e.phase = PhaseOnboarding
	}
	e.notifyLocked()
}

// bumpLocked invalidates all in-flight asynchronous completions and returns
// the new current generation.
func (e *Engine) bumpLocked() uint64 {
	e.opGen++
	return e.opGen
}

func (e *Engine) clearPendingLocked() {
	e.pending = nil
	e.pendingTier = ""
	e.parsing = false
	e.progressVal = 0
}
