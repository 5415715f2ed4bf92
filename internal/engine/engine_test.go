package engine

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/habitcards/assistant/internal/capture"
	"github.com/habitcards/assistant/internal/mirror"
	"github.com/habitcards/assistant/internal/models"
	"github.com/habitcards/assistant/internal/parse"
	"github.com/habitcards/assistant/internal/queue"
	"github.com/habitcards/assistant/internal/store"
)

var _ Storer = (*store.Gateway)(nil)

func openTestStore(t *testing.T) *store.Gateway {
	t.Helper()
	path := filepath.Join(t.TempDir(), "assistant.db")
	gw, err := store.Open(store.DriverSQLite, path, nil)
	if err != nil {
		t.Fatalf("Open store: %v", err)
	}
	t.Cleanup(func() { _ = gw.Close() })
	return gw
}

func newTestEngine(t *testing.T, st Storer, rec capture.Recognizer, tiers ...parse.Tier) *Engine {
	t.Helper()
	if len(tiers) == 0 {
		tiers = []parse.Tier{parse.NewLocalTier()}
	}
	q := queue.NewMemoryQueue()
	t.Cleanup(func() { _ = q.Close() })
	return New(Deps{
		Session:  capture.NewSession(rec, nil),
		Resolver: parse.NewResolver(nil, tiers...),
		Store:    st,
		Mirror:   mirror.NewGateway(q, nil),
		Progress: ImmediateProgress{},
	})
}

func scripted(transcripts ...string) *capture.ScriptedRecognizer {
	return &capture.ScriptedRecognizer{Transcripts: transcripts, Interval: time.Millisecond}
}

func waitState(t *testing.T, eng *Engine, desc string, cond func(Snapshot) bool) Snapshot {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		snap := eng.Snapshot()
		if cond(snap) {
			return snap
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s; last snapshot: %+v", desc, eng.Snapshot())
	return Snapshot{}
}

func onboard(t *testing.T, ctx context.Context, eng *Engine) {
	t.Helper()
	if err := eng.Start(ctx); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	if eng.Snapshot().Phase == PhaseOnboarding {
		if err := eng.SubmitProfile(ctx, "Sam", 0); err != nil {
			t.Fatalf("SubmitProfile failed: %v", err)
		}
	}
}

func TestStartGatesOnProfile(t *testing.T) {
	t.Parallel()

	gw := openTestStore(t)
	ctx := context.Background()

	eng := newTestEngine(t, gw, scripted())
	if err := eng.Start(ctx); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	if got := eng.Snapshot().Phase; got != PhaseOnboarding {
		t.Fatalf("Expected onboarding on fresh store, got %s", got)
	}

	if err := eng.SubmitProfile(ctx, "Sam", 1); err != nil {
		t.Fatalf("SubmitProfile failed: %v", err)
	}
	snap := eng.Snapshot()
	if snap.Phase != PhaseDashboard {
		t.Errorf("Expected dashboard after onboarding, got %s", snap.Phase)
	}
	if snap.Profile == nil || snap.Profile.Name != "Sam" {
		t.Errorf("Expected profile on snapshot, got %+v", snap.Profile)
	}

	// A fresh engine over the same store skips onboarding.
	second := newTestEngine(t, gw, scripted())
	if err := second.Start(ctx); err != nil {
		t.Fatalf("second Start failed: %v", err)
	}
	if got := second.Snapshot().Phase; got != PhaseDashboard {
		t.Errorf("Expected dashboard on restart, got %s", got)
	}
}

func TestFullCaptureCycle(t *testing.T) {
	t.Parallel()

	gw := openTestStore(t)
	ctx := context.Background()

	eng := newTestEngine(t, gw, scripted("wake me", "wake me at 7 for a run"))
	onboard(t, ctx, eng)

	if err := eng.StartEntry(ctx); err != nil {
		t.Fatalf("StartEntry failed: %v", err)
	}
	waitState(t, eng, "transcript", func(s Snapshot) bool {
		return s.Transcript == "wake me at 7 for a run"
	})

	if err := eng.ConfirmVoice(ctx); err != nil {
		t.Fatalf("ConfirmVoice failed: %v", err)
	}
	snap := waitState(t, eng, "preview", func(s Snapshot) bool { return s.Phase == PhasePreview })
	if snap.Parsing {
		t.Error("Expected parsing flag cleared in preview")
	}
	if snap.PendingTier != parse.TierLocal {
		t.Errorf("Expected local tier, got %q", snap.PendingTier)
	}
	if len(snap.Pending) != 1 {
		t.Fatalf("Expected one pending item, got %d", len(snap.Pending))
	}
	alarm, ok := snap.Pending[0].(*models.Alarm)
	if !ok {
		t.Fatalf("Expected pending alarm, got %T", snap.Pending[0])
	}
	if alarm.Label == "" || alarm.Time == "" {
		t.Errorf("Expected fully populated alarm, got %+v", alarm)
	}

	if err := eng.Confirm(ctx); err != nil {
		t.Fatalf("Confirm failed: %v", err)
	}
	waitState(t, eng, "saved", func(s Snapshot) bool { return s.Phase == PhaseSaved })

	if err := eng.Acknowledge(ctx); err != nil {
		t.Fatalf("Acknowledge failed: %v", err)
	}
	snap = eng.Snapshot()
	if snap.Phase != PhaseDashboard {
		t.Errorf("Expected dashboard after acknowledge, got %s", snap.Phase)
	}
	if snap.LastCompletedMode != models.ModeAlarm {
		t.Errorf("Expected last completed mode alarm, got %s", snap.LastCompletedMode)
	}
	if len(snap.Pending) != 0 {
		t.Errorf("Expected pending cleared, got %d items", len(snap.Pending))
	}

	alarms, err := gw.Alarms(ctx)
	if err != nil {
		t.Fatalf("Alarms failed: %v", err)
	}
	if len(alarms) != 1 {
		t.Fatalf("Expected one committed alarm, got %d", len(alarms))
	}
	if alarms[0].ID != alarm.ID {
		t.Error("Expected the previewed alarm to be the committed one")
	}
}

func TestConfirmVoiceRequiresTranscript(t *testing.T) {
	t.Parallel()

	gw := openTestStore(t)
	ctx := context.Background()

	// Recognizer that never produces a transcript.
	eng := newTestEngine(t, gw, scripted())
	onboard(t, ctx, eng)

	if err := eng.StartEntry(ctx); err != nil {
		t.Fatalf("StartEntry failed: %v", err)
	}
	if err := eng.ConfirmVoice(ctx); !errors.Is(err, ErrEmptyTranscript) {
		t.Errorf("Expected ErrEmptyTranscript, got %v", err)
	}
	if got := eng.Snapshot().Phase; got != PhaseVoice {
		t.Errorf("Expected to stay in voice, got %s", got)
	}
}

func TestCommandsRejectWrongPhase(t *testing.T) {
	t.Parallel()

	gw := openTestStore(t)
	ctx := context.Background()

	eng := newTestEngine(t, gw, scripted())
	if err := eng.Start(ctx); err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	// Still onboarding: the capture cycle is unreachable.
	if err := eng.StartEntry(ctx); !errors.Is(err, ErrInvalidPhase) {
		t.Errorf("Expected ErrInvalidPhase for StartEntry, got %v", err)
	}
	if err := eng.Confirm(ctx); !errors.Is(err, ErrInvalidPhase) {
		t.Errorf("Expected ErrInvalidPhase for Confirm, got %v", err)
	}
	if err := eng.Acknowledge(ctx); !errors.Is(err, ErrInvalidPhase) {
		t.Errorf("Expected ErrInvalidPhase for Acknowledge, got %v", err)
	}

	if err := eng.SubmitProfile(ctx, "Sam", 0); err != nil {
		t.Fatalf("SubmitProfile failed: %v", err)
	}
	if err := eng.SubmitProfile(ctx, "Again", 0); !errors.Is(err, ErrInvalidPhase) {
		t.Errorf("Expected ErrInvalidPhase for second SubmitProfile, got %v", err)
	}
}

func TestCancelReturnsToDashboard(t *testing.T) {
	t.Parallel()

	gw := openTestStore(t)
	ctx := context.Background()

	eng := newTestEngine(t, gw, scripted("note to self"))
	onboard(t, ctx, eng)

	if err := eng.StartEntry(ctx); err != nil {
		t.Fatalf("StartEntry failed: %v", err)
	}
	waitState(t, eng, "transcript", func(s Snapshot) bool { return s.Transcript != "" })

	eng.Cancel(ctx)
	snap := eng.Snapshot()
	if snap.Phase != PhaseDashboard {
		t.Errorf("Expected dashboard after cancel, got %s", snap.Phase)
	}
	if snap.Transcript != "" {
		t.Errorf("Expected transcript cleared, got %q", snap.Transcript)
	}
	if len(snap.Pending) != 0 {
		t.Errorf("Expected pending cleared, got %d", len(snap.Pending))
	}

	n, err := gw.Count(ctx, models.CollectionAlarms)
	if err != nil {
		t.Fatalf("Count failed: %v", err)
	}
	if n != 0 {
		t.Errorf("Expected nothing persisted after cancel, got %d", n)
	}
}

func TestSwitchModeDuringVoiceRestartsCapture(t *testing.T) {
	t.Parallel()

	gw := openTestStore(t)
	ctx := context.Background()

	eng := newTestEngine(t, gw, scripted("alarm words", "more alarm words"))
	onboard(t, ctx, eng)

	if err := eng.StartEntry(ctx); err != nil {
		t.Fatalf("StartEntry failed: %v", err)
	}
	waitState(t, eng, "transcript", func(s Snapshot) bool { return s.Transcript != "" })

	if err := eng.SwitchMode(ctx, models.ModeMood); err != nil {
		t.Fatalf("SwitchMode failed: %v", err)
	}
	snap := eng.Snapshot()
	if snap.Mode != models.ModeMood {
		t.Errorf("Expected mood mode, got %s", snap.Mode)
	}
	if snap.Phase != PhaseVoice {
		t.Errorf("Expected to stay in voice, got %s", snap.Phase)
	}
	if snap.Transcript != "" {
		t.Errorf("Expected transcript cleared on mode switch, got %q", snap.Transcript)
	}

	if err := eng.SwitchMode(ctx, models.Mode("bogus")); err == nil {
		t.Error("Expected unknown mode rejected")
	}
}

func TestSwitchModePinnedOncePending(t *testing.T) {
	t.Parallel()

	gw := openTestStore(t)
	ctx := context.Background()

	eng := newTestEngine(t, gw, scripted("wake me at 7"))
	onboard(t, ctx, eng)

	if err := eng.StartEntry(ctx); err != nil {
		t.Fatalf("StartEntry failed: %v", err)
	}
	waitState(t, eng, "transcript", func(s Snapshot) bool { return s.Transcript != "" })
	if err := eng.ConfirmVoice(ctx); err != nil {
		t.Fatalf("ConfirmVoice failed: %v", err)
	}
	waitState(t, eng, "preview", func(s Snapshot) bool { return s.Phase == PhasePreview })

	// The pending entity is an alarm; the mode must not diverge from it.
	if err := eng.SwitchMode(ctx, models.ModeMood); !errors.Is(err, ErrInvalidPhase) {
		t.Errorf("Expected ErrInvalidPhase in preview, got %v", err)
	}
	if got := eng.Snapshot().Mode; got != models.ModeAlarm {
		t.Errorf("Expected mode unchanged, got %s", got)
	}

	if err := eng.Confirm(ctx); err != nil {
		t.Fatalf("Confirm failed: %v", err)
	}
	waitState(t, eng, "saved", func(s Snapshot) bool { return s.Phase == PhaseSaved })
	if err := eng.SwitchMode(ctx, models.ModeMood); !errors.Is(err, ErrInvalidPhase) {
		t.Errorf("Expected ErrInvalidPhase in saved, got %v", err)
	}

	if err := eng.Acknowledge(ctx); err != nil {
		t.Fatalf("Acknowledge failed: %v", err)
	}
	if got := eng.Snapshot().LastCompletedMode; got != models.ModeAlarm {
		t.Errorf("Expected last completed mode alarm, got %s", got)
	}
}

// blockingStore holds a commit open so a test can interleave commands with
// an in-flight acknowledge.
type blockingStore struct {
	*store.Gateway
	entered chan struct{}
	release chan struct{}
}

func (s *blockingStore) Commit(ctx context.Context) error {
	close(s.entered)
	<-s.release
	return s.Gateway.Commit(ctx)
}

func TestAcknowledgeYieldsToCancelDuringCommit(t *testing.T) {
	t.Parallel()

	gw := openTestStore(t)
	ctx := context.Background()

	bs := &blockingStore{
		Gateway: gw,
		entered: make(chan struct{}),
		release: make(chan struct{}),
	}
	eng := newTestEngine(t, bs, scripted("wake me at 7"))
	onboard(t, ctx, eng)

	if err := eng.StartEntry(ctx); err != nil {
		t.Fatalf("StartEntry failed: %v", err)
	}
	waitState(t, eng, "transcript", func(s Snapshot) bool { return s.Transcript != "" })
	if err := eng.ConfirmVoice(ctx); err != nil {
		t.Fatalf("ConfirmVoice failed: %v", err)
	}
	waitState(t, eng, "preview", func(s Snapshot) bool { return s.Phase == PhasePreview })
	if err := eng.Confirm(ctx); err != nil {
		t.Fatalf("Confirm failed: %v", err)
	}
	waitState(t, eng, "saved", func(s Snapshot) bool { return s.Phase == PhaseSaved })

	ackErr := make(chan error, 1)
	go func() { ackErr <- eng.Acknowledge(ctx) }()
	<-bs.entered

	// The user cancels and starts a fresh cycle while the commit is still
	// in flight; the acknowledge tail must not touch the new cycle.
	eng.Cancel(ctx)
	if err := eng.StartEntry(ctx); err != nil {
		t.Fatalf("StartEntry failed: %v", err)
	}
	close(bs.release)

	if err := <-ackErr; err != nil {
		t.Fatalf("Acknowledge failed: %v", err)
	}
	snap := eng.Snapshot()
	if snap.Phase != PhaseVoice {
		t.Errorf("Expected the new cycle to stay in voice, got %s", snap.Phase)
	}
	if snap.LastCompletedMode != "" {
		t.Errorf("Expected no completed mode recorded, got %s", snap.LastCompletedMode)
	}

	// The commit itself still went through.
	alarms, err := gw.Alarms(ctx)
	if err != nil {
		t.Fatalf("Alarms failed: %v", err)
	}
	if len(alarms) != 1 {
		t.Errorf("Expected the committed alarm kept, got %d", len(alarms))
	}
}

type slowTier struct {
	release chan struct{}
}

func (t *slowTier) Name() string { return "slow" }
func (t *slowTier) Parse(ctx context.Context, mode models.Mode, text string) (parse.Result, error) {
	select {
	case <-t.release:
	case <-ctx.Done():
	}
	return parse.Fixture(mode), nil
}

func TestCancelDiscardsInFlightParse(t *testing.T) {
	t.Parallel()

	gw := openTestStore(t)
	ctx := context.Background()

	slow := &slowTier{release: make(chan struct{})}
	eng := newTestEngine(t, gw, scripted("something"), slow, parse.NewLocalTier())
	onboard(t, ctx, eng)

	if err := eng.StartEntry(ctx); err != nil {
		t.Fatalf("StartEntry failed: %v", err)
	}
	waitState(t, eng, "transcript", func(s Snapshot) bool { return s.Transcript != "" })
	if err := eng.ConfirmVoice(ctx); err != nil {
		t.Fatalf("ConfirmVoice failed: %v", err)
	}

	// Cancel while the tier is still resolving, then let it finish.
	eng.Cancel(ctx)
	close(slow.release)

	time.Sleep(50 * time.Millisecond)
	snap := eng.Snapshot()
	if snap.Phase != PhaseDashboard {
		t.Errorf("Expected dashboard, got %s", snap.Phase)
	}
	if len(snap.Pending) != 0 {
		t.Errorf("Expected stale parse result discarded, got %d pending", len(snap.Pending))
	}
}

func TestAcknowledgeFailureKeepsPendingForRetry(t *testing.T) {
	t.Parallel()

	gw := openTestStore(t)
	ctx := context.Background()

	eng := newTestEngine(t, gw, scripted("wake me at 7"))
	onboard(t, ctx, eng)

	if err := eng.StartEntry(ctx); err != nil {
		t.Fatalf("StartEntry failed: %v", err)
	}
	waitState(t, eng, "transcript", func(s Snapshot) bool { return s.Transcript != "" })
	if err := eng.ConfirmVoice(ctx); err != nil {
		t.Fatalf("ConfirmVoice failed: %v", err)
	}
	waitState(t, eng, "preview", func(s Snapshot) bool { return s.Phase == PhasePreview })
	if err := eng.Confirm(ctx); err != nil {
		t.Fatalf("Confirm failed: %v", err)
	}
	waitState(t, eng, "saved", func(s Snapshot) bool { return s.Phase == PhaseSaved })

	// Closing the store makes the commit fail.
	if err := gw.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	if err := eng.Acknowledge(ctx); err == nil {
		t.Fatal("Expected acknowledge to fail with a closed store")
	}

	snap := eng.Snapshot()
	if snap.Phase != PhaseSaved {
		t.Errorf("Expected to stay in saved for retry, got %s", snap.Phase)
	}
	if snap.SaveErr == nil {
		t.Error("Expected save error surfaced on snapshot")
	}
	if len(snap.Pending) == 0 {
		t.Error("Expected pending entity kept for retry")
	}
	if gw.StagedCount() != 0 {
		t.Errorf("Expected staged set discarded after failed commit, got %d", gw.StagedCount())
	}
}
