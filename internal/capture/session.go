// Package capture owns the lifecycle of one voice-capture attempt. Speech
// recognition itself is an opaque capability behind the Recognizer interface;
// the session adds the lifecycle rules: one active capture at a time, a
// permission gate resolved once, and suppression of transcript updates that
// arrive after stop or cancel.
package capture

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"
)

// ErrPermissionDenied is returned when microphone/recognizer permission is
// not granted. The controller stays in the voice phase without capture.
var ErrPermissionDenied = errors.New("capture permission denied")

// Recognizer is the opaque speech-to-text capability. Start returns a channel
// of full best-effort transcripts-so-far: each delivery replaces the previous
// one, it is not an incremental delta. The channel closes when ctx is
// cancelled or the recognizer ends on its own.
type Recognizer interface {
	RequestPermission(ctx context.Context) error
	Start(ctx context.Context) (<-chan string, error)
}

// Session manages one voice-capture attempt at a time. Starting a new capture
// implicitly cancels any prior one.
type Session struct {
	rec    Recognizer
	logger *zap.Logger

	permOnce sync.Once
	permErr  error

	mu     sync.Mutex
	gen    uint64
	active bool
	cancel context.CancelFunc
}

// NewSession creates a capture session over the given recognizer.
func NewSession(rec Recognizer, logger *zap.Logger) *Session {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Session{rec: rec, logger: logger}
}

// Start begins audio capture and forwards each transcript update to
// onTranscript. Permission is requested once for the session's lifetime;
// capture does not start unless it resolves affirmatively.
func (s *Session) Start(ctx context.Context, onTranscript func(string)) error {
	s.permOnce.Do(func() {
		s.permErr = s.rec.RequestPermission(ctx)
	})
	if s.permErr != nil {
		return fmt.Errorf("capture start: %w", s.permErr)
	}

	s.mu.Lock()
	if s.cancel != nil {
		s.cancel()
	}
	s.gen++
	gen := s.gen
	capCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.active = true
	s.mu.Unlock()

	updates, err := s.rec.Start(capCtx)
	if err != nil {
		cancel()
		s.mu.Lock()
		if s.gen == gen {
			s.active = false
			s.cancel = nil
		}
		s.mu.Unlock()
		return fmt.Errorf("capture start: %w", err)
	}

	go s.forward(gen, updates, onTranscript)
	return nil
}

// forward delivers transcript updates while this capture generation is still
// the active one. Late deliveries after stop/cancel are drained and dropped;
// the generation check closes the race.
func (s *Session) forward(gen uint64, updates <-chan string, onTranscript func(string)) {
	for text := range updates {
		s.mu.Lock()
		current := s.active && s.gen == gen
		s.mu.Unlock()
		if !current {
			continue
		}
		onTranscript(text)
	}
	s.logger.Debug("capture_stream_closed", zap.Uint64("generation", gen))
}

// Stop ends capture and freezes the transcript: no update delivered after
// Stop returns is forwarded.
func (s *Session) Stop() {
	s.halt()
}

// Cancel stops capture and discards results. Identical to Stop at the session
// level; the controller clears its transcript separately.
func (s *Session) Cancel() {
	s.halt()
}

func (s *Session) halt() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	s.active = false
	s.gen++
}

// Active reports whether a capture is currently running.
func (s *Session) Active() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.active
}
