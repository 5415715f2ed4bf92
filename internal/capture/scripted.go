package capture

import (
	"context"
	"time"
)

// ScriptedRecognizer plays back a fixed sequence of progressively fuller
// transcripts. It stands in for a real recognizer in tests and in the demo
// run command; the engine cannot tell the difference.
type ScriptedRecognizer struct {
	Transcripts []string
	Interval    time.Duration
	Denied      bool
}

// RequestPermission resolves the permission gate.
func (r *ScriptedRecognizer) RequestPermission(ctx context.Context) error {
	if r.Denied {
		return ErrPermissionDenied
	}
	return nil
}

// Start streams the scripted transcripts, then idles until ctx is cancelled
// the way a live recognizer would wait for more speech.
func (r *ScriptedRecognizer) Start(ctx context.Context) (<-chan string, error) {
	ch := make(chan string)
	go func() {
		defer close(ch)
		for _, text := range r.Transcripts {
			if r.Interval > 0 {
				select {
				case <-ctx.Done():
					return
				case <-time.After(r.Interval):
				}
			}
			select {
			case <-ctx.Done():
				return
			case ch <- text:
			}
		}
		<-ctx.Done()
	}()
	return ch, nil
}
