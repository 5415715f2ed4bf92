package parse

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/habitcards/assistant/internal/backend"
	"github.com/habitcards/assistant/internal/models"
)

type stubTier struct {
	name  string
	res   Result
	err   error
	skip  bool
	calls int
}

func (t *stubTier) Name() string { return t.name }
func (t *stubTier) Skip() bool   { return t.skip }
func (t *stubTier) Parse(ctx context.Context, mode models.Mode, text string) (Result, error) {
	t.calls++
	return t.res, t.err
}

func TestResolverFirstSuccessWins(t *testing.T) {
	t.Parallel()

	first := &stubTier{name: "first", res: AlarmResult{Label: "Run"}}
	second := &stubTier{name: "second", res: AlarmResult{Label: "Other"}}
	r := NewResolver(nil, first, second)

	res, tier := r.Resolve(context.Background(), models.ModeAlarm, "wake me up")
	if tier != "first" {
		t.Errorf("Expected tier 'first', got %q", tier)
	}
	if got := res.(AlarmResult).Label; got != "Run" {
		t.Errorf("Expected label 'Run', got %q", got)
	}
	if second.calls != 0 {
		t.Errorf("Expected second tier untouched, got %d calls", second.calls)
	}
}

func TestResolverFallsThroughOnFailure(t *testing.T) {
	t.Parallel()

	first := &stubTier{name: "first", err: errors.New("boom")}
	r := NewResolver(nil, first, NewLocalTier())

	res, tier := r.Resolve(context.Background(), models.ModeMood, "feeling calm")
	if tier != TierLocal {
		t.Errorf("Expected local tier, got %q", tier)
	}
	if res.ResultMode() != models.ModeMood {
		t.Errorf("Expected mood result, got %s", res.ResultMode())
	}
	if first.calls != 1 {
		t.Errorf("Expected first tier attempted once, got %d", first.calls)
	}
}

func TestResolverSkipsOptedOutTier(t *testing.T) {
	t.Parallel()

	skipped := &stubTier{name: "skipped", skip: true}
	r := NewResolver(nil, skipped, NewLocalTier())

	_, tier := r.Resolve(context.Background(), models.ModeInbox, "three emails")
	if tier != TierLocal {
		t.Errorf("Expected local tier, got %q", tier)
	}
	if skipped.calls != 0 {
		t.Errorf("Expected skipped tier never called, got %d calls", skipped.calls)
	}
}

func TestResolverSkipsUnconfiguredBackend(t *testing.T) {
	t.Parallel()

	client := backend.NewClient("", "", 0, nil)
	r := NewResolver(nil, NewBackendTier(client), NewLocalTier())

	_, tier := r.Resolve(context.Background(), models.ModeAlarm, "wake me at 7")
	if tier != TierLocal {
		t.Errorf("Expected local tier for unconfigured backend, got %q", tier)
	}
}

func TestResolverBackendSuccess(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/parse" {
			t.Errorf("Unexpected path %q", r.URL.Path)
		}
		if r.Header.Get("X-API-KEY") != "secret" {
			t.Errorf("Expected API key header, got %q", r.Header.Get("X-API-KEY"))
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"label":"Gym","time":"06:30","icon":"dumbbell","routine":[]}`))
	}))
	defer srv.Close()

	client := backend.NewClient(srv.URL, "secret", 0, nil)
	r := NewResolver(nil, NewBackendTier(client), NewLocalTier())

	res, tier := r.Resolve(context.Background(), models.ModeAlarm, "gym at six thirty")
	if tier != TierBackend {
		t.Fatalf("Expected backend tier, got %q", tier)
	}
	alarm := res.(AlarmResult)
	if alarm.Label != "Gym" || alarm.Time != "06:30" {
		t.Errorf("Unexpected alarm result: %+v", alarm)
	}
}

func TestResolverBackendFieldDefectsDoNotFallThrough(t *testing.T) {
	t.Parallel()

	// An out-of-range level is a field defect absorbed downstream, not a
	// tier failure: the user's real data must win over the local fixture.
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"mood":"Ecstatic","level":1.5,"trigger":"promotion"}`))
	}))
	defer srv.Close()

	client := backend.NewClient(srv.URL, "secret", 0, nil)
	r := NewResolver(nil, NewBackendTier(client), NewLocalTier())

	res, tier := r.Resolve(context.Background(), models.ModeMood, "feeling amazing")
	if tier != TierBackend {
		t.Fatalf("Expected backend tier, got %q", tier)
	}
	mood := res.(MoodResult)
	if mood.Mood != "Ecstatic" {
		t.Errorf("Expected the backend's mood, got %q", mood.Mood)
	}
	if mood.Level == nil || *mood.Level != 1.5 {
		t.Errorf("Expected raw level 1.5, got %v", mood.Level)
	}
}

func TestResolverBackendErrorEnvelopeFallsThrough(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"error":"invalid"}`))
	}))
	defer srv.Close()

	client := backend.NewClient(srv.URL, "secret", 0, nil)
	r := NewResolver(nil, NewBackendTier(client), NewLocalTier())

	res, tier := r.Resolve(context.Background(), models.ModeAlarm, "wake me at 7")
	if tier != TierLocal {
		t.Errorf("Expected fall-through to local tier, got %q", tier)
	}
	if res.ResultMode() != models.ModeAlarm {
		t.Errorf("Expected alarm result, got %s", res.ResultMode())
	}
}

func TestResolverTotalWithoutLocalTier(t *testing.T) {
	t.Parallel()

	failing := &stubTier{name: "failing", err: errors.New("down")}
	r := NewResolver(nil, failing)

	res, tier := r.Resolve(context.Background(), models.ModeSchedule, "block my morning")
	if tier != TierLocal {
		t.Errorf("Expected local fallback, got %q", tier)
	}
	if res == nil {
		t.Fatal("Expected a result even without a local tier")
	}
}
