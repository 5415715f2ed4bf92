package validation

import (
	"testing"
)

func TestSanitizeTranscript(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "trims whitespace", input: "  wake me at 7  ", want: "wake me at 7"},
		{name: "strips control characters", input: "wake\x00 me\x07 up", want: "wake me up"},
		{name: "keeps newlines and tabs", input: "line one\nline\ttwo", want: "line one\nline\ttwo"},
		{name: "empty stays empty", input: "   ", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := SanitizeTranscript(tt.input); got != tt.want {
				t.Errorf("Expected %q, got %q", tt.want, got)
			}
		})
	}
}

func TestModeValidator(t *testing.T) {
	t.Parallel()

	type subject struct {
		Mode string `validate:"mode"`
	}

	if err := Validate.Struct(subject{Mode: "alarm"}); err != nil {
		t.Errorf("Expected 'alarm' valid, got %v", err)
	}
	if err := Validate.Struct(subject{Mode: "bogus"}); err == nil {
		t.Error("Expected 'bogus' rejected")
	}
	if err := Validate.Struct(subject{Mode: ""}); err == nil {
		t.Error("Expected empty mode rejected")
	}
}

func TestPriorityValidator(t *testing.T) {
	t.Parallel()

	type subject struct {
		Priority string `validate:"priority"`
	}

	for _, valid := range []string{"High", "Medium", "Low", ""} {
		if err := Validate.Struct(subject{Priority: valid}); err != nil {
			t.Errorf("Expected %q valid, got %v", valid, err)
		}
	}
	if err := Validate.Struct(subject{Priority: "Urgent"}); err == nil {
		t.Error("Expected 'Urgent' rejected")
	}
}

func TestValidatePriority(t *testing.T) {
	t.Parallel()

	if err := ValidatePriority("High"); err != nil {
		t.Errorf("Expected 'High' valid, got %v", err)
	}
	if err := ValidatePriority("urgent"); err == nil {
		t.Error("Expected 'urgent' rejected")
	}
}
