package engine

// Phase is the single active lifecycle phase of the assistant session.
// Exactly one phase is active at any time.
type Phase string

const (
	// PhaseOnboarding collects the user profile; active until one exists.
	PhaseOnboarding Phase = "onboarding"
	// PhaseDashboard is the resting phase between capture cycles.
	PhaseDashboard Phase = "dashboard"
	// PhaseVoice captures speech. A "parsing" sub-state is exposed on the
	// snapshot while the pipeline resolves.
	PhaseVoice Phase = "voice"
	// PhasePreview shows the pending entity awaiting confirmation.
	PhasePreview Phase = "preview"
	// PhaseCreating runs the bounded progress sequence.
	PhaseCreating Phase = "creating"
	// PhaseSaved awaits acknowledgement, which performs the commit.
	PhaseSaved Phase = "saved"
)

func (p Phase) String() string { return string(p) }
