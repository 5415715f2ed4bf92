package main

import (
	"context"
	"fmt"
	"time"

	"github.com/habitcards/assistant/internal/capture"
	"github.com/habitcards/assistant/internal/engine"
	"github.com/habitcards/assistant/internal/models"
	"github.com/spf13/cobra"
)

func newRunCmd() *cobra.Command {
	var (
		modeFlag string
		sayFlags []string
		nameFlag string
		debug    bool
	)

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run one capture-to-save cycle",
		Long: "Runs a full assistant cycle: capture, parse, preview, confirm, " +
			"persist, mirror. Without a microphone the transcript is scripted " +
			"with --say; each flag value is a progressively fuller transcript.",
		RunE: func(cmd *cobra.Command, args []string) error {
			mode, err := models.ParseMode(modeFlag)
			if err != nil {
				return err
			}
			if len(sayFlags) == 0 {
				sayFlags = []string{"wake me at", "wake me at 7 for a morning run"}
			}

			rec := &capture.ScriptedRecognizer{
				Transcripts: sayFlags,
				Interval:    50 * time.Millisecond,
			}
			a, err := newApp(debug, rec, nil)
			if err != nil {
				return err
			}
			defer a.Close()

			ctx, cancel := context.WithTimeout(cmd.Context(), 60*time.Second)
			defer cancel()

			updates := a.engine.Subscribe()
			if err := a.engine.Start(ctx); err != nil {
				return err
			}

			if a.engine.Snapshot().Phase == engine.PhaseOnboarding {
				if err := a.engine.SubmitProfile(ctx, nameFlag, 0); err != nil {
					return err
				}
				fmt.Printf("Profile created for %s\n", nameFlag)
			}

			if a.cfg.SeedDemoData {
				if err := a.store.Seed(ctx); err != nil {
					return err
				}
			}

			if err := a.engine.SwitchMode(ctx, mode); err != nil {
				return err
			}
			if err := a.engine.StartEntry(ctx); err != nil {
				return err
			}

			// Let the scripted transcript stream in, then confirm.
			if err := waitForTranscript(ctx, a.engine, updates); err != nil {
				return err
			}
			snap := a.engine.Snapshot()
			fmt.Printf("Heard: %q\n", snap.Transcript)

			if err := a.engine.ConfirmVoice(ctx); err != nil {
				return err
			}
			if err := waitForPhase(ctx, updates, engine.PhasePreview); err != nil {
				return err
			}
			snap = a.engine.Snapshot()
			fmt.Printf("Parsed via %s tier: %d item(s)\n", snap.PendingTier, len(snap.Pending))

			if err := a.engine.Confirm(ctx); err != nil {
				return err
			}
			if err := waitForPhase(ctx, updates, engine.PhaseSaved); err != nil {
				return err
			}
			if err := a.engine.Acknowledge(ctx); err != nil {
				return err
			}

			fmt.Printf("Saved %s entry.\n", mode)
			return nil
		},
	}

	cmd.Flags().StringVar(&modeFlag, "mode", "alarm", "entry mode: alarm, meeting, mood, inbox, schedule")
	cmd.Flags().StringArrayVar(&sayFlags, "say", nil, "scripted transcript updates (repeatable)")
	cmd.Flags().StringVar(&nameFlag, "name", "Friend", "profile name used when onboarding")
	cmd.Flags().BoolVar(&debug, "debug", false, "enable debug logging")
	return cmd
}

// waitForTranscript waits until transcript updates stop arriving, i.e. the
// scripted recognizer has played out.
func waitForTranscript(ctx context.Context, eng *engine.Engine, updates <-chan engine.Snapshot) error {
	var last string
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case snap := <-updates:
			last = snap.Transcript
		case <-time.After(300 * time.Millisecond):
			if last == "" {
				last = eng.Snapshot().Transcript
			}
			if last != "" {
				return nil
			}
		}
	}
}

func waitForPhase(ctx context.Context, updates <-chan engine.Snapshot, want engine.Phase) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case snap := <-updates:
			if snap.Phase == want {
				return nil
			}
			if snap.SaveErr != nil {
				return snap.SaveErr
			}
		}
	}
}
