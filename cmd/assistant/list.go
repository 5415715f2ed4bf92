package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

func newListCmd() *cobra.Command {
	var debug bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List stored entries by collection",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(debug, nil, nil)
			if err != nil {
				return err
			}
			defer a.Close()

			ctx, cancel := context.WithTimeout(cmd.Context(), 10*time.Second)
			defer cancel()

			alarms, err := a.store.Alarms(ctx)
			if err != nil {
				return err
			}
			fmt.Printf("Alarms (%d):\n", len(alarms))
			for _, al := range alarms {
				state := "off"
				if al.Enabled {
					state = "on"
				}
				fmt.Printf("  %s  %-20s [%s] streak %d, %d routine step(s)\n",
					al.Time, al.Label, state, al.Streak, len(al.Routine))
			}

			meetings, err := a.store.Meetings(ctx)
			if err != nil {
				return err
			}
			fmt.Printf("Meetings (%d):\n", len(meetings))
			for _, m := range meetings {
				fmt.Printf("  %s %s  %-20s %d checklist item(s)\n",
					m.Date, m.Time, m.Title, len(m.Checklist))
			}

			moods, err := a.store.Moods(ctx)
			if err != nil {
				return err
			}
			fmt.Printf("Moods (%d):\n", len(moods))
			for _, mo := range moods {
				fmt.Printf("  %-12s level %.2f  trigger: %s\n", mo.Mood, mo.Level, mo.Trigger)
			}

			inbox, err := a.store.InboxItems(ctx)
			if err != nil {
				return err
			}
			fmt.Printf("Inbox (%d):\n", len(inbox))
			for _, it := range inbox {
				fmt.Printf("  [%s] %-20s %d/%d done\n",
					it.Priority, it.Source, it.CompletedCount(), len(it.ActionItems))
			}

			blocks, err := a.store.ScheduleBlocks(ctx)
			if err != nil {
				return err
			}
			fmt.Printf("Schedule (%d):\n", len(blocks))
			for _, b := range blocks {
				fmt.Printf("  %s-%s  %-20s (%s)\n", b.StartTime, b.EndTime, b.Title, b.Duration)
			}

			return nil
		},
	}

	cmd.Flags().BoolVar(&debug, "debug", false, "enable debug logging")
	return cmd
}
