package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

func newSeedCmd() *cobra.Command {
	var debug bool

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Seed the local store with demo data",
		Long:  "Inserts the demo dataset into an empty store. A store that already has entries is left untouched.",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(debug, nil, nil)
			if err != nil {
				return err
			}
			defer a.Close()

			ctx, cancel := context.WithTimeout(cmd.Context(), 10*time.Second)
			defer cancel()

			if err := a.store.Seed(ctx); err != nil {
				return err
			}
			fmt.Println("Seed complete.")
			return nil
		},
	}

	cmd.Flags().BoolVar(&debug, "debug", false, "enable debug logging")
	return cmd
}
