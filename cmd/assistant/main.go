// Command assistant is the local-first entrypoint: it runs the full capture,
// parse, confirm, persist, mirror cycle against a local store, with remote
// services engaged only when configured.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	root := &cobra.Command{
		Use:           "assistant",
		Short:         "Voice-driven personal assistant engine",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(newRunCmd())
	root.AddCommand(newListCmd())
	root.AddCommand(newSeedCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
