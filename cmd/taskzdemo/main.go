// Command taskzdemo exercises the taskz scheduler end to end, grounded on
// the teacher's cmd/main.go + cmd/registry.go cobra subcommand registry.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	version = "0.0.1"
	rootCmd = &cobra.Command{
		Use:     "taskzdemo",
		Short:   "Scheduler scenarios for the taskz worker pool",
		Long:    "taskzdemo runs the end-to-end scenarios from the taskz scheduler's design: forking Fibonacci, a throwing task, cooperative interruption, and bounded-queue backpressure.",
		Version: version,
	}
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.CompletionOptions.DisableDefaultCmd = true
	rootCmd.AddCommand(fibCmd)
	rootCmd.AddCommand(throwCmd)
	rootCmd.AddCommand(interruptCmd)
	rootCmd.AddCommand(backpressureCmd)
}
