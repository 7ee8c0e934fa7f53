package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"github.com/zoobzio/taskz"
)

var interruptCmd = &cobra.Command{
	Use:   "interrupt",
	Short: "Interrupt a task that checks for interruption at cooperative checkpoints",
	Long:  "Submits a task that loops yielding and checking interruption; calls InterruptAndWaitFor(2s) and reports whether the handle became ready, matching the scheduler's cooperative-interruption scenario.",
	RunE: func(_ *cobra.Command, _ []string) error {
		pool, err := taskz.NewPool(taskz.PoolSize(2))
		if err != nil {
			return err
		}
		defer pool.Shutdown(context.Background()) //nolint:errcheck

		handle, err := taskz.Submit(context.Background(), pool, "cooperative-task", func(ctx context.Context) (int, error) {
			ticks := 0
			for {
				taskz.Yield(ctx)
				if taskz.InterruptionRequested(ctx) {
					return ticks, taskz.ErrInterrupted
				}
				ticks++
				if ticks > 1000 {
					return ticks, nil
				}
			}
		})
		if err != nil {
			return err
		}

		ready := handle.InterruptAndWaitFor(2 * time.Second)
		fmt.Printf("became ready within 2s: %v\n", ready)
		fmt.Printf("interruption_requested: %v\n", handle.InterruptionRequested())
		return nil
	},
}
