package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/zoobzio/taskz"
)

var throwCmd = &cobra.Command{
	Use:   "throw",
	Short: "Submit a task that returns an error and observe it on the handle",
	Long:  "Submits a task that returns a runtime error; handle.Get() re-raises it and has_exception() reports true, matching the scheduler's throwing-task scenario.",
	RunE: func(_ *cobra.Command, _ []string) error {
		pool, err := taskz.NewPool(taskz.PoolSize(2))
		if err != nil {
			return err
		}
		defer pool.Shutdown(context.Background()) //nolint:errcheck

		boom := errors.New("simulated task failure")
		handle, err := taskz.Submit(context.Background(), pool, "throwing-task", func(context.Context) (int, error) {
			return 0, boom
		})
		if err != nil {
			return err
		}

		_, getErr := handle.Get()
		fmt.Printf("get error: %v\n", getErr)
		fmt.Printf("has_exception: %v\n", handle.HasException())
		fmt.Printf("has_value: %v\n", handle.HasValue())
		return nil
	},
}
