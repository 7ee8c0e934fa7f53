package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/zoobzio/taskz"
)

var fibN int

var fibCmd = &cobra.Command{
	Use:   "fib",
	Short: "Compute fib(n) by forking two child tasks per level",
	Long:  "Submits fib(n) to a pool of size 4, where fib(n) = Fork(fib(n-1)) + Fork(fib(n-2)), matching the scheduler's fork/wait end-to-end scenario.",
	RunE: func(_ *cobra.Command, _ []string) error {
		pool, err := taskz.NewPool(taskz.PoolSize(4))
		if err != nil {
			return err
		}
		defer pool.Shutdown(context.Background()) //nolint:errcheck

		handle, err := taskz.Submit(context.Background(), pool, "fib-root", func(ctx context.Context) (int, error) {
			return fib(ctx, fibN)
		})
		if err != nil {
			return err
		}

		result, err := handle.Get()
		if err != nil {
			return err
		}

		fmt.Printf("fib(%d) = %d\n", fibN, result)
		return nil
	},
}

func init() {
	fibCmd.Flags().IntVar(&fibN, "n", 10, "which Fibonacci number to compute")
}

func fib(ctx context.Context, n int) (int, error) {
	if n < 2 {
		return n, nil
	}

	left, err := taskz.Fork(ctx, "fib-left", func(c context.Context) (int, error) {
		return fib(c, n-1)
	})
	if err != nil {
		return 0, err
	}

	right, err := taskz.Fork(ctx, "fib-right", func(c context.Context) (int, error) {
		return fib(c, n-2)
	})
	if err != nil {
		return 0, err
	}

	a, err := left.GetContext(ctx)
	if err != nil {
		return 0, err
	}
	b, err := right.GetContext(ctx)
	if err != nil {
		return 0, err
	}

	return a + b, nil
}
