package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"github.com/zoobzio/taskz"
)

var backpressureCmd = &cobra.Command{
	Use:   "backpressure",
	Short: "Demonstrate bounded-FIFO producer blocking and unblocking",
	Long:  "Configures a pool with a bounded global queue (HWM=4, LWM=2) and a single slow consumer, submitting more tasks than HWM to show producers block until the consumer drains the queue back to LWM.",
	RunE: func(_ *cobra.Command, _ []string) error {
		pool, err := taskz.NewPool(
			taskz.PoolSize(1),
			taskz.HighWatermark(4),
			taskz.LowWatermark(2),
		)
		if err != nil {
			return err
		}
		defer pool.Shutdown(context.Background()) //nolint:errcheck

		hwm, _ := pool.HighWatermark()
		lwm, _ := pool.LowWatermark()
		fmt.Printf("bounded queue: hwm=%d lwm=%d\n", hwm, lwm)

		start := time.Now()
		for i := 0; i < 8; i++ {
			i := i
			submitStart := time.Now()
			_, err := taskz.Submit(context.Background(), pool, "slow-consumer", func(context.Context) (int, error) {
				time.Sleep(50 * time.Millisecond)
				return i, nil
			})
			if err != nil {
				return err
			}
			fmt.Printf("submit %d accepted after %v\n", i, time.Since(submitStart))
		}
		fmt.Printf("all submits accepted after %v\n", time.Since(start))
		return nil
	},
}
