package taskz

import "github.com/zoobzio/capitan"

// Signal constants for taskz scheduler events.
// Signals follow the pattern: <component>.<event>.
const (
	// Semaphore signals.
	SignalSemaphoreActivated   capitan.Signal = "semaphore.activated"
	SignalSemaphoreDeactivated capitan.Signal = "semaphore.deactivated"

	// Queue signals.
	SignalQueueRejected    capitan.Signal = "queue.rejected"
	SignalQueueDeactivated capitan.Signal = "queue.deactivated"

	// WorkerPool signals, named after the teacher's workerpool connector
	// since a Pool here is the same semaphore-gated saturation concept
	// applied to a real fixed-size goroutine pool.
	SignalWorkerPoolSaturated capitan.Signal = "workerpool.saturated"
	SignalWorkerPoolAcquired  capitan.Signal = "workerpool.acquired"
	SignalWorkerPoolReleased  capitan.Signal = "workerpool.released"

	// Worker scheduling-loop signals.
	SignalWorkerStealSucceeded capitan.Signal = "worker.steal-succeeded"
	SignalWorkerStealFailed    capitan.Signal = "worker.steal-failed"
	SignalWorkerParked         capitan.Signal = "worker.parked"

	// Pool lifecycle signals.
	SignalPoolShutdownStarted  capitan.Signal = "pool.shutdown-started"
	SignalPoolShutdownAborted  capitan.Signal = "pool.shutdown-aborted"
	SignalPoolShutdownComplete capitan.Signal = "pool.shutdown-complete"

	// Task signals.
	SignalTaskInterrupted capitan.Signal = "task.interrupted"
	SignalTaskPanicked    capitan.Signal = "task.panicked"
)

// Common field keys using capitan primitive types.
// All keys use primitive types to avoid custom struct serialization.
var (
	// Common fields.
	FieldName      = capitan.NewStringKey("name")       // Component instance name
	FieldError     = capitan.NewStringKey("error")      // Error message
	FieldTimestamp = capitan.NewFloat64Key("timestamp") // Unix timestamp

	// Semaphore fields.
	FieldCount        = capitan.NewIntKey("count")         // Current semaphore count
	FieldWaiters      = capitan.NewIntKey("waiters")       // Blocked waiter count
	FieldSpinAttempts = capitan.NewIntKey("spin_attempts") // Spin iterations before park

	// Queue fields.
	FieldQueueSize  = capitan.NewIntKey("queue_size")  // Current element count
	FieldHighWater  = capitan.NewIntKey("high_water")  // High watermark
	FieldLowWater   = capitan.NewIntKey("low_water")   // Low watermark
	FieldQueueKind  = capitan.NewStringKey("queue_kind")  // fifo/priority, bounded/unbounded

	// WorkerPool fields.
	FieldWorkerCount   = capitan.NewIntKey("worker_count")   // Total worker slots
	FieldActiveWorkers = capitan.NewIntKey("active_workers") // Currently active workers

	// Worker fields.
	FieldWorkerID    = capitan.NewIntKey("worker_id")    // Worker index within the pool
	FieldVictimID    = capitan.NewIntKey("victim_id")    // Steal victim's worker index
	FieldStealTries  = capitan.NewIntKey("steal_tries")  // Probe attempts during a steal round

	// Task fields.
	FieldTaskID   = capitan.NewStringKey("task_id")  // Opaque task identifier
	FieldDuration = capitan.NewFloat64Key("duration") // Task runtime in seconds
)
