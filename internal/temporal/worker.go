package temporal

import (
	"fmt"

	"go.temporal.io/sdk/client"
	"go.temporal.io/sdk/worker"
)

// DefaultTaskQueue is used when the config leaves the queue unset.
const DefaultTaskQueue = "mbd-conversion"

// StartWorker creates and starts a Temporal worker on the given task queue.
func StartWorker(c client.Client, taskQueue string) (worker.Worker, error) {
	if taskQueue == "" {
		taskQueue = DefaultTaskQueue
	}
	w := worker.New(c, taskQueue, worker.Options{})

	w.RegisterWorkflow(ConversionWorkflow)
	w.RegisterActivity(ConvertActivity)

	if err := w.Start(); err != nil {
		return nil, fmt.Errorf("starting worker: %w", err)
	}
	return w, nil
}
