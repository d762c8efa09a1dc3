package workers

import "context"

type Workers struct {
	workers []Worker
}

// NewWorkers aggregates the given workers so the server can start them
// as one unit.
func NewWorkers(workers ...Worker) *Workers {
	return &Workers{workers: workers}
}

func (w *Workers) Run(ctx context.Context) {
	for _, worker := range w.workers {
		worker.Run(ctx)
	}
}
