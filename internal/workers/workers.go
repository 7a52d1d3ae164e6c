// SPDX-License-Identifier: Apache-2.0

package workers

type Workers struct {
	workers []Worker
}

func NewWorkers(list ...Worker) *Workers {
	return &Workers{workers: list}
}

func (w *Workers) Run() {
	for _, worker := range w.workers {
		worker.Run()
	}
}
