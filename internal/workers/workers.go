// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Alina Demidova

// Package workers provides the client's background jobs: the periodic sync
// ticker and the pending-count watcher. It defines the Worker interface and
// a Workers aggregate that starts them in a unified way.
package workers

// Worker is implemented by every background job. Run starts the job;
// implementations spawn their goroutines internally and return immediately.
type Worker interface {
	Run()
}

// Workers starts a set of workers together.
type Workers struct {
	workers []Worker
}

func NewWorkers(ws ...Worker) *Workers {
	return &Workers{workers: ws}
}

func (w *Workers) Run() {
	for _, worker := range w.workers {
		worker.Run()
	}
}
