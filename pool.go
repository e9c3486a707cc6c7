package hyperstats

import (
	"sync"
)

// JobFunc is a unit of work executed by a WorkerPool.
type JobFunc func() error

// WorkerPool runs jobs on a fixed set of goroutines.
// ComputeBatch builds one per batch so a slow batch never starves another.
type WorkerPool struct {
	workers   int
	jobs      chan JobFunc
	wg        sync.WaitGroup
	errorChan chan error
}

// NewWorkerPool starts a pool of at least one worker.
func NewWorkerPool(workers int) *WorkerPool {
	workers = max(workers, 1)

	pool := &WorkerPool{
		workers:   workers,
		jobs:      make(chan JobFunc, workers),
		errorChan: make(chan error, workers),
	}

	for range workers {
		go pool.worker()
	}

	return pool
}

// Size returns the number of workers.
func (pool *WorkerPool) Size() int {
	return pool.workers
}

// Enqueue adds a job to the pool. It blocks while every worker is busy and the queue is full.
// Enqueue after Shutdown panics.
func (pool *WorkerPool) Enqueue(job JobFunc) {
	pool.wg.Add(1)

	pool.jobs <- job
}

// Shutdown waits for every enqueued job, stops the workers and closes the Errors channel.
func (pool *WorkerPool) Shutdown() {
	pool.wg.Wait()
	close(pool.jobs)
	close(pool.errorChan)
}

// Errors returns the channel receiving job errors. It must be drained while jobs run.
func (pool *WorkerPool) Errors() <-chan error {
	return pool.errorChan
}

func (pool *WorkerPool) worker() {
	for job := range pool.jobs {
		err := job()
		if err != nil {
			pool.errorChan <- err
		}

		pool.wg.Done()
	}
}
