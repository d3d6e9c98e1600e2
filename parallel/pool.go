// Package parallel runs independent jobs on a fixed number of goroutines.
package parallel

import (
	"runtime"
	"sync"
)

// Pool runs the functions given to Do. With a single worker, Do runs each
// function before returning and no goroutines are started.
type Pool struct {
	workers int
	work    chan func()
	wg      sync.WaitGroup
	close   func()
}

// Start creates a pool of n workers. n < 1 means one worker per CPU.
func Start(n int) *Pool {
	if n < 1 {
		n = runtime.GOMAXPROCS(0)
	}

	p := &Pool{workers: n, close: func() {}}
	if n == 1 {
		return p
	}

	p.work = make(chan func(), n)
	for range n {
		p.wg.Go(func() {
			for f := range p.work {
				f()
			}
		})
	}
	p.close = sync.OnceFunc(func() { close(p.work) })
	return p
}

// Workers returns the number of workers.
func (p *Pool) Workers() int {
	return p.workers
}

// Do queues f, blocking while all workers are busy and the queue is full.
// Do must not be called after Close.
func (p *Pool) Do(f func()) {
	if p.work == nil {
		f()
		return
	}
	p.work <- f
}

// Close stops accepting work. Queued jobs still run.
func (p *Pool) Close() {
	p.close()
}

// Wait closes the pool and blocks until every queued job has finished.
func (p *Pool) Wait() {
	p.Close()
	p.wg.Wait()
}
