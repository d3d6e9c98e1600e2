package parallel

import (
	"runtime"
	"sync/atomic"
	"testing"
)

func TestPoolRunsEveryJob(t *testing.T) {
	for _, n := range []int{1, 2, 8} {
		p := Start(n)
		if p.Workers() != n {
			t.Errorf("Workers() = %d, want %d", p.Workers(), n)
		}

		var count atomic.Int64
		for i := 0; i < 100; i++ {
			p.Do(func() { count.Add(1) })
		}
		p.Wait()

		if count.Load() != 100 {
			t.Errorf("%d workers: ran %d jobs, want 100", n, count.Load())
		}
	}
}

func TestSingleWorkerRunsInline(t *testing.T) {
	p := Start(1)
	ran := false
	p.Do(func() { ran = true })
	if !ran {
		t.Error("job did not run before Do returned")
	}
	p.Wait()
	p.Wait()
}

func TestDefaultWorkers(t *testing.T) {
	p := Start(0)
	defer p.Wait()
	if p.Workers() != runtime.GOMAXPROCS(0) {
		t.Errorf("Workers() = %d, want %d", p.Workers(), runtime.GOMAXPROCS(0))
	}
}

func TestWaitTwice(t *testing.T) {
	p := Start(4)
	var count atomic.Int64
	p.Do(func() { count.Add(1) })
	p.Wait()
	p.Wait()
	if count.Load() != 1 {
		t.Errorf("ran %d jobs, want 1", count.Load())
	}
}
