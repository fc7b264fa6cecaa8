package parallel

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestNewDefaultWorkers(t *testing.T) {
	p := New(0)
	defer p.Close()
	if p.Workers() < 1 {
		t.Errorf("Workers() = %d, want >= 1", p.Workers())
	}
}

func TestRunExecutesEveryTask(t *testing.T) {
	for _, workers := range []int{1, 2, 4} {
		p := New(workers)
		var n atomic.Int64
		tasks := make([]func(), 100)
		for i := range tasks {
			tasks[i] = func() { n.Add(1) }
		}
		p.Run(tasks)
		if got := n.Load(); got != 100 {
			t.Errorf("workers=%d: ran %d tasks, want 100", workers, got)
		}
		p.Close()
	}
}

func TestRunWritesDistinctSlots(t *testing.T) {
	p := New(3)
	defer p.Close()
	out := make([]int, 10)
	tasks := make([]func(), len(out))
	for i := range tasks {
		tasks[i] = func() { out[i] = i * i }
	}
	p.Run(tasks)
	for i, v := range out {
		if v != i*i {
			t.Errorf("out[%d] = %d, want %d", i, v, i*i)
		}
	}
}

func TestRunAfterClose(t *testing.T) {
	p := New(2)
	p.Close()
	p.Close()
	ran := 0
	p.Run([]func(){func() { ran++ }, func() { ran++ }})
	if ran != 2 {
		t.Errorf("ran = %d after Close, want 2 inline", ran)
	}
}

func TestRunEmpty(t *testing.T) {
	p := New(2)
	defer p.Close()
	p.Run(nil)
}

func TestRunConcurrentWithClose(t *testing.T) {
	for range 50 {
		p := New(4)
		var n atomic.Int64
		var wg sync.WaitGroup
		for range 4 {
			wg.Add(1)
			go func() {
				defer wg.Done()
				tasks := make([]func(), 64)
				for i := range tasks {
					tasks[i] = func() { n.Add(1) }
				}
				p.Run(tasks)
			}()
		}
		go p.Close()

		finished := make(chan struct{})
		go func() {
			wg.Wait()
			close(finished)
		}()
		select {
		case <-finished:
		case <-time.After(10 * time.Second):
			t.Fatal("Run did not return while the pool was closing")
		}
		if got := n.Load(); got != 4*64 {
			t.Errorf("ran %d tasks, want %d", got, 4*64)
		}
		p.Close()
	}
}
