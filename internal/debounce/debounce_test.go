package debounce

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestTrigger_CoalescesBurstToLastCall(t *testing.T) {
	d := New(30 * time.Millisecond)
	var mu sync.Mutex
	var got []int
	done := make(chan struct{}, 1)

	for i := 1; i <= 5; i++ {
		i := i
		d.Trigger("block-1", func() {
			mu.Lock()
			got = append(got, i)
			mu.Unlock()
			done <- struct{}{}
		})
		time.Sleep(5 * time.Millisecond)
	}

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatalf("debounced call never ran")
	}
	time.Sleep(60 * time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	if len(got) != 1 || got[0] != 5 {
		t.Fatalf("expected only the last call to run, got %v", got)
	}
}

func TestTrigger_KeysAreIndependent(t *testing.T) {
	d := New(20 * time.Millisecond)
	var n atomic.Int32
	var wg sync.WaitGroup
	wg.Add(2)
	d.Trigger("a", func() { n.Add(1); wg.Done() })
	d.Trigger("b", func() { n.Add(1); wg.Done() })
	wg.Wait()
	if n.Load() != 2 {
		t.Fatalf("expected both keys to fire, got %d", n.Load())
	}
}

func TestFlushAndCancel(t *testing.T) {
	d := New(time.Hour)
	ran := 0
	d.Trigger("k", func() { ran++ })
	if !d.Pending("k") {
		t.Fatalf("expected pending")
	}
	if !d.Flush("k") || ran != 1 {
		t.Fatalf("flush did not run pending call (ran=%d)", ran)
	}
	if d.Flush("k") {
		t.Fatalf("second flush should find nothing pending")
	}

	d.Trigger("k", func() { ran++ })
	if !d.Cancel("k") {
		t.Fatalf("expected cancel to drop pending call")
	}
	if d.Pending("k") || ran != 1 {
		t.Fatalf("cancelled call should not run (ran=%d)", ran)
	}
}

func TestStop(t *testing.T) {
	d := New(time.Hour)
	ran := 0
	d.Trigger("a", func() { ran++ })
	d.Trigger("b", func() { ran++ })
	d.Stop(true)
	if ran != 2 {
		t.Fatalf("expected flush on stop, ran=%d", ran)
	}
	d.Trigger("a", func() { ran++ })
	if d.Pending("a") {
		t.Fatalf("stopped debouncer accepted a trigger")
	}
}
