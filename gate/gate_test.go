package gate_test

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/readypoll/poll/gate"
)

func TestEnterExitFastPath(t *testing.T) {
	g := gate.New()
	if !g.Enter(-1) {
		t.Fatal("Enter: got false, want true on an uncontended gate")
	}
	g.Exit()
}

func TestEnterNonBlockingWhenHeld(t *testing.T) {
	g := gate.New()
	if !g.Enter(-1) {
		t.Fatal("first Enter: got false")
	}
	defer g.Exit()

	if g.Enter(0) {
		t.Fatal("second Enter(0): got true, want false while held")
	}
}

func TestEnterTimesOut(t *testing.T) {
	g := gate.New()
	if !g.Enter(-1) {
		t.Fatal("first Enter: got false")
	}
	defer g.Exit()

	start := time.Now()
	if g.Enter(50 * time.Millisecond) {
		t.Fatal("timed Enter: got true, want false")
	}
	if elapsed := time.Since(start); elapsed < 40*time.Millisecond {
		t.Fatalf("timed Enter returned too early: %v", elapsed)
	}
}

// TestEnterWakesOnExit confirms a blocked waiter is admitted once the
// holder calls Exit, rather than waiting out its own timeout.
func TestEnterWakesOnExit(t *testing.T) {
	g := gate.New()
	if !g.Enter(-1) {
		t.Fatal("first Enter: got false")
	}

	admitted := make(chan bool, 1)
	go func() {
		admitted <- g.Enter(2 * time.Second)
	}()

	time.Sleep(50 * time.Millisecond)
	g.Exit()

	select {
	case ok := <-admitted:
		if !ok {
			t.Fatal("waiter Enter: got false, want true")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("waiter was never admitted")
	}
}

// TestMutualExclusion stresses the gate with many goroutines incrementing a
// shared counter only while holding it, and checks no overlap occurred.
func TestMutualExclusion(t *testing.T) {
	g := gate.New()
	var active int32
	var maxActive int32
	var wg sync.WaitGroup

	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				if !g.Enter(time.Second) {
					t.Error("Enter timed out under light contention")
					return
				}
				n := atomic.AddInt32(&active, 1)
				for {
					m := atomic.LoadInt32(&maxActive)
					if n <= m || atomic.CompareAndSwapInt32(&maxActive, m, n) {
						break
					}
				}
				atomic.AddInt32(&active, -1)
				g.Exit()
			}
		}()
	}
	wg.Wait()

	if maxActive != 1 {
		t.Fatalf("max concurrent holders: got %d, want 1", maxActive)
	}
}
