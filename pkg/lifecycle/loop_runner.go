package lifecycle

import "sync"

// LoopRunner owns one background loop at a time. Start hands the loop a
// stop channel; Stop closes it and blocks until the loop returns, so a
// stopped runner never leaves a goroutine behind. Both calls are safe to
// repeat.
type LoopRunner struct {
	mu      sync.RWMutex
	wg      sync.WaitGroup
	running bool
	stopCh  chan struct{}
}

func NewLoopRunner() *LoopRunner {
	return &LoopRunner{}
}

// Start launches loop in its own goroutine. It reports false when a loop
// is already running or loop is nil.
func (r *LoopRunner) Start(loop func(stop <-chan struct{})) bool {
	if loop == nil {
		return false
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.running {
		return false
	}

	stopCh := make(chan struct{})
	r.stopCh = stopCh
	r.running = true
	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		loop(stopCh)
	}()
	return true
}

// Stop signals the loop and waits for it to exit. It reports false when
// nothing was running.
func (r *LoopRunner) Stop() bool {
	r.mu.Lock()
	if !r.running {
		r.mu.Unlock()
		return false
	}
	stopCh := r.stopCh
	r.stopCh = nil
	r.running = false
	close(stopCh)
	r.mu.Unlock()

	// Wait outside the lock so the loop can call Running while draining.
	r.wg.Wait()
	return true
}

func (r *LoopRunner) Running() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.running
}
