// ABOUTME: Background reclamation loop for finished playbacks
// ABOUTME: Polling period tightens as the active pool grows
package pool

import (
	"sync"
	"time"
)

// reclaimBaseInterval is the polling period for a single active clip.
// The effective period is this divided by the active-pool size, so more
// concurrent clips mean faster polling and lower per-clip reclamation
// latency.
const reclaimBaseInterval = 100 * time.Millisecond

type reclaimTask struct {
	pool *Pool

	mu       sync.Mutex
	stop     chan struct{}
	interval time.Duration
}

func newReclaimTask(p *Pool) *reclaimTask {
	return &reclaimTask{
		pool:     p,
		interval: reclaimBaseInterval,
	}
}

// start launches the loop if it is not already running.
func (t *reclaimTask) start() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.stop != nil {
		return
	}
	stop := make(chan struct{})
	t.stop = stop
	go t.run(stop)
}

// halt stops the loop. Safe to call when not running.
func (t *reclaimTask) halt() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.stop == nil {
		return
	}
	close(t.stop)
	t.stop = nil
}

// setActiveSize re-derives the polling period from the active-pool size.
func (t *reclaimTask) setActiveSize(size int) {
	if size < 1 {
		size = 1
	}
	t.mu.Lock()
	t.interval = reclaimBaseInterval / time.Duration(size)
	t.mu.Unlock()
}

func (t *reclaimTask) currentInterval() time.Duration {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.interval
}

func (t *reclaimTask) run(stop chan struct{}) {
	timer := time.NewTimer(t.currentInterval())
	defer timer.Stop()

	for {
		select {
		case <-stop:
			return
		case <-timer.C:
			t.pool.reap()
			timer.Reset(t.currentInterval())
		}
	}
}
