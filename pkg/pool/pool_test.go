// ABOUTME: Tests for the clip pool handle lifecycle and reclaim behavior
// ABOUTME: Backs clips with fake device lines so playback needs no hardware
package pool

import (
	"sync"
	"testing"
	"time"

	"github.com/clipkit/clipkit-go/pkg/clip"
	"github.com/clipkit/clipkit-go/pkg/device"
	"github.com/clipkit/clipkit-go/pkg/pcm"
)

// fakeLine satisfies device.OutputLine without hardware. Drain blocks on
// finish when set, keeping the clip's playback in flight until the test
// releases it.
type fakeLine struct {
	mu       sync.Mutex
	closed   bool
	finish   chan struct{}
	closedCh chan struct{}
}

func (l *fakeLine) Start() error { return nil }
func (l *fakeLine) Stop() error  { return nil }

func (l *fakeLine) Write(p []byte) (int, error) { return len(p), nil }

func (l *fakeLine) Drain() error {
	if l.finish == nil {
		return nil
	}
	select {
	case <-l.finish:
	case <-l.closedCh:
	}
	return nil
}

func (l *fakeLine) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if !l.closed {
		l.closed = true
		close(l.closedCh)
	}
	return nil
}

func (l *fakeLine) PositionMicros() int64 { return 0 }

// blockingClip returns a clip whose playbacks stay in flight until finish
// is closed. Each pool submission copies the clip and opens its own line,
// so the opener hands out a fresh line per call.
func blockingClip(t *testing.T, finish chan struct{}) *clip.Clip {
	t.Helper()
	f := pcm.Format{SampleRate: 48000, BitDepth: 16, Channels: 1, Signed: true}
	c, err := clip.NewWithFormat(make([]byte, 9600), f, clip.WithLineOpener(
		func(pcm.Format) (device.OutputLine, error) {
			return &fakeLine{finish: finish, closedCh: make(chan struct{})}, nil
		}))
	if err != nil {
		t.Fatalf("Failed to create clip: %v", err)
	}
	return c
}

// instantClip returns a clip whose playbacks finish as soon as the
// payload is written.
func instantClip(t *testing.T) *clip.Clip {
	t.Helper()
	return blockingClip(t, nil)
}

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("Timed out waiting for %s", what)
}

func TestSubmitNilReturnsInvalidHandle(t *testing.T) {
	p := New()
	defer p.StopAll()

	if id := p.Submit(nil); id != -1 {
		t.Errorf("Submit(nil) = %d, want -1", id)
	}
	if p.Size() != 0 {
		t.Errorf("Expected empty pool, got size %d", p.Size())
	}
}

func TestSubmitAssignsUniqueHandles(t *testing.T) {
	finish := make(chan struct{})
	defer close(finish)
	p := New()
	defer p.StopAll()
	c := blockingClip(t, finish)

	seen := make(map[int]bool)
	for i := 0; i < 5; i++ {
		id := p.Submit(c)
		if seen[id] {
			t.Fatalf("Handle %d issued twice", id)
		}
		seen[id] = true
	}

	if p.ActiveSize() != 5 {
		t.Errorf("ActiveSize = %d, want 5", p.ActiveSize())
	}
}

func TestPauseMovesHandleBetweenMaps(t *testing.T) {
	finish := make(chan struct{})
	defer close(finish)
	p := New()
	defer p.StopAll()

	id := p.Submit(blockingClip(t, finish))
	waitFor(t, "clip to play", func() bool { return p.IsPlaying(id) })

	p.Pause(id)
	if !p.IsPaused(id) {
		t.Error("Expected handle in paused map")
	}
	if p.ActiveSize() != 0 || p.PausedSize() != 1 {
		t.Errorf("Partition = %d active / %d paused, want 0/1", p.ActiveSize(), p.PausedSize())
	}
	if !p.Contains(id) {
		t.Error("Paused handle should still be contained")
	}
	if p.GetPaused(id) == nil {
		t.Error("Expected paused clip to be retrievable")
	}

	p.Resume(id)
	if p.IsPaused(id) {
		t.Error("Expected handle back in active map")
	}
	if p.Get(id) == nil {
		t.Error("Expected resumed clip to be retrievable")
	}
}

func TestUnknownHandleNoOps(t *testing.T) {
	p := New()
	defer p.StopAll()

	p.Play(999)
	p.Pause(999)
	p.Resume(999)
	p.Remove(999)

	if p.IsPlaying(999) {
		t.Error("Unknown handle should not report playing")
	}
	if p.Get(999) != nil || p.GetPaused(999) != nil {
		t.Error("Unknown handle should return nil")
	}
	if p.Size() != 0 {
		t.Errorf("Pool should stay empty, got size %d", p.Size())
	}
}

func TestSubmitReusesHandleHeldByPausedClip(t *testing.T) {
	finish := make(chan struct{})
	defer close(finish)
	p := New()
	defer p.StopAll()

	first := p.Submit(blockingClip(t, finish))
	if first != 0 {
		t.Fatalf("First handle = %d, want 0", first)
	}
	p.Pause(first)

	// Allocation probes the active map only, so the handle held by the
	// paused entry is issued again.
	second := p.Submit(blockingClip(t, finish))
	if second != 0 {
		t.Errorf("Second handle = %d, want 0", second)
	}
	if p.Size() != 2 {
		t.Errorf("Size = %d, want 2", p.Size())
	}
	if p.ActiveSize() != 1 || p.PausedSize() != 1 {
		t.Errorf("Partition = %d active / %d paused, want 1/1", p.ActiveSize(), p.PausedSize())
	}
}

func TestReclaimRemovesFinishedClips(t *testing.T) {
	p := New()
	defer p.StopAll()

	for i := 0; i < 3; i++ {
		p.Submit(instantClip(t))
	}

	waitFor(t, "reclaim to evict finished clips", func() bool { return p.ActiveSize() == 0 })
}

func TestReclaimSparesPausedClips(t *testing.T) {
	finish := make(chan struct{})
	defer close(finish)
	p := New()
	defer p.StopAll()

	id := p.Submit(blockingClip(t, finish))
	waitFor(t, "clip to play", func() bool { return p.IsPlaying(id) })
	p.Pause(id)
	p.Submit(instantClip(t))

	waitFor(t, "reclaim to evict the finished clip", func() bool { return p.ActiveSize() == 0 })

	if !p.IsPaused(id) {
		t.Error("Paused clip should survive reclaim")
	}
}

func TestPauseAllAndResumeAll(t *testing.T) {
	finish := make(chan struct{})
	defer close(finish)
	p := New()
	defer p.StopAll()

	a := p.Submit(blockingClip(t, finish))
	b := p.Submit(blockingClip(t, finish))
	waitFor(t, "clips to play", func() bool { return p.IsPlaying(a) && p.IsPlaying(b) })

	p.PauseAll()
	if !p.Paused() {
		t.Error("Expected pool to report paused")
	}
	// Global pause keeps handles in the active map
	if p.ActiveSize() != 2 {
		t.Errorf("ActiveSize = %d, want 2", p.ActiveSize())
	}

	p.ResumeAll()
	if p.Paused() {
		t.Error("Expected pool to report running")
	}
}

func TestSubmitResumesGloballyPausedPool(t *testing.T) {
	finish := make(chan struct{})
	defer close(finish)
	p := New()
	defer p.StopAll()

	p.Submit(blockingClip(t, finish))
	p.PauseAll()

	p.Submit(blockingClip(t, finish))
	if p.Paused() {
		t.Error("Submit should resume a globally paused pool")
	}
}

func TestStopAllClearsEverything(t *testing.T) {
	finish := make(chan struct{})
	defer close(finish)
	p := New()

	a := p.Submit(blockingClip(t, finish))
	b := p.Submit(blockingClip(t, finish))
	p.Pause(b)

	p.StopAll()
	if p.Size() != 0 {
		t.Errorf("Size = %d after StopAll, want 0", p.Size())
	}
	if p.Contains(a) || p.Contains(b) {
		t.Error("Expected no handles after StopAll")
	}
}

func TestRemoveClosesClip(t *testing.T) {
	finish := make(chan struct{})
	defer close(finish)
	p := New()
	defer p.StopAll()

	id := p.Submit(blockingClip(t, finish))
	waitFor(t, "clip to play", func() bool { return p.IsPlaying(id) })
	c := p.Get(id)

	p.Remove(id)
	if p.Contains(id) {
		t.Error("Removed handle should be gone")
	}
	if c.State() != clip.StateClosed {
		t.Errorf("Removed clip state = %v, want closed", c.State())
	}
}

func TestReclaimIntervalScalesWithPoolSize(t *testing.T) {
	task := newReclaimTask(&Pool{
		active: make(map[int]*clip.Clip),
		paused: make(map[int]*clip.Clip),
	})

	task.setActiveSize(0)
	if got := task.currentInterval(); got != reclaimBaseInterval {
		t.Errorf("Interval at size 0 = %v, want %v", got, reclaimBaseInterval)
	}
	task.setActiveSize(4)
	if got := task.currentInterval(); got != reclaimBaseInterval/4 {
		t.Errorf("Interval at size 4 = %v, want %v", got, reclaimBaseInterval/4)
	}
}
