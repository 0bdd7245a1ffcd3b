// ABOUTME: Handle-indexed registry of concurrently playing and paused clips
// ABOUTME: Foreground transport calls share the maps with a background reclaim loop
package pool

import (
	"log"
	"sync"

	"github.com/clipkit/clipkit-go/pkg/clip"
)

// Pool tracks active and paused clips by integer handle. A handle lives
// in at most one of the two maps at any time. Every map access is
// serialized through one mutex, shared with the background reclaim
// task.
type Pool struct {
	mu        sync.Mutex
	active    map[int]*clip.Clip
	paused    map[int]*clip.Clip
	pausedAll bool

	reclaim *reclaimTask
}

// New creates a pool and starts its reclaim task.
func New() *Pool {
	p := &Pool{
		active: make(map[int]*clip.Clip),
		paused: make(map[int]*clip.Clip),
	}
	p.reclaim = newReclaimTask(p)
	p.reclaim.start()
	return p
}

func handleNotFound(id int) {
	log.Printf("pool: clip with handle %d not found", id)
}

// Submit registers an independent copy of c, starts playing it, and
// returns its handle. A globally paused pool resumes first, so new
// submissions audibly play. Returns -1 for a nil clip.
//
// Handle allocation probes linearly upward from len(active) over the
// active map only. Paused entries are not consulted, so a handle vacated
// by pausing can be reissued while the paused entry still holds it; this
// matches the long-standing allocation behavior and is pinned by tests.
func (p *Pool) Submit(c *clip.Clip) int {
	if c == nil {
		return -1
	}

	p.mu.Lock()
	if p.pausedAll {
		p.resumeAllLocked()
	}

	id := len(p.active)
	for {
		if _, taken := p.active[id]; !taken {
			break
		}
		id++
	}

	instance := c.Copy()
	p.active[id] = instance
	size := len(p.active)
	p.mu.Unlock()

	instance.Play()
	p.reclaim.setActiveSize(size)
	p.reclaim.start()
	return id
}

// Play starts or restarts the active clip with the given handle.
func (p *Pool) Play(id int) {
	p.mu.Lock()
	c, ok := p.active[id]
	p.mu.Unlock()
	if !ok {
		handleNotFound(id)
		return
	}
	c.Play()
}

// Pause moves the handle from active to paused, stopping its line but
// keeping it bound so Resume is cheap.
func (p *Pool) Pause(id int) {
	p.mu.Lock()
	c, ok := p.active[id]
	if !ok {
		p.mu.Unlock()
		handleNotFound(id)
		return
	}
	p.paused[id] = c
	delete(p.active, id)
	p.mu.Unlock()
	c.Pause()
}

// Resume moves the handle from paused back to active and restarts its
// line.
func (p *Pool) Resume(id int) {
	p.mu.Lock()
	c, ok := p.paused[id]
	if !ok {
		p.mu.Unlock()
		handleNotFound(id)
		return
	}
	p.active[id] = c
	delete(p.paused, id)
	p.mu.Unlock()
	c.Resume()
}

// Remove closes the active clip with the given handle and evicts it.
func (p *Pool) Remove(id int) {
	p.mu.Lock()
	c, ok := p.active[id]
	if !ok {
		p.mu.Unlock()
		handleNotFound(id)
		return
	}
	delete(p.active, id)
	p.mu.Unlock()
	c.Close()
}

// PauseAll pauses every active clip and halts the reclaim task.
func (p *Pool) PauseAll() {
	p.reclaim.halt()
	p.mu.Lock()
	defer p.mu.Unlock()
	p.pausedAll = true
	for _, c := range p.active {
		c.Pause()
	}
}

// ResumeAll resumes every active clip and restarts the reclaim task.
func (p *Pool) ResumeAll() {
	p.mu.Lock()
	p.resumeAllLocked()
	p.mu.Unlock()
}

func (p *Pool) resumeAllLocked() {
	for _, c := range p.active {
		c.Resume()
	}
	p.pausedAll = false
	p.reclaim.start()
}

// StopAll closes every active clip, clears both maps, and halts the
// reclaim task.
func (p *Pool) StopAll() {
	p.mu.Lock()
	for _, c := range p.active {
		c.Close()
	}
	p.active = make(map[int]*clip.Clip)
	p.paused = make(map[int]*clip.Clip)
	p.mu.Unlock()
	p.reclaim.halt()
}

// Contains reports whether the handle exists in either map.
func (p *Pool) Contains(id int) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	_, active := p.active[id]
	_, paused := p.paused[id]
	return active || paused
}

// IsPlaying reports whether the active clip with the given handle has a
// playback in flight. Unknown handles log and report false.
func (p *Pool) IsPlaying(id int) bool {
	p.mu.Lock()
	c, ok := p.active[id]
	p.mu.Unlock()
	if !ok {
		handleNotFound(id)
		return false
	}
	return c.IsPlaying()
}

// IsPaused reports whether the handle sits in the paused map.
func (p *Pool) IsPaused(id int) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	_, ok := p.paused[id]
	return ok
}

// Paused reports whether the whole pool is paused.
func (p *Pool) Paused() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.pausedAll
}

// Get returns the active clip with the given handle, or nil after
// logging an unknown handle.
func (p *Pool) Get(id int) *clip.Clip {
	p.mu.Lock()
	c, ok := p.active[id]
	p.mu.Unlock()
	if !ok {
		handleNotFound(id)
		return nil
	}
	return c
}

// GetPaused returns the paused clip with the given handle, or nil after
// logging an unknown handle.
func (p *Pool) GetPaused(id int) *clip.Clip {
	p.mu.Lock()
	c, ok := p.paused[id]
	p.mu.Unlock()
	if !ok {
		handleNotFound(id)
		return nil
	}
	return c
}

// ActiveSize returns the number of active clips.
func (p *Pool) ActiveSize() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.active)
}

// PausedSize returns the number of paused clips.
func (p *Pool) PausedSize() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.paused)
}

// Size returns the total number of clips, active plus paused.
func (p *Pool) Size() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.active) + len(p.paused)
}

// reap evicts finished playbacks from the active map. Called from the
// reclaim loop; skipped while the pool is empty or globally paused.
func (p *Pool) reap() {
	p.mu.Lock()
	if len(p.active) == 0 || p.pausedAll {
		p.mu.Unlock()
		return
	}
	for id, c := range p.active {
		if !c.IsPlaying() {
			delete(p.active, id)
		}
	}
	size := len(p.active)
	p.mu.Unlock()
	p.reclaim.setActiveSize(size)
}
