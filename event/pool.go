package event

import "sync/atomic"

// PoolSize is the fixed slot count of the shared device-event pool,
// matching the source's Event_Pool_Size (100*1024).
const PoolSize = 100 * 1024

// pool is a fixed-size array of pre-allocated Events plus a parallel
// array of atomic allocated-flags. Allocation rotates through slots
// starting from the most recently allocated index, using an atomic
// compare-and-swap-style exchange as a spinlock; on exhaustion (2*N
// failed probes) it falls back to a heap-allocated Event, grounded on
// _examples/original_source/scgms/src/device_event.cpp's CEvent_Pool.
type pool struct {
	events    [PoolSize]Event
	allocated [PoolSize]int32 // atomic 0/1
	recent    int64           // atomic, last successfully allocated index
}

var defaultPool = newPool()

func newPool() *pool {
	p := &pool{recent: PoolSize - 1}
	for i := range p.events {
		p.events[i].slot = i
	}
	return p
}

// alloc finds a free slot via rotating probe, returning a heap-backed
// Event if none is free after 2*PoolSize probes.
func (p *pool) alloc() *Event {
	working := atomic.LoadInt64(&p.recent)
	retries := int64(PoolSize * 2)

	for retries > 0 {
		retries--
		working = (working + 1) % PoolSize
		if atomic.CompareAndSwapInt32(&p.allocated[working], 0, 1) {
			atomic.StoreInt64(&p.recent, working)
			return &p.events[working]
		}
	}

	return &Event{slot: heapSlot}
}

// free releases slot back to the pool for reuse. A no-op for
// out-of-range (heap-fallback) slots.
func (p *pool) free(slot int) {
	if slot < 0 || slot >= PoolSize {
		return
	}
	atomic.StoreInt32(&p.allocated[slot], 0)
}

// Stats reports instantaneous pool occupancy, for diagnostics/tests.
type Stats struct {
	Size      int
	Allocated int
}

// PoolStats returns a snapshot of the shared pool's occupancy. Not
// synchronized with concurrent allocation/release; intended for tests
// and diagnostics, not capacity-planning decisions.
func PoolStats() Stats {
	s := Stats{Size: PoolSize}
	for i := range defaultPool.allocated {
		if atomic.LoadInt32(&defaultPool.allocated[i]) != 0 {
			s.Allocated++
		}
	}
	return s
}
