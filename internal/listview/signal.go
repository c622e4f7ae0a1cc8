package listview

import "sync"

// RefreshSignal is a process wide counter. Every bump makes subscribed
// tables fetch again with their current state.
type RefreshSignal struct {
	mu    sync.Mutex
	value uint64
	next  int
	subs  map[int]func(uint64)
}

// NewRefreshSignal returns a signal at zero.
func NewRefreshSignal() *RefreshSignal {
	return &RefreshSignal{subs: map[int]func(uint64){}}
}

// Value returns the current counter.
func (r *RefreshSignal) Value() uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.value
}

// Bump increments the counter and notifies subscribers.
func (r *RefreshSignal) Bump() uint64 {
	r.mu.Lock()
	r.value++
	value := r.value
	subs := make([]func(uint64), 0, len(r.subs))
	for _, fn := range r.subs {
		subs = append(subs, fn)
	}
	r.mu.Unlock()

	for _, fn := range subs {
		fn(value)
	}
	return value
}

// Subscribe registers fn and returns its cancel function.
func (r *RefreshSignal) Subscribe(fn func(uint64)) func() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.subs == nil {
		r.subs = map[int]func(uint64){}
	}
	id := r.next
	r.next++
	r.subs[id] = fn
	return func() {
		r.mu.Lock()
		defer r.mu.Unlock()
		delete(r.subs, id)
	}
}

// Subscribers reports how many tables listen.
func (r *RefreshSignal) Subscribers() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.subs)
}
