package broadcast

import (
	"sync"

	"github.com/google/uuid"
)

// Subscriber pairs an opaque identity with its delivery queue. Identities
// are fresh UUIDs, unknowable to callers in advance.
type Subscriber struct {
	ID    string
	Queue *Queue
}

// Registry is the concurrency-safe map of live subscribers. Fan-out iterates
// a point-in-time snapshot, so a slow or disconnecting subscriber can never
// stall registration or another subscriber's delivery.
type Registry struct {
	mu   sync.RWMutex
	subs map[string]*Subscriber

	queueCapacity int
	policy        OverflowPolicy
}

func NewRegistry(queueCapacity int, policy OverflowPolicy) *Registry {
	return &Registry{
		subs:          make(map[string]*Subscriber),
		queueCapacity: queueCapacity,
		policy:        policy,
	}
}

// Allocate builds a fresh subscriber with its own queue without making it
// visible to fan-out. The engine seeds catch-up units into the queue first,
// then Inserts; that ordering keeps seeded units ahead of live ones.
func (r *Registry) Allocate() *Subscriber {
	return &Subscriber{
		ID:    uuid.NewString(),
		Queue: NewQueue(r.queueCapacity, r.policy),
	}
}

// Insert makes an allocated subscriber visible to fan-out.
func (r *Registry) Insert(sub *Subscriber) {
	r.mu.Lock()
	r.subs[sub.ID] = sub
	r.mu.Unlock()
}

// Register allocates a fresh subscriber and inserts it immediately.
func (r *Registry) Register() *Subscriber {
	sub := r.Allocate()
	r.Insert(sub)
	return sub
}

// Unregister removes a subscriber and closes its queue. Unknown ids are a
// no-op, so a double-unregister from racing teardown paths is harmless.
func (r *Registry) Unregister(id string) {
	r.mu.Lock()
	sub, ok := r.subs[id]
	if ok {
		delete(r.subs, id)
	}
	r.mu.Unlock()
	if ok {
		sub.Queue.Close()
	}
}

// Count returns the number of registered subscribers.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.subs)
}

// ForEach pushes a unit to every queue in a snapshot of the current
// membership. A subscriber registered mid-call may or may not see this
// particular unit; that race is accepted.
func (r *Registry) ForEach(unit *MediaUnit) {
	r.mu.RLock()
	snapshot := make([]*Subscriber, 0, len(r.subs))
	for _, sub := range r.subs {
		snapshot = append(snapshot, sub)
	}
	r.mu.RUnlock()

	for _, sub := range snapshot {
		sub.Queue.Push(unit)
	}
}
