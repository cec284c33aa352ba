package pipeline

import (
	"errors"
	"sync"

	"grapevine.app/firehose/common/id"
	"grapevine.app/firehose/internal/domain"
)

var (
	// ErrConsumerNotFound is returned for handles that are not (or no
	// longer) registered.
	ErrConsumerNotFound = errors.New("consumer not found")
	// ErrPrimaryConsumer is returned when an operation is not permitted
	// on the primary consumer.
	ErrPrimaryConsumer = errors.New("operation not permitted on primary consumer")
)

// ConsumerInfo is a read-only view of one registered consumer.
type ConsumerInfo struct {
	ID       int64
	Role     Role
	Filter   string
	Buffered int
}

// Registry owns the dynamic consumer set: exactly one primary created
// at construction and never removable, plus any number of secondaries
// added and removed at runtime. Registration, filter changes and
// fan-out into retention buffers all happen under the registry lock,
// so a dispatch always sees a consistent consumer set and never races
// a removal.
type Registry struct {
	mu        sync.Mutex
	consumers map[int64]*Consumer
	order     []int64 // insertion order, primary first
	primaryID int64
}

// NewRegistry creates a registry holding the primary consumer with the
// given initial filter (usually empty, the unfiltered firehose).
func NewRegistry(primaryFilter string) *Registry {
	primary := &Consumer{
		id:     id.New(),
		role:   RolePrimary,
		filter: primaryFilter,
	}
	return &Registry{
		consumers: map[int64]*Consumer{primary.id: primary},
		order:     []int64{primary.id},
		primaryID: primary.id,
	}
}

// PrimaryID returns the handle of the primary consumer.
func (r *Registry) PrimaryID() int64 {
	return r.primaryID
}

// Add registers a new secondary consumer with an empty retention
// buffer and the given filter, returning its stable handle.
func (r *Registry) Add(filter string) int64 {
	r.mu.Lock()
	defer r.mu.Unlock()

	c := &Consumer{
		id:     id.New(),
		role:   RoleSecondary,
		filter: filter,
	}
	r.consumers[c.id] = c
	r.order = append(r.order, c.id)
	return c.id
}

// Remove deregisters a secondary consumer and discards its retention
// buffer. Removing the primary is rejected.
func (r *Registry) Remove(handle int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if handle == r.primaryID {
		return ErrPrimaryConsumer
	}
	if _, ok := r.consumers[handle]; !ok {
		return ErrConsumerNotFound
	}
	delete(r.consumers, handle)
	for i, cid := range r.order {
		if cid == handle {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	return nil
}

// UpdateFilter replaces a consumer's filter. Retained events are
// cleared rather than re-filtered; the new filter applies to events
// dispatched from now on.
func (r *Registry) UpdateFilter(handle int64, filter string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	c, ok := r.consumers[handle]
	if !ok {
		return ErrConsumerNotFound
	}
	c.setFilter(filter)
	return nil
}

// Events returns the consumer's retained events, newest first.
func (r *Registry) Events(handle int64) ([]domain.Event, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	c, ok := r.consumers[handle]
	if !ok {
		return nil, ErrConsumerNotFound
	}
	return c.snapshot(), nil
}

// List returns a view of all registered consumers in insertion order,
// primary first.
func (r *Registry) List() []ConsumerInfo {
	r.mu.Lock()
	defer r.mu.Unlock()

	infos := make([]ConsumerInfo, 0, len(r.order))
	for _, cid := range r.order {
		c := r.consumers[cid]
		infos = append(infos, ConsumerInfo{
			ID:       c.id,
			Role:     c.role,
			Filter:   c.filter,
			Buffered: len(c.retained),
		})
	}
	return infos
}

// Len reports the number of registered consumers.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.consumers)
}

// fanOut delivers an ordered batch to every consumer registered at
// call time, front-inserting matches and evicting beyond capacity.
// Returns per-consumer delivery counts for consumers that received at
// least one event.
func (r *Registry) fanOut(batch []domain.Event) map[int64]int {
	r.mu.Lock()
	defer r.mu.Unlock()

	var delivered map[int64]int
	for _, ev := range batch {
		for _, cid := range r.order {
			c := r.consumers[cid]
			if !c.matches(ev) {
				continue
			}
			c.retain(ev)
			if delivered == nil {
				delivered = make(map[int64]int)
			}
			delivered[cid]++
		}
	}
	return delivered
}
