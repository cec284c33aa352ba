package pipeline

import "sync"

// Notifier tells read surfaces that a dispatch delivered events to a
// consumer they are watching. Publishes are non-blocking: a subscriber
// that has not picked up the previous notification is not sent another,
// it will observe the newest state when it next reads its buffer. The
// pipeline never stalls on a slow reader.
type Notifier struct {
	mu   sync.Mutex
	subs map[int64]map[chan struct{}]struct{} // consumer handle -> subscriber channels
}

func NewNotifier() *Notifier {
	return &Notifier{subs: make(map[int64]map[chan struct{}]struct{})}
}

// Subscribe registers interest in updates for one consumer. The
// returned channel receives a token after each dispatch that delivered
// to that consumer. Call cancel to release the subscription.
func (n *Notifier) Subscribe(handle int64) (<-chan struct{}, func()) {
	ch := make(chan struct{}, 1)

	n.mu.Lock()
	set, ok := n.subs[handle]
	if !ok {
		set = make(map[chan struct{}]struct{})
		n.subs[handle] = set
	}
	set[ch] = struct{}{}
	n.mu.Unlock()

	cancel := func() {
		n.mu.Lock()
		defer n.mu.Unlock()
		if set, ok := n.subs[handle]; ok {
			delete(set, ch)
			if len(set) == 0 {
				delete(n.subs, handle)
			}
		}
	}
	return ch, cancel
}

// Publish notifies subscribers of every consumer present in delivered.
func (n *Notifier) Publish(delivered map[int64]int) {
	n.mu.Lock()
	defer n.mu.Unlock()

	for handle := range delivered {
		for ch := range n.subs[handle] {
			select {
			case ch <- struct{}{}:
			default:
			}
		}
	}
}
