package receipt

import (
	"slices"
	"sync"
)

// Notifier broadcasts a payload-free "recheck your state" signal to current
// subscribers. Delivery is synchronous and best-effort: a handler that is
// not subscribed when Publish runs misses the signal and must rely on its
// own activation-time load to catch up.
type Notifier struct {
	mu       sync.Mutex
	nextID   int
	handlers map[int]func()
}

// Subscription identifies one registered handler.
type Subscription struct {
	notifier *Notifier
	id       int
}

// NewNotifier creates an empty Notifier.
func NewNotifier() *Notifier {
	return &Notifier{handlers: make(map[int]func())}
}

// Subscribe registers handler and returns its subscription.
func (n *Notifier) Subscribe(handler func()) *Subscription {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.nextID++
	id := n.nextID
	n.handlers[id] = handler
	return &Subscription{notifier: n, id: id}
}

// Cancel removes the subscription's handler. Safe to call more than once.
func (s *Subscription) Cancel() {
	if s == nil || s.notifier == nil {
		return
	}
	s.notifier.mu.Lock()
	defer s.notifier.mu.Unlock()
	delete(s.notifier.handlers, s.id)
	s.notifier = nil
}

// Publish invokes the handlers subscribed at the moment it runs, in
// subscription order. Handlers added or removed by an in-flight publish do
// not affect that publish.
func (n *Notifier) Publish() {
	n.mu.Lock()
	ids := make([]int, 0, len(n.handlers))
	for id := range n.handlers {
		ids = append(ids, id)
	}
	// map iteration order is random; restore subscription order
	slices.Sort(ids)
	handlers := make([]func(), 0, len(ids))
	for _, id := range ids {
		handlers = append(handlers, n.handlers[id])
	}
	n.mu.Unlock()

	for _, h := range handlers {
		h()
	}
}
