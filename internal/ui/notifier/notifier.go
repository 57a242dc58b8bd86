// Package notifier provides a keyed ping mechanism for SSE updates.
package notifier

import "sync"

// Notifier pings listeners grouped by key, usually a browser session id.
// Listeners receive an empty struct when their key changed and should re-read
// the state they render.
type Notifier struct {
	mu        sync.RWMutex
	listeners map[string]map[chan struct{}]struct{}
}

// New creates a new Notifier instance.
func New() *Notifier {
	return &Notifier{
		listeners: make(map[string]map[chan struct{}]struct{}),
	}
}

// Subscribe returns a channel that receives pings for key.
// The caller must call Unsubscribe when done to prevent goroutine leaks.
func (n *Notifier) Subscribe(key string) chan struct{} {
	ch := make(chan struct{}, 1)
	n.mu.Lock()
	set, ok := n.listeners[key]
	if !ok {
		set = make(map[chan struct{}]struct{})
		n.listeners[key] = set
	}
	set[ch] = struct{}{}
	n.mu.Unlock()
	return ch
}

// Unsubscribe removes a listener channel and closes it.
func (n *Notifier) Unsubscribe(key string, ch chan struct{}) {
	n.mu.Lock()
	if set, ok := n.listeners[key]; ok {
		delete(set, ch)
		if len(set) == 0 {
			delete(n.listeners, key)
		}
	}
	n.mu.Unlock()
	close(ch)
}

// Notify pings every listener of key.
// Non-blocking: if a listener's channel is full, the ping is skipped.
func (n *Notifier) Notify(key string) {
	n.mu.RLock()
	defer n.mu.RUnlock()

	for ch := range n.listeners[key] {
		ping(ch)
	}
}

// Broadcast pings all listeners regardless of key.
func (n *Notifier) Broadcast() {
	n.mu.RLock()
	defer n.mu.RUnlock()

	for _, set := range n.listeners {
		for ch := range set {
			ping(ch)
		}
	}
}

// Len returns the number of subscribed channels.
func (n *Notifier) Len() int {
	n.mu.RLock()
	defer n.mu.RUnlock()

	total := 0
	for _, set := range n.listeners {
		total += len(set)
	}
	return total
}

func ping(ch chan struct{}) {
	select {
	case ch <- struct{}{}:
	default:
		// Channel full, skip (listener will catch up on next ping)
	}
}
