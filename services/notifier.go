package services

import "sync"

// Change-feed topics.
const (
	TopicRequests = "requests"
	TopicMatches  = "matches"
)

// ThreadTopic returns the change-feed topic for one thread's messages.
func ThreadTopic(threadID string) string {
	return "thread:" + threadID
}

// ChangeNotifier fans out change signals to in-process subscribers. Every
// mutating operation notifies its topic; each subscriber then re-reads
// authoritative state and delivers a fresh snapshot. Signals are
// best-effort wake-ups, not payloads: a subscriber that misses one still
// converges on the next.
type ChangeNotifier struct {
	mu     sync.Mutex
	nextID int
	subs   map[string]map[int]chan struct{}
}

func NewChangeNotifier() *ChangeNotifier {
	return &ChangeNotifier{subs: make(map[string]map[int]chan struct{})}
}

// Subscribe registers for wake-ups on a topic. The returned cancel func
// must be called to release the subscription.
func (n *ChangeNotifier) Subscribe(topic string) (<-chan struct{}, func()) {
	n.mu.Lock()
	defer n.mu.Unlock()

	id := n.nextID
	n.nextID++
	ch := make(chan struct{}, 1)
	if n.subs[topic] == nil {
		n.subs[topic] = make(map[int]chan struct{})
	}
	n.subs[topic][id] = ch

	cancel := func() {
		n.mu.Lock()
		defer n.mu.Unlock()
		delete(n.subs[topic], id)
	}
	return ch, cancel
}

// Notify wakes all subscribers of a topic. Non-blocking: a subscriber with
// a pending wake-up is already going to re-read.
func (n *ChangeNotifier) Notify(topic string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	for _, ch := range n.subs[topic] {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
}
