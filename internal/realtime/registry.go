package realtime

import (
	"sync"
)

// topicRegistry tracks topic subscriptions. Multiple listeners may share a
// topic; each Subscribe gets its own registration id. The registry survives
// reconnects — it is the caller's declaration of interest, not the server's
// view of it.
type topicRegistry struct {
	mu     sync.RWMutex
	topics map[string]map[int]Listener
	nextID int
}

func newTopicRegistry() *topicRegistry {
	return &topicRegistry{
		topics: make(map[string]map[int]Listener),
	}
}

// add registers a listener for topic. Returns the registration id and
// whether this is the topic's first listener.
func (r *topicRegistry) add(topic string, fn Listener) (id int, first bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	set, ok := r.topics[topic]
	if !ok {
		set = make(map[int]Listener)
		r.topics[topic] = set
		first = true
	}

	id = r.nextID
	r.nextID++
	set[id] = fn
	return id, first
}

// remove drops a single registration. Returns true when the topic's last
// listener is gone (the topic entry itself is deleted).
func (r *topicRegistry) remove(topic string, id int) (last bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	set, ok := r.topics[topic]
	if !ok {
		return false
	}
	if _, ok := set[id]; !ok {
		return false
	}
	delete(set, id)
	if len(set) == 0 {
		delete(r.topics, topic)
		return true
	}
	return false
}

// listeners returns a snapshot of the listeners for topic.
func (r *topicRegistry) listeners(topic string) []Listener {
	r.mu.RLock()
	defer r.mu.RUnlock()

	set, ok := r.topics[topic]
	if !ok {
		return nil
	}
	out := make([]Listener, 0, len(set))
	for _, fn := range set {
		out = append(out, fn)
	}
	return out
}

// topicNames returns a snapshot of all subscribed topics.
func (r *topicRegistry) topicNames() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]string, 0, len(r.topics))
	for topic := range r.topics {
		out = append(out, topic)
	}
	return out
}

// count returns the number of distinct subscribed topics.
func (r *topicRegistry) count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.topics)
}

// listenerCount returns the number of registrations across all topics.
func (r *topicRegistry) listenerCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	n := 0
	for _, set := range r.topics {
		n += len(set)
	}
	return n
}
