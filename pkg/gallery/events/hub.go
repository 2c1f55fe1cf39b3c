package events

import "context"

const publishBuffer = 100

// Event is a named server-sent event. Data is encoded by the writer.
type Event struct {
	Name string
	Data any
}

// Hub broadcasts events to per-topic subscribers.
//
// All access to the topic table happens on the Run goroutine; Subscribe,
// Unsubscribe and Publish only send to it. Subscribers that are not reading
// miss events instead of blocking the publisher.
type Hub struct {
	topics map[string]map[chan Event]struct{}

	subscribe   chan subscription
	unsubscribe chan subscription
	publish     chan topicEvent
	done        chan struct{}
}

type subscription struct {
	ch    chan Event
	topic string
}

type topicEvent struct {
	topic string
	event Event
}

func NewHub() *Hub {
	return &Hub{
		topics:      make(map[string]map[chan Event]struct{}),
		subscribe:   make(chan subscription),
		unsubscribe: make(chan subscription),
		publish:     make(chan topicEvent, publishBuffer),
		done:        make(chan struct{}),
	}
}

// Run processes hub operations until ctx is done. After that every hub
// method returns immediately.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)

	for {
		select {
		case s := <-h.subscribe:
			subs, ok := h.topics[s.topic]
			if !ok {
				subs = make(map[chan Event]struct{})
				h.topics[s.topic] = subs
			}
			subs[s.ch] = struct{}{}
		case s := <-h.unsubscribe:
			if subs, ok := h.topics[s.topic]; ok {
				delete(subs, s.ch)
				if len(subs) == 0 {
					delete(h.topics, s.topic)
				}
			}
		case te := <-h.publish:
			for ch := range h.topics[te.topic] {
				select {
				case ch <- te.event:
				default:
					// drop if client not reading
				}
			}
		case <-ctx.Done():
			return
		}
	}
}

// Subscribe registers ch for topic. The caller owns ch: it should be
// buffered, and the caller unsubscribes before closing it.
func (h *Hub) Subscribe(ch chan Event, topic string) {
	select {
	case h.subscribe <- subscription{ch: ch, topic: topic}:
	case <-h.done:
	}
}

func (h *Hub) Unsubscribe(ch chan Event, topic string) {
	select {
	case h.unsubscribe <- subscription{ch: ch, topic: topic}:
	case <-h.done:
	}
}

func (h *Hub) Publish(topic string, event Event) {
	select {
	case h.publish <- topicEvent{topic: topic, event: event}:
	case <-h.done:
	}
}

// Done is closed once Run has returned.
func (h *Hub) Done() <-chan struct{} {
	return h.done
}
