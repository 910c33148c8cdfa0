package api

import "sync"

// Subscription is a client's filtered view of the event stream.
type Subscription struct {
	EventTypes map[EventType]bool
	Channel    chan Event
}

// Broadcaster fans out Events to every subscribed client, matching the
// teacher's fan-out pattern but dropping its session-ID filtering since
// this module drives a single VM per process rather than a session
// table.
type Broadcaster struct {
	mu            sync.RWMutex
	subscriptions map[*Subscription]bool
	broadcast     chan Event
	register      chan *Subscription
	unregister    chan *Subscription
	done          chan struct{}
}

// NewBroadcaster creates and starts a new event broadcaster.
func NewBroadcaster() *Broadcaster {
	b := &Broadcaster{
		subscriptions: make(map[*Subscription]bool),
		broadcast:     make(chan Event, 256),
		register:      make(chan *Subscription),
		unregister:    make(chan *Subscription),
		done:          make(chan struct{}),
	}

	go b.run()
	return b
}

func (b *Broadcaster) run() {
	for {
		select {
		case sub := <-b.register:
			b.mu.Lock()
			b.subscriptions[sub] = true
			b.mu.Unlock()

		case sub := <-b.unregister:
			b.mu.Lock()
			if b.subscriptions[sub] {
				delete(b.subscriptions, sub)
				close(sub.Channel)
			}
			b.mu.Unlock()

		case event := <-b.broadcast:
			b.mu.RLock()
			for sub := range b.subscriptions {
				if len(sub.EventTypes) > 0 && !sub.EventTypes[event.Type] {
					continue
				}
				select {
				case sub.Channel <- event:
				default:
					// slow client, drop this event rather than block the broadcaster
				}
			}
			b.mu.RUnlock()

		case <-b.done:
			b.mu.Lock()
			for sub := range b.subscriptions {
				close(sub.Channel)
			}
			b.subscriptions = make(map[*Subscription]bool)
			b.mu.Unlock()
			return
		}
	}
}

// Subscribe registers a new subscription; an empty eventTypes list
// receives every event.
func (b *Broadcaster) Subscribe(eventTypes []EventType) *Subscription {
	typeMap := make(map[EventType]bool)
	for _, et := range eventTypes {
		typeMap[et] = true
	}

	sub := &Subscription{
		EventTypes: typeMap,
		Channel:    make(chan Event, 64),
	}

	b.register <- sub
	return sub
}

// Unsubscribe removes a subscription and closes its channel.
func (b *Broadcaster) Unsubscribe(sub *Subscription) {
	b.unregister <- sub
}

// Broadcast sends an event to every matching subscription, dropping it
// if the broadcaster is overwhelmed rather than blocking the caller.
func (b *Broadcaster) Broadcast(event Event) {
	select {
	case b.broadcast <- event:
	default:
	}
}

// Close shuts down the broadcaster and closes all subscriptions.
func (b *Broadcaster) Close() {
	close(b.done)
}
