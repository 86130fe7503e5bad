package game

import (
	"sync"

	"github.com/kareemessam09/GeoQuest/pkg/logger"
)

// Bus decouples background geofence producers from foreground sessions.
// Subscribers get their own buffered channel and an owned cancel handle, so
// a session that goes away never leaks a listener. Delivery is at-most-once
// best effort: a subscriber whose buffer is full misses the event rather
// than blocking the producer.
type Bus struct {
	mu     sync.Mutex
	nextID int
	subs   map[int]*Subscription
}

// Subscription is a single subscriber's view of the bus. C is closed by
// Cancel.
type Subscription struct {
	C chan Transition

	id  int
	bus *Bus
}

const subscriptionBuffer = 64

func NewBus() *Bus {
	return &Bus{subs: make(map[int]*Subscription)}
}

// Subscribe registers a new subscriber. The caller owns the subscription
// and must Cancel it when done.
func (b *Bus) Subscribe() *Subscription {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.nextID++
	sub := &Subscription{
		C:   make(chan Transition, subscriptionBuffer),
		id:  b.nextID,
		bus: b,
	}
	b.subs[sub.id] = sub
	return sub
}

// Publish fans a transition out to every live subscriber.
func (b *Bus) Publish(t Transition) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for _, sub := range b.subs {
		select {
		case sub.C <- t:
		default:
			logger.Warn().
				Str("player", t.PlayerID).
				Str("treasure", t.TreasureID).
				Str("kind", string(t.Kind)).
				Msg("Geofence event dropped: subscriber buffer full")
		}
	}
}

// Cancel removes the subscription from the bus and closes its channel.
// Safe to call once; the session calls it on shutdown.
func (s *Subscription) Cancel() {
	s.bus.mu.Lock()
	defer s.bus.mu.Unlock()

	if _, ok := s.bus.subs[s.id]; !ok {
		return
	}
	delete(s.bus.subs, s.id)
	close(s.C)
}
