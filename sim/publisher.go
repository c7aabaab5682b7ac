package sim

import (
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

// AllVehicles subscribes to every vehicle
const AllVehicles = "*"

const defaultSubscriberBuffer = 64

// Subscription is one subscriber's bounded snapshot stream.
// When the buffer is full the oldest pending snapshot is dropped.
type Subscription struct {
	id       string
	selector string
	ch       chan Snapshot
	dropped  atomic.Int64
	pub      *Publisher
}

// ID is the unique subscriber id
func (s *Subscription) ID() string { return s.id }

// Selector is the vehicle id (or "*") the subscription was created with
func (s *Subscription) Selector() string { return s.selector }

// C returns the stream; it is closed by Unsubscribe.
func (s *Subscription) C() <-chan Snapshot { return s.ch }

// Dropped returns how many snapshots were discarded because the subscriber lagged.
func (s *Subscription) Dropped() int64 { return s.dropped.Load() }

// Unsubscribe stops delivery and closes C. Safe to call more than once.
func (s *Subscription) Unsubscribe() { s.pub.remove(s.id) }

// Matches reports whether a snapshot of vehicleID is delivered to this subscription.
func (s *Subscription) Matches(vehicleID string) bool {
	return s.selector == AllVehicles || s.selector == vehicleID
}

// offer never blocks: on a full buffer it evicts the oldest snapshot.
func (s *Subscription) offer(snap Snapshot) {
	select {
	case s.ch <- snap:
		return
	default:
	}
	select {
	case <-s.ch:
		s.dropped.Add(1)
	default:
	}
	select {
	case s.ch <- snap:
	default:
		s.dropped.Add(1)
	}
}

// Publisher fans snapshots out to subscribers
type Publisher struct {
	mu     sync.RWMutex
	subs   map[string]*Subscription
	buffer int
}

// NewPublisher creates a publisher whose subscriptions buffer up to buffer snapshots
func NewPublisher(buffer int) *Publisher {
	if buffer <= 0 {
		buffer = defaultSubscriberBuffer
	}
	return &Publisher{subs: map[string]*Subscription{}, buffer: buffer}
}

// Subscribe registers a stream for a vehicle id or AllVehicles.
func (p *Publisher) Subscribe(selector string) *Subscription {
	if selector == "" {
		selector = AllVehicles
	}
	s := &Subscription{
		id:       uuid.NewString(),
		selector: selector,
		ch:       make(chan Snapshot, p.buffer),
		pub:      p,
	}
	p.mu.Lock()
	p.subs[s.id] = s
	p.mu.Unlock()
	return s
}

// SubscribeFunc calls fn for every snapshot on its own goroutine. Errors and
// panics from fn are logged and do not stop delivery.
func (p *Publisher) SubscribeFunc(selector string, fn func(Snapshot) error) *Subscription {
	s := p.Subscribe(selector)
	go func() {
		for snap := range s.C() {
			deliver(s, fn, snap)
		}
	}()
	return s
}

func deliver(s *Subscription, fn func(Snapshot) error, snap Snapshot) {
	defer func() {
		if r := recover(); r != nil {
			log.WithFields(log.Fields{"subscriber": s.id, "vehicle": snap.VehicleID}).
				Errorf("subscriber panicked: %v", r)
		}
	}()
	if err := fn(snap); err != nil {
		log.WithFields(log.Fields{"subscriber": s.id, "vehicle": snap.VehicleID}).
			Warnf("subscriber failed: %v", err)
	}
}

// Publish offers every snapshot to the matching subscribers without blocking.
func (p *Publisher) Publish(snaps []Snapshot) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	for _, s := range p.subs {
		for _, snap := range snaps {
			if s.Matches(snap.VehicleID) {
				s.offer(snap)
			}
		}
	}
}

// Len returns the number of live subscriptions
func (p *Publisher) Len() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return len(p.subs)
}

// Close unsubscribes everyone.
func (p *Publisher) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	for id, s := range p.subs {
		close(s.ch)
		delete(p.subs, id)
	}
}

func (p *Publisher) remove(id string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	s, ok := p.subs[id]
	if !ok {
		return
	}
	close(s.ch)
	delete(p.subs, id)
}
