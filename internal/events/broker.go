package events

import (
	"sync"
	"time"

	"job-auction/utils"
)

// EventType names a domain event
type EventType string

const (
	BidSubmitted     EventType = "BidSubmitted"
	BidWithdrawn     EventType = "BidWithdrawn"
	AuctionStarted   EventType = "AuctionStarted"
	AuctionClosed    EventType = "AuctionClosed"
	JobAwarded       EventType = "JobAwarded"
	JobStatusChanged EventType = "JobStatusChanged"
)

// Event is the contract every consumer receives
type Event struct {
	JobID     string    `json:"job_id"`
	EventType EventType `json:"event_type"`
	Timestamp time.Time `json:"timestamp"`
	Payload   any       `json:"payload"`
}

// Publisher receives events after the mutation that produced them is committed
type Publisher interface {
	Publish(event Event)
}

// Nop drops every event
type Nop struct{}

func (Nop) Publish(Event) {}

const subscriberBuffer = 32

type subscriber struct {
	jobID string
	ch    chan Event
}

// Broker fans events out to in-process subscribers.
// A slow subscriber loses events instead of stalling the publisher.
type Broker struct {
	mu     sync.RWMutex
	nextID int
	subs   map[int]subscriber
}

func NewBroker() *Broker {
	return &Broker{subs: make(map[int]subscriber)}
}

// Subscribe returns a channel of events for jobID ("" for all jobs) and a cancel func
func (b *Broker) Subscribe(jobID string) (<-chan Event, func()) {
	b.mu.Lock()
	defer b.mu.Unlock()

	id := b.nextID
	b.nextID++
	ch := make(chan Event, subscriberBuffer)
	b.subs[id] = subscriber{jobID: jobID, ch: ch}

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			b.mu.Lock()
			defer b.mu.Unlock()
			delete(b.subs, id)
			close(ch)
		})
	}
}

func (b *Broker) Publish(event Event) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	utils.Debug("event published", map[string]any{
		"job_id":     event.JobID,
		"event_type": event.EventType,
	})

	for id, s := range b.subs {
		if s.jobID != "" && s.jobID != event.JobID {
			continue
		}
		select {
		case s.ch <- event:
		default:
			utils.Warn("event dropped for slow subscriber", map[string]any{
				"subscriber": id,
				"job_id":     event.JobID,
				"event_type": event.EventType,
			})
		}
	}
}

// Subscribers returns the number of live subscriptions
func (b *Broker) Subscribers() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs)
}
