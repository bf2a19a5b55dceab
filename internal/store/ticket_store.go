// Package store is the session-local cache of tickets and of the open
// ticket's conversation. The backend stays the source of truth; the store is
// reconciled by whole-object replacement only.
package store

import (
	"sync"
	"time"

	"github.com/psds-microservice/support-console/internal/clock"
	"github.com/psds-microservice/support-console/internal/metrics"
	"github.com/psds-microservice/support-console/internal/model"
	"github.com/psds-microservice/support-console/internal/resource"
)

type EventType string

const (
	EventTicketsReplaced  EventType = "tickets.replaced"
	EventTicketUpdated    EventType = "ticket.updated"
	EventSelectionChanged EventType = "selection.changed"
	EventMessagesReplaced EventType = "messages.replaced"
	EventMessageAppended  EventType = "message.appended"
	EventScrollLatest     EventType = "scroll.latest"
	EventSessionExpired   EventType = "session.expired"
)

// Event is pushed to subscribers after every store mutation.
type Event struct {
	Type     EventType      `json:"type"`
	TicketID string         `json:"ticketId,omitempty"`
	Ticket   *model.Ticket  `json:"ticket,omitempty"`
	Message  *model.Message `json:"message,omitempty"`
	Count    int            `json:"count,omitempty"`
	Reason   string         `json:"reason,omitempty"`
	At       time.Time      `json:"at"`
}

type TicketStore struct {
	clock   clock.Clock
	tickets *resource.List[model.Ticket]

	mu       sync.RWMutex
	openID   string
	messages *resource.List[model.Message]

	subsMu  sync.Mutex
	subs    map[int]chan Event
	nextSub int
}

func NewTicketStore(c clock.Clock) *TicketStore {
	if c == nil {
		c = clock.Real()
	}
	return &TicketStore{
		clock:    c,
		tickets:  resource.NewList[model.Ticket](),
		messages: resource.NewList[model.Message](),
		subs:     map[int]chan Event{},
	}
}

// ReplaceTickets swaps in a fresh snapshot from the list poller.
func (s *TicketStore) ReplaceTickets(ts []model.Ticket) {
	s.tickets.Replace(ts)
	metrics.TicketsVisible.Set(float64(len(ts)))
	s.emit(Event{Type: EventTicketsReplaced, Count: len(ts)})
}

// PutTicket stores a ticket returned by a confirmed write, replacing the
// entry with the same id.
func (s *TicketStore) PutTicket(t model.Ticket) {
	s.tickets.Upsert(t)
	s.emit(Event{Type: EventTicketUpdated, TicketID: t.ID, Ticket: &t})
}

func (s *TicketStore) Tickets() []model.Ticket {
	return s.tickets.All()
}

// FilterTickets returns the tickets matching keep, in backend order.
func (s *TicketStore) FilterTickets(keep func(model.Ticket) bool) []model.Ticket {
	return s.tickets.Filter(keep)
}

func (s *TicketStore) Ticket(id string) (model.Ticket, bool) {
	return s.tickets.Get(id)
}

// Open makes id the selected ticket and drops the previous conversation.
func (s *TicketStore) Open(id string) {
	s.mu.Lock()
	s.openID = id
	s.messages.Replace(nil)
	s.mu.Unlock()
	s.emit(Event{Type: EventSelectionChanged, TicketID: id})
}

// Close clears the selection. It reports whether a ticket was open.
func (s *TicketStore) Close() bool {
	s.mu.Lock()
	was := s.openID != ""
	s.openID = ""
	s.messages.Replace(nil)
	s.mu.Unlock()
	if was {
		s.emit(Event{Type: EventSelectionChanged})
	}
	return was
}

// Selection returns the open ticket id, if any.
func (s *TicketStore) Selection() (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.openID, s.openID != ""
}

func (s *TicketStore) IsOpen(id string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return id != "" && s.openID == id
}

// ReplaceMessages installs a polled conversation. It is ignored unless
// ticketID is still the open ticket.
func (s *TicketStore) ReplaceMessages(ticketID string, msgs []model.Message) bool {
	s.mu.Lock()
	if s.openID != ticketID {
		s.mu.Unlock()
		return false
	}
	s.messages.Replace(msgs)
	s.mu.Unlock()

	s.emit(Event{Type: EventMessagesReplaced, TicketID: ticketID, Count: len(msgs)})
	s.emit(Event{Type: EventScrollLatest, TicketID: ticketID})
	return true
}

// AppendMessage adds a message returned by a confirmed send. Duplicates by id
// and messages for a ticket that is no longer open are ignored.
func (s *TicketStore) AppendMessage(ticketID string, m model.Message) bool {
	s.mu.Lock()
	if s.openID != ticketID || !s.messages.Append(m) {
		s.mu.Unlock()
		return false
	}
	s.mu.Unlock()

	s.emit(Event{Type: EventMessageAppended, TicketID: ticketID, Message: &m})
	s.emit(Event{Type: EventScrollLatest, TicketID: ticketID})
	return true
}

// Messages returns the open ticket's conversation in backend order.
func (s *TicketStore) Messages() []model.Message {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.messages.All()
}

// Reset empties the store after the session ends and tells subscribers why.
func (s *TicketStore) Reset(reason string) {
	s.tickets.Replace(nil)
	metrics.TicketsVisible.Set(0)
	s.mu.Lock()
	s.openID = ""
	s.messages.Replace(nil)
	s.mu.Unlock()
	s.emit(Event{Type: EventSessionExpired, Reason: reason})
}

// Subscribe returns a channel of store events. Slow subscribers miss events
// rather than block writers. The returned func unsubscribes and closes the
// channel.
func (s *TicketStore) Subscribe(buffer int) (<-chan Event, func()) {
	if buffer <= 0 {
		buffer = 64
	}
	ch := make(chan Event, buffer)

	s.subsMu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = ch
	s.subsMu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			s.subsMu.Lock()
			delete(s.subs, id)
			s.subsMu.Unlock()
			close(ch)
		})
	}
}

func (s *TicketStore) emit(e Event) {
	e.At = s.clock.Now()
	s.subsMu.Lock()
	defer s.subsMu.Unlock()
	for _, ch := range s.subs {
		select {
		case ch <- e:
		default:
		}
	}
}
