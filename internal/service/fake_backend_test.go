package service

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/psds-microservice/support-console/internal/clock"
	"github.com/psds-microservice/support-console/internal/errs"
	"github.com/psds-microservice/support-console/internal/model"
	"github.com/psds-microservice/support-console/internal/session"
)

// fakeBackend behaves like backend.Client against an in-memory server: it
// refuses to run without a session and expires the session on a 401.
type fakeBackend struct {
	mu    sync.Mutex
	sess  *session.Session
	clock clock.Clock

	tickets  []model.Ticket
	messages map[string][]model.Message
	users    []model.AdminUser

	listCalls    int
	messageCalls map[string]int
	requests     int
	lastDelta    int64

	unauthorized bool
	failWrites   error
	nextID       int
}

func newFakeBackend(sess *session.Session, c clock.Clock) *fakeBackend {
	return &fakeBackend{
		sess:         sess,
		clock:        c,
		messages:     map[string][]model.Message{},
		messageCalls: map[string]int{},
	}
}

func (f *fakeBackend) begin() error {
	if f.sess.Token() == "" {
		return errs.ErrNoSession
	}
	f.requests++
	if f.unauthorized {
		return &errs.APIError{StatusCode: http.StatusUnauthorized, Message: "Unauthorized"}
	}
	return nil
}

// call runs fn with the lock held and expires the session outside it.
func (f *fakeBackend) call(fn func() error) error {
	f.mu.Lock()
	err := f.begin()
	if err == nil {
		err = fn()
	}
	f.mu.Unlock()
	if err != nil && errors.Is(err, errs.ErrUnauthorized) {
		f.sess.Expire("backend responded 401")
	}
	return err
}

func (f *fakeBackend) setTickets(ts ...model.Ticket) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.tickets = ts
}

func (f *fakeBackend) counts() (list int, msgs map[string]int, requests int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := map[string]int{}
	for k, v := range f.messageCalls {
		cp[k] = v
	}
	return f.listCalls, cp, f.requests
}

func (f *fakeBackend) find(id string) (int, error) {
	for i, t := range f.tickets {
		if t.ID == id {
			return i, nil
		}
	}
	return 0, &errs.APIError{StatusCode: http.StatusNotFound, Message: "ticket not found"}
}

func (f *fakeBackend) ListTickets(context.Context) ([]model.Ticket, error) {
	var out []model.Ticket
	err := f.call(func() error {
		f.listCalls++
		out = append([]model.Ticket(nil), f.tickets...)
		return nil
	})
	return out, err
}

func (f *fakeBackend) ReplyTicket(_ context.Context, id, reply string) (*model.Ticket, error) {
	var out model.Ticket
	err := f.call(func() error {
		if f.failWrites != nil {
			return f.failWrites
		}
		i, err := f.find(id)
		if err != nil {
			return err
		}
		now := f.clock.Now()
		f.tickets[i].AdminReply = &reply
		f.tickets[i].RepliedAt = &now
		out = f.tickets[i]
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (f *fakeBackend) UpdateTicketStatus(_ context.Context, id string, status model.TicketStatus) (*model.Ticket, error) {
	var out model.Ticket
	err := f.call(func() error {
		if f.failWrites != nil {
			return f.failWrites
		}
		i, err := f.find(id)
		if err != nil {
			return err
		}
		f.tickets[i].Status = status
		out = f.tickets[i]
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (f *fakeBackend) ListMessages(_ context.Context, id string) ([]model.Message, error) {
	var out []model.Message
	err := f.call(func() error {
		f.messageCalls[id]++
		out = append([]model.Message(nil), f.messages[id]...)
		return nil
	})
	return out, err
}

func (f *fakeBackend) SendMessage(_ context.Context, id, body string) (*model.Message, error) {
	var out model.Message
	err := f.call(func() error {
		if f.failWrites != nil {
			return f.failWrites
		}
		f.nextID++
		out = model.Message{
			ID:        fmt.Sprintf("m%d", f.nextID),
			Body:      body,
			IsAdmin:   true,
			SenderID:  "admin-1",
			CreatedAt: f.clock.Now().Add(time.Duration(f.nextID) * time.Millisecond),
		}
		f.messages[id] = append(f.messages[id], out)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (f *fakeBackend) findUser(id string) (int, error) {
	for i, u := range f.users {
		if u.ID == id {
			return i, nil
		}
	}
	return 0, &errs.APIError{StatusCode: http.StatusNotFound, Message: "user not found"}
}

func (f *fakeBackend) ListUsers(context.Context) ([]model.AdminUser, error) {
	var out []model.AdminUser
	err := f.call(func() error {
		out = append([]model.AdminUser(nil), f.users...)
		return nil
	})
	return out, err
}

func (f *fakeBackend) updateUser(id string, fn func(*model.AdminUser)) (*model.AdminUser, error) {
	var out model.AdminUser
	err := f.call(func() error {
		if f.failWrites != nil {
			return f.failWrites
		}
		i, err := f.findUser(id)
		if err != nil {
			return err
		}
		fn(&f.users[i])
		out = f.users[i]
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (f *fakeBackend) ToggleAdmin(_ context.Context, id string) (*model.AdminUser, error) {
	return f.updateUser(id, func(u *model.AdminUser) { u.IsAdmin = !u.IsAdmin })
}

func (f *fakeBackend) SuspendUser(_ context.Context, id, reason string, until time.Time) (*model.AdminUser, error) {
	return f.updateUser(id, func(u *model.AdminUser) {
		u.Status = model.UserStatusSuspended
		u.SuspendReason = &reason
		u.SuspendedUntil = &until
	})
}

func (f *fakeBackend) UnsuspendUser(_ context.Context, id string) (*model.AdminUser, error) {
	return f.updateUser(id, func(u *model.AdminUser) {
		u.Status = model.UserStatusActive
		u.SuspendReason = nil
		u.SuspendedUntil = nil
	})
}

func (f *fakeBackend) AdjustCredits(_ context.Context, id string, delta int64) (*model.CreditBalance, error) {
	var out model.CreditBalance
	err := f.call(func() error {
		if f.failWrites != nil {
			return f.failWrites
		}
		i, err := f.findUser(id)
		if err != nil {
			return err
		}
		f.lastDelta = delta
		f.users[i].Credits += delta
		out = model.CreditBalance{UserID: id, Credits: f.users[i].Credits}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

type fakeProducer struct {
	mu     sync.Mutex
	events []string
}

func (p *fakeProducer) PublishAdminEvent(event string, _ map[string]interface{}) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
}

func (p *fakeProducer) Events() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.events...)
}

type fakeAudit struct {
	mu      sync.Mutex
	entries []model.AuditEntry
}

func (a *fakeAudit) Record(_ context.Context, e model.AuditEntry) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.entries = append(a.entries, e)
}

func (a *fakeAudit) Entries() []model.AuditEntry {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]model.AuditEntry(nil), a.entries...)
}
