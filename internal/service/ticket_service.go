package service

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/psds-microservice/support-console/internal/clock"
	"github.com/psds-microservice/support-console/internal/draft"
	"github.com/psds-microservice/support-console/internal/errs"
	"github.com/psds-microservice/support-console/internal/kafka"
	"github.com/psds-microservice/support-console/internal/model"
	"github.com/psds-microservice/support-console/internal/poller"
	"github.com/psds-microservice/support-console/internal/resource"
	"github.com/psds-microservice/support-console/internal/store"
)

const (
	DefaultListInterval = 15 * time.Second
	DefaultChatInterval = 10 * time.Second
)

// TicketAPI is the part of the backend client the ticket service uses.
type TicketAPI interface {
	ListTickets(ctx context.Context) ([]model.Ticket, error)
	ReplyTicket(ctx context.Context, id, reply string) (*model.Ticket, error)
	UpdateTicketStatus(ctx context.Context, id string, status model.TicketStatus) (*model.Ticket, error)
	ListMessages(ctx context.Context, id string) ([]model.Message, error)
	SendMessage(ctx context.Context, id, body string) (*model.Message, error)
}

type TicketServiceConfig struct {
	ListInterval time.Duration
	ChatInterval time.Duration
	Clock        clock.Clock
}

// TicketFilter narrows the ticket list. Empty fields match everything.
type TicketFilter struct {
	Status model.TicketStatus
	Type   model.TicketType
	Query  string
}

func (f TicketFilter) match(t model.Ticket) bool {
	if f.Status != "" && t.Status != f.Status {
		return false
	}
	if f.Type != "" && t.Type != f.Type {
		return false
	}
	if f.Query == "" {
		return true
	}
	q := strings.ToLower(f.Query)
	return strings.Contains(strings.ToLower(t.Title), q) ||
		strings.Contains(strings.ToLower(t.Body), q) ||
		strings.Contains(strings.ToLower(t.User.Name), q) ||
		strings.Contains(strings.ToLower(t.User.Contact()), q)
}

// TicketService drives the two pollers and the ticket commands against one
// TicketStore.
type TicketService struct {
	api    TicketAPI
	store  *store.TicketStore
	drafts draft.Store
	log    commandLog
	clock  clock.Clock
	cfg    TicketServiceConfig

	list *poller.Poller[[]model.Ticket]

	// opMu serializes selection changes; mu guards the fields below.
	opMu   sync.Mutex
	mu     sync.Mutex
	runCtx context.Context
	chat   *poller.Poller[[]model.Message]
}

func NewTicketService(api TicketAPI, st *store.TicketStore, drafts draft.Store, cfg TicketServiceConfig, deps Deps) (*TicketService, error) {
	if cfg.ListInterval <= 0 {
		cfg.ListInterval = DefaultListInterval
	}
	if cfg.ChatInterval <= 0 {
		cfg.ChatInterval = DefaultChatInterval
	}
	if cfg.Clock == nil {
		cfg.Clock = clock.Real()
	}
	if drafts == nil {
		drafts = draft.NewMemoryStore()
	}
	s := &TicketService{
		api:    api,
		store:  st,
		drafts: drafts,
		log:    newCommandLog(deps, "tickets"),
		clock:  cfg.Clock,
		cfg:    cfg,
		runCtx: context.Background(),
	}

	list, err := poller.New(poller.Config[[]model.Ticket]{
		Name:     "tickets",
		Interval: cfg.ListInterval,
		Clock:    cfg.Clock,
		Logger:   s.log.logger,
		Fetch:    api.ListTickets,
		Apply:    st.ReplaceTickets,
	})
	if err != nil {
		return nil, fmt.Errorf("ticket list poller: %w", err)
	}
	s.list = list

	if deps.Session != nil {
		deps.Session.OnUnauthorized(s.Teardown)
	}
	return s, nil
}

// Start begins list polling and resumes conversation polling for an open
// CHAT ticket. It is safe to call again after Stop or Teardown.
func (s *TicketService) Start(ctx context.Context) {
	s.mu.Lock()
	s.runCtx = ctx
	s.mu.Unlock()

	s.list.Start(ctx)

	s.opMu.Lock()
	defer s.opMu.Unlock()
	if s.ChatRunning() {
		return
	}
	if id, ok := s.store.Selection(); ok {
		if t, found := s.store.Ticket(id); found && t.IsChat() {
			s.stopChat()
			s.startChat(id)
		}
	}
}

// Stop halts both pollers; the store keeps its contents.
func (s *TicketService) Stop() {
	s.list.Stop()
	s.stopChat()
}

// Teardown runs when the session ends: pollers stop and the store is emptied.
func (s *TicketService) Teardown(reason string) {
	s.Stop()
	s.store.Reset(reason)
}

// ListRunning and ChatRunning report poller state.
func (s *TicketService) ListRunning() bool { return s.list.Running() }

func (s *TicketService) ChatRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.chat != nil && s.chat.Running()
}

func (s *TicketService) Tickets(f TicketFilter, page, size int) resource.Page[model.Ticket] {
	return resource.Paginate(s.store.FilterTickets(f.match), page, size)
}

func (s *TicketService) Ticket(id string) (model.Ticket, error) {
	t, ok := s.store.Ticket(id)
	if !ok {
		return model.Ticket{}, errs.ErrTicketNotFound
	}
	return t, nil
}

// Selection returns the open ticket and its conversation.
func (s *TicketService) Selection() (*model.Ticket, []model.Message) {
	id, ok := s.store.Selection()
	if !ok {
		return nil, nil
	}
	t, found := s.store.Ticket(id)
	if !found {
		// The ticket left the list; keep showing the selection by id.
		t = model.Ticket{ID: id}
	}
	return &t, s.store.Messages()
}

// Open selects a ticket. The previous conversation poller is stopped before a
// new one starts; only CHAT tickets are polled.
func (s *TicketService) Open(id string) (model.Ticket, error) {
	t, ok := s.store.Ticket(id)
	if !ok {
		return model.Ticket{}, errs.ErrTicketNotFound
	}

	s.opMu.Lock()
	defer s.opMu.Unlock()
	s.stopChat()
	s.store.Open(id)
	if t.IsChat() {
		s.startChat(id)
	}
	return t, nil
}

// Close clears the selection and stops conversation polling.
func (s *TicketService) Close() {
	s.opMu.Lock()
	defer s.opMu.Unlock()
	s.stopChat()
	s.store.Close()
}

func (s *TicketService) startChat(id string) {
	p, err := poller.New(poller.Config[[]model.Message]{
		Name:     "messages",
		Interval: s.cfg.ChatInterval,
		Clock:    s.clock,
		Logger:   s.log.logger.With("ticket_id", id),
		Fetch: func(ctx context.Context) ([]model.Message, error) {
			return s.api.ListMessages(ctx, id)
		},
		Apply: func(msgs []model.Message) {
			s.store.ReplaceMessages(id, msgs)
		},
	})
	if err != nil {
		s.log.logger.Error("conversation poller", "error", err)
		return
	}

	s.mu.Lock()
	s.chat = p
	ctx := s.runCtx
	s.mu.Unlock()

	p.Start(ctx)
}

func (s *TicketService) stopChat() {
	s.mu.Lock()
	p := s.chat
	s.chat = nil
	s.mu.Unlock()
	if p != nil {
		p.Stop()
	}
}

// SendMessage posts a staff message to a CHAT ticket. The text stays in the
// ticket's draft slot until the backend confirms it.
func (s *TicketService) SendMessage(ctx context.Context, ticketID, text string) (*model.Message, error) {
	const name = "send_message"
	body := strings.TrimSpace(text)
	if body == "" {
		return nil, s.log.invalid(name, errs.ErrEmptyText)
	}
	t, ok := s.store.Ticket(ticketID)
	if !ok {
		return nil, s.log.invalid(name, errs.ErrTicketNotFound)
	}
	if !t.IsChat() {
		return nil, s.log.invalid(name, errs.ErrNotChatTicket)
	}
	s.holdDraft(ctx, ticketID, text)

	msg, err := s.api.SendMessage(ctx, ticketID, body)
	cmd := command{Name: name, Event: kafka.EventTicketMessageSent, TargetKind: "ticket", TargetID: ticketID}
	if err != nil {
		return nil, s.log.done(ctx, cmd, err)
	}

	s.store.AppendMessage(ticketID, *msg)
	s.releaseDraft(ctx, ticketID)
	cmd.Payload = map[string]interface{}{"message_id": msg.ID}
	return msg, s.log.done(ctx, cmd, nil)
}

// ReplyTicket answers an FAQ ticket. On success the returned ticket replaces
// the stored one and the detail panel closes; on failure nothing changes.
func (s *TicketService) ReplyTicket(ctx context.Context, ticketID, text string) (*model.Ticket, error) {
	const name = "reply_ticket"
	reply := strings.TrimSpace(text)
	if reply == "" {
		return nil, s.log.invalid(name, errs.ErrEmptyText)
	}
	t, ok := s.store.Ticket(ticketID)
	if !ok {
		return nil, s.log.invalid(name, errs.ErrTicketNotFound)
	}
	if t.IsChat() {
		return nil, s.log.invalid(name, errs.ErrNotFAQTicket)
	}
	s.holdDraft(ctx, ticketID, text)

	updated, err := s.api.ReplyTicket(ctx, ticketID, reply)
	cmd := command{Name: name, Event: kafka.EventTicketReplied, TargetKind: "ticket", TargetID: ticketID}
	if err != nil {
		return nil, s.log.done(ctx, cmd, err)
	}

	s.store.PutTicket(*updated)
	if s.store.IsOpen(ticketID) {
		s.Close()
	}
	s.releaseDraft(ctx, ticketID)
	cmd.Payload = map[string]interface{}{"status": string(updated.Status)}
	return updated, s.log.done(ctx, cmd, nil)
}

// SetStatus changes a ticket's status. Any status may follow any other; the
// backend decides what is legal.
func (s *TicketService) SetStatus(ctx context.Context, ticketID string, status model.TicketStatus) (*model.Ticket, error) {
	const name = "set_status"
	if !status.Valid() {
		return nil, s.log.invalid(name, errs.ErrInvalidStatus)
	}

	updated, err := s.api.UpdateTicketStatus(ctx, ticketID, status)
	cmd := command{
		Name: name, Event: kafka.EventTicketStatusChanged,
		TargetKind: "ticket", TargetID: ticketID, Detail: string(status),
	}
	if err != nil {
		return nil, s.log.done(ctx, cmd, err)
	}

	s.store.PutTicket(*updated)
	cmd.Payload = map[string]interface{}{"status": string(updated.Status)}
	return updated, s.log.done(ctx, cmd, nil)
}

func (s *TicketService) Draft(ctx context.Context, ticketID string) (string, error) {
	return s.drafts.Get(ctx, ticketID)
}

func (s *TicketService) SaveDraft(ctx context.Context, ticketID, text string) error {
	return s.drafts.Put(ctx, ticketID, text)
}

func (s *TicketService) holdDraft(ctx context.Context, ticketID, text string) {
	if err := s.drafts.Put(ctx, ticketID, text); err != nil {
		s.log.logger.Warn("save draft", "ticket_id", ticketID, "error", err)
	}
}

func (s *TicketService) releaseDraft(ctx context.Context, ticketID string) {
	if err := s.drafts.Delete(context.WithoutCancel(ctx), ticketID); err != nil {
		s.log.logger.Warn("clear draft", "ticket_id", ticketID, "error", err)
	}
}
