package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/psds-microservice/support-console/internal/errs"
	"github.com/psds-microservice/support-console/internal/model"
	"github.com/psds-microservice/support-console/internal/session"
)

type Authenticator interface {
	Login(ctx context.Context, email, password string) (*model.Admin, error)
	Me(ctx context.Context) (*model.Admin, error)
}

// SessionState is what the UI needs to decide between the console and the
// login screen.
type SessionState struct {
	Active    bool         `json:"active"`
	Admin     *model.Admin `json:"admin,omitempty"`
	ExpiresAt *time.Time   `json:"expiresAt,omitempty"`
}

// SessionService starts the ticket loops on login and tears them down on
// logout. Expiry is handled by the callbacks registered on the session.
type SessionService struct {
	auth    Authenticator
	session *session.Session
	tickets *TicketService
	users   *UserService
	resets  []func()
	runCtx  context.Context
	logger  *slog.Logger
}

func NewSessionService(runCtx context.Context, auth Authenticator, sess *session.Session, tickets *TicketService, users *UserService, logger *slog.Logger) *SessionService {
	if logger == nil {
		logger = slog.Default()
	}
	return &SessionService{
		auth:    auth,
		session: sess,
		tickets: tickets,
		users:   users,
		runCtx:  runCtx,
		logger:  logger.With("component", "session"),
	}
}

func (s *SessionService) Login(ctx context.Context, email, password string) (*model.Admin, error) {
	admin, err := s.auth.Login(ctx, email, password)
	if err != nil {
		return nil, err
	}
	s.logger.Info("admin logged in", "admin_id", admin.ID)
	s.tickets.Start(s.runCtx)
	return admin, nil
}

// Restore adopts an existing token (ADMIN_TOKEN) after checking it belongs
// to an admin.
func (s *SessionService) Restore(ctx context.Context, token string) (*model.Admin, error) {
	s.session.Set(token)
	admin, err := s.auth.Me(ctx)
	if err != nil {
		s.session.Logout()
		return nil, err
	}
	if !admin.IsAdmin {
		s.session.Logout()
		return nil, errs.ErrNotAdmin
	}
	s.session.SetAdmin(*admin)
	s.logger.Info("session restored", "admin_id", admin.ID)
	s.tickets.Start(s.runCtx)
	return admin, nil
}

// ResetOnLogout registers extra local state to drop when the admin logs out.
func (s *SessionService) ResetOnLogout(fns ...func()) {
	s.resets = append(s.resets, fns...)
}

func (s *SessionService) Logout() {
	s.tickets.Teardown("logout")
	if s.users != nil {
		s.users.Reset()
	}
	for _, reset := range s.resets {
		reset()
	}
	s.session.Logout()
	s.logger.Info("admin logged out")
}

func (s *SessionService) State() SessionState {
	st := SessionState{Active: s.session.Active()}
	if a, ok := s.session.Admin(); ok {
		st.Admin = &a
	}
	if exp := s.session.ExpiresAt(); !exp.IsZero() {
		st.ExpiresAt = &exp
	}
	return st
}
