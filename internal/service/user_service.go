package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/psds-microservice/support-console/internal/errs"
	"github.com/psds-microservice/support-console/internal/kafka"
	"github.com/psds-microservice/support-console/internal/model"
	"github.com/psds-microservice/support-console/internal/resource"
)

type UserAPI interface {
	ListUsers(ctx context.Context) ([]model.AdminUser, error)
	ToggleAdmin(ctx context.Context, id string) (*model.AdminUser, error)
	SuspendUser(ctx context.Context, id, reason string, until time.Time) (*model.AdminUser, error)
	UnsuspendUser(ctx context.Context, id string) (*model.AdminUser, error)
	AdjustCredits(ctx context.Context, id string, delta int64) (*model.CreditBalance, error)
}

type CreditType string

const (
	CreditGrant  CreditType = "GRANT"
	CreditDeduct CreditType = "DEDUCT"
)

// UserService is the users/credits admin resource: fetched on demand, then
// patched by id from each confirmed write.
type UserService struct {
	api   UserAPI
	users *resource.List[model.AdminUser]
	log   commandLog
}

func NewUserService(api UserAPI, deps Deps) *UserService {
	s := &UserService{
		api:   api,
		users: resource.NewList[model.AdminUser](),
		log:   newCommandLog(deps, "users"),
	}
	if deps.Session != nil {
		deps.Session.OnUnauthorized(func(string) { s.Reset() })
	}
	return s
}

// Refresh replaces the local user list with the backend's.
func (s *UserService) Refresh(ctx context.Context) error {
	users, err := s.api.ListUsers(ctx)
	if err != nil {
		return fmt.Errorf("list users: %w", err)
	}
	s.users.Replace(users)
	return nil
}

// Reset drops the local list, e.g. when the session ends.
func (s *UserService) Reset() {
	s.users.Replace(nil)
}

// Users filters by name, email or nickname and paginates the local list.
func (s *UserService) Users(q string, page, size int) resource.Page[model.AdminUser] {
	q = strings.TrimSpace(q)
	return resource.Paginate(s.users.Filter(func(u model.AdminUser) bool { return u.Matches(q) }), page, size)
}

func (s *UserService) User(id string) (model.AdminUser, error) {
	u, ok := s.users.Get(id)
	if !ok {
		return model.AdminUser{}, errs.ErrUserNotFound
	}
	return u, nil
}

func (s *UserService) ToggleAdmin(ctx context.Context, id string) (*model.AdminUser, error) {
	updated, err := s.api.ToggleAdmin(ctx, id)
	cmd := command{Name: "toggle_admin", Event: kafka.EventUserAdminToggled, TargetKind: "user", TargetID: id}
	if err != nil {
		return nil, s.log.done(ctx, cmd, err)
	}
	s.patch(id, func(u *model.AdminUser) { u.IsAdmin = updated.IsAdmin })
	cmd.Payload = map[string]interface{}{"is_admin": updated.IsAdmin}
	return updated, s.log.done(ctx, cmd, nil)
}

func (s *UserService) Suspend(ctx context.Context, id, reason string, until time.Time) (*model.AdminUser, error) {
	const name = "suspend_user"
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return nil, s.log.invalid(name, errs.ErrMissingReason)
	}
	if until.IsZero() {
		return nil, s.log.invalid(name, errs.ErrMissingUntil)
	}

	updated, err := s.api.SuspendUser(ctx, id, reason, until)
	cmd := command{Name: name, Event: kafka.EventUserSuspended, TargetKind: "user", TargetID: id, Detail: reason}
	if err != nil {
		return nil, s.log.done(ctx, cmd, err)
	}
	s.patch(id, func(u *model.AdminUser) {
		u.Status = updated.Status
		u.SuspendReason = updated.SuspendReason
		u.SuspendedUntil = updated.SuspendedUntil
	})
	cmd.Payload = map[string]interface{}{"reason": reason, "suspended_until": until.UTC().Format(time.RFC3339)}
	return updated, s.log.done(ctx, cmd, nil)
}

func (s *UserService) Unsuspend(ctx context.Context, id string) (*model.AdminUser, error) {
	updated, err := s.api.UnsuspendUser(ctx, id)
	cmd := command{Name: "unsuspend_user", Event: kafka.EventUserUnsuspended, TargetKind: "user", TargetID: id}
	if err != nil {
		return nil, s.log.done(ctx, cmd, err)
	}
	s.patch(id, func(u *model.AdminUser) {
		u.Status = updated.Status
		u.SuspendReason = updated.SuspendReason
		u.SuspendedUntil = updated.SuspendedUntil
	})
	return updated, s.log.done(ctx, cmd, nil)
}

// AdjustCredits grants or deducts a positive amount; only the balance is
// patched locally.
func (s *UserService) AdjustCredits(ctx context.Context, id string, amount int64, typ CreditType) (*model.CreditBalance, error) {
	const name = "adjust_credits"
	if amount <= 0 {
		return nil, s.log.invalid(name, errs.ErrInvalidAmount)
	}
	delta := amount
	switch typ {
	case CreditGrant:
	case CreditDeduct:
		delta = -amount
	default:
		return nil, s.log.invalid(name, errs.ErrInvalidCreditType)
	}

	balance, err := s.api.AdjustCredits(ctx, id, delta)
	cmd := command{
		Name: name, Event: kafka.EventUserCreditsAdjusted,
		TargetKind: "user", TargetID: id, Detail: fmt.Sprintf("%+d", delta),
	}
	if err != nil {
		return nil, s.log.done(ctx, cmd, err)
	}
	s.patch(id, func(u *model.AdminUser) { u.Credits = balance.Credits })
	cmd.Payload = map[string]interface{}{"delta": delta, "credits": balance.Credits}
	return balance, s.log.done(ctx, cmd, nil)
}

func (s *UserService) patch(id string, fn func(*model.AdminUser)) {
	if !s.users.Patch(id, fn) {
		s.log.logger.Debug("patched user is not in the local list", "user_id", id)
	}
}
