package service

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/psds-microservice/support-console/internal/clock"
	"github.com/psds-microservice/support-console/internal/errs"
	"github.com/psds-microservice/support-console/internal/model"
	"github.com/psds-microservice/support-console/internal/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }

func newUserHarness(t *testing.T) (*UserService, *fakeBackend, *session.Session, *fakeAudit) {
	t.Helper()
	fc := clock.Fake(time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC))
	sess := session.New(fc, nil)
	sess.Set("opaque-token")
	api := newFakeBackend(sess, fc)
	api.users = []model.AdminUser{
		{ID: "u1", Name: "Jisoo", Email: strPtr("jisoo@example.com"), Status: model.UserStatusActive, Credits: 10},
		{ID: "u2", Name: "Minho", Nickname: strPtr("mh"), Status: model.UserStatusActive, Credits: 0},
		{ID: "u3", Name: "Sora", Status: model.UserStatusActive, IsAdmin: true},
	}
	a := &fakeAudit{}
	svc := NewUserService(api, Deps{Session: sess, Audit: a})
	require.NoError(t, svc.Refresh(context.Background()))
	return svc, api, sess, a
}

func TestUsersSearchAndPage(t *testing.T) {
	svc, _, _, _ := newUserHarness(t)

	assert.Equal(t, 3, svc.Users("", 1, 20).Total)
	p := svc.Users("example.com", 1, 20)
	require.Len(t, p.Items, 1)
	assert.Equal(t, "u1", p.Items[0].ID)
	p = svc.Users("mh", 1, 20)
	require.Len(t, p.Items, 1)
	assert.Equal(t, "u2", p.Items[0].ID)

	p = svc.Users("", 2, 2)
	require.Len(t, p.Items, 1)
	assert.Equal(t, "u3", p.Items[0].ID)
}

func TestToggleAdminPatchesFlag(t *testing.T) {
	svc, _, _, a := newUserHarness(t)
	_, err := svc.ToggleAdmin(context.Background(), "u2")
	require.NoError(t, err)

	u, err := svc.User("u2")
	require.NoError(t, err)
	assert.True(t, u.IsAdmin)
	require.Len(t, a.Entries(), 1)
	assert.Equal(t, "toggle_admin", a.Entries()[0].Action)
}

func TestSuspendValidation(t *testing.T) {
	svc, api, _, _ := newUserHarness(t)
	ctx := context.Background()
	_, _, before := api.counts()

	_, err := svc.Suspend(ctx, "u1", " ", time.Now())
	assert.ErrorIs(t, err, errs.ErrMissingReason)
	_, err = svc.Suspend(ctx, "u1", "spam", time.Time{})
	assert.ErrorIs(t, err, errs.ErrMissingUntil)

	_, _, after := api.counts()
	assert.Equal(t, before, after)
}

func TestSuspendAndUnsuspend(t *testing.T) {
	svc, _, _, _ := newUserHarness(t)
	ctx := context.Background()
	until := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

	_, err := svc.Suspend(ctx, "u1", "spam", until)
	require.NoError(t, err)
	u, _ := svc.User("u1")
	assert.Equal(t, model.UserStatusSuspended, u.Status)
	require.NotNil(t, u.SuspendReason)
	assert.Equal(t, "spam", *u.SuspendReason)
	assert.Equal(t, int64(10), u.Credits)

	_, err = svc.Unsuspend(ctx, "u1")
	require.NoError(t, err)
	u, _ = svc.User("u1")
	assert.Equal(t, model.UserStatusActive, u.Status)
	assert.Nil(t, u.SuspendReason)
}

func TestAdjustCredits(t *testing.T) {
	svc, api, _, _ := newUserHarness(t)
	ctx := context.Background()

	bal, err := svc.AdjustCredits(ctx, "u1", 4, CreditDeduct)
	require.NoError(t, err)
	assert.Equal(t, int64(-4), api.lastDelta)
	assert.Equal(t, int64(6), bal.Credits)
	u, _ := svc.User("u1")
	assert.Equal(t, int64(6), u.Credits)

	_, err = svc.AdjustCredits(ctx, "u1", 5, CreditGrant)
	require.NoError(t, err)
	u, _ = svc.User("u1")
	assert.Equal(t, int64(11), u.Credits)
}

func TestAdjustCreditsValidation(t *testing.T) {
	svc, _, _, _ := newUserHarness(t)
	ctx := context.Background()

	_, err := svc.AdjustCredits(ctx, "u1", 0, CreditGrant)
	assert.ErrorIs(t, err, errs.ErrInvalidAmount)
	_, err = svc.AdjustCredits(ctx, "u1", -3, CreditGrant)
	assert.ErrorIs(t, err, errs.ErrInvalidAmount)
	_, err = svc.AdjustCredits(ctx, "u1", 3, "REFUND")
	assert.ErrorIs(t, err, errs.ErrInvalidCreditType)
}

func TestFailedUserCommandLeavesListUntouched(t *testing.T) {
	svc, api, _, a := newUserHarness(t)
	api.failWrites = &errs.APIError{StatusCode: http.StatusBadRequest, Message: "insufficient credits"}

	_, err := svc.AdjustCredits(context.Background(), "u2", 100, CreditDeduct)
	require.Error(t, err)
	u, _ := svc.User("u2")
	assert.Equal(t, int64(0), u.Credits)
	require.Len(t, a.Entries(), 1)
	assert.Contains(t, a.Entries()[0].Error, "insufficient credits")
}

func TestSessionExpiryClearsUsers(t *testing.T) {
	svc, _, sess, _ := newUserHarness(t)
	sess.Expire("401")
	assert.Equal(t, 0, svc.Users("", 1, 20).Total)
	_, err := svc.User("u1")
	assert.ErrorIs(t, err, errs.ErrUserNotFound)
}
