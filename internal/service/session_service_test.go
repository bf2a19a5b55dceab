package service

import (
	"context"
	"testing"

	"github.com/psds-microservice/support-console/internal/errs"
	"github.com/psds-microservice/support-console/internal/model"
	"github.com/psds-microservice/support-console/internal/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeAuth struct {
	sess  *session.Session
	me    model.Admin
	token string
}

func (a *fakeAuth) Login(_ context.Context, email, password string) (*model.Admin, error) {
	if email == "" || password == "" {
		return nil, errs.ErrMissingLogin
	}
	if !a.me.IsAdmin {
		return nil, errs.ErrNotAdmin
	}
	a.sess.Set(a.token)
	a.sess.SetAdmin(a.me)
	me := a.me
	return &me, nil
}

func (a *fakeAuth) Me(context.Context) (*model.Admin, error) {
	me := a.me
	return &me, nil
}

func TestLoginStartsPollingAndLogoutStops(t *testing.T) {
	h := newHarness(t, chatTicket("c1"))
	h.sess.Logout()
	auth := &fakeAuth{sess: h.sess, me: model.Admin{ID: "a1", Name: "Kim", IsAdmin: true}, token: "tok"}
	svc := NewSessionService(context.Background(), auth, h.sess, h.svc, nil, nil)

	assert.False(t, svc.State().Active)
	_, err := svc.Login(context.Background(), "kim@example.com", "pw")
	require.NoError(t, err)
	assert.True(t, h.svc.ListRunning())
	assert.Len(t, h.store.Tickets(), 1)

	st := svc.State()
	assert.True(t, st.Active)
	require.NotNil(t, st.Admin)
	assert.Equal(t, "a1", st.Admin.ID)

	svc.Logout()
	assert.False(t, h.svc.ListRunning())
	assert.Empty(t, h.store.Tickets())
	assert.False(t, svc.State().Active)
}

func TestRestoreRejectsNonAdmin(t *testing.T) {
	h := newHarness(t)
	h.sess.Logout()
	auth := &fakeAuth{sess: h.sess, me: model.Admin{ID: "u1", IsAdmin: false}}
	svc := NewSessionService(context.Background(), auth, h.sess, h.svc, nil, nil)

	_, err := svc.Restore(context.Background(), "user-token")
	assert.ErrorIs(t, err, errs.ErrNotAdmin)
	assert.Empty(t, h.sess.Token())
	assert.False(t, h.svc.ListRunning())
}

func TestRestoreAdoptsAdminToken(t *testing.T) {
	h := newHarness(t, faqTicket("f1"))
	h.sess.Logout()
	auth := &fakeAuth{sess: h.sess, me: model.Admin{ID: "a1", Name: "Kim", IsAdmin: true}}
	svc := NewSessionService(context.Background(), auth, h.sess, h.svc, nil, nil)

	_, err := svc.Restore(context.Background(), "env-token")
	require.NoError(t, err)
	assert.Equal(t, "env-token", h.sess.Token())
	assert.True(t, h.svc.ListRunning())
}
