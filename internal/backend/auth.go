package backend

import (
	"context"
	"net/http"

	"github.com/psds-microservice/support-console/internal/errs"
	"github.com/psds-microservice/support-console/internal/model"
)

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	AccessToken string `json:"accessToken"`
}

// Login exchanges credentials for a token, stores it in the session and
// checks that the account is an admin. A non-admin token is dropped.
func (c *Client) Login(ctx context.Context, email, password string) (*model.Admin, error) {
	if email == "" || password == "" {
		return nil, errs.ErrMissingLogin
	}
	var lr loginResponse
	if err := c.do(ctx, http.MethodPost, loginPath, loginRequest{Email: email, Password: password}, &lr); err != nil {
		return nil, err
	}
	c.session.Set(lr.AccessToken)

	me, err := c.Me(ctx)
	if err != nil {
		c.session.Logout()
		return nil, err
	}
	if !me.IsAdmin {
		c.session.Logout()
		return nil, errs.ErrNotAdmin
	}
	c.session.SetAdmin(*me)
	return me, nil
}

func (c *Client) Me(ctx context.Context) (*model.Admin, error) {
	var result model.Admin
	if err := c.do(ctx, http.MethodGet, "/auth/me", nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}
