package backend

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/psds-microservice/support-console/internal/model"
)

func userPath(id, suffix string) string {
	return fmt.Sprintf("/support/admin/users/%s%s", url.PathEscape(id), suffix)
}

func (c *Client) ListUsers(ctx context.Context) ([]model.AdminUser, error) {
	var result []model.AdminUser
	if err := c.do(ctx, http.MethodGet, "/support/admin/users", nil, &result); err != nil {
		return nil, err
	}
	return result, nil
}

func (c *Client) ToggleAdmin(ctx context.Context, id string) (*model.AdminUser, error) {
	var result model.AdminUser
	if err := c.do(ctx, http.MethodPatch, userPath(id, "/toggle-admin"), nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

type suspendRequest struct {
	Reason         string `json:"reason"`
	SuspendedUntil string `json:"suspendedUntil"`
}

func (c *Client) SuspendUser(ctx context.Context, id, reason string, until time.Time) (*model.AdminUser, error) {
	var result model.AdminUser
	body := suspendRequest{Reason: reason, SuspendedUntil: until.UTC().Format(time.RFC3339)}
	if err := c.do(ctx, http.MethodPatch, userPath(id, "/suspend"), body, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *Client) UnsuspendUser(ctx context.Context, id string) (*model.AdminUser, error) {
	var result model.AdminUser
	if err := c.do(ctx, http.MethodPatch, userPath(id, "/unsuspend"), nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// AdjustCredits applies a signed delta and returns the new balance.
func (c *Client) AdjustCredits(ctx context.Context, id string, delta int64) (*model.CreditBalance, error) {
	var result model.CreditBalance
	body := map[string]int64{"amount": delta}
	if err := c.do(ctx, http.MethodPatch, userPath(id, "/credits"), body, &result); err != nil {
		return nil, err
	}
	if result.UserID == "" {
		result.UserID = id
	}
	return &result, nil
}
