package backend

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/psds-microservice/support-console/internal/model"
)

// ListLimit is the page size the console asks for when loading a moderation
// table; the table is then paged locally.
const ListLimit = 100

const (
	postsPath       = "/community/admin/posts"
	postReportsPath = "/community/admin/reports"
	userReportsPath = "/support/admin/user-reports"
	reviewsPath     = "/reviews/admin"
	checkInsPath    = "/checkins/admin"
	placesPath      = "/places/admin"
)

// paged is the {items, total} envelope of the paginated admin lists.
type paged[T any] struct {
	Items []T `json:"items"`
	Total int `json:"total"`
}

func itemPath(base, id, suffix string) string {
	return fmt.Sprintf("%s/%s%s", base, url.PathEscape(id), suffix)
}

func listQuery(base string, unresolvedOnly bool) string {
	q := url.Values{}
	q.Set("page", "1")
	q.Set("limit", strconv.Itoa(ListLimit))
	if unresolvedOnly {
		q.Set("unresolved", "true")
	}
	return base + "?" + q.Encode()
}

func listPaged[T any](ctx context.Context, c *Client, path string) ([]T, error) {
	var result paged[T]
	if err := c.do(ctx, http.MethodGet, path, nil, &result); err != nil {
		return nil, err
	}
	return result.Items, nil
}

func patchItem[T any](ctx context.Context, c *Client, path string, body interface{}) (*T, error) {
	var result T
	if err := c.do(ctx, http.MethodPatch, path, body, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *Client) ListPosts(ctx context.Context) ([]model.Post, error) {
	return listPaged[model.Post](ctx, c, listQuery(postsPath, false))
}

func (c *Client) TogglePostHidden(ctx context.Context, id string) (*model.Post, error) {
	return patchItem[model.Post](ctx, c, itemPath(postsPath, id, "/toggle-hidden"), nil)
}

func (c *Client) TogglePostPinned(ctx context.Context, id string) (*model.Post, error) {
	return patchItem[model.Post](ctx, c, itemPath(postsPath, id, "/toggle-pinned"), nil)
}

func (c *Client) DeletePost(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, itemPath(postsPath, id, ""), nil, nil)
}

func (c *Client) ListPostReports(ctx context.Context, unresolvedOnly bool) ([]model.PostReport, error) {
	return listPaged[model.PostReport](ctx, c, listQuery(postReportsPath, unresolvedOnly))
}

// ResolvePostReport closes a report; with hidePost the backend also hides the
// reported post.
func (c *Client) ResolvePostReport(ctx context.Context, id string, hidePost bool) (*model.PostReport, error) {
	body := map[string]bool{"hidePost": hidePost}
	return patchItem[model.PostReport](ctx, c, itemPath(postReportsPath, id, "/resolve"), body)
}

func (c *Client) ListUserReports(ctx context.Context, unresolvedOnly bool) ([]model.UserReport, error) {
	return listPaged[model.UserReport](ctx, c, listQuery(userReportsPath, unresolvedOnly))
}

func (c *Client) ResolveUserReport(ctx context.Context, id string) (*model.UserReport, error) {
	return patchItem[model.UserReport](ctx, c, itemPath(userReportsPath, id, "/resolve"), nil)
}

func (c *Client) ListReviews(ctx context.Context) ([]model.Review, error) {
	return listPaged[model.Review](ctx, c, listQuery(reviewsPath, false))
}

func (c *Client) DeleteReview(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, itemPath(reviewsPath, id, ""), nil, nil)
}

func (c *Client) ListCheckIns(ctx context.Context) ([]model.CheckIn, error) {
	return listPaged[model.CheckIn](ctx, c, listQuery(checkInsPath, false))
}

func (c *Client) DeleteCheckIn(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, itemPath(checkInsPath, id, ""), nil, nil)
}

func (c *Client) ListPlaces(ctx context.Context) ([]model.Place, error) {
	return listPaged[model.Place](ctx, c, listQuery(placesPath, false))
}

func (c *Client) TogglePlaceActive(ctx context.Context, id string) (*model.Place, error) {
	return patchItem[model.Place](ctx, c, itemPath(placesPath, id, "/toggle-active"), nil)
}
