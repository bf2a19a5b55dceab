package backend

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/psds-microservice/support-console/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListPostReportsUnwrapsPage(t *testing.T) {
	c, sess := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/community/admin/reports", r.URL.Path)
		assert.Equal(t, "1", r.URL.Query().Get("page"))
		assert.Equal(t, "100", r.URL.Query().Get("limit"))
		assert.Equal(t, "true", r.URL.Query().Get("unresolved"))
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"items": []model.PostReport{{ID: "r1", Reason: "SPAM", Post: model.PostRef{ID: "p1"}}},
			"total": 1,
		})
	})
	sess.Set("tok")

	reports, err := c.ListPostReports(context.Background(), true)
	require.NoError(t, err)
	require.Len(t, reports, 1)
	assert.Equal(t, "p1", reports[0].Post.ID)
}

func TestResolvePostReportSendsHidePost(t *testing.T) {
	c, sess := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPatch, r.Method)
		assert.Equal(t, "/api/community/admin/reports/r%201/resolve", r.URL.EscapedPath())
		var body map[string]bool
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.True(t, body["hidePost"])
		writeJSON(w, http.StatusOK, model.PostReport{ID: "r 1", IsResolved: true, Post: model.PostRef{ID: "p1", IsHidden: true}})
	})
	sess.Set("tok")

	got, err := c.ResolvePostReport(context.Background(), "r 1", true)
	require.NoError(t, err)
	assert.True(t, got.IsResolved)
	assert.True(t, got.Post.IsHidden)
}

func TestDeleteReviewAcceptsEmptyBody(t *testing.T) {
	c, sess := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodDelete, r.Method)
		assert.Equal(t, "/api/reviews/admin/rv1", r.URL.Path)
		w.WriteHeader(http.StatusNoContent)
	})
	sess.Set("tok")

	require.NoError(t, c.DeleteReview(context.Background(), "rv1"))
}
