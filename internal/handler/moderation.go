package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/psds-microservice/support-console/internal/service"
)

// ModerationHandler serves the community and catalog tables: posts, post and
// user reports, reviews, check-ins and places.
type ModerationHandler struct {
	svc *service.ModerationService
}

func NewModerationHandler(svc *service.ModerationService) *ModerationHandler {
	return &ModerationHandler{svc: svc}
}

func unresolvedOnly(c *gin.Context) bool {
	v, _ := strconv.ParseBool(c.Query("unresolved"))
	return v
}

func (h *ModerationHandler) Posts(c *gin.Context) {
	page, size := pageParams(c)
	c.JSON(http.StatusOK, h.svc.Posts(c.Query("q"), page, size))
}

func (h *ModerationHandler) RefreshPosts(c *gin.Context) {
	if err := h.svc.RefreshPosts(c.Request.Context()); err != nil {
		respondError(c, err)
		return
	}
	h.Posts(c)
}

func (h *ModerationHandler) TogglePostHidden(c *gin.Context) {
	p, err := h.svc.TogglePostHidden(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

func (h *ModerationHandler) TogglePostPinned(c *gin.Context) {
	p, err := h.svc.TogglePostPinned(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

func (h *ModerationHandler) DeletePost(c *gin.Context) {
	if err := h.svc.DeletePost(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *ModerationHandler) PostReports(c *gin.Context) {
	page, size := pageParams(c)
	c.JSON(http.StatusOK, h.svc.PostReports(page, size))
}

// RefreshPostReports reloads the reports; ?unresolved=true keeps only open ones.
func (h *ModerationHandler) RefreshPostReports(c *gin.Context) {
	if err := h.svc.RefreshPostReports(c.Request.Context(), unresolvedOnly(c)); err != nil {
		respondError(c, err)
		return
	}
	h.PostReports(c)
}

type resolveReportRequest struct {
	HidePost bool `json:"hidePost"`
}

func (h *ModerationHandler) ResolvePostReport(c *gin.Context) {
	var req resolveReportRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			badBody(c)
			return
		}
	}
	r, err := h.svc.ResolvePostReport(c.Request.Context(), c.Param("id"), req.HidePost)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, r)
}

func (h *ModerationHandler) UserReports(c *gin.Context) {
	page, size := pageParams(c)
	c.JSON(http.StatusOK, h.svc.UserReports(page, size))
}

func (h *ModerationHandler) RefreshUserReports(c *gin.Context) {
	if err := h.svc.RefreshUserReports(c.Request.Context(), unresolvedOnly(c)); err != nil {
		respondError(c, err)
		return
	}
	h.UserReports(c)
}

func (h *ModerationHandler) ResolveUserReport(c *gin.Context) {
	r, err := h.svc.ResolveUserReport(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, r)
}

func (h *ModerationHandler) Reviews(c *gin.Context) {
	page, size := pageParams(c)
	c.JSON(http.StatusOK, h.svc.Reviews(page, size))
}

func (h *ModerationHandler) RefreshReviews(c *gin.Context) {
	if err := h.svc.RefreshReviews(c.Request.Context()); err != nil {
		respondError(c, err)
		return
	}
	h.Reviews(c)
}

func (h *ModerationHandler) DeleteReview(c *gin.Context) {
	if err := h.svc.DeleteReview(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *ModerationHandler) CheckIns(c *gin.Context) {
	page, size := pageParams(c)
	c.JSON(http.StatusOK, h.svc.CheckIns(page, size))
}

func (h *ModerationHandler) RefreshCheckIns(c *gin.Context) {
	if err := h.svc.RefreshCheckIns(c.Request.Context()); err != nil {
		respondError(c, err)
		return
	}
	h.CheckIns(c)
}

func (h *ModerationHandler) DeleteCheckIn(c *gin.Context) {
	if err := h.svc.DeleteCheckIn(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *ModerationHandler) Places(c *gin.Context) {
	page, size := pageParams(c)
	c.JSON(http.StatusOK, h.svc.Places(c.Query("q"), page, size))
}

func (h *ModerationHandler) RefreshPlaces(c *gin.Context) {
	if err := h.svc.RefreshPlaces(c.Request.Context()); err != nil {
		respondError(c, err)
		return
	}
	h.Places(c)
}

func (h *ModerationHandler) TogglePlaceActive(c *gin.Context) {
	p, err := h.svc.TogglePlaceActive(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}
