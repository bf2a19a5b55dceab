package handler

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/psds-microservice/support-console/internal/service"
)

type UserHandler struct {
	svc *service.UserService
}

func NewUserHandler(svc *service.UserService) *UserHandler {
	return &UserHandler{svc: svc}
}

func (h *UserHandler) List(c *gin.Context) {
	page, size := pageParams(c)
	c.JSON(http.StatusOK, h.svc.Users(c.Query("q"), page, size))
}

func (h *UserHandler) Refresh(c *gin.Context) {
	if err := h.svc.Refresh(c.Request.Context()); err != nil {
		respondError(c, err)
		return
	}
	page, size := pageParams(c)
	c.JSON(http.StatusOK, h.svc.Users(c.Query("q"), page, size))
}

func (h *UserHandler) ToggleAdmin(c *gin.Context) {
	u, err := h.svc.ToggleAdmin(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, u)
}

type suspendRequest struct {
	Reason string `json:"reason"`
	// SuspendedUntil is RFC 3339 or a plain date (YYYY-MM-DD, end of day UTC).
	SuspendedUntil string `json:"suspendedUntil"`
}

func parseUntil(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, true
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, true
	}
	if d, err := time.Parse(time.DateOnly, s); err == nil {
		return d.Add(24*time.Hour - time.Second), true
	}
	return time.Time{}, false
}

func (h *UserHandler) Suspend(c *gin.Context) {
	var req suspendRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badBody(c)
		return
	}
	until, ok := parseUntil(req.SuspendedUntil)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid suspendedUntil", "field": "suspendedUntil"})
		return
	}
	u, err := h.svc.Suspend(c.Request.Context(), c.Param("id"), req.Reason, until)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, u)
}

func (h *UserHandler) Unsuspend(c *gin.Context) {
	u, err := h.svc.Unsuspend(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, u)
}

type creditsRequest struct {
	Amount int64              `json:"amount"`
	Type   service.CreditType `json:"type"`
}

func (h *UserHandler) AdjustCredits(c *gin.Context) {
	var req creditsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badBody(c)
		return
	}
	if req.Type == "" {
		req.Type = service.CreditGrant
	}
	bal, err := h.svc.AdjustCredits(c.Request.Context(), c.Param("id"), req.Amount, req.Type)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, bal)
}
