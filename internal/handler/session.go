package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/psds-microservice/support-console/internal/service"
)

type SessionHandler struct {
	svc *service.SessionService
}

func NewSessionHandler(svc *service.SessionService) *SessionHandler {
	return &SessionHandler{svc: svc}
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *SessionHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badBody(c)
		return
	}
	if _, err := h.svc.Login(c.Request.Context(), req.Email, req.Password); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, h.svc.State())
}

func (h *SessionHandler) Logout(c *gin.Context) {
	h.svc.Logout()
	c.Status(http.StatusNoContent)
}

func (h *SessionHandler) Get(c *gin.Context) {
	c.JSON(http.StatusOK, h.svc.State())
}
