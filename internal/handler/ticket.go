package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/psds-microservice/support-console/internal/model"
	"github.com/psds-microservice/support-console/internal/service"
)

const defaultPageSize = 20

type TicketHandler struct {
	svc *service.TicketService
	// origin resolves relative message image URLs.
	origin string
}

func NewTicketHandler(svc *service.TicketService, origin string) *TicketHandler {
	return &TicketHandler{svc: svc, origin: origin}
}

func pageParams(c *gin.Context) (page, size int) {
	page, size = 1, defaultPageSize
	if v, err := strconv.Atoi(c.Query("page")); err == nil && v > 0 {
		page = v
	}
	if v, err := strconv.Atoi(c.Query("size")); err == nil && v > 0 && v <= 200 {
		size = v
	}
	return page, size
}

func (h *TicketHandler) List(c *gin.Context) {
	f := service.TicketFilter{
		Status: model.TicketStatus(c.Query("status")),
		Type:   model.TicketType(c.Query("type")),
		Query:  c.Query("q"),
	}
	if f.Status != "" && !f.Status.Valid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid status"})
		return
	}
	page, size := pageParams(c)
	c.JSON(http.StatusOK, h.svc.Tickets(f, page, size))
}

func (h *TicketHandler) Get(c *gin.Context) {
	t, err := h.svc.Ticket(c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, t)
}

type messageView struct {
	model.Message
	ImageURL string `json:"imageUrl,omitempty"`
}

type selectionResponse struct {
	Ticket   *model.Ticket `json:"ticket"`
	Messages []messageView `json:"messages"`
	Polling  bool          `json:"polling"`
}

func (h *TicketHandler) selection() selectionResponse {
	t, msgs := h.svc.Selection()
	views := make([]messageView, 0, len(msgs))
	for _, m := range msgs {
		views = append(views, messageView{Message: m, ImageURL: m.ResolveImageURL(h.origin)})
	}
	return selectionResponse{Ticket: t, Messages: views, Polling: h.svc.ChatRunning()}
}

func (h *TicketHandler) Open(c *gin.Context) {
	if _, err := h.svc.Open(c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, h.selection())
}

func (h *TicketHandler) Selection(c *gin.Context) {
	c.JSON(http.StatusOK, h.selection())
}

func (h *TicketHandler) CloseSelection(c *gin.Context) {
	h.svc.Close()
	c.Status(http.StatusNoContent)
}

type sendMessageRequest struct {
	Body string `json:"body"`
}

func (h *TicketHandler) SendMessage(c *gin.Context) {
	var req sendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badBody(c)
		return
	}
	msg, err := h.svc.SendMessage(c.Request.Context(), c.Param("id"), req.Body)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, messageView{Message: *msg, ImageURL: msg.ResolveImageURL(h.origin)})
}

type replyRequest struct {
	Reply string `json:"reply"`
}

func (h *TicketHandler) Reply(c *gin.Context) {
	var req replyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badBody(c)
		return
	}
	t, err := h.svc.ReplyTicket(c.Request.Context(), c.Param("id"), req.Reply)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, t)
}

type statusRequest struct {
	Status model.TicketStatus `json:"status"`
}

func (h *TicketHandler) SetStatus(c *gin.Context) {
	var req statusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badBody(c)
		return
	}
	t, err := h.svc.SetStatus(c.Request.Context(), c.Param("id"), req.Status)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, t)
}

type draftBody struct {
	Text string `json:"text"`
}

func (h *TicketHandler) GetDraft(c *gin.Context) {
	text, err := h.svc.Draft(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, draftBody{Text: text})
}

func (h *TicketHandler) PutDraft(c *gin.Context) {
	var req draftBody
	if err := c.ShouldBindJSON(&req); err != nil {
		badBody(c)
		return
	}
	if err := h.svc.SaveDraft(c.Request.Context(), c.Param("id"), req.Text); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
		return
	}
	c.Status(http.StatusNoContent)
}
