package backend

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/psds-microservice/support-console/internal/model"
)

func ticketPath(id, suffix string) string {
	return fmt.Sprintf("/support/admin/tickets/%s%s", url.PathEscape(id), suffix)
}

// ListTickets returns every ticket visible to the admin.
func (c *Client) ListTickets(ctx context.Context) ([]model.Ticket, error) {
	var result []model.Ticket
	if err := c.do(ctx, http.MethodGet, "/support/admin/tickets", nil, &result); err != nil {
		return nil, err
	}
	return result, nil
}

func (c *Client) ReplyTicket(ctx context.Context, id, reply string) (*model.Ticket, error) {
	var result model.Ticket
	body := map[string]string{"reply": reply}
	if err := c.do(ctx, http.MethodPatch, ticketPath(id, "/reply"), body, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *Client) UpdateTicketStatus(ctx context.Context, id string, status model.TicketStatus) (*model.Ticket, error) {
	var result model.Ticket
	body := map[string]string{"status": string(status)}
	if err := c.do(ctx, http.MethodPatch, ticketPath(id, "/status"), body, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// ListMessages returns the conversation in the order the backend keeps it
// (chronological).
func (c *Client) ListMessages(ctx context.Context, id string) ([]model.Message, error) {
	var result []model.Message
	if err := c.do(ctx, http.MethodGet, ticketPath(id, "/messages"), nil, &result); err != nil {
		return nil, err
	}
	return result, nil
}

func (c *Client) SendMessage(ctx context.Context, id, body string) (*model.Message, error) {
	var result model.Message
	if err := c.do(ctx, http.MethodPost, ticketPath(id, "/messages"), map[string]string{"body": body}, &result); err != nil {
		return nil, err
	}
	return &result, nil
}
