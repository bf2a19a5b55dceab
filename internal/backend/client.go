// Package backend is the typed client for the remote admin API.
package backend

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/google/uuid"
	"github.com/psds-microservice/support-console/internal/errs"
	"github.com/psds-microservice/support-console/internal/session"
)

const loginPath = "/auth/email/login"

type Config struct {
	// BaseURL is the API origin; requests go to BaseURL + "/api".
	BaseURL   string
	Timeout   time.Duration
	UserAgent string
	Debug     bool
}

// Client calls the backend on behalf of the current admin session.
type Client struct {
	http    *resty.Client
	origin  string
	session *session.Session
	logger  *slog.Logger
}

func NewClient(cfg Config, sess *session.Session, logger *slog.Logger) *Client {
	if cfg.UserAgent == "" {
		cfg.UserAgent = "support-console/1.0"
	}
	if logger == nil {
		logger = slog.Default()
	}
	origin := strings.TrimSuffix(cfg.BaseURL, "/")

	// Retries stay off: a failed poll is retried by the next tick and a failed
	// command is retried by the admin.
	httpClient := resty.New().
		SetBaseURL(origin+"/api").
		SetTimeout(cfg.Timeout).
		SetRetryCount(0).
		SetHeader("User-Agent", cfg.UserAgent).
		SetHeader("Accept", "application/json").
		SetHeader("Content-Type", "application/json")
	if cfg.Debug {
		httpClient.SetDebug(true)
	}

	c := &Client{
		http:    httpClient,
		origin:  origin,
		session: sess,
		logger:  logger.With("component", "backend"),
	}
	httpClient.OnBeforeRequest(func(_ *resty.Client, req *resty.Request) error {
		return c.authorize(req)
	})
	httpClient.OnAfterResponse(func(_ *resty.Client, resp *resty.Response) error {
		// A 401 from login means bad credentials, not an expired session.
		if resp.StatusCode() == http.StatusUnauthorized && !isLoginRequest(resp.Request.URL) {
			c.session.Expire("backend responded 401 to " + resp.Request.Method + " " + resp.Request.URL)
		}
		return nil
	})
	return c
}

// Origin is the API origin used to resolve relative image URLs.
func (c *Client) Origin() string { return c.origin }

func (c *Client) authorize(req *resty.Request) error {
	req.SetHeader("X-Request-ID", uuid.NewString())
	if isLoginRequest(req.URL) {
		return nil
	}
	token := c.session.Token()
	if token == "" {
		return errs.ErrNoSession
	}
	if !c.session.Active() {
		c.session.Expire("token expired before " + req.Method + " " + req.URL)
		return errs.ErrUnauthorized
	}
	req.SetAuthToken(token)
	return nil
}

func isLoginRequest(url string) bool {
	return strings.HasSuffix(url, loginPath)
}

type errorBody struct {
	StatusCode int             `json:"statusCode"`
	Message    json.RawMessage `json:"message"`
	Error      string          `json:"error"`
}

// message flattens NestJS-style bodies where message is a string or a list.
func (b errorBody) message() string {
	var s string
	if err := json.Unmarshal(b.Message, &s); err == nil && s != "" {
		return s
	}
	var list []string
	if err := json.Unmarshal(b.Message, &list); err == nil && len(list) > 0 {
		return strings.Join(list, "; ")
	}
	return b.Error
}

func (c *Client) do(ctx context.Context, method, path string, body, result interface{}) error {
	req := c.http.R().SetContext(ctx)
	if body != nil {
		req.SetBody(body)
	}
	if result != nil {
		req.SetResult(result)
	}

	resp, err := req.Execute(method, path)
	if err != nil {
		if errors.Is(err, errs.ErrUnauthorized) || errors.Is(err, errs.ErrNoSession) {
			return err
		}
		return &errs.NetworkError{Operation: method, URL: c.origin + "/api" + path, Err: err}
	}
	if resp.IsSuccess() {
		return nil
	}

	apiErr := &errs.APIError{StatusCode: resp.StatusCode(), Message: http.StatusText(resp.StatusCode())}
	var eb errorBody
	if json.Unmarshal(resp.Body(), &eb) == nil {
		if msg := eb.message(); msg != "" {
			apiErr.Message = msg
		}
	}
	c.logger.Debug("request failed", "method", method, "path", path, "status", apiErr.StatusCode, "message", apiErr.Message)
	return apiErr
}
