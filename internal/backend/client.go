// Package backend talks to the external flight backend over REST. It offers the
// same repository interfaces as the Postgres stores so either can back the service.
package backend

import (
	"bytes"
	"cmp"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/Domenick1991/flightdesk/internal/notify"
	"github.com/Domenick1991/flightdesk/internal/repository"
	"golang.org/x/time/rate"
)

var ErrUnauthorized = errors.New("unauthorized")

const (
	msgUnauthorized = "You are not authorized to perform this action"
	msgNotFound     = "Resource not found"
	msgGeneric      = "Something went wrong"
)

// ResponseStatusError is a non-2xx reply. Message carries the backend's own
// explanation when the body had one.
type ResponseStatusError struct {
	StatusCode int
	Status     string
	Message    string
}

func (e ResponseStatusError) Error() string {
	if e.Message != "" {
		return e.Status + ": " + e.Message
	}
	return e.Status
}

type errorBody struct {
	Message string `json:"message"`
	Errors  []struct {
		Message string `json:"message"`
	} `json:"errors"`
}

// errorMessage extracts {"message": ...} or the first {"errors": [{"message": ...}]} entry.
func errorMessage(r io.Reader) string {
	data, err := io.ReadAll(io.LimitReader(r, 64<<10))
	if err != nil || len(bytes.TrimSpace(data)) == 0 {
		return ""
	}
	var body errorBody
	if json.Unmarshal(data, &body) != nil {
		return ""
	}
	if body.Message != "" {
		return body.Message
	}
	if len(body.Errors) > 0 {
		return body.Errors[0].Message
	}
	return ""
}

// TokenProvider supplies the bearer token for each request.
type TokenProvider interface {
	Token(ctx context.Context) (string, error)
}

type StaticToken string

func (t StaticToken) Token(context.Context) (string, error) {
	return string(t), nil
}

type Client struct {
	httpClient *http.Client
	limiter    *rate.Limiter
	baseURL    string
	timeout    time.Duration
	tokens     TokenProvider
	notifier   notify.Notifier
}

type ClientOption func(c *Client)

func WithHTTPClient(httpClient *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

func WithRateLimiter(limiter *rate.Limiter) ClientOption {
	return func(c *Client) {
		c.limiter = limiter
	}
}

func WithTimeout(timeout time.Duration) ClientOption {
	return func(c *Client) {
		c.timeout = timeout
	}
}

func NewClient(baseURL string, tokens TokenProvider, notifier notify.Notifier, opts ...ClientOption) *Client {
	c := &Client{
		baseURL:  strings.TrimRight(baseURL, "/"),
		tokens:   tokens,
		notifier: notifier,
	}
	for _, opt := range opts {
		opt(c)
	}

	c.httpClient = cmp.Or(c.httpClient, http.DefaultClient)
	c.timeout = cmp.Or(c.timeout, 5*time.Second)
	if c.limiter == nil {
		c.limiter = rate.NewLimiter(rate.Inf, 0)
	}
	if c.notifier == nil {
		c.notifier = notify.Discard{}
	}
	return c
}

// Flights returns a repository.FlightRepository backed by this client.
func (c *Client) Flights() *FlightStore {
	return &FlightStore{c: c}
}

// Airports returns a repository.AirportRepository backed by this client.
func (c *Client) Airports() *AirportStore {
	return &AirportStore{c: c}
}

type call struct {
	method    string
	path      string
	body      any
	out       any
	onSuccess string
	onError   string
}

func (c *Client) do(ctx context.Context, cl call) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}

	var body io.Reader
	if cl.body != nil {
		payload, err := json.Marshal(cl.body)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, cl.method, c.baseURL+cl.path, body)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.tokens != nil {
		token, err := c.tokens.Token(ctx)
		if err != nil {
			return fmt.Errorf("auth token: %w", err)
		}
		if token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	res, err := c.httpClient.Do(req)
	if err != nil {
		c.notifier.Notify(ctx, notify.KindError, cmp.Or(cl.onError, msgGeneric))
		return err
	}
	defer res.Body.Close()

	switch {
	case res.StatusCode == http.StatusUnauthorized:
		c.notifier.Notify(ctx, notify.KindError, cmp.Or(errorMessage(res.Body), msgUnauthorized))
		return ErrUnauthorized
	case res.StatusCode == http.StatusNotFound:
		c.notifier.Notify(ctx, notify.KindError, msgNotFound)
		return repository.ErrNotFound
	case res.StatusCode < 200 || res.StatusCode >= 300:
		msg := errorMessage(res.Body)
		c.notifier.Notify(ctx, notify.KindError, cmp.Or(msg, cl.onError, msgGeneric))
		return ResponseStatusError{StatusCode: res.StatusCode, Status: res.Status, Message: msg}
	}

	if cl.out != nil {
		data, err := io.ReadAll(res.Body)
		if err != nil {
			return err
		}
		if len(bytes.TrimSpace(data)) > 0 {
			if err := json.Unmarshal(data, cl.out); err != nil {
				return fmt.Errorf("decode response: %w", err)
			}
		}
	}

	if cl.onSuccess != "" {
		c.notifier.Notify(ctx, notify.KindSuccess, cl.onSuccess)
	}
	return nil
}
