// Package client wraps the reservation service behind a fault-tolerant
// caller: service discovery through the registry, bounded retries on
// transport failures and a circuit breaker on top. Callers receive a
// result on every path; no failure mode surfaces as a panic.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/iliyamo/distributed-ticket-reservation/internal/model"
	"github.com/iliyamo/distributed-ticket-reservation/internal/protocol"
	"github.com/iliyamo/distributed-ticket-reservation/internal/registry"
)

const (
	// DefaultMaxRetries bounds the attempts per call.
	DefaultMaxRetries = 3
	// DefaultRetryDelay is the pause after each failed attempt.
	DefaultRetryDelay = 2 * time.Second

	// MsgUnavailable is the message of the synthetic result returned when
	// every attempt failed at the transport level.
	MsgUnavailable = "server unavailable after multiple attempts"
	// MsgCircuitOpen is the message returned while the breaker rejects
	// calls without contacting the server.
	MsgCircuitOpen = "circuit open: server temporarily unavailable"
)

// Core is the fault-tolerant caller. It resolves the reservation
// service through the registry on demand and re-resolves after any
// transport failure, so a restarted server at a new address is picked
// up transparently.
type Core struct {
	Registry    *registry.Client
	ServiceName string
	MaxRetries  int
	RetryDelay  time.Duration
	Breaker     *CircuitBreaker

	http    *http.Client
	baseURL string
}

// NewCore builds a Core around a registry client. A nil breaker gets
// the default thresholds.
func NewCore(reg *registry.Client, serviceName string, breaker *CircuitBreaker) *Core {
	if reg == nil {
		panic("nil registry client passed to NewCore")
	}
	if breaker == nil {
		breaker = NewCircuitBreaker(0, 0)
	}
	return &Core{
		Registry:    reg,
		ServiceName: serviceName,
		MaxRetries:  DefaultMaxRetries,
		RetryDelay:  DefaultRetryDelay,
		Breaker:     breaker,
		http:        &http.Client{Timeout: 10 * time.Second},
	}
}

// Connected reports whether a resolved server address is held.
func (c *Core) Connected() bool {
	return c.baseURL != ""
}

// Connect resolves the service address through the registry.
func (c *Core) Connect(ctx context.Context) error {
	addr, ok, err := c.Registry.Lookup(ctx, c.ServiceName)
	if err != nil {
		return fmt.Errorf("registry lookup: %w", err)
	}
	if !ok {
		return fmt.Errorf("service %q is not registered", c.ServiceName)
	}
	c.baseURL = fmt.Sprintf("http://%s:%d", addr.Host, addr.Port)
	return nil
}

// Close drops the resolved address; the next call reconnects.
func (c *Core) Close() {
	c.baseURL = ""
	c.http.CloseIdleConnections()
}

// do performs one request against the resolved server. A non-nil error
// means the failure happened at the transport level and the call may be
// retried; any decoded envelope, success or not, is final.
func (c *Core) do(ctx context.Context, method, path string, body any) (protocol.Result, error) {
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return protocol.Result{}, fmt.Errorf("marshal request: %w", err)
		}
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return protocol.Result{}, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return protocol.Result{}, err
	}
	defer resp.Body.Close()

	var res protocol.Result
	if err := json.NewDecoder(resp.Body).Decode(&res); err != nil {
		return protocol.Result{}, fmt.Errorf("decode response: %w", err)
	}
	if res.Status == "" {
		return protocol.Result{}, fmt.Errorf("malformed response envelope")
	}
	return res, nil
}

// call runs one operation under the breaker and the retry policy. The
// returned result always carries a status and a message; an open
// breaker or exhausted retries yield an error-status result rather than
// a Go error.
func (c *Core) call(ctx context.Context, method, path string, body any) protocol.Result {
	var res protocol.Result
	err := c.Breaker.Execute(func() error {
		res = c.callWithRetry(ctx, method, path, body)
		if res.Status == protocol.StatusError && res.Message == MsgUnavailable {
			// Count retry exhaustion as one breaker failure.
			return fmt.Errorf("%s", MsgUnavailable)
		}
		return nil
	})
	if err == ErrCircuitOpen {
		return protocol.Result{Status: protocol.StatusError, Message: MsgCircuitOpen}
	}
	return res
}

// callWithRetry attempts the request up to MaxRetries times, pausing
// RetryDelay after each failure. Only transport failures are retried;
// server-produced envelopes come back on the first attempt that decodes
// one.
func (c *Core) callWithRetry(ctx context.Context, method, path string, body any) protocol.Result {
	retries := c.MaxRetries
	if retries <= 0 {
		retries = DefaultMaxRetries
	}
	for attempt := 1; attempt <= retries; attempt++ {
		if !c.Connected() {
			if err := c.Connect(ctx); err != nil {
				log.Printf("attempt %d/%d: %v", attempt, retries, err)
				c.sleep(ctx)
				continue
			}
		}
		res, err := c.do(ctx, method, path, body)
		if err == nil {
			return res
		}
		log.Printf("attempt %d/%d: %v", attempt, retries, err)
		c.Close()
		c.sleep(ctx)
	}
	return protocol.Result{Status: protocol.StatusError, Message: MsgUnavailable}
}

func (c *Core) sleep(ctx context.Context) {
	delay := c.RetryDelay
	if delay <= 0 {
		delay = DefaultRetryDelay
	}
	select {
	case <-time.After(delay):
	case <-ctx.Done():
	}
}

// ListFilms fetches the film catalog. On a success envelope the films
// are decoded from the payload; a decode failure downgrades the result
// to an error status.
func (c *Core) ListFilms(ctx context.Context) ([]model.Film, protocol.Result) {
	res := c.call(ctx, http.MethodGet, "/v1/films", nil)
	if !res.OK() {
		return nil, res
	}
	var films []model.Film
	if err := json.Unmarshal(res.Data, &films); err != nil {
		return nil, protocol.Result{Status: protocol.StatusError, Message: "malformed film list in response"}
	}
	return films, res
}

// ListSessions fetches the sessions of one film.
func (c *Core) ListSessions(ctx context.Context, filmID uint64) ([]model.Session, protocol.Result) {
	res := c.call(ctx, http.MethodGet, fmt.Sprintf("/v1/films/%d/sessions", filmID), nil)
	if !res.OK() {
		return nil, res
	}
	var sessions []model.Session
	if err := json.Unmarshal(res.Data, &sessions); err != nil {
		return nil, protocol.Result{Status: protocol.StatusError, Message: "malformed session list in response"}
	}
	return sessions, res
}

// Purchase buys tickets. On success the remaining availability reported
// by the server is returned alongside the result.
func (c *Core) Purchase(ctx context.Context, req protocol.PurchaseRequest) (uint32, protocol.Result) {
	res := c.call(ctx, http.MethodPost, "/v1/purchases", req)
	if !res.OK() {
		return 0, res
	}
	var data protocol.PurchaseData
	if err := json.Unmarshal(res.Data, &data); err != nil {
		return 0, protocol.Result{Status: protocol.StatusError, Message: "malformed purchase data in response"}
	}
	return data.Remaining, res
}
