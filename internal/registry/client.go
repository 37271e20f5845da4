package registry

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/iliyamo/distributed-ticket-reservation/internal/protocol"
)

// Client is the typed HTTP client services and front-ends use to talk
// to the name registry.
type Client struct {
	BaseURL string
	HTTP    *http.Client
}

// NewClient builds a registry client for the given "host:port" address.
func NewClient(addr string) *Client {
	if !strings.HasPrefix(addr, "http://") && !strings.HasPrefix(addr, "https://") {
		addr = "http://" + addr
	}
	return &Client{
		BaseURL: strings.TrimRight(addr, "/"),
		HTTP:    &http.Client{Timeout: 5 * time.Second},
	}
}

// Register announces a service instance to the registry.
func (c *Client) Register(ctx context.Context, service, host string, port int) error {
	body, err := json.Marshal(protocol.RegisterRequest{Service: service, Host: host, Port: port})
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+"/v1/services", bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := c.HTTP.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("registry returned status %s", resp.Status)
	}
	return nil
}

// Lookup resolves a service name to its registered address. A false
// second return with a nil error means the service is not registered
// yet; the caller decides whether to wait, retry or give up.
func (c *Client) Lookup(ctx context.Context, service string) (Address, bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+"/v1/services/"+service, nil)
	if err != nil {
		return Address{}, false, err
	}
	resp, err := c.HTTP.Do(req)
	if err != nil {
		return Address{}, false, err
	}
	defer resp.Body.Close()
	if resp.StatusCode == http.StatusNotFound {
		return Address{}, false, nil
	}
	if resp.StatusCode != http.StatusOK {
		return Address{}, false, fmt.Errorf("registry returned status %s", resp.Status)
	}
	var res protocol.Result
	if err := json.NewDecoder(resp.Body).Decode(&res); err != nil {
		return Address{}, false, fmt.Errorf("decode registry response: %w", err)
	}
	var addr Address
	if err := json.Unmarshal(res.Data, &addr); err != nil {
		return Address{}, false, fmt.Errorf("decode registry address: %w", err)
	}
	return addr, true, nil
}
