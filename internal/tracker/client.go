// Package tracker provides the issue-tracker REST client used to file
// tickets for triaged failures. All calls are JSON over HTTP with bearer
// token auth and a per-request ID for traceability.
package tracker

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/google/uuid"

	"github.com/harrison/logtriage/internal/config"
)

// Ticket is one tracker issue.
type Ticket struct {
	Key         string   `json:"key,omitempty"`
	Project     string   `json:"project"`
	Summary     string   `json:"summary"`
	Description string   `json:"description,omitempty"`
	Status      string   `json:"status,omitempty"`
	Labels      []string `json:"labels,omitempty"`
}

// Sprint is one sprint on a project board.
type Sprint struct {
	ID    int    `json:"id"`
	Name  string `json:"name"`
	State string `json:"state"`
}

// Client talks to the tracker API.
type Client struct {
	baseURL    string
	token      string
	project    string
	httpClient *http.Client
}

// NewClient creates a tracker client from configuration. The HTTP client
// timeout is set from the config.
func NewClient(cfg config.TrackerConfig) *Client {
	return &Client{
		baseURL: cfg.BaseURL,
		token:   cfg.Token,
		project: cfg.Project,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
	}
}

// Project returns the project key tickets are filed under.
func (c *Client) Project() string {
	return c.project
}

// CreateTicket files a new ticket. The ticket's project defaults to the
// client's configured project when empty. Returns the created ticket with
// its assigned key.
func (c *Client) CreateTicket(ctx context.Context, ticket Ticket) (*Ticket, error) {
	if ticket.Project == "" {
		ticket.Project = c.project
	}
	var created Ticket
	if err := c.do(ctx, http.MethodPost, "/tickets", ticket, &created); err != nil {
		return nil, fmt.Errorf("failed to create ticket: %w", err)
	}
	return &created, nil
}

// GetTicket fetches one ticket by key.
func (c *Client) GetTicket(ctx context.Context, key string) (*Ticket, error) {
	var ticket Ticket
	if err := c.do(ctx, http.MethodGet, "/tickets/"+url.PathEscape(key), nil, &ticket); err != nil {
		return nil, fmt.Errorf("failed to fetch ticket %s: %w", key, err)
	}
	return &ticket, nil
}

// SearchTickets returns tickets in the configured project whose summary
// contains the query substring.
func (c *Client) SearchTickets(ctx context.Context, query string) ([]Ticket, error) {
	path := fmt.Sprintf("/tickets?project=%s&query=%s",
		url.QueryEscape(c.project), url.QueryEscape(query))
	var tickets []Ticket
	if err := c.do(ctx, http.MethodGet, path, nil, &tickets); err != nil {
		return nil, fmt.Errorf("failed to search tickets: %w", err)
	}
	return tickets, nil
}

// ActiveSprint returns the active sprint for the configured project, or
// nil when no sprint is active.
func (c *Client) ActiveSprint(ctx context.Context) (*Sprint, error) {
	path := "/sprints/active?project=" + url.QueryEscape(c.project)
	var sprints []Sprint
	if err := c.do(ctx, http.MethodGet, path, nil, &sprints); err != nil {
		return nil, fmt.Errorf("failed to fetch active sprint: %w", err)
	}
	if len(sprints) == 0 {
		return nil, nil
	}
	return &sprints[0], nil
}

// AddToSprint moves the given tickets into a sprint.
func (c *Client) AddToSprint(ctx context.Context, sprintID int, keys ...string) error {
	body := map[string][]string{"tickets": keys}
	path := fmt.Sprintf("/sprints/%d/tickets", sprintID)
	if err := c.do(ctx, http.MethodPost, path, body, nil); err != nil {
		return fmt.Errorf("failed to add tickets to sprint %d: %w", sprintID, err)
	}
	return nil
}

// do performs one JSON request against the API. A non-2xx status is an
// error carrying the response body for context.
func (c *Client) do(ctx context.Context, method, path string, body, out interface{}) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request body: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-Id", uuid.NewString())
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("tracker returned %d: %s", resp.StatusCode, bytes.TrimSpace(payload))
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
