// Package tasks fetches the player's outstanding assignments from a Canvas
// LMS instance. Each task carries the points it is worth as experience.
package tasks

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// DefaultBaseURL is the Canvas instance used when none is configured.
const DefaultBaseURL = "https://canvas.ucsc.edu"

// ErrNoToken is returned when the client has no access token.
var ErrNoToken = errors.New("tasks: no access token configured")

// Client wraps the Canvas REST API.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

// NewClient creates a Canvas client. An empty baseURL uses DefaultBaseURL.
func NewClient(baseURL, token string) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   strings.TrimSpace(token),
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

// Enabled returns true if the client has a token.
func (c *Client) Enabled() bool {
	return c != nil && c.token != ""
}

// Task is one to-do entry.
type Task struct {
	Name   string  `json:"name"`
	Due    string  `json:"due"`
	Points float64 `json:"points"`
	Course string  `json:"course"`
}

// todoItem mirrors one element of GET /api/v1/todo.
type todoItem struct {
	ContextName string `json:"context_name"`
	Assignment  *struct {
		Name           string   `json:"name"`
		DueAt          *string  `json:"due_at"`
		PointsPossible *float64 `json:"points_possible"`
	} `json:"assignment"`
	Quiz *struct {
		Title string `json:"title"`
	} `json:"quiz"`
}

// Todo fetches the current to-do list.
func (c *Client) Todo(ctx context.Context) ([]Task, error) {
	if !c.Enabled() {
		return nil, ErrNoToken
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/v1/todo", nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch todo: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("todo API error %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var items []todoItem
	if err := json.Unmarshal(body, &items); err != nil {
		return nil, fmt.Errorf("unmarshal todo: %w", err)
	}

	out := make([]Task, 0, len(items))
	for _, it := range items {
		out = append(out, it.task())
	}
	return out, nil
}

func (it todoItem) task() Task {
	t := Task{Name: "Unnamed Task", Due: "No Date", Course: it.ContextName}
	switch {
	case it.Assignment != nil && it.Assignment.Name != "":
		t.Name = it.Assignment.Name
	case it.Quiz != nil && it.Quiz.Title != "":
		t.Name = it.Quiz.Title
	}
	if it.Assignment != nil {
		if it.Assignment.DueAt != nil && *it.Assignment.DueAt != "" {
			t.Due = formatDue(*it.Assignment.DueAt)
		}
		if it.Assignment.PointsPossible != nil {
			t.Points = *it.Assignment.PointsPossible
		}
	}
	return t
}

// formatDue renders an RFC 3339 timestamp as a calendar date. Unparseable
// values pass through unchanged.
func formatDue(raw string) string {
	ts, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return raw
	}
	return ts.Format("Jan 2, 2006")
}

// Top returns at most n tasks in their original order.
func Top(tasks []Task, n int) []Task {
	if n < 0 || len(tasks) <= n {
		return tasks
	}
	return tasks[:n]
}
