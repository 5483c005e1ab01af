package threadstore

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
)

var (
	// ErrThreadNotFound reports a thread id the runtime does not know.
	ErrThreadNotFound = errors.New("thread not found")
	// ErrUnavailable reports a transport or server failure. Callers must
	// keep it distinct from "thread exists but has no messages yet".
	ErrUnavailable = errors.New("thread store unavailable")
)

// Store is the surface the tracker needs from the agent runtime.
type Store interface {
	CreateThread(ctx context.Context, metadata ThreadMetadata) (string, error)
	GetHistory(ctx context.Context, threadID string) ([]Checkpoint, error)
	GetMetadata(ctx context.Context, threadID string) (ThreadMetadata, error)
	Step(ctx context.Context, threadID string, params StepParams) ([]RawMessage, error)
}

// Client talks to the runtime over its REST API.
type Client struct {
	baseURL string
	client  *http.Client
}

// Make sure we conform to the Store interface
var _ Store = (*Client)(nil)

// NewClient returns a thread store client. No request timeout is set:
// a simulation turn legitimately runs for 30-90+ seconds, and the core
// deliberately does not bound external calls (callers cancel via ctx).
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{},
	}
}

func (c *Client) CreateThread(ctx context.Context, metadata ThreadMetadata) (string, error) {
	var reply struct {
		ThreadID string `json:"thread_id"`
	}
	if err := c.do(ctx, http.MethodPost, "/threads", map[string]any{"metadata": metadata}, &reply); err != nil {
		return "", err
	}
	if reply.ThreadID == "" {
		return "", fmt.Errorf("%w: create thread returned no id", ErrUnavailable)
	}
	return reply.ThreadID, nil
}

func (c *Client) GetHistory(ctx context.Context, threadID string) ([]Checkpoint, error) {
	var checkpoints []Checkpoint
	path := fmt.Sprintf("/threads/%s/history", threadID)
	if err := c.do(ctx, http.MethodGet, path, nil, &checkpoints); err != nil {
		return nil, err
	}
	return checkpoints, nil
}

func (c *Client) GetMetadata(ctx context.Context, threadID string) (ThreadMetadata, error) {
	var reply struct {
		Metadata ThreadMetadata `json:"metadata"`
	}
	path := fmt.Sprintf("/threads/%s", threadID)
	if err := c.do(ctx, http.MethodGet, path, nil, &reply); err != nil {
		return nil, err
	}
	return reply.Metadata, nil
}

func (c *Client) Step(ctx context.Context, threadID string, params StepParams) ([]RawMessage, error) {
	var reply struct {
		Messages []RawMessage `json:"messages"`
	}
	path := fmt.Sprintf("/threads/%s/runs/wait", threadID)
	if err := c.do(ctx, http.MethodPost, path, params, &reply); err != nil {
		return nil, err
	}
	return reply.Messages, nil
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		reader = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return ErrThreadNotFound
	case resp.StatusCode >= 400:
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("%w: %s: %s", ErrUnavailable, resp.Status, strings.TrimSpace(string(payload)))
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: decode response: %v", ErrUnavailable, err)
	}
	return nil
}
