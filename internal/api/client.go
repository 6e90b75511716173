// Package api wraps the board server's REST and stream endpoints.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/boardpulse/boardpulse/internal/feed"
)

// Client talks to one board on one server. It implements feed.History.
type Client struct {
	baseURL    string
	board      string
	token      string
	httpClient *http.Client
}

// New creates a board API client.
func New(baseURL, board, token string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		board:   board,
		token:   token,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// BaseURL returns the configured server base.
func (c *Client) BaseURL() string { return c.baseURL }

// Board returns the board this client is scoped to.
func (c *Client) Board() string { return c.board }

// Memories fetches one page of board memories, scoped to the chat or notes
// partition.
func (c *Client) Memories(ctx context.Context, isChat bool, limit, offset int) ([]feed.ChatMessage, error) {
	q := pageQuery(limit, offset)
	q.Set("is_chat", strconv.FormatBool(isChat))
	var out struct {
		Memories []feed.ChatMessage `json:"memories"`
	}
	if err := c.getJSON(ctx, c.boardPath("memories"), q, &out); err != nil {
		return nil, fmt.Errorf("memories: %w", err)
	}
	return out.Memories, nil
}

// Activity fetches one page of the board activity log.
func (c *Client) Activity(ctx context.Context, limit, offset int) ([]feed.ActivityRecord, error) {
	var out struct {
		Events []feed.ActivityRecord `json:"events"`
	}
	if err := c.getJSON(ctx, c.boardPath("activity"), pageQuery(limit, offset), &out); err != nil {
		return nil, fmt.Errorf("activity: %w", err)
	}
	return out.Events, nil
}

// Tasks fetches one page of the task roster.
func (c *Client) Tasks(ctx context.Context, limit, offset int) ([]feed.TaskRecord, error) {
	var out struct {
		Tasks []feed.TaskRecord `json:"tasks"`
	}
	if err := c.getJSON(ctx, c.boardPath("tasks"), pageQuery(limit, offset), &out); err != nil {
		return nil, fmt.Errorf("tasks: %w", err)
	}
	return out.Tasks, nil
}

// Approvals fetches one page of the approval roster.
func (c *Client) Approvals(ctx context.Context, limit, offset int) ([]feed.ApprovalRecord, error) {
	var out struct {
		Approvals []feed.ApprovalRecord `json:"approvals"`
	}
	if err := c.getJSON(ctx, c.boardPath("approvals"), pageQuery(limit, offset), &out); err != nil {
		return nil, fmt.Errorf("approvals: %w", err)
	}
	return out.Approvals, nil
}

// Agents fetches one page of the agent roster.
func (c *Client) Agents(ctx context.Context, limit, offset int) ([]feed.AgentRecord, error) {
	var out struct {
		Agents []feed.AgentRecord `json:"agents"`
	}
	if err := c.getJSON(ctx, c.boardPath("agents"), pageQuery(limit, offset), &out); err != nil {
		return nil, fmt.Errorf("agents: %w", err)
	}
	return out.Agents, nil
}

// StreamURL builds the SSE endpoint for a surface. An empty since means the
// stream starts from now; chat and notes pin the memory partition server-side
// so the wire carries only the relevant half.
func (c *Client) StreamURL(surface feed.Surface, since string) string {
	q := url.Values{}
	switch surface {
	case feed.SurfaceChat:
		q.Set("topics", "memory")
		q.Set("is_chat", "true")
	case feed.SurfaceNotes:
		q.Set("topics", "memory")
		q.Set("is_chat", "false")
	case feed.SurfaceActivity:
		q.Set("topics", "memory,task,approval,agent")
	case feed.SurfaceTasks:
		q.Set("topics", "task")
	case feed.SurfaceApprovals:
		q.Set("topics", "approval")
	case feed.SurfaceAgents:
		q.Set("topics", "agent")
	}
	if since != "" {
		q.Set("since", since)
	}
	return c.baseURL + c.boardPath("events") + "?" + q.Encode()
}

// PostMemory publishes a chat message or note to the board. The client
// message id makes retried posts idempotent server-side.
func (c *Client) PostMemory(ctx context.Context, content string, isChat bool, tags ...string) (*feed.ChatMessage, error) {
	payload := map[string]any{
		"content":       content,
		"is_chat":       isChat,
		"client_msg_id": uuid.NewString(),
	}
	if len(tags) > 0 {
		payload["tags"] = tags
	}
	var out struct {
		Memory *feed.ChatMessage `json:"memory"`
	}
	if err := c.postJSON(ctx, c.boardPath("memories"), payload, &out); err != nil {
		return nil, fmt.Errorf("post memory: %w", err)
	}
	if out.Memory == nil {
		return nil, fmt.Errorf("post memory: empty response")
	}
	return out.Memory, nil
}

// PostComment adds a comment to a task.
func (c *Client) PostComment(ctx context.Context, taskID, message string) (*feed.CommentRecord, error) {
	payload := map[string]any{
		"message":       message,
		"client_msg_id": uuid.NewString(),
	}
	var out struct {
		Comment *feed.CommentRecord `json:"comment"`
	}
	if err := c.postJSON(ctx, c.boardPath("tasks/"+url.PathEscape(taskID)+"/comments"), payload, &out); err != nil {
		return nil, fmt.Errorf("post comment: %w", err)
	}
	if out.Comment == nil {
		return nil, fmt.Errorf("post comment: empty response")
	}
	return out.Comment, nil
}

// Ping checks that the server is reachable and the token is accepted.
func (c *Client) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/health", nil)
	if err != nil {
		return fmt.Errorf("ping: %w", err)
	}
	c.authorize(req)
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("ping: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("ping: status %d", resp.StatusCode)
	}
	return nil
}

func (c *Client) boardPath(suffix string) string {
	return "/api/boards/" + url.PathEscape(c.board) + "/" + suffix
}

func (c *Client) authorize(req *http.Request) {
	if tok := strings.TrimSpace(c.token); tok != "" {
		req.Header.Set("Authorization", "Bearer "+tok)
	}
}

func (c *Client) getJSON(ctx context.Context, path string, q url.Values, out any) error {
	endpoint := c.baseURL + path
	if len(q) > 0 {
		endpoint += "?" + q.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	c.authorize(req)
	return c.do(req, out)
}

func (c *Client) postJSON(ctx context.Context, path string, payload, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	c.authorize(req)
	return c.do(req, out)
}

func (c *Client) do(req *http.Request, out any) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func pageQuery(limit, offset int) url.Values {
	q := url.Values{}
	q.Set("limit", strconv.Itoa(limit))
	q.Set("offset", strconv.Itoa(offset))
	return q
}
