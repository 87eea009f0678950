package crmapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/five82/leaddesk/internal/crm"
	"github.com/five82/leaddesk/internal/crmerr"
)

// API is the set of CRM operations leaddesk uses. It is implemented by
// *Client and can be faked in tests.
type API interface {
	GetLeads(ctx context.Context, query LeadQuery) (LeadPage, error)
	AddLead(ctx context.Context, lead crm.Lead) (crm.Lead, error)
	EditLead(ctx context.Context, id int64, patch crm.LeadPatch) error
	GetTasks(ctx context.Context, query TodoQuery) (TodoPage, error)
	AddTask(ctx context.Context, todo crm.Todo) (crm.Todo, error)
	EditTask(ctx context.Context, id int64, patch crm.TodoPatch) error
	Verify(ctx context.Context, code string) error
}

// Ensure Client implements API at compile time.
var _ API = (*Client)(nil)

// LeadPage is one page of get_leads.
type LeadPage struct {
	Leads []crm.Lead
	Total int
}

// TodoPage is one page of get_tasks.
type TodoPage struct {
	Todos []crm.Todo
	Total int
}

// Client talks to the CRM HTTP API.
type Client struct {
	baseURL   *url.URL
	http      *http.Client
	userAgent string
	requestID func() string
}

const (
	DefaultBaseURL   = "http://127.0.0.1:8080/api"
	DefaultUserAgent = "leaddesk/0.1"
	DefaultTimeout   = 10 * time.Second
)

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) ClientOption {
	return func(c *Client) {
		if d > 0 {
			c.http.Timeout = d
		}
	}
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(ua string) ClientOption {
	return func(c *Client) {
		if ua = strings.TrimSpace(ua); ua != "" {
			c.userAgent = ua
		}
	}
}

// WithHTTPClient replaces the underlying http.Client.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// NewClient builds a Client for the API rooted at baseURL.
func NewClient(baseURL string, opts ...ClientOption) (*Client, error) {
	base, err := parseBaseURL(baseURL)
	if err != nil {
		return nil, err
	}
	c := &Client{
		baseURL:   base,
		http:      &http.Client{Timeout: DefaultTimeout},
		userAgent: DefaultUserAgent,
		requestID: func() string { return uuid.NewString() },
	}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	return c, nil
}

// GetLeads retrieves one page of leads.
func (c *Client) GetLeads(ctx context.Context, query LeadQuery) (LeadPage, error) {
	const op = "get_leads"
	if c == nil {
		return LeadPage{}, fmt.Errorf("client is nil")
	}
	env, err := c.doURL(ctx, op, http.MethodGet, query.Values(), nil)
	if err != nil {
		return LeadPage{}, err
	}
	var rows []wireLead
	if err := decodeData(env, &rows); err != nil {
		return LeadPage{}, crmerr.Network(op, err)
	}
	page := LeadPage{Leads: make([]crm.Lead, 0, len(rows)), Total: int(env.Total)}
	for _, row := range rows {
		page.Leads = append(page.Leads, row.toLead())
	}
	if page.Total < len(page.Leads) {
		page.Total = len(page.Leads)
	}
	return page, nil
}

// AddLead creates a lead and returns it with the id the API assigned.
func (c *Client) AddLead(ctx context.Context, lead crm.Lead) (crm.Lead, error) {
	const op = "add_lead"
	if c == nil {
		return crm.Lead{}, fmt.Errorf("client is nil")
	}
	body, err := leadBody(lead)
	if err != nil {
		return crm.Lead{}, crmerr.Validation(op, "lead", err.Error())
	}
	env, err := c.doURL(ctx, op, http.MethodPost, nil, body)
	if err != nil {
		return crm.Lead{}, err
	}
	created := lead.Clone()
	var row wireLead
	if decodeData(env, &row) == nil && row.ID > 0 {
		created.ID = int64(row.ID)
		if t := parseTime(row.CreatedAt); !t.IsZero() {
			created.CreatedAt = t
		}
	}
	return created, nil
}

// EditLead sends only the fields present in patch.
func (c *Client) EditLead(ctx context.Context, id int64, patch crm.LeadPatch) error {
	const op = "edit_lead"
	if c == nil {
		return fmt.Errorf("client is nil")
	}
	body, err := leadPatchBody(id, patch)
	if err != nil {
		return crmerr.Validation(op, "lead", err.Error())
	}
	_, err = c.doURL(ctx, op, http.MethodPost, nil, body)
	return err
}

// GetTasks retrieves one page of tasks. Each task may carry a partial copy of
// its lead.
func (c *Client) GetTasks(ctx context.Context, query TodoQuery) (TodoPage, error) {
	const op = "get_tasks"
	if c == nil {
		return TodoPage{}, fmt.Errorf("client is nil")
	}
	env, err := c.doURL(ctx, op, http.MethodGet, query.Values(), nil)
	if err != nil {
		return TodoPage{}, err
	}
	var rows []wireTodo
	if err := decodeData(env, &rows); err != nil {
		return TodoPage{}, crmerr.Network(op, err)
	}
	page := TodoPage{Todos: make([]crm.Todo, 0, len(rows)), Total: int(env.Total)}
	for _, row := range rows {
		page.Todos = append(page.Todos, row.toTodo())
	}
	if page.Total < len(page.Todos) {
		page.Total = len(page.Todos)
	}
	return page, nil
}

// AddTask creates a task and returns it with the id the API assigned.
func (c *Client) AddTask(ctx context.Context, todo crm.Todo) (crm.Todo, error) {
	const op = "add_task"
	if c == nil {
		return crm.Todo{}, fmt.Errorf("client is nil")
	}
	body, err := todoBody(todo)
	if err != nil {
		return crm.Todo{}, crmerr.Validation(op, "task", err.Error())
	}
	env, err := c.doURL(ctx, op, http.MethodPost, nil, body)
	if err != nil {
		return crm.Todo{}, err
	}
	created := todo.Clone()
	if created.Status == crm.TodoStatusUnset {
		created.Status = crm.TodoPending
	}
	var row wireTodo
	if decodeData(env, &row) == nil && row.ID > 0 {
		created.ID = int64(row.ID)
	}
	return created, nil
}

// EditTask sends only the fields present in patch.
func (c *Client) EditTask(ctx context.Context, id int64, patch crm.TodoPatch) error {
	const op = "edit_task"
	if c == nil {
		return fmt.Errorf("client is nil")
	}
	body, err := todoPatchBody(id, patch)
	if err != nil {
		return crmerr.Validation(op, "task", err.Error())
	}
	_, err = c.doURL(ctx, op, http.MethodPost, nil, body)
	return err
}

// Verify checks an access code. A rejected code is reported as an API error
// wrapping crmerr.ErrUnauthorized.
func (c *Client) Verify(ctx context.Context, code string) error {
	const op = "verify"
	if c == nil {
		return fmt.Errorf("client is nil")
	}
	code = strings.TrimSpace(code)
	if code == "" {
		return crmerr.Validation(op, "code", "access code is required")
	}
	_, err := c.doURL(ctx, op, http.MethodPost, nil, map[string]any{"code": code})
	var ce *crmerr.Error
	if errors.As(err, &ce) && ce.Kind == crmerr.KindAPI {
		ce.Err = crmerr.ErrUnauthorized
	}
	return err
}

// doURL performs op and returns the decoded envelope. Transport failures and
// non-2xx responses are network errors; a non-success status is an API error
// carrying the server's message.
func (c *Client) doURL(ctx context.Context, op, method string, query url.Values, body any) (envelope, error) {
	rel := &url.URL{Path: op}
	if len(query) > 0 {
		rel.RawQuery = query.Encode()
	}
	reqURL := c.baseURL.ResolveReference(rel)

	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return envelope{}, fmt.Errorf("encode %s body: %w", op, err)
		}
		reader = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, reqURL.String(), reader)
	if err != nil {
		return envelope{}, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("X-Request-ID", c.requestID())
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return envelope{}, crmerr.Network(op, fmt.Errorf("execute request: %w", err))
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return envelope{}, crmerr.Network(op, fmt.Errorf("api %s returned status %d", op, resp.StatusCode))
	}
	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return envelope{}, crmerr.Network(op, fmt.Errorf("decode response: %w", err))
	}
	if !env.ok() {
		return env, crmerr.API(op, env.Message)
	}
	return env, nil
}

func decodeData(env envelope, dest any) error {
	if len(env.Data) == 0 || string(env.Data) == "null" {
		return nil
	}
	if err := json.Unmarshal(env.Data, dest); err != nil {
		return fmt.Errorf("decode data: %w", err)
	}
	return nil
}

func parseBaseURL(raw string) (*url.URL, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		trimmed = DefaultBaseURL
	}
	if !strings.Contains(trimmed, "://") {
		trimmed = "http://" + trimmed
	}
	u, err := url.Parse(trimmed)
	if err != nil {
		return nil, fmt.Errorf("parse base_url %q: %w", raw, err)
	}
	// Endpoints resolve relative to the base path, so it must end in a slash.
	if !strings.HasSuffix(u.Path, "/") {
		u.Path += "/"
	}
	u.RawQuery = ""
	u.Fragment = ""
	return u, nil
}
