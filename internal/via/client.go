// Package via is the client for the via site's pimpy task API. It issues
// authenticated requests and classifies failures into a small error
// taxonomy; it performs no retries and caches nothing.
package via

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// Failure taxonomy, selected by the response status family. Callers match
// with errors.Is and decide the user-facing wording per operation.
var (
	ErrBadRequest       = errors.New("via: bad request")
	ErrPermissionDenied = errors.New("via: permission denied")
	ErrNotFound         = errors.New("via: not found")
	ErrServer           = errors.New("via: server error")
)

// Client is a via pimpy API client. Authentication is carried per call;
// the client holds no token state.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a new via client.
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// NewClientWithHTTP creates a via client with a custom HTTP client (for testing).
func NewClientWithHTTP(baseURL string, httpClient *http.Client) *Client {
	return &Client{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		httpClient: httpClient,
	}
}

// classifyStatus maps a response status code onto the error taxonomy.
func classifyStatus(status int, body []byte) error {
	switch {
	case status >= 200 && status < 300:
		return nil
	case status == http.StatusBadRequest:
		return fmt.Errorf("%w (status %d)", ErrBadRequest, status)
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return fmt.Errorf("%w (status %d)", ErrPermissionDenied, status)
	case status == http.StatusNotFound:
		return fmt.Errorf("%w (status %d)", ErrNotFound, status)
	case status >= 500:
		return fmt.Errorf("%w (status %d)", ErrServer, status)
	default:
		return fmt.Errorf("via: unexpected status %d: %s", status, string(body))
	}
}

// doRequest performs an authenticated request against the pimpy API and
// decodes the response into result when non-nil.
func (c *Client) doRequest(ctx context.Context, token, method, path string, body interface{}, result interface{}) error {
	var bodyReader io.Reader
	if body != nil {
		bodyBytes, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request body: %w", err)
		}
		bodyReader = bytes.NewReader(bodyBytes)
	}

	url := c.baseURL + path
	req, err := http.NewRequestWithContext(ctx, method, url, bodyReader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to execute request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	if err := classifyStatus(resp.StatusCode, respBody); err != nil {
		return err
	}

	if result != nil && len(respBody) > 0 {
		if err := json.Unmarshal(respBody, result); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}

	return nil
}

// TestToken checks that a token is accepted by the remote service. The
// task list endpoint doubles as a cheap validity probe during onboarding.
func (c *Client) TestToken(ctx context.Context, token string) error {
	return c.doRequest(ctx, token, http.MethodGet, "/pimpy/api/tasks/", nil, nil)
}

// Tasks lists all tasks owned by the authenticated user across groups.
func (c *Client) Tasks(ctx context.Context, token string) ([]Task, error) {
	var tasks []Task
	if err := c.doRequest(ctx, token, http.MethodGet, "/pimpy/api/tasks/", nil, &tasks); err != nil {
		return nil, err
	}
	if err := validateTasks(tasks); err != nil {
		return nil, err
	}
	return tasks, nil
}

// GroupUserTasks lists the authenticated user's tasks within one group.
func (c *Client) GroupUserTasks(ctx context.Context, token string, groupID int) ([]Task, error) {
	return c.groupUserTasks(ctx, token, groupID, "me")
}

// GroupUserTasksFor lists another member's tasks within one group.
func (c *Client) GroupUserTasksFor(ctx context.Context, token string, groupID, userID int) ([]Task, error) {
	return c.groupUserTasks(ctx, token, groupID, fmt.Sprintf("%d", userID))
}

func (c *Client) groupUserTasks(ctx context.Context, token string, groupID int, user string) ([]Task, error) {
	path := fmt.Sprintf("/pimpy/api/groups/%d/users/%s/tasks/", groupID, user)
	var tasks []Task
	if err := c.doRequest(ctx, token, http.MethodGet, path, nil, &tasks); err != nil {
		return nil, err
	}
	if err := validateTasks(tasks); err != nil {
		return nil, err
	}
	return tasks, nil
}

// GroupTasks lists a group's tasks keyed by owner display name.
func (c *Client) GroupTasks(ctx context.Context, token string, groupID int) (map[string][]Task, error) {
	path := fmt.Sprintf("/pimpy/api/groups/%d/tasks/", groupID)
	var byOwner map[string][]Task
	if err := c.doRequest(ctx, token, http.MethodGet, path, nil, &byOwner); err != nil {
		return nil, err
	}
	for _, tasks := range byOwner {
		if err := validateTasks(tasks); err != nil {
			return nil, err
		}
	}
	return byOwner, nil
}

// GroupUsers lists the members of a group.
func (c *Client) GroupUsers(ctx context.Context, token string, groupID int) ([]User, error) {
	path := fmt.Sprintf("/pimpy/api/groups/%d/users/", groupID)
	var users []User
	if err := c.doRequest(ctx, token, http.MethodGet, path, nil, &users); err != nil {
		return nil, err
	}
	return users, nil
}

// Task fetches a single task by id.
func (c *Client) Task(ctx context.Context, token string, taskID int) (*Task, error) {
	path := fmt.Sprintf("/pimpy/api/tasks/%d/", taskID)
	return c.fetchTask(ctx, token, path)
}

// GroupTask fetches a single task within a group scope.
func (c *Client) GroupTask(ctx context.Context, token string, groupID, taskID int) (*Task, error) {
	path := fmt.Sprintf("/pimpy/api/groups/%d/tasks/%d/", groupID, taskID)
	return c.fetchTask(ctx, token, path)
}

func (c *Client) fetchTask(ctx context.Context, token, path string) (*Task, error) {
	var task Task
	if err := c.doRequest(ctx, token, http.MethodGet, path, nil, &task); err != nil {
		return nil, err
	}
	if err := task.validate(); err != nil {
		return nil, err
	}
	return &task, nil
}

// AddGroupTask creates a task in a group. The owner spec is forwarded
// verbatim; the remote service resolves names to members.
func (c *Client) AddGroupTask(ctx context.Context, token string, groupID int, owners, title string) (*Task, error) {
	path := fmt.Sprintf("/pimpy/api/groups/%d/tasks/", groupID)
	body := map[string]string{"owners": owners, "title": title}
	var task Task
	if err := c.doRequest(ctx, token, http.MethodPost, path, body, &task); err != nil {
		return nil, err
	}
	if err := task.validate(); err != nil {
		return nil, err
	}
	return &task, nil
}

// SetTaskStatus updates a task's status and returns the canonical result.
func (c *Client) SetTaskStatus(ctx context.Context, token string, taskID int, status string) (*Task, error) {
	path := fmt.Sprintf("/pimpy/api/tasks/%d/status/", taskID)
	return c.putStatus(ctx, token, path, status)
}

// SetGroupTaskStatus updates a task's status within a group scope.
func (c *Client) SetGroupTaskStatus(ctx context.Context, token string, groupID, taskID int, status string) (*Task, error) {
	path := fmt.Sprintf("/pimpy/api/groups/%d/tasks/%d/status/", groupID, taskID)
	return c.putStatus(ctx, token, path, status)
}

func (c *Client) putStatus(ctx context.Context, token, path, status string) (*Task, error) {
	body := map[string]string{"status": status}
	var task Task
	if err := c.doRequest(ctx, token, http.MethodPut, path, body, &task); err != nil {
		return nil, err
	}
	if err := task.validate(); err != nil {
		return nil, err
	}
	return &task, nil
}
