package cli

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

// --- Response types (дублируются из api/dto.go, чтобы клиент не зависел от сервера) ---

// RunResponse — run из API.
type RunResponse struct {
	ID          string `json:"id"`
	Job         string `json:"job"`
	Reason      string `json:"reason"`
	Status      string `json:"status"`
	Message     string `json:"message,omitempty"`
	ScheduledAt string `json:"scheduled_at"`
	StartedAt   string `json:"started_at"`
	FinishedAt  string `json:"finished_at,omitempty"`
	DurationMs  int64  `json:"duration_ms,omitempty"`
}

// TriggerResponse — принятый триггер.
type TriggerResponse struct {
	Job    string `json:"job"`
	Reason string `json:"reason"`
}

// ScheduleResponse — состояние расписания на сервере.
type ScheduleResponse struct {
	Job     string `json:"job"`
	NextDue string `json:"next_due"`
	Leader  bool   `json:"leader"`
}

// ListRunsOpts — параметры фильтрации runs.
type ListRunsOpts struct {
	Status string
	Limit  int
	Offset int
}

// --- API response wrappers ---

type dataResponse struct {
	Data json.RawMessage `json:"data"`
}

// Page — окно выборки, которое вернул сервер.
type Page struct {
	Limit  int `json:"limit"`
	Offset int `json:"offset"`
	Count  int `json:"count"`
}

type listResponse struct {
	Data json.RawMessage `json:"data"`
	Page Page            `json:"page"`
}

type errorResponse struct {
	Error struct {
		Code      string `json:"code"`
		Message   string `json:"message"`
		RequestID string `json:"request_id"`
	} `json:"error"`
}

// APIError — ошибка, возвращённая API.
type APIError struct {
	StatusCode int
	Code       string
	Message    string
	RequestID  string
}

func (e *APIError) Error() string {
	if e.Code == "" {
		return fmt.Sprintf("API error: HTTP %d", e.StatusCode)
	}
	if e.RequestID != "" {
		return fmt.Sprintf("%s: %s (request %s)", e.Code, e.Message, e.RequestID)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// --- Client ---

// Client — HTTP-клиент для API планировщика.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient создаёт клиент для API.
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// ListRuns возвращает историю runs с фильтрацией и окно выборки.
func (c *Client) ListRuns(opts ListRunsOpts) ([]RunResponse, Page, error) {
	params := url.Values{}
	if opts.Status != "" {
		params.Set("status", opts.Status)
	}
	if opts.Limit > 0 {
		params.Set("limit", strconv.Itoa(opts.Limit))
	}
	if opts.Offset > 0 {
		params.Set("offset", strconv.Itoa(opts.Offset))
	}

	var runs []RunResponse
	page, err := c.list("/api/v1/runs", params, &runs)
	return runs, page, err
}

// GetRun возвращает run по ID.
func (c *Client) GetRun(id string) (*RunResponse, error) {
	var run RunResponse
	err := c.doData(http.MethodGet, "/api/v1/runs/"+url.PathEscape(id), nil, &run)
	return &run, err
}

// Trigger просит планировщик выполнить внеплановый run.
func (c *Client) Trigger(reason string) (*TriggerResponse, error) {
	body := map[string]string{"reason": reason}
	var resp TriggerResponse
	err := c.doData(http.MethodPost, "/api/v1/trigger", body, &resp)
	return &resp, err
}

// Schedule возвращает состояние расписания на сервере.
func (c *Client) Schedule() (*ScheduleResponse, error) {
	var resp ScheduleResponse
	err := c.doData(http.MethodGet, "/api/v1/schedule", nil, &resp)
	return &resp, err
}

func (c *Client) list(path string, params url.Values, result any) (Page, error) {
	if len(params) > 0 {
		path = path + "?" + params.Encode()
	}

	resp, err := c.do(http.MethodGet, path, nil)
	if err != nil {
		return Page{}, err
	}
	defer resp.Body.Close()

	if err := checkError(resp); err != nil {
		return Page{}, err
	}

	var lr listResponse
	if err := json.NewDecoder(resp.Body).Decode(&lr); err != nil {
		return Page{}, fmt.Errorf("failed to decode response: %w", err)
	}

	return lr.Page, json.Unmarshal(lr.Data, result)
}

func (c *Client) doData(method, path string, body any, result any) error {
	resp, err := c.do(method, path, body)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if err := checkError(resp); err != nil {
		return err
	}

	var dr dataResponse
	if err := json.NewDecoder(resp.Body).Decode(&dr); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}

	if result != nil {
		return json.Unmarshal(dr.Data, result)
	}
	return nil
}

func (c *Client) do(method, path string, body any) (*http.Response, error) {
	var bodyReader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request: %w", err)
		}
		bodyReader = bytes.NewReader(data)
	}

	req, err := http.NewRequest(method, c.baseURL+path, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	return c.httpClient.Do(req)
}

func checkError(resp *http.Response) error {
	if resp.StatusCode < 400 {
		return nil
	}

	apiErr := &APIError{StatusCode: resp.StatusCode}
	var er errorResponse
	if err := json.NewDecoder(resp.Body).Decode(&er); err == nil {
		apiErr.Code = er.Error.Code
		apiErr.Message = er.Error.Message
		apiErr.RequestID = er.Error.RequestID
	}
	return apiErr
}
