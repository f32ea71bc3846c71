package referral

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/shaiso/Dispatch/internal/telemetry"
)

const (
	defaultTimeout      = 30 * time.Second
	defaultAPIKeyHeader = "X-Api-Key"
	maxResponseBody     = 10 * 1024 * 1024 // 10 MB
)

// Response — ответ Referral API.
type Response struct {
	StatusCode int
	Body       []byte
}

// IsSuccess возвращает true для кодов 2xx.
func (r *Response) IsSuccess() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

// IsNoContent возвращает true для 204.
func (r *Response) IsNoContent() bool {
	return r.StatusCode == http.StatusNoContent
}

// StatusName возвращает имя кода ответа в виде "InternalServerError".
// Для неизвестных кодов — число.
func (r *Response) StatusName() string {
	return StatusName(r.StatusCode)
}

// StatusName форматирует HTTP-код как слитное имя: 404 → "NotFound",
// 500 → "InternalServerError". Неизвестные коды возвращаются числом.
func StatusName(code int) string {
	text := http.StatusText(code)
	if text == "" {
		return strconv.Itoa(code)
	}

	var b strings.Builder
	upper := true
	for _, r := range text {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			// апостроф внутри слова ("I'm") не начинает новое слово
			upper = r != '\''
			continue
		}
		if upper {
			r = unicode.ToUpper(r)
			upper = false
		}
		b.WriteRune(r)
	}
	return b.String()
}

// Client — клиент Referral API.
type Client struct {
	baseURL      *url.URL
	apiKey       string
	apiKeyHeader string
	httpClient   *http.Client
}

// Config — конфигурация Client.
type Config struct {
	BaseURL      string
	APIKey       string
	APIKeyHeader string        // default: X-Api-Key
	Timeout      time.Duration // default: 30s
	HTTPClient   *http.Client  // опционально, для тестов
}

// NewClient создаёт клиент.
func NewClient(cfg Config) (*Client, error) {
	base, err := url.Parse(cfg.BaseURL)
	if err != nil || base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("%w: %q", ErrInvalidURL, cfg.BaseURL)
	}

	header := cfg.APIKeyHeader
	if header == "" {
		header = defaultAPIKeyHeader
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = defaultTimeout
		}
		httpClient = &http.Client{Timeout: timeout}
	}

	return &Client{
		baseURL:      base,
		apiKey:       cfg.APIKey,
		apiKeyHeader: header,
		httpClient:   httpClient,
	}, nil
}

// Post выполняет POST без тела на path относительно BaseURL.
//
// Любой полученный ответ (включая 4xx/5xx) возвращается без ошибки.
// Ошибка означает сбой транспорта и оборачивает ErrRequestFailed.
func (c *Client) Post(ctx context.Context, path string) (*Response, error) {
	target, err := c.resolve(path)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, target, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("%w: create request: %v", ErrRequestFailed, err)
	}
	req.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		req.Header.Set(c.apiKeyHeader, c.apiKey)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		telemetry.ObserveReferralRequest(path, 0, time.Since(start))
		return nil, fmt.Errorf("%w: %v", ErrRequestFailed, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBody))
	telemetry.ObserveReferralRequest(path, resp.StatusCode, time.Since(start))
	if err != nil {
		return nil, fmt.Errorf("%w: read response: %v", ErrRequestFailed, err)
	}

	return &Response{StatusCode: resp.StatusCode, Body: body}, nil
}

// resolve склеивает BaseURL и path без потери префикса BaseURL.
func (c *Client) resolve(path string) (string, error) {
	rel, err := url.Parse(path)
	if err != nil {
		return "", fmt.Errorf("%w: path %q: %v", ErrInvalidURL, path, err)
	}

	u := *c.baseURL
	u.Path = strings.TrimSuffix(u.Path, "/") + "/" + strings.TrimPrefix(rel.Path, "/")
	u.RawQuery = rel.RawQuery
	return u.String(), nil
}
