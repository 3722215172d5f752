package codacy

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/hashicorp/go-retryablehttp"
	"github.com/tidwall/gjson"
)

const (
	// DefaultBaseURL is the public Codacy API.
	DefaultBaseURL = "https://app.codacy.com/api/v3"

	// ESLintToolUUID identifies the ESLint tool in Codacy's tool catalog.
	ESLintToolUUID = "f8b29663-2cb2-498d-b923-a10c6a8c05cd"
)

// RetryPolicy bounds the retry behavior applied to every API request.
// Only transient failures (network errors, 5xx responses) are retried;
// 4xx responses get exactly one attempt.
type RetryPolicy struct {
	MaxRetries int
	WaitMin    time.Duration
	WaitMax    time.Duration
}

// DefaultRetryPolicy retries transient failures up to 3 times (4 attempts
// total) with exponential backoff between 1s and 4s.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxRetries: 3,
		WaitMin:    1 * time.Second,
		WaitMax:    4 * time.Second,
	}
}

// APIError is a non-2xx response, carrying the full body for diagnosis.
type APIError struct {
	StatusCode int
	Body       string
	Title      string
}

func (e *APIError) Error() string {
	if e.Title != "" {
		return fmt.Sprintf("API request failed with status %d: %s", e.StatusCode, e.Title)
	}
	body := strings.TrimSpace(e.Body)
	if body == "" {
		return fmt.Sprintf("API request failed with status %d", e.StatusCode)
	}
	return fmt.Sprintf("API request failed with status %d: %s", e.StatusCode, body)
}

// Transient reports whether the failure is worth retrying.
func (e *APIError) Transient() bool {
	return e.StatusCode >= 500
}

// Tool is one analysis tool attached to a coding standard.
type Tool struct {
	UUID string
}

// Response is a successful API response body.
type Response struct {
	StatusCode int
	Body       string
}

// Client talks to the Codacy coding-standards API for one organization.
// It is the only component in the pipeline with network side effects.
type Client struct {
	BaseURL      string
	Provider     string
	Organization string

	token        string
	http         *retryablehttp.Client
	lastAttempts int
}

// NewClient builds an API client with the given retry policy and per-request
// timeout. A zero timeout keeps the HTTP client's default behavior.
func NewClient(baseURL, provider, organization, token string, timeout time.Duration, policy RetryPolicy) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	c := &Client{
		BaseURL:      strings.TrimSuffix(baseURL, "/"),
		Provider:     provider,
		Organization: organization,
		token:        token,
	}

	rc := retryablehttp.NewClient()
	rc.Logger = log.New(io.Discard, "", 0)
	rc.RetryMax = policy.MaxRetries
	rc.RetryWaitMin = policy.WaitMin
	rc.RetryWaitMax = policy.WaitMax
	rc.HTTPClient.Timeout = timeout
	rc.CheckRetry = func(ctx context.Context, resp *http.Response, err error) (bool, error) {
		if ctx.Err() != nil {
			return false, ctx.Err()
		}
		if err != nil {
			return true, nil
		}
		return resp.StatusCode >= 500, nil
	}
	rc.RequestLogHook = func(_ retryablehttp.Logger, _ *http.Request, retryNumber int) {
		c.lastAttempts = retryNumber + 1
	}
	// Keep the final response on retry exhaustion; the body is the only
	// diagnostic worth reporting.
	rc.ErrorHandler = retryablehttp.PassthroughErrorHandler
	c.http = rc

	return c
}

// SetProxy routes all requests through an HTTP proxy. Useful for debugging
// with an intercepting proxy, hence the relaxed TLS verification.
func (c *Client) SetProxy(proxy string) error {
	proxyURL, err := url.Parse(proxy)
	if err != nil {
		return fmt.Errorf("invalid proxy URL: %w", err)
	}
	c.http.HTTPClient.Transport = &http.Transport{
		Proxy:           http.ProxyURL(proxyURL),
		TLSClientConfig: &tls.Config{InsecureSkipVerify: true},
	}
	return nil
}

func (c *Client) orgPath() string {
	return fmt.Sprintf("/organizations/%s/%s", c.Provider, c.Organization)
}

// do runs one API request through the retrying client and returns the
// response body together with the number of attempts consumed.
func (c *Client) do(method, path string, payload interface{}) (*Response, int, error) {
	var body io.Reader
	if payload != nil {
		encoded, err := json.Marshal(payload)
		if err != nil {
			return nil, 0, fmt.Errorf("encoding request payload: %w", err)
		}
		body = bytes.NewReader(encoded)
	}

	req, err := retryablehttp.NewRequest(method, c.BaseURL+path, body)
	if err != nil {
		return nil, 0, err
	}
	req.Header.Set("api-token", c.token)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", "application/json")

	c.lastAttempts = 0
	resp, err := c.http.Do(req)
	attempts := c.lastAttempts
	if attempts == 0 {
		attempts = 1
	}
	if err != nil {
		return nil, attempts, fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, attempts, fmt.Errorf("%s %s: reading response: %w", method, path, err)
	}
	bodyString := string(raw)

	if resp.StatusCode >= 400 {
		return nil, attempts, &APIError{
			StatusCode: resp.StatusCode,
			Body:       bodyString,
			Title:      htmlTitle(bodyString),
		}
	}

	return &Response{StatusCode: resp.StatusCode, Body: bodyString}, attempts, nil
}

// htmlTitle extracts the <title> of an HTML error page, if the body is one.
// Gateways and WAFs in front of the API answer with HTML, and the title is
// usually the only useful line in it.
func htmlTitle(body string) string {
	if gjson.Valid(body) || !strings.Contains(body, "<") {
		return ""
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(body))
	if err != nil {
		return ""
	}
	return strings.TrimSpace(doc.Find("title").First().Text())
}

type createStandardPayload struct {
	Name      string   `json:"name"`
	Languages []string `json:"languages"`
}

// CreateStandard creates a draft coding standard and returns its identifier.
func (c *Client) CreateStandard(name string, languages []string) (string, *Response, int, error) {
	resp, attempts, err := c.do(http.MethodPost, c.orgPath()+"/coding-standards", createStandardPayload{
		Name:      name,
		Languages: languages,
	})
	if err != nil {
		return "", nil, attempts, err
	}

	id := gjson.Get(resp.Body, "data.id").String()
	if id == "" {
		return "", resp, attempts, fmt.Errorf("create response carries no standard id: %s", resp.Body)
	}
	return id, resp, attempts, nil
}

// ListTools lists the tools attached to a coding standard.
func (c *Client) ListTools(standardID string) ([]Tool, int, error) {
	path := fmt.Sprintf("%s/coding-standards/%s/tools", c.orgPath(), standardID)
	resp, attempts, err := c.do(http.MethodGet, path, nil)
	if err != nil {
		return nil, attempts, err
	}

	var tools []Tool
	for _, entry := range gjson.Get(resp.Body, "data").Array() {
		if uuid := entry.Get("uuid").String(); uuid != "" {
			tools = append(tools, Tool{UUID: uuid})
		}
	}
	return tools, attempts, nil
}

type updateToolPayload struct {
	Enabled  bool      `json:"enabled"`
	Patterns []Pattern `json:"patterns"`
}

// UpdateTool enables or disables one tool on a coding standard, configuring
// its full pattern set in a single call.
func (c *Client) UpdateTool(standardID, toolUUID string, enabled bool, patterns []Pattern) (*Response, int, error) {
	if patterns == nil {
		patterns = []Pattern{}
	}
	path := fmt.Sprintf("%s/coding-standards/%s/tools/%s", c.orgPath(), standardID, toolUUID)
	return c.do(http.MethodPatch, path, updateToolPayload{Enabled: enabled, Patterns: patterns})
}

// PromoteStandard moves a draft standard into effect.
func (c *Client) PromoteStandard(standardID string) (*Response, int, error) {
	path := fmt.Sprintf("%s/coding-standards/%s/promote", c.orgPath(), standardID)
	return c.do(http.MethodPost, path, nil)
}
