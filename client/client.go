// Package client is a typed HTTP client for the apartment listing API.
package client

import (
	"apartmenthub/models"
	"apartmenthub/validation"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/url"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/hashicorp/go-retryablehttp"
)

// Status codes retried for non-idempotent requests.
var transientStatuses = []int{
	http.StatusTooManyRequests,
	http.StatusBadGateway,
	http.StatusServiceUnavailable,
	http.StatusGatewayTimeout,
}

// Status codes retried for GET requests.
var transientGETStatuses = []int{
	http.StatusTooManyRequests,
	http.StatusInternalServerError,
	http.StatusBadGateway,
	http.StatusServiceUnavailable,
	http.StatusGatewayTimeout,
}

// APIError is a non-2xx response from the API.
type APIError struct {
	Status  int                     `json:"-"`
	Message string                  `json:"error"`
	Fields  []validation.FieldError `json:"fields,omitempty"`
}

func (e *APIError) Error() string {
	if len(e.Fields) == 0 {
		return fmt.Sprintf("api error %d: %s", e.Status, e.Message)
	}
	msgs := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		msgs = append(msgs, f.Message)
	}
	return fmt.Sprintf("api error %d: %s: %s", e.Status, e.Message, strings.Join(msgs, "; "))
}

// IsStatus reports whether err is an *APIError with the given status.
func IsStatus(err error, status int) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Status == status
}

type Client struct {
	baseURL *url.URL
	http    *retryablehttp.Client
}

type Option func(*retryablehttp.Client)

// WithHTTPClient replaces the underlying transport client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *retryablehttp.Client) { c.HTTPClient = hc }
}

// WithRetry sets the retry count and the backoff bounds.
func WithRetry(max int, waitMin, waitMax time.Duration) Option {
	return func(c *retryablehttp.Client) {
		c.RetryMax = max
		c.RetryWaitMin = waitMin
		c.RetryWaitMax = waitMax
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(c *retryablehttp.Client) { c.Logger = logger }
}

// New returns a Client for the API rooted at baseURL.
func New(baseURL string, opts ...Option) (*Client, error) {
	u, err := url.Parse(strings.TrimSuffix(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("invalid base URL: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid base URL %q: scheme and host required", baseURL)
	}

	rc := retryablehttp.NewClient()
	rc.HTTPClient = &http.Client{Timeout: 30 * time.Second}
	rc.RetryMax = 3
	rc.RetryWaitMin = 200 * time.Millisecond
	rc.RetryWaitMax = 2 * time.Second
	rc.Logger = nil
	rc.CheckRetry = checkRetry
	rc.ErrorHandler = retryablehttp.PassthroughErrorHandler

	for _, opt := range opts {
		opt(rc)
	}

	return &Client{baseURL: u, http: rc}, nil
}

// checkRetry retries transport errors and transient statuses. Only GET
// requests are retried on 500.
func checkRetry(ctx context.Context, resp *http.Response, err error) (bool, error) {
	if ctx.Err() != nil {
		return false, ctx.Err()
	}
	if err != nil || resp == nil {
		return retryablehttp.DefaultRetryPolicy(ctx, resp, err)
	}

	statuses := transientStatuses
	if resp.Request != nil && resp.Request.Method == http.MethodGet {
		statuses = transientGETStatuses
	}
	return slices.Contains(statuses, resp.StatusCode), nil
}

// ListApartments fetches one page. Zero-valued fields are left off the
// query string so the server applies its defaults.
func (c *Client) ListApartments(ctx context.Context, q models.ListApartmentsQuery) (*models.PaginatedApartments, error) {
	values := url.Values{}
	if q.Page > 0 {
		values.Set("page", strconv.Itoa(q.Page))
	}
	if q.PerPage > 0 {
		values.Set("perPage", strconv.Itoa(q.PerPage))
	}
	if q.Search != "" {
		values.Set("search", q.Search)
	}
	if q.Project != "" {
		values.Set("project", q.Project)
	}
	if q.Status != "" {
		values.Set("status", string(q.Status))
	}

	var page models.PaginatedApartments
	if err := c.do(ctx, http.MethodGet, "/v1/apartments", values, nil, "", &page); err != nil {
		return nil, err
	}
	return &page, nil
}

func (c *Client) Search(ctx context.Context, text string) ([]models.Apartment, error) {
	var results []models.Apartment
	err := c.do(ctx, http.MethodGet, "/v1/apartments/search", url.Values{"q": {text}}, nil, "", &results)
	return results, err
}

func (c *Client) GetApartment(ctx context.Context, id int64) (*models.Apartment, error) {
	var apt models.Apartment
	if err := c.do(ctx, http.MethodGet, "/v1/apartments/"+strconv.FormatInt(id, 10), nil, nil, "", &apt); err != nil {
		return nil, err
	}
	return &apt, nil
}

func (c *Client) ListProjects(ctx context.Context) ([]models.ProjectSummary, error) {
	var projects []models.ProjectSummary
	err := c.do(ctx, http.MethodGet, "/v1/apartments/projects", nil, nil, "", &projects)
	return projects, err
}

func (c *Client) CreateApartment(ctx context.Context, req models.CreateApartmentRequest) (*models.Apartment, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to encode request: %w", err)
	}

	var apt models.Apartment
	if err := c.do(ctx, http.MethodPost, "/v1/apartments/add-apartmen", nil, body, "application/json", &apt); err != nil {
		return nil, err
	}
	return &apt, nil
}

// UploadFile is one image to upload.
type UploadFile struct {
	Name string
	Data []byte
}

// UploadImages posts files as one multipart request and returns the URLs
// the server stored them under.
func (c *Client) UploadImages(ctx context.Context, files []UploadFile) ([]string, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for _, f := range files {
		part, err := mw.CreateFormFile("images", f.Name)
		if err != nil {
			return nil, fmt.Errorf("failed to add %s: %w", f.Name, err)
		}
		if _, err := part.Write(f.Data); err != nil {
			return nil, fmt.Errorf("failed to add %s: %w", f.Name, err)
		}
	}
	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("failed to finish multipart body: %w", err)
	}

	var resp models.UploadImagesResponse
	if err := c.do(ctx, http.MethodPost, "/v1/apartments/upload-images", nil, buf.Bytes(), mw.FormDataContentType(), &resp); err != nil {
		return nil, err
	}
	return resp.Images, nil
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body []byte, contentType string, out any) error {
	u := *c.baseURL
	u.Path += path
	u.RawQuery = query.Encode()

	var rawBody any
	if body != nil {
		rawBody = body
	}
	req, err := retryablehttp.NewRequestWithContext(ctx, method, u.String(), rawBody)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{Status: resp.StatusCode}
		if jerr := json.Unmarshal(data, apiErr); jerr != nil || apiErr.Message == "" {
			apiErr.Message = http.StatusText(resp.StatusCode)
		}
		return apiErr
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
