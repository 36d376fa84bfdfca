package veo

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

	"github.com/rs/zerolog"

	"veogen/internal/infra"
)

// Options controls how the Veo client is configured.
type Options struct {
	BaseURL    string
	Model      string
	HTTPClient *http.Client
	Logger     *infra.Logger
}

// Client talks to the Veo long-running generation endpoints of the Gemini
// REST API. The caller supplies the API key per call because every request is
// made with a user-provided credential, appended as a query parameter the way
// the upstream API expects.
type Client struct {
	baseURL    string
	model      string
	httpClient *http.Client
	logger     *infra.Logger
}

// Operation mirrors the long-running operation resource returned by the API.
type Operation struct {
	Name     string             `json:"name"`
	Done     bool               `json:"done"`
	Error    *OperationError    `json:"error,omitempty"`
	Response *operationResponse `json:"response,omitempty"`
}

// OperationError is the terminal error payload of a failed operation.
type OperationError struct {
	Code    int    `json:"code,omitempty"`
	Message string `json:"message,omitempty"`
}

type operationResponse struct {
	GenerateVideoResponse *generateVideoResponse `json:"generateVideoResponse,omitempty"`
}

type generateVideoResponse struct {
	GeneratedSamples []generatedSample `json:"generatedSamples,omitempty"`
}

type generatedSample struct {
	Video *sampleVideo `json:"video,omitempty"`
}

type sampleVideo struct {
	URI string `json:"uri,omitempty"`
}

type apiErrorResponse struct {
	Error struct {
		Code    int    `json:"code,omitempty"`
		Message string `json:"message,omitempty"`
		Status  string `json:"status,omitempty"`
	} `json:"error"`
}

// VideoURI returns the asset locator of the first generated sample, or "".
func (o *Operation) VideoURI() string {
	if o == nil || o.Response == nil || o.Response.GenerateVideoResponse == nil {
		return ""
	}
	for _, sample := range o.Response.GenerateVideoResponse.GeneratedSamples {
		if sample.Video != nil && strings.TrimSpace(sample.Video.URI) != "" {
			return strings.TrimSpace(sample.Video.URI)
		}
	}
	return ""
}

// NewClient constructs a Veo client with sane defaults. Callers may provide a
// nil HTTP client; a reusable one with a generous timeout is created.
func NewClient(opts Options) (*Client, error) {
	client := opts.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: 120 * time.Second}
	}

	baseURL := strings.TrimRight(opts.BaseURL, "/")
	if baseURL == "" {
		baseURL = "https://generativelanguage.googleapis.com/v1beta"
	}

	model := strings.TrimSpace(opts.Model)
	if model == "" {
		model = "veo-2.0-generate-001"
	}

	var logger *infra.Logger
	if opts.Logger != nil {
		logger = opts.Logger
	} else {
		discard := zerolog.New(io.Discard)
		l := infra.Logger(discard)
		logger = &l
	}

	return &Client{
		baseURL:    baseURL,
		model:      model,
		httpClient: client,
		logger:     logger,
	}, nil
}

// Model returns the configured Veo model identifier.
func (c *Client) Model() string {
	return c.model
}

// SubmitGeneration starts a long-running generation and returns the opaque
// operation name used for polling.
func (c *Client) SubmitGeneration(ctx context.Context, apiKey string, req *Request) (string, error) {
	if strings.TrimSpace(apiKey) == "" {
		return "", errors.New("veo: api key is required")
	}
	if req == nil || len(req.Instances) == 0 {
		return "", errors.New("veo: request has no instances")
	}

	path := fmt.Sprintf("/models/%s:predictLongRunning", url.PathEscape(c.model))
	var op Operation
	if err := c.invoke(ctx, http.MethodPost, path, apiKey, req, &op); err != nil {
		return "", err
	}
	if strings.TrimSpace(op.Name) == "" {
		return "", errors.New("veo: submission returned no operation name")
	}

	c.logger.Debug().
		Str("model", c.model).
		Str("operation", op.Name).
		Msg("veo: generation submitted")

	return op.Name, nil
}

// GetOperation fetches the current state of a long-running operation.
func (c *Client) GetOperation(ctx context.Context, apiKey, name string) (*Operation, error) {
	if strings.TrimSpace(name) == "" {
		return nil, errors.New("veo: operation name is required")
	}
	var op Operation
	if err := c.invoke(ctx, http.MethodGet, "/"+strings.TrimLeft(name, "/"), apiKey, nil, &op); err != nil {
		return nil, err
	}
	if op.Done && op.Error != nil {
		return nil, fmt.Errorf("veo: operation failed: %s", op.Error.Message)
	}
	return &op, nil
}

// DownloadVideo fetches the produced asset from its locator with the
// credential appended as a query parameter. A non-success status is a
// terminal error carrying the transport status code.
func (c *Client) DownloadVideo(ctx context.Context, apiKey, uri string) ([]byte, string, error) {
	target, err := url.Parse(strings.TrimSpace(uri))
	if err != nil || target.Scheme == "" {
		return nil, "", fmt.Errorf("veo: invalid video uri %q", uri)
	}
	q := target.Query()
	if apiKey != "" {
		q.Set("key", apiKey)
	}
	target.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target.String(), nil)
	if err != nil {
		return nil, "", fmt.Errorf("veo: build download request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("veo: download video: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusMultipleChoices {
		return nil, "", fmt.Errorf("veo: download status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, "", fmt.Errorf("veo: read video: %w", err)
	}
	mime := resp.Header.Get("Content-Type")
	if mime == "" {
		mime = "video/mp4"
	}

	c.logger.Debug().
		Int("bytes", len(data)).
		Str("mime", mime).
		Msg("veo: downloaded video asset")

	return data, mime, nil
}

func (c *Client) invoke(ctx context.Context, method, path, apiKey string, payload, out any) error {
	endpoint := c.baseURL + path
	var body io.Reader
	if payload != nil {
		encoded, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("veo: encode request: %w", err)
		}
		body = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return fmt.Errorf("veo: build request: %w", err)
	}
	q := req.URL.Query()
	if apiKey != "" {
		q.Set("key", apiKey)
	}
	req.URL.RawQuery = q.Encode()
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("veo: http request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		var apiErr apiErrorResponse
		if err := json.NewDecoder(resp.Body).Decode(&apiErr); err == nil && apiErr.Error.Message != "" {
			return fmt.Errorf("veo: status %d: %s", resp.StatusCode, apiErr.Error.Message)
		}
		data, _ := io.ReadAll(resp.Body)
		if len(data) > 0 {
			return fmt.Errorf("veo: status %d: %s", resp.StatusCode, strings.TrimSpace(string(data)))
		}
		return fmt.Errorf("veo: status %d", resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("veo: decode response: %w", err)
	}
	return nil
}
