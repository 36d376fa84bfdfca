package veo

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"
	"testing"
)

func TestSubmitGenerationPayloadAndCredential(t *testing.T) {
	transport := &captureTransport{responses: map[string]responseStub{}}
	client := newTestClient(t, transport)
	transport.setJSONResponse("/v1beta/models/veo-2.0-generate-001:predictLongRunning", map[string]any{
		"name": "models/veo-2.0-generate-001/operations/op-123",
	})

	req, err := BuildRequest(BuildInput{Prompt: "a cat"})
	if err != nil {
		t.Fatalf("build request: %v", err)
	}
	name, err := client.SubmitGeneration(context.Background(), "secret-key", req)
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if name != "models/veo-2.0-generate-001/operations/op-123" {
		t.Fatalf("operation name = %q", name)
	}
	if got := transport.lastQuery.Get("key"); got != "secret-key" {
		t.Fatalf("key query param = %q, want secret-key", got)
	}

	var payload map[string]any
	if err := json.Unmarshal(transport.lastBody, &payload); err != nil {
		t.Fatalf("decode payload: %v", err)
	}
	instances := payload["instances"].([]any)
	if len(instances) != 1 {
		t.Fatalf("instances len = %d, want 1", len(instances))
	}
	if prompt := instances[0].(map[string]any)["prompt"]; prompt != "a cat" {
		t.Fatalf("prompt = %v, want a cat", prompt)
	}
	params := payload["parameters"].(map[string]any)
	if n := params["numberOfVideos"]; n != float64(1) {
		t.Fatalf("numberOfVideos = %v, want 1", n)
	}
}

func TestSubmitGenerationRequiresAPIKey(t *testing.T) {
	transport := &captureTransport{responses: map[string]responseStub{}}
	client := newTestClient(t, transport)

	req, _ := BuildRequest(BuildInput{Prompt: "a cat"})
	if _, err := client.SubmitGeneration(context.Background(), "  ", req); err == nil {
		t.Fatalf("expected error for blank api key")
	}
	if transport.calls != 0 {
		t.Fatalf("no network call expected, got %d", transport.calls)
	}
}

func TestSubmitGenerationDecodesErrorEnvelope(t *testing.T) {
	transport := &captureTransport{responses: map[string]responseStub{}}
	client := newTestClient(t, transport)
	transport.responses["/v1beta/models/veo-2.0-generate-001:predictLongRunning"] = responseStub{
		status: http.StatusBadRequest,
		header: http.Header{"Content-Type": []string{"application/json"}},
		body:   []byte(`{"error":{"code":400,"message":"API key not valid","status":"INVALID_ARGUMENT"}}`),
	}

	req, _ := BuildRequest(BuildInput{Prompt: "a cat"})
	_, err := client.SubmitGeneration(context.Background(), "bad", req)
	if err == nil || !strings.Contains(err.Error(), "API key not valid") {
		t.Fatalf("err = %v, want api error message", err)
	}
}

func TestGetOperationDoneWithVideoURI(t *testing.T) {
	transport := &captureTransport{responses: map[string]responseStub{}}
	client := newTestClient(t, transport)
	transport.setJSONResponse("/v1beta/models/veo-2.0-generate-001/operations/op-123", map[string]any{
		"name": "models/veo-2.0-generate-001/operations/op-123",
		"done": true,
		"response": map[string]any{
			"generateVideoResponse": map[string]any{
				"generatedSamples": []any{
					map[string]any{"video": map[string]any{"uri": "https://example.com/files/video-1"}},
				},
			},
		},
	})

	op, err := client.GetOperation(context.Background(), "secret-key", "models/veo-2.0-generate-001/operations/op-123")
	if err != nil {
		t.Fatalf("get operation: %v", err)
	}
	if !op.Done {
		t.Fatalf("done = false, want true")
	}
	if uri := op.VideoURI(); uri != "https://example.com/files/video-1" {
		t.Fatalf("uri = %q", uri)
	}
}

func TestGetOperationTerminalError(t *testing.T) {
	transport := &captureTransport{responses: map[string]responseStub{}}
	client := newTestClient(t, transport)
	transport.setJSONResponse("/v1beta/ops/op-9", map[string]any{
		"name":  "ops/op-9",
		"done":  true,
		"error": map[string]any{"code": 13, "message": "generation failed"},
	})

	_, err := client.GetOperation(context.Background(), "secret-key", "ops/op-9")
	if err == nil || !strings.Contains(err.Error(), "generation failed") {
		t.Fatalf("err = %v, want operation failure", err)
	}
}

func TestDownloadVideoAppendsCredential(t *testing.T) {
	transport := &captureTransport{responses: map[string]responseStub{}}
	client := newTestClient(t, transport)
	transport.setBinaryResponse("https://example.com/files/video-1?alt=media&key=secret-key", []byte{0x00, 0x01, 0x02})

	data, mime, err := client.DownloadVideo(context.Background(), "secret-key", "https://example.com/files/video-1?alt=media")
	if err != nil {
		t.Fatalf("download: %v", err)
	}
	if len(data) != 3 {
		t.Fatalf("data len = %d, want 3", len(data))
	}
	if mime != "video/mp4" {
		t.Fatalf("mime = %q, want video/mp4", mime)
	}
}

func TestDownloadVideoNonSuccessStatus(t *testing.T) {
	transport := &captureTransport{responses: map[string]responseStub{}}
	client := newTestClient(t, transport)
	transport.responses["https://example.com/files/video-1?key=secret-key"] = responseStub{
		status: http.StatusForbidden,
		body:   []byte("denied"),
	}

	_, _, err := client.DownloadVideo(context.Background(), "secret-key", "https://example.com/files/video-1")
	if err == nil || !strings.Contains(err.Error(), "403") {
		t.Fatalf("err = %v, want status 403", err)
	}
}

func newTestClient(t *testing.T, transport http.RoundTripper) *Client {
	t.Helper()
	client, err := NewClient(Options{
		BaseURL:    "https://generativelanguage.example.com/v1beta",
		Model:      "veo-2.0-generate-001",
		HTTPClient: &http.Client{Transport: transport},
	})
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	return client
}

type captureTransport struct {
	responses map[string]responseStub
	lastBody  []byte
	lastQuery url.Values
	calls     int
}

type responseStub struct {
	status int
	header http.Header
	body   []byte
}

func (c *captureTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	c.calls++
	c.lastQuery = req.URL.Query()
	if req.Body != nil {
		body, err := io.ReadAll(req.Body)
		if err != nil {
			return nil, err
		}
		req.Body.Close()
		c.lastBody = body
	}
	if stub, ok := c.responses[req.URL.Path]; ok {
		return stub.toResponse(), nil
	}
	bare := *req.URL
	bare.RawQuery = ""
	for _, key := range []string{req.URL.String(), bare.String()} {
		if stub, ok := c.responses[key]; ok {
			return stub.toResponse(), nil
		}
	}
	return &http.Response{
		StatusCode: http.StatusNotFound,
		Body:       io.NopCloser(strings.NewReader("not found")),
	}, nil
}

func (c *captureTransport) setJSONResponse(path string, payload any) {
	body, _ := json.Marshal(payload)
	c.responses[path] = responseStub{
		status: http.StatusOK,
		header: http.Header{"Content-Type": []string{"application/json"}},
		body:   body,
	}
}

func (c *captureTransport) setBinaryResponse(url string, data []byte) {
	c.responses[url] = responseStub{
		status: http.StatusOK,
		header: http.Header{"Content-Type": []string{"video/mp4"}},
		body:   data,
	}
}

func (s responseStub) toResponse() *http.Response {
	header := http.Header{}
	for k, values := range s.header {
		cloned := make([]string, len(values))
		copy(cloned, values)
		header[k] = cloned
	}
	return &http.Response{
		StatusCode: s.status,
		Header:     header,
		Body:       io.NopCloser(bytes.NewReader(s.body)),
	}
}
