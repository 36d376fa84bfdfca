package veo

import (
	"errors"
	"testing"

	"veogen/internal/domain"
	"veogen/internal/media"
)

func TestBuildRequestPlainText(t *testing.T) {
	req, err := BuildRequest(BuildInput{Prompt: "a cat"})
	if err != nil {
		t.Fatalf("build request: %v", err)
	}
	if got := req.Prompt(); got != "a cat" {
		t.Fatalf("prompt = %q, want %q", got, "a cat")
	}
	if n := req.Parameters["numberOfVideos"]; n != DefaultSampleCount {
		t.Fatalf("numberOfVideos = %v, want %d", n, DefaultSampleCount)
	}
	if _, ok := req.Instances[0]["image"]; ok {
		t.Fatalf("image should be absent without an upload")
	}
}

func TestBuildRequestStructuredOverride(t *testing.T) {
	req, err := BuildRequest(BuildInput{Prompt: `{"prompt":"x"}`})
	if err != nil {
		t.Fatalf("build request: %v", err)
	}
	if got := req.Prompt(); got != "x" {
		t.Fatalf("prompt = %q, want %q", got, "x")
	}
	if len(req.Instances) != 1 || len(req.Instances[0]) != 1 {
		t.Fatalf("instance carries unexpected fields: %#v", req.Instances)
	}
	if n := req.Parameters["numberOfVideos"]; n != DefaultSampleCount {
		t.Fatalf("numberOfVideos = %v, want default %d", n, DefaultSampleCount)
	}
}

func TestBuildRequestStructuredParametersMerge(t *testing.T) {
	req, err := BuildRequest(BuildInput{
		Prompt: `{"prompt":"sunset timelapse","negativePrompt":"rain","parameters":{"durationSeconds":8}}`,
	})
	if err != nil {
		t.Fatalf("build request: %v", err)
	}
	if got := req.Prompt(); got != "sunset timelapse" {
		t.Fatalf("prompt = %q", got)
	}
	if neg := req.Instances[0]["negativePrompt"]; neg != "rain" {
		t.Fatalf("negativePrompt = %v, want rain", neg)
	}
	if d := req.Parameters["durationSeconds"]; d != float64(8) {
		t.Fatalf("durationSeconds = %v, want 8", d)
	}
	if n := req.Parameters["numberOfVideos"]; n != DefaultSampleCount {
		t.Fatalf("numberOfVideos = %v, default must survive merge", n)
	}
}

func TestBuildRequestMalformedJSON(t *testing.T) {
	_, err := BuildRequest(BuildInput{Prompt: "{foo"})
	if !errors.Is(err, domain.ErrMalformedPrompt) {
		t.Fatalf("err = %v, want ErrMalformedPrompt", err)
	}
}

func TestBuildRequestEmptyPrompt(t *testing.T) {
	for _, prompt := range []string{"", "   ", `{"negativePrompt":"rain"}`, `{"prompt":"  "}`} {
		if _, err := BuildRequest(BuildInput{Prompt: prompt}); !errors.Is(err, domain.ErrMissingPrompt) {
			t.Fatalf("prompt %q: err = %v, want ErrMissingPrompt", prompt, err)
		}
	}
}

func TestBuildRequestAttachesImage(t *testing.T) {
	img := &media.Image{Data: []byte{0x01, 0x02}, MIMEType: "image/png"}
	req, err := BuildRequest(BuildInput{Prompt: "a cat", Image: img})
	if err != nil {
		t.Fatalf("build request: %v", err)
	}
	node, ok := req.Instances[0]["image"].(map[string]any)
	if !ok {
		t.Fatalf("image node missing: %#v", req.Instances[0])
	}
	if node["mimeType"] != "image/png" {
		t.Fatalf("mimeType = %v", node["mimeType"])
	}
	if node["bytesBase64Encoded"] != img.Base64() {
		t.Fatalf("bytesBase64Encoded mismatch")
	}
}
