package veo

import (
	"encoding/json"
	"fmt"
	"strings"

	"veogen/internal/domain"
	"veogen/internal/media"
)

// DefaultSampleCount is the number of videos requested per generation.
const DefaultSampleCount = 1

// Request is the JSON body submitted to the predictLongRunning endpoint.
type Request struct {
	Instances  []map[string]any `json:"instances"`
	Parameters map[string]any   `json:"parameters,omitempty"`
}

// BuildInput carries the user-entered prompt and the optional reference image.
type BuildInput struct {
	Prompt string
	Image  *media.Image
}

// BuildRequest merges the default request with the user prompt. A trimmed
// prompt that opens an object literal is decoded as a structured payload whose
// fields override the defaults: a "parameters" object merges over the default
// parameters, every other key merges over the instance. Plain text becomes
// the instance prompt directly. After merging the instance must carry a
// non-empty prompt.
func BuildRequest(in BuildInput) (*Request, error) {
	instance := map[string]any{}
	parameters := map[string]any{
		"numberOfVideos": DefaultSampleCount,
	}

	prompt := strings.TrimSpace(in.Prompt)
	if strings.HasPrefix(prompt, "{") {
		var overrides map[string]any
		if err := json.Unmarshal([]byte(prompt), &overrides); err != nil {
			return nil, fmt.Errorf("%w: %v", domain.ErrMalformedPrompt, err)
		}
		for key, value := range overrides {
			if key == "parameters" {
				if params, ok := value.(map[string]any); ok {
					for pk, pv := range params {
						parameters[pk] = pv
					}
					continue
				}
			}
			instance[key] = value
		}
	} else if prompt != "" {
		instance["prompt"] = prompt
	}

	text, _ := instance["prompt"].(string)
	if strings.TrimSpace(text) == "" {
		return nil, domain.ErrMissingPrompt
	}

	if in.Image != nil && len(in.Image.Data) > 0 {
		instance["image"] = map[string]any{
			"bytesBase64Encoded": in.Image.Base64(),
			"mimeType":           in.Image.MIMEType,
		}
	}

	return &Request{
		Instances:  []map[string]any{instance},
		Parameters: parameters,
	}, nil
}

// Prompt returns the merged instance prompt text.
func (r *Request) Prompt() string {
	if r == nil || len(r.Instances) == 0 {
		return ""
	}
	text, _ := r.Instances[0]["prompt"].(string)
	return text
}
