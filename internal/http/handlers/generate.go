package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"veogen/internal/domain"
	"veogen/internal/media"
	"veogen/internal/runner"
)

type generateResponse struct {
	Job runner.Snapshot `json:"job"`
}

// StartGeneration accepts the form submission and kicks off a generation job.
// The three display options are accepted here and echoed in job snapshots but
// are never forwarded to the remote service.
func (a *App) StartGeneration(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(a.MaxImageBytes + 1<<20); err != nil {
		if errors.Is(err, http.ErrNotMultipart) {
			if err := r.ParseForm(); err != nil {
				a.error(w, http.StatusBadRequest, "bad_request", "invalid form payload")
				return
			}
		} else {
			a.error(w, http.StatusBadRequest, "bad_request", "invalid multipart payload")
			return
		}
	}
	if r.MultipartForm != nil {
		defer r.MultipartForm.RemoveAll()
	}

	image, ok := a.readImage(w, r)
	if !ok {
		return
	}

	input := runner.StartInput{
		APIKey: r.FormValue("api_key"),
		Prompt: r.FormValue("prompt"),
		Image:  image,
		Options: domain.DisplayOptions{
			AspectRatio: strings.TrimSpace(r.FormValue("aspect_ratio")),
			Resolution:  strings.TrimSpace(r.FormValue("resolution")),
			Sound:       parseCheckbox(r.FormValue("sound")),
		},
	}

	snap, err := a.Runner.Start(input)
	if err != nil {
		a.startError(w, err)
		return
	}

	a.json(w, http.StatusAccepted, generateResponse{Job: snap})
}

func (a *App) readImage(w http.ResponseWriter, r *http.Request) (*media.Image, bool) {
	file, header, err := r.FormFile("image")
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
			return nil, true
		}
		a.error(w, http.StatusBadRequest, "bad_image", "could not read image upload")
		return nil, false
	}
	defer file.Close()

	image, err := media.ReadLimited(file, a.MaxImageBytes, header.Filename, header.Header.Get("Content-Type"))
	if err != nil {
		switch {
		case errors.Is(err, media.ErrImageTooLarge):
			a.error(w, http.StatusRequestEntityTooLarge, "image_too_large", "reference image exceeds the size limit")
		case errors.Is(err, media.ErrNotAnImage):
			a.error(w, http.StatusBadRequest, "bad_image", "uploaded file is not an image")
		default:
			a.error(w, http.StatusBadRequest, "bad_image", "could not read image upload")
		}
		return nil, false
	}
	return image, true
}

func (a *App) startError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrMissingAPIKey):
		a.error(w, http.StatusBadRequest, "missing_api_key", "Please enter your API key")
	case errors.Is(err, domain.ErrMissingPrompt):
		a.error(w, http.StatusBadRequest, "missing_prompt", "Please enter a prompt")
	case errors.Is(err, domain.ErrMalformedPrompt):
		a.error(w, http.StatusBadRequest, "malformed_prompt", "Prompt looks like JSON but could not be parsed")
	case errors.Is(err, domain.ErrJobRunning):
		a.error(w, http.StatusConflict, "job_running", "A generation is already in progress")
	default:
		a.Logger.Error().Err(err).Msg("handlers: start generation failed")
		a.error(w, http.StatusInternalServerError, "internal", "failed to start generation")
	}
}

func parseCheckbox(v string) bool {
	v = strings.TrimSpace(strings.ToLower(v))
	if v == "on" {
		return true
	}
	parsed, err := strconv.ParseBool(v)
	return err == nil && parsed
}
