package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"veogen/internal/domain"
)

// CurrentGeneration reports the state of the single tracked job.
func (a *App) CurrentGeneration(w http.ResponseWriter, r *http.Request) {
	snap, err := a.Runner.Snapshot()
	if err != nil {
		if errors.Is(err, domain.ErrNoJob) {
			a.error(w, http.StatusNotFound, "no_job", "no generation has been submitted")
			return
		}
		a.Logger.Error().Err(err).Msg("handlers: snapshot failed")
		a.error(w, http.StatusInternalServerError, "internal", "failed to read job state")
		return
	}
	a.json(w, http.StatusOK, generateResponse{Job: snap})
}

// CurrentVideo streams the fetched asset with a download-friendly disposition.
func (a *App) CurrentVideo(w http.ResponseWriter, r *http.Request) {
	result, err := a.Runner.Result()
	if err != nil {
		if errors.Is(err, domain.ErrNoJob) || errors.Is(err, domain.ErrNoResult) {
			a.error(w, http.StatusNotFound, "no_result", "no generated video available")
			return
		}
		a.Logger.Error().Err(err).Msg("handlers: result failed")
		a.error(w, http.StatusInternalServerError, "internal", "failed to read video")
		return
	}

	snap, err := a.Runner.Snapshot()
	if err != nil {
		a.error(w, http.StatusInternalServerError, "internal", "failed to read job state")
		return
	}

	mime := result.MIMEType
	if mime == "" {
		mime = "video/mp4"
	}
	w.Header().Set("Content-Type", mime)
	w.Header().Set("Content-Length", strconv.Itoa(len(result.Data)))
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", videoFilename(snap.ID, mime)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(result.Data)
}

func videoFilename(jobID, mime string) string {
	ext := ".mp4"
	if idx := strings.Index(mime, "/"); idx >= 0 && idx < len(mime)-1 {
		if suffix := mime[idx+1:]; suffix != "" && suffix != "mp4" {
			ext = "." + suffix
		}
	}
	if jobID == "" {
		return "generated-video" + ext
	}
	return "generated-video-" + jobID + ext
}
