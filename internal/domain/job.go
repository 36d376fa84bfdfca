package domain

import "time"

// JobStatus enumerates the lifecycle states of a generation job.
type JobStatus string

const (
	JobStatusQueued     JobStatus = "queued"
	JobStatusSubmitting JobStatus = "submitting"
	JobStatusPolling    JobStatus = "polling"
	JobStatusSucceeded  JobStatus = "succeeded"
	JobStatusFailed     JobStatus = "failed"
)

// Running reports whether the status denotes an in-flight job.
func (s JobStatus) Running() bool {
	switch s {
	case JobStatusQueued, JobStatusSubmitting, JobStatusPolling:
		return true
	}
	return false
}

// DisplayOptions are accepted by the form and echoed back for rendering but
// are intentionally never transmitted to the remote service.
type DisplayOptions struct {
	AspectRatio string `json:"aspect_ratio,omitempty"`
	Resolution  string `json:"resolution,omitempty"`
	Sound       bool   `json:"sound"`
}

// Job tracks a single remote video-generation task. At most one job exists at
// a time; starting a new one discards the previous job and its result.
type Job struct {
	ID           string
	Status       JobStatus
	Operation    string
	Options      DisplayOptions
	ErrorMessage string
	StartedAt    time.Time
	UpdatedAt    time.Time
	Result       *VideoResult
}

// VideoResult holds the fetched binary asset for the lifetime of the job slot.
type VideoResult struct {
	Data     []byte
	MIMEType string
	URI      string
}
