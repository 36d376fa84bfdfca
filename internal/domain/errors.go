package domain

import "errors"

var (
	ErrMissingAPIKey   = errors.New("api key is required")
	ErrMissingPrompt   = errors.New("prompt is required")
	ErrMalformedPrompt = errors.New("prompt JSON is malformed")
	ErrNoVideoURI      = errors.New("completed operation has no video uri")
	ErrJobRunning      = errors.New("a generation job is already running")
	ErrNoJob           = errors.New("no generation job")
	ErrNoResult        = errors.New("no generated video available")
)
