package runner

import (
	"context"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"veogen/internal/domain"
	"veogen/internal/infra"
	"veogen/internal/media"
	"veogen/internal/veo"
)

// GenerateClient is the remote surface the runner drives. *veo.Client
// satisfies it; tests substitute stubs.
type GenerateClient interface {
	SubmitGeneration(ctx context.Context, apiKey string, req *veo.Request) (string, error)
	GetOperation(ctx context.Context, apiKey, name string) (*veo.Operation, error)
	DownloadVideo(ctx context.Context, apiKey, uri string) ([]byte, string, error)
}

// Options configures a Runner.
type Options struct {
	Client       GenerateClient
	Logger       *infra.Logger
	PollInterval time.Duration
	Sleep        veo.SleepFunc
	Now          func() time.Time
	// BaseContext bounds background job runs; defaults to context.Background.
	// Canceling it (e.g. on shutdown) stops an in-flight poll loop.
	BaseContext context.Context
}

// StartInput carries the validated form fields for one generation.
type StartInput struct {
	APIKey  string
	Prompt  string
	Image   *media.Image
	Options domain.DisplayOptions
}

// Snapshot is the externally visible state of the current job.
type Snapshot struct {
	ID         string                `json:"id"`
	Status     domain.JobStatus      `json:"status"`
	Message    string                `json:"message,omitempty"`
	Error      string                `json:"error,omitempty"`
	Options    domain.DisplayOptions `json:"options"`
	VideoReady bool                  `json:"video_ready"`
	StartedAt  time.Time             `json:"started_at"`
	UpdatedAt  time.Time             `json:"updated_at"`
}

// Runner owns the single job slot and executes the submit → poll → fetch
// sequence in a background goroutine. At most one job runs at a time;
// starting a new one discards the previous job and its result.
type Runner struct {
	client  GenerateClient
	logger  *infra.Logger
	poller  veo.Poller
	now     func() time.Time
	baseCtx context.Context

	mu  sync.Mutex
	job *domain.Job
}

// New constructs a Runner. The client is required.
func New(opts Options) *Runner {
	logger := opts.Logger
	if logger == nil {
		discard := zerolog.New(io.Discard)
		l := infra.Logger(discard)
		logger = &l
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	baseCtx := opts.BaseContext
	if baseCtx == nil {
		baseCtx = context.Background()
	}
	return &Runner{
		client:  opts.Client,
		logger:  logger,
		poller:  veo.Poller{Interval: opts.PollInterval, Sleep: opts.Sleep},
		now:     now,
		baseCtx: baseCtx,
	}
}

// Start validates the input and, if no job is in flight, records a new queued
// job and launches the generation sequence. Validation failures never touch
// the network.
func (r *Runner) Start(in StartInput) (Snapshot, error) {
	apiKey := strings.TrimSpace(in.APIKey)
	if apiKey == "" {
		return Snapshot{}, domain.ErrMissingAPIKey
	}

	req, err := veo.BuildRequest(veo.BuildInput{Prompt: in.Prompt, Image: in.Image})
	if err != nil {
		return Snapshot{}, err
	}

	r.mu.Lock()
	if r.job != nil && r.job.Status.Running() {
		r.mu.Unlock()
		return Snapshot{}, domain.ErrJobRunning
	}
	started := r.now()
	job := &domain.Job{
		ID:        uuid.NewString(),
		Status:    domain.JobStatusQueued,
		Options:   in.Options,
		StartedAt: started,
		UpdatedAt: started,
	}
	r.job = job
	snap := r.snapshotLocked()
	r.mu.Unlock()

	r.logger.Info().
		Str("job_id", job.ID).
		Str("prompt", req.Prompt()).
		Msg("runner: generation accepted")

	go r.run(job.ID, apiKey, req)

	return snap, nil
}

// Snapshot returns the current job state, or domain.ErrNoJob when nothing has
// been submitted yet.
func (r *Runner) Snapshot() (Snapshot, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.job == nil {
		return Snapshot{}, domain.ErrNoJob
	}
	return r.snapshotLocked(), nil
}

// Result returns the fetched video for the current job.
func (r *Runner) Result() (*domain.VideoResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.job == nil {
		return nil, domain.ErrNoJob
	}
	if r.job.Result == nil {
		return nil, domain.ErrNoResult
	}
	return r.job.Result, nil
}

func (r *Runner) run(jobID, apiKey string, req *veo.Request) {
	ctx := r.baseCtx

	r.transition(jobID, domain.JobStatusSubmitting, func(j *domain.Job) {})

	operation, err := r.client.SubmitGeneration(ctx, apiKey, req)
	if err != nil {
		r.fail(jobID, err)
		return
	}

	r.transition(jobID, domain.JobStatusPolling, func(j *domain.Job) {
		j.Operation = operation
	})

	var last *veo.Operation
	err = r.poller.Wait(ctx, func(ctx context.Context) (bool, error) {
		op, err := r.client.GetOperation(ctx, apiKey, operation)
		if err != nil {
			return false, err
		}
		last = op
		return op.Done, nil
	})
	if err != nil {
		r.fail(jobID, err)
		return
	}

	uri := last.VideoURI()
	if uri == "" {
		r.fail(jobID, domain.ErrNoVideoURI)
		return
	}

	data, mime, err := r.client.DownloadVideo(ctx, apiKey, uri)
	if err != nil {
		r.fail(jobID, err)
		return
	}

	r.transition(jobID, domain.JobStatusSucceeded, func(j *domain.Job) {
		j.Result = &domain.VideoResult{Data: data, MIMEType: mime, URI: uri}
	})

	r.logger.Info().
		Str("job_id", jobID).
		Int("bytes", len(data)).
		Msg("runner: generation succeeded")
}

// transition mutates the job slot only while it still belongs to jobID; a
// newer submission may have replaced it.
func (r *Runner) transition(jobID string, status domain.JobStatus, mutate func(j *domain.Job)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.job == nil || r.job.ID != jobID {
		return
	}
	r.job.Status = status
	r.job.UpdatedAt = r.now()
	mutate(r.job)
}

func (r *Runner) fail(jobID string, err error) {
	r.logger.Error().
		Err(err).
		Str("job_id", jobID).
		Msg("runner: generation failed")
	r.transition(jobID, domain.JobStatusFailed, func(j *domain.Job) {
		j.ErrorMessage = err.Error()
	})
}

func (r *Runner) snapshotLocked() Snapshot {
	j := r.job
	snap := Snapshot{
		ID:         j.ID,
		Status:     j.Status,
		Error:      j.ErrorMessage,
		Options:    j.Options,
		VideoReady: j.Result != nil,
		StartedAt:  j.StartedAt,
		UpdatedAt:  j.UpdatedAt,
	}
	if j.Status.Running() {
		snap.Message = statusMessage(r.now().Sub(j.StartedAt))
	}
	return snap
}
