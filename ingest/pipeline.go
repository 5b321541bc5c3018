package ingest

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"
	"time"

	"github.com/google/uuid"
	"github.com/panjf2000/ants/v2"

	"github.com/auricle-ai/auricle/ai"
	"github.com/auricle-ai/auricle/chunker"
	"github.com/auricle-ai/auricle/core"
	"github.com/auricle-ai/auricle/storage"
)

// DefaultMaxFailureFraction is the fraction of chunks that may fail
// embedding before the whole job is failed instead of indexed degraded.
const DefaultMaxFailureFraction = 0.5

// DefaultEmbedTimeout bounds a single chunk's embedding call.
const DefaultEmbedTimeout = 30 * time.Second

// Pipeline orchestrates ingestion jobs: chunking raw sources, embedding
// the chunks, and atomically installing the result in the index store.
// Jobs run asynchronously on a worker pool; callers poll Job for status.
type Pipeline struct {
	chunkRepository    storage.ChunkRepository
	jobRepository      storage.JobRepository
	embedder           ai.Embedder
	splitter           *chunker.Splitter
	jobPool            *ants.Pool
	embedPool          *ants.Pool
	maxFailureFraction float64
	embedTimeout       time.Duration
	retry              ai.RetryPolicy
	logger             *slog.Logger
}

// Option configures a Pipeline.
type Option func(*Pipeline) error

// WithPoolSize sets the worker pool size for concurrent jobs.
// Default is runtime.NumCPU() / 2, with a minimum of 1.
func WithPoolSize(size int) Option {
	return func(p *Pipeline) error {
		if size < 1 {
			size = 1
		}
		if p.jobPool != nil {
			p.jobPool.Release()
		}
		pool, err := ants.NewPool(size)
		if err != nil {
			return err
		}
		p.jobPool = pool
		return nil
	}
}

// WithEmbedConcurrency sets the number of chunks embedded concurrently
// across all running jobs. Default is runtime.NumCPU(), minimum 1.
func WithEmbedConcurrency(size int) Option {
	return func(p *Pipeline) error {
		if size < 1 {
			size = 1
		}
		if p.embedPool != nil {
			p.embedPool.Release()
		}
		pool, err := ants.NewPool(size)
		if err != nil {
			return err
		}
		p.embedPool = pool
		return nil
	}
}

// WithChunkerConfig overrides the chunking configuration.
func WithChunkerConfig(cfg chunker.Config) Option {
	return func(p *Pipeline) error {
		p.splitter = chunker.NewSplitter(cfg)
		return nil
	}
}

// WithMaxFailureFraction sets the fraction of chunks that may fail
// embedding before the job fails. Values are clamped to [0, 1].
func WithMaxFailureFraction(fraction float64) Option {
	return func(p *Pipeline) error {
		if fraction < 0 {
			fraction = 0
		}
		if fraction > 1 {
			fraction = 1
		}
		p.maxFailureFraction = fraction
		return nil
	}
}

// WithEmbedTimeout bounds each chunk's embedding call.
func WithEmbedTimeout(timeout time.Duration) Option {
	return func(p *Pipeline) error {
		if timeout <= 0 {
			timeout = DefaultEmbedTimeout
		}
		p.embedTimeout = timeout
		return nil
	}
}

// WithRetryPolicy sets the retry policy for embedding calls.
func WithRetryPolicy(policy ai.RetryPolicy) Option {
	return func(p *Pipeline) error {
		if policy.MaxAttempts < 1 {
			return ai.ErrInvalidMaxAttempts
		}
		p.retry = policy
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) error {
		if logger == nil {
			logger = slog.Default()
		}
		p.logger = logger
		return nil
	}
}

// NewPipeline creates a new ingestion pipeline.
func NewPipeline(
	chunkRepository storage.ChunkRepository,
	jobRepository storage.JobRepository,
	provider ai.Provider,
	opts ...Option,
) (*Pipeline, error) {
	if chunkRepository == nil {
		return nil, ErrChunkRepositoryRequired
	}
	if jobRepository == nil {
		return nil, ErrJobRepositoryRequired
	}
	if provider == nil {
		return nil, ErrProviderRequired
	}

	poolSize := runtime.NumCPU() / 2
	if poolSize < 1 {
		poolSize = 1
	}
	jobPool, err := ants.NewPool(poolSize)
	if err != nil {
		return nil, err
	}

	embedPool, err := ants.NewPool(runtime.NumCPU())
	if err != nil {
		jobPool.Release()
		return nil, err
	}

	p := &Pipeline{
		chunkRepository:    chunkRepository,
		jobRepository:      jobRepository,
		embedder:           provider.Embedder(),
		splitter:           chunker.NewSplitter(chunker.DefaultConfig()),
		jobPool:            jobPool,
		embedPool:          embedPool,
		maxFailureFraction: DefaultMaxFailureFraction,
		embedTimeout:       DefaultEmbedTimeout,
		retry:              ai.DefaultRetryPolicy(),
		logger:             slog.Default(),
	}

	// Apply options (may override defaults)
	for _, opt := range opts {
		if optErr := opt(p); optErr != nil {
			p.Release()
			return nil, optErr
		}
	}

	return p, nil
}

// Ingest queues an ingestion job for an owner scope and returns its ID.
// The job replaces the scope's previous chunk set when it completes; a
// job whose generation has been superseded by a later Ingest call for
// the same scope fails instead of overwriting the newer result.
func (p *Pipeline) Ingest(ctx context.Context, ownerScope string, source Source) (string, error) {
	if ownerScope == "" {
		return "", fmt.Errorf("%w: %w", ErrInvalidSource, core.ErrEmptyOwnerScope)
	}
	if err := source.validate(); err != nil {
		return "", err
	}

	generation, err := p.chunkRepository.NextGeneration(ctx, ownerScope)
	if err != nil {
		return "", err
	}

	now := time.Now().UTC()
	job := &core.IngestionJob{
		Id:         uuid.NewString(),
		OwnerScope: ownerScope,
		Source:     source.Type,
		Stage:      core.JobStageQueued,
		Generation: generation,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := p.jobRepository.PutJob(ctx, job); err != nil {
		return "", err
	}

	if err := p.jobPool.Submit(func() {
		p.run(context.Background(), job, source)
	}); err != nil {
		return "", err
	}

	p.logger.Info("ingestion job queued",
		"job", job.Id, "scope", ownerScope, "source", source.Type.String(), "generation", generation)
	return job.Id, nil
}

// Job returns the current record of a previously queued job.
func (p *Pipeline) Job(ctx context.Context, id string) (*core.IngestionJob, error) {
	return p.jobRepository.GetJob(ctx, id)
}

// Release releases the worker pools. Jobs already running are allowed to
// finish; the pipeline should not be used after calling Release.
func (p *Pipeline) Release() {
	if p.jobPool != nil {
		p.jobPool.Release()
	}
	if p.embedPool != nil {
		p.embedPool.Release()
	}
}
