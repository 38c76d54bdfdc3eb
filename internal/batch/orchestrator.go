// Package batch drives the whole pipeline over a list of URLs. URLs
// are processed sequentially behind a rate limiter; one bad profile
// never aborts its siblings, and the result partitions cards from
// skipped inputs.
package batch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/s4yuba/x-card-generator/internal/assembler"
	"github.com/s4yuba/x-card-generator/internal/cache"
	"github.com/s4yuba/x-card-generator/internal/carderr"
	"github.com/s4yuba/x-card-generator/internal/dom"
	"github.com/s4yuba/x-card-generator/internal/models"
	"github.com/s4yuba/x-card-generator/internal/ratelimit"
	"github.com/s4yuba/x-card-generator/internal/render"
	"github.com/s4yuba/x-card-generator/internal/validator"
)

// PageLoader opens a canonical profile URL and hands back its DOM view
// plus a release func. Implemented by the browser layer and by test
// fixtures.
type PageLoader interface {
	Load(ctx context.Context, canonicalURL string) (dom.View, func(), error)
}

// Recorder persists a finished batch run. Optional.
type Recorder interface {
	Record(ctx context.Context, result *models.BatchResult) error
}

// Options bounds one orchestrator instance.
type Options struct {
	// MaxBatchSize rejects oversized batches before any work starts.
	MaxBatchSize int
	// Validator options applied to every input URL.
	Validator validator.Options
}

func DefaultOptions() Options {
	return Options{
		MaxBatchSize: 20,
		Validator:    validator.DefaultOptions(),
	}
}

type Orchestrator struct {
	loader    PageLoader
	assembler *assembler.Assembler
	renderer  *render.Renderer
	limiter   *ratelimit.AdaptiveRateLimiter
	cache     cache.ProfileCache
	recorder  Recorder
	opts      Options
	logger    *slog.Logger
}

func New(
	loader PageLoader,
	asm *assembler.Assembler,
	renderer *render.Renderer,
	limiter *ratelimit.AdaptiveRateLimiter,
	profileCache cache.ProfileCache,
	recorder Recorder,
	opts Options,
	logger *slog.Logger,
) *Orchestrator {
	if opts.MaxBatchSize <= 0 {
		opts.MaxBatchSize = DefaultOptions().MaxBatchSize
	}
	return &Orchestrator{
		loader:    loader,
		assembler: asm,
		renderer:  renderer,
		limiter:   limiter,
		cache:     profileCache,
		recorder:  recorder,
		opts:      opts,
		logger:    logger.With("component", "batch"),
	}
}

// ProcessBatch runs every URL through validate, assemble and render.
// Partial success is success: the error is non-nil only for up-front
// rejections (oversized batch) or when every single URL failed.
func (o *Orchestrator) ProcessBatch(ctx context.Context, urls []string, tmpl *render.Template, includeBack bool) (*models.BatchResult, error) {
	if len(urls) > o.opts.MaxBatchSize {
		return nil, carderr.Newf(carderr.CodeBatchTooLarge,
			"batch of %d exceeds the maximum of %d URLs", len(urls), o.opts.MaxBatchSize)
	}

	result := &models.BatchResult{
		RunID:     uuid.New().String(),
		StartedAt: time.Now(),
	}

	for _, rawURL := range urls {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		card, err := o.processOne(ctx, rawURL, tmpl, includeBack)
		if err != nil {
			o.logger.Warn("URL skipped", "url", rawURL, "error", err)
			result.Failed = append(result.Failed, failedURL(rawURL, err))
			continue
		}
		result.Succeeded = append(result.Succeeded, card)
	}

	result.CompletedAt = time.Now()

	if o.recorder != nil {
		if err := o.recorder.Record(ctx, result); err != nil {
			o.logger.Error("failed to record batch run", "run_id", result.RunID, "error", err)
		}
	}

	if len(urls) > 0 && len(result.Succeeded) == 0 {
		return result, carderr.Newf(carderr.CodeNoValidProfiles,
			"all %d URLs failed; first: %s", len(urls), result.Failed[0].Reason)
	}

	o.logger.Info("batch complete",
		"run_id", result.RunID,
		"succeeded", result.SucceededCount(),
		"failed", result.FailedCount(),
	)
	return result, nil
}

// ProcessOne is the single-URL entry point the API uses; same pipeline
// without the partition bookkeeping.
func (o *Orchestrator) ProcessOne(ctx context.Context, rawURL string, tmpl *render.Template, includeBack bool) (*models.Card, error) {
	return o.processOne(ctx, rawURL, tmpl, includeBack)
}

func (o *Orchestrator) processOne(ctx context.Context, rawURL string, tmpl *render.Template, includeBack bool) (*models.Card, error) {
	res := validator.Validate(rawURL, o.opts.Validator)
	if !res.Valid {
		return nil, res.Err
	}

	profile, err := o.resolveProfile(ctx, res.NormalizedURL)
	if err != nil {
		return nil, err
	}

	card, err := o.renderer.Render(ctx, profile, tmpl, includeBack)
	if err != nil {
		return nil, err
	}
	return card, nil
}

// resolveProfile consults the cache before paying for a page load.
func (o *Orchestrator) resolveProfile(ctx context.Context, canonicalURL string) (*models.Profile, error) {
	if o.cache != nil {
		if profile, ok := o.cache.Get(ctx, canonicalURL); ok {
			o.logger.Debug("profile served from cache", "url", canonicalURL)
			return profile, nil
		}
	}

	if o.limiter != nil {
		if err := o.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate limit wait interrupted: %w", err)
		}
	}

	view, release, err := o.loader.Load(ctx, canonicalURL)
	if err != nil {
		o.recordOutcome(false)
		return nil, fmt.Errorf("failed to load profile page: %w", err)
	}
	defer release()

	profile, err := o.assembler.Assemble(ctx, view, canonicalURL)
	if err != nil {
		o.recordOutcome(false)
		return nil, err
	}
	o.recordOutcome(true)

	if o.cache != nil {
		o.cache.Set(ctx, canonicalURL, profile)
	}
	return profile, nil
}

func (o *Orchestrator) recordOutcome(success bool) {
	if o.limiter == nil {
		return
	}
	if success {
		o.limiter.RecordSuccess()
	} else {
		o.limiter.RecordError()
	}
}

func failedURL(rawURL string, err error) models.FailedURL {
	code := carderr.CodeOf(err)
	reason := err.Error()
	var ce *carderr.Error
	if errors.As(err, &ce) {
		reason = ce.Message
	}
	return models.FailedURL{URL: rawURL, Code: string(code), Reason: reason}
}
