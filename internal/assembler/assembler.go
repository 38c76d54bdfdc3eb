// Package assembler turns a loaded page into a validated Profile. The
// page hydrates client-side, so the assembler polls the DOM view for a
// primary field before doing its one full extraction pass. Only the
// username is load-bearing; every other field degrades to a default.
package assembler

import (
	"context"
	"log/slog"
	"time"

	"github.com/s4yuba/x-card-generator/internal/carderr"
	"github.com/s4yuba/x-card-generator/internal/dom"
	"github.com/s4yuba/x-card-generator/internal/extractor"
	"github.com/s4yuba/x-card-generator/internal/models"
	"github.com/s4yuba/x-card-generator/internal/validator"
)

// Options bounds the hydration wait.
type Options struct {
	// Timeout caps the whole poll; a page that never hydrates fails
	// with ExtractionTimeout instead of stalling the batch.
	Timeout time.Duration
	// PollInterval is the DOM re-check spacing during hydration.
	PollInterval time.Duration
	// GracePeriod is the extra settle time after the first primary
	// field appears, before the single full extraction pass.
	GracePeriod time.Duration
}

func DefaultOptions() Options {
	return Options{
		Timeout:      5 * time.Second,
		PollInterval: 100 * time.Millisecond,
		GracePeriod:  250 * time.Millisecond,
	}
}

type Assembler struct {
	extractor *extractor.Extractor
	opts      Options
	logger    *slog.Logger
}

func New(ex *extractor.Extractor, opts Options, logger *slog.Logger) *Assembler {
	if opts.Timeout <= 0 {
		opts = DefaultOptions()
	}
	return &Assembler{
		extractor: ex,
		opts:      opts,
		logger:    logger.With("component", "assembler"),
	}
}

// Assemble polls view until a primary field hydrates, then extracts
// every field once. sourceURL must already be canonical; it doubles as
// the username fallback when the page never yields one.
func (a *Assembler) Assemble(ctx context.Context, view dom.View, sourceURL string) (*models.Profile, error) {
	hydrated := a.waitForHydration(ctx, view)

	if hydrated {
		if err := a.sleep(ctx, a.opts.GracePeriod); err != nil {
			return nil, err
		}
	} else {
		a.logger.Warn("page never hydrated a primary field", "url", sourceURL)
	}

	profile := a.extractAll(view, sourceURL)

	if profile.Username == "" {
		username, ok := validator.UsernameFromPath(sourceURL)
		if !ok {
			if !hydrated {
				return nil, carderr.Newf(carderr.CodeExtractionTimeout,
					"page did not hydrate within %s and %q names no username", a.opts.Timeout, sourceURL)
			}
			return nil, carderr.Newf(carderr.CodeMissingRequiredField,
				"no username on page or in URL %q", sourceURL)
		}
		a.logger.Info("username recovered from URL path", "username", username)
		profile.Username = username
	}

	if profile.DisplayName == "" {
		profile.DisplayName = profile.Username
	}
	profile.ExtractedAt = time.Now()

	a.logger.Info("profile assembled",
		"username", profile.Username,
		"verified", profile.Verified,
		"followers", profile.FollowerCount,
	)
	return profile, nil
}

// waitForHydration polls for either primary field until the bound
// expires. Returns true the moment one resolves.
func (a *Assembler) waitForHydration(ctx context.Context, view dom.View) bool {
	deadline := time.Now().Add(a.opts.Timeout)
	ticker := time.NewTicker(a.opts.PollInterval)
	defer ticker.Stop()

	for {
		if a.primaryResolved(view) {
			return true
		}
		if time.Now().After(deadline) {
			return false
		}

		select {
		case <-ctx.Done():
			return false
		case <-ticker.C:
		}
	}
}

func (a *Assembler) primaryResolved(view dom.View) bool {
	if _, ok := a.extractor.Extract(extractor.FieldUsername, view); ok {
		return true
	}
	_, ok := a.extractor.Extract(extractor.FieldDisplayName, view)
	return ok
}

func (a *Assembler) extractAll(view dom.View, sourceURL string) *models.Profile {
	profile := &models.Profile{ProfileURL: sourceURL}

	if username, ok := a.extractor.Extract(extractor.FieldUsername, view); ok {
		profile.Username = username
	}
	if name, ok := a.extractor.Extract(extractor.FieldDisplayName, view); ok {
		profile.DisplayName = name
	}
	if bio, ok := a.extractor.Extract(extractor.FieldBio, view); ok {
		profile.Bio = bio
	}
	if avatar, ok := a.extractor.Extract(extractor.FieldAvatarURL, view); ok {
		profile.AvatarURL = extractor.UpscaleAvatarURL(avatar)
	}
	profile.FollowerCount = a.extractor.ExtractCount(extractor.FieldFollowerCount, view)
	profile.FollowingCount = a.extractor.ExtractCount(extractor.FieldFollowingCount, view)
	profile.Verified = a.extractor.Verified(view)

	return profile
}

func (a *Assembler) sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
