// Package render composes one Profile and one Template into a Card: an
// ordered list of immutable draw instructions per side. No drawing
// happens here; the compositor materializes the instructions onto a
// document. Given identical inputs the instruction lists are identical,
// which keeps cards snapshot-testable.
package render

import (
	"bytes"
	"context"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"log/slog"
	"strings"

	"github.com/s4yuba/x-card-generator/internal/carderr"
	"github.com/s4yuba/x-card-generator/internal/extractor"
	"github.com/s4yuba/x-card-generator/internal/models"
)

// AvatarFetcher downloads avatar bytes. A failed fetch is absorbed as a
// placeholder, never surfaced to the batch.
type AvatarFetcher interface {
	Fetch(ctx context.Context, url string) ([]byte, string, error)
}

// QREncoder turns a payload into PNG bytes of the given pixel size.
type QREncoder func(payload string, size int) ([]byte, error)

// placeholderPalette colors the avatar fallback circle; the pick is a
// stable function of the username so re-renders match.
var placeholderPalette = []models.Color{
	{R: 29, G: 155, B: 240},
	{R: 0, G: 186, B: 124},
	{R: 249, G: 24, B: 128},
	{R: 255, G: 212, B: 0},
	{R: 120, G: 86, B: 255},
}

type Renderer struct {
	fetcher AvatarFetcher
	encode  QREncoder
	logger  *slog.Logger
}

func New(fetcher AvatarFetcher, encode QREncoder, logger *slog.Logger) *Renderer {
	return &Renderer{
		fetcher: fetcher,
		encode:  encode,
		logger:  logger.With("component", "renderer"),
	}
}

// Render builds the card for profile. includeBack adds the QR side.
// Individual element failures degrade to placeholders; only an invalid
// template fails the card.
func (r *Renderer) Render(ctx context.Context, profile *models.Profile, tmpl *Template, includeBack bool) (*models.Card, error) {
	if err := tmpl.Validate(); err != nil {
		return nil, carderr.Wrap(carderr.CodeRenderError, "invalid template", err)
	}

	card := &models.Card{
		Username:   profile.Username,
		ProfileURL: profile.ProfileURL,
		Front:      r.renderFront(ctx, profile, tmpl),
	}

	if includeBack {
		back := r.renderBack(profile, tmpl)
		card.Back = &back
	}

	return card, nil
}

func (r *Renderer) renderFront(ctx context.Context, profile *models.Profile, tmpl *Template) models.Surface {
	surface := models.Surface{Width: tmpl.Width, Height: tmpl.Height}

	surface.Ops = append(surface.Ops, models.FillRect{
		X: 0, Y: 0, W: tmpl.Width, H: tmpl.Height, Color: tmpl.Background,
	})
	surface.Ops = append(surface.Ops, borderOps(tmpl)...)

	surface.Ops = append(surface.Ops, r.avatarOps(ctx, profile, tmpl)...)

	name := profile.DisplayName
	if name == "" {
		name = profile.Username
	}
	if profile.Verified {
		// The check mark renders as a text glyph next to the name.
		name = name + " ✓"
	}
	surface.Ops = append(surface.Ops, models.DrawText{
		Text: name,
		X:    tmpl.Name.X, Y: tmpl.Name.Y, W: tmpl.Name.W,
		Size: tmpl.NameSize, Color: tmpl.TextColor, Align: tmpl.NameAlign, Bold: true,
	})

	surface.Ops = append(surface.Ops, models.DrawText{
		Text: profile.Handle(),
		X:    tmpl.Handle.X, Y: tmpl.Handle.Y, W: tmpl.Handle.W,
		Size: tmpl.HandleSize, Color: tmpl.Subtle, Align: tmpl.NameAlign,
	})

	stats := fmt.Sprintf("%s Followers  ·  %s Following",
		extractor.FormatCount(profile.FollowerCount),
		extractor.FormatCount(profile.FollowingCount))
	surface.Ops = append(surface.Ops, models.DrawText{
		Text: stats,
		X:    tmpl.Stats.X, Y: tmpl.Stats.Y, W: tmpl.Stats.W,
		Size: tmpl.StatsSize, Color: tmpl.Subtle, Align: models.AlignCenter,
	})

	return surface
}

func (r *Renderer) renderBack(profile *models.Profile, tmpl *Template) models.Surface {
	surface := models.Surface{Width: tmpl.Width, Height: tmpl.Height}

	surface.Ops = append(surface.Ops, models.FillRect{
		X: 0, Y: 0, W: tmpl.Width, H: tmpl.Height, Color: tmpl.Background,
	})
	surface.Ops = append(surface.Ops, borderOps(tmpl)...)

	qrBytes, err := r.encode(profile.ProfileURL, int(tmpl.QR.W))
	if err != nil {
		r.logger.Warn("QR encode failed, using placeholder", "username", profile.Username, "error", err)
		surface.Ops = append(surface.Ops, models.FillRect{
			X: tmpl.QR.X, Y: tmpl.QR.Y, W: tmpl.QR.W, H: tmpl.QR.H, Color: tmpl.Subtle,
		})
	} else {
		surface.Ops = append(surface.Ops, models.DrawImage{
			Name:   "qr-" + profile.Username,
			Bytes:  qrBytes,
			Format: "png",
			X:      tmpl.QR.X, Y: tmpl.QR.Y, W: tmpl.QR.W, H: tmpl.QR.H,
		})
	}

	surface.Ops = append(surface.Ops, models.DrawText{
		Text: profile.ProfileURL,
		X:    tmpl.Caption.X, Y: tmpl.Caption.Y, W: tmpl.Caption.W,
		Size: tmpl.CaptionSize, Color: tmpl.Subtle, Align: models.AlignCenter,
	})

	return surface
}

// avatarOps fetches and validates the avatar, falling back to a colored
// circle carrying the profile's initial. The fallback is mandatory:
// avatar URLs point at an external CDN that fails routinely.
func (r *Renderer) avatarOps(ctx context.Context, profile *models.Profile, tmpl *Template) []models.DrawOp {
	box := tmpl.Avatar

	if profile.AvatarURL != "" && r.fetcher != nil {
		data, format, err := r.fetcher.Fetch(ctx, profile.AvatarURL)
		if err == nil {
			if _, _, decodeErr := image.DecodeConfig(bytes.NewReader(data)); decodeErr == nil {
				return []models.DrawOp{models.DrawImage{
					Name:   "avatar-" + profile.Username,
					Bytes:  data,
					Format: format,
					X:      box.X, Y: box.Y, W: box.W, H: box.H,
					CircleClip: true,
				}}
			}
			r.logger.Warn("avatar bytes undecodable, using placeholder", "username", profile.Username)
		} else {
			r.logger.Warn("avatar fetch failed, using placeholder",
				"username", profile.Username, "error", err)
		}
	}

	ops := []models.DrawOp{models.FillCircle{
		CX:    box.X + box.W/2,
		CY:    box.Y + box.H/2,
		R:     box.W / 2,
		Color: placeholderColor(profile.Username),
	}}
	if initial := initialOf(profile.Username); initial != "" {
		ops = append(ops, models.DrawText{
			Text: initial,
			X:    box.X, Y: box.Y + box.H/4, W: box.W,
			Size:  box.H / 2,
			Color: tmpl.Background,
			Align: models.AlignCenter,
			Bold:  true,
		})
	}
	return ops
}

// initialOf returns the username's first letter upper-cased.
func initialOf(username string) string {
	if username == "" {
		return ""
	}
	return strings.ToUpper(username[:1])
}

// borderOps frames the card edge as a cut guide.
func borderOps(tmpl *Template) []models.DrawOp {
	if !tmpl.Border {
		return nil
	}
	const bw = 2.0
	return []models.DrawOp{
		models.FillRect{X: 0, Y: 0, W: tmpl.Width, H: bw, Color: tmpl.Accent},
		models.FillRect{X: 0, Y: tmpl.Height - bw, W: tmpl.Width, H: bw, Color: tmpl.Accent},
		models.FillRect{X: 0, Y: 0, W: bw, H: tmpl.Height, Color: tmpl.Accent},
		models.FillRect{X: tmpl.Width - bw, Y: 0, W: bw, H: tmpl.Height, Color: tmpl.Accent},
	}
}

func placeholderColor(username string) models.Color {
	var sum int
	for _, c := range username {
		sum += int(c)
	}
	return placeholderPalette[sum%len(placeholderPalette)]
}
