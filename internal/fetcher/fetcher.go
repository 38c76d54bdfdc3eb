// Package fetcher downloads avatar images. Failures here are always
// absorbed by the renderer as placeholders, so the only contract is
// bytes-or-error with a bounded wait.
package fetcher

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/s4yuba/x-card-generator/internal/carderr"
)

// maxImageBytes caps the download; profile avatars are far below this.
const maxImageBytes = 5 << 20

type ImageFetcher struct {
	client *http.Client
	logger *slog.Logger
}

func New(timeout time.Duration, logger *slog.Logger) *ImageFetcher {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &ImageFetcher{
		client: &http.Client{Timeout: timeout},
		logger: logger.With("component", "fetcher"),
	}
}

// Fetch downloads url and returns the bytes plus the gofpdf image type
// ("png" or "jpg") derived from the response.
func (f *ImageFetcher) Fetch(ctx context.Context, url string) ([]byte, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, "", carderr.Wrap(carderr.CodeAssetFetchFailed, "bad avatar URL", err)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, "", carderr.Wrap(carderr.CodeAssetFetchFailed, "avatar download failed", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, "", carderr.Newf(carderr.CodeAssetFetchFailed,
			"avatar download returned %d", resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxImageBytes+1))
	if err != nil {
		return nil, "", carderr.Wrap(carderr.CodeAssetFetchFailed, "avatar read failed", err)
	}
	if len(data) > maxImageBytes {
		return nil, "", carderr.Newf(carderr.CodeAssetFetchFailed,
			"avatar exceeds %d bytes", maxImageBytes)
	}

	format := formatFor(resp.Header.Get("Content-Type"), url, data)
	f.logger.Debug("avatar fetched", "url", url, "bytes", len(data), "format", format)
	return data, format, nil
}

func formatFor(contentType, url string, data []byte) string {
	switch {
	case strings.Contains(contentType, "png"):
		return "png"
	case strings.Contains(contentType, "jpeg"), strings.Contains(contentType, "jpg"):
		return "jpg"
	}
	if strings.HasSuffix(url, ".png") {
		return "png"
	}
	// PNG magic bytes; anything else is treated as JPEG, the CDN's
	// usual default.
	if len(data) > 8 && string(data[1:4]) == "PNG" {
		return "png"
	}
	return "jpg"
}
