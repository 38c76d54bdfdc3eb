package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/s4yuba/x-card-generator/internal/assembler"
	"github.com/s4yuba/x-card-generator/internal/batch"
	"github.com/s4yuba/x-card-generator/internal/compositor"
	"github.com/s4yuba/x-card-generator/internal/dom"
	"github.com/s4yuba/x-card-generator/internal/extractor"
	"github.com/s4yuba/x-card-generator/internal/render"
)

type stubLoader struct {
	pages map[string]string
}

func (l *stubLoader) Load(_ context.Context, canonicalURL string) (dom.View, func(), error) {
	html, ok := l.pages[canonicalURL]
	if !ok {
		return nil, nil, errors.New("navigation failed")
	}
	view, err := dom.NewHTMLView(html)
	if err != nil {
		return nil, nil, err
	}
	return view, func() {}, nil
}

func profilePage(username string) string {
	return fmt.Sprintf(`
<html><body>
  <div data-testid="UserName">
    <div dir="auto"><span><span>%s</span></span></div>
    <div dir="ltr"><span>@%s</span></div>
  </div>
</body></html>`, username, username)
}

func newTestRouter(pages map[string]string) *chi.Mux {
	logger := slog.Default()

	asm := assembler.New(extractor.New(logger), assembler.Options{
		Timeout:      50 * time.Millisecond,
		PollInterval: 5 * time.Millisecond,
		GracePeriod:  time.Millisecond,
	}, logger)
	renderer := render.New(nil, func(payload string, _ int) ([]byte, error) {
		return nil, errors.New("no encoder in tests")
	}, logger)

	orch := batch.New(&stubLoader{pages: pages}, asm, renderer, nil, nil, nil,
		batch.Options{MaxBatchSize: 5}, logger)

	handlers := NewHandlers(orch, compositor.New(logger), nil, logger)

	r := chi.NewRouter()
	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/cards", handlers.GenerateCard)
		r.Post("/cards/batch", handlers.GenerateBatch)
		r.Get("/runs/{runID}", handlers.GetRun)
	})
	return r
}

func postJSON(t *testing.T, router http.Handler, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	payload, err := json.Marshal(body)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func errorCode(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body["code"]
}

func TestGenerateCard(t *testing.T) {
	router := newTestRouter(map[string]string{
		"https://x.com/alice": profilePage("alice"),
	})

	rec := postJSON(t, router, "/api/v1/cards", CardRequest{URL: "https://x.com/alice"})

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/pdf", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "alice-card.pdf")
	assert.True(t, bytes.HasPrefix(rec.Body.Bytes(), []byte("%PDF")))
}

func TestGenerateCard_BadInput(t *testing.T) {
	router := newTestRouter(nil)

	tests := []struct {
		name       string
		body       interface{}
		wantStatus int
		wantCode   string
	}{
		{
			name:       "missing url",
			body:       CardRequest{},
			wantStatus: http.StatusBadRequest,
			wantCode:   "InvalidInput",
		},
		{
			name:       "unsupported host",
			body:       CardRequest{URL: "https://example.com/alice"},
			wantStatus: http.StatusBadRequest,
			wantCode:   "InvalidUrl",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := postJSON(t, router, "/api/v1/cards", tt.body)
			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Equal(t, tt.wantCode, errorCode(t, rec))
		})
	}
}

func TestGenerateBatch_PartialFailure(t *testing.T) {
	router := newTestRouter(map[string]string{
		"https://x.com/alice": profilePage("alice"),
	})

	rec := postJSON(t, router, "/api/v1/cards/batch", BatchRequest{
		URLs: []string{"https://x.com/alice", "https://example.com/bob"},
	})

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "1", rec.Header().Get("X-Skipped-Count"))
	assert.NotEmpty(t, rec.Header().Get("X-Run-Id"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "cards-1.pdf")
}

func TestGenerateBatch_AllFail(t *testing.T) {
	router := newTestRouter(nil)

	rec := postJSON(t, router, "/api/v1/cards/batch", BatchRequest{
		URLs: []string{"https://example.com/a", "https://example.com/b"},
	})

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Equal(t, "NoValidProfiles", errorCode(t, rec))
}

func TestGenerateBatch_TooLarge(t *testing.T) {
	router := newTestRouter(nil)

	urls := make([]string, 6)
	for i := range urls {
		urls[i] = fmt.Sprintf("https://x.com/user%d", i)
	}

	rec := postJSON(t, router, "/api/v1/cards/batch", BatchRequest{URLs: urls})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "BatchTooLarge", errorCode(t, rec))
}

func TestGetRun_HistoryDisabled(t *testing.T) {
	router := newTestRouter(nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/runs/some-id", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestTileConfig_Mapping(t *testing.T) {
	cfg := tileConfig(&LayoutRequest{
		PageSize:    "Letter",
		Columns:     2,
		Rows:        3,
		Spacing:     8,
		DoubleSided: true,
		BackFrame:   &FrameSize{W: 80, H: 50},
	})

	assert.Equal(t, compositor.PageLetter, cfg.PageSize)
	assert.Equal(t, 2, cfg.Columns)
	assert.Equal(t, 3, cfg.Rows)
	assert.Equal(t, 8.0, cfg.Spacing)
	assert.Equal(t, compositor.DuplexSequential, cfg.Duplex)
	assert.Equal(t, 80.0, cfg.BackWidth)

	// Split wins over double-sided when both are set.
	split := tileConfig(&LayoutRequest{DoubleSided: true, SplitSides: true})
	assert.Equal(t, compositor.DuplexSplit, split.Duplex)

	// No layout falls back to the defaults.
	assert.Equal(t, compositor.DefaultTileConfig(), tileConfig(nil))
}
