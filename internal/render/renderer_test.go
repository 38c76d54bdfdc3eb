package render

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/png"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/s4yuba/x-card-generator/internal/carderr"
	"github.com/s4yuba/x-card-generator/internal/models"
)

type fakeFetcher struct {
	data   []byte
	format string
	err    error
}

func (f *fakeFetcher) Fetch(_ context.Context, _ string) ([]byte, string, error) {
	return f.data, f.format, f.err
}

func pngBytes(t *testing.T) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 4, 4))))
	return buf.Bytes()
}

func testProfile() *models.Profile {
	return &models.Profile{
		Username:       "someuser",
		DisplayName:    "Some User",
		AvatarURL:      "https://pbs.twimg.com/profile_images/123/abc_400x400.png",
		FollowerCount:  1200,
		FollowingCount: 321,
		ProfileURL:     "https://x.com/someuser",
	}
}

func okEncoder(payload string, size int) ([]byte, error) {
	return []byte("qr:" + payload), nil
}

func TestRender_FrontWithAvatar(t *testing.T) {
	r := New(&fakeFetcher{data: pngBytes(t), format: "png"}, okEncoder, slog.Default())

	card, err := r.Render(context.Background(), testProfile(), DefaultTemplate(), false)
	require.NoError(t, err)

	assert.Equal(t, "someuser", card.Username)
	assert.Nil(t, card.Back)

	img := findImage(card.Front, "avatar-someuser")
	require.NotNil(t, img)
	assert.True(t, img.CircleClip)

	stats := findText(card.Front, "1.2K Followers  ·  321 Following")
	assert.NotNil(t, stats)
}

func TestRender_AvatarFallbacks(t *testing.T) {
	tests := []struct {
		name    string
		fetcher AvatarFetcher
	}{
		{name: "fetch error", fetcher: &fakeFetcher{err: errors.New("boom")}},
		{name: "undecodable bytes", fetcher: &fakeFetcher{data: []byte("not an image"), format: "jpg"}},
		{name: "no fetcher", fetcher: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := New(tt.fetcher, okEncoder, slog.Default())

			card, err := r.Render(context.Background(), testProfile(), DefaultTemplate(), false)
			require.NoError(t, err)

			assert.Nil(t, findImage(card.Front, "avatar-someuser"))
			assert.True(t, hasCircle(card.Front))
			// Placeholder carries the upper-cased initial.
			assert.NotNil(t, findText(card.Front, "S"))
		})
	}
}

func TestRender_VerifiedBadge(t *testing.T) {
	r := New(nil, okEncoder, slog.Default())

	profile := testProfile()
	profile.Verified = true

	card, err := r.Render(context.Background(), profile, DefaultTemplate(), false)
	require.NoError(t, err)
	assert.NotNil(t, findText(card.Front, "Some User ✓"))
}

func TestRender_Back(t *testing.T) {
	r := New(nil, okEncoder, slog.Default())

	card, err := r.Render(context.Background(), testProfile(), DefaultTemplate(), true)
	require.NoError(t, err)
	require.NotNil(t, card.Back)

	qr := findImage(*card.Back, "qr-someuser")
	require.NotNil(t, qr)
	assert.Equal(t, []byte("qr:https://x.com/someuser"), qr.Bytes)

	assert.NotNil(t, findText(*card.Back, "https://x.com/someuser"))
}

func TestRender_QREncodeFailure(t *testing.T) {
	r := New(nil, func(string, int) ([]byte, error) {
		return nil, errors.New("payload too long")
	}, slog.Default())

	card, err := r.Render(context.Background(), testProfile(), DefaultTemplate(), true)
	require.NoError(t, err)
	require.NotNil(t, card.Back)
	assert.Nil(t, findImage(*card.Back, "qr-someuser"))
}

func TestRender_InvalidTemplate(t *testing.T) {
	r := New(nil, okEncoder, slog.Default())

	tmpl := DefaultTemplate()
	tmpl.Width = 0

	_, err := r.Render(context.Background(), testProfile(), tmpl, false)
	require.Error(t, err)
	assert.Equal(t, carderr.CodeRenderError, carderr.CodeOf(err))
}

func TestRender_Deterministic(t *testing.T) {
	r := New(nil, okEncoder, slog.Default())

	a, err := r.Render(context.Background(), testProfile(), DefaultTemplate(), true)
	require.NoError(t, err)
	b, err := r.Render(context.Background(), testProfile(), DefaultTemplate(), true)
	require.NoError(t, err)

	assert.Equal(t, a, b)
}

func TestPlaceholderColorStable(t *testing.T) {
	assert.Equal(t, placeholderColor("someuser"), placeholderColor("someuser"))
}

func findImage(s models.Surface, name string) *models.DrawImage {
	for _, op := range s.Ops {
		if img, ok := op.(models.DrawImage); ok && img.Name == name {
			return &img
		}
	}
	return nil
}

func findText(s models.Surface, text string) *models.DrawText {
	for _, op := range s.Ops {
		if dt, ok := op.(models.DrawText); ok && dt.Text == text {
			return &dt
		}
	}
	return nil
}

func hasCircle(s models.Surface) bool {
	for _, op := range s.Ops {
		if _, ok := op.(models.FillCircle); ok {
			return true
		}
	}
	return false
}
