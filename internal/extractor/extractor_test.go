package extractor

import (
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/s4yuba/x-card-generator/internal/dom"
)

const profileHTML = `
<html><body>
  <div data-testid="UserAvatar-Container-someuser">
    <img src="https://pbs.twimg.com/profile_images/123/abc_normal.jpg" alt="">
  </div>
  <div data-testid="UserName">
    <div dir="auto"><span><span>Some User</span></span></div>
    <div dir="ltr"><span>@someuser</span></div>
    <svg data-testid="icon-verified"></svg>
  </div>
  <div data-testid="UserDescription">Building things. Opinions mine.</div>
  <a href="/someuser/following"><span><span>321</span></span></a>
  <a href="/someuser/followers"><span><span>1.2K</span></span></a>
</body></html>`

const fallbackHTML = `
<html><body>
  <div data-testid="User-Name">
    <a role="link" href="/someuser"><span>@someuser</span></a>
  </div>
  <a href="/someuser/followers">1.2K Followers</a>
</body></html>`

func newTestExtractor() *Extractor {
	return New(slog.Default())
}

func newView(t *testing.T, html string) dom.View {
	t.Helper()
	view, err := dom.NewHTMLView(html)
	require.NoError(t, err)
	return view
}

func TestExtract_PrimarySelectors(t *testing.T) {
	e := newTestExtractor()
	view := newView(t, profileHTML)

	tests := []struct {
		name string
		kind FieldKind
		want string
	}{
		{name: "username without at sign", kind: FieldUsername, want: "someuser"},
		{name: "display name", kind: FieldDisplayName, want: "Some User"},
		{name: "bio", kind: FieldBio, want: "Building things. Opinions mine."},
		{name: "avatar src attribute", kind: FieldAvatarURL, want: "https://pbs.twimg.com/profile_images/123/abc_normal.jpg"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := e.Extract(tt.kind, view)
			require.True(t, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestExtract_FallbackSelectors(t *testing.T) {
	e := newTestExtractor()
	view := newView(t, fallbackHTML)

	username, ok := e.Extract(FieldUsername, view)
	require.True(t, ok)
	assert.Equal(t, "someuser", username)

	// The whole-link fallback keeps only the number.
	assert.Equal(t, int64(1200), e.ExtractCount(FieldFollowerCount, view))
}

func TestExtract_MissingField(t *testing.T) {
	e := newTestExtractor()
	view := newView(t, `<html><body><p>loading</p></body></html>`)

	_, ok := e.Extract(FieldUsername, view)
	assert.False(t, ok)
	assert.Zero(t, e.ExtractCount(FieldFollowerCount, view))
}

func TestExtractCount(t *testing.T) {
	e := newTestExtractor()
	view := newView(t, profileHTML)

	assert.Equal(t, int64(1200), e.ExtractCount(FieldFollowerCount, view))
	assert.Equal(t, int64(321), e.ExtractCount(FieldFollowingCount, view))
}

func TestVerified(t *testing.T) {
	e := newTestExtractor()

	assert.True(t, e.Verified(newView(t, profileHTML)))
	assert.False(t, e.Verified(newView(t, fallbackHTML)))
}
