package extractor

import "strings"

// lowResSuffixes are the avatar filename variants the CDN serves for
// timeline thumbnails, ordered longest-first so "_200x200" is not
// clipped by a shorter match.
var lowResSuffixes = []string{"_200x200", "_normal", "_bigger", "_mini"}

const hiResSuffix = "_400x400"

// UpscaleAvatarURL rewrites a known low-resolution avatar filename
// suffix to the high-resolution variant. URLs without a recognized
// suffix pass through unchanged.
func UpscaleAvatarURL(avatarURL string) string {
	for _, suffix := range lowResSuffixes {
		// The suffix sits between the base name and the extension:
		// .../abc_normal.jpg -> .../abc_400x400.jpg
		for _, ext := range []string{".jpg", ".jpeg", ".png", ".webp"} {
			old := suffix + ext
			if strings.Contains(avatarURL, old) {
				return strings.Replace(avatarURL, old, hiResSuffix+ext, 1)
			}
		}
		if strings.HasSuffix(avatarURL, suffix) {
			return strings.TrimSuffix(avatarURL, suffix) + hiResSuffix
		}
	}
	return avatarURL
}
