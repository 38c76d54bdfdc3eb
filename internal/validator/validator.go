// Package validator normalizes candidate profile URLs into the one
// canonical form used for caching and navigation, and rejects anything
// that cannot name a real profile.
package validator

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"github.com/s4yuba/x-card-generator/internal/carderr"
)

// CanonicalHost is the host every accepted alias normalizes to.
const CanonicalHost = "x.com"

var allowedHosts = map[string]bool{
	"x.com":                true,
	"www.x.com":            true,
	"twitter.com":          true,
	"www.twitter.com":      true,
	"mobile.twitter.com":   true,
}

// reservedSegments are first path segments that are site navigation,
// not usernames.
var reservedSegments = map[string]bool{
	"home":          true,
	"explore":       true,
	"notifications": true,
	"messages":      true,
	"bookmarks":     true,
	"lists":         true,
	"settings":      true,
	"help":          true,
	"i":             true,
}

// safeFragments are known tab anchors that may legitimately trail a
// profile URL.
var safeFragments = map[string]bool{
	"top":     true,
	"media":   true,
	"replies": true,
	"likes":   true,
}

var (
	usernameRe = regexp.MustCompile(`^[A-Za-z0-9_]{1,15}$`)
	fragmentRe = regexp.MustCompile(`^[A-Za-z0-9_]{1,8}$`)
)

// Options tunes validation behavior.
type Options struct {
	// StrictFragmentCheck rejects URLs whose fragment looks like a
	// stray username rather than a tab anchor. Short alphanumeric
	// fragments are ambiguous: "x.com/alice#bob" usually means a
	// mangled paste of two handles.
	StrictFragmentCheck bool
}

func DefaultOptions() Options {
	return Options{StrictFragmentCheck: true}
}

// Result is the outcome of validating one raw URL.
type Result struct {
	Valid         bool
	NormalizedURL string
	Username      string
	Err           error
}

// Validate checks rawURL against the host allow-list and username
// grammar and rewrites it to canonical form. Pure and deterministic.
func Validate(rawURL string, opts Options) Result {
	raw := strings.TrimSpace(rawURL)
	if raw == "" {
		return invalid("empty URL")
	}

	u, err := url.Parse(raw)
	if err != nil {
		return invalid(fmt.Sprintf("unparseable URL %q", raw))
	}

	if u.Scheme != "http" && u.Scheme != "https" {
		return invalid(fmt.Sprintf("unsupported scheme %q", u.Scheme))
	}

	if !allowedHosts[u.Host] {
		return invalid(fmt.Sprintf("host %q is not a profile host", u.Host))
	}

	segments := strings.Split(strings.Trim(u.Path, "/"), "/")
	if len(segments) == 0 || segments[0] == "" {
		return invalid("URL has no username path segment")
	}

	username := segments[0]
	if reservedSegments[strings.ToLower(username)] {
		return invalid(fmt.Sprintf("%q is a reserved page, not a username", username))
	}

	if !usernameRe.MatchString(username) {
		return invalid(fmt.Sprintf("username %q must be 1-15 letters, digits or underscores", username))
	}

	// Query strings and extra path segments are share-link noise and
	// are stripped. A short bare-word fragment is different: it often
	// means the caller pasted a second handle after a '#'.
	if opts.StrictFragmentCheck && u.Fragment != "" {
		frag := u.Fragment
		if fragmentRe.MatchString(frag) && !safeFragments[strings.ToLower(frag)] {
			return invalid(fmt.Sprintf("ambiguous fragment %q; remove it or use a plain profile URL", frag))
		}
	}

	return Result{
		Valid:         true,
		NormalizedURL: fmt.Sprintf("https://%s/%s", CanonicalHost, username),
		Username:      username,
	}
}

// UsernameFromPath pulls a grammar-valid username out of a URL path
// without host checks. The assembler uses it as the last-resort
// fallback when the page never hydrated a username.
func UsernameFromPath(rawURL string) (string, bool) {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return "", false
	}

	segments := strings.Split(strings.Trim(u.Path, "/"), "/")
	if len(segments) == 0 || segments[0] == "" {
		return "", false
	}

	username := segments[0]
	if reservedSegments[strings.ToLower(username)] || !usernameRe.MatchString(username) {
		return "", false
	}

	return username, true
}

func invalid(reason string) Result {
	return Result{
		Valid: false,
		Err: carderr.Newf(carderr.CodeInvalidURL,
			"%s (expected e.g. https://x.com/username)", reason),
	}
}
