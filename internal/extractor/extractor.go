// Package extractor resolves individual profile fields out of a page's
// DOM. The host site changes its markup often, so every field owns an
// ordered list of independent selector strategies; the first one that
// yields a non-empty value wins. Absence is reported immediately —
// waiting out hydration is the assembler's job.
package extractor

import (
	"log/slog"
	"strings"

	"github.com/s4yuba/x-card-generator/internal/dom"
)

// FieldKind names one logical profile field.
type FieldKind string

const (
	FieldUsername       FieldKind = "username"
	FieldDisplayName    FieldKind = "display_name"
	FieldBio            FieldKind = "bio"
	FieldAvatarURL      FieldKind = "avatar_url"
	FieldFollowerCount  FieldKind = "follower_count"
	FieldFollowingCount FieldKind = "following_count"
)

// strategy is one independent lookup: a CSS selector plus how to read
// the matched node. attr empty means text content. clean runs on the
// raw value before the non-empty check.
type strategy struct {
	selector string
	attr     string
	clean    func(string) string
}

// verifiedSelectors are independent badge indicators; if any matches,
// the profile counts as verified. Spread across testid, aria-label and
// localized label variants because the badge moves around.
var verifiedSelectors = []string{
	`div[data-testid="UserName"] svg[data-testid="icon-verified"]`,
	`svg[aria-label="Verified account"]`,
	`svg[aria-label="認証済みアカウント"]`,
	`div[data-testid="UserName"] svg[aria-label*="erified"]`,
}

type Extractor struct {
	strategies map[FieldKind][]strategy
	logger     *slog.Logger
}

func New(logger *slog.Logger) *Extractor {
	return &Extractor{
		strategies: defaultStrategies(),
		logger:     logger.With("component", "extractor"),
	}
}

func defaultStrategies() map[FieldKind][]strategy {
	stripAt := func(s string) string { return strings.TrimPrefix(strings.TrimSpace(s), "@") }
	trim := strings.TrimSpace

	return map[FieldKind][]strategy{
		FieldUsername: {
			{selector: `div[data-testid="UserName"] div[dir="ltr"] span`, clean: stripAt},
			{selector: `div[data-testid="User-Name"] a[role="link"] span`, clean: stripAt},
			{selector: `div[data-testid="UserProfileHeader_Items"] ~ div span[dir="ltr"]`, clean: stripAt},
			{selector: `a[data-testid="UserUrl"] ~ div span`, clean: stripAt},
		},
		FieldDisplayName: {
			{selector: `div[data-testid="UserName"] span span`, clean: trim},
			{selector: `div[data-testid="UserName"] div[dir="auto"] span`, clean: trim},
			{selector: `div[data-testid="User-Name"] span`, clean: trim},
		},
		FieldBio: {
			{selector: `div[data-testid="UserDescription"]`, clean: trim},
			{selector: `div[data-testid="UserProfileHeader_Description"]`, clean: trim},
		},
		FieldAvatarURL: {
			{selector: `div[data-testid^="UserAvatar-Container"] img`, attr: "src"},
			{selector: `a[href$="/photo"] img`, attr: "src"},
			{selector: `img[alt="Opens profile photo"]`, attr: "src"},
		},
		FieldFollowerCount: {
			{selector: `a[href$="/verified_followers"] span span`, clean: trim},
			{selector: `a[href$="/followers"] span span`, clean: trim},
			{selector: `a[href$="/followers"]`, clean: leadingToken},
		},
		FieldFollowingCount: {
			{selector: `a[href$="/following"] span span`, clean: trim},
			{selector: `a[href$="/following"]`, clean: leadingToken},
		},
	}
}

// Extract resolves one field. ok is false when every strategy missed.
func (e *Extractor) Extract(kind FieldKind, view dom.View) (string, bool) {
	for _, s := range e.strategies[kind] {
		node, found := view.Query(s.selector)
		if !found {
			continue
		}

		value, hasValue := readNode(node, s)
		if !hasValue {
			continue
		}

		e.logger.Debug("field resolved", "field", kind, "selector", s.selector)
		return value, true
	}
	return "", false
}

// ExtractCount resolves a numeric field, parsing abbreviated forms.
// A field that is present but unparseable yields 0, not an error.
func (e *Extractor) ExtractCount(kind FieldKind, view dom.View) int64 {
	raw, ok := e.Extract(kind, view)
	if !ok {
		return 0
	}
	return ParseCount(raw)
}

// Verified ORs the independent badge indicators.
func (e *Extractor) Verified(view dom.View) bool {
	for _, selector := range verifiedSelectors {
		if _, found := view.Query(selector); found {
			return true
		}
	}
	return false
}

func readNode(node dom.Node, s strategy) (string, bool) {
	var value string
	if s.attr != "" {
		attr, ok := node.Attr(s.attr)
		if !ok {
			return "", false
		}
		value = attr
	} else {
		value = node.Text()
	}

	if s.clean != nil {
		value = s.clean(value)
	}
	return value, value != ""
}

// leadingToken keeps the first whitespace-delimited token; used when a
// fallback selector matches a whole link like "1.2K Followers".
func leadingToken(s string) string {
	fields := strings.Fields(s)
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}
