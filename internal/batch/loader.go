package batch

import (
	"context"

	"github.com/s4yuba/x-card-generator/internal/browser"
	"github.com/s4yuba/x-card-generator/internal/dom"
)

// BrowserLoader adapts the playwright wrapper to PageLoader.
type BrowserLoader struct {
	browser *browser.Browser
}

func NewBrowserLoader(b *browser.Browser) *BrowserLoader {
	return &BrowserLoader{browser: b}
}

func (l *BrowserLoader) Load(_ context.Context, canonicalURL string) (dom.View, func(), error) {
	page, err := l.browser.LoadProfile(canonicalURL)
	if err != nil {
		return nil, nil, err
	}
	return page.View, page.Close, nil
}
