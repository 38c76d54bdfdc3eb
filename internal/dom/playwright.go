package dom

import (
	"strings"

	"github.com/playwright-community/playwright-go"
)

// PageView is a View over a live playwright page. Each Query hits the
// running DOM, so hydration that happens between polls is visible
// without re-capturing the page.
type PageView struct {
	page playwright.Page
}

func NewPageView(page playwright.Page) *PageView {
	return &PageView{page: page}
}

func (v *PageView) Query(selector string) (Node, bool) {
	el, err := v.page.QuerySelector(selector)
	if err != nil || el == nil {
		return nil, false
	}
	return pageNode{el: el}, true
}

func (v *PageView) QueryAll(selector string) []Node {
	els, err := v.page.QuerySelectorAll(selector)
	if err != nil {
		return nil
	}
	nodes := make([]Node, 0, len(els))
	for _, el := range els {
		nodes = append(nodes, pageNode{el: el})
	}
	return nodes
}

type pageNode struct {
	el playwright.ElementHandle
}

func (n pageNode) Text() string {
	text, err := n.el.TextContent()
	if err != nil {
		return ""
	}
	return strings.TrimSpace(text)
}

func (n pageNode) Attr(name string) (string, bool) {
	value, err := n.el.GetAttribute(name)
	if err != nil || value == "" {
		return "", false
	}
	return value, true
}
