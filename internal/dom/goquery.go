package dom

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// HTMLView is a View over a static HTML snapshot, backed by goquery.
// The browser layer captures page content and hands it here so the
// extractor never touches the driver directly; tests build one straight
// from fixture HTML.
type HTMLView struct {
	doc *goquery.Document
}

func NewHTMLView(html string) (*HTMLView, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}
	return &HTMLView{doc: doc}, nil
}

func (v *HTMLView) Query(selector string) (Node, bool) {
	sel := v.doc.Find(selector).First()
	if sel.Length() == 0 {
		return nil, false
	}
	return goqueryNode{sel: sel}, true
}

func (v *HTMLView) QueryAll(selector string) []Node {
	var nodes []Node
	v.doc.Find(selector).Each(func(_ int, sel *goquery.Selection) {
		nodes = append(nodes, goqueryNode{sel: sel})
	})
	return nodes
}

type goqueryNode struct {
	sel *goquery.Selection
}

func (n goqueryNode) Text() string {
	return strings.TrimSpace(n.sel.Text())
}

func (n goqueryNode) Attr(name string) (string, bool) {
	return n.sel.Attr(name)
}
