// Package dom abstracts "selector in, matched nodes out" over whatever
// is hosting the page. The extractor only ever sees this interface, so
// the same fallback logic runs against a live browser page, a captured
// HTML snapshot, or a test fixture.
package dom

// Node is one matched element.
type Node interface {
	// Text returns the node's trimmed text content.
	Text() string
	// Attr returns the named attribute value and whether it exists.
	Attr(name string) (string, bool)
}

// View is the query capability a loaded page exposes.
type View interface {
	// Query returns the first node matching the CSS selector, or
	// ok=false when nothing matches.
	Query(selector string) (Node, bool)
	// QueryAll returns every node matching the CSS selector, in
	// document order.
	QueryAll(selector string) []Node
}
