package scraper

import (
	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// Tree indexes a parsed page in document order so extraction steps can ask
// positional questions the way XPath's following and preceding axes do.
// It never modifies the underlying document.
type Tree struct {
	doc   *goquery.Document
	nodes []*html.Node
	pos   map[*html.Node]int
	last  map[*html.Node]int // position of the last node inside each subtree
}

// NewTree indexes doc.
func NewTree(doc *goquery.Document) *Tree {
	t := &Tree{
		doc:  doc,
		pos:  make(map[*html.Node]int),
		last: make(map[*html.Node]int),
	}
	for _, root := range doc.Nodes {
		t.index(root)
	}
	return t
}

func (t *Tree) index(n *html.Node) {
	t.pos[n] = len(t.nodes)
	t.nodes = append(t.nodes, n)
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		t.index(c)
	}
	t.last[n] = len(t.nodes) - 1
}

// Document returns the indexed document
func (t *Tree) Document() *goquery.Document {
	return t.doc
}

// Selection wraps nodes of this tree in a goquery selection.
func (t *Tree) Selection(nodes ...*html.Node) *goquery.Selection {
	return t.doc.FindNodes(nodes...)
}

// All returns every node matching m, in document order.
func (t *Tree) All(m goquery.Matcher) []*html.Node {
	var out []*html.Node
	for _, n := range t.nodes {
		if m.Match(n) {
			out = append(out, n)
		}
	}
	return out
}

// Following returns the nodes matching m that start after from and everything
// inside it, in document order.
func (t *Tree) Following(from *html.Node, m goquery.Matcher) []*html.Node {
	end, ok := t.last[from]
	if !ok {
		return nil
	}
	var out []*html.Node
	for _, n := range t.nodes[end+1:] {
		if m.Match(n) {
			out = append(out, n)
		}
	}
	return out
}

// Preceding returns the closest node matching m that ends before n starts.
// Ancestors of n are not considered, matching XPath's preceding axis.
func (t *Tree) Preceding(n *html.Node, m goquery.Matcher) (*html.Node, bool) {
	at, ok := t.pos[n]
	if !ok {
		return nil, false
	}
	for i := at - 1; i >= 0; i-- {
		c := t.nodes[i]
		if t.last[c] >= at {
			continue // ancestor
		}
		if m.Match(c) {
			return c, true
		}
	}
	return nil, false
}

// directText returns the non-blank text nodes that are immediate children of n.
func directText(n *html.Node) []string {
	var out []string
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.TextNode && !isBlank(c.Data) {
			out = append(out, c.Data)
		}
	}
	return out
}
