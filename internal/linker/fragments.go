package linker

import (
	"fmt"
	"strings"

	"golang.org/x/net/html"
)

// Fragment is one rendered list item. Its first embedded link is the
// join key back to the unified record set.
type Fragment struct {
	Node *html.Node
	Link string // href of the first <a> descendant, verbatim
}

// ParseFragments extracts <li> fragments from rendered HTML, in document
// order. Items without an extractable link are returned in skipped so the
// caller can report them; they never join to anything.
func ParseFragments(rendered string) (fragments []*Fragment, skipped int, err error) {
	doc, err := html.Parse(strings.NewReader(rendered))
	if err != nil {
		return nil, 0, fmt.Errorf("parsing rendered fragments: %w", err)
	}

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == "li" {
			if link := firstLink(n); link != "" {
				fragments = append(fragments, &Fragment{Node: n, Link: link})
			} else {
				skipped++
			}
			return // list items do not nest in this output
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)
	return fragments, skipped, nil
}

// firstLink returns the href of the first <a> descendant, or "".
func firstLink(n *html.Node) string {
	if n.Type == html.ElementNode && n.Data == "a" {
		for _, attr := range n.Attr {
			if attr.Key == "href" {
				return attr.Val
			}
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if link := firstLink(c); link != "" {
			return link
		}
	}
	return ""
}

// setAttr sets or replaces an attribute on an element node.
func setAttr(n *html.Node, key, val string) {
	for i, attr := range n.Attr {
		if attr.Key == key {
			n.Attr[i].Val = val
			return
		}
	}
	n.Attr = append(n.Attr, html.Attribute{Key: key, Val: val})
}

// Render serializes the fragment back to HTML text.
func (f *Fragment) Render() (string, error) {
	var b strings.Builder
	if err := html.Render(&b, f.Node); err != nil {
		return "", fmt.Errorf("rendering fragment for %s: %w", f.Link, err)
	}
	return b.String(), nil
}
