package extract

import (
	"strings"

	"github.com/antchfx/xmlquery"
)

// is reports whether n is an element named name. A prefixed name ("w:p")
// must match prefix and local part; an unprefixed one matches any prefix.
func is(n *xmlquery.Node, name string) bool {
	if n == nil || n.Type != xmlquery.ElementNode {
		return false
	}
	prefix, local, ok := strings.Cut(name, ":")
	if !ok {
		return n.Data == name
	}
	return n.Prefix == prefix && n.Data == local
}

// children returns the direct element children of n named name
func children(n *xmlquery.Node, name string) []*xmlquery.Node {
	if n == nil {
		return nil
	}
	var out []*xmlquery.Node
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if is(c, name) {
			out = append(out, c)
		}
	}
	return out
}

// child returns the first direct element child of n named name
func child(n *xmlquery.Node, name string) *xmlquery.Node {
	if n == nil {
		return nil
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if is(c, name) {
			return c
		}
	}
	return nil
}

// descendant returns the first element below n matching the XPath step name
func descendant(n *xmlquery.Node, name string) *xmlquery.Node {
	if n == nil {
		return nil
	}
	found, err := xmlquery.Query(n, ".//"+name)
	if err != nil {
		return nil
	}
	return found
}

// attr returns the value of a (possibly prefixed) attribute. When the
// prefixed lookup misses, the local name alone is tried.
func attr(n *xmlquery.Node, name string) string {
	if n == nil {
		return ""
	}
	if v := n.SelectAttr(name); v != "" {
		return v
	}
	_, local, ok := strings.Cut(name, ":")
	if !ok {
		return ""
	}
	for _, a := range n.Attr {
		if a.Name.Local == local {
			return a.Value
		}
	}
	return ""
}
