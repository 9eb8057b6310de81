package pipeline

import (
	"errors"
	"fmt"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// ErrMount indicates the mount document could not be built.
var ErrMount = errors.New("building mount document failed")

// MountOptions describes the fixed-width container content is mounted in.
type MountOptions struct {
	ContainerID string
	Width       int // CSS px
	MinHeight   int // CSS px, 0 for none
}

// BuildMount returns a document whose body holds a single white,
// fixed-width container at the origin. The container receives clones of the
// source's <style> elements followed by the source <body> children, so
// layout inside it matches the source without its page chrome.
func BuildMount(source string, opts MountOptions) (string, error) {
	if opts.ContainerID == "" || opts.Width <= 0 {
		return "", fmt.Errorf("%w: container id and positive width required", ErrMount)
	}

	doc, err := html.Parse(strings.NewReader(source))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrMount, err)
	}

	var styles []*html.Node
	var body *html.Node
	walk(doc, func(n *html.Node) {
		if n.Type != html.ElementNode {
			return
		}
		switch n.DataAtom {
		case atom.Style:
			styles = append(styles, n)
		case atom.Body:
			if body == nil {
				body = n
			}
		}
	})

	container := element(atom.Div,
		html.Attribute{Key: "id", Val: opts.ContainerID},
		html.Attribute{Key: "style", Val: containerStyle(opts)},
	)
	for _, s := range styles {
		container.AppendChild(clone(s))
	}
	if body != nil {
		for c := body.FirstChild; c != nil; c = c.NextSibling {
			container.AppendChild(clone(c))
		}
	}

	out := &html.Node{Type: html.DocumentNode}
	out.AppendChild(&html.Node{Type: html.DoctypeNode, Data: "html"})
	root := element(atom.Html)
	head := element(atom.Head)
	head.AppendChild(element(atom.Meta, html.Attribute{Key: "charset", Val: "utf-8"}))
	mountBody := element(atom.Body, html.Attribute{Key: "style", Val: "margin:0;padding:0;background:#fff"})
	mountBody.AppendChild(container)
	root.AppendChild(head)
	root.AppendChild(mountBody)
	out.AppendChild(root)

	var buf strings.Builder
	if err := html.Render(&buf, out); err != nil {
		return "", fmt.Errorf("%w: %v", ErrMount, err)
	}
	return buf.String(), nil
}

func containerStyle(opts MountOptions) string {
	var b strings.Builder
	fmt.Fprintf(&b, "position:absolute;left:0;top:0;width:%dpx;", opts.Width)
	if opts.MinHeight > 0 {
		fmt.Fprintf(&b, "min-height:%dpx;", opts.MinHeight)
	}
	b.WriteString("background:#fff;padding:0;margin:0")
	return b.String()
}

func element(a atom.Atom, attrs ...html.Attribute) *html.Node {
	return &html.Node{Type: html.ElementNode, DataAtom: a, Data: a.String(), Attr: attrs}
}

// walk visits n and its descendants in document order.
func walk(n *html.Node, fn func(*html.Node)) {
	fn(n)
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		walk(c, fn)
	}
}

// clone deep-copies n without parent or sibling links.
func clone(n *html.Node) *html.Node {
	c := &html.Node{
		Type:      n.Type,
		DataAtom:  n.DataAtom,
		Data:      n.Data,
		Namespace: n.Namespace,
		Attr:      append([]html.Attribute(nil), n.Attr...),
	}
	for child := n.FirstChild; child != nil; child = child.NextSibling {
		c.AppendChild(clone(child))
	}
	return c
}
