package xexpr

import (
	xmltree "github.com/josephzizys/go-xmltree"
	"github.com/josephzizys/go-xmltree/token"
)

// An Option configures conversion from document content.
type Option func(*settings)

type settings struct {
	permissive bool
	dropEmpty  bool
}

// Permissive returns an Option that lets non-character values and any
// other foreign content pass through conversion as opaque leaves
// instead of failing.
func Permissive() Option {
	return func(s *settings) { s.permissive = true }
}

// DropEmptyAttrs returns an Option that converts an attributeless
// element to a Node with Attrs == nil, the bare tagged-pair shape.
// The default is an explicit empty attribute list.
func DropEmptyAttrs() Option {
	return func(s *settings) { s.dropEmpty = true }
}

// Nodes built by ToContent carry this span in place of a source
// location.
var synthetic = token.SyntheticSpan("xexpr")

// FromContent converts document content to its tagged-tree form:
// elements become *Node, character data becomes string, symbolic
// entity references become Symbol or int, and CDATA, comments, and
// processing instructions pass through as themselves.
func FromContent(c xmltree.Content, opts ...Option) (Value, error) {
	var s settings
	for _, opt := range opts {
		opt(&s)
	}
	return fromContent(c, &s)
}

func fromContent(c xmltree.Content, s *settings) (Value, error) {
	switch c := c.(type) {
	case *xmltree.Element:
		n := &Node{Tag: c.Name}
		if len(c.Attrs) > 0 {
			n.Attrs = make([]Attr, len(c.Attrs))
			for i, a := range c.Attrs {
				n.Attrs[i] = Attr{Name: a.Name, Value: a.Value}
			}
		} else if !s.dropEmpty {
			n.Attrs = []Attr{}
		}
		for _, child := range c.Content {
			v, err := fromContent(child, s)
			if err != nil {
				return nil, err
			}
			n.Children = append(n.Children, v)
		}
		return n, nil
	case *xmltree.PCData:
		return c.Value, nil
	case *xmltree.Entity:
		switch ref := c.Ref.(type) {
		case Symbol:
			return ref, nil
		case int:
			return ref, nil
		}
		return nil, &ValueError{Value: c.Ref, Reason: "entity reference must be a Symbol or an int"}
	case *xmltree.CData, *xmltree.Comment, *xmltree.ProcInst:
		return c, nil
	case *xmltree.Special:
		if s.permissive {
			return c.Value, nil
		}
		return nil, &ValueError{Value: c.Value, Reason: "non-character content has no tagged-tree form"}
	}
	if s.permissive {
		return c, nil
	}
	return nil, &ValueError{Value: c, Reason: "not document content"}
}

// ToContent converts a tagged-tree value to document content. Every
// node it constructs carries synthetic positions. An invalid shape
// anywhere in v returns a *ValueError holding the smallest offending
// subvalue.
func ToContent(v Value) (xmltree.Content, error) {
	switch v := v.(type) {
	case string:
		return &xmltree.PCData{Span: synthetic, Value: v}, nil
	case Symbol:
		return &xmltree.Entity{Span: synthetic, Ref: v}, nil
	case int:
		if v < 0 {
			return nil, &ValueError{Value: v, Reason: "numeric entity reference must not be negative"}
		}
		return &xmltree.Entity{Span: synthetic, Ref: v}, nil
	case *Node:
		return nodeToElement(v)
	case *xmltree.PCData, *xmltree.CData, *xmltree.Comment, *xmltree.ProcInst:
		return v.(xmltree.Content), nil
	}
	return nil, &ValueError{Value: v, Reason: "not a tagged-tree value"}
}

func nodeToElement(n *Node) (*xmltree.Element, error) {
	if n == nil {
		return nil, &ValueError{Value: n, Reason: "node must not be nil"}
	}
	if n.Tag == "" {
		return nil, &ValueError{Value: n, Reason: "node tag must not be empty"}
	}
	el := &xmltree.Element{Span: synthetic, Name: n.Tag}
	if len(n.Attrs) > 0 {
		el.Attrs = make([]xmltree.Attr, len(n.Attrs))
		for i, a := range n.Attrs {
			if a.Name == "" {
				return nil, &ValueError{Value: a, Reason: "attribute name must not be empty"}
			}
			el.Attrs[i] = xmltree.Attr{Span: synthetic, Name: a.Name, Value: a.Value}
		}
	}
	for _, child := range n.Children {
		c, err := ToContent(child)
		if err != nil {
			return nil, err
		}
		el.Content = append(el.Content, c)
	}
	return el, nil
}
