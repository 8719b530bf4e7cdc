// Package xexpr converts between xmltree document content and a
// minimal tagged-tree form suited to programmatic construction and
// pattern matching.
//
// A tagged tree is built from a handful of Go values: a string is
// character data, a Symbol is a named entity reference, a non-negative
// int is a numeric entity reference, and a *Node is an element.
// Document nodes that have no tagged-tree reading (CDATA sections,
// comments, processing instructions) pass through conversion as
// themselves. Everything else is foreign: FromContent rejects it
// unless converting permissively, and Validate always rejects it.
package xexpr

import (
	"bytes"

	xmltree "github.com/josephzizys/go-xmltree"
)

// A Value is one tagged-tree value: string, Symbol, non-negative int,
// *Node, or a passed-through *xmltree.PCData, *xmltree.CData,
// *xmltree.Comment, or *xmltree.ProcInst.
type Value any

// Symbol aliases the document tree's name type. A Symbol leaf is a
// named entity reference.
type Symbol = xmltree.Symbol

// A Node is an element in tagged-tree form. Attrs == nil is the bare
// shape with no attribute list at all; an empty non-nil slice is an
// explicit empty list. The two convert to the same element.
type Node struct {
	Tag      Symbol
	Attrs    []Attr
	Children []Value
}

// An Attr is one attribute of a Node.
type Attr struct {
	Name  Symbol
	Value string
}

// Marshal writes the XML encoding of the tagged-tree value v.
func Marshal(v Value, opts ...xmltree.Option) ([]byte, error) {
	c, err := ToContent(v)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := xmltree.Write(&buf, c, opts...); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Unmarshal parses data as a complete XML document and returns the
// tagged-tree form of its root element.
func Unmarshal(data []byte, opts ...Option) (Value, error) {
	doc, err := xmltree.Parse(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	return FromContent(doc.Root, opts...)
}
