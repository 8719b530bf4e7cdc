// Package plist reads and writes the XML form of Apple property
// lists. A property list is a dictionary, array, boolean, integer,
// real, or string; dictionaries keep their pairs in document order.
//
// The codec is built entirely on the xmltree document tree and the
// xexpr tagged-tree converter: reading parses, strips the whitespace
// between structural elements, converts, and interprets; writing
// builds a tagged tree, validates it, and hands it to the writer.
package plist

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	xmltree "github.com/josephzizys/go-xmltree"
	"github.com/josephzizys/go-xmltree/xexpr"
)

// A Value is one property-list value: String, Bool, Integer, Real,
// Array, or Dict.
type Value interface {
	value()
}

// A String is <string>text</string>.
type String string

// A Bool is <true/> or <false/>.
type Bool bool

// An Integer is <integer>n</integer>.
type Integer int64

// A Real is <real>x</real>.
type Real float64

// An Array is <array>...</array>.
type Array []Value

// A Dict is <dict>...</dict>: key/value pairs in document order.
type Dict []Entry

// An Entry is one <key>k</key> followed by its value.
type Entry struct {
	Key   string
	Value Value
}

func (String) value()  {}
func (Bool) value()    {}
func (Integer) value() {}
func (Real) value()    {}
func (Array) value()   {}
func (Dict) value()    {}

const docType = `<!DOCTYPE plist SYSTEM "file://localhost/System/Library/DTDs/PropertyList.dtd">`

// Whitespace between structural elements is insignificant; text under
// the leaf elements is the data itself.
var structural = xmltree.OnlyTags("plist", "dict", "array")

// Read parses one property list document from r.
func Read(r io.Reader) (Value, error) {
	doc, err := xmltree.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("plist: %w", err)
	}
	root, err := xmltree.StripWhitespace(doc.Root, structural)
	if err != nil {
		return nil, fmt.Errorf("plist: %w", err)
	}
	if root.Name != "plist" {
		return nil, fmt.Errorf("plist: root element is <%s>, want <plist>", root.Name)
	}
	v, err := xexpr.FromContent(root)
	if err != nil {
		return nil, fmt.Errorf("plist: %w", err)
	}
	n := v.(*xexpr.Node)
	if len(n.Children) != 1 {
		return nil, fmt.Errorf("plist: <plist> must wrap exactly one value, found %d", len(n.Children))
	}
	child, ok := n.Children[0].(*xexpr.Node)
	if !ok {
		return nil, fmt.Errorf("plist: <plist> must wrap an element, found %T", n.Children[0])
	}
	return decodeValue(child)
}

// Write writes v as an XML property list: the DOCTYPE line, then a
// <plist version="0.9"> wrapper around the encoded value. Writer
// options configure the element output.
func Write(w io.Writer, v Value, opts ...xmltree.Option) error {
	if v == nil {
		return fmt.Errorf("plist: cannot write a nil value")
	}
	root := &xexpr.Node{
		Tag:      "plist",
		Attrs:    []xexpr.Attr{{Name: "version", Value: "0.9"}},
		Children: []xexpr.Value{encodeValue(v)},
	}
	if err := xexpr.Validate(root); err != nil {
		return fmt.Errorf("plist: %w", err)
	}
	c, err := xexpr.ToContent(root)
	if err != nil {
		return fmt.Errorf("plist: %w", err)
	}
	if _, err := io.WriteString(w, docType+"\n"); err != nil {
		return err
	}
	return xmltree.Write(w, c, opts...)
}

func decodeValue(n *xexpr.Node) (Value, error) {
	switch n.Tag {
	case "true", "false":
		if len(n.Children) != 0 {
			return nil, fmt.Errorf("plist: <%s> must be empty", n.Tag)
		}
		return Bool(n.Tag == "true"), nil
	case "string":
		s, err := textOf(n)
		if err != nil {
			return nil, err
		}
		return String(s), nil
	case "integer":
		s, err := textOf(n)
		if err != nil {
			return nil, err
		}
		i, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("plist: invalid integer %q", s)
		}
		return Integer(i), nil
	case "real":
		s, err := textOf(n)
		if err != nil {
			return nil, err
		}
		f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		if err != nil {
			return nil, fmt.Errorf("plist: invalid real %q", s)
		}
		return Real(f), nil
	case "array":
		arr := Array{}
		for _, c := range n.Children {
			cn, ok := c.(*xexpr.Node)
			if !ok {
				return nil, fmt.Errorf("plist: <array> may contain only elements, found %T", c)
			}
			v, err := decodeValue(cn)
			if err != nil {
				return nil, err
			}
			arr = append(arr, v)
		}
		return arr, nil
	case "dict":
		return decodeDict(n)
	}
	return nil, fmt.Errorf("plist: unknown element <%s>", n.Tag)
}

func decodeDict(n *xexpr.Node) (Value, error) {
	if len(n.Children)%2 != 0 {
		return nil, fmt.Errorf("plist: <dict> must hold key/value pairs, found %d children", len(n.Children))
	}
	d := Dict{}
	for i := 0; i < len(n.Children); i += 2 {
		kn, ok := n.Children[i].(*xexpr.Node)
		if !ok || kn.Tag != "key" {
			return nil, fmt.Errorf("plist: <dict> entry %d must begin with <key>", i/2)
		}
		key, err := textOf(kn)
		if err != nil {
			return nil, err
		}
		vn, ok := n.Children[i+1].(*xexpr.Node)
		if !ok {
			return nil, fmt.Errorf("plist: value for key %q must be an element, found %T", key, n.Children[i+1])
		}
		v, err := decodeValue(vn)
		if err != nil {
			return nil, err
		}
		d = append(d, Entry{Key: key, Value: v})
	}
	return d, nil
}

// textOf flattens an element's character-data children.
func textOf(n *xexpr.Node) (string, error) {
	var b strings.Builder
	for _, c := range n.Children {
		s, ok := c.(string)
		if !ok {
			return "", fmt.Errorf("plist: <%s> must contain only text, found %T", n.Tag, c)
		}
		b.WriteString(s)
	}
	return b.String(), nil
}

func encodeValue(v Value) *xexpr.Node {
	switch v := v.(type) {
	case Bool:
		if v {
			return &xexpr.Node{Tag: "true"}
		}
		return &xexpr.Node{Tag: "false"}
	case String:
		return textNode("string", string(v))
	case Integer:
		return textNode("integer", strconv.FormatInt(int64(v), 10))
	case Real:
		return textNode("real", strconv.FormatFloat(float64(v), 'g', -1, 64))
	case Array:
		n := &xexpr.Node{Tag: "array"}
		for _, e := range v {
			n.Children = append(n.Children, encodeValue(e))
		}
		return n
	case Dict:
		n := &xexpr.Node{Tag: "dict"}
		for _, e := range v {
			n.Children = append(n.Children, textNode("key", e.Key), encodeValue(e.Value))
		}
		return n
	}
	// A nil entry inside an Array or Dict lands here; Validate reports
	// it from Write.
	return nil
}

func textNode(tag xexpr.Symbol, text string) *xexpr.Node {
	n := &xexpr.Node{Tag: tag}
	if text != "" {
		n.Children = []xexpr.Value{text}
	}
	return n
}
