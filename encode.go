package xmltree

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// Encoder writes XML trees to an output stream.
type Encoder struct {
	w    io.Writer
	opts []Option
}

// NewEncoder returns a new encoder that writes to w.
func NewEncoder(w io.Writer, opts ...Option) *Encoder {
	return &Encoder{w: w, opts: opts}
}

// Encode writes the XML encoding of v, which must be a *Document or a
// Content node. Encoding a document writes only its root element: the
// prolog, DOCTYPE declaration, and trailing misc are dropped.
//
// A *Special node has no textual form; encoding one returns an error
// identifying the value.
func (e *Encoder) Encode(v any) error {
	o := options{shorthand: ShorthandAlways}
	for _, opt := range e.opts {
		if err := opt(&o); err != nil {
			return err
		}
	}

	p := newPrinter(e.w, &o)
	switch v := v.(type) {
	case *Document:
		if v.Root == nil {
			return fmt.Errorf("xmltree: document has no root element")
		}
		if err := p.content(v.Root, 0); err != nil {
			return err
		}
	case Content:
		if err := p.content(v, 0); err != nil {
			return err
		}
	default:
		return fmt.Errorf("xmltree: cannot encode %T", v)
	}
	return p.w.Flush()
}

// printer writes nodes in compact or indented form.
type printer struct {
	w      *bufio.Writer
	opts   *options
	indent string
	debug  bool // render specials with fmt instead of failing
}

func newPrinter(w io.Writer, opts *options) *printer {
	p := &printer{w: bufio.NewWriter(w), opts: opts}
	if opts.indent > 0 {
		p.indent = strings.Repeat(" ", opts.indent)
	}
	return p
}

var (
	textEscaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;")
	attrEscaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;", `"`, "&quot;", "'", "&apos;")
)

func (p *printer) write(s string) error {
	_, err := p.w.WriteString(s)
	return err
}

// text writes character data with markup characters escaped.
func (p *printer) text(s string) error {
	if p.opts.collapse {
		s = collapse(s)
	}
	_, err := textEscaper.WriteString(p.w, s)
	return err
}

func (p *printer) content(c Content, depth int) error {
	switch c := c.(type) {
	case *Element:
		return p.element(c, depth)
	case *PCData:
		return p.text(c.Value)
	case *CData:
		return p.write(c.Raw)
	case *Comment:
		if err := p.write("<!--"); err != nil {
			return err
		}
		if err := p.write(c.Text); err != nil {
			return err
		}
		return p.write("-->")
	case *ProcInst:
		if c.Instruction == "" {
			return p.write("<?" + c.Target + "?>")
		}
		return p.write("<?" + c.Target + " " + c.Instruction + "?>")
	case *Entity:
		return p.entity(c)
	case *Special:
		if p.debug {
			return p.text(fmt.Sprint(c.Value))
		}
		return fmt.Errorf("xmltree: cannot write non-character value %v (type %T)", c.Value, c.Value)
	}
	return fmt.Errorf("xmltree: cannot encode %T", c)
}

func (p *printer) element(el *Element, depth int) error {
	if el == nil {
		return fmt.Errorf("xmltree: cannot encode a nil element")
	}
	if err := p.write("<" + string(el.Name)); err != nil {
		return err
	}
	for _, a := range el.Attrs {
		if err := p.write(" " + string(a.Name) + `="`); err != nil {
			return err
		}
		if _, err := attrEscaper.WriteString(p.w, a.Value); err != nil {
			return err
		}
		if err := p.write(`"`); err != nil {
			return err
		}
	}
	if len(el.Content) == 0 && p.opts.shorthand.use(el.Name) {
		return p.write("/>")
	}
	if err := p.write(">"); err != nil {
		return err
	}
	if p.indent != "" && len(el.Content) > 0 && !inline(el) {
		if err := p.prettyContent(el, depth); err != nil {
			return err
		}
	} else {
		for _, c := range el.Content {
			if err := p.content(c, depth); err != nil {
				return err
			}
		}
	}
	return p.write("</" + string(el.Name) + ">")
}

// prettyContent writes element-only content one child per line.
func (p *printer) prettyContent(el *Element, depth int) error {
	for _, c := range el.Content {
		if err := p.write("\n"); err != nil {
			return err
		}
		if err := p.writeIndent(depth + 1); err != nil {
			return err
		}
		if err := p.content(c, depth+1); err != nil {
			return err
		}
	}
	if err := p.write("\n"); err != nil {
		return err
	}
	return p.writeIndent(depth)
}

func (p *printer) writeIndent(depth int) error {
	for i := 0; i < depth; i++ {
		if err := p.write(p.indent); err != nil {
			return err
		}
	}
	return nil
}

func (p *printer) entity(e *Entity) error {
	switch ref := e.Ref.(type) {
	case Symbol:
		return p.write("&" + string(ref) + ";")
	case int:
		return p.write(fmt.Sprintf("&#%d;", ref))
	}
	return fmt.Errorf("xmltree: entity reference must be a Symbol or an int, got %T", e.Ref)
}

// inline reports whether el holds text-like content that must stay on
// one line to be preserved exactly.
func inline(el *Element) bool {
	for _, c := range el.Content {
		switch c.(type) {
		case *PCData, *CData, *Entity, *Special:
			return true
		}
	}
	return false
}

// collapse rewrites every run of whitespace as a single space.
func collapse(s string) string {
	var b strings.Builder
	run := false
	for _, r := range s {
		if r == ' ' || r == '\t' || r == '\r' || r == '\n' {
			run = true
			continue
		}
		if run {
			b.WriteByte(' ')
			run = false
		}
		b.WriteRune(r)
	}
	if run {
		b.WriteByte(' ')
	}
	return b.String()
}

// String returns a compact rendering of the document's root element
// for debugging. Non-character values are rendered with fmt; errors
// are ignored.
func (d *Document) String() string {
	if d.Root == nil {
		return ""
	}
	return debugString(d.Root)
}

// String returns a compact rendering of the element for debugging.
// Non-character values are rendered with fmt; errors are ignored.
func (el *Element) String() string {
	return debugString(el)
}

func debugString(c Content) string {
	var sb strings.Builder
	o := options{shorthand: ShorthandAlways}
	p := newPrinter(&sb, &o)
	p.debug = true
	_ = p.content(c, 0)
	_ = p.w.Flush()
	return sb.String()
}
