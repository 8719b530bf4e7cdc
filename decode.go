package xmltree

import (
	"errors"
	"fmt"
	"io"

	"github.com/josephzizys/go-xmltree/internal/lexer"
	"github.com/josephzizys/go-xmltree/token"
)

// Decoder reads XML documents and elements from an input stream.
type Decoder struct {
	in           *lexer.Input
	lx           *lexer.Lexer
	opts         []DecodeOption
	readComments bool
}

// NewDecoder returns a new decoder that reads from r.
//
// The decoder may buffer data from r beyond what it decodes; Buffered
// returns the unread remainder.
func NewDecoder(r io.Reader, opts ...DecodeOption) *Decoder {
	return newDecoder(lexer.NewInput(r), opts)
}

// NewItemDecoder returns a decoder that reads from an item sequence
// instead of a byte stream. string and []byte items supply character
// data; every other item is one opaque value that may appear wherever
// character data may, and parses to a *Special node.
func NewItemDecoder(items []any, opts ...DecodeOption) *Decoder {
	return newDecoder(lexer.NewItemInput(items...), opts)
}

func newDecoder(in *lexer.Input, opts []DecodeOption) *Decoder {
	return &Decoder{in: in, lx: lexer.New(in), opts: opts}
}

func (d *Decoder) applyOptions() error {
	for _, opt := range d.opts {
		if err := opt(d); err != nil {
			return err
		}
	}
	return nil
}

// Document reads a complete document: optional misc and a DOCTYPE
// declaration, exactly one element, optional trailing misc, then end
// of input. Zero top-level elements, or a second one, is a RootError;
// all other malformed input is a ParseError.
func (d *Decoder) Document() (*Document, error) {
	if err := d.applyOptions(); err != nil {
		return nil, err
	}
	var prolog Prolog
	t, misc, err := d.readMisc()
	if err != nil {
		return nil, err
	}
	prolog.Misc = misc
	if t.Kind == token.DocType {
		prolog.DocType = docType(t)
		t, misc, err = d.readMisc()
		if err != nil {
			return nil, err
		}
		prolog.Misc2 = misc
	}
	switch t.Kind {
	case token.StartTag:
	case token.EOF:
		return nil, &RootError{}
	case token.DocType:
		return nil, &ParseError{Msg: "multiple DOCTYPE declarations", Loc: startLoc(t)}
	default:
		return nil, d.unexpected(t, "an element")
	}
	root, err := d.parseElement(t)
	if err != nil {
		return nil, err
	}
	t, misc, err = d.readMisc()
	if err != nil {
		return nil, err
	}
	switch t.Kind {
	case token.EOF:
	case token.StartTag:
		return nil, &RootError{Extra: true, Loc: startLoc(t)}
	case token.DocType:
		return nil, &ParseError{Msg: "DOCTYPE declaration after the root element", Loc: startLoc(t)}
	default:
		return nil, d.unexpected(t, "end of input")
	}
	return &Document{Prolog: prolog, Root: root, Misc: misc}, nil
}

// Element skips leading whitespace, reads one element, and stops.
// The rest of the input is left unread, so successive calls return
// successive sibling elements.
func (d *Decoder) Element() (*Element, error) {
	if err := d.applyOptions(); err != nil {
		return nil, err
	}
	for {
		t, err := d.next()
		if err != nil {
			return nil, err
		}
		switch t.Kind {
		case token.Text:
			if blank(t.Text) {
				continue
			}
		case token.StartTag:
			return d.parseElement(t)
		}
		return nil, d.unexpected(t, "an element")
	}
}

// Buffered returns a reader over data the decoder has consumed from
// the underlying reader but not yet decoded. It returns nil for item
// inputs.
func (d *Decoder) Buffered() io.Reader {
	return d.in.Rest()
}

// next returns the next token, discarding comments unless the decoder
// keeps them. Lexical errors are rewrapped as ParseErrors.
func (d *Decoder) next() (token.Token, error) {
	for {
		t, err := d.lx.NextToken()
		if err != nil {
			var lerr *lexer.Error
			if errors.As(err, &lerr) {
				return token.Token{}, &ParseError{Msg: lerr.Msg, Loc: lerr.Loc}
			}
			return token.Token{}, err
		}
		if t.Kind == token.Comment && !d.readComments {
			continue
		}
		return t, nil
	}
}

// readMisc collects comments and processing instructions up to the
// next structurally significant token, which it returns unconsumed in
// tree form. Whitespace-only text is skipped; any other content is an
// error outside the root element.
func (d *Decoder) readMisc() (token.Token, []Misc, error) {
	var misc []Misc
	for {
		t, err := d.next()
		if err != nil {
			return token.Token{}, nil, err
		}
		switch t.Kind {
		case token.Comment:
			misc = append(misc, &Comment{Text: t.Text})
		case token.ProcInst:
			misc = append(misc, &ProcInst{Span: t.Span, Target: t.Name, Instruction: t.Text})
		case token.Text:
			if !blank(t.Text) {
				return token.Token{}, nil, &ParseError{Msg: "text outside the root element", Loc: startLoc(t)}
			}
		case token.Entity, token.CData, token.Special:
			return token.Token{}, nil, &ParseError{
				Msg: describe(t) + " outside the root element",
				Loc: startLoc(t),
			}
		default:
			return t, misc, nil
		}
	}
}

// parseElement reads the content and closing tag of the element whose
// start tag is t, leaving the input positioned immediately after the
// closing tag.
func (d *Decoder) parseElement(t token.Token) (*Element, error) {
	el := &Element{Span: t.Span, Name: Symbol(t.Name), Attrs: attrs(t)}
	if t.SelfClosing {
		return el, nil
	}
	for {
		c, err := d.next()
		if err != nil {
			return nil, err
		}
		switch c.Kind {
		case token.EOF:
			return nil, &ParseError{
				Msg: fmt.Sprintf("element <%s> is missing its closing tag", el.Name),
				Loc: startLoc(t),
			}
		case token.EndTag:
			if Symbol(c.Name) != el.Name {
				return nil, &ParseError{
					Msg: fmt.Sprintf("closing tag </%s> does not match <%s>", c.Name, el.Name),
					Loc: startLoc(c),
				}
			}
			el.Span.Stop = c.Span.Stop
			return el, nil
		case token.StartTag:
			child, err := d.parseElement(c)
			if err != nil {
				return nil, err
			}
			el.Content = append(el.Content, child)
		case token.Text:
			el.Content = append(el.Content, &PCData{Span: c.Span, Value: c.Text})
		case token.Entity:
			el.Content = append(el.Content, entityNode(c))
		case token.Comment:
			el.Content = append(el.Content, &Comment{Text: c.Text})
		case token.CData:
			el.Content = append(el.Content, &CData{Span: c.Span, Raw: c.Text})
		case token.ProcInst:
			el.Content = append(el.Content, &ProcInst{Span: c.Span, Target: c.Name, Instruction: c.Text})
		case token.Special:
			el.Content = append(el.Content, &Special{Span: c.Span, Value: c.Value})
		case token.DocType:
			return nil, &ParseError{Msg: "DOCTYPE declaration inside an element", Loc: startLoc(c)}
		}
	}
}

func (d *Decoder) unexpected(t token.Token, want string) error {
	return &ParseError{
		Msg: fmt.Sprintf("expected %s, found %s", want, describe(t)),
		Loc: startLoc(t),
	}
}

func attrs(t token.Token) []Attr {
	if len(t.Attrs) == 0 {
		return nil
	}
	out := make([]Attr, len(t.Attrs))
	for i, a := range t.Attrs {
		out[i] = Attr{Span: a.Span, Name: Symbol(a.Name), Value: a.Value}
	}
	return out
}

func entityNode(t token.Token) *Entity {
	if t.Name != "" {
		return &Entity{Span: t.Span, Ref: Symbol(t.Name)}
	}
	return &Entity{Span: t.Span, Ref: t.Code}
}

func docType(t token.Token) *DocType {
	dt := &DocType{Name: Symbol(t.Name)}
	switch {
	case t.Public != "":
		dt.External = PublicID{Public: t.Public, System: t.System}
	case t.HasExternal:
		dt.External = SystemID{System: t.System}
	}
	return dt
}

// startLoc extracts the real start location of a lexed token; every
// token produced by the lexer carries one.
func startLoc(t token.Token) token.Location {
	start, _, _ := t.Span.Real()
	return start
}

func describe(t token.Token) string {
	switch t.Kind {
	case token.EOF:
		return "end of input"
	case token.Text:
		return "text"
	case token.Entity:
		return "an entity reference"
	case token.StartTag:
		return fmt.Sprintf("element <%s>", t.Name)
	case token.EndTag:
		return fmt.Sprintf("closing tag </%s>", t.Name)
	case token.Comment:
		return "a comment"
	case token.CData:
		return "a CDATA section"
	case token.ProcInst:
		return "a processing instruction"
	case token.DocType:
		return "a DOCTYPE declaration"
	case token.Special:
		return "a non-character value"
	}
	return string(t.Kind)
}
