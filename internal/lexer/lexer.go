// Package lexer turns XML text into the lexical events defined by the
// token package, tracking the source location of every event.
package lexer

import (
	"bytes"
	"fmt"
	"io"
	"strconv"
	"strings"
	"unicode"

	"github.com/josephzizys/go-xmltree/token"
)

// An Error is malformed input detected at a specific location.
type Error struct {
	Msg string
	Loc token.Location
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Loc, e.Msg)
}

// Lexer holds the state for tokenizing XML input.
type Lexer struct {
	in      *Input
	buf     bytes.Buffer // reusable buffer for text runs
	push    *item        // single-item pushback
	pushLoc token.Location
	pending *token.Token // entity held back while a text run flushes
}

// New creates and returns a new Lexer.
func New(in *Input) *Lexer {
	return &Lexer{in: in}
}

// NextToken scans the input and returns the next lexical event. At end
// of input it returns a token of kind token.EOF; it never reads past
// what the returned token covers.
func (l *Lexer) NextToken() (token.Token, error) {
	if t := l.pending; t != nil {
		l.pending = nil
		return *t, nil
	}
	start := l.loc()
	it, loc, err := l.next()
	if err == io.EOF {
		return token.Token{Kind: token.EOF, Span: span(start, start)}, nil
	}
	if err != nil {
		return token.Token{}, err
	}
	switch {
	case it.isSpec:
		return token.Token{Kind: token.Special, Value: it.special, Span: span(loc, l.loc())}, nil
	case it.r == '<':
		return l.lexMarkup(loc)
	default:
		l.unread(it, loc)
		return l.lexText()
	}
}

func (l *Lexer) next() (item, token.Location, error) {
	if l.push != nil {
		it, loc := *l.push, l.pushLoc
		l.push = nil
		return it, loc, nil
	}
	return l.in.read()
}

func (l *Lexer) unread(it item, loc token.Location) {
	l.push = &it
	l.pushLoc = loc
}

// loc returns the location of the next unconsumed item.
func (l *Lexer) loc() token.Location {
	if l.push != nil {
		return l.pushLoc
	}
	return l.in.Loc()
}

func (l *Lexer) errf(loc token.Location, format string, args ...any) error {
	return &Error{Msg: fmt.Sprintf(format, args...), Loc: loc}
}

// lexText reads a run of character data. Numeric references to valid
// characters and the predefined named entities are resolved into the
// run; any other reference ends the run and is held back as the next
// token.
func (l *Lexer) lexText() (token.Token, error) {
	start := l.loc()
	l.buf.Reset()
	for {
		it, loc, err := l.next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return token.Token{}, err
		}
		if it.isSpec || it.r == '<' {
			l.unread(it, loc)
			break
		}
		if it.r != '&' {
			l.buf.WriteRune(it.r)
			continue
		}
		ent, err := l.lexEntity(loc)
		if err != nil {
			return token.Token{}, err
		}
		if r, ok := resolve(ent); ok {
			l.buf.WriteRune(r)
			continue
		}
		if l.buf.Len() == 0 {
			return ent, nil
		}
		l.pending = &ent
		return token.Token{Kind: token.Text, Text: l.buf.String(), Span: span(start, loc)}, nil
	}
	return token.Token{Kind: token.Text, Text: l.buf.String(), Span: span(start, l.loc())}, nil
}

// lexEntity reads an entity reference; the & at amp has been consumed.
func (l *Lexer) lexEntity(amp token.Location) (token.Token, error) {
	it, loc, err := l.next()
	if err == io.EOF {
		return token.Token{}, l.errf(amp, "unterminated entity reference")
	}
	if err != nil {
		return token.Token{}, err
	}
	if it.isSpec {
		return token.Token{}, l.errf(loc, "non-character value inside entity reference")
	}
	if it.r == '#' {
		return l.lexCharRef(amp)
	}
	if !isNameStart(it.r) {
		return token.Token{}, l.errf(amp, "bare & in text: entity reference expected")
	}
	l.unread(it, loc)
	name, err := l.lexName()
	if err != nil {
		return token.Token{}, err
	}
	it, loc, err = l.next()
	if err == io.EOF {
		return token.Token{}, l.errf(amp, "unterminated entity reference")
	}
	if err != nil {
		return token.Token{}, err
	}
	if it.isSpec || it.r != ';' {
		return token.Token{}, l.errf(loc, "expected ; to close entity reference &%s", name)
	}
	return token.Token{Kind: token.Entity, Name: name, Span: span(amp, l.loc())}, nil
}

// lexCharRef reads a numeric entity reference; the &# has been consumed.
func (l *Lexer) lexCharRef(amp token.Location) (token.Token, error) {
	it, loc, err := l.next()
	if err == io.EOF {
		return token.Token{}, l.errf(amp, "unterminated entity reference")
	}
	if err != nil {
		return token.Token{}, err
	}
	if it.isSpec {
		return token.Token{}, l.errf(loc, "non-character value inside entity reference")
	}
	base := 10
	if it.r == 'x' {
		base = 16
	} else {
		l.unread(it, loc)
	}
	var digits strings.Builder
	for {
		it, loc, err = l.next()
		if err == io.EOF {
			return token.Token{}, l.errf(amp, "unterminated entity reference")
		}
		if err != nil {
			return token.Token{}, err
		}
		if it.isSpec {
			return token.Token{}, l.errf(loc, "non-character value inside entity reference")
		}
		if it.r == ';' {
			break
		}
		if !isDigit(it.r, base) {
			return token.Token{}, l.errf(loc, "invalid character %q in numeric entity reference", it.r)
		}
		digits.WriteRune(it.r)
	}
	if digits.Len() == 0 {
		return token.Token{}, l.errf(amp, "numeric entity reference has no digits")
	}
	n, err := strconv.ParseInt(digits.String(), base, 32)
	if err != nil {
		return token.Token{}, l.errf(amp, "numeric entity reference out of range")
	}
	return token.Token{Kind: token.Entity, Code: int(n), Span: span(amp, l.loc())}, nil
}

// lexMarkup dispatches everything that begins with <; the < at lt has
// been consumed.
func (l *Lexer) lexMarkup(lt token.Location) (token.Token, error) {
	it, loc, err := l.next()
	if err == io.EOF {
		return token.Token{}, l.errf(lt, "unterminated markup: input ends after <")
	}
	if err != nil {
		return token.Token{}, err
	}
	if it.isSpec {
		return token.Token{}, l.errf(loc, "non-character value inside markup")
	}
	switch {
	case it.r == '/':
		return l.lexEndTag(lt)
	case it.r == '!':
		return l.lexDeclaration(lt)
	case it.r == '?':
		return l.lexPI(lt)
	case isNameStart(it.r):
		l.unread(it, loc)
		return l.lexStartTag(lt)
	}
	return token.Token{}, l.errf(lt, "bare < in text: tag name expected")
}

// lexStartTag assembles <name attr="value" ...> or <name/>; the < at lt
// has been consumed and the name begins the remaining input.
func (l *Lexer) lexStartTag(lt token.Location) (token.Token, error) {
	name, err := l.lexName()
	if err != nil {
		return token.Token{}, err
	}
	t := token.Token{Kind: token.StartTag, Name: name}
	for {
		if err := l.skipSpace(); err != nil {
			return token.Token{}, err
		}
		it, loc, err := l.next()
		if err == io.EOF {
			return token.Token{}, l.errf(lt, "unterminated start tag <%s", name)
		}
		if err != nil {
			return token.Token{}, err
		}
		if it.isSpec {
			return token.Token{}, l.errf(loc, "non-character value inside tag <%s", name)
		}
		switch {
		case it.r == '>':
			t.Span = span(lt, l.loc())
			return t, nil
		case it.r == '/':
			it, loc, err = l.next()
			if err == io.EOF {
				return token.Token{}, l.errf(lt, "unterminated start tag <%s", name)
			}
			if err != nil {
				return token.Token{}, err
			}
			if it.isSpec || it.r != '>' {
				return token.Token{}, l.errf(loc, "expected > after / in tag <%s", name)
			}
			t.SelfClosing = true
			t.Span = span(lt, l.loc())
			return t, nil
		case isNameStart(it.r):
			l.unread(it, loc)
			a, err := l.lexAttr()
			if err != nil {
				return token.Token{}, err
			}
			t.Attrs = append(t.Attrs, a)
		default:
			return token.Token{}, l.errf(loc, "invalid character %q in tag <%s", it.r, name)
		}
	}
}

// lexEndTag reads </name>; the </ has been consumed.
func (l *Lexer) lexEndTag(lt token.Location) (token.Token, error) {
	name, err := l.lexName()
	if err != nil {
		return token.Token{}, err
	}
	if err := l.skipSpace(); err != nil {
		return token.Token{}, err
	}
	it, loc, err := l.next()
	if err == io.EOF {
		return token.Token{}, l.errf(lt, "unterminated end tag </%s", name)
	}
	if err != nil {
		return token.Token{}, err
	}
	if it.isSpec || it.r != '>' {
		return token.Token{}, l.errf(loc, "invalid character in end tag </%s", name)
	}
	return token.Token{Kind: token.EndTag, Name: name, Span: span(lt, l.loc())}, nil
}

// lexDeclaration dispatches comments, CDATA sections, and DOCTYPE
// declarations; the <! has been consumed.
func (l *Lexer) lexDeclaration(lt token.Location) (token.Token, error) {
	it, loc, err := l.next()
	if err == io.EOF {
		return token.Token{}, l.errf(lt, "unterminated declaration")
	}
	if err != nil {
		return token.Token{}, err
	}
	if it.isSpec {
		return token.Token{}, l.errf(loc, "non-character value inside declaration")
	}
	switch it.r {
	case '-':
		if err := l.expect("-", lt, "<!--"); err != nil {
			return token.Token{}, err
		}
		return l.lexComment(lt)
	case '[':
		if err := l.expect("CDATA[", lt, "<![CDATA["); err != nil {
			return token.Token{}, err
		}
		return l.lexCData(lt)
	case 'D':
		if err := l.expect("OCTYPE", lt, "<!DOCTYPE"); err != nil {
			return token.Token{}, err
		}
		return l.lexDocType(lt)
	}
	return token.Token{}, l.errf(lt, "expected a comment, CDATA section, or DOCTYPE after <!")
}

// lexComment scans to the --> terminator; the <!-- has been consumed.
func (l *Lexer) lexComment(lt token.Location) (token.Token, error) {
	l.buf.Reset()
	for {
		it, loc, err := l.next()
		if err == io.EOF {
			return token.Token{}, l.errf(lt, "unterminated comment")
		}
		if err != nil {
			return token.Token{}, err
		}
		if it.isSpec {
			return token.Token{}, l.errf(loc, "non-character value inside comment")
		}
		if it.r == '>' {
			if s := l.buf.String(); strings.HasSuffix(s, "--") {
				return token.Token{Kind: token.Comment, Text: s[:len(s)-2], Span: span(lt, l.loc())}, nil
			}
		}
		l.buf.WriteRune(it.r)
	}
}

// lexCData scans to the ]]> terminator; the <![CDATA[ has been
// consumed. The token keeps the delimiters: CDATA is stored and written
// back in literal form.
func (l *Lexer) lexCData(lt token.Location) (token.Token, error) {
	l.buf.Reset()
	for {
		it, loc, err := l.next()
		if err == io.EOF {
			return token.Token{}, l.errf(lt, "unterminated CDATA section")
		}
		if err != nil {
			return token.Token{}, err
		}
		if it.isSpec {
			return token.Token{}, l.errf(loc, "non-character value inside CDATA section")
		}
		if it.r == '>' {
			if s := l.buf.String(); strings.HasSuffix(s, "]]") {
				return token.Token{
					Kind: token.CData,
					Text: "<![CDATA[" + s[:len(s)-2] + "]]>",
					Span: span(lt, l.loc()),
				}, nil
			}
		}
		l.buf.WriteRune(it.r)
	}
}

// lexPI reads <?target instruction?>; the <? has been consumed.
func (l *Lexer) lexPI(lt token.Location) (token.Token, error) {
	target, err := l.lexName()
	if err != nil {
		return token.Token{}, err
	}
	it, loc, err := l.next()
	if err == io.EOF {
		return token.Token{}, l.errf(lt, "unterminated processing instruction")
	}
	if err != nil {
		return token.Token{}, err
	}
	if it.isSpec {
		return token.Token{}, l.errf(loc, "non-character value inside processing instruction")
	}
	switch {
	case it.r == '?':
		if err := l.expect(">", lt, "?>"); err != nil {
			return token.Token{}, err
		}
		return token.Token{Kind: token.ProcInst, Name: target, Span: span(lt, l.loc())}, nil
	case isSpace(it.r):
	default:
		return token.Token{}, l.errf(loc, "expected whitespace after target %s", target)
	}
	if err := l.skipSpace(); err != nil {
		return token.Token{}, err
	}
	l.buf.Reset()
	for {
		it, loc, err = l.next()
		if err == io.EOF {
			return token.Token{}, l.errf(lt, "unterminated processing instruction")
		}
		if err != nil {
			return token.Token{}, err
		}
		if it.isSpec {
			return token.Token{}, l.errf(loc, "non-character value inside processing instruction")
		}
		if it.r == '>' {
			if s := l.buf.String(); strings.HasSuffix(s, "?") {
				return token.Token{
					Kind: token.ProcInst,
					Name: target,
					Text: s[:len(s)-1],
					Span: span(lt, l.loc()),
				}, nil
			}
		}
		l.buf.WriteRune(it.r)
	}
}

// lexDocType reads a <!DOCTYPE ...> declaration; the <!DOCTYPE has been
// consumed. The internal subset, when present, is scanned and discarded.
func (l *Lexer) lexDocType(lt token.Location) (token.Token, error) {
	if err := l.skipSpace(); err != nil {
		return token.Token{}, err
	}
	name, err := l.lexName()
	if err != nil {
		return token.Token{}, err
	}
	t := token.Token{Kind: token.DocType, Name: name}
	if err := l.skipSpace(); err != nil {
		return token.Token{}, err
	}
	it, loc, err := l.next()
	if err == io.EOF {
		return token.Token{}, l.errf(lt, "unterminated DOCTYPE declaration")
	}
	if err != nil {
		return token.Token{}, err
	}
	if it.isSpec {
		return token.Token{}, l.errf(loc, "non-character value inside DOCTYPE declaration")
	}
	switch it.r {
	case 'S':
		if err := l.expect("YSTEM", loc, "SYSTEM"); err != nil {
			return token.Token{}, err
		}
		if err := l.skipSpace(); err != nil {
			return token.Token{}, err
		}
		if t.System, err = l.lexQuoted("system identifier"); err != nil {
			return token.Token{}, err
		}
		t.HasExternal = true
	case 'P':
		if err := l.expect("UBLIC", loc, "PUBLIC"); err != nil {
			return token.Token{}, err
		}
		if err := l.skipSpace(); err != nil {
			return token.Token{}, err
		}
		if t.Public, err = l.lexQuoted("public identifier"); err != nil {
			return token.Token{}, err
		}
		if err := l.skipSpace(); err != nil {
			return token.Token{}, err
		}
		if t.System, err = l.lexQuoted("system identifier"); err != nil {
			return token.Token{}, err
		}
		t.HasExternal = true
	default:
		l.unread(it, loc)
	}
	if err := l.skipSpace(); err != nil {
		return token.Token{}, err
	}
	it, loc, err = l.next()
	if err == io.EOF {
		return token.Token{}, l.errf(lt, "unterminated DOCTYPE declaration")
	}
	if err != nil {
		return token.Token{}, err
	}
	if !it.isSpec && it.r == '[' {
		if err := l.skipSubset(lt); err != nil {
			return token.Token{}, err
		}
		if err := l.skipSpace(); err != nil {
			return token.Token{}, err
		}
		it, loc, err = l.next()
		if err == io.EOF {
			return token.Token{}, l.errf(lt, "unterminated DOCTYPE declaration")
		}
		if err != nil {
			return token.Token{}, err
		}
	}
	if it.isSpec || it.r != '>' {
		return token.Token{}, l.errf(loc, "malformed DOCTYPE declaration")
	}
	t.Span = span(lt, l.loc())
	return t, nil
}

// skipSubset discards an internal DTD subset up to its closing ]; the
// opening [ has been consumed. Quoted strings may contain ] and are
// skipped whole.
func (l *Lexer) skipSubset(lt token.Location) error {
	for {
		it, loc, err := l.next()
		if err == io.EOF {
			return l.errf(lt, "unterminated DOCTYPE internal subset")
		}
		if err != nil {
			return err
		}
		if it.isSpec {
			return l.errf(loc, "non-character value inside DOCTYPE internal subset")
		}
		switch it.r {
		case ']':
			return nil
		case '"', '\'':
			q := it.r
			for {
				it, _, err = l.next()
				if err == io.EOF {
					return l.errf(lt, "unterminated DOCTYPE internal subset")
				}
				if err != nil {
					return err
				}
				if !it.isSpec && it.r == q {
					break
				}
			}
		}
	}
}

// lexAttr reads one name="value" attribute.
func (l *Lexer) lexAttr() (token.Attr, error) {
	start := l.loc()
	name, err := l.lexName()
	if err != nil {
		return token.Attr{}, err
	}
	if err := l.skipSpace(); err != nil {
		return token.Attr{}, err
	}
	it, loc, err := l.next()
	if err == io.EOF {
		return token.Attr{}, l.errf(start, "attribute %s is missing a value", name)
	}
	if err != nil {
		return token.Attr{}, err
	}
	if it.isSpec || it.r != '=' {
		return token.Attr{}, l.errf(loc, "expected = after attribute name %s", name)
	}
	if err := l.skipSpace(); err != nil {
		return token.Attr{}, err
	}
	it, loc, err = l.next()
	if err == io.EOF {
		return token.Attr{}, l.errf(start, "attribute %s is missing a value", name)
	}
	if err != nil {
		return token.Attr{}, err
	}
	if it.isSpec || (it.r != '"' && it.r != '\'') {
		return token.Attr{}, l.errf(loc, "attribute %s value must be quoted", name)
	}
	value, err := l.lexAttrValue(it.r, loc)
	if err != nil {
		return token.Attr{}, err
	}
	return token.Attr{Name: name, Value: value, Span: span(start, l.loc())}, nil
}

// lexAttrValue reads to the closing quote, resolving entity references.
// Named references that are not predefined stay in literal &name; form:
// an attribute value is a plain string with no place for symbolic nodes.
func (l *Lexer) lexAttrValue(q rune, open token.Location) (string, error) {
	var b strings.Builder
	for {
		it, loc, err := l.next()
		if err == io.EOF {
			return "", l.errf(open, "unterminated attribute value")
		}
		if err != nil {
			return "", err
		}
		if it.isSpec {
			return "", l.errf(loc, "non-character value inside attribute value")
		}
		switch it.r {
		case q:
			return b.String(), nil
		case '&':
			ent, err := l.lexEntity(loc)
			if err != nil {
				return "", err
			}
			switch r, ok := resolve(ent); {
			case ok:
				b.WriteRune(r)
			case ent.Name != "":
				b.WriteByte('&')
				b.WriteString(ent.Name)
				b.WriteByte(';')
			default:
				fmt.Fprintf(&b, "&#%d;", ent.Code)
			}
		default:
			b.WriteRune(it.r)
		}
	}
}

// lexQuoted reads a quoted identifier with no entity processing.
func (l *Lexer) lexQuoted(what string) (string, error) {
	it, loc, err := l.next()
	if err == io.EOF {
		return "", l.errf(l.loc(), "expected a quoted %s", what)
	}
	if err != nil {
		return "", err
	}
	if it.isSpec || (it.r != '"' && it.r != '\'') {
		return "", l.errf(loc, "expected a quoted %s", what)
	}
	q, open := it.r, loc
	var b strings.Builder
	for {
		it, _, err = l.next()
		if err == io.EOF {
			return "", l.errf(open, "unterminated %s", what)
		}
		if err != nil {
			return "", err
		}
		if it.isSpec {
			return "", l.errf(open, "non-character value inside %s", what)
		}
		if it.r == q {
			return b.String(), nil
		}
		b.WriteRune(it.r)
	}
}

// lexName reads a tag, attribute, or entity name.
func (l *Lexer) lexName() (string, error) {
	it, loc, err := l.next()
	if err == io.EOF {
		return "", l.errf(l.loc(), "expected a name")
	}
	if err != nil {
		return "", err
	}
	if it.isSpec {
		return "", l.errf(loc, "non-character value where a name was expected")
	}
	if !isNameStart(it.r) {
		return "", l.errf(loc, "invalid name start character %q", it.r)
	}
	var b strings.Builder
	b.WriteRune(it.r)
	for {
		it, loc, err = l.next()
		if err == io.EOF {
			return b.String(), nil
		}
		if err != nil {
			return "", err
		}
		if it.isSpec || !isNameRune(it.r) {
			l.unread(it, loc)
			return b.String(), nil
		}
		b.WriteRune(it.r)
	}
}

// expect consumes the exact characters of lit, reporting want on any
// mismatch.
func (l *Lexer) expect(lit string, at token.Location, want string) error {
	for _, r := range lit {
		it, loc, err := l.next()
		if err == io.EOF {
			return l.errf(at, "expected %s", want)
		}
		if err != nil {
			return err
		}
		if it.isSpec || it.r != r {
			return l.errf(loc, "expected %s", want)
		}
	}
	return nil
}

func (l *Lexer) skipSpace() error {
	for {
		it, loc, err := l.next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
		if it.isSpec || !isSpace(it.r) {
			l.unread(it, loc)
			return nil
		}
	}
}

func span(start, stop token.Location) token.Span {
	return token.Span{Start: start, Stop: stop}
}

// The five predefined entities and numeric references to valid
// characters resolve to literal text during lexing; everything else
// stays symbolic.
var predefined = map[string]rune{
	"amp":  '&',
	"lt":   '<',
	"gt":   '>',
	"quot": '"',
	"apos": '\'',
}

func resolve(t token.Token) (rune, bool) {
	if t.Name != "" {
		r, ok := predefined[t.Name]
		return r, ok
	}
	if !validChar(t.Code) {
		return 0, false
	}
	return rune(t.Code), true
}

// validChar reports whether n is a character allowed in XML text.
func validChar(n int) bool {
	switch {
	case n == 0x9 || n == 0xA || n == 0xD:
		return true
	case 0x20 <= n && n <= 0xD7FF:
		return true
	case 0xE000 <= n && n <= 0xFFFD:
		return true
	case 0x10000 <= n && n <= 0x10FFFF:
		return true
	}
	return false
}

func isSpace(r rune) bool {
	return r == ' ' || r == '\t' || r == '\r' || r == '\n'
}

func isNameStart(r rune) bool {
	return r == '_' || r == ':' || unicode.IsLetter(r)
}

func isNameRune(r rune) bool {
	return isNameStart(r) || r == '-' || r == '.' || unicode.IsDigit(r)
}

func isDigit(r rune, base int) bool {
	if base == 16 {
		return ('0' <= r && r <= '9') || ('a' <= r && r <= 'f') || ('A' <= r && r <= 'F')
	}
	return '0' <= r && r <= '9'
}
