package lexer

import (
	"bufio"
	"io"
	"unicode/utf8"

	"github.com/josephzizys/go-xmltree/token"
)

// An item is one unit of input: a decoded rune, or an opaque
// non-character value supplied through an item input.
type item struct {
	r       rune
	special any
	isSpec  bool
}

// An Input feeds the lexer and tracks the location of everything it
// hands out.
type Input struct {
	br    *bufio.Reader // reader-backed input; nil for item inputs
	items []any         // unconsumed items of an item input
	str   string        // rest of the string item currently being decoded

	loc        token.Location // location of the next unread item
	countBytes bool
}

// NewInput returns an Input reading UTF-8 text from r.
func NewInput(r io.Reader) *Input {
	return &Input{br: bufio.NewReader(r), loc: token.Location{Line: 1}}
}

// NewItemInput returns an Input over a fixed item sequence. string and
// []byte items supply character data; every other item is handed through
// as a single opaque value.
func NewItemInput(items ...any) *Input {
	return &Input{items: items, loc: token.Location{Line: 1}}
}

// CountBytes makes Offset advance by encoded byte length rather than by
// runes. It must be called before the first read.
func (in *Input) CountBytes() { in.countBytes = true }

// Loc returns the location of the next unread item.
func (in *Input) Loc() token.Location { return in.loc }

// Rest returns the unconsumed remainder of a reader-backed input. It
// returns nil for item inputs.
func (in *Input) Rest() io.Reader {
	if in.br == nil {
		return nil
	}
	return in.br
}

// read returns the next item together with the location it occupies.
// End of input is reported as io.EOF.
func (in *Input) read() (item, token.Location, error) {
	loc := in.loc
	if in.br != nil {
		r, size, err := in.br.ReadRune()
		if err != nil {
			return item{}, loc, err
		}
		in.advance(r, size)
		return item{r: r}, loc, nil
	}
	for in.str == "" && len(in.items) > 0 {
		next := in.items[0]
		in.items = in.items[1:]
		switch next := next.(type) {
		case string:
			in.str = next
		case []byte:
			in.str = string(next)
		default:
			// An opaque value occupies one column.
			in.loc.Column++
			in.loc.Offset++
			return item{special: next, isSpec: true}, loc, nil
		}
	}
	if in.str == "" {
		return item{}, loc, io.EOF
	}
	r, size := utf8.DecodeRuneInString(in.str)
	in.str = in.str[size:]
	in.advance(r, size)
	return item{r: r}, loc, nil
}

func (in *Input) advance(r rune, size int) {
	if in.countBytes {
		in.loc.Offset += size
	} else {
		in.loc.Offset++
	}
	if r == '\n' {
		in.loc.Line++
		in.loc.Column = 0
	} else {
		in.loc.Column++
	}
}
