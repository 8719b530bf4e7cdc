// Package token defines source positions and the lexical events produced
// while reading XML.
package token

import "fmt"

// A Location is a point in textual input. Its String form,
// line.column/offset, appears verbatim in parse error messages.
type Location struct {
	Line   int // 1-based line number
	Column int // 0-based column within the line
	Offset int // items consumed before this point
}

// String renders the location as line.column/offset.
func (l Location) String() string {
	return fmt.Sprintf("%d.%d/%d", l.Line, l.Column, l.Offset)
}

func (Location) pos() {}

// A Synthetic position marks content built in memory rather than read
// from input. The string names the producer.
type Synthetic string

// String returns the producer name.
func (s Synthetic) String() string { return string(s) }

func (Synthetic) pos() {}

// A Pos is one end of a Span: a real Location for parsed content, or a
// Synthetic marker for constructed content. The sum is closed; consumers
// that need a real location must type-assert and handle the synthetic
// case.
type Pos interface {
	fmt.Stringer
	pos()
}

// A Span delimits where a node came from. Start points at the node's
// first character and Stop just past its last.
type Span struct {
	Start Pos
	Stop  Pos
}

// SyntheticSpan returns a span with both ends marked by the named
// producer.
func SyntheticSpan(producer string) Span {
	p := Synthetic(producer)
	return Span{Start: p, Stop: p}
}

// Real reports the span's endpoints as Locations. It returns ok == false
// when either end is synthetic.
func (s Span) Real() (start, stop Location, ok bool) {
	start, ok1 := s.Start.(Location)
	stop, ok2 := s.Stop.(Location)
	return start, stop, ok1 && ok2
}

// Kind identifies a lexical event.
type Kind string

const (
	EOF      Kind = "EOF"
	Text     Kind = "TEXT"
	Entity   Kind = "ENTITY"
	StartTag Kind = "START_TAG"
	EndTag   Kind = "END_TAG"
	Comment  Kind = "COMMENT"
	CData    Kind = "CDATA"
	ProcInst Kind = "PI"
	DocType  Kind = "DOCTYPE"
	Special  Kind = "SPECIAL"
)

// A Token is one lexical event. Payload fields are populated according
// to Kind:
//
//	Text      Text (entity-unescaped character data)
//	Entity    Name (named reference) or Code (numeric reference)
//	StartTag  Name, Attrs, SelfClosing
//	EndTag    Name
//	Comment   Text (without the <!-- --> delimiters)
//	CData     Text (the full literal, including <![CDATA[ and ]]>)
//	ProcInst  Name (target), Text (instruction)
//	DocType   Name, and HasExternal with Public/System identifiers
//	Special   Value (opaque non-character input item)
type Token struct {
	Kind Kind
	Span

	Name        string
	Text        string
	Attrs       []Attr
	SelfClosing bool
	Code        int
	Public      string
	System      string
	HasExternal bool
	Value       any
}

// An Attr is one attribute of a start tag. Value is already
// entity-unescaped.
type Attr struct {
	Span
	Name  string
	Value string
}
