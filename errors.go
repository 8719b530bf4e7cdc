package xmltree

import (
	"fmt"

	"github.com/josephzizys/go-xmltree/token"
)

// A ParseError describes malformed input. Loc is where the problem was
// detected.
type ParseError struct {
	Msg string
	Loc token.Location
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("xmltree: %s: %s", e.Loc, e.Msg)
}

// A RootError reports input that does not contain exactly one
// top-level element.
type RootError struct {
	Extra bool           // a second element began; otherwise none was found
	Loc   token.Location // where the second element began
}

func (e *RootError) Error() string {
	if e.Extra {
		return fmt.Sprintf("xmltree: %s: document must contain exactly one element", e.Loc)
	}
	return "xmltree: document must contain exactly one element"
}

// An UnexpectedTextError reports non-whitespace character data under
// an element that whitespace elimination expected to contain only
// elements.
type UnexpectedTextError struct {
	Tag  Symbol
	Text string
	Span token.Span
}

func (e *UnexpectedTextError) Error() string {
	return fmt.Sprintf("xmltree: %s: unexpected text %q inside <%s>", e.Span.Start, e.Text, e.Tag)
}
