package xmltree

import (
	"errors"

	"github.com/josephzizys/go-xmltree/token"
)

// A Symbol is an XML name: a tag, attribute, or entity name.
type Symbol string

// Content is one node of a document tree. It is implemented by
// *Element, *PCData, *CData, *Comment, *ProcInst, *Entity, and
// *Special.
type Content interface {
	content()
}

// Misc is content that may also appear outside the root element:
// comments and processing instructions.
type Misc interface {
	Content
	misc()
}

// An Element is a tag with attributes and child content. Its span
// covers the start tag through the closing tag.
type Element struct {
	token.Span
	Name    Symbol
	Attrs   []Attr
	Content []Content
}

// An Attr is one name="value" attribute. Value is stored unescaped.
type Attr struct {
	token.Span
	Name  Symbol
	Value string
}

// PCData is a run of character data, stored unescaped.
type PCData struct {
	token.Span
	Value string
}

// CData is a character-data section kept in literal form. Raw holds
// the full <![CDATA[...]]> text including the delimiters and is
// written back verbatim.
type CData struct {
	token.Span
	Raw string
}

// A Comment is <!--Text-->. Comments carry no source location.
type Comment struct {
	Text string
}

// A ProcInst is a processing instruction <?Target Instruction?>.
type ProcInst struct {
	token.Span
	Target      string
	Instruction string
}

// An Entity is a reference the reader left symbolic. Ref is a Symbol
// for a named reference or a non-negative int for a numeric reference
// that does not denote a valid character.
type Entity struct {
	token.Span
	Ref any
}

// A Special is an opaque non-character input item passed through the
// reader. It may appear wherever character data may.
type Special struct {
	token.Span
	Value any
}

func (*Element) content()  {}
func (*PCData) content()   {}
func (*CData) content()    {}
func (*Comment) content()  {}
func (*ProcInst) content() {}
func (*Entity) content()   {}
func (*Special) content()  {}

func (*Comment) misc()  {}
func (*ProcInst) misc() {}

// A Document is a complete parse result: the prolog before the root
// element, the root element itself, and any comments or processing
// instructions after it.
type Document struct {
	Prolog Prolog
	Root   *Element
	Misc   []Misc
}

// NewDocument returns a document built from the given parts. A
// document must have a root element.
func NewDocument(prolog Prolog, root *Element, misc []Misc) (*Document, error) {
	if root == nil {
		return nil, errors.New("xmltree: document requires a root element")
	}
	return &Document{Prolog: prolog, Root: root, Misc: misc}, nil
}

// A Prolog is everything before the root element: Misc holds comments
// and processing instructions before the DOCTYPE declaration, Misc2
// those after it.
type Prolog struct {
	Misc    []Misc
	DocType *DocType
	Misc2   []Misc
}

// A DocType is a <!DOCTYPE name ...> declaration. External is nil
// when the declaration names no external DTD. An internal subset is
// consumed during parsing but not retained.
type DocType struct {
	Name     Symbol
	External ExternalID
}

// An ExternalID identifies an external DTD: a SystemID or a PublicID.
type ExternalID interface {
	externalID()
}

// A SystemID is SYSTEM "system".
type SystemID struct {
	System string
}

// A PublicID is PUBLIC "public" "system".
type PublicID struct {
	Public string
	System string
}

func (SystemID) externalID() {}
func (PublicID) externalID() {}
