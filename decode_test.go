package xmltree_test

import (
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	xmltree "github.com/josephzizys/go-xmltree"
	"github.com/josephzizys/go-xmltree/token"
)

// clearContent zeroes the spans of a subtree so parsed trees can be
// compared against hand-built ones.
func clearContent(c xmltree.Content) {
	switch c := c.(type) {
	case *xmltree.Element:
		c.Span = token.Span{}
		for i := range c.Attrs {
			c.Attrs[i].Span = token.Span{}
		}
		for _, child := range c.Content {
			clearContent(child)
		}
	case *xmltree.PCData:
		c.Span = token.Span{}
	case *xmltree.CData:
		c.Span = token.Span{}
	case *xmltree.ProcInst:
		c.Span = token.Span{}
	case *xmltree.Entity:
		c.Span = token.Span{}
	case *xmltree.Special:
		c.Span = token.Span{}
	}
}

func clearMisc(misc []xmltree.Misc) {
	for _, m := range misc {
		clearContent(m)
	}
}

func clearDocument(d *xmltree.Document) {
	clearMisc(d.Prolog.Misc)
	clearMisc(d.Prolog.Misc2)
	clearMisc(d.Misc)
	clearContent(d.Root)
}

func parseDoc(t *testing.T, src string, opts ...xmltree.DecodeOption) *xmltree.Document {
	t.Helper()
	doc, err := xmltree.Parse(strings.NewReader(src), opts...)
	require.NoError(t, err)
	return doc
}

func TestParse(t *testing.T) {
	t.Run("Simple Document", func(t *testing.T) {
		doc := parseDoc(t, `<greeting>hi</greeting>`)
		clearDocument(doc)
		require.Equal(t, &xmltree.Document{
			Root: &xmltree.Element{
				Name:    "greeting",
				Content: []xmltree.Content{&xmltree.PCData{Value: "hi"}},
			},
		}, doc)
	})

	t.Run("Attributes", func(t *testing.T) {
		doc := parseDoc(t, `<a href="x&amp;y" id='z'/>`)
		clearDocument(doc)
		require.Equal(t, []xmltree.Attr{
			{Name: "href", Value: "x&y"},
			{Name: "id", Value: "z"},
		}, doc.Root.Attrs)
	})

	t.Run("Nested Elements", func(t *testing.T) {
		doc := parseDoc(t, `<a><b><c/></b><d/></a>`)
		clearDocument(doc)
		require.Equal(t, &xmltree.Element{
			Name: "a",
			Content: []xmltree.Content{
				&xmltree.Element{Name: "b", Content: []xmltree.Content{
					&xmltree.Element{Name: "c"},
				}},
				&xmltree.Element{Name: "d"},
			},
		}, doc.Root)
	})

	t.Run("Mixed Content", func(t *testing.T) {
		doc := parseDoc(t, `<p>one<b>two</b>three</p>`)
		clearDocument(doc)
		require.Equal(t, []xmltree.Content{
			&xmltree.PCData{Value: "one"},
			&xmltree.Element{Name: "b", Content: []xmltree.Content{&xmltree.PCData{Value: "two"}}},
			&xmltree.PCData{Value: "three"},
		}, doc.Root.Content)
	})

	t.Run("Resolvable References Become Text", func(t *testing.T) {
		doc := parseDoc(t, `<p>x&amp;&#65;&#x42;y</p>`)
		clearDocument(doc)
		require.Equal(t, []xmltree.Content{
			&xmltree.PCData{Value: "x&ABy"},
		}, doc.Root.Content)
	})

	t.Run("Unresolvable References Stay Symbolic", func(t *testing.T) {
		doc := parseDoc(t, `<p>&copy;&#xD800;</p>`)
		clearDocument(doc)
		require.Equal(t, []xmltree.Content{
			&xmltree.Entity{Ref: xmltree.Symbol("copy")},
			&xmltree.Entity{Ref: 0xD800},
		}, doc.Root.Content)
	})

	t.Run("Entity Splits Text Run", func(t *testing.T) {
		doc := parseDoc(t, `<p>a&nbsp;b</p>`)
		clearDocument(doc)
		require.Equal(t, []xmltree.Content{
			&xmltree.PCData{Value: "a"},
			&xmltree.Entity{Ref: xmltree.Symbol("nbsp")},
			&xmltree.PCData{Value: "b"},
		}, doc.Root.Content)
	})

	t.Run("CDATA Keeps Literal Form", func(t *testing.T) {
		doc := parseDoc(t, `<p><![CDATA[a<b&c]]></p>`)
		clearDocument(doc)
		require.Equal(t, []xmltree.Content{
			&xmltree.CData{Raw: "<![CDATA[a<b&c]]>"},
		}, doc.Root.Content)
	})

	t.Run("Empty And Self-Closing Are The Same Tree", func(t *testing.T) {
		a := parseDoc(t, `<a></a>`)
		b := parseDoc(t, `<a/>`)
		clearDocument(a)
		clearDocument(b)
		require.Equal(t, a, b)
	})

	t.Run("Attribute References", func(t *testing.T) {
		doc := parseDoc(t, `<a v="x&amp;y&copy;z&#0;"/>`)
		clearDocument(doc)
		require.Equal(t, "x&y&copy;z&#0;", doc.Root.Attrs[0].Value)
	})
}

func TestParseProlog(t *testing.T) {
	const src = `<!--pre--><?xml version="1.0"?><!DOCTYPE r><!--mid--><r/><!--post--><?done?>`

	t.Run("Comments Discarded By Default", func(t *testing.T) {
		doc := parseDoc(t, src)
		clearDocument(doc)
		require.Equal(t, xmltree.Prolog{
			Misc:    []xmltree.Misc{&xmltree.ProcInst{Target: "xml", Instruction: `version="1.0"`}},
			DocType: &xmltree.DocType{Name: "r"},
		}, doc.Prolog)
		require.Equal(t, []xmltree.Misc{&xmltree.ProcInst{Target: "done"}}, doc.Misc)
	})

	t.Run("ReadComments Keeps Them", func(t *testing.T) {
		doc := parseDoc(t, src, xmltree.ReadComments())
		clearDocument(doc)
		require.Equal(t, xmltree.Prolog{
			Misc: []xmltree.Misc{
				&xmltree.Comment{Text: "pre"},
				&xmltree.ProcInst{Target: "xml", Instruction: `version="1.0"`},
			},
			DocType: &xmltree.DocType{Name: "r"},
			Misc2:   []xmltree.Misc{&xmltree.Comment{Text: "mid"}},
		}, doc.Prolog)
		require.Equal(t, []xmltree.Misc{
			&xmltree.Comment{Text: "post"},
			&xmltree.ProcInst{Target: "done"},
		}, doc.Misc)
	})

	t.Run("DocType System", func(t *testing.T) {
		doc := parseDoc(t, `<!DOCTYPE html SYSTEM "about:legacy-compat"><html/>`)
		require.Equal(t, &xmltree.DocType{
			Name:     "html",
			External: xmltree.SystemID{System: "about:legacy-compat"},
		}, doc.Prolog.DocType)
	})

	t.Run("DocType Public", func(t *testing.T) {
		doc := parseDoc(t, `<!DOCTYPE html PUBLIC "-//W3C//DTD XHTML 1.0//EN" "xhtml1.dtd"><html/>`)
		require.Equal(t, &xmltree.DocType{
			Name:     "html",
			External: xmltree.PublicID{Public: "-//W3C//DTD XHTML 1.0//EN", System: "xhtml1.dtd"},
		}, doc.Prolog.DocType)
	})

	t.Run("Internal Subset Is Discarded", func(t *testing.T) {
		doc := parseDoc(t, `<!DOCTYPE r [<!ENTITY x "y>"> ]><r/>`)
		require.Equal(t, &xmltree.DocType{Name: "r"}, doc.Prolog.DocType)
	})
}

func TestParseComments(t *testing.T) {
	t.Run("Discarded Inside Elements By Default", func(t *testing.T) {
		doc := parseDoc(t, `<p>a<!--c-->b</p>`)
		clearDocument(doc)
		require.Equal(t, []xmltree.Content{
			&xmltree.PCData{Value: "a"},
			&xmltree.PCData{Value: "b"},
		}, doc.Root.Content)
	})

	t.Run("Kept With ReadComments", func(t *testing.T) {
		doc := parseDoc(t, `<p>a<!--c-->b</p>`, xmltree.ReadComments())
		clearDocument(doc)
		require.Equal(t, []xmltree.Content{
			&xmltree.PCData{Value: "a"},
			&xmltree.Comment{Text: "c"},
			&xmltree.PCData{Value: "b"},
		}, doc.Root.Content)
	})
}

func TestParseErrors(t *testing.T) {
	testCases := []struct {
		name        string
		input       string
		expectedErr string
	}{
		{
			name:        "Empty Input",
			input:       ``,
			expectedErr: "xmltree: document must contain exactly one element",
		},
		{
			name:        "Misc Only",
			input:       " <!--c--> \n ",
			expectedErr: "xmltree: document must contain exactly one element",
		},
		{
			name:        "Two Roots",
			input:       `<a/><b/>`,
			expectedErr: "xmltree: 1.4/4: document must contain exactly one element",
		},
		{
			name:        "Text Before Root",
			input:       `hi<a/>`,
			expectedErr: "xmltree: 1.0/0: text outside the root element",
		},
		{
			name:        "Text After Root",
			input:       `<a/>tail`,
			expectedErr: "xmltree: 1.4/4: text outside the root element",
		},
		{
			name:        "Entity Outside Root",
			input:       `&copy;<a/>`,
			expectedErr: "xmltree: 1.0/0: an entity reference outside the root element",
		},
		{
			name:        "CDATA Outside Root",
			input:       `<![CDATA[x]]><a/>`,
			expectedErr: "xmltree: 1.0/0: a CDATA section outside the root element",
		},
		{
			name:        "Mismatched Closing Tag",
			input:       `<a><b></a>`,
			expectedErr: "xmltree: 1.6/6: closing tag </a> does not match <b>",
		},
		{
			name:        "Missing Closing Tag",
			input:       `<a><b></b>`,
			expectedErr: "xmltree: 1.0/0: element <a> is missing its closing tag",
		},
		{
			name:        "Stray Closing Tag",
			input:       `</a>`,
			expectedErr: "xmltree: 1.0/0: expected an element, found closing tag </a>",
		},
		{
			name:        "DOCTYPE After Root",
			input:       `<a/><!DOCTYPE a>`,
			expectedErr: "xmltree: 1.4/4: DOCTYPE declaration after the root element",
		},
		{
			name:        "Multiple DOCTYPEs",
			input:       `<!DOCTYPE a><!DOCTYPE b><a/>`,
			expectedErr: "xmltree: 1.12/12: multiple DOCTYPE declarations",
		},
		{
			name:        "DOCTYPE Inside Element",
			input:       `<a><!DOCTYPE x></a>`,
			expectedErr: "xmltree: 1.3/3: DOCTYPE declaration inside an element",
		},
		{
			name:        "Lexical Error",
			input:       `<a`,
			expectedErr: "xmltree: 1.0/0: unterminated start tag <a",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := xmltree.Parse(strings.NewReader(tc.input))
			require.Error(t, err)
			require.EqualError(t, err, tc.expectedErr)
		})
	}
}

func TestParseErrorTypes(t *testing.T) {
	t.Run("RootError None", func(t *testing.T) {
		_, err := xmltree.Parse(strings.NewReader(""))
		var rerr *xmltree.RootError
		require.ErrorAs(t, err, &rerr)
		require.False(t, rerr.Extra)
	})

	t.Run("RootError Extra Carries Location", func(t *testing.T) {
		_, err := xmltree.Parse(strings.NewReader("<a/>\n<b/>"))
		var rerr *xmltree.RootError
		require.ErrorAs(t, err, &rerr)
		require.True(t, rerr.Extra)
		require.Equal(t, token.Location{Line: 2, Column: 0, Offset: 5}, rerr.Loc)
	})

	t.Run("ParseError Carries Location", func(t *testing.T) {
		_, err := xmltree.Parse(strings.NewReader("<a>\n<b></a>"))
		var perr *xmltree.ParseError
		require.ErrorAs(t, err, &perr)
		require.Equal(t, token.Location{Line: 2, Column: 3, Offset: 7}, perr.Loc)
		require.Equal(t, "closing tag </a> does not match <b>", perr.Msg)
	})
}

func TestParseSpans(t *testing.T) {
	doc := parseDoc(t, "<a><b/></a>")

	start, stop, ok := doc.Root.Span.Real()
	require.True(t, ok)
	require.Equal(t, token.Location{Line: 1, Column: 0, Offset: 0}, start)
	require.Equal(t, token.Location{Line: 1, Column: 11, Offset: 11}, stop)

	b := doc.Root.Content[0].(*xmltree.Element)
	start, stop, ok = b.Span.Real()
	require.True(t, ok)
	require.Equal(t, token.Location{Line: 1, Column: 3, Offset: 3}, start)
	require.Equal(t, token.Location{Line: 1, Column: 7, Offset: 7}, stop)
}

func TestCountBytesOption(t *testing.T) {
	// é is two bytes but one column.
	const src = `<é/>`

	doc := parseDoc(t, src)
	_, stop, _ := doc.Root.Span.Real()
	require.Equal(t, "1.4/4", stop.String())

	doc = parseDoc(t, src, xmltree.CountBytes())
	_, stop, _ = doc.Root.Span.Real()
	require.Equal(t, "1.4/5", stop.String())
}

func TestDecoderElement(t *testing.T) {
	t.Run("Successive Siblings", func(t *testing.T) {
		d := xmltree.NewDecoder(strings.NewReader(`<a/> <b>x</b> <c/>`))
		for _, want := range []xmltree.Symbol{"a", "b", "c"} {
			el, err := d.Element()
			require.NoError(t, err)
			require.Equal(t, want, el.Name)
		}
		_, err := d.Element()
		require.EqualError(t, err, "xmltree: 1.18/18: expected an element, found end of input")
	})

	t.Run("Skips Leading Whitespace", func(t *testing.T) {
		el, err := xmltree.ParseElement(strings.NewReader("  \n\t<a/>rest"))
		require.NoError(t, err)
		require.Equal(t, xmltree.Symbol("a"), el.Name)
	})

	t.Run("Non-Blank Text Is An Error", func(t *testing.T) {
		_, err := xmltree.ParseElement(strings.NewReader("xyz<a/>"))
		require.EqualError(t, err, "xmltree: 1.0/0: expected an element, found text")
	})

	t.Run("Comment With ReadComments Is An Error", func(t *testing.T) {
		_, err := xmltree.ParseElement(strings.NewReader("<!--c--><a/>"), xmltree.ReadComments())
		require.EqualError(t, err, "xmltree: 1.0/0: expected an element, found a comment")
	})

	t.Run("Buffered Returns The Remainder", func(t *testing.T) {
		d := xmltree.NewDecoder(strings.NewReader(`<a/><b/>rest`))
		_, err := d.Element()
		require.NoError(t, err)
		rest, err := io.ReadAll(d.Buffered())
		require.NoError(t, err)
		require.Equal(t, "<b/>rest", string(rest))
	})
}

func TestItemDecoder(t *testing.T) {
	type anchor struct{ n int }

	t.Run("Specials In Content", func(t *testing.T) {
		d := xmltree.NewItemDecoder([]any{"<p>one", anchor{7}, []byte("two</p>")})
		doc, err := d.Document()
		require.NoError(t, err)
		clearDocument(doc)
		require.Equal(t, []xmltree.Content{
			&xmltree.PCData{Value: "one"},
			&xmltree.Special{Value: anchor{7}},
			&xmltree.PCData{Value: "two"},
		}, doc.Root.Content)
	})

	t.Run("Special Outside Root", func(t *testing.T) {
		d := xmltree.NewItemDecoder([]any{3.14, "<a/>"})
		_, err := d.Document()
		require.EqualError(t, err, "xmltree: 1.0/0: a non-character value outside the root element")
	})

	t.Run("Buffered Is Nil", func(t *testing.T) {
		d := xmltree.NewItemDecoder([]any{"<a/>"})
		_, err := d.Document()
		require.NoError(t, err)
		require.Nil(t, d.Buffered())
	})
}

func TestNewDocument(t *testing.T) {
	_, err := xmltree.NewDocument(xmltree.Prolog{}, nil, nil)
	require.EqualError(t, err, "xmltree: document requires a root element")

	doc, err := xmltree.NewDocument(xmltree.Prolog{}, &xmltree.Element{Name: "a"}, nil)
	require.NoError(t, err)
	require.Equal(t, xmltree.Symbol("a"), doc.Root.Name)
}
