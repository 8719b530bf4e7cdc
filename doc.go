/*
Package xmltree reads and writes XML as a concrete document tree with
precise source locations. Entity references are resolved where the
spelling does not matter and kept symbolic where it does, so a parsed
tree carries everything needed to reason about the document's content.

The package offers two primary workflows depending on the use case:

1. Whole-Document Processing

Parse reads a complete document: everything before the root element,
exactly one root element, and everything after it. Every parsed node
carries a Span locating it in the input, and every parse error carries
the location of the problem in line.column/offset form.

Example of parsing and inspecting a document:

	doc, err := xmltree.Parse(strings.NewReader(
		`<!DOCTYPE note SYSTEM "note.dtd"><note lang="en">hi &amp; bye</note>`))
	if err != nil {
		// handle error
	}
	// doc.Prolog.DocType names the DTD; doc.Root is the <note> element.

Write serializes a tree back to text. Writing a *Document emits only
the root element: the prolog, DOCTYPE declaration, and anything after
the root are dropped. Output is configured per call with functional
options:

	err = xmltree.Write(os.Stdout, doc,
		xmltree.Indent(2),
		xmltree.EmptyTagShorthand(xmltree.ShorthandTags("br")))

2. Element Streams

A Decoder reads successive elements from one input. Element stops at
the end of the element it read, so sibling fragments can be consumed
one at a time, and Buffered hands back whatever input remains:

	d := xmltree.NewDecoder(r)
	for {
		el, err := d.Element()
		if err != nil {
			break
		}
		process(el)
	}

The xexpr subpackage converts between this document tree and a minimal
tagged-tree form suited to programmatic construction, and the plist
subpackage builds an Apple property-list codec on top of it.
*/
package xmltree
