package xmltree

import "io"

// Parse reads one complete XML document from r.
func Parse(r io.Reader, opts ...DecodeOption) (*Document, error) {
	return NewDecoder(r, opts...).Document()
}

// ParseElement reads a single element from r, skipping leading
// whitespace and leaving the rest of the input unread.
func ParseElement(r io.Reader, opts ...DecodeOption) (*Element, error) {
	return NewDecoder(r, opts...).Element()
}

// Write writes the XML encoding of v to w. v is a *Document or any
// Content node; writing a document emits only its root element.
func Write(w io.Writer, v any, opts ...Option) error {
	return NewEncoder(w, opts...).Encode(v)
}
