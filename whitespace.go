package xmltree

// A TagPredicate selects element names for whitespace elimination.
type TagPredicate func(Symbol) bool

// OnlyTags returns a predicate satisfied by exactly the listed tags.
func OnlyTags(tags ...Symbol) TagPredicate {
	set := tagSet(tags)
	return func(name Symbol) bool { return set[name] }
}

// ExceptTags returns a predicate satisfied by every tag except the
// listed ones.
func ExceptTags(tags ...Symbol) TagPredicate {
	set := tagSet(tags)
	return func(name Symbol) bool { return !set[name] }
}

// AllTags returns a predicate satisfied by every tag.
func AllTags() TagPredicate {
	return func(Symbol) bool { return true }
}

func tagSet(tags []Symbol) map[Symbol]bool {
	set := make(map[Symbol]bool, len(tags))
	for _, t := range tags {
		set[t] = true
	}
	return set
}

// StripWhitespace returns a copy of el with whitespace-only character
// data removed under every element whose tag satisfies pred. Recursion
// visits all elements whether or not they match. Non-whitespace
// character data directly under a matching element makes the tree
// invalid and is returned as an *UnexpectedTextError.
func StripWhitespace(el *Element, pred TagPredicate) (*Element, error) {
	strip := pred(el.Name)
	out := &Element{Span: el.Span, Name: el.Name, Attrs: el.Attrs}
	if el.Content != nil {
		out.Content = make([]Content, 0, len(el.Content))
	}
	for _, c := range el.Content {
		switch c := c.(type) {
		case *Element:
			child, err := StripWhitespace(c, pred)
			if err != nil {
				return nil, err
			}
			out.Content = append(out.Content, child)
		case *PCData:
			if strip {
				if !blank(c.Value) {
					return nil, &UnexpectedTextError{Tag: el.Name, Text: c.Value, Span: c.Span}
				}
				continue
			}
			out.Content = append(out.Content, c)
		default:
			out.Content = append(out.Content, c)
		}
	}
	return out, nil
}

// blank reports whether s is entirely XML whitespace.
func blank(s string) bool {
	for _, r := range s {
		if r != ' ' && r != '\t' && r != '\r' && r != '\n' {
			return false
		}
	}
	return true
}
