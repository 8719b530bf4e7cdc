package xexpr

import (
	"fmt"

	xmltree "github.com/josephzizys/go-xmltree"
)

// A ValueError reports a value that does not fit the tagged-tree
// grammar. Value is the smallest offending subvalue.
type ValueError struct {
	Value  any
	Reason string
}

func (e *ValueError) Error() string {
	return fmt.Sprintf("xexpr: %s, got %v (type %T)", e.Reason, e.Value, e.Value)
}

// Validate checks v against the tagged-tree grammar: string, Symbol,
// non-negative int, passed-through wrapper node, or *Node whose tag
// and attribute names are non-empty and whose children are all valid.
// It returns nil or the first violation in depth-first order.
func Validate(v Value) error {
	var first *ValueError
	walk(v, func(e *ValueError) bool {
		first = e
		return false
	})
	if first != nil {
		return first
	}
	return nil
}

// Violations collects every grammar violation in v in depth-first
// order. Two invalid leaves yield exactly two entries.
func Violations(v Value) []*ValueError {
	var all []*ValueError
	walk(v, func(e *ValueError) bool {
		all = append(all, e)
		return true
	})
	return all
}

// walk visits v depth-first, passing each violation to report; report
// returns false to stop the walk. walk reports whether it ran to
// completion.
func walk(v Value, report func(*ValueError) bool) bool {
	switch v := v.(type) {
	case string, Symbol:
		return true
	case int:
		if v < 0 {
			return report(&ValueError{Value: v, Reason: "numeric entity reference must not be negative"})
		}
		return true
	case *xmltree.PCData, *xmltree.CData, *xmltree.Comment, *xmltree.ProcInst:
		return true
	case *Node:
		if v == nil {
			return report(&ValueError{Value: v, Reason: "node must not be nil"})
		}
		if v.Tag == "" {
			if !report(&ValueError{Value: v, Reason: "node tag must not be empty"}) {
				return false
			}
		}
		for _, a := range v.Attrs {
			if a.Name == "" {
				if !report(&ValueError{Value: a, Reason: "attribute name must not be empty"}) {
					return false
				}
			}
		}
		for _, c := range v.Children {
			if !walk(c, report) {
				return false
			}
		}
		return true
	}
	return report(&ValueError{Value: v, Reason: "not a tagged-tree value"})
}
