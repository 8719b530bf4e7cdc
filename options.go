package xmltree

import "fmt"

// An Option configures a single encode call.
type Option func(*options) error

// A DecodeOption configures a Decoder.
type DecodeOption func(*Decoder) error

// options is the effective configuration of one encode call.
type options struct {
	indent    int
	collapse  bool
	shorthand Shorthand
}

// Indent returns an Option that pretty-prints output with n-space
// indentation: an element whose content is elements only is written
// one child per line, while mixed content stays on one line so its
// character data is preserved exactly.
//
// The width n must not be negative.
func Indent(n int) Option {
	return func(o *options) error {
		if n < 0 {
			return fmt.Errorf("xmltree: indent width must not be negative")
		}
		o.indent = n
		return nil
	}
}

// CollapseWhitespace returns an Option that writes every run of
// whitespace in character data as a single space. CDATA sections are
// not affected.
func CollapseWhitespace() Option {
	return func(o *options) error {
		o.collapse = true
		return nil
	}
}

// EmptyTagShorthand returns an Option that sets the policy for writing
// childless elements in self-closing <tag/> form. The default policy
// is ShorthandAlways.
func EmptyTagShorthand(s Shorthand) Option {
	return func(o *options) error {
		if s == nil {
			return fmt.Errorf("xmltree: shorthand policy must not be nil")
		}
		o.shorthand = s
		return nil
	}
}

// A Shorthand chooses which childless elements are written as <tag/>
// instead of <tag></tag>.
type Shorthand interface {
	use(name Symbol) bool
}

var (
	// ShorthandAlways writes every childless element as <tag/>.
	ShorthandAlways Shorthand = shorthandChoice(true)

	// ShorthandNever writes every childless element as <tag></tag>.
	ShorthandNever Shorthand = shorthandChoice(false)
)

type shorthandChoice bool

func (c shorthandChoice) use(Symbol) bool { return bool(c) }

// ShorthandTags limits the <tag/> form to the listed tags.
func ShorthandTags(tags ...Symbol) Shorthand {
	set := make(shorthandSet, len(tags))
	for _, t := range tags {
		set[t] = true
	}
	return set
}

type shorthandSet map[Symbol]bool

func (s shorthandSet) use(name Symbol) bool { return s[name] }

// ReadComments returns a DecodeOption that keeps comments in the
// parsed tree. By default comments are discarded while reading.
func ReadComments() DecodeOption {
	return func(d *Decoder) error {
		d.readComments = true
		return nil
	}
}

// CountBytes returns a DecodeOption that makes location offsets count
// bytes instead of runes.
func CountBytes() DecodeOption {
	return func(d *Decoder) error {
		d.in.CountBytes()
		return nil
	}
}
