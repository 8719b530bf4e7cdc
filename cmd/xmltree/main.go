// Command xmltree reads, checks, and rewrites XML documents.
package main

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sort"
	"strconv"

	"github.com/alecthomas/kong"

	"github.com/josephzizys/go-xmltree"
	"github.com/josephzizys/go-xmltree/plist"
)

// CLI defines the command-line interface for xmltree.
var CLI struct {
	Verbose bool `short:"v" help:"Enable debug logging"`

	Fmt   FmtCmd     `cmd:"" help:"Reformat an XML document"`
	Check CheckCmd   `cmd:"" help:"Parse XML documents and report errors"`
	Strip StripCmd   `cmd:"" help:"Remove ignorable whitespace between elements"`
	Plist PlistGroup `cmd:"" help:"Property list conversions"`
}

// PlistGroup contains property list conversion commands.
type PlistGroup struct {
	Decode PlistDecodeCmd `cmd:"" help:"Convert an XML property list to JSON"`
	Encode PlistEncodeCmd `cmd:"" help:"Convert JSON to an XML property list"`
}

// FmtCmd reformats an XML document.
type FmtCmd struct {
	Path     string `arg:"" optional:"" help:"Input file (default: stdin)"`
	Out      string `short:"o" help:"Output file (default: stdout)" type:"path"`
	Indent   int    `help:"Indent width for nested elements" default:"2"`
	Compact  bool   `help:"Emit the document on a single line"`
	Collapse bool   `help:"Collapse whitespace runs in character data"`
	Comments bool   `help:"Keep comments"`
}

func (c *FmtCmd) Run() error {
	in, err := openInput(c.Path)
	if err != nil {
		return err
	}
	defer in.Close()

	var dopts []xmltree.DecodeOption
	if c.Comments {
		dopts = append(dopts, xmltree.ReadComments())
	}
	doc, err := xmltree.Parse(in, dopts...)
	if err != nil {
		return err
	}
	slog.Debug("parsed document", "path", c.Path, "root", doc.Root.Name)

	var opts []xmltree.Option
	if !c.Compact {
		opts = append(opts, xmltree.Indent(c.Indent))
	}
	if c.Collapse {
		opts = append(opts, xmltree.CollapseWhitespace())
	}

	out, err := openOutput(c.Out)
	if err != nil {
		return err
	}
	defer out.Close()

	if err := xmltree.Write(out, doc, opts...); err != nil {
		return err
	}
	_, err = io.WriteString(out, "\n")
	return err
}

// CheckCmd parses XML documents and reports errors.
type CheckCmd struct {
	Paths []string `arg:"" help:"XML files to check" type:"existingfile"`
}

func (c *CheckCmd) Run() error {
	failed := 0
	for _, path := range c.Paths {
		f, err := os.Open(path)
		if err != nil {
			return err
		}
		doc, err := xmltree.Parse(f)
		f.Close()
		if err != nil {
			fmt.Printf("%s: %v\n", path, err)
			failed++
			continue
		}
		slog.Debug("checked document", "path", path, "root", doc.Root.Name)
		fmt.Printf("%s: ok\n", path)
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d file(s) failed", failed, len(c.Paths))
	}
	return nil
}

// StripCmd removes ignorable whitespace between elements.
type StripCmd struct {
	Path   string   `arg:"" optional:"" help:"Input file (default: stdin)"`
	Out    string   `short:"o" help:"Output file (default: stdout)" type:"path"`
	Tags   []string `help:"Strip whitespace only under these tags (default: all)"`
	Indent int      `help:"Indent width for nested elements" default:"2"`
}

func (c *StripCmd) Run() error {
	in, err := openInput(c.Path)
	if err != nil {
		return err
	}
	defer in.Close()

	doc, err := xmltree.Parse(in)
	if err != nil {
		return err
	}

	pred := xmltree.AllTags()
	if len(c.Tags) > 0 {
		tags := make([]xmltree.Symbol, len(c.Tags))
		for i, t := range c.Tags {
			tags[i] = xmltree.Symbol(t)
		}
		pred = xmltree.OnlyTags(tags...)
	}

	root, err := xmltree.StripWhitespace(doc.Root, pred)
	if err != nil {
		return err
	}
	slog.Debug("stripped whitespace", "path", c.Path, "root", root.Name)

	out, err := openOutput(c.Out)
	if err != nil {
		return err
	}
	defer out.Close()

	if err := xmltree.Write(out, root, xmltree.Indent(c.Indent)); err != nil {
		return err
	}
	_, err = io.WriteString(out, "\n")
	return err
}

// PlistDecodeCmd converts an XML property list to JSON.
type PlistDecodeCmd struct {
	Path string `arg:"" optional:"" help:"Input property list (default: stdin)"`
	Out  string `short:"o" help:"Output file (default: stdout)" type:"path"`
}

func (c *PlistDecodeCmd) Run() error {
	in, err := openInput(c.Path)
	if err != nil {
		return err
	}
	defer in.Close()

	v, err := plist.Read(in)
	if err != nil {
		return err
	}

	data, err := json.MarshalIndent(plistJSON(v), "", "  ")
	if err != nil {
		return err
	}

	out, err := openOutput(c.Out)
	if err != nil {
		return err
	}
	defer out.Close()

	if _, err := out.Write(data); err != nil {
		return err
	}
	_, err = io.WriteString(out, "\n")
	return err
}

// PlistEncodeCmd converts JSON to an XML property list. Object keys are
// sorted, so dictionary order is not preserved.
type PlistEncodeCmd struct {
	Path   string `arg:"" optional:"" help:"Input JSON file (default: stdin)"`
	Out    string `short:"o" help:"Output file (default: stdout)" type:"path"`
	Indent int    `help:"Indent width for nested elements" default:"2"`
}

func (c *PlistEncodeCmd) Run() error {
	in, err := openInput(c.Path)
	if err != nil {
		return err
	}
	defer in.Close()

	dec := json.NewDecoder(in)
	dec.UseNumber()
	var raw any
	if err := dec.Decode(&raw); err != nil {
		return fmt.Errorf("invalid JSON: %w", err)
	}

	v, err := jsonPlist(raw)
	if err != nil {
		return err
	}

	out, err := openOutput(c.Out)
	if err != nil {
		return err
	}
	defer out.Close()

	if err := plist.Write(out, v, xmltree.Indent(c.Indent)); err != nil {
		return err
	}
	_, err = io.WriteString(out, "\n")
	return err
}

// plistJSON converts a property list value to the corresponding JSON
// value. Dictionaries become maps, so duplicate keys collapse.
func plistJSON(v plist.Value) any {
	switch v := v.(type) {
	case plist.String:
		return string(v)
	case plist.Bool:
		return bool(v)
	case plist.Integer:
		return int64(v)
	case plist.Real:
		return float64(v)
	case plist.Array:
		out := make([]any, len(v))
		for i, e := range v {
			out[i] = plistJSON(e)
		}
		return out
	case plist.Dict:
		out := make(map[string]any, len(v))
		for _, e := range v {
			out[e.Key] = plistJSON(e.Value)
		}
		return out
	}
	return nil
}

// jsonPlist converts a decoded JSON value to a property list value.
// Numbers without a fractional part become integers.
func jsonPlist(v any) (plist.Value, error) {
	switch v := v.(type) {
	case string:
		return plist.String(v), nil
	case bool:
		return plist.Bool(v), nil
	case json.Number:
		if n, err := strconv.ParseInt(string(v), 10, 64); err == nil {
			return plist.Integer(n), nil
		}
		f, err := v.Float64()
		if err != nil {
			return nil, fmt.Errorf("invalid number %q", v)
		}
		return plist.Real(f), nil
	case []any:
		arr := make(plist.Array, 0, len(v))
		for _, e := range v {
			pv, err := jsonPlist(e)
			if err != nil {
				return nil, err
			}
			arr = append(arr, pv)
		}
		return arr, nil
	case map[string]any:
		keys := make([]string, 0, len(v))
		for k := range v {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		d := make(plist.Dict, 0, len(v))
		for _, k := range keys {
			pv, err := jsonPlist(v[k])
			if err != nil {
				return nil, fmt.Errorf("key %q: %w", k, err)
			}
			d = append(d, plist.Entry{Key: k, Value: pv})
		}
		return d, nil
	case nil:
		return nil, fmt.Errorf("JSON null has no property list equivalent")
	}
	return nil, fmt.Errorf("cannot convert %T to a property list value", v)
}

func openInput(path string) (io.ReadCloser, error) {
	if path == "" || path == "-" {
		return io.NopCloser(os.Stdin), nil
	}
	return os.Open(path)
}

func openOutput(path string) (io.WriteCloser, error) {
	if path == "" || path == "-" {
		return nopWriteCloser{os.Stdout}, nil
	}
	return os.Create(path)
}

type nopWriteCloser struct{ io.Writer }

func (nopWriteCloser) Close() error { return nil }

func main() {
	ctx := kong.Parse(&CLI,
		kong.Name("xmltree"),
		kong.Description("Read, check, and rewrite XML documents."),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact: true,
		}),
	)

	level := slog.LevelWarn
	if CLI.Verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})))

	err := ctx.Run()
	ctx.FatalIfErrorf(err)
}
