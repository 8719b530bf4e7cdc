package plist_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	xmltree "github.com/josephzizys/go-xmltree"
	"github.com/josephzizys/go-xmltree/plist"
)

const docTypeLine = `<!DOCTYPE plist SYSTEM "file://localhost/System/Library/DTDs/PropertyList.dtd">`

func TestWrite(t *testing.T) {
	v := plist.Dict{
		{Key: "name", Value: plist.String("demo")},
		{Key: "size", Value: plist.Integer(42)},
	}

	var buf bytes.Buffer
	require.NoError(t, plist.Write(&buf, v, xmltree.Indent(2)))

	want := docTypeLine + "\n" +
		`<plist version="0.9">
  <dict>
    <key>name</key>
    <string>demo</string>
    <key>size</key>
    <integer>42</integer>
  </dict>
</plist>`
	require.Equal(t, want, buf.String())
}

func TestRead(t *testing.T) {
	in := docTypeLine + "\n" +
		`<plist version="0.9">
  <dict>
    <key>name</key>
    <string>demo</string>
    <key>size</key>
    <integer>42</integer>
  </dict>
</plist>`

	v, err := plist.Read(strings.NewReader(in))
	require.NoError(t, err)

	want := plist.Dict{
		{Key: "name", Value: plist.String("demo")},
		{Key: "size", Value: plist.Integer(42)},
	}
	require.Equal(t, want, v)
}

func TestRoundTrip(t *testing.T) {
	orig := plist.Dict{
		{Key: "files", Value: plist.Array{plist.String("a.txt"), plist.String("b & c.txt")}},
		{Key: "count", Value: plist.Integer(3)},
		{Key: "ratio", Value: plist.Real(0.5)},
		{Key: "ok", Value: plist.Bool(true)},
		{Key: "meta", Value: plist.Dict{
			{Key: "empty", Value: plist.String("")},
			{Key: "none", Value: plist.Array{}},
			{Key: "off", Value: plist.Bool(false)},
		}},
	}

	var buf bytes.Buffer
	require.NoError(t, plist.Write(&buf, orig, xmltree.Indent(2)))
	require.True(t, strings.HasPrefix(buf.String(), docTypeLine+"\n"))
	require.Contains(t, buf.String(), `<plist version="0.9">`)

	back, err := plist.Read(&buf)
	require.NoError(t, err)
	require.Equal(t, orig, back)
}

func TestRoundTripCompact(t *testing.T) {
	orig := plist.Array{plist.Integer(-7), plist.Real(2.5e10), plist.String("x")}

	var buf bytes.Buffer
	require.NoError(t, plist.Write(&buf, orig))

	back, err := plist.Read(&buf)
	require.NoError(t, err)
	require.Equal(t, orig, back)
}

func TestReadErrors(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			"unknown element",
			`<plist version="0.9"><bogus/></plist>`,
			"unknown element <bogus>",
		},
		{
			"bad integer",
			`<plist version="0.9"><integer>abc</integer></plist>`,
			`invalid integer "abc"`,
		},
		{
			"bad real",
			`<plist version="0.9"><real>x.y</real></plist>`,
			`invalid real "x.y"`,
		},
		{
			"wrong root",
			`<root/>`,
			"root element is <root>, want <plist>",
		},
		{
			"two wrapped values",
			`<plist version="0.9"><integer>1</integer><integer>2</integer></plist>`,
			"must wrap exactly one value, found 2",
		},
		{
			"dict with dangling key",
			`<plist version="0.9"><dict><key>a</key></dict></plist>`,
			"must hold key/value pairs",
		},
		{
			"dict without key",
			`<plist version="0.9"><dict><string>a</string><string>b</string></dict></plist>`,
			"must begin with <key>",
		},
		{
			"text between structure",
			`<plist version="0.9"><array>boo</array></plist>`,
			"unexpected text",
		},
		{
			"boolean with content",
			`<plist version="0.9"><true>x</true></plist>`,
			"<true> must be empty",
		},
		{
			"malformed document",
			`<plist version="0.9">`,
			"missing its closing tag",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := plist.Read(strings.NewReader(tt.in))
			require.Error(t, err)
			require.Contains(t, err.Error(), tt.want)
			require.True(t, strings.HasPrefix(err.Error(), "plist: "))
		})
	}
}

func TestWriteNil(t *testing.T) {
	var buf bytes.Buffer
	err := plist.Write(&buf, nil)
	require.Error(t, err)

	err = plist.Write(&buf, plist.Array{nil})
	require.Error(t, err)
	require.Contains(t, err.Error(), "plist: ")
}
