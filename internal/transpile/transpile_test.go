package transpile

import (
	"testing"

	"github.com/evanw/esbuild/pkg/api"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTranspiler(t *testing.T) *ESBuild {
	t.Helper()
	b, err := New(DefaultOptions())
	require.NoError(t, err)
	return b
}

func TestTranspileJavaScriptKeepsRequire(t *testing.T) {
	out, err := newTranspiler(t).Transpile(`var a = require("a");`+"\nvar b = require('./b');\n", "main.js")
	require.NoError(t, err)
	assert.Empty(t, out.Diagnostics)
	assert.Contains(t, out.Text, `require("a")`)
	assert.Contains(t, out.Text, `require("./b")`)
}

func TestTranspileTypeScriptToCommonJS(t *testing.T) {
	src := "import { b } from \"./b\";\nexport const c: number = b;\n"

	out, err := newTranspiler(t).Transpile(src, "m.ts")
	require.NoError(t, err)
	assert.Empty(t, out.Diagnostics)
	assert.Contains(t, out.Text, `require("./b")`)
	assert.NotContains(t, out.Text, "import {")
	assert.NotContains(t, out.Text, ": number")
}

func TestTranspileTypeErrorsDoNotBlockEmit(t *testing.T) {
	out, err := newTranspiler(t).Transpile("const x: number = \"not a number\";\nfunction f(y) { return y; }\n", "types.ts")
	require.NoError(t, err)
	assert.Empty(t, out.Diagnostics)
	assert.Contains(t, out.Text, `"not a number"`)
}

func TestTranspileJSXFactory(t *testing.T) {
	out, err := newTranspiler(t).Transpile("const el = <div id=\"x\" />;\n", "view.tsx")
	require.NoError(t, err)
	require.Empty(t, out.Diagnostics)
	assert.Contains(t, out.Text, `DOM.createElement("div"`)
}

func TestTranspileSyntaxErrorDiagnostic(t *testing.T) {
	out, err := newTranspiler(t).Transpile("let x = ;\n", "bad.ts")
	require.NoError(t, err)
	require.NotEmpty(t, out.Diagnostics)

	d := out.Diagnostics[0]
	assert.Equal(t, "bad.ts", d.FileName)
	assert.Equal(t, 0, d.Line)
	assert.Equal(t, 8, d.Character)
	assert.NotEmpty(t, d.Message.Text)
}

func TestTranspileDefaultFileName(t *testing.T) {
	out, err := newTranspiler(t).Transpile("let x = ;", "")
	require.NoError(t, err)
	require.NotEmpty(t, out.Diagnostics)
	assert.Equal(t, DefaultFileName, out.Diagnostics[0].FileName)

	out, err = newTranspiler(t).Transpile("const el = <b />;", "")
	require.NoError(t, err)
	assert.Empty(t, out.Diagnostics, "the default file name must allow JSX")
}

func TestNewRejectsUnknownTarget(t *testing.T) {
	_, err := New(Options{Target: "es1999"})
	assert.Error(t, err)

	b, err := New(Options{Target: "ES2020"})
	require.NoError(t, err)
	assert.Equal(t, api.ES2020, b.target)
	assert.Equal(t, "DOM.createElement", b.opts.JSXFactory)
}

func TestLoaderFor(t *testing.T) {
	tests := map[string]api.Loader{
		"a.ts":          api.LoaderTS,
		"a.tsx":         api.LoaderTSX,
		"a.js":          api.LoaderJSX,
		"a.jsx":         api.LoaderJSX,
		"a.mjs":         api.LoaderJSX,
		"a.coffee":      api.LoaderTS,
		"noext":         api.LoaderTS,
		DefaultFileName: api.LoaderTSX,
	}
	for name, want := range tests {
		assert.Equal(t, want, LoaderFor(name), name)
	}
}

func TestUTF16Column(t *testing.T) {
	assert.Equal(t, 0, utf16Column("abc", 0))
	assert.Equal(t, 2, utf16Column("abc", 2))
	// "é" is two bytes but one UTF-16 unit.
	assert.Equal(t, 8, utf16Column("let é = ;", 9))
	// Astral characters take two UTF-16 units.
	assert.Equal(t, 3, utf16Column("😀x", 5))
}

func TestFlatten(t *testing.T) {
	chain := MessageChain{
		Text: "Type 'string' is not assignable",
		Next: []MessageChain{
			{Text: "first detail", Next: []MessageChain{{Text: "deeper"}}},
			{Text: "second detail"},
		},
	}

	got := Flatten(chain, "\n")
	want := "Type 'string' is not assignable\n  first detail\n    deeper\n  second detail"
	assert.Equal(t, want, got)

	assert.Equal(t, "plain", Flatten(MessageChain{Text: "plain"}, "\n"))
}
