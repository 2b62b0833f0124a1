// Package transpile lowers TypeScript/JavaScript to CommonJS with esbuild and
// reports syntax failures as diagnostics.
package transpile

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"unicode/utf16"

	"github.com/evanw/esbuild/pkg/api"
)

// DefaultFileName is the source name used when a request has no file,
// matching what a JSX-enabled transpileModule call assumes.
const DefaultFileName = "module.tsx"

// Options configures the transform.
type Options struct {
	Target      string // es5, es2015 ... es2022, esnext
	JSXFactory  string
	JSXFragment string
}

// DefaultOptions returns the transform settings the dispatcher uses.
func DefaultOptions() Options {
	return Options{
		Target:      "es2015",
		JSXFactory:  "DOM.createElement",
		JSXFragment: "DOM.Fragment",
	}
}

// MessageChain is a diagnostic message with nested detail messages.
type MessageChain struct {
	Text string
	Next []MessageChain
}

// Diagnostic is a transform failure anchored in a source file.
// Line and Character are 0-based; Character counts UTF-16 code units.
type Diagnostic struct {
	FileName  string
	Line      int
	Character int
	Message   MessageChain
}

// Output is the result of one transform. Text is only meaningful when there
// are no diagnostics.
type Output struct {
	Text        string
	Diagnostics []Diagnostic
}

// Transpiler turns a single module into CommonJS JavaScript.
type Transpiler interface {
	Transpile(code, fileName string) (*Output, error)
}

var targets = map[string]api.Target{
	"es5":    api.ES5,
	"es6":    api.ES2015,
	"es2015": api.ES2015,
	"es2016": api.ES2016,
	"es2017": api.ES2017,
	"es2018": api.ES2018,
	"es2019": api.ES2019,
	"es2020": api.ES2020,
	"es2021": api.ES2021,
	"es2022": api.ES2022,
	"esnext": api.ESNext,
}

// Targets lists the accepted target names.
func Targets() []string {
	names := make([]string, 0, len(targets))
	for name := range targets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ESBuild implements Transpiler with esbuild's transform API.
type ESBuild struct {
	opts   Options
	target api.Target
}

// New validates opts and returns a transpiler.
func New(opts Options) (*ESBuild, error) {
	defaults := DefaultOptions()
	if opts.Target == "" {
		opts.Target = defaults.Target
	}
	if opts.JSXFactory == "" {
		opts.JSXFactory = defaults.JSXFactory
	}
	if opts.JSXFragment == "" {
		opts.JSXFragment = defaults.JSXFragment
	}

	target, ok := targets[strings.ToLower(opts.Target)]
	if !ok {
		return nil, fmt.Errorf("unknown transpile target %q (want one of %s)", opts.Target, strings.Join(Targets(), ", "))
	}
	return &ESBuild{opts: opts, target: target}, nil
}

// LoaderFor picks the esbuild loader from the file extension. Anything that is
// not recognizably JavaScript is parsed as TypeScript.
func LoaderFor(fileName string) api.Loader {
	switch strings.ToLower(filepath.Ext(fileName)) {
	case ".tsx":
		return api.LoaderTSX
	case ".js", ".jsx", ".mjs", ".cjs":
		return api.LoaderJSX
	default:
		return api.LoaderTS
	}
}

// Transpile transforms code. Syntax problems come back as diagnostics in
// esbuild's report order; the error return is reserved for engine faults.
func (b *ESBuild) Transpile(code, fileName string) (*Output, error) {
	if fileName == "" {
		fileName = DefaultFileName
	}

	result := api.Transform(code, api.TransformOptions{
		Loader:      LoaderFor(fileName),
		Target:      b.target,
		Format:      api.FormatCommonJS,
		JSX:         api.JSXTransform,
		JSXFactory:  b.opts.JSXFactory,
		JSXFragment: b.opts.JSXFragment,
		Sourcefile:  fileName,
		LogLevel:    api.LogLevelSilent,
	})

	out := &Output{Text: string(result.Code)}
	for _, msg := range result.Errors {
		out.Diagnostics = append(out.Diagnostics, diagnosticFrom(msg, fileName))
	}
	return out, nil
}

func diagnosticFrom(msg api.Message, fileName string) Diagnostic {
	d := Diagnostic{
		FileName: fileName,
		Message:  MessageChain{Text: msg.Text},
	}
	if loc := msg.Location; loc != nil {
		if loc.File != "" {
			d.FileName = loc.File
		}
		d.Line = loc.Line - 1
		d.Character = utf16Column(loc.LineText, loc.Column)
	}
	for _, note := range msg.Notes {
		if note.Text == "" {
			continue
		}
		d.Message.Next = append(d.Message.Next, MessageChain{Text: note.Text})
	}
	return d
}

// utf16Column converts esbuild's byte column into UTF-16 code units.
func utf16Column(lineText string, byteCol int) int {
	if byteCol <= 0 {
		return 0
	}
	if byteCol > len(lineText) {
		return byteCol
	}
	return len(utf16.Encode([]rune(lineText[:byteCol])))
}

// Flatten joins a message chain into one string. Each nested level starts on
// a new line indented two spaces per depth.
func Flatten(chain MessageChain, newLine string) string {
	var sb strings.Builder
	flatten(&sb, chain, newLine, 0)
	return sb.String()
}

func flatten(sb *strings.Builder, chain MessageChain, newLine string, indent int) {
	if indent > 0 {
		sb.WriteString(newLine)
		sb.WriteString(strings.Repeat("  ", indent))
	}
	sb.WriteString(chain.Text)
	for _, next := range chain.Next {
		flatten(sb, next, newLine, indent+1)
	}
}
