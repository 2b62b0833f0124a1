package dispatch

import (
	"fmt"
	"strings"

	"github.com/mattjoyce/polyc/internal/coffee"
	"github.com/mattjoyce/polyc/internal/less"
	"github.com/mattjoyce/polyc/internal/protocol"
	"github.com/mattjoyce/polyc/internal/transpile"
)

// unnamedSource stands in for the file name when a request has none.
const unnamedSource = "<string>"

func displayName(file string) string {
	if file == "" {
		return unnamedSource
	}
	return file
}

// CoffeeScriptError converts a CoffeeScript failure. Locations are 0-based on
// the way in and 1-based on the way out; the annotated excerpt underlines the
// span with carets.
func CoffeeScriptError(err *coffee.Error, file string) *protocol.CompileError {
	name := displayName(file)
	if err.Location == nil {
		return &protocol.CompileError{
			Message: err.Message,
			Text:    name + ":" + err.Message,
		}
	}

	loc := err.Location
	line := loc.FirstLine + 1
	column := loc.FirstColumn + 1
	text := fmt.Sprintf("%s:%d:%d:%s", name, line, column, err.Message)

	markerLen := 2
	if loc.FirstLine == loc.LastLine {
		markerLen += loc.LastColumn - loc.FirstColumn
	}

	extract, ok := lineAt(err.Code, line-1)
	annotated := strings.Join([]string{
		text,
		"  " + extract,
		"  " + padding(" ", column-1) + padding("^", markerLen-1),
	}, "\n")

	ce := &protocol.CompileError{
		Message:   err.Message,
		Line:      &line,
		Column:    &column,
		Text:      text,
		Annotated: annotated,
	}
	if ok {
		ce.Extract = &extract
	}
	return ce
}

// LessError converts a Less failure. The line is used as reported and also
// indexes the engine's extract array directly; only the column is shifted.
func LessError(err *less.Error, file string) *protocol.CompileError {
	line := err.Line
	column := err.Column + 1
	text := fmt.Sprintf("%s:%d:%d:%s", displayName(file), line, column, err.Message)

	var extract *string
	if line >= 0 && line < len(err.Extract) {
		extract = err.Extract[line]
	}

	annotated := text + "\n  "
	if extract != nil {
		annotated += *extract
	}

	return &protocol.CompileError{
		Message:   err.Message,
		Line:      &line,
		Column:    &column,
		Text:      text,
		Extract:   extract,
		Annotated: annotated,
	}
}

// TypeScriptError converts a transpiler diagnostic. Nested messages are
// flattened with newlines; no excerpt is attached.
func TypeScriptError(d transpile.Diagnostic) *protocol.CompileError {
	line := d.Line + 1
	column := d.Character + 1
	message := transpile.Flatten(d.Message, "\n")

	return &protocol.CompileError{
		Message: message,
		Line:    &line,
		Column:  &column,
		Text:    fmt.Sprintf("%s:%d:%d:%s", d.FileName, line, column, message),
	}
}

// lineAt returns the 0-based line idx of src.
func lineAt(src string, idx int) (string, bool) {
	lines := strings.Split(src, "\n")
	if idx < 0 || idx >= len(lines) {
		return "", false
	}
	return lines[idx], true
}

func padding(s string, n int) string {
	if n <= 0 {
		return ""
	}
	return strings.Repeat(s, n)
}
