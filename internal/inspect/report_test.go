package inspect

import (
	"strings"
	"testing"

	"github.com/mattjoyce/polyc/internal/protocol"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func intPtr(v int) *int { return &v }

func TestSummarizeSuccess(t *testing.T) {
	req := &protocol.Request{Lang: protocol.LangTypeScript, File: "a.ts"}
	resp := protocol.Success("var a = require(\"./b\");\nvar c = 1;\n", []string{"./b"})

	s := Summarize(req, resp)
	assert.True(t, s.Passed)
	assert.Equal(t, 2, s.Lines)
	assert.Equal(t, len(resp.Code), s.Bytes)
	assert.True(t, s.HasDeps)
	assert.Equal(t, []string{"./b"}, s.Deps)
}

func TestSummarizeLessHasNoDeps(t *testing.T) {
	req := &protocol.Request{Lang: protocol.LangLess, File: "a.less"}
	s := Summarize(req, protocol.Success("a{color:red}", nil))
	assert.True(t, s.Passed)
	assert.False(t, s.HasDeps)
	assert.Equal(t, 1, s.Lines)
}

func TestBuildReportSuccess(t *testing.T) {
	req := &protocol.Request{Lang: protocol.LangJavaScript, File: "main.js"}
	out := BuildReport(req, protocol.Success("x();\n", []string{"./one", "two"}), NewPlainTheme())

	assert.Contains(t, out, "ok javascript main.js")
	assert.Contains(t, out, "output: 5 bytes, 1 lines")
	assert.Contains(t, out, "deps: 2")
	assert.Contains(t, out, "  - ./one\n")
	assert.Contains(t, out, "  - two\n")
}

func TestBuildReportLess(t *testing.T) {
	req := &protocol.Request{Lang: protocol.LangLess}
	out := BuildReport(req, protocol.Success("a{b:c}", nil), NewPlainTheme())
	assert.Contains(t, out, "ok less <stdin>")
	assert.Contains(t, out, "deps: n/a")
}

func TestBuildReportCompileError(t *testing.T) {
	req := &protocol.Request{Lang: protocol.LangCoffeeScript, File: "a.coffee"}
	extract := "a = (b"
	resp := protocol.Failure(&protocol.CompileError{
		Message:   "missing )",
		Line:      intPtr(1),
		Column:    intPtr(5),
		Text:      "a.coffee:1:5:missing )",
		Extract:   &extract,
		Annotated: "a.coffee:1:5:missing )\n  a = (b\n      ^",
	})

	out := BuildReport(req, resp, NewPlainTheme())
	assert.Contains(t, out, "FAIL coffeescript a.coffee")
	assert.Contains(t, out, "a.coffee:1:5:missing )")
	assert.Contains(t, out, "a = (b")
	assert.Contains(t, out, "^")

	s := Summarize(req, resp)
	require.Len(t, s.Annotated, 2)
	assert.Equal(t, "      ^", s.Annotated[1])
}

func TestBuildReportRawDetectionError(t *testing.T) {
	req := &protocol.Request{Lang: protocol.LangJavaScript}
	out := BuildReport(req, protocol.Failure("unexpected token"), NewPlainTheme())
	assert.Contains(t, out, "FAIL javascript")
	assert.Contains(t, out, "dependency detection: unexpected token")
	assert.False(t, strings.Contains(out, "deps:"))
}
