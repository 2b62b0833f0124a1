// Package inspect renders compile results for people rather than programs.
package inspect

import (
	"fmt"
	"strings"

	"github.com/mattjoyce/polyc/internal/protocol"
)

// Summary is the structured view of one compile result shown by `polyc check`.
type Summary struct {
	Lang   protocol.Lang
	File   string
	Passed bool

	// Success fields.
	Bytes   int
	Lines   int
	Deps    []string
	HasDeps bool

	// Failure fields.
	Text      string
	Annotated []string
	Raw       string
}

// Summarize extracts the report fields from a request and its Response.
func Summarize(req *protocol.Request, resp *protocol.Response) Summary {
	s := Summary{Lang: req.Lang, File: req.File}

	if !resp.IsError() {
		s.Passed = true
		s.Bytes = len(resp.Code)
		if resp.Code != "" {
			s.Lines = strings.Count(strings.TrimSuffix(resp.Code, "\n"), "\n") + 1
		}
		s.HasDeps = resp.Deps != nil
		s.Deps = resp.Deps
		return s
	}

	if ce := resp.CompileError(); ce != nil {
		s.Text = ce.Text
		if ce.Annotated != "" {
			// First line repeats Text.
			lines := strings.Split(ce.Annotated, "\n")
			s.Annotated = lines[1:]
		}
		return s
	}

	s.Raw = fmt.Sprint(resp.Error)
	return s
}

// BuildReport renders a terminal-friendly report of a compile result.
func BuildReport(req *protocol.Request, resp *protocol.Response, theme Theme) string {
	s := Summarize(req, resp)
	name := s.File
	if name == "" {
		name = "<stdin>"
	}

	var out strings.Builder
	if s.Passed {
		fmt.Fprintf(&out, "%s %s %s\n",
			theme.StatusOK.Render("ok"),
			theme.Title.Render(string(s.Lang)),
			name)
		fmt.Fprintf(&out, "%s %d bytes, %d lines\n", theme.Header.Render("output:"), s.Bytes, s.Lines)
		if !s.HasDeps {
			fmt.Fprintf(&out, "%s %s\n", theme.Header.Render("deps:"), theme.Dim.Render("n/a"))
			return out.String()
		}
		fmt.Fprintf(&out, "%s %d\n", theme.Header.Render("deps:"), len(s.Deps))
		for _, dep := range s.Deps {
			fmt.Fprintf(&out, "  - %s\n", theme.Highlight.Render(dep))
		}
		return out.String()
	}

	fmt.Fprintf(&out, "%s %s %s\n",
		theme.StatusFailed.Render("FAIL"),
		theme.Title.Render(string(s.Lang)),
		name)

	if s.Raw != "" {
		fmt.Fprintf(&out, "%s %s\n", theme.Header.Render("dependency detection:"), s.Raw)
		return out.String()
	}

	fmt.Fprintln(&out, theme.Header.Render(s.Text))
	if len(s.Annotated) > 0 {
		body := make([]string, len(s.Annotated))
		for i, line := range s.Annotated {
			if i == 1 {
				body[i] = theme.Marker.Render(line)
				continue
			}
			body[i] = theme.Highlight.Render(line)
		}
		fmt.Fprintln(&out, theme.Border.Render(strings.Join(body, "\n")))
	}
	return out.String()
}
