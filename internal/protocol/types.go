package protocol

import (
	"bytes"
	"encoding/json"
)

// Lang tags the source language of a compilation request.
type Lang string

const (
	LangCoffeeScript Lang = "coffeescript"
	LangJavaScript   Lang = "javascript"
	LangTypeScript   Lang = "typescript"
	LangLess         Lang = "less"
)

// DefaultLang is used in file mode when --lang is omitted.
const DefaultLang = LangCoffeeScript

// Langs lists every language the dispatcher routes.
var Langs = []Lang{LangCoffeeScript, LangJavaScript, LangTypeScript, LangLess}

// Known reports whether l is one of the routed languages.
func (l Lang) Known() bool {
	for _, k := range Langs {
		if l == k {
			return true
		}
	}
	return false
}

// Request is a single compilation unit read from flags or from stdin.
type Request struct {
	Code string `json:"code"`
	Lang Lang   `json:"lang"`
	File string `json:"file,omitempty"` // empty when the source has no path
}

// CompileError is the common error shape every language formatter produces.
type CompileError struct {
	Message   string  `json:"message"`
	Line      *int    `json:"line,omitempty"`
	Column    *int    `json:"column,omitempty"`
	Text      string  `json:"text"`
	Extract   *string `json:"extract,omitempty"`
	Annotated string  `json:"annotated,omitempty"`
}

func (e *CompileError) Error() string {
	return e.Text
}

// Response is exactly one of a success (Code, optional Deps) or an error.
//
// Deps is nil for outputs that carry no dependency list (CSS); JS-family
// outputs always carry a non-nil slice, even when empty.
// Error is usually a *CompileError, but dependency detection failures are
// passed through as their raw value.
type Response struct {
	Code  string
	Deps  []string
	Error any
}

// Success builds a success response. Pass nil deps for CSS output.
func Success(code string, deps []string) *Response {
	return &Response{Code: code, Deps: deps}
}

// Failure builds an error response.
func Failure(err any) *Response {
	return &Response{Error: err}
}

// IsError reports whether the response carries an error.
func (r *Response) IsError() bool {
	return r.Error != nil
}

// CompileError returns the normalized error, or nil when the response is a
// success or carries a raw pass-through error.
func (r *Response) CompileError() *CompileError {
	ce, _ := r.Error.(*CompileError)
	return ce
}

func (r Response) MarshalJSON() ([]byte, error) {
	switch {
	case r.Error != nil:
		return marshalPlain(struct {
			Error any `json:"error"`
		}{r.Error})
	case r.Deps == nil:
		return marshalPlain(struct {
			Code string `json:"code"`
		}{r.Code})
	default:
		return marshalPlain(struct {
			Code string   `json:"code"`
			Deps []string `json:"deps"`
		}{r.Code, r.Deps})
	}
}

// marshalPlain is json.Marshal without HTML escaping, so placeholders such as
// "<string>" and compiled JSX survive byte for byte.
func marshalPlain(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}
