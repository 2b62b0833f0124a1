// Package dispatch routes one compilation request to the compiler for its
// language and normalizes the outcome into a single protocol.Response.
//
// Routing:
//   - coffeescript: CoffeeScript compiler (bare, line-shifted), then the JS pipeline
//   - javascript, typescript: source goes straight to the JS pipeline
//   - less: Less renderer with the request file's directory as import path,
//     compression on, IE compatibility off; no dependency list
//   - anything else: ErrUnsupportedLang, no response
//
// JS pipeline:
//   - transpile to CommonJS with JSX enabled
//   - first diagnostic only becomes the error response
//   - otherwise detect require() specifiers in the output
//   - a detection failure is passed through as the raw error value
//
// Error handling:
//   - Compilation failures always produce an error Response
//   - Dispatch returns a Go error only for caller-contract violations
//     (ErrUnsupportedLang) and engine faults (ErrEngineUnavailable or a
//     wrapped engine error); the caller must not write a Response then
package dispatch
