package protocol

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
)

// ErrInvalidRequest marks a request that could not be decoded.
var ErrInvalidRequest = errors.New("invalid request")

// DecodeRequest reads r to EOF and parses it as a single request object.
// Unknown fields are ignored; a null file is the same as no file.
func DecodeRequest(r io.Reader) (*Request, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read request: %w", err)
	}

	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: empty input", ErrInvalidRequest)
	}
	if data[0] != '{' {
		return nil, fmt.Errorf("%w: request must be a JSON object", ErrInvalidRequest)
	}

	var req Request
	if err := json.Unmarshal(data, &req); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidRequest, err)
	}

	return &req, nil
}

// EncodeResponse writes resp as one line of JSON followed by a newline.
func EncodeResponse(w io.Writer, resp *Response) error {
	if resp == nil {
		return fmt.Errorf("nil response")
	}

	var buf bytes.Buffer
	encoder := json.NewEncoder(&buf)
	encoder.SetEscapeHTML(false)
	if err := encoder.Encode(resp); err != nil {
		return fmt.Errorf("failed to encode response: %w", err)
	}

	if _, err := w.Write(buf.Bytes()); err != nil {
		return fmt.Errorf("failed to write response: %w", err)
	}
	return nil
}
