package bril

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
)

// ErrMalformedIR marks input programs the pipeline refuses to analyze.
var ErrMalformedIR = errors.New("malformed IR")

// LoadProgram decodes one bril JSON program from r, typically stdin.
func LoadProgram(r io.Reader) (*Program, error) {
	var p Program
	if err := json.NewDecoder(r).Decode(&p); err != nil {
		return nil, fmt.Errorf("decoding program: %w", err)
	}
	return &p, nil
}
