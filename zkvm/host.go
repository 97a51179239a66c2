package zkvm

import (
	"bytes"
	"errors"
	"fmt"
	"io"
)

// Host is the guest's only channel to the outside world: it supplies the
// input bytes once and receives the committed output bytes.
type Host interface {
	Read() ([]byte, error)
	Commit(output []byte) error
}

// ErrInputConsumed is returned when a host's input is read twice.
var ErrInputConsumed = errors.New("zkvm: host input already consumed")

// StreamHost reads the whole input from an io.Reader and commits output to
// an io.Writer.
type StreamHost struct {
	in       io.Reader
	out      io.Writer
	maxInput int64
	read     bool
}

// NewStreamHost creates a host over r and w. A positive maxInput bounds the
// number of input bytes accepted.
func NewStreamHost(r io.Reader, w io.Writer, maxInput int64) *StreamHost {
	return &StreamHost{in: r, out: w, maxInput: maxInput}
}

// Read implements Host.
func (h *StreamHost) Read() ([]byte, error) {
	if h.read {
		return nil, ErrInputConsumed
	}
	h.read = true
	r := h.in
	if h.maxInput > 0 {
		r = io.LimitReader(h.in, h.maxInput+1)
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("zkvm: read input: %w", err)
	}
	if h.maxInput > 0 && int64(len(data)) > h.maxInput {
		return nil, fmt.Errorf("zkvm: input exceeds %d bytes", h.maxInput)
	}
	return data, nil
}

// Commit implements Host.
func (h *StreamHost) Commit(output []byte) error {
	if _, err := h.out.Write(output); err != nil {
		return fmt.Errorf("zkvm: commit output: %w", err)
	}
	return nil
}

// MemoryHost keeps input and committed output in memory.
type MemoryHost struct {
	Input     []byte
	Committed [][]byte
	read      bool
}

// NewMemoryHost creates a host that serves input.
func NewMemoryHost(input []byte) *MemoryHost {
	return &MemoryHost{Input: input}
}

// Read implements Host.
func (h *MemoryHost) Read() ([]byte, error) {
	if h.read {
		return nil, ErrInputConsumed
	}
	h.read = true
	return bytes.Clone(h.Input), nil
}

// Commit implements Host.
func (h *MemoryHost) Commit(output []byte) error {
	h.Committed = append(h.Committed, bytes.Clone(output))
	return nil
}

// Output returns everything committed so far, concatenated.
func (h *MemoryHost) Output() []byte {
	return bytes.Join(h.Committed, nil)
}
