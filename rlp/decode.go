package rlp

import (
	"io"

	"github.com/holiman/uint256"
)

// Kind represents the type of an RLP value.
type Kind int

const (
	Byte   Kind = iota // Single byte in [0x00, 0x7f].
	String             // RLP string (including empty string).
	List               // RLP list.
)

// Stream provides sequential access to RLP-encoded data held in memory.
// Every read validates that the item is in canonical form.
type Stream struct {
	data  []byte
	pos   int
	stack []int // exclusive end positions of the open lists
}

// NewStream creates a stream reading from b. The slice is not copied;
// byte strings returned by Bytes alias it.
func NewStream(b []byte) *Stream {
	return &Stream{data: b}
}

// limit returns the current read boundary.
func (s *Stream) limit() int {
	if len(s.stack) > 0 {
		return s.stack[len(s.stack)-1]
	}
	return len(s.data)
}

// AtEnd reports whether all items of the current list (or of the whole
// input, outside any list) have been consumed.
func (s *Stream) AtEnd() bool {
	return s.pos >= s.limit()
}

// header parses the prefix of the next item without consuming it. It
// returns the kind, the offset of the payload relative to s.pos and the
// payload size.
func (s *Stream) header() (Kind, int, int, error) {
	lim := s.limit()
	if s.pos >= lim {
		if len(s.stack) > 0 {
			return 0, 0, 0, ErrEOL
		}
		return 0, 0, 0, io.EOF
	}
	prefix := s.data[s.pos]
	switch {
	case prefix <= 0x7f:
		return Byte, 0, 1, nil
	case prefix <= 0xb7:
		size := int(prefix - 0x80)
		if size == 1 {
			if s.pos+1 >= lim {
				return 0, 0, 0, io.ErrUnexpectedEOF
			}
			if s.data[s.pos+1] <= 0x7f {
				return 0, 0, 0, ErrCanonSize
			}
		}
		return String, 1, size, nil
	case prefix <= 0xbf:
		size, n, err := s.longSize(int(prefix-0xb7), lim)
		return String, n, size, err
	case prefix <= 0xf7:
		return List, 1, int(prefix - 0xc0), nil
	default:
		size, n, err := s.longSize(int(prefix-0xf7), lim)
		return List, n, size, err
	}
}

// longSize decodes the length-of-length form used by long strings and lists.
func (s *Stream) longSize(lenOfLen, lim int) (int, int, error) {
	if s.pos+1+lenOfLen > lim {
		return 0, 0, io.ErrUnexpectedEOF
	}
	sizeBytes := s.data[s.pos+1 : s.pos+1+lenOfLen]
	if sizeBytes[0] == 0 {
		return 0, 0, ErrCanonSize
	}
	if lenOfLen > 8 {
		return 0, 0, ErrUint64Range
	}
	var size uint64
	for _, b := range sizeBytes {
		size = size<<8 | uint64(b)
	}
	if size <= 55 {
		return 0, 0, ErrCanonSize
	}
	if size > uint64(lim) {
		return 0, 0, io.ErrUnexpectedEOF
	}
	return int(size), 1 + lenOfLen, nil
}

// Bytes reads an RLP string value and returns its payload.
func (s *Stream) Bytes() ([]byte, error) {
	k, off, size, err := s.header()
	if err != nil {
		return nil, err
	}
	if k == List {
		return nil, ErrExpectedString
	}
	start := s.pos + off
	end := start + size
	if end > s.limit() {
		return nil, io.ErrUnexpectedEOF
	}
	s.pos = end
	return s.data[start:end], nil
}

// FixedBytes reads an RLP string that must be exactly len(dst) bytes long
// and copies it into dst.
func (s *Stream) FixedBytes(dst []byte) error {
	b, err := s.Bytes()
	if err != nil {
		return err
	}
	if len(b) != len(dst) {
		return ErrFixedSize
	}
	copy(dst, b)
	return nil
}

// Uint64 reads an RLP-encoded unsigned integer.
func (s *Stream) Uint64() (uint64, error) {
	b, err := s.uintBytes()
	if err != nil {
		return 0, err
	}
	if len(b) > 8 {
		return 0, ErrUint64Range
	}
	var val uint64
	for _, x := range b {
		val = val<<8 | uint64(x)
	}
	return val, nil
}

// Uint256 reads an RLP-encoded unsigned integer of at most 256 bits.
func (s *Stream) Uint256() (*uint256.Int, error) {
	b, err := s.uintBytes()
	if err != nil {
		return nil, err
	}
	if len(b) > 32 {
		return nil, ErrUint256Range
	}
	return new(uint256.Int).SetBytes(b), nil
}

// uintBytes reads the payload of an integer and checks it has no leading
// zero byte. A lone 0x00 byte is not the canonical zero.
func (s *Stream) uintBytes() ([]byte, error) {
	b, err := s.Bytes()
	if err != nil {
		return nil, err
	}
	if len(b) > 0 && b[0] == 0 {
		return nil, ErrCanonInt
	}
	return b, nil
}

// List reads the start of an RLP list and enters a scope for reading list
// items. It returns the payload size. Call ListEnd when done reading.
func (s *Stream) List() (uint64, error) {
	k, off, size, err := s.header()
	if err != nil {
		return 0, err
	}
	if k != List {
		return 0, ErrExpectedList
	}
	start := s.pos + off
	end := start + size
	if end > s.limit() {
		return 0, io.ErrUnexpectedEOF
	}
	s.stack = append(s.stack, end)
	s.pos = start
	return uint64(size), nil
}

// ListEnd verifies that all items in the current list have been read and
// leaves the list scope.
func (s *Stream) ListEnd() error {
	if len(s.stack) == 0 {
		return ErrExpectedList
	}
	if s.pos != s.stack[len(s.stack)-1] {
		return ErrEOL
	}
	s.stack = s.stack[:len(s.stack)-1]
	return nil
}

// Finish returns ErrMoreThanOneValue if unread data remains at the top
// level, or ErrEOL if a list scope is still open.
func (s *Stream) Finish() error {
	if len(s.stack) > 0 {
		return ErrEOL
	}
	if s.pos != len(s.data) {
		return ErrMoreThanOneValue
	}
	return nil
}
