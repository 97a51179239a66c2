package rlp

import (
	"bytes"
	"errors"
	"io"
	"testing"

	"github.com/holiman/uint256"
)

func TestStreamUint64(t *testing.T) {
	tests := []struct {
		name  string
		input []byte
		want  uint64
	}{
		{"uint(0)", []byte{0x80}, 0},
		{"uint(1)", []byte{0x01}, 1},
		{"uint(127)", []byte{0x7f}, 127},
		{"uint(128)", []byte{0x81, 0x80}, 128},
		{"uint(1024)", []byte{0x82, 0x04, 0x00}, 1024},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewStream(tt.input)
			got, err := s.Uint64()
			if err != nil {
				t.Fatal(err)
			}
			if got != tt.want {
				t.Fatalf("got %d, want %d", got, tt.want)
			}
			if err := s.Finish(); err != nil {
				t.Fatalf("finish: %v", err)
			}
		})
	}
}

func TestStreamUint256(t *testing.T) {
	enc := AppendUint256(nil, new(uint256.Int).SetAllOne())
	got, err := NewStream(enc).Uint256()
	if err != nil {
		t.Fatal(err)
	}
	if !got.Eq(new(uint256.Int).SetAllOne()) {
		t.Fatalf("got %s", got)
	}

	tooBig := append([]byte{0xa1}, bytes.Repeat([]byte{0x01}, 33)...)
	if _, err := NewStream(tooBig).Uint256(); !errors.Is(err, ErrUint256Range) {
		t.Fatalf("33-byte integer: got %v, want ErrUint256Range", err)
	}
}

func TestStreamNonCanonical(t *testing.T) {
	tests := []struct {
		name  string
		input []byte
		read  func(*Stream) error
		want  error
	}{
		{"single byte as short string", []byte{0x81, 0x05}, func(s *Stream) error { _, err := s.Bytes(); return err }, ErrCanonSize},
		{"leading zero integer", []byte{0x82, 0x00, 0x01}, func(s *Stream) error { _, err := s.Uint64(); return err }, ErrCanonInt},
		{"zero byte integer", []byte{0x00}, func(s *Stream) error { _, err := s.Uint64(); return err }, ErrCanonInt},
		{"long form for short string", []byte{0xb8, 0x02, 0x01, 0x02}, func(s *Stream) error { _, err := s.Bytes(); return err }, ErrCanonSize},
		{"uint64 overflow", []byte{0x89, 1, 0, 0, 0, 0, 0, 0, 0, 0}, func(s *Stream) error { _, err := s.Uint64(); return err }, ErrUint64Range},
		{"truncated string", []byte{0x83, 0x01}, func(s *Stream) error { _, err := s.Bytes(); return err }, io.ErrUnexpectedEOF},
		{"truncated list", []byte{0xc3, 0x01}, func(s *Stream) error { _, err := s.List(); return err }, io.ErrUnexpectedEOF},
		{"string as list", []byte{0x83, 0x64, 0x6f, 0x67}, func(s *Stream) error { _, err := s.List(); return err }, ErrExpectedList},
		{"list as string", []byte{0xc0}, func(s *Stream) error { _, err := s.Bytes(); return err }, ErrExpectedString},
		{"empty input", nil, func(s *Stream) error { _, err := s.Bytes(); return err }, io.EOF},
		{"wrong fixed width", []byte{0x82, 0x01, 0x02}, func(s *Stream) error { return s.FixedBytes(make([]byte, 3)) }, ErrFixedSize},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.read(NewStream(tt.input))
			if !errors.Is(err, tt.want) {
				t.Fatalf("got %v, want %v", err, tt.want)
			}
		})
	}
}

func TestStreamList(t *testing.T) {
	// ["cat", 5]
	input := []byte{0xc5, 0x83, 0x63, 0x61, 0x74, 0x05}
	s := NewStream(input)
	size, err := s.List()
	if err != nil {
		t.Fatal(err)
	}
	if size != 5 {
		t.Fatalf("list size: got %d, want 5", size)
	}
	name, err := s.Bytes()
	if err != nil || string(name) != "cat" {
		t.Fatalf("name: got %q, %v", name, err)
	}
	if err := s.ListEnd(); !errors.Is(err, ErrEOL) {
		t.Fatalf("early ListEnd: got %v, want ErrEOL", err)
	}
	age, err := s.Uint64()
	if err != nil || age != 5 {
		t.Fatalf("age: got %d, %v", age, err)
	}
	if !s.AtEnd() {
		t.Fatal("expected end of list")
	}
	if _, err := s.Uint64(); !errors.Is(err, ErrEOL) {
		t.Fatalf("read past list: got %v, want ErrEOL", err)
	}
	if err := s.ListEnd(); err != nil {
		t.Fatal(err)
	}
	if err := s.Finish(); err != nil {
		t.Fatal(err)
	}
}

func TestStreamTrailingData(t *testing.T) {
	s := NewStream([]byte{0x01, 0x02})
	if _, err := s.Uint64(); err != nil {
		t.Fatal(err)
	}
	if err := s.Finish(); !errors.Is(err, ErrMoreThanOneValue) {
		t.Fatalf("got %v, want ErrMoreThanOneValue", err)
	}
}
