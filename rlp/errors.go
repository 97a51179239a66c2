package rlp

import "errors"

var (
	// ErrExpectedString is returned when a list is encountered where a string was expected.
	ErrExpectedString = errors.New("rlp: expected string")

	// ErrExpectedList is returned when a string is encountered where a list was expected.
	ErrExpectedList = errors.New("rlp: expected list")

	// ErrCanonSize is returned when an RLP string uses a non-canonical size encoding.
	ErrCanonSize = errors.New("rlp: non-canonical size information")

	// ErrEOL is returned when the end of the current list has not been reached
	// by ListEnd, or when a read is attempted past it.
	ErrEOL = errors.New("rlp: end of list")

	// ErrCanonInt is returned when an integer uses non-canonical encoding (leading zeros).
	ErrCanonInt = errors.New("rlp: non-canonical integer encoding")

	// ErrUint64Range is returned when a decoded integer exceeds uint64 range.
	ErrUint64Range = errors.New("rlp: uint64 overflow")

	// ErrUint256Range is returned when a decoded integer exceeds 256 bits.
	ErrUint256Range = errors.New("rlp: uint256 overflow")

	// ErrFixedSize is returned when a fixed-width value has the wrong length.
	ErrFixedSize = errors.New("rlp: wrong size for fixed-width value")

	// ErrMoreThanOneValue is returned when input has data after the last
	// expected value.
	ErrMoreThanOneValue = errors.New("rlp: input contains more than one value")
)
