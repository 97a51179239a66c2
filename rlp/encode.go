// Package rlp implements the subset of Recursive Length Prefix encoding used
// for canonical encodings of ledger entities. Encoding is append-based and
// allocation-light; decoding goes through a strict Stream that rejects any
// non-canonical form.
package rlp

import (
	"encoding/binary"

	"github.com/holiman/uint256"
)

// EmptyString is the encoding of the empty byte string and of integer zero.
const EmptyString = 0x80

// AppendUint64 appends the RLP encoding of a uint64 to dst and returns
// the extended slice.
func AppendUint64(dst []byte, v uint64) []byte {
	if v == 0 {
		return append(dst, EmptyString)
	}
	if v < 128 {
		return append(dst, byte(v))
	}
	b := putUintBE(v)
	dst = append(dst, 0x80+byte(len(b)))
	return append(dst, b...)
}

// AppendUint256 appends the RLP encoding of a 256-bit unsigned integer:
// minimal big-endian bytes, zero encodes as the empty string. A nil value
// encodes as zero.
func AppendUint256(dst []byte, v *uint256.Int) []byte {
	if v == nil || v.IsZero() {
		return append(dst, EmptyString)
	}
	if v.IsUint64() {
		return AppendUint64(dst, v.Uint64())
	}
	var buf [32]byte
	v.WriteToArray32(&buf)
	n := (v.BitLen() + 7) / 8
	dst = append(dst, 0x80+byte(n))
	return append(dst, buf[32-n:]...)
}

// AppendBytes appends the RLP encoding of a byte slice to dst.
func AppendBytes(dst, data []byte) []byte {
	n := len(data)
	if n == 1 && data[0] <= 0x7f {
		return append(dst, data[0])
	}
	if n <= 55 {
		dst = append(dst, 0x80+byte(n))
		return append(dst, data...)
	}
	lb := putUintBE(uint64(n))
	dst = append(dst, 0xb7+byte(len(lb)))
	dst = append(dst, lb...)
	return append(dst, data...)
}

// AppendListHeader appends an RLP list header for a payload of the given
// size to dst. The caller is responsible for appending exactly payloadSize
// bytes of encoded list items afterward.
func AppendListHeader(dst []byte, payloadSize int) []byte {
	if payloadSize <= 55 {
		return append(dst, 0xc0+byte(payloadSize))
	}
	lb := putUintBE(uint64(payloadSize))
	dst = append(dst, 0xf7+byte(len(lb)))
	return append(dst, lb...)
}

// WrapList wraps an already-encoded RLP payload in a list header.
func WrapList(payload []byte) []byte {
	out := AppendListHeader(make([]byte, 0, ListSize(len(payload))), len(payload))
	return append(out, payload...)
}

// ListSize returns the RLP-encoded size of a list with the given total
// payload size.
func ListSize(payloadSize int) int {
	if payloadSize <= 55 {
		return 1 + payloadSize
	}
	return 1 + uintByteLen(uint64(payloadSize)) + payloadSize
}

// StringSize returns the RLP-encoded size of data as a byte string.
func StringSize(data []byte) int {
	n := len(data)
	if n == 1 && data[0] <= 0x7f {
		return 1
	}
	if n <= 55 {
		return 1 + n
	}
	return 1 + uintByteLen(uint64(n)) + n
}

// putUintBE encodes u as big-endian with no leading zeros.
func putUintBE(u uint64) []byte {
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], u)
	for i := 0; i < 8; i++ {
		if buf[i] != 0 {
			return buf[i:]
		}
	}
	return buf[7:]
}

// uintByteLen returns the number of bytes needed to encode u in big-endian.
func uintByteLen(u uint64) int {
	n := 1
	for u >= 1<<8 {
		u >>= 8
		n++
	}
	return n
}
