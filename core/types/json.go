package types

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"reflect"
	"slices"
	"strings"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/holiman/uint256"
)

// quantity is a 256-bit JSON amount. It decodes from 0x-prefixed hex, a
// decimal string or a JSON integer, and always encodes as 0x-prefixed hex.
type quantity uint256.Int

func (q quantity) MarshalText() ([]byte, error) {
	return hexutil.U256(q).MarshalText()
}

func (q *quantity) UnmarshalJSON(input []byte) error {
	if len(input) > 0 && input[0] != '"' {
		return q.setDecimal(string(input))
	}
	var s string
	if err := json.Unmarshal(input, &s); err != nil {
		return err
	}
	if has0xPrefix(s) {
		return (*hexutil.U256)(q).UnmarshalText([]byte(s))
	}
	return q.setDecimal(s)
}

func (q *quantity) setDecimal(s string) error {
	v, err := uint256.FromDecimal(s)
	if err != nil {
		return fmt.Errorf("invalid quantity %q: %w", s, err)
	}
	*q = quantity(*v)
	return nil
}

// strictUnmarshal decodes a single JSON object into the struct pointed to by
// v, rejecting unknown fields, keys that differ from the json tags only in
// case, and trailing data.
func strictUnmarshal(input []byte, v any) error {
	dec := json.NewDecoder(bytes.NewReader(input))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return err
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return errTrailingData
	}
	return exactKeys(input, reflect.TypeOf(v).Elem())
}

// exactKeys checks object keys against the json tags of t. encoding/json
// itself matches keys case-insensitively.
func exactKeys(input []byte, t reflect.Type) error {
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(input, &obj); err != nil {
		return err
	}
	keys := make([]string, 0, len(obj))
	for key := range obj {
		keys = append(keys, key)
	}
	slices.Sort(keys)
	for _, key := range keys {
		if !hasJSONField(t, key) {
			return fmt.Errorf("json: unknown field %q", key)
		}
	}
	return nil
}

func hasJSONField(t reflect.Type, key string) bool {
	for i := 0; i < t.NumField(); i++ {
		name, _, _ := strings.Cut(t.Field(i).Tag.Get("json"), ",")
		if name == key {
			return true
		}
	}
	return false
}
