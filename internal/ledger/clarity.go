package ledger

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Value is a Clarity value in the JSON shape used by the gateway for both
// call arguments and results: {"type": "...", "value": ..., "success": bool}.
// success is only present on response values.
type Value struct {
	Type    string          `json:"type"`
	Value   json.RawMessage `json:"value"`
	Success *bool           `json:"success,omitempty"`
}

func rawJSON(v any) json.RawMessage {
	b, _ := json.Marshal(v)
	return b
}

// Uint builds a uint argument. The value is sent as a decimal string.
func Uint(n uint64) Value {
	return Value{Type: "uint", Value: rawJSON(strconv.FormatUint(n, 10))}
}

func Principal(address string) Value {
	return Value{Type: "principal", Value: rawJSON(address)}
}

func StringUTF8(s string) Value {
	return Value{Type: "string-utf8", Value: rawJSON(s)}
}

func StringASCII(s string) Value {
	return Value{Type: "string-ascii", Value: rawJSON(s)}
}

func (v Value) isNull() bool {
	return len(v.Value) == 0 || bytes.Equal(bytes.TrimSpace(v.Value), []byte("null"))
}

// Unwrap strips a response wrapper. An (err ...) response is returned as an error
// carrying the contract error code when there is one.
func (v Value) Unwrap() (Value, error) {
	if v.Success == nil {
		return v, nil
	}
	var inner Value
	if err := json.Unmarshal(v.Value, &inner); err != nil {
		return Value{}, fmt.Errorf("decode response value: %w", err)
	}
	if !*v.Success {
		if code, err := inner.AsUint(); err == nil {
			return Value{}, ContractErrorFor(code)
		}
		return Value{}, fmt.Errorf("contract returned error %s", string(inner.Value))
	}
	return inner, nil
}

// AsUint accepts both "12" and 12.
func (v Value) AsUint() (uint64, error) {
	if v.isNull() {
		return 0, fmt.Errorf("expected uint, got null")
	}
	s := strings.Trim(string(bytes.TrimSpace(v.Value)), `"`)
	n, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("expected uint, got %s", string(v.Value))
	}
	return n, nil
}

func (v Value) AsBool() (bool, error) {
	var b bool
	if err := json.Unmarshal(v.Value, &b); err != nil {
		return false, fmt.Errorf("expected bool, got %s", string(v.Value))
	}
	return b, nil
}

func (v Value) AsString() (string, error) {
	var s string
	if err := json.Unmarshal(v.Value, &s); err != nil {
		return "", fmt.Errorf("expected string, got %s", string(v.Value))
	}
	return s, nil
}

// AsOptional returns nil for (optional none).
func (v Value) AsOptional() (*Value, error) {
	if v.isNull() {
		return nil, nil
	}
	var inner Value
	if err := json.Unmarshal(v.Value, &inner); err != nil {
		return nil, fmt.Errorf("decode optional value: %w", err)
	}
	return &inner, nil
}

// AsTuple returns the tuple fields. A value whose payload is already the field
// map (no nested tuple wrapper) is accepted as well.
func (v Value) AsTuple() (map[string]Value, error) {
	var fields map[string]Value
	if err := json.Unmarshal(v.Value, &fields); err != nil {
		return nil, fmt.Errorf("expected tuple, got %s", string(v.Value))
	}
	return fields, nil
}
