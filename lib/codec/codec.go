package codec

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"github.com/lni/dragonboat/v4/logger"
	"strings"
)

var Logger = logger.GetLogger("codec")

var (
	// ErrUndefinedValue is returned when nil is passed to Encode.
	// A nil value is a programming error, not a legal empty value.
	ErrUndefinedValue = errors.New("value is undefined")

	// ErrEncode wraps every serialization failure.
	ErrEncode = errors.New("failed to encode value")
)

const indent = "  "

// --------------------------------------------------------------------------
// Decoding Strategy
// --------------------------------------------------------------------------

// Strategy decides whether a stored text is decoded as structured data
type Strategy func(text string) bool

// StructuredOnly is the decoding strategy used by Decode. Text is only parsed as
// JSON if it starts and ends with a matching pair of braces or brackets. Plain
// strings that were stored as-is are never parsed, so "42" stays the string "42"
// and "{not json" stays "{not json".
var StructuredOnly Strategy = LooksStructured

// LooksStructured reports whether the (already trimmed) text looks like a JSON
// object or array.
func LooksStructured(text string) bool {
	if len(text) < 2 {
		return false
	}
	first, last := text[0], text[len(text)-1]
	return (first == '{' && last == '}') || (first == '[' && last == ']')
}

// --------------------------------------------------------------------------
// Encode / Decode
// --------------------------------------------------------------------------

// Encode serializes a value to text.
// Strings are returned unchanged (encoding is idempotent for text), every other
// value is rendered as indented JSON.
func Encode(value any) (string, error) {
	switch v := value.(type) {
	case nil:
		Logger.Errorf("cannot encode an undefined value")
		return "", ErrUndefinedValue
	case string:
		return v, nil
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", indent)
	if err := enc.Encode(value); err != nil {
		return "", fmt.Errorf("%w: %w", ErrEncode, err)
	}

	// json.Encoder always terminates the document with a newline
	return strings.TrimSuffix(buf.String(), "\n"), nil
}

// Decode turns stored text back into a value using the StructuredOnly strategy.
//
//   - nil and non-string inputs are returned unchanged
//   - strings are trimmed and only parsed if they look like an object or array
//   - if parsing fails the trimmed text is returned instead of an error
//
// Decode never fails: corrupt data degrades to its raw text.
func Decode(raw any) any {
	return DecodeWith(raw, StructuredOnly)
}

// DecodeWith is Decode with a custom strategy.
func DecodeWith(raw any, strategy Strategy) any {
	text, ok := raw.(string)
	if !ok {
		return raw
	}

	text = strings.TrimSpace(text)
	if !strategy(text) {
		return text
	}

	var value any
	if err := json.Unmarshal([]byte(text), &value); err != nil {
		Logger.Warningf("failed to decode structured value, returning raw text: %v", err)
		return text
	}
	return value
}

// --------------------------------------------------------------------------
// Typed Conversion
// --------------------------------------------------------------------------

// Convert returns a typed view of a decoded value.
//
//   - a value that already is a T is returned as is
//   - a string is parsed as JSON into T (unless T itself is a string type)
//   - any other value is re-encoded and decoded into T
//
// This closes the gap left by the StructuredOnly strategy: the scalar 5 is
// stored as "5", decodes to the string "5" and converts back to int 5.
func Convert[T any](value any) (T, error) {
	var target T

	if value == nil {
		return target, ErrUndefinedValue
	}
	if v, ok := value.(T); ok {
		return v, nil
	}

	var data []byte
	if s, ok := value.(string); ok {
		data = []byte(s)
	} else {
		b, err := json.Marshal(value)
		if err != nil {
			return target, fmt.Errorf("%w: %w", ErrEncode, err)
		}
		data = b
	}

	if err := json.Unmarshal(data, &target); err != nil {
		return target, fmt.Errorf("cannot convert %T to %T: %w", value, target, err)
	}
	return target, nil
}
