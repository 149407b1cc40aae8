// Package codec converts values to the text blobs kept by a storage medium and back.
//
// Encoding:
//
//	Strings are stored verbatim; re-encoding a string never adds quotes. Every other
//	value is stored as indented JSON. Encoding nil is reported as ErrUndefinedValue.
//
// Decoding:
//
//	Decoding is best-effort and never fails. Text is trimmed and only parsed when it
//	looks like a JSON object or array (the StructuredOnly strategy); everything else,
//	including text that looks structured but does not parse, comes back as a string.
//
//	    Decode(`{"a": 1}`)  // map[string]any{"a": 1.0}
//	    Decode("42")        // "42"
//	    Decode("{not json") // "{not json"
//
// Typed access:
//
//	Convert[T] maps a decoded value onto a Go type, parsing strings as JSON when T is
//	not a string. Callers that know the type of a key use it to get scalars back:
//
//	    n, err := codec.Convert[int](codec.Decode("5")) // 5
package codec
