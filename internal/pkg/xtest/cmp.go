package xtest

import (
	"encoding/json"

	"github.com/google/go-cmp/cmp"
)

// jsonRawMessageComparer compares raw messages by decoded value, so key order
// and whitespace differences do not fail a test.
func jsonRawMessageComparer(x, y json.RawMessage) bool {
	if len(x) == 0 && len(y) == 0 {
		return true
	}

	if len(x) == 0 || len(y) == 0 {
		return false
	}

	var xVal, yVal any
	if err := json.Unmarshal(x, &xVal); err != nil {
		return false
	}

	if err := json.Unmarshal(y, &yVal); err != nil {
		return false
	}

	return cmp.Equal(xVal, yVal)
}

// Normalize round-trips v through JSON, unifying the number and key types of
// hand-built documents with ones decoded from the store.
func Normalize(v any) any {
	raw, err := json.Marshal(v)
	if err != nil {
		panic(err)
	}

	var out any
	if err := json.Unmarshal(raw, &out); err != nil {
		panic(err)
	}

	return out
}

// Equal provides semantic equality comparison for documents and raw JSON.
func Equal(a, b any, opts ...cmp.Option) bool {
	allOpts := append(opts, cmp.Comparer(jsonRawMessageComparer))
	return cmp.Equal(Normalize(a), Normalize(b), allOpts...)
}

// Diff returns a human-readable diff of the normalized values, empty when
// they are equal.
func Diff(a, b any, opts ...cmp.Option) string {
	allOpts := append(opts, cmp.Comparer(jsonRawMessageComparer))
	return cmp.Diff(Normalize(a), Normalize(b), allOpts...)
}
