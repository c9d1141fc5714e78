package storage

import (
	"encoding/base64"
	"fmt"
	"strings"

	"github.com/vmihailenco/msgpack/v5"
)

// Cursor marks a position in a list read: the creation instant and id of the
// last returned item. Clients treat the encoded form as opaque.
type Cursor struct {
	ListKey   string `msgpack:"l"`
	CreatedAt int64  `msgpack:"c"`
	ID        string `msgpack:"i"`
}

// Encode returns the cursor as a base64url msgpack token.
//
//nolint:errcheck // writing to a strings.Builder cannot fail.
func (c Cursor) Encode() string {
	var sb strings.Builder

	wc := base64.NewEncoder(base64.RawURLEncoding, &sb)
	_ = msgpack.NewEncoder(wc).Encode(c)
	_ = wc.Close()

	return sb.String()
}

// DecodeCursor parses an encoded cursor and checks it belongs to the list
// being read.
func DecodeCursor(token, listKey string) (Cursor, error) {
	var c Cursor

	if err := msgpack.NewDecoder(
		base64.NewDecoder(
			base64.RawURLEncoding,
			strings.NewReader(token),
		),
	).Decode(&c); err != nil {
		return c, fmt.Errorf("%w: %v", ErrInvalidCursor, err)
	}

	if c.ListKey != listKey {
		return c, fmt.Errorf("%w: cursor belongs to list %q", ErrInvalidCursor, c.ListKey)
	}

	return c, nil
}
