package storage

import "errors"

var (
	ErrNotFound      = errors.New("item not found")
	ErrDuplicateID   = errors.New("item id already exists")
	ErrInvalidCursor = errors.New("invalid pagination cursor")
)
