package biz

import (
	"errors"
)

var (
	ErrInvalidJWT  = errors.New("invalid jwt token")
	ErrUnknownList = errors.New("unknown list")
	ErrInternal    = errors.New("server internal error, please try again later")
)
