package post

import "errors"

var (
	ErrInvalidArgument = errors.New("post: invalid argument")
	ErrMalformedRow    = errors.New("post: malformed row")
)
