package offsync

import "errors"

var (
	ErrNotFound      = errors.New("not found")
	ErrAlreadyExists = errors.New("already exists")
	ErrExpired       = errors.New("expiration timestamp must be in the future")
	ErrNotSupported  = errors.New("not supported")
)
