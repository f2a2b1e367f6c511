package domain

import "errors"

var (
	ErrTodoNotFound     = errors.New("todo not found")
	ErrDuplicateKey     = errors.New("duplicate key")
	ErrStoreUnavailable = errors.New("store unavailable")
)
