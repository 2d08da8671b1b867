package exception

import "errors"

var (
	ErrStoreNotImplemented = errors.New("store: operation not implemented")
	ErrStoreNotFound       = errors.New("store: record not found")
	ErrStoreClosed         = errors.New("store: closed")
	ErrStoreBufferFull     = errors.New("store: write buffer full")
)
