// Package storage is the persistence port of the symbol store. Paths are slash
// separated and relative to the root of the data tree.
package storage

import "context"

type Reader interface {
	Read(ctx context.Context, path string) ([]byte, error)
}

type Writer interface {
	Write(ctx context.Context, path string, data []byte) error
}

type Storage interface {
	Reader
	Writer
	Exists(ctx context.Context, path string) (bool, error)
}
