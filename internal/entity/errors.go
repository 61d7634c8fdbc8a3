package entity

import "errors"

var (
	ErrTransport = errors.New("transport failure")
	ErrStorage   = errors.New("storage failure")
	ErrParse     = errors.New("parse failure")
	ErrNotFound  = errors.New("not found")
)
