package repository

import "errors"

var (
	// 対象の行がない
	ErrNotFound = errors.New("not found")

	// 他の行から参照されていて消せない
	ErrInUse = errors.New("in use")
)
