package mirror

import "errors"

var (
	ErrNotFound         = errors.New("mirror: record not found")
	ErrRemoteIDRequired = errors.New("mirror: remote id is required")
	ErrDuplicate        = errors.New("mirror: duplicate remote id for connector")
	ErrTreeTooDeep      = errors.New("mirror: category tree exceeds depth limit")
)
