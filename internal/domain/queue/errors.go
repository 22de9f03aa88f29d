package queue

import "errors"

var (
	ErrQueueNotFound    = errors.New("queue: not found")
	ErrLineNotFound     = errors.New("queue: line not found")
	ErrRemoteIDRequired = errors.New("queue: line remote id is required")
	ErrInvalidModelType = errors.New("queue: invalid model type")
	ErrNoHandler        = errors.New("queue: no handler registered for model type")
	ErrQueueNotIdle     = errors.New("queue: has pending lines")
)
