package connector

import "errors"

var (
	ErrConnectorNotFound = errors.New("connector: not found")
	ErrNameRequired      = errors.New("connector: name is required")
	ErrStoreIDRequired   = errors.New("connector: store id is required")
	ErrStoreIDTaken      = errors.New("connector: store id already linked")
	ErrTokenRequired     = errors.New("connector: access token is required")
	ErrNotConnected      = errors.New("connector: store is not connected")
	ErrImportInProgress  = errors.New("connector: import already in progress")
)
