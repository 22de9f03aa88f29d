package handler

import (
	"strconv"

	"github.com/google/uuid"
)

// parseUUID parses an id from a query or body string
func parseUUID(s string) (uuid.UUID, error) {
	return uuid.Parse(s)
}

// parsePositiveInt parses a positive integer query parameter
func parsePositiveInt(s string) (int, error) {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, err
	}
	if n <= 0 {
		return 0, strconv.ErrRange
	}
	return n, nil
}
