package persistence

import (
	"errors"
	"strings"

	"gorm.io/gorm"
)

// escapeLikePattern escapes special characters in LIKE patterns
func escapeLikePattern(s string) string {
	s = strings.ReplaceAll(s, "\\", "\\\\")
	s = strings.ReplaceAll(s, "%", "\\%")
	s = strings.ReplaceAll(s, "_", "\\_")
	return s
}

// isDuplicateKey reports whether err is a unique-constraint violation.
// TranslateError maps postgres 23505 to gorm.ErrDuplicatedKey; the
// string check covers drivers that report the violation untranslated.
func isDuplicateKey(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}
