package mirror

// LocalizedText carries a bilingual remote field. Primary is the
// storefront language (Arabic on Zid), Secondary the alternate.
type LocalizedText struct {
	Primary   string
	Secondary string
}

// Resolve returns the first non-empty variant, or fallback when both
// are empty.
func (t LocalizedText) Resolve(fallback string) string {
	if t.Primary != "" {
		return t.Primary
	}
	if t.Secondary != "" {
		return t.Secondary
	}
	return fallback
}

// IsEmpty reports whether neither variant is set
func (t LocalizedText) IsEmpty() bool {
	return t.Primary == "" && t.Secondary == ""
}
