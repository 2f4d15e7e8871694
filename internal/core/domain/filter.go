package domain

// Filter holds metadata constraints extracted from a question.
// A zero Filter matches every chunk; that is the common case.
type Filter struct {
	// Language restricts results to one corpus language.
	Language Language

	// Page restricts results to chunks starting on this page.
	// Nil means no page constraint.
	Page *int

	// DocumentID restricts results to a single document.
	DocumentID string
}

// IsEmpty returns true if no constraint is set.
func (f Filter) IsEmpty() bool {
	return f.Language == "" && f.Page == nil && f.DocumentID == ""
}

// Matches reports whether a chunk satisfies every set constraint.
// Unset constraints always match.
func (f Filter) Matches(c Chunk) bool {
	if f.Language != "" && c.Language != f.Language {
		return false
	}
	if f.Page != nil && c.Page != *f.Page {
		return false
	}
	if f.DocumentID != "" && c.DocumentID != f.DocumentID {
		return false
	}
	return true
}
