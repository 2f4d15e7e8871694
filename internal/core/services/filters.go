package services

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/glossa-labs/glossa-cli/internal/core/domain"
	"github.com/glossa-labs/glossa-cli/internal/logger"
)

// languageTokens are the query tokens recognised as language filters,
// checked in order. Codes and English names map to the same filter.
var languageTokens = []string{
	"en", "zh", "hi", "bn", "ur",
	"english", "chinese", "hindi", "bengali", "urdu",
}

var (
	pagePattern = regexp.MustCompile(`(?i)\bpage\s+(\d+)\b`)
	docPattern  = regexp.MustCompile(`(?i)\b(?:document|doc)\s+([a-zA-Z0-9_-]+)\b`)
	spaceRuns   = regexp.MustCompile(`\s+`)
)

// languagePatterns holds one word-bounded pattern per recognised token.
var languagePatterns = buildLanguagePatterns()

func buildLanguagePatterns() map[string]*regexp.Regexp {
	patterns := make(map[string]*regexp.Regexp, len(languageTokens))
	for _, tok := range languageTokens {
		patterns[tok] = regexp.MustCompile(`(?i)\b` + tok + `\b`)
	}
	return patterns
}

// FilterExtractor turns free-text hints in a question ("in Bengali
// documents", "on page 5") into a structured Filter. It is pure: no
// I/O, no failure state. Unrecognised phrasing yields an empty filter,
// which is the common case.
type FilterExtractor struct{}

// NewFilterExtractor creates a new filter extractor.
func NewFilterExtractor() *FilterExtractor {
	return &FilterExtractor{}
}

// Extract returns the filter found in the question plus the residual
// query text with filter phrases removed. The residual falls back to
// the original question if stripping leaves nothing to search for.
func (e *FilterExtractor) Extract(question string) (domain.Filter, string) {
	var filter domain.Filter

	if lang, ok := e.extractLanguage(question); ok {
		filter.Language = lang
		logger.Debug("Filter: language=%s", lang)
	}
	if page, ok := e.extractPage(question); ok {
		filter.Page = &page
		logger.Debug("Filter: page=%d", page)
	}
	if docID, ok := e.extractDocument(question); ok {
		filter.DocumentID = docID
		logger.Debug("Filter: document=%s", docID)
	}

	residual := e.cleanQuery(question, filter)
	if residual == "" {
		residual = strings.TrimSpace(question)
	}

	return filter, residual
}

// extractLanguage finds the first language code or name mentioned as a
// standalone word. Word boundaries matter: "documents" must not match
// the code "en".
func (e *FilterExtractor) extractLanguage(question string) (domain.Language, bool) {
	for _, tok := range languageTokens {
		if languagePatterns[tok].MatchString(question) {
			lang, ok := domain.ParseLanguage(tok)
			if ok {
				return lang, true
			}
		}
	}
	return "", false
}

// extractPage finds patterns like "page 5" or "on page 3".
func (e *FilterExtractor) extractPage(question string) (int, bool) {
	m := pagePattern.FindStringSubmatch(question)
	if m == nil {
		return 0, false
	}
	page, err := strconv.Atoi(m[1])
	if err != nil || page <= 0 {
		return 0, false
	}
	return page, true
}

// extractDocument finds patterns like "in document X" or "from doc X".
func (e *FilterExtractor) extractDocument(question string) (string, bool) {
	m := docPattern.FindStringSubmatch(question)
	if m == nil {
		return "", false
	}
	return m[1], true
}

// cleanQuery removes the phrases that produced filter fields so the
// search text carries only the information need.
func (e *FilterExtractor) cleanQuery(question string, filter domain.Filter) string {
	cleaned := question

	if filter.Language != "" {
		for _, tok := range languageTokens {
			cleaned = languagePatterns[tok].ReplaceAllString(cleaned, "")
		}
	}
	if filter.Page != nil {
		cleaned = pagePattern.ReplaceAllString(cleaned, "")
	}
	if filter.DocumentID != "" {
		cleaned = docPattern.ReplaceAllString(cleaned, "")
	}

	return strings.TrimSpace(spaceRuns.ReplaceAllString(cleaned, " "))
}
