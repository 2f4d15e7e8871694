package domain

import "strings"

// Language is an ISO 639-1 code for one of the supported corpus languages.
type Language string

// Supported languages.
const (
	LanguageEnglish Language = "en"
	LanguageChinese Language = "zh"
	LanguageHindi   Language = "hi"
	LanguageBengali Language = "bn"
	LanguageUrdu    Language = "ur"
)

// IsValid returns true if the language is one of the supported codes.
func (l Language) IsValid() bool {
	switch l {
	case LanguageEnglish, LanguageChinese, LanguageHindi, LanguageBengali, LanguageUrdu:
		return true
	default:
		return false
	}
}

// String returns the ISO code.
func (l Language) String() string {
	return string(l)
}

// Name returns the English name of the language.
func (l Language) Name() string {
	switch l {
	case LanguageEnglish:
		return "English"
	case LanguageChinese:
		return "Chinese"
	case LanguageHindi:
		return "Hindi"
	case LanguageBengali:
		return "Bengali"
	case LanguageUrdu:
		return "Urdu"
	default:
		return unknownDescription
	}
}

// TesseractCode returns the traineddata code used by the OCR engine.
func (l Language) TesseractCode() string {
	switch l {
	case LanguageEnglish:
		return "eng"
	case LanguageChinese:
		return "chi_sim"
	case LanguageHindi:
		return "hin"
	case LanguageBengali:
		return "ben"
	case LanguageUrdu:
		return "urd"
	default:
		return "eng"
	}
}

// AllLanguages returns every supported language.
func AllLanguages() []Language {
	return []Language{
		LanguageEnglish,
		LanguageChinese,
		LanguageHindi,
		LanguageBengali,
		LanguageUrdu,
	}
}

// ParseLanguage resolves an ISO code or an English language name
// ("zh", "Chinese", "chinese") to a Language. The second return is
// false when the input names no supported language.
func ParseLanguage(s string) (Language, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "en", "english":
		return LanguageEnglish, true
	case "zh", "chinese", "mandarin":
		return LanguageChinese, true
	case "hi", "hindi":
		return LanguageHindi, true
	case "bn", "bengali", "bangla":
		return LanguageBengali, true
	case "ur", "urdu":
		return LanguageUrdu, true
	default:
		return "", false
	}
}
