package enums

import "strings"

// Language is a content language code used by localized product text.
type Language string

const (
	LanguageEnglish Language = "en"
	LanguageArabic  Language = "ar"
)

// ParseLanguage maps free-form input onto a supported language, defaulting to
// English. Region subtags are ignored, so "ar-QA" is Arabic.
func ParseLanguage(value string) Language {
	value = strings.ToLower(strings.TrimSpace(value))
	if i := strings.IndexAny(value, "-_"); i > 0 {
		value = value[:i]
	}
	switch value {
	case "ar", "arabic":
		return LanguageArabic
	default:
		return LanguageEnglish
	}
}
