package types

import (
	"encoding/json"
	"strings"

	"github.com/alkarmah/storefront/pkg/enums"
)

// LocalizedText maps a language code to its rendition of a string. English
// is the fallback for any missing language.
type LocalizedText map[enums.Language]string

// In returns the text for lang, falling back to English and then to any
// non-empty rendition.
func (t LocalizedText) In(lang enums.Language) string {
	if v := strings.TrimSpace(t[lang]); v != "" {
		return v
	}
	if v := strings.TrimSpace(t[enums.LanguageEnglish]); v != "" {
		return v
	}
	for _, v := range t {
		if s := strings.TrimSpace(v); s != "" {
			return s
		}
	}
	return ""
}

// English is shorthand for In(enums.LanguageEnglish).
func (t LocalizedText) English() string {
	return t.In(enums.LanguageEnglish)
}

// UnmarshalJSON accepts both the object form ({"en": "..", "ar": ".."}) and a
// bare string, which some listing endpoints return for descriptions.
func (t *LocalizedText) UnmarshalJSON(data []byte) error {
	trimmed := strings.TrimSpace(string(data))
	if trimmed == "null" || trimmed == "" {
		*t = LocalizedText{}
		return nil
	}
	if strings.HasPrefix(trimmed, `"`) {
		var plain string
		if err := json.Unmarshal(data, &plain); err != nil {
			return err
		}
		*t = LocalizedText{enums.LanguageEnglish: plain}
		return nil
	}
	raw := map[string]string{}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	out := make(LocalizedText, len(raw))
	for k, v := range raw {
		out[enums.Language(strings.ToLower(k))] = v
	}
	*t = out
	return nil
}
