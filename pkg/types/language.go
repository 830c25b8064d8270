package types

import (
	"context"

	"github.com/alkarmah/storefront/pkg/enums"
)

type languageKey struct{}

// WithLanguage records the display language chosen for the request.
func WithLanguage(ctx context.Context, lang enums.Language) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, languageKey{}, lang)
}

// LanguageFromContext returns the request's display language, English when
// none was chosen.
func LanguageFromContext(ctx context.Context) enums.Language {
	if ctx == nil {
		return enums.LanguageEnglish
	}
	if lang, ok := ctx.Value(languageKey{}).(enums.Language); ok && lang != "" {
		return lang
	}
	return enums.LanguageEnglish
}

// Localize resolves t in the request's display language.
func (t LocalizedText) Localize(ctx context.Context) string {
	return t.In(LanguageFromContext(ctx))
}
