package middleware

import (
	"net/http"
	"strings"

	"github.com/alkarmah/storefront/pkg/enums"
	"github.com/alkarmah/storefront/pkg/logger"
	"github.com/alkarmah/storefront/pkg/types"
)

// Language picks the display language for localized product text from the
// first Accept-Language entry, falling back to the configured language.
func Language(fallback enums.Language, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			lang := fallback
			if preferred := firstLanguageTag(r.Header.Get("Accept-Language")); preferred != "" {
				lang = enums.ParseLanguage(preferred)
			}
			ctx := types.WithLanguage(r.Context(), lang)
			if logg != nil {
				ctx = logg.WithField(ctx, "lang", string(lang))
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func firstLanguageTag(header string) string {
	first, _, _ := strings.Cut(header, ",")
	tag, _, _ := strings.Cut(first, ";")
	tag = strings.TrimSpace(tag)
	if tag == "*" {
		return ""
	}
	return tag
}
