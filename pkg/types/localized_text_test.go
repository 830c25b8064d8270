package types

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/alkarmah/storefront/pkg/enums"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalizedTextFallsBackToEnglish(t *testing.T) {
	text := LocalizedText{enums.LanguageEnglish: "Wheat Straw"}
	assert.Equal(t, "Wheat Straw", text.In(enums.LanguageArabic))

	text[enums.LanguageArabic] = "قش القمح"
	assert.Equal(t, "قش القمح", text.In(enums.LanguageArabic))
}

func TestLocalizedTextDecodesObjectAndString(t *testing.T) {
	var payload struct {
		Name        LocalizedText `json:"name"`
		Description LocalizedText `json:"description"`
		Missing     LocalizedText `json:"missing"`
	}
	body := `{"name":{"en":"Salt Block","AR":"ملح"},"description":"Plain text","missing":null}`
	require.NoError(t, json.Unmarshal([]byte(body), &payload))

	assert.Equal(t, "Salt Block", payload.Name.English())
	assert.Equal(t, "ملح", payload.Name.In(enums.LanguageArabic))
	assert.Equal(t, "Plain text", payload.Description.English())
	assert.Equal(t, "", payload.Missing.English())
}

func TestLocalizeUsesRequestLanguage(t *testing.T) {
	text := LocalizedText{enums.LanguageEnglish: "Barley", enums.LanguageArabic: "شعير"}

	assert.Equal(t, "Barley", text.Localize(context.Background()))
	ctx := WithLanguage(context.Background(), enums.LanguageArabic)
	assert.Equal(t, enums.LanguageArabic, LanguageFromContext(ctx))
	assert.Equal(t, "شعير", text.Localize(ctx))
}
