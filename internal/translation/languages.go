package translation

import (
	"fmt"
	"slices"
	"strings"

	"github.com/rznies/lingoSir/internal/language"
)

// DefaultSourceLocale is the locale captions are written in unless configured otherwise.
const DefaultSourceLocale = "en"

type LanguageOption struct {
	Code   string `json:"code"`
	Label  string `json:"label"`
	Native string `json:"native,omitempty"`
}

type languageLabel struct {
	english string
	native  string
}

var supportedLanguageLabels = map[string]languageLabel{
	"es": {english: "Spanish", native: "Español"},
	"fr": {english: "French", native: "Français"},
	"de": {english: "German", native: "Deutsch"},
	"it": {english: "Italian", native: "Italiano"},
	"pt": {english: "Portuguese", native: "Português"},
	"ja": {english: "Japanese", native: "日本語"},
	"ko": {english: "Korean", native: "한국어"},
	"zh": {english: "Chinese", native: "中文"},
	"ar": {english: "Arabic", native: "العربية"},
	"hi": {english: "Hindi", native: "हिन्दी"},
	"ru": {english: "Russian", native: "Русский"},
	"tr": {english: "Turkish", native: "Türkçe"},
}

// supportedOrder keeps the published order stable for API listings.
var supportedOrder = []string{"es", "fr", "de", "it", "pt", "ja", "ko", "zh", "ar", "hi", "ru", "tr"}

func SupportedLanguageCodes() []string {
	return slices.Clone(supportedOrder)
}

func IsSupportedLanguage(code string) bool {
	_, ok := supportedLanguageLabels[code]
	return ok
}

func SupportedLanguageOptions() []LanguageOption {
	options := make([]LanguageOption, 0, len(supportedOrder))
	for _, code := range supportedOrder {
		labels := supportedLanguageLabels[code]
		options = append(options, LanguageOption{
			Code:   code,
			Label:  labels.english,
			Native: labels.native,
		})
	}
	return options
}

// NormalizeLanguages lowercases and trims every code, preserving order and
// duplicates. Unsupported codes are reported together in one error.
func NormalizeLanguages(raw []string) ([]string, error) {
	if len(raw) == 0 {
		return nil, newError(KindInvalidRequest, "", "validate request", fmt.Errorf("languages must be a non-empty list"))
	}

	normalized := make([]string, 0, len(raw))
	var unsupported []string
	for _, code := range raw {
		lang := normalizeLangCode(code)
		if !IsSupportedLanguage(lang) {
			unsupported = append(unsupported, strings.TrimSpace(code))
			continue
		}
		normalized = append(normalized, lang)
	}

	if len(unsupported) > 0 {
		return nil, newError(KindInvalidRequest, "", "validate request",
			fmt.Errorf("unsupported languages: %s", strings.Join(unsupported, ", ")))
	}
	return normalized, nil
}

func normalizeLangCode(raw string) string {
	return language.NormalizeTag(raw)
}
