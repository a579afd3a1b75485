package translation

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
)

// APITranslator serves every requested language with a single hosted call.
// It is all-or-nothing: any error aborts the whole batch.
type APITranslator struct {
	localizer    Localizer
	sourceLocale string
	logger       zerolog.Logger
}

func NewAPITranslator(localizer Localizer, sourceLocale string, logger zerolog.Logger) *APITranslator {
	sourceLocale = normalizeLangCode(sourceLocale)
	if sourceLocale == "" {
		sourceLocale = DefaultSourceLocale
	}
	return &APITranslator{localizer: localizer, sourceLocale: sourceLocale, logger: logger}
}

func (a *APITranslator) Name() string {
	if a == nil || a.localizer == nil {
		return ""
	}
	return a.localizer.Name()
}

// Translate zips the positional response back onto the requested order.
func (a *APITranslator) Translate(ctx context.Context, caption string, languages []string) ([]Result, error) {
	if a == nil || a.localizer == nil {
		return nil, newError(KindNoMethod, "", "api backend", fmt.Errorf("no localizer configured"))
	}

	texts, err := a.localizer.BatchLocalize(ctx, caption, a.sourceLocale, languages)
	if err != nil {
		return nil, err
	}
	if len(texts) != len(languages) {
		return nil, newError(KindNoOutput, "", "api backend",
			fmt.Errorf("%s returned %d translations for %d languages", a.localizer.Name(), len(texts), len(languages)))
	}

	results := make([]Result, len(languages))
	for idx, lang := range languages {
		results[idx] = Result{Lang: lang, Text: texts[idx]}
	}

	a.logger.Debug().Str("provider", a.localizer.Name()).Int("count", len(results)).Msg("api translation complete")
	return results, nil
}
