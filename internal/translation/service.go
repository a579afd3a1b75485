package translation

import "context"

// Method names the backend that produced a set of results.
type Method string

const (
	MethodProcess Method = "process"
	MethodAPI     Method = "api"
)

// Result is one translated caption.
type Result struct {
	Lang string `json:"lang"`
	Text string `json:"text"`
}

// Failure records one language the process backend could not translate.
type Failure struct {
	Lang  string `json:"lang"`
	Error string `json:"error"`
	Kind  Kind   `json:"kind"`
}

// BatchOutcome is the best-effort result of translating into many languages.
type BatchOutcome struct {
	Results  []Result
	Failures []Failure
}

// Request describes one caption to translate into several languages.
type Request struct {
	Text      string
	Languages []string
	// Batch overrides the configured batch options when non-nil.
	Batch *BatchOptions
}

// Outcome is what the coordinator returns to callers.
type Outcome struct {
	Results   []Result
	Failures  []Failure
	Method    Method
	ElapsedMs int64
}

// LanguageTranslator translates one caption into one target language.
type LanguageTranslator interface {
	TranslateLanguage(ctx context.Context, caption, targetLang string) (Result, error)
}

// Localizer is a hosted translation API that handles every target locale in a
// single call. The returned strings positionally match targetLocales.
type Localizer interface {
	Name() string
	BatchLocalize(ctx context.Context, text, sourceLocale string, targetLocales []string) ([]string, error)
}
