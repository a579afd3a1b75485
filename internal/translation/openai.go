package translation

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/sashabaranov/go-openai"
)

// DefaultOpenAIModel is used when OPENAI_MODEL is unset.
const DefaultOpenAIModel = openai.GPT4oMini

// OpenAILocalizer asks a chat completion model for every target locale in one
// request. Any OpenAI-compatible endpoint works through the base URL.
type OpenAILocalizer struct {
	client *openai.Client
	apiKey string
	model  string
}

func NewOpenAILocalizer(apiKey, model, baseURL string) *OpenAILocalizer {
	cfg := openai.DefaultConfig(strings.TrimSpace(apiKey))
	if trimmed := strings.TrimSpace(baseURL); trimmed != "" {
		cfg.BaseURL = strings.TrimRight(trimmed, "/")
	}
	trimmedModel := strings.TrimSpace(model)
	if trimmedModel == "" {
		trimmedModel = DefaultOpenAIModel
	}
	return &OpenAILocalizer{
		client: openai.NewClientWithConfig(cfg),
		apiKey: strings.TrimSpace(apiKey),
		model:  trimmedModel,
	}
}

func (p *OpenAILocalizer) Name() string {
	return "openai"
}

// ModelName returns the configured model identifier.
func (p *OpenAILocalizer) ModelName() string {
	if p == nil {
		return ""
	}
	return p.model
}

func (p *OpenAILocalizer) BatchLocalize(ctx context.Context, text, sourceLocale string, targetLocales []string) ([]string, error) {
	if p == nil {
		return nil, fmt.Errorf("openai localizer is nil")
	}
	if p.apiKey == "" {
		return nil, newError(KindAuth, "", "openai", fmt.Errorf("OpenAI API key not found"))
	}
	if strings.TrimSpace(text) == "" {
		return nil, newError(KindInvalidRequest, "", "openai", fmt.Errorf("text is required"))
	}

	resp, err := p.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: p.model,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleSystem,
				Content: "You translate short image captions. Keep tone, slang and emoji. Respond with JSON only.",
			},
			{
				Role:    openai.ChatMessageRoleUser,
				Content: buildBatchPrompt(text, sourceLocale, targetLocales),
			},
		},
		Temperature: 0.3,
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
	})
	if err != nil {
		return nil, newError(openAIErrorKind(err), "", "openai", err)
	}
	if len(resp.Choices) == 0 {
		return nil, newError(KindNoOutput, "", "openai", fmt.Errorf("no translation returned"))
	}

	var parsed openAIBatchResponse
	content := strings.TrimSpace(resp.Choices[0].Message.Content)
	if err := json.Unmarshal([]byte(content), &parsed); err != nil {
		return nil, newError(KindNoOutput, "", "openai", fmt.Errorf("decode translations: %w", err))
	}
	if len(parsed.Translations) != len(targetLocales) {
		return nil, newError(KindNoOutput, "", "openai",
			fmt.Errorf("got %d translations for %d locales", len(parsed.Translations), len(targetLocales)))
	}

	out := make([]string, len(parsed.Translations))
	for idx, translated := range parsed.Translations {
		out[idx] = strings.TrimSpace(translated)
		if out[idx] == "" {
			return nil, newError(KindNoOutput, targetLocales[idx], "openai", fmt.Errorf("empty translation"))
		}
	}
	return out, nil
}

type openAIBatchResponse struct {
	Translations []string `json:"translations"`
}

func buildBatchPrompt(text, sourceLocale string, targetLocales []string) string {
	return fmt.Sprintf(
		"Translate the text below from %s into each of these locales, in this exact order: %s.\n"+
			"Return {\"translations\": [...]} with exactly %d strings, one per locale, in the same order.\n\n%s",
		sourceLocale,
		strings.Join(targetLocales, ", "),
		len(targetLocales),
		text,
	)
}

func openAIErrorKind(err error) Kind {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return kindForStatus(apiErr.HTTPStatusCode)
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return kindForStatus(reqErr.HTTPStatusCode)
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return KindTimeout
	}
	return KindGeneric
}
