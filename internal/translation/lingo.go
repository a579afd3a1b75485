package translation

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"
)

const (
	// DefaultLingoEndpoint is the hosted Lingo.dev localization engine.
	DefaultLingoEndpoint = "https://engine.lingo.dev"
	lingoLocalizePath    = "/i18n"
)

// LingoLocalizer calls the Lingo.dev engine. A batch is sent as one localize
// request per target locale, all in flight together; any failure fails the batch.
type LingoLocalizer struct {
	endpointURL string
	apiKey      string
	client      *http.Client
}

func NewLingoLocalizer(endpoint, apiKey string) *LingoLocalizer {
	return &LingoLocalizer{
		endpointURL: localizeURL(normalizeEndpoint(endpoint)),
		apiKey:      strings.TrimSpace(apiKey),
		client: &http.Client{
			Timeout: 60 * time.Second,
		},
	}
}

func (l *LingoLocalizer) Name() string {
	return "lingo"
}

func (l *LingoLocalizer) BatchLocalize(ctx context.Context, text, sourceLocale string, targetLocales []string) ([]string, error) {
	if l == nil {
		return nil, fmt.Errorf("lingo localizer is nil")
	}
	if l.apiKey == "" {
		return nil, newError(KindAuth, "", "lingo", fmt.Errorf("API key is not configured"))
	}
	if strings.TrimSpace(text) == "" {
		return nil, newError(KindInvalidRequest, "", "lingo", fmt.Errorf("text is required"))
	}

	out := make([]string, len(targetLocales))
	g, gctx := errgroup.WithContext(ctx)
	for idx, target := range targetLocales {
		idx := idx
		target := target
		g.Go(func() error {
			translated, err := l.localize(gctx, text, sourceLocale, target)
			if err != nil {
				return err
			}
			out[idx] = translated
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

func (l *LingoLocalizer) localize(ctx context.Context, text, sourceLocale, targetLocale string) (string, error) {
	body, err := json.Marshal(lingoLocalizeRequest{
		Params: lingoParams{Fast: true},
		Locale: lingoLocale{Source: sourceLocale, Target: targetLocale},
		Data:   map[string]string{"text": text},
	})
	if err != nil {
		return "", fmt.Errorf("marshal localize request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, l.endpointURL, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("build localize request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json; charset=utf-8")
	httpReq.Header.Set("Authorization", "Bearer "+l.apiKey)

	resp, err := l.client.Do(httpReq)
	if err != nil {
		return "", newError(KindGeneric, targetLocale, "lingo", fmt.Errorf("send localize request: %w", err))
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", newError(KindGeneric, targetLocale, "lingo", fmt.Errorf("read localize response: %w", err))
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg := strings.TrimSpace(string(respBody))
		var errPayload lingoErrorResponse
		if unmarshalErr := json.Unmarshal(respBody, &errPayload); unmarshalErr == nil && strings.TrimSpace(errPayload.Error) != "" {
			msg = strings.TrimSpace(errPayload.Error)
		}
		return "", newError(kindForStatus(resp.StatusCode), targetLocale, "lingo",
			fmt.Errorf("localize endpoint status %d: %s", resp.StatusCode, msg))
	}

	var parsed lingoLocalizeResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return "", newError(KindNoOutput, targetLocale, "lingo", fmt.Errorf("decode localize response: %w", err))
	}
	translated := strings.TrimSpace(parsed.Data["text"])
	if translated == "" {
		return "", newError(KindNoOutput, targetLocale, "lingo", fmt.Errorf("localize response was empty"))
	}
	return translated, nil
}

type lingoLocalizeRequest struct {
	Params lingoParams       `json:"params"`
	Locale lingoLocale       `json:"locale"`
	Data   map[string]string `json:"data"`
}

type lingoParams struct {
	Fast bool `json:"fast"`
}

type lingoLocale struct {
	Source string `json:"source"`
	Target string `json:"target"`
}

type lingoLocalizeResponse struct {
	Data map[string]string `json:"data"`
}

type lingoErrorResponse struct {
	Error string `json:"error"`
}

// kindForStatus maps hosted API status codes onto error kinds.
func kindForStatus(status int) Kind {
	switch {
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return KindAuth
	case status == http.StatusTooManyRequests:
		return KindRateLimit
	case status == http.StatusRequestTimeout || status == http.StatusGatewayTimeout:
		return KindTimeout
	case status == http.StatusServiceUnavailable:
		return KindUnavailable
	default:
		return KindGeneric
	}
}

func normalizeEndpoint(raw string) string {
	endpoint := strings.TrimSpace(raw)
	if endpoint == "" {
		return DefaultLingoEndpoint
	}
	if !strings.Contains(endpoint, "://") {
		endpoint = "https://" + endpoint
	}

	parsed, err := url.Parse(endpoint)
	if err != nil || strings.TrimSpace(parsed.Host) == "" {
		return DefaultLingoEndpoint
	}
	parsed.Path = strings.TrimRight(parsed.Path, "/")
	return parsed.String()
}

func localizeURL(endpoint string) string {
	parsed, err := url.Parse(endpoint)
	if err != nil || strings.TrimSpace(parsed.Host) == "" {
		return DefaultLingoEndpoint + lingoLocalizePath
	}

	path := strings.TrimRight(parsed.Path, "/")
	if !strings.HasSuffix(path, lingoLocalizePath) {
		path += lingoLocalizePath
	}
	parsed.Path = path
	return parsed.String()
}
