package translation

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
)

const (
	workspacePrefix    = "lingo-cli-"
	sourceFileBaseName = "source"
	configFileName     = "i18n.json"
	captionField       = "caption"
	i18nSchemaURL      = "https://cdn.lingo.dev/schema/v1/i18n.json"
	credentialProvider = "lingo.dev"
)

// Workspace is one isolated directory owned by a single per-language attempt.
type Workspace struct {
	Dir          string
	SourceLocale string
}

// SourcePath is the caption document written before the tool runs.
func (w *Workspace) SourcePath() string {
	return filepath.Join(w.Dir, sourceFileName(w.SourceLocale))
}

// OutputPath is where the tool writes the translation for targetLocale.
func (w *Workspace) OutputPath(targetLocale string) string {
	return filepath.Join(w.Dir, sourceFileName(targetLocale))
}

func (w *Workspace) ConfigPath() string {
	return filepath.Join(w.Dir, configFileName)
}

// WriteSource writes the caption document keyed by the caption field.
func (w *Workspace) WriteSource(caption string) error {
	return writeJSONFile(w.SourcePath(), map[string]string{captionField: caption})
}

// WriteConfig writes the tool configuration for one target locale.
func (w *Workspace) WriteConfig(targetLocale, apiKey string) error {
	cfg := i18nConfig{
		Schema: i18nSchemaURL,
		Locale: i18nLocale{
			Source:  w.SourceLocale,
			Targets: []string{targetLocale},
		},
		Files: map[string]struct{}{"*.json": {}},
	}
	if key := strings.TrimSpace(apiKey); key != "" {
		cfg.Provider = &i18nProvider{ID: credentialProvider, APIKey: key}
	}
	return writeJSONFile(w.ConfigPath(), cfg)
}

// ReadTranslation extracts the caption field from the tool's output document.
func (w *Workspace) ReadTranslation(targetLocale string) (string, error) {
	raw, err := os.ReadFile(w.OutputPath(targetLocale))
	if err != nil {
		return "", fmt.Errorf("read output: %w", err)
	}

	var doc map[string]any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return "", fmt.Errorf("decode output: %w", err)
	}
	text, _ := doc[captionField].(string)
	if strings.TrimSpace(text) == "" {
		return "", fmt.Errorf("output is missing %q", captionField)
	}
	return text, nil
}

type i18nConfig struct {
	Schema   string              `json:"$schema"`
	Locale   i18nLocale          `json:"locale"`
	Files    map[string]struct{} `json:"files"`
	Provider *i18nProvider       `json:"provider,omitempty"`
}

type i18nLocale struct {
	Source  string   `json:"source"`
	Targets []string `json:"targets"`
}

type i18nProvider struct {
	ID     string `json:"id"`
	APIKey string `json:"apiKey"`
}

// WorkspaceManager creates and removes workspaces under a shared root.
type WorkspaceManager struct {
	root         string
	sourceLocale string
	logger       zerolog.Logger
	removeAll    func(string) error
}

func NewWorkspaceManager(root, sourceLocale string, logger zerolog.Logger) *WorkspaceManager {
	root = strings.TrimSpace(root)
	if root == "" {
		root = os.TempDir()
	}
	sourceLocale = normalizeLangCode(sourceLocale)
	if sourceLocale == "" {
		sourceLocale = DefaultSourceLocale
	}
	return &WorkspaceManager{
		root:         root,
		sourceLocale: sourceLocale,
		logger:       logger,
		removeAll:    os.RemoveAll,
	}
}

// Acquire creates a fresh, uniquely named directory.
func (m *WorkspaceManager) Acquire() (*Workspace, error) {
	dir, err := os.MkdirTemp(m.root, workspacePrefix+"*")
	if err != nil {
		return nil, newError(KindWorkspace, "", "create workspace", err)
	}
	return &Workspace{Dir: dir, SourceLocale: m.sourceLocale}, nil
}

// Release removes the workspace. Failures are logged and never returned.
func (m *WorkspaceManager) Release(ws *Workspace) {
	if ws == nil || ws.Dir == "" {
		return
	}
	if err := m.removeAll(ws.Dir); err != nil {
		m.logger.Warn().Err(err).Str("workspace", ws.Dir).Msg("failed to clean up workspace")
	}
}

// With runs fn inside a fresh workspace and releases it on every exit path.
func (m *WorkspaceManager) With(ctx context.Context, fn func(context.Context, *Workspace) error) error {
	ws, err := m.Acquire()
	if err != nil {
		return err
	}
	defer m.Release(ws)

	return fn(ctx, ws)
}

func sourceFileName(locale string) string {
	return sourceFileBaseName + "." + locale + ".json"
}

func writeJSONFile(path string, value any) error {
	body, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal %s: %w", filepath.Base(path), err)
	}
	if err := os.WriteFile(path, body, 0o600); err != nil {
		return fmt.Errorf("write %s: %w", filepath.Base(path), err)
	}
	return nil
}
