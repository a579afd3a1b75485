package translation

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

// fakeToolScript mimics the CLI contract: it reads --locale, checks that both
// workspace artifacts exist and writes source.<locale>.json.
const fakeToolScript = `#!/bin/sh
locale=""
while [ $# -gt 0 ]; do
	case "$1" in
		--locale) locale="$2"; shift 2 ;;
		--version) echo "fake-tool 1.0.0"; exit 0 ;;
		*) shift ;;
	esac
done
[ -f i18n.json ] || { echo "missing i18n.json" >&2; exit 7; }
[ -f source.en.json ] || { echo "missing source.en.json" >&2; exit 8; }
pwd >> "$WORKSPACE_LOG"
printf '{"caption": "%s:%s"}\n' "$locale" "$LINGODOTDEV_API_KEY" > "source.$locale.json"
`

func writeScript(t *testing.T, body string) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("shell scripts are not supported on windows")
	}
	path := filepath.Join(t.TempDir(), "fake-tool.sh")
	if err := os.WriteFile(path, []byte(body), 0o755); err != nil {
		t.Fatalf("write script: %v", err)
	}
	return path
}

func newTestProcessTranslator(t *testing.T, script string, timeout time.Duration) (*ProcessTranslator, string) {
	t.Helper()
	root := t.TempDir()
	manager := NewWorkspaceManager(root, "en", zerolog.Nop())
	translator, err := NewProcessTranslator(manager, ProcessOptions{
		Command: []string{script},
		APIKey:  "secret-key",
		Timeout: timeout,
	}, zerolog.Nop())
	if err != nil {
		t.Fatalf("new process translator: %v", err)
	}
	return translator, root
}

func assertNoWorkspacesLeft(t *testing.T, root string) {
	t.Helper()
	entries, err := os.ReadDir(root)
	if err != nil {
		t.Fatalf("read workspace root: %v", err)
	}
	if len(entries) != 0 {
		t.Fatalf("expected every workspace to be released, found %d entries", len(entries))
	}
}

func TestProcessTranslator_TranslatesAndReleasesWorkspace(t *testing.T) {
	script := writeScript(t, fakeToolScript)
	t.Setenv("WORKSPACE_LOG", filepath.Join(t.TempDir(), "workspaces.log"))

	translator, root := newTestProcessTranslator(t, script, 5*time.Second)

	result, err := translator.TranslateLanguage(context.Background(), "Stackoverflow saving my project again", "es")
	if err != nil {
		t.Fatalf("translate: %v", err)
	}
	if result.Lang != "es" {
		t.Fatalf("unexpected lang: %q", result.Lang)
	}
	if result.Text != "es:secret-key" {
		t.Fatalf("unexpected text (credential not injected?): %q", result.Text)
	}
	assertNoWorkspacesLeft(t, root)
}

func TestProcessTranslator_UsesDistinctWorkspaces(t *testing.T) {
	script := writeScript(t, fakeToolScript)
	logPath := filepath.Join(t.TempDir(), "workspaces.log")
	t.Setenv("WORKSPACE_LOG", logPath)

	translator, _ := newTestProcessTranslator(t, script, 5*time.Second)
	for _, lang := range []string{"fr", "fr"} {
		if _, err := translator.TranslateLanguage(context.Background(), "hello", lang); err != nil {
			t.Fatalf("translate %s: %v", lang, err)
		}
	}

	raw, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	dirs := strings.Fields(string(raw))
	if len(dirs) != 2 || dirs[0] == dirs[1] {
		t.Fatalf("expected two distinct workspaces, got %v", dirs)
	}
}

func TestProcessTranslator_NonZeroExit(t *testing.T) {
	script := writeScript(t, "#!/bin/sh\necho 'quota exhausted' >&2\nexit 3\n")
	translator, root := newTestProcessTranslator(t, script, 5*time.Second)

	_, err := translator.TranslateLanguage(context.Background(), "hello", "de")
	if !errors.Is(err, ErrProcessExecution) {
		t.Fatalf("expected process execution error, got %v", err)
	}
	var te *Error
	if !errors.As(err, &te) {
		t.Fatalf("expected *Error, got %T", err)
	}
	if te.Lang != "de" {
		t.Fatalf("expected language on error, got %q", te.Lang)
	}
	if !strings.Contains(te.Stderr, "quota exhausted") {
		t.Fatalf("expected captured stderr, got %q", te.Stderr)
	}
	assertNoWorkspacesLeft(t, root)
}

func TestProcessTranslator_MissingOutput(t *testing.T) {
	script := writeScript(t, "#!/bin/sh\nexit 0\n")
	translator, root := newTestProcessTranslator(t, script, 5*time.Second)

	_, err := translator.TranslateLanguage(context.Background(), "hello", "it")
	if !errors.Is(err, ErrNoTranslationOutput) {
		t.Fatalf("expected no output error, got %v", err)
	}
	if KindOf(err) != KindNoOutput {
		t.Fatalf("unexpected kind: %s", KindOf(err))
	}
	assertNoWorkspacesLeft(t, root)
}

func TestProcessTranslator_OutputMissingField(t *testing.T) {
	script := writeScript(t, "#!/bin/sh\necho '{\"title\": \"x\"}' > source.ja.json\n")
	translator, _ := newTestProcessTranslator(t, script, 5*time.Second)

	_, err := translator.TranslateLanguage(context.Background(), "hello", "ja")
	if !errors.Is(err, ErrNoTranslationOutput) {
		t.Fatalf("expected no output error, got %v", err)
	}
}

func TestProcessTranslator_Timeout(t *testing.T) {
	script := writeScript(t, "#!/bin/sh\nsleep 5\n")
	translator, root := newTestProcessTranslator(t, script, 200*time.Millisecond)

	started := time.Now()
	_, err := translator.TranslateLanguage(context.Background(), "hello", "ko")
	if !errors.Is(err, ErrTranslationTimeout) {
		t.Fatalf("expected timeout error, got %v", err)
	}
	if elapsed := time.Since(started); elapsed > 4*time.Second {
		t.Fatalf("process was not killed on timeout, took %s", elapsed)
	}
	assertNoWorkspacesLeft(t, root)
}

func TestProcessTranslator_WorkspaceCreationFailure(t *testing.T) {
	script := writeScript(t, fakeToolScript)
	manager := NewWorkspaceManager(filepath.Join(t.TempDir(), "missing", "root"), "en", zerolog.Nop())
	translator, err := NewProcessTranslator(manager, ProcessOptions{Command: []string{script}}, zerolog.Nop())
	if err != nil {
		t.Fatalf("new process translator: %v", err)
	}

	_, err = translator.TranslateLanguage(context.Background(), "hello", "pt")
	if !errors.Is(err, ErrWorkspaceCreation) {
		t.Fatalf("expected workspace creation error, got %v", err)
	}
	var te *Error
	if errors.As(err, &te) && te.Lang != "pt" {
		t.Fatalf("expected language on error, got %q", te.Lang)
	}
}

func TestProcessTranslator_CheckAvailability(t *testing.T) {
	script := writeScript(t, fakeToolScript)
	translator, root := newTestProcessTranslator(t, script, time.Second)

	for i := 0; i < 3; i++ {
		if !translator.CheckAvailability(context.Background()) {
			t.Fatalf("expected tool to be available")
		}
	}
	assertNoWorkspacesLeft(t, root)

	missing, err := NewProcessTranslator(NewWorkspaceManager(t.TempDir(), "en", zerolog.Nop()), ProcessOptions{
		Command: []string{filepath.Join(t.TempDir(), "does-not-exist")},
	}, zerolog.Nop())
	if err != nil {
		t.Fatalf("new process translator: %v", err)
	}
	if missing.CheckAvailability(context.Background()) {
		t.Fatalf("expected missing tool to be unavailable")
	}
}

func TestNewProcessTranslator_Defaults(t *testing.T) {
	t.Parallel()

	translator, err := NewProcessTranslator(NewWorkspaceManager(t.TempDir(), "", zerolog.Nop()), ProcessOptions{}, zerolog.Nop())
	if err != nil {
		t.Fatalf("new process translator: %v", err)
	}
	if strings.Join(translator.command, " ") != "npx lingo.dev@latest i18n" {
		t.Fatalf("unexpected default command: %v", translator.command)
	}
	if strings.Join(translator.versionCommand, " ") != "npx lingo.dev@latest --version" {
		t.Fatalf("unexpected default version command: %v", translator.versionCommand)
	}
	if translator.timeout != DefaultProcessTimeout || translator.versionTimeout != DefaultVersionTimeout {
		t.Fatalf("unexpected default timeouts: %s %s", translator.timeout, translator.versionTimeout)
	}

	if _, err := NewProcessTranslator(nil, ProcessOptions{}, zerolog.Nop()); err == nil {
		t.Fatalf("expected error for nil workspace manager")
	}
}
