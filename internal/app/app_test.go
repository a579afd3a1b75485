package app

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/rznies/lingoSir/internal/cli"
	"github.com/rznies/lingoSir/internal/translation"
)

const fakeToolScript = `#!/bin/sh
locale=""
while [ $# -gt 0 ]; do
	case "$1" in
		--locale) locale="$2"; shift 2 ;;
		--version) echo "fake-tool 1.0.0"; exit 0 ;;
		*) shift ;;
	esac
done
printf '{"caption": "%s:%s"}\n' "$locale" "$LINGODOTDEV_API_KEY" > "source.$locale.json"
`

const failingToolScript = `#!/bin/sh
echo "quota exceeded" >&2
exit 3
`

var runtimeEnvKeys = []string{
	cli.EnvFileOverrideVar,
	"ENVIRONMENT", "LOG_LEVEL", "TRANSLATION_MODE", "SOURCE_LOCALE",
	"LINGODOTDEV_API_KEY", "LINGODOTDEV_API_URL", "TRANSLATION_API_PROVIDER",
	"OPENAI_API_KEY", "OPENAI_MODEL", "OPENAI_BASE_URL",
	"CLI_BATCH_SIZE", "CLI_CONCURRENT", "CLI_PIPELINED", "CLI_COMMAND", "CLI_ARGS",
	"CLI_VERSION_ARGS", "CLI_TIMEOUT", "CLI_VERSION_TIMEOUT", "CLI_WORKSPACE_ROOT",
	"DETECT_SOURCE_LANGUAGE",
}

// useFakeTool points the process backend at script and returns the
// workspace root.
func useFakeTool(t *testing.T, script string) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("shell scripts are not supported on windows")
	}
	for _, key := range runtimeEnvKeys {
		t.Setenv(key, "")
		if err := os.Unsetenv(key); err != nil {
			t.Fatalf("unset %s: %v", key, err)
		}
	}

	dir := t.TempDir()
	path := filepath.Join(dir, "fake-tool.sh")
	if err := os.WriteFile(path, []byte(script), 0o755); err != nil {
		t.Fatalf("write script: %v", err)
	}
	root := filepath.Join(dir, "workspaces")
	if err := os.Mkdir(root, 0o755); err != nil {
		t.Fatalf("create workspace root: %v", err)
	}

	t.Setenv("ENVIRONMENT", "test")
	t.Setenv("LOG_LEVEL", "disabled")
	t.Setenv("TRANSLATION_MODE", "cli")
	t.Setenv("LINGODOTDEV_API_KEY", "k")
	t.Setenv("CLI_COMMAND", path)
	t.Setenv("CLI_ARGS", "i18n")
	t.Setenv("CLI_VERSION_ARGS", "--version")
	t.Setenv("CLI_WORKSPACE_ROOT", root)
	return root
}

func missingEnvFile(t *testing.T) string {
	t.Helper()
	return filepath.Join(t.TempDir(), "missing.env")
}

func TestRun_TranslateWithProcessBackend(t *testing.T) {
	root := useFakeTool(t, fakeToolScript)

	var stdout, stderr bytes.Buffer
	code := run([]string{"translate", "Hello", "--lang", "es,fr, de", "--json", "--env", missingEnvFile(t)}, &stdout, &stderr)
	if code != 0 {
		t.Fatalf("unexpected exit code %d: %s", code, stderr.String())
	}

	var out translateOutput
	if err := json.Unmarshal(stdout.Bytes(), &out); err != nil {
		t.Fatalf("decode output %q: %v", stdout.String(), err)
	}
	if out.Method != translation.MethodProcess || out.OriginalCaption != "Hello" {
		t.Fatalf("unexpected output: %+v", out)
	}
	want := []translation.Result{{Lang: "es", Text: "es:k"}, {Lang: "fr", Text: "fr:k"}, {Lang: "de", Text: "de:k"}}
	if len(out.Translations) != len(want) {
		t.Fatalf("unexpected translations: %+v", out.Translations)
	}
	for idx := range want {
		if out.Translations[idx] != want[idx] {
			t.Fatalf("translation %d: got %+v want %+v", idx, out.Translations[idx], want[idx])
		}
	}

	entries, err := os.ReadDir(root)
	if err != nil {
		t.Fatalf("read workspace root: %v", err)
	}
	if len(entries) != 0 {
		t.Fatalf("expected workspaces to be removed, found %d", len(entries))
	}
}

func TestRun_TranslateTextOutput(t *testing.T) {
	useFakeTool(t, fakeToolScript)

	var stdout, stderr bytes.Buffer
	code := run([]string{"translate", "Hello", "-l", "ja", "--batch-size", "1", "--concurrent=false", "--env", missingEnvFile(t)}, &stdout, &stderr)
	if code != 0 {
		t.Fatalf("unexpected exit code %d: %s", code, stderr.String())
	}
	for _, want := range []string{"method=process", "translated=1/1", "ja: ja:k"} {
		if !strings.Contains(stdout.String(), want) {
			t.Fatalf("expected %q in %q", want, stdout.String())
		}
	}
}

func TestRun_TranslateAllFailedIsRuntimeError(t *testing.T) {
	useFakeTool(t, failingToolScript)

	var stdout, stderr bytes.Buffer
	code := run([]string{"translate", "Hello", "--lang", "es", "--env", missingEnvFile(t)}, &stdout, &stderr)
	if code != 1 {
		t.Fatalf("expected exit code 1, got %d (%s)", code, stderr.String())
	}
	if !strings.Contains(stderr.String(), string(translation.KindAllFailed)) {
		t.Fatalf("expected failure kind in %q", stderr.String())
	}
}

func TestRun_Check(t *testing.T) {
	useFakeTool(t, fakeToolScript)

	var stdout, stderr bytes.Buffer
	if code := run([]string{"check", "--env", missingEnvFile(t)}, &stdout, &stderr); code != 0 {
		t.Fatalf("unexpected exit code %d: %s", code, stderr.String())
	}
	if !strings.Contains(stdout.String(), "translation tool available") {
		t.Fatalf("unexpected output: %q", stdout.String())
	}

	t.Setenv("CLI_COMMAND", filepath.Join(t.TempDir(), "does-not-exist"))
	stdout.Reset()
	stderr.Reset()
	if code := run([]string{"check", "--env", missingEnvFile(t)}, &stdout, &stderr); code != 1 {
		t.Fatalf("expected exit code 1 for a missing tool, got %d", code)
	}
}

func TestRun_UsageErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		args []string
	}{
		{name: "unknown command", args: []string{"frobnicate"}},
		{name: "missing caption", args: []string{"translate", "--lang", "es"}},
		{name: "missing lang", args: []string{"translate", "Hello"}},
		{name: "blank lang", args: []string{"translate", "Hello", "--lang", " , "}},
		{name: "bad mode", args: []string{"translate", "Hello", "--lang", "es", "--mode", "pigeon"}},
		{name: "bad batch size", args: []string{"translate", "Hello", "--lang", "es", "--batch-size", "0"}},
		{name: "unknown flag", args: []string{"languages", "--nope"}},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			var stdout, stderr bytes.Buffer
			args := append(tc.args, "--env", missingEnvFile(t))
			if code := run(args, &stdout, &stderr); code != 2 {
				t.Fatalf("expected exit code 2, got %d (%s)", code, stderr.String())
			}
			if !strings.Contains(stderr.String(), "--help") {
				t.Fatalf("expected a usage hint, got %q", stderr.String())
			}
		})
	}
}

func TestRun_Help(t *testing.T) {
	t.Parallel()

	var stdout, stderr bytes.Buffer
	if code := run([]string{"--help"}, &stdout, &stderr); code != 0 {
		t.Fatalf("unexpected exit code %d", code)
	}
	for _, want := range []string{"serve", "translate", "check", "languages", "--env"} {
		if !strings.Contains(stdout.String(), want) {
			t.Fatalf("expected %q in help output", want)
		}
	}
}

func TestRun_Languages(t *testing.T) {
	t.Parallel()

	var stdout, stderr bytes.Buffer
	if code := run([]string{"languages", "--env", missingEnvFile(t)}, &stdout, &stderr); code != 0 {
		t.Fatalf("unexpected exit code %d: %s", code, stderr.String())
	}
	lines := strings.Split(strings.TrimSpace(stdout.String()), "\n")
	if len(lines) != 12 || !strings.HasPrefix(lines[0], "es") || !strings.Contains(lines[0], "Spanish") {
		t.Fatalf("unexpected languages output: %q", stdout.String())
	}

	stdout.Reset()
	if code := run([]string{"languages", "--json", "--env", missingEnvFile(t)}, &stdout, &stderr); code != 0 {
		t.Fatalf("unexpected exit code %d", code)
	}
	var body struct {
		Supported []translation.LanguageOption `json:"supported"`
		Count     int                          `json:"count"`
	}
	if err := json.Unmarshal(stdout.Bytes(), &body); err != nil {
		t.Fatalf("decode languages: %v", err)
	}
	if body.Count != 12 || len(body.Supported) != 12 || body.Supported[11].Code != "tr" {
		t.Fatalf("unexpected languages: %+v", body)
	}
}

func TestOrderResults(t *testing.T) {
	t.Parallel()

	results := []translation.Result{
		{Lang: "de", Text: "Hallo"},
		{Lang: "es", Text: "Hola"},
		{Lang: "es", Text: "Hola"},
		{Lang: "fr", Text: "Bonjour"},
	}
	got := orderResults(results, []string{"ES", "fr", "de", "es"})
	var langs []string
	for _, r := range got {
		langs = append(langs, r.Lang)
	}
	if strings.Join(langs, ",") != "es,es,fr,de" {
		t.Fatalf("unexpected order: %v", langs)
	}
	if results[0].Lang != "de" {
		t.Fatalf("input slice must not be reordered")
	}
}
