package translation

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"slices"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/rznies/lingoSir/internal/globaltime"
)

const (
	// DefaultProcessTimeout bounds a single per-language tool invocation.
	DefaultProcessTimeout = 30 * time.Second
	// DefaultVersionTimeout bounds the availability check.
	DefaultVersionTimeout = 10 * time.Second
	// CredentialEnvVar is injected into the tool's environment.
	CredentialEnvVar = "LINGODOTDEV_API_KEY"
)

var (
	DefaultProcessCommand = []string{"npx", "lingo.dev@latest", "i18n"}
	DefaultVersionCommand = []string{"npx", "lingo.dev@latest", "--version"}
)

// processWaitDelay caps how long Wait blocks on inherited pipes after a kill.
const processWaitDelay = 2 * time.Second

// ProcessOptions configures the external translation tool.
type ProcessOptions struct {
	// Command is the executable followed by its fixed arguments. The target
	// locale is appended as "--locale <code>".
	Command []string
	// VersionCommand is the full availability check. When empty it defaults
	// to DefaultVersionCommand for the default tool and to
	// "<executable> --version" otherwise.
	VersionCommand []string
	APIKey         string
	Timeout        time.Duration
	VersionTimeout time.Duration
}

// ProcessTranslator translates one caption into one language by running the
// external tool inside a dedicated workspace.
type ProcessTranslator struct {
	command        []string
	versionCommand []string
	apiKey         string
	timeout        time.Duration
	versionTimeout time.Duration
	workspaces     *WorkspaceManager
	logger         zerolog.Logger
}

func NewProcessTranslator(workspaces *WorkspaceManager, opts ProcessOptions, logger zerolog.Logger) (*ProcessTranslator, error) {
	if workspaces == nil {
		return nil, fmt.Errorf("workspace manager is nil")
	}

	command := compactArgs(opts.Command)
	versionCommand := compactArgs(opts.VersionCommand)
	switch {
	case len(command) == 0:
		command = slices.Clone(DefaultProcessCommand)
		if len(versionCommand) == 0 {
			versionCommand = slices.Clone(DefaultVersionCommand)
		}
	case len(versionCommand) == 0:
		versionCommand = []string{command[0], "--version"}
	}

	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = DefaultProcessTimeout
	}
	versionTimeout := opts.VersionTimeout
	if versionTimeout <= 0 {
		versionTimeout = DefaultVersionTimeout
	}

	return &ProcessTranslator{
		command:        command,
		versionCommand: versionCommand,
		apiKey:         strings.TrimSpace(opts.APIKey),
		timeout:        timeout,
		versionTimeout: versionTimeout,
		workspaces:     workspaces,
		logger:         logger,
	}, nil
}

// TranslateLanguage runs one tool invocation for targetLang. The workspace is
// released on every exit path.
func (p *ProcessTranslator) TranslateLanguage(ctx context.Context, caption, targetLang string) (Result, error) {
	var result Result
	err := p.workspaces.With(ctx, func(ctx context.Context, ws *Workspace) error {
		if err := ws.WriteSource(caption); err != nil {
			return newError(KindWorkspace, targetLang, "write source", err)
		}
		if err := ws.WriteConfig(targetLang, p.apiKey); err != nil {
			return newError(KindWorkspace, targetLang, "write config", err)
		}

		if err := p.run(ctx, ws, targetLang); err != nil {
			return err
		}

		text, err := ws.ReadTranslation(targetLang)
		if err != nil {
			return newError(KindNoOutput, targetLang, "no translation output", err)
		}
		result = Result{Lang: targetLang, Text: text}
		return nil
	})
	if err != nil {
		var te *Error
		if errors.As(err, &te) && te.Lang == "" {
			te.Lang = targetLang
		}
		return Result{}, err
	}
	return result, nil
}

func (p *ProcessTranslator) run(ctx context.Context, ws *Workspace, targetLang string) error {
	runCtx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	args := append(p.command[1:len(p.command):len(p.command)], "--locale", targetLang)
	cmd := exec.CommandContext(runCtx, p.command[0], args...)
	cmd.Dir = ws.Dir
	cmd.Env = append(os.Environ(), CredentialEnvVar+"="+p.apiKey)
	cmd.WaitDelay = processWaitDelay
	configureProcessGroup(cmd)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	logger := p.logger.With().Str("lang", targetLang).Str("workspace", ws.Dir).Logger()
	logger.Debug().Strs("command", p.command).Msg("executing translation tool")

	started := globaltime.Now()
	err := cmd.Run()
	elapsed := globaltime.Since(started)

	if out := strings.TrimSpace(stdout.String()); out != "" {
		logger.Debug().Str("stdout", out).Msg("translation tool output")
	}

	if err != nil {
		if errors.Is(runCtx.Err(), context.DeadlineExceeded) && ctx.Err() == nil {
			logger.Warn().Dur("elapsed", elapsed).Dur("timeout", p.timeout).Msg("translation tool timed out")
			return &Error{
				Kind:   KindTimeout,
				Lang:   targetLang,
				Op:     "translation timed out",
				Stderr: stderr.String(),
				Err:    fmt.Errorf("exceeded %s", p.timeout),
			}
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return newError(KindExecution, targetLang, "translation cancelled", ctxErr)
		}

		logger.Warn().Err(err).Dur("elapsed", elapsed).Str("stderr", strings.TrimSpace(stderr.String())).Msg("translation tool failed")
		return &Error{
			Kind:   KindExecution,
			Lang:   targetLang,
			Op:     "translation tool failed",
			Stderr: stderr.String(),
			Err:    err,
		}
	}

	if errOut := strings.TrimSpace(stderr.String()); errOut != "" {
		logger.Warn().Str("stderr", errOut).Msg("translation tool wrote to stderr")
	}
	logger.Info().Dur("elapsed", elapsed).Msg("translation tool completed")
	return nil
}

// CheckAvailability queries the tool with a version query. It never fails;
// problems are logged and reported as false.
func (p *ProcessTranslator) CheckAvailability(ctx context.Context) bool {
	checkCtx, cancel := context.WithTimeout(ctx, p.versionTimeout)
	defer cancel()

	cmd := exec.CommandContext(checkCtx, p.versionCommand[0], p.versionCommand[1:]...)
	cmd.WaitDelay = processWaitDelay
	configureProcessGroup(cmd)
	out, err := cmd.Output()
	if err != nil {
		p.logger.Warn().Err(err).Strs("command", p.versionCommand).Msg("translation tool is not available")
		return false
	}

	p.logger.Info().Str("version", strings.TrimSpace(string(out))).Msg("translation tool available")
	return true
}

func compactArgs(raw []string) []string {
	out := make([]string, 0, len(raw))
	for _, part := range raw {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
