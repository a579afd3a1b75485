package translation

import (
	"errors"
	"fmt"
	"strings"
)

// Kind tags a translation failure at the point where it happens so callers
// can classify it without inspecting messages.
type Kind string

const (
	KindGeneric        Kind = "generic"
	KindWorkspace      Kind = "workspace"
	KindExecution      Kind = "execution"
	KindTimeout        Kind = "timeout"
	KindNoOutput       Kind = "no_output"
	KindAllFailed      Kind = "all_failed"
	KindNoMethod       Kind = "no_method"
	KindAuth           Kind = "auth"
	KindRateLimit      Kind = "rate_limit"
	KindUnavailable    Kind = "unavailable"
	KindInvalidRequest Kind = "invalid_request"
)

var (
	ErrWorkspaceCreation     = &Error{Kind: KindWorkspace}
	ErrProcessExecution      = &Error{Kind: KindExecution}
	ErrTranslationTimeout    = &Error{Kind: KindTimeout}
	ErrNoTranslationOutput   = &Error{Kind: KindNoOutput}
	ErrAllTranslationsFailed = &Error{Kind: KindAllFailed}
	ErrNoTranslationMethod   = &Error{Kind: KindNoMethod}
	ErrAuthentication        = &Error{Kind: KindAuth}
	ErrRateLimited           = &Error{Kind: KindRateLimit}
	ErrBackendUnavailable    = &Error{Kind: KindUnavailable}
	ErrInvalidRequest        = &Error{Kind: KindInvalidRequest}
)

// Error is a classified translation failure.
type Error struct {
	Kind   Kind
	Lang   string
	Op     string
	Stderr string
	Err    error
}

func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}

	var b strings.Builder
	if e.Op != "" {
		b.WriteString(e.Op)
	} else {
		b.WriteString(string(e.Kind))
	}
	if e.Lang != "" {
		fmt.Fprintf(&b, " [%s]", e.Lang)
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	if stderr := strings.TrimSpace(e.Stderr); stderr != "" {
		b.WriteString(": ")
		b.WriteString(stderr)
	}
	return b.String()
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// Is matches any *Error of the same kind, which makes the exported sentinels
// usable with errors.Is.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok || e == nil || t == nil {
		return false
	}
	return e.Kind == t.Kind
}

// KindOf returns the kind of the outermost *Error in err's chain, or
// KindGeneric when err carries no classification.
func KindOf(err error) Kind {
	if err == nil {
		return ""
	}
	var te *Error
	if errors.As(err, &te) {
		return te.Kind
	}
	return KindGeneric
}

func newError(kind Kind, lang, op string, err error) *Error {
	return &Error{Kind: kind, Lang: lang, Op: op, Err: err}
}
