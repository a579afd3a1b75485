package cli

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
)

// EnvFileOverrideVar points at an env file that wins over --env.
const EnvFileOverrideVar = "LINGOSIR_ENV_FILE"

// EnvLoader loads .env files with a predictable override order.
type EnvLoader struct {
	value       *string
	defaultPath string
	logger      *log.Logger
}

// AddEnvFlag registers an --env flag and returns an EnvLoader.
func AddEnvFlag(fs *pflag.FlagSet, defaultPath, description string) *EnvLoader {
	if fs == nil {
		fs = pflag.CommandLine
	}
	if defaultPath == "" {
		defaultPath = ".env"
	}
	if description == "" {
		description = "Path to the .env file"
	}

	value := fs.String("env", defaultPath, description)
	return &EnvLoader{
		value:       value,
		defaultPath: defaultPath,
		logger:      log.New(os.Stderr, "", log.LstdFlags),
	}
}

// Load resolves and loads environment variables using the configured flag
// value. Values already exported in the process environment are overridden.
func (l *EnvLoader) Load() (string, error) {
	if l == nil {
		return "", fmt.Errorf("env loader is nil")
	}

	if custom := strings.TrimSpace(os.Getenv(EnvFileOverrideVar)); custom != "" {
		if err := godotenv.Overload(custom); err == nil {
			l.logger.Printf("Loaded environment from %s: %s", EnvFileOverrideVar, custom)
			return custom, nil
		}
		l.logger.Printf("Warning: failed to load %s=%s", EnvFileOverrideVar, custom)
	}

	requested := strings.TrimSpace(derefString(l.value))
	if requested == "" {
		requested = l.defaultPath
	}

	if err := godotenv.Overload(requested); err == nil {
		l.logger.Printf("Loaded environment from: %s", requested)
		return requested, nil
	}

	base := filepath.Base(requested)
	if base != "" && base != requested {
		if err := godotenv.Overload(base); err == nil {
			l.logger.Printf("Loaded environment from basename fallback: %s", base)
			return base, nil
		}
	}

	if requested != l.defaultPath {
		if err := godotenv.Overload(l.defaultPath); err == nil {
			l.logger.Printf("Loaded environment from fallback: %s", l.defaultPath)
			return l.defaultPath, nil
		}
	}

	return "", fmt.Errorf("failed to load env file from %s", requested)
}

// LoadOptional is Load for commands that run fine on the process environment
// alone. A missing file is not an error.
func (l *EnvLoader) LoadOptional() string {
	path, err := l.Load()
	if err != nil {
		return ""
	}
	return path
}

func derefString(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}
