package app

import (
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/rznies/lingoSir/internal/payloadschema"
	"github.com/rznies/lingoSir/internal/translation"
)

type validateResult struct {
	Scanned int
	Valid   int
	Invalid int
}

func newValidateCommand() *cobra.Command {
	var recursive bool
	cmd := &cobra.Command{
		Use:   "validate <dir>",
		Short: "Validate translate request bodies stored as .json files",
		Long: `validate checks every .json file under dir against the /api/translate
request schema and the supported language list, without calling any backend.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := strings.TrimSpace(args[0])
			files, err := collectJSONFiles(dir, recursive)
			if err != nil {
				return runtimeError("validation setup failed: %w", err)
			}

			result := validateFiles(files, cmd.ErrOrStderr())
			fmt.Fprintf(cmd.OutOrStdout(), "validate scanned=%d valid=%d invalid=%d dir=%s recursive=%t\n",
				result.Scanned, result.Valid, result.Invalid, dir, recursive)

			if result.Scanned == 0 {
				return runtimeError("no .json files found under %s", dir)
			}
			if result.Invalid > 0 {
				return runtimeError("%d of %d requests are invalid", result.Invalid, result.Scanned)
			}
			return nil
		},
	}
	cmd.Flags().BoolVarP(&recursive, "recursive", "r", true, "Recursively scan subdirectories")
	return cmd
}

func validateFiles(files []string, report io.Writer) validateResult {
	result := validateResult{}
	for _, path := range files {
		result.Scanned++
		if err := validateRequestFile(path); err != nil {
			result.Invalid++
			fmt.Fprintf(report, "INVALID %s: %v\n", path, err)
			continue
		}
		result.Valid++
	}
	return result
}

func validateRequestFile(path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read failed: %w", err)
	}
	req, err := payloadschema.ValidateTranslateRequest(raw)
	if err != nil {
		return err
	}
	if _, err := translation.NormalizeLanguages(req.Languages); err != nil {
		return err
	}
	return nil
}

func collectJSONFiles(root string, recursive bool) ([]string, error) {
	if root == "" {
		return nil, fmt.Errorf("directory path is empty")
	}

	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("stat %s: %w", root, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%s is not a directory", root)
	}

	var files []string
	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		hidden := strings.HasPrefix(d.Name(), ".")
		if d.IsDir() {
			if path == root {
				return nil
			}
			if hidden || !recursive {
				return filepath.SkipDir
			}
			return nil
		}
		if !hidden && strings.EqualFold(filepath.Ext(d.Name()), ".json") {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk directory %s: %w", root, err)
	}

	sort.Strings(files)
	return files, nil
}
