package app

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"slices"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/rznies/lingoSir/internal/config"
	"github.com/rznies/lingoSir/internal/language"
	"github.com/rznies/lingoSir/internal/translation"
)

type translateFlags struct {
	langs      string
	batchSize  int
	concurrent bool
	pipelined  bool
	mode       string
	jsonOutput bool
	timeout    time.Duration
}

type translateOutput struct {
	OriginalCaption string                `json:"original_caption"`
	Method          translation.Method    `json:"method"`
	ElapsedMs       int64                 `json:"elapsed_ms"`
	Translations    []translation.Result  `json:"translations"`
	Failures        []translation.Failure `json:"failures,omitempty"`
}

func newTranslateCommand() *cobra.Command {
	flags := &translateFlags{}
	cmd := &cobra.Command{
		Use:   "translate <caption>",
		Short: "Translate a caption into one or more languages",
		Example: `  lingosir translate "Stackoverflow saving my project again" --lang es,fr,de
  lingosir translate "Hello" --lang ja --mode cli --batch-size 1 --json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTranslate(cmd, flags, args[0])
		},
	}

	cmd.Flags().StringVarP(&flags.langs, "lang", "l", "", "Target language codes, comma separated (es,fr,de)")
	cmd.Flags().IntVar(&flags.batchSize, "batch-size", translation.DefaultBatchSize, "Languages translated at once by the CLI tool")
	cmd.Flags().BoolVar(&flags.concurrent, "concurrent", true, "Run CLI invocations within a batch concurrently")
	cmd.Flags().BoolVar(&flags.pipelined, "pipelined", false, "Start the next language as soon as a slot frees up")
	cmd.Flags().StringVar(&flags.mode, "mode", "", "Translation mode: sdk, cli or hybrid (overrides TRANSLATION_MODE)")
	cmd.Flags().BoolVar(&flags.jsonOutput, "json", false, "Print the result as JSON")
	cmd.Flags().DurationVar(&flags.timeout, "timeout", 5*time.Minute, "Overall deadline for the request")
	_ = cmd.MarkFlagRequired("lang")
	return cmd
}

func runTranslate(cmd *cobra.Command, flags *translateFlags, caption string) error {
	langs := language.SplitList(flags.langs)
	if len(langs) == 0 {
		return fmt.Errorf("--lang needs at least one language code")
	}
	mode := strings.ToLower(strings.TrimSpace(flags.mode))
	switch mode {
	case "", config.ModeSDK, config.ModeCLI, config.ModeHybrid:
	default:
		return fmt.Errorf("--mode must be one of sdk, cli, hybrid (got %q)", flags.mode)
	}
	if flags.batchSize < 1 {
		return fmt.Errorf("--batch-size must be >= 1")
	}

	cfg, logger, err := loadRuntime(cmd.ErrOrStderr(), mode)
	if err != nil {
		return runtimeError("load config: %w", err)
	}
	svc, err := buildServices(cfg, logger)
	if err != nil {
		return runtimeError("%w", err)
	}

	req := translation.Request{Text: caption, Languages: langs}
	if batch, ok := batchOverride(cmd, flags, cfg.BatchOptions()); ok {
		req.Batch = &batch
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if flags.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, flags.timeout)
		defer cancel()
	}

	outcome, err := svc.coordinator.Translate(ctx, req)
	if err != nil {
		return runtimeError("translate (%s): %w", translation.KindOf(err), err)
	}

	out := translateOutput{
		OriginalCaption: caption,
		Method:          outcome.Method,
		ElapsedMs:       outcome.ElapsedMs,
		Translations:    orderResults(outcome.Results, langs),
		Failures:        outcome.Failures,
	}
	if flags.jsonOutput {
		return writeJSON(cmd.OutOrStdout(), out)
	}
	printTranslation(cmd.OutOrStdout(), out, len(langs))
	return nil
}

// batchOverride applies the batch flags the user actually set on top of the
// configured options.
func batchOverride(cmd *cobra.Command, flags *translateFlags, base translation.BatchOptions) (translation.BatchOptions, bool) {
	changed := false
	if cmd.Flags().Changed("batch-size") {
		base.BatchSize = flags.batchSize
		changed = true
	}
	if cmd.Flags().Changed("concurrent") {
		base.Concurrent = flags.concurrent
		changed = true
	}
	if cmd.Flags().Changed("pipelined") {
		base.Pipelined = flags.pipelined
		changed = true
	}
	return base, changed
}

// orderResults sorts results into the order the languages were requested.
func orderResults(results []translation.Result, langs []string) []translation.Result {
	rank := make(map[string]int, len(langs))
	for idx, lang := range langs {
		code := language.NormalizeTag(lang)
		if _, seen := rank[code]; !seen {
			rank[code] = idx
		}
	}
	ordered := slices.Clone(results)
	slices.SortStableFunc(ordered, func(a, b translation.Result) int {
		return rank[a.Lang] - rank[b.Lang]
	})
	return ordered
}

func printTranslation(w io.Writer, out translateOutput, requested int) {
	fmt.Fprintf(w, "method=%s elapsed=%dms translated=%d/%d\n", out.Method, out.ElapsedMs, len(out.Translations), requested)
	for _, result := range out.Translations {
		fmt.Fprintf(w, "%s: %s\n", result.Lang, result.Text)
	}
	for _, failure := range out.Failures {
		fmt.Fprintf(w, "failed %s (%s): %s\n", failure.Lang, failure.Kind, failure.Error)
	}
}

func writeJSON(w io.Writer, value any) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(value); err != nil {
		return runtimeError("encode output: %w", err)
	}
	return nil
}
