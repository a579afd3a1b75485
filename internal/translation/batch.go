package translation

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// DefaultBatchSize bounds concurrent tool processes when nothing else is configured.
const DefaultBatchSize = 3

// BatchOptions controls how the scheduler fans out languages.
type BatchOptions struct {
	BatchSize  int
	Concurrent bool
	// Pipelined keeps up to BatchSize attempts in flight at all times instead
	// of waiting for each chunk to settle. Only meaningful when Concurrent.
	Pipelined bool
}

func DefaultBatchOptions() BatchOptions {
	return BatchOptions{BatchSize: DefaultBatchSize, Concurrent: true}
}

func (o BatchOptions) normalized() BatchOptions {
	if o.BatchSize <= 0 {
		o.BatchSize = DefaultBatchSize
	}
	return o
}

// BatchScheduler translates a caption into many languages with bounded
// concurrency and per-language failure isolation.
type BatchScheduler struct {
	translator LanguageTranslator
	logger     zerolog.Logger
}

func NewBatchScheduler(translator LanguageTranslator, logger zerolog.Logger) *BatchScheduler {
	return &BatchScheduler{translator: translator, logger: logger}
}

// Translate runs every language and returns partial results. It fails with
// ErrAllTranslationsFailed only when nothing succeeded.
func (s *BatchScheduler) Translate(ctx context.Context, caption string, languages []string, opts BatchOptions) (*BatchOutcome, error) {
	if s == nil || s.translator == nil {
		return nil, fmt.Errorf("batch scheduler is not initialized")
	}
	opts = opts.normalized()

	s.logger.Info().
		Strs("languages", languages).
		Int("batch_size", opts.BatchSize).
		Bool("concurrent", opts.Concurrent).
		Bool("pipelined", opts.Pipelined).
		Msg("translating via process backend")

	c := &collector{}
	switch {
	case !opts.Concurrent:
		for _, lang := range languages {
			s.attempt(ctx, c, caption, lang)
		}
	case opts.Pipelined:
		s.runWindow(ctx, c, caption, languages, opts.BatchSize)
	default:
		for idx, chunk := range chunkLanguages(languages, opts.BatchSize) {
			s.logger.Info().Int("batch", idx+1).Strs("languages", chunk).Msg("processing batch")
			s.runWindow(ctx, c, caption, chunk, opts.BatchSize)
		}
	}

	outcome := c.outcome()
	for _, f := range outcome.Failures {
		s.logger.Warn().Str("lang", f.Lang).Str("kind", string(f.Kind)).Str("error", f.Error).Msg("language translation failed")
	}

	if len(outcome.Results) == 0 {
		return outcome, &Error{
			Kind: KindAllFailed,
			Op:   "all translations failed",
			Err:  errors.Join(c.errs...),
		}
	}

	s.logger.Info().
		Int("succeeded", len(outcome.Results)).
		Int("requested", len(languages)).
		Msgf("translated %d/%d languages", len(outcome.Results), len(languages))
	return outcome, nil
}

// runWindow launches every language with at most limit attempts in flight and
// waits for all of them to settle.
func (s *BatchScheduler) runWindow(ctx context.Context, c *collector, caption string, languages []string, limit int) {
	var g errgroup.Group
	g.SetLimit(limit)
	for _, lang := range languages {
		lang := lang
		g.Go(func() error {
			s.attempt(ctx, c, caption, lang)
			return nil
		})
	}
	_ = g.Wait()
}

func (s *BatchScheduler) attempt(ctx context.Context, c *collector, caption, lang string) {
	result, err := s.translator.TranslateLanguage(ctx, caption, lang)
	if err != nil {
		c.fail(lang, err)
		return
	}
	c.succeed(result)
}

// chunkLanguages splits languages into consecutive chunks of size n.
func chunkLanguages(languages []string, n int) [][]string {
	if n <= 0 {
		n = DefaultBatchSize
	}
	chunks := make([][]string, 0, (len(languages)+n-1)/n)
	for start := 0; start < len(languages); start += n {
		end := min(start+n, len(languages))
		chunks = append(chunks, languages[start:end])
	}
	return chunks
}

// collector gathers results in completion order.
type collector struct {
	mu       sync.Mutex
	results  []Result
	failures []Failure
	errs     []error
}

func (c *collector) succeed(r Result) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.results = append(c.results, r)
}

func (c *collector) fail(lang string, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.failures = append(c.failures, Failure{Lang: lang, Error: err.Error(), Kind: KindOf(err)})
	c.errs = append(c.errs, err)
}

func (c *collector) outcome() *BatchOutcome {
	c.mu.Lock()
	defer c.mu.Unlock()
	return &BatchOutcome{
		Results:  append([]Result(nil), c.results...),
		Failures: append([]Failure(nil), c.failures...),
	}
}
