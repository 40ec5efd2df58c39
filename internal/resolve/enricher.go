package resolve

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"marquee/internal/logging"
	"marquee/internal/media"
	"marquee/internal/services/llm"
)

// Enricher fills a record's optional review fields via the generative text
// service. Enrichment is best-effort: every failure path returns the record
// unchanged.
type Enricher struct {
	store   Store
	llm     TextCompleter
	logger  *slog.Logger
	timeout time.Duration
}

// NewEnricher constructs an enricher. completer may be nil, in which case
// Enrich is a pass-through.
func NewEnricher(store Store, completer TextCompleter, logger *slog.Logger, timeout time.Duration) *Enricher {
	if timeout <= 0 {
		timeout = defaultLookupTimeout
	}
	return &Enricher{
		store:   store,
		llm:     completer,
		logger:  logging.NewComponentLogger(logger, "enricher"),
		timeout: timeout,
	}
}

type reviewPayload struct {
	CriticRating float64 `json:"critic_rating"`
	Summary      string  `json:"summary"`
}

// Enrich returns record with its critic review summary and normalized
// rating filled in. A record that already has a summary comes back
// untouched without any service call; that is the cache-hit path.
func (e *Enricher) Enrich(ctx context.Context, record media.Record) media.Record {
	if record.HasCriticSummary() {
		return record
	}
	if e.llm == nil || !e.llm.Configured() {
		return record
	}
	logger := logging.WithContext(ctx, e.logger).With(
		logging.Int64(logging.FieldRecordID, record.ID))

	subject := record.Title
	if record.ReleaseYear > 0 {
		subject = fmt.Sprintf("%s (%d)", record.Title, record.ReleaseYear)
	}

	completionCtx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	reply, err := e.llm.CompleteJSON(completionCtx, ReviewSummaryPrompt,
		fmt.Sprintf("%s: %s", record.Kind, subject))
	if err != nil {
		logger.Warn("enrichment call failed, keeping record as is", logging.Error(err))
		return record
	}

	var payload reviewPayload
	if err := llm.DecodeLLMJSON(reply, &payload); err != nil {
		logger.Warn("enrichment reply unparseable, keeping record as is", logging.Error(err))
		return record
	}

	// Merge only fields that were previously absent.
	var partial media.Record
	if summary := strings.TrimSpace(payload.Summary); summary != "" {
		partial.CriticSummary = summary
	}
	if record.CriticRating == 0 && payload.CriticRating > 0 && payload.CriticRating <= 10 {
		partial.CriticRating = payload.CriticRating
	}
	if partial.CriticSummary == "" && partial.CriticRating == 0 {
		return record
	}

	stored, err := e.store.Upsert(ctx, record.ID, partial)
	if err != nil {
		logger.Warn("persisting enrichment failed", logging.Error(err))
		return record.Merge(partial)
	}
	logger.Info("record enriched",
		logging.Bool("summary_added", partial.CriticSummary != ""),
		logging.Bool("rating_added", partial.CriticRating > 0))
	return stored
}
