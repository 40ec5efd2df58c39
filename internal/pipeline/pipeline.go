package pipeline

import (
	"context"
	"log/slog"
	"sort"
	"sync"

	"github.com/google/uuid"

	"marquee/internal/logging"
	"marquee/internal/match"
	"marquee/internal/media"
	"marquee/internal/querynorm"
	"marquee/internal/resolve"
	"marquee/internal/services"
	"marquee/internal/textparse"
)

// ExpandQueryPrompt is the system prompt for open-ended query expansion:
// turning a discovery query into a list of concrete titles.
const ExpandQueryPrompt = `You are a film and television recommendation assistant.

Given a user's discovery query, reply with a numbered list of up to 10 real,
well-regarded movies or series that answer it. One title per line, each with
its release year in parentheses, like:
1. Parasite (2019)
No commentary before or after the list.`

const defaultMaxConcurrent = 6

// Pipeline composes the resolution core behind a single façade.
type Pipeline struct {
	resolver      *resolve.Resolver
	enricher      *resolve.Enricher
	scorer        *match.Scorer
	llm           resolve.TextCompleter
	logger        *slog.Logger
	maxConcurrent int
}

// New builds a pipeline. completer may be nil; free-text expansion then
// degrades to treating the query as a single title.
func New(resolver *resolve.Resolver, enricher *resolve.Enricher, scorer *match.Scorer, completer resolve.TextCompleter, logger *slog.Logger, maxConcurrent int) *Pipeline {
	if maxConcurrent <= 0 {
		maxConcurrent = defaultMaxConcurrent
	}
	return &Pipeline{
		resolver:      resolver,
		enricher:      enricher,
		scorer:        scorer,
		llm:           completer,
		logger:        logging.NewComponentLogger(logger, "pipeline"),
		maxConcurrent: maxConcurrent,
	}
}

// ResolveMany resolves, enriches, and scores a batch of descriptors.
// Descriptors are deduplicated by normalized key before dispatch, and each
// unique descriptor triggers exactly one resolver invocation. Output order
// is unspecified; failures are dropped with a logged reason. Only a catalog
// configuration error is returned.
func (p *Pipeline) ResolveMany(ctx context.Context, descriptors []media.Descriptor, profile media.Profile) ([]media.MatchResult, error) {
	deduped := media.DedupDescriptors(descriptors)
	if len(deduped) == 0 {
		return nil, nil
	}

	ctx = services.WithRequestID(ctx, uuid.NewString())
	logger := logging.WithContext(ctx, p.logger)
	logger.Info("resolving batch",
		logging.Int("requested", len(descriptors)),
		logging.Int("unique", len(deduped)),
		logging.Int("max_concurrent", p.maxConcurrent))

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	var (
		mu       sync.Mutex
		results  []media.MatchResult
		fatalErr error
		wg       sync.WaitGroup
	)
	semaphore := make(chan struct{}, p.maxConcurrent)

	for _, descriptor := range deduped {
		wg.Add(1)
		go func(descriptor media.Descriptor) {
			defer wg.Done()
			select {
			case semaphore <- struct{}{}:
			case <-runCtx.Done():
				return
			}
			defer func() { <-semaphore }()

			record, err := p.resolver.Resolve(runCtx, descriptor)
			if err != nil {
				mu.Lock()
				if fatalErr == nil {
					fatalErr = err
				}
				mu.Unlock()
				cancel()
				return
			}
			if record == nil {
				logger.Info("dropping unresolved descriptor",
					logging.String(logging.FieldDescriptor, descriptor.Key()))
				return
			}

			enriched := p.enricher.Enrich(runCtx, *record)
			result := p.scorer.Score(enriched, profile, profile.RecentHighRatings)

			mu.Lock()
			results = append(results, result)
			mu.Unlock()
		}(descriptor)
	}
	wg.Wait()

	if fatalErr != nil {
		return nil, fatalErr
	}
	return results, nil
}

// Expand turns a free-text discovery query into a batch of descriptors via
// the generative service, falling back to a single normalized descriptor
// when expansion is unavailable or yields nothing.
func (p *Pipeline) Expand(ctx context.Context, query string) []media.Descriptor {
	logger := logging.WithContext(ctx, p.logger)

	if p.llm != nil && p.llm.Configured() {
		reply, err := p.llm.Complete(ctx, ExpandQueryPrompt, query)
		if err != nil {
			logger.Warn("query expansion failed, falling back to direct lookup",
				logging.String(logging.FieldQuery, query),
				logging.Error(err))
		} else if descriptors := textparse.Parse(reply, query); len(descriptors) > 0 {
			logger.Info("expanded query",
				logging.String(logging.FieldQuery, query),
				logging.Int("descriptors", len(descriptors)))
			return descriptors
		}
	}

	return []media.Descriptor{querynorm.Normalize(query)}
}

// Discover expands a free-text query and resolves the resulting batch,
// returning results that satisfy the profile's hard constraints, ranked best
// match first.
func (p *Pipeline) Discover(ctx context.Context, query string, profile media.Profile) ([]media.MatchResult, error) {
	ctx = services.WithQuery(ctx, query)
	results, err := p.ResolveMany(ctx, p.Expand(ctx, query), profile)
	if err != nil {
		return nil, err
	}

	logger := logging.WithContext(ctx, p.logger)
	admitted := results[:0]
	for _, result := range results {
		if !profile.Admits(result.Record) {
			logger.Info("dropping result outside profile constraints",
				logging.String("title", result.Record.Title),
				logging.Int("year", result.Record.ReleaseYear))
			continue
		}
		admitted = append(admitted, result)
	}

	SortByMatch(admitted)
	return admitted, nil
}

// SortByMatch orders results best match first, breaking ties by popularity
// so the ordering is stable for display.
func SortByMatch(results []media.MatchResult) {
	sort.SliceStable(results, func(i, j int) bool {
		if results[i].MatchPercent != results[j].MatchPercent {
			return results[i].MatchPercent > results[j].MatchPercent
		}
		return results[i].Record.Popularity > results[j].Record.Popularity
	})
}
