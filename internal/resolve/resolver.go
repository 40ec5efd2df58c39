package resolve

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"marquee/internal/catalog"
	"marquee/internal/logging"
	"marquee/internal/media"
	"marquee/internal/services"
	"marquee/internal/services/llm"
)

// CatalogSearcher defines the subset of catalog client functionality the
// resolver uses.
type CatalogSearcher interface {
	SearchByTitle(ctx context.Context, title string, opts catalog.SearchOptions) (*catalog.Candidate, error)
	FetchDetailsByID(ctx context.Context, id int64, kind media.Kind) (media.Record, error)
}

// TextCompleter defines the generative text operations used for assisted
// re-extraction and enrichment.
type TextCompleter interface {
	Configured() bool
	Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error)
	CompleteJSON(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}

// Store defines the local persistence operations the resolver needs.
type Store interface {
	FindByTitle(ctx context.Context, title string, yearHint int) ([]media.Record, error)
	FindByID(ctx context.Context, id int64) (*media.Record, error)
	Upsert(ctx context.Context, id int64, partial media.Record) (media.Record, error)
}

// state names one step of the resolution chain. The chain is strict: first
// success wins, and each miss advances to the next state.
type state int

const (
	stateLocalLookup state = iota
	stateCatalogLookup
	stateAssistedReExtraction
	stateResolved
	stateNotFound
)

func (s state) String() string {
	switch s {
	case stateLocalLookup:
		return "local_lookup"
	case stateCatalogLookup:
		return "catalog_lookup"
	case stateAssistedReExtraction:
		return "assisted_re_extraction"
	case stateResolved:
		return "resolved"
	default:
		return "not_found"
	}
}

const defaultLookupTimeout = 10 * time.Second

// Resolver orchestrates the local store, the external catalog, and the
// generative text service into one fallback chain.
type Resolver struct {
	store         Store
	catalog       CatalogSearcher
	llm           TextCompleter
	logger        *slog.Logger
	lookupTimeout time.Duration
}

// NewResolver constructs a resolver. llm may be nil; assisted re-extraction
// is then skipped.
func NewResolver(store Store, searcher CatalogSearcher, completer TextCompleter, logger *slog.Logger, lookupTimeout time.Duration) *Resolver {
	if lookupTimeout <= 0 {
		lookupTimeout = defaultLookupTimeout
	}
	return &Resolver{
		store:         store,
		catalog:       searcher,
		llm:           completer,
		logger:        logging.NewComponentLogger(logger, "resolver"),
		lookupTimeout: lookupTimeout,
	}
}

// Resolve walks the fallback chain for one descriptor. It returns the
// canonical record, or (nil, nil) when every stage missed. The only error it
// surfaces is a catalog configuration failure, which must abort the whole
// pipeline call.
func (r *Resolver) Resolve(ctx context.Context, descriptor media.Descriptor) (*media.Record, error) {
	logger := logging.WithContext(ctx, r.logger).With(
		logging.String(logging.FieldDescriptor, descriptor.Key()))

	if strings.TrimSpace(descriptor.Title) == "" {
		return nil, nil
	}

	current := descriptor
	retriedCatalog := false
	st := stateLocalLookup

	for {
		switch st {
		case stateLocalLookup:
			if record := r.localLookup(ctx, logger, current); record != nil {
				logger.Info("resolved from local store",
					logging.Int64(logging.FieldRecordID, record.ID))
				return record, nil
			}
			st = stateCatalogLookup

		case stateCatalogLookup:
			record, err := r.catalogLookup(ctx, logger, current)
			if err != nil {
				return nil, err
			}
			if record != nil {
				logger.Info("resolved from catalog",
					logging.Int64(logging.FieldRecordID, record.ID),
					logging.Bool("refined", retriedCatalog))
				return record, nil
			}
			if !retriedCatalog && descriptor.FromFreeText && r.llm != nil && r.llm.Configured() {
				st = stateAssistedReExtraction
				continue
			}
			st = stateNotFound

		case stateAssistedReExtraction:
			retriedCatalog = true
			refined, ok := r.refineDescriptor(ctx, logger, descriptor)
			if !ok {
				st = stateNotFound
				continue
			}
			current = refined
			st = stateCatalogLookup

		case stateNotFound:
			logger.Info("descriptor resolved to nothing",
				logging.String(logging.FieldStage, st.String()))
			return nil, nil
		}
	}
}

// localLookup queries the local store; any store failure is logged and
// treated as a miss.
func (r *Resolver) localLookup(ctx context.Context, logger *slog.Logger, descriptor media.Descriptor) *media.Record {
	lookupCtx, cancel := context.WithTimeout(ctx, r.lookupTimeout)
	defer cancel()

	records, err := r.store.FindByTitle(lookupCtx, descriptor.Title, descriptor.Year)
	if err != nil {
		logger.Warn("local lookup failed, advancing chain",
			logging.String(logging.FieldStage, stateLocalLookup.String()),
			logging.Error(err))
		return nil
	}
	if len(records) == 0 {
		return nil
	}

	// Records arrive popularity-sorted; exact title equality still beats a
	// more popular substring match.
	wanted := media.NormalizeTitle(descriptor.Title)
	for idx := range records {
		if media.NormalizeTitle(records[idx].Title) == wanted ||
			media.NormalizeTitle(records[idx].OriginalTitle) == wanted {
			return &records[idx]
		}
	}
	return &records[0]
}

// catalogLookup searches the catalog and persists a hit. Transient errors
// are a miss; configuration errors abort.
func (r *Resolver) catalogLookup(ctx context.Context, logger *slog.Logger, descriptor media.Descriptor) (*media.Record, error) {
	searchCtx, cancel := context.WithTimeout(ctx, r.lookupTimeout)
	defer cancel()

	candidate, err := r.catalog.SearchByTitle(searchCtx, descriptor.Title, catalog.SearchOptions{
		Year: descriptor.Year,
		Kind: descriptor.Kind,
	})
	if err != nil {
		if services.IsFatal(err) {
			return nil, err
		}
		logger.Warn("catalog search failed, advancing chain",
			logging.String(logging.FieldStage, stateCatalogLookup.String()),
			logging.Error(err))
		return nil, nil
	}
	if candidate == nil {
		return nil, nil
	}

	detailsCtx, cancel := context.WithTimeout(ctx, r.lookupTimeout)
	defer cancel()

	record, err := r.catalog.FetchDetailsByID(detailsCtx, candidate.ID, candidate.Kind)
	if err != nil {
		if services.IsFatal(err) {
			return nil, err
		}
		logger.Warn("catalog details fetch failed, advancing chain",
			logging.Int64(logging.FieldRecordID, candidate.ID),
			logging.Error(err))
		return nil, nil
	}

	stored, err := r.store.Upsert(ctx, record.ID, record)
	if err != nil {
		// The fetch succeeded; persistence is retried on the next
		// resolution of the same title.
		logger.Warn("persisting catalog record failed",
			logging.Int64(logging.FieldRecordID, record.ID),
			logging.Error(err))
		return &record, nil
	}
	return &stored, nil
}

type refinedPayload struct {
	Title string `json:"title"`
	Year  int    `json:"year"`
	Kind  string `json:"kind"`
}

// refineDescriptor asks the generative service to recover a corrected
// title/year from the original query.
func (r *Resolver) refineDescriptor(ctx context.Context, logger *slog.Logger, descriptor media.Descriptor) (media.Descriptor, bool) {
	source := strings.TrimSpace(descriptor.Source)
	if source == "" {
		source = descriptor.Title
	}

	completionCtx, cancel := context.WithTimeout(ctx, r.lookupTimeout)
	defer cancel()

	reply, err := r.llm.CompleteJSON(completionCtx, RefineQueryPrompt,
		fmt.Sprintf("Query: %s", source))
	if err != nil {
		logger.Warn("assisted re-extraction failed",
			logging.String(logging.FieldStage, stateAssistedReExtraction.String()),
			logging.Error(err))
		return media.Descriptor{}, false
	}

	var payload refinedPayload
	if err := llm.DecodeLLMJSON(reply, &payload); err != nil {
		logger.Warn("assisted re-extraction returned malformed payload",
			logging.Error(err))
		return media.Descriptor{}, false
	}
	payload.Title = strings.TrimSpace(payload.Title)
	if payload.Title == "" {
		return media.Descriptor{}, false
	}

	refined := media.Descriptor{
		Title:        payload.Title,
		Year:         payload.Year,
		Kind:         descriptor.Kind,
		FromFreeText: true,
		Source:       descriptor.Source,
	}
	if strings.EqualFold(strings.TrimSpace(payload.Kind), string(media.KindSeries)) {
		refined.Kind = media.KindSeries
	} else if strings.EqualFold(strings.TrimSpace(payload.Kind), string(media.KindMovie)) {
		refined.Kind = media.KindMovie
	}
	logger.Info("re-extracted descriptor",
		logging.String("refined_title", refined.Title),
		logging.Int("refined_year", refined.Year))
	return refined, true
}
