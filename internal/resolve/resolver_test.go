package resolve

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"marquee/internal/catalog"
	"marquee/internal/logging"
	"marquee/internal/media"
	"marquee/internal/services"
)

type fakeStore struct {
	mu      sync.Mutex
	records map[int64]media.Record

	findErr   error
	upsertErr error

	findCalls   int
	upsertCalls int
}

func newFakeStore(records ...media.Record) *fakeStore {
	s := &fakeStore{records: make(map[int64]media.Record)}
	for _, record := range records {
		s.records[record.ID] = record
	}
	return s
}

func (s *fakeStore) FindByTitle(_ context.Context, title string, yearHint int) ([]media.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.findCalls++
	if s.findErr != nil {
		return nil, s.findErr
	}
	wanted := media.NormalizeTitle(title)
	var out []media.Record
	for _, record := range s.records {
		if media.NormalizeTitle(record.Title) != wanted {
			continue
		}
		if yearHint > 0 && record.ReleaseYear != yearHint {
			continue
		}
		out = append(out, record)
	}
	return out, nil
}

func (s *fakeStore) FindByID(_ context.Context, id int64) (*media.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if record, ok := s.records[id]; ok {
		return &record, nil
	}
	return nil, nil
}

func (s *fakeStore) Upsert(_ context.Context, id int64, partial media.Record) (media.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.upsertCalls++
	if s.upsertErr != nil {
		return media.Record{}, s.upsertErr
	}
	merged := s.records[id].Merge(partial)
	if merged.ID == 0 {
		merged.ID = id
	}
	s.records[id] = merged
	return merged, nil
}

type fakeCatalog struct {
	mu          sync.Mutex
	candidates  map[string]*catalog.Candidate
	details     map[int64]media.Record
	searchErr   error
	detailsErr  error
	searchCalls int
}

func newFakeCatalog() *fakeCatalog {
	return &fakeCatalog{
		candidates: make(map[string]*catalog.Candidate),
		details:    make(map[int64]media.Record),
	}
}

func (c *fakeCatalog) add(title string, record media.Record) {
	c.candidates[media.NormalizeTitle(title)] = &catalog.Candidate{
		ID:    record.ID,
		Title: record.Title,
		Kind:  record.Kind,
		Year:  record.ReleaseYear,
	}
	c.details[record.ID] = record
}

func (c *fakeCatalog) SearchByTitle(_ context.Context, title string, _ catalog.SearchOptions) (*catalog.Candidate, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.searchCalls++
	if c.searchErr != nil {
		return nil, c.searchErr
	}
	return c.candidates[media.NormalizeTitle(title)], nil
}

func (c *fakeCatalog) FetchDetailsByID(_ context.Context, id int64, _ media.Kind) (media.Record, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.detailsErr != nil {
		return media.Record{}, c.detailsErr
	}
	record, ok := c.details[id]
	if !ok {
		return media.Record{}, services.Wrap(services.ErrNotFound, "catalog", "details", fmt.Sprintf("id %d", id), nil)
	}
	return record, nil
}

type fakeCompleter struct {
	mu            sync.Mutex
	configured    bool
	completeReply string
	completeErr   error
	jsonReply     string
	jsonErr       error
	jsonCalls     int
}

func (f *fakeCompleter) Configured() bool { return f != nil && f.configured }

func (f *fakeCompleter) Complete(context.Context, string, string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.completeReply, f.completeErr
}

func (f *fakeCompleter) CompleteJSON(context.Context, string, string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.jsonCalls++
	return f.jsonReply, f.jsonErr
}

func newTestResolver(store Store, searcher CatalogSearcher, completer TextCompleter) *Resolver {
	return NewResolver(store, searcher, completer, logging.NewNop(), time.Second)
}

func TestResolveLocalHitSkipsCatalog(t *testing.T) {
	stored := media.Record{ID: 1, Kind: media.KindMovie, Title: "Oldboy", ReleaseYear: 2003}
	store := newFakeStore(stored)
	cat := newFakeCatalog()

	resolver := newTestResolver(store, cat, nil)
	record, err := resolver.Resolve(context.Background(), media.Descriptor{Title: "Oldboy", Year: 2003})
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if record == nil || record.ID != 1 {
		t.Fatalf("expected the stored record, got %+v", record)
	}
	if cat.searchCalls != 0 {
		t.Errorf("catalog searched %d times despite a local hit", cat.searchCalls)
	}
}

func TestResolveCatalogHitPersists(t *testing.T) {
	store := newFakeStore()
	cat := newFakeCatalog()
	cat.add("Parasite", media.Record{ID: 496243, Kind: media.KindMovie, Title: "Parasite", ReleaseYear: 2019})

	resolver := newTestResolver(store, cat, nil)
	record, err := resolver.Resolve(context.Background(), media.Descriptor{Title: "Parasite"})
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if record == nil || record.ID != 496243 {
		t.Fatalf("expected the catalog record, got %+v", record)
	}
	if store.upsertCalls != 1 {
		t.Errorf("expected the catalog hit to be persisted once, got %d upserts", store.upsertCalls)
	}
	if stored, _ := store.FindByID(context.Background(), 496243); stored == nil {
		t.Error("record missing from the store after resolution")
	}
}

func TestResolveStoreErrorAdvancesChain(t *testing.T) {
	store := newFakeStore()
	store.findErr = errors.New("disk trouble")
	cat := newFakeCatalog()
	cat.add("Heat", media.Record{ID: 7, Kind: media.KindMovie, Title: "Heat", ReleaseYear: 1995})

	resolver := newTestResolver(store, cat, nil)
	record, err := resolver.Resolve(context.Background(), media.Descriptor{Title: "Heat"})
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if record == nil || record.ID != 7 {
		t.Fatalf("store failure should fall through to the catalog, got %+v", record)
	}
}

func TestResolveTransientCatalogErrorIsMiss(t *testing.T) {
	store := newFakeStore()
	cat := newFakeCatalog()
	cat.searchErr = services.Wrap(services.ErrTransient, "catalog", "search", "upstream 503", nil)

	resolver := newTestResolver(store, cat, nil)
	record, err := resolver.Resolve(context.Background(), media.Descriptor{Title: "Heat"})
	if err != nil {
		t.Fatalf("transient errors must not surface, got %v", err)
	}
	if record != nil {
		t.Errorf("expected a miss, got %+v", record)
	}
}

func TestResolveConfigurationErrorIsFatal(t *testing.T) {
	store := newFakeStore()
	cat := newFakeCatalog()
	cat.searchErr = services.Wrap(services.ErrConfiguration, "catalog", "request", "credentials rejected", nil)

	resolver := newTestResolver(store, cat, nil)
	_, err := resolver.Resolve(context.Background(), media.Descriptor{Title: "Heat"})
	if !errors.Is(err, services.ErrConfiguration) {
		t.Fatalf("expected the configuration error to surface, got %v", err)
	}
}

func TestResolveAssistedReExtraction(t *testing.T) {
	store := newFakeStore()
	cat := newFakeCatalog()
	cat.add("Inception", media.Record{ID: 27205, Kind: media.KindMovie, Title: "Inception", ReleaseYear: 2010})

	completer := &fakeCompleter{
		configured: true,
		jsonReply:  `{"title":"Inception","year":2010,"kind":"movie"}`,
	}

	resolver := newTestResolver(store, cat, completer)
	record, err := resolver.Resolve(context.Background(), media.Descriptor{
		Title:        "that dream heist movie",
		FromFreeText: true,
		Source:       "that dream heist movie with leo",
	})
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if record == nil || record.ID != 27205 {
		t.Fatalf("expected a hit after re-extraction, got %+v", record)
	}
	if completer.jsonCalls != 1 {
		t.Errorf("expected one re-extraction call, got %d", completer.jsonCalls)
	}
	if cat.searchCalls != 2 {
		t.Errorf("expected the original and the refined search, got %d", cat.searchCalls)
	}
}

func TestResolveReExtractionRunsAtMostOnce(t *testing.T) {
	store := newFakeStore()
	cat := newFakeCatalog()
	completer := &fakeCompleter{
		configured: true,
		jsonReply:  `{"title":"Still Wrong","year":2001,"kind":"movie"}`,
	}

	resolver := newTestResolver(store, cat, completer)
	record, err := resolver.Resolve(context.Background(), media.Descriptor{
		Title:        "totally unknown film",
		FromFreeText: true,
		Source:       "totally unknown film",
	})
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if record != nil {
		t.Fatalf("expected a miss, got %+v", record)
	}
	if completer.jsonCalls != 1 {
		t.Errorf("re-extraction must run at most once, got %d calls", completer.jsonCalls)
	}
	if cat.searchCalls != 2 {
		t.Errorf("expected exactly two catalog searches, got %d", cat.searchCalls)
	}
}

func TestResolveStructuredDescriptorSkipsReExtraction(t *testing.T) {
	store := newFakeStore()
	cat := newFakeCatalog()
	completer := &fakeCompleter{configured: true, jsonReply: `{"title":"Whatever"}`}

	resolver := newTestResolver(store, cat, completer)
	record, err := resolver.Resolve(context.Background(), media.Descriptor{Title: "Unknown", FromFreeText: false})
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if record != nil {
		t.Fatalf("expected a miss, got %+v", record)
	}
	if completer.jsonCalls != 0 {
		t.Errorf("structured descriptors must not trigger re-extraction, got %d calls", completer.jsonCalls)
	}
}

func TestResolveUnconfiguredCompleterSkipsReExtraction(t *testing.T) {
	store := newFakeStore()
	cat := newFakeCatalog()
	completer := &fakeCompleter{configured: false}

	resolver := newTestResolver(store, cat, completer)
	record, err := resolver.Resolve(context.Background(), media.Descriptor{
		Title: "unknown", FromFreeText: true, Source: "unknown",
	})
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if record != nil {
		t.Fatalf("expected a miss, got %+v", record)
	}
	if completer.jsonCalls != 0 {
		t.Errorf("unconfigured completer must not be called, got %d", completer.jsonCalls)
	}
}

func TestResolveMalformedReExtractionReply(t *testing.T) {
	store := newFakeStore()
	cat := newFakeCatalog()
	completer := &fakeCompleter{configured: true, jsonReply: "not json at all"}

	resolver := newTestResolver(store, cat, completer)
	record, err := resolver.Resolve(context.Background(), media.Descriptor{
		Title: "garbled", FromFreeText: true, Source: "garbled",
	})
	if err != nil {
		t.Fatalf("malformed replies must not surface errors, got %v", err)
	}
	if record != nil {
		t.Fatalf("expected a miss, got %+v", record)
	}
	if cat.searchCalls != 1 {
		t.Errorf("a failed re-extraction must not search again, got %d", cat.searchCalls)
	}
}

func TestResolveUpsertFailureStillReturnsRecord(t *testing.T) {
	store := newFakeStore()
	store.upsertErr = errors.New("db locked")
	cat := newFakeCatalog()
	cat.add("Heat", media.Record{ID: 7, Kind: media.KindMovie, Title: "Heat", ReleaseYear: 1995})

	resolver := newTestResolver(store, cat, nil)
	record, err := resolver.Resolve(context.Background(), media.Descriptor{Title: "Heat"})
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if record == nil || record.ID != 7 {
		t.Fatalf("a persistence failure must not lose the fetched record, got %+v", record)
	}
}

func TestResolveEmptyTitle(t *testing.T) {
	resolver := newTestResolver(newFakeStore(), newFakeCatalog(), nil)
	record, err := resolver.Resolve(context.Background(), media.Descriptor{Title: "   "})
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if record != nil {
		t.Errorf("expected nothing for an empty title, got %+v", record)
	}
}
