package resolve

import (
	"context"
	"errors"
	"testing"
	"time"

	"marquee/internal/logging"
	"marquee/internal/media"
)

func newTestEnricher(store Store, completer TextCompleter) *Enricher {
	return NewEnricher(store, completer, logging.NewNop(), time.Second)
}

func TestEnrichAddsSummaryAndRating(t *testing.T) {
	record := media.Record{ID: 42, Kind: media.KindMovie, Title: "Oldboy", ReleaseYear: 2003}
	store := newFakeStore(record)
	completer := &fakeCompleter{
		configured: true,
		jsonReply:  `{"critic_rating": 8.8, "summary": "A brutal revenge masterpiece."}`,
	}

	enriched := newTestEnricher(store, completer).Enrich(context.Background(), record)
	if enriched.CriticSummary != "A brutal revenge masterpiece." {
		t.Errorf("summary = %q", enriched.CriticSummary)
	}
	if enriched.CriticRating != 8.8 {
		t.Errorf("rating = %v, want 8.8", enriched.CriticRating)
	}
	if store.upsertCalls != 1 {
		t.Errorf("expected the enrichment to be persisted, got %d upserts", store.upsertCalls)
	}
}

func TestEnrichExistingSummaryIsNoop(t *testing.T) {
	record := media.Record{
		ID: 42, Kind: media.KindMovie, Title: "Oldboy",
		CriticSummary: "Already reviewed.",
	}
	store := newFakeStore(record)
	completer := &fakeCompleter{configured: true, jsonReply: `{"summary":"should never be used"}`}

	enriched := newTestEnricher(store, completer).Enrich(context.Background(), record)
	if enriched.CriticSummary != "Already reviewed." {
		t.Errorf("summary changed to %q", enriched.CriticSummary)
	}
	if completer.jsonCalls != 0 {
		t.Errorf("a record with a summary must not trigger a service call, got %d", completer.jsonCalls)
	}
}

func TestEnrichWithoutCompleterPassesThrough(t *testing.T) {
	record := media.Record{ID: 1, Kind: media.KindMovie, Title: "Heat"}
	store := newFakeStore(record)

	if got := newTestEnricher(store, nil).Enrich(context.Background(), record); got.CriticSummary != "" {
		t.Errorf("nil completer must pass the record through, got %+v", got)
	}

	unconfigured := &fakeCompleter{configured: false}
	if got := newTestEnricher(store, unconfigured).Enrich(context.Background(), record); got.CriticSummary != "" {
		t.Errorf("unconfigured completer must pass the record through, got %+v", got)
	}
	if store.upsertCalls != 0 {
		t.Errorf("pass-through must not write, got %d upserts", store.upsertCalls)
	}
}

func TestEnrichServiceFailureKeepsRecord(t *testing.T) {
	record := media.Record{ID: 1, Kind: media.KindMovie, Title: "Heat", VoteAverage: 8.3}
	store := newFakeStore(record)
	completer := &fakeCompleter{configured: true, jsonErr: errors.New("upstream down")}

	enriched := newTestEnricher(store, completer).Enrich(context.Background(), record)
	if enriched.CriticSummary != "" || enriched.VoteAverage != 8.3 {
		t.Errorf("failure must return the record unchanged, got %+v", enriched)
	}
}

func TestEnrichMalformedReplyKeepsRecord(t *testing.T) {
	record := media.Record{ID: 1, Kind: media.KindMovie, Title: "Heat"}
	store := newFakeStore(record)
	completer := &fakeCompleter{configured: true, jsonReply: "prose, not json"}

	enriched := newTestEnricher(store, completer).Enrich(context.Background(), record)
	if enriched.CriticSummary != "" {
		t.Errorf("malformed replies must not enrich, got %+v", enriched)
	}
	if store.upsertCalls != 0 {
		t.Errorf("nothing should be written for a malformed reply, got %d", store.upsertCalls)
	}
}

func TestEnrichNullFieldsKeepRecord(t *testing.T) {
	record := media.Record{ID: 1, Kind: media.KindMovie, Title: "Obscurity"}
	store := newFakeStore(record)
	completer := &fakeCompleter{configured: true, jsonReply: `{"critic_rating": null, "summary": null}`}

	enriched := newTestEnricher(store, completer).Enrich(context.Background(), record)
	if enriched.CriticSummary != "" || enriched.CriticRating != 0 {
		t.Errorf("null fields must not enrich, got %+v", enriched)
	}
	if store.upsertCalls != 0 {
		t.Errorf("nothing should be written for null fields, got %d", store.upsertCalls)
	}
}

func TestEnrichOutOfRangeRatingDropped(t *testing.T) {
	record := media.Record{ID: 1, Kind: media.KindMovie, Title: "Heat"}
	store := newFakeStore(record)
	completer := &fakeCompleter{
		configured: true,
		jsonReply:  `{"critic_rating": 97, "summary": "Great."}`,
	}

	enriched := newTestEnricher(store, completer).Enrich(context.Background(), record)
	if enriched.CriticRating != 0 {
		t.Errorf("a rating above 10 must be dropped, got %v", enriched.CriticRating)
	}
	if enriched.CriticSummary != "Great." {
		t.Errorf("the valid summary should still land, got %q", enriched.CriticSummary)
	}
}

func TestEnrichExistingRatingNotOverwritten(t *testing.T) {
	record := media.Record{ID: 1, Kind: media.KindMovie, Title: "Heat", CriticRating: 7.5}
	store := newFakeStore(record)
	completer := &fakeCompleter{
		configured: true,
		jsonReply:  `{"critic_rating": 9.1, "summary": "Definitive."}`,
	}

	enriched := newTestEnricher(store, completer).Enrich(context.Background(), record)
	if enriched.CriticRating != 7.5 {
		t.Errorf("an existing rating must not be overwritten, got %v", enriched.CriticRating)
	}
	if enriched.CriticSummary != "Definitive." {
		t.Errorf("summary = %q", enriched.CriticSummary)
	}
}

func TestEnrichPersistFailureStillEnrichesInMemory(t *testing.T) {
	record := media.Record{ID: 1, Kind: media.KindMovie, Title: "Heat"}
	store := newFakeStore(record)
	store.upsertErr = errors.New("db locked")
	completer := &fakeCompleter{
		configured: true,
		jsonReply:  `{"critic_rating": 8.0, "summary": "Essential."}`,
	}

	enriched := newTestEnricher(store, completer).Enrich(context.Background(), record)
	if enriched.CriticSummary != "Essential." || enriched.CriticRating != 8.0 {
		t.Errorf("persist failure must not lose the enrichment, got %+v", enriched)
	}
}
