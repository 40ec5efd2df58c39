// Package resolve turns media descriptors into canonical records and
// enriches them with best-effort generative data.
//
// The Resolver walks an explicit state machine: local store lookup, catalog
// lookup, then LLM-assisted re-extraction with one catalog retry, ending in
// Resolved or NotFound. State is passed as a value, never as scattered retry
// flags. External failures are absorbed as misses; only a catalog
// configuration error aborts the chain.
//
// The Enricher fills a record's missing review summary and normalized critic
// rating. It is idempotent (a record that already has a summary is returned
// untouched without any service call) and merge-only, so concurrent
// enrichment of the same id cannot clobber partial writes.
package resolve
