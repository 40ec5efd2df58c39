// Package pipeline is the public entry point of the resolution core: it
// composes query normalization, free-text expansion, resolution, enrichment,
// and match scoring over a batch of descriptors.
//
// Batches are deduplicated by normalized descriptor key and processed with
// bounded concurrency so external rate limits are respected. Items that
// resolve to nothing are dropped with a logged reason; callers only ever see
// positive results. The only failure that crosses the pipeline boundary is a
// catalog configuration error.
package pipeline
