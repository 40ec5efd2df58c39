// Package services defines shared utilities consumed by the resolution
// pipeline and its external collaborators.
//
// Key responsibilities:
//   - Context helpers that stamp correlation identifiers and the originating
//     query for logging and tracing.
//   - Structured error markers plus the Wrap helper that classify failures:
//     a transient catalog outage is a miss the resolver advances past, while
//     a configuration error aborts the whole pipeline call.
//
// Use these helpers when wiring new collaborators so operational behaviour
// (error classification, observability) stays uniform across the pipeline.
package services
