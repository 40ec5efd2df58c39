// Package catalog is the adapter over the external authoritative media
// catalog (a TMDB-style HTTP API).
//
// It exposes the two operations the resolver needs: best-match search by
// title and full-detail fetch by id. Responses are cached briefly and
// requests are spaced out as a courtesy to the upstream rate limits. Errors
// are classified with the services sentinels: credential problems surface as
// configuration errors and abort the pipeline, everything else is transient
// and treated as a miss.
package catalog
