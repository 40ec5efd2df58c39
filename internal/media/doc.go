// Package media defines the shared data model for the resolution pipeline:
// descriptors (unvalidated candidate references produced by query
// normalization or free-text parsing), canonical records (the authoritative
// stored representation keyed by catalog id), preference profiles, and
// scored match results.
//
// Descriptors carry no identity and are compared by a normalized
// title+year+kind key. Canonical records merge additively: a later source
// never clears a field an earlier source populated.
package media
