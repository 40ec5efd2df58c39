// Package llm wraps the OpenRouter-style chat completion API used for query
// expansion, assisted re-extraction, and review enrichment.
//
// The client imposes no structure on replies beyond UTF-8 text; callers that
// need JSON use CompleteJSON plus DecodeLLMJSON, which tolerates the usual
// model formatting quirks (code fences, prose around the payload). Transient
// HTTP failures are retried with exponential backoff, honoring Retry-After.
//
// The generative service is optional: an unconfigured client reports
// !Configured() and callers skip their enrichment paths rather than fail.
package llm
