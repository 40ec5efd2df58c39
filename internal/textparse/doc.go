// Package textparse extracts structured media descriptors from the
// unstructured prose a generative text service returns.
//
// Extraction runs an ordered list of independent pattern strategies, each
// matching one prose convention (numbered lists with parenthesized or dashed
// years, bold markdown titles, bare title lines). Results are unioned and
// deduplicated. When nothing structured is found and the originating query
// does not look like a list request, the whole query is treated as a single
// literal title, because models often answer a one-title question with a
// narrative paragraph instead of a list.
package textparse
