package resolve

// RefineQueryPrompt is the system prompt for assisted re-extraction: given a
// raw user query that failed a catalog search, recover the most likely
// intended title.
const RefineQueryPrompt = `You identify the single movie or TV series a user is most likely asking about.

The user's query failed an exact catalog search. Correct obvious misspellings,
strip commentary words, and produce the canonical release title. Prefer the
most famous work when the query is ambiguous.

Respond ONLY with JSON:
{"title": "canonical title", "year": 4-digit release year or null, "kind": "movie" or "series"}`

// ReviewSummaryPrompt is the system prompt for review enrichment: structured
// critic data for a known title.
const ReviewSummaryPrompt = `You summarize the critical reception of a specific film or TV series.

Base the summary on widely reported critical consensus. If you do not know
the work, use null values rather than inventing a reception.

Respond ONLY with JSON:
{"critic_rating": average critic rating from 0.0 to 10.0 or null, "summary": "two to three sentence critical consensus" or null}`
