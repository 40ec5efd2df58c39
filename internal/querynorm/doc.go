// Package querynorm turns a free-text request into a structured media
// descriptor: it strips noise tokens, lifts out an embedded release year and
// a known language or film-industry name, and guesses the media kind from
// keyword presence. Normalization never fails; the worst case is a
// descriptor carrying only the original string as its title.
package querynorm
