// Package logging builds the slog loggers used throughout marquee and
// centralizes structured field conventions.
//
// Two handler formats are supported: a console handler for interactive use
// and a JSON handler for log shipping. Helpers mirror the slog attribute
// constructors so call sites stay terse, and WithContext lifts correlation
// identifiers out of the request context into every log line.
package logging
