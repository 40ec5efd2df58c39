package services

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrNotFound marks the expected outcome of a lookup chain that exhausted
	// every stage without a hit.
	ErrNotFound = errors.New("not found")
	// ErrTransient marks network-level failures on external calls. The
	// resolver treats these as a miss and advances the chain.
	ErrTransient = errors.New("transient failure")
	// ErrTimeout marks an external call that exceeded its per-call budget.
	// Classified like ErrTransient.
	ErrTimeout = errors.New("timeout")
	// ErrConfiguration marks missing or invalid credentials for a required
	// external service. Fatal: it aborts the pipeline call and is surfaced
	// to the caller distinctly from not-found.
	ErrConfiguration = errors.New("configuration error")
	// ErrValidation marks malformed caller input.
	ErrValidation = errors.New("validation error")
)

// Wrap builds an error message that includes component context while tagging
// it with the provided marker for later classification. The marker should be
// one of the exported sentinel errors above.
func Wrap(marker error, component, operation, message string, err error) error {
	detail := buildDetail(component, operation, message)
	if marker == nil {
		marker = ErrTransient
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

// IsFatal reports whether err must abort the pipeline call rather than be
// absorbed as a miss. Only configuration errors qualify.
func IsFatal(err error) bool {
	return errors.Is(err, ErrConfiguration)
}

// IsMiss reports whether err should be treated as "found nothing" by the
// resolver chain: explicit not-found plus anything transient.
func IsMiss(err error) bool {
	return errors.Is(err, ErrNotFound) || errors.Is(err, ErrTransient) || errors.Is(err, ErrTimeout)
}

func buildDetail(component, operation, message string) string {
	parts := make([]string, 0, 3)
	if component = strings.TrimSpace(component); component != "" {
		parts = append(parts, component)
	}
	if operation = strings.TrimSpace(operation); operation != "" {
		parts = append(parts, operation)
	}
	if message = strings.TrimSpace(message); message != "" {
		parts = append(parts, message)
	}
	if len(parts) == 0 {
		return "service failure"
	}
	return strings.Join(parts, ": ")
}
