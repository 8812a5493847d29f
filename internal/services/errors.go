package services

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrConfiguration marks failures caused by missing or invalid settings
	// (unknown prompt key, absent credentials). Detected before any fetch
	// begins where possible.
	ErrConfiguration = errors.New("configuration error")
	// ErrFetch marks mail source failures; these fail the whole task.
	ErrFetch = errors.New("fetch error")
	// ErrStage marks pipeline stage failures; these are isolated to the
	// batch that raised them.
	ErrStage = errors.New("stage error")
	// ErrValidation marks caller contract violations.
	ErrValidation = errors.New("validation error")
	// ErrNotFound marks lookups that matched nothing.
	ErrNotFound = errors.New("not found")
)

// Wrap builds an error message that includes stage context while tagging it
// with the provided marker for later classification. The marker should be one
// of the exported sentinel errors above.
func Wrap(marker error, stage, operation, message string, err error) error {
	detail := buildDetail(stage, operation, message)
	if marker == nil {
		marker = ErrStage
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

// IsTaskFatal reports whether an error should fail the whole task rather than
// a single batch.
func IsTaskFatal(err error) bool {
	return errors.Is(err, ErrConfiguration) || errors.Is(err, ErrFetch)
}

// IsConfiguration reports whether an error is tagged as a configuration
// failure.
func IsConfiguration(err error) bool {
	return errors.Is(err, ErrConfiguration)
}

// IsNotFound reports whether an error is tagged as a missing-resource lookup.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// Details extracts the human-readable portion of a wrapped service error,
// stripping the sentinel prefix so task records stay readable.
func Details(err error) string {
	if err == nil {
		return ""
	}
	msg := err.Error()
	for _, marker := range []error{ErrConfiguration, ErrFetch, ErrStage, ErrValidation, ErrNotFound} {
		prefix := marker.Error() + ": "
		if strings.HasPrefix(msg, prefix) {
			return strings.TrimPrefix(msg, prefix)
		}
	}
	return msg
}

func buildDetail(stage, operation, message string) string {
	parts := make([]string, 0, 3)
	if stage = strings.TrimSpace(stage); stage != "" {
		parts = append(parts, stage)
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
