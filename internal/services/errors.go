package services

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrExternalTool marks a non-zero exit from a ripping or transcoding
	// tool. Operational: abort the current disc attempt, retry next poll.
	ErrExternalTool = errors.New("external tool error")
	// ErrPermission marks a privilege-denied failure and is the only
	// marker that triggers sudo escalation.
	ErrPermission = errors.New("permission denied")
	// ErrNotImplemented marks a capability gap (Blu-ray ripping). It is
	// surfaced loudly, never silently skipped.
	ErrNotImplemented = errors.New("not implemented")
	// ErrTransient marks expected conditions (no disc, file not yet
	// stable, directory not yet empty) that are skipped and retried.
	ErrTransient = errors.New("transient condition")
	// ErrConfiguration marks invalid configuration. Fatal at startup.
	ErrConfiguration = errors.New("configuration error")
)

// Wrap builds an error that carries component context while tagging it with
// the provided marker for later classification. The marker should be one of
// the exported sentinel errors above.
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

// IsTransient reports whether err represents an expected skip-and-retry
// condition that must not be logged as an error.
func IsTransient(err error) bool {
	return errors.Is(err, ErrTransient)
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
		return "pipeline failure"
	}
	return strings.Join(parts, ": ")
}
