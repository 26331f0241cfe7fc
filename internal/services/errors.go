package services

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrTransient          = errors.New("transient failure")
	ErrNotFound           = errors.New("not found")
	ErrMalformed          = errors.New("malformed response")
	ErrDeclined           = errors.New("declined by user")
	ErrUnresolved         = errors.New("unresolved")
	ErrConfiguration      = errors.New("configuration error")
	ErrValidation         = errors.New("validation error")
	ErrExternalTool       = errors.New("external tool error")
	ErrNoDisc             = errors.New("no disc or read error")
	ErrPrinterUnavailable = errors.New("printer unavailable")
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

// IsPermanent reports whether err is a confirmed absence that must not be
// retried. Everything else, malformed payloads included, is transient.
func IsPermanent(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// Classify returns a short taxonomy name for logging.
func Classify(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrDeclined):
		return "declined"
	case errors.Is(err, ErrUnresolved):
		return "unresolved"
	case errors.Is(err, ErrMalformed):
		return "malformed"
	case errors.Is(err, ErrConfiguration):
		return "configuration"
	case errors.Is(err, ErrValidation):
		return "validation"
	case errors.Is(err, ErrNoDisc):
		return "no_disc"
	case errors.Is(err, ErrPrinterUnavailable):
		return "printer_unavailable"
	case errors.Is(err, ErrExternalTool):
		return "external_tool"
	default:
		return "transient"
	}
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
