// Package errors derives the error-class tags attached to scheduler and API
// metrics, so dashboards can split failed populate cycles by cause.
package errors

import (
	goerrors "errors"
	"reflect"
	"strings"

	apperrors "github.com/strixlab/patrol/internal/errors"
)

// Classify returns a stable tag value for an error. Application errors tag
// as their error code (queue_full, not_found, unavailable, ...); anything
// else falls back to the innermost concrete type name.
func Classify(err error) string {
	if err == nil {
		return ""
	}

	var appErr *apperrors.AppError
	if goerrors.As(err, &appErr) {
		return string(appErr.Code)
	}

	for {
		unwrapped := goerrors.Unwrap(err)
		if unwrapped == nil {
			break
		}
		err = unwrapped
	}

	return typeName(err)
}

// typeName renders an error's concrete type as a metric-safe tag.
func typeName(err error) string {
	t := reflect.TypeOf(err)
	for t != nil && t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t == nil {
		return "unknown"
	}

	name := strings.ToLower(strings.ReplaceAll(t.String(), "*", ""))
	name = strings.ReplaceAll(name, ".", "_")
	if name == "" {
		return "unknown"
	}
	return name
}
