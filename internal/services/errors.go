package services

import (
	"sort"
	"strings"
)

// ValidationError reports request fields that failed validation, keyed by field name
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e.Fields[k])
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// validationErrors collects field errors
type validationErrors map[string]string

func (v validationErrors) add(field, message string) {
	if _, ok := v[field]; !ok {
		v[field] = message
	}
}

// err returns nil when no field failed
func (v validationErrors) err() error {
	if len(v) == 0 {
		return nil
	}
	return &ValidationError{Fields: v}
}
