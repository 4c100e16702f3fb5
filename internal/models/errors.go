package models

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Error kinds shared by every layer. Wrap them with fmt.Errorf("...: %w", err)
// and match with errors.Is.
var (
	ErrNotFound      = errors.New("not found")
	ErrDuplicateCode = errors.New("code already exists")
	ErrAssetWrite    = errors.New("asset write failed")
	ErrAssetDelete   = errors.New("asset delete failed")
	ErrUnauthorized  = errors.New("unauthorized")
	ErrNoVariants    = errors.New("item has no variants")
)

// ValidationError is returned before any store write when input is rejected.
type ValidationError struct {
	Fields map[string]string
}

// NewValidationError builds a ValidationError for a single field.
func NewValidationError(field, msg string) *ValidationError {
	return &ValidationError{Fields: map[string]string{field: msg}}
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s: %s", k, e.Fields[k]))
	}
	return "validation failed: " + strings.Join(parts, "; ")
}
