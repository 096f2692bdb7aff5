// Package validation checks language-model output against the copywriting
// output contract and turns it into generated items.
package validation

import (
	"fmt"
	"strings"
)

// ParseError means the raw output held no parseable JSON array.
type ParseError struct {
	Message string
	Cause   error
}

func (e *ParseError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("parse error: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("parse error: %s", e.Message)
}

func (e *ParseError) Unwrap() error {
	return e.Cause
}

// NoValidItemsError means the array parsed but every element was rejected.
type NoValidItemsError struct {
	Total    int
	Rejected []ItemError
}

func (e *NoValidItemsError) Error() string {
	return fmt.Sprintf("no valid items: all %d items failed validation", e.Total)
}

// FieldError is one schema violation inside an item.
type FieldError struct {
	Field   string
	Message string
}

// ItemError collects the violations for the item at Index.
type ItemError struct {
	Index  int
	Errors []FieldError
}

func (e ItemError) Error() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "item %d invalid:", e.Index)
	for _, fe := range e.Errors {
		fmt.Fprintf(&sb, " %s: %s;", fe.Field, fe.Message)
	}
	return strings.TrimSuffix(sb.String(), ";")
}

// SchemaError means the item schema itself could not be compiled.
type SchemaError struct {
	Cause error
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("failed to compile item schema: %v", e.Cause)
}

func (e *SchemaError) Unwrap() error {
	return e.Cause
}
