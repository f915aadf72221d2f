package errors

import (
	"fmt"
	"path/filepath"
	"strings"
)

// ParseContext provides context information for parsing operations
type ParseContext struct {
	File   string `json:"file"`
	Line   int    `json:"line"`
	Column string `json:"column"`
	Value  string `json:"value"`
	Row    int    `json:"row,omitempty"`
}

// RowError extends the base parse error with location context. Row errors are
// recoverable: the parser drops the offending row and keeps going.
type RowError struct {
	*AnalyticsError
	Context *ParseContext `json:"context"`
}

// Error implements the error interface with location formatting
func (e *RowError) Error() string {
	var parts []string

	parts = append(parts, e.AnalyticsError.Error())

	if e.Context != nil {
		location := fmt.Sprintf("at %s", filepath.Base(e.Context.File))
		if e.Context.Line > 0 {
			location += fmt.Sprintf(":%d", e.Context.Line)
		}
		if e.Context.Column != "" {
			location += fmt.Sprintf(" column '%s'", e.Context.Column)
		}
		parts = append(parts, location)
	}

	return strings.Join(parts, " ")
}

// Unwrap exposes the embedded error so errors.As chains reach it
func (e *RowError) Unwrap() error {
	return e.AnalyticsError
}

// NewRowError creates a row-level parse error with location context
func NewRowError(code ErrorCode, context *ParseContext, message string, cause error) *RowError {
	var base *AnalyticsError
	if cause != nil {
		base = Wrap(cause, CategoryParse, code, message)
	} else {
		base = New(CategoryParse, code, message)
	}

	if context != nil {
		base.WithContext("file", context.File).
			WithContext("line", context.Line).
			WithContext("column", context.Column).
			WithContext("value", context.Value)
	}

	return &RowError{
		AnalyticsError: base,
		Context:        context,
	}
}

// InvalidAmountError creates an error for unparseable currency values
func InvalidAmountError(file string, line int, column string, value string) *RowError {
	context := &ParseContext{File: file, Line: line, Column: column, Value: value}
	err := NewRowError(CodeInvalidAmount, context,
		fmt.Sprintf("invalid amount '%s'", value), nil)
	err.WithSuggestion("amounts may include $ and thousand separators, e.g. '$1,250,000.00'")
	return err
}

// InvalidDateError creates an error for unparseable dates
func InvalidDateError(file string, line int, column string, value string) *RowError {
	context := &ParseContext{File: file, Line: line, Column: column, Value: value}
	err := NewRowError(CodeInvalidDate, context,
		fmt.Sprintf("invalid date '%s'", value), nil)
	err.WithSuggestion("supported formats include YYYY-MM-DD and MM/DD/YYYY")
	return err
}

// MissingColumnError creates an error for absent required columns
func MissingColumnError(file string, expectedColumns []string, actualColumns []string) *RowError {
	missing := findMissingColumns(expectedColumns, actualColumns)
	context := &ParseContext{File: file, Column: strings.Join(missing, ", ")}
	err := NewRowError(CodeMissingColumn, context,
		fmt.Sprintf("missing required columns: %s", strings.Join(missing, ", ")), nil)
	err.WithSuggestion("check the header row of the export against the expected columns")
	return err
}

// EmptyValueError creates an error for required fields that are empty
func EmptyValueError(file string, line int, column string) *RowError {
	context := &ParseContext{File: file, Line: line, Column: column}
	err := NewRowError(CodeMissingField, context,
		fmt.Sprintf("required value in column '%s' is empty", column), nil)
	return err
}

// ParseErrorCollector accumulates row errors up to a configured limit
type ParseErrorCollector struct {
	errors          []*RowError
	maxErrors       int
	continueOnError bool
}

// NewParseErrorCollector creates a collector with the given limits
func NewParseErrorCollector(maxErrors int, continueOnError bool) *ParseErrorCollector {
	return &ParseErrorCollector{
		maxErrors:       maxErrors,
		continueOnError: continueOnError,
	}
}

// Add records an error and reports whether parsing should continue
func (c *ParseErrorCollector) Add(err *RowError) bool {
	c.errors = append(c.errors, err)

	if !c.continueOnError {
		return false
	}

	if c.maxErrors > 0 && len(c.errors) >= c.maxErrors {
		return false
	}

	return true
}

// HasErrors reports whether any errors were collected
func (c *ParseErrorCollector) HasErrors() bool {
	return len(c.errors) > 0
}

// GetErrors returns the collected errors
func (c *ParseErrorCollector) GetErrors() []*RowError {
	return c.errors
}

// GetSummary builds an ErrorSummary from the collected errors
func (c *ParseErrorCollector) GetSummary() *ErrorSummary {
	base := make([]*AnalyticsError, 0, len(c.errors))
	for _, err := range c.errors {
		base = append(base, err.AnalyticsError)
	}
	return NewErrorSummary(base)
}

func findMissingColumns(expected, actual []string) []string {
	actualSet := make(map[string]bool, len(actual))
	for _, col := range actual {
		actualSet[strings.ToLower(strings.TrimSpace(col))] = true
	}

	var missing []string
	for _, col := range expected {
		if !actualSet[strings.ToLower(strings.TrimSpace(col))] {
			missing = append(missing, col)
		}
	}
	return missing
}
