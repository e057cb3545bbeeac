// Package errors defines the lint error taxonomy shared by the validate
// command, the scanner, and the preview server's problem reporting.
package errors

import (
	"fmt"
	"sort"
	"sync"
	"time"
)

// LintError represents a problem found in a lesson file
type LintError struct {
	Lesson    string
	File      string
	Line      int
	Rule      string
	Message   string
	Severity  ErrorSeverity
	Timestamp time.Time
}

// ErrorSeverity represents the severity of an error
type ErrorSeverity int

const (
	SeverityInfo ErrorSeverity = iota
	SeverityWarning
	SeverityError
)

// String returns the string representation of the severity
func (s ErrorSeverity) String() string {
	switch s {
	case SeverityInfo:
		return "info"
	case SeverityWarning:
		return "warning"
	case SeverityError:
		return "error"
	default:
		return "unknown"
	}
}

// Error implements the error interface
func (le *LintError) Error() string {
	if le.Line > 0 {
		return fmt.Sprintf("%s:%d: %s: %s [%s]", le.File, le.Line, le.Severity, le.Message, le.Rule)
	}
	return fmt.Sprintf("%s: %s: %s [%s]", le.File, le.Severity, le.Message, le.Rule)
}

// ErrorCollector collects lint errors and general errors from concurrent
// scanning and validation passes.
type ErrorCollector struct {
	lintErrors []LintError
	errors     []error
	mutex      sync.RWMutex
}

// NewErrorCollector creates a new error collector
func NewErrorCollector() *ErrorCollector {
	return &ErrorCollector{
		lintErrors: make([]LintError, 0),
		errors:     make([]error, 0),
	}
}

// Add adds a lint error to the collector
func (ec *ErrorCollector) Add(err LintError) {
	ec.mutex.Lock()
	defer ec.mutex.Unlock()
	err.Timestamp = time.Now()
	ec.lintErrors = append(ec.lintErrors, err)
}

// AddError adds a general error to the collector
func (ec *ErrorCollector) AddError(err error) {
	if err == nil {
		return
	}
	ec.mutex.Lock()
	defer ec.mutex.Unlock()
	ec.errors = append(ec.errors, err)
}

// LintErrors returns all collected lint errors sorted by file then line.
func (ec *ErrorCollector) LintErrors() []LintError {
	ec.mutex.RLock()
	defer ec.mutex.RUnlock()

	result := make([]LintError, len(ec.lintErrors))
	copy(result, ec.lintErrors)
	sort.Slice(result, func(i, j int) bool {
		if result[i].File != result[j].File {
			return result[i].File < result[j].File
		}
		return result[i].Line < result[j].Line
	})
	return result
}

// GeneralErrors returns all collected non-lint errors.
func (ec *ErrorCollector) GeneralErrors() []error {
	ec.mutex.RLock()
	defer ec.mutex.RUnlock()

	result := make([]error, len(ec.errors))
	copy(result, ec.errors)
	return result
}

// HasErrors returns true if any error-severity lint error or general error
// was collected. Warnings and infos alone do not count.
func (ec *ErrorCollector) HasErrors() bool {
	ec.mutex.RLock()
	defer ec.mutex.RUnlock()

	if len(ec.errors) > 0 {
		return true
	}
	for _, err := range ec.lintErrors {
		if err.Severity >= SeverityError {
			return true
		}
	}
	return false
}

// Count returns the number of lint errors at the given severity.
func (ec *ErrorCollector) Count(severity ErrorSeverity) int {
	ec.mutex.RLock()
	defer ec.mutex.RUnlock()

	n := 0
	for _, err := range ec.lintErrors {
		if err.Severity == severity {
			n++
		}
	}
	return n
}

// ByFile returns lint errors for a specific file
func (ec *ErrorCollector) ByFile(file string) []LintError {
	ec.mutex.RLock()
	defer ec.mutex.RUnlock()

	var fileErrors []LintError
	for _, err := range ec.lintErrors {
		if err.File == file {
			fileErrors = append(fileErrors, err)
		}
	}
	return fileErrors
}

// Clear clears all errors
func (ec *ErrorCollector) Clear() {
	ec.mutex.Lock()
	defer ec.mutex.Unlock()
	ec.lintErrors = ec.lintErrors[:0]
	ec.errors = ec.errors[:0]
}
