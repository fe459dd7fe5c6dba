// Package errors defines the error types returned across the foodmap
// pipeline. Every typed error maps onto a sentinel so callers can test
// the class of a failure with errors.Is and recover details with
// errors.As, without caring which stage produced it.
package errors

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Standard library helpers, re-exported so callers import one package.
var (
	New  = errors.New
	Is   = errors.Is
	As   = errors.As
	Join = errors.Join
)

// Sentinels.
var (
	ErrNotFound          = errors.New("not found")
	ErrInvalidInput      = errors.New("invalid input")
	ErrMalformedTaxonomy = errors.New("malformed taxonomy")
	ErrUnmergeable       = errors.New("unmergeable record pair")
	ErrStoreUnavailable  = errors.New("store unavailable")
	ErrDuplicateKey      = errors.New("duplicate key")
	ErrCanceled          = errors.New("operation canceled")
)

// NotFoundError reports a missing taxonomy term, record or collection.
type NotFoundError struct {
	Resource string
	ID       string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %q not found", e.Resource, e.ID)
}

// Is matches ErrNotFound.
func (e *NotFoundError) Is(target error) bool { return target == ErrNotFound }

// NewNotFoundError creates a NotFoundError.
func NewNotFoundError(resource, id string) *NotFoundError {
	return &NotFoundError{Resource: resource, ID: id}
}

// ValidationError reports a rejected option, argument or input record.
type ValidationError struct {
	Field   string
	Value   any
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return "invalid input: " + e.Message
	}
	return "invalid " + e.Field + ": " + e.Message
}

// Is matches ErrInvalidInput.
func (e *ValidationError) Is(target error) bool { return target == ErrInvalidInput }

// NewValidationError creates a ValidationError.
func NewValidationError(field string, value any, message string) *ValidationError {
	return &ValidationError{Field: field, Value: value, Message: message}
}

// ConfigError reports configuration that cannot be used.
type ConfigError struct {
	Component string
	Message   string
	Err       error
}

func (e *ConfigError) Error() string {
	msg := "config"
	if e.Component != "" {
		msg += " " + e.Component
	}
	return msg + ": " + e.Message
}

func (e *ConfigError) Unwrap() error { return e.Err }

// NewConfigError creates a ConfigError.
func NewConfigError(component, message string, err error) *ConfigError {
	return &ConfigError{Component: component, Message: message, Err: err}
}

// MalformedTaxonomyError describes a taxonomy block dropped while parsing.
type MalformedTaxonomyError struct {
	Source string // file name, empty for readers
	Line   int    // line of the block's first language line
	Block  string // that line, verbatim
	Reason string
}

func (e *MalformedTaxonomyError) Error() string {
	where := "line " + strconv.Itoa(e.Line)
	if e.Source != "" {
		where = e.Source + " " + where
	}
	return fmt.Sprintf("malformed taxonomy block at %s (%q): %s", where, e.Block, e.Reason)
}

// Is matches ErrMalformedTaxonomy.
func (e *MalformedTaxonomyError) Is(target error) bool { return target == ErrMalformedTaxonomy }

// NewMalformedTaxonomyError creates a MalformedTaxonomyError.
func NewMalformedTaxonomyError(source string, line int, block, reason string) *MalformedTaxonomyError {
	return &MalformedTaxonomyError{Source: source, Line: line, Block: block, Reason: reason}
}

// MergeError describes a matched pair left for manual review.
type MergeError struct {
	IDMatch string
	Fields  []string // dot paths of the disagreeing fields
	Err     error
}

func (e *MergeError) Error() string {
	if len(e.Fields) > 0 {
		return fmt.Sprintf("cannot merge products with id_match %s: conflicting fields %s", e.IDMatch, strings.Join(e.Fields, ", "))
	}
	return fmt.Sprintf("cannot merge products with id_match %s: %v", e.IDMatch, e.Err)
}

func (e *MergeError) Unwrap() error { return e.Err }

// Is matches ErrUnmergeable.
func (e *MergeError) Is(target error) bool { return target == ErrUnmergeable }

// NewMergeError creates a MergeError.
func NewMergeError(idMatch string, fields []string, err error) *MergeError {
	return &MergeError{IDMatch: idMatch, Fields: fields, Err: err}
}

// StoreError describes a failed document store operation.
type StoreError struct {
	Operation  string // connect, index, upsert, find, replace, drop
	Collection string
	Batch      int // batch number of a batched write, -1 otherwise
	Err        error
}

func (e *StoreError) Error() string {
	switch {
	case e.Collection != "" && e.Batch >= 0:
		return fmt.Sprintf("store %s failed on %s (batch %d): %v", e.Operation, e.Collection, e.Batch, e.Err)
	case e.Collection != "":
		return fmt.Sprintf("store %s failed on %s: %v", e.Operation, e.Collection, e.Err)
	default:
		return fmt.Sprintf("store %s failed: %v", e.Operation, e.Err)
	}
}

func (e *StoreError) Unwrap() error { return e.Err }

// Is matches ErrStoreUnavailable for connection failures only.
func (e *StoreError) Is(target error) bool {
	return target == ErrStoreUnavailable && e.Operation == "connect"
}

// NewStoreError creates a StoreError.
func NewStoreError(operation, collection string, batch int, err error) *StoreError {
	return &StoreError{Operation: operation, Collection: collection, Batch: batch, Err: err}
}

// ParseError describes undecodable input: a taxonomy, a mapping file or
// an extended-JSON line.
type ParseError struct {
	Format  string // json, yaml, taxonomy, extjson
	File    string
	Line    int
	Message string
	Err     error
}

func (e *ParseError) Error() string {
	var b strings.Builder
	b.WriteString("parse ")
	b.WriteString(e.Format)
	if e.File != "" {
		b.WriteString(" " + e.File)
		if e.Line > 0 {
			b.WriteString(":" + strconv.Itoa(e.Line))
		}
	}
	b.WriteString(": " + e.Message)
	if e.Err != nil && e.Err.Error() != e.Message {
		b.WriteString(": " + e.Err.Error())
	}
	return b.String()
}

func (e *ParseError) Unwrap() error { return e.Err }

// NewParseError creates a ParseError.
func NewParseError(format, file, message string, err error) *ParseError {
	return &ParseError{Format: format, File: file, Message: message, Err: err}
}

// IOError describes a failed file operation.
type IOError struct {
	Operation string // open, read, write
	Path      string
	Err       error
}

func (e *IOError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("%s: %v", e.Operation, e.Err)
	}
	return fmt.Sprintf("%s %s: %v", e.Operation, e.Path, e.Err)
}

func (e *IOError) Unwrap() error { return e.Err }

// NewIOError creates an IOError.
func NewIOError(operation, path string, err error) *IOError {
	return &IOError{Operation: operation, Path: path, Err: err}
}

// ResourceError adds the failed step to an error raised beneath it, such
// as loading the taxonomy or running one pipeline stage.
type ResourceError struct {
	Operation string // create, load, get, run
	Resource  string
	ID        string
	Err       error
}

func (e *ResourceError) Error() string {
	target := e.Resource
	if e.ID != "" {
		target += " " + e.ID
	}
	return fmt.Sprintf("%s %s: %v", e.Operation, target, e.Err)
}

func (e *ResourceError) Unwrap() error { return e.Err }

// NewResourceError creates a ResourceError.
func NewResourceError(operation, resource, id string, err error) *ResourceError {
	return &ResourceError{Operation: operation, Resource: resource, ID: id, Err: err}
}

// IsNotFound reports whether err is a not-found error.
func IsNotFound(err error) bool { return errors.Is(err, ErrNotFound) }

// IsValidationError reports whether err rejects an input.
func IsValidationError(err error) bool { return errors.Is(err, ErrInvalidInput) }

// IsMalformedTaxonomy reports whether err is a skipped taxonomy block.
func IsMalformedTaxonomy(err error) bool { return errors.Is(err, ErrMalformedTaxonomy) }

// IsUnmergeable reports whether err is an unmergeable pair.
func IsUnmergeable(err error) bool { return errors.Is(err, ErrUnmergeable) }

// IsStoreUnavailable reports whether the store could not be reached.
func IsStoreUnavailable(err error) bool { return errors.Is(err, ErrStoreUnavailable) }

// IsCanceled reports whether err comes from a canceled operation.
func IsCanceled(err error) bool { return errors.Is(err, ErrCanceled) }

// WrapValidation turns err into a ValidationError for field. Nil stays nil.
func WrapValidation(field string, err error) error {
	if err == nil {
		return nil
	}
	return &ValidationError{Field: field, Message: err.Error()}
}

// WrapIO wraps err in an IOError. Nil stays nil.
func WrapIO(operation, path string, err error) error {
	if err == nil {
		return nil
	}
	return NewIOError(operation, path, err)
}

// WrapResource wraps err in a ResourceError. Nil stays nil.
func WrapResource(operation, resource, id string, err error) error {
	if err == nil {
		return nil
	}
	return NewResourceError(operation, resource, id, err)
}

// WrapParse wraps err in a ParseError. Nil stays nil.
func WrapParse(format, file string, err error) error {
	if err == nil {
		return nil
	}
	return NewParseError(format, file, err.Error(), err)
}
