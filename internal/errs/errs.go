// Package errs defines the error taxonomy shared by the variant pipeline.
//
// Every failure surfaced by the core is one of four categories: config,
// decode, encode, or storage. Callers classify with errors.As / IsCategory
// and decide their own retry policy; the core never retries.
package errs

import (
	"errors"
	"fmt"
)

// Category classifies pipeline failures for targeted handling.
type Category string

const (
	CategoryConfig  Category = "config"
	CategoryDecode  Category = "decode"
	CategoryEncode  Category = "encode"
	CategoryStorage Category = "storage"
)

// PipelineError is the structured error type used throughout the module.
type PipelineError struct {
	Category Category
	Op       string // operation name, e.g. "encode.webp" or "s3.put"
	Variant  string // variant name when the failure is per-variant, else ""
	Err      error
}

func (e *PipelineError) Error() string {
	if e.Variant != "" {
		return fmt.Sprintf("[%s] %s (variant %s): %v", e.Category, e.Op, e.Variant, e.Err)
	}
	return fmt.Sprintf("[%s] %s: %v", e.Category, e.Op, e.Err)
}

func (e *PipelineError) Unwrap() error { return e.Err }

// New creates a PipelineError.
func New(category Category, op string, err error) *PipelineError {
	return &PipelineError{Category: category, Op: op, Err: err}
}

// Config creates a configuration error from a message.
func Config(op, msg string) *PipelineError {
	return &PipelineError{Category: CategoryConfig, Op: op, Err: errors.New(msg)}
}

// Decode wraps a source-decoding failure.
func Decode(op string, err error) *PipelineError {
	return &PipelineError{Category: CategoryDecode, Op: op, Err: err}
}

// Encode wraps a resize/re-encode failure.
func Encode(op string, err error) *PipelineError {
	return &PipelineError{Category: CategoryEncode, Op: op, Err: err}
}

// Storage wraps a storage-backend failure.
func Storage(op string, err error) *PipelineError {
	return &PipelineError{Category: CategoryStorage, Op: op, Err: err}
}

// WithVariant returns a copy of the error annotated with the variant name.
func (e *PipelineError) WithVariant(name string) *PipelineError {
	dup := *e
	dup.Variant = name
	return &dup
}

// IsCategory reports whether err belongs to the given category.
func IsCategory(err error, cat Category) bool {
	var pe *PipelineError
	if errors.As(err, &pe) {
		return pe.Category == cat
	}
	return false
}

// Sentinel errors for common failure modes.
var (
	ErrUnsupportedFormat = errors.New("unsupported image format")
	ErrEmptyInput        = errors.New("empty input")
	ErrMissingBucket     = errors.New("bucket name is required")
	ErrUnknownVariant    = errors.New("variant name not in size catalog")
)
