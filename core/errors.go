// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package core

import (
	"errors"
	"fmt"
)

// Domain validation errors
var (
	// ErrNoSources indicates a job was submitted without any sources.
	ErrNoSources = errors.New("at least one content source is required")

	// ErrUnknownContentType indicates a source carries an unsupported content type.
	ErrUnknownContentType = errors.New("unknown content type")

	// ErrEmptyReference indicates a source has no reference.
	ErrEmptyReference = errors.New("source reference cannot be empty")

	// ErrInvalidOptions indicates processing options failed validation.
	ErrInvalidOptions = errors.New("invalid processing options")

	// ErrNoContentExtracted indicates every source failed to parse.
	ErrNoContentExtracted = errors.New("no content could be extracted from any source")
)

// ErrorKind is the machine-readable class of a failure.
type ErrorKind string

const (
	KindValidation ErrorKind = "validation"
	KindParsing    ErrorKind = "parsing"
	KindProvider   ErrorKind = "provider"
	KindStrategy   ErrorKind = "strategy"
	KindAggregate  ErrorKind = "aggregate"
	KindInternal   ErrorKind = "internal"
)

// Error is a failure normalized at a component boundary.
// Message is safe to show to users; Err carries the cause for logs.
type Error struct {
	Kind    ErrorKind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return e.Message
	}
	return fmt.Sprintf("%s: %v", e.Message, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// NewError creates an Error of the given kind.
func NewError(kind ErrorKind, message string, cause error) *Error {
	return &Error{Kind: kind, Message: message, Err: cause}
}

// ValidationError wraps cause as a validation failure.
func ValidationError(message string, cause error) *Error {
	return NewError(KindValidation, message, cause)
}

// ParsingError wraps cause as a single-source parsing failure.
func ParsingError(message string, cause error) *Error {
	return NewError(KindParsing, message, cause)
}

// ProviderError wraps cause as a single back-end failure.
func ProviderError(message string, cause error) *Error {
	return NewError(KindProvider, message, cause)
}

// StrategyError wraps cause as a whole-pipeline failure.
func StrategyError(message string, cause error) *Error {
	return NewError(KindStrategy, message, cause)
}

// AggregateFailure reports that every alternative was exhausted.
// The causes are kept for logging only.
func AggregateFailure(message string, causes ...error) *Error {
	return NewError(KindAggregate, message, errors.Join(causes...))
}

// KindOf returns the kind of the outermost *Error in err's chain.
// Errors that were never normalized are reported as internal.
func KindOf(err error) ErrorKind {
	if err == nil {
		return ""
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// Message returns the user-facing message for err.
// For normalized errors only the top-level message is returned so that
// aggregated causes stay in the logs.
func Message(err error) string {
	if err == nil {
		return ""
	}
	var e *Error
	if errors.As(err, &e) && e.Message != "" {
		return e.Message
	}
	return err.Error()
}
