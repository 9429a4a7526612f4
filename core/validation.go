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
	"fmt"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

func structValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
	})
	return validate
}

// ValidateSources validates a list of content sources.
//
// Validation rules:
//   - the list must not be empty
//   - every ContentType must be known
//   - every Reference must be non-blank
func ValidateSources(sources []ContentSource) error {
	if len(sources) == 0 {
		return ValidationError("no content sources provided", ErrNoSources)
	}
	for i, src := range sources {
		if err := ValidateSource(src); err != nil {
			return ValidationError(fmt.Sprintf("source %d is invalid", i), err)
		}
	}
	return nil
}

// ValidateSource validates a single content source.
func ValidateSource(src ContentSource) error {
	if strings.TrimSpace(src.Reference) == "" {
		return ErrEmptyReference
	}
	if !src.ContentType.Valid() {
		return fmt.Errorf("%w: %q", ErrUnknownContentType, src.ContentType)
	}
	return nil
}

// ValidateOptions validates processing options.
//
// NOT validated:
//   - PreferredProvider (unknown providers are ignored by the chain)
//   - Strategy (unknown strategies fall back to automatic selection)
func ValidateOptions(opts ProcessingOptions) error {
	if err := structValidator().Struct(opts); err != nil {
		return ValidationError("invalid processing options", fmt.Errorf("%w: %w", ErrInvalidOptions, err))
	}
	for qt, n := range opts.QuestionCounts {
		if n < 0 {
			return ValidationError("invalid processing options",
				fmt.Errorf("%w: negative count for %s", ErrInvalidOptions, qt))
		}
	}
	return nil
}

// ValidateJob validates a job before it is accepted for processing.
func ValidateJob(job *Job) error {
	if job == nil {
		return ValidationError("job is nil", nil)
	}
	if err := structValidator().Struct(job); err != nil {
		if len(job.Sources) == 0 {
			return ValidationError("no content sources provided", ErrNoSources)
		}
		return ValidationError("invalid job", err)
	}
	if err := ValidateSources(job.Sources); err != nil {
		return err
	}
	return ValidateOptions(job.Options)
}
