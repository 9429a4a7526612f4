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

package ai

import (
	"context"
	"errors"
	"fmt"
)

var (
	// ErrAllProvidersFailed indicates a Chain exhausted its try-order.
	ErrAllProvidersFailed = errors.New("all providers failed")

	// ErrNoProviders indicates a Chain was built without providers.
	ErrNoProviders = errors.New("at least one provider is required")

	// ErrDuplicateProvider indicates two providers share a name in one Chain.
	ErrDuplicateProvider = errors.New("duplicate provider name")

	// ErrProviderNotConfigured indicates a provider was invoked without credentials.
	ErrProviderNotConfigured = errors.New("provider not configured")

	// ErrEmptyResponse indicates a provider returned no usable output.
	ErrEmptyResponse = errors.New("provider returned an empty response")
)

// FailureClass categorizes a provider failure.
type FailureClass string

const (
	FailureAuthentication FailureClass = "authentication"
	FailureRateLimit      FailureClass = "rate_limit"
	FailureTimeout        FailureClass = "timeout"
	FailureQuota          FailureClass = "quota_exceeded"
	FailureContentFilter  FailureClass = "content_filter"
	FailureUnavailable    FailureClass = "unavailable"
	FailureEmpty          FailureClass = "empty_response"
	FailureUnknown        FailureClass = "unknown"
)

// ProviderFailure records one provider's failure inside a Chain.
type ProviderFailure struct {
	Provider ProviderName
	Class    FailureClass
	Err      error
}

func (f *ProviderFailure) Error() string {
	return fmt.Sprintf("%s (%s): %v", f.Provider, f.Class, f.Err)
}

func (f *ProviderFailure) Unwrap() error {
	return f.Err
}

// Classifier maps a provider error onto a FailureClass.
// Implementation packages register richer classifiers through WithClassifier.
type Classifier func(err error) FailureClass

// DefaultClassifier recognizes the errors defined by this package and
// context deadlines.
func DefaultClassifier(err error) FailureClass {
	switch {
	case errors.Is(err, ErrEmptyResponse):
		return FailureEmpty
	case errors.Is(err, ErrProviderNotConfigured):
		return FailureAuthentication
	case errors.Is(err, context.DeadlineExceeded):
		return FailureTimeout
	}
	return FailureUnknown
}
