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

package strategy

import "errors"

var (
	// ErrJobNotFound indicates the job could not be loaded.
	ErrJobNotFound = errors.New("job not found")

	// ErrUnsupportedSource indicates a source type the strategy cannot handle.
	ErrUnsupportedSource = errors.New("unsupported content source")

	// ErrFastPathDisabled indicates the fast path is off or has no back-end.
	ErrFastPathDisabled = errors.New("fast path not available")

	// ErrNoQuestions indicates question generation produced nothing usable.
	ErrNoQuestions = errors.New("no usable questions generated")

	// ErrStrategyPanic indicates a strategy panicked.
	ErrStrategyPanic = errors.New("strategy panicked")
)
