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

package parsing

import "errors"

var (
	// ErrRegistryRequired indicates a Coordinator was built without a registry.
	ErrRegistryRequired = errors.New("parser registry is required")

	// ErrNilParser indicates a nil parser was registered.
	ErrNilParser = errors.New("parser cannot be nil")

	// ErrNoParser indicates no parser is registered for a content type.
	ErrNoParser = errors.New("no parser registered for content type")
)
