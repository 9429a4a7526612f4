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

package cache

import "errors"

var (
	// ErrDirRequired indicates the cache was created without a directory.
	ErrDirRequired = errors.New("cache directory is required")

	// ErrKeyRequired indicates an empty cache key.
	ErrKeyRequired = errors.New("cache key is required")

	// ErrArtifactTooSmall indicates an artifact below the integrity floor.
	ErrArtifactTooSmall = errors.New("artifact is smaller than the integrity floor")

	// ErrClosed indicates the cache was used after Release.
	ErrClosed = errors.New("cache is closed")
)
