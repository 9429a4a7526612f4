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

package parsers

import "errors"

var (
	// ErrFileNotFound indicates a file reference does not resolve to a file.
	ErrFileNotFound = errors.New("file not found")

	// ErrFileTooLarge indicates a file above the parser's size cap.
	ErrFileTooLarge = errors.New("file too large")

	// ErrUnexpectedFileType indicates file contents that do not match the content type.
	ErrUnexpectedFileType = errors.New("unexpected file type")

	// ErrNoText indicates a source was read but contained no text.
	ErrNoText = errors.New("no text content found")

	// ErrInvalidURL indicates a reference that is not an absolute http(s) URL.
	ErrInvalidURL = errors.New("invalid URL")

	// ErrUnsupportedPage indicates a web response that is not HTML.
	ErrUnsupportedPage = errors.New("unsupported page content type")

	// ErrInvalidVideoURL indicates a reference with no recognizable video id.
	ErrInvalidVideoURL = errors.New("invalid video URL")

	// ErrVideoTooLong indicates a video above the duration limit.
	ErrVideoTooLong = errors.New("video too long")

	// ErrAudioTooLarge indicates an audio stream above the size cap.
	ErrAudioTooLarge = errors.New("audio too large")

	// ErrNoAudioFormat indicates a video without a downloadable audio stream.
	ErrNoAudioFormat = errors.New("no audio format available")

	// ErrTranscriptTooShort indicates a transcript too short to be useful.
	ErrTranscriptTooShort = errors.New("transcript is empty or too short")
)
