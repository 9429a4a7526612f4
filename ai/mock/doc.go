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

// Package mock provides test doubles for the ai package interfaces.
//
// The mocks are deterministic and record every call, which makes them
// suitable for exercising strategies and fallback chains without network
// access.
//
// # Usage
//
//	primary := mock.NewMockTextGenerator(ai.ProviderGoogle, "")
//	primary.InvokeFunc = func(ctx context.Context, req ai.TextRequest) (ai.TextResponse, error) {
//	    return ai.TextResponse{}, errors.New("503 service unavailable")
//	}
//	backup := mock.NewMockTextGenerator(ai.ProviderAnthropic, `{"title":"ok"}`)
//
//	provider := mock.NewMockProviderWithServices(
//	    []*mock.MockTextGenerator{primary, backup}, nil, nil)
//
//	// Check call counts
//	count := backup.CallCount()
//
// # Default Behavior
//
//   - MockTextGenerator: Returns Response
//   - MockTranscriber: Returns Text as the transcript
//   - MockMediaAnalyzer: Returns Response
//   - MockProvider: Wraps the mocks in real ai.Chain values
package mock
