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

package badger

import (
	"encoding/binary"
	"fmt"
	"time"
)

const (
	jobRecordPrefix  = "jobrec"
	jobCreatedPrefix = "jobcre"
)

// makeJobKey generates a key for a job by ID.
func makeJobKey(id string) []byte {
	return []byte(fmt.Sprintf("%s:%s", jobRecordPrefix, id))
}

// makeJobCreatedKey generates a composite key for the creation-time index.
// Format: prefix:timestamp:id
func makeJobCreatedKey(createdAt time.Time, id string) []byte {
	prefix := []byte(jobCreatedPrefix + ":")
	buf := make([]byte, len(prefix)+8+len(id))
	offset := copy(buf, prefix)
	// Write in BigEndian order so lexicographic sort works correctly
	binary.BigEndian.PutUint64(buf[offset:], uint64(createdAt.UnixMicro()))
	offset += 8
	copy(buf[offset:], id)
	return buf
}

// jobIDFromCreatedKey extracts the job ID from a creation-time index key.
func jobIDFromCreatedKey(key []byte) string {
	prefixLen := len(jobCreatedPrefix) + 1
	if len(key) < prefixLen+8 {
		return ""
	}
	return string(key[prefixLen+8:])
}
