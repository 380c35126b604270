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

	"github.com/poiesic/lexqa/core"
)

// Key prefixes. The record prefix and the source index prefix are kept
// disjoint so a prefix scan over records never sees index keys.
const (
	passageRecordPrefix = "pasrec"
	passageSourcePrefix = "passrc"
)

// makePassageKey generates a key for a passage record by ID.
func makePassageKey(id core.ID) []byte {
	return []byte(fmt.Sprintf("%s:%d", passageRecordPrefix, id))
}

// passageRecordScanPrefix returns the prefix covering all passage records.
func passageRecordScanPrefix() []byte {
	return []byte(passageRecordPrefix + ":")
}

// makePassageSourceKey generates a composite key for the source index.
// Format: prefix:source\x00seq
// The NUL separator keeps sources that share a prefix from colliding, and
// the BigEndian sequence number makes lexicographic iteration follow
// document order.
func makePassageSourceKey(source string, seq int) []byte {
	prefix := []byte(passageSourcePrefix + ":" + source + "\x00")
	buf := make([]byte, len(prefix)+8)
	offset := copy(buf, prefix)
	binary.BigEndian.PutUint64(buf[offset:], uint64(seq))
	return buf
}

// makePassageSourceScanPrefix generates the iteration prefix for one source.
func makePassageSourceScanPrefix(source string) []byte {
	return []byte(passageSourcePrefix + ":" + source + "\x00")
}
