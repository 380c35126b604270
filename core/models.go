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
	"encoding/binary"
	"strconv"
	"time"

	"github.com/go-crypt/x/blake2b"
)

// ID is a unique identifier for domain entities.
// It is generated using content-based hashing.
type ID uint64

// IDFromContent generates a deterministic ID from text content using BLAKE2b hashing.
// This ensures that identical content produces identical IDs.
func IDFromContent(text string) ID {
	h, _ := blake2b.New(8, nil) // 8 bytes = 64 bits
	h.Write([]byte(text))
	sum := h.Sum(nil)
	return ID(binary.LittleEndian.Uint64(sum))
}

// Passage is a retrieved unit of text used as candidate supporting context
// for an answer. Passages are produced by corpus ingestion and treated as
// immutable afterwards; re-ingesting a source document replaces its passages
// rather than mutating them.
type Passage struct {
	Id         ID
	Contents   string
	Source     string            // Originating document (typically a file name)
	Seq        int               // Position of the chunk within the source document
	Vector     []float32         // Embedding vector for semantic search (populated by ingestion)
	InsertedAt time.Time         // When the passage was inserted into the database
	UpdatedAt  time.Time         // When the passage was last updated
	Metadata   map[string]string // Optional metadata (e.g., "title", "article")
}

// Key returns the stable identity of the passage as "source#seq".
// It is used for generating deterministic IDs, so re-ingesting the same
// document updates passages in place instead of duplicating them.
func (p *Passage) Key() string {
	return p.Source + "#" + strconv.Itoa(p.Seq)
}

// SimilarityMatch represents a passage match from vector similarity search.
type SimilarityMatch struct {
	PassageId ID
	Score     float32
}

// SearchResult represents a search result with the full passage and similarity score.
type SearchResult struct {
	Passage *Passage
	Score   float32
}
