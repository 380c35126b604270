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

// Relevance is the outcome of a passage relevance judgment.
type Relevance int

const (
	// RelevanceIndeterminate means no usable judgment was produced.
	RelevanceIndeterminate Relevance = iota
	// RelevanceRelevant means the passage meaningfully addresses the question.
	RelevanceRelevant
	// RelevanceNotRelevant means the passage does not address the question.
	RelevanceNotRelevant
)

// String returns a human-readable label for logging.
func (r Relevance) String() string {
	switch r {
	case RelevanceRelevant:
		return "relevant"
	case RelevanceNotRelevant:
		return "not_relevant"
	default:
		return "indeterminate"
	}
}
