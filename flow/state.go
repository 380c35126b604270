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


package flow

import "github.com/poiesic/lexqa/core"

// State identifies a node in the question-answering state machine.
type State int

const (
	// StateRetrieve fetches candidate passages for the current query.
	StateRetrieve State = iota

	// StateGrade classifies each retrieved passage for relevance.
	StateGrade

	// StateDecide picks the next state from the graded passage set.
	// Pure policy, no I/O.
	StateDecide

	// StateRewrite reformulates the query and increments the retry count.
	// The only back edge in the graph.
	StateRewrite

	// StateGenerate produces the final answer from the surviving passages.
	StateGenerate

	// StateDone terminates the flow.
	StateDone
)

// String returns a human-readable state name.
func (s State) String() string {
	switch s {
	case StateRetrieve:
		return "retrieve"
	case StateGrade:
		return "grade"
	case StateDecide:
		return "decide"
	case StateRewrite:
		return "rewrite"
	case StateGenerate:
		return "generate"
	case StateDone:
		return "done"
	default:
		return "unknown"
	}
}

// flowState carries one question through the machine. It is created per
// invocation and never shared between goroutines; grading fan-out writes
// into per-index slots and joins before the state advances.
type flowState struct {
	question   string
	retryCount int
	passages   []*core.Passage
	answer     string
}
