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


// Package flow orchestrates question answering as a cyclic state machine.
//
// A question moves through Retrieve, Grade, Decide, Rewrite, Generate and
// Done states. Retrieved passages are graded for relevance individually;
// when none survive grading the question is rewritten and retrieval runs
// again, up to a bounded number of rewrite cycles. At the ceiling the flow
// proceeds to generation regardless, so the generator can answer from an
// empty context by saying it does not know.
//
// The Controller holds no state across invocations. Each call to Answer
// builds a fresh flowState, threads it through an explicit step loop, and
// discards it when the answer is returned.
package flow
