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

// Monitor provides hooks to observe a flow invocation.
// Implement this interface to track state transitions and grading outcomes.
// Callbacks are invoked sequentially from the controller goroutine.
type Monitor interface {
	Start(question string)
	Transition(from, to State)
	AfterRetrieve(query string, passages []*core.Passage)
	PassageRelevant(passage *core.Passage)
	PassageNotRelevant(passage *core.Passage)
	PassageIndeterminate(passage *core.Passage)
	AfterGrade(kept []*core.Passage)
	AfterRewrite(retryCount int, newQuery string)
	Finish(answer string)
}

// noopMonitor is a no-op implementation of Monitor
type noopMonitor struct{}

var _ Monitor = (*noopMonitor)(nil)

func (n *noopMonitor) Start(_ string)                        {}
func (n *noopMonitor) Transition(_, _ State)                 {}
func (n *noopMonitor) AfterRetrieve(_ string, _ []*core.Passage) {}
func (n *noopMonitor) PassageRelevant(_ *core.Passage)       {}
func (n *noopMonitor) PassageNotRelevant(_ *core.Passage)    {}
func (n *noopMonitor) PassageIndeterminate(_ *core.Passage)  {}
func (n *noopMonitor) AfterGrade(_ []*core.Passage)          {}
func (n *noopMonitor) AfterRewrite(_ int, _ string)          {}
func (n *noopMonitor) Finish(_ string)                       {}
