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


package openai

import "strings"

// gradeSystemPrompt instructs the model to act as a binary relevance grader.
// The test is intentionally lenient; the goal is to filter out clearly wrong
// retrievals, not to demand exact answers.
const gradeSystemPrompt = `你是一名评分员，负责评估检索到的文档与用户问题的相关性。
如果文档包含与用户问题相关的关键词或语义含义，请将其评为相关。
这不需要非常严格的测试。目标是过滤掉错误的检索结果。
请只输出一个 JSON 对象，格式为 {"binary_score": "yes"} 或 {"binary_score": "no"}，
表明文档是否与问题相关。不要包含任何其他文字。`

// gradeUserTemplate carries the passage and the question for grading.
const gradeUserTemplate = `检索到的文档:

%s

用户问题: %s`

// rewriteSystemPrompt instructs the model to rephrase the question into a form
// better suited for vector retrieval.
const rewriteSystemPrompt = `你是一个问题改写助手。你的任务是将输入的问题改写为更适合向量检索的形式。
请分析问题的核心意图，并尝试用更专业或更准确的法律术语进行表达。
只输出改写后的问题，不要包含任何解释。`

// rewriteUserTemplate carries the original question for rewriting.
const rewriteUserTemplate = `初始问题: %s`

// answerPromptTemplate is the generation prompt. It instructs the model to
// answer only from the provided context and to admit ignorance when the
// context does not contain the answer, including when it is empty.
const answerPromptTemplate = `你是一个基于《中华人民共和国民法典》回答问题的助手。
请使用以下检索到的上下文来回答问题。
如果你不知道答案，就直接说不知道，不要试图编造答案。
回答要尽量简洁，控制在三句话以内。

问题: %s
上下文: %s
回答:`

// joinPassages concatenates passage texts into a single context block.
func joinPassages(passages []string) string {
	return strings.Join(passages, "\n\n")
}
