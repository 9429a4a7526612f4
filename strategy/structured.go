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

package strategy

import (
	"fmt"
	"sort"
	"strings"

	"github.com/parkho-ai/contentengine/ai/llm"
	"github.com/parkho-ai/contentengine/core"
	"github.com/tidwall/gjson"
)

const rawSummaryChars = 500

// ParseQuality records how much of a model response had to be recovered.
type ParseQuality string

const (
	// QualityStrict means the cleaned response was valid JSON.
	QualityStrict ParseQuality = "strict"
	// QualityExtracted means a balanced object was cut out of surrounding text.
	QualityExtracted ParseQuality = "extracted"
	// QualitySalvaged means only individual fields or questions were recovered.
	QualitySalvaged ParseQuality = "salvaged"
	// QualityRaw means nothing structured was found.
	QualityRaw ParseQuality = "raw"
)

// StructuredOutput is the normalized form of a model's JSON analysis.
type StructuredOutput struct {
	Title      string
	Transcript string
	Summary    string
	Questions  []core.Question
	Metadata   map[string]any
	Quality    ParseQuality
}

// ParseStructured decodes a model response that should contain a JSON
// object with title, transcript, summary, questions and metadata. It never
// fails; responses that cannot be decoded come back as QualityRaw with the
// raw text as transcript.
func ParseStructured(raw string) StructuredOutput {
	cleaned := llm.CleanJSON(raw)
	if gjson.Valid(cleaned) {
		doc := gjson.Parse(cleaned)
		if doc.IsObject() || doc.IsArray() {
			return decodeOutput(doc, QualityStrict)
		}
	}

	if obj, ok := llm.ExtractJSONObject(cleaned); ok {
		obj = llm.RepairJSON(obj)
		if gjson.Valid(obj) {
			return decodeOutput(gjson.Parse(obj), QualityExtracted)
		}
	}

	if out, ok := salvage(cleaned); ok {
		return out
	}

	return rawOutput(raw)
}

func decodeOutput(doc gjson.Result, quality ParseQuality) StructuredOutput {
	out := StructuredOutput{Quality: quality}
	if doc.IsArray() {
		out.Questions = decodeQuestions(doc.Array())
		return out
	}

	out.Title = strings.TrimSpace(doc.Get("title").String())
	out.Transcript = strings.TrimSpace(doc.Get("transcript").String())
	out.Summary = strings.TrimSpace(doc.Get("summary").String())
	out.Questions = decodeQuestions(doc.Get("questions").Array())
	if meta, ok := doc.Get("metadata").Value().(map[string]any); ok {
		out.Metadata = meta
	}
	return out
}

// salvage recovers whatever fields precede a truncation and every complete
// question object in the questions array.
func salvage(text string) (StructuredOutput, bool) {
	start := strings.IndexByte(text, '{')
	if start < 0 {
		return StructuredOutput{}, false
	}
	text = text[start:]

	out := StructuredOutput{Quality: QualitySalvaged}
	out.Title = strings.TrimSpace(gjson.Get(text, "title").String())
	out.Transcript = strings.TrimSpace(gjson.Get(text, "transcript").String())
	out.Summary = strings.TrimSpace(gjson.Get(text, "summary").String())
	out.Questions = decodeQuestions(salvageQuestionObjects(text))

	if out.Title == "" && out.Transcript == "" && out.Summary == "" && len(out.Questions) == 0 {
		return StructuredOutput{}, false
	}
	return out, true
}

func salvageQuestionObjects(text string) []gjson.Result {
	idx := strings.Index(text, "\"questions\"")
	if idx < 0 {
		return nil
	}
	rest := text[idx:]
	open := strings.IndexByte(rest, '[')
	if open < 0 {
		return nil
	}
	rest = rest[open+1:]

	var items []gjson.Result
	for {
		rest = strings.TrimLeft(rest, " \t\r\n,")
		if !strings.HasPrefix(rest, "{") {
			break
		}
		obj, ok := llm.ExtractJSONObject(rest)
		if !ok {
			break
		}
		rest = rest[len(obj):]
		if repaired := llm.RepairJSON(obj); gjson.Valid(repaired) {
			items = append(items, gjson.Parse(repaired))
		}
	}
	return items
}

func rawOutput(raw string) StructuredOutput {
	text := strings.TrimSpace(raw)
	summary := llm.Truncate(text, rawSummaryChars)
	if len(summary) < len(text) {
		summary += "..."
	}
	return StructuredOutput{
		Transcript: text,
		Summary:    summary,
		Metadata:   map[string]any{"parsing_note": "response was not valid JSON; raw text kept as transcript"},
		Quality:    QualityRaw,
	}
}

func decodeQuestions(items []gjson.Result) []core.Question {
	questions := make([]core.Question, 0, len(items))
	for _, item := range items {
		if !item.IsObject() {
			continue
		}
		q, ok := decodeQuestion(item)
		if !ok {
			continue
		}
		q.ID = fmt.Sprintf("q%d", len(questions)+1)
		questions = append(questions, q)
	}
	return questions
}

func decodeQuestion(item gjson.Result) (core.Question, bool) {
	text := strings.TrimSpace(firstString(item, "question", "text"))
	if text == "" {
		return core.Question{}, false
	}

	options, keys := decodeOptions(firstExisting(item, "options", "answer_config.options"))
	answer := firstExisting(item, "correct_answer", "answer_config.correct_answer", "answer")

	q := core.Question{
		Question:      text,
		Type:          normalizeQuestionType(firstString(item, "type", "question_type"), len(options) > 0),
		Options:       options,
		CorrectAnswer: resolveAnswer(answer, keys, options),
		Context:       strings.TrimSpace(firstString(item, "context", "reason", "explanation")),
		MaxScore:      int(item.Get("max_score").Int()),
	}
	if q.MaxScore <= 0 {
		q.MaxScore = 1
	}
	return q, true
}

// decodeOptions accepts a list or a keyed object. Keyed options are
// returned in key order along with their keys.
func decodeOptions(r gjson.Result) ([]string, []string) {
	switch {
	case r.IsArray():
		var options []string
		for _, v := range r.Array() {
			if s := strings.TrimSpace(v.String()); s != "" {
				options = append(options, s)
			}
		}
		return options, nil
	case r.IsObject():
		byKey := make(map[string]string)
		r.ForEach(func(k, v gjson.Result) bool {
			byKey[k.String()] = strings.TrimSpace(v.String())
			return true
		})
		keys := make([]string, 0, len(byKey))
		for k := range byKey {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		options := make([]string, 0, len(keys))
		for _, k := range keys {
			options = append(options, byKey[k])
		}
		return options, keys
	}
	return nil, nil
}

// resolveAnswer maps an option key such as "A" onto the option text.
func resolveAnswer(r gjson.Result, keys, options []string) any {
	if !r.Exists() || r.Type == gjson.Null {
		return nil
	}
	if r.Type == gjson.String {
		for i, k := range keys {
			if strings.EqualFold(k, strings.TrimSpace(r.String())) {
				return options[i]
			}
		}
		return r.String()
	}
	return r.Value()
}

func normalizeQuestionType(s string, hasOptions bool) core.QuestionType {
	s = strings.ToLower(strings.TrimSpace(s))
	s = strings.NewReplacer("-", "_", " ", "_").Replace(s)
	switch core.QuestionType(s) {
	case core.QuestionTypeMultipleChoice, core.QuestionTypeTrueFalse, core.QuestionTypeShortAnswer:
		return core.QuestionType(s)
	}
	switch s {
	case "mcq", "multiple_correct":
		return core.QuestionTypeMultipleChoice
	case "boolean", "truefalse":
		return core.QuestionTypeTrueFalse
	}
	if hasOptions {
		return core.QuestionTypeMultipleChoice
	}
	return core.QuestionTypeShortAnswer
}

func firstExisting(item gjson.Result, paths ...string) gjson.Result {
	for _, p := range paths {
		if r := item.Get(p); r.Exists() {
			return r
		}
	}
	return gjson.Result{}
}

func firstString(item gjson.Result, paths ...string) string {
	return firstExisting(item, paths...).String()
}
