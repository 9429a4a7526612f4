package strategy

import (
	"fmt"
	"sort"
	"strings"

	"github.com/parkho-ai/contentengine/core"
)

const summarySystemPrompt = "You are an educational content assistant. " +
	"Summarize study material accurately and concisely."

const questionSystemPrompt = "You are an adaptive AI tutor. " +
	"You write assessment questions strictly based on the supplied content and reply with valid JSON only."

// DefaultQuestionCounts is used when a job requests no questions.
var DefaultQuestionCounts = map[core.QuestionType]int{
	core.QuestionTypeMultipleChoice: 5,
	core.QuestionTypeTrueFalse:      3,
	core.QuestionTypeShortAnswer:    2,
}

func summaryPrompt(title, content, collectionContext string) string {
	var b strings.Builder
	b.WriteString("Write a 2-3 paragraph summary of the main concepts and key points of the following material.\n\n")
	if title != "" {
		fmt.Fprintf(&b, "TITLE: %s\n\n", title)
	}
	if collectionContext != "" {
		fmt.Fprintf(&b, "RELATED BACKGROUND (use only to clarify terms):\n%s\n\n", collectionContext)
	}
	fmt.Fprintf(&b, "CONTENT:\n%s", content)
	return b.String()
}

func questionPrompt(content, summary, collectionContext string, counts map[core.QuestionType]int, difficulty core.Difficulty) string {
	total := 0
	for _, n := range counts {
		total += n
	}
	if difficulty == "" {
		difficulty = core.DifficultyMedium
	}

	var b strings.Builder
	fmt.Fprintf(&b, "CONTENT SOURCE (strictly based on this):\n%s\n\n", content)
	if summary != "" {
		fmt.Fprintf(&b, "SUMMARY:\n%s\n\n", summary)
	}
	if collectionContext != "" {
		fmt.Fprintf(&b, "RELATED BACKGROUND:\n%s\n\n", collectionContext)
	}
	fmt.Fprintf(&b, "TASK:\nGenerate exactly %d educational questions at %s level.\n\n", total, difficulty)
	b.WriteString("Question breakdown:\n")
	b.WriteString(questionBreakdown(counts))
	b.WriteString(`
Return valid JSON only:
{
  "questions": [
    {
      "question_id": "q1",
      "question": "Question text",
      "type": "multiple_choice|true_false|short_answer",
      "options": {"A": "option A", "B": "option B", "C": "option C", "D": "option D"},
      "correct_answer": "A",
      "context": "Why the answer is correct",
      "max_score": 1
    }
  ]
}

Rules:
- For multiple_choice: correct_answer is the option key
- For true_false: omit options, correct_answer is true or false
- For short_answer: omit options, correct_answer contains the key terms
`)
	return b.String()
}

func questionBreakdown(counts map[core.QuestionType]int) string {
	types := make([]string, 0, len(counts))
	for t, n := range counts {
		if n > 0 {
			types = append(types, string(t))
		}
	}
	sort.Strings(types)

	var b strings.Builder
	for _, t := range types {
		fmt.Fprintf(&b, "- %s: %d\n", t, counts[core.QuestionType(t)])
	}
	return b.String()
}

func videoAnalysisPrompt(opts core.ProcessingOptions, defaults map[core.QuestionType]int) string {
	counts := opts.QuestionCounts
	if opts.TotalQuestions() == 0 {
		counts = defaults
	}
	total := 0
	for _, n := range counts {
		total += n
	}
	difficulty := opts.Difficulty
	if difficulty == "" {
		difficulty = core.DifficultyMedium
	}

	var b strings.Builder
	b.WriteString(`Analyze this video's audio and provide a comprehensive educational analysis.

Respond with JSON in the following format:

{
  "title": "Video title",
  "transcript": "Full transcript of the video content",
  "summary": "2-3 paragraph summary of the main concepts and key points",
  "questions": [
    {
      "question_id": "q1",
      "question": "Question text here?",
      "type": "multiple_choice",
      "answer_config": {
        "options": {"A": "Option A", "B": "Option B", "C": "Option C", "D": "Option D"},
        "correct_answer": "A"
      },
      "context": "Brief explanation of why this answer is correct",
      "max_score": 1
    }
  ],
  "metadata": {
    "subject": "Detected subject",
    "difficulty_assessed": "Assessed difficulty level",
    "key_topics": ["List of key topics covered"]
  }
}

Requirements:
`)
	fmt.Fprintf(&b, "- Generate exactly %d questions\n", total)
	b.WriteString(questionBreakdown(counts))
	fmt.Fprintf(&b, "- Difficulty level: %s\n", difficulty)
	b.WriteString("- Ensure questions test understanding of key concepts from the video\n")
	b.WriteString("- Provide clear explanations for correct answers\n")
	return b.String()
}
