package strategy

import (
	"strings"
	"testing"

	"github.com/parkho-ai/contentengine/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const fencedAnalysis = "```json\n" + `{
  "title": "Photosynthesis",
  "transcript": "Plants convert light into chemical energy.",
  "summary": "How plants make food.",
  "questions": [
    {
      "question_id": "x9",
      "question": "What do plants convert light into?",
      "type": "multiple_choice",
      "answer_config": {
        "options": {"B": "Chemical energy", "A": "Heat", "C": "Sound", "D": "Motion"},
        "correct_answer": "B"
      },
      "context": "Photosynthesis stores energy in sugars.",
      "max_score": 2
    },
    {
      "question": "Plants need light.",
      "type": "True-False",
      "correct_answer": true
    }
  ],
  "metadata": {"subject": "Biology"}
}` + "\n```"

func TestParseStructured_Strict(t *testing.T) {
	out := ParseStructured(fencedAnalysis)

	assert.Equal(t, QualityStrict, out.Quality)
	assert.Equal(t, "Photosynthesis", out.Title)
	assert.Equal(t, "Plants convert light into chemical energy.", out.Transcript)
	assert.Equal(t, "How plants make food.", out.Summary)
	assert.Equal(t, "Biology", out.Metadata["subject"])

	require.Len(t, out.Questions, 2)
	q := out.Questions[0]
	assert.Equal(t, "q1", q.ID)
	assert.Equal(t, core.QuestionTypeMultipleChoice, q.Type)
	assert.Equal(t, []string{"Heat", "Chemical energy", "Sound", "Motion"}, q.Options)
	assert.Equal(t, "Chemical energy", q.CorrectAnswer)
	assert.Equal(t, 2, q.MaxScore)
	assert.Equal(t, "Photosynthesis stores energy in sugars.", q.Context)

	tf := out.Questions[1]
	assert.Equal(t, "q2", tf.ID)
	assert.Equal(t, core.QuestionTypeTrueFalse, tf.Type)
	assert.Equal(t, true, tf.CorrectAnswer)
	assert.Equal(t, 1, tf.MaxScore)
}

func TestParseStructured_ExtractedFromProse(t *testing.T) {
	raw := "Here is the analysis you asked for:\n" +
		`{"title": "Cells", "transcript": "Cells are the unit of life.", "summary": "About cells", "questions": []}` +
		"\nLet me know if you need more."

	out := ParseStructured(raw)
	assert.Equal(t, QualityExtracted, out.Quality)
	assert.Equal(t, "Cells", out.Title)
	assert.Equal(t, "Cells are the unit of life.", out.Transcript)
	assert.Empty(t, out.Questions)
}

func TestParseStructured_SalvagesTruncatedResponse(t *testing.T) {
	raw := `{"title": "Cells", "summary": "About cells", "questions": [` +
		`{"question": "What is a cell?", "type": "short_answer", "correct_answer": "unit of life"}, ` +
		`{"question": "Which organelle`

	out := ParseStructured(raw)
	assert.Equal(t, QualitySalvaged, out.Quality)
	assert.Equal(t, "Cells", out.Title)
	assert.Equal(t, "About cells", out.Summary)
	require.Len(t, out.Questions, 1)
	assert.Equal(t, "What is a cell?", out.Questions[0].Question)
	assert.Equal(t, core.QuestionTypeShortAnswer, out.Questions[0].Type)
	assert.Equal(t, "unit of life", out.Questions[0].CorrectAnswer)
}

func TestParseStructured_RawFallback(t *testing.T) {
	raw := strings.Repeat("word ", 200)

	out := ParseStructured(raw)
	assert.Equal(t, QualityRaw, out.Quality)
	assert.Empty(t, out.Title)
	assert.Equal(t, strings.TrimSpace(raw), out.Transcript)
	assert.Len(t, out.Summary, rawSummaryChars+3)
	assert.True(t, strings.HasSuffix(out.Summary, "..."))
	assert.Contains(t, out.Metadata, "parsing_note")
	assert.Empty(t, out.Questions)
}

func TestParseStructured_ShortRawKeepsWholeSummary(t *testing.T) {
	out := ParseStructured("The video explains gravity.")
	assert.Equal(t, QualityRaw, out.Quality)
	assert.Equal(t, "The video explains gravity.", out.Summary)
}

func TestParseStructured_BareQuestionArray(t *testing.T) {
	raw := `[
		{"question": "2+2?", "options": ["3", "4"], "correct_answer": "4"},
		{"question": ""},
		{"text": "Name a prime.", "question_type": "short answer", "reason": "2 is prime"}
	]`

	out := ParseStructured(raw)
	assert.Equal(t, QualityStrict, out.Quality)
	require.Len(t, out.Questions, 2)

	assert.Equal(t, "q1", out.Questions[0].ID)
	assert.Equal(t, core.QuestionTypeMultipleChoice, out.Questions[0].Type)
	assert.Equal(t, []string{"3", "4"}, out.Questions[0].Options)
	assert.Equal(t, "4", out.Questions[0].CorrectAnswer)

	assert.Equal(t, "q2", out.Questions[1].ID)
	assert.Equal(t, "Name a prime.", out.Questions[1].Question)
	assert.Equal(t, core.QuestionTypeShortAnswer, out.Questions[1].Type)
	assert.Equal(t, "2 is prime", out.Questions[1].Context)
}

func TestNormalizeQuestionType(t *testing.T) {
	tests := []struct {
		in         string
		hasOptions bool
		want       core.QuestionType
	}{
		{"multiple_choice", false, core.QuestionTypeMultipleChoice},
		{"Multiple Choice", false, core.QuestionTypeMultipleChoice},
		{"MCQ", false, core.QuestionTypeMultipleChoice},
		{"true-false", false, core.QuestionTypeTrueFalse},
		{"boolean", false, core.QuestionTypeTrueFalse},
		{"short_answer", true, core.QuestionTypeShortAnswer},
		{"", true, core.QuestionTypeMultipleChoice},
		{"essay", false, core.QuestionTypeShortAnswer},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, normalizeQuestionType(tt.in, tt.hasOptions))
		})
	}
}
