package core

import (
	"encoding/binary"
	"encoding/hex"
	"time"

	"github.com/go-crypt/x/blake2b"
)

// ID is a content-derived identifier.
type ID uint64

// IDFromContent generates a deterministic ID from text content using BLAKE2b hashing.
// This ensures that identical content produces identical IDs.
func IDFromContent(text string) ID {
	h, _ := blake2b.New(8, nil) // 8 bytes = 64 bits
	h.Write([]byte(text))
	sum := h.Sum(nil)
	return ID(binary.LittleEndian.Uint64(sum))
}

// Hex returns the ID as a fixed-width lowercase hex string.
func (id ID) Hex() string {
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], uint64(id))
	return hex.EncodeToString(buf[:])
}

// ContentType identifies the kind of a content source.
type ContentType string

const (
	ContentTypeVideo   ContentType = "video"
	ContentTypePDF     ContentType = "pdf"
	ContentTypeDOCX    ContentType = "docx"
	ContentTypeWebPage ContentType = "web_page"
)

// ContentTypes lists every supported content type in a stable order.
var ContentTypes = []ContentType{
	ContentTypeVideo,
	ContentTypePDF,
	ContentTypeDOCX,
	ContentTypeWebPage,
}

// Valid reports whether t is one of the known content types.
func (t ContentType) Valid() bool {
	switch t {
	case ContentTypeVideo, ContentTypePDF, ContentTypeDOCX, ContentTypeWebPage:
		return true
	}
	return false
}

// ContentSource is one unit of input supplied by the caller.
// Reference is a file path, file id or URL depending on the content type.
type ContentSource struct {
	ContentType ContentType `json:"content_type" yaml:"content_type" validate:"required"`
	Reference   string      `json:"reference" yaml:"reference" validate:"required"`
	// Collection marks sources that originate from a stored collection
	// rather than a direct upload or link.
	Collection bool `json:"collection,omitempty" yaml:"collection,omitempty"`
}

// ParseResult is the outcome of parsing a single source.
type ParseResult struct {
	SourceIndex int            `json:"source_index"`
	ContentType ContentType    `json:"content_type"`
	Success     bool           `json:"success"`
	Content     string         `json:"content,omitempty"`
	Title       string         `json:"title,omitempty"`
	Metadata    map[string]any `json:"metadata,omitempty"`
	Error       string         `json:"error,omitempty"`
	Collection  bool           `json:"collection,omitempty"`
}

// SourceMetadata describes one source that contributed to a CombinedDocument.
type SourceMetadata struct {
	Index       int            `json:"index"`
	ContentType ContentType    `json:"content_type"`
	Subtype     string         `json:"subtype"`
	Title       string         `json:"title,omitempty"`
	Metadata    map[string]any `json:"metadata,omitempty"`
}

// CombinedDocument is the merged text of every successfully parsed source.
type CombinedDocument struct {
	Text    string           `json:"text"`
	Title   string           `json:"title"`
	Sources []SourceMetadata `json:"sources"`
}

// Difficulty is the requested difficulty of generated questions.
type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

// QuestionType is the format of a generated question.
type QuestionType string

const (
	QuestionTypeMultipleChoice QuestionType = "multiple_choice"
	QuestionTypeTrueFalse      QuestionType = "true_false"
	QuestionTypeShortAnswer    QuestionType = "short_answer"
)

// ProcessingOptions are passed through unchanged to strategies.
type ProcessingOptions struct {
	QuestionCounts    map[QuestionType]int `json:"question_counts,omitempty" yaml:"question_counts,omitempty"`
	Difficulty        Difficulty           `json:"difficulty,omitempty" yaml:"difficulty,omitempty" validate:"omitempty,oneof=easy medium hard"`
	PreferredProvider string               `json:"preferred_provider,omitempty" yaml:"preferred_provider,omitempty"`
	CollectionID      string               `json:"collection_id,omitempty" yaml:"collection_id,omitempty"`
	// Strategy names an explicit strategy. Empty means automatic selection.
	Strategy string `json:"strategy,omitempty" yaml:"strategy,omitempty"`
}

// TotalQuestions returns the sum of all requested question counts.
func (o ProcessingOptions) TotalQuestions() int {
	total := 0
	for _, n := range o.QuestionCounts {
		total += n
	}
	return total
}

// Question is a single generated quiz question.
type Question struct {
	ID            string            `json:"question_id"`
	Question      string            `json:"question"`
	Type          QuestionType      `json:"type"`
	Options       []string          `json:"options,omitempty"`
	CorrectAnswer any               `json:"correct_answer,omitempty"`
	Context       string            `json:"context,omitempty"`
	MaxScore      int               `json:"max_score,omitempty"`
	Metadata      map[string]string `json:"metadata,omitempty"`
}

// ResultStatus is the terminal status of a processing run.
type ResultStatus string

const (
	StatusSuccess ResultStatus = "success"
	StatusFailed  ResultStatus = "failed"
	StatusPartial ResultStatus = "partial"
)

// ProcessingResult is the terminal value of one job execution.
// It is built once and never mutated after being returned.
type ProcessingResult struct {
	Status       ResultStatus   `json:"status"`
	Title        string         `json:"title,omitempty"`
	ContentText  string         `json:"content_text,omitempty"`
	Summary      string         `json:"summary,omitempty"`
	Questions    []Question     `json:"questions,omitempty"`
	Metadata     map[string]any `json:"metadata,omitempty"`
	Error        string         `json:"error,omitempty"`
	ErrorKind    ErrorKind      `json:"error_kind,omitempty"`
	StrategyUsed string         `json:"strategy_used"`
	Elapsed      time.Duration  `json:"elapsed"`
}

// Succeeded reports whether the result satisfies the success invariant.
func (r *ProcessingResult) Succeeded() bool {
	return r != nil && r.Status == StatusSuccess && r.ContentText != ""
}

// NewFailedResult builds a failed result from err.
func NewFailedResult(strategy string, err error, elapsed time.Duration) *ProcessingResult {
	msg := "unknown error"
	if err != nil {
		msg = Message(err)
	}
	return &ProcessingResult{
		Status:       StatusFailed,
		Error:        msg,
		ErrorKind:    KindOf(err),
		StrategyUsed: strategy,
		Elapsed:      elapsed,
	}
}

// CacheEntry describes one cached artifact.
type CacheEntry struct {
	Key       string    `json:"key"`
	Path      string    `json:"path"`
	CreatedAt time.Time `json:"created_at"`
	Size      int64     `json:"size"`
}

// JobStatus is the lifecycle state of a stored job.
type JobStatus string

const (
	JobPending    JobStatus = "pending"
	JobProcessing JobStatus = "processing"
	JobSucceeded  JobStatus = "succeeded"
	JobFailed     JobStatus = "failed"
)

// Terminal reports whether the status is final.
func (s JobStatus) Terminal() bool {
	return s == JobSucceeded || s == JobFailed
}

// Job is a unit of work as seen by the job store.
type Job struct {
	ID        string            `json:"id" validate:"required"`
	Title     string            `json:"title,omitempty"`
	Sources   []ContentSource   `json:"sources" validate:"required,min=1,dive"`
	Options   ProcessingOptions `json:"options"`
	Status    JobStatus         `json:"status"`
	Progress  float64           `json:"progress"`
	Message   string            `json:"message,omitempty"`
	Result    *ProcessingResult `json:"result,omitempty"`
	Error     string            `json:"error,omitempty"`
	ErrorKind ErrorKind         `json:"error_kind,omitempty"`
	CreatedAt time.Time         `json:"created_at"`
	UpdatedAt time.Time         `json:"updated_at"`
}
