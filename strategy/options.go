package strategy

import (
	"maps"

	"github.com/parkho-ai/contentengine/collection"
	"github.com/parkho-ai/contentengine/core"
	"github.com/parkho-ai/contentengine/notify"
)

// Option configures a pipeline.
type Option func(*options)

type options struct {
	notifier      notify.Notifier
	collection    collection.Provider
	defaultCounts map[core.QuestionType]int
	fastEnabled   bool
}

func defaultOptions() *options {
	return &options{
		notifier:      notify.Nop{},
		defaultCounts: maps.Clone(DefaultQuestionCounts),
		fastEnabled:   true,
	}
}

func applyOptions(opts []Option) *options {
	o := defaultOptions()
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// WithNotifier publishes progress events through n.
func WithNotifier(n notify.Notifier) Option {
	return func(o *options) {
		if n != nil {
			o.notifier = n
		}
	}
}

// WithCollection enables collection context retrieval for jobs that name a
// collection id.
func WithCollection(p collection.Provider) Option {
	return func(o *options) {
		o.collection = p
	}
}

// WithDefaultQuestionCounts sets the counts used when a job requests none.
func WithDefaultQuestionCounts(counts map[core.QuestionType]int) Option {
	return func(o *options) {
		if len(counts) > 0 {
			o.defaultCounts = maps.Clone(counts)
		}
	}
}

// WithFastPath turns the single-call video path on or off.
func WithFastPath(enabled bool) Option {
	return func(o *options) {
		o.fastEnabled = enabled
	}
}
