// Package strategy implements the processing pipelines that turn a job's
// sources into a ProcessingResult.
//
// Two pipelines are provided:
//
//   - GeneralPipeline parses every source through a parsing.Coordinator,
//     merges the text and asks the text chain for a summary and questions.
//     It accepts any mix of content types.
//   - FastSinglePipeline sends each video's audio to a multimodal model in a
//     single call. It only runs when the fast path is enabled and the model
//     is configured.
//
// Both report progress through a ProgressReporter and never panic or return
// raw errors to the orchestrator: every failure becomes a ProcessingResult
// with StatusFailed.
//
// Basic usage:
//
//	general := strategy.NewGeneralPipeline(jobs, coordinator, provider.Text(),
//		strategy.WithCollection(collectionClient),
//		strategy.WithNotifier(broadcaster))
//	fast := strategy.NewFastSinglePipeline(jobs, fetcher, provider.Media(),
//		strategy.WithFastPath(cfg.FastPathEnabled))
//
// Model output is decoded with ParseStructured, which tolerates code fences,
// surrounding prose and truncated responses.
package strategy
