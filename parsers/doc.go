// Package parsers implements parsing.Parser for each supported content type.
//
// Document parsers read local files, resolving relative references against a
// base directory:
//
//	pdf := parsers.NewPDFParser(cfg.UploadDir, 0)
//	doc := parsers.NewDOCXParser(cfg.UploadDir, 0)
//
// The web parser fetches a page over HTTP and converts its main content to
// Markdown. The video parser probes a video, obtains its audio through a
// VideoFetcher backed by the artifact cache and transcribes it with the
// transcription chain:
//
//	fetcher := parsers.NewVideoFetcher(parsers.NewYouTubeSource(),
//	    parsers.WithArtifactCache(audioCache),
//	    parsers.WithMaxDuration(30*time.Minute))
//	video := parsers.NewVideoParser(fetcher, provider.Transcription(), "")
//
// Parsers return *core.Error values of kind parsing; the coordinator turns
// them into failed results.
package parsers
