// Package notify delivers best-effort job progress events.
//
// Broadcaster fans events out to in-process subscribers, LogNotifier writes
// them to slog and Multi combines notifiers. Failures to deliver are never
// treated as job failures.
package notify
