// Package collection retrieves supporting context from a document
// collection held by an external retrieval service.
//
// The general pipeline calls Provider.GetContext with a query built from the
// combined document's title and opening text. Failures there are logged and
// the pipeline continues without context.
package collection
