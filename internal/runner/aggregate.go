package runner

import "github.com/mvp-joe/intl-extract/internal/messages"

// WriteAggregate writes every message of the report to path as one JSON
// array, in file order then insertion order. Ids are not de-duplicated
// across files.
func WriteAggregate(path string, report *Report) error {
	return messages.WriteSidecar(path, report.Messages())
}
