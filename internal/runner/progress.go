package runner

// ProgressReporter receives run progress. OnFileProcessed is called from the
// worker goroutines, so implementations must be safe for concurrent use.
type ProgressReporter interface {
	// OnDiscoveryComplete is called once the file list is known.
	OnDiscoveryComplete(files int)

	// OnExtractionStart is called before the first unit starts.
	OnExtractionStart(total int)

	// OnFileProcessed is called after each unit, err is the unit failure if any.
	OnFileProcessed(path string, err error)

	// OnComplete is called when every unit has finished.
	OnComplete(summary Summary)
}

// NoOpProgressReporter is a progress reporter that does nothing.
// Used when progress reporting is disabled (e.g., --quiet flag).
type NoOpProgressReporter struct{}

func (NoOpProgressReporter) OnDiscoveryComplete(files int)          {}
func (NoOpProgressReporter) OnExtractionStart(total int)            {}
func (NoOpProgressReporter) OnFileProcessed(path string, err error) {}
func (NoOpProgressReporter) OnComplete(summary Summary)             {}
