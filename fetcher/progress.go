package fetcher

// Pipeline stages as they appear in the progress stream.
const (
	StageInitializing  = "Initializing"
	StageDiscovery     = "Discovery"
	StageProcessing    = "Processing"
	StageSkipping      = "Skipping"
	StageError         = "Error"
	StageComplete      = "Complete"
	StageCriticalError = "Critical Error"
)

// ProgressEvent is one unit of the live status stream for a run.
// Progress is a fraction in [0, 100]; within a run the sequence is
// non-decreasing and ends in exactly one event with IsComplete set.
type ProgressEvent struct {
	Stage      string  `json:"stage"`
	Progress   float64 `json:"progress"`
	Message    string  `json:"message"`
	IsComplete bool    `json:"is_complete"`
}

// Sink receives progress events in emission order. A non-nil error means
// the observer's transport is gone and the run must stop.
type Sink func(ProgressEvent) error

// emitter wraps a Sink and remembers the first transport failure so the
// run loop can bail out without threading an error through every send.
type emitter struct {
	sink Sink
	err  error
}

func (e *emitter) send(stage string, progress float64, message string, complete bool) bool {
	if e.err != nil {
		return false
	}
	e.err = e.sink(ProgressEvent{
		Stage:      stage,
		Progress:   progress,
		Message:    message,
		IsComplete: complete,
	})
	return e.err == nil
}
