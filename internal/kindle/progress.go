package kindle

// Phase identifies a step of a notebook fetch.
type Phase string

const (
	PhaseFetchStart Phase = "fetch:start"
	PhaseBookStart  Phase = "book:start"
	PhasePage       Phase = "page"
	PhaseBookEnd    Phase = "book:end"
	PhaseFetchEnd   Phase = "fetch:end"
	PhaseWarning    Phase = "warning"
)

// Event is a progress notification. Events are observational only.
type Event struct {
	Phase      Phase
	Region     string
	BookID     string
	BookTitle  string
	BookIndex  int // zero-based
	TotalBooks int
	Page       int
	// Highlights is the page count for PhasePage, the book total for
	// PhaseBookEnd and the run total for PhaseFetchEnd.
	Highlights int
	Failed     int
	Message    string
	Err        error
}

// ProgressReporter observes a notebook fetch.
type ProgressReporter interface {
	OnPhase(Event)
}

// ProgressFunc adapts a function to ProgressReporter.
type ProgressFunc func(Event)

func (f ProgressFunc) OnPhase(e Event) { f(e) }

// MultiReporter fans an event out to several reporters.
type MultiReporter []ProgressReporter

func (m MultiReporter) OnPhase(e Event) {
	for _, r := range m {
		if r != nil {
			r.OnPhase(e)
		}
	}
}

// LogReporter writes one log line per book and per run.
type LogReporter struct {
	Logger Logger
}

func (r LogReporter) OnPhase(e Event) {
	if r.Logger == nil {
		return
	}
	switch e.Phase {
	case PhaseFetchStart:
		r.Logger.Printf("[NOTEBOOK] fetching notebook for region %s", e.Region)
	case PhaseBookStart:
		r.Logger.Printf("[NOTEBOOK] (%d/%d) %s", e.BookIndex+1, e.TotalBooks, e.BookTitle)
	case PhaseBookEnd:
		if e.Err != nil {
			r.Logger.Printf("[NOTEBOOK] (%d/%d) %s failed: %v", e.BookIndex+1, e.TotalBooks, e.BookTitle, e.Err)
			return
		}
		r.Logger.Printf("[NOTEBOOK] (%d/%d) %s: %d highlights", e.BookIndex+1, e.TotalBooks, e.BookTitle, e.Highlights)
	case PhaseFetchEnd:
		r.Logger.Printf("[NOTEBOOK] done: %d books, %d highlights, %d failed", e.TotalBooks, e.Highlights, e.Failed)
	case PhaseWarning:
		r.Logger.Printf("[NOTEBOOK] warning: %s", e.Message)
	}
}
