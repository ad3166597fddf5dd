package sync

import (
	"log"

	"github.com/mrlokans/kindle-notebook/internal/kindle"
)

// Reporter persists the progress of one notebook fetch. Write errors are
// logged; progress tracking never fails a run.
type Reporter struct {
	repo   *Repository
	counts Counts
}

var _ kindle.ProgressReporter = (*Reporter)(nil)

func NewReporter(repo *Repository) *Reporter {
	return &Reporter{repo: repo}
}

func (r *Reporter) OnPhase(e kindle.Event) {
	var err error
	switch e.Phase {
	case kindle.PhaseBookStart:
		if e.BookIndex == 0 {
			if err = r.repo.SetTotal(e.TotalBooks); err != nil {
				break
			}
		}
		r.counts.CurrentItem = e.BookTitle
		err = r.repo.UpdateProgress(r.counts)
	case kindle.PhasePage:
		r.counts.Pages++
		r.counts.Highlights += e.Highlights
		err = r.repo.UpdateProgress(r.counts)
	case kindle.PhaseBookEnd:
		r.counts.Processed++
		if e.Err != nil {
			r.counts.Failed++
		} else {
			r.counts.Succeeded++
		}
		r.counts.CurrentItem = ""
		err = r.repo.UpdateProgress(r.counts)
	case kindle.PhaseWarning:
		r.counts.Warnings++
	case kindle.PhaseFetchEnd:
		if e.TotalBooks == 0 {
			err = r.repo.SetTotal(0)
		}
		if err == nil {
			err = r.repo.UpdateProgress(r.counts)
		}
	}
	if err != nil {
		log.Printf("[SYNC] failed to record progress for %s: %v", e.Phase, err)
	}
}

// Reporter returns a fresh progress adapter for one run.
func (r *Repository) Reporter() kindle.ProgressReporter {
	return NewReporter(r)
}
