package engine

import (
	"time"

	"github.com/soar/padmap/internal/pad"
)

// Sequences are matched passively: progress advances on resolved single
// presses and never delays or gates the press's own dispatch.

func (e *Engine) rebuildSequencesLocked() {
	e.st.seqs = nil
	if e.profile == nil {
		return
	}
	for _, seq := range e.profile.Sequences {
		if len(seq.Steps) == 0 {
			continue
		}
		e.st.seqs = append(e.st.seqs, &seqProgress{seq: seq})
	}
}

func (e *Engine) advanceSequencesLocked(b pad.Button, now time.Time, d *dispatch) {
	for _, sp := range e.st.seqs {
		if sp.matched > 0 && sp.seq.StepTimeout > 0 && now.Sub(sp.last) > sp.seq.StepTimeout {
			sp.matched = 0
		}
		if b == sp.seq.Steps[sp.matched] {
			sp.matched++
			sp.last = now
			if sp.matched == len(sp.seq.Steps) {
				sp.matched = 0
				if a := sp.seq.Action; a != nil {
					action := a
					d.add(func() { e.exec.ExecuteMapping(action) })
				}
				e.log.Debugw("sequence fired", "sequence", sp.seq.ID)
			}
			continue
		}
		// Out-of-order button: reset, then let the press restart the
		// sequence if it happens to be the first step.
		sp.matched = 0
		if b == sp.seq.Steps[0] {
			sp.matched = 1
			sp.last = now
		}
	}
}
