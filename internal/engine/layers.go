package engine

import "github.com/soar/padmap/internal/pad"

// The active layer stack is an ordered sequence of unique layer ids; the most
// recently activated layer wins lookups, falling through to the base mapping
// table. Releasing an activator pops that specific layer wherever it sits,
// preserving the relative order of the rest.

// pushLayerLocked activates a layer. Duplicate pushes and unknown ids are
// no-ops; the return value reports whether the layer was actually pushed so
// the caller can pair the eventual pop.
func (e *Engine) pushLayerLocked(id string) bool {
	if e.profile.LayerByID(id) == nil {
		e.log.Debugw("unknown layer", "layer", id)
		return false
	}
	for _, l := range e.st.layers {
		if l == id {
			return false
		}
	}
	e.st.layers = append(e.st.layers, id)
	return true
}

func (e *Engine) popLayerLocked(id string) {
	for i, l := range e.st.layers {
		if l == id {
			e.st.layers = append(e.st.layers[:i], e.st.layers[i+1:]...)
			return
		}
	}
}

// lookupButtonLocked resolves the effective mapping for a button through the
// layer stack, top first.
func (e *Engine) lookupButtonLocked(b pad.Button) *pad.Mapping {
	for i := len(e.st.layers) - 1; i >= 0; i-- {
		if l := e.profile.LayerByID(e.st.layers[i]); l != nil {
			if m, ok := l.Buttons[b]; ok {
				return m
			}
		}
	}
	return e.profile.Buttons[b]
}

// lookupChordLocked resolves the effective mapping for a chord through the
// layer stack, top first.
func (e *Engine) lookupChordLocked(buttons []pad.Button) *pad.Mapping {
	key := pad.ChordKey(buttons)
	for i := len(e.st.layers) - 1; i >= 0; i-- {
		if l := e.profile.LayerByID(e.st.layers[i]); l != nil {
			if m, ok := l.Chords[key]; ok {
				return m
			}
		}
	}
	return e.profile.Chords[key]
}
