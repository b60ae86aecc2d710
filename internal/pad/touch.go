package pad

// TouchSample is a point-in-time touchpad read: pan and pinch deltas
// accumulated since the previous read, plus the current contact state.
type TouchSample struct {
	Pan      Vector
	Pinch    float64
	Touching bool
}
