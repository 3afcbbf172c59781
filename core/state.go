package core

import "sync"

// ViewerState is the only state surfaced to the host UI. Camera, scene and
// GPU buffers stay private to the viewer instance.
type ViewerState struct {
	Loading    bool
	Err        string
	PointCount int
}

// StateHolder owns a ViewerState behind a mutex. Only load lifecycle
// events (start, success, failure) mutate it.
type StateHolder struct {
	mu       sync.Mutex
	state    ViewerState
	onChange func(ViewerState)
}

// NewStateHolder creates a holder; onChange may be nil and is invoked
// after every transition with a copy of the new state.
func NewStateHolder(onChange func(ViewerState)) *StateHolder {
	return &StateHolder{onChange: onChange}
}

func (h *StateHolder) Get() ViewerState {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.state
}

func (h *StateHolder) SetLoading() {
	h.set(ViewerState{Loading: true})
}

func (h *StateHolder) SetLoaded(pointCount int) {
	h.set(ViewerState{PointCount: pointCount})
}

func (h *StateHolder) SetFailed(msg string) {
	h.set(ViewerState{Err: msg})
}

func (h *StateHolder) set(s ViewerState) {
	h.mu.Lock()
	h.state = s
	cb := h.onChange
	h.mu.Unlock()
	if cb != nil {
		cb(s)
	}
}
