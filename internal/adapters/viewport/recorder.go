// Package viewport provides server-side stand-ins for the rendered
// schedule page. They implement the viewport and calendar capabilities the
// view controller drives and record every call so a client can replay it.
package viewport

import (
	"slices"
	"sync"

	"github.com/okian/plnevents/internal/domain/types"
)

// Recorder collects actions in call order.
type Recorder struct {
	mu      sync.Mutex
	actions []types.Action
}

// NewRecorder returns an empty recorder.
func NewRecorder() *Recorder { return &Recorder{} }

func (r *Recorder) add(a types.Action) {
	r.mu.Lock()
	r.actions = append(r.actions, a)
	r.mu.Unlock()
}

// Actions returns a copy of the recorded actions. Never nil.
func (r *Recorder) Actions() []types.Action {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.actions) == 0 {
		return []types.Action{}
	}
	return slices.Clone(r.actions)
}

// Reset drops everything recorded so far.
func (r *Recorder) Reset() {
	r.mu.Lock()
	r.actions = nil
	r.mu.Unlock()
}
