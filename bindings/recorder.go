package bindings

import (
	"sync"
	"time"

	"github.com/reusee/itera/contexts"
)

// OnTrace observes traces as they are recorded. May be nil.
type OnTrace func(trace contexts.Trace)

// Recorder collects the traces and property mutations of one execution.
// Safe for concurrent use; traces keep their append order.
type Recorder struct {
	mu        sync.Mutex
	onTrace   OnTrace
	traces    []contexts.Trace
	mutations []contexts.Mutation
}

func NewRecorder(onTrace OnTrace) *Recorder {
	return &Recorder{
		onTrace: onTrace,
	}
}

func (r *Recorder) Add(trace contexts.Trace) {
	if trace.Time.IsZero() {
		trace.Time = time.Now()
	}
	r.mu.Lock()
	r.traces = append(r.traces, trace)
	onTrace := r.onTrace
	r.mu.Unlock()
	if onTrace != nil {
		onTrace(trace)
	}
}

func (r *Recorder) AddMutation(mutation contexts.Mutation) {
	r.mu.Lock()
	r.mutations = append(r.mutations, mutation)
	r.mu.Unlock()
}

func (r *Recorder) Traces() []contexts.Trace {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]contexts.Trace(nil), r.traces...)
}

func (r *Recorder) Mutations() []contexts.Mutation {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]contexts.Mutation(nil), r.mutations...)
}
