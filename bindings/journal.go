package bindings

import (
	"sync"
)

// CallRecord is one completed tool call, in program order. A snapshot carries
// the journal of its interrupted execution so resumption can replay completed
// calls without re-running their effects.
type CallRecord struct {
	Tool   string
	Args   map[string]any
	Result any
}

// Resolution is the externally supplied outcome of the call that interrupted
// the snapshotted execution. Exactly one of Value or Err is meaningful.
type Resolution struct {
	Value any
	Err   error
}

// replayState serves recorded results during resumption and accumulates the
// journal of the current execution.
type replayState struct {
	mu         sync.Mutex
	pending    []CallRecord
	resolution *Resolution
	completed  []CallRecord
}

// next serves the recorded result for the upcoming call of tool, if the
// journal still has entries. A tool mismatch means the replay diverged from
// the recorded execution, which is reported as an error.
func (r *replayState) next(tool string) (result any, served bool, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if len(r.pending) > 0 {
		rec := r.pending[0]
		if rec.Tool != tool {
			return nil, false, &divergedError{
				expected: rec.Tool,
				got:      tool,
			}
		}
		r.pending = r.pending[1:]
		r.completed = append(r.completed, rec)
		return rec.Result, true, nil
	}

	if r.resolution != nil {
		res := r.resolution
		r.resolution = nil
		if res.Err != nil {
			return nil, true, res.Err
		}
		r.completed = append(r.completed, CallRecord{
			Tool:   tool,
			Result: res.Value,
		})
		return res.Value, true, nil
	}

	return nil, false, nil
}

func (r *replayState) append(rec CallRecord) {
	r.mu.Lock()
	r.completed = append(r.completed, rec)
	r.mu.Unlock()
}

func (r *replayState) journal() []CallRecord {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]CallRecord(nil), r.completed...)
}

type divergedError struct {
	expected string
	got      string
}

func (d *divergedError) Error() string {
	return "replay diverged: recorded call to " + d.expected + ", got " + d.got
}
