package app

// Job tracks the units of one fan-out batch.
//
// Done/Total are for display only. Whether the job is finished is decided
// by Finish, which looks at the live unit states every time it is asked.
type Job struct {
	Done  int
	Total int

	ids       []string
	terminal  map[string]bool
	completed bool
}

// NewJob tracks ids. Duplicate ids are tracked once.
func NewJob(ids []string) *Job {
	j := &Job{terminal: make(map[string]bool, len(ids))}
	for _, id := range ids {
		if _, dup := j.terminal[id]; dup {
			continue
		}
		j.terminal[id] = false
		j.ids = append(j.ids, id)
	}
	j.Total = len(j.ids)
	return j
}

// Tracks reports whether id belongs to the job.
func (j *Job) Tracks(id string) bool {
	if j == nil {
		return false
	}
	_, ok := j.terminal[id]
	return ok
}

// Resolve records the terminal report for id. It returns false for
// unknown ids and for a second report of the same unit.
func (j *Job) Resolve(id string) bool {
	if j == nil {
		return false
	}
	done, ok := j.terminal[id]
	if !ok || done {
		return false
	}
	j.terminal[id] = true
	j.Done++
	return true
}

// Terminal reports whether id has reported.
func (j *Job) Terminal(id string) bool {
	return j != nil && j.terminal[id]
}

// Completed reports whether Finish already fired.
func (j *Job) Completed() bool {
	return j != nil && j.completed
}

// Finish returns true exactly once: the first time every tracked unit is
// terminal according to isTerminal. Later calls return false.
func (j *Job) Finish(isTerminal func(id string) bool) bool {
	if j == nil || j.completed {
		return false
	}
	for _, id := range j.ids {
		if !isTerminal(id) {
			return false
		}
	}
	j.completed = true
	return true
}
