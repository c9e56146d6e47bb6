package service

// StepResult records the outcome of one step of a best-effort batch
// operation (plan materialization and deletion both loop-and-log rather than
// running in a transaction).
type StepResult struct {
	Step string // e.g. "create week", "delete set"
	ID   int64  // the row the step touched, when known
	Err  error  // nil on success
}

// BatchResult is the per-step outcome list of a best-effort batch. Callers
// can detect partial completion instead of assuming all-or-nothing.
type BatchResult []StepResult

// Failed returns only the steps that errored.
func (b BatchResult) Failed() []StepResult {
	var failed []StepResult
	for _, step := range b {
		if step.Err != nil {
			failed = append(failed, step)
		}
	}
	return failed
}

// Partial reports whether some, but not all, steps failed.
func (b BatchResult) Partial() bool {
	failed := len(b.Failed())
	return failed > 0 && failed < len(b)
}

// Ok reports whether every step succeeded.
func (b BatchResult) Ok() bool {
	return len(b.Failed()) == 0
}
