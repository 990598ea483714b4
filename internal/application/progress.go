package application

import "sync"

// Snapshot is a consistent view of batch progress. completed + failed
// never exceeds total, and both only grow.
type Snapshot struct {
	Total     int
	Completed int
	Failed    int
}

// Done reports whether every submitted row has an outcome.
func (s Snapshot) Done() bool {
	return s.Completed+s.Failed >= s.Total
}

// Progress tracks batch counters. All mutation happens under the mutex
// so concurrent readers never observe a torn update. An optional
// observer receives a snapshot after every change, outside row
// processing hot paths (a single counter update per row).
type Progress struct {
	mu        sync.Mutex
	total     int
	completed int
	failed    int
	observer  func(Snapshot)
}

// NewProgress creates a progress tracker for total rows. observer may
// be nil; when set it is called with a snapshot after every update.
func NewProgress(total int, observer func(Snapshot)) *Progress {
	if total < 0 {
		total = 0
	}
	return &Progress{total: total, observer: observer}
}

// RowCompleted records one successful row.
func (p *Progress) RowCompleted() {
	p.update(func() { p.completed++ })
}

// RowFailed records one failed row.
func (p *Progress) RowFailed() {
	p.update(func() { p.failed++ })
}

func (p *Progress) update(apply func()) {
	p.mu.Lock()
	apply()
	snap := Snapshot{Total: p.total, Completed: p.completed, Failed: p.failed}
	observer := p.observer
	p.mu.Unlock()

	if observer != nil {
		observer(snap)
	}
}

// Snapshot returns the current counters.
func (p *Progress) Snapshot() Snapshot {
	p.mu.Lock()
	defer p.mu.Unlock()
	return Snapshot{Total: p.total, Completed: p.completed, Failed: p.failed}
}
