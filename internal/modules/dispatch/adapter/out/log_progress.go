package out

import (
	"sync"

	"dropkit/internal/modules/dispatch/domain"

	hclog "github.com/hashicorp/go-hclog"
)

// LogProgress is a Progress reporter backed by the host logger. Destroy
// stops reporting; late reports after Destroy are dropped.
type LogProgress struct {
	mu      sync.Mutex
	last    domain.ProgressSnapshot
	stopped bool
	log     hclog.Logger
	opID    string
}

func NewLogProgress(log hclog.Logger, operationID string) *LogProgress {
	if log == nil {
		log = hclog.NewNullLogger()
	}
	return &LogProgress{log: log, opID: operationID}
}

func (p *LogProgress) Report(snapshot domain.ProgressSnapshot) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.stopped {
		return
	}
	p.last = snapshot
	if snapshot.Indeterminate {
		p.log.Debug("progress", "operation", p.opID, "indeterminate", true)
		return
	}
	p.log.Debug("progress", "operation", p.opID, "completed", snapshot.Completed, "total", snapshot.Total)
}

func (p *LogProgress) ReportCompleted(completed, total float64) {
	p.Report(domain.ProgressSnapshot{Completed: completed, Total: total})
}

func (p *LogProgress) Snapshot() domain.ProgressSnapshot {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.last
}

func (p *LogProgress) Destroy() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.stopped = true
}
