package manager

import (
	"time"

	"excitond/pkg/types"
)

// Status builds a detailed status response for /status.
func (m *Manager) Status() types.StatusResponse {
	m.mu.RLock()
	defer m.mu.RUnlock()
	inflight := len(m.runCh)
	queued := len(m.queueCh) - inflight
	if queued < 0 {
		// the two channels are read without a common lock
		queued = 0
	}
	now := time.Now()
	return types.StatusResponse{
		Inflight:       inflight,
		Queued:         queued,
		MaxConcurrent:  m.maxConcurrent,
		MaxQueueDepth:  m.maxQueueDepth,
		RunsTotal:      m.runs,
		FailuresTotal:  m.failures,
		Presets:        len(m.presets),
		LastError:      m.lastErr,
		UptimeSeconds:  int64(now.Sub(m.startTime).Seconds()),
		ServerTimeUnix: now.Unix(),
	}
}
