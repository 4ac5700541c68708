package manager

import (
	"context"
	"time"
)

// beginRun reserves a queue slot and then a run slot.
// Returns a release func to be deferred.
func (m *Manager) beginRun(ctx context.Context) (func(), error) {
	m.mu.RLock()
	draining := m.draining
	m.mu.RUnlock()
	// If draining, reject new work to allow graceful shutdown
	if draining {
		return func() {}, tooBusyError{reason: ReasonDraining}
	}

	// Fast path: respect an already-canceled context
	if err := ctx.Err(); err != nil {
		return func() {}, err
	}

	// A full queue is rejected at once rather than after maxWait.
	select {
	case m.queueCh <- struct{}{}:
		// reserved queue slot
	case <-ctx.Done():
		return func() {}, ctx.Err()
	default:
		return func() {}, tooBusyError{reason: ReasonQueueFull}
	}

	// Wait to acquire a run slot
	acquired := false
	defer func() {
		if !acquired {
			<-m.queueCh
		}
	}()
	timer := time.NewTimer(m.maxWait)
	defer timer.Stop()
	select {
	case m.runCh <- struct{}{}:
		acquired = true
		return func() { <-m.runCh; <-m.queueCh }, nil
	case <-ctx.Done():
		return func() {}, ctx.Err()
	case <-timer.C:
		return func() {}, tooBusyError{reason: ReasonWaitTimeout}
	}
}
