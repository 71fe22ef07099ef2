package client

import (
	"sync"
	"time"

	"github.com/netvista-io/netsync/pkg/netsync"
)

// resyncScheduler runs one deferred refresh per module. Scheduling a
// module again replaces its pending timer, so a burst of writes collapses
// into a single refresh.
type resyncScheduler struct {
	mu      sync.Mutex
	timers  map[netsync.Module]*time.Timer
	refresh func(netsync.Module)
	closed  bool
}

func newResyncScheduler(refresh func(netsync.Module)) *resyncScheduler {
	return &resyncScheduler{
		timers:  make(map[netsync.Module]*time.Timer),
		refresh: refresh,
	}
}

// schedule arms (or re-arms) the refresh timer for module.
func (s *resyncScheduler) schedule(module netsync.Module, delay time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return
	}

	if timer, ok := s.timers[module]; ok {
		timer.Stop()
	}

	s.timers[module] = time.AfterFunc(delay, func() {
		s.mu.Lock()
		delete(s.timers, module)
		closed := s.closed
		s.mu.Unlock()

		if !closed {
			s.refresh(module)
		}
	})
}

// Close stops every pending timer.
func (s *resyncScheduler) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.closed = true

	for module, timer := range s.timers {
		timer.Stop()
		delete(s.timers, module)
	}
}
