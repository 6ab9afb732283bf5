// Package state holds the one structure both execution contexts touch: the
// trading worker writes funds, holdings and log lines, the dashboard reads
// them. The log buffer and the account view sit behind independent guards so
// the renderer never contends with the worker on unrelated fields.
package state

import (
	"fmt"
	"sync"
	"time"
)

const timestampLayout = "2006-01-02 15:04:05"

// DefaultCheckInterval bounds shutdown latency: every long sleep in the
// worker wakes up this often to look at the shutdown token.
const DefaultCheckInterval = time.Second

type OperationalState struct {
	logMu sync.Mutex
	logs  []string

	dataMu   sync.RWMutex
	funds    float64
	holdings []string

	checkEvery time.Duration

	shutdownOnce sync.Once
	shutdown     chan struct{}
}

func New() *OperationalState {
	return &OperationalState{
		checkEvery: DefaultCheckInterval,
		shutdown:   make(chan struct{}),
	}
}

// View is a consistent read-only copy handed to the renderer.
type View struct {
	Funds    float64
	Holdings []string
	Logs     []string
}

// AppendLog appends a timestamped entry to the log buffer. Only the trading
// worker calls this; entries are observed by readers in append order.
func (s *OperationalState) AppendLog(msg string) {
	entry := fmt.Sprintf("%s - %s", time.Now().Format(timestampLayout), msg)

	s.logMu.Lock()
	defer s.logMu.Unlock()

	s.logs = append(s.logs, entry)
}

// SetAccountView replaces the funds and holdings snapshot wholesale.
func (s *OperationalState) SetAccountView(funds float64, holdings []string) {
	s.dataMu.Lock()
	defer s.dataMu.Unlock()

	s.funds = funds
	s.holdings = append([]string(nil), holdings...)
}

// Snapshot copies the current view under both guards. The copy is the
// renderer's to keep; later writes never show through it.
func (s *OperationalState) Snapshot() View {
	s.dataMu.RLock()
	funds := s.funds
	holdings := append([]string(nil), s.holdings...)
	s.dataMu.RUnlock()

	s.logMu.Lock()
	logs := append([]string(nil), s.logs...)
	s.logMu.Unlock()

	return View{Funds: funds, Holdings: holdings, Logs: logs}
}

// RequestShutdown flips the cooperative shutdown token. Safe to call from
// either context, any number of times.
func (s *OperationalState) RequestShutdown() {
	s.shutdownOnce.Do(func() { close(s.shutdown) })
}

func (s *OperationalState) Done() <-chan struct{} {
	return s.shutdown
}

func (s *OperationalState) ShutdownRequested() bool {
	select {
	case <-s.shutdown:
		return true
	default:
		return false
	}
}

// Sleep waits for d in short slices, giving up at the first check after a
// shutdown request. It reports whether the full duration elapsed.
func (s *OperationalState) Sleep(d time.Duration) bool {
	deadline := time.Now().Add(d)
	for {
		if s.ShutdownRequested() {
			return false
		}

		remaining := time.Until(deadline)
		if remaining <= 0 {
			return true
		}

		slice := s.checkEvery
		if remaining < slice {
			slice = remaining
		}

		select {
		case <-s.shutdown:
			return false
		case <-time.After(slice):
		}
	}
}
