// ABOUTME: Thread-safe TTL store mapping thread IDs to conversation histories.
// ABOUTME: Entries expire a fixed window after their last write; a background goroutine sweeps them.

package convo

import (
	"sync"
	"time"
)

// DefaultTTL is the retention window for idle conversations.
const DefaultTTL = 24 * time.Hour

// entry holds one conversation and the time of its last write.
type entry struct {
	conversation Conversation
	writtenAt    time.Time
}

// Store keeps per-thread conversation histories in memory with a TTL
// refreshed on every write (reads do not extend the window). Expired entries
// are removed by a background sweeper and also filtered on read, so a Get
// after the window behaves as if the thread never existed.
type Store struct {
	mu      sync.RWMutex
	entries map[string]*entry
	ttl     time.Duration
	done    chan struct{}
	closed  bool

	lockMu sync.Mutex
	locks  map[string]*sync.Mutex
}

// NewStore creates a conversation store with the given TTL. A ttl of zero
// uses DefaultTTL.
func NewStore(ttl time.Duration) *Store {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	s := &Store{
		entries: make(map[string]*entry),
		ttl:     ttl,
		done:    make(chan struct{}),
		locks:   make(map[string]*sync.Mutex),
	}
	go s.sweep()
	return s
}

// Get returns the conversation for threadID and whether it exists. Expired
// entries are reported as absent. Reading does not refresh the TTL.
func (s *Store) Get(threadID string) (Conversation, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.entries[threadID]
	if !ok || time.Since(e.writtenAt) >= s.ttl {
		return nil, false
	}

	// Copy so callers can append without aliasing the stored history.
	out := make(Conversation, len(e.conversation))
	copy(out, e.conversation)
	return out, true
}

// Set stores the conversation for threadID and refreshes its TTL.
func (s *Store) Set(threadID string, c Conversation) {
	stored := make(Conversation, len(c))
	copy(stored, c)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[threadID] = &entry{conversation: stored, writtenAt: time.Now()}
}

// Len returns the number of live (unexpired) conversations.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	n := 0
	for _, e := range s.entries {
		if time.Since(e.writtenAt) < s.ttl {
			n++
		}
	}
	return n
}

// LockThread serializes writers for one thread ID and returns the unlock
// func. Two concurrent Generate calls on the same thread would otherwise race
// read-modify-write on the history, silently dropping one side's turns.
func (s *Store) LockThread(threadID string) (unlock func()) {
	s.lockMu.Lock()
	m, ok := s.locks[threadID]
	if !ok {
		m = &sync.Mutex{}
		s.locks[threadID] = m
	}
	s.lockMu.Unlock()

	m.Lock()
	return m.Unlock
}

// sweep runs in a background goroutine, periodically removing expired entries.
func (s *Store) sweep() {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.runSweep()
		case <-s.done:
			return
		}
	}
}

func (s *Store) runSweep() {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	for id, e := range s.entries {
		if now.Sub(e.writtenAt) >= s.ttl {
			delete(s.entries, id)
		}
	}
}

// Clear drops all conversations. Used on shutdown.
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = make(map[string]*entry)
}

// Close stops the background sweeper. Safe to call multiple times.
func (s *Store) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.closed {
		close(s.done)
		s.closed = true
	}
}
