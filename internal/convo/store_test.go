// ABOUTME: Tests for the TTL conversation store.
// ABOUTME: Verifies round-trip ordering, expiry semantics, and per-thread locking.

package convo

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T, ttl time.Duration) *Store {
	t.Helper()
	s := NewStore(ttl)
	t.Cleanup(s.Close)
	return s
}

func TestStore_GetMissingThread(t *testing.T) {
	s := newTestStore(t, time.Hour)

	_, ok := s.Get("nope")
	assert.False(t, ok)
}

func TestStore_RoundTripPreservesOrder(t *testing.T) {
	s := newTestStore(t, time.Hour)

	conversation := Conversation{SystemMessage("system prompt")}
	for i := 0; i < 5; i++ {
		conversation = append(conversation,
			UserMessage(fmt.Sprintf("question %d", i)),
			AssistantMessage(fmt.Sprintf("answer %d", i)),
		)
	}
	s.Set("t1", conversation)

	got, ok := s.Get("t1")
	require.True(t, ok)
	require.Len(t, got, 11) // system prompt + 5 user/assistant pairs

	assert.Equal(t, RoleSystem, got[0].Role)
	for i := 0; i < 5; i++ {
		assert.Equal(t, fmt.Sprintf("question %d", i), got[1+2*i].Content)
		assert.Equal(t, fmt.Sprintf("answer %d", i), got[2+2*i].Content)
	}
}

func TestStore_GetReturnsCopy(t *testing.T) {
	s := newTestStore(t, time.Hour)

	s.Set("t1", Conversation{SystemMessage("prompt")})

	first, ok := s.Get("t1")
	require.True(t, ok)
	_ = append(first, UserMessage("not persisted"))

	second, ok := s.Get("t1")
	require.True(t, ok)
	assert.Len(t, second, 1)
}

func TestStore_ExpiredEntryIsAbsent(t *testing.T) {
	s := newTestStore(t, 10*time.Millisecond)

	s.Set("t1", Conversation{SystemMessage("prompt")})

	_, ok := s.Get("t1")
	require.True(t, ok)

	time.Sleep(20 * time.Millisecond)

	_, ok = s.Get("t1")
	assert.False(t, ok, "entry should expire after the retention window")
}

func TestStore_WriteRefreshesTTL(t *testing.T) {
	s := newTestStore(t, 50*time.Millisecond)

	s.Set("t1", Conversation{SystemMessage("prompt")})
	time.Sleep(30 * time.Millisecond)

	// A write inside the window restarts the clock.
	s.Set("t1", Conversation{SystemMessage("prompt"), UserMessage("hi")})
	time.Sleep(30 * time.Millisecond)

	got, ok := s.Get("t1")
	require.True(t, ok)
	assert.Len(t, got, 2)
}

func TestStore_ReadDoesNotRefreshTTL(t *testing.T) {
	s := newTestStore(t, 50*time.Millisecond)

	s.Set("t1", Conversation{SystemMessage("prompt")})

	// Keep reading; the entry must still expire on schedule.
	deadline := time.Now().Add(80 * time.Millisecond)
	for time.Now().Before(deadline) {
		s.Get("t1")
		time.Sleep(10 * time.Millisecond)
	}

	_, ok := s.Get("t1")
	assert.False(t, ok)
}

func TestStore_SweepRemovesExpired(t *testing.T) {
	s := newTestStore(t, 10*time.Millisecond)

	s.Set("old", Conversation{SystemMessage("prompt")})
	time.Sleep(20 * time.Millisecond)
	s.runSweep()

	assert.Equal(t, 0, s.Len())
}

func TestStore_Clear(t *testing.T) {
	s := newTestStore(t, time.Hour)

	s.Set("t1", Conversation{SystemMessage("prompt")})
	s.Set("t2", Conversation{SystemMessage("prompt")})
	require.Equal(t, 2, s.Len())

	s.Clear()
	assert.Equal(t, 0, s.Len())
}

func TestStore_LockThreadSerializesWriters(t *testing.T) {
	s := newTestStore(t, time.Hour)
	s.Set("t1", Conversation{SystemMessage("prompt")})

	// Each goroutine does a locked read-modify-write. With serialization no
	// appended turn is lost.
	const writers = 20
	var wg sync.WaitGroup
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()

			unlock := s.LockThread("t1")
			defer unlock()

			history, ok := s.Get("t1")
			if !assert.True(t, ok) {
				return
			}
			history = append(history, UserMessage(fmt.Sprintf("turn %d", n)))
			s.Set("t1", history)
		}(i)
	}
	wg.Wait()

	got, ok := s.Get("t1")
	require.True(t, ok)
	assert.Len(t, got, 1+writers)
}

func TestStore_CloseIsIdempotent(t *testing.T) {
	s := NewStore(time.Hour)
	s.Close()
	s.Close()
}
