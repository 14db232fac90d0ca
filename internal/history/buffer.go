// Package history keeps a bounded in-memory buffer of each participant's
// recent messages for prompt building.
package history

import "sync"

// MaxMessages is the number of recent messages retained per participant.
const MaxMessages = 10

// Buffer tracks the most recent inbound message texts per participant,
// oldest first, bounded to MaxMessages with FIFO eviction. State lives only
// for the process lifetime.
type Buffer struct {
	mu     sync.Mutex
	recent map[int64][]string
}

// NewBuffer creates an empty Buffer.
func NewBuffer() *Buffer {
	return &Buffer{recent: make(map[int64][]string)}
}

// Record appends text to the participant's history, evicting the oldest
// entry once the buffer exceeds MaxMessages.
func (b *Buffer) Record(userID int64, text string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	msgs := append(b.recent[userID], text)
	if len(msgs) > MaxMessages {
		msgs = msgs[len(msgs)-MaxMessages:]
	}
	b.recent[userID] = msgs
}

// Recent returns a copy of the participant's history, oldest first. A
// participant with no history yields an empty slice.
func (b *Buffer) Recent(userID int64) []string {
	b.mu.Lock()
	defer b.mu.Unlock()

	msgs := b.recent[userID]
	out := make([]string, len(msgs))
	copy(out, msgs)
	return out
}
