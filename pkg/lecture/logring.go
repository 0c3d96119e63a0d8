package lecture

import (
	"encoding/json"
	"time"
)

// DefaultLogCapacity bounds the per-session activity log.
const DefaultLogCapacity = 50

// LogEntry is one observability record attached to a session.
type LogEntry struct {
	Timestamp time.Time `json:"timestamp"`
	Level     string    `json:"level"`
	Message   string    `json:"message"`
}

// LogRing is a fixed-capacity ring of log entries. Oldest entries are
// overwritten once the ring is full.
type LogRing struct {
	entries []LogEntry
	head    int
	size    int
}

func NewLogRing(capacity int) *LogRing {
	if capacity <= 0 {
		capacity = DefaultLogCapacity
	}
	return &LogRing{entries: make([]LogEntry, capacity)}
}

// Append records an entry, evicting the oldest one when full.
func (r *LogRing) Append(level, message string) {
	r.entries[r.head] = LogEntry{Timestamp: time.Now(), Level: level, Message: message}
	r.head = (r.head + 1) % len(r.entries)
	if r.size < len(r.entries) {
		r.size++
	}
}

// Entries returns the entries in insertion order, oldest first.
func (r *LogRing) Entries() []LogEntry {
	out := make([]LogEntry, 0, r.size)
	start := r.head - r.size
	if start < 0 {
		start += len(r.entries)
	}
	for i := 0; i < r.size; i++ {
		out = append(out, r.entries[(start+i)%len(r.entries)])
	}
	return out
}

// Len returns the number of stored entries.
func (r *LogRing) Len() int {
	return r.size
}

// MarshalJSON renders the ring as a plain array, oldest first.
func (r *LogRing) MarshalJSON() ([]byte, error) {
	return json.Marshal(r.Entries())
}
