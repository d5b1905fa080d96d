// Package ids generates the prefix_timestamp record identifiers used across
// the persisted collections (e.g. "doctor_1724800000000000000").
package ids

import (
	"strconv"
	"strings"
	"sync"
	"time"
)

var (
	mu   sync.Mutex
	last int64
)

// New returns a fresh identifier for the given prefix. Timestamps are
// nanosecond resolution and strictly increasing within the process, so two
// records created back to back never share an id.
func New(prefix string) string {
	mu.Lock()
	now := time.Now().UnixNano()
	if now <= last {
		now = last + 1
	}
	last = now
	mu.Unlock()

	return prefix + "_" + strconv.FormatInt(now, 10)
}

// Prefix returns the portion of id before the timestamp, or "" when the id
// does not follow the prefix_timestamp pattern.
func Prefix(id string) string {
	i := strings.LastIndexByte(id, '_')
	if i <= 0 {
		return ""
	}
	if _, err := strconv.ParseInt(id[i+1:], 10, 64); err != nil {
		return ""
	}
	return id[:i]
}
