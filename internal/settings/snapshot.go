package settings

import (
	"encoding/json"
	"strings"
	"sync/atomic"
	"time"
)

// snapshot holds the in-memory settings values.
type snapshot struct {
	updatedAt time.Time
	values    map[string]json.RawMessage
}

// globalSnapshot stores the latest snapshot atomically.
var globalSnapshot atomic.Value // stores snapshot

// init seeds the global settings snapshot.
func init() {
	globalSnapshot.Store(snapshot{values: map[string]json.RawMessage{}})
}

// Store replaces the in-memory snapshot of DB-backed settings.
func Store(updatedAt time.Time, values map[string]json.RawMessage) {
	next := make(map[string]json.RawMessage, len(values))
	for k, v := range values {
		key := strings.TrimSpace(k)
		if key == "" {
			continue
		}
		if v == nil {
			next[key] = nil
			continue
		}
		copied := make([]byte, len(v))
		copy(copied, v)
		next[key] = copied
	}

	globalSnapshot.Store(snapshot{
		updatedAt: updatedAt.UTC(),
		values:    next,
	})
}

// UpdatedAt returns the last update timestamp for the snapshot.
func UpdatedAt() time.Time {
	return loadSnapshot().updatedAt
}

// Value returns a copy of the raw setting value for a key.
func Value(key string) (json.RawMessage, bool) {
	snap := loadSnapshot()
	key = strings.TrimSpace(key)
	if key == "" {
		return nil, false
	}
	val, ok := snap.values[key]
	if !ok {
		return nil, false
	}
	if val == nil {
		return nil, true
	}
	copied := make([]byte, len(val))
	copy(copied, val)
	return copied, true
}

// StringValue returns a string-typed setting or the fallback.
func StringValue(key, fallback string) string {
	raw, ok := Value(key)
	if !ok || raw == nil {
		return fallback
	}
	var out string
	if errUnmarshal := json.Unmarshal(raw, &out); errUnmarshal != nil {
		return fallback
	}
	if strings.TrimSpace(out) == "" {
		return fallback
	}
	return out
}

// IntValue returns an int-typed setting or the fallback.
func IntValue(key string, fallback int) int {
	raw, ok := Value(key)
	if !ok || raw == nil {
		return fallback
	}
	var out int
	if errUnmarshal := json.Unmarshal(raw, &out); errUnmarshal != nil {
		return fallback
	}
	if out <= 0 {
		return fallback
	}
	return out
}

// loadSnapshot returns the current snapshot with safe defaults.
func loadSnapshot() snapshot {
	v := globalSnapshot.Load()
	snap, ok := v.(snapshot)
	if !ok {
		return snapshot{values: map[string]json.RawMessage{}}
	}
	if snap.values == nil {
		return snapshot{updatedAt: snap.updatedAt, values: map[string]json.RawMessage{}}
	}
	return snap
}
