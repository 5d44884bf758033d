package model

import (
	"encoding/json"
	"fmt"
)

// GroupEntry pairs a group key with its stats.
type GroupEntry struct {
	Key   string
	Stats GroupStats
}

// GroupedStats is an insertion-ordered, read-only mapping of group keys to
// stats. The zero value is an empty mapping.
type GroupedStats struct {
	entries []GroupEntry
	index   map[string]int
}

// NewGroupedStats builds a mapping from entries in the given order. A key
// that repeats keeps its first position and its last stats.
func NewGroupedStats(entries []GroupEntry) GroupedStats {
	g := GroupedStats{
		entries: make([]GroupEntry, 0, len(entries)),
		index:   make(map[string]int, len(entries)),
	}
	for _, e := range entries {
		if i, ok := g.index[e.Key]; ok {
			g.entries[i].Stats = e.Stats
			continue
		}
		g.index[e.Key] = len(g.entries)
		g.entries = append(g.entries, e)
	}
	return g
}

// Len returns the number of groups.
func (g GroupedStats) Len() int {
	return len(g.entries)
}

// Get returns the stats for key.
func (g GroupedStats) Get(key string) (GroupStats, bool) {
	i, ok := g.index[key]
	if !ok {
		return GroupStats{}, false
	}
	return g.entries[i].Stats, true
}

// Keys returns the group keys in first-seen order.
func (g GroupedStats) Keys() []string {
	keys := make([]string, len(g.entries))
	for i, e := range g.entries {
		keys[i] = e.Key
	}
	return keys
}

// Entries returns a copy of the groups in first-seen order.
func (g GroupedStats) Entries() []GroupEntry {
	out := make([]GroupEntry, len(g.entries))
	copy(out, g.entries)
	return out
}

// TotalQuestions sums TotalQuestions over all groups.
func (g GroupedStats) TotalQuestions() int {
	total := 0
	for _, e := range g.entries {
		total += e.Stats.TotalQuestions
	}
	return total
}

type groupJSON struct {
	Key string `json:"key"`
	GroupStats
}

// MarshalJSON encodes the mapping as an ordered array of groups.
func (g GroupedStats) MarshalJSON() ([]byte, error) {
	out := make([]groupJSON, len(g.entries))
	for i, e := range g.entries {
		out[i] = groupJSON{Key: e.Key, GroupStats: e.Stats}
	}
	return json.Marshal(out)
}

// UnmarshalJSON decodes the ordered array form produced by MarshalJSON.
func (g *GroupedStats) UnmarshalJSON(data []byte) error {
	var in []groupJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return fmt.Errorf("decode groups: %w", err)
	}
	entries := make([]GroupEntry, len(in))
	for i, e := range in {
		entries[i] = GroupEntry{Key: e.Key, Stats: e.GroupStats}
	}
	*g = NewGroupedStats(entries)
	return nil
}
