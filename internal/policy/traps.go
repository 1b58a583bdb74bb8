package policy

import (
	"hash/fnv"
	"net/url"
	"regexp"
	"strings"
	"sync"
)

var digitRuns = regexp.MustCompile(`\d+`)

// PathPattern derives the trap-detection key for a URL: lowercased host
// plus the path with every digit run collapsed to a single placeholder.
// /page/1 and /page/2 on the same host yield the same pattern.
func PathPattern(u *url.URL) string {
	return strings.ToLower(u.Hostname()) + digitRuns.ReplaceAllString(u.Path, "{N}")
}

const trapShardCount = 64

type trapShard struct {
	mu     sync.Mutex
	counts map[string]int
}

// TrapTracker counts how often each PathPattern has been seen and
// rejects a pattern once it has been seen more than the configured
// ceiling. Counters grow for the lifetime of the crawl; pattern
// cardinality is bounded by distinct site structures, not page count.
type TrapTracker struct {
	ceiling int
	shards  [trapShardCount]trapShard
}

// NewTrapTracker creates a tracker with the given occurrence ceiling.
func NewTrapTracker(ceiling int) *TrapTracker {
	t := &TrapTracker{ceiling: ceiling}
	for i := range t.shards {
		t.shards[i].counts = make(map[string]int)
	}
	return t
}

// Seen increments the counter for the URL's PathPattern and reports
// whether the post-increment count exceeds the ceiling. With a ceiling
// of 100 the 101st sighting is the first rejected. Call this exactly
// once per admission decision; re-checking a URL inflates its count.
func (t *TrapTracker) Seen(u *url.URL) bool {
	pattern := PathPattern(u)
	shard := t.shard(pattern)

	shard.mu.Lock()
	shard.counts[pattern]++
	count := shard.counts[pattern]
	shard.mu.Unlock()

	return count > t.ceiling
}

// Count returns the current occurrence count for a pattern.
func (t *TrapTracker) Count(pattern string) int {
	shard := t.shard(pattern)
	shard.mu.Lock()
	defer shard.mu.Unlock()
	return shard.counts[pattern]
}

// Export copies all pattern counters, for checkpointing.
func (t *TrapTracker) Export() map[string]int {
	out := make(map[string]int)
	for i := range t.shards {
		shard := &t.shards[i]
		shard.mu.Lock()
		for pattern, count := range shard.counts {
			out[pattern] = count
		}
		shard.mu.Unlock()
	}
	return out
}

// Import seeds the tracker with previously exported counters. Existing
// counts for the same pattern are overwritten.
func (t *TrapTracker) Import(counts map[string]int) {
	for pattern, count := range counts {
		shard := t.shard(pattern)
		shard.mu.Lock()
		shard.counts[pattern] = count
		shard.mu.Unlock()
	}
}

func (t *TrapTracker) shard(pattern string) *trapShard {
	h := fnv.New32a()
	_, _ = h.Write([]byte(pattern))
	return &t.shards[h.Sum32()%trapShardCount]
}
