// Package stats accumulates crawl statistics — unique pages, word
// frequencies, the longest page, per-subdomain page sets — and
// checkpoints them to durable storage off the callers' path.
package stats

import (
	"context"
	"encoding/json"
	"hash/fnv"
	"log/slog"
	"net/url"
	"os"
	"sort"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"linksift/internal/config"
)

// Store persists snapshots beyond the JSON stats file.
type Store interface {
	SaveSnapshot(snap *Snapshot) error
}

const wordShardCount = 64

type wordShard struct {
	mu     sync.Mutex
	counts map[string]int
}

type hostPages struct {
	count   int
	samples []string
}

// Collector is the process-lifetime stats aggregate. Word counters are
// sharded to keep concurrent workers off a single lock; the page-level
// aggregates mutate together per page and share one mutex. Checkpoint
// writes happen on a background goroutine so a slow disk never stalls
// the crawl.
type Collector struct {
	minTokens int
	interval  int
	topWords  int
	samples   int
	statsPath string
	store     Store

	mu      sync.Mutex
	pages   map[string]struct{}
	longest LongestPage
	hosts   map[string]*hostPages

	words [wordShardCount]wordShard

	snapCh    chan *Snapshot
	limiter   *rate.Limiter
	wg        sync.WaitGroup
	closeOnce sync.Once
}

// NewCollector creates a collector and starts its checkpoint writer.
// store may be nil when database persistence is disabled.
func NewCollector(cfg *config.Config, store Store) *Collector {
	c := &Collector{
		minTokens: cfg.MinPageTokens,
		interval:  cfg.CheckpointInterval,
		topWords:  cfg.TopWords,
		samples:   cfg.SubdomainSamples,
		statsPath: cfg.StatsPath,
		store:     store,
		pages:     make(map[string]struct{}),
		hosts:     make(map[string]*hostPages),
		snapCh:    make(chan *Snapshot, 1),
		limiter:   rate.NewLimiter(rate.Every(cfg.CheckpointMinGap), 1),
	}
	for i := range c.words {
		c.words[i].counts = make(map[string]int)
	}

	c.wg.Add(1)
	go c.writer()

	return c
}

// Observe records one successfully parsed page. Pages below the
// low-information token threshold are ignored entirely; their links are
// still harvested by the extractor. Observing the same canonical URL
// twice is a no-op.
func (c *Collector) Observe(pageURL, text string) {
	tokens := Tokenize(text)
	if len(tokens) < c.minTokens {
		return
	}

	canon := canonical(pageURL)
	host := hostOf(canon)

	c.mu.Lock()
	if _, seen := c.pages[canon]; seen {
		c.mu.Unlock()
		return
	}
	c.pages[canon] = struct{}{}

	if len(tokens) > c.longest.WordCount {
		c.longest = LongestPage{URL: canon, WordCount: len(tokens)}
	}

	if host != "" {
		hp := c.hosts[host]
		if hp == nil {
			hp = &hostPages{}
			c.hosts[host] = hp
		}
		hp.count++
		if len(hp.samples) < c.samples {
			hp.samples = append(hp.samples, canon)
		}
	}

	checkpoint := len(c.pages)%c.interval == 0
	c.mu.Unlock()

	for _, token := range tokens {
		if Countable(token) {
			c.addWord(token)
		}
	}

	if checkpoint {
		c.enqueue(c.Snapshot())
	}
}

// UniquePages returns the current unique-page count.
func (c *Collector) UniquePages() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.pages)
}

// WordCountOf returns the accumulated count for one token.
func (c *Collector) WordCountOf(token string) int {
	shard := c.wordShardOf(token)
	shard.mu.Lock()
	defer shard.mu.Unlock()
	return shard.counts[token]
}

// Snapshot builds a point-in-time copy of the aggregates.
func (c *Collector) Snapshot() *Snapshot {
	snap := &Snapshot{
		TakenAt:    time.Now().UTC(),
		Subdomains: make(map[string]SubdomainStat),
	}

	c.mu.Lock()
	snap.UniquePagesCount = len(c.pages)
	snap.LongestPage = c.longest
	for host, hp := range c.hosts {
		samples := make([]string, len(hp.samples))
		copy(samples, hp.samples)
		snap.Subdomains[host] = SubdomainStat{Count: hp.count, SampleURLs: samples}
	}
	c.mu.Unlock()

	var words []WordCount
	for i := range c.words {
		shard := &c.words[i]
		shard.mu.Lock()
		for token, count := range shard.counts {
			words = append(words, WordCount{Token: token, Count: count})
		}
		shard.mu.Unlock()
	}
	sort.Slice(words, func(i, j int) bool {
		if words[i].Count != words[j].Count {
			return words[i].Count > words[j].Count
		}
		return words[i].Token < words[j].Token
	})
	if len(words) > c.topWords {
		words = words[:c.topWords]
	}
	snap.TopWords = words

	return snap
}

// Flush writes a snapshot synchronously, for crawl end.
func (c *Collector) Flush() {
	c.write(c.Snapshot())
}

// Close stops the background writer and writes a final snapshot.
// Observe must not be called after Close.
func (c *Collector) Close() {
	c.closeOnce.Do(func() {
		close(c.snapCh)
		c.wg.Wait()
		c.Flush()
	})
}

func (c *Collector) addWord(token string) {
	shard := c.wordShardOf(token)
	shard.mu.Lock()
	shard.counts[token]++
	shard.mu.Unlock()
}

func (c *Collector) wordShardOf(token string) *wordShard {
	h := fnv.New32a()
	_, _ = h.Write([]byte(token))
	return &c.words[h.Sum32()%wordShardCount]
}

// enqueue hands a snapshot to the writer without blocking. A pending
// unwritten snapshot is replaced; last write wins.
func (c *Collector) enqueue(snap *Snapshot) {
	for {
		select {
		case c.snapCh <- snap:
			return
		default:
			select {
			case <-c.snapCh:
			default:
			}
		}
	}
}

func (c *Collector) writer() {
	defer c.wg.Done()
	for snap := range c.snapCh {
		_ = c.limiter.Wait(context.Background())
		c.write(snap)
	}
}

// write persists one snapshot. Failures are logged and swallowed; the
// in-memory aggregates remain the source of truth and the next
// checkpoint supersedes this one.
func (c *Collector) write(snap *Snapshot) {
	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		slog.Error("Failed to marshal stats snapshot", "error", err)
		return
	}

	if err := os.WriteFile(c.statsPath, data, 0644); err != nil {
		slog.Error("Failed to write stats checkpoint", "path", c.statsPath, "error", err)
	}

	if c.store != nil {
		if err := c.store.SaveSnapshot(snap); err != nil {
			slog.Error("Failed to save stats snapshot", "error", err)
		}
	}
}

// canonical strips the fragment and one trailing slash.
func canonical(rawURL string) string {
	if i := strings.IndexByte(rawURL, '#'); i >= 0 {
		rawURL = rawURL[:i]
	}
	return strings.TrimSuffix(rawURL, "/")
}

func hostOf(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	return strings.ToLower(u.Hostname())
}
