package stats

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"linksift/internal/config"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := config.DefaultConfig()
	cfg.StatsPath = filepath.Join(t.TempDir(), "stats.json")
	cfg.DatabasePath = ""
	cfg.CheckpointMinGap = time.Millisecond
	return cfg
}

// longText yields text with exactly n alphabetic tokens.
func longText(n int) string {
	words := make([]string, n)
	for i := range words {
		words[i] = fmt.Sprintf("word%c", 'a'+i%26)
	}
	return strings.Join(words, " ")
}

func TestObserveLowInformationPage(t *testing.T) {
	cfg := testConfig(t)
	c := NewCollector(cfg, nil)
	defer c.Close()

	c.Observe("http://cs.uci.edu/sparse", "too few words here")

	if got := c.UniquePages(); got != 0 {
		t.Errorf("UniquePages() = %d, expected 0 for low-information page", got)
	}
	if got := c.WordCountOf("words"); got != 0 {
		t.Errorf("WordCountOf(words) = %d, expected 0", got)
	}
}

func TestObserveIdempotent(t *testing.T) {
	cfg := testConfig(t)
	c := NewCollector(cfg, nil)
	defer c.Close()

	text := longText(30)
	c.Observe("http://cs.uci.edu/page", text)
	c.Observe("http://cs.uci.edu/page", text)

	if got := c.UniquePages(); got != 1 {
		t.Errorf("UniquePages() = %d, expected 1 after duplicate observation", got)
	}
}

func TestObserveCanonicalizesPageURL(t *testing.T) {
	cfg := testConfig(t)
	c := NewCollector(cfg, nil)
	defer c.Close()

	text := longText(30)
	c.Observe("http://cs.uci.edu/page#top", text)
	c.Observe("http://cs.uci.edu/page", text)

	if got := c.UniquePages(); got != 1 {
		t.Errorf("UniquePages() = %d, expected 1 for fragment variants", got)
	}
}

func TestObserveWordCounts(t *testing.T) {
	cfg := testConfig(t)
	cfg.MinPageTokens = 1
	c := NewCollector(cfg, nil)
	defer c.Close()

	c.Observe("http://cs.uci.edu/a", "The the a an of Crawling is fun")

	for token, expected := range map[string]int{
		"crawling": 1,
		"is":       1,
		"fun":      1,
		"the":      0,
		"an":       0,
		"of":       0,
		"a":        0,
	} {
		if got := c.WordCountOf(token); got != expected {
			t.Errorf("WordCountOf(%q) = %d, expected %d", token, got, expected)
		}
	}
}

func TestObserveLongestPage(t *testing.T) {
	cfg := testConfig(t)
	cfg.MinPageTokens = 1
	c := NewCollector(cfg, nil)
	defer c.Close()

	c.Observe("http://cs.uci.edu/short", longText(10))
	c.Observe("http://cs.uci.edu/long", longText(40))
	c.Observe("http://cs.uci.edu/medium", longText(20))

	snap := c.Snapshot()
	if snap.LongestPage.URL != "http://cs.uci.edu/long" {
		t.Errorf("longest page = %q, expected /long", snap.LongestPage.URL)
	}
	if snap.LongestPage.WordCount != 40 {
		t.Errorf("longest word count = %d, expected 40", snap.LongestPage.WordCount)
	}
}

func TestObserveSubdomains(t *testing.T) {
	cfg := testConfig(t)
	cfg.MinPageTokens = 1
	cfg.SubdomainSamples = 2
	c := NewCollector(cfg, nil)
	defer c.Close()

	for i := 0; i < 4; i++ {
		c.Observe(fmt.Sprintf("https://ngs.ics.uci.edu/post/%d", i), longText(10))
	}
	c.Observe("https://www.cs.uci.edu/index", longText(10))

	snap := c.Snapshot()
	ngs, ok := snap.Subdomains["ngs.ics.uci.edu"]
	if !ok {
		t.Fatal("missing subdomain ngs.ics.uci.edu")
	}
	if ngs.Count != 4 {
		t.Errorf("ngs count = %d, expected 4", ngs.Count)
	}
	if len(ngs.SampleURLs) != 2 {
		t.Errorf("sample URLs = %v, expected 2 entries", ngs.SampleURLs)
	}

	if www := snap.Subdomains["www.cs.uci.edu"]; www.Count != 1 {
		t.Errorf("www.cs.uci.edu count = %d, expected 1", www.Count)
	}
}

func TestSnapshotTopWordsOrdered(t *testing.T) {
	cfg := testConfig(t)
	cfg.MinPageTokens = 1
	cfg.TopWords = 2
	c := NewCollector(cfg, nil)
	defer c.Close()

	c.Observe("http://cs.uci.edu/a", "research research research teaching teaching students")

	snap := c.Snapshot()
	if len(snap.TopWords) != 2 {
		t.Fatalf("top words = %v, expected 2 entries", snap.TopWords)
	}
	if snap.TopWords[0].Token != "research" || snap.TopWords[0].Count != 3 {
		t.Errorf("top word = %+v, expected research/3", snap.TopWords[0])
	}
	if snap.TopWords[1].Token != "teaching" || snap.TopWords[1].Count != 2 {
		t.Errorf("second word = %+v, expected teaching/2", snap.TopWords[1])
	}
}

func TestFlushWritesSnapshotFile(t *testing.T) {
	cfg := testConfig(t)
	cfg.MinPageTokens = 1
	c := NewCollector(cfg, nil)
	defer c.Close()

	c.Observe("http://cs.uci.edu/a", "research teaching students faculty")
	c.Flush()

	data, err := os.ReadFile(cfg.StatsPath)
	if err != nil {
		t.Fatalf("failed to read stats file: %v", err)
	}

	var doc map[string]json.RawMessage
	if err := json.Unmarshal(data, &doc); err != nil {
		t.Fatalf("stats file is not valid JSON: %v", err)
	}
	for _, field := range []string{"unique_pages_count", "longest_page", "top_50_words", "subdomains"} {
		if _, ok := doc[field]; !ok {
			t.Errorf("stats file missing field %q", field)
		}
	}

	var count int
	if err := json.Unmarshal(doc["unique_pages_count"], &count); err != nil || count != 1 {
		t.Errorf("unique_pages_count = %d (err %v), expected 1", count, err)
	}
}

func TestCheckpointOnInterval(t *testing.T) {
	cfg := testConfig(t)
	cfg.MinPageTokens = 1
	cfg.CheckpointInterval = 2
	c := NewCollector(cfg, nil)
	defer c.Close()

	c.Observe("http://cs.uci.edu/one", longText(10))
	if _, err := os.Stat(cfg.StatsPath); !os.IsNotExist(err) {
		t.Fatal("checkpoint written before the interval was reached")
	}

	c.Observe("http://cs.uci.edu/two", longText(10))

	deadline := time.Now().Add(2 * time.Second)
	for {
		if _, err := os.Stat(cfg.StatsPath); err == nil {
			return
		}
		if time.Now().After(deadline) {
			t.Fatal("checkpoint file never appeared")
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func TestWordCountJSON(t *testing.T) {
	data, err := json.Marshal(WordCount{Token: "research", Count: 7})
	if err != nil {
		t.Fatalf("marshal error: %v", err)
	}
	if string(data) != `["research",7]` {
		t.Errorf("marshal = %s, expected [\"research\",7]", data)
	}

	var wc WordCount
	if err := json.Unmarshal(data, &wc); err != nil {
		t.Fatalf("unmarshal error: %v", err)
	}
	if wc.Token != "research" || wc.Count != 7 {
		t.Errorf("unmarshal = %+v, expected research/7", wc)
	}
}
