package stats

import (
	"encoding/json"
	"fmt"
	"time"
)

// WordCount is one word-frequency entry. It marshals as a
// ["token", count] pair to keep the snapshot file's word list ordered.
type WordCount struct {
	Token string
	Count int
}

// MarshalJSON renders the pair as a two-element array.
func (w WordCount) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]any{w.Token, w.Count})
}

// UnmarshalJSON parses the two-element array form.
func (w *WordCount) UnmarshalJSON(data []byte) error {
	var pair [2]json.RawMessage
	if err := json.Unmarshal(data, &pair); err != nil {
		return err
	}
	if err := json.Unmarshal(pair[0], &w.Token); err != nil {
		return fmt.Errorf("word count token: %w", err)
	}
	if err := json.Unmarshal(pair[1], &w.Count); err != nil {
		return fmt.Errorf("word count value: %w", err)
	}
	return nil
}

// LongestPage records the page with the highest token count seen so far.
type LongestPage struct {
	URL       string `json:"url"`
	WordCount int    `json:"word_count"`
}

// SubdomainStat summarizes the pages observed under one host.
type SubdomainStat struct {
	Count      int      `json:"count"`
	SampleURLs []string `json:"sample_urls"`
}

// Snapshot is the checkpoint document written to durable storage. Each
// checkpoint overwrites the previous one wholesale.
type Snapshot struct {
	TakenAt          time.Time                `json:"taken_at"`
	UniquePagesCount int                      `json:"unique_pages_count"`
	LongestPage      LongestPage              `json:"longest_page"`
	TopWords         []WordCount              `json:"top_50_words"`
	Subdomains       map[string]SubdomainStat `json:"subdomains"`
}
