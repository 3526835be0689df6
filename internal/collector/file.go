// Package collector reads the raw price observations produced by the
// scraping pipeline. Scraping itself (headless browser, retries) happens
// outside this process; the engine only consumes its output file.
package collector

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/CrazyBunQnQ/maplestory-price-tracker/internal/model"
)

// fileItem mirrors one entry of the scraper's equipment_prices.json.
// Newer scraper builds write every observed listing into "prices"; older
// ones keep a single comma-formatted "item_price" string.
type fileItem struct {
	ItemName    string  `json:"item_name"`
	ItemPrice   string  `json:"item_price"`
	Prices      []int64 `json:"prices"`
	Status      string  `json:"status"`
	LastUpdated string  `json:"last_updated"`
}

// FileFetcher reads raw samples from the scraper's JSON output file.
type FileFetcher struct {
	path string
}

// NewFileFetcher creates a fetcher for the given samples file.
func NewFileFetcher(path string) *FileFetcher {
	return &FileFetcher{path: path}
}

func (f *FileFetcher) Name() string { return "file:" + f.path }

// FetchSamples parses the samples file. Items without any parseable price
// are omitted; the engine treats them as missing and carries forward.
func (f *FileFetcher) FetchSamples(_ context.Context) (map[string][]model.RawSample, error) {
	data, err := os.ReadFile(f.path)
	if err != nil {
		return nil, fmt.Errorf("read samples file: %w", err)
	}
	items := make(map[string]fileItem)
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, fmt.Errorf("parse samples file: %w", err)
	}

	out := make(map[string][]model.RawSample, len(items))
	for id, item := range items {
		if id == "" || id == model.MarketID {
			continue
		}
		ts := time.Now().UTC()
		if item.LastUpdated != "" {
			if parsed, err := time.Parse(time.RFC3339, item.LastUpdated); err == nil {
				ts = parsed.UTC()
			}
		}

		var samples []model.RawSample
		for _, p := range item.Prices {
			if p > 0 {
				samples = append(samples, model.RawSample{ItemID: id, Timestamp: ts, Price: p})
			}
		}
		if len(samples) == 0 && item.ItemPrice != "" {
			if p, ok := parseNesoPrice(item.ItemPrice); ok {
				samples = append(samples, model.RawSample{ItemID: id, Timestamp: ts, Price: p})
			}
		}
		if len(samples) > 0 {
			out[id] = samples
		}
	}
	return out, nil
}

// parseNesoPrice converts strings like "2,450,000 NESO" to an amount.
func parseNesoPrice(s string) (int64, bool) {
	s = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(s), "NESO"))
	s = strings.ReplaceAll(s, ",", "")
	p, err := strconv.ParseInt(s, 10, 64)
	if err != nil || p <= 0 {
		return 0, false
	}
	return p, true
}
