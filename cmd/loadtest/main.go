// Command loadtest drives concurrent GET /api/search traffic against a
// running server. Queries are drawn from the article titles and tags of the
// content catalog, plus a few that match nothing.
//
// Usage:
//
//	go run ./cmd/loadtest -url http://localhost:8080 -concurrency 20 -duration 30s [-rps 500]
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"sort"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/Adithya-Monish-Kumar-K/learning-hub/internal/content"
)

type loadConfig struct {
	BaseURL     string
	Concurrency int
	Duration    time.Duration
	RPS         float64
	Queries     []string
}

func main() {
	baseURL := flag.String("url", "http://localhost:8080", "base URL of the learning hub server")
	concurrency := flag.Int("concurrency", 10, "number of concurrent workers")
	duration := flag.Duration("duration", 30*time.Second, "test duration")
	rps := flag.Float64("rps", 0, "overall request rate cap, 0 for unlimited")
	contentDir := flag.String("content", "", "content directory to draw queries from (default: embedded)")
	flag.Parse()

	catalog, err := content.LoadDefault(*contentDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load content: %v\n", err)
		os.Exit(1)
	}

	cfg := loadConfig{
		BaseURL:     strings.TrimRight(*baseURL, "/"),
		Concurrency: *concurrency,
		Duration:    *duration,
		RPS:         *rps,
		Queries:     queriesFrom(catalog),
	}

	fmt.Println("=== Learning Hub Load Test ===")
	fmt.Printf("Target:      %s\n", cfg.BaseURL)
	fmt.Printf("Concurrency: %d\n", cfg.Concurrency)
	fmt.Printf("Duration:    %s\n", cfg.Duration)
	fmt.Printf("Queries:     %d unique\n", len(cfg.Queries))
	fmt.Println()

	start := time.Now()
	s := run(cfg)
	r := s.report(time.Since(start))
	r.print(os.Stdout)

	if r.Total == 0 {
		fmt.Println()
		fmt.Println("WARNING: No requests completed. Is the server running?")
		os.Exit(1)
	}
}

// queriesFrom returns a deterministic query mix: every distinct tag, the
// first two words of every title and a handful of misses.
func queriesFrom(c *content.Catalog) []string {
	seen := make(map[string]bool)
	var out []string
	add := func(q string) {
		q = strings.ToLower(strings.TrimSpace(q))
		if q != "" && !seen[q] {
			seen[q] = true
			out = append(out, q)
		}
	}
	for _, a := range c.Articles() {
		for _, tag := range a.Tags {
			add(tag)
		}
		words := strings.Fields(a.Title)
		if len(words) > 2 {
			words = words[:2]
		}
		add(strings.Join(words, " "))
	}
	sort.Strings(out)
	return append(out, "kubernetes operators", "haskell monads", "xyzzy")
}

func run(cfg loadConfig) *stats {
	s := newStats()
	client := &http.Client{
		Timeout: 10 * time.Second,
		Transport: &http.Transport{
			MaxIdleConns:        cfg.Concurrency * 2,
			MaxIdleConnsPerHost: cfg.Concurrency * 2,
			IdleConnTimeout:     90 * time.Second,
		},
	}

	limit := rate.Inf
	if cfg.RPS > 0 {
		limit = rate.Limit(cfg.RPS)
	}
	limiter := rate.NewLimiter(limit, cfg.Concurrency)

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Duration)
	defer cancel()

	g, ctx := errgroup.WithContext(ctx)
	for w := 0; w < cfg.Concurrency; w++ {
		g.Go(func() error {
			for i := w; ; i++ {
				if err := limiter.Wait(ctx); err != nil {
					return nil
				}
				q := cfg.Queries[i%len(cfg.Queries)]
				searchOnce(ctx, client, cfg.BaseURL, q, s)
			}
		})
	}

	fmt.Print("Running")
	ticker := time.NewTicker(5 * time.Second)
	defer ticker.Stop()
	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				fmt.Print(".")
			}
		}
	}()

	g.Wait()
	fmt.Println(" done!")
	fmt.Println()
	return s
}

func searchOnce(ctx context.Context, client *http.Client, baseURL, query string, s *stats) {
	u := fmt.Sprintf("%s/api/search?q=%s&limit=10", baseURL, url.QueryEscape(query))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		s.record(0, 0, false)
		return
	}

	start := time.Now()
	resp, err := client.Do(req)
	elapsed := time.Since(start)
	if err != nil {
		if ctx.Err() == nil {
			s.record(elapsed, 0, false)
		}
		return
	}
	defer resp.Body.Close()

	var body struct {
		Pagination struct {
			Total int `json:"total"`
		} `json:"pagination"`
	}
	zero := false
	if resp.StatusCode == http.StatusOK && json.NewDecoder(resp.Body).Decode(&body) == nil {
		zero = body.Pagination.Total == 0
	}
	io.Copy(io.Discard, resp.Body)
	s.record(elapsed, resp.StatusCode, zero)
}
