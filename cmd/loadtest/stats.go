package main

import (
	"fmt"
	"io"
	"math"
	"sort"
	"sync"
	"time"
)

// stats is shared by all workers.
type stats struct {
	mu          sync.Mutex
	total       int64
	success     int64
	errors      int64
	zeroResults int64
	latencies   []time.Duration
	statusCodes map[int]int64
}

func newStats() *stats {
	return &stats{
		latencies:   make([]time.Duration, 0, 100000),
		statusCodes: make(map[int]int64),
	}
}

// record counts one request. status is 0 when the request never got a
// response.
func (s *stats) record(d time.Duration, status int, zero bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.total++
	if status == 0 {
		s.errors++
		return
	}
	if status >= 200 && status < 300 {
		s.success++
	} else {
		s.errors++
	}
	if zero {
		s.zeroResults++
	}
	s.latencies = append(s.latencies, d)
	s.statusCodes[status]++
}

type report struct {
	Total, Success, Errors, ZeroResults int64
	RPS                                 float64
	Min, Avg, P50, P90, P99, Max        time.Duration
	StdDev                              time.Duration
	StatusCodes                         map[int]int64
}

func (s *stats) report(elapsed time.Duration) report {
	s.mu.Lock()
	latencies := make([]time.Duration, len(s.latencies))
	copy(latencies, s.latencies)
	r := report{
		Total:       s.total,
		Success:     s.success,
		Errors:      s.errors,
		ZeroResults: s.zeroResults,
		StatusCodes: make(map[int]int64, len(s.statusCodes)),
	}
	for code, n := range s.statusCodes {
		r.StatusCodes[code] = n
	}
	s.mu.Unlock()

	if elapsed > 0 {
		r.RPS = float64(r.Total) / elapsed.Seconds()
	}
	if len(latencies) == 0 {
		return r
	}

	sort.Slice(latencies, func(i, j int) bool { return latencies[i] < latencies[j] })
	var sum time.Duration
	for _, l := range latencies {
		sum += l
	}
	r.Avg = sum / time.Duration(len(latencies))
	r.Min = latencies[0]
	r.Max = latencies[len(latencies)-1]
	r.P50 = percentile(latencies, 50)
	r.P90 = percentile(latencies, 90)
	r.P99 = percentile(latencies, 99)

	var sq float64
	for _, l := range latencies {
		diff := float64(l - r.Avg)
		sq += diff * diff
	}
	r.StdDev = time.Duration(math.Sqrt(sq / float64(len(latencies))))
	return r
}

func (r report) print(w io.Writer) {
	fmt.Fprintln(w, "=== Results ===")
	fmt.Fprintf(w, "Total Requests:  %d\n", r.Total)
	fmt.Fprintf(w, "Successful:      %d\n", r.Success)
	fmt.Fprintf(w, "Errors:          %d\n", r.Errors)
	fmt.Fprintf(w, "Zero results:    %d\n", r.ZeroResults)
	if r.Total > 0 {
		fmt.Fprintf(w, "Error Rate:      %.2f%%\n", float64(r.Errors)/float64(r.Total)*100)
		fmt.Fprintf(w, "Requests/sec:    %.2f\n", r.RPS)
	}

	if r.Max > 0 {
		fmt.Fprintln(w)
		fmt.Fprintln(w, "=== Latency ===")
		fmt.Fprintf(w, "Min:    %s\n", r.Min)
		fmt.Fprintf(w, "Avg:    %s\n", r.Avg)
		fmt.Fprintf(w, "P50:    %s\n", r.P50)
		fmt.Fprintf(w, "P90:    %s\n", r.P90)
		fmt.Fprintf(w, "P99:    %s\n", r.P99)
		fmt.Fprintf(w, "Max:    %s\n", r.Max)
		fmt.Fprintf(w, "StdDev: %s\n", r.StdDev)
	}

	fmt.Fprintln(w)
	fmt.Fprintln(w, "=== Status Codes ===")
	codes := make([]int, 0, len(r.StatusCodes))
	for code := range r.StatusCodes {
		codes = append(codes, code)
	}
	sort.Ints(codes)
	for _, code := range codes {
		fmt.Fprintf(w, "  %d: %d\n", code, r.StatusCodes[code])
	}
}

// percentile uses the nearest-rank method on an ascending slice.
func percentile(sorted []time.Duration, p float64) time.Duration {
	if len(sorted) == 0 {
		return 0
	}
	idx := int(math.Ceil(p/100*float64(len(sorted)))) - 1
	if idx < 0 {
		idx = 0
	}
	if idx >= len(sorted) {
		idx = len(sorted) - 1
	}
	return sorted[idx]
}
