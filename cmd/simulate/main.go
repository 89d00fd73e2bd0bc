package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"math/rand"
	"net/http"
	"os"
	"sort"
	"strconv"
	"sync"
	"sync/atomic"
	"time"
)

type SimConfig struct {
	APIBaseURL string
	Duration   time.Duration
	Workers    int
	MaxGroup   int
}

type Metrics struct {
	Total      int64
	Optimal    int64
	Fallback   int64
	Impossible int64
	Conflict   int64
	Error      int64

	mu        sync.Mutex
	latencies []time.Duration
}

func (m *Metrics) Record(latency time.Duration, outcome string, status int) {
	atomic.AddInt64(&m.Total, 1)

	switch {
	case status == http.StatusConflict:
		atomic.AddInt64(&m.Conflict, 1)
	case status != http.StatusOK:
		atomic.AddInt64(&m.Error, 1)
	case outcome == "OPTIMAL_FOUND":
		atomic.AddInt64(&m.Optimal, 1)
	case outcome == "FALLBACK":
		atomic.AddInt64(&m.Fallback, 1)
	default:
		atomic.AddInt64(&m.Impossible, 1)
	}

	m.mu.Lock()
	m.latencies = append(m.latencies, latency)
	m.mu.Unlock()
}

func (m *Metrics) Stats() (avg, min, max, p50, p95 time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if len(m.latencies) == 0 {
		return 0, 0, 0, 0, 0
	}

	latencies := make([]time.Duration, len(m.latencies))
	copy(latencies, m.latencies)

	sort.Slice(latencies, func(i, j int) bool {
		return latencies[i] < latencies[j]
	})

	var sum time.Duration
	for _, l := range latencies {
		sum += l
	}

	avg = sum / time.Duration(len(latencies))
	min = latencies[0]
	max = latencies[len(latencies)-1]
	p50 = latencies[percentileIndex(len(latencies), 50)]
	p95 = latencies[percentileIndex(len(latencies), 95)]
	return
}

func percentileIndex(n, pct int) int {
	idx := n * pct / 100
	if idx >= n {
		idx = n - 1
	}
	return idx
}

type negotiationRequest struct {
	Participants    []string `json:"participants"`
	ScheduleDate    string   `json:"schedule_date,omitempty"`
	DurationMinutes int      `json:"duration_minutes,omitempty"`
}

type negotiationResponse struct {
	Outcome string `json:"outcome"`
	Rounds  int    `json:"rounds"`
}

type participantsResponse struct {
	Participants []string `json:"participants"`
}

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)

	cfg := loadSimConfig()
	log.Printf("simulate starting base_url=%s workers=%d duration=%s", cfg.APIBaseURL, cfg.Workers, cfg.Duration)

	participants, err := fetchParticipants(cfg.APIBaseURL)
	if err != nil {
		log.Fatalf("fetch participants: %v", err)
	}
	if len(participants) < 2 {
		log.Fatalf("need at least 2 seeded participants, got %d", len(participants))
	}
	log.Printf("loaded %d participants", len(participants))

	metrics := &Metrics{}
	client := &http.Client{Timeout: 2 * time.Minute}

	deadline := time.Now().Add(cfg.Duration)

	var wg sync.WaitGroup
	for w := 0; w < cfg.Workers; w++ {
		wg.Add(1)
		go func(seed int64) {
			defer wg.Done()
			rng := rand.New(rand.NewSource(seed))
			for time.Now().Before(deadline) {
				runNegotiation(client, cfg, participants, rng, metrics)
			}
		}(time.Now().UnixNano() + int64(w))
	}
	wg.Wait()

	printReport(metrics)
}

func runNegotiation(client *http.Client, cfg SimConfig, participants []string, rng *rand.Rand, metrics *Metrics) {
	group := pickGroup(participants, rng, cfg.MaxGroup)
	day := time.Now().AddDate(0, 0, rng.Intn(5)+1)

	body, err := json.Marshal(negotiationRequest{
		Participants: group,
		ScheduleDate: day.Format("2006-01-02"),
	})
	if err != nil {
		log.Printf("marshal request: %v", err)
		return
	}

	start := time.Now()
	resp, err := client.Post(cfg.APIBaseURL+"/negotiations", "application/json", bytes.NewReader(body))
	latency := time.Since(start)
	if err != nil {
		metrics.Record(latency, "", 0)
		return
	}
	defer resp.Body.Close()

	var parsed negotiationResponse
	raw, _ := io.ReadAll(resp.Body)
	_ = json.Unmarshal(raw, &parsed)

	metrics.Record(latency, parsed.Outcome, resp.StatusCode)
}

func pickGroup(participants []string, rng *rand.Rand, maxGroup int) []string {
	size := rng.Intn(maxGroup-1) + 2 // 2..maxGroup
	if size > len(participants) {
		size = len(participants)
	}

	picked := rng.Perm(len(participants))[:size]
	group := make([]string, 0, size)
	for _, idx := range picked {
		group = append(group, participants[idx])
	}
	return group
}

func fetchParticipants(baseURL string) ([]string, error) {
	resp, err := http.Get(baseURL + "/participants")
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	var parsed participantsResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, err
	}
	return parsed.Participants, nil
}

func loadSimConfig() SimConfig {
	cfg := SimConfig{
		APIBaseURL: getEnv("API_BASE_URL", "http://127.0.0.1:8080"),
		Duration:   30 * time.Second,
		Workers:    4,
		MaxGroup:   3,
	}

	if v := os.Getenv("SIM_DURATION"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.Duration = d
		}
	}
	if v := os.Getenv("SIM_WORKERS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.Workers = n
		}
	}
	if v := os.Getenv("SIM_MAX_GROUP"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 2 {
			cfg.MaxGroup = n
		}
	}

	return cfg
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func printReport(m *Metrics) {
	avg, min, max, p50, p95 := m.Stats()

	fmt.Println()
	fmt.Println("=== simulation report ===")
	fmt.Printf("total requests:  %d\n", atomic.LoadInt64(&m.Total))
	fmt.Printf("optimal:         %d\n", atomic.LoadInt64(&m.Optimal))
	fmt.Printf("fallback:        %d\n", atomic.LoadInt64(&m.Fallback))
	fmt.Printf("impossible:      %d\n", atomic.LoadInt64(&m.Impossible))
	fmt.Printf("conflicts (409): %d\n", atomic.LoadInt64(&m.Conflict))
	fmt.Printf("errors:          %d\n", atomic.LoadInt64(&m.Error))
	fmt.Printf("latency avg=%s min=%s max=%s p50=%s p95=%s\n", avg, min, max, p50, p95)
}
