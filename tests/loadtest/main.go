package main

import (
	"bytes"
	"fmt"
	"io"
	"math/rand"
	"net"
	"net/http"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	json "github.com/goccy/go-json"
)

const (
	baseURL       = "http://127.0.0.1:8080"
	numWorkers    = 50
	testDuration  = 10 * time.Second
	numCandidates = 200
	numWatchlist  = 100
)

var tagPool = []string{"RPG", "Puzzle", "Roguelike", "FPS", "Co-op", "Strategy", "Indie", "Racing", "Horror", "Platformer"}

var httpClient = &http.Client{
	Timeout: 5 * time.Second,
	Transport: &http.Transport{
		MaxIdleConns:        200,
		MaxIdleConnsPerHost: 200,
		IdleConnTimeout:     30 * time.Second,
		DialContext: (&net.Dialer{
			Timeout:   2 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
	},
}

type result struct {
	endpoint string
	status   int
	latency  time.Duration
	err      bool
}

type stats struct {
	count     int64
	errors    int64
	latencies []time.Duration
}

type candidate struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Tags        []string `json:"tags"`
	ReviewScore int      `json:"review_score"`
	ReviewCount int      `json:"review_count"`
}

func main() {
	fmt.Println("=== GameLens Load Test ===")
	fmt.Printf("Workers: %d | Duration: %s | Candidates: %d\n\n", numWorkers, testDuration, numCandidates)

	fmt.Print("Waiting for server... ")
	for i := 0; i < 30; i++ {
		resp, err := httpClient.Get(baseURL + "/health")
		if err == nil {
			_, _ = io.Copy(io.Discard, resp.Body)
			resp.Body.Close()
			break
		}
		if i == 29 {
			fmt.Println("FAILED: server not responding")
			return
		}
		time.Sleep(200 * time.Millisecond)
	}
	fmt.Println("OK")

	fmt.Println("\n--- Phase 1: Watchlist writes (POST/DELETE /watchlist) ---")
	runPhase(testDuration, func(rng *rand.Rand) result {
		if rng.Float64() < 0.7 {
			return doAddWatchlist(rng)
		}
		return doRemoveWatchlist(rng)
	})

	fmt.Println("\n--- Phase 2: Scoring load (recommendations, similar, sale prediction) ---")
	runPhase(testDuration, func(rng *rand.Rand) result {
		r := rng.Float64()
		switch {
		case r < 0.50:
			return doRecommendations(rng)
		case r < 0.80:
			return doSimilar(rng)
		default:
			return doSalePrediction(rng)
		}
	})

	fmt.Println("\n--- Phase 3: Read-heavy load (cached GETs, 10% writes) ---")
	runPhase(testDuration, func(rng *rand.Rand) result {
		r := rng.Float64()
		switch {
		case r < 0.10:
			return doAddWatchlist(rng)
		case r < 0.35:
			return doGet("/library")
		case r < 0.60:
			return doGet("/backlog")
		case r < 0.80:
			return doGet("/statistics")
		case r < 0.90:
			return doGet("/watchlist")
		default:
			return doGet("/activity")
		}
	})
}

func runPhase(duration time.Duration, workFn func(rng *rand.Rand) result) {
	results := make(chan result, 10000)
	var wg sync.WaitGroup
	var totalOps atomic.Int64
	stop := make(chan struct{})

	for i := 0; i < numWorkers; i++ {
		wg.Add(1)
		go func(seed int64) {
			defer wg.Done()
			rng := rand.New(rand.NewSource(seed))
			for {
				select {
				case <-stop:
					return
				default:
					results <- workFn(rng)
					totalOps.Add(1)
				}
			}
		}(rand.Int63() + int64(i))
	}

	byEndpoint := make(map[string]*stats)
	done := make(chan struct{})
	go func() {
		for r := range results {
			s, ok := byEndpoint[r.endpoint]
			if !ok {
				s = &stats{}
				byEndpoint[r.endpoint] = s
			}
			s.count++
			if r.err {
				s.errors++
			}
			s.latencies = append(s.latencies, r.latency)
		}
		close(done)
	}()

	time.Sleep(duration)
	close(stop)
	wg.Wait()
	close(results)
	<-done

	printResults(byEndpoint, duration)
}

func printResults(byEndpoint map[string]*stats, duration time.Duration) {
	var totalOps, totalErrors int64

	endpoints := make([]string, 0, len(byEndpoint))
	for ep := range byEndpoint {
		endpoints = append(endpoints, ep)
	}
	sort.Strings(endpoints)

	fmt.Printf("\n  %-26s %8s %6s %10s %10s %10s %10s\n",
		"Endpoint", "Reqs", "Errs", "Avg", "P50", "P95", "P99")
	fmt.Println("  " + strings.Repeat("-", 92))

	for _, ep := range endpoints {
		s := byEndpoint[ep]
		totalOps += s.count
		totalErrors += s.errors

		sort.Slice(s.latencies, func(i, j int) bool {
			return s.latencies[i] < s.latencies[j]
		})

		fmt.Printf("  %-26s %8d %6d %10s %10s %10s %10s\n",
			ep, s.count, s.errors,
			fmtDur(avgDuration(s.latencies)),
			fmtDur(percentile(s.latencies, 0.50)),
			fmtDur(percentile(s.latencies, 0.95)),
			fmtDur(percentile(s.latencies, 0.99)))
	}

	if totalOps == 0 {
		fmt.Println("  no requests completed")
		return
	}
	fmt.Println("  " + strings.Repeat("-", 92))
	fmt.Printf("  Total: %d reqs | Errors: %d (%.1f%%) | RPS: %.0f\n",
		totalOps, totalErrors, float64(totalErrors)/float64(totalOps)*100, float64(totalOps)/duration.Seconds())
}

func randomCandidate(rng *rand.Rand) candidate {
	n := rng.Intn(4) + 1
	tags := make([]string, n)
	for i := range tags {
		tags[i] = tagPool[rng.Intn(len(tagPool))]
	}
	id := rng.Intn(numCandidates) + 1
	return candidate{
		ID:          fmt.Sprintf("%d", id),
		Title:       fmt.Sprintf("Game %d", id),
		Tags:        tags,
		ReviewScore: rng.Intn(101),
		ReviewCount: rng.Intn(10000),
	}
}

func randomCandidates(rng *rand.Rand) map[string]any {
	list := make([]candidate, rng.Intn(20)+1)
	for i := range list {
		list[i] = randomCandidate(rng)
	}
	return map[string]any{"candidates": list}
}

func doRecommendations(rng *rand.Rand) result {
	return doJSON(http.MethodPost, "/recommendations", "POST /recommendations", randomCandidates(rng), http.StatusOK)
}

// doSimilar accepts 404: the source id is random and may not be owned.
func doSimilar(rng *rand.Rand) result {
	path := fmt.Sprintf("/similar?source=%d", rng.Intn(numCandidates)+1)
	r := doJSON(http.MethodPost, path, "POST /similar", randomCandidates(rng), http.StatusOK)
	if r.status == http.StatusNotFound {
		r.err = false
	}
	return r
}

func doSalePrediction(rng *rand.Rand) result {
	base := float64(rng.Intn(60) + 5)
	history := make([]map[string]any, rng.Intn(8))
	at := time.Now().AddDate(-2, 0, 0)
	for i := range history {
		at = at.AddDate(0, 0, rng.Intn(90)+20)
		history[i] = map[string]any{"at": at.UTC(), "discount_percent": float64(rng.Intn(80) + 10)}
	}
	body := map[string]any{
		"record": map[string]any{
			"id":             fmt.Sprintf("%d", rng.Intn(numCandidates)+1),
			"base_price":     base,
			"current_price":  base * (1 - rng.Float64()*0.8),
			"historical_low": base * 0.25,
		},
		"history": history,
	}
	return doJSON(http.MethodPost, "/sale-prediction", "POST /sale-prediction", body, http.StatusOK)
}

func doAddWatchlist(rng *rand.Rand) result {
	id := rng.Intn(numWatchlist) + 1
	body := map[string]any{"game_id": fmt.Sprintf("%d", id), "title": fmt.Sprintf("Game %d", id)}
	r := doJSON(http.MethodPost, "/watchlist", "POST /watchlist", body, http.StatusCreated)
	if r.status == http.StatusOK {
		r.err = false
	}
	return r
}

func doRemoveWatchlist(rng *rand.Rand) result {
	path := fmt.Sprintf("/watchlist?game_id=%d", rng.Intn(numWatchlist)+1)
	return doJSON(http.MethodDelete, path, "DELETE /watchlist", nil, http.StatusOK)
}

func doGet(path string) result {
	return doJSON(http.MethodGet, path, "GET "+path, nil, http.StatusOK)
}

func doJSON(method, path, endpoint string, body any, want int) result {
	var reader io.Reader
	if body != nil {
		data, _ := json.Marshal(body)
		reader = bytes.NewReader(data)
	}
	req, err := http.NewRequest(method, baseURL+path, reader)
	if err != nil {
		return result{endpoint, 0, 0, true}
	}
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := httpClient.Do(req)
	lat := time.Since(start)
	if err != nil {
		return result{endpoint, 0, lat, true}
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	resp.Body.Close()
	return result{endpoint, resp.StatusCode, lat, resp.StatusCode != want}
}

func avgDuration(d []time.Duration) time.Duration {
	if len(d) == 0 {
		return 0
	}
	var sum time.Duration
	for _, v := range d {
		sum += v
	}
	return sum / time.Duration(len(d))
}

func percentile(d []time.Duration, p float64) time.Duration {
	if len(d) == 0 {
		return 0
	}
	idx := int(float64(len(d)) * p)
	if idx >= len(d) {
		idx = len(d) - 1
	}
	return d[idx]
}

func fmtDur(d time.Duration) string {
	if d < time.Millisecond {
		return fmt.Sprintf("%dus", d.Microseconds())
	}
	return fmt.Sprintf("%.1fms", float64(d.Microseconds())/1000.0)
}
