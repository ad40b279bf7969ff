package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"math/rand"
	"net/http"
	"os"
	"sync"
	"sync/atomic"
	"time"
)

// Config holds the benchmark settings
var (
	targetURL   string
	workspaceID string
	taxID       string
	concurrency int
	duration    time.Duration
	workload    string
)

// Metrics
var (
	totalRequests uint64
	success201    uint64 // Created
	fail404       uint64 // Missing collaborators
	fail422       uint64 // Validation rejects
	failOther     uint64
)

func init() {
	flag.StringVar(&targetURL, "url", "http://localhost:8080", "API Base URL")
	flag.StringVar(&workspaceID, "workspace", "", "Workspace UUID (required, from seeder output)")
	flag.StringVar(&taxID, "tax", "", "Tax UUID applied to a share of requests")
	flag.IntVar(&concurrency, "workers", 10, "Number of concurrent workers")
	flag.DurationVar(&duration, "duration", 30*time.Second, "Test duration")
	flag.StringVar(&workload, "workload", "domestic", "Workload type: domestic | foreign | mixed")
}

func main() {
	flag.Parse()
	if workspaceID == "" {
		log.Fatal("-workspace is required")
	}
	log.Printf("Starting Benchmark: %s | Workers: %d | Duration: %s", workload, concurrency, duration)

	start := time.Now()
	var wg sync.WaitGroup
	wg.Add(concurrency)

	for i := 0; i < concurrency; i++ {
		go worker(&wg, start)
	}

	wg.Wait()
	printResults(time.Since(start))
}

func worker(wg *sync.WaitGroup, start time.Time) {
	defer wg.Done()
	client := &http.Client{Timeout: 5 * time.Second}

	for time.Since(start) < duration {
		payload := buildPayload()
		body, _ := json.Marshal(payload)

		req, _ := http.NewRequest("POST",
			fmt.Sprintf("%s/api/v1/workspaces/%s/incomes", targetURL, workspaceID),
			bytes.NewBuffer(body))
		req.Header.Set("Content-Type", "application/json")

		resp, err := client.Do(req)
		if err != nil {
			atomic.AddUint64(&failOther, 1)
			continue
		}

		atomic.AddUint64(&totalRequests, 1)
		switch resp.StatusCode {
		case 201:
			atomic.AddUint64(&success201, 1)
		case 404:
			atomic.AddUint64(&fail404, 1)
		case 422:
			atomic.AddUint64(&fail422, 1)
		default:
			atomic.AddUint64(&failOther, 1)
		}
		resp.Body.Close()
	}
}

func buildPayload() map[string]interface{} {
	amount := int64(rand.Intn(100000) + 1)
	payload := map[string]interface{}{
		"title":          fmt.Sprintf("bench-%d", time.Now().UnixNano()),
		"originalAmount": amount,
		"currency":       "EUR",
		"dateReceived":   time.Now().UTC().Format(time.RFC3339),
	}

	foreign := workload == "foreign" || (workload == "mixed" && rand.Float32() < 0.5)
	if foreign {
		payload["currency"] = "USD"
		// Half of the foreign records arrive with the conversion already
		// known, the rest stay pending.
		if rand.Float32() < 0.5 {
			payload["convertedAmountInDefaultCurrency"] = amount * 9 / 10
		}
	}

	if taxID != "" && rand.Float32() < 0.7 {
		payload["taxId"] = taxID
	}

	return payload
}

func printResults(d time.Duration) {
	total := atomic.LoadUint64(&totalRequests)
	s201 := atomic.LoadUint64(&success201)
	f404 := atomic.LoadUint64(&fail404)
	f422 := atomic.LoadUint64(&fail422)
	fErr := atomic.LoadUint64(&failOther)

	tps := float64(total) / d.Seconds()

	results := map[string]interface{}{
		"workload":        workload,
		"duration_sec":    d.Seconds(),
		"total_requests":  total,
		"throughput_tps":  tps,
		"success_created": s201,
		"fail_not_found":  f404,
		"fail_validation": f422,
		"errors":          fErr,
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	enc.Encode(results)

	// Also save to file
	filename := fmt.Sprintf("results_%s.json", workload)
	file, _ := os.Create(filename)
	defer file.Close()
	json.NewEncoder(file).Encode(results)
}
