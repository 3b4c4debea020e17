// Command loadgen drives checkout traffic against a running POS backend.
// It seeds its parameter pool from the catalog and store endpoints, then
// fires concurrent card checkouts and reports latency percentiles.
//
// Usage:
//
//	loadgen -base-url http://localhost:8080 -token $JWT -store $STORE_ID \
//	        -concurrency 10 -duration 30s
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"math/rand"
	"net/http"
	"os"
	"os/signal"
	"sort"
	"sync"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/nextstock/tools/loadgen/internal/pool"
)

type options struct {
	baseURL     string
	token       string
	storeID     string
	concurrency int
	duration    time.Duration
	maxQty      int
}

type listEnvelope struct {
	Success bool `json:"success"`
	Data    []struct {
		ID     string `json:"id"`
		Status string `json:"status"`
	} `json:"data"`
}

type checkoutPayload struct {
	Items         []checkoutLine `json:"items"`
	PaymentMethod string         `json:"payment_method"`
}

type checkoutLine struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
}

type stats struct {
	requests  atomic.Int64
	successes atomic.Int64
	failures  atomic.Int64

	mu        sync.Mutex
	latencies []time.Duration
}

func (s *stats) record(d time.Duration, ok bool) {
	s.requests.Add(1)
	if ok {
		s.successes.Add(1)
	} else {
		s.failures.Add(1)
	}
	s.mu.Lock()
	s.latencies = append(s.latencies, d)
	s.mu.Unlock()
}

func (s *stats) percentile(p float64) time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.latencies) == 0 {
		return 0
	}
	sorted := make([]time.Duration, len(s.latencies))
	copy(sorted, s.latencies)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })
	idx := int(float64(len(sorted)-1) * p)
	return sorted[idx]
}

func main() {
	opts := parseFlags()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	client := &http.Client{Timeout: 10 * time.Second}
	poolCfg := pool.DefaultConfig()
	poolCfg.Capacity = 10000
	poolCfg.TTL = 0 // seeded IDs stay valid for the whole run
	params := pool.New(poolCfg)
	defer params.Close()

	if err := seedPool(ctx, client, opts, params); err != nil {
		log.Fatalf("seeding parameter pool: %v", err)
	}

	productCount, _ := params.Count(pool.SemanticTypeProductID)
	if productCount == 0 {
		log.Fatal("no sellable products found; seed the catalog first")
	}
	log.Printf("pool seeded: %d products", productCount)

	runCtx, cancel := context.WithTimeout(ctx, opts.duration)
	defer cancel()

	results := &stats{}
	start := time.Now()

	var wg sync.WaitGroup
	for i := 0; i < opts.concurrency; i++ {
		wg.Add(1)
		go func(worker int) {
			defer wg.Done()
			rng := rand.New(rand.NewSource(time.Now().UnixNano() + int64(worker)))
			for runCtx.Err() == nil {
				fireCheckout(runCtx, client, opts, params, rng, results)
			}
		}(i)
	}
	wg.Wait()

	elapsed := time.Since(start)
	report(results, elapsed, params.Stats())
}

func parseFlags() options {
	var opts options
	flag.StringVar(&opts.baseURL, "base-url", "http://localhost:8080", "backend base URL")
	flag.StringVar(&opts.token, "token", os.Getenv("POS_TOKEN"), "JWT access token (or POS_TOKEN env)")
	flag.StringVar(&opts.storeID, "store", os.Getenv("POS_STORE_ID"), "store ID for X-Store-ID (or POS_STORE_ID env)")
	flag.IntVar(&opts.concurrency, "concurrency", 4, "concurrent workers")
	flag.DurationVar(&opts.duration, "duration", 30*time.Second, "test duration")
	flag.IntVar(&opts.maxQty, "max-qty", 3, "max quantity per checkout line")
	flag.Parse()

	if opts.token == "" {
		log.Fatal("a JWT token is required (-token or POS_TOKEN)")
	}
	return opts
}

// seedPool fills the parameter pool with active product IDs from the catalog.
func seedPool(ctx context.Context, client *http.Client, opts options, params *pool.Pool) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		opts.baseURL+"/api/v1/products?page_size=100&status=active", nil)
	if err != nil {
		return err
	}
	authorize(req, opts)

	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("product list returned %s", resp.Status)
	}

	var envelope listEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return err
	}

	for _, item := range envelope.Data {
		entry := pool.NewEntry(item.ID, pool.SemanticTypeProductID, 0).
			FromEndpoint("GET /products", "$.data[*].id")
		if err := params.Add(entry); err != nil {
			return err
		}
	}
	return nil
}

func fireCheckout(ctx context.Context, client *http.Client, opts options, params *pool.Pool, rng *rand.Rand, results *stats) {
	product, err := params.Random(pool.SemanticTypeProductID)
	if err != nil || product == nil {
		return
	}

	payload := checkoutPayload{
		Items: []checkoutLine{
			{ProductID: product.Value.(string), Quantity: 1 + rng.Intn(opts.maxQty)},
		},
		// Card avoids requiring an open cash session on the target store
		PaymentMethod: "CARD",
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		opts.baseURL+"/api/v1/sales/checkout", bytes.NewReader(body))
	if err != nil {
		return
	}
	req.Header.Set("Content-Type", "application/json")
	authorize(req, opts)

	start := time.Now()
	resp, err := client.Do(req)
	latency := time.Since(start)
	if err != nil {
		if ctx.Err() == nil {
			results.record(latency, false)
		}
		return
	}
	resp.Body.Close()

	results.record(latency, resp.StatusCode == http.StatusOK || resp.StatusCode == http.StatusCreated)
}

func authorize(req *http.Request, opts options) {
	req.Header.Set("Authorization", "Bearer "+opts.token)
	if opts.storeID != "" {
		req.Header.Set("X-Store-ID", opts.storeID)
	}
}

func report(results *stats, elapsed time.Duration, poolStats pool.Stats) {
	total := results.requests.Load()
	fmt.Printf("\n--- checkout load test ---\n")
	fmt.Printf("duration:    %s\n", elapsed.Round(time.Millisecond))
	fmt.Printf("requests:    %d (%.1f/s)\n", total, float64(total)/elapsed.Seconds())
	fmt.Printf("succeeded:   %d\n", results.successes.Load())
	fmt.Printf("failed:      %d\n", results.failures.Load())
	fmt.Printf("p50 latency: %s\n", results.percentile(0.50).Round(time.Millisecond))
	fmt.Printf("p95 latency: %s\n", results.percentile(0.95).Round(time.Millisecond))
	fmt.Printf("p99 latency: %s\n", results.percentile(0.99).Round(time.Millisecond))
	fmt.Printf("pool:        %d entries, %.1f%% hit rate\n",
		poolStats.Entries, poolStats.HitRate()*100)
}
