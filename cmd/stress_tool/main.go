package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
)

var httpClient *http.Client

func init() {
	t := http.DefaultTransport.(*http.Transport).Clone()
	t.MaxIdleConns = 500
	t.MaxIdleConnsPerHost = 500
	t.MaxConnsPerHost = 500
	httpClient = &http.Client{
		Transport: t,
		Timeout:   10 * time.Second,
	}
}

type envelope struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

// 同一个 Idempotency-Key 并发提交结算，预期只创建一个订单
func main() {
	var (
		baseURL   = flag.String("url", "http://localhost:8080", "Base URL")
		token     = flag.String("token", "", "Bearer token of the buyer")
		userID    = flag.Uint("user", 0, "Buyer user id")
		productID = flag.Uint("product", 0, "Product to buy")
		price     = flag.String("price", "", "Unit price submitted with the order")
		requests  = flag.Int("n", 200, "Concurrent checkout submissions")
	)
	flag.Parse()

	if *token == "" || *userID == 0 || *productID == 0 || *price == "" {
		log.Fatal("-token, -user, -product and -price are required")
	}

	key := uuid.NewString()
	payload, _ := json.Marshal(map[string]interface{}{
		"user_id":          *userID,
		"items":            []map[string]interface{}{{"product_id": *productID, "quantity": 1, "price": json.Number(*price)}},
		"total_amount":     json.Number(*price),
		"shipping_address": "stress test",
	})

	before := countOrders(*baseURL, *token, *userID)
	fmt.Printf("开始压测：%d 个并发结算请求，Idempotency-Key=%s\n", *requests, key)

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		statuses = map[string]int{}
	)

	start := time.Now()
	for i := 0; i < *requests; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			result := checkout(*baseURL, *token, key, payload)
			mu.Lock()
			statuses[result]++
			mu.Unlock()
		}()
	}
	wg.Wait()
	duration := time.Since(start)

	after := countOrders(*baseURL, *token, *userID)

	fmt.Println("--------------------------------------------------")
	fmt.Printf("压测结束，耗时: %v\n", duration)
	fmt.Printf("QPS: %.2f\n", float64(*requests)/duration.Seconds())
	for k, v := range statuses {
		fmt.Printf("%-12s %d\n", k, v)
	}
	fmt.Printf("新增订单: %d (预期: 1)\n", after-before)
	fmt.Println("--------------------------------------------------")
}

func checkout(baseURL, token, key string, payload []byte) string {
	req, _ := http.NewRequest(http.MethodPost, baseURL+"/orders", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Idempotency-Key", key)

	resp, err := httpClient.Do(req)
	if err != nil {
		return "error"
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.Header.Get("X-Idempotent-Replay") == "true" {
		return "replayed"
	}
	return fmt.Sprintf("http_%d", resp.StatusCode)
}

func countOrders(baseURL, token string, userID uint) int {
	req, _ := http.NewRequest(http.MethodGet, fmt.Sprintf("%s/orders?user_id=%d", baseURL, userID), nil)
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := httpClient.Do(req)
	if err != nil {
		log.Fatalf("list orders: %v", err)
	}
	defer resp.Body.Close()

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		log.Fatalf("decode orders: %v", err)
	}
	var orders []json.RawMessage
	if err := json.Unmarshal(env.Data, &orders); err != nil {
		log.Fatalf("decode orders: %v (%s)", err, env.Message)
	}
	return len(orders)
}
