package testdecl

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"sync"
	"sync/atomic"
	"time"
)

// HTTPClient wraps http.Client with a timeout.
type HTTPClient struct {
	client *http.Client
}

func newHTTPClient(timeout time.Duration) *HTTPClient {
	return &HTTPClient{
		client: &http.Client{Timeout: timeout},
	}
}

// Get performs a GET request.
func (c *HTTPClient) Get(ctx context.Context, url string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	return c.client.Do(req)
}

// Post performs a POST request with a JSON body.
func (c *HTTPClient) Post(ctx context.Context, url string, body interface{}) (*http.Response, error) {
	jsonData, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	return c.client.Do(req)
}

// readResponseBody reads and closes the response body.
func readResponseBody(resp *http.Response) ([]byte, error) {
	defer resp.Body.Close()
	return io.ReadAll(resp.Body)
}

// submitDeclarations submits declarations concurrently using a worker pool.
func submitDeclarations(ctx context.Context, config *Config, declarations []Declaration, stats *Stats) error {
	log.Printf("submitting %d declarations with %d workers...", len(declarations), config.Workers)

	client := newHTTPClient(config.Timeout)
	url := config.BaseURL + "/declarations"

	var (
		accepted  int64
		duplicate int64
		failed    int64
		submitted int64
	)

	declChan := make(chan Declaration, config.Workers*2)
	var wg sync.WaitGroup

	for i := 0; i < config.Workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()

			for d := range declChan {
				select {
				case <-ctx.Done():
					return
				default:
					result := submitSingleDeclaration(ctx, client, url, d)

					atomic.AddInt64(&submitted, 1)
					switch result {
					case "accepted":
						atomic.AddInt64(&accepted, 1)
					case "duplicate":
						atomic.AddInt64(&duplicate, 1)
					default:
						atomic.AddInt64(&failed, 1)
					}

					if config.Verbose && atomic.LoadInt64(&submitted)%1000 == 0 {
						log.Printf("progress: %d/%d submitted (accepted: %d, duplicate: %d, failed: %d)",
							atomic.LoadInt64(&submitted), len(declarations),
							atomic.LoadInt64(&accepted), atomic.LoadInt64(&duplicate), atomic.LoadInt64(&failed))
					}
				}
			}
		}()
	}

	go func() {
		defer close(declChan)
		for _, d := range declarations {
			select {
			case <-ctx.Done():
				return
			case declChan <- d:
			}
		}
	}()

	wg.Wait()

	stats.DeclarationsSubmitted = int(atomic.LoadInt64(&submitted))
	stats.DeclarationsAccepted = int(atomic.LoadInt64(&accepted))
	stats.DeclarationsDuplicate = int(atomic.LoadInt64(&duplicate))
	stats.DeclarationsFailed = int(atomic.LoadInt64(&failed))

	log.Printf("declaration submission completed: accepted=%d duplicate=%d failed=%d",
		stats.DeclarationsAccepted, stats.DeclarationsDuplicate, stats.DeclarationsFailed)
	return nil
}

// submitSingleDeclaration submits one declaration; the engine answers
// 202 for fresh ids, 200 for duplicates, and 429 under backpressure.
func submitSingleDeclaration(ctx context.Context, client *HTTPClient, url string, d Declaration) string {
	resp, err := client.Post(ctx, url, d)
	if err != nil {
		return "failed"
	}

	body, err := readResponseBody(resp)
	if err != nil {
		return "failed"
	}

	switch resp.StatusCode {
	case StatusAccepted:
		return "accepted"
	case StatusOK:
		var ack AckResponse
		if err := json.Unmarshal(body, &ack); err == nil && ack.Duplicate {
			return "duplicate"
		}
		return "duplicate"
	default:
		return "failed"
	}
}

// importRoster registers the synthetic roster through POST /imports.
func importRoster(ctx context.Context, config *Config, roster []Participant) error {
	client := newHTTPClient(config.Timeout)

	resp, err := client.Post(ctx, config.BaseURL+"/imports", ImportRequest{
		EventID: config.EventID,
		Roster:  roster,
	})
	if err != nil {
		return fmt.Errorf("failed to import roster: %w", err)
	}
	if _, err := readResponseBody(resp); err != nil {
		return fmt.Errorf("failed to read import response: %w", err)
	}
	if resp.StatusCode != StatusAccepted {
		return fmt.Errorf("roster import failed with status: %d", resp.StatusCode)
	}
	return nil
}

// fetchSponsorships lists the event's sponsorships.
func fetchSponsorships(ctx context.Context, config *Config, stats *Stats) ([]Sponsorship, error) {
	client := newHTTPClient(config.Timeout)

	resp, err := client.Get(ctx, config.BaseURL+"/sponsorships?event="+config.EventID)
	if err != nil {
		return nil, fmt.Errorf("failed to list sponsorships: %w", err)
	}
	body, err := readResponseBody(resp)
	if err != nil {
		return nil, fmt.Errorf("failed to read sponsorships: %w", err)
	}
	if resp.StatusCode != StatusOK {
		return nil, fmt.Errorf("sponsorship listing failed with status: %d", resp.StatusCode)
	}

	var sponsorships []Sponsorship
	if err := json.Unmarshal(body, &sponsorships); err != nil {
		return nil, fmt.Errorf("failed to parse sponsorships: %w", err)
	}

	stats.SponsorshipsRetrieved = len(sponsorships)
	return sponsorships, nil
}
