package sources

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"os"
	"time"

	"storefront-catalog-api/internal/models"
)

// BackendClient fetches the raw product payload from the storefront
// backend. It does no normalization; the engine owns all shaping.
type BackendClient struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

func NewBackendClient() *BackendClient {
	baseURL := os.Getenv("BACKEND_API_URL")
	if baseURL == "" {
		baseURL = "http://localhost:8080"
	}

	return &BackendClient{
		baseURL: baseURL,
		apiKey:  os.Getenv("BACKEND_API_KEY"),
		client:  &http.Client{Timeout: 15 * time.Second},
	}
}

// FetchProducts pulls the raw product records. The backend is loose about
// its envelope: a bare array, or an object wrapping the array under
// data/products/items.
func (b *BackendClient) FetchProducts() ([]models.RawRecord, error) {
	url := b.baseURL + "/products"
	log.Printf("Fetching products from backend: %s", url)

	req, err := http.NewRequest(http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %v", err)
	}
	req.Header.Set("Accept", "application/json")
	if b.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+b.apiKey)
	}

	resp, err := b.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("backend request failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("backend returned status %d", resp.StatusCode)
	}

	var payload interface{}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode payload: %v", err)
	}

	records := DecodeRecords(payload)
	log.Printf("Backend returned %d raw records", len(records))
	return records, nil
}

// DecodeRecords flattens a decoded payload into raw records, tolerating
// both bare arrays and common wrapper envelopes. Non-object elements are
// dropped, not fatal.
func DecodeRecords(payload interface{}) []models.RawRecord {
	switch p := payload.(type) {
	case []interface{}:
		return recordSlice(p)
	case map[string]interface{}:
		for _, key := range []string{"data", "products", "items"} {
			if arr, ok := p[key].([]interface{}); ok {
				return recordSlice(arr)
			}
		}
		// A single record object is a batch of one.
		return []models.RawRecord{p}
	default:
		return nil
	}
}

func recordSlice(arr []interface{}) []models.RawRecord {
	records := make([]models.RawRecord, 0, len(arr))
	for _, el := range arr {
		if m, ok := el.(map[string]interface{}); ok {
			records = append(records, m)
		}
	}
	return records
}
